package ir

import (
	"strconv"

	"tlog.app/go/tlog/tlwire"
)

type (
	// ValueID indexes a value in the owning block's arena.
	ValueID int

	Type int
	Op   int

	Value interface {
		Type() Type
	}

	Integer struct {
		Value int32
	}

	Alloc struct {
		Name string
	}

	Load struct {
		Name string
		Src  ValueID
	}

	Store struct {
		Val ValueID
		Dst ValueID
	}

	Binary struct {
		Name string
		Op   Op
		L    ValueID
		R    ValueID
	}

	Return struct {
		Val ValueID // Nil for bare return
	}

	Block struct {
		Name string

		Values []Value
		Code   []ValueID

		ints map[int32]ValueID
	}

	Func struct {
		Name string
		Ret  Type

		Blocks []*Block
	}

	Program struct {
		Funcs []*Func
	}
)

const Nil ValueID = -1

const (
	I32 Type = iota
	Unit
	Label
)

const (
	Add Op = iota
	Sub
	Mul
	Div
	Mod
	Lt
	Gt
	Le
	Ge
	Eq
	Ne
	And
	Or
	Xor

	numOps
)

var opNames = [numOps]string{
	Add: "add",
	Sub: "sub",
	Mul: "mul",
	Div: "div",
	Mod: "mod",
	Lt:  "lt",
	Gt:  "gt",
	Le:  "le",
	Ge:  "ge",
	Eq:  "eq",
	Ne:  "ne",
	And: "and",
	Or:  "or",
	Xor: "xor",
}

func (Integer) Type() Type { return I32 }
func (Alloc) Type() Type   { return Unit }
func (Load) Type() Type    { return I32 }
func (Store) Type() Type   { return Unit }
func (Binary) Type() Type  { return I32 }
func (Return) Type() Type  { return Unit }

func (*Block) Type() Type { return Label }

func (t Type) String() string {
	switch t {
	case I32:
		return "i32"
	case Unit:
		return "unit"
	case Label:
		return "label"
	default:
		return "type(" + strconv.Itoa(int(t)) + ")"
	}
}

func (op Op) String() string {
	if op >= 0 && op < numOps {
		return opNames[op]
	}

	return "op(" + strconv.Itoa(int(op)) + ")"
}

func (op Op) Valid() bool { return op >= 0 && op < numOps }

func (id ValueID) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	if id == Nil {
		return e.AppendNil(b)
	}

	return e.AppendFormat(b, "v%d", int(id))
}

func NewBlock(name string) *Block {
	return &Block{Name: name}
}

func (f *Func) NewBlock(name string) *Block {
	b := NewBlock(name)

	f.Blocks = append(f.Blocks, b)

	return b
}

func (f *Func) Entry() *Block {
	if len(f.Blocks) == 0 {
		return nil
	}

	return f.Blocks[0]
}

// Add puts v into the arena without scheduling it.
func (b *Block) Add(v Value) ValueID {
	id := ValueID(len(b.Values))

	b.Values = append(b.Values, v)

	return id
}

// Emit adds v and appends it to the instruction sequence.
func (b *Block) Emit(v Value) ValueID {
	id := b.Add(v)

	b.Code = append(b.Code, id)

	return id
}

// Int returns the pooled literal for v.
func (b *Block) Int(v int32) ValueID {
	if id, ok := b.ints[v]; ok {
		return id
	}

	if b.ints == nil {
		b.ints = map[int32]ValueID{}
	}

	id := b.Add(Integer{Value: v})
	b.ints[v] = id

	return id
}

func (b *Block) Value(id ValueID) Value {
	if id < 0 || int(id) >= len(b.Values) {
		return nil
	}

	return b.Values[id]
}

// Ref is the textual identity of a value as an operand.
func (b *Block) Ref(id ValueID) string {
	switch v := b.Value(id).(type) {
	case Integer:
		return strconv.FormatInt(int64(v.Value), 10)
	case Alloc:
		return v.Name
	case Load:
		return v.Name
	case Binary:
		return v.Name
	case nil:
		return "<nil>"
	default:
		return "<" + v.Type().String() + ">"
	}
}

// Terminator returns the last instruction if it ends the block.
func (b *Block) Terminator() (Return, bool) {
	if len(b.Code) == 0 {
		return Return{}, false
	}

	r, ok := b.Value(b.Code[len(b.Code)-1]).(Return)

	return r, ok
}

// HasResult reports whether v is an instruction producing a value.
func HasResult(v Value) bool {
	switch v.(type) {
	case Load, Binary:
		return true
	default:
		return false
	}
}

// NeedsSlot reports whether v reserves a stack slot.
func NeedsSlot(v Value) bool {
	_, alloc := v.(Alloc)

	return alloc || HasResult(v)
}

func Name(v Value) string {
	switch v := v.(type) {
	case Alloc:
		return v.Name
	case Load:
		return v.Name
	case Binary:
		return v.Name
	default:
		return ""
	}
}
