package back

import (
	"context"
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/sixday-C/pku-minic/compiler/asm"
	"github.com/sixday-C/pku-minic/compiler/asm/riscv"
	"github.com/sixday-C/pku-minic/compiler/format"
	"github.com/sixday-C/pku-minic/compiler/ir"
)

type (
	Compiler struct {
		// Comments puts each IR instruction as a comment before its code.
		Comments bool
	}

	funContext struct {
		*ir.Func

		blk   *ir.Block
		slots map[ir.ValueID]int
		frame int

		code []asm.Instr
	}

	StackOffsetError struct {
		Value ir.ValueID
		PC    loc.PC
	}
)

const (
	slotSize   = 4
	frameAlign = 16
)

var ErrUnsupportedInstruction = errors.New("unsupported instruction")

func New() *Compiler {
	return &Compiler{}
}

func (c *Compiler) CompileProgram(ctx context.Context, b []byte, p *ir.Program) (_ []byte, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "back: compile program", "funcs", len(p.Funcs))
	defer tr.Finish("err", &err)

	b = fmt.Appendf(b, "  .text\n")

	for i, f := range p.Funcs {
		if i != 0 {
			b = append(b, '\n')
		}

		b, err = c.compileFunc(ctx, b, f)
		if err != nil {
			return nil, errors.Wrap(err, "func %v", f.Name)
		}
	}

	if tr.If("dump_asm") {
		tr.Printw("assembly", "text", b)
	}

	return b, nil
}

func (c *Compiler) compileFunc(ctx context.Context, b []byte, f *ir.Func) (_ []byte, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "back: func", "name", f.Name, "blocks", len(f.Blocks))
	defer tr.Finish("err", &err)

	fc := &funContext{
		Func:  f,
		slots: map[ir.ValueID]int{},
	}

	fc.frame = fc.layout()

	if tr.If("dump_frame") {
		tr.Printw("frame", "size", fc.frame, "slots", len(fc.slots))
	}

	fc.emit(
		asm.Directive{Name: "globl", Args: []string{f.Name}},
		asm.Label(f.Name),
	)

	fc.adjustSP(-fc.frame)

	for i, blk := range f.Blocks {
		fc.blk = blk

		if i != 0 {
			fc.emit(asm.Label(f.Name + "_" + blk.Name))
		}

		for _, id := range blk.Code {
			if c.Comments {
				text, err := format.Instr(nil, blk, id, 0)
				if err != nil {
					return nil, errors.Wrap(err, "comment")
				}

				fc.emit(asm.Comment(text))
			}

			err = fc.compileInstr(ctx, id)
			if err != nil {
				return nil, errors.Wrap(err, "block %v: %v", blk.Name, blk.Ref(id))
			}
		}
	}

	return riscv.AppendFunc(b, asm.Func{Name: f.Name, Body: fc.code})
}

// layout assigns a slot to each value needing one and returns the frame size.
func (fc *funContext) layout() int {
	off := 0

	for _, blk := range fc.Blocks {
		for _, id := range blk.Code {
			if !ir.NeedsSlot(blk.Values[id]) {
				continue
			}

			fc.slots[id] = off
			off += slotSize
		}
	}

	return align(off, frameAlign)
}

// FrameSize is the stack frame size f compiles to.
func FrameSize(f *ir.Func) int {
	fc := &funContext{
		Func:  f,
		slots: map[ir.ValueID]int{},
	}

	return fc.layout()
}

func (fc *funContext) compileInstr(ctx context.Context, id ir.ValueID) (err error) {
	switch x := fc.blk.Values[id].(type) {
	case ir.Alloc:
	case ir.Load:
		src, err := fc.slot(x.Src)
		if err != nil {
			return err
		}

		dst, err := fc.slot(id)
		if err != nil {
			return err
		}

		fc.load(riscv.T0, src)
		fc.store(riscv.T0, dst)
	case ir.Store:
		dst, err := fc.slot(x.Dst)
		if err != nil {
			return err
		}

		r, err := fc.operand(x.Val, riscv.T0)
		if err != nil {
			return err
		}

		fc.store(r, dst)
	case ir.Binary:
		return fc.compileBinary(id, x)
	case ir.Return:
		if x.Val != ir.Nil {
			err = fc.materialize(x.Val, riscv.A0)
			if err != nil {
				return err
			}
		}

		fc.adjustSP(fc.frame)
		fc.emit(riscv.Ret{})
	default:
		return errors.Wrap(ErrUnsupportedInstruction, "%T", x)
	}

	return nil
}

func (fc *funContext) compileBinary(id ir.ValueID, x ir.Binary) error {
	l, err := fc.operand(x.L, riscv.T0)
	if err != nil {
		return errors.Wrap(err, "lhs")
	}

	r, err := fc.operand(x.R, riscv.T1)
	if err != nil {
		return errors.Wrap(err, "rhs")
	}

	out := riscv.T0
	rr := func(op string) riscv.R {
		return riscv.R{Op: op, Out: [1]riscv.Reg{out}, In: [2]riscv.Reg{l, r}}
	}
	u := func(op string) riscv.U {
		return riscv.U{Op: op, Out: [1]riscv.Reg{out}, In: [1]riscv.Reg{out}}
	}

	switch x.Op {
	case ir.Add:
		fc.emit(rr("add"))
	case ir.Sub:
		fc.emit(rr("sub"))
	case ir.Mul:
		fc.emit(rr("mul"))
	case ir.Div:
		fc.emit(rr("div"))
	case ir.Mod:
		fc.emit(rr("rem"))
	case ir.And:
		fc.emit(rr("and"))
	case ir.Or:
		fc.emit(rr("or"))
	case ir.Xor:
		fc.emit(rr("xor"))
	case ir.Lt:
		fc.emit(rr("slt"))
	case ir.Gt:
		fc.emit(rr("sgt"))
	case ir.Le:
		fc.emit(rr("sgt"), u("seqz"))
	case ir.Ge:
		fc.emit(rr("slt"), u("seqz"))
	case ir.Eq:
		fc.emit(rr("xor"), u("seqz"))
	case ir.Ne:
		fc.emit(rr("xor"), u("snez"))
	default:
		return errors.Wrap(ErrUnsupportedInstruction, "binary op %v", x.Op)
	}

	dst, err := fc.slot(id)
	if err != nil {
		return err
	}

	fc.store(out, dst)

	return nil
}

// operand returns the register holding v, loading it into scratch if needed.
func (fc *funContext) operand(v ir.ValueID, scratch riscv.Reg) (riscv.Reg, error) {
	if x, ok := fc.blk.Value(v).(ir.Integer); ok && x.Value == 0 {
		return riscv.X0, nil
	}

	err := fc.materialize(v, scratch)
	if err != nil {
		return 0, err
	}

	return scratch, nil
}

// materialize puts v into reg.
func (fc *funContext) materialize(v ir.ValueID, reg riscv.Reg) error {
	switch x := fc.blk.Value(v).(type) {
	case ir.Integer:
		if x.Value == 0 {
			fc.emit(riscv.U{Op: "mv", Out: [1]riscv.Reg{reg}, In: [1]riscv.Reg{riscv.X0}})
			return nil
		}

		fc.emit(riscv.Li{Out: [1]riscv.Reg{reg}, Imm: int64(x.Value)})
	case ir.Load, ir.Binary:
		off, err := fc.slot(v)
		if err != nil {
			return err
		}

		fc.load(reg, off)
	default:
		return errors.Wrap(ErrUnsupportedInstruction, "operand %T", x)
	}

	return nil
}

func (fc *funContext) slot(id ir.ValueID) (int, error) {
	off, ok := fc.slots[id]
	if !ok {
		return 0, &StackOffsetError{Value: id, PC: loc.Caller(1)}
	}

	return off, nil
}

func (fc *funContext) load(reg riscv.Reg, off int) {
	if riscv.FitsImm(off) {
		fc.emit(riscv.Lw{Out: [1]riscv.Reg{reg}, Base: riscv.SP, Off: off})
		return
	}

	fc.address(off)
	fc.emit(riscv.Lw{Out: [1]riscv.Reg{reg}, Base: riscv.T3, Off: 0})
}

func (fc *funContext) store(reg riscv.Reg, off int) {
	if riscv.FitsImm(off) {
		fc.emit(riscv.Sw{In: [1]riscv.Reg{reg}, Base: riscv.SP, Off: off})
		return
	}

	fc.address(off)
	fc.emit(riscv.Sw{In: [1]riscv.Reg{reg}, Base: riscv.T3, Off: 0})
}

func (fc *funContext) address(off int) {
	fc.emit(
		riscv.Li{Out: [1]riscv.Reg{riscv.T3}, Imm: int64(off)},
		riscv.R{Op: "add", Out: [1]riscv.Reg{riscv.T3}, In: [2]riscv.Reg{riscv.T3, riscv.SP}},
	)
}

func (fc *funContext) adjustSP(d int) {
	if d == 0 {
		return
	}

	if riscv.FitsImm(d) {
		fc.emit(riscv.Addi{Out: [1]riscv.Reg{riscv.SP}, In: [1]riscv.Reg{riscv.SP}, Imm: d})
		return
	}

	fc.emit(
		riscv.Li{Out: [1]riscv.Reg{riscv.T0}, Imm: int64(d)},
		riscv.R{Op: "add", Out: [1]riscv.Reg{riscv.SP}, In: [2]riscv.Reg{riscv.SP, riscv.T0}},
	)
}

func (fc *funContext) emit(x ...asm.Instr) {
	fc.code = append(fc.code, x...)
}

func (e *StackOffsetError) Error() string {
	return fmt.Sprintf("stack offset not found for value %d (at %v)", int(e.Value), e.PC)
}

func align(x, a int) int {
	return (x + a - 1) / a * a
}
