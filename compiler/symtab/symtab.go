package symtab

import (
	"strconv"

	"tlog.app/go/errors"

	"github.com/sixday-C/pku-minic/compiler/ir"
)

type (
	Kind int

	Symbol struct {
		Kind Kind

		Value   int32      // Const
		Storage ir.ValueID // Var: the Alloc reserving the slot
	}

	// Table is the scope stack of one compilation.
	Table struct {
		scopes []map[string]Symbol

		uniq map[string]int
	}
)

const (
	Const Kind = iota
	Var
)

var (
	ErrUndefinedSymbol     = errors.New("undefined symbol")
	ErrDuplicateDefinition = errors.New("duplicate definition")
	ErrWrongSymbolKind     = errors.New("wrong symbol kind")
	ErrScopeUnderflow      = errors.New("scope underflow")
)

func New() *Table {
	return &Table{
		uniq: map[string]int{},
	}
}

func (k Kind) String() string {
	switch k {
	case Const:
		return "const"
	case Var:
		return "var"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

func (t *Table) EnterScope() {
	t.scopes = append(t.scopes, map[string]Symbol{})
}

func (t *Table) ExitScope() error {
	if len(t.scopes) == 0 {
		return ErrScopeUnderflow
	}

	t.scopes[len(t.scopes)-1] = nil
	t.scopes = t.scopes[:len(t.scopes)-1]

	return nil
}

// Scoped runs f inside a fresh scope. The scope is closed even if f fails.
func (t *Table) Scoped(f func() error) (err error) {
	t.EnterScope()

	defer func() {
		e := t.ExitScope()
		if err == nil {
			err = e
		}
	}()

	return f()
}

func (t *Table) Depth() int { return len(t.scopes) }

func (t *Table) InsertConst(name string, v int32) error {
	return t.insert(name, Symbol{Kind: Const, Value: v})
}

func (t *Table) InsertVar(name string, storage ir.ValueID) error {
	return t.insert(name, Symbol{Kind: Var, Storage: storage})
}

func (t *Table) insert(name string, s Symbol) error {
	if len(t.scopes) == 0 {
		return errors.Wrap(ErrScopeUnderflow, "insert %v", name)
	}

	top := t.scopes[len(t.scopes)-1]

	if _, ok := top[name]; ok {
		return errors.Wrap(ErrDuplicateDefinition, "%v", name)
	}

	top[name] = s

	return nil
}

func (t *Table) Lookup(name string) (Symbol, error) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if s, ok := t.scopes[i][name]; ok {
			return s, nil
		}
	}

	return Symbol{}, errors.Wrap(ErrUndefinedSymbol, "%v", name)
}

func (t *Table) LookupConst(name string) (int32, error) {
	s, err := t.Lookup(name)
	if err != nil {
		return 0, err
	}

	if s.Kind != Const {
		return 0, errors.Wrap(ErrWrongSymbolKind, "%v is %v, const expected", name, s.Kind)
	}

	return s.Value, nil
}

func (t *Table) LookupVar(name string) (ir.ValueID, error) {
	s, err := t.Lookup(name)
	if err != nil {
		return ir.Nil, err
	}

	if s.Kind != Var {
		return ir.Nil, errors.Wrap(ErrWrongSymbolKind, "%v is %v, var expected", name, s.Kind)
	}

	return s.Storage, nil
}

// MakeUniqueName returns name_N where N counts the requests for name
// over the whole compilation.
func (t *Table) MakeUniqueName(name string) string {
	if t.uniq == nil {
		t.uniq = map[string]int{}
	}

	n := t.uniq[name]
	t.uniq[name] = n + 1

	return name + "_" + strconv.Itoa(n)
}
