package ir

import (
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/sixday-C/pku-minic/compiler/set"
)

var ErrMalformed = errors.New("malformed ir")

func Verify(p *Program) error {
	if p == nil {
		return errors.Wrap(ErrMalformed, "nil program")
	}

	funcs := map[string]struct{}{}

	for _, f := range p.Funcs {
		if _, ok := funcs[f.Name]; ok {
			return errors.Wrap(ErrMalformed, "func %v: redefined", f.Name)
		}

		funcs[f.Name] = struct{}{}

		err := verifyFunc(f)
		if err != nil {
			return errors.Wrap(err, "func %v", f.Name)
		}
	}

	return nil
}

func verifyFunc(f *Func) error {
	if len(f.Blocks) != 1 {
		return errors.Wrap(ErrMalformed, "%d blocks", len(f.Blocks))
	}

	b := f.Entry()
	if b.Name != "entry" {
		return errors.Wrap(ErrMalformed, "block %q: entry expected", b.Name)
	}

	names := map[string]ValueID{}

	for id, v := range b.Values {
		n := Name(v)
		if n == "" {
			continue
		}

		if prev, ok := names[n]; ok {
			return errors.Wrap(ErrMalformed, "%v: name %v already used by %v", ValueID(id), n, prev)
		}

		names[n] = ValueID(id)
	}

	defined := set.MakeBits(ValueID(0))

	operand := func(at, id ValueID) error {
		if id < 0 || id >= at {
			return errors.Wrap(ErrMalformed, "%v: operand %v is not defined before use", at, id)
		}

		if !defined.IsSet(id) {
			if _, ok := b.Values[id].(Integer); !ok {
				return errors.Wrap(ErrMalformed, "%v: operand %v is not scheduled", at, id)
			}
		}

		if b.Values[id].Type() != I32 {
			return errors.Wrap(ErrMalformed, "%v: operand %v is %v, i32 expected", at, id, b.Values[id].Type())
		}

		return nil
	}

	address := func(at, id ValueID) error {
		if id < 0 || id >= at || !defined.IsSet(id) {
			return errors.Wrap(ErrMalformed, "%v: address %v is not defined before use", at, id)
		}

		if _, ok := b.Values[id].(Alloc); !ok {
			return errors.Wrap(ErrMalformed, "%v: address %v is not an alloc", at, id)
		}

		return nil
	}

	for i, id := range b.Code {
		if id < 0 || int(id) >= len(b.Values) {
			return errors.Wrap(ErrMalformed, "code[%d]: value %v out of arena", i, id)
		}

		if defined.IsSet(id) {
			return errors.Wrap(ErrMalformed, "code[%d]: %v scheduled twice", i, id)
		}

		var err error

		switch v := b.Values[id].(type) {
		case Alloc:
		case Load:
			err = address(id, v.Src)
		case Store:
			err = operand(id, v.Val)
			if err == nil {
				err = address(id, v.Dst)
			}
		case Binary:
			if !v.Op.Valid() {
				err = errors.Wrap(ErrMalformed, "%v: bad op %v", id, v.Op)
				break
			}

			err = operand(id, v.L)
			if err == nil {
				err = operand(id, v.R)
			}
		case Return:
			if i != len(b.Code)-1 {
				err = errors.Wrap(ErrMalformed, "code[%d]: return before the end of block", i)
				break
			}

			switch {
			case v.Val == Nil && f.Ret != Unit:
				err = errors.Wrap(ErrMalformed, "%v: value expected for %v function", id, f.Ret)
			case v.Val != Nil && f.Ret == Unit:
				err = errors.Wrap(ErrMalformed, "%v: unit function returns a value", id)
			case v.Val != Nil:
				err = operand(id, v.Val)
			}
		case Integer:
			err = errors.Wrap(ErrMalformed, "code[%d]: literal %v scheduled as instruction", i, v.Value)
		default:
			err = errors.Wrap(ErrMalformed, "code[%d]: unexpected value %T", i, v)
		}

		if err != nil {
			return err
		}

		defined.Set(id)
	}

	if _, ok := b.Terminator(); !ok {
		return errors.Wrap(ErrMalformed, "block %v: no terminating return", b.Name)
	}

	if tlog.If("dump_verify") {
		tlog.Printw("verified", "func", f.Name, "values", len(b.Values), "scheduled", defined.Size(), "defined", defined)
	}

	return nil
}
