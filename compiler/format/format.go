package format

import (
	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/sixday-C/pku-minic/compiler/ir"
)

// Program renders p in Koopa text form.
func Program(b []byte, p *ir.Program) (_ []byte, err error) {
	for i, f := range p.Funcs {
		if i != 0 {
			b = append(b, '\n')
		}

		b, err = Func(b, f)
		if err != nil {
			return nil, errors.Wrap(err, "func %v", f.Name)
		}
	}

	return b, nil
}

func Func(b []byte, f *ir.Func) (_ []byte, err error) {
	b = app(b, 0, "fun @%s()", f.Name)

	if f.Ret != ir.Unit {
		b = app(b, 0, ": %v", f.Ret)
	}

	b = append(b, " {\n"...)

	for _, blk := range f.Blocks {
		b = app(b, 0, "%%%s:\n", blk.Name)

		for _, id := range blk.Code {
			b, err = Instr(b, blk, id, 1)
			if err != nil {
				return nil, errors.Wrap(err, "block %v", blk.Name)
			}

			b = append(b, '\n')
		}
	}

	b = append(b, "}\n"...)

	return b, nil
}

// Instr renders one instruction without the trailing newline.
func Instr(b []byte, blk *ir.Block, id ir.ValueID, d int) ([]byte, error) {
	ref := blk.Ref

	switch x := blk.Value(id).(type) {
	case ir.Alloc:
		b = app(b, d, "%s = alloc i32", x.Name)
	case ir.Load:
		b = app(b, d, "%s = load %s", x.Name, ref(x.Src))
	case ir.Store:
		b = app(b, d, "store %s, %s", ref(x.Val), ref(x.Dst))
	case ir.Binary:
		b = app(b, d, "%s = %v %s, %s", x.Name, x.Op, ref(x.L), ref(x.R))
	case ir.Return:
		if x.Val == ir.Nil {
			b = app(b, d, "ret")
			break
		}

		b = app(b, d, "ret %s", ref(x.Val))
	default:
		return nil, errors.New("unsupported instruction: %T", x)
	}

	return b, nil
}

func app(b []byte, d int, f string, args ...any) []byte {
	const spaces = "                                "
	b = append(b, spaces[:2*d]...)
	b = hfmt.Appendf(b, f, args...)
	return b
}
