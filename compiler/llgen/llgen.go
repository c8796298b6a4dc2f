package llgen

import (
	"context"
	"strings"

	llir "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/sixday-C/pku-minic/compiler/ir"
)

var ErrUnsupportedInstruction = errors.New("unsupported instruction")

var (
	arith = map[ir.Op]func(b *llir.Block, x, y value.Value) value.Value{
		ir.Add: func(b *llir.Block, x, y value.Value) value.Value { return b.NewAdd(x, y) },
		ir.Sub: func(b *llir.Block, x, y value.Value) value.Value { return b.NewSub(x, y) },
		ir.Mul: func(b *llir.Block, x, y value.Value) value.Value { return b.NewMul(x, y) },
		ir.Div: func(b *llir.Block, x, y value.Value) value.Value { return b.NewSDiv(x, y) },
		ir.Mod: func(b *llir.Block, x, y value.Value) value.Value { return b.NewSRem(x, y) },
		ir.And: func(b *llir.Block, x, y value.Value) value.Value { return b.NewAnd(x, y) },
		ir.Or:  func(b *llir.Block, x, y value.Value) value.Value { return b.NewOr(x, y) },
		ir.Xor: func(b *llir.Block, x, y value.Value) value.Value { return b.NewXor(x, y) },
	}

	preds = map[ir.Op]enum.IPred{
		ir.Lt: enum.IPredSLT,
		ir.Gt: enum.IPredSGT,
		ir.Le: enum.IPredSLE,
		ir.Ge: enum.IPredSGE,
		ir.Eq: enum.IPredEQ,
		ir.Ne: enum.IPredNE,
	}
)

// Generate lowers p into an LLVM module.
func Generate(ctx context.Context, p *ir.Program) (m *llir.Module, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "llgen: generate", "funcs", len(p.Funcs))
	defer tr.Finish("err", &err)

	m = llir.NewModule()

	for _, f := range p.Funcs {
		err = genFunc(ctx, m, f)
		if err != nil {
			return nil, errors.Wrap(err, "func %v", f.Name)
		}
	}

	return m, nil
}

// Compile renders p as LLVM IR text.
func Compile(ctx context.Context, b []byte, p *ir.Program) ([]byte, error) {
	m, err := Generate(ctx, p)
	if err != nil {
		return nil, err
	}

	return append(b, m.String()...), nil
}

func genFunc(ctx context.Context, m *llir.Module, f *ir.Func) error {
	var ret types.Type = types.I32
	if f.Ret == ir.Unit {
		ret = types.Void
	}

	lf := m.NewFunc(f.Name, ret)

	for _, blk := range f.Blocks {
		lb := lf.NewBlock(blk.Name)
		vals := make([]value.Value, len(blk.Values))

		get := func(id ir.ValueID) (value.Value, error) {
			if x, ok := blk.Value(id).(ir.Integer); ok {
				return constant.NewInt(types.I32, int64(x.Value)), nil
			}

			if id < 0 || int(id) >= len(vals) || vals[id] == nil {
				return nil, errors.New("value %v used before definition", id)
			}

			return vals[id], nil
		}

		for _, id := range blk.Code {
			var v value.Value

			switch x := blk.Values[id].(type) {
			case ir.Alloc:
				a := lb.NewAlloca(types.I32)
				a.SetName(strings.TrimPrefix(x.Name, "@"))

				v = a
			case ir.Load:
				src, err := get(x.Src)
				if err != nil {
					return err
				}

				v = lb.NewLoad(types.I32, src)
			case ir.Store:
				val, err := get(x.Val)
				if err != nil {
					return err
				}

				dst, err := get(x.Dst)
				if err != nil {
					return err
				}

				lb.NewStore(val, dst)
			case ir.Binary:
				l, err := get(x.L)
				if err != nil {
					return err
				}

				r, err := get(x.R)
				if err != nil {
					return err
				}

				if gen, ok := arith[x.Op]; ok {
					v = gen(lb, l, r)
					break
				}

				pred, ok := preds[x.Op]
				if !ok {
					return errors.Wrap(ErrUnsupportedInstruction, "binary op %v", x.Op)
				}

				v = lb.NewZExt(lb.NewICmp(pred, l, r), types.I32)
			case ir.Return:
				if x.Val == ir.Nil {
					lb.NewRet(nil)
					break
				}

				r, err := get(x.Val)
				if err != nil {
					return err
				}

				lb.NewRet(r)
			default:
				return errors.Wrap(ErrUnsupportedInstruction, "%T", x)
			}

			vals[id] = v
		}
	}

	return nil
}
