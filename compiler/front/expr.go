package front

import (
	"context"

	"tlog.app/go/errors"

	"github.com/sixday-C/pku-minic/compiler/ast"
	"github.com/sixday-C/pku-minic/compiler/ir"
	"github.com/sixday-C/pku-minic/compiler/symtab"
)

var binOps = map[ast.Op]ir.Op{
	ast.Add: ir.Add,
	ast.Sub: ir.Sub,
	ast.Mul: ir.Mul,
	ast.Div: ir.Div,
	ast.Mod: ir.Mod,
	ast.Lt:  ir.Lt,
	ast.Gt:  ir.Gt,
	ast.Le:  ir.Le,
	ast.Ge:  ir.Ge,
	ast.Eq:  ir.Eq,
	ast.Ne:  ir.Ne,
}

// genExpr lowers x leaving its value in c.last.
func (c *Front) genExpr(ctx context.Context, x ast.Expr) (err error) {
	c.depth++
	defer func() { c.depth-- }()

	if c.MaxDepth > 0 && c.depth > c.MaxDepth {
		return errors.Wrap(ErrExpressionTooDeep, "limit %d", c.MaxDepth)
	}

	switch x := x.(type) {
	case *ast.Number:
		c.last = c.blk.Int(x.Value)
	case *ast.Ident:
		sym, err := c.syms.Lookup(x.Name)
		if err != nil {
			return err
		}

		if sym.Kind == symtab.Const {
			c.last = c.blk.Int(sym.Value)
			break
		}

		c.last = c.blk.Emit(ir.Load{
			Name: c.temp(),
			Src:  sym.Storage,
		})
	case *ast.UnaryExpr:
		return c.genUnary(ctx, x)
	case *ast.BinaryExpr:
		return c.genChain(ctx, x)
	case nil:
		return errors.New("missing expression")
	default:
		return errors.New("unsupported expression: %T", x)
	}

	return nil
}

func (c *Front) genUnary(ctx context.Context, x *ast.UnaryExpr) (err error) {
	err = c.genExpr(ctx, x.X)
	if err != nil {
		return err
	}

	switch x.Op {
	case ast.Add:
	case ast.Sub:
		c.last = c.binary(ir.Sub, c.blk.Int(0), c.last)
	case ast.Not:
		c.last = c.binary(ir.Eq, c.last, c.blk.Int(0))
	default:
		return errors.New("unsupported unary operator: %v", x.Op)
	}

	return nil
}

// genChain lowers x and the same-tier operators down its left operand
// in one loop, so flat chains do not count toward MaxDepth.
// Logical operators evaluate both operands unconditionally.
func (c *Front) genChain(ctx context.Context, x *ast.BinaryExpr) (err error) {
	chain := leftSpine(x)

	err = c.genExpr(ctx, chain[len(chain)-1].X)
	if err != nil {
		return err
	}

	for i := len(chain) - 1; i >= 0; i-- {
		e := chain[i]

		op, logical := ir.And, true

		switch e.Op {
		case ast.LAnd:
		case ast.LOr:
			op = ir.Or
		default:
			var ok bool

			op, ok = binOps[e.Op]
			if !ok {
				return errors.New("unsupported binary operator: %v", e.Op)
			}

			logical = false
		}

		l := c.last
		if logical {
			l = c.binary(ir.Ne, l, c.blk.Int(0))
		}

		err = c.genExpr(ctx, e.Y)
		if err != nil {
			return err
		}

		r := c.last
		if logical {
			r = c.binary(ir.Ne, r, c.blk.Int(0))
		}

		c.last = c.binary(op, l, r)
	}

	return nil
}

// leftSpine returns x followed by its left operands of the same tier,
// outermost first.
func leftSpine(x *ast.BinaryExpr) []*ast.BinaryExpr {
	chain := []*ast.BinaryExpr{x}

	for {
		l, ok := x.X.(*ast.BinaryExpr)
		if !ok || l.Op.Tier() != x.Op.Tier() {
			return chain
		}

		chain = append(chain, l)
		x = l
	}
}

func (c *Front) binary(op ir.Op, l, r ir.ValueID) ir.ValueID {
	return c.blk.Emit(ir.Binary{
		Name: c.temp(),
		Op:   op,
		L:    l,
		R:    r,
	})
}
