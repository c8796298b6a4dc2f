package front

import (
	"tlog.app/go/errors"

	"github.com/sixday-C/pku-minic/compiler/ast"
	"github.com/sixday-C/pku-minic/compiler/symtab"
)

// evalConst folds x in 32-bit two's complement arithmetic.
func (c *Front) evalConst(x ast.Expr, depth int) (v int32, err error) {
	if c.MaxDepth > 0 && depth >= c.MaxDepth {
		return 0, errors.Wrap(ErrExpressionTooDeep, "limit %d", c.MaxDepth)
	}

	switch x := x.(type) {
	case *ast.Number:
		return x.Value, nil
	case *ast.Ident:
		v, err = c.syms.LookupConst(x.Name)
		if errors.Is(err, symtab.ErrWrongSymbolKind) {
			return 0, errors.Wrap(ErrConstantEvaluation, "%v is not a constant", x.Name)
		}
		if err != nil {
			return 0, err
		}

		return v, nil
	case *ast.UnaryExpr:
		v, err = c.evalConst(x.X, depth+1)
		if err != nil {
			return 0, err
		}

		switch x.Op {
		case ast.Add:
			return v, nil
		case ast.Sub:
			return -v, nil
		case ast.Not:
			return b2i(v == 0), nil
		default:
			return 0, errors.Wrap(ErrConstantEvaluation, "unary operator %v", x.Op)
		}
	case *ast.BinaryExpr:
		chain := leftSpine(x)

		v, err = c.evalConst(chain[len(chain)-1].X, depth+1)
		if err != nil {
			return 0, err
		}

		for i := len(chain) - 1; i >= 0; i-- {
			r, err := c.evalConst(chain[i].Y, depth+1)
			if err != nil {
				return 0, err
			}

			v, err = foldBinary(chain[i].Op, v, r)
			if err != nil {
				return 0, err
			}
		}

		return v, nil
	case nil:
		return 0, errors.Wrap(ErrConstantEvaluation, "missing initializer")
	default:
		return 0, errors.Wrap(ErrConstantEvaluation, "unsupported expression %T", x)
	}
}

func foldBinary(op ast.Op, l, r int32) (int32, error) {
	switch op {
	case ast.Add:
		return l + r, nil
	case ast.Sub:
		return l - r, nil
	case ast.Mul:
		return l * r, nil
	case ast.Div, ast.Mod:
		if r == 0 {
			return 0, errors.Wrap(ErrConstantEvaluation, "%v by zero", op)
		}

		if op == ast.Div {
			return l / r, nil
		}

		return l % r, nil
	case ast.Lt:
		return b2i(l < r), nil
	case ast.Gt:
		return b2i(l > r), nil
	case ast.Le:
		return b2i(l <= r), nil
	case ast.Ge:
		return b2i(l >= r), nil
	case ast.Eq:
		return b2i(l == r), nil
	case ast.Ne:
		return b2i(l != r), nil
	case ast.LAnd:
		return b2i(l != 0 && r != 0), nil
	case ast.LOr:
		return b2i(l != 0 || r != 0), nil
	default:
		return 0, errors.Wrap(ErrConstantEvaluation, "binary operator %v", op)
	}
}

func b2i(x bool) int32 {
	if x {
		return 1
	}

	return 0
}
