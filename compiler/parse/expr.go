package parse

import (
	"context"

	"tlog.app/go/errors"

	"github.com/sixday-C/pku-minic/compiler/ast"
)

type (
	Expr struct{}

	UnaryExpr struct{}

	Primary struct{}
)

var tiers = []Ops{
	{ast.LOr},
	{ast.LAnd},
	{ast.Eq, ast.Ne},
	{ast.Le, ast.Ge, ast.Lt, ast.Gt},
	{ast.Add, ast.Sub},
	{ast.Mul, ast.Div, ast.Mod},
}

var unaryOps = Ops{ast.Add, ast.Sub, ast.Not}

func (p Expr) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	var r Parser = UnaryExpr{}

	for j := len(tiers) - 1; j >= 0; j-- {
		r = LeftToRight{
			Op:  sp(tiers[j]),
			Arg: r,
		}
	}

	return r.Parse(ctx, b, st)
}

func (Expr) String() string { return "expression" }

func (p UnaryExpr) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	op, i, err := sp(unaryOps).Parse(ctx, b, st)
	if err != nil {
		return Primary{}.Parse(ctx, b, st)
	}

	pos := i - len(op.(ast.Op))

	s := StateFromContext(ctx)

	err = s.enter()
	if err != nil {
		return nil, i, err
	}

	defer s.exit()

	arg, i, err := p.Parse(ctx, b, i)
	if err != nil {
		return nil, i, errors.Wrap(err, "%v", op)
	}

	return &ast.UnaryExpr{
		Base: ast.Base{
			Pos: pos,
			End: i,
		},
		Op: op.(ast.Op),
		X:  arg.(ast.Expr),
	}, i, nil
}

func (UnaryExpr) String() string { return "unary expression" }

func (p Primary) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	i = SpaceAll.SkipComments(b, st)

	if i < len(b) && b[i] == '(' {
		s := StateFromContext(ctx)

		err = s.enter()
		if err != nil {
			return nil, i, err
		}

		defer s.exit()

		x, i, err = AllOf{Const("("), Expr{}, sp(Const(")"))}.Parse(ctx, b, i)
		if err != nil {
			return nil, i, err
		}

		return x.([]any)[1], i, nil
	}

	x, i, err = AnyOf{sp(Int{}), sp(Ident{})}.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	if name, ok := x.(string); ok {
		pos := SpaceAll.SkipComments(b, st)

		x = &ast.Ident{
			Base: ast.Base{
				Pos: pos,
				End: i,
			},
			Name: name,
		}
	}

	return x, i, nil
}

func (Primary) String() string { return "primary expression" }
