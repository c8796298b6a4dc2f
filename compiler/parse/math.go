package parse

import (
	"context"

	"tlog.app/go/errors"

	"github.com/sixday-C/pku-minic/compiler/ast"
)

type (
	// Ops matches one of the operators, trying them in order.
	Ops []ast.Op

	LeftToRight struct {
		Op  Parser
		Arg Parser
	}
)

// operators sharing a prefix with a longer one
var opNot = map[ast.Op]string{
	ast.Lt:  "=",
	ast.Gt:  "=",
	ast.Not: "=",
}

func (p Ops) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	for _, op := range p {
		_, i, err = Token{Text: string(op), Not: opNot[op]}.Parse(ctx, b, st)
		if err == nil {
			return op, i, nil
		}
	}

	return nil, st, errors.New("expected %v", p)
}

func (p LeftToRight) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	x, i, err = p.Arg.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	for i < len(b) {
		var op any
		opst := i
		op, i, err = p.Op.Parse(ctx, b, i)
		if i == opst {
			err = nil
			break
		}
		if err != nil {
			return nil, i, errors.Wrap(err, "op")
		}

		var r any
		r, i, err = p.Arg.Parse(ctx, b, i)
		if err != nil {
			return nil, i, errors.Wrap(err, "%v: right operand", op)
		}

		x = &ast.BinaryExpr{
			Base: ast.Base{
				Pos: exprPos(x.(ast.Expr)),
				End: i,
			},
			Op: op.(ast.Op),
			X:  x.(ast.Expr),
			Y:  r.(ast.Expr),
		}
	}

	return
}

func exprPos(x ast.Expr) int {
	switch x := x.(type) {
	case *ast.BinaryExpr:
		return x.Pos
	case *ast.UnaryExpr:
		return x.Pos
	case *ast.Number:
		return x.Pos
	case *ast.Ident:
		return x.Pos
	default:
		return 0
	}
}
