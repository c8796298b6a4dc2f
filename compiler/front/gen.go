package front

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/sixday-C/pku-minic/compiler/ast"
	"github.com/sixday-C/pku-minic/compiler/ir"
	"github.com/sixday-C/pku-minic/compiler/symtab"
)

func (c *Front) genItems(ctx context.Context, items []ast.BlockItem) (err error) {
	for i, x := range items {
		if c.done {
			tlog.SpanFromContext(ctx).V("unreachable").Printw("skip unreachable items", "from", i, "total", len(items))
			return nil
		}

		switch x := x.(type) {
		case *ast.ConstDecl:
			err = c.genConstDecl(ctx, x)
		case *ast.VarDecl:
			err = c.genVarDecl(ctx, x)
		case ast.Stmt:
			err = c.genStmt(ctx, x)
		default:
			err = errors.New("unsupported block item: %T", x)
		}

		if err != nil {
			return errors.Wrap(err, "item %d", i)
		}
	}

	return nil
}

func (c *Front) genConstDecl(ctx context.Context, x *ast.ConstDecl) error {
	for _, d := range x.Defs {
		v, err := c.evalConst(d.Init, 0)
		if err != nil {
			return errors.Wrap(err, "const %v", d.Name)
		}

		err = c.syms.InsertConst(d.Name, v)
		if err != nil {
			return err
		}
	}

	return nil
}

func (c *Front) genVarDecl(ctx context.Context, x *ast.VarDecl) error {
	for _, d := range x.Defs {
		slot := c.blk.Emit(ir.Alloc{
			Name: "@" + c.syms.MakeUniqueName(d.Name),
		})

		err := c.syms.InsertVar(d.Name, slot)
		if err != nil {
			return err
		}

		if d.Init == nil {
			continue
		}

		err = c.genExpr(ctx, d.Init)
		if err != nil {
			return errors.Wrap(err, "var %v", d.Name)
		}

		c.blk.Emit(ir.Store{Val: c.last, Dst: slot})
	}

	return nil
}

func (c *Front) genStmt(ctx context.Context, x ast.Stmt) (err error) {
	switch x := x.(type) {
	case *ast.AssignStmt:
		dst, err := c.syms.LookupVar(x.LVal.Name)
		if errors.Is(err, symtab.ErrWrongSymbolKind) {
			return errors.Wrap(ErrAssignToConstant, "%v", x.LVal.Name)
		}
		if err != nil {
			return err
		}

		err = c.genExpr(ctx, x.Exp)
		if err != nil {
			return errors.Wrap(err, "assign %v", x.LVal.Name)
		}

		c.blk.Emit(ir.Store{Val: c.last, Dst: dst})
	case *ast.ExprStmt:
		if x.Exp == nil {
			return nil
		}

		return c.genExpr(ctx, x.Exp)
	case *ast.BlockStmt:
		if x.Block == nil {
			return nil
		}

		return c.syms.Scoped(func() error {
			return c.genItems(ctx, x.Block.Items)
		})
	case *ast.ReturnStmt:
		return c.genReturn(ctx, x)
	default:
		return errors.New("unsupported statement: %T", x)
	}

	return nil
}

func (c *Front) genReturn(ctx context.Context, x *ast.ReturnStmt) error {
	r := ir.Return{Val: ir.Nil}

	switch {
	case x.Exp != nil && c.fn.Ret == ir.Unit:
		return errors.New("return with a value in void function")
	case x.Exp == nil && c.fn.Ret != ir.Unit:
		return errors.New("return without a value in %v function", c.fn.Ret)
	case x.Exp != nil:
		err := c.genExpr(ctx, x.Exp)
		if err != nil {
			return errors.Wrap(err, "return")
		}

		r.Val = c.last
	}

	c.blk.Emit(r)
	c.done = true

	return nil
}
