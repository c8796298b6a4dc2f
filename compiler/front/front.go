package front

import (
	"context"
	"strconv"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/sixday-C/pku-minic/compiler/ast"
	"github.com/sixday-C/pku-minic/compiler/ir"
	"github.com/sixday-C/pku-minic/compiler/symtab"
)

type (
	// Front lowers one AST into an IR program.
	Front struct {
		MaxDepth int

		syms *symtab.Table

		cursor
	}

	cursor struct {
		fn   *ir.Func
		blk  *ir.Block
		last ir.ValueID

		tmp   int
		depth int
		done  bool
	}
)

const DefaultMaxDepth = 1024

var (
	ErrConstantEvaluation = errors.New("constant evaluation failure")
	ErrAssignToConstant   = errors.Wrap(symtab.ErrWrongSymbolKind, "assign to constant")
	ErrExpressionTooDeep  = errors.New("expression too deep")
)

func New() *Front {
	return &Front{
		MaxDepth: DefaultMaxDepth,
	}
}

// Generate translates cu. No partial program is returned on failure.
func (c *Front) Generate(ctx context.Context, cu *ast.CompUnit) (p *ir.Program, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "front: generate")
	defer tr.Finish("err", &err)

	if cu == nil || cu.Func == nil {
		return nil, errors.New("empty compilation unit")
	}

	c.syms = symtab.New()
	c.cursor = cursor{}

	p = &ir.Program{}

	fn, err := c.genFunc(ctx, cu.Func)
	if err != nil {
		return nil, errors.Wrap(err, "func %v", cu.Func.Name)
	}

	p.Funcs = append(p.Funcs, fn)

	return p, nil
}

func (c *Front) genFunc(ctx context.Context, f *ast.FuncDef) (fn *ir.Func, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "front: func", "name", f.Name, "type", f.Type)
	defer tr.Finish("err", &err)

	fn = &ir.Func{
		Name: f.Name,
		Ret:  ir.I32,
	}

	switch f.Type {
	case ast.Int:
	case ast.Void:
		fn.Ret = ir.Unit
	default:
		return nil, errors.New("unsupported return type: %v", f.Type)
	}

	c.cursor = cursor{
		fn:   fn,
		blk:  fn.NewBlock("entry"),
		last: ir.Nil,
	}

	if f.Body == nil {
		return nil, errors.New("no body")
	}

	err = c.syms.Scoped(func() error {
		return c.genItems(ctx, f.Body.Items)
	})
	if err != nil {
		return nil, err
	}

	if !c.done {
		r := ir.Return{Val: ir.Nil}
		if fn.Ret == ir.I32 {
			r.Val = c.blk.Int(0)
		}

		c.blk.Emit(r)
		c.done = true

		tr.V("implicit_return").Printw("implicit return added")
	}

	if tr.If("dump_ir") {
		for _, id := range c.blk.Code {
			x := c.blk.Values[id]

			tr.Printw("code", "id", id, "name", ir.Name(x), "typ", tlog.NextAsType, x, "val", x)
		}
	}

	return fn, nil
}

func (c *Front) temp() string {
	n := c.tmp
	c.tmp++

	return "%" + strconv.Itoa(n)
}
