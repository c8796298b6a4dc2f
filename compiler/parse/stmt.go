package parse

import (
	"context"

	"tlog.app/go/errors"

	"github.com/sixday-C/pku-minic/compiler/ast"
)

type (
	CompUnit struct{}

	FuncDef struct{}

	Block struct{}

	BlockItem struct{}

	ConstDecl struct{}

	VarDecl struct{}

	Stmt struct{}

	ReturnStmt struct{}

	AssignStmt struct{}

	ExprStmt struct{}

	constDef struct{}

	varDef struct{}
)

var assignOp = Token{Text: "=", Not: "="}

func (p CompUnit) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	pos := SpaceAll.SkipComments(b, st)

	x, i, err = FuncDef{}.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	return &ast.CompUnit{
		Base: ast.Base{Pos: pos, End: i},
		Func: x.(*ast.FuncDef),
	}, i, nil
}

func (p FuncDef) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	pos := SpaceAll.SkipComments(b, st)

	x, i, err = AllOf{
		sp(AnyOf{Word(ast.Int), Word(ast.Void)}),
		sp(Ident{}),
		sp(Const("(")),
		sp(Const(")")),
		Block{},
	}.Parse(ctx, b, st)
	if err != nil {
		return nil, i, errors.Wrap(err, "function definition")
	}

	l := x.([]any)

	return &ast.FuncDef{
		Base: ast.Base{Pos: pos, End: i},
		Type: ast.FuncType(l[0].(Word)),
		Name: l[1].(string),
		Body: l[4].(*ast.Block),
	}, i, nil
}

func (FuncDef) String() string { return "function definition" }

func (p Block) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	pos := SpaceAll.SkipComments(b, st)

	x, i, err = AllOf{
		sp(Const("{")),
		Many{Of: BlockItem{}},
		sp(Const("}")),
	}.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	blk := &ast.Block{
		Base: ast.Base{Pos: pos, End: i},
	}

	items, _ := x.([]any)[1].([]any)

	for _, it := range items {
		blk.Items = append(blk.Items, it.(ast.BlockItem))
	}

	return blk, i, nil
}

func (Block) String() string { return "block" }

func (p BlockItem) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	return AnyOf{ConstDecl{}, VarDecl{}, Stmt{}}.Parse(ctx, b, st)
}

func (BlockItem) String() string { return "block item" }

func (p ConstDecl) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	pos := SpaceAll.SkipComments(b, st)

	x, i, err = AllOf{
		sp(Word("const")),
		sp(Word(ast.Int)),
		List{Of: constDef{}, Sep: sp(Const(","))},
		sp(Const(";")),
	}.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	d := &ast.ConstDecl{
		Base: ast.Base{Pos: pos, End: i},
	}

	for _, def := range x.([]any)[2].([]any) {
		d.Defs = append(d.Defs, def.(ast.ConstDef))
	}

	return d, i, nil
}

func (ConstDecl) String() string { return "const declaration" }

func (p constDef) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	pos := SpaceAll.SkipComments(b, st)

	x, i, err = AllOf{sp(Ident{}), sp(assignOp), Expr{}}.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	l := x.([]any)

	return ast.ConstDef{
		Base: ast.Base{Pos: pos, End: i},
		Name: l[0].(string),
		Init: l[2].(ast.Expr),
	}, i, nil
}

func (constDef) String() string { return "const definition" }

func (p VarDecl) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	pos := SpaceAll.SkipComments(b, st)

	x, i, err = AllOf{
		sp(Word(ast.Int)),
		List{Of: varDef{}, Sep: sp(Const(","))},
		sp(Const(";")),
	}.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	d := &ast.VarDecl{
		Base: ast.Base{Pos: pos, End: i},
	}

	for _, def := range x.([]any)[1].([]any) {
		d.Defs = append(d.Defs, def.(ast.VarDef))
	}

	return d, i, nil
}

func (VarDecl) String() string { return "variable declaration" }

func (p varDef) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	pos := SpaceAll.SkipComments(b, st)

	x, i, err = AllOf{
		sp(Ident{}),
		Optional{AllOf{sp(assignOp), Expr{}}},
	}.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	l := x.([]any)

	d := ast.VarDef{
		Base: ast.Base{Pos: pos, End: i},
		Name: l[0].(string),
	}

	if init, ok := l[1].([]any); ok {
		d.Init = init[1].(ast.Expr)
	}

	return d, i, nil
}

func (varDef) String() string { return "variable definition" }

func (p Stmt) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	i = SpaceAll.SkipComments(b, st)

	if i < len(b) && b[i] == '{' {
		x, i, err = Block{}.Parse(ctx, b, st)
		if err != nil {
			return nil, i, err
		}

		blk := x.(*ast.Block)

		return &ast.BlockStmt{Base: blk.Base, Block: blk}, i, nil
	}

	return AnyOf{ReturnStmt{}, AssignStmt{}, ExprStmt{}}.Parse(ctx, b, st)
}

func (Stmt) String() string { return "statement" }

func (p ReturnStmt) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	pos := SpaceAll.SkipComments(b, st)

	x, i, err = AllOf{
		sp(Word("return")),
		Optional{Expr{}},
		sp(Const(";")),
	}.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	r := &ast.ReturnStmt{
		Base: ast.Base{Pos: pos, End: i},
	}

	if e, ok := x.([]any)[1].(ast.Expr); ok {
		r.Exp = e
	}

	return r, i, nil
}

func (ReturnStmt) String() string { return "return statement" }

func (p AssignStmt) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	pos := SpaceAll.SkipComments(b, st)

	x, i, err = AllOf{
		sp(Ident{}),
		sp(assignOp),
		Expr{},
		sp(Const(";")),
	}.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	l := x.([]any)

	return &ast.AssignStmt{
		Base: ast.Base{Pos: pos, End: i},
		LVal: &ast.Ident{
			Base: ast.Base{Pos: pos, End: pos + len(l[0].(string))},
			Name: l[0].(string),
		},
		Exp: l[2].(ast.Expr),
	}, i, nil
}

func (AssignStmt) String() string { return "assignment" }

func (p ExprStmt) Parse(ctx context.Context, b []byte, st int) (x any, i int, err error) {
	pos := SpaceAll.SkipComments(b, st)

	x, i, err = AllOf{
		Optional{Expr{}},
		sp(Const(";")),
	}.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	s := &ast.ExprStmt{
		Base: ast.Base{Pos: pos, End: i},
	}

	if e, ok := x.([]any)[0].(ast.Expr); ok {
		s.Exp = e
	}

	return s, i, nil
}

func (ExprStmt) String() string { return "expression statement" }
