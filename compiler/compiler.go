package compiler

import (
	"context"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/sixday-C/pku-minic/compiler/ast"
	"github.com/sixday-C/pku-minic/compiler/back"
	"github.com/sixday-C/pku-minic/compiler/config"
	"github.com/sixday-C/pku-minic/compiler/format"
	"github.com/sixday-C/pku-minic/compiler/front"
	"github.com/sixday-C/pku-minic/compiler/ir"
	"github.com/sixday-C/pku-minic/compiler/llgen"
	"github.com/sixday-C/pku-minic/compiler/parse"
)

func CompileFile(ctx context.Context, cfg config.Config, name string) (obj []byte, err error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return Compile(ctx, cfg, name, text)
}

// Compile translates source text into the output selected by cfg.Output.Mode.
func Compile(ctx context.Context, cfg config.Config, name string, text []byte) (obj []byte, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile", "name", name, "mode", cfg.Output.Mode)
	defer tr.Finish("err", &err)

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	st := parse.New()
	st.MaxDepth = cfg.Front.MaxDepth
	st.AddFile(name, text)

	cu, err := st.Parse(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "parse text")
	}

	return CompileAST(ctx, cfg, cu)
}

func CompileAST(ctx context.Context, cfg config.Config, cu *ast.CompUnit) (obj []byte, err error) {
	p, err := Lower(ctx, cfg, cu)
	if err != nil {
		return nil, err
	}

	switch cfg.Output.Mode {
	case config.ModeKoopa:
		obj, err = format.Program(nil, p)
	case config.ModeRISCV:
		bc := back.New()
		bc.Comments = cfg.Back.Comments

		obj, err = bc.CompileProgram(ctx, nil, p)
	case config.ModeLLVM:
		obj, err = llgen.Compile(ctx, nil, p)
	default:
		return nil, errors.Wrap(config.ErrBadConfig, "unknown output mode: %q", cfg.Output.Mode)
	}

	if err != nil {
		return nil, errors.Wrap(err, "emit %v", cfg.Output.Mode)
	}

	return obj, nil
}

// Lower generates and verifies the IR of cu.
func Lower(ctx context.Context, cfg config.Config, cu *ast.CompUnit) (*ir.Program, error) {
	fr := front.New()
	fr.MaxDepth = cfg.Front.MaxDepth

	p, err := fr.Generate(ctx, cu)
	if err != nil {
		return nil, errors.Wrap(err, "generate ir")
	}

	err = ir.Verify(p)
	if err != nil {
		return nil, errors.Wrap(err, "verify ir")
	}

	return p, nil
}
