package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/sixday-C/pku-minic/compiler"
	"github.com/sixday-C/pku-minic/compiler/config"
	"github.com/sixday-C/pku-minic/compiler/rvsim"
)

func main() {
	emitCmd := func(mode, desc string) *cli.Command {
		return &cli.Command{
			Name:        mode,
			Description: desc,
			Action:      emitAct(mode),
			Args:        cli.Args{},
			Flags: []*cli.Flag{
				cli.NewFlag("output,o", "", "output file, stdout if empty"),
			},
		}
	}

	runCmd := &cli.Command{
		Name:        "run",
		Description: "compile to RISC-V and execute main in the simulator",
		Action:      runAct,
		Args:        cli.Args{},
	}

	app := &cli.Command{
		Name:        "minic",
		Description: "minic compiles a SysY subset into Koopa IR, RISC-V or LLVM IR",
		Before:      before,
		Flags: []*cli.Flag{
			cli.NewFlag("config", "", "toml config file"),
			cli.NewFlag("verbosity,v", "", "logger verbosity topics"),
			cli.NewFlag("comments", false, "annotate assembly with source IR"),
			cli.NewFlag("max-depth", 0, "expression nesting limit"),
			cli.HelpFlag,
		},
		Commands: []*cli.Command{
			emitCmd(config.ModeKoopa, "emit Koopa IR text"),
			emitCmd(config.ModeRISCV, "emit RISC-V assembly"),
			emitCmd(config.ModeLLVM, "emit LLVM IR text"),
			runCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func before(c *cli.Command) error {
	tlog.SetVerbosity(c.String("verbosity"))

	return nil
}

func loadConfig(c *cli.Command) (cfg config.Config, err error) {
	cfg = config.Default()

	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			return cfg, err
		}
	}

	if c.Bool("comments") {
		cfg.Back.Comments = true
	}

	if d := c.Int("max-depth"); d > 0 {
		cfg.Front.MaxDepth = d
	}

	return cfg, nil
}

func emitAct(mode string) func(c *cli.Command) error {
	return func(c *cli.Command) (err error) {
		ctx := context.Background()
		ctx = tlog.ContextWithSpan(ctx, tlog.Root())

		cfg, err := loadConfig(c)
		if err != nil {
			return errors.Wrap(err, "config")
		}

		cfg.Output.Mode = mode

		if len(c.Args) != 1 {
			return errors.New("expected exactly one input file, got %d", len(c.Args))
		}

		a := c.Args[0]

		obj, err := compiler.CompileFile(ctx, cfg, a)
		if err != nil {
			failure("compile", err)
			return errors.Wrap(err, "compile %v", a)
		}

		out := c.String("output")
		if out == "" {
			_, err = os.Stdout.Write(obj)
			return err
		}

		err = os.WriteFile(out, obj, 0o644)
		if err != nil {
			return errors.Wrap(err, "write output")
		}

		success("Successfully generated " + out)

		return nil
	}
}

func runAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	cfg, err := loadConfig(c)
	if err != nil {
		return errors.Wrap(err, "config")
	}

	cfg.Output.Mode = config.ModeRISCV

	for _, a := range c.Args {
		obj, err := compiler.CompileFile(ctx, cfg, a)
		if err != nil {
			failure("compile", err)
			return errors.Wrap(err, "compile %v", a)
		}

		res, err := rvsim.Run(ctx, obj, "main")
		if err != nil {
			failure("run", err)
			return errors.Wrap(err, "run %v", a)
		}

		success(fmt.Sprintf("%v: main returned %d", a, res))
	}

	return nil
}

func success(msg string) {
	pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack).Print(" OK ")
	pterm.FgLightGreen.Println(" " + msg)
}

func failure(stage string, err error) {
	pterm.NewStyle(pterm.BgRed, pterm.FgWhite).Print(" " + stage + " ")
	pterm.FgRed.Println(" " + err.Error())
}
