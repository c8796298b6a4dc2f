package rvsim

import (
	"strconv"
	"strings"

	"tlog.app/go/errors"

	"github.com/sixday-C/pku-minic/compiler/asm/riscv"
)

type (
	Program struct {
		Code   []Inst
		Labels map[string]int
		Globls map[string]struct{}
	}

	Inst struct {
		Op   string
		Rd   riscv.Reg
		Rs1  riscv.Reg
		Rs2  riscv.Reg
		Imm  int64
		Line int
	}
)

// Parse reads the assembly subset emitted by the back end.
func Parse(text []byte) (*Program, error) {
	p := &Program{
		Labels: map[string]int{},
		Globls: map[string]struct{}{},
	}

	for n, raw := range strings.Split(string(text), "\n") {
		line := stripComment(raw)
		if line == "" {
			continue
		}

		if strings.HasSuffix(line, ":") {
			name := strings.TrimSuffix(line, ":")

			if _, ok := p.Labels[name]; ok {
				return nil, errors.New("line %d: label %v redefined", n+1, name)
			}

			p.Labels[name] = len(p.Code)

			continue
		}

		if strings.HasPrefix(line, ".") {
			f := strings.Fields(line)
			if f[0] == ".globl" || f[0] == ".global" {
				for _, g := range f[1:] {
					p.Globls[strings.Trim(g, ",")] = struct{}{}
				}
			}

			continue
		}

		x, err := parseLine(line, n+1)
		if err != nil {
			return nil, err
		}

		p.Code = append(p.Code, x)
	}

	return p, nil
}

func parseLine(line string, n int) (x Inst, err error) {
	x.Line = n

	op, rest := line, ""
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		op, rest = line[:i], line[i+1:]
	}

	x.Op = op

	var args []string

	if rest = strings.TrimSpace(rest); rest != "" {
		for _, a := range strings.Split(rest, ",") {
			args = append(args, strings.TrimSpace(a))
		}
	}

	want := func(k int) error {
		if len(args) != k {
			return errors.New("line %d: %v: %d operands expected, got %d", n, op, k, len(args))
		}

		return nil
	}

	reg := func(s string) (riscv.Reg, error) {
		r, ok := riscv.ParseReg(s)
		if !ok {
			return 0, errors.New("line %d: bad register %q", n, s)
		}

		return r, nil
	}

	switch {
	case riscv.IsROp(op):
		if err = want(3); err != nil {
			return
		}

		if x.Rd, err = reg(args[0]); err != nil {
			return
		}
		if x.Rs1, err = reg(args[1]); err != nil {
			return
		}
		if x.Rs2, err = reg(args[2]); err != nil {
			return
		}
	case riscv.IsUOp(op):
		if err = want(2); err != nil {
			return
		}

		if x.Rd, err = reg(args[0]); err != nil {
			return
		}
		if x.Rs1, err = reg(args[1]); err != nil {
			return
		}
	case op == "addi":
		if err = want(3); err != nil {
			return
		}

		if x.Rd, err = reg(args[0]); err != nil {
			return
		}
		if x.Rs1, err = reg(args[1]); err != nil {
			return
		}

		x.Imm, err = imm(args[2], n)
	case op == "li":
		if err = want(2); err != nil {
			return
		}

		if x.Rd, err = reg(args[0]); err != nil {
			return
		}

		x.Imm, err = imm(args[1], n)
	case op == "lw", op == "sw":
		if err = want(2); err != nil {
			return
		}

		if x.Rd, err = reg(args[0]); err != nil {
			return
		}

		off, base, ok := strings.Cut(args[1], "(")
		if !ok || !strings.HasSuffix(base, ")") {
			return x, errors.New("line %d: bad address %q", n, args[1])
		}

		if x.Rs1, err = reg(strings.TrimSuffix(base, ")")); err != nil {
			return
		}

		x.Imm, err = imm(off, n)
	case op == "ret":
		err = want(0)
	default:
		err = errors.New("line %d: unknown instruction %q", n, op)
	}

	return
}

func imm(s string, n int) (int64, error) {
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, errors.New("line %d: bad immediate %q", n, s)
	}

	return v, nil
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}

	return strings.TrimSpace(line)
}
