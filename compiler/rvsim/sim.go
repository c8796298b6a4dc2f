package rvsim

import (
	"context"
	"encoding/binary"
	"math"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/sixday-C/pku-minic/compiler/asm/riscv"
)

type (
	Machine struct {
		Regs [riscv.NumRegs]int32
		Mem  []byte

		PC    int
		Steps int

		// MaxSteps stops runaway programs. Zero means DefaultMaxSteps.
		MaxSteps int

		prog *Program
	}
)

const (
	StackSize       = 64 << 10
	DefaultMaxSteps = 1 << 20

	// returnAddr is put into ra to detect the outermost ret.
	returnAddr = -1
)

var (
	ErrStepLimit = errors.New("step limit exceeded")
	ErrMemory    = errors.New("memory access out of range")
	ErrNotGlobal = errors.New("function is not global")
)

func New(p *Program) *Machine {
	return &Machine{
		Mem:  make([]byte, StackSize),
		prog: p,
	}
}

// Run assembles text and calls fn, returning its a0.
func Run(ctx context.Context, text []byte, fn string) (int32, error) {
	p, err := Parse(text)
	if err != nil {
		return 0, errors.Wrap(err, "parse")
	}

	return New(p).Call(ctx, fn)
}

func (m *Machine) Call(ctx context.Context, fn string) (res int32, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "rvsim: call", "func", fn)
	defer tr.Finish("res", &res, "steps", &m.Steps, "err", &err)

	pc, ok := m.prog.Labels[fn]
	if !ok {
		return 0, errors.New("no such function: %v", fn)
	}

	if _, ok := m.prog.Globls[fn]; !ok {
		return 0, errors.Wrap(ErrNotGlobal, "%v", fn)
	}

	m.PC = pc
	m.Regs[riscv.SP] = int32(len(m.Mem))
	m.Regs[riscv.RA] = returnAddr

	limit := m.MaxSteps
	if limit == 0 {
		limit = DefaultMaxSteps
	}

	for m.PC != returnAddr {
		if m.Steps >= limit {
			return 0, errors.Wrap(ErrStepLimit, "after %d steps", m.Steps)
		}

		err = m.Step()
		if err != nil {
			return 0, err
		}
	}

	return m.Regs[riscv.A0], nil
}

func (m *Machine) Step() (err error) {
	if m.PC < 0 || m.PC >= len(m.prog.Code) {
		return errors.New("pc out of code: %d", m.PC)
	}

	x := m.prog.Code[m.PC]
	m.PC++
	m.Steps++

	r := &m.Regs

	a, b := r[x.Rs1], r[x.Rs2]

	switch x.Op {
	case "add":
		m.set(x.Rd, a+b)
	case "sub":
		m.set(x.Rd, a-b)
	case "mul":
		m.set(x.Rd, a*b)
	case "div":
		switch {
		case b == 0:
			m.set(x.Rd, -1)
		case a == math.MinInt32 && b == -1:
			m.set(x.Rd, a)
		default:
			m.set(x.Rd, a/b)
		}
	case "rem":
		switch {
		case b == 0:
			m.set(x.Rd, a)
		case a == math.MinInt32 && b == -1:
			m.set(x.Rd, 0)
		default:
			m.set(x.Rd, a%b)
		}
	case "xor":
		m.set(x.Rd, a^b)
	case "and":
		m.set(x.Rd, a&b)
	case "or":
		m.set(x.Rd, a|b)
	case "slt":
		m.set(x.Rd, b2i(a < b))
	case "sgt":
		m.set(x.Rd, b2i(a > b))
	case "mv":
		m.set(x.Rd, a)
	case "seqz":
		m.set(x.Rd, b2i(a == 0))
	case "snez":
		m.set(x.Rd, b2i(a != 0))
	case "addi":
		m.set(x.Rd, a+int32(x.Imm))
	case "li":
		m.set(x.Rd, int32(x.Imm))
	case "lw":
		addr := int64(a) + x.Imm

		if addr < 0 || addr+4 > int64(len(m.Mem)) {
			return errors.Wrap(ErrMemory, "line %d: lw at %d", x.Line, addr)
		}

		m.set(x.Rd, int32(binary.LittleEndian.Uint32(m.Mem[addr:])))
	case "sw":
		addr := int64(a) + x.Imm

		if addr < 0 || addr+4 > int64(len(m.Mem)) {
			return errors.Wrap(ErrMemory, "line %d: sw at %d", x.Line, addr)
		}

		binary.LittleEndian.PutUint32(m.Mem[addr:], uint32(r[x.Rd]))
	case "ret":
		m.PC = int(r[riscv.RA])
	default:
		return errors.New("line %d: unsupported instruction %v", x.Line, x.Op)
	}

	return nil
}

func (m *Machine) set(rd riscv.Reg, v int32) {
	if rd == riscv.X0 {
		return
	}

	m.Regs[rd] = v
}

func b2i(x bool) int32 {
	if x {
		return 1
	}

	return 0
}
