package riscv

import (
	"fmt"
	"strconv"
	"strings"

	"tlog.app/go/errors"

	"github.com/sixday-C/pku-minic/compiler/asm"
)

type (
	Reg int

	// R is a register-register operation: add sub mul div rem xor and or slt sgt.
	R struct {
		Op  string
		Out [1]Reg
		In  [2]Reg
	}

	// U is a one-operand pseudo instruction: mv seqz snez.
	U struct {
		Op  string
		Out [1]Reg
		In  [1]Reg
	}

	Addi struct {
		Out [1]Reg
		In  [1]Reg
		Imm int
	}

	Li struct {
		Out [1]Reg
		Imm int64
	}

	Lw struct {
		Out  [1]Reg
		Base Reg
		Off  int
	}

	Sw struct {
		In   [1]Reg
		Base Reg
		Off  int
	}

	Ret struct{}
)

const (
	X0 Reg = iota
	RA
	SP
	GP
	TP
	T0
	T1
	T2
	S0
	S1
	A0
	A1
	A2
	A3
	A4
	A5
	A6
	A7
	S2
	S3
	S4
	S5
	S6
	S7
	S8
	S9
	S10
	S11
	T3
	T4
	T5
	T6

	NumRegs
)

const (
	ImmMin = -2048
	ImmMax = 2047
)

var regNames = [NumRegs]string{
	"x0", "ra", "sp", "gp", "tp",
	"t0", "t1", "t2",
	"s0", "s1",
	"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7",
	"s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9", "s10", "s11",
	"t3", "t4", "t5", "t6",
}

var (
	rOps = map[string]struct{}{
		"add": {}, "sub": {}, "mul": {}, "div": {}, "rem": {},
		"xor": {}, "and": {}, "or": {}, "slt": {}, "sgt": {},
	}

	uOps = map[string]struct{}{
		"mv": {}, "seqz": {}, "snez": {},
	}
)

func (r Reg) String() string {
	if r < 0 || r >= NumRegs {
		return fmt.Sprintf("reg(%d)", int(r))
	}

	return regNames[r]
}

// ParseReg accepts both ABI names and xN.
func ParseReg(s string) (Reg, bool) {
	for i, n := range regNames {
		if n == s {
			return Reg(i), true
		}
	}

	if s == "zero" {
		return X0, true
	}

	if s == "fp" {
		return S0, true
	}

	if rest, ok := strings.CutPrefix(s, "x"); ok {
		n, err := strconv.Atoi(rest)
		if err == nil && n >= 0 && n < int(NumRegs) && strconv.Itoa(n) == rest {
			return Reg(n), true
		}
	}

	return 0, false
}

func FitsImm(v int) bool { return v >= ImmMin && v <= ImmMax }

func IsROp(op string) bool {
	_, ok := rOps[op]
	return ok
}

func IsUOp(op string) bool {
	_, ok := uOps[op]
	return ok
}

// Append renders one instruction line including the newline.
func Append(b []byte, x asm.Instr) ([]byte, error) {
	switch x := x.(type) {
	case asm.Directive:
		b = fmt.Appendf(b, "  .%s", x.Name)

		if len(x.Args) != 0 {
			b = fmt.Appendf(b, " %s", strings.Join(x.Args, ", "))
		}
	case asm.Label:
		b = fmt.Appendf(b, "%s:", string(x))
	case asm.Comment:
		b = fmt.Appendf(b, "  # %s", string(x))
	case R:
		if !IsROp(x.Op) {
			return nil, errors.New("unsupported instruction: %v", x.Op)
		}

		b = fmt.Appendf(b, "  %s %v, %v, %v", x.Op, x.Out[0], x.In[0], x.In[1])
	case U:
		if !IsUOp(x.Op) {
			return nil, errors.New("unsupported instruction: %v", x.Op)
		}

		b = fmt.Appendf(b, "  %s %v, %v", x.Op, x.Out[0], x.In[0])
	case Addi:
		b = fmt.Appendf(b, "  addi %v, %v, %d", x.Out[0], x.In[0], x.Imm)
	case Li:
		b = fmt.Appendf(b, "  li %v, %d", x.Out[0], x.Imm)
	case Lw:
		b = fmt.Appendf(b, "  lw %v, %d(%v)", x.Out[0], x.Off, x.Base)
	case Sw:
		b = fmt.Appendf(b, "  sw %v, %d(%v)", x.In[0], x.Off, x.Base)
	case Ret:
		b = append(b, "  ret"...)
	default:
		return nil, errors.New("unsupported instruction: %T", x)
	}

	b = append(b, '\n')

	return b, nil
}

func AppendFunc(b []byte, f asm.Func) (_ []byte, err error) {
	for i, x := range f.Body {
		b, err = Append(b, x)
		if err != nil {
			return nil, errors.Wrap(err, "%v: instr %d", f.Name, i)
		}
	}

	return b, nil
}
