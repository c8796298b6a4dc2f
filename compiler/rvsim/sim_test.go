package rvsim

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	text := `
  .text
  .globl main
main:
  addi sp, sp, -16
  li t0, 6     # comment
  li t1, 7
  mul t0, t0, t1
  sw t0, 4(sp)
  lw a0, 4(sp)
  addi sp, sp, 16
  ret
`

	v, err := Run(context.Background(), []byte(text), "main")
	require.NoError(t, err)
	assert.Equal(t, int32(42), v)
}

func TestOps(t *testing.T) {
	for _, tc := range []struct {
		op   string
		a, b int32
		want int32
	}{
		{"add", 2, 3, 5},
		{"sub", 2, 3, -1},
		{"add", math.MaxInt32, 1, math.MinInt32},
		{"div", 7, -2, -3},
		{"div", 7, 0, -1},
		{"div", math.MinInt32, -1, math.MinInt32},
		{"rem", 7, -2, 1},
		{"rem", 7, 0, 7},
		{"rem", math.MinInt32, -1, 0},
		{"slt", 1, 2, 1},
		{"sgt", 1, 2, 0},
		{"xor", 6, 3, 5},
		{"and", 6, 3, 2},
		{"or", 6, 3, 7},
	} {
		m := New(&Program{
			Labels: map[string]int{"f": 0},
			Globls: map[string]struct{}{"f": {}},
			Code: []Inst{
				{Op: tc.op, Rd: 10, Rs1: 5, Rs2: 6},
				{Op: "ret"},
			},
		})

		m.Regs[5], m.Regs[6] = tc.a, tc.b

		v, err := m.Call(context.Background(), "f")
		require.NoError(t, err)
		assert.Equal(t, tc.want, v, "%v %d %d", tc.op, tc.a, tc.b)
	}
}

func TestZeroRegister(t *testing.T) {
	v, err := Run(context.Background(), []byte("  .globl f\nf:\n  li x0, 5\n  mv a0, zero\n  seqz a0, a0\n  ret\n"), "f")
	require.NoError(t, err)
	assert.Equal(t, int32(1), v)
}

func TestErrors(t *testing.T) {
	_, err := Run(context.Background(), []byte("  .globl f\nf:\n  jal foo\n"), "f")
	assert.Error(t, err)

	_, err = Run(context.Background(), []byte("  .globl f\nf:\n  lw a0, 0(sp)\n  ret\n"), "f")
	assert.ErrorIs(t, err, ErrMemory)

	_, err = Run(context.Background(), []byte("  .globl f\nf:\n  ret\n"), "g")
	assert.Error(t, err)

	_, err = Run(context.Background(), []byte("  .globl f\nf:\n  ret\ng:\n  ret\n"), "g")
	assert.ErrorIs(t, err, ErrNotGlobal)

	_, err = Run(context.Background(), []byte("  .globl f\nf:\n  add a0, a0\n"), "f")
	assert.Error(t, err)

	p, err := Parse([]byte("  .globl f\nf:\n  addi a0, a0, 1\n  mv ra, x0\n  ret\n"))
	require.NoError(t, err)

	m := New(p)
	m.MaxSteps = 100

	_, err = m.Call(context.Background(), "f")
	assert.ErrorIs(t, err, ErrStepLimit)
}
