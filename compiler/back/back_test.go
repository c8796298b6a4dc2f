package back

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sixday-C/pku-minic/compiler/front"
	"github.com/sixday-C/pku-minic/compiler/ir"
	"github.com/sixday-C/pku-minic/compiler/parse"
	"github.com/sixday-C/pku-minic/compiler/rvsim"
)

func lower(t *testing.T, src string) *ir.Program {
	t.Helper()

	ctx := context.Background()

	cu, err := parse.Parse(ctx, []byte(src))
	require.NoError(t, err)

	p, err := front.New().Generate(ctx, cu)
	require.NoError(t, err)
	require.NoError(t, ir.Verify(p))

	return p
}

func compile(t *testing.T, src string) string {
	t.Helper()

	obj, err := New().CompileProgram(context.Background(), nil, lower(t, src))
	require.NoError(t, err)

	return string(obj)
}

func run(t *testing.T, src string) int32 {
	t.Helper()

	text := compile(t, src)

	v, err := rvsim.Run(context.Background(), []byte(text), "main")
	require.NoError(t, err, "asm:\n%s", text)

	return v
}

func TestSmoke(t *testing.T) {
	assert.Equal(t, `  .text
  .globl main
main:
  li a0, 7
  ret
`, compile(t, "int main() { const int c = 1 + 2 * 3; return c; }"))

	assert.Equal(t, `  .text
  .globl main
main:
  mv a0, x0
  ret
`, compile(t, "int main() { return 0; }"))
}

func TestBinary(t *testing.T) {
	assert.Equal(t, `  .text
  .globl main
main:
  addi sp, sp, -16
  li t0, 6
  xor t0, t0, x0
  seqz t0, t0
  sw t0, 0(sp)
  lw a0, 0(sp)
  addi sp, sp, 16
  ret
`, compile(t, "int main() { return 6 == 0; }"))
}

func TestVariables(t *testing.T) {
	assert.Equal(t, `  .text
  .globl main
main:
  addi sp, sp, -16
  li t0, 5
  sw t0, 0(sp)
  lw t0, 0(sp)
  sw t0, 4(sp)
  lw t0, 4(sp)
  li t1, 2
  sub t0, t0, t1
  sw t0, 8(sp)
  lw a0, 8(sp)
  addi sp, sp, 16
  ret
`, compile(t, "int main() { int x = 5; return x - 2; }"))
}

func TestComments(t *testing.T) {
	c := &Compiler{Comments: true}

	obj, err := c.CompileProgram(context.Background(), nil, lower(t, "int main() { return 1 + 2; }"))
	require.NoError(t, err)

	assert.Contains(t, string(obj), "  # %0 = add 1, 2\n")
	assert.Contains(t, string(obj), "  # ret %0\n")

	v, err := rvsim.Run(context.Background(), obj, "main")
	require.NoError(t, err)
	assert.Equal(t, int32(3), v)
}

func TestExecute(t *testing.T) {
	for _, tc := range []struct {
		src  string
		want int32
	}{
		{"return 1 + 2 * 3;", 7},
		{"return -(!0);", -1},
		{"return 1 || (1 / 0);", 1},
		{"return 0 && (1 % 0);", 0},
		{"int x = 1; { int x = 2; } return x;", 1},
		{"int x = 1; { x = 2; } return x;", 2},
		{"int a = 10, b = 3; return a / b * b + a % b == a;", 1},
		{"int a = -7; return a / 2 + a % 2;", -4},
		{"int a = 3; return (a < 4) + (a > 4) * 10 + (a <= 3) * 100 + (a >= 4) * 1000;", 101},
		{"int a = 3; return (a != 3) + (a == 3) * 2;", 2},
		{"int a = 2147483647; return a + 1;", -2147483648},
		{"int a = 5; a = a * a; a = a - 1; return a;", 24},
		{"const int n = 100000; int a = n; return a * 2;", 200000},
		{"int a; a = 7; ; a; { } return !a;", 0},
	} {
		v := run(t, "int main() { "+tc.src+" }")
		assert.Equal(t, tc.want, v, tc.src)
	}
}

func TestFrameSize(t *testing.T) {
	for _, src := range []string{
		"int main() { return 0; }",
		"int main() { return 1 + 2; }",
		"int main() { int a = 1, b = 2, c = 3, d = 4; return a + b + c + d; }",
		"int main() { int x; { int x; { int x; } } return 5; }",
	} {
		p := lower(t, src)
		f := p.Funcs[0]

		n := 0
		for _, id := range f.Blocks[0].Code {
			if ir.NeedsSlot(f.Blocks[0].Values[id]) {
				n++
			}
		}

		size := FrameSize(f)

		assert.GreaterOrEqual(t, size, 0, src)
		assert.Zero(t, size%16, src)
		assert.GreaterOrEqual(t, size, 4*n, src)
		assert.Less(t, size, 4*n+16, src)
	}
}

func TestLargeFrame(t *testing.T) {
	var b strings.Builder

	b.WriteString("int main() { int a = 1;")

	for i := 0; i < 600; i++ {
		b.WriteString(" a = a + 1;")
	}

	b.WriteString(" return a; }")

	p := lower(t, b.String())
	assert.Greater(t, FrameSize(p.Funcs[0]), 2048)

	obj, err := New().CompileProgram(context.Background(), nil, p)
	require.NoError(t, err)

	text := string(obj)

	assert.Contains(t, text, "  add sp, sp, t0\n")
	assert.Contains(t, text, "  add t3, t3, sp\n")

	v, err := rvsim.Run(context.Background(), obj, "main")
	require.NoError(t, err)
	assert.Equal(t, int32(601), v)
}

func TestUnsupportedOp(t *testing.T) {
	f := &ir.Func{Name: "main", Ret: ir.I32}
	b := f.NewBlock("entry")
	x := b.Emit(ir.Binary{Name: "%0", Op: ir.Op(77), L: b.Int(1), R: b.Int(2)})
	b.Emit(ir.Return{Val: x})

	_, err := New().CompileProgram(context.Background(), nil, &ir.Program{Funcs: []*ir.Func{f}})
	assert.ErrorIs(t, err, ErrUnsupportedInstruction)
}

func TestStackOffsetNotFound(t *testing.T) {
	f := &ir.Func{Name: "main", Ret: ir.I32}
	b := f.NewBlock("entry")
	slot := b.Add(ir.Alloc{Name: "@x_0"})
	l := b.Emit(ir.Load{Name: "%0", Src: slot})
	b.Emit(ir.Return{Val: l})

	_, err := New().CompileProgram(context.Background(), nil, &ir.Program{Funcs: []*ir.Func{f}})

	var soe *StackOffsetError
	require.ErrorAs(t, err, &soe)
	assert.Equal(t, slot, soe.Value)
}

func TestUnitFunc(t *testing.T) {
	f := &ir.Func{Name: "f", Ret: ir.Unit}
	f.NewBlock("entry").Emit(ir.Return{Val: ir.Nil})

	obj, err := New().CompileProgram(context.Background(), nil, &ir.Program{Funcs: []*ir.Func{f}})
	require.NoError(t, err)

	assert.Equal(t, "  .text\n  .globl f\nf:\n  ret\n", string(obj))
}

func TestDeterminism(t *testing.T) {
	src := "int main() { int a = 3, b = a * 2; { int a = b - 1; b = a; } return a + b > 5 && !(b == 0); }"

	assert.Equal(t, compile(t, src), compile(t, src))
}

func TestXor(t *testing.T) {
	f := &ir.Func{Name: "main", Ret: ir.I32}
	b := f.NewBlock("entry")
	x := b.Emit(ir.Binary{Name: "%0", Op: ir.Xor, L: b.Int(6), R: b.Int(3)})
	b.Emit(ir.Return{Val: x})

	p := &ir.Program{Funcs: []*ir.Func{f}}
	require.NoError(t, ir.Verify(p))

	obj, err := New().CompileProgram(context.Background(), nil, p)
	require.NoError(t, err)
	assert.Contains(t, string(obj), "  xor t0, t0, t1\n")

	v, err := rvsim.Run(context.Background(), obj, "main")
	require.NoError(t, err)
	assert.Equal(t, int32(5), v)
}
