package front

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sixday-C/pku-minic/compiler/ast"
	"github.com/sixday-C/pku-minic/compiler/format"
	"github.com/sixday-C/pku-minic/compiler/ir"
	"github.com/sixday-C/pku-minic/compiler/parse"
	"github.com/sixday-C/pku-minic/compiler/symtab"
)

func generate(t *testing.T, src string) (*ir.Program, error) {
	t.Helper()

	cu, err := parse.Parse(context.Background(), []byte(src))
	require.NoError(t, err)

	return New().Generate(context.Background(), cu)
}

func koopa(t *testing.T, src string) string {
	t.Helper()

	p, err := generate(t, src)
	require.NoError(t, err)
	require.NoError(t, ir.Verify(p))

	text, err := format.Program(nil, p)
	require.NoError(t, err)

	return string(text)
}

func TestReturnConst(t *testing.T) {
	assert.Equal(t, `fun @main(): i32 {
%entry:
  ret 7
}
`, koopa(t, "int main() { const int c = 1 + 2 * 3; return c; }"))
}

func TestArithmetic(t *testing.T) {
	assert.Equal(t, `fun @main(): i32 {
%entry:
  %0 = mul 2, 3
  %1 = add 1, %0
  ret %1
}
`, koopa(t, "int main() { return 1 + 2 * 3; }"))
}

func TestUnary(t *testing.T) {
	assert.Equal(t, `fun @main(): i32 {
%entry:
  %0 = eq 0, 0
  %1 = sub 0, %0
  ret %1
}
`, koopa(t, "int main() { return -(!0); }"))

	assert.Equal(t, `fun @main(): i32 {
%entry:
  ret 5
}
`, koopa(t, "int main() { return +5; }"))
}

func TestLogicalEager(t *testing.T) {
	assert.Equal(t, `fun @main(): i32 {
%entry:
  %0 = ne 1, 0
  %1 = div 1, 0
  %2 = ne %1, 0
  %3 = or %0, %2
  ret %3
}
`, koopa(t, "int main() { return 1 || (1 / 0); }"))
}

func TestVariables(t *testing.T) {
	assert.Equal(t, `fun @main(): i32 {
%entry:
  @x_0 = alloc i32
  store 1, @x_0
  @y_0 = alloc i32
  %0 = load @x_0
  %1 = load @x_0
  %2 = add %0, %1
  store %2, @y_0
  %3 = load @y_0
  store %3, @x_0
  %4 = load @x_0
  ret %4
}
`, koopa(t, "int main() { int x = 1; int y; y = x + x; x = y; return x; }"))
}

func TestShadowing(t *testing.T) {
	assert.Equal(t, `fun @main(): i32 {
%entry:
  @x_0 = alloc i32
  store 1, @x_0
  @x_1 = alloc i32
  store 2, @x_1
  %0 = load @x_0
  ret %0
}
`, koopa(t, "int main() { int x = 1; { int x = 2; } return x; }"))
}

func TestConstShadowsVar(t *testing.T) {
	assert.Equal(t, `fun @main(): i32 {
%entry:
  @a_0 = alloc i32
  %0 = load @a_0
  %1 = add 3, %0
  ret %1
}
`, koopa(t, "int main() { int a; { const int a = 3; } return 3 + a; }"))

	assert.Equal(t, `fun @main(): i32 {
%entry:
  @a_0 = alloc i32
  store 1, @a_0
  ret 3
}
`, koopa(t, "int main() { int a = 1; { const int a = 3; return a; } }"))
}

func TestImplicitReturn(t *testing.T) {
	assert.Equal(t, `fun @main(): i32 {
%entry:
  %0 = add 1, 2
  %1 = eq %0, 3
  ret 0
}
`, koopa(t, "int main() { 1 + 2 == 3; }"))

	assert.Equal(t, `fun @f() {
%entry:
  ret
}
`, koopa(t, "void f() { }"))
}

func TestUnreachable(t *testing.T) {
	assert.Equal(t, `fun @main(): i32 {
%entry:
  ret 1
}
`, koopa(t, "int main() { { return 1; } return x; }"))
}

func TestErrors(t *testing.T) {
	for _, tc := range []struct {
		src string
		err error
	}{
		{"int main() { return x; }", symtab.ErrUndefinedSymbol},
		{"int main() { y = 2; return 0; }", symtab.ErrUndefinedSymbol},
		{"int main() { int a; int a; return 0; }", symtab.ErrDuplicateDefinition},
		{"int main() { const int a = 1; int a; return 0; }", symtab.ErrDuplicateDefinition},
		{"int main() { int a = 1; const int b = a; return b; }", ErrConstantEvaluation},
		{"int main() { const int b = 1 / 0; return b; }", ErrConstantEvaluation},
		{"int main() { const int b = 1 % 0; return b; }", ErrConstantEvaluation},
		{"int main() { const int b = 1; b = 2; return b; }", ErrAssignToConstant},
		{"int main() { const int b = 1; { b = 2; } return b; }", symtab.ErrWrongSymbolKind},
	} {
		p, err := generate(t, tc.src)
		assert.ErrorIs(t, err, tc.err, tc.src)
		assert.Nil(t, p, tc.src)
	}
}

func TestReturnMismatch(t *testing.T) {
	_, err := generate(t, "void f() { return 1; }")
	assert.Error(t, err)

	_, err = generate(t, "int main() { return; }")
	assert.Error(t, err)
}

func TestConstFolding(t *testing.T) {
	for _, tc := range []struct {
		src  string
		want string
	}{
		{"2147483647 + 1", "-2147483648"},
		{"-2147483647 - 2", "2147483647"},
		{"7 / -2", "-3"},
		{"7 % -2", "1"},
		{"-7 % 2", "-1"},
		{"(1 < 2) + (2 <= 2) + (3 > 4) + (4 >= 5)", "2"},
		{"(1 == 1) * 10 + (1 != 1)", "10"},
		{"!0 + !5", "1"},
		{"0 && 1 || 3", "1"},
		{"2 && 0", "0"},
	} {
		text := koopa(t, "int main() { const int v = "+tc.src+"; return v; }")
		assert.Equal(t, "fun @main(): i32 {\n%entry:\n  ret "+tc.want+"\n}\n", text, tc.src)
	}
}

func TestDepthLimit(t *testing.T) {
	deep := strings.Repeat("-", 50) + "1"

	cu, err := parse.Parse(context.Background(), []byte("int main() { int x = "+deep+"; const int c = "+deep+"; return x; }"))
	require.NoError(t, err)

	g := New()
	g.MaxDepth = 20

	_, err = g.Generate(context.Background(), cu)
	assert.ErrorIs(t, err, ErrExpressionTooDeep)

	g.MaxDepth = 100

	_, err = g.Generate(context.Background(), cu)
	assert.NoError(t, err)
}

func TestDeterminism(t *testing.T) {
	src := "int main() { int a = 3, b = a * 2; { int a = b - 1; b = a; } return a + b > 5 && !(b == 0); }"

	assert.Equal(t, koopa(t, src), koopa(t, src))
}

func TestEmptyUnit(t *testing.T) {
	_, err := New().Generate(context.Background(), &ast.CompUnit{})
	assert.Error(t, err)
}

func TestFlatChain(t *testing.T) {
	sum := "0" + strings.Repeat(" + 1", 1100)

	text := koopa(t, "int main() { int x = "+sum+"; const int c = "+sum+"; return x - c; }")

	assert.Equal(t, 1100, strings.Count(text, " = add "))
	assert.Contains(t, text, "  %1101 = sub %1100, 1100\n")

	cu, err := parse.Parse(context.Background(), []byte("int main() { return "+sum+"; }"))
	require.NoError(t, err)

	g := New()
	g.MaxDepth = 8

	_, err = g.Generate(context.Background(), cu)
	assert.NoError(t, err)
}

func TestLogicalChain(t *testing.T) {
	assert.Equal(t, `fun @main(): i32 {
%entry:
  %0 = ne 1, 0
  %1 = ne 2, 0
  %2 = and %0, %1
  %3 = ne %2, 0
  %4 = ne 3, 0
  %5 = and %3, %4
  ret %5
}
`, koopa(t, "int main() { return 1 && 2 && 3; }"))
}
