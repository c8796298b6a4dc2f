package compiler

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sixday-C/pku-minic/compiler/config"
	"github.com/sixday-C/pku-minic/compiler/front"
	"github.com/sixday-C/pku-minic/compiler/parse"
	"github.com/sixday-C/pku-minic/compiler/rvsim"
)

const src = `
// sum of squares
int main() {
	int a = 3, b = 4;
	/* shadowed */
	{ int a = 10; b = b + a; }
	return a * a + b * b;
}
`

func withMode(mode string) config.Config {
	cfg := config.Default()
	cfg.Output.Mode = mode

	return cfg
}

func TestCompileKoopa(t *testing.T) {
	obj, err := Compile(context.Background(), withMode(config.ModeKoopa), "a.c", []byte("int main() { return 1 + 2 * 3; }"))
	require.NoError(t, err)

	assert.Equal(t, `fun @main(): i32 {
%entry:
  %0 = mul 2, 3
  %1 = add 1, %0
  ret %1
}
`, string(obj))
}

func TestCompileRISCV(t *testing.T) {
	ctx := context.Background()

	obj, err := Compile(ctx, config.Default(), "a.c", []byte(src))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(obj), "  .text\n  .globl main\nmain:\n"), "%s", obj)

	v, err := rvsim.Run(ctx, obj, "main")
	require.NoError(t, err)
	assert.Equal(t, int32(9+14*14), v)
}

func TestCompileComments(t *testing.T) {
	cfg := config.Default()
	cfg.Back.Comments = true

	obj, err := Compile(context.Background(), cfg, "a.c", []byte("int main() { return 2 - 1; }"))
	require.NoError(t, err)

	assert.Contains(t, string(obj), "# %0 = sub 2, 1")
}

func TestCompileLLVM(t *testing.T) {
	obj, err := Compile(context.Background(), withMode(config.ModeLLVM), "a.c", []byte(src))
	require.NoError(t, err)

	assert.Contains(t, string(obj), "define i32 @main()")
	assert.Contains(t, string(obj), "alloca i32")
}

func TestCompileErrors(t *testing.T) {
	ctx := context.Background()

	_, err := Compile(ctx, config.Default(), "a.c", []byte("int main() { return x; }"))
	assert.Error(t, err)

	_, err = Compile(ctx, config.Default(), "a.c", []byte("int main() { const int c = 1; c = 2; return c; }"))
	assert.ErrorIs(t, err, front.ErrAssignToConstant)

	_, err = Compile(ctx, config.Default(), "a.c", []byte("int main() { return 1 +; }"))
	assert.Error(t, err)

	_, err = Compile(ctx, withMode("x86"), "a.c", []byte("int main() { return 0; }"))
	assert.ErrorIs(t, err, config.ErrBadConfig)
}

func TestCompileMaxDepth(t *testing.T) {
	cfg := config.Default()
	cfg.Front.MaxDepth = 8

	text := "int main() { return " + strings.Repeat("(", 20) + "1" + strings.Repeat(")", 20) + "; }"

	_, err := Compile(context.Background(), cfg, "a.c", []byte(text))
	assert.ErrorIs(t, err, parse.ErrTooDeep)

	cfg.Front.MaxDepth = 64

	_, err = Compile(context.Background(), cfg, "a.c", []byte(text))
	assert.NoError(t, err)
}

func TestCompileFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "main.c")
	require.NoError(t, os.WriteFile(name, []byte(src), 0o644))

	obj, err := CompileFile(context.Background(), withMode(config.ModeKoopa), name)
	require.NoError(t, err)
	assert.Contains(t, string(obj), "@a_0 = alloc i32")

	_, err = CompileFile(context.Background(), config.Default(), filepath.Join(t.TempDir(), "none.c"))
	assert.Error(t, err)
}
