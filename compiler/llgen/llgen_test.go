package llgen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sixday-C/pku-minic/compiler/front"
	"github.com/sixday-C/pku-minic/compiler/ir"
	"github.com/sixday-C/pku-minic/compiler/parse"
)

func TestCompile(t *testing.T) {
	ctx := context.Background()

	cu, err := parse.Parse(ctx, []byte("int main() { int x = 4; x = x * 2; return x >= 8 && x % 3; }"))
	require.NoError(t, err)

	p, err := front.New().Generate(ctx, cu)
	require.NoError(t, err)

	obj, err := Compile(ctx, nil, p)
	require.NoError(t, err)

	text := string(obj)

	assert.Contains(t, text, "define i32 @main()")
	assert.Contains(t, text, "%x_0 = alloca i32")
	assert.Contains(t, text, "store i32 4, i32* %x_0")
	assert.Contains(t, text, "mul i32")
	assert.Contains(t, text, "srem i32")
	assert.Contains(t, text, "icmp sge i32")
	assert.Contains(t, text, "zext i1")
	assert.Contains(t, text, "and i32")
	assert.Contains(t, text, "ret i32")
}

func TestVoid(t *testing.T) {
	f := &ir.Func{Name: "f", Ret: ir.Unit}
	f.NewBlock("entry").Emit(ir.Return{Val: ir.Nil})

	obj, err := Compile(context.Background(), nil, &ir.Program{Funcs: []*ir.Func{f}})
	require.NoError(t, err)

	assert.Contains(t, string(obj), "define void @f()")
	assert.Contains(t, string(obj), "ret void")
}

func TestUnsupported(t *testing.T) {
	f := &ir.Func{Name: "main", Ret: ir.I32}
	b := f.NewBlock("entry")
	x := b.Emit(ir.Binary{Name: "%0", Op: ir.Op(50), L: b.Int(1), R: b.Int(2)})
	b.Emit(ir.Return{Val: x})

	_, err := Generate(context.Background(), &ir.Program{Funcs: []*ir.Func{f}})
	assert.ErrorIs(t, err, ErrUnsupportedInstruction)
}
