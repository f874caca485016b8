package llvmemit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acd1034/tryrustc/internal/ir"
	"github.com/acd1034/tryrustc/internal/irgen"
	"github.com/acd1034/tryrustc/internal/parser"
)

func emitSource(t *testing.T, src string) string {
	t.Helper()
	items, err := parser.Parse("test.c", src)
	require.NoError(t, err)
	mod, err := irgen.Lower("test", items)
	require.NoError(t, err)
	return Emit(mod)
}

func TestEmit_FunctionSignatureUsesUniformI64(t *testing.T) {
	out := emitSource(t, "int add(int a, int b) { return a + b; }")
	assert.Contains(t, out, "define i64 @add(i64 %p0, i64 %p1)")
	assert.Contains(t, out, "ret i64")
}

func TestEmit_VoidFunctionReturnsVoid(t *testing.T) {
	// The source language has no void keyword, so the void function is
	// built directly as IR.
	mod := ir.NewModule("test")
	fn := mod.Function(mod.DeclareFunction(ir.NewFunction("f", nil, nil, nil)))
	b := ir.NewBuilder(fn)
	b.PositionAtEnd(b.AppendBasicBlock())
	b.BuildReturn(0)
	out := Emit(mod)
	assert.Contains(t, out, "define void @f()")
	assert.Contains(t, out, "ret void")
}

func TestEmit_LocalBufferIsAByteArrayAlloca(t *testing.T) {
	out := emitSource(t, "int f() { int x = 42; return x; }")
	assert.Contains(t, out, "alloca [")
	assert.Contains(t, out, "x i8]")
}

func TestEmit_NarrowLoadIsZeroExtended(t *testing.T) {
	out := emitSource(t, "int f() { int x = 42; return x; }")
	assert.Contains(t, out, "load i32")
	assert.Contains(t, out, "zext i32")
}

func TestEmit_PointerRoundTripsThroughIntToPtr(t *testing.T) {
	out := emitSource(t, `
	int f() {
		int x = 1;
		int *p = &x;
		return *p;
	}
	`)
	assert.Contains(t, out, "ptrtoint")
	assert.Contains(t, out, "inttoptr")
}

func TestEmit_GlobalsGetAModuleLevelByteBuffer(t *testing.T) {
	out := emitSource(t, "int counter = 0;\nint f() { return counter; }")
	assert.Contains(t, out, "@g_mem")
}

func TestEmit_StringLiteralBecomesAGlobalConstant(t *testing.T) {
	out := emitSource(t, `char *f() { return "hi"; }`)
	assert.Contains(t, out, "@str0")
}

func TestEmit_BranchLowersToCondBr(t *testing.T) {
	out := emitSource(t, `
	int f(int n) {
		if (n < 0) { return 0; } else { return 1; }
	}
	`)
	assert.Contains(t, out, "br i1")
	assert.Contains(t, out, "icmp")
}
