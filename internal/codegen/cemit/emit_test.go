package cemit

import (
	"strings"
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

func TestEmit_RendersFunctionSignatureAndLabel(t *testing.T) {
	out := emitSource(t, "int add(int a, int b) { return a + b; }")
	assert.Contains(t, out, "long add(long p0, long p1) {")
	assert.Contains(t, out, " L1:\n")
	assert.Contains(t, out, "return r")
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
	assert.Contains(t, out, "void f(void) {")
	assert.Contains(t, out, "return;\n")
}

func TestEmit_DeclarationHasNoBody(t *testing.T) {
	out := emitSource(t, "int f(int x);")
	assert.Contains(t, out, "long f(long p0);\n")
	assert.False(t, strings.Contains(out, "long f(long p0) {"))
}

func TestEmit_LocalScalarGoesThroughByteBuffer(t *testing.T) {
	out := emitSource(t, "int f() { int x = 42; return x; }")
	assert.Contains(t, out, "unsigned char m[")
	assert.Contains(t, out, "(int*)(m + ")
}

func TestEmit_PointerDereferenceUsesWidthAwareCast(t *testing.T) {
	out := emitSource(t, `
	int f() {
		int x = 1;
		int *p = &x;
		return *p;
	}
	`)
	assert.Contains(t, out, "(long)(m + ")
	assert.Contains(t, out, "*(int*)r")
}

func TestEmit_GlobalsLiveInSharedBuffer(t *testing.T) {
	out := emitSource(t, "int counter = 0;\nint f() { return counter; }")
	assert.Contains(t, out, "static unsigned char g_mem[")
	assert.Contains(t, out, "(int*)(g_mem + ")
}

func TestEmit_StringLiteralBecomesAFileScopedConstant(t *testing.T) {
	out := emitSource(t, `char *f() { return "hi"; }`)
	assert.Contains(t, out, `static const char g_str0[] = "hi";`)
	assert.Contains(t, out, "(long)g_str0")
}
