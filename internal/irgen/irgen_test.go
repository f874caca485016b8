package irgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acd1034/tryrustc/internal/ir"
	"github.com/acd1034/tryrustc/internal/parser"
)

func lowerSource(t *testing.T, src string) *ir.Module {
	t.Helper()
	items, err := parser.Parse("test.c", src)
	require.NoError(t, err)
	mod, err := Lower("test", items)
	require.NoError(t, err)
	return mod
}

func TestLower_SimpleAddFunction(t *testing.T) {
	mod := lowerSource(t, "int add(int a, int b) { return a + b; }")
	id, ok := mod.Lookup("add")
	require.True(t, ok)
	fn := mod.Function(id)
	assert.False(t, fn.IsDeclaration())

	var hasAdd, hasRet bool
	for _, blkID := range fn.Blocks {
		for _, instID := range fn.Block(blkID).Insts {
			switch fn.Inst(instID).Op {
			case ir.OpAdd:
				hasAdd = true
			case ir.OpRet:
				hasRet = true
			}
		}
	}
	assert.True(t, hasAdd, "expected an Add instruction")
	assert.True(t, hasRet, "expected a Ret instruction")
}

func TestLower_MissingTerminatorIsAnError(t *testing.T) {
	items, err := parser.Parse("test.c", "int f() { int x = 1; }")
	require.NoError(t, err)
	_, err = Lower("test", items)
	assert.Error(t, err, "a function falling off the end without a return must be rejected")
}

func TestLower_IfElseProducesThreeBlocks(t *testing.T) {
	mod := lowerSource(t, `
	int f(int n) {
		if (n < 0) { return 0; } else { return 1; }
	}
	`)
	id, _ := mod.Lookup("f")
	fn := mod.Function(id)
	// entry, then, else — the merge block is unreachable (both arms
	// terminate) and gets pruned by lowerIfElse itself.
	assert.Len(t, fn.Blocks, 3)
}

func TestLower_ForLoopWiresBreakAndContinue(t *testing.T) {
	mod := lowerSource(t, `
	int f(int n) {
		int sum = 0;
		for (int i = 0; i < n; i = i + 1) {
			if (i == 5) { break; }
			if (i == 1) { continue; }
			sum = sum + i;
		}
		return sum;
	}
	`)
	id, _ := mod.Lookup("f")
	fn := mod.Function(id)
	assert.NotEmpty(t, fn.Blocks)

	var branchCount int
	for _, blkID := range fn.Blocks {
		for _, instID := range fn.Block(blkID).Insts {
			if fn.Inst(instID).Op == ir.OpBr {
				branchCount++
			}
		}
	}
	assert.GreaterOrEqual(t, branchCount, 3, "expected the loop condition plus two if-conditions to branch")
}

func TestLower_BreakOutsideLoopIsAnError(t *testing.T) {
	items, err := parser.Parse("test.c", "int f() { break; return 0; }")
	require.NoError(t, err)
	_, err = Lower("test", items)
	assert.Error(t, err)
}

func TestLower_RedeclaredVariableInSameScopeIsAnError(t *testing.T) {
	items, err := parser.Parse("test.c", "int f() { int x = 1; int x = 2; return x; }")
	require.NoError(t, err)
	_, err = Lower("test", items)
	assert.Error(t, err)
}

func TestLower_PointerAddressOfAndDeref(t *testing.T) {
	mod := lowerSource(t, `
	int f() {
		int x = 1;
		int *p = &x;
		return *p;
	}
	`)
	id, _ := mod.Lookup("f")
	fn := mod.Function(id)

	var hasAddr, hasLoadInd bool
	for _, blkID := range fn.Blocks {
		for _, instID := range fn.Block(blkID).Insts {
			switch fn.Inst(instID).Op {
			case ir.OpAddr:
				hasAddr = true
			case ir.OpLoadInd:
				hasLoadInd = true
			}
		}
	}
	assert.True(t, hasAddr, "expected &x to materialize an Addr instruction")
	assert.True(t, hasLoadInd, "expected *p to materialize a LoadInd instruction")
}

func TestLower_GlobalVariableGetsAGlobalAllocaAndLoad(t *testing.T) {
	mod := lowerSource(t, `
	int counter = 0;
	int f() { return counter; }
	`)
	assert.Equal(t, 1, mod.Globals.Len())

	id, _ := mod.Lookup("f")
	fn := mod.Function(id)
	var hasGlobalLoad bool
	for _, blkID := range fn.Blocks {
		for _, instID := range fn.Block(blkID).Insts {
			inst := fn.Inst(instID)
			if inst.Op == ir.OpLoad && inst.GlobalMem {
				hasGlobalLoad = true
			}
		}
	}
	assert.True(t, hasGlobalLoad)
}

func TestLower_FunctionRedefinitionIsAnError(t *testing.T) {
	items, err := parser.Parse("test.c", "int f() { return 0; } int f() { return 1; }")
	require.NoError(t, err)
	_, err = Lower("test", items)
	assert.Error(t, err)
}

func TestLower_DeclarationThenDefinitionMatchingSignatureIsFine(t *testing.T) {
	mod := lowerSource(t, "int f(int x); int f(int x) { return x; }")
	id, ok := mod.Lookup("f")
	require.True(t, ok)
	assert.False(t, mod.Function(id).IsDeclaration())
}

func TestLower_DeclarationThenDefinitionMismatchedSignatureIsAnError(t *testing.T) {
	items, err := parser.Parse("test.c", "int f(int x); int f(char x) { return x; }")
	require.NoError(t, err)
	_, err = Lower("test", items)
	assert.Error(t, err)
}
