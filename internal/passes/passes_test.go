package passes

import (
	"testing"

	"github.com/acd1034/tryrustc/internal/ir"
	"github.com/acd1034/tryrustc/internal/types"
)

func buildFoldable(t *testing.T) (*ir.Function, ir.InstID) {
	t.Helper()
	fn := ir.NewFunction("f", types.NewInt(), nil, nil)
	b := ir.NewBuilder(fn)
	entry := b.AppendBasicBlock()
	b.PositionAtEnd(entry)

	one := b.BuildConst(1)
	two := b.BuildConst(2)
	sum := b.BuildAdd(one, two)
	b.BuildReturn(sum)
	return fn, sum
}

// TestConstantFoldingPass_FoldsConstOperands covers SPEC_FULL.md's scenario
// of two Const operands folding to a single Const that inherits the sum's
// users, without removing the folded Add itself.
func TestConstantFoldingPass_FoldsConstOperands(t *testing.T) {
	fn, sum := buildFoldable(t)
	ConstantFoldingPass{}.Run(fn)

	if fn.Inst(sum).Op != ir.OpAdd {
		t.Fatal("constant folding must not remove the folded instruction itself")
	}
	if len(fn.Inst(sum).Uses) != 0 {
		t.Fatal("folded instruction's Uses should have been cleared by ReplaceAllUses")
	}

	var retFound bool
	for _, blkID := range fn.Blocks {
		for _, id := range fn.Block(blkID).Insts {
			inst := fn.Inst(id)
			if inst.Op == ir.OpRet {
				retFound = true
				retOperand := fn.Inst(inst.RetVal)
				if !retOperand.IsConst() || retOperand.ConstVal != 3 {
					t.Fatalf("expected ret operand to be a folded const 3, got op=%v val=%d", retOperand.Op, retOperand.ConstVal)
				}
			}
		}
	}
	if !retFound {
		t.Fatal("no Ret instruction found")
	}
}

// TestConstantFoldingPass_DivByZeroYieldsZero checks the documented open
// question's resolution: constant division by zero folds to zero rather
// than panicking the compiler.
func TestConstantFoldingPass_DivByZeroYieldsZero(t *testing.T) {
	fn := ir.NewFunction("f", types.NewInt(), nil, nil)
	b := ir.NewBuilder(fn)
	entry := b.AppendBasicBlock()
	b.PositionAtEnd(entry)

	ten := b.BuildConst(10)
	zero := b.BuildConst(0)
	quot := b.BuildDiv(ten, zero)
	b.BuildReturn(quot)

	ConstantFoldingPass{}.Run(fn)

	for _, blkID := range fn.Blocks {
		for _, id := range fn.Block(blkID).Insts {
			inst := fn.Inst(id)
			if inst.Op == ir.OpRet {
				retOperand := fn.Inst(inst.RetVal)
				if !retOperand.IsConst() || retOperand.ConstVal != 0 {
					t.Fatalf("expected div-by-zero to fold to 0, got op=%v val=%d", retOperand.Op, retOperand.ConstVal)
				}
			}
		}
	}
}

// TestDeadCodeEliminationPass_RemovesUnusedComputation covers the
// canonical DCE scenario: a side-effect-free instruction with no live
// users is removed, while its operands and the function's actual return
// path survive.
func TestDeadCodeEliminationPass_RemovesUnusedComputation(t *testing.T) {
	fn := ir.NewFunction("f", types.NewInt(), nil, nil)
	b := ir.NewBuilder(fn)
	entry := b.AppendBasicBlock()
	b.PositionAtEnd(entry)

	one := b.BuildConst(1)
	two := b.BuildConst(2)
	dead := b.BuildAdd(one, two) // never used
	b.BuildReturn(one)

	DeadCodeEliminationPass{}.Run(fn)

	if fn.InstArena.Live(dead) {
		t.Fatal("unused Add should have been removed by DCE")
	}
	if !fn.InstArena.Live(one) {
		t.Fatal("const 1 is still used by Ret and must survive")
	}
	if fn.InstArena.Live(two) {
		t.Fatal("const 2 had only the dead Add as a user and should be removed transitively")
	}
}

// TestDeadCodeEliminationPass_PreservesSideEffects checks that Store/Br/
// Jmp/Ret (and anything transitively feeding them) are never removed even
// though they produce no SSA value of their own.
func TestDeadCodeEliminationPass_PreservesSideEffects(t *testing.T) {
	fn := ir.NewFunction("f", nil, nil, nil)
	b := ir.NewBuilder(fn)
	entry := b.AppendBasicBlock()
	b.PositionAtEnd(entry)

	mem := b.BuildAlloca(4)
	val := b.BuildConst(42)
	store := b.BuildStore(mem, val)
	b.BuildReturn(0)

	DeadCodeEliminationPass{}.Run(fn)

	if !fn.InstArena.Live(store) {
		t.Fatal("Store is an effect instruction and must never be removed by DCE")
	}
	if !fn.InstArena.Live(val) {
		t.Fatal("const feeding a live Store must survive")
	}
}

// TestPipeline_FoldThenEliminate exercises constant folding and dead code
// elimination running back to back, the order cmd/tryrustc wires them in.
func TestPipeline_FoldThenEliminate(t *testing.T) {
	built, _ := buildFoldable(t)
	mod := ir.NewModule("test")
	id := mod.DeclareFunction(built)
	fn := mod.Function(id)

	pipeline := NewPipeline(ConstantFoldingPass{}, DeadCodeEliminationPass{})
	pipeline.Run(mod)

	var liveCount int
	for _, blkID := range fn.Blocks {
		for _, id := range fn.Block(blkID).Insts {
			if fn.InstArena.Live(id) {
				liveCount++
			}
		}
	}
	// Only the folded const(3) and the Ret referencing it should remain;
	// the original const(1), const(2), and the folded-but-dead Add are all
	// unreferenced once the Ret operand points at the new const.
	if liveCount != 2 {
		t.Fatalf("expected 2 live instructions after fold+DCE, got %d", liveCount)
	}
}
