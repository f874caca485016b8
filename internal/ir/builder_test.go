package ir

import (
	"testing"

	"github.com/acd1034/tryrustc/internal/types"
)

func newTestFunction() *Function {
	return NewFunction("f", types.NewInt(), nil, nil)
}

// TestBuilder_BranchMaintainsPredSucc checks I2: Br/Jmp keep both sides of
// the pred/succ edge in sync.
func TestBuilder_BranchMaintainsPredSucc(t *testing.T) {
	fn := newTestFunction()
	b := NewBuilder(fn)

	entry := b.AppendBasicBlock()
	thenBlk := b.AppendBasicBlock()
	elseBlk := b.AppendBasicBlock()

	b.PositionAtEnd(entry)
	cond := b.BuildConst(1)
	b.BuildConditionalBranch(cond, thenBlk, elseBlk)

	if !fn.Block(entry).Succ.has(thenBlk) || !fn.Block(entry).Succ.has(elseBlk) {
		t.Fatal("entry.Succ missing a branch target")
	}
	if !fn.Block(thenBlk).Pred.has(entry) || !fn.Block(elseBlk).Pred.has(entry) {
		t.Fatal("branch target missing entry as predecessor")
	}
}

// TestBuilder_DuplicateBranchTargetIsOneMembership checks I2's "sets, not
// multi-edges" clause for a conditional branch whose two targets coincide.
func TestBuilder_DuplicateBranchTargetIsOneMembership(t *testing.T) {
	fn := newTestFunction()
	b := NewBuilder(fn)
	entry := b.AppendBasicBlock()
	target := b.AppendBasicBlock()

	b.PositionAtEnd(entry)
	cond := b.BuildConst(1)
	b.BuildConditionalBranch(cond, target, target)

	if len(fn.Block(entry).Succ.Slice()) != 1 {
		t.Fatalf("expected one succ membership, got %d", len(fn.Block(entry).Succ.Slice()))
	}
	if len(fn.Block(target).Pred.Slice()) != 1 {
		t.Fatalf("expected one pred membership, got %d", len(fn.Block(target).Pred.Slice()))
	}
}

// TestBuilder_UsesTrackOperands checks I3: an operand's Uses set gains the
// id of every instruction that reads it.
func TestBuilder_UsesTrackOperands(t *testing.T) {
	fn := newTestFunction()
	b := NewBuilder(fn)
	entry := b.AppendBasicBlock()
	b.PositionAtEnd(entry)

	lhs := b.BuildConst(1)
	rhs := b.BuildConst(2)
	sum := b.BuildAdd(lhs, rhs)

	if !fn.Inst(lhs).Uses.has(sum) || !fn.Inst(rhs).Uses.has(sum) {
		t.Fatal("BuildAdd did not register itself in its operands' Uses sets")
	}
}

// TestBuilder_LoadStoreTrackMemory checks I4.
func TestBuilder_LoadStoreTrackMemory(t *testing.T) {
	fn := newTestFunction()
	b := NewBuilder(fn)
	entry := b.AppendBasicBlock()
	b.PositionAtEnd(entry)

	mem := b.BuildAlloca(4)
	val := b.BuildConst(7)
	store := b.BuildStore(mem, val)
	load := b.BuildLoad(mem)

	if !fn.Memory(mem).Store.has(store) {
		t.Fatal("Store did not register in Memory.Store")
	}
	if !fn.Memory(mem).Load.has(load) {
		t.Fatal("Load did not register in Memory.Load")
	}
}

// TestBuilder_RemoveInstUndoesEdges checks that RemoveInst reverses every
// edge insert established, not just the instruction list membership.
func TestBuilder_RemoveInstUndoesEdges(t *testing.T) {
	fn := newTestFunction()
	b := NewBuilder(fn)
	entry := b.AppendBasicBlock()
	b.PositionAtEnd(entry)

	lhs := b.BuildConst(1)
	rhs := b.BuildConst(2)
	b.PositionAtEnd(entry)
	sum := b.BuildAdd(lhs, rhs)
	b.BuildReturn(lhs)

	b.PositionAt(entry, sum)
	b.RemoveInst()

	if fn.Inst(lhs).Uses.has(sum) {
		t.Fatal("removed instruction's id still present in an operand's Uses")
	}
	if fn.InstArena.Live(sum) {
		t.Fatal("removed instruction id still reported live")
	}
	for _, id := range fn.Block(entry).Insts {
		if id == sum {
			t.Fatal("removed instruction id still present in block.Insts")
		}
	}
}

// TestBuilder_ReplaceAllUses checks that every prior user is rewritten to
// read the replacement, and that old.Uses is cleared while the replaced
// instruction itself is left in place (a later DCE pass removes it).
func TestBuilder_ReplaceAllUses(t *testing.T) {
	fn := newTestFunction()
	b := NewBuilder(fn)
	entry := b.AppendBasicBlock()
	b.PositionAtEnd(entry)

	lhs := b.BuildConst(1)
	rhs := b.BuildConst(2)
	sum := b.BuildAdd(lhs, rhs)
	ret := b.BuildReturn(sum)

	folded := b.BuildConst(3)
	b.ReplaceAllUses(sum, folded)

	if fn.Inst(ret).RetVal != folded {
		t.Fatalf("Ret operand not rewritten: got %d, want %d", fn.Inst(ret).RetVal, folded)
	}
	if len(fn.Inst(sum).Uses) != 0 {
		t.Fatal("old.Uses not cleared after ReplaceAllUses")
	}
	if !fn.InstArena.Live(sum) {
		t.Fatal("ReplaceAllUses must not itself remove the folded instruction")
	}
}

// TestVisitor_WalkForwardBackwardSameMultiset checks the §8 invariant:
// forward and backward traversal visit every (block, inst) pair exactly
// once, as the same multiset of ids.
func TestVisitor_WalkForwardBackwardSameMultiset(t *testing.T) {
	fn := newTestFunction()
	b := NewBuilder(fn)
	entry := b.AppendBasicBlock()
	second := b.AppendBasicBlock()

	b.PositionAtEnd(entry)
	c1 := b.BuildConst(1)
	c2 := b.BuildConst(2)
	b.BuildUnconditionalBranch(second)

	b.PositionAtEnd(second)
	c3 := b.BuildConst(3)
	b.BuildReturn(c3)

	var forward, backward []InstID
	v := NewVisitor(fn)
	v.WalkForward(func(_ BlockID, i InstID) { forward = append(forward, i) })
	v.WalkBackward(func(_ BlockID, i InstID) { backward = append(backward, i) })

	if len(forward) != len(backward) {
		t.Fatalf("forward visited %d instructions, backward visited %d", len(forward), len(backward))
	}
	forwardSet := map[InstID]int{}
	for _, id := range forward {
		forwardSet[id]++
	}
	for _, id := range backward {
		forwardSet[id]--
	}
	for id, count := range forwardSet {
		if count != 0 {
			t.Fatalf("instruction %d visited an unequal number of times forward vs backward", id)
		}
	}
	_ = c1
	_ = c2
}
