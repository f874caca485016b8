package passes

import "github.com/acd1034/tryrustc/internal/ir"

// DeadCodeEliminationPass removes instructions whose results are never
// consumed by a side-effecting instruction, directly or transitively.
//
// EXAMPLE:
//   Before:  %0 = const 1
//            %1 = const 2
//            %2 = add %0, %1   // never used
//            ret %0
//   After:   %0 = const 1
//            ret %0
//
// DESIGN CHOICE: one backward pass over the whole function, not a
// mark-then-sweep over two full traversals. Walking blocks and
// instructions in reverse program order means every use of an
// instruction has already been visited by the time the instruction
// itself is reached, so "all my uses are dead" can be decided on the
// spot instead of requiring a separate liveness fixpoint.
type DeadCodeEliminationPass struct{}

// Name returns the name of this optimization pass.
func (DeadCodeEliminationPass) Name() string { return "dce" }

// Run removes dead instructions from fn via one backward walk.
func (DeadCodeEliminationPass) Run(fn *ir.Function) {
	b := ir.NewBuilder(fn)
	dead := make(map[ir.InstID]bool)

	b.WalkBackward(func(_ ir.BlockID, id ir.InstID) {
		inst := fn.Inst(id)
		if inst.HasSideEffect() {
			return
		}
		if allUsesDead(fn, inst, dead) {
			dead[id] = true
			b.RemoveInst()
		}
	})
}

// allUsesDead reports whether every instruction that reads id's value is
// itself already known dead. An instruction with no uses at all (e.g. a
// Const nobody references) counts as vacuously dead.
func allUsesDead(fn *ir.Function, inst *ir.Inst, dead map[ir.InstID]bool) bool {
	for user := range inst.Uses {
		if !dead[user] {
			return false
		}
	}
	_ = fn
	return true
}
