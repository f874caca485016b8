package passes

import "github.com/acd1034/tryrustc/internal/ir"

// ConstantFoldingPass replaces a binary arithmetic or comparison
// instruction whose operands are both Const with a single Const holding
// the computed result.
//
// EXAMPLE:
//   Before:  %0 = const 1
//            %1 = const 2
//            %2 = add %0, %1
//            %3 = add %2, x
//   After:   %0 = const 1
//            %1 = const 2
//            %4 = const 3     // %2's old users now read this
//            %2 = add %0, %1  // left in place, with no users
//            %3 = add %4, x
//
// This pass never removes the folded instruction or its now-unused Const
// operands itself; ReplaceAllUses leaves them in place by design, and a
// following DeadCodeEliminationPass clears them out.
type ConstantFoldingPass struct{}

// Name returns the name of this optimization pass.
func (ConstantFoldingPass) Name() string { return "constant-folding" }

// Run folds constant-operand arithmetic and comparisons in fn via one
// forward walk.
func (ConstantFoldingPass) Run(fn *ir.Function) {
	b := ir.NewBuilder(fn)
	b.WalkForward(func(_ ir.BlockID, id ir.InstID) {
		inst := fn.Inst(id)
		result, ok := foldableResult(fn, inst)
		if !ok {
			return
		}
		// The walk cursor sits at the instruction being folded, so BuildConst
		// inserts the new Const just before it; ReplaceAllUses then retargets every use of
		// id onto the new Const, so operands stay defined before uses.
		folded := b.BuildConst(result)
		b.ReplaceAllUses(id, folded)
	})
}

// foldableResult computes the constant result of inst if both of its
// operands are Const, using two's-complement 32-bit integer semantics.
// Division by zero is defined here as yielding zero rather than
// crashing the compiler (§ OPEN QUESTIONS).
func foldableResult(fn *ir.Function, inst *ir.Inst) (uint64, bool) {
	lhsID, rhsID, ok := binaryOperands(inst)
	if !ok {
		return 0, false
	}
	lhs, rhs := fn.Inst(lhsID), fn.Inst(rhsID)
	if !lhs.IsConst() || !rhs.IsConst() {
		return 0, false
	}
	a, b := int32(lhs.ConstVal), int32(rhs.ConstVal)
	switch inst.Op {
	case ir.OpAdd:
		return uint64(uint32(a + b)), true
	case ir.OpSub:
		return uint64(uint32(a - b)), true
	case ir.OpMul:
		return uint64(uint32(a * b)), true
	case ir.OpDiv:
		if b == 0 {
			return 0, true
		}
		return uint64(uint32(a / b)), true
	case ir.OpEq:
		return boolVal(a == b), true
	case ir.OpNe:
		return boolVal(a != b), true
	case ir.OpLt:
		return boolVal(a < b), true
	case ir.OpLe:
		return boolVal(a <= b), true
	default:
		return 0, false
	}
}

func binaryOperands(inst *ir.Inst) (ir.InstID, ir.InstID, bool) {
	switch inst.Op {
	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpEq, ir.OpNe, ir.OpLt, ir.OpLe:
		return inst.LHS, inst.RHS, true
	default:
		return 0, 0, false
	}
}

func boolVal(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
