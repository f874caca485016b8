package ir

import "github.com/acd1034/tryrustc/internal/arena"

// Builder extends Visitor with mutation. It owns the function
// exclusively for the duration of construction or a pass (§5): no other
// code may touch fn's arenas while a Builder is in use.
type Builder struct {
	*Visitor
	globals *arena.Arena[Memory] // shared module-level storage, nil outside IR construction
}

// NewBuilder creates a builder over fn with no current position and no
// access to module-level globals (BuildLoadGlobal/BuildStoreGlobal/
// BuildGlobalAlloca are unavailable).
func NewBuilder(fn *Function) *Builder {
	return &Builder{Visitor: NewVisitor(fn)}
}

// NewBuilderWithGlobals creates a builder that can also read and write
// module-level global variables backed by globals.
func NewBuilderWithGlobals(fn *Function, globals *arena.Arena[Memory]) *Builder {
	return &Builder{Visitor: NewVisitor(fn), globals: globals}
}

// memory resolves a (id, global) pair to its backing Memory, regardless
// of which arena it lives in.
func (b *Builder) memory(id MemoryID, global bool) *Memory {
	if global {
		return b.globals.Get(id)
	}
	return b.fn.Memory(id)
}

// AppendBasicBlock allocates a new, empty block at the end of
// Function.Blocks and returns its id.
func (b *Builder) AppendBasicBlock() BlockID {
	id := b.fn.BlockArena.AllocWith(func(id BlockID) Block {
		return Block{ID: id, Pred: newIDSet(), Succ: newIDSet()}
	})
	b.fn.Blocks = append(b.fn.Blocks, id)
	return id
}

// InsertBasicBlockAfter allocates a new, empty block immediately after
// after in Function.Blocks and returns its id.
func (b *Builder) InsertBasicBlockAfter(after BlockID) BlockID {
	id := b.fn.BlockArena.AllocWith(func(id BlockID) Block {
		return Block{ID: id, Pred: newIDSet(), Succ: newIDSet()}
	})
	idx := b.fn.blockIndex(after)
	blocks := make([]BlockID, 0, len(b.fn.Blocks)+1)
	blocks = append(blocks, b.fn.Blocks[:idx+1]...)
	blocks = append(blocks, id)
	blocks = append(blocks, b.fn.Blocks[idx+1:]...)
	b.fn.Blocks = blocks
	return id
}

// RemoveBasicBlock drops blk from Function.Blocks; the arena slot is
// retained per the IR's removal lifecycle.
func (b *Builder) RemoveBasicBlock(blk BlockID) {
	idx := b.fn.blockIndex(blk)
	if idx < 0 {
		return
	}
	b.fn.Blocks = append(b.fn.Blocks[:idx], b.fn.Blocks[idx+1:]...)
	b.fn.BlockArena.Remove(blk)
}

// insert places a freshly built instruction at the cursor's current
// (block, index) and threads the use/store/load/pred/succ edges its
// operands require (I2-I4). It is the one choke point every build*
// helper routes through.
func (b *Builder) insert(inst Inst) InstID {
	block, idx := b.GetInsertIndex()
	id := b.fn.InstArena.AllocWith(func(id InstID) Inst {
		inst.ID = id
		inst.Uses = newIDSet()
		return inst
	})

	blk := b.fn.Block(block)
	insts := make([]InstID, 0, len(blk.Insts)+1)
	insts = append(insts, blk.Insts[:idx]...)
	insts = append(insts, id)
	insts = append(insts, blk.Insts[idx:]...)
	blk.Insts = insts

	built := b.fn.Inst(id)
	for _, operand := range built.operands() {
		b.fn.Inst(operand).Uses.add(id)
	}
	switch built.Op {
	case OpLoad:
		b.memory(built.Mem, built.GlobalMem).Load.add(id)
	case OpStore:
		b.memory(built.Mem, built.GlobalMem).Store.add(id)
	case OpBr:
		blk.Succ.add(built.IfTrue)
		blk.Succ.add(built.IfFalse)
		b.fn.Block(built.IfTrue).Pred.add(block)
		b.fn.Block(built.IfFalse).Pred.add(block)
	case OpJmp:
		blk.Succ.add(built.Target)
		b.fn.Block(built.Target).Pred.add(block)
	}

	// The cursor is intentionally left wherever the caller had it. When
	// positioned After (the common case while constructing straight-line
	// code), the insert index is always recomputed as len(insts), so
	// repeated builds simply keep appending. When positioned At an
	// existing instruction (the common case inside a pass walking the
	// cursor forward), that id's index shifts by one but the position
	// stays anchored to the same id, so the walk's next step lands past
	// both the instruction just visited and whatever was inserted here.
	return id
}

func (b *Builder) BuildEq(lhs, rhs InstID) InstID  { return b.insert(Inst{Op: OpEq, LHS: lhs, RHS: rhs}) }
func (b *Builder) BuildNe(lhs, rhs InstID) InstID  { return b.insert(Inst{Op: OpNe, LHS: lhs, RHS: rhs}) }
func (b *Builder) BuildLt(lhs, rhs InstID) InstID  { return b.insert(Inst{Op: OpLt, LHS: lhs, RHS: rhs}) }
func (b *Builder) BuildLe(lhs, rhs InstID) InstID  { return b.insert(Inst{Op: OpLe, LHS: lhs, RHS: rhs}) }
func (b *Builder) BuildAdd(lhs, rhs InstID) InstID { return b.insert(Inst{Op: OpAdd, LHS: lhs, RHS: rhs}) }
func (b *Builder) BuildSub(lhs, rhs InstID) InstID { return b.insert(Inst{Op: OpSub, LHS: lhs, RHS: rhs}) }
func (b *Builder) BuildMul(lhs, rhs InstID) InstID { return b.insert(Inst{Op: OpMul, LHS: lhs, RHS: rhs}) }
func (b *Builder) BuildDiv(lhs, rhs InstID) InstID { return b.insert(Inst{Op: OpDiv, LHS: lhs, RHS: rhs}) }

// BuildLoad reads memory slot m.
func (b *Builder) BuildLoad(m MemoryID) InstID { return b.insert(Inst{Op: OpLoad, Mem: m}) }

// BuildLoadGlobal reads module-level global memory slot m.
func (b *Builder) BuildLoadGlobal(m MemoryID) InstID {
	return b.insert(Inst{Op: OpLoad, Mem: m, GlobalMem: true})
}

// BuildCall invokes callee with args, in order.
func (b *Builder) BuildCall(callee FunctionID, args []InstID) InstID {
	return b.insert(Inst{Op: OpCall, Callee: callee, Args: args})
}

// BuildConst materializes the integer literal v.
func (b *Builder) BuildConst(v uint64) InstID { return b.insert(Inst{Op: OpConst, ConstVal: v}) }

// BuildParam materializes the value the caller passed for the function's
// i-th parameter (0-indexed).
func (b *Builder) BuildParam(i int) InstID { return b.insert(Inst{Op: OpParam, ParamIndex: i}) }

// BuildStrAddr materializes the address of the strIndex-th entry of
// Module.Strings.
func (b *Builder) BuildStrAddr(strIndex int) InstID {
	return b.insert(Inst{Op: OpStrAddr, StrIndex: strIndex})
}

// BuildAddr materializes the address of memory slot m as an ordinary
// value, letting it be stored, passed, and returned like any other int.
func (b *Builder) BuildAddr(m MemoryID, global bool) InstID {
	return b.insert(Inst{Op: OpAddr, Mem: m, GlobalMem: global})
}

// BuildLoadInd reads a width-byte scalar through addr, an address value
// rather than a known memory slot (the general case behind a pointer
// dereference).
func (b *Builder) BuildLoadInd(addr InstID, width uint64) InstID {
	return b.insert(Inst{Op: OpLoadInd, Addr: addr, Width: width})
}

// BuildStoreInd writes val, a width-byte scalar, through addr, an address
// value.
func (b *Builder) BuildStoreInd(addr, val InstID, width uint64) InstID {
	return b.insert(Inst{Op: OpStoreInd, Addr: addr, Val: val, Width: width})
}

// BuildStore writes val into memory slot m.
func (b *Builder) BuildStore(m MemoryID, val InstID) InstID {
	return b.insert(Inst{Op: OpStore, Mem: m, Val: val})
}

// BuildStoreGlobal writes val into module-level global memory slot m.
func (b *Builder) BuildStoreGlobal(m MemoryID, val InstID) InstID {
	return b.insert(Inst{Op: OpStore, Mem: m, Val: val, GlobalMem: true})
}

// BuildReturn terminates the current block, returning val.
func (b *Builder) BuildReturn(val InstID) InstID { return b.insert(Inst{Op: OpRet, RetVal: val}) }

// BuildConditionalBranch terminates the current block, jumping to
// ifTrue when cond is non-zero and to ifFalse otherwise.
func (b *Builder) BuildConditionalBranch(cond InstID, ifTrue, ifFalse BlockID) InstID {
	return b.insert(Inst{Op: OpBr, Cond: cond, IfTrue: ifTrue, IfFalse: ifFalse})
}

// BuildUnconditionalBranch terminates the current block, jumping to target.
func (b *Builder) BuildUnconditionalBranch(target BlockID) InstID {
	return b.insert(Inst{Op: OpJmp, Target: target})
}

// BuildAlloca allocates a fresh stack slot of the given byte size and
// returns its id.
func (b *Builder) BuildAlloca(size uint64) MemoryID {
	return b.fn.MemoryArena.AllocWith(func(id MemoryID) Memory {
		return Memory{ID: id, Size: size, Store: newIDSet(), Load: newIDSet()}
	})
}

// BuildGlobalAlloca allocates a fresh module-level global storage slot
// of the given byte size and returns its id.
func (b *Builder) BuildGlobalAlloca(size uint64) MemoryID {
	return b.globals.AllocWith(func(id MemoryID) Memory {
		return Memory{ID: id, Size: size, Store: newIDSet(), Load: newIDSet()}
	})
}

// RemoveInst removes the instruction under the cursor, undoing every
// edge insert established (I2-I4), and repositions the cursor to the
// index that now sits where the removed instruction was.
func (b *Builder) RemoveInst() {
	block, idx := b.GetInsertIndex()
	blk := b.fn.Block(block)
	id := blk.Insts[idx]
	inst := b.fn.Inst(id)

	for _, operand := range inst.operands() {
		b.fn.Inst(operand).Uses.remove(id)
	}
	switch inst.Op {
	case OpLoad:
		b.memory(inst.Mem, inst.GlobalMem).Load.remove(id)
	case OpStore:
		b.memory(inst.Mem, inst.GlobalMem).Store.remove(id)
	case OpBr:
		blk.Succ.remove(inst.IfTrue)
		blk.Succ.remove(inst.IfFalse)
		b.fn.Block(inst.IfTrue).Pred.remove(block)
		b.fn.Block(inst.IfFalse).Pred.remove(block)
	case OpJmp:
		blk.Succ.remove(inst.Target)
		b.fn.Block(inst.Target).Pred.remove(block)
	}

	blk.Insts = append(blk.Insts[:idx], blk.Insts[idx+1:]...)
	b.fn.InstArena.Remove(id)
	if idx < len(blk.Insts) {
		b.PositionAt(block, blk.Insts[idx])
	} else {
		b.PositionAtEnd(block)
	}
}

// ReplaceAllUses rewrites every user of old to read replacement instead,
// and moves their membership from old.Uses to replacement.Uses. The
// instruction that produced old is left in place for a later DCE pass to
// remove.
func (b *Builder) ReplaceAllUses(old, replacement InstID) {
	oldInst := b.fn.Inst(old)
	newInst := b.fn.Inst(replacement)
	for user := range oldInst.Uses {
		ui := b.fn.Inst(user)
		rewriteOperand(ui, old, replacement)
		newInst.Uses.add(user)
	}
	oldInst.Uses = newIDSet()
}

// rewriteOperand replaces every occurrence of old with replacement among
// inst's operand fields, regardless of its Op.
func rewriteOperand(inst *Inst, old, replacement InstID) {
	replace := func(id *InstID) {
		if *id == old {
			*id = replacement
		}
	}
	switch inst.Op {
	case OpEq, OpNe, OpLt, OpLe, OpAdd, OpSub, OpMul, OpDiv:
		replace(&inst.LHS)
		replace(&inst.RHS)
	case OpCall:
		for i := range inst.Args {
			replace(&inst.Args[i])
		}
	case OpLoadInd:
		replace(&inst.Addr)
	case OpBr:
		replace(&inst.Cond)
	case OpStore:
		replace(&inst.Val)
	case OpStoreInd:
		replace(&inst.Addr)
		replace(&inst.Val)
	case OpRet:
		replace(&inst.RetVal)
	}
}
