package ir

// InsertPointKind distinguishes the four shapes an insert point can take.
type InsertPointKind int

const (
	// Before means "before the first instruction of the current block",
	// with no instruction yet under the cursor.
	Before InsertPointKind = iota
	// At means the cursor sits on a specific instruction.
	At
	// After means "past the last instruction of the current block".
	After
	// Nowhere means the cursor has no current block at all.
	Nowhere
)

// InsertPoint is the second half of a cursor's position: where within
// the current block (if any) the cursor sits.
type InsertPoint struct {
	Kind InsertPointKind
	Inst InstID // valid iff Kind == At
}

// Visitor is a read-only cursor over a function: a current block (or
// none) paired with an InsertPoint. Visitor never mutates the function;
// Builder (in builder.go) is a strict extension that does.
//
// DESIGN CHOICE: position queries and iteration are expressed as one
// interface-shaped cursor rather than leaking BlockArena/InstArena
// directly, so a pass is written once against Visitor/Builder and never
// needs to know how blocks and instructions are stored.
type Visitor struct {
	fn    *Function
	block *BlockID // nil means no current block
	point InsertPoint
}

// NewVisitor creates a cursor over fn with no current position.
func NewVisitor(fn *Function) *Visitor {
	return &Visitor{fn: fn}
}

// Function returns the function the cursor walks.
func (v *Visitor) Function() *Function { return v.fn }

// ClearPosition sets the cursor to have no current block, Nowhere.
func (v *Visitor) ClearPosition() {
	v.block = nil
	v.point = InsertPoint{Kind: Nowhere}
}

// CurrentBlock returns the cursor's current block, or (0, false) if none.
func (v *Visitor) CurrentBlock() (BlockID, bool) {
	if v.block == nil {
		return 0, false
	}
	return *v.block, true
}

// Point returns the cursor's current insert point.
func (v *Visitor) Point() InsertPoint { return v.point }

// PositionBefore places the cursor before b's first instruction.
func (v *Visitor) PositionBefore(b BlockID) {
	id := b
	v.block = &id
	v.point = InsertPoint{Kind: Before}
}

// PositionAt places the cursor directly on instruction i within block b.
func (v *Visitor) PositionAt(b BlockID, i InstID) {
	id := b
	v.block = &id
	v.point = InsertPoint{Kind: At, Inst: i}
}

// PositionAtEnd places the cursor past b's last instruction.
func (v *Visitor) PositionAtEnd(b BlockID) {
	id := b
	v.block = &id
	v.point = InsertPoint{Kind: After}
}

// GetInsertIndex resolves the cursor's position to (block, index) where
// index is the slice index `insts[index]` would occupy. It is undefined
// for Before/Nowhere; callers must not invoke it there (mirrors the
// traversal contract, which never needs an index at those positions).
func (v *Visitor) GetInsertIndex() (BlockID, int) {
	b := *v.block
	blk := v.fn.Block(b)
	switch v.point.Kind {
	case At:
		return b, instIndex(blk, v.point.Inst)
	case After:
		return b, len(blk.Insts)
	default:
		panic("ir: GetInsertIndex called at Before/Nowhere position")
	}
}

// NextBlock advances to the next block in Function.Blocks. With no
// current block, it moves to the first block (positioned Before). When
// there is no next block, the cursor is cleared and ok is false.
func (v *Visitor) NextBlock() (BlockID, bool) {
	if v.block == nil {
		if len(v.fn.Blocks) == 0 {
			return 0, false
		}
		v.PositionBefore(v.fn.Blocks[0])
		return v.fn.Blocks[0], true
	}
	idx := v.fn.blockIndex(*v.block)
	if idx < 0 || idx+1 >= len(v.fn.Blocks) {
		v.ClearPosition()
		return 0, false
	}
	next := v.fn.Blocks[idx+1]
	v.PositionBefore(next)
	return next, true
}

// PrevBlock advances to the previous block in Function.Blocks. With no
// current block, it moves to the last block (positioned After).
func (v *Visitor) PrevBlock() (BlockID, bool) {
	if v.block == nil {
		if len(v.fn.Blocks) == 0 {
			return 0, false
		}
		last := v.fn.Blocks[len(v.fn.Blocks)-1]
		v.PositionAtEnd(last)
		return last, true
	}
	idx := v.fn.blockIndex(*v.block)
	if idx <= 0 {
		v.ClearPosition()
		return 0, false
	}
	prev := v.fn.Blocks[idx-1]
	v.PositionAtEnd(prev)
	return prev, true
}

// NextInst steps within the current block. From Before it moves to the
// first instruction (At(first)); from At(i) to the one after (After if
// there is none). It returns the id now under the cursor, or false when
// the step crossed into After with nothing beyond it.
func (v *Visitor) NextInst() (InstID, bool) {
	blk := v.fn.Block(*v.block)
	switch v.point.Kind {
	case Before:
		if len(blk.Insts) == 0 {
			v.point = InsertPoint{Kind: After}
			return 0, false
		}
		first := blk.Insts[0]
		v.point = InsertPoint{Kind: At, Inst: first}
		return first, true
	case At:
		idx := instIndex(blk, v.point.Inst)
		if idx+1 >= len(blk.Insts) {
			v.point = InsertPoint{Kind: After}
			return 0, false
		}
		next := blk.Insts[idx+1]
		v.point = InsertPoint{Kind: At, Inst: next}
		return next, true
	default: // After, Nowhere
		return 0, false
	}
}

// PrevInst is the mirror of NextInst, stepping toward the start of the
// block.
func (v *Visitor) PrevInst() (InstID, bool) {
	blk := v.fn.Block(*v.block)
	switch v.point.Kind {
	case After:
		if len(blk.Insts) == 0 {
			v.point = InsertPoint{Kind: Before}
			return 0, false
		}
		last := blk.Insts[len(blk.Insts)-1]
		v.point = InsertPoint{Kind: At, Inst: last}
		return last, true
	case At:
		idx := instIndex(blk, v.point.Inst)
		if idx <= 0 {
			v.point = InsertPoint{Kind: Before}
			return 0, false
		}
		prev := blk.Insts[idx-1]
		v.point = InsertPoint{Kind: At, Inst: prev}
		return prev, true
	default: // Before, Nowhere
		return 0, false
	}
}

// WalkForward visits every (block, inst) pair exactly once in program
// order, invoking fn for each instruction id with the cursor positioned
// at it. This is the `while let Some = next_block { while let Some =
// next_inst { ... } }` idiom used throughout the passes.
func (v *Visitor) WalkForward(fn func(b BlockID, i InstID)) {
	v.ClearPosition()
	for {
		b, ok := v.NextBlock()
		if !ok {
			return
		}
		for {
			i, ok := v.NextInst()
			if !ok {
				break
			}
			fn(b, i)
		}
	}
}

// WalkBackward is the reverse of WalkForward: every (block, inst) pair
// exactly once, blocks and instructions both in reverse program order.
func (v *Visitor) WalkBackward(fn func(b BlockID, i InstID)) {
	v.ClearPosition()
	for {
		b, ok := v.PrevBlock()
		if !ok {
			return
		}
		for {
			i, ok := v.PrevInst()
			if !ok {
				break
			}
			fn(b, i)
		}
	}
}
