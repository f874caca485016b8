package ir

// Op names every instruction kind. Eq..Div, Load/Call/Const, Param,
// StrAddr, Addr and LoadInd are value variants (they produce a value
// whose SSA name is the instruction's own id); Br/Jmp/Store/StoreInd/Ret
// are effect variants (§ GLOSSARY).
//
// Param is one addition beyond the source inst kinds: a function's
// body is compiled independently of its call sites, so something has to
// stand for "the value the caller passed for parameter i" inside the
// callee's own instruction stream. Param(i) fills that role the same
// way Const does for a literal: no operands, a value available for a
// Store to the parameter's entry-block alloca.
//
// Addr/LoadInd/StoreInd are another addition: the base instruction set
// has no pointer type, so Load/Store always name their memory slot
// directly. Once a variable's address can be taken and passed around as
// an ordinary value (&x, pointer parameters, *p), something has to
// produce that address as a value (Addr) and something has to read or
// write through it once it is no longer tied to a known slot
// (LoadInd/StoreInd). Load/Store remain the fast, direct path for named
// variables that never have their address taken.
type Op int

const (
	OpEq Op = iota
	OpNe
	OpLt
	OpLe
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpLoad
	OpCall
	OpConst
	OpParam
	OpStrAddr
	OpAddr
	OpLoadInd
	OpBr
	OpJmp
	OpStore
	OpStoreInd
	OpRet
)

// Inst is one instruction. Only the fields relevant to Op are set.
// Uses is the reverse-edge set (I3): every instruction that reads this
// one's produced value, maintained exclusively by the builder.
type Inst struct {
	ID   InstID
	Op   Op
	Uses idSet

	// Eq, Ne, Lt, Le, Add, Sub, Mul, Div
	LHS, RHS InstID

	// Load, Store
	Mem       MemoryID
	GlobalMem bool // true iff Mem indexes Module.Globals rather than the owning Function's MemoryArena

	// Store
	Val InstID

	// Call
	Callee FunctionID
	Args   []InstID

	// Const
	ConstVal uint64

	// Param
	ParamIndex int

	// StrAddr: the address of Module.Strings[StrIndex]
	StrIndex int

	// Addr: the address of memory slot Mem (reuses Mem/GlobalMem above)

	// LoadInd, StoreInd: the address value being read or written through,
	// and the byte width of the scalar sitting at that address (1 for
	// char, 4 for int, 8 for a pointer) — the one piece of type
	// information this otherwise type-erased IR retains, because nothing
	// else tells a back end how many bytes a dereference touches once the
	// address is a plain value rather than a known memory slot.
	Addr  InstID
	Width uint64

	// Br
	Cond        InstID
	IfTrue      BlockID
	IfFalse     BlockID

	// Jmp
	Target BlockID

	// Ret
	RetVal InstID
}

// IsValue reports whether i produces a value other code can reference.
func (i *Inst) IsValue() bool {
	return !i.HasSideEffect()
}

// HasSideEffect reports whether i is an effect instruction (Br, Jmp,
// Store, StoreInd, Ret). DCE treats exactly these as always-live.
func (i *Inst) HasSideEffect() bool {
	switch i.Op {
	case OpBr, OpJmp, OpStore, OpStoreInd, OpRet:
		return true
	default:
		return false
	}
}

// IsTerminator reports whether i can legally end a basic block (I5).
func (i *Inst) IsTerminator() bool {
	switch i.Op {
	case OpBr, OpJmp, OpRet:
		return true
	default:
		return false
	}
}

// IsConst reports whether i is a Const instruction, the one value kind
// constant folding and DCE special-case.
func (i *Inst) IsConst() bool { return i.Op == OpConst }

// operands returns the instruction ids i reads from, used by the
// builder to thread uses/store/load bookkeeping without repeating the
// op-specific field access at every call site.
func (i *Inst) operands() []InstID {
	switch i.Op {
	case OpEq, OpNe, OpLt, OpLe, OpAdd, OpSub, OpMul, OpDiv:
		return []InstID{i.LHS, i.RHS}
	case OpLoad:
		return nil
	case OpCall:
		return append([]InstID(nil), i.Args...)
	case OpConst:
		return nil
	case OpParam:
		return nil
	case OpStrAddr:
		return nil
	case OpAddr:
		return nil
	case OpLoadInd:
		return []InstID{i.Addr}
	case OpBr:
		return []InstID{i.Cond}
	case OpJmp:
		return nil
	case OpStore:
		return []InstID{i.Val}
	case OpStoreInd:
		return []InstID{i.Addr, i.Val}
	case OpRet:
		if i.RetVal == 0 {
			// A void return carries no value; id 0 is never issued.
			return nil
		}
		return []InstID{i.RetVal}
	default:
		return nil
	}
}
