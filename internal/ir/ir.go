// Package ir implements the custom intermediate representation: a
// module of functions, each a graph of basic blocks holding arena-owned
// instructions and memories.
//
// DESIGN CHOICE: every edge in this graph — block predecessor/successor,
// instruction operand/use, memory store/load — is represented as an
// arena id rather than a pointer:
// - ids stay valid and unique for the arena's whole lifetime, even after
//   the thing they name is removed by a pass
// - they are cheap, comparable map keys for the uses/pred/succ sets
// - mutation is confined to the one place (the builder) that knows how
//   to keep both sides of an edge in sync
//
// EXAMPLE:
//   Source:  int add(int a, int b) { return a + b; }
//   IR:      L1: %1 = param 0; store m1, %1
//                %3 = param 1; store m2, %3
//                %5 = load m1; %6 = load m2
//                %7 = add %5, %6; ret %7
package ir

import (
	"github.com/acd1034/tryrustc/internal/arena"
	"github.com/acd1034/tryrustc/internal/types"
)

// BlockID, InstID, MemoryID, and FunctionID name the four id spaces. They
// are aliases of arena.ID, so the compiler does not stop one arena's id
// from indexing another arena; the names only document which arena an id
// belongs to.
type (
	BlockID    = arena.ID
	InstID     = arena.ID
	MemoryID   = arena.ID
	FunctionID = arena.ID
)

// idSet is a set of arena ids, used for pred/succ/uses/store/load.
type idSet map[arena.ID]struct{}

func newIDSet() idSet { return make(idSet) }

func (s idSet) add(id arena.ID)      { s[id] = struct{}{} }
func (s idSet) remove(id arena.ID)   { delete(s, id) }
func (s idSet) has(id arena.ID) bool { _, ok := s[id]; return ok }

// Slice returns the set's members. Order is unspecified; callers that
// need a stable order (emission) should sort the result themselves.
func (s idSet) Slice() []arena.ID {
	out := make([]arena.ID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}

// Block is a straight-line run of instructions ending in exactly one
// effect instruction (I5). Pred/succ are sets: a duplicate branch target
// contributes one membership, not a multi-edge.
type Block struct {
	ID    BlockID
	Insts []InstID
	Pred  idSet
	Succ  idSet
}

// Memory is one logical stack slot. Store/Load cross-reference every
// instruction that writes or reads it (I4). Size is the slot's width in
// bytes; a scalar local is 1, 4 or 8 bytes, but an array or struct local
// needs its full byte extent so a back end can lay out byte-addressable
// storage and OpAddr/pointer arithmetic can walk within it.
type Memory struct {
	ID    MemoryID
	Size  uint64
	Store idSet
	Load  idSet
}

// Function is a declaration (Blocks empty) or a definition (Blocks
// non-empty) of a named routine. The block/inst/memory arenas are owned
// exclusively by this function; ids from one function's arenas are
// meaningless in another's.
type Function struct {
	Name       string
	RetTy      *types.Type // nil means void
	ParamTys   []*types.Type
	ParamNames []string

	Blocks []BlockID // execution order for emission (I1)

	BlockArena  *arena.Arena[Block]
	InstArena   *arena.Arena[Inst]
	MemoryArena *arena.Arena[Memory]
}

// NewFunction creates a function with empty arenas. It starts life as a
// declaration; IR construction promotes it to a definition by appending
// to Blocks.
func NewFunction(name string, retTy *types.Type, paramTys []*types.Type, paramNames []string) *Function {
	return &Function{
		Name:        name,
		RetTy:       retTy,
		ParamTys:    paramTys,
		ParamNames:  paramNames,
		BlockArena:  arena.New[Block](),
		InstArena:   arena.New[Inst](),
		MemoryArena: arena.New[Memory](),
	}
}

// IsDeclaration reports whether f has no body.
func (f *Function) IsDeclaration() bool { return len(f.Blocks) == 0 }

// FunTy reconstructs f's function type for signature comparisons.
func (f *Function) FunTy() *types.Type {
	return types.NewFunTy(f.RetTy, f.ParamTys, f.ParamNames)
}

// Block returns the block payload for id.
func (f *Function) Block(id BlockID) *Block { return f.BlockArena.Get(id) }

// Inst returns the instruction payload for id.
func (f *Function) Inst(id InstID) *Inst { return f.InstArena.Get(id) }

// Memory returns the memory payload for id.
func (f *Function) Memory(id MemoryID) *Memory { return f.MemoryArena.Get(id) }

// blockIndex returns the position of b within f.Blocks, or -1.
func (f *Function) blockIndex(b BlockID) int {
	for i, id := range f.Blocks {
		if id == b {
			return i
		}
	}
	return -1
}

// instIndex returns the position of inst within its block's Insts, or -1.
func instIndex(blk *Block, inst InstID) int {
	for i, id := range blk.Insts {
		if id == inst {
			return i
		}
	}
	return -1
}

// Module is the top-level compilation unit: a named collection of
// functions addressed by id so that a Call instruction can reference a
// function before its definition is lowered (forward declarations).
type Module struct {
	Name      string
	Functions *arena.Arena[Function]
	byName    map[string]FunctionID

	// Globals backs every top-level variable's storage. It is a separate
	// arena from any Function's MemoryArena because a global is visible
	// to (and must be addressable by) every function, not just the one
	// that happened to declare it; Inst.GlobalMem marks which arena an
	// instruction's Mem id resolves against.
	Globals *arena.Arena[Memory]

	// Strings holds the bytes of every string literal encountered during
	// lowering, interned by content; OpStrAddr.StrIndex addresses it.
	Strings []string
}

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{
		Name:      name,
		Functions: arena.New[Function](),
		byName:    make(map[string]FunctionID),
		Globals:   arena.New[Memory](),
	}
}

// AllocGlobal allocates a fresh module-level global storage slot of the
// given byte size. It exists so callers outside this package (irgen's
// top-level lowering, which runs before any function's Builder is
// constructed) can allocate global storage without reaching into
// Globals' internals themselves.
func (m *Module) AllocGlobal(size uint64) MemoryID {
	return m.Globals.AllocWith(func(id MemoryID) Memory {
		return Memory{ID: id, Size: size, Store: newIDSet(), Load: newIDSet()}
	})
}

// InternString returns the index of s within m.Strings, appending it if
// this is the first time s has been seen.
func (m *Module) InternString(s string) int {
	for i, existing := range m.Strings {
		if existing == s {
			return i
		}
	}
	m.Strings = append(m.Strings, s)
	return len(m.Strings) - 1
}

// DeclareFunction installs f under its own name, returning its id. If a
// function with the same name is already installed, its id is returned
// unchanged and f is not stored; callers compare FunTy themselves to
// detect a conflicting redeclaration (§4.4, Control errors).
func (m *Module) DeclareFunction(f *Function) FunctionID {
	if id, ok := m.byName[f.Name]; ok {
		return id
	}
	id := m.Functions.Alloc(*f)
	m.byName[f.Name] = id
	return id
}

// Lookup returns the id of the function named name.
func (m *Module) Lookup(name string) (FunctionID, bool) {
	id, ok := m.byName[name]
	return id, ok
}

// Function returns the payload for id.
func (m *Module) Function(id FunctionID) *Function { return m.Functions.Get(id) }
