// Package llvmemit lowers the IR to LLVM IR using github.com/llir/llvm,
// mirroring cemit's register and memory model one level down: every
// value is an i64 (so an address and an integer share one register kind
// with no type tracking needed downstream), and each storage class gets
// one flat byte buffer indexed by getelementptr, exactly as cemit indexes
// its "m"/"g_mem" arrays by pointer arithmetic.
package llvmemit

import (
	"fmt"

	"github.com/acd1034/tryrustc/internal/arena"
	tir "github.com/acd1034/tryrustc/internal/ir"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// Emit lowers mod to an LLVM module and returns its textual IR.
func Emit(mod *tir.Module) string {
	m := ir.NewModule()
	m.SourceFilename = mod.Name

	globalOffsets, globalTotal := layout(mod.Globals)
	if globalTotal == 0 {
		globalTotal = 1
	}
	gmemTyp := types.NewArray(globalTotal, types.I8)
	gmem := m.NewGlobalDef("g_mem", constant.NewZeroInitializer(gmemTyp))

	strGlobals := make([]*ir.Global, len(mod.Strings))
	for i, s := range mod.Strings {
		data := constant.NewCharArrayFromString(s + "\x00")
		strGlobals[i] = m.NewGlobalDef(fmt.Sprintf("str%d", i), data)
	}

	funcs := make(map[tir.FunctionID]*ir.Func)
	for id := arena.ID(1); int(id) <= mod.Functions.Len(); id++ {
		if !mod.Functions.Live(id) {
			continue
		}
		fn := mod.Function(id)
		params := make([]*ir.Param, len(fn.ParamTys))
		for i := range fn.ParamTys {
			params[i] = ir.NewParam(fmt.Sprintf("p%d", i), types.I64)
		}
		retTyp := types.Type(types.I64)
		if fn.RetTy == nil {
			retTyp = types.Void
		}
		funcs[id] = m.NewFunc(fn.Name, retTyp, params...)
	}

	e := &emitter{m: m, mod: mod, gmem: gmem, gmemTyp: gmemTyp, globalOffsets: globalOffsets, strGlobals: strGlobals, funcs: funcs}
	for id := arena.ID(1); int(id) <= mod.Functions.Len(); id++ {
		if !mod.Functions.Live(id) {
			continue
		}
		fn := mod.Function(id)
		if fn.IsDeclaration() {
			continue
		}
		e.emitFunction(fn, funcs[id])
	}

	return m.String()
}

type emitter struct {
	m             *ir.Module
	mod           *tir.Module
	gmem          *ir.Global
	gmemTyp       *types.ArrayType
	globalOffsets map[tir.MemoryID]uint64
	strGlobals    []*ir.Global
	funcs         map[tir.FunctionID]*ir.Func
}

func layout(a *arena.Arena[tir.Memory]) (map[tir.MemoryID]uint64, uint64) {
	offsets := make(map[tir.MemoryID]uint64)
	var total uint64
	for id := arena.ID(1); int(id) <= a.Len(); id++ {
		if !a.Live(id) {
			continue
		}
		offsets[id] = total
		total += a.Get(id).Size
	}
	return offsets, total
}

// intType returns the LLVM integer type through which a width-byte
// scalar is loaded or stored: i8 for char, i32 for int, i64 for a
// pointer-width value.
func intType(width uint64) types.Type {
	switch width {
	case 1:
		return types.I8
	case 4:
		return types.I32
	default:
		return types.I64
	}
}

func icmpPred(op tir.Op) enum.IPred {
	switch op {
	case tir.OpEq:
		return enum.IPredEQ
	case tir.OpNe:
		return enum.IPredNE
	case tir.OpLt:
		return enum.IPredSLT
	case tir.OpLe:
		return enum.IPredSLE
	default:
		panic("llvmemit: icmpPred called with a non-comparison op")
	}
}

func (e *emitter) emitFunction(fn *tir.Function, lfn *ir.Func) {
	localOffsets, localTotal := layout(fn.MemoryArena)
	if localTotal == 0 {
		localTotal = 1
	}
	localTyp := types.NewArray(localTotal, types.I8)

	blocks := make(map[tir.BlockID]*ir.Block, len(fn.Blocks))
	for _, id := range fn.Blocks {
		blocks[id] = lfn.NewBlock(fmt.Sprintf("L%d", id))
	}
	entry := blocks[fn.Blocks[0]]
	mbuf := entry.NewAlloca(localTyp)

	vals := make(map[tir.InstID]value.Value)
	fe := &funcEmitter{emitter: e, fn: fn, lfn: lfn, mbuf: mbuf, localTyp: localTyp, localOffsets: localOffsets, blocks: blocks, vals: vals}

	for _, blkID := range fn.Blocks {
		blk := fn.Block(blkID)
		cur := blocks[blkID]
		for _, instID := range blk.Insts {
			if !fn.InstArena.Live(instID) {
				continue
			}
			fe.emitInst(cur, instID)
		}
	}
}

type funcEmitter struct {
	*emitter
	fn           *tir.Function
	lfn          *ir.Func
	mbuf         *ir.InstAlloca
	localTyp     *types.ArrayType
	localOffsets map[tir.MemoryID]uint64
	blocks       map[tir.BlockID]*ir.Block
	vals         map[tir.InstID]value.Value
}

// slotPtr returns a pointer to the width-byte scalar at mem's offset
// within the appropriate buffer, typed for that width.
func (fe *funcEmitter) slotPtr(block *ir.Block, mem tir.MemoryID, global bool, width uint64) value.Value {
	zero := constant.NewInt(types.I64, 0)
	var buf value.Value
	var arrTyp types.Type
	var offset uint64
	if global {
		buf, arrTyp, offset = fe.gmem, fe.gmemTyp, fe.globalOffsets[mem]
	} else {
		buf, arrTyp, offset = fe.mbuf, fe.localTyp, fe.localOffsets[mem]
	}
	elemPtr := block.NewGetElementPtr(arrTyp, buf, zero, constant.NewInt(types.I64, int64(offset)))
	if width == 1 {
		return elemPtr
	}
	return block.NewBitCast(elemPtr, types.NewPointer(intType(width)))
}

func (fe *funcEmitter) memSize(mem tir.MemoryID, global bool) uint64 {
	if global {
		return fe.mod.Globals.Get(mem).Size
	}
	return fe.fn.Memory(mem).Size
}

// emitInst lowers one instruction into block. Every IR block ends in
// exactly one effect instruction (I5), so a block's instructions are
// always appended to that same *ir.Block in order; nothing here ever
// needs to redirect to a different one.
func (fe *funcEmitter) emitInst(block *ir.Block, id tir.InstID) {
	inst := fe.fn.Inst(id)
	v := func(x tir.InstID) value.Value { return fe.vals[x] }

	switch inst.Op {
	case tir.OpEq, tir.OpNe, tir.OpLt, tir.OpLe:
		cmp := block.NewICmp(icmpPred(inst.Op), v(inst.LHS), v(inst.RHS))
		fe.vals[id] = block.NewZExt(cmp, types.I64)
	case tir.OpAdd:
		fe.vals[id] = block.NewAdd(v(inst.LHS), v(inst.RHS))
	case tir.OpSub:
		fe.vals[id] = block.NewSub(v(inst.LHS), v(inst.RHS))
	case tir.OpMul:
		fe.vals[id] = block.NewMul(v(inst.LHS), v(inst.RHS))
	case tir.OpDiv:
		fe.vals[id] = block.NewSDiv(v(inst.LHS), v(inst.RHS))

	case tir.OpLoad:
		width := fe.memSize(inst.Mem, inst.GlobalMem)
		ptr := fe.slotPtr(block, inst.Mem, inst.GlobalMem, width)
		raw := block.NewLoad(intType(width), ptr)
		fe.vals[id] = fe.widen(block, raw, width)

	case tir.OpCall:
		callee := fe.funcs[inst.Callee]
		args := make([]value.Value, len(inst.Args))
		for i, a := range inst.Args {
			args[i] = v(a)
		}
		call := block.NewCall(callee, args...)
		fe.vals[id] = call

	case tir.OpConst:
		fe.vals[id] = constant.NewInt(types.I64, int64(inst.ConstVal))

	case tir.OpParam:
		fe.vals[id] = fe.lfn.Params[inst.ParamIndex]

	case tir.OpStrAddr:
		g := fe.strGlobals[inst.StrIndex]
		zero := constant.NewInt(types.I64, 0)
		gep := block.NewGetElementPtr(g.ContentType, g, zero, zero)
		fe.vals[id] = block.NewPtrToInt(gep, types.I64)

	case tir.OpAddr:
		ptr := fe.slotPtr(block, inst.Mem, inst.GlobalMem, 1)
		fe.vals[id] = block.NewPtrToInt(ptr, types.I64)

	case tir.OpLoadInd:
		ptr := block.NewIntToPtr(v(inst.Addr), types.NewPointer(intType(inst.Width)))
		raw := block.NewLoad(intType(inst.Width), ptr)
		fe.vals[id] = fe.widen(block, raw, inst.Width)

	case tir.OpBr:
		cond := block.NewICmp(enum.IPredNE, v(inst.Cond), constant.NewInt(types.I64, 0))
		block.NewCondBr(cond, fe.blocks[inst.IfTrue], fe.blocks[inst.IfFalse])

	case tir.OpJmp:
		block.NewBr(fe.blocks[inst.Target])

	case tir.OpStore:
		width := fe.memSize(inst.Mem, inst.GlobalMem)
		ptr := fe.slotPtr(block, inst.Mem, inst.GlobalMem, width)
		block.NewStore(fe.narrow(block, v(inst.Val), width), ptr)

	case tir.OpStoreInd:
		ptr := block.NewIntToPtr(v(inst.Addr), types.NewPointer(intType(inst.Width)))
		block.NewStore(fe.narrow(block, v(inst.Val), inst.Width), ptr)

	case tir.OpRet:
		if fe.fn.RetTy == nil {
			block.NewRet(nil)
		} else {
			block.NewRet(v(inst.RetVal))
		}
	}
}

// widen zero-extends a just-loaded width-byte value up to the uniform
// i64 register size.
func (fe *funcEmitter) widen(block *ir.Block, val value.Value, width uint64) value.Value {
	if width >= 8 {
		return val
	}
	return block.NewZExt(val, types.I64)
}

// narrow truncates an i64 register value down to width bytes before it
// is written through a smaller slot.
func (fe *funcEmitter) narrow(block *ir.Block, val value.Value, width uint64) value.Value {
	if width >= 8 {
		return val
	}
	return block.NewTrunc(val, intType(width))
}
