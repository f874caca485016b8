// Package cemit lowers the IR to plain C source: labeled basic blocks and
// unstructured goto, one uniform "long" register per value so a value can
// hold either an integer or an address without the back end tracking
// types, and a byte-addressable scratch buffer per storage class (one
// "m" array per function for locals, one shared "g_mem" array for
// globals) so arrays, structs, and taken addresses have somewhere to
// live.
package cemit

import (
	"fmt"
	"strings"

	"github.com/acd1034/tryrustc/internal/arena"
	"github.com/acd1034/tryrustc/internal/ir"
)

// Emit renders mod as a freestanding C translation unit.
func Emit(mod *ir.Module) string {
	var b strings.Builder
	fmt.Fprintf(&b, "// module %q, emitted by tryrustc\n\n", mod.Name)

	globalOffsets, globalTotal := layout(mod.Globals)
	if globalTotal == 0 {
		globalTotal = 1
	}
	fmt.Fprintf(&b, "static unsigned char g_mem[%d];\n", globalTotal)

	for i, s := range mod.Strings {
		fmt.Fprintf(&b, "static const char g_str%d[] = %s;\n", i, cQuote(s))
	}
	b.WriteString("\n")

	for id := arena.ID(1); int(id) <= mod.Functions.Len(); id++ {
		if !mod.Functions.Live(id) {
			continue
		}
		emitFunction(&b, mod, mod.Function(id), globalOffsets)
	}
	return b.String()
}

// layout assigns each live memory slot in a a byte offset within a single
// flat buffer sized to fit every slot, in allocation order.
func layout(a *arena.Arena[ir.Memory]) (map[ir.MemoryID]uint64, uint64) {
	offsets := make(map[ir.MemoryID]uint64)
	var total uint64
	for id := arena.ID(1); int(id) <= a.Len(); id++ {
		if !a.Live(id) {
			continue
		}
		mem := a.Get(id)
		offsets[id] = total
		total += mem.Size
	}
	return offsets, total
}

func cType(fn *ir.Function) string {
	if fn.RetTy == nil {
		return "void"
	}
	return "long"
}

func emitFunction(b *strings.Builder, mod *ir.Module, fn *ir.Function, globalOffsets map[ir.MemoryID]uint64) {
	retTy := cType(fn)
	params := paramList(fn)

	if fn.IsDeclaration() {
		fmt.Fprintf(b, "%s %s(%s);\n", retTy, fn.Name, params)
		return
	}

	fmt.Fprintf(b, "%s %s(%s) {\n", retTy, fn.Name, params)

	localOffsets, localTotal := layout(fn.MemoryArena)
	if localTotal == 0 {
		localTotal = 1
	}
	fmt.Fprintf(b, "  unsigned char m[%d];\n", localTotal)

	for id := arena.ID(1); int(id) <= fn.InstArena.Len(); id++ {
		if !fn.InstArena.Live(id) {
			continue
		}
		if fn.Inst(id).IsValue() {
			fmt.Fprintf(b, "  long r%d;\n", id)
		}
	}

	for _, blkID := range fn.Blocks {
		fmt.Fprintf(b, " L%d:\n", blkID)
		blk := fn.Block(blkID)
		for _, instID := range blk.Insts {
			if !fn.InstArena.Live(instID) {
				continue
			}
			emitInst(b, mod, fn, instID, localOffsets, globalOffsets)
		}
	}
	b.WriteString("}\n\n")
}

func paramList(fn *ir.Function) string {
	if len(fn.ParamTys) == 0 {
		return "void"
	}
	parts := make([]string, len(fn.ParamTys))
	for i := range fn.ParamTys {
		parts[i] = fmt.Sprintf("long p%d", i)
	}
	return strings.Join(parts, ", ")
}

// scalarType returns the C type through which a size-byte scalar is
// loaded or stored: 1 for char, 4 for int, 8 (or anything else) for a
// pointer-width value.
func scalarType(size uint64) string {
	switch size {
	case 1:
		return "unsigned char"
	case 4:
		return "int"
	default:
		return "long"
	}
}

func bufFor(global bool) string {
	if global {
		return "g_mem"
	}
	return "m"
}

func emitInst(b *strings.Builder, mod *ir.Module, fn *ir.Function, id ir.InstID, localOffsets, globalOffsets map[ir.MemoryID]uint64) {
	inst := fn.Inst(id)
	r := func(x ir.InstID) string { return fmt.Sprintf("r%d", x) }

	switch inst.Op {
	case ir.OpEq:
		fmt.Fprintf(b, "  r%d = (%s == %s);\n", id, r(inst.LHS), r(inst.RHS))
	case ir.OpNe:
		fmt.Fprintf(b, "  r%d = (%s != %s);\n", id, r(inst.LHS), r(inst.RHS))
	case ir.OpLt:
		fmt.Fprintf(b, "  r%d = (%s < %s);\n", id, r(inst.LHS), r(inst.RHS))
	case ir.OpLe:
		fmt.Fprintf(b, "  r%d = (%s <= %s);\n", id, r(inst.LHS), r(inst.RHS))
	case ir.OpAdd:
		fmt.Fprintf(b, "  r%d = %s + %s;\n", id, r(inst.LHS), r(inst.RHS))
	case ir.OpSub:
		fmt.Fprintf(b, "  r%d = %s - %s;\n", id, r(inst.LHS), r(inst.RHS))
	case ir.OpMul:
		fmt.Fprintf(b, "  r%d = %s * %s;\n", id, r(inst.LHS), r(inst.RHS))
	case ir.OpDiv:
		fmt.Fprintf(b, "  r%d = %s / %s;\n", id, r(inst.LHS), r(inst.RHS))

	case ir.OpLoad:
		offsets, buf := localOffsets, bufFor(inst.GlobalMem)
		if inst.GlobalMem {
			offsets = globalOffsets
		}
		size := memSize(fn, mod, inst.Mem, inst.GlobalMem)
		fmt.Fprintf(b, "  r%d = *(%s*)(%s + %d);\n", id, scalarType(size), buf, offsets[inst.Mem])

	case ir.OpCall:
		callee := mod.Function(inst.Callee)
		args := make([]string, len(inst.Args))
		for i, a := range inst.Args {
			args[i] = r(a)
		}
		call := fmt.Sprintf("%s(%s)", callee.Name, strings.Join(args, ", "))
		if callee.RetTy == nil {
			fmt.Fprintf(b, "  %s;\n", call)
		} else {
			fmt.Fprintf(b, "  r%d = %s;\n", id, call)
		}

	case ir.OpConst:
		fmt.Fprintf(b, "  r%d = %d;\n", id, inst.ConstVal)

	case ir.OpParam:
		fmt.Fprintf(b, "  r%d = p%d;\n", id, inst.ParamIndex)

	case ir.OpStrAddr:
		fmt.Fprintf(b, "  r%d = (long)g_str%d;\n", id, inst.StrIndex)

	case ir.OpAddr:
		offsets, buf := localOffsets, bufFor(inst.GlobalMem)
		if inst.GlobalMem {
			offsets = globalOffsets
		}
		fmt.Fprintf(b, "  r%d = (long)(%s + %d);\n", id, buf, offsets[inst.Mem])

	case ir.OpLoadInd:
		fmt.Fprintf(b, "  r%d = *(%s*)%s;\n", id, scalarType(inst.Width), r(inst.Addr))

	case ir.OpBr:
		fmt.Fprintf(b, "  if (%s) goto L%d; else goto L%d;\n", r(inst.Cond), inst.IfTrue, inst.IfFalse)

	case ir.OpJmp:
		fmt.Fprintf(b, "  goto L%d;\n", inst.Target)

	case ir.OpStore:
		offsets, buf := localOffsets, bufFor(inst.GlobalMem)
		if inst.GlobalMem {
			offsets = globalOffsets
		}
		size := memSize(fn, mod, inst.Mem, inst.GlobalMem)
		fmt.Fprintf(b, "  *(%s*)(%s + %d) = %s;\n", scalarType(size), buf, offsets[inst.Mem], r(inst.Val))

	case ir.OpStoreInd:
		fmt.Fprintf(b, "  *(%s*)%s = %s;\n", scalarType(inst.Width), r(inst.Addr), r(inst.Val))

	case ir.OpRet:
		if fn.RetTy == nil {
			b.WriteString("  return;\n")
		} else {
			fmt.Fprintf(b, "  return %s;\n", r(inst.RetVal))
		}
	}
}

func memSize(fn *ir.Function, mod *ir.Module, id ir.MemoryID, global bool) uint64 {
	if global {
		return mod.Globals.Get(id).Size
	}
	return fn.Memory(id).Size
}

// cQuote renders s as a C string literal, escaping the characters that
// would otherwise break out of it.
func cQuote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
