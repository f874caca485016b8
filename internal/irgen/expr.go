package irgen

import (
	"github.com/acd1034/tryrustc/internal/ast"
	"github.com/acd1034/tryrustc/internal/diag"
	"github.com/acd1034/tryrustc/internal/ir"
	"github.com/acd1034/tryrustc/internal/scope"
	"github.com/acd1034/tryrustc/internal/token"
	"github.com/acd1034/tryrustc/internal/types"
)

// lvalue is the address an lvalue expression resolves to (§4.4.7).
// direct names a known memory slot and goes through the fast Load/Store
// path; indirect carries an address value (from Addr, a pointer
// parameter, or pointer arithmetic) and goes through LoadInd/StoreInd.
type lvalue struct {
	direct bool
	mem    ir.MemoryID
	global bool
	addr   ir.InstID
	ty     *types.Type
}

// loadLValue reads lv's current value. An array decays to its address
// (there is nothing to load) and a struct cannot be materialized as a
// single scalar at all, so it is rejected; both are handled here before
// the caller ever builds a Load/LoadInd on a slot wider than one register.
func (g *genFun) loadLValue(lv lvalue, pos token.Position) (ir.InstID, error) {
	if lv.ty.IsArray() {
		return g.addrValue(lv), nil
	}
	if lv.ty.IsStruct() {
		return 0, diag.New(diag.Type, pos, "cannot use a struct value directly; take its address or access a member")
	}
	if lv.direct {
		return g.buildLoad(varEntry{Mem: lv.mem, Global: lv.global}), nil
	}
	return g.builder.BuildLoadInd(lv.addr, sizeOf(g.tags, lv.ty)), nil
}

func (g *genFun) storeLValue(lv lvalue, val ir.InstID, pos token.Position) error {
	if lv.ty.IsArray() || lv.ty.IsStruct() {
		return diag.New(diag.Type, pos, "cannot assign an aggregate value")
	}
	if lv.direct {
		if lv.global {
			g.builder.BuildStoreGlobal(lv.mem, val)
		} else {
			g.builder.BuildStore(lv.mem, val)
		}
		return nil
	}
	g.builder.BuildStoreInd(lv.addr, val, sizeOf(g.tags, lv.ty))
	return nil
}

// addrValue returns an ordinary InstID value for lv's address, taking
// the slot's address explicitly when lv is direct.
func (g *genFun) addrValue(lv lvalue) ir.InstID {
	if lv.direct {
		return g.builder.BuildAddr(lv.mem, lv.global)
	}
	return lv.addr
}

// genExpr lowers expr and returns the InstID holding its value together
// with its type.
func (g *genFun) genExpr(expr *ast.Expr) (ir.InstID, *types.Type, error) {
	switch expr.Kind {
	case ast.ExprNum:
		return g.builder.BuildConst(expr.NumVal), types.NewInt(), nil

	case ast.ExprStr:
		idx := g.mod.InternString(expr.StrVal)
		return g.builder.BuildStrAddr(idx), types.NewPointer(types.NewChar()), nil

	case ast.ExprIdent:
		entry, ok := g.vars.GetAll(expr.Name)
		if !ok {
			return 0, nil, diag.New(diag.Scope, expr.Pos, "variable %q should be declared before its first use", expr.Name)
		}
		if entry.Ty.IsArray() {
			// An array used as a value decays to a pointer to its first
			// element; there is no load to perform, the address is the
			// value (§4.4.5, array-to-pointer decay).
			return g.builder.BuildAddr(entry.Mem, entry.Global), entry.Ty.Decay(), nil
		}
		if entry.Ty.IsStruct() {
			return 0, nil, diag.New(diag.Type, expr.Pos, "cannot use a struct value directly; take its address or access a member")
		}
		return g.buildLoad(entry), entry.Ty, nil

	case ast.ExprAdd, ast.ExprSub, ast.ExprMul, ast.ExprDiv:
		return g.genArith(expr)

	case ast.ExprEq, ast.ExprNe, ast.ExprLt, ast.ExprLe:
		return g.genCompare(expr)

	case ast.ExprAssign:
		return g.genAssign(expr)

	case ast.ExprAddr:
		lv, err := g.genAddr(expr.X)
		if err != nil {
			return 0, nil, err
		}
		return g.addrValue(lv), types.NewPointer(lv.ty), nil

	case ast.ExprDeref:
		ptrVal, ptrTy, err := g.genExpr(expr.X)
		if err != nil {
			return 0, nil, err
		}
		if !ptrTy.IsPointer() {
			return 0, nil, diag.New(diag.Type, expr.Pos, "cannot dereference a non-pointer")
		}
		if ptrTy.Elem.IsArray() {
			// *p where p points at an array: the result decays right back
			// to the address of the array's first element.
			return ptrVal, ptrTy.Elem.Decay(), nil
		}
		if ptrTy.Elem.IsStruct() {
			return 0, nil, diag.New(diag.Type, expr.Pos, "cannot use a struct value directly; take its address or access a member")
		}
		return g.builder.BuildLoadInd(ptrVal, sizeOf(g.tags, ptrTy.Elem)), ptrTy.Elem, nil

	case ast.ExprDot:
		lv, err := g.genAddr(expr)
		if err != nil {
			return 0, nil, err
		}
		val, err := g.loadLValue(lv, expr.Pos)
		if err != nil {
			return 0, nil, err
		}
		resultTy := lv.ty
		if resultTy.IsArray() {
			resultTy = resultTy.Decay()
		}
		return val, resultTy, nil

	case ast.ExprCast:
		val, _, err := g.genExpr(expr.X)
		if err != nil {
			return 0, nil, err
		}
		return val, expr.CastTy, nil

	case ast.ExprTernary:
		return g.genTernary(expr)

	case ast.ExprCall:
		return g.genCall(expr)

	case ast.ExprBlock:
		result, err := g.lowerBlock(expr.Stmts)
		if err != nil {
			return 0, nil, err
		}
		if result.kind != resExpr {
			return 0, nil, diag.New(diag.Control, expr.Pos, "block expression has no trailing value")
		}
		return result.val, result.ty, nil

	default:
		return 0, nil, diag.New(diag.Control, expr.Pos, "unknown expression")
	}
}

// genArith lowers §4.4.5's pointer-arithmetic-aware Add/Sub alongside
// plain integer Add/Sub/Mul/Div. Pointer arithmetic is scaled to bytes
// at construction time (matching the byte offsets Dot computes for
// struct members, below), so the IR's Add/Sub always mean the same
// thing regardless of operand type, and no back end needs to special-
// case pointer-flavored arithmetic.
func (g *genFun) genArith(expr *ast.Expr) (ir.InstID, *types.Type, error) {
	lval, lty, err := g.genExpr(expr.L)
	if err != nil {
		return 0, nil, err
	}
	rval, rty, err := g.genExpr(expr.R)
	if err != nil {
		return 0, nil, err
	}
	lty, rty = lty.Decay(), rty.Decay()

	switch {
	case lty.IsPointer() && rty.IsInteger() && (expr.Kind == ast.ExprAdd || expr.Kind == ast.ExprSub):
		return g.buildBinary(expr.Kind, lval, g.scaleIndex(rval, lty.Elem)), lty, nil
	case rty.IsPointer() && lty.IsInteger() && expr.Kind == ast.ExprAdd:
		return g.buildBinary(expr.Kind, rval, g.scaleIndex(lval, rty.Elem)), rty, nil
	case lty.IsPointer() && rty.IsPointer() && expr.Kind == ast.ExprSub:
		if !lty.Equals(rty) {
			return 0, nil, diag.New(diag.Type, expr.Pos, "pointer difference requires matching element types")
		}
		bytes := g.builder.BuildSub(lval, rval)
		return g.builder.BuildDiv(bytes, g.builder.BuildConst(sizeOf(g.tags, lty.Elem))), types.NewInt(), nil
	case lty.IsInteger() && rty.IsInteger():
		return g.buildBinary(expr.Kind, lval, rval), types.NewInt(), nil
	default:
		return 0, nil, diag.New(diag.Type, expr.Pos, "invalid operand types for arithmetic")
	}
}

// scaleIndex multiplies an integer index by elem's size so pointer
// arithmetic counts bytes the way struct member offsets already do.
func (g *genFun) scaleIndex(index ir.InstID, elem *types.Type) ir.InstID {
	size := sizeOf(g.tags, elem)
	if size == 1 {
		return index
	}
	return g.builder.BuildMul(index, g.builder.BuildConst(size))
}

func (g *genFun) buildBinary(kind ast.ExprKind, lhs, rhs ir.InstID) ir.InstID {
	switch kind {
	case ast.ExprAdd:
		return g.builder.BuildAdd(lhs, rhs)
	case ast.ExprSub:
		return g.builder.BuildSub(lhs, rhs)
	case ast.ExprMul:
		return g.builder.BuildMul(lhs, rhs)
	case ast.ExprDiv:
		return g.builder.BuildDiv(lhs, rhs)
	default:
		panic("irgen: buildBinary called with a non-arithmetic kind")
	}
}

func (g *genFun) genCompare(expr *ast.Expr) (ir.InstID, *types.Type, error) {
	lval, lty, err := g.genExpr(expr.L)
	if err != nil {
		return 0, nil, err
	}
	rval, rty, err := g.genExpr(expr.R)
	if err != nil {
		return 0, nil, err
	}
	lty, rty = lty.Decay(), rty.Decay()
	if !lty.Equals(rty) {
		return 0, nil, diag.New(diag.Type, expr.Pos, "comparison operands must have matching types")
	}
	var val ir.InstID
	switch expr.Kind {
	case ast.ExprEq:
		val = g.builder.BuildEq(lval, rval)
	case ast.ExprNe:
		val = g.builder.BuildNe(lval, rval)
	case ast.ExprLt:
		val = g.builder.BuildLt(lval, rval)
	case ast.ExprLe:
		val = g.builder.BuildLe(lval, rval)
	}
	return val, types.NewInt(), nil
}

// genAssign evaluates the right-hand side, then the left-hand side's
// address, stores the value through that address, and yields the stored
// value (assignment is an expression, §4.4.5).
func (g *genFun) genAssign(expr *ast.Expr) (ir.InstID, *types.Type, error) {
	val, valTy, err := g.genExpr(expr.R)
	if err != nil {
		return 0, nil, err
	}
	lv, err := g.genAddr(expr.L)
	if err != nil {
		return 0, nil, err
	}
	if !lv.ty.Equals(valTy.Decay()) {
		return 0, nil, diag.New(diag.Type, expr.Pos, "assignment type mismatch")
	}
	if err := g.storeLValue(lv, val, expr.Pos); err != nil {
		return 0, nil, err
	}
	return val, lv.ty, nil
}

// genTernary lowers `cond ? then : else` using the same three-block
// shape as if/else, materializing the chosen arm's value into a
// dedicated slot so both arms can merge into one SSA-visible result
// without a phi instruction (this IR has none).
func (g *genFun) genTernary(expr *ast.Expr) (ir.InstID, *types.Type, error) {
	cond, condTy, err := g.genExpr(expr.Cond)
	if err != nil {
		return 0, nil, err
	}
	if !condTy.IsInteger() {
		return 0, nil, diag.New(diag.Type, expr.Pos, "ternary condition must be an integer")
	}
	condBool, err := g.genTruthValue(cond)
	if err != nil {
		return 0, nil, err
	}

	thenBlk := g.builder.InsertBasicBlockAfter(g.currentBlock())
	elseBlk := g.builder.InsertBasicBlockAfter(thenBlk)
	mergeBlk := g.builder.InsertBasicBlockAfter(elseBlk)
	g.builder.BuildConditionalBranch(condBool, thenBlk, elseBlk)

	// The arms' type isn't known until they're lowered, but the slot must
	// be allocated in the entry block up front (§4.4.6); ptrSize is wide
	// enough for any scalar this merge can carry (int, char, or pointer).
	result := g.allocEntry(ptrSize)

	g.builder.PositionAtEnd(thenBlk)
	thenVal, thenTy, err := g.genExpr(expr.Then)
	if err != nil {
		return 0, nil, err
	}
	if thenTy.IsArray() || thenTy.IsStruct() {
		return 0, nil, diag.New(diag.Type, expr.Pos, "ternary arms must be scalar")
	}
	g.builder.BuildStore(result, thenVal)
	g.builder.BuildUnconditionalBranch(mergeBlk)

	g.builder.PositionAtEnd(elseBlk)
	elseVal, elseTy, err := g.genExpr(expr.Else)
	if err != nil {
		return 0, nil, err
	}
	if !thenTy.Equals(elseTy) {
		return 0, nil, diag.New(diag.Type, expr.Pos, "ternary arms must have matching types")
	}
	g.builder.BuildStore(result, elseVal)
	g.builder.BuildUnconditionalBranch(mergeBlk)

	g.builder.PositionAtEnd(mergeBlk)
	return g.builder.BuildLoad(result), thenTy, nil
}

// genCall lowers a function call. Arguments are evaluated left to right
// before the call instruction is built (evaluation order is observable
// through side-effecting arguments).
func (g *genFun) genCall(expr *ast.Expr) (ir.InstID, *types.Type, error) {
	fnID, ok := g.mod.Lookup(expr.Name)
	if !ok {
		return 0, nil, diag.New(diag.Scope, expr.Pos, "call to undeclared function %q", expr.Name)
	}
	callee := g.mod.Function(fnID)
	if len(expr.Args) != len(callee.ParamTys) {
		return 0, nil, diag.New(diag.Type, expr.Pos, "function %q called with the wrong number of arguments", expr.Name)
	}
	args := make([]ir.InstID, len(expr.Args))
	for i, argExpr := range expr.Args {
		val, ty, err := g.genExpr(argExpr)
		if err != nil {
			return 0, nil, err
		}
		if !ty.Decay().Equals(callee.ParamTys[i]) {
			return 0, nil, diag.New(diag.Type, expr.Pos, "argument %d to %q has the wrong type", i+1, expr.Name)
		}
		args[i] = val
	}
	return g.builder.BuildCall(fnID, args), callee.RetTy, nil
}

// genAddr computes the lvalue expr refers to, without loading it
// (§4.4.7). Only Assign, Ident, Deref, and Dot denote lvalues; everything
// else is a scope error (the caller asked for the address of an rvalue).
func (g *genFun) genAddr(expr *ast.Expr) (lvalue, error) {
	switch expr.Kind {
	case ast.ExprAssign:
		// `(a = b)` stores b, then denotes a's own storage.
		val, valTy, err := g.genExpr(expr.R)
		if err != nil {
			return lvalue{}, err
		}
		lv, err := g.genAddr(expr.L)
		if err != nil {
			return lvalue{}, err
		}
		if !lv.ty.Equals(valTy.Decay()) {
			return lvalue{}, diag.New(diag.Type, expr.Pos, "assignment type mismatch")
		}
		return lv, g.storeLValue(lv, val, expr.Pos)

	case ast.ExprIdent:
		entry, ok := g.vars.GetAll(expr.Name)
		if !ok {
			return lvalue{}, diag.New(diag.Scope, expr.Pos, "variable %q should be declared before its first use", expr.Name)
		}
		return lvalue{direct: true, mem: entry.Mem, global: entry.Global, ty: entry.Ty}, nil

	case ast.ExprDeref:
		ptrVal, ptrTy, err := g.genExpr(expr.X)
		if err != nil {
			return lvalue{}, err
		}
		if !ptrTy.IsPointer() {
			return lvalue{}, diag.New(diag.Type, expr.Pos, "cannot dereference a non-pointer")
		}
		return lvalue{addr: ptrVal, ty: ptrTy.Elem}, nil

	case ast.ExprDot:
		baseAddr, baseTy, err := g.genStructAddr(expr.X)
		if err != nil {
			return lvalue{}, err
		}
		if !baseTy.IsStruct() {
			return lvalue{}, diag.New(diag.Type, expr.Pos, "member access on a non-struct")
		}
		// baseTy may be a bare tag reference (e.g. a local declared
		// `struct Point p;`, carrying no member list of its own); resolve
		// it through the tag scope to the struct's actual definition
		// before indexing its members (§4.4.7).
		baseTy = resolveStructTag(g.tags, baseTy)
		i := indexOf(baseTy.MemberNames, expr.Member)
		if i < 0 {
			return lvalue{}, diag.New(diag.Scope, expr.Pos, "struct has no member %q", expr.Member)
		}
		offset := g.builder.BuildConst(memberOffset(g.tags, baseTy, i))
		addr := g.builder.BuildAdd(baseAddr, offset)
		return lvalue{addr: addr, ty: baseTy.MemberTypes[i]}, nil

	default:
		return lvalue{}, diag.New(diag.Scope, expr.Pos, "cannot obtain address of rvalue")
	}
}

// genStructAddr resolves the address of a struct-valued expression, the
// base a Dot chain walks from.
func (g *genFun) genStructAddr(expr *ast.Expr) (ir.InstID, *types.Type, error) {
	lv, err := g.genAddr(expr)
	if err != nil {
		return 0, nil, err
	}
	return g.addrValue(lv), lv.ty, nil
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

// memberOffset sums the sizes of the members preceding index i, giving
// i's byte offset within a no-padding layout.
func memberOffset(tags *scope.Scope[*types.Type], structTy *types.Type, i int) uint64 {
	var offset uint64
	for j := 0; j < i; j++ {
		offset += sizeOf(tags, structTy.MemberTypes[j])
	}
	return offset
}

// resolveStructTag resolves a bare struct tag reference (a struct type
// carrying a name but no member list, the shape a variable declared as
// `struct Point p;` gets from the parser) through the tag scope to its
// installed definition. Non-struct types and struct types that already
// carry a member list are returned unchanged.
func resolveStructTag(tags *scope.Scope[*types.Type], ty *types.Type) *types.Type {
	if ty == nil || !ty.IsStruct() || len(ty.MemberTypes) > 0 {
		return ty
	}
	if def, ok := tags.GetAll(ty.Name); ok {
		return def
	}
	return ty
}

func (g *genFun) buildLoad(entry varEntry) ir.InstID {
	if entry.Global {
		return g.builder.BuildLoadGlobal(entry.Mem)
	}
	return g.builder.BuildLoad(entry.Mem)
}

// ptrSize is the byte width of a pointer value in this IR's target.
const ptrSize = 8

// sizeOf returns t's size in bytes, resolving t (or any struct nested
// within it) through tags first so a bare tag reference is sized by its
// actual definition rather than by an empty member list. There is no
// padding model here: array and struct sizes are the flat product/sum of
// their elements.
func sizeOf(tags *scope.Scope[*types.Type], t *types.Type) uint64 {
	switch {
	case t == nil:
		return 0
	case t.IsPointer():
		return ptrSize
	case t.IsArray():
		return uint64(t.Len) * sizeOf(tags, t.Elem)
	case t.IsStruct():
		t = resolveStructTag(tags, t)
		var total uint64
		for _, m := range t.MemberTypes {
			total += sizeOf(tags, m)
		}
		return total
	case t.Kind == types.Char:
		return 1
	default:
		return 4
	}
}
