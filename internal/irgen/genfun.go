package irgen

import (
	"github.com/acd1034/tryrustc/internal/ast"
	"github.com/acd1034/tryrustc/internal/diag"
	"github.com/acd1034/tryrustc/internal/ir"
	"github.com/acd1034/tryrustc/internal/scope"
	"github.com/acd1034/tryrustc/internal/types"
)

// genFun drives IR construction for a single function body. It holds
// exactly the mutable state construction needs: the builder, the two
// scopes (variables and struct tags), and the break/continue label
// stacks tied to the lexical nesting of the loop currently being
// lowered.
type genFun struct {
	mod     *ir.Module
	fn      *ir.Function
	builder *ir.Builder

	vars *scope.Scope[varEntry]
	tags *scope.Scope[*types.Type]

	breakLabel []ir.BlockID
	contLabel  []ir.BlockID
}

// stmtResultKind is the three-way result every statement lowering
// produces (§4.4): most statements report whether they terminated their
// block; a statement-expression additionally carries the value of its
// last expression statement.
type stmtResultKind int

const (
	resTerminator stmtResultKind = iota
	resNoTerminator
	resExpr
)

type stmtResult struct {
	kind stmtResultKind
	val  ir.InstID
	ty   *types.Type
}

func terminator() stmtResult   { return stmtResult{kind: resTerminator} }
func noTerminator() stmtResult { return stmtResult{kind: resNoTerminator} }
func exprResult(v ir.InstID, ty *types.Type) stmtResult {
	return stmtResult{kind: resExpr, val: v, ty: ty}
}

// defineFunction promotes a declared (or newly declared) function to a
// definition: entry block, parameter allocas, lowered body, and a check
// that every path through the body terminates.
func defineFunction(mod *ir.Module, vars *scope.Scope[varEntry], tags *scope.Scope[*types.Type], item ast.TopLevel) error {
	funTy := item.FunTy
	fnID := mod.DeclareFunction(ir.NewFunction(item.Name, funTy.Ret, funTy.Params, funTy.ParamNames))
	fn := mod.Function(fnID)
	if !fn.FunTy().Equals(funTy) {
		return diag.New(diag.Control, item.Pos, "function %q type differs from previous declaration", item.Name)
	}
	if !fn.IsDeclaration() {
		return diag.New(diag.Control, item.Pos, "function %q already defined", item.Name)
	}
	// A freshly declared fn carries item's signature directly; an
	// already-declared one was type-checked above, so overwrite its
	// parameter names with this definition's (declarations need not name
	// their parameters the same way).
	fn.ParamNames = funTy.ParamNames

	builder := ir.NewBuilderWithGlobals(fn, mod.Globals)
	entry := builder.AppendBasicBlock()
	builder.PositionAtEnd(entry)

	g := &genFun{mod: mod, fn: fn, builder: builder, vars: vars, tags: tags}
	popVars := g.vars.Guard()
	defer popVars()

	for i, paramTy := range fn.ParamTys {
		mem := builder.BuildAlloca(sizeOf(g.tags, paramTy))
		val := builder.BuildParam(i)
		builder.BuildStore(mem, val)
		name := ""
		if i < len(fn.ParamNames) {
			name = fn.ParamNames[i]
		}
		g.vars.Insert(name, varEntry{Mem: mem, Ty: paramTy})
	}

	result, err := g.lowerBlock(item.Body)
	if err != nil {
		return err
	}
	if result.kind != resTerminator {
		return diag.New(diag.Control, item.Pos, "no terminator in function %q", item.Name)
	}
	return nil
}

// lowerBlock lowers a sequence of statements in the current block,
// short-circuiting as soon as one of them terminates (later statements
// in source after a terminator are unreachable and are not lowered;
// I5 only requires a well-formed function, not that dead statements be
// retained).
func (g *genFun) lowerBlock(stmts []ast.Stmt) (stmtResult, error) {
	result := noTerminator()
	for _, stmt := range stmts {
		r, err := g.lowerStmt(stmt)
		if err != nil {
			return stmtResult{}, err
		}
		result = r
		if result.kind == resTerminator {
			break
		}
	}
	return result, nil
}

func (g *genFun) lowerStmt(stmt ast.Stmt) (stmtResult, error) {
	switch stmt.Kind {
	case ast.StmtVarDef:
		return g.lowerVarDef(stmt)
	case ast.StmtStructDef:
		if err := installStruct(g.tags, stmt.StructTy, stmt.Pos); err != nil {
			return stmtResult{}, err
		}
		return noTerminator(), nil
	case ast.StmtIfElse:
		return g.lowerIfElse(stmt)
	case ast.StmtFor:
		return g.lowerFor(stmt)
	case ast.StmtBreak:
		return g.lowerBreak(stmt)
	case ast.StmtCont:
		return g.lowerContinue(stmt)
	case ast.StmtReturn:
		return g.lowerReturn(stmt)
	case ast.StmtBlock:
		pop := g.vars.Guard()
		defer pop()
		return g.lowerBlock(stmt.Block)
	case ast.StmtExpr:
		val, ty, err := g.genExpr(stmt.Expr)
		if err != nil {
			return stmtResult{}, err
		}
		return exprResult(val, ty), nil
	default:
		return stmtResult{}, diag.New(diag.Control, stmt.Pos, "unknown statement")
	}
}

// lowerVarDef allocates one entry-block slot per binding, binds its
// name in the current scope, and stores its initializer if present
// (§4.4.1).
func (g *genFun) lowerVarDef(stmt ast.Stmt) (stmtResult, error) {
	for _, binding := range stmt.VarDefs {
		if _, exists := g.vars.Get(binding.Name); exists {
			return stmtResult{}, diag.New(diag.Scope, stmt.Pos, "variable %q already exists", binding.Name)
		}
		mem := g.allocEntry(sizeOf(g.tags, binding.Type))
		g.vars.Insert(binding.Name, varEntry{Mem: mem, Ty: binding.Type})
		if binding.Init != nil {
			val, ty, err := g.genExpr(binding.Init)
			if err != nil {
				return stmtResult{}, err
			}
			if !ty.Equals(binding.Type) {
				return stmtResult{}, diag.New(diag.Type, stmt.Pos, "initializer type mismatch for %q", binding.Name)
			}
			g.builder.BuildStore(mem, val)
		}
	}
	return noTerminator(), nil
}

// allocEntry allocates a local's backing memory in the function's entry
// block regardless of where in the block tree the declaration lives
// (§4.4.6). BuildAlloca itself only ever touches the memory arena, not
// the instruction stream, so this just needs to happen on the shared
// builder; the entry-block discipline is about *which memory arena*
// (there is only one per function) rather than cursor position.
func (g *genFun) allocEntry(size uint64) ir.MemoryID {
	return g.builder.BuildAlloca(size)
}

// lowerIfElse implements §4.4.2.
func (g *genFun) lowerIfElse(stmt ast.Stmt) (stmtResult, error) {
	cond, ty, err := g.genExpr(stmt.Cond)
	if err != nil {
		return stmtResult{}, err
	}
	if !ty.IsInteger() {
		return stmtResult{}, diag.New(diag.Type, stmt.Pos, "if condition must be an integer")
	}
	condBool, err := g.genTruthValue(cond)
	if err != nil {
		return stmtResult{}, err
	}

	thenBlk := g.builder.InsertBasicBlockAfter(g.currentBlock())
	elseBlk := thenBlk
	if stmt.Else != nil {
		elseBlk = g.builder.InsertBasicBlockAfter(thenBlk)
	}
	mergeBlk := g.builder.InsertBasicBlockAfter(elseBlk)
	if stmt.Else == nil {
		elseBlk = mergeBlk
	}

	g.builder.BuildConditionalBranch(condBool, thenBlk, elseBlk)

	g.builder.PositionAtEnd(thenBlk)
	thenResult, err := g.lowerBranchBody(stmt.Then, mergeBlk)
	if err != nil {
		return stmtResult{}, err
	}

	elseResult := noTerminator()
	if stmt.Else != nil {
		g.builder.PositionAtEnd(elseBlk)
		elseResult, err = g.lowerBranchBody(stmt.Else, mergeBlk)
		if err != nil {
			return stmtResult{}, err
		}
	}

	g.builder.PositionAtEnd(mergeBlk)
	if thenResult.kind == resTerminator && elseResult.kind == resTerminator {
		g.builder.RemoveBasicBlock(mergeBlk)
		return terminator(), nil
	}
	return noTerminator(), nil
}

// lowerBranchBody lowers an if/else arm's statement list in its own
// scope frame, jumping to merge when the arm falls through without
// terminating.
func (g *genFun) lowerBranchBody(stmts []ast.Stmt, merge ir.BlockID) (stmtResult, error) {
	pop := g.vars.Guard()
	defer pop()
	result, err := g.lowerBlock(stmts)
	if err != nil {
		return stmtResult{}, err
	}
	if result.kind != resTerminator {
		g.builder.BuildUnconditionalBranch(merge)
	}
	return result, nil
}

// lowerFor implements §4.4.3. A bare `while` arrives with Init/Inc nil.
func (g *genFun) lowerFor(stmt ast.Stmt) (stmtResult, error) {
	pop := g.vars.Guard()
	defer pop()

	if stmt.Init != nil {
		if _, err := g.lowerStmt(*stmt.Init); err != nil {
			return stmtResult{}, err
		}
	}

	condBlk := g.builder.InsertBasicBlockAfter(g.currentBlock())
	bodyBlk := g.builder.InsertBasicBlockAfter(condBlk)
	incBlk := g.builder.InsertBasicBlockAfter(bodyBlk)
	contBlk := g.builder.InsertBasicBlockAfter(incBlk)

	g.builder.BuildUnconditionalBranch(condBlk)

	g.builder.PositionAtEnd(condBlk)
	if stmt.Cond != nil {
		cond, ty, err := g.genExpr(stmt.Cond)
		if err != nil {
			return stmtResult{}, err
		}
		if !ty.IsInteger() {
			return stmtResult{}, diag.New(diag.Type, stmt.Pos, "for condition must be an integer")
		}
		condBool, err := g.genTruthValue(cond)
		if err != nil {
			return stmtResult{}, err
		}
		g.builder.BuildConditionalBranch(condBool, bodyBlk, contBlk)
	} else {
		g.builder.BuildUnconditionalBranch(bodyBlk)
	}

	g.breakLabel = append(g.breakLabel, contBlk)
	g.contLabel = append(g.contLabel, incBlk)

	g.builder.PositionAtEnd(bodyBlk)
	bodyResult, err := g.lowerBlock(stmt.Body)
	if err != nil {
		return stmtResult{}, err
	}
	if bodyResult.kind != resTerminator {
		g.builder.BuildUnconditionalBranch(incBlk)
	}

	g.breakLabel = g.breakLabel[:len(g.breakLabel)-1]
	g.contLabel = g.contLabel[:len(g.contLabel)-1]

	g.builder.PositionAtEnd(incBlk)
	if stmt.Inc != nil {
		if _, _, err := g.genExpr(stmt.Inc); err != nil {
			return stmtResult{}, err
		}
	}
	g.builder.BuildUnconditionalBranch(condBlk)

	g.builder.PositionAtEnd(contBlk)
	if len(g.fn.Block(contBlk).Pred.Slice()) == 0 {
		g.builder.RemoveBasicBlock(contBlk)
		return terminator(), nil
	}
	return noTerminator(), nil
}

// lowerBreak and lowerContinue implement §4.4.4.
func (g *genFun) lowerBreak(stmt ast.Stmt) (stmtResult, error) {
	if len(g.breakLabel) == 0 {
		return stmtResult{}, diag.New(diag.Control, stmt.Pos, "break outside of a loop")
	}
	g.builder.BuildUnconditionalBranch(g.breakLabel[len(g.breakLabel)-1])
	return terminator(), nil
}

func (g *genFun) lowerContinue(stmt ast.Stmt) (stmtResult, error) {
	if len(g.contLabel) == 0 {
		return stmtResult{}, diag.New(diag.Control, stmt.Pos, "continue outside of a loop")
	}
	g.builder.BuildUnconditionalBranch(g.contLabel[len(g.contLabel)-1])
	return terminator(), nil
}

func (g *genFun) lowerReturn(stmt ast.Stmt) (stmtResult, error) {
	if stmt.Return == nil {
		if g.fn.RetTy != nil {
			return stmtResult{}, diag.New(diag.Type, stmt.Pos, "missing return value in non-void function %q", g.fn.Name)
		}
		g.builder.BuildReturn(0)
		return terminator(), nil
	}
	val, ty, err := g.genExpr(stmt.Return)
	if err != nil {
		return stmtResult{}, err
	}
	if !ty.Decay().Equals(g.fn.RetTy) {
		return stmtResult{}, diag.New(diag.Type, stmt.Pos, "return type mismatch")
	}
	g.builder.BuildReturn(val)
	return terminator(), nil
}

// currentBlock returns the cursor's current block; every lowering
// function that calls this has just finished positioning the cursor at
// the end of some block, so CurrentBlock always succeeds here.
func (g *genFun) currentBlock() ir.BlockID {
	b, _ := g.builder.CurrentBlock()
	return b
}

// genTruthValue computes `v != 0`, the one-bit condition every
// branching construct consumes.
func (g *genFun) genTruthValue(v ir.InstID) (ir.InstID, error) {
	zero := g.builder.BuildConst(0)
	return g.builder.BuildNe(v, zero), nil
}
