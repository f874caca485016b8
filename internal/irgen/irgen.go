// Package irgen lowers the typed AST into the custom IR under scoped
// variable/tag resolution, structuring if/for/while/break/continue/
// return, ternary, short-circuit branching, and statement expressions.
package irgen

import (
	"fmt"

	"github.com/acd1034/tryrustc/internal/ast"
	"github.com/acd1034/tryrustc/internal/diag"
	"github.com/acd1034/tryrustc/internal/ir"
	"github.com/acd1034/tryrustc/internal/scope"
	"github.com/acd1034/tryrustc/internal/token"
	"github.com/acd1034/tryrustc/internal/types"
)

// varEntry is what the variable scope binds a name to: the memory slot
// backing it (local or global) and its declared type.
type varEntry struct {
	Mem    ir.MemoryID
	Global bool
	Ty     *types.Type
}

// Lower builds an ir.Module named name from items, in order. It is the
// single entry point external callers (the CLI, tests) use.
func Lower(name string, items []ast.TopLevel) (*ir.Module, error) {
	mod := ir.NewModule(name)
	vars := scope.New[varEntry]()
	tags := scope.New[*types.Type]()
	vars.Push() // outermost frame: globals, never popped
	tags.Push()

	for _, item := range items {
		if err := lowerTopLevel(mod, vars, tags, item); err != nil {
			return nil, err
		}
	}
	return mod, nil
}

func lowerTopLevel(mod *ir.Module, vars *scope.Scope[varEntry], tags *scope.Scope[*types.Type], item ast.TopLevel) error {
	switch item.Kind {
	case ast.FunDecl:
		return declareFunction(mod, item.Name, item.FunTy, item.Pos)

	case ast.FunDef:
		return defineFunction(mod, vars, tags, item)

	case ast.VarDefTop:
		for _, binding := range item.VarDefs {
			if _, exists := vars.Get(binding.Name); exists {
				return diag.New(diag.Scope, item.Pos, "variable %q already exists", binding.Name)
			}
			mem := mod.AllocGlobal(sizeOf(tags, binding.Type))
			vars.Insert(binding.Name, varEntry{Mem: mem, Global: true, Ty: binding.Type})
			// A global's initializer (if any) is evaluated at lowering
			// time rather than inside any function's block; only a
			// constant-shaped initializer makes sense here, so this
			// restricts globals to integer-literal or absent initializers.
			if binding.Init != nil && binding.Init.Kind != ast.ExprNum {
				return diag.New(diag.Type, item.Pos, "global initializer for %q must be a constant", binding.Name)
			}
		}
		return nil

	case ast.StructDefTop:
		return installStruct(tags, item.StructTy, item.Pos)

	default:
		return diag.New(diag.Control, item.Pos, "unknown top-level item")
	}
}

// declareFunction installs or checks a function declaration. If a
// function of the same name already exists, its type must match
// structurally (FunTy equality ignores parameter names, §4.1).
func declareFunction(mod *ir.Module, name string, funTy *types.Type, pos token.Position) error {
	fn := ir.NewFunction(name, funTy.Ret, funTy.Params, funTy.ParamNames)
	id := mod.DeclareFunction(fn)
	existing := mod.Function(id)
	if !existing.FunTy().Equals(funTy) {
		return diag.New(diag.Control, pos, "function %q type differs from previous declaration", name)
	}
	return nil
}

// installStruct installs a struct tag (and, for a definition, its
// member layout) into the tag scope.
func installStruct(tags *scope.Scope[*types.Type], ty *types.Type, pos token.Position) error {
	if ty.Name == "" && len(ty.MemberTypes) == 0 {
		return diag.New(diag.Type, pos, "struct has neither a name nor a body")
	}
	name := ty.Name
	if name == "" {
		// Anonymous struct definitions synthesize a unique tag so later
		// code can still look the member layout up through the same
		// scope the named case uses (§9 OPEN QUESTIONS).
		name = anonStructTag()
	}
	if existing, ok := tags.Get(name); ok && len(existing.MemberTypes) > 0 && len(ty.MemberTypes) > 0 {
		return diag.New(diag.Scope, pos, "struct %q already exists", name)
	}
	tags.Insert(name, ty)
	return nil
}

var anonStructCounter int

func anonStructTag() string {
	anonStructCounter++
	return fmt.Sprintf("<anon-struct-%d>", anonStructCounter)
}
