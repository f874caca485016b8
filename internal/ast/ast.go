// Package ast defines the typed syntax tree the parser produces and the
// IR construction pass consumes. The shapes here are fixed by the
// external parser contract; nothing in this package parses source text.
package ast

import (
	"github.com/acd1034/tryrustc/internal/token"
	"github.com/acd1034/tryrustc/internal/types"
)

// TopLevel is one top-level declaration or definition.
type TopLevel struct {
	Kind TopLevelKind
	Pos  token.Position

	// FunDecl, FunDef
	FunTy  *types.Type // FunTy
	Name   string
	Body   []Stmt // FunDef only

	// VarDef (global)
	VarDefs []VarBinding // VarDef only, reuses the same shape as Stmt's VarDef

	// StructDef
	StructTy *types.Type
}

// TopLevelKind distinguishes the members of TopLevel.
type TopLevelKind int

const (
	FunDecl TopLevelKind = iota
	FunDef
	VarDefTop
	StructDefTop
)

// VarBinding is one `(Type, name, init?)` triple inside a VarDef.
type VarBinding struct {
	Type *types.Type
	Name string
	Init *Expr // nil if absent
}
