package ast

import (
	"github.com/acd1034/tryrustc/internal/token"
	"github.com/acd1034/tryrustc/internal/types"
)

// StmtKind distinguishes the members of Stmt.
type StmtKind int

const (
	StmtVarDef StmtKind = iota
	StmtStructDef
	StmtIfElse
	StmtFor
	StmtBreak
	StmtCont
	StmtReturn
	StmtBlock
	StmtExpr
)

// Stmt is a single statement. Only the fields relevant to Kind are set.
type Stmt struct {
	Kind StmtKind
	Pos  token.Position

	VarDefs []VarBinding // StmtVarDef

	StructTy *types.Type // StmtStructDef

	Cond *Expr  // StmtIfElse, StmtFor (optional)
	Then []Stmt // StmtIfElse
	Else []Stmt // StmtIfElse (nil if absent)

	Init *Stmt  // StmtFor (optional: VarDef or Expr)
	Inc  *Expr  // StmtFor (optional)
	Body []Stmt // StmtFor

	Return *Expr // StmtReturn

	Block []Stmt // StmtBlock

	Expr *Expr // StmtExpr
}
