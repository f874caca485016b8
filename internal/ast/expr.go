package ast

import (
	"github.com/acd1034/tryrustc/internal/token"
	"github.com/acd1034/tryrustc/internal/types"
)

// ExprKind distinguishes the members of Expr.
type ExprKind int

const (
	ExprAdd ExprKind = iota
	ExprSub
	ExprMul
	ExprDiv
	ExprEq
	ExprNe
	ExprLt
	ExprLe
	ExprAssign
	ExprAddr
	ExprDeref
	ExprDot
	ExprCast
	ExprTernary
	ExprCall
	ExprIdent
	ExprNum
	ExprStr
	ExprBlock
)

// Expr is a single expression node. Only the fields relevant to Kind are
// set. Binary operators (Add..Le, Assign) use L/R; unary ones (Addr,
// Deref, Cast) use X; Dot adds Member; Ternary adds Cond/Then/Else;
// Call adds Name/Args; Ident/Str add Name; Num adds NumVal; Block adds
// Stmts (a statement-expression whose value is its last Expr statement).
type Expr struct {
	Kind ExprKind
	Pos  token.Position

	L, R, X, Cond, Then, Else *Expr

	CastTy *types.Type // ExprCast

	Member string // ExprDot

	Name string  // ExprCall, ExprIdent
	Args []*Expr // ExprCall

	NumVal uint64 // ExprNum
	StrVal string // ExprStr

	Stmts []Stmt // ExprBlock
}
