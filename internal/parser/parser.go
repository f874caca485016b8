// Package parser implements the recursive-descent parser: a pure
// function from a token cursor to a sequence of TopLevel items. There
// is no error recovery; the first parse error aborts with a single
// diagnostic (package diag mirrors this for every other phase).
package parser

import (
	"github.com/acd1034/tryrustc/internal/ast"
	"github.com/acd1034/tryrustc/internal/diag"
	"github.com/acd1034/tryrustc/internal/token"
	"github.com/acd1034/tryrustc/internal/types"
)

type Parser struct {
	lex *token.Lexer
}

// Parse scans src under filename and parses it to completion.
func Parse(filename, src string) ([]ast.TopLevel, error) {
	p := &Parser{lex: token.NewLexer(filename, src)}
	var items []ast.TopLevel
	for {
		tok, err := p.cur()
		if err != nil {
			return nil, diag.Wrap(err, diag.Lex, tok.Position)
		}
		if tok.Kind == token.Eof {
			return items, nil
		}
		item, err := p.parseTopLevel()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
}

func (p *Parser) cur() (token.Token, error) { return p.lex.Current() }

func (p *Parser) pos() token.Position {
	tok, _ := p.cur()
	return tok.Position
}

func (p *Parser) advance() { p.lex.Advance() }

func (p *Parser) isPunct(s string) bool {
	tok, _ := p.cur()
	return tok.Is(token.Punct, s)
}

func (p *Parser) isKeyword(s string) bool {
	tok, _ := p.cur()
	return tok.Is(token.Keyword, s)
}

func (p *Parser) matchPunct(s string) bool {
	if p.isPunct(s) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) matchKeyword(s string) bool {
	if p.isKeyword(s) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) consumePunct(s string) error {
	tok, err := p.cur()
	if err != nil {
		return diag.Wrap(err, diag.Lex, tok.Position)
	}
	if !tok.Is(token.Punct, s) {
		return diag.New(diag.Parse, tok.Position, "expected %q, found %q", s, tok.Lexeme)
	}
	p.advance()
	return nil
}

func (p *Parser) expectIdent() (string, token.Position, error) {
	tok, err := p.cur()
	if err != nil {
		return "", tok.Position, diag.Wrap(err, diag.Lex, tok.Position)
	}
	if tok.Kind != token.Ident {
		return "", tok.Position, diag.New(diag.Parse, tok.Position, "expected an identifier, found %q", tok.Lexeme)
	}
	p.advance()
	return tok.Lexeme, tok.Position, nil
}

func (p *Parser) isDeclspecStart() bool {
	return p.isKeyword("int") || p.isKeyword("char") || p.isKeyword("struct")
}

// parseDeclspec parses "int" | "char" | struct-type, reporting whether
// the struct form was used (callers need this to recognize a bare
// struct definition with no declarator, e.g. `struct Point {...};`).
func (p *Parser) parseDeclspec() (*types.Type, bool, error) {
	pos := p.pos()
	switch {
	case p.matchKeyword("int"):
		return types.NewInt(), false, nil
	case p.matchKeyword("char"):
		return types.NewChar(), false, nil
	case p.matchKeyword("struct"):
		ty, err := p.parseStructType()
		return ty, true, err
	default:
		tok, _ := p.cur()
		return nil, false, diag.New(diag.Parse, pos, "expected a type, found %q", tok.Lexeme)
	}
}

// parseStructType parses the remainder of a struct type after the
// "struct" keyword: an optional tag name, then an optional member list.
// At least one of the two must be present.
func (p *Parser) parseStructType() (*types.Type, error) {
	pos := p.pos()
	name := ""
	if tok, _ := p.cur(); tok.Kind == token.Ident {
		name = tok.Lexeme
		p.advance()
	}
	if !p.matchPunct("{") {
		if name == "" {
			return nil, diag.New(diag.Parse, pos, "struct has neither a tag nor a body")
		}
		return types.NewStructTag(name), nil
	}
	var memberTypes []*types.Type
	var memberNames []string
	for !p.isPunct("}") {
		base, _, err := p.parseDeclspec()
		if err != nil {
			return nil, err
		}
		mty, mname, err := p.parseDeclarator(base)
		if err != nil {
			return nil, err
		}
		if err := p.consumePunct(";"); err != nil {
			return nil, err
		}
		memberTypes = append(memberTypes, mty)
		memberNames = append(memberNames, mname)
	}
	if err := p.consumePunct("}"); err != nil {
		return nil, err
	}
	return types.NewStructDef(name, memberTypes, memberNames), nil
}

// parseDeclarator parses "*"* ident type_suffix, where type_suffix is
// an optional array or function-parameter suffix.
func (p *Parser) parseDeclarator(base *types.Type) (*types.Type, string, error) {
	ty := base
	for p.matchPunct("*") {
		ty = types.NewPointer(ty)
	}
	name, _, err := p.expectIdent()
	if err != nil {
		return nil, "", err
	}
	ty, err = p.parseTypeSuffix(ty)
	if err != nil {
		return nil, "", err
	}
	return ty, name, nil
}

func (p *Parser) parseTypeSuffix(base *types.Type) (*types.Type, error) {
	if p.matchPunct("[") {
		tok, err := p.cur()
		if err != nil {
			return nil, diag.Wrap(err, diag.Lex, tok.Position)
		}
		if tok.Kind != token.Num {
			return nil, diag.New(diag.Parse, tok.Position, "expected an array length, found %q", tok.Lexeme)
		}
		p.advance()
		if err := p.consumePunct("]"); err != nil {
			return nil, err
		}
		rest, err := p.parseTypeSuffix(base)
		if err != nil {
			return nil, err
		}
		return types.NewArray(rest, uint32(tok.Num)), nil
	}
	if p.matchPunct("(") {
		return p.parseFunParams(base)
	}
	return base, nil
}

// parseFunParams parses a parenthesized, possibly empty parameter list
// (the opening "(" has already been consumed) and wraps base as the
// return type of the resulting function type.
func (p *Parser) parseFunParams(ret *types.Type) (*types.Type, error) {
	if p.matchPunct(")") {
		return types.NewFunTy(ret, nil, nil), nil
	}
	var params []*types.Type
	var names []string
	for {
		base, _, err := p.parseDeclspec()
		if err != nil {
			return nil, err
		}
		ty, name, err := p.parseDeclarator(base)
		if err != nil {
			return nil, err
		}
		params = append(params, ty)
		names = append(names, name)
		if p.matchPunct(",") {
			continue
		}
		break
	}
	if err := p.consumePunct(")"); err != nil {
		return nil, err
	}
	return types.NewFunTy(ret, params, names), nil
}

// parseTopLevel parses one of: a bare struct definition, a function
// declaration/definition, or a global variable definition.
func (p *Parser) parseTopLevel() (ast.TopLevel, error) {
	pos := p.pos()
	base, isStruct, err := p.parseDeclspec()
	if err != nil {
		return ast.TopLevel{}, err
	}
	if isStruct && p.matchPunct(";") {
		return ast.TopLevel{Kind: ast.StructDefTop, StructTy: base, Pos: pos}, nil
	}

	ty, name, err := p.parseDeclarator(base)
	if err != nil {
		return ast.TopLevel{}, err
	}
	if ty.Kind == types.FunTy {
		if p.matchPunct("{") {
			body, err := p.parseStmtsUntilRBrace()
			if err != nil {
				return ast.TopLevel{}, err
			}
			return ast.TopLevel{Kind: ast.FunDef, FunTy: ty, Name: name, Body: body, Pos: pos}, nil
		}
		if err := p.consumePunct(";"); err != nil {
			return ast.TopLevel{}, err
		}
		return ast.TopLevel{Kind: ast.FunDecl, FunTy: ty, Name: name, Pos: pos}, nil
	}

	bindings, err := p.parseVarBindings(base, ty, name)
	if err != nil {
		return ast.TopLevel{}, err
	}
	return ast.TopLevel{Kind: ast.VarDefTop, VarDefs: bindings, Pos: pos}, nil
}

// parseVarBindings parses the comma-separated `name (= init)?` list
// that follows a declspec, given the first declarator already parsed,
// and consumes the terminating ";".
func (p *Parser) parseVarBindings(base, firstTy *types.Type, firstName string) ([]ast.VarBinding, error) {
	ty, name := firstTy, firstName
	var bindings []ast.VarBinding
	for {
		var init *ast.Expr
		if p.matchPunct("=") {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			init = e
		}
		bindings = append(bindings, ast.VarBinding{Type: ty, Name: name, Init: init})
		if !p.matchPunct(",") {
			break
		}
		var err error
		ty, name, err = p.parseDeclarator(base)
		if err != nil {
			return nil, err
		}
	}
	if err := p.consumePunct(";"); err != nil {
		return nil, err
	}
	return bindings, nil
}

func (p *Parser) parseStmtsUntilRBrace() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for !p.isPunct("}") {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if err := p.consumePunct("}"); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	pos := p.pos()
	switch {
	case p.isDeclspecStart():
		return p.parseDeclStmt(pos)
	case p.matchKeyword("if"):
		return p.parseIfElse(pos)
	case p.matchKeyword("for"):
		return p.parseFor(pos)
	case p.matchKeyword("while"):
		return p.parseWhile(pos)
	case p.matchKeyword("break"):
		if err := p.consumePunct(";"); err != nil {
			return ast.Stmt{}, err
		}
		return ast.Stmt{Kind: ast.StmtBreak, Pos: pos}, nil
	case p.matchKeyword("continue"):
		if err := p.consumePunct(";"); err != nil {
			return ast.Stmt{}, err
		}
		return ast.Stmt{Kind: ast.StmtCont, Pos: pos}, nil
	case p.matchKeyword("return"):
		return p.parseReturn(pos)
	case p.matchPunct("{"):
		body, err := p.parseStmtsUntilRBrace()
		if err != nil {
			return ast.Stmt{}, err
		}
		return ast.Stmt{Kind: ast.StmtBlock, Block: body, Pos: pos}, nil
	case p.matchPunct(";"):
		return ast.Stmt{Kind: ast.StmtBlock, Pos: pos}, nil
	default:
		e, err := p.parseExpr()
		if err != nil {
			return ast.Stmt{}, err
		}
		if err := p.consumePunct(";"); err != nil {
			return ast.Stmt{}, err
		}
		return ast.Stmt{Kind: ast.StmtExpr, Expr: e, Pos: pos}, nil
	}
}

func (p *Parser) parseDeclStmt(pos token.Position) (ast.Stmt, error) {
	base, isStruct, err := p.parseDeclspec()
	if err != nil {
		return ast.Stmt{}, err
	}
	if isStruct && p.matchPunct(";") {
		return ast.Stmt{Kind: ast.StmtStructDef, StructTy: base, Pos: pos}, nil
	}
	ty, name, err := p.parseDeclarator(base)
	if err != nil {
		return ast.Stmt{}, err
	}
	bindings, err := p.parseVarBindings(base, ty, name)
	if err != nil {
		return ast.Stmt{}, err
	}
	return ast.Stmt{Kind: ast.StmtVarDef, VarDefs: bindings, Pos: pos}, nil
}

func (p *Parser) parseIfElse(pos token.Position) (ast.Stmt, error) {
	if err := p.consumePunct("("); err != nil {
		return ast.Stmt{}, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return ast.Stmt{}, err
	}
	if err := p.consumePunct(")"); err != nil {
		return ast.Stmt{}, err
	}
	thenStmt, err := p.parseStmt()
	if err != nil {
		return ast.Stmt{}, err
	}
	stmt := ast.Stmt{Kind: ast.StmtIfElse, Cond: cond, Then: []ast.Stmt{thenStmt}, Pos: pos}
	if p.matchKeyword("else") {
		elseStmt, err := p.parseStmt()
		if err != nil {
			return ast.Stmt{}, err
		}
		stmt.Else = []ast.Stmt{elseStmt}
	}
	return stmt, nil
}

func (p *Parser) parseFor(pos token.Position) (ast.Stmt, error) {
	if err := p.consumePunct("("); err != nil {
		return ast.Stmt{}, err
	}
	var init *ast.Stmt
	if p.isDeclspecStart() {
		s, err := p.parseDeclStmt(p.pos())
		if err != nil {
			return ast.Stmt{}, err
		}
		init = &s
	} else if !p.matchPunct(";") {
		e, err := p.parseExpr()
		if err != nil {
			return ast.Stmt{}, err
		}
		if err := p.consumePunct(";"); err != nil {
			return ast.Stmt{}, err
		}
		s := ast.Stmt{Kind: ast.StmtExpr, Expr: e, Pos: pos}
		init = &s
	}
	var cond *ast.Expr
	if !p.isPunct(";") {
		c, err := p.parseExpr()
		if err != nil {
			return ast.Stmt{}, err
		}
		cond = c
	}
	if err := p.consumePunct(";"); err != nil {
		return ast.Stmt{}, err
	}
	var inc *ast.Expr
	if !p.isPunct(")") {
		i, err := p.parseExpr()
		if err != nil {
			return ast.Stmt{}, err
		}
		inc = i
	}
	if err := p.consumePunct(")"); err != nil {
		return ast.Stmt{}, err
	}
	body, err := p.parseStmt()
	if err != nil {
		return ast.Stmt{}, err
	}
	return ast.Stmt{Kind: ast.StmtFor, Init: init, Cond: cond, Inc: inc, Body: []ast.Stmt{body}, Pos: pos}, nil
}

// parseWhile desugars `while(C) B` to the degenerate for-loop
// `for(;C;) B` the IR construction pass already handles (§4.4.3).
func (p *Parser) parseWhile(pos token.Position) (ast.Stmt, error) {
	if err := p.consumePunct("("); err != nil {
		return ast.Stmt{}, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return ast.Stmt{}, err
	}
	if err := p.consumePunct(")"); err != nil {
		return ast.Stmt{}, err
	}
	body, err := p.parseStmt()
	if err != nil {
		return ast.Stmt{}, err
	}
	return ast.Stmt{Kind: ast.StmtFor, Cond: cond, Body: []ast.Stmt{body}, Pos: pos}, nil
}

func (p *Parser) parseReturn(pos token.Position) (ast.Stmt, error) {
	if p.matchPunct(";") {
		return ast.Stmt{Kind: ast.StmtReturn, Pos: pos}, nil
	}
	e, err := p.parseExpr()
	if err != nil {
		return ast.Stmt{}, err
	}
	if err := p.consumePunct(";"); err != nil {
		return ast.Stmt{}, err
	}
	return ast.Stmt{Kind: ast.StmtReturn, Return: e, Pos: pos}, nil
}

// --- expressions, cascaded by precedence: ternary > assign > equality
// > relational > add > mul > unary > postfix > primary ---

func (p *Parser) parseExpr() (*ast.Expr, error) { return p.parseTernary() }

func (p *Parser) parseTernary() (*ast.Expr, error) {
	pos := p.pos()
	cond, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	if !p.matchPunct("?") {
		return cond, nil
	}
	then, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.consumePunct(":"); err != nil {
		return nil, err
	}
	els, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	return &ast.Expr{Kind: ast.ExprTernary, Cond: cond, Then: then, Else: els, Pos: pos}, nil
}

var compoundOps = map[string]ast.ExprKind{
	"+=": ast.ExprAdd, "-=": ast.ExprSub, "*=": ast.ExprMul, "/=": ast.ExprDiv,
}

func (p *Parser) parseAssign() (*ast.Expr, error) {
	pos := p.pos()
	lhs, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	if p.matchPunct("=") {
		rhs, err := p.parseAssign()
		if err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.ExprAssign, L: lhs, R: rhs, Pos: pos}, nil
	}
	for op, kind := range compoundOps {
		if p.matchPunct(op) {
			rhs, err := p.parseAssign()
			if err != nil {
				return nil, err
			}
			binop := &ast.Expr{Kind: kind, L: lhs, R: rhs, Pos: pos}
			return &ast.Expr{Kind: ast.ExprAssign, L: lhs, R: binop, Pos: pos}, nil
		}
	}
	return lhs, nil
}

func (p *Parser) parseEquality() (*ast.Expr, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for {
		pos := p.pos()
		switch {
		case p.matchPunct("=="):
			right, err := p.parseRelational()
			if err != nil {
				return nil, err
			}
			left = &ast.Expr{Kind: ast.ExprEq, L: left, R: right, Pos: pos}
		case p.matchPunct("!="):
			right, err := p.parseRelational()
			if err != nil {
				return nil, err
			}
			left = &ast.Expr{Kind: ast.ExprNe, L: left, R: right, Pos: pos}
		default:
			return left, nil
		}
	}
}

// parseRelational desugars `>`/`>=` to a swapped `<`/`<=` so the IR
// never needs Gt/Ge opcodes (§REDESIGN, mirrors the source grammar).
func (p *Parser) parseRelational() (*ast.Expr, error) {
	left, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	for {
		pos := p.pos()
		switch {
		case p.matchPunct("<"):
			right, err := p.parseAdd()
			if err != nil {
				return nil, err
			}
			left = &ast.Expr{Kind: ast.ExprLt, L: left, R: right, Pos: pos}
		case p.matchPunct("<="):
			right, err := p.parseAdd()
			if err != nil {
				return nil, err
			}
			left = &ast.Expr{Kind: ast.ExprLe, L: left, R: right, Pos: pos}
		case p.matchPunct(">"):
			right, err := p.parseAdd()
			if err != nil {
				return nil, err
			}
			left = &ast.Expr{Kind: ast.ExprLt, L: right, R: left, Pos: pos}
		case p.matchPunct(">="):
			right, err := p.parseAdd()
			if err != nil {
				return nil, err
			}
			left = &ast.Expr{Kind: ast.ExprLe, L: right, R: left, Pos: pos}
		default:
			return left, nil
		}
	}
}

func (p *Parser) parseAdd() (*ast.Expr, error) {
	left, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	for {
		pos := p.pos()
		switch {
		case p.matchPunct("+"):
			right, err := p.parseMul()
			if err != nil {
				return nil, err
			}
			left = &ast.Expr{Kind: ast.ExprAdd, L: left, R: right, Pos: pos}
		case p.matchPunct("-"):
			right, err := p.parseMul()
			if err != nil {
				return nil, err
			}
			left = &ast.Expr{Kind: ast.ExprSub, L: left, R: right, Pos: pos}
		default:
			return left, nil
		}
	}
}

func (p *Parser) parseMul() (*ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		pos := p.pos()
		switch {
		case p.matchPunct("*"):
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = &ast.Expr{Kind: ast.ExprMul, L: left, R: right, Pos: pos}
		case p.matchPunct("/"):
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = &ast.Expr{Kind: ast.ExprDiv, L: left, R: right, Pos: pos}
		default:
			return left, nil
		}
	}
}

// parseUnary handles the prefix operators, including the one place the
// parser needs lookahead: disambiguating a cast `(int)x` from a
// parenthesized expression `(x)`. A one-token peek through a cloned
// lexer decides it, since no expression can start with a declspec
// keyword.
func (p *Parser) parseUnary() (*ast.Expr, error) {
	pos := p.pos()
	switch {
	case p.matchPunct("+"):
		return p.parseUnary()
	case p.matchPunct("-"):
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		zero := &ast.Expr{Kind: ast.ExprNum, NumVal: 0, Pos: pos}
		return &ast.Expr{Kind: ast.ExprSub, L: zero, R: x, Pos: pos}, nil
	case p.matchPunct("&"):
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.ExprAddr, X: x, Pos: pos}, nil
	case p.matchPunct("*"):
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Expr{Kind: ast.ExprDeref, X: x, Pos: pos}, nil
	case p.matchPunct("++"):
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		one := &ast.Expr{Kind: ast.ExprNum, NumVal: 1, Pos: pos}
		add := &ast.Expr{Kind: ast.ExprAdd, L: x, R: one, Pos: pos}
		return &ast.Expr{Kind: ast.ExprAssign, L: x, R: add, Pos: pos}, nil
	case p.matchPunct("--"):
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		one := &ast.Expr{Kind: ast.ExprNum, NumVal: 1, Pos: pos}
		sub := &ast.Expr{Kind: ast.ExprSub, L: x, R: one, Pos: pos}
		return &ast.Expr{Kind: ast.ExprAssign, L: x, R: sub, Pos: pos}, nil
	case p.isPunct("("):
		if cast, ok, err := p.tryParseCast(pos); ok || err != nil {
			return cast, err
		}
	}
	return p.parsePostfix()
}

func (p *Parser) tryParseCast(pos token.Position) (*ast.Expr, bool, error) {
	ahead := p.lex.Clone()
	ahead.Advance()
	tok, _ := ahead.Current()
	if !(tok.Kind == token.Keyword && (tok.Lexeme == "int" || tok.Lexeme == "char" || tok.Lexeme == "struct")) {
		return nil, false, nil
	}
	p.advance() // the "("
	base, _, err := p.parseDeclspec()
	if err != nil {
		return nil, true, err
	}
	ty := base
	for p.matchPunct("*") {
		ty = types.NewPointer(ty)
	}
	if err := p.consumePunct(")"); err != nil {
		return nil, true, err
	}
	x, err := p.parseUnary()
	if err != nil {
		return nil, true, err
	}
	return &ast.Expr{Kind: ast.ExprCast, CastTy: ty, X: x, Pos: pos}, true, nil
}

// parsePostfix desugars `a[i]` to `*(a+i)` and post-increment/decrement
// to assignment arithmetic (parseUnary does the same for the prefix
// forms), so the IR and the AST it builds on never need
// a dedicated index or increment node (§REDESIGN, matches the source
// grammar).
func (p *Parser) parsePostfix() (*ast.Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		pos := p.pos()
		switch {
		case p.matchPunct("["):
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.consumePunct("]"); err != nil {
				return nil, err
			}
			sum := &ast.Expr{Kind: ast.ExprAdd, L: x, R: idx, Pos: pos}
			x = &ast.Expr{Kind: ast.ExprDeref, X: sum, Pos: pos}
		case p.matchPunct("."):
			member, _, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			x = &ast.Expr{Kind: ast.ExprDot, X: x, Member: member, Pos: pos}
		case p.matchPunct("++"):
			one := &ast.Expr{Kind: ast.ExprNum, NumVal: 1, Pos: pos}
			add := &ast.Expr{Kind: ast.ExprAdd, L: x, R: one, Pos: pos}
			assign := &ast.Expr{Kind: ast.ExprAssign, L: x, R: add, Pos: pos}
			x = &ast.Expr{Kind: ast.ExprSub, L: assign, R: one, Pos: pos}
		case p.matchPunct("--"):
			one := &ast.Expr{Kind: ast.ExprNum, NumVal: 1, Pos: pos}
			sub := &ast.Expr{Kind: ast.ExprSub, L: x, R: one, Pos: pos}
			assign := &ast.Expr{Kind: ast.ExprAssign, L: x, R: sub, Pos: pos}
			x = &ast.Expr{Kind: ast.ExprAdd, L: assign, R: one, Pos: pos}
		default:
			return x, nil
		}
	}
}

// parsePrimary also recognizes the GNU statement-expression form
// `({ stmt* })`, needed to surface ast.ExprBlock (§4.4.5).
func (p *Parser) parsePrimary() (*ast.Expr, error) {
	pos := p.pos()
	tok, err := p.cur()
	if err != nil {
		return nil, diag.Wrap(err, diag.Lex, tok.Position)
	}
	switch {
	case tok.Is(token.Punct, "("):
		p.advance()
		if p.matchPunct("{") {
			stmts, err := p.parseStmtsUntilRBrace()
			if err != nil {
				return nil, err
			}
			if err := p.consumePunct(")"); err != nil {
				return nil, err
			}
			return &ast.Expr{Kind: ast.ExprBlock, Stmts: stmts, Pos: pos}, nil
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.consumePunct(")"); err != nil {
			return nil, err
		}
		return e, nil
	case tok.Kind == token.Ident:
		p.advance()
		if p.matchPunct("(") {
			args, err := p.parseFunArgs()
			if err != nil {
				return nil, err
			}
			return &ast.Expr{Kind: ast.ExprCall, Name: tok.Lexeme, Args: args, Pos: pos}, nil
		}
		return &ast.Expr{Kind: ast.ExprIdent, Name: tok.Lexeme, Pos: pos}, nil
	case tok.Kind == token.Num:
		p.advance()
		return &ast.Expr{Kind: ast.ExprNum, NumVal: tok.Num, Pos: pos}, nil
	case tok.Kind == token.Str:
		p.advance()
		return &ast.Expr{Kind: ast.ExprStr, StrVal: tok.Lexeme, Pos: pos}, nil
	default:
		return nil, diag.New(diag.Parse, pos, "unexpected token %q", tok.Lexeme)
	}
}

func (p *Parser) parseFunArgs() ([]*ast.Expr, error) {
	if p.matchPunct(")") {
		return nil, nil
	}
	var args []*ast.Expr
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.matchPunct(",") {
			continue
		}
		break
	}
	if err := p.consumePunct(")"); err != nil {
		return nil, err
	}
	return args, nil
}
