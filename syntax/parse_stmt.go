package syntax

import (
	"chimera/ast"
	"chimera/types"
)

// parseBlock parses a run of statements terminated by one of the given token
// kinds.  The terminator is not consumed.
//
// block := {'NEWLINE'} {stmt ('NEWLINE' {'NEWLINE'} | &terminator)} ;
func (p *Parser) parseBlock(terminators ...int) *ast.Block {
	startSpan := p.tok.Span

	var stmts []ast.ASTNode
	p.newlines()
	for !p.gotOneOf(terminators...) {
		stmts = append(stmts, p.parseStmt())

		if p.gotOneOf(terminators...) {
			break
		}

		p.assertAndNext(TOK_NEWLINE)
		p.newlines()
	}

	return &ast.Block{
		ExprBase: ast.NewExprBaseOver(startSpan, p.tok.Span),
		Stmts:    stmts,
	}
}

// parseStmt parses a single statement of a block.
//
// stmt := definition | var_stmt | loop_stmt | while_stmt | break_stmt
//       | expr_stmt ;
func (p *Parser) parseStmt() ast.ASTNode {
	switch p.tok.Kind {
	case TOK_LET:
		return p.parseDefinition(nil, false)
	case TOK_VAR:
		return p.parseVarStmt()
	case TOK_LOOP:
		return p.parseLoopStmt()
	case TOK_WHILE:
		return p.parseWhileStmt()
	case TOK_BREAK:
		brk := &ast.BreakStmt{ASTBase: ast.NewASTBaseOn(p.tok.Span)}
		p.next()
		return brk
	default:
		return p.parseExprStmt()
	}
}

// parseVarStmt parses a mutable binding.
//
// var_stmt := 'var' 'IDENT' [':' type_label] ('=' | '~') expr ;
func (p *Parser) parseVarStmt() ast.ASTNode {
	startSpan := p.tok.Span

	p.want(TOK_NAME)
	name := p.tok.Value
	nameSpan := p.tok.Span
	p.next()

	var ann types.Type
	if p.got(TOK_COLON) {
		p.next()
		ann = p.parseTypeLabel()
	}

	if !p.gotOneOf(TOK_EQUAL, TOK_TILDE) {
		p.reject()
	}
	p.next()

	init := p.parseExpr()

	return &ast.VarStmt{
		ASTBase:  ast.NewASTBaseOver(startSpan, init.Span()),
		Name:     name,
		NameSpan: nameSpan,
		Ann:      ann,
		Init:     init,
	}
}

// parseLoopStmt parses an infinite loop.
//
// loop_stmt := 'loop' block 'end' ;
func (p *Parser) parseLoopStmt() ast.ASTNode {
	startSpan := p.tok.Span

	p.next()
	body := p.parseBlock(TOK_END)

	endSpan := p.tok.Span
	p.assertAndNext(TOK_END)

	return &ast.LoopStmt{
		ASTBase: ast.NewASTBaseOver(startSpan, endSpan),
		Body:    body,
	}
}

// parseWhileStmt parses a conditional loop.
//
// while_stmt := 'while' expr 'do' block 'end' ;
func (p *Parser) parseWhileStmt() ast.ASTNode {
	startSpan := p.tok.Span

	p.next()
	cond := p.parseExpr()
	p.assertAndNext(TOK_DO)

	body := p.parseBlock(TOK_END)

	endSpan := p.tok.Span
	p.assertAndNext(TOK_END)

	return &ast.WhileStmt{
		ASTBase: ast.NewASTBaseOver(startSpan, endSpan),
		Cond:    cond,
		Body:    body,
	}
}

// parseExprStmt parses an expression statement or an assignment.  An
// assignment is an expression statement whose expression is a lone name
// followed by `=`: assignment is a statement in Chimera, not an expression.
func (p *Parser) parseExprStmt() ast.ASTNode {
	expr := p.parseExpr()

	if !p.got(TOK_EQUAL) {
		return expr
	}

	name, ok := expr.(*ast.Name)
	if !ok {
		p.rejectWithMsg("left side of assignment must be a name")
	}

	p.next()
	value := p.parseExpr()

	return &ast.AssignStmt{
		ASTBase:  ast.NewASTBaseOver(expr.Span(), value.Span()),
		Name:     name.Name,
		NameSpan: name.Span(),
		Value:    value,
	}
}
