package syntax

import (
	"strconv"

	"chimera/ast"
	"chimera/report"
	"chimera/types"
)

// parseExpr parses an expression.
//
// expr := lambda | branch | do_block | app ;
func (p *Parser) parseExpr() ast.Expr {
	switch p.tok.Kind {
	case TOK_FN:
		return p.parseLambda()
	case TOK_IF:
		return p.parseBranch()
	case TOK_DO:
		return p.parseDoBlock()
	default:
		return p.parseApp()
	}
}

// parseLambda parses a lambda expression.  A multi-parameter lambda is sugar
// for nested single-parameter lambdas: its type is curried.
//
// lambda := 'fn' 'IDENT' {',' 'IDENT'} '->' expr ;
func (p *Parser) parseLambda() ast.Expr {
	startSpan := p.tok.Span

	takenNames := make(map[string]struct{})
	var params []*ast.LambdaParam

	for {
		p.want(TOK_NAME)
		nameTok := p.tok
		p.next()

		if _, ok := takenNames[nameTok.Value]; ok {
			p.errorOn(nameTok, "multiple parameters named `%s`", nameTok.Value)
		}
		takenNames[nameTok.Value] = struct{}{}

		params = append(params, &ast.LambdaParam{Name: nameTok.Value, Span: nameTok.Span})

		if !p.got(TOK_COMMA) {
			break
		}
	}

	p.assertAndNext(TOK_ARROW)
	body := p.parseExpr()

	return &ast.Lambda{
		ExprBase: ast.NewExprBaseOver(startSpan, body.Span()),
		Params:   params,
		Body:     body,
	}
}

// parseBranch parses a conditional expression.  The else arm, if present, is
// stored as a path with a nil condition.
//
// branch := 'if' expr 'then' block {'elif' expr 'then' block}
//           ['else' block] 'end' ;
func (p *Parser) parseBranch() ast.Expr {
	startSpan := p.tok.Span

	var paths []*ast.BranchPath
	for {
		p.next()
		cond := p.parseExpr()
		p.assertAndNext(TOK_THEN)

		body := p.parseBlock(TOK_ELIF, TOK_ELSE, TOK_END)
		paths = append(paths, &ast.BranchPath{Cond: cond, Body: body})

		if !p.got(TOK_ELIF) {
			break
		}
	}

	if p.got(TOK_ELSE) {
		p.next()
		body := p.parseBlock(TOK_END)
		paths = append(paths, &ast.BranchPath{Cond: nil, Body: body})
	}

	endSpan := p.tok.Span
	p.assertAndNext(TOK_END)

	return &ast.Branch{
		ExprBase: ast.NewExprBaseOver(startSpan, endSpan),
		Paths:    paths,
	}
}

// parseDoBlock parses a block expression.
//
// do_block := 'do' block 'end' ;
func (p *Parser) parseDoBlock() ast.Expr {
	startSpan := p.tok.Span

	p.next()
	block := p.parseBlock(TOK_END)

	endSpan := p.tok.Span
	p.assertAndNext(TOK_END)

	block.SetSpan(report.NewSpanOver(startSpan, endSpan))
	return block
}

// parseApp parses an application chain.  Application is by juxtaposition:
// `f x y` applies f to x and y.  Atoms are collected greedily until a token
// that cannot begin an atom is reached.
//
// app := atom_expr {atom_expr} ;
func (p *Parser) parseApp() ast.Expr {
	fn := p.parseAtomExpr()

	var args []ast.Expr
	for p.gotOneOf(
		TOK_NAME, TOK_TYPENAME, TOK_INTLIT, TOK_STRINGLIT,
		TOK_TRUE, TOK_FALSE, TOK_LPAREN, TOK_LBRACKET, TOK_ELLIPSIS,
	) {
		args = append(args, p.parseAtomExpr())
	}

	if len(args) == 0 {
		return fn
	}

	return &ast.Apply{
		ExprBase: ast.NewExprBaseOver(fn.Span(), args[len(args)-1].Span()),
		Func:     fn,
		Args:     args,
	}
}

// parseAtomExpr parses an atom and any field accesses trailing it.
//
// atom_expr := atom {'.' 'IDENT'} ;
func (p *Parser) parseAtomExpr() ast.Expr {
	expr := p.parseAtom()

	for p.got(TOK_DOT) {
		p.want(TOK_NAME)

		expr = &ast.FieldAccess{
			ExprBase:  ast.NewExprBaseOver(expr.Span(), p.tok.Span),
			Root:      expr,
			Field:     p.tok.Value,
			FieldSpan: p.tok.Span,
		}
		p.next()
	}

	return expr
}

// parseAtom parses an atomic expression.
//
// atom := 'INTLIT' | 'STRINGLIT' | 'true' | 'false' | 'IDENT' | 'TYPENAME'
//       | list | '(' [expr] ')' | '...' ;
func (p *Parser) parseAtom() ast.Expr {
	switch p.tok.Kind {
	case TOK_INTLIT:
		value, err := strconv.ParseInt(p.tok.Value, 10, 64)
		if err != nil {
			p.rejectWithMsg("integer literal cannot fit in an Int")
		}

		lit := &ast.Literal{
			ExprBase: ast.NewExprBase(p.tok.Span),
			Kind:     ast.LitInt,
			Value:    p.tok.Value,
			IntValue: value,
		}
		p.next()
		return lit
	case TOK_STRINGLIT:
		lit := &ast.Literal{
			ExprBase: ast.NewExprBase(p.tok.Span),
			Kind:     ast.LitString,
			Value:    p.tok.Value,
		}
		p.next()
		return lit
	case TOK_TRUE, TOK_FALSE:
		lit := &ast.Literal{
			ExprBase:  ast.NewExprBase(p.tok.Span),
			Kind:      ast.LitBool,
			Value:     p.tok.Value,
			BoolValue: p.got(TOK_TRUE),
		}
		p.next()
		return lit
	case TOK_NAME, TOK_TYPENAME:
		name := &ast.Name{
			ExprBase: ast.NewExprBase(p.tok.Span),
			Name:     p.tok.Value,
		}
		p.next()
		return name
	case TOK_ELLIPSIS:
		ell := &ast.Ellipsis{ExprBase: ast.NewExprBase(p.tok.Span)}
		p.next()
		return ell
	case TOK_LBRACKET:
		return p.parseListLit()
	case TOK_LPAREN:
		startSpan := p.tok.Span
		p.next()

		if p.got(TOK_RPAREN) {
			void := &ast.Void{ExprBase: ast.NewExprBaseOver(startSpan, p.tok.Span)}
			p.next()
			return void
		}

		expr := p.parseExpr()
		p.assertAndNext(TOK_RPAREN)
		return expr
	default:
		p.reject()
		return nil
	}
}

// parseListLit parses a list display.
//
// list := '[' [expr {',' expr}] ']' ;
func (p *Parser) parseListLit() ast.Expr {
	startSpan := p.tok.Span
	p.next()

	var elems []ast.Expr
	if !p.got(TOK_RBRACKET) {
		elems = append(elems, p.parseExpr())

		for p.got(TOK_COMMA) {
			p.next()
			elems = append(elems, p.parseExpr())
		}
	}

	endSpan := p.tok.Span
	p.assertAndNext(TOK_RBRACKET)

	return &ast.ListLit{
		ExprBase: ast.NewExprBaseOver(startSpan, endSpan),
		Elems:    elems,
	}
}

// -----------------------------------------------------------------------------

// primTypePatterns maps the primitive type names to their primitive kind.
var primTypePatterns = map[string]types.PrimType{
	"Void":   types.PrimType(types.PrimVoid),
	"Int":    types.PrimType(types.PrimInt),
	"Bool":   types.PrimType(types.PrimBool),
	"String": types.PrimType(types.PrimString),
}

// parseTypeLabel parses a type label.  Arrows associate to the right.
//
// type_label := type_term {'->' type_term} ;
func (p *Parser) parseTypeLabel() types.Type {
	return p.parseArrowTail(p.parseTypeTerm())
}

// parseArrowTail parses the arrow chain following an already parsed type
// term, if any.
func (p *Parser) parseArrowTail(first types.Type) types.Type {
	terms := []types.Type{first}
	for p.got(TOK_ARROW) {
		p.next()
		terms = append(terms, p.parseTypeTerm())
	}

	if len(terms) == 1 {
		return first
	}

	return &types.ArrowType{
		Params: terms[:len(terms)-1],
		Return: terms[len(terms)-1],
	}
}

// parseTypeTerm parses a single term of a type label.  Named types which are
// not primitives become opaque types for the walker to resolve.
//
// type_term := 'TYPENAME' | '[' type_label ']' | '(' [type_label] ')' ;
func (p *Parser) parseTypeTerm() types.Type {
	switch p.tok.Kind {
	case TOK_TYPENAME:
		if prim, ok := primTypePatterns[p.tok.Value]; ok {
			p.next()
			return prim
		}

		opaque := &types.OpaqueType{Name: p.tok.Value, Span: p.tok.Span}
		p.next()
		return opaque
	case TOK_LBRACKET:
		p.next()
		elem := p.parseTypeLabel()
		p.assertAndNext(TOK_RBRACKET)

		return &types.ListType{Elem: elem}
	case TOK_LPAREN:
		p.next()

		if p.got(TOK_RPAREN) {
			p.next()
			return types.PrimType(types.PrimVoid)
		}

		label := p.parseTypeLabel()
		p.assertAndNext(TOK_RPAREN)
		return label
	default:
		p.reject()
		return nil
	}
}
