package syntax

import (
	"chimera/ast"
	"chimera/depm"
	"chimera/types"
)

// parseFile parses the top level of a source file.
//
// file := {'NEWLINE'} {item ('NEWLINE' {'NEWLINE'} | 'EOF')} ;
func (p *Parser) parseFile() []ast.Item {
	var items []ast.Item

	p.newlines()
	for !p.got(TOK_EOF) {
		items = append(items, p.parseItem())

		if p.got(TOK_EOF) {
			break
		}

		p.assertAndNext(TOK_NEWLINE)
		p.newlines()
	}

	return items
}

// parseItem parses a top level item.
//
// item := [attribute] (definition | type_decl | import) ;
func (p *Parser) parseItem() ast.Item {
	var attr *ast.Attribute
	if p.got(TOK_ATSIGN) {
		attr = p.parseAttribute()
	}

	switch p.tok.Kind {
	case TOK_LET:
		return p.parseDefinition(attr, true)
	case TOK_TYPE:
		if attr != nil {
			p.rejectWithMsg("attributes may only be applied to definitions")
		}

		return p.parseTypeDecl()
	case TOK_IMPORT:
		if attr != nil {
			p.rejectWithMsg("attributes may only be applied to definitions")
		}

		return p.parseImport()
	case TOK_MACRO:
		p.rejectWithMsg("macro definitions are not supported")
		return nil
	default:
		p.reject()
		return nil
	}
}

// parseAttribute parses an attribute line preceding a definition.
//
// attribute := '@' '[' 'IDENT' {'IDENT'} ']' 'NEWLINE' {'NEWLINE'} ;
func (p *Parser) parseAttribute() *ast.Attribute {
	p.want(TOK_LBRACKET)
	p.want(TOK_NAME)

	name := p.tok.Value
	nameSpan := p.tok.Span

	var args []string
	p.next()
	for p.got(TOK_NAME) {
		args = append(args, p.tok.Value)
		p.next()
	}

	p.assertAndNext(TOK_RBRACKET)
	p.assertAndNext(TOK_NEWLINE)
	p.newlines()

	return &ast.Attribute{Name: name, NameSpan: nameSpan, Args: args}
}

// parseDefinition parses a definition.  If global is true, the defined name
// is declared in the parent package's global table.  A definition whose
// signature names its parameters is sugar for a lambda binding: the body is
// wrapped in a lambda over the named parameters.
//
// definition := 'let' 'IDENT' [':' signature] ('=' | '~') def_body ;
// def_body := expr | 'NEWLINE' block 'end' ;
func (p *Parser) parseDefinition(attr *ast.Attribute, global bool) ast.Item {
	startSpan := p.tok.Span

	p.want(TOK_NAME)
	name := p.tok.Value
	nameSpan := p.tok.Span
	p.next()

	var ann types.Type
	var sigParams []*ast.LambdaParam
	if p.got(TOK_COLON) {
		p.next()
		ann, sigParams = p.parseSignature()
	}

	var impure bool
	switch p.tok.Kind {
	case TOK_TILDE:
		impure = true
	case TOK_EQUAL:
	default:
		p.reject()
	}
	p.next()

	body := p.parseDefBody()

	if len(sigParams) > 0 {
		body = &ast.Lambda{
			ExprBase: ast.NewExprBaseOver(startSpan, body.Span()),
			Params:   sigParams,
			Body:     body,
		}
	}

	def := &ast.Definition{
		ASTBase:  ast.NewASTBaseOver(startSpan, body.Span()),
		Attr:     attr,
		Name:     name,
		NameSpan: nameSpan,
		Ann:      ann,
		Impure:   impure,
		Body:     body,
	}

	if global {
		p.defineGlobal(&depm.Symbol{
			Name:    name,
			DefSpan: nameSpan,
			DefKind: depm.DefKindValue,
			Public:  true,
		})
	}

	return def
}

// parseDefBody parses the body of a definition: either an expression on the
// same line or a block running to a closing `end`.
//
// def_body := expr | 'NEWLINE' block 'end' ;
func (p *Parser) parseDefBody() ast.Expr {
	if p.got(TOK_NEWLINE) {
		p.next()

		block := p.parseBlock(TOK_END)
		p.assertAndNext(TOK_END)
		return block
	}

	return p.parseExpr()
}

// parseSignature parses a definition signature.  Parameters of arrow
// signatures may be named: the named parameters are returned so the
// definition can bind them in its body.
//
// signature := {param '->'} type_label ;
// param := '(' 'IDENT' ':' type_label ')' ;
func (p *Parser) parseSignature() (types.Type, []*ast.LambdaParam) {
	takenNames := make(map[string]struct{})
	var params []*ast.LambdaParam

	for p.got(TOK_LPAREN) {
		p.next()

		if !p.got(TOK_NAME) {
			// Not a named parameter: the remaining tokens are the return
			// type, beginning with a parenthesized type term.
			var inner types.Type
			if p.got(TOK_RPAREN) {
				inner = types.PrimType(types.PrimVoid)
			} else {
				inner = p.parseTypeLabel()
			}
			p.assertAndNext(TOK_RPAREN)

			return buildSignature(params, p.parseArrowTail(inner)), params
		}

		nameTok := p.tok
		param := &ast.LambdaParam{Name: nameTok.Value, Span: nameTok.Span}
		p.want(TOK_COLON)

		if _, ok := takenNames[nameTok.Value]; ok {
			p.errorOn(nameTok, "multiple parameters named `%s`", nameTok.Value)
		}
		takenNames[nameTok.Value] = struct{}{}

		p.next()
		param.Type = p.parseTypeLabel()
		p.assertAndNext(TOK_RPAREN)

		params = append(params, param)

		p.assertAndNext(TOK_ARROW)
	}

	return buildSignature(params, p.parseTypeLabel()), params
}

// buildSignature assembles the full arrow type of a signature with named
// parameters.  A signature with no named parameters is just its return type.
func buildSignature(params []*ast.LambdaParam, ret types.Type) types.Type {
	if len(params) == 0 {
		return ret
	}

	paramTypes := make([]types.Type, len(params))
	for i, param := range params {
		paramTypes[i] = param.Type
	}

	return &types.ArrowType{Params: paramTypes, Return: ret}
}

// parseTypeDecl parses an algebraic data type declaration and declares the
// type and its constructors in the parent package's global table.
//
// type_decl := 'type' 'TYPENAME' '=' {'NEWLINE'} ['|'] constr
//              {{'NEWLINE'} '|' constr} {'NEWLINE'} 'end' ;
func (p *Parser) parseTypeDecl() ast.Item {
	startSpan := p.tok.Span

	p.want(TOK_TYPENAME)
	name := p.tok.Value
	nameSpan := p.tok.Span

	p.wantAndNext(TOK_EQUAL)
	p.newlines()

	if p.got(TOK_PIPE) {
		p.next()
		p.newlines()
	}

	variants := []*ast.TypeVariant{p.parseTypeVariant()}
	for {
		p.newlines()

		if !p.got(TOK_PIPE) {
			break
		}

		p.next()
		p.newlines()
		variants = append(variants, p.parseTypeVariant())
	}

	endSpan := p.tok.Span
	p.assertAndNext(TOK_END)

	td := &ast.TypeDecl{
		ASTBase:  ast.NewASTBaseOver(startSpan, endSpan),
		Name:     name,
		NameSpan: nameSpan,
		Variants: variants,
	}

	p.defineGlobal(&depm.Symbol{
		Name:    name,
		DefSpan: nameSpan,
		DefKind: depm.DefKindType,
		Public:  true,
	})

	for _, variant := range variants {
		p.defineGlobal(&depm.Symbol{
			Name:    variant.Name,
			DefSpan: variant.NameSpan,
			DefKind: depm.DefKindConstr,
			Public:  true,
		})
	}

	return td
}

// parseTypeVariant parses a single constructor of a type declaration.
//
// constr := 'TYPENAME' [record] ;
// record := '{' {'NEWLINE'} field {',' {'NEWLINE'} field} {'NEWLINE'} '}' ;
// field := 'IDENT' ':' type_label ;
func (p *Parser) parseTypeVariant() *ast.TypeVariant {
	p.assert(TOK_TYPENAME)

	variant := &ast.TypeVariant{Name: p.tok.Value, NameSpan: p.tok.Span}
	p.next()

	if !p.got(TOK_LBRACE) {
		return variant
	}

	p.next()
	p.newlines()

	for {
		p.assert(TOK_NAME)
		field := &ast.VariantField{Name: p.tok.Value, NameSpan: p.tok.Span}

		p.want(TOK_COLON)
		p.next()
		field.Ann = p.parseTypeLabel()

		variant.Fields = append(variant.Fields, field)

		p.newlines()
		if !p.got(TOK_COMMA) {
			break
		}

		p.next()
		p.newlines()
	}

	p.assertAndNext(TOK_RBRACE)

	return variant
}

// parseImport parses an import of another package's namespace.  Importing
// the same package twice is harmless but almost certainly unintended, so the
// second import draws a warning.
//
// import := 'import' 'IDENT' ;
func (p *Parser) parseImport() ast.Item {
	startSpan := p.tok.Span

	p.want(TOK_NAME)

	if _, ok := p.imported[p.tok.Value]; ok {
		p.warnOn(p.tok, "package `%s` imported multiple times", p.tok.Value)
	}
	p.imported[p.tok.Value] = struct{}{}

	imp := &ast.Import{
		ASTBase:  ast.NewASTBaseOver(startSpan, p.tok.Span),
		ModName:  p.tok.Value,
		NameSpan: p.tok.Span,
	}
	p.next()

	return imp
}
