package syntax

import (
	"bufio"
	"fmt"

	"chimera/depm"
	"chimera/report"
)

// NOTE: All parsing functions (that are not utility/API functions) are
// commented with the EBNF notation of the grammar they parse as well as any
// semantic actions they perform during parsing.

// Parser is the parser for a Chimera source file.  It performs three primary
// tasks: syntax analysis, AST generation, and global symbol declaration.  The
// parser itself acts as a state machine that moves over the file token by
// token and decides what to parse based on the token it is currently
// positioned on and its context (implicit from the callstack of parsing
// functions): it is a recursive descent parser.  All parsing functions assume
// that they begin with the parser centered on the first token of their
// production and must consume all tokens of their production, leaving the
// parser on the next token.  Statement and item productions leave their
// terminating newline for their enclosing production to consume.  Parsers are
// created once per file.
//
// Parse errors panic and are recovered at the file boundary: the first error
// in a file aborts that file without stopping the compilation of others.
type Parser struct {
	// chFile is the Chimera source file being parsed.
	chFile *depm.ChimFile

	// lexer is the Lexer this parser is using to lex the source file.
	lexer *Lexer

	// tok is the current token the parser is positioned on.
	tok *Token

	// imported records the package names this file has already imported.
	imported map[string]struct{}
}

// NewParser creates a new parser for the given file and file reader.
func NewParser(chFile *depm.ChimFile, r *bufio.Reader) *Parser {
	return &Parser{
		chFile:   chFile,
		lexer:    NewLexer(r),
		imported: make(map[string]struct{}),
	}
}

// Parse parses a file and writes the resulting items to the Chimera file if
// it succeeds.  It returns whether parsing succeeded.
func (p *Parser) Parse() (ok bool) {
	defer report.CatchErrors(p.chFile.AbsPath, p.chFile.ReprPath)

	p.next()
	p.chFile.Items = p.parseFile()

	return true
}

// -----------------------------------------------------------------------------

// next moves the parser forward one token.
func (p *Parser) next() {
	tok, err := p.lexer.NextToken()
	if err != nil {
		panic(err)
	}

	p.tok = tok
}

// got returns true if the parser is on a token of a given kind.
func (p *Parser) got(kind int) bool {
	return p.tok.Kind == kind
}

// gotOneOf returns if the parser's current token kind is one of given kinds.
func (p *Parser) gotOneOf(kinds ...int) bool {
	for _, kind := range kinds {
		if p.tok.Kind == kind {
			return true
		}
	}

	return false
}

// assert rejects the current token if it is not of the given kind.  EOF is
// accepted wherever a newline is expected.
func (p *Parser) assert(kind int) {
	if p.got(kind) {
		return
	}

	if kind == TOK_NEWLINE && p.got(TOK_EOF) {
		return
	}

	p.reject()
}

// assertAndNext performs an assert operation and moves the parser forward.
func (p *Parser) assertAndNext(kind int) {
	p.assert(kind)
	p.next()
}

// want moves the parser forward one token and then asserts that the token the
// parser has moved to is of a given kind.
func (p *Parser) want(kind int) {
	p.next()
	p.assert(kind)
}

// wantAndNext performs a want operation and moves the parser forward.
func (p *Parser) wantAndNext(kind int) {
	p.want(kind)
	p.next()
}

// newlines moves the parser forward until a non-newline token is encountered.
// The current token is considered.
func (p *Parser) newlines() {
	for p.got(TOK_NEWLINE) {
		p.next()
	}
}

// -----------------------------------------------------------------------------

// reject raises an unexpected token error on the current token.
func (p *Parser) reject() {
	var msg string
	switch p.tok.Kind {
	case TOK_NEWLINE:
		msg = "unexpected newline"
	case TOK_EOF:
		msg = "unexpected end of file"
	default:
		msg = fmt.Sprintf("unexpected token: `%s`", p.tok.Value)
	}

	panic(report.Raise(p.tok.Span, "%s", msg))
}

// rejectWithMsg rejects the current token with a specific message.  The
// function takes a message and arguments to format into it.
func (p *Parser) rejectWithMsg(msg string, a ...interface{}) {
	panic(report.Raise(p.tok.Span, msg, a...))
}

// errorOn raises an error on a given token.  The function takes a message and
// arguments to format into it.
func (p *Parser) errorOn(tok *Token, msg string, a ...interface{}) {
	panic(report.Raise(tok.Span, msg, a...))
}

// warnOn reports a warning on a given token.  The function takes a message and
// arguments to format into it.
func (p *Parser) warnOn(tok *Token, msg string, a ...interface{}) {
	report.ReportCompileWarning(
		p.chFile.AbsPath,
		p.chFile.ReprPath,
		tok.Span,
		msg,
		a...,
	)
}

// -----------------------------------------------------------------------------

// defineGlobal defines a global symbol in the parsed file's parent package.
func (p *Parser) defineGlobal(sym *depm.Symbol) {
	sym.PkgID = p.chFile.Parent.ID
	sym.FileNumber = p.chFile.FileNumber

	if _, ok := p.chFile.Parent.GlobalTable.Define(sym); !ok {
		panic(report.Raise(sym.DefSpan, "multiple symbols with name `%s` declared in scope", sym.Name))
	}
}
