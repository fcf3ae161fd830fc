package syntax

import "chimera/report"

// Token represents a single lexical token.
type Token struct {
	// The kind of the token.  This must be one of the enumerated token kinds.
	Kind int

	// The string value of the token.
	Value string

	// The text span over which the token exists.  This may not directly
	// correspond to its value: eg. the value of a string token has the leading
	// quotes trimmed off for convenience.
	Span *report.TextSpan
}

// Enumeration of token kinds.
const (
	TOK_LET = iota
	TOK_DO
	TOK_END
	TOK_VAR
	TOK_TYPE
	TOK_MACRO
	TOK_IMPORT
	TOK_FN

	TOK_TRUE
	TOK_FALSE

	TOK_IF
	TOK_THEN
	TOK_ELIF
	TOK_ELSE
	TOK_LOOP
	TOK_WHILE
	TOK_BREAK

	TOK_ELLIPSIS
	TOK_COLON
	TOK_ARROW
	TOK_PIPE
	TOK_EQUAL
	TOK_TILDE
	TOK_ATSIGN
	TOK_EXCL
	TOK_DOLLAR
	TOK_DOT
	TOK_HASH
	TOK_COMMA

	TOK_LPAREN
	TOK_RPAREN
	TOK_LBRACE
	TOK_RBRACE
	TOK_LBRACKET
	TOK_RBRACKET

	TOK_NAME
	TOK_TYPENAME
	TOK_OPER

	TOK_INTLIT
	TOK_STRINGLIT

	TOK_NEWLINE
	TOK_EOF
)
