package syntax

import (
	"bufio"
	"io"
	"strings"
	"unicode"

	"chimera/report"
)

// Lexer is responsible for tokenizing a source file.
type Lexer struct {
	file    *bufio.Reader
	tokBuff *strings.Builder

	line, col           int
	startLine, startCol int
}

// NewLexer creates a new lexer for the given source file.
func NewLexer(file *bufio.Reader) *Lexer {
	return &Lexer{
		file:    file,
		tokBuff: &strings.Builder{},
		line:    0,
		col:     0,
	}
}

// NextToken retrieves the next token from the input file. If the file has
// ended, this will be an EOF token.  Runs of whitespace which contain at least
// one line break produce a single newline token: newlines terminate statements
// in Chimera, but blank lines carry no further meaning.
func (l *Lexer) NextToken() (*Token, error) {
	for {
		c, err := l.peek()
		if err != nil {
			return nil, err
		} else if c == -1 {
			break
		}

		switch c {
		case '\n', '\t', ' ', '\r', '\v', '\f':
			if tok := l.lexWhitespace(); tok != nil {
				return tok, nil
			}
		case '-':
			if tok, err := l.lexCommentOrOper(); tok != nil || err != nil {
				return tok, err
			}
		case '"':
			return l.lexStringLit()
		case ',', '(', ')', '{', '}', '[', ']':
			return l.lexSingleChar(), nil
		default:
			if isDecimalDigit(c) {
				return l.lexIntLit()
			} else if isFirstIdentChar(c) {
				return l.lexIdentOrKeyword()
			} else if isOperChar(c) {
				l.mark()
				l.eat()
				return l.lexOperator()
			} else {
				l.mark()
				l.eat()
				return nil, report.Raise(l.getSpan(), "unknown rune")
			}
		}
	}

	l.mark()
	return &Token{Kind: TOK_EOF, Span: l.getSpan()}, nil
}

// -----------------------------------------------------------------------------

// keywordPatterns maps keyword strings (patterns) to their keyword token kind.
var keywordPatterns = map[string]int{
	"let":    TOK_LET,
	"do":     TOK_DO,
	"end":    TOK_END,
	"var":    TOK_VAR,
	"type":   TOK_TYPE,
	"macro":  TOK_MACRO,
	"import": TOK_IMPORT,
	"fn":     TOK_FN,

	"true":  TOK_TRUE,
	"false": TOK_FALSE,

	"if":    TOK_IF,
	"then":  TOK_THEN,
	"elif":  TOK_ELIF,
	"else":  TOK_ELSE,
	"loop":  TOK_LOOP,
	"while": TOK_WHILE,
	"break": TOK_BREAK,
}

// symbolPatterns maps operator strings (patterns) to their symbol token kind.
// Operator runs which match no pattern become generic operator tokens which
// the parser rejects with the offending text.
var symbolPatterns = map[string]int{
	"...": TOK_ELLIPSIS,
	":":   TOK_COLON,
	"->":  TOK_ARROW,
	"|":   TOK_PIPE,
	"=":   TOK_EQUAL,
	"~":   TOK_TILDE,
	"@":   TOK_ATSIGN,
	"!":   TOK_EXCL,
	"$":   TOK_DOLLAR,
	".":   TOK_DOT,
	"#":   TOK_HASH,
}

// singlePatterns maps the runes which always lex as a lone token to their
// token kind.  Note that `,` is also an operator rune: it only lexes alone
// because it is matched before the operator run begins.
var singlePatterns = map[rune]int{
	',': TOK_COMMA,
	'(': TOK_LPAREN,
	')': TOK_RPAREN,
	'{': TOK_LBRACE,
	'}': TOK_RBRACE,
	'[': TOK_LBRACKET,
	']': TOK_RBRACKET,
}

// -----------------------------------------------------------------------------

// lexWhitespace skips a whitespace run.  If the run contains a line break, a
// newline token spanning the run is returned; otherwise, nil is returned.
func (l *Lexer) lexWhitespace() *Token {
	l.mark()

	sawNewline := false
	for {
		c, err := l.peek()
		if err != nil || c == -1 || !unicode.IsSpace(c) {
			break
		}

		if c == '\n' {
			sawNewline = true
		}

		l.skip()
	}

	if sawNewline {
		return l.makeToken(TOK_NEWLINE)
	}

	return nil
}

// lexCommentOrOper lexes either a line comment or an operator beginning with
// `-`.  Comments run from `--` to the end of the line and also consume the
// whitespace which follows them: a comment never terminates a statement.
func (l *Lexer) lexCommentOrOper() (*Token, error) {
	l.mark()
	l.eat()

	c, err := l.peek()
	if err != nil {
		return nil, err
	}

	if c != '-' {
		return l.lexOperator()
	}

	for c != -1 && c != '\n' {
		if c, err = l.skip(); err != nil {
			return nil, err
		}
	}

	for {
		c, err = l.peek()
		if err != nil {
			return nil, err
		}

		if c == -1 || !unicode.IsSpace(c) {
			break
		}

		l.skip()
	}

	l.tokBuff.Reset()
	return nil, nil
}

// lexStringLit lexes a string literal.  The token value carries the decoded
// string with the quotes trimmed off.
func (l *Lexer) lexStringLit() (*Token, error) {
	l.mark()
	l.skip()

	for {
		c, err := l.peek()
		if err != nil {
			return nil, err
		}

		switch c {
		case -1:
			return nil, report.Raise(l.getSpan(), "unclosed string literal")
		case '"':
			l.skip()
			return l.makeToken(TOK_STRINGLIT), nil
		case '\\':
			l.skip()

			{
				c, err = l.peek()
				if err != nil {
					return nil, err
				}

				switch c {
				case -1:
					return nil, report.Raise(l.getSpan(), "unclosed string literal")
				case '"', '\\':
					l.eat()
				case 'n':
					l.tokBuff.WriteRune('\n')
					l.skip()
				case 't':
					l.tokBuff.WriteRune('\t')
					l.skip()
				default:
					l.tokBuff.WriteRune('\\')
					l.eat()
				}
			}
		default:
			l.eat()
		}
	}
}

// lexSingleChar lexes a token which is always exactly one rune long.
func (l *Lexer) lexSingleChar() *Token {
	l.mark()
	c, _ := l.eat()
	return l.makeToken(singlePatterns[c])
}

// lexIntLit lexes an integer literal.
func (l *Lexer) lexIntLit() (*Token, error) {
	l.mark()
	l.eat()

	for {
		c, err := l.peek()
		if err != nil {
			return nil, err
		} else if !isDecimalDigit(c) {
			break
		}

		l.eat()
	}

	return l.makeToken(TOK_INTLIT), nil
}

// lexIdentOrKeyword lexes an identifier or a keyword.  Identifiers beginning
// with an uppercase letter name types; all others name values.
func (l *Lexer) lexIdentOrKeyword() (*Token, error) {
	l.mark()
	first, _ := l.eat()

	for {
		c, err := l.peek()
		if err != nil {
			return nil, err
		} else if !isFirstIdentChar(c) && !isDecimalDigit(c) {
			break
		}

		l.eat()
	}

	if kind, ok := keywordPatterns[l.tokBuff.String()]; ok {
		return l.makeToken(kind), nil
	}

	if unicode.IsUpper(first) {
		return l.makeToken(TOK_TYPENAME), nil
	}

	return l.makeToken(TOK_NAME), nil
}

// lexOperator lexes the remainder of an operator run whose first rune has
// already been eaten.  The run is as long as possible: `->` never lexes as `-`
// followed by `>`.
func (l *Lexer) lexOperator() (*Token, error) {
	for {
		c, err := l.peek()
		if err != nil {
			return nil, err
		} else if c == -1 || !isOperChar(c) {
			break
		}

		l.eat()
	}

	if kind, ok := symbolPatterns[l.tokBuff.String()]; ok {
		return l.makeToken(kind), nil
	}

	return l.makeToken(TOK_OPER), nil
}

// -----------------------------------------------------------------------------

// mark sets the lexer's stored start line and column to its current position.
func (l *Lexer) mark() {
	l.startLine = l.line
	l.startCol = l.col
}

// makeToken produces a new token of the given kind from the lexer's state and
// resets the lexer to begin building the next token.
func (l *Lexer) makeToken(kind int) *Token {
	value := l.tokBuff.String()
	l.tokBuff.Reset()

	return &Token{
		Kind:  kind,
		Value: value,
		Span:  l.getSpan(),
	}
}

// getSpan calculates a text span based on the lexer's current state.
func (l *Lexer) getSpan() *report.TextSpan {
	return &report.TextSpan{
		StartLine: l.startLine,
		StartCol:  l.startCol,
		EndLine:   l.line,
		EndCol:    l.col,
	}
}

// -----------------------------------------------------------------------------

// eat moves the lexer forward one rune and writes the rune to the token buffer.
// If the lexer encounters an EOF, -1 is returned as the rune value.
func (l *Lexer) eat() (rune, error) {
	c, _, err := l.file.ReadRune()
	if err != nil {
		if err == io.EOF {
			return -1, nil
		}

		return 0, err
	}

	l.updatePos(c)
	l.tokBuff.WriteRune(c)

	return c, nil
}

// skip moves the lexer forward one rune but does not write the rune to the
// token buffer.  If the lexer encounters an EOF, -1 is returned as the rune
// value.
func (l *Lexer) skip() (rune, error) {
	c, _, err := l.file.ReadRune()
	if err != nil {
		if err == io.EOF {
			return -1, nil
		}

		return 0, err
	}

	l.updatePos(c)

	return c, nil
}

// peek returns the next rune in the file without moving the lexer forward or
// writing the rune to the token buffer.  If the lexer encounters an EOF, -1 is
// returned as rune value.
func (l *Lexer) peek() (rune, error) {
	c, _, err := l.file.ReadRune()
	if err != nil {
		if err == io.EOF {
			return -1, nil
		}

		return 0, err
	}

	if err = l.file.UnreadRune(); err != nil {
		return 0, err
	}

	return c, nil
}

// updatePos updates the lexer's position based on input character.
func (l *Lexer) updatePos(c rune) {
	switch c {
	case '\n':
		l.line++
		l.col = 0
	case '\t':
		l.col += 4
	default:
		l.col++
	}
}

// -----------------------------------------------------------------------------

// operChars are the runes an operator run is made of.
const operChars = `/~!@#$%^&*-+=|:;?<>.,\`

// isDecimalDigit returns whether c is a decimal digit.
func isDecimalDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

// isFirstIdentChar returns whether c could be the first rune of an identifier.
func isFirstIdentChar(c rune) bool {
	return unicode.IsLetter(c) || c == '_'
}

// isOperChar returns whether c can appear in an operator run.
func isOperChar(c rune) bool {
	return strings.ContainsRune(operChars, c)
}
