package iface

import (
	"fmt"
	"strings"
)

// TokenKind classifies a lexical token.
type TokenKind int

const (
	EOF TokenKind = iota
	Ident
	Number
	String
	Punct
	Operator
)

func (k TokenKind) String() string {
	switch k {
	case EOF:
		return "end of file"
	case Ident:
		return "identifier"
	case Number:
		return "number"
	case String:
		return "string"
	case Punct:
		return "punctuation"
	case Operator:
		return "operator"
	}
	return fmt.Sprintf("token(%d)", int(k))
}

// Token is one lexical token. Offset and End are byte offsets into the
// source; Line and Col are 1-based.
type Token struct {
	Kind   TokenKind
	Text   string
	Offset int
	End    int
	Line   int
	Col    int
}

func (t Token) String() string {
	if t.Kind == EOF {
		return "end of file"
	}
	return fmt.Sprintf("%q", t.Text)
}

// SyntaxError is a lexical or syntactic error in interface text.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
}

const singlePunct = "(){}[],:;@<>?!&.\\"

const operatorChars = "=-+*/%|^~"

type lexer struct {
	src  string
	pos  int
	line int
	col  int

	// conds tracks open #if blocks; true while the block's first branch is
	// still active.
	conds []bool
	skip  int
}

// Lex splits interface source into tokens. Conditional compilation blocks
// keep only their first branch.
func Lex(src string) ([]Token, error) {
	lx := &lexer{src: src, line: 1, col: 1}
	var toks []Token
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == EOF {
			if len(lx.conds) > 0 {
				return nil, lx.errorf("unterminated #if")
			}
			toks = append(toks, tok)
			return toks, nil
		}
		if lx.skip == 0 {
			toks = append(toks, tok)
		}
	}
}

func (lx *lexer) errorf(format string, args ...any) *SyntaxError {
	return &SyntaxError{Line: lx.line, Col: lx.col, Msg: fmt.Sprintf(format, args...)}
}

func (lx *lexer) peekByte(n int) byte {
	if lx.pos+n >= len(lx.src) {
		return 0
	}
	return lx.src[lx.pos+n]
}

func (lx *lexer) advance(n int) {
	for i := 0; i < n && lx.pos < len(lx.src); i++ {
		if lx.src[lx.pos] == '\n' {
			lx.line++
			lx.col = 1
		} else {
			lx.col++
		}
		lx.pos++
	}
}

func (lx *lexer) skipSpaceAndComments() error {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			lx.advance(1)
		case c == '/' && lx.peekByte(1) == '/':
			for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
				lx.advance(1)
			}
		case c == '/' && lx.peekByte(1) == '*':
			if err := lx.skipBlockComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
	return nil
}

func (lx *lexer) skipBlockComment() error {
	start := *lx
	depth := 0
	for lx.pos < len(lx.src) {
		switch {
		case lx.src[lx.pos] == '/' && lx.peekByte(1) == '*':
			depth++
			lx.advance(2)
		case lx.src[lx.pos] == '*' && lx.peekByte(1) == '/':
			depth--
			lx.advance(2)
			if depth == 0 {
				return nil
			}
		default:
			lx.advance(1)
		}
	}
	return start.errorf("unterminated block comment")
}

func (lx *lexer) next() (Token, error) {
	if err := lx.skipSpaceAndComments(); err != nil {
		return Token{}, err
	}
	tok := Token{Offset: lx.pos, Line: lx.line, Col: lx.col}
	if lx.pos >= len(lx.src) {
		tok.Kind = EOF
		tok.End = lx.pos
		return tok, nil
	}

	c := lx.src[lx.pos]
	switch {
	case isIdentStart(c):
		lx.advance(identLen(lx.src[lx.pos:]))
		tok.Kind = Ident
		tok.Text = lx.src[tok.Offset:lx.pos]
	case c == '`':
		end := strings.IndexByte(lx.src[lx.pos+1:], '`')
		if end < 0 {
			return Token{}, lx.errorf("unterminated backtick identifier")
		}
		tok.Kind = Ident
		tok.Text = lx.src[lx.pos+1 : lx.pos+1+end]
		lx.advance(end + 2)
	case c == '$' && (isIdentStart(lx.peekByte(1)) || isDigit(lx.peekByte(1))):
		lx.advance(1 + identLen(lx.src[lx.pos+1:]))
		tok.Kind = Ident
		tok.Text = lx.src[tok.Offset:lx.pos]
	case isDigit(c):
		lx.advance(numberLen(lx.src[lx.pos:]))
		tok.Kind = Number
		tok.Text = lx.src[tok.Offset:lx.pos]
	case c == '"':
		s, err := lx.lexString(0)
		if err != nil {
			return Token{}, err
		}
		tok.Kind = String
		tok.Text = s
	case c == '#':
		return lx.lexHash(tok)
	case c == '-' && lx.peekByte(1) == '>':
		lx.advance(2)
		tok.Kind = Punct
		tok.Text = "->"
	case c == '.' && lx.peekByte(1) == '.' && lx.peekByte(2) == '.':
		lx.advance(3)
		tok.Kind = Punct
		tok.Text = "..."
	case strings.IndexByte(singlePunct, c) >= 0:
		lx.advance(1)
		tok.Kind = Punct
		tok.Text = string(c)
	case strings.IndexByte(operatorChars, c) >= 0:
		n := 0
		for lx.pos+n < len(lx.src) && strings.IndexByte(operatorChars, lx.src[lx.pos+n]) >= 0 {
			if lx.src[lx.pos+n] == '-' && lx.peekByte(n+1) == '>' {
				break
			}
			n++
		}
		lx.advance(n)
		tok.Kind = Operator
		tok.Text = lx.src[tok.Offset:lx.pos]
	default:
		return Token{}, lx.errorf("unexpected character %q", c)
	}
	tok.End = lx.pos
	return tok, nil
}

// lexHash handles directives, raw strings and pound literals.
func (lx *lexer) lexHash(tok Token) (Token, error) {
	hashes := 0
	for lx.peekByte(hashes) == '#' {
		hashes++
	}
	if lx.peekByte(hashes) == '"' {
		lx.advance(hashes)
		s, err := lx.lexString(hashes)
		if err != nil {
			return Token{}, err
		}
		tok.Kind = String
		tok.Text = s
		tok.End = lx.pos
		return tok, nil
	}

	lx.advance(1)
	word := lx.src[lx.pos : lx.pos+identLen(lx.src[lx.pos:])]
	lx.advance(len(word))
	switch word {
	case "if":
		lx.skipLine()
		lx.conds = append(lx.conds, true)
		return lx.next()
	case "elseif", "else":
		if len(lx.conds) == 0 {
			return Token{}, lx.errorf("#%s without #if", word)
		}
		lx.skipLine()
		if lx.conds[len(lx.conds)-1] {
			lx.conds[len(lx.conds)-1] = false
			lx.skip++
		}
		return lx.next()
	case "endif":
		if len(lx.conds) == 0 {
			return Token{}, lx.errorf("#endif without #if")
		}
		if !lx.conds[len(lx.conds)-1] {
			lx.skip--
		}
		lx.conds = lx.conds[:len(lx.conds)-1]
		return lx.next()
	case "":
		return Token{}, lx.errorf("unexpected '#'")
	}
	tok.Kind = Ident
	tok.Text = "#" + word
	tok.End = lx.pos
	return tok, nil
}

func (lx *lexer) skipLine() {
	for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
		lx.advance(1)
	}
}

// lexString reads a string literal whose opening quote is at the cursor and
// whose delimiter carries the given number of '#'.
func (lx *lexer) lexString(hashes int) (string, error) {
	start := *lx
	quote := `"`
	if strings.HasPrefix(lx.src[lx.pos:], `"""`) {
		quote = `"""`
	}
	closing := quote + strings.Repeat("#", hashes)
	lx.advance(len(quote))
	var b strings.Builder
	for lx.pos < len(lx.src) {
		if strings.HasPrefix(lx.src[lx.pos:], closing) {
			lx.advance(len(closing))
			return b.String(), nil
		}
		c := lx.src[lx.pos]
		if c == '\n' && quote == `"` {
			break
		}
		if c == '\\' && hashes == 0 && lx.pos+1 < len(lx.src) {
			b.WriteByte(c)
			b.WriteByte(lx.src[lx.pos+1])
			lx.advance(2)
			continue
		}
		b.WriteByte(c)
		lx.advance(1)
	}
	return "", start.errorf("unterminated string literal")
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func identLen(s string) int {
	n := 0
	for n < len(s) && (isIdentStart(s[n]) || isDigit(s[n])) {
		n++
	}
	return n
}

// numberLen accepts decimal, hex and dotted version literals.
func numberLen(s string) int {
	n := 0
	for n < len(s) {
		c := s[n]
		switch {
		case isDigit(c), c == '_', c == 'x', c == 'X', c == 'e', c == 'E',
			c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
			n++
		case c == '.' && n+1 < len(s) && isDigit(s[n+1]):
			n++
		case (c == '-' || c == '+') && n > 0 && (s[n-1] == 'e' || s[n-1] == 'E') && !strings.HasPrefix(s, "0x"):
			n++
		default:
			return n
		}
	}
	return n
}
