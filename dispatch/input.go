// Package dispatch is the runtime half of generated modifier code. It reads
// serialized modifier calls from a rewindable cursor, binds their arguments to
// typed signatures and routes each call to the generated chunk parsers, the
// host's fallback parsers or the host's custom-modifier parser.
package dispatch

import (
	"fmt"
	"unicode/utf8"
)

// Input is a rewindable cursor over serialized modifier calls.
// Parsers consume input on success; callers save a position with Mark and
// restore it with Reset before trying an alternative.
type Input struct {
	src []byte
	pos int
}

// NewInput returns a cursor positioned at the start of s.
func NewInput(s string) *Input {
	return &Input{src: []byte(s)}
}

// Mark returns the current position.
func (in *Input) Mark() int { return in.pos }

// Reset moves the cursor back to a position returned by Mark.
func (in *Input) Reset(mark int) {
	if mark < 0 {
		mark = 0
	}
	if mark > len(in.src) {
		mark = len(in.src)
	}
	in.pos = mark
}

// Offset is the byte offset of the cursor.
func (in *Input) Offset() int { return in.pos }

// EOF reports whether only whitespace remains.
func (in *Input) EOF() bool {
	in.skipSpace()
	return in.pos >= len(in.src)
}

func (in *Input) peek() byte {
	if in.pos >= len(in.src) {
		return 0
	}
	return in.src[in.pos]
}

func (in *Input) peekAt(n int) byte {
	if in.pos+n >= len(in.src) {
		return 0
	}
	return in.src[in.pos+n]
}

func (in *Input) skipSpace() {
	for in.pos < len(in.src) {
		switch in.src[in.pos] {
		case ' ', '\t', '\n', '\r':
			in.pos++
		default:
			return
		}
	}
}

func (in *Input) expect(c byte) error {
	in.skipSpace()
	if in.peek() != c {
		return in.errorf("expected %q, found %s", c, in.describe())
	}
	in.pos++
	return nil
}

func (in *Input) describe() string {
	if in.pos >= len(in.src) {
		return "end of input"
	}
	r, _ := utf8.DecodeRune(in.src[in.pos:])
	return fmt.Sprintf("%q", r)
}

func (in *Input) errorf(format string, args ...any) *SyntaxError {
	return &SyntaxError{Offset: in.pos, Msg: fmt.Sprintf(format, args...)}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// readIdent reads an identifier, allowing a single trailing ? or !.
func (in *Input) readIdent() (string, bool) {
	start := in.pos
	if !isIdentStart(in.peek()) {
		return "", false
	}
	for in.pos < len(in.src) && isIdentPart(in.src[in.pos]) {
		in.pos++
	}
	if c := in.peek(); c == '?' || c == '!' {
		in.pos++
	}
	return string(in.src[start:in.pos]), true
}
