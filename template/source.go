package template

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Position locates a character in template source. Lines
// start at 1 and columns at 0; columns count characters.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

func (p *Position) step(r rune) {
	if r == '\n' {
		p.Line++
		p.Column = 0

		return
	}

	p.Column++
}

// source is a cursor over template text. It is a small
// value: parse functions copy it, attempt a sub-parse on
// the copy and assign it back only on success.
type source struct {
	text string
	off  int
	pos  Position
}

func newSource(text string) source {
	return source{text: text, pos: Position{Line: 1}}
}

func (s *source) rest() string {
	return s.text[s.off:]
}

func (s *source) peek() (rune, bool) {
	if s.off >= len(s.text) {
		return 0, false
	}

	r, _ := utf8.DecodeRuneInString(s.rest())

	return r, true
}

func (s *source) next() (rune, bool) {
	if s.off >= len(s.text) {
		return 0, false
	}

	r, size := utf8.DecodeRuneInString(s.rest())
	s.off += size
	s.pos.step(r)

	return r, true
}

// advance consumes n bytes.
func (s *source) advance(n int) {
	for _, r := range s.text[s.off : s.off+n] {
		s.pos.step(r)
	}

	s.off += n
}

// matchLiteral consumes lit if the cursor is positioned on
// it and reports whether it did.
func (s *source) matchLiteral(lit string) bool {
	if !strings.HasPrefix(s.rest(), lit) {
		return false
	}

	s.advance(len(lit))

	return true
}

func (s *source) skipWhitespace() {
	for {
		r, ok := s.peek()
		if !ok || !unicode.IsSpace(r) {
			return
		}

		s.next()
	}
}
