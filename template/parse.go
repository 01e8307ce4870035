package template

import (
	"strings"
	"unicode"
)

const (
	defaultStartDelim = "{{"
	defaultEndDelim   = "}}"
)

// state is the mutable part of the parser shared by every
// level of the recursion. A delimiter instruction changes
// it for all input that follows, wherever it appears.
type state struct {
	start string
	end   string
}

// Parse compiles src using the default "{{" and "}}"
// delimiters. The returned error is a *ParseError.
func Parse(src string) (*Template, error) {
	return ParseDelims(src, defaultStartDelim, defaultEndDelim)
}

// ParseDelims compiles src starting with the given
// delimiters instead of the defaults. Empty delimiters
// fall back to the defaults.
func ParseDelims(src string, start string, end string) (*Template, error) {
	if start == "" {
		start = defaultStartDelim
	}

	if end == "" {
		end = defaultEndDelim
	}

	s := newSource(src)
	st := &state{start: start, end: end}

	tokens, err := parseTemplate(&s, st)
	if err != nil {
		return nil, err
	}

	return newTemplate(tokens), nil
}

// Must panics if err is non-nil. It is meant for package
// level templates built from constant source.
func Must(t *Template, err error) *Template {
	if err != nil {
		panic(err)
	}

	return t
}

func errAt(kind ParseErrorKind, pos Position) *ParseError {
	return &ParseError{Kind: kind, Pos: pos}
}

func parseTemplate(src *source, st *state) ([]token, error) {
	var tokens []token

	for {
		tok, ok, err := parseTokenOrInstruction(src, st)
		if err != nil {
			return nil, err
		}

		if !ok {
			return tokens, nil
		}

		if tok != nil {
			tokens = append(tokens, tok)
		}
	}
}

// parseTokenOrInstruction reports ok when it consumed
// input. Delimiter instructions consume input without
// producing a token.
func parseTokenOrInstruction(src *source, st *state) (token, bool, error) {
	tok, ok, err := parseInstruction(src, st)
	if err != nil || ok {
		return tok, ok, err
	}

	return parseToken(src, st)
}

func parseToken(src *source, st *state) (token, bool, error) {
	if sec, ok, err := parseSection(src, st); err != nil || ok {
		return sec, ok, err
	}

	if ins, ok, err := parseInsert(src, st); err != nil || ok {
		return ins, ok, err
	}

	if text, ok := parseText(src, st); ok {
		return text, true, nil
	}

	return nil, false, nil
}

func parseInstruction(src *source, st *state) (token, bool, error) {
	s := *src

	if !s.matchLiteral(st.start + "=") {
		return nil, false, nil
	}

	s.skipWhitespace()

	setFmt, ok, err := parseSetFormat(&s, st)
	if err != nil {
		return nil, false, err
	}

	if ok {
		*src = s

		return setFmt, true, nil
	}

	start, ok := parseDelimiterDef(&s)
	if !ok {
		return nil, false, errAt(MissingStartDelimiterDef, s.pos)
	}

	s.skipWhitespace()

	end, ok := parseDelimiterDef(&s)
	if !ok {
		return nil, false, errAt(MissingEndDelimiterDef, s.pos)
	}

	s.skipWhitespace()

	if err := matchClosing(&s, "="+st.end); err != nil {
		return nil, false, err
	}

	*src = s
	st.start = start
	st.end = end

	return nil, true, nil
}

// parseSetFormat recognizes `type "format"` followed by the
// instruction end. Anything not starting with an identifier
// and a complete quoted string is left for delimiter
// parsing, so `{{=a "=}}` still sets the delimiters a and ".
func parseSetFormat(src *source, st *state) (token, bool, error) {
	s := *src

	typeName, ok := parseIdent(&s)
	if !ok {
		return nil, false, nil
	}

	s.skipWhitespace()

	if r, ok := s.peek(); !ok || r != '"' {
		return nil, false, nil
	}

	fmtstr, err := parseQuoted(&s)
	if err != nil {
		return nil, false, nil //nolint:nilerr // not a format instruction
	}

	s.skipWhitespace()

	if err := matchClosing(&s, "="+st.end); err != nil {
		return nil, false, err
	}

	*src = s

	return setFormatToken{TypeName: typeName, Format: fmtstr}, true, nil
}

func parseDelimiterDef(src *source) (string, bool) {
	start := src.off

	for {
		r, ok := src.peek()
		if !ok || r == '=' || unicode.IsSpace(r) {
			break
		}

		src.next()
	}

	if src.off == start {
		return "", false
	}

	return src.text[start:src.off], true
}

func matchClosing(src *source, delim string) error {
	if !src.matchLiteral(delim) {
		return &ParseError{
			Kind:  ExpectedClosingDelim,
			Delim: delim,
			Pos:   src.pos,
		}
	}

	return nil
}

func isIdentRune(r rune) bool {
	return r >= 'A' && r <= 'Z' ||
		r >= 'a' && r <= 'z' ||
		r >= '0' && r <= '9' ||
		r == '_' || r == '-'
}

func parseIdent(src *source) (string, bool) {
	start := src.off

	for {
		r, ok := src.peek()
		if !ok || !isIdentRune(r) {
			break
		}

		src.next()
	}

	if src.off == start {
		return "", false
	}

	return src.text[start:src.off], true
}

// parseName reports false when the cursor is not on a name
// at all, and fails when a dot is not followed by an
// identifier.
func parseName(src *source) (path, bool, error) {
	s := *src

	if r, ok := s.peek(); ok && r == '.' {
		s.next()
		*src = s

		return nil, true, nil
	}

	seg, ok := parseIdent(&s)
	if !ok {
		return nil, false, nil
	}

	name := path{seg}

	for {
		if r, ok := s.peek(); !ok || r != '.' {
			break
		}

		s.next()

		seg, ok := parseIdent(&s)
		if !ok {
			return nil, false, errAt(ExpectedIdent, s.pos)
		}

		name = append(name, seg)
	}

	*src = s

	return name, true, nil
}

// parseQuoted reads a double-quoted string. A backslash
// makes the following character literal.
func parseQuoted(src *source) (string, error) {
	s := *src

	if r, ok := s.next(); !ok || r != '"' {
		return "", &ParseError{
			Kind:  ExpectedClosingDelim,
			Delim: `"`,
			Pos:   src.pos,
		}
	}

	var buf []rune

	for {
		r, ok := s.next()
		if !ok {
			return "", &ParseError{
				Kind:  ExpectedClosingDelim,
				Delim: `"`,
				Pos:   s.pos,
			}
		}

		switch r {
		case '"':
			*src = s

			return string(buf), nil
		case '\\':
			esc, ok := s.next()
			if !ok {
				return "", &ParseError{
					Kind:  ExpectedClosingDelim,
					Delim: `"`,
					Pos:   s.pos,
				}
			}

			buf = append(buf, esc)
		default:
			buf = append(buf, r)
		}
	}
}

type tag struct {
	name      path
	format    string
	formatted bool
}

// parseTag reads start delimiter, optional operator, name
// and end delimiter. It reports false without error when
// the input does not open a tag with the given operator;
// once the operator matched, any malformation is an error.
// Only plain insert tags (op 0) may carry a format.
func parseTag(src *source, st *state, op rune) (tag, bool, error) {
	s := *src

	if !s.matchLiteral(st.start) {
		return tag{}, false, nil
	}

	s.skipWhitespace()

	if op != 0 {
		if r, ok := s.peek(); !ok || r != op {
			return tag{}, false, nil
		}

		s.next()
		s.skipWhitespace()
	}

	name, ok, err := parseName(&s)
	if err != nil {
		return tag{}, false, err
	}

	if !ok {
		return tag{}, false, errAt(ExpectedName, s.pos)
	}

	tg := tag{name: name}

	s.skipWhitespace()

	if op == 0 {
		if err := parseTagFormat(&s, &tg); err != nil {
			return tag{}, false, err
		}
	}

	if err := matchClosing(&s, st.end); err != nil {
		return tag{}, false, err
	}

	*src = s

	return tg, true, nil
}

// parseTagFormat consumes `: "format"` when present. A
// colon not followed by a quoted string is left in place
// so the caller reports the missing end delimiter there.
func parseTagFormat(src *source, tg *tag) error {
	s := *src

	if r, ok := s.next(); !ok || r != ':' {
		return nil
	}

	s.skipWhitespace()

	if r, ok := s.peek(); !ok || r != '"' {
		return nil
	}

	fmtstr, err := parseQuoted(&s)
	if err != nil {
		return err
	}

	s.skipWhitespace()
	*src = s

	tg.format = fmtstr
	tg.formatted = true

	return nil
}

func parseInsert(src *source, st *state) (token, bool, error) {
	tg, ok, err := parseTag(src, st, 0)
	if err != nil || !ok {
		return nil, false, err
	}

	return insertToken{
		Name:      tg.name,
		Format:    tg.format,
		Formatted: tg.formatted,
	}, true, nil
}

func parseSection(src *source, st *state) (token, bool, error) {
	s := *src
	inverted := false

	open, ok, err := parseTag(&s, st, '#')
	if err != nil {
		return nil, false, err
	}

	if !ok {
		inverted = true

		open, ok, err = parseTag(&s, st, '^')
		if err != nil || !ok {
			return nil, false, err
		}
	}

	var children []token

	for {
		at := s.pos

		closing, ok, err := parseTag(&s, st, '/')
		if err != nil {
			return nil, false, err
		}

		if ok {
			if !closing.name.equal(open.name) {
				return nil, false, &ParseError{
					Kind:     MismatchedSectionEnd,
					Found:    closing.name.String(),
					Expected: open.name.String(),
					Pos:      at,
				}
			}

			break
		}

		tok, ok, err := parseTokenOrInstruction(&s, st)
		if err != nil {
			return nil, false, err
		}

		if !ok {
			return nil, false, &ParseError{
				Kind: MissingSectionEnd,
				Name: open.name.String(),
				Pos:  s.pos,
			}
		}

		if tok != nil {
			children = append(children, tok)
		}
	}

	*src = s

	return sectionToken{
		Name:     open.name,
		Inverted: inverted,
		Children: children,
	}, true, nil
}

// parseText consumes everything up to the next start
// delimiter or the end of input.
func parseText(src *source, st *state) (token, bool) {
	rest := src.rest()

	n := len(rest)
	if i := strings.Index(rest, st.start); i >= 0 {
		n = i
	}

	if n == 0 {
		return nil, false
	}

	src.advance(n)

	return textToken{Text: rest[:n]}, true
}
