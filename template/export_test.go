package template

// Exported aliases for testing the token tree from the
// template_test package.

// Path is an alias for path.
type Path = path

// Token is an alias for token.
type Token = token

// TextTok is an alias for textToken.
type TextTok = textToken

// InsertTok is an alias for insertToken.
type InsertTok = insertToken

// SectionTok is an alias for sectionToken.
type SectionTok = sectionToken

// SetFormatTok is an alias for setFormatToken.
type SetFormatTok = setFormatToken

// TokensOf exposes the compiled tree of t.
func TokensOf(t *Template) []Token {
	return t.tokens
}
