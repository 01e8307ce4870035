package template

import (
	"fmt"

	"github.com/byte4ever/stache/value"
)

// ParseErrorKind classifies a ParseError.
type ParseErrorKind uint8

// Parse error kinds.
const (
	ExpectedIdent ParseErrorKind = iota + 1
	ExpectedClosingDelim
	ExpectedName
	MismatchedSectionEnd
	MissingSectionEnd
	MissingStartDelimiterDef
	MissingEndDelimiterDef
)

// ParseError reports the first problem found in template
// source and where the scanner stood when it was found.
type ParseError struct {
	Kind ParseErrorKind

	// Delim is the text that was expected for
	// ExpectedClosingDelim.
	Delim string

	// Found and Expected are the close and open names of
	// a MismatchedSectionEnd.
	Found    string
	Expected string

	// Name is the section left open by MissingSectionEnd.
	Name string

	Pos Position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s (%s)", e.message(), e.Pos)
}

func (e *ParseError) message() string {
	switch e.Kind {
	case ExpectedIdent:
		return "expected an identifier"
	case ExpectedClosingDelim:
		return fmt.Sprintf("expected closing delimiter %q", e.Delim)
	case ExpectedName:
		return "expected a name"
	case MismatchedSectionEnd:
		return fmt.Sprintf(
			"mismatched section end: expected %q, found %q",
			"/"+e.Expected, "/"+e.Found,
		)
	case MissingSectionEnd:
		return fmt.Sprintf("section %q was never closed", e.Name)
	case MissingStartDelimiterDef:
		return "missing a definition for the start delimiter"
	case MissingEndDelimiterDef:
		return "missing a definition for the end delimiter"
	default:
		return "parse error"
	}
}

// RenderErrorKind classifies a RenderError.
type RenderErrorKind uint8

// Render error kinds.
const (
	InvalidIndex RenderErrorKind = iota + 1
	IndexOutOfBounds
	CannotInsertCollection
	CannotInvertSection
	UnknownPlaceholder
	InvalidFormatSpec
)

// RenderError aborts a single render. Name is the tag
// name being rendered when the failure occurred.
type RenderError struct {
	Kind RenderErrorKind
	Name string

	// Segment is the path segment that failed to index a
	// list; Index and Len describe an out of bounds access.
	Segment string
	Index   uint64
	Len     int

	// Value is the kind of the offending value; TypeName
	// is set when it is a formattable.
	Value    value.Kind
	TypeName string

	// Key is the placeholder that failed to format, Err
	// the underlying formatting error.
	Key string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering %q: %s", e.Name, e.message())
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

func (e *RenderError) message() string {
	switch e.Kind {
	case InvalidIndex:
		return fmt.Sprintf("%q is not a valid list index", e.Segment)
	case IndexOutOfBounds:
		return fmt.Sprintf(
			"index %d is out of bounds for list of length %d",
			e.Index, e.Len,
		)
	case CannotInsertCollection:
		return fmt.Sprintf("cannot directly insert %s value", e.Value)
	case CannotInvertSection:
		return fmt.Sprintf(
			"cannot invert section on %s value", e.typeLabel(),
		)
	case UnknownPlaceholder, InvalidFormatSpec:
		return e.Err.Error()
	default:
		return "render error"
	}
}

func (e *RenderError) typeLabel() string {
	if e.TypeName != "" {
		return e.TypeName
	}

	return e.Value.String()
}
