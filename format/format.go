package format

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/valyala/fasttemplate"
)

const (
	startTag = "{"
	endTag   = "}"
)

var (
	// ErrUnknownPlaceholder is reported when a format string
	// names a placeholder the value cannot resolve.
	ErrUnknownPlaceholder = errors.New("unknown placeholder")

	// ErrInvalidSpec is reported when the spec following a
	// placeholder name cannot be parsed or does not apply to
	// the placeholder's primitive type.
	ErrInvalidSpec = errors.New("invalid format spec")
)

// Formattable is implemented by values whose text is driven
// by a format string rather than a fixed conversion.
type Formattable interface {
	// TypeName is the stable key under which format
	// overrides for this kind of value are registered.
	TypeName() string

	// DefaultFormat is used when no override applies.
	DefaultFormat() string

	// Placeholder resolves a placeholder name to a
	// primitive. It reports false for unknown names.
	Placeholder(name string) (Arg, bool)
}

// Error describes a failed expansion of a format string.
type Error struct {
	TypeName string
	Key      string
	Spec     string
	Err      error
}

func (e *Error) Error() string {
	if errors.Is(e.Err, ErrInvalidSpec) {
		return fmt.Sprintf(
			"failed to format %s: %v %q for placeholder %q",
			e.TypeName, e.Err, e.Spec, e.Key,
		)
	}

	return fmt.Sprintf(
		"failed to format %s: %v %q", e.TypeName, e.Err, e.Key,
	)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Format expands fmtstr against fo. Every {key} or
// {key:spec} marker is replaced by the placeholder value
// fo resolves for key. A doubled brace, {{ or }}, stands
// for a literal brace.
func Format(fo Formattable, fmtstr string) (string, error) {
	var sb strings.Builder

	chunk := 0

	// flush expands fmtstr[chunk:end], which holds no
	// escaped braces.
	flush := func(end int) error {
		if end == chunk {
			return nil
		}

		text, err := fasttemplate.ExecuteFuncStringWithErr(
			fmtstr[chunk:end], startTag, endTag,
			func(w io.Writer, tag string) (int, error) {
				text, err := expand(fo, tag)
				if err != nil {
					return 0, err
				}

				return io.WriteString(w, text)
			},
		)
		if err != nil {
			return err
		}

		sb.WriteString(text)

		return nil
	}

	for i := 0; i < len(fmtstr); {
		rest := fmtstr[i:]

		switch {
		case strings.HasPrefix(rest, "{{"), strings.HasPrefix(rest, "}}"):
			if err := flush(i); err != nil {
				return "", err
			}

			sb.WriteByte(rest[0])
			i += 2
			chunk = i
		case rest[0] == '{':
			end := strings.Index(rest, endTag)
			if end < 0 {
				i = len(fmtstr)

				continue
			}

			i += end + 1
		default:
			i++
		}
	}

	if err := flush(len(fmtstr)); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// Display formats fo with its own default format string.
func Display(fo Formattable) (string, error) {
	return Format(fo, fo.DefaultFormat())
}

func expand(fo Formattable, tag string) (string, error) {
	key, rawSpec, hasSpec := strings.Cut(tag, ":")

	arg, ok := fo.Placeholder(key)
	if !ok {
		return "", &Error{
			TypeName: fo.TypeName(),
			Key:      key,
			Err:      ErrUnknownPlaceholder,
		}
	}

	if !hasSpec {
		return arg.String(), nil
	}

	sp, err := parseSpec(rawSpec)
	if err == nil {
		var text string

		text, err = sp.apply(arg)
		if err == nil {
			return text, nil
		}
	}

	return "", &Error{
		TypeName: fo.TypeName(),
		Key:      key,
		Spec:     rawSpec,
		Err:      err,
	}
}

type argKind uint8

const (
	argString argKind = iota
	argInt
	argFloat
)

// Arg is a primitive produced by a placeholder: a string,
// a signed integer or a float.
type Arg struct {
	kind argKind
	str  string
	num  int64
	flt  float64
}

// Str wraps a string placeholder value.
func Str(s string) Arg {
	return Arg{kind: argString, str: s}
}

// Int wraps an integer placeholder value.
func Int(n int64) Arg {
	return Arg{kind: argInt, num: n}
}

// Float wraps a floating point placeholder value.
func Float(f float64) Arg {
	return Arg{kind: argFloat, flt: f}
}

// String renders the argument without any spec applied.
// Floats use the shortest representation that round-trips.
func (a Arg) String() string {
	switch a.kind {
	case argInt:
		return strconv.FormatInt(a.num, 10)
	case argFloat:
		return formatFloat(a.flt, 'f', -1)
	default:
		return a.str
	}
}
