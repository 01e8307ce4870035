package stamper

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/valyala/fasttemplate"

	"github.com/byte4ever/stache/template"
	"github.com/byte4ever/stache/value"
)

// LoadStamps reads workspace status files and merges them
// into a single map. Each line is "KEY VALUE" with the
// first space as delimiter. Lines without a space are
// silently skipped; later files override earlier ones.
func LoadStamps(infoFiles []string) (value.Map, error) {
	const errCtx = "loading stamps"

	stamps := make(value.Map)

	for _, sf := range infoFiles {
		content, err := os.ReadFile(sf) //nolint:gosec // paths from CLI flags
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		ParseStamps(string(content), stamps)
	}

	return stamps, nil
}

// ParseStamps adds the "KEY VALUE" lines of content to
// stamps. A trailing carriage return is dropped.
func ParseStamps(content string, stamps value.Map) {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")

		key, val, ok := strings.Cut(line, " ")
		if ok {
			stamps[key] = value.String(val)
		}
	}
}

// Stamp loads workspace status variables from infoFiles
// and renders format against them with {VAR} tags.
// Unknown variables render as empty text.
func Stamp(
	infoFiles []string,
	format string,
) (string, error) {
	const errCtx = "stamping"

	stamps, err := LoadStamps(infoFiles)
	if err != nil {
		return "", fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	tpl, err := template.ParseDelims(format, "{", "}")
	if err != nil {
		return "", fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	result, err := tpl.Render(stamps)
	if err != nil {
		return "", fmt.Errorf(
			"%s: %w", errCtx, err,
		)
	}

	return result, nil
}

// Interpolate replaces each {KEY} in text whose key names
// a string stamp. Any other tag, including one naming a
// non-string value, is left as written, so text holding
// JSON or shell braces passes through unchanged.
func Interpolate(text string, stamps value.Map) string {
	return fasttemplate.ExecuteFuncString(
		text, "{", "}",
		func(w io.Writer, tag string) (int, error) {
			if val, ok := stamps[tag].(value.String); ok {
				return io.WriteString(w, string(val))
			}

			return io.WriteString(w, "{"+tag+"}")
		},
	)
}
