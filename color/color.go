package color

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/byte4ever/stache/format"
)

// TypeName is the format override key for colors.
const TypeName = "color"

// DefaultFormat renders a color as #rrggbbaa.
const DefaultFormat = "#{rx}{gx}{bx}{ax}"

// ErrInvalidHex is returned by Parse for malformed input.
var ErrInvalidHex = errors.New("invalid hex color")

// Color is an 8-bit per channel RGBA color.
type Color struct {
	R uint8
	G uint8
	B uint8
	A uint8
}

// Parse reads "#rgb", "#rrggbb" or "#rrggbbaa". Alpha
// defaults to fully opaque.
func Parse(s string) (Color, error) {
	const errCtx = "parsing color"

	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return Color{}, fmt.Errorf("%s: %w %q", errCtx, ErrInvalidHex, s)
	}

	if len(hex) == 3 {
		hex = string([]byte{
			hex[0], hex[0], hex[1], hex[1], hex[2], hex[2],
		})
	}

	if len(hex) == 6 {
		hex += "ff"
	}

	if len(hex) != 8 {
		return Color{}, fmt.Errorf("%s: %w %q", errCtx, ErrInvalidHex, s)
	}

	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%s: %w %q", errCtx, ErrInvalidHex, s)
	}

	return Color{
		R: uint8(n >> 24),
		G: uint8(n >> 16),
		B: uint8(n >> 8),
		A: uint8(n),
	}, nil
}

// TypeName returns "color", the key for color format
// overrides.
func (c Color) TypeName() string {
	return TypeName
}

// DefaultFormat returns the #rrggbbaa hex format.
func (c Color) DefaultFormat() string {
	return DefaultFormat
}

// Placeholder resolves r, g, b and a to the channel as an
// integer. A trailing x gives two lowercase hex digits and
// a trailing f a float between 0 and 1.
func (c Color) Placeholder(name string) (format.Arg, bool) {
	var ch uint8

	switch name[:min(len(name), 1)] {
	case "r":
		ch = c.R
	case "g":
		ch = c.G
	case "b":
		ch = c.B
	case "a":
		ch = c.A
	default:
		return format.Arg{}, false
	}

	switch name[1:] {
	case "":
		return format.Int(int64(ch)), true
	case "x":
		return format.Str(fmt.Sprintf("%02x", ch)), true
	case "f":
		return format.Float(float64(ch) / 255), true
	default:
		return format.Arg{}, false
	}
}

// String returns the color as #rrggbbaa.
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
