// Package color provides an RGBA color usable as a formattable template
// value. Its default text is "#rrggbbaa"; the placeholders r, g, b and a give
// the channels as integers, rx..ax as two-digit lowercase hex and rf..af as
// fractions between 0 and 1.
package color
