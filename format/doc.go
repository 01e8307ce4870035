// Package format defines the Formattable capability and expands format
// strings against it. A format string is plain text with {placeholder}
// markers; each marker is resolved through Formattable.Placeholder and may
// carry a spec after a colon ({r:02x}, {name:>8}, {af:.2}) controlling
// fill, alignment, sign, width, precision and integer radix.
//
// Expansion is done with valyala/fasttemplate using single-brace tags. A
// doubled brace, {{ or }}, writes a literal brace. An opening brace with no
// matching closing brace is copied to the output unchanged. Width and
// precision are limited to 65536.
package format
