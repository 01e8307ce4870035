// Package stamper reads Bazel-style workspace status files into template
// values and stamps single-brace {VAR} placeholders in short format strings.
// LoadStamps parses one or more status files into a string map; Stamp
// combines loading and rendering in a single call. Interpolate is the lenient
// form used on variable values and imports: tags it cannot resolve are left
// as written.
package stamper
