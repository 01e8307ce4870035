// Package template implements a small logic-less template language in the
// Mustache family. Parse compiles source text into a Template; Render walks
// the compiled token tree against a value.Value and returns the output.
//
// Tags are enclosed in delimiters, "{{" and "}}" by default:
//
//	{{name.path}}                insert a value ({{.}} is the current context)
//	{{name:"{r}, {g}, {b}"}}     insert a formattable with an inline format
//	{{#name}}...{{/name}}        section, rendered per the resolved value
//	{{^name}}...{{/name}}        inverted section
//	{{=<% %>=}}                  switch delimiters for the rest of the input
//	{{=color "#{rx}{gx}{bx}"=}}  set the format used for a formattable type
//
// Names are resolved against a context stack, innermost first. A lookup
// missing from a map falls back to the enclosing contexts, so sections can
// refer to outer values without qualification. Numeric path segments index
// into lists.
//
// Formattable values are rendered with the first format string found among
// the inline format of the tag, the template's override for the value's type
// name (set by SetFormat or by a format instruction encountered earlier in the
// render), and the value's default format.
//
// The token tree is immutable once parsed. The format override table is
// instance state: format instructions update it in place and the change is
// visible to later renders of the same Template. Render serializes on a
// per-template mutex; use Clone to render one template in parallel with
// independent override tables.
package template
