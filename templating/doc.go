// Package templating expands template files from the command line. An
// Engine holds the configuration (start/end tags, data files, format
// overrides, imports) and expands templates via the Expand method: it loads
// and merges the data documents, overlays explicit NAME=VALUE variables,
// renders NAME=FILE imports into imports.NAME, compiles the template, seeds
// its format overrides, renders it and writes the result atomically.
package templating
