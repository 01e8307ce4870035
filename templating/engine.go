package templating

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/byte4ever/stache/datafile"
	"github.com/byte4ever/stache/digester"
	"github.com/byte4ever/stache/logging"
	"github.com/byte4ever/stache/stamper"
	"github.com/byte4ever/stache/template"
	"github.com/byte4ever/stache/value"
)

// Engine expands templates using data files and explicit
// variables.
type Engine struct {
	// StartTag and EndTag are the delimiters in effect at
	// the start of every template; "{{" and "}}" when
	// empty.
	StartTag string
	EndTag   string

	// DataFiles lists data files or glob patterns merged
	// into the render context, later files winning.
	DataFiles []string

	// Formats seeds the format override table of every
	// template, keyed by formattable type name.
	Formats map[string]string

	// ParseColors turns hex color strings in data files
	// into color values.
	ParseColors bool

	// Imports lists NAME=FILE partials. Each file is
	// rendered against the context with the same tags and
	// formats as the template, then its {KEY} stamps are
	// expanded, and the text is stored as imports.NAME.
	// Later imports see the earlier ones.
	Imports []string

	// Logger receives progress messages; nothing is logged
	// when nil.
	Logger *slog.Logger

	// Stdin and Stdout replace os.Stdin and os.Stdout.
	Stdin  io.Reader
	Stdout io.Writer
}

// Expand reads a template, renders it, and writes the
// result. If tplPath is empty it reads stdin; if outPath
// is empty it writes to stdout. Files are replaced
// atomically with mode 0644, or 0755 when executable; a
// file that already holds the rendered text is not
// rewritten.
//
// Processing order:
//  1. Load and merge the data files into the context.
//  2. Overlay each variable NAME=VALUE as "NAME" and
//     "variables.NAME", after expanding {KEY} stamps in
//     VALUE.
//  3. Render each import NAME=FILE into "imports.NAME".
//  4. Compile the template with the configured tags and
//     seed its format overrides.
//  5. Render against the context and write the output.
func (en *Engine) Expand(
	tplPath string,
	outPath string,
	vars []string,
	executable bool,
) error {
	const errCtx = "expanding template"

	ctx, err := en.loadContext(vars)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	tpl, err := en.compile(tplPath)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	out, err := tpl.Render(ctx)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", errCtx, displayPath(tplPath), err)
	}

	if err := en.writeOutput(outPath, out, executable); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	en.logger().Info(
		"expanded template",
		"template", displayPath(tplPath),
		"output", outputName(outPath),
		"bytes", len(out),
	)

	return nil
}

// Check compiles the template at tplPath and reports the
// first parse error, if any.
func (en *Engine) Check(tplPath string) error {
	const errCtx = "checking template"

	if _, err := en.compile(tplPath); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

func (en *Engine) logger() *slog.Logger {
	if en.Logger == nil {
		return logging.Nop()
	}

	return en.Logger
}

// loadContext merges the data files, overlays vars on top
// of them and renders the imports.
func (en *Engine) loadContext(vars []string) (value.Map, error) {
	ld := datafile.Loader{ParseColors: en.ParseColors}

	data, err := ld.LoadAll(en.DataFiles)
	if err != nil {
		return nil, err
	}

	overlay, err := datafile.ParseVars(vars, data)
	if err != nil {
		return nil, err
	}

	ctx, err := en.resolveImports(value.Merge(data, overlay), data)
	if err != nil {
		return nil, err
	}

	en.logger().Debug(
		"loaded render context",
		"data_files", len(en.DataFiles),
		"keys", len(data),
		"variables", len(vars),
		"imports", len(en.Imports),
	)

	return ctx, nil
}

// resolveImports renders every import against ctx, then
// expands its {KEY} stamps against data, and returns ctx
// with the results under "imports".
func (en *Engine) resolveImports(
	ctx value.Map,
	data value.Map,
) (value.Map, error) {
	const errCtx = "resolving imports"

	if len(en.Imports) == 0 {
		return ctx, nil
	}

	imports := make(value.Map, len(en.Imports))

	for _, im := range en.Imports {
		name, pa, ok := strings.Cut(im, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf(
				"%s: import must be NAME=file, got %s",
				errCtx, im,
			)
		}

		src, err := os.ReadFile(pa) //nolint:gosec // paths from CLI flags
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		tpl, err := en.parse(pa, src)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		out, err := tpl.Render(value.Merge(ctx, value.Map{"imports": imports}))
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", errCtx, pa, err)
		}

		imports[name] = value.String(stamper.Interpolate(out, data))
	}

	return value.Merge(ctx, value.Map{"imports": imports}), nil
}

func (en *Engine) compile(tplPath string) (*template.Template, error) {
	src, err := en.readTemplate(tplPath)
	if err != nil {
		return nil, err
	}

	return en.parse(displayPath(tplPath), src)
}

// parse compiles src with the configured tags and seeds
// its format overrides.
func (en *Engine) parse(name string, src []byte) (*template.Template, error) {
	const errCtx = "compiling template"

	tpl, err := template.ParseDelims(string(src), en.StartTag, en.EndTag)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", errCtx, name, err)
	}

	for typeName, fmtstr := range en.Formats {
		tpl.SetFormat(typeName, fmtstr)
	}

	en.logger().Debug(
		"compiled template",
		"template", name,
		"formats", len(en.Formats),
	)

	return tpl, nil
}

// readTemplate reads the template from a file path. If
// tplPath is empty it reads from stdin.
func (en *Engine) readTemplate(
	tplPath string,
) ([]byte, error) {
	const errCtx = "reading template"

	if tplPath != "" {
		content, err := os.ReadFile(tplPath) //nolint:gosec // paths from CLI flags
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		return content, nil
	}

	in := en.Stdin
	if in == nil {
		in = os.Stdin
	}

	content, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: reading stdin: %w", errCtx, err,
		)
	}

	return content, nil
}

// writeOutput writes the rendered text to stdout when
// outPath is empty, or atomically replaces outPath unless
// it is already up to date.
func (en *Engine) writeOutput(
	outPath string,
	out string,
	executable bool,
) error {
	const errCtx = "writing output"

	if outPath == "" {
		w := en.Stdout
		if w == nil {
			w = os.Stdout
		}

		if _, err := io.WriteString(w, out); err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}

		return nil
	}

	unchanged, err := digester.Unchanged(outPath, out)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if unchanged {
		en.logger().Debug("output unchanged", "output", outPath)
	} else if err := atomic.WriteFile(outPath, strings.NewReader(out)); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	var perm os.FileMode = 0o644
	if executable {
		perm = 0o755
	}

	if err := os.Chmod(outPath, perm); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

func displayPath(tplPath string) string {
	if tplPath == "" {
		return "<stdin>"
	}

	return tplPath
}

func outputName(outPath string) string {
	if outPath == "" {
		return "<stdout>"
	}

	return outPath
}
