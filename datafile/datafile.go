package datafile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	json "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"

	"github.com/byte4ever/stache/color"
	"github.com/byte4ever/stache/stamper"
	"github.com/byte4ever/stache/value"
)

// ErrNotMap is returned when a document that must be
// merged does not have a map at its top level.
var ErrNotMap = errors.New("top-level document is not a map")

// Loader reads value documents from disk.
type Loader struct {
	// ParseColors turns strings holding a hex color such
	// as "#ff8000" into color.Color formattables.
	ParseColors bool
}

// Load reads and converts a single document. The decoder
// is chosen by file extension.
func (ld Loader) Load(path string) (value.Value, error) {
	const errCtx = "loading data file"

	content, err := os.ReadFile(path) //nolint:gosec // paths from CLI flags
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	val, err := ld.decode(path, content)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", errCtx, path, err)
	}

	if ld.ParseColors {
		val = parseColors(val)
	}

	return val, nil
}

func (ld Loader) decode(path string, content []byte) (value.Value, error) {
	var doc any

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &doc); err != nil {
			return nil, fmt.Errorf("decoding yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(content, &doc); err != nil {
			return nil, fmt.Errorf("decoding json: %w", err)
		}
	default:
		stamps := make(value.Map)
		stamper.ParseStamps(string(content), stamps)

		return stamps, nil
	}

	return value.From(doc)
}

// LoadAll expands each pattern, loads every matching file
// and merges the documents. Patterns without glob
// characters name a file that must exist; patterns with
// them may match nothing.
func (ld Loader) LoadAll(patterns []string) (value.Map, error) {
	const errCtx = "loading data files"

	out := make(value.Map)

	for _, pattern := range patterns {
		paths, err := expand(pattern)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		for _, pa := range paths {
			doc, err := ld.Load(pa)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", errCtx, err)
			}

			m, ok := doc.(value.Map)
			if !ok {
				return nil, fmt.Errorf(
					"%s: %s: %w (got %s)",
					errCtx, pa, ErrNotMap, value.KindOf(doc),
				)
			}

			out = value.Merge(out, m)
		}
	}

	return out, nil
}

func expand(pattern string) ([]string, error) {
	if !strings.ContainsAny(pattern, "*?[{") {
		return []string{pattern}, nil
	}

	paths, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("expanding %q: %w", pattern, err)
	}

	sort.Strings(paths)

	return paths, nil
}

func parseColors(val value.Value) value.Value {
	switch vv := val.(type) {
	case value.String:
		if !strings.HasPrefix(string(vv), "#") {
			return vv
		}

		c, err := color.Parse(string(vv))
		if err != nil {
			return vv
		}

		return value.Of(c)
	case value.List:
		out := make(value.List, len(vv))
		for i, el := range vv {
			out[i] = parseColors(el)
		}

		return out
	case value.Map:
		out := make(value.Map, len(vv))
		for key, el := range vv {
			out[key] = parseColors(el)
		}

		return out
	default:
		return val
	}
}

// ParseVars turns NAME=VALUE pairs into a map holding each
// value under NAME and under variables.NAME. {KEY} tags in
// a value naming a string in stamps are replaced first.
func ParseVars(vars []string, stamps value.Map) (value.Map, error) {
	const errCtx = "resolving variables"

	out := make(value.Map)
	named := make(value.Map)

	for _, vr := range vars {
		key, val, ok := strings.Cut(vr, "=")
		if !ok {
			return nil, fmt.Errorf(
				"%s: variable must be VAR=value, got %s",
				errCtx, vr,
			)
		}

		val = stamper.Interpolate(val, stamps)

		out[key] = value.String(val)
		named[key] = value.String(val)
	}

	if len(named) > 0 {
		out["variables"] = named
	}

	return out, nil
}
