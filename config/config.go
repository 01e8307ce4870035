package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-yaml"
)

// Config describes a template expansion. Every field is
// optional; command line flags fill or override it.
type Config struct {
	// Template is the template file; stdin when empty.
	Template string `yaml:"template"`

	// Output is the output file; stdout when empty.
	Output string `yaml:"output"`

	// Executable sets the executable bits on Output.
	Executable bool `yaml:"executable"`

	// Data lists data files or glob patterns, merged in
	// order.
	Data []string `yaml:"data"`

	// Variables are string values overlaid on the data.
	Variables map[string]string `yaml:"variables"`

	// Imports maps a name to a partial template file
	// rendered into imports.NAME.
	Imports map[string]string `yaml:"imports"`

	// Formats seeds the template format overrides, keyed
	// by formattable type name.
	Formats map[string]string `yaml:"formats"`

	// StartTag and EndTag are the initial delimiters.
	StartTag string `yaml:"start_tag"`
	EndTag   string `yaml:"end_tag"`

	// Colors converts hex color strings in data files to
	// color values.
	Colors bool `yaml:"colors"`

	// LogLevel and LogFormat configure logging.
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Load reads the configuration at path. Unknown keys are
// rejected.
func Load(path string) (*Config, error) {
	const errCtx = "loading config"

	content, err := os.ReadFile(path) //nolint:gosec // path from CLI flag
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	var cfg Config
	if err := yaml.UnmarshalWithOptions(
		content, &cfg, yaml.DisallowUnknownField(),
	); err != nil {
		return nil, fmt.Errorf("%s: %s: %w", errCtx, path, err)
	}

	cfg.resolvePaths(filepath.Dir(path))

	return &cfg, nil
}

func (cfg *Config) resolvePaths(dir string) {
	rel := func(pa string) string {
		if pa == "" || filepath.IsAbs(pa) {
			return pa
		}

		return filepath.Join(dir, pa)
	}

	cfg.Template = rel(cfg.Template)
	cfg.Output = rel(cfg.Output)

	for i, pa := range cfg.Data {
		cfg.Data[i] = rel(pa)
	}

	for name, pa := range cfg.Imports {
		cfg.Imports[name] = rel(pa)
	}
}

// VarList returns Variables as NAME=VALUE pairs sorted by
// name.
func (cfg *Config) VarList() []string {
	return pairs(cfg.Variables)
}

// ImportList returns Imports as NAME=FILE pairs sorted by
// name.
func (cfg *Config) ImportList() []string {
	return pairs(cfg.Imports)
}

func pairs(m map[string]string) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}

	sort.Strings(names)

	out := make([]string, len(names))
	for i, name := range names {
		out[i] = name + "=" + m[name]
	}

	return out
}
