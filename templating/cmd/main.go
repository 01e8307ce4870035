// Binary stache expands logic-less templates using data
// files and explicit variable substitutions.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/byte4ever/stache/config"
	"github.com/byte4ever/stache/logging"
	"github.com/byte4ever/stache/stamper"
	"github.com/byte4ever/stache/templating"
)

type options struct {
	configFile string
	logLevel   string
	logFormat  string

	template   string
	output     string
	data       []string
	vars       []string
	imports    []string
	formats    []string
	startTag   string
	endTag     string
	colors     bool
	executable bool

	// logger is set once the logging flags are known.
	logger *slog.Logger
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command line and returns the process
// exit code. Failures are logged with the logger the
// command configured, or a text logger on stderr if it
// failed before getting that far.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var opts options

	root := newRootCmd(&opts, stdin, stdout, stderr)
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		logger := opts.logger
		if logger == nil {
			logger = logging.New(logging.Config{Output: stderr})
		}

		logger.Error("fatal", "error", err)

		return 1
	}

	return 0
}

func newRootCmd(
	opts *options,
	stdin io.Reader,
	stdout, stderr io.Writer,
) *cobra.Command {
	root := &cobra.Command{
		Use:           "stache",
		Short:         "Expand logic-less templates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configFile, "config", "", "YAML configuration file")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	pf.StringVar(&opts.logFormat, "log-format", "", "Log format: text or json")

	root.AddCommand(
		newRenderCmd(opts),
		newCheckCmd(opts),
		newStampCmd(),
	)

	return root
}

func newRenderCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a template to a file or stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			en, err := newEngine(cmd, cfg, opts)
			if err != nil {
				return err
			}

			return en.Expand(
				cfg.Template, cfg.Output, cfg.VarList(), cfg.Executable,
			)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&opts.template, "template", "", "Template file (stdin if empty)")
	fl.StringVar(&opts.output, "output", "", "Output file (stdout if empty)")
	fl.StringArrayVar(&opts.data, "data", nil, "Data file or glob pattern (repeatable)")
	fl.StringArrayVar(&opts.vars, "var", nil, "Variable in NAME=VALUE format (repeatable)")
	fl.StringArrayVar(&opts.imports, "import", nil, "Partial in NAME=FILE format rendered into imports.NAME (repeatable)")
	fl.StringArrayVar(&opts.formats, "format", nil, "Format override in TYPE=FORMAT format (repeatable)")
	fl.StringVar(&opts.startTag, "start-tag", "", "Start tag for template tags (default \"{{\")")
	fl.StringVar(&opts.endTag, "end-tag", "", "End tag for template tags (default \"}}\")")
	fl.BoolVar(&opts.colors, "colors", false, "Parse hex color strings in data files")
	fl.BoolVar(&opts.executable, "executable", false, "Set executable bits on the output file")

	return cmd
}

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check TEMPLATE...",
		Short: "Report parse errors in templates",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			en, err := newEngine(cmd, cfg, opts)
			if err != nil {
				return err
			}

			for _, pa := range args {
				if err := en.Check(pa); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", pa)
			}

			return nil
		},
	}
}

func newStampCmd() *cobra.Command {
	var (
		infoFiles  []string
		output     string
		format     string
		formatFile string
	)

	cmd := &cobra.Command{
		Use:   "stamp",
		Short: "Substitute {VAR} tags with workspace status values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			const errCtx = "stamping"

			if formatFile != "" && format != "" {
				return fmt.Errorf(
					"%s: only one of --format or"+
						" --format-file may be specified",
					errCtx,
				)
			}

			if formatFile != "" {
				content, err := os.ReadFile( //nolint:gosec // path from CLI flag
					formatFile,
				)
				if err != nil {
					return fmt.Errorf(
						"%s: reading format file: %w",
						errCtx, err,
					)
				}

				format = string(content)
			}

			result, err := stamper.Stamp(infoFiles, format)
			if err != nil {
				return err
			}

			if output != "" {
				if err := atomic.WriteFile(output, strings.NewReader(result)); err != nil {
					return fmt.Errorf("%s: writing output: %w", errCtx, err)
				}

				return nil
			}

			if _, err := io.WriteString(cmd.OutOrStdout(), result); err != nil {
				return fmt.Errorf("%s: writing to stdout: %w", errCtx, err)
			}

			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringArrayVar(&infoFiles, "stamp-info-file", nil, "Workspace status file (repeatable)")
	fl.StringVar(&output, "output", "", "Output file (stdout if empty)")
	fl.StringVar(&format, "format", "", "Format string containing {VAR} tags")
	fl.StringVar(&formatFile, "format-file", "", "File containing {VAR} tags")

	return cmd
}

// loadConfig reads the configuration file, if any, and
// applies the flags the user set on top of it.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg := &config.Config{}

	if opts.configFile != "" {
		loaded, err := config.Load(opts.configFile)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	fl := cmd.Flags()

	setString := func(name string, dst *string, val string) {
		if fl.Changed(name) {
			*dst = val
		}
	}

	setString("log-level", &cfg.LogLevel, opts.logLevel)
	setString("log-format", &cfg.LogFormat, opts.logFormat)
	setString("template", &cfg.Template, opts.template)
	setString("output", &cfg.Output, opts.output)
	setString("start-tag", &cfg.StartTag, opts.startTag)
	setString("end-tag", &cfg.EndTag, opts.endTag)

	if fl.Changed("colors") {
		cfg.Colors = opts.colors
	}

	if fl.Changed("executable") {
		cfg.Executable = opts.executable
	}

	cfg.Data = append(cfg.Data, opts.data...)

	if err := mergePairs(&cfg.Variables, opts.vars, "NAME=VALUE"); err != nil {
		return nil, err
	}

	if err := mergePairs(&cfg.Imports, opts.imports, "NAME=FILE"); err != nil {
		return nil, err
	}

	if err := mergePairs(&cfg.Formats, opts.formats, "TYPE=FORMAT"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// mergePairs stores each KEY=VALUE pair in *dst, allocating
// the map when needed.
func mergePairs(dst *map[string]string, pairs []string, shape string) error {
	const errCtx = "parsing flags"

	for _, pair := range pairs {
		key, val, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return fmt.Errorf("%s: expected %s, got %q", errCtx, shape, pair)
		}

		if *dst == nil {
			*dst = make(map[string]string)
		}

		(*dst)[key] = val
	}

	return nil
}

// newEngine builds the logger from cfg, records it in opts
// and returns an engine configured from cfg.
func newEngine(
	cmd *cobra.Command,
	cfg *config.Config,
	opts *options,
) (*templating.Engine, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	format, err := logging.ParseFormat(cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	logger := logging.New(logging.Config{
		Level:  level,
		Format: format,
		Output: cmd.ErrOrStderr(),
	})
	opts.logger = logger

	return &templating.Engine{
		StartTag:    cfg.StartTag,
		EndTag:      cfg.EndTag,
		DataFiles:   cfg.Data,
		Formats:     cfg.Formats,
		ParseColors: cfg.Colors,
		Imports:     cfg.ImportList(),
		Logger:      logger,
		Stdin:       cmd.InOrStdin(),
		Stdout:      cmd.OutOrStdout(),
	}, nil
}
