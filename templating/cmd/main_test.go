package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(tb testing.TB, dir, name, content string) string {
	tb.Helper()

	pa := filepath.Join(dir, name)
	require.NoError(tb, os.WriteFile(pa, []byte(content), 0o600))

	return pa
}

// execute runs the command line and returns its exit code,
// stdout and stderr.
func execute(tb testing.TB, stdin string, args ...string) (int, string, string) {
	tb.Helper()

	var stdout, stderr bytes.Buffer

	code := run(args, strings.NewReader(stdin), &stdout, &stderr)

	return code, stdout.String(), stderr.String()
}

func readFile(tb testing.TB, pa string) string {
	tb.Helper()

	got, err := os.ReadFile(pa) //nolint:gosec // test file
	require.NoError(tb, err)

	return string(got)
}

func TestRender_stdin_to_stdout(t *testing.T) {
	t.Parallel()

	code, out, _ := execute(t, "hello {{who}}", "render", "--var", "who=world")
	require.Zero(t, code)
	assert.Equal(t, "hello world", out)
}

func TestRender_flags(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTemp(t, dir, "theme.yaml", "accent: \"#ff8000\"\n")
	tpl := writeTemp(t, dir, "tpl.txt", "accent=<%accent%>")
	outPath := filepath.Join(dir, "out.txt")

	code, _, logs := execute(
		t, "",
		"render",
		"--template", tpl,
		"--output", outPath,
		"--data", filepath.Join(dir, "*.yaml"),
		"--colors",
		"--format", "color={r},{g},{b}",
		"--start-tag", "<%",
		"--end-tag", "%>",
	)
	require.Zero(t, code, logs)
	assert.Equal(t, "accent=255,128,0", readFile(t, outPath))
}

func TestRender_imports(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	status := writeTemp(t, dir, "status.txt", "BUILD_USER alice\n")
	header := writeTemp(t, dir, "header.tpl", "# {{title}} by {BUILD_USER}")
	tpl := writeTemp(t, dir, "tpl.txt", "{{imports.header}}\nbody")

	code, out, logs := execute(
		t, "",
		"render",
		"--template", tpl,
		"--data", status,
		"--var", "title=Dusk",
		"--import", "header="+header,
	)
	require.Zero(t, code, logs)
	assert.Equal(t, "# Dusk by alice\nbody", out)
}

func TestRender_config_with_flag_override(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTemp(t, dir, "tpl.txt", "{{greeting}}, {{name}}{{imports.sig}}")
	writeTemp(t, dir, "sig.tpl", " -- {{name}}")
	cfgPath := writeTemp(t, dir, "stache.yaml", `
template: tpl.txt
output: out.txt
variables:
  greeting: Hello
  name: config
imports:
  sig: sig.tpl
`)

	code, _, logs := execute(
		t, "",
		"--config", cfgPath,
		"render", "--var", "name=flag",
	)
	require.Zero(t, code, logs)
	assert.Equal(
		t, "Hello, flag -- flag",
		readFile(t, filepath.Join(dir, "out.txt")),
	)
}

func TestRender_bad_pairs(t *testing.T) {
	t.Parallel()

	code, _, logs := execute(t, "", "render", "--format", "nocolon")
	assert.Equal(t, 1, code)
	assert.Contains(t, logs, "expected TYPE=FORMAT")

	_, _, logs = execute(t, "", "render", "--var", "=x")
	assert.Contains(t, logs, "expected NAME=VALUE")

	_, _, logs = execute(t, "", "render", "--import", "nofile")
	assert.Contains(t, logs, "expected NAME=FILE")
}

func TestRender_bad_log_level(t *testing.T) {
	t.Parallel()

	code, _, logs := execute(t, "", "--log-level", "loud", "render")
	assert.Equal(t, 1, code)
	assert.Contains(t, logs, "level=ERROR msg=fatal")
	assert.Contains(t, logs, "unknown log level")
}

func TestRender_json_logs(t *testing.T) {
	t.Parallel()

	code, _, logs := execute(
		t, "x",
		"--log-format", "json", "--log-level", "debug",
		"render",
	)
	require.Zero(t, code)
	assert.Contains(t, logs, `"msg":"expanded template"`)
}

func TestRender_fatal_error_uses_configured_format(t *testing.T) {
	t.Parallel()

	code, _, logs := execute(
		t, "",
		"--log-format", "json",
		"render", "--template", filepath.Join(t.TempDir(), "missing.tpl"),
	)
	assert.Equal(t, 1, code)
	assert.Contains(t, logs, `"msg":"fatal"`)
	assert.Contains(t, logs, `"error":"expanding template: reading template:`)
	assert.NotContains(t, logs, "msg=fatal")
}

func TestCheck(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := writeTemp(t, dir, "good.tpl", "{{#a}}{{.}}{{/a}}")
	bad := writeTemp(t, dir, "bad.tpl", "{{#a}}")

	code, out, _ := execute(t, "", "check", good)
	require.Zero(t, code)
	assert.Equal(t, good+": ok\n", out)

	code, _, logs := execute(t, "", "check", good, bad)
	assert.Equal(t, 1, code)
	assert.Contains(t, logs, `section \"a\" was never closed`)

	code, _, _ = execute(t, "", "check")
	assert.Equal(t, 1, code)
}

func TestStamp(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	status := writeTemp(t, dir, "status.txt", "BUILD_USER alice\nSTABLE_TAG v1\n")
	formatFile := writeTemp(t, dir, "fmt.txt", "{STABLE_TAG} by {BUILD_USER}")
	outPath := filepath.Join(dir, "out.txt")

	code, out, _ := execute(
		t, "",
		"stamp", "--stamp-info-file", status, "--format", "tag={STABLE_TAG}",
	)
	require.Zero(t, code)
	assert.Equal(t, "tag=v1", out)

	code, _, _ = execute(
		t, "",
		"stamp",
		"--stamp-info-file", status,
		"--format-file", formatFile,
		"--output", outPath,
	)
	require.Zero(t, code)
	assert.Equal(t, "v1 by alice", readFile(t, outPath))

	code, _, logs := execute(t, "", "stamp", "--format", "x", "--format-file", formatFile)
	assert.Equal(t, 1, code)
	assert.Contains(t, logs, "only one of --format")
}
