package template_test

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/stache/format"
	"github.com/byte4ever/stache/template"
	"github.com/byte4ever/stache/value"
)

type point struct {
	x int64
	y int64
}

func (point) TypeName() string { return "point" }

func (point) DefaultFormat() string { return "{x}" }

func (p point) Placeholder(name string) (format.Arg, bool) {
	switch name {
	case "x":
		return format.Int(p.x), true
	case "y":
		return format.Int(p.y), true
	default:
		return format.Arg{}, false
	}
}

func render(tb testing.TB, src string, root value.Value) string {
	tb.Helper()

	tpl, err := template.Parse(src)
	require.NoError(tb, err)

	out, err := tpl.Render(root)
	require.NoError(tb, err)

	return out
}

func renderErr(
	tb testing.TB,
	src string,
	root value.Value,
) *template.RenderError {
	tb.Helper()

	tpl, err := template.Parse(src)
	require.NoError(tb, err)

	out, err := tpl.Render(root)
	require.Error(tb, err)
	assert.Empty(tb, out)

	var re *template.RenderError
	require.ErrorAs(tb, err, &re)

	return re
}

func strs(ss ...string) value.List {
	out := make(value.List, len(ss))
	for i, s := range ss {
		out[i] = value.String(s)
	}

	return out
}

func TestRender_literal_text_is_unchanged(t *testing.T) {
	t.Parallel()

	const src = "no tags here\n  only text } { }"

	for _, root := range []value.Value{
		nil,
		value.Nil{},
		value.Bool(true),
		value.String("x"),
		strs("a", "b"),
		value.Map{"a": value.String("b")},
		value.Of(point{}),
	} {
		assert.Equal(t, src, render(t, src, root))
	}
}

func TestRender_self_and_named_values(t *testing.T) {
	t.Parallel()

	assert.Equal(
		t, "Value: :3c",
		render(t, "Value: {{.}}", value.String(":3c")),
	)
	assert.Equal(
		t, "Value: >:3",
		render(t, "Value: {{foo}}", value.Map{"foo": value.String(">:3")}),
	)
	assert.Equal(
		t, "Value: ^-^",
		render(t, "Value: {{1}}", value.List{value.Nil{}, value.String("^-^")}),
	)
}

func TestRender_dotted_lookup(t *testing.T) {
	t.Parallel()

	root := value.Map{
		"a": value.Map{"b": value.String("x")},
		"foo": value.List{
			value.Map{"bar": value.String("c:")},
		},
	}

	assert.Equal(t, "x", render(t, "{{a.b}}", root))
	assert.Equal(t, "c:", render(t, "{{foo.0.bar}}", root))
}

func TestRender_scope_chain(t *testing.T) {
	t.Parallel()

	root := value.Map{
		"a": value.Map{"c": value.String("1")},
		"b": value.String("outer"),
	}
	assert.Equal(t, "outer", render(t, "{{#a}}{{b}}{{/a}}", root))

	root["a"] = value.Map{"b": value.String("inner")}
	assert.Equal(t, "inner", render(t, "{{#a}}{{b}}{{/a}}", root))
}

func TestRender_dotted_name_skips_scalar_to_outer_context(t *testing.T) {
	t.Parallel()

	root := value.Map{
		"b": value.String("outer"),
		"m": value.Map{"a": value.String("str")},
	}

	assert.Equal(t, "outer", render(t, "{{#m}}{{a.b}}{{/m}}", root))
	assert.Equal(t, "", render(t, "{{m.a.b}}", root))
}

func TestRender_missing_name_is_nil(t *testing.T) {
	t.Parallel()

	root := value.Map{"a": value.String("x")}

	assert.Equal(t, "[]", render(t, "[{{nope}}]", root))
	assert.Equal(t, "[]", render(t, "[{{#nope}}X{{/nope}}]", root))
	assert.Equal(t, "[X]", render(t, "[{{^nope}}X{{/nope}}]", root))
}

func TestRender_list_sections(t *testing.T) {
	t.Parallel()

	root := value.Map{
		"list":  strs("1", "2", "3"),
		"empty": value.List{},
	}

	assert.Equal(t, "123", render(t, "{{#list}}{{.}}{{/list}}", root))
	assert.Equal(t, "", render(t, "{{#empty}}{{.}}{{/empty}}", root))
	assert.Equal(t, "", render(t, "{{^empty}}{{.}}{{/empty}}", root))
}

func TestRender_inverted_list_renders_each_element_in_reverse(t *testing.T) {
	t.Parallel()

	root := value.Map{"list": strs("1", "2", "3")}

	assert.Equal(t, "321", render(t, "{{^list}}{{.}}{{/list}}", root))
}

func TestRender_list_elements_become_context(t *testing.T) {
	t.Parallel()

	root := value.Map{
		"sep": value.String(";"),
		"people": value.List{
			value.Map{"name": value.String("ada")},
			value.Map{"name": value.String("bob")},
		},
	}

	assert.Equal(
		t, "ada;bob;",
		render(t, "{{#people}}{{name}}{{sep}}{{/people}}", root),
	)
}

func TestRender_boolean_sections(t *testing.T) {
	t.Parallel()

	off := value.Map{"flag": value.Bool(false)}
	on := value.Map{"flag": value.Bool(true)}

	assert.Equal(t, "X", render(t, "{{^flag}}X{{/flag}}", off))
	assert.Equal(t, "", render(t, "{{^flag}}X{{/flag}}", on))
	assert.Equal(t, "", render(t, "{{#flag}}X{{/flag}}", off))
	assert.Equal(t, "X", render(t, "{{#flag}}X{{/flag}}", on))
	assert.Equal(t, "true", render(t, "{{#flag}}{{.}}{{/flag}}", on))
}

func TestRender_value_sections_push_context(t *testing.T) {
	t.Parallel()

	root := value.Map{
		"name": value.String("n"),
		"p":    value.Of(point{x: 4}),
		"m":    value.Map{"k": value.String("v")},
	}

	assert.Equal(t, "<n>", render(t, "{{#name}}<{{.}}>{{/name}}", root))
	assert.Equal(t, "<4>", render(t, "{{#p}}<{{.}}>{{/p}}", root))
	assert.Equal(t, "<v>", render(t, "{{#m}}<{{k}}>{{/m}}", root))
}

func TestRender_cannot_invert_value_sections(t *testing.T) {
	t.Parallel()

	root := value.Map{
		"name": value.String("n"),
		"p":    value.Of(point{}),
		"m":    value.Map{},
	}

	re := renderErr(t, "{{^name}}X{{/name}}", root)
	assert.Equal(t, template.CannotInvertSection, re.Kind)
	assert.Equal(t, value.KindString, re.Value)
	assert.EqualError(
		t, re, `rendering "name": cannot invert section on string value`,
	)

	re = renderErr(t, "{{^p}}X{{/p}}", root)
	assert.Equal(t, template.CannotInvertSection, re.Kind)
	assert.Equal(t, "point", re.TypeName)
	assert.EqualError(
		t, re, `rendering "p": cannot invert section on point value`,
	)

	re = renderErr(t, "{{^m}}X{{/m}}", root)
	assert.Equal(t, value.KindMap, re.Value)
}

func TestRender_inserts(t *testing.T) {
	t.Parallel()

	root := value.Map{
		"yes":  value.Bool(true),
		"no":   value.Bool(false),
		"nil":  value.Nil{},
		"html": value.String("<b>&amp;</b>"),
	}

	assert.Equal(
		t, "true false  <b>&amp;</b>",
		render(t, "{{yes}} {{no}} {{nil}} {{html}}", root),
	)
}

func TestRender_cannot_insert_collections(t *testing.T) {
	t.Parallel()

	root := value.Map{
		"list": strs("a"),
		"map":  value.Map{},
	}

	re := renderErr(t, "before {{list}}", root)
	assert.Equal(t, template.CannotInsertCollection, re.Kind)
	assert.Equal(t, value.KindList, re.Value)
	assert.EqualError(
		t, re, `rendering "list": cannot directly insert list value`,
	)

	re = renderErr(t, "{{map}}", root)
	assert.Equal(t, template.CannotInsertCollection, re.Kind)
	assert.Equal(t, value.KindMap, re.Value)

	re = renderErr(t, "{{.}}", root)
	assert.Equal(t, template.CannotInsertCollection, re.Kind)
	assert.Equal(t, ".", re.Name)
}

func TestRender_index_errors(t *testing.T) {
	t.Parallel()

	root := value.Map{"list": strs("a", "b", "c")}

	re := renderErr(t, "{{list.x}}", root)
	assert.Equal(t, template.InvalidIndex, re.Kind)
	assert.Equal(t, "x", re.Segment)
	assert.EqualError(
		t, re, `rendering "list.x": "x" is not a valid list index`,
	)

	re = renderErr(t, "{{#list}}{{/list}}{{list.3}}", root)
	assert.Equal(t, template.IndexOutOfBounds, re.Kind)
	assert.Equal(t, uint64(3), re.Index)
	assert.Equal(t, 3, re.Len)
	assert.EqualError(
		t, re,
		`rendering "list.3": index 3 is out of bounds for list of length 3`,
	)

	re = renderErr(t, "{{list.-1}}", root)
	assert.Equal(t, template.InvalidIndex, re.Kind)
}

func TestRender_format_precedence(t *testing.T) {
	t.Parallel()

	root := value.Map{"p": value.Of(point{x: 1, y: 2})}

	tpl, err := template.Parse(`{{p}} {{p:"<{x},{y}>"}}`)
	require.NoError(t, err)

	out, err := tpl.Render(root)
	require.NoError(t, err)
	assert.Equal(t, "1 <1,2>", out)

	tpl.SetFormat("point", "[{x}]")

	out, err = tpl.Render(root)
	require.NoError(t, err)
	assert.Equal(t, "[1] <1,2>", out)

	got, ok := tpl.FormatFor("point")
	assert.True(t, ok)
	assert.Equal(t, "[{x}]", got)
}

func TestRender_set_format_applies_in_document_order(t *testing.T) {
	t.Parallel()

	root := value.Map{"p": value.Of(point{x: 1, y: 2})}

	tpl, err := template.Parse(`{{p}}{{=point "({y})"=}}{{p}}{{p:"{x}"}}`)
	require.NoError(t, err)

	out, err := tpl.Render(root)
	require.NoError(t, err)
	assert.Equal(t, "1(2)1", out)

	// The override set by the previous render persists.
	out, err = tpl.Render(root)
	require.NoError(t, err)
	assert.Equal(t, "(2)(2)1", out)
}

func TestRender_set_format_inside_skipped_section_has_no_effect(t *testing.T) {
	t.Parallel()

	root := value.Map{
		"p":   value.Of(point{x: 1}),
		"off": value.Bool(false),
	}

	assert.Equal(
		t, "1",
		render(t, `{{#off}}{{=point "!"=}}{{/off}}{{p}}`, root),
	)
}

func TestRender_format_errors(t *testing.T) {
	t.Parallel()

	root := value.Map{"p": value.Of(point{})}

	re := renderErr(t, `{{p:"{x} {z}"}}`, root)
	assert.Equal(t, template.UnknownPlaceholder, re.Kind)
	assert.Equal(t, "point", re.TypeName)
	assert.Equal(t, "z", re.Key)
	require.ErrorIs(t, re, format.ErrUnknownPlaceholder)
	assert.EqualError(
		t, re,
		`rendering "p": failed to format point: unknown placeholder "z"`,
	)

	re = renderErr(t, `{{p:"{x:q}"}}`, root)
	assert.Equal(t, template.InvalidFormatSpec, re.Kind)
	require.ErrorIs(t, re, format.ErrInvalidSpec)

	re = renderErr(t, `{{p:"{x:99999999999999999999}"}}`, root)
	assert.Equal(t, template.InvalidFormatSpec, re.Kind)
	assert.Equal(t, "x", re.Key)

	re = renderErr(t, `{{p:"{x:10000000000}"}}`, root)
	assert.Equal(t, template.InvalidFormatSpec, re.Kind)
}

func TestRender_format_brace_escapes(t *testing.T) {
	t.Parallel()

	root := value.Map{"p": value.Of(point{x: 1})}

	assert.Equal(t, "{ x: 1 }", render(t, `{{p:"{{ x: {x} }}"}}`, root))
	assert.Equal(t, "{x}", render(t, `{{p:"{{x}}"}}`, root))
	assert.Equal(
		t, "[{1}]",
		render(t, `{{=point "[{{{x}}}]"=}}{{p}}`, root),
	)
}

func TestRender_nil_formattable_is_nil(t *testing.T) {
	t.Parallel()

	root := value.Map{"p": value.Of(nil)}

	assert.Equal(t, "[]", render(t, "[{{p}}]", root))
	assert.Equal(t, "[]", render(t, `[{{p:"{x}"}}]`, root))
	assert.Equal(t, "", render(t, "{{#p}}yes{{/p}}", root))
	assert.Equal(t, "no", render(t, "{{^p}}no{{/p}}", root))
}

func TestClone_has_independent_overrides(t *testing.T) {
	t.Parallel()

	root := value.Map{"p": value.Of(point{x: 5})}

	tpl, err := template.Parse("{{p}}")
	require.NoError(t, err)
	tpl.SetFormat("point", "a{x}")

	clone := tpl.Clone()
	clone.SetFormat("point", "b{x}")

	out, err := tpl.Render(root)
	require.NoError(t, err)
	assert.Equal(t, "a5", out)

	out, err = clone.Render(root)
	require.NoError(t, err)
	assert.Equal(t, "b5", out)
}

func TestExecute_writes_output(t *testing.T) {
	t.Parallel()

	tpl, err := template.Parse("hi {{name}}")
	require.NoError(t, err)

	var buf bytes.Buffer

	require.NoError(t, tpl.Execute(&buf, value.Map{"name": value.String("you")}))
	assert.Equal(t, "hi you", buf.String())

	buf.Reset()
	require.Error(t, tpl.Execute(&buf, value.Map{"name": value.List{}}))
	assert.Empty(t, buf.String())
}

func TestRender_concurrent_use(t *testing.T) {
	t.Parallel()

	tpl, err := template.Parse(
		`{{#list}}{{.}}{{/list}}{{=point "<{x}>"=}}{{p}}`,
	)
	require.NoError(t, err)

	root := value.Map{
		"list": strs("a", "b"),
		"p":    value.Of(point{x: 9}),
	}

	var wg sync.WaitGroup

	results := make([]string, 16)
	for i := range results {
		wg.Add(1)

		go func() {
			defer wg.Done()

			out, err := tpl.Render(root)
			assert.NoError(t, err)

			results[i] = out
		}()
	}

	wg.Wait()

	for _, out := range results {
		assert.Equal(t, "ab<9>", out)
	}
}
