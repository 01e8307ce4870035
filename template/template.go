package template

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"strings"
	"sync"

	"github.com/byte4ever/stache/format"
	"github.com/byte4ever/stache/value"
)

// Template is a compiled template together with its format
// override table. The table maps a formattable type name
// to the format string used for values of that type when
// an insert tag carries no inline format.
//
// Format instructions met while rendering write to the
// table, and the writes persist across renders. A Template
// is safe for concurrent use: renders of the same instance
// are serialized.
type Template struct {
	mu      sync.Mutex
	tokens  []token
	formats map[string]string
}

func newTemplate(tokens []token) *Template {
	return &Template{
		tokens:  tokens,
		formats: make(map[string]string),
	}
}

// SetFormat registers fmtstr as the format for formattable
// values whose type name is typeName, replacing any
// previous entry.
func (t *Template) SetFormat(typeName string, fmtstr string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.formats[typeName] = fmtstr
}

// FormatFor returns the override registered for typeName.
func (t *Template) FormatFor(typeName string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmtstr, ok := t.formats[typeName]

	return fmtstr, ok
}

// Clone returns a template sharing the compiled tree with
// t and holding a copy of its current override table.
func (t *Template) Clone() *Template {
	t.mu.Lock()
	defer t.mu.Unlock()

	return &Template{
		tokens:  t.tokens,
		formats: maps.Clone(t.formats),
	}
}

// Render renders the template with root as the outermost
// context. The returned error is a *RenderError.
func (t *Template) Render(root value.Value) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var sb strings.Builder

	rd := renderer{out: &sb, formats: t.formats}
	if err := rd.render(t.tokens, &scope{val: root}); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// Execute renders the template and writes the output to
// w. Nothing is written when rendering fails.
func (t *Template) Execute(w io.Writer, root value.Value) error {
	out, err := t.Render(root)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	return nil
}

type renderer struct {
	out     *strings.Builder
	formats map[string]string
}

func (rd *renderer) render(tokens []token, sc *scope) error {
	for _, tok := range tokens {
		switch tk := tok.(type) {
		case textToken:
			rd.out.WriteString(tk.Text)
		case insertToken:
			if err := rd.insert(tk, sc); err != nil {
				return err
			}
		case sectionToken:
			if err := rd.section(tk, sc); err != nil {
				return err
			}
		case setFormatToken:
			rd.formats[tk.TypeName] = tk.Format
		}
	}

	return nil
}

func (rd *renderer) section(tk sectionToken, sc *scope) error {
	val, err := resolve(tk.Name, sc)
	if err != nil {
		return err
	}

	switch vv := val.(type) {
	case value.String, value.Map:
		if tk.Inverted {
			return &RenderError{
				Kind:  CannotInvertSection,
				Name:  tk.Name.String(),
				Value: vv.Kind(),
			}
		}

		return rd.render(tk.Children, sc.push(vv))
	case value.Formattable:
		if tk.Inverted {
			return &RenderError{
				Kind:     CannotInvertSection,
				Name:     tk.Name.String(),
				Value:    vv.Kind(),
				TypeName: vv.TypeName(),
			}
		}

		return rd.render(tk.Children, sc.push(vv))
	case value.Bool:
		if bool(vv) != tk.Inverted {
			return rd.render(tk.Children, sc.push(vv))
		}
	case value.Nil:
		if tk.Inverted {
			return rd.render(tk.Children, sc.push(vv))
		}
	case value.List:
		// Inverted sections walk the list backwards.
		for i := range vv {
			el := vv[i]
			if tk.Inverted {
				el = vv[len(vv)-1-i]
			}

			if err := rd.render(tk.Children, sc.push(el)); err != nil {
				return err
			}
		}
	}

	return nil
}

func (rd *renderer) insert(tk insertToken, sc *scope) error {
	val, err := resolve(tk.Name, sc)
	if err != nil {
		return err
	}

	switch vv := val.(type) {
	case value.List, value.Map:
		return &RenderError{
			Kind:  CannotInsertCollection,
			Name:  tk.Name.String(),
			Value: vv.Kind(),
		}
	case value.Bool:
		if vv {
			rd.out.WriteString("true")
		} else {
			rd.out.WriteString("false")
		}
	case value.String:
		rd.out.WriteString(string(vv))
	case value.Nil:
	case value.Formattable:
		return rd.insertFormattable(tk, vv)
	}

	return nil
}

func (rd *renderer) insertFormattable(tk insertToken, vv value.Formattable) error {
	fmtstr, ok := tk.Format, tk.Formatted
	if !ok {
		fmtstr, ok = rd.formats[vv.TypeName()]
	}

	if !ok {
		fmtstr = vv.DefaultFormat()
	}

	text, err := format.Format(vv.Formattable, fmtstr)
	if err != nil {
		re := &RenderError{
			Kind:     InvalidFormatSpec,
			Name:     tk.Name.String(),
			Value:    value.KindFormattable,
			TypeName: vv.TypeName(),
			Err:      err,
		}

		if errors.Is(err, format.ErrUnknownPlaceholder) {
			re.Kind = UnknownPlaceholder
		}

		var fe *format.Error
		if errors.As(err, &fe) {
			re.Key = fe.Key
		}

		return re
	}

	rd.out.WriteString(text)

	return nil
}
