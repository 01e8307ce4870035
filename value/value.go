package value

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/byte4ever/stache/format"
)

// Kind identifies a Value variant.
type Kind uint8

// Value variants.
const (
	KindNil Kind = iota
	KindBool
	KindString
	KindList
	KindMap
	KindFormattable
)

var kindNames = [...]string{
	KindNil:         "nil",
	KindBool:        "bool",
	KindString:      "string",
	KindList:        "list",
	KindMap:         "map",
	KindFormattable: "formattable",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is implemented only by the variant types of this
// package.
type Value interface {
	Kind() Kind
	isValue()
}

// Nil is the absent value.
type Nil struct{}

// Bool is a boolean value.
type Bool bool

// String is a text value.
type String string

// List is an ordered sequence of values.
type List []Value

// Map is a string-keyed mapping of values.
type Map map[string]Value

// Formattable wraps an embedder value whose text is
// produced by a format string.
type Formattable struct {
	format.Formattable
}

// Of wraps fo as a Formattable value.
func Of(fo format.Formattable) Formattable {
	return Formattable{Formattable: fo}
}

func (Nil) Kind() Kind         { return KindNil }
func (Bool) Kind() Kind        { return KindBool }
func (String) Kind() Kind      { return KindString }
func (List) Kind() Kind        { return KindList }
func (Map) Kind() Kind         { return KindMap }
func (Formattable) Kind() Kind { return KindFormattable }

func (Nil) isValue()         {}
func (Bool) isValue()        {}
func (String) isValue()      {}
func (List) isValue()        {}
func (Map) isValue()         {}
func (Formattable) isValue() {}

// KindOf returns the kind of v, treating a nil interface
// as Nil.
func KindOf(v Value) Kind {
	if v == nil {
		return KindNil
	}

	return v.Kind()
}

// Describe returns a short human readable rendering of v
// for diagnostics. Formattable values are named by their
// type name.
func Describe(v Value) string {
	switch vv := v.(type) {
	case nil, Nil:
		return "nil"
	case Bool:
		return strconv.FormatBool(bool(vv))
	case String:
		return strconv.Quote(string(vv))
	case List:
		parts := make([]string, len(vv))
		for i, el := range vv {
			parts[i] = Describe(el)
		}

		return "[" + strings.Join(parts, ", ") + "]"
	case Map:
		return fmt.Sprintf("map with %d keys", len(vv))
	case Formattable:
		if vv.Formattable == nil {
			return "nil"
		}

		return vv.TypeName() + " value"
	default:
		return fmt.Sprintf("%v", vv)
	}
}
