package template

import (
	"strconv"

	"github.com/byte4ever/stache/value"
)

// scope is one entry of the context stack; parent is the
// next outer context. Entering a value pushes a new scope
// and leaves the outer chain shared.
type scope struct {
	val    value.Value
	parent *scope
}

func (sc *scope) push(val value.Value) *scope {
	return &scope{val: val, parent: sc}
}

// resolve looks name up starting at the innermost context.
// Scalars are skipped, a map miss retries the full name on
// the enclosing context, and a list consumes the leading
// segment as an index. Walking off the outermost context
// yields Nil.
func resolve(name path, sc *scope) (value.Value, error) {
	rest := name

	for sc != nil {
		if len(rest) == 0 {
			return normalize(sc.val), nil
		}

		switch vv := sc.val.(type) {
		case value.List:
			idx, err := strconv.ParseUint(rest[0], 10, 0)
			if err != nil {
				return nil, &RenderError{
					Kind:    InvalidIndex,
					Name:    name.String(),
					Segment: rest[0],
				}
			}

			if idx >= uint64(len(vv)) {
				return nil, &RenderError{
					Kind:    IndexOutOfBounds,
					Name:    name.String(),
					Segment: rest[0],
					Index:   idx,
					Len:     len(vv),
				}
			}

			sc = sc.parent.push(vv[idx])
			rest = rest[1:]
		case value.Map:
			found, ok := vv[rest[0]]
			if !ok {
				sc = sc.parent

				continue
			}

			sc = sc.parent.push(found)
			rest = rest[1:]
		default:
			sc = sc.parent
		}
	}

	return value.Nil{}, nil
}

// normalize maps a nil interface and a Formattable wrapping
// nothing to Nil.
func normalize(val value.Value) value.Value {
	switch vv := val.(type) {
	case nil:
		return value.Nil{}
	case value.Formattable:
		if vv.Formattable == nil {
			return value.Nil{}
		}
	}

	return val
}
