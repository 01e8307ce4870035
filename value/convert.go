package value

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/byte4ever/stache/format"
)

// ErrUnsupported is returned by From for Go values that
// have no Value representation.
var ErrUnsupported = errors.New("unsupported type")

// From converts decoded Go data into a Value. It accepts
// the shapes YAML and JSON decoders produce for an untyped
// target (maps, slices, strings, bools, numbers, nil) as
// well as Values and Formattables, which pass through.
// Numbers become Strings in their canonical decimal form
// since the model has no numeric variant.
func From(in any) (Value, error) {
	const errCtx = "converting value"

	out, err := from(in, "")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return out, nil
}

func from(in any, at string) (Value, error) {
	switch vv := in.(type) {
	case nil:
		return Nil{}, nil
	case Value:
		return vv, nil
	case format.Formattable:
		return Of(vv), nil
	case bool:
		return Bool(vv), nil
	case string:
		return String(vv), nil
	case int:
		return String(strconv.Itoa(vv)), nil
	case int8, int16, int32, int64:
		return String(fmt.Sprintf("%d", vv)), nil
	case uint, uint8, uint16, uint32, uint64:
		return String(fmt.Sprintf("%d", vv)), nil
	case float32:
		return String(strconv.FormatFloat(float64(vv), 'f', -1, 32)), nil
	case float64:
		return String(strconv.FormatFloat(vv, 'f', -1, 64)), nil
	case time.Time:
		return String(vv.Format(time.RFC3339Nano)), nil
	case []string:
		out := make(List, len(vv))
		for i, el := range vv {
			out[i] = String(el)
		}

		return out, nil
	case []any:
		out := make(List, len(vv))

		for i, el := range vv {
			conv, err := from(el, join(at, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}

			out[i] = conv
		}

		return out, nil
	case map[string]string:
		out := make(Map, len(vv))
		for key, el := range vv {
			out[key] = String(el)
		}

		return out, nil
	case map[string]any:
		out := make(Map, len(vv))

		for key, el := range vv {
			conv, err := from(el, join(at, key))
			if err != nil {
				return nil, err
			}

			out[key] = conv
		}

		return out, nil
	case map[any]any:
		out := make(Map, len(vv))

		for rawKey, el := range vv {
			key, err := mapKey(rawKey, at)
			if err != nil {
				return nil, err
			}

			conv, err := from(el, join(at, key))
			if err != nil {
				return nil, err
			}

			out[key] = conv
		}

		return out, nil
	default:
		return nil, fmt.Errorf("%w %T at %s", ErrUnsupported, in, where(at))
	}
}

func mapKey(raw any, at string) (string, error) {
	switch key := raw.(type) {
	case string:
		return key, nil
	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(key), nil
	default:
		return "", fmt.Errorf(
			"%w: map key %T at %s", ErrUnsupported, raw, where(at),
		)
	}
}

func join(at string, seg string) string {
	if at == "" {
		return seg
	}

	return at + "." + seg
}

func where(at string) string {
	if at == "" {
		return "."
	}

	return at
}

// Merge returns a map holding the entries of base overlaid
// with those of over. Maps present on both sides are
// merged recursively; any other value in over replaces the
// one in base. Neither input is modified.
func Merge(base Map, over Map) Map {
	out := make(Map, len(base)+len(over))

	for key, val := range base {
		out[key] = val
	}

	for key, val := range over {
		if prev, ok := out[key].(Map); ok {
			if next, ok := val.(Map); ok {
				out[key] = Merge(prev, next)

				continue
			}
		}

		out[key] = val
	}

	return out
}
