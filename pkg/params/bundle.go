package params

import (
	"fmt"
	"sort"

	"github.com/devicelab-dev/uiauto/pkg/core"
)

// Bundle maps parameter names to decoded values.
type Bundle map[string]Value

// Keys returns the parameter names in sorted order.
func (b Bundle) Keys() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether the bundle carries key.
func (b Bundle) Has(key string) bool {
	_, ok := b[key]
	return ok
}

// Class returns the verbatim instrumentation class argument.
func (b Bundle) Class() string {
	v, ok := b[ClassKey]
	if !ok {
		return ""
	}
	s, _ := v.v.(string)
	return s
}

// IsNone reports whether key decoded to the none sentinel.
func (b Bundle) IsNone(key string) bool {
	v, ok := b[key]
	return ok && v.IsNone()
}

// Native returns the bundle as plain Go values, for printing.
func (b Bundle) Native() map[string]interface{} {
	out := make(map[string]interface{}, len(b))
	for k, v := range b {
		out[k] = v.v
	}
	return out
}

// String returns a string scalar.
func (b Bundle) String(key string) (string, error) {
	return get[string](b, key, TypeString, Scalar)
}

// Int returns an int scalar.
func (b Bundle) Int(key string) (int, error) {
	return get[int](b, key, TypeInt, Scalar)
}

// Float returns a float scalar.
func (b Bundle) Float(key string) (float32, error) {
	return get[float32](b, key, TypeFloat, Scalar)
}

// Double returns a double scalar.
func (b Bundle) Double(key string) (float64, error) {
	return get[float64](b, key, TypeDouble, Scalar)
}

// Bool returns a bool scalar.
func (b Bundle) Bool(key string) (bool, error) {
	return get[bool](b, key, TypeBool, Scalar)
}

// Strings returns a string list.
func (b Bundle) Strings(key string) ([]string, error) {
	return get[[]string](b, key, TypeString, List)
}

// Ints returns an int list.
func (b Bundle) Ints(key string) ([]int, error) {
	return get[[]int](b, key, TypeInt, List)
}

// Floats returns a float list.
func (b Bundle) Floats(key string) ([]float32, error) {
	return get[[]float32](b, key, TypeFloat, List)
}

// Doubles returns a double list.
func (b Bundle) Doubles(key string) ([]float64, error) {
	return get[[]float64](b, key, TypeDouble, List)
}

// Bools returns a bool list.
func (b Bundle) Bools(key string) ([]bool, error) {
	return get[[]bool](b, key, TypeBool, List)
}

// StringOr returns the string scalar at key, or def when the key is absent.
// A present value of another type is an error, never def.
func (b Bundle) StringOr(key, def string) (string, error) {
	if !b.Has(key) {
		return def, nil
	}
	return b.String(key)
}

// IntOr returns the int scalar at key, or def when the key is absent.
// A present value of another type is an error, never def.
func (b Bundle) IntOr(key string, def int) (int, error) {
	if !b.Has(key) {
		return def, nil
	}
	return b.Int(key)
}

func get[T any](b Bundle, key string, typ Type, dim Dimension) (T, error) {
	var zero T
	v, ok := b[key]
	if !ok {
		return zero, core.ErrMissingRequired.WithMessage(fmt.Sprintf("parameter %q not set", key))
	}
	if v.Type != typ || v.Dimension != dim {
		return zero, core.ErrDecode.WithMessage(fmt.Sprintf("parameter %q is %s %s, not %s %s", key, v.Type, v.Dimension, typ, dim))
	}
	t, ok := v.v.(T)
	if !ok {
		return zero, core.ErrDecode.WithMessage(fmt.Sprintf("parameter %q holds %T", key, v.v))
	}
	return t, nil
}
