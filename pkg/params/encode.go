package params

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Encode converts a native Go value into its wire form.
// See ValueOf for the accepted types.
func Encode(x interface{}) (string, error) {
	v, err := ValueOf(x)
	if err != nil {
		return "", err
	}
	return EncodeValue(v), nil
}

// EncodeValue renders v as a URL-escaped "<type><dimension><payload>" string.
func EncodeValue(v Value) string {
	return escape(v.Tag() + payload(v))
}

// EncodeBundle encodes every entry of values. A "class" entry must be a string
// and is copied verbatim.
func EncodeBundle(values map[string]interface{}) (RawBundle, error) {
	out := make(RawBundle, len(values))
	for key, x := range values {
		if key == ClassKey {
			s, ok := x.(string)
			if !ok {
				return nil, fmt.Errorf("encode %s: must be a string, got %T", ClassKey, x)
			}
			out[key] = s
			continue
		}
		enc, err := Encode(x)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		out[key] = enc
	}
	return out, nil
}

// ValueOf converts a native Go value into a Value.
//
// Accepted: nil, string, bool, float32, float64, any integer type within the
// 32-bit range, the matching slices, and []interface{} whose elements all map
// to the same scalar type (as produced by YAML or JSON decoding).
// A list mixing integers and doubles becomes a double list.
func ValueOf(x interface{}) (Value, error) {
	switch t := x.(type) {
	case nil:
		return NoneValue(), nil
	case Value:
		return t, nil
	case string:
		return StringValue(t), nil
	case bool:
		return BoolValue(t), nil
	case float32:
		return FloatValue(t), nil
	case float64:
		return DoubleValue(t), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		n, err := toInt(t)
		if err != nil {
			return Value{}, err
		}
		return IntValue(n), nil
	case []string:
		if err := checkStrings(t); err != nil {
			return Value{}, err
		}
		return StringList(t...), nil
	case []bool:
		if len(t) == 0 {
			return Value{}, errEmptyList
		}
		return BoolList(t...), nil
	case []float32:
		if len(t) == 0 {
			return Value{}, errEmptyList
		}
		return FloatList(t...), nil
	case []float64:
		if len(t) == 0 {
			return Value{}, errEmptyList
		}
		return DoubleList(t...), nil
	case []int:
		if len(t) == 0 {
			return Value{}, errEmptyList
		}
		for _, n := range t {
			if _, err := toInt(n); err != nil {
				return Value{}, err
			}
		}
		return IntList(t...), nil
	case []interface{}:
		return listOf(t)
	default:
		return Value{}, fmt.Errorf("unsupported parameter type %T", x)
	}
}

var errEmptyList = fmt.Errorf("empty lists cannot be encoded")

func listOf(items []interface{}) (Value, error) {
	if len(items) == 0 {
		return Value{}, errEmptyList
	}

	elems := make([]Value, len(items))
	for i, item := range items {
		v, err := ValueOf(item)
		if err != nil {
			return Value{}, fmt.Errorf("list index %d: %w", i, err)
		}
		if v.IsList() || v.IsNone() {
			return Value{}, fmt.Errorf("list index %d: %s cannot be a list element", i, v.Type)
		}
		elems[i] = v
	}

	promoteInts(elems)

	typ := elems[0].Type
	for i, e := range elems {
		if e.Type != typ {
			return Value{}, fmt.Errorf("list index %d: mixed element types %s and %s", i, typ, e.Type)
		}
	}

	switch typ {
	case TypeString:
		out := make([]string, len(elems))
		for i, e := range elems {
			out[i] = e.v.(string)
		}
		return ValueOf(out)
	case TypeBool:
		out := make([]bool, len(elems))
		for i, e := range elems {
			out[i] = e.v.(bool)
		}
		return BoolList(out...), nil
	case TypeFloat:
		out := make([]float32, len(elems))
		for i, e := range elems {
			out[i] = e.v.(float32)
		}
		return FloatList(out...), nil
	case TypeDouble:
		out := make([]float64, len(elems))
		for i, e := range elems {
			out[i] = e.v.(float64)
		}
		return DoubleList(out...), nil
	default:
		out := make([]int, len(elems))
		for i, e := range elems {
			out[i] = e.v.(int)
		}
		return IntList(out...), nil
	}
}

// promoteInts turns int elements into doubles when the list also holds doubles.
func promoteInts(elems []Value) {
	hasDouble := false
	for _, e := range elems {
		switch e.Type {
		case TypeDouble:
			hasDouble = true
		case TypeInt:
		default:
			return
		}
	}
	if !hasDouble {
		return
	}
	for i, e := range elems {
		if e.Type == TypeInt {
			elems[i] = DoubleValue(float64(e.v.(int)))
		}
	}
}

func checkStrings(items []string) error {
	if len(items) == 0 {
		return errEmptyList
	}
	for i, s := range items {
		if strings.Contains(s, ListDelimiter) {
			return fmt.Errorf("list index %d: element contains the list delimiter %q", i, ListDelimiter)
		}
	}
	return nil
}

func toInt(x interface{}) (int, error) {
	var n int64
	switch t := x.(type) {
	case int:
		n = int64(t)
	case int8:
		n = int64(t)
	case int16:
		n = int64(t)
	case int32:
		n = int64(t)
	case int64:
		n = t
	case uint:
		if uint64(t) > math.MaxInt32 {
			return 0, fmt.Errorf("integer %d out of 32-bit range", t)
		}
		n = int64(t)
	case uint8:
		n = int64(t)
	case uint16:
		n = int64(t)
	case uint32:
		n = int64(t)
	case uint64:
		if t > math.MaxInt32 {
			return 0, fmt.Errorf("integer %d out of 32-bit range", t)
		}
		n = int64(t)
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, fmt.Errorf("integer %d out of 32-bit range", n)
	}
	return int(n), nil
}

// payload renders the value part of the wire form, without the tag.
func payload(v Value) string {
	switch t := v.v.(type) {
	case string:
		if v.Type == TypeNone {
			return None
		}
		return t
	case bool:
		return strconv.FormatBool(t)
	case float32:
		return formatFloat32(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int:
		return strconv.Itoa(t)
	case []string:
		return strings.Join(t, ListDelimiter)
	case []bool:
		parts := make([]string, len(t))
		for i, b := range t {
			parts[i] = strconv.FormatBool(b)
		}
		return strings.Join(parts, ListDelimiter)
	case []float32:
		parts := make([]string, len(t))
		for i, f := range t {
			parts[i] = formatFloat32(f)
		}
		return strings.Join(parts, ListDelimiter)
	case []float64:
		parts := make([]string, len(t))
		for i, f := range t {
			parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
		}
		return strings.Join(parts, ListDelimiter)
	case []int:
		parts := make([]string, len(t))
		for i, n := range t {
			parts[i] = strconv.Itoa(n)
		}
		return strings.Join(parts, ListDelimiter)
	default:
		return fmt.Sprint(t)
	}
}

func formatFloat32(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

// escape percent-encodes s so it survives an adb shell argument.
// Spaces become %20, never "+", because the device side does not treat "+" as a space.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
