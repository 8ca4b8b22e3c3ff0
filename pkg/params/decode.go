package params

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/devicelab-dev/uiauto/pkg/core"
)

// RawBundle maps parameter names to encoded strings, as received from the host.
type RawBundle map[string]string

// DecodeError reports a parameter value that could not be decoded.
type DecodeError struct {
	Key    string // Parameter name, empty for a bare ParseValue
	Raw    string // Value as received
	Reason string
	Err    error // Parse error, if any
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("error decoding %s%q: %s", keyPrefix(e.Key), e.Raw, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the parse error and the core.ErrDecode sentinel.
func (e *DecodeError) Unwrap() []error {
	if e.Err != nil {
		return []error{core.ErrDecode, e.Err}
	}
	return []error{core.ErrDecode}
}

func keyPrefix(key string) string {
	if key == "" {
		return ""
	}
	return key + "="
}

// DecodeBundle decodes every entry of raw except "class", which is copied verbatim
// as a string value. Keys are visited in sorted order and the first malformed
// entry fails the whole decode.
func DecodeBundle(raw RawBundle) (Bundle, error) {
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make(Bundle, len(raw))
	for _, key := range keys {
		encoded := raw[key]
		if key == ClassKey {
			out[key] = StringValue(encoded)
			continue
		}

		unescaped, err := url.PathUnescape(encoded)
		if err != nil {
			return nil, &DecodeError{Key: key, Raw: encoded, Reason: "invalid URL escape", Err: err}
		}

		v, err := ParseValue(unescaped)
		if err != nil {
			if de, ok := err.(*DecodeError); ok {
				de.Key = key
				de.Raw = encoded
			}
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}

// ParseValue decodes a single value that has already been URL-unescaped.
func ParseValue(s string) (Value, error) {
	if len(s) < 2 {
		return Value{}, &DecodeError{Raw: s, Reason: "value shorter than type and dimension tags"}
	}

	typ, dim, payload := Type(s[0]), Dimension(s[1]), s[2:]

	switch dim {
	case Scalar:
		return parseScalarValue(s, typ, payload)
	case List:
		return parseListValue(s, typ, payload)
	default:
		return Value{}, &DecodeError{Raw: s, Reason: fmt.Sprintf("unknown dimension tag %q", byte(dim))}
	}
}

func parseScalarValue(raw string, typ Type, payload string) (Value, error) {
	switch typ {
	case TypeString:
		return StringValue(payload), nil
	case TypeNone:
		return NoneValue(), nil
	case TypeFloat:
		f, err := parseFloat(payload)
		if err != nil {
			return Value{}, parseError(raw, typ, err)
		}
		return FloatValue(f), nil
	case TypeDouble:
		f, err := parseDouble(payload)
		if err != nil {
			return Value{}, parseError(raw, typ, err)
		}
		return DoubleValue(f), nil
	case TypeBool:
		b, err := parseBool(payload)
		if err != nil {
			return Value{}, parseError(raw, typ, err)
		}
		return BoolValue(b), nil
	case TypeInt:
		i, err := parseInt(payload)
		if err != nil {
			return Value{}, parseError(raw, typ, err)
		}
		return IntValue(i), nil
	default:
		return Value{}, &DecodeError{Raw: raw, Reason: fmt.Sprintf("unknown type tag %q", byte(typ))}
	}
}

func parseListValue(raw string, typ Type, payload string) (Value, error) {
	// Trailing empty elements are kept; the on-device decoder drops them.
	elems := strings.Split(payload, ListDelimiter)

	switch typ {
	case TypeString:
		return StringList(elems...), nil
	case TypeFloat:
		out := make([]float32, len(elems))
		for i, e := range elems {
			f, err := parseFloat(e)
			if err != nil {
				return Value{}, elementError(raw, typ, i, err)
			}
			out[i] = f
		}
		return FloatList(out...), nil
	case TypeDouble:
		out := make([]float64, len(elems))
		for i, e := range elems {
			f, err := parseDouble(e)
			if err != nil {
				return Value{}, elementError(raw, typ, i, err)
			}
			out[i] = f
		}
		return DoubleList(out...), nil
	case TypeBool:
		out := make([]bool, len(elems))
		for i, e := range elems {
			b, err := parseBool(e)
			if err != nil {
				return Value{}, elementError(raw, typ, i, err)
			}
			out[i] = b
		}
		return BoolList(out...), nil
	case TypeInt:
		out := make([]int, len(elems))
		for i, e := range elems {
			n, err := parseInt(e)
			if err != nil {
				return Value{}, elementError(raw, typ, i, err)
			}
			out[i] = n
		}
		return IntList(out...), nil
	default:
		// "nl" included: there is no list of none.
		return Value{}, &DecodeError{Raw: raw, Reason: fmt.Sprintf("unknown list type tag %q", byte(typ))}
	}
}

func parseFloat(s string) (float32, error) {
	f, err := parseReal(s, 32)
	return float32(f), err
}

func parseDouble(s string) (float64, error) {
	return parseReal(s, 64)
}

// parseReal reads a float of the given size. Values beyond the type's range
// decode to ±Inf rather than failing, matching the on-device decoder.
func parseReal(s string, bitSize int) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), bitSize)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && numErr.Err == strconv.ErrRange && math.IsInf(f, 0) {
			return f, nil
		}
		return 0, err
	}
	return f, nil
}

func parseInt(s string) (int, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// parseBool accepts true/false in any case, which covers both Go and Python spellings.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

func parseError(raw string, typ Type, err error) *DecodeError {
	return &DecodeError{Raw: raw, Reason: "invalid " + typ.String(), Err: err}
}

func elementError(raw string, typ Type, index int, err error) *DecodeError {
	return &DecodeError{Raw: raw, Reason: fmt.Sprintf("invalid %s at list index %d", typ, index), Err: err}
}
