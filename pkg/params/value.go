// Package params decodes and encodes the typed parameters handed to a workload run.
//
// The host passes parameters as instrumentation arguments, which can only carry
// strings. Each value is therefore encoded as a type-tagged string and URL-escaped:
//
//	encoded   = urlescape( type dimension payload )
//	type      = "s" | "f" | "d" | "b" | "i" | "n"     string, float, double, bool, int, none
//	dimension = "s" | "l"                             scalar, list
//	payload   = scalar | scalar *( "0newelement0" scalar )
//
// The "class" argument controls the instrumentation runner and is never encoded.
package params

import "fmt"

// Type is the type tag of an encoded value.
type Type byte

// Type tags.
const (
	TypeString Type = 's'
	TypeFloat  Type = 'f'
	TypeDouble Type = 'd'
	TypeBool   Type = 'b'
	TypeInt    Type = 'i'
	TypeNone   Type = 'n'
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeFloat:
		return "float"
	case TypeDouble:
		return "double"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeNone:
		return "none"
	default:
		return fmt.Sprintf("unknown(%q)", byte(t))
	}
}

// Dimension is the dimension tag of an encoded value.
type Dimension byte

// Dimension tags.
const (
	Scalar Dimension = 's'
	List   Dimension = 'l'
)

// String returns the dimension name.
func (d Dimension) String() string {
	switch d {
	case Scalar:
		return "scalar"
	case List:
		return "list"
	default:
		return fmt.Sprintf("unknown(%q)", byte(d))
	}
}

const (
	// ListDelimiter separates list elements in a payload.
	ListDelimiter = "0newelement0"

	// ClassKey is the reserved instrumentation argument that is never decoded.
	ClassKey = "class"

	// None is the fixed value every "n" scalar decodes to.
	None = "None"
)

// Value is a decoded parameter: a tagged union over the type/dimension pairs.
//
// The Go type held for each pair:
//
//	ss string    sl []string
//	fs float32   fl []float32
//	ds float64   dl []float64
//	bs bool      bl []bool
//	is int       il []int
//	ns string (None)
type Value struct {
	Type      Type
	Dimension Dimension
	v         interface{}
}

// Interface returns the native Go value.
func (v Value) Interface() interface{} {
	return v.v
}

// IsList returns true for list values.
func (v Value) IsList() bool {
	return v.Dimension == List
}

// IsNone returns true for the none sentinel.
func (v Value) IsNone() bool {
	return v.Type == TypeNone
}

// Tag returns the two-character type/dimension prefix.
func (v Value) Tag() string {
	return string([]byte{byte(v.Type), byte(v.Dimension)})
}

// String formats the native value.
func (v Value) String() string {
	return fmt.Sprint(v.v)
}

// StringValue makes a string scalar.
func StringValue(s string) Value { return Value{Type: TypeString, Dimension: Scalar, v: s} }

// FloatValue makes a float scalar.
func FloatValue(f float32) Value { return Value{Type: TypeFloat, Dimension: Scalar, v: f} }

// DoubleValue makes a double scalar.
func DoubleValue(f float64) Value { return Value{Type: TypeDouble, Dimension: Scalar, v: f} }

// BoolValue makes a bool scalar.
func BoolValue(b bool) Value { return Value{Type: TypeBool, Dimension: Scalar, v: b} }

// IntValue makes an int scalar.
func IntValue(i int) Value { return Value{Type: TypeInt, Dimension: Scalar, v: i} }

// NoneValue makes the none sentinel.
func NoneValue() Value { return Value{Type: TypeNone, Dimension: Scalar, v: None} }

// StringList makes a string list.
func StringList(s ...string) Value { return Value{Type: TypeString, Dimension: List, v: s} }

// FloatList makes a float list.
func FloatList(f ...float32) Value { return Value{Type: TypeFloat, Dimension: List, v: f} }

// DoubleList makes a double list.
func DoubleList(f ...float64) Value { return Value{Type: TypeDouble, Dimension: List, v: f} }

// BoolList makes a bool list.
func BoolList(b ...bool) Value { return Value{Type: TypeBool, Dimension: List, v: b} }

// IntList makes an int list.
func IntList(i ...int) Value { return Value{Type: TypeInt, Dimension: List, v: i} }
