package bdf

import "strconv"

// Type identifies the active representation of a Value. The numeric values
// double as the binary type tags.
type Type uint8

const (
	TypeUndefined Type = iota
	TypeBoolean
	TypeInteger
	TypeLong
	TypeShort
	TypeByte
	TypeDouble
	TypeFloat
	TypeString
	TypeList
	TypeMap
	TypeArrayBoolean
	TypeArrayInteger
	TypeArrayLong
	TypeArrayShort
	TypeArrayByte
	TypeArrayDouble
	TypeArrayFloat

	typeCount = 18
)

var typeNames = [typeCount]string{
	"undefined",
	"boolean",
	"integer",
	"long",
	"short",
	"byte",
	"double",
	"float",
	"string",
	"list",
	"map",
	"boolean array",
	"integer array",
	"long array",
	"short array",
	"byte array",
	"double array",
	"float array",
}

func (t Type) String() string {
	if t < typeCount {
		return typeNames[t]
	}
	return "type(" + strconv.Itoa(int(t)) + ")"
}

func (t Type) IsArray() bool {
	return t >= TypeArrayBoolean && t <= TypeArrayFloat
}

// IsNumeric reports whether t is one of the integer or floating-point scalars.
func (t Type) IsNumeric() bool {
	return t >= TypeInteger && t <= TypeFloat
}

// ElemType returns the scalar type of an array's elements, or TypeUndefined
// for non-array types.
func (t Type) ElemType() Type {
	switch t {
	case TypeArrayBoolean:
		return TypeBoolean
	case TypeArrayInteger:
		return TypeInteger
	case TypeArrayLong:
		return TypeLong
	case TypeArrayShort:
		return TypeShort
	case TypeArrayByte:
		return TypeByte
	case TypeArrayDouble:
		return TypeDouble
	case TypeArrayFloat:
		return TypeFloat
	default:
		return TypeUndefined
	}
}

// scalarWidth is the number of bytes a scalar of this type (or an element
// of this array type) occupies in the binary format. Zero for variable-size
// types.
func (t Type) scalarWidth() int {
	switch t {
	case TypeBoolean, TypeByte, TypeArrayBoolean, TypeArrayByte:
		return 1
	case TypeShort, TypeArrayShort:
		return 2
	case TypeInteger, TypeFloat, TypeArrayInteger, TypeArrayFloat:
		return 4
	case TypeLong, TypeDouble, TypeArrayLong, TypeArrayDouble:
		return 8
	default:
		return 0
	}
}

// suffix is the text-format literal suffix of a numeric type.
func (t Type) suffix() byte {
	switch t {
	case TypeInteger:
		return 'I'
	case TypeLong:
		return 'L'
	case TypeShort:
		return 'S'
	case TypeByte:
		return 'B'
	case TypeDouble:
		return 'D'
	case TypeFloat:
		return 'F'
	default:
		return 0
	}
}

func typeForSuffix(c rune) Type {
	switch c {
	case 'I', 'i':
		return TypeInteger
	case 'L', 'l':
		return TypeLong
	case 'S', 's':
		return TypeShort
	case 'B', 'b':
		return TypeByte
	case 'D', 'd':
		return TypeDouble
	case 'F', 'f':
		return TypeFloat
	default:
		return TypeUndefined
	}
}

// arrayKeywords maps the text-format array constructor names to array types.
var arrayKeywords = map[string]Type{
	"bool":   TypeArrayBoolean,
	"int":    TypeArrayInteger,
	"long":   TypeArrayLong,
	"short":  TypeArrayShort,
	"byte":   TypeArrayByte,
	"double": TypeArrayDouble,
	"float":  TypeArrayFloat,
}

func arrayKeyword(t Type) string {
	switch t {
	case TypeArrayBoolean:
		return "bool"
	case TypeArrayInteger:
		return "int"
	case TypeArrayLong:
		return "long"
	case TypeArrayShort:
		return "short"
	case TypeArrayByte:
		return "byte"
	case TypeArrayDouble:
		return "double"
	case TypeArrayFloat:
		return "float"
	default:
		panic("not an array type: " + t.String())
	}
}
