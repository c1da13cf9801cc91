package field

import "math"

// A Type represents a field type the translator knows how to store.
type Type uint8

// List of field types.
const (
	TypeInvalid Type = iota
	TypeBool
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeUint8
	TypeUint16
	TypeUint32
	TypeUint64
	TypeFloat32
	TypeFloat64
	TypeDecimal
	TypeString
	TypeTime
	TypeUUID
	// TypeEnum is a source-side type. An enum member is stored as the
	// text of its enumerator unless a converter maps it elsewhere.
	TypeEnum
	endTypes
)

var typeNames = [...]string{
	TypeInvalid: "invalid",
	TypeBool:    "bool",
	TypeInt8:    "int8",
	TypeInt16:   "int16",
	TypeInt32:   "int32",
	TypeInt64:   "int64",
	TypeUint8:   "uint8",
	TypeUint16:  "uint16",
	TypeUint32:  "uint32",
	TypeUint64:  "uint64",
	TypeFloat32: "float32",
	TypeFloat64: "float64",
	TypeDecimal: "decimal",
	TypeString:  "string",
	TypeTime:    "time.Time",
	TypeUUID:    "uuid.UUID",
	TypeEnum:    "enum",
}

// String returns the string representation of a type.
func (t Type) String() string {
	if t < endTypes {
		return typeNames[t]
	}
	return typeNames[TypeInvalid]
}

// ParseType returns the type for the given name. It is the inverse of String
// and reports false for unknown names.
func ParseType(name string) (Type, bool) {
	for t := TypeBool; t < endTypes; t++ {
		if typeNames[t] == name {
			return t, true
		}
	}
	switch name {
	case "int":
		return TypeInt64, true
	case "uint":
		return TypeUint64, true
	case "time":
		return TypeTime, true
	case "uuid":
		return TypeUUID, true
	}
	return TypeInvalid, false
}

// Valid reports if the given type is a known type.
func (t Type) Valid() bool { return t > TypeInvalid && t < endTypes }

// Storable reports if the type can be the result of a value converter.
// Enum columns only come from enum members, never from conversion.
func (t Type) Storable() bool { return t.Valid() && t != TypeEnum }

// Numeric reports if the given type is a numeric type.
func (t Type) Numeric() bool {
	return t >= TypeInt8 && t <= TypeDecimal
}

// Integer reports if the given type is an integer type.
func (t Type) Integer() bool { return t >= TypeInt8 && t <= TypeUint64 }

// Unsigned reports if the given type is an unsigned integer type.
func (t Type) Unsigned() bool { return t >= TypeUint8 && t <= TypeUint64 }

// Signed reports if the given type can hold negative values.
func (t Type) Signed() bool { return t.Numeric() && !t.Unsigned() }

// Float reports if the given type is a floating-point type.
func (t Type) Float() bool { return t == TypeFloat32 || t == TypeFloat64 }

// Textual reports if the given type has a length.
func (t Type) Textual() bool { return t == TypeString }

// Ordered reports if values of the type form a total order that can be
// expressed as a range constraint.
func (t Type) Ordered() bool {
	return t.Numeric() || t == TypeString || t == TypeTime
}

// Zero returns the zero value of a numeric type.
func (t Type) Zero() (Value, bool) {
	if !t.Numeric() {
		return Value{}, false
	}
	v, err := Parse(t, 0)
	return v, err == nil
}

// Min returns the smallest value of the type, if the type has one.
func (t Type) Min() (Value, bool) {
	switch t {
	case TypeInt8:
		return Int(t, math.MinInt8), true
	case TypeInt16:
		return Int(t, math.MinInt16), true
	case TypeInt32:
		return Int(t, math.MinInt32), true
	case TypeInt64:
		return Int(t, math.MinInt64), true
	case TypeUint8, TypeUint16, TypeUint32, TypeUint64:
		return Uint(t, 0), true
	case TypeFloat32:
		return Float(t, -math.MaxFloat32), true
	case TypeFloat64:
		return Float(t, -math.MaxFloat64), true
	case TypeString:
		return String(""), true
	}
	return Value{}, false
}

// Max returns the largest value of the type, if the type has one.
func (t Type) Max() (Value, bool) {
	switch t {
	case TypeInt8:
		return Int(t, math.MaxInt8), true
	case TypeInt16:
		return Int(t, math.MaxInt16), true
	case TypeInt32:
		return Int(t, math.MaxInt32), true
	case TypeInt64:
		return Int(t, math.MaxInt64), true
	case TypeUint8:
		return Uint(t, math.MaxUint8), true
	case TypeUint16:
		return Uint(t, math.MaxUint16), true
	case TypeUint32:
		return Uint(t, math.MaxUint32), true
	case TypeUint64:
		return Uint(t, math.MaxUint64), true
	case TypeFloat32:
		return Float(t, math.MaxFloat32), true
	case TypeFloat64:
		return Float(t, math.MaxFloat64), true
	}
	return Value{}, false
}
