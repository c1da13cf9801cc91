package field

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrInvalidValue is returned when a raw value cannot be parsed into a Value.
var ErrInvalidValue = errors.New("field: invalid value")

// Value is a type-tagged field value. The payload is held in a canonical
// representation per type: bool, int64, uint64, float64, decimal.Decimal,
// string, time.Time or uuid.UUID. Enum values hold the enumerator text.
//
// The zero Value is invalid. Use Null to create a typed null.
type Value struct {
	typ  Type
	null bool
	v    any
}

// Null returns the null value of the given type.
func Null(t Type) Value { return Value{typ: t, null: true} }

// Bool returns a bool value.
func Bool(b bool) Value { return Value{typ: TypeBool, v: b} }

// Int returns a signed integer value of the given type.
func Int(t Type, i int64) Value { return Value{typ: t, v: i} }

// Uint returns an unsigned integer value of the given type.
func Uint(t Type, u uint64) Value { return Value{typ: t, v: u} }

// Float returns a floating-point value of the given type. Values of
// TypeFloat32 are rounded to single precision.
func Float(t Type, f float64) Value {
	if t == TypeFloat32 {
		f = float64(float32(f))
	}
	return Value{typ: t, v: f}
}

// Decimal returns a decimal value.
func Decimal(d decimal.Decimal) Value { return Value{typ: TypeDecimal, v: d} }

// String returns a string value.
func String(s string) Value { return Value{typ: TypeString, v: s} }

// Time returns a time value.
func Time(t time.Time) Value { return Value{typ: TypeTime, v: t} }

// UUID returns a UUID value.
func UUID(u uuid.UUID) Value { return Value{typ: TypeUUID, v: u} }

// Enum returns an enum value holding the given enumerator.
func Enum(name string) Value { return Value{typ: TypeEnum, v: name} }

// Type returns the type tag of the value.
func (v Value) Type() Type { return v.typ }

// IsNull reports if the value is null.
func (v Value) IsNull() bool { return v.null }

// Valid reports if the value carries a known type.
func (v Value) Valid() bool { return v.typ.Valid() }

// Interface returns the canonical payload of the value, or nil for null.
func (v Value) Interface() any {
	if v.null {
		return nil
	}
	return v.v
}

// String implements the fmt.Stringer interface.
func (v Value) String() string {
	switch {
	case !v.Valid():
		return "<invalid>"
	case v.null:
		return "null"
	}
	switch p := v.v.(type) {
	case string:
		return strconv.Quote(p)
	case time.Time:
		return p.Format(time.RFC3339Nano)
	case float64:
		return strconv.FormatFloat(p, 'g', -1, 64)
	default:
		return fmt.Sprint(p)
	}
}

// SQL returns the value as a dialect-neutral SQL literal.
func (v Value) SQL() string {
	if v.null {
		return "NULL"
	}
	switch p := v.v.(type) {
	case bool:
		if p {
			return "TRUE"
		}
		return "FALSE"
	case string:
		return "'" + strings.ReplaceAll(p, "'", "''") + "'"
	case time.Time:
		return "'" + p.UTC().Format("2006-01-02 15:04:05.999999") + "'"
	case uuid.UUID:
		return "'" + p.String() + "'"
	case float64:
		return strconv.FormatFloat(p, 'g', -1, 64)
	default:
		return fmt.Sprint(p)
	}
}

// Parse converts a raw value into a Value of type t. Native Go values of a
// compatible kind and their textual representation are both accepted. A nil
// raw value parses to the null value of t.
func Parse(t Type, raw any) (Value, error) {
	if !t.Valid() {
		return Value{}, fmt.Errorf("%w: unsupported type %v", ErrInvalidValue, t)
	}
	if raw == nil {
		return Null(t), nil
	}
	if v, ok := raw.(Value); ok {
		if v.typ != t {
			return Value{}, fmt.Errorf("%w: %v value for %v field", ErrInvalidValue, v.typ, t)
		}
		return v, nil
	}
	var (
		v   Value
		err error
	)
	switch {
	case t == TypeBool:
		v, err = parseBool(raw)
	case t.Integer() && !t.Unsigned():
		v, err = parseInt(t, raw)
	case t.Unsigned():
		v, err = parseUint(t, raw)
	case t.Float():
		v, err = parseFloat(t, raw)
	case t == TypeDecimal:
		v, err = parseDecimal(raw)
	case t == TypeString:
		s, ok := raw.(string)
		if !ok {
			return Value{}, mismatch(t, raw)
		}
		v = String(s)
	case t == TypeEnum:
		s, ok := raw.(string)
		if !ok {
			return Value{}, mismatch(t, raw)
		}
		v = Enum(s)
	case t == TypeTime:
		v, err = parseTime(raw)
	case t == TypeUUID:
		v, err = parseUUID(raw)
	}
	return v, err
}

// MustParse is like Parse but panics if the value cannot be parsed.
func MustParse(t Type, raw any) Value {
	v, err := Parse(t, raw)
	if err != nil {
		panic(err)
	}
	return v
}

func mismatch(t Type, raw any) error {
	return fmt.Errorf("%w: cannot use %v (%T) as %v", ErrInvalidValue, raw, raw, t)
}

func parseBool(raw any) (Value, error) {
	switch b := raw.(type) {
	case bool:
		return Bool(b), nil
	case string:
		p, err := strconv.ParseBool(b)
		if err != nil {
			return Value{}, mismatch(TypeBool, raw)
		}
		return Bool(p), nil
	}
	return Value{}, mismatch(TypeBool, raw)
}

func bitSize(t Type) int {
	switch t {
	case TypeInt8, TypeUint8:
		return 8
	case TypeInt16, TypeUint16:
		return 16
	case TypeInt32, TypeUint32, TypeFloat32:
		return 32
	}
	return 64
}

func parseInt(t Type, raw any) (Value, error) {
	var i int64
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i = rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Value{}, mismatch(t, raw)
		}
		i = int64(u)
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return Value{}, mismatch(t, raw)
		}
		i = int64(f)
	case reflect.String:
		p, err := strconv.ParseInt(rv.String(), 10, bitSize(t))
		if err != nil {
			return Value{}, mismatch(t, raw)
		}
		i = p
	default:
		return Value{}, mismatch(t, raw)
	}
	bits := uint(bitSize(t))
	if bits < 64 {
		lo, hi := int64(-1)<<(bits-1), int64(1)<<(bits-1)-1
		if i < lo || i > hi {
			return Value{}, fmt.Errorf("%w: %d overflows %v", ErrInvalidValue, i, t)
		}
	}
	return Int(t, i), nil
}

func parseUint(t Type, raw any) (Value, error) {
	var u uint64
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := rv.Int()
		if i < 0 {
			return Value{}, fmt.Errorf("%w: %d is negative for %v", ErrInvalidValue, i, t)
		}
		u = uint64(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u = rv.Uint()
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 {
			return Value{}, mismatch(t, raw)
		}
		u = uint64(f)
	case reflect.String:
		p, err := strconv.ParseUint(rv.String(), 10, bitSize(t))
		if err != nil {
			return Value{}, mismatch(t, raw)
		}
		u = p
	default:
		return Value{}, mismatch(t, raw)
	}
	if bits := uint(bitSize(t)); bits < 64 && u > uint64(1)<<bits-1 {
		return Value{}, fmt.Errorf("%w: %d overflows %v", ErrInvalidValue, u, t)
	}
	return Uint(t, u), nil
}

func parseFloat(t Type, raw any) (Value, error) {
	var f float64
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f = float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		f = float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		f = rv.Float()
	case reflect.String:
		p, err := strconv.ParseFloat(rv.String(), bitSize(t))
		if err != nil {
			return Value{}, mismatch(t, raw)
		}
		f = p
	default:
		return Value{}, mismatch(t, raw)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, fmt.Errorf("%w: %v is not a finite number", ErrInvalidValue, f)
	}
	if t == TypeFloat32 && math.Abs(f) > math.MaxFloat32 {
		return Value{}, fmt.Errorf("%w: %v overflows %v", ErrInvalidValue, f, t)
	}
	return Float(t, f), nil
}

func parseDecimal(raw any) (Value, error) {
	switch d := raw.(type) {
	case decimal.Decimal:
		return Decimal(d), nil
	case string:
		p, err := decimal.NewFromString(d)
		if err != nil {
			return Value{}, mismatch(TypeDecimal, raw)
		}
		return Decimal(p), nil
	}
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Decimal(decimal.NewFromInt(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Decimal(decimal.NewFromBigInt(new(big.Int).SetUint64(rv.Uint()), 0)), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Value{}, mismatch(TypeDecimal, raw)
		}
		return Decimal(decimal.NewFromFloat(f)), nil
	}
	return Value{}, mismatch(TypeDecimal, raw)
}

func parseTime(raw any) (Value, error) {
	switch t := raw.(type) {
	case time.Time:
		return Time(t), nil
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", time.DateOnly} {
			if p, err := time.Parse(layout, t); err == nil {
				return Time(p), nil
			}
		}
	}
	return Value{}, mismatch(TypeTime, raw)
}

func parseUUID(raw any) (Value, error) {
	switch u := raw.(type) {
	case uuid.UUID:
		return UUID(u), nil
	case [16]byte:
		return UUID(uuid.UUID(u)), nil
	case string:
		p, err := uuid.Parse(u)
		if err != nil {
			return Value{}, mismatch(TypeUUID, raw)
		}
		return UUID(p), nil
	}
	return Value{}, mismatch(TypeUUID, raw)
}
