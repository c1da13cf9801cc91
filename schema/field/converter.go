package field

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Converter is a bidirectional transform between a member's source type
// and the type stored in the database.
type Converter interface {
	// From returns the source type the converter accepts.
	From() Type
	// To returns the stored type the converter produces.
	To() Type
	// Convert maps a source value to its stored representation.
	Convert(Value) (Value, error)
	// Revert maps a stored value back to its source representation.
	Revert(Value) (Value, error)
}

// Identity returns the converter that stores values of type t unchanged.
func Identity(t Type) Converter { return identity{t} }

type identity struct{ t Type }

func (c identity) From() Type                     { return c.t }
func (c identity) To() Type                       { return c.t }
func (c identity) Convert(v Value) (Value, error) { return v, nil }
func (c identity) Revert(v Value) (Value, error)  { return v, nil }

// IsIdentity reports if c is an identity converter.
func IsIdentity(c Converter) bool {
	_, ok := c.(identity)
	return ok
}

// NewConverter returns a converter built from a pair of functions. Null
// values are passed through without calling fwd or back.
func NewConverter(from, to Type, fwd, back func(any) (any, error)) Converter {
	return &funcConverter{from: from, to: to, fwd: fwd, back: back}
}

type funcConverter struct {
	from, to  Type
	fwd, back func(any) (any, error)
}

func (c *funcConverter) From() Type { return c.from }
func (c *funcConverter) To() Type   { return c.to }

func (c *funcConverter) Convert(v Value) (Value, error) {
	return apply(v, c.from, c.to, c.fwd)
}

func (c *funcConverter) Revert(v Value) (Value, error) {
	return apply(v, c.to, c.from, c.back)
}

func apply(v Value, in, out Type, fn func(any) (any, error)) (Value, error) {
	if v.typ != in {
		return Value{}, fmt.Errorf("%w: converter expects %v, got %v", ErrInvalidValue, in, v.typ)
	}
	if v.null {
		return Null(out), nil
	}
	raw, err := fn(v.v)
	if err != nil {
		return Value{}, err
	}
	return Parse(out, raw)
}

// BoolToInt stores booleans as 0 and 1.
var BoolToInt = NewConverter(TypeBool, TypeInt8,
	func(v any) (any, error) {
		if v.(bool) {
			return 1, nil
		}
		return 0, nil
	},
	func(v any) (any, error) { return v.(int64) != 0, nil },
)

// TimeToUnix stores times as seconds since the Unix epoch.
var TimeToUnix = NewConverter(TypeTime, TypeInt64,
	func(v any) (any, error) { return v.(time.Time).Unix(), nil },
	func(v any) (any, error) { return time.Unix(v.(int64), 0).UTC(), nil },
)

// UUIDToString stores UUIDs in their canonical text form.
var UUIDToString = NewConverter(TypeUUID, TypeString,
	func(v any) (any, error) { return v.(uuid.UUID).String(), nil },
	func(v any) (any, error) { return uuid.Parse(v.(string)) },
)

// EnumToString stores enumerators as plain text.
var EnumToString = NewConverter(TypeEnum, TypeString,
	func(v any) (any, error) { return v, nil },
	func(v any) (any, error) { return v, nil },
)

// EnumToOrdinal stores enumerators as their zero-based declaration index.
func EnumToOrdinal(enumerators ...string) Converter {
	names := slices.Clone(enumerators)
	return NewConverter(TypeEnum, TypeInt32,
		func(v any) (any, error) {
			i := slices.Index(names, v.(string))
			if i < 0 {
				return nil, fmt.Errorf("%w: unknown enumerator %q", ErrInvalidValue, v)
			}
			return i, nil
		},
		func(v any) (any, error) {
			i := v.(int64)
			if i < 0 || int(i) >= len(names) {
				return nil, fmt.Errorf("%w: ordinal %d out of range", ErrInvalidValue, i)
			}
			return names[i], nil
		},
	)
}

var converters = struct {
	sync.RWMutex
	m map[string]Converter
}{
	m: map[string]Converter{
		"bool-to-int":    BoolToInt,
		"time-to-unix":   TimeToUnix,
		"uuid-to-string": UUIDToString,
		"enum-to-string": EnumToString,
	},
}

// RegisterConverter makes a converter available by name to model loaders.
// It panics if the name is empty or already registered.
func RegisterConverter(name string, c Converter) {
	converters.Lock()
	defer converters.Unlock()
	if name == "" || c == nil {
		panic("field: RegisterConverter with empty name or nil converter")
	}
	if _, dup := converters.m[name]; dup {
		panic("field: RegisterConverter called twice for " + name)
	}
	converters.m[name] = c
}

// LookupConverter returns the converter registered under name.
func LookupConverter(name string) (Converter, bool) {
	converters.RLock()
	defer converters.RUnlock()
	c, ok := converters.m[name]
	return c, ok
}
