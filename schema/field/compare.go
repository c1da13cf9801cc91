package field

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// comparator holds the typed comparison functions of one stored type.
// Unordered types have no compare function.
type comparator struct {
	compare func(a, b any) int
	equal   func(a, b any) bool
}

func ordered[T cmp.Ordered]() comparator {
	return comparator{
		compare: func(a, b any) int { return cmp.Compare(a.(T), b.(T)) },
		equal:   func(a, b any) bool { return a.(T) == b.(T) },
	}
}

// comparators is the closed dispatch table used for all value comparisons.
var comparators = func() map[Type]comparator {
	m := map[Type]comparator{
		TypeBool: {
			equal: func(a, b any) bool { return a.(bool) == b.(bool) },
		},
		TypeDecimal: {
			compare: func(a, b any) int { return a.(decimal.Decimal).Cmp(b.(decimal.Decimal)) },
			equal:   func(a, b any) bool { return a.(decimal.Decimal).Equal(b.(decimal.Decimal)) },
		},
		TypeString: {
			compare: func(a, b any) int { return strings.Compare(a.(string), b.(string)) },
			equal:   func(a, b any) bool { return a.(string) == b.(string) },
		},
		TypeTime: {
			compare: func(a, b any) int { return a.(time.Time).Compare(b.(time.Time)) },
			equal:   func(a, b any) bool { return a.(time.Time).Equal(b.(time.Time)) },
		},
		TypeUUID: {
			equal: func(a, b any) bool {
				x, y := a.(uuid.UUID), b.(uuid.UUID)
				return bytes.Equal(x[:], y[:])
			},
		},
		TypeEnum: {
			equal: func(a, b any) bool { return a.(string) == b.(string) },
		},
	}
	for _, t := range []Type{TypeInt8, TypeInt16, TypeInt32, TypeInt64} {
		m[t] = ordered[int64]()
	}
	for _, t := range []Type{TypeUint8, TypeUint16, TypeUint32, TypeUint64} {
		m[t] = ordered[uint64]()
	}
	for _, t := range []Type{TypeFloat32, TypeFloat64} {
		m[t] = ordered[float64]()
	}
	return m
}()

// Comparable reports if a and b are non-null values of the same ordered type.
func Comparable(a, b Value) bool {
	if a.typ != b.typ || a.null || b.null {
		return false
	}
	c, ok := comparators[a.typ]
	return ok && c.compare != nil
}

// Compare returns -1, 0 or +1 depending on whether a is less than, equal to
// or greater than b. It panics if the values are not Comparable; callers
// resolve types before comparing.
func Compare(a, b Value) int {
	if !Comparable(a, b) {
		panic(fmt.Sprintf("field: cannot compare %v (%v) with %v (%v)", a, a.typ, b, b.typ))
	}
	return comparators[a.typ].compare(a.v, b.v)
}

// Equal reports if a and b hold the same value of the same type. Two nulls
// of the same type are equal.
func Equal(a, b Value) bool {
	switch {
	case a.typ != b.typ:
		return false
	case a.null || b.null:
		return a.null == b.null
	}
	c, ok := comparators[a.typ]
	return ok && c.equal(a.v, b.v)
}
