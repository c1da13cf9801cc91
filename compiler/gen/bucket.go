package gen

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/syssam/tabula/schema/annotation"
	"github.com/syssam/tabula/schema/field"

	"github.com/vmihailenco/msgpack/v5"
)

// Sign is the zero-relative comparator of a numeric field.
type Sign uint8

// Sign constraints.
const (
	SignNone Sign = iota
	SignPositive
	SignNegative
	SignNonZero
)

// ValueSet is an ordered set of values of one type.
type ValueSet []field.Value

// Contains reports if the set holds v.
func (s ValueSet) Contains(v field.Value) bool {
	return slices.ContainsFunc(s, func(e field.Value) bool { return field.Equal(e, v) })
}

// Add returns the set extended with the values it does not hold yet.
func (s ValueSet) Add(vs ...field.Value) ValueSet {
	for _, v := range vs {
		if !s.Contains(v) {
			s = append(s, v)
		}
	}
	return s
}

// Intersect returns the values of s that o holds.
func (s ValueSet) Intersect(o ValueSet) ValueSet {
	out := ValueSet{}
	for _, v := range s {
		if o.Contains(v) {
			out = append(out, v)
		}
	}
	return out
}

// String implements the fmt.Stringer interface.
func (s ValueSet) String() string {
	parts := make([]string, len(s))
	for i, v := range s {
		parts[i] = v.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// ConstraintBucket accumulates the value constraints of one field. All
// values are held in the stored type of the field, lengths as int64.
type ConstraintBucket struct {
	Sign       Sign
	Lower      *field.Bound
	Upper      *field.Bound
	MinLength  *field.Bound
	MaxLength  *field.Bound
	Allowed    *ValueSet // nil when unrestricted
	Disallowed ValueSet
	// Restricted holds the values the source type itself admits, such as
	// the enumerators of an enumeration.
	Restricted *ValueSet
	// Custom holds user-defined CHECK generators.
	Custom []annotation.CheckFunc
}

func (b ConstraintBucket) clone() ConstraintBucket {
	b.Lower = cloneBound(b.Lower)
	b.Upper = cloneBound(b.Upper)
	b.MinLength = cloneBound(b.MinLength)
	b.MaxLength = cloneBound(b.MaxLength)
	b.Allowed = cloneSet(b.Allowed)
	b.Restricted = cloneSet(b.Restricted)
	b.Disallowed = slices.Clone(b.Disallowed)
	b.Custom = slices.Clone(b.Custom)
	return b
}

func cloneBound(b *field.Bound) *field.Bound {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}

func cloneSet(s *ValueSet) *ValueSet {
	if s == nil {
		return nil
	}
	c := slices.Clone(*s)
	return &c
}

// Empty reports if the bucket holds no constraint.
func (b ConstraintBucket) Empty() bool {
	return b.Sign == SignNone && b.Lower == nil && b.Upper == nil &&
		b.MinLength == nil && b.MaxLength == nil && b.Allowed == nil &&
		len(b.Disallowed) == 0 && b.Restricted == nil && len(b.Custom) == 0
}

// Admits reports if the non-null value v satisfies the range, length and
// value-set constraints of the bucket. Custom constraints are not evaluated.
func (b ConstraintBucket) Admits(v field.Value) bool {
	if v.IsNull() {
		return true
	}
	if (b.Lower != nil || b.Upper != nil) && !field.IsWithinInterval(v, b.Lower, b.Upper) {
		return false
	}
	if b.MinLength != nil || b.MaxLength != nil {
		s, ok := v.Interface().(string)
		if !ok || !field.IsWithinInterval(length(s), b.MinLength, b.MaxLength) {
			return false
		}
	}
	switch {
	case b.Disallowed.Contains(v):
		return false
	case b.Allowed != nil && !b.Allowed.Contains(v):
		return false
	case b.Restricted != nil && !b.Restricted.Contains(v):
		return false
	}
	return true
}

// length returns the length of s as a length-bound value.
func length(s string) field.Value {
	return field.Int(field.TypeInt64, int64(utf8.RuneCountInString(s)))
}

// lengthValue returns n as a length-bound value.
func lengthValue(n int) field.Value {
	return field.Int(field.TypeInt64, int64(n))
}

// bucketWire is the serialized form of a bucket. Custom generators are not
// serializable and are dropped.
type bucketWire struct {
	Sign       Sign           `msgpack:"sign"`
	Lower      *boundWire     `msgpack:"lower,omitempty"`
	Upper      *boundWire     `msgpack:"upper,omitempty"`
	MinLength  *boundWire     `msgpack:"min_length,omitempty"`
	MaxLength  *boundWire     `msgpack:"max_length,omitempty"`
	Allowed    []*field.Value `msgpack:"allowed"`
	HasAllowed bool           `msgpack:"has_allowed"`
	Disallowed []*field.Value `msgpack:"disallowed,omitempty"`
	Restricted []*field.Value `msgpack:"restricted"`
	HasRestr   bool           `msgpack:"has_restricted"`
}

type boundWire struct {
	Value     *field.Value `msgpack:"value"`
	Inclusive bool         `msgpack:"inclusive"`
}

func toBoundWire(b *field.Bound) *boundWire {
	if b == nil {
		return nil
	}
	v := b.Value
	return &boundWire{Value: &v, Inclusive: b.Inclusive}
}

func (w *boundWire) bound() *field.Bound {
	if w == nil || w.Value == nil {
		return nil
	}
	return &field.Bound{Value: *w.Value, Inclusive: w.Inclusive}
}

func toWireValues(s []field.Value) []*field.Value {
	out := make([]*field.Value, len(s))
	for i := range s {
		v := s[i]
		out[i] = &v
	}
	return out
}

func fromWireValues(s []*field.Value) ValueSet {
	out := make(ValueSet, 0, len(s))
	for _, v := range s {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// MarshalBucket encodes a bucket with msgpack. Custom generators are not
// encoded.
func MarshalBucket(b ConstraintBucket) ([]byte, error) {
	w := bucketWire{
		Sign:       b.Sign,
		Lower:      toBoundWire(b.Lower),
		Upper:      toBoundWire(b.Upper),
		MinLength:  toBoundWire(b.MinLength),
		MaxLength:  toBoundWire(b.MaxLength),
		Disallowed: toWireValues(b.Disallowed),
	}
	if b.Allowed != nil {
		w.Allowed, w.HasAllowed = toWireValues(*b.Allowed), true
	}
	if b.Restricted != nil {
		w.Restricted, w.HasRestr = toWireValues(*b.Restricted), true
	}
	data, err := msgpack.Marshal(&w)
	if err != nil {
		return nil, fmt.Errorf("tabula: encode constraint bucket: %w", err)
	}
	return data, nil
}

// UnmarshalBucket decodes a bucket encoded by MarshalBucket.
func UnmarshalBucket(data []byte) (ConstraintBucket, error) {
	var w bucketWire
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return ConstraintBucket{}, fmt.Errorf("tabula: decode constraint bucket: %w", err)
	}
	b := ConstraintBucket{
		Sign:      w.Sign,
		Lower:     w.Lower.bound(),
		Upper:     w.Upper.bound(),
		MinLength: w.MinLength.bound(),
		MaxLength: w.MaxLength.bound(),
	}
	if len(w.Disallowed) > 0 {
		b.Disallowed = fromWireValues(w.Disallowed)
	}
	if w.HasAllowed {
		s := fromWireValues(w.Allowed)
		b.Allowed = &s
	}
	if w.HasRestr {
		s := fromWireValues(w.Restricted)
		b.Restricted = &s
	}
	return b, nil
}
