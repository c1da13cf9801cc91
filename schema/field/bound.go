package field

import "strings"

// Bound is one endpoint of an interval. A missing bound (nil *Bound) stands
// for infinity; a Bound itself is always finite.
type Bound struct {
	Value     Value
	Inclusive bool
}

// InclusiveBound returns an inclusive bound at v.
func InclusiveBound(v Value) Bound { return Bound{Value: v, Inclusive: true} }

// ExclusiveBound returns an exclusive bound at v.
func ExclusiveBound(v Value) Bound { return Bound{Value: v} }

// Equal reports if b and o describe the same endpoint.
func (b Bound) Equal(o Bound) bool {
	return b.Inclusive == o.Inclusive && Equal(b.Value, o.Value)
}

// MinUpperBound merges candidate into an existing upper bound and returns
// the tighter of the two. On a tie the exclusive bound wins.
func MinUpperBound(existing *Bound, candidate Bound) Bound {
	if existing == nil {
		return candidate
	}
	switch c := Compare(candidate.Value, existing.Value); {
	case c < 0:
		return candidate
	case c > 0:
		return *existing
	case !existing.Inclusive:
		return *existing
	default:
		return candidate
	}
}

// MaxLowerBound merges candidate into an existing lower bound and returns
// the tighter of the two. On a tie the exclusive bound wins.
func MaxLowerBound(existing *Bound, candidate Bound) Bound {
	if existing == nil {
		return candidate
	}
	switch c := Compare(candidate.Value, existing.Value); {
	case c > 0:
		return candidate
	case c < 0:
		return *existing
	case !existing.Inclusive:
		return *existing
	default:
		return candidate
	}
}

// IsValidInterval reports if the interval between lower and upper contains
// at least one point. An interval with a missing endpoint is always valid.
func IsValidInterval(lower, upper *Bound) bool {
	if lower == nil || upper == nil {
		return true
	}
	switch c := Compare(lower.Value, upper.Value); {
	case c > 0:
		return false
	case c == 0:
		return lower.Inclusive && upper.Inclusive
	}
	return true
}

// IsWithinInterval reports if v lies between lower and upper.
func IsWithinInterval(v Value, lower, upper *Bound) bool {
	if lower != nil {
		if c := Compare(v, lower.Value); c < 0 || (c == 0 && !lower.Inclusive) {
			return false
		}
	}
	if upper != nil {
		if c := Compare(v, upper.Value); c > 0 || (c == 0 && !upper.Inclusive) {
			return false
		}
	}
	return true
}

// FormatInterval renders an interval in bracket notation, for example
// "[5, 3]" or "(-∞, 10)".
func FormatInterval(lower, upper *Bound) string {
	var b strings.Builder
	if lower == nil {
		b.WriteString("(-∞")
	} else {
		if lower.Inclusive {
			b.WriteByte('[')
		} else {
			b.WriteByte('(')
		}
		b.WriteString(lower.Value.String())
	}
	b.WriteString(", ")
	if upper == nil {
		b.WriteString("+∞)")
	} else {
		b.WriteString(upper.Value.String())
		if upper.Inclusive {
			b.WriteByte(']')
		} else {
			b.WriteByte(')')
		}
	}
	return b.String()
}
