package gen

import (
	"github.com/syssam/tabula/schema"
	"github.com/syssam/tabula/schema/annotation"
	"github.com/syssam/tabula/schema/field"
)

var signs = map[annotation.Kind]Sign{
	annotation.KindIsPositive: SignPositive,
	annotation.KindIsNegative: SignNegative,
	annotation.KindIsNonZero:  SignNonZero,
}

var signKinds = map[Sign]annotation.Kind{
	SignPositive: annotation.KindIsPositive,
	SignNegative: annotation.KindIsNegative,
	SignNonZero:  annotation.KindIsNonZero,
}

// constraints accumulates the value constraints of the member into the
// buckets of its descriptors, resolves conflicts, checks default values and
// finally collects the custom generators.
func (mc *memberContext) constraints(dm DescriptorMap) (DescriptorMap, error) {
	inclusion := make(map[Path]annotation.Kind)
	var err error
	for _, a := range mc.annotations {
		k := a.Kind()
		if !k.Signedness() && !k.Length() && k != annotation.KindCompare && k != annotation.KindIsOneOf && k != annotation.KindIsNotOneOf {
			continue
		}
		paths, err := mc.resolve(dm, a)
		if err != nil {
			return dm, err
		}
		dm, err = dm.Update(paths, func(p Path, d *FieldDescriptor) error {
			switch {
			case k.Signedness():
				return mc.signedness(p, d, a)
			case k == annotation.KindCompare:
				return mc.comparison(p, d, a.(annotation.Compare))
			case k.Length():
				return mc.length(p, d, a)
			default:
				if prev, ok := inclusion[p]; ok && prev != k {
					return mc.scope.errorf(MutualExclusion, p, annots(annotation.KindIsOneOf, annotation.KindIsNotOneOf), "value set cannot be both allowed and disallowed")
				}
				inclusion[p] = k
				return mc.inclusion(p, d, a)
			}
		})
		if err != nil {
			return dm, err
		}
	}
	dm, err = dm.Update(dm.Keys(), func(p Path, d *FieldDescriptor) error {
		if err := mc.resolveConflicts(p, d); err != nil {
			return err
		}
		return mc.checkDefault(p, d)
	})
	if err != nil {
		return dm, err
	}
	for _, a := range mc.of(annotation.KindCheck) {
		c := a.(annotation.Check)
		if c.Func == nil {
			return dm, mc.scope.errorf(ValueError, c.Path, annots(a.Kind()), "check without a clause generator")
		}
		paths, err := mc.resolve(dm, c)
		if err != nil {
			return dm, err
		}
		dm, _ = dm.Update(paths, func(_ Path, d *FieldDescriptor) error {
			d.Constraints.Custom = append(d.Constraints.Custom, c.Func)
			return nil
		})
	}
	return dm, nil
}

// signedness lowers IsPositive, IsNegative and IsNonZero into a strict bound
// at zero or a disallowed zero.
func (mc *memberContext) signedness(p Path, d *FieldDescriptor, a annotation.Annotation) error {
	k, st := a.Kind(), d.StoredType()
	switch {
	case !st.Numeric():
		return mc.scope.errorf(InapplicableConstraint, p, annots(k), "field of type %v is not numeric", st)
	case k == annotation.KindIsNegative && st.Unsigned():
		return mc.scope.errorf(InapplicableConstraint, p, annots(k), "field of type %v cannot be negative", st)
	}
	b := &d.Constraints
	sign := signs[k]
	switch b.Sign {
	case SignNone:
	case sign:
		return mc.scope.errorf(DuplicateAnnotation, p, annots(k), "sign constrained twice")
	default:
		return mc.scope.errorf(MutualExclusion, p, annots(signKinds[b.Sign], k), "sign constraints are mutually exclusive")
	}
	zero, _ := st.Zero()
	switch sign {
	case SignPositive:
		lower := field.MaxLowerBound(b.Lower, field.ExclusiveBound(zero))
		b.Lower = &lower
	case SignNegative:
		upper := field.MinUpperBound(b.Upper, field.ExclusiveBound(zero))
		b.Upper = &upper
	case SignNonZero:
		b.Disallowed = b.Disallowed.Add(zero)
	}
	b.Sign = sign
	return nil
}

// comparison merges a comparison against an anchor into the bounds or the
// disallowed values of the field.
func (mc *memberContext) comparison(p Path, d *FieldDescriptor, c annotation.Compare) error {
	st := d.StoredType()
	if c.Op != schema.OpNEQ && !st.Ordered() {
		return mc.scope.errorf(InapplicableConstraint, p, annots(c.Kind()), "field of type %v is not ordered", st)
	}
	anchor, err := field.Parse(st, c.Anchor)
	switch {
	case err != nil:
		return mc.scope.errorf(ValueError, p, annots(c.Kind()), "anchor: %v", err)
	case anchor.IsNull():
		return mc.scope.errorf(ValueError, p, annots(c.Kind()), "anchor cannot be null")
	}
	b := &d.Constraints
	switch c.Op {
	case schema.OpEQ:
		lower := field.MaxLowerBound(b.Lower, field.InclusiveBound(anchor))
		upper := field.MinUpperBound(b.Upper, field.InclusiveBound(anchor))
		b.Lower, b.Upper = &lower, &upper
	case schema.OpNEQ:
		b.Disallowed = b.Disallowed.Add(anchor)
	case schema.OpLT, schema.OpLTE:
		if lowest, ok := st.Min(); ok && c.Op == schema.OpLT && field.Equal(anchor, lowest) {
			return mc.scope.errorf(UnsatisfiableConstraint, p, annots(c.Kind()), "no %v value is less than %v", st, anchor)
		}
		upper := field.MinUpperBound(b.Upper, field.Bound{Value: anchor, Inclusive: c.Op == schema.OpLTE})
		b.Upper = &upper
	case schema.OpGT, schema.OpGTE:
		if highest, ok := st.Max(); ok && c.Op == schema.OpGT && field.Equal(anchor, highest) {
			return mc.scope.errorf(UnsatisfiableConstraint, p, annots(c.Kind()), "no %v value is greater than %v", st, anchor)
		}
		lower := field.MaxLowerBound(b.Lower, field.Bound{Value: anchor, Inclusive: c.Op == schema.OpGTE})
		b.Lower = &lower
	default:
		return mc.scope.errorf(ValueError, p, annots(c.Kind()), "unknown operator %v", c.Op)
	}
	return nil
}

// length merges a length constraint into the length bounds of the field.
func (mc *memberContext) length(p Path, d *FieldDescriptor, a annotation.Annotation) error {
	k, st := a.Kind(), d.StoredType()
	if !st.Textual() {
		return mc.scope.errorf(InapplicableConstraint, p, annots(k), "field of type %v has no length", st)
	}
	var lo, hi *int
	switch a := a.(type) {
	case annotation.IsNonEmpty:
		one := 1
		lo = &one
	case annotation.LengthIsAtLeast:
		lo = &a.Min
	case annotation.LengthIsAtMost:
		hi = &a.Max
	case annotation.LengthIsBetween:
		lo, hi = &a.Min, &a.Max
	}
	switch {
	case lo != nil && *lo < 0, hi != nil && *hi < 0:
		return mc.scope.errorf(ValueError, p, annots(k), "length bounds must not be negative")
	case lo != nil && hi != nil && *lo > *hi:
		return mc.scope.errorf(ValueError, p, annots(k), "minimum length %d exceeds maximum length %d", *lo, *hi)
	}
	b := &d.Constraints
	if lo != nil {
		minLen := field.MaxLowerBound(b.MinLength, field.InclusiveBound(lengthValue(*lo)))
		b.MinLength = &minLen
	}
	if hi != nil {
		maxLen := field.MinUpperBound(b.MaxLength, field.InclusiveBound(lengthValue(*hi)))
		b.MaxLength = &maxLen
	}
	return nil
}

// inclusion merges IsOneOf and IsNotOneOf into the allowed and disallowed
// values of the field. Repeated IsOneOf annotations intersect.
func (mc *memberContext) inclusion(p Path, d *FieldDescriptor, a annotation.Annotation) error {
	var raw []any
	switch a := a.(type) {
	case annotation.IsOneOf:
		raw = a.Values
	case annotation.IsNotOneOf:
		raw = a.Values
	}
	if len(raw) == 0 {
		return mc.scope.errorf(ValueError, p, annots(a.Kind()), "value set is empty")
	}
	st := d.StoredType()
	values := make(ValueSet, 0, len(raw))
	for _, r := range raw {
		v, err := field.Parse(st, r)
		switch {
		case err != nil:
			return mc.scope.errorf(ValueError, p, annots(a.Kind()), "%v", err)
		case v.IsNull():
			return mc.scope.errorf(ValueError, p, annots(a.Kind()), "value set cannot hold null")
		}
		values = values.Add(v)
	}
	b := &d.Constraints
	if a.Kind() == annotation.KindIsNotOneOf {
		b.Disallowed = b.Disallowed.Add(values...)
		return nil
	}
	if b.Allowed != nil {
		values = b.Allowed.Intersect(values)
	}
	b.Allowed = &values
	return nil
}
