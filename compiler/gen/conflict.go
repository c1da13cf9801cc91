package gen

import (
	"github.com/syssam/tabula/schema/annotation"
	"github.com/syssam/tabula/schema/field"
)

// resolveConflicts checks that the merged constraints of a field admit at
// least one value. Allowed and restricted value sets are narrowed to the
// values that survive every other constraint.
func (mc *memberContext) resolveConflicts(p Path, d *FieldDescriptor) error {
	b := &d.Constraints
	if !field.IsValidInterval(b.Lower, b.Upper) {
		return mc.scope.errorf(ConflictingConstraints, p, annots(annotation.KindCompare), "value interval %s is empty", field.FormatInterval(b.Lower, b.Upper))
	}
	if !field.IsValidInterval(b.MinLength, b.MaxLength) {
		return mc.scope.errorf(ConflictingConstraints, p, annots(annotation.KindLengthIsAtLeast, annotation.KindLengthIsAtMost), "length interval %s is empty", field.FormatInterval(b.MinLength, b.MaxLength))
	}
	if b.Allowed != nil {
		kept := survivors(*b.Allowed, *b)
		if len(kept) == 0 {
			return mc.scope.errorf(ConflictingConstraints, p, annots(annotation.KindIsOneOf), "no value of %s satisfies the other constraints", b.Allowed)
		}
		b.Allowed = &kept
	}
	if b.Restricted != nil {
		kept := survivors(*b.Restricted, *b)
		if len(kept) == 0 {
			return mc.scope.errorf(ConflictingConstraints, p, nil, "no value of %s satisfies the constraints", b.Restricted)
		}
		b.Restricted = &kept
	}
	st := d.StoredType()
	if st == field.TypeBool && b.Disallowed.Contains(field.Bool(true)) && b.Disallowed.Contains(field.Bool(false)) {
		return mc.scope.errorf(ConflictingConstraints, p, annots(annotation.KindCompare), "both boolean values are disallowed")
	}
	if b.Lower != nil && b.Upper != nil && field.Equal(b.Lower.Value, b.Upper.Value) && b.Disallowed.Contains(b.Lower.Value) {
		return mc.scope.errorf(ConflictingConstraints, p, annots(annotation.KindCompare), "the only admitted value %v is disallowed", b.Lower.Value)
	}
	return nil
}

// survivors returns the values of s admitted by the bucket.
func survivors(s ValueSet, b ConstraintBucket) ValueSet {
	out := ValueSet{}
	for _, v := range s {
		if b.Admits(v) {
			out = append(out, v)
		}
	}
	return out
}

// checkDefault checks that the converted default value of a field satisfies
// its constraints.
func (mc *memberContext) checkDefault(p Path, d *FieldDescriptor) error {
	if d.Default == nil || d.Default.IsNull() {
		return nil
	}
	v, err := d.Converter.Convert(*d.Default)
	if err != nil {
		return mc.scope.errorf(ValueError, p, annots(annotation.KindDefault), "default cannot be converted: %v", err)
	}
	if !d.Constraints.Admits(v) {
		return mc.scope.errorf(DefaultViolation, p, annots(annotation.KindDefault), "default %v violates the constraints of the field", v)
	}
	return nil
}
