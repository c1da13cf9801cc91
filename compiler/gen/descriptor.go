package gen

import (
	"iter"
	"maps"
	"slices"
	"strings"

	"github.com/syssam/tabula/compiler/load"
	"github.com/syssam/tabula/schema"
	"github.com/syssam/tabula/schema/annotation"
	"github.com/syssam/tabula/schema/field"
)

// Path addresses a field descriptor relative to its member. Segments are
// the declared (not renamed) member names, joined by dots. The empty path
// denotes the member itself.
type Path = string

// FieldDescriptor is the intermediate schema record of one field. Passes
// never modify a descriptor in place; they store an updated copy.
type FieldDescriptor struct {
	// Path is the path of the field within its owning type, set once the
	// member pipeline completes.
	Path Path
	// Name holds the name segments of the field, starting with the member.
	Name []string
	// Nullable reports if the field accepts NULL.
	Nullable bool
	// Column is the pinned absolute column of the field, if any.
	Column *int
	// RelativeColumn is the offset of the field within its member.
	RelativeColumn int
	// SourceType is the declared type of the field.
	SourceType field.Type
	// Enum lists the enumerators of enumeration fields.
	Enum *load.EnumInfo
	// Converter maps SourceType to the stored type.
	Converter field.Converter
	// Default is the raw default value, in SourceType.
	Default *field.Value
	// PrimaryKey reports if the field opted into the primary key.
	PrimaryKey bool
	// CandidateKeys holds the names of the candidate keys of the field.
	CandidateKeys []string
	// Reference is set for fields copied from the primary key of another
	// entity.
	Reference *Reference
	// Constraints holds the accumulated value constraints, in the stored
	// type.
	Constraints ConstraintBucket
}

// Reference links a field to the primary-key field of another entity.
type Reference struct {
	// Member is the referencing member.
	Member string
	// Entity is the referenced type.
	Entity load.TypeInfo
	// Table is the referenced table.
	Table *schema.Table
	// Field is the referenced primary-key field.
	Field *schema.Field
}

// StoredType returns the type of the field after conversion.
func (d FieldDescriptor) StoredType() field.Type {
	return d.Converter.To()
}

// clone returns a deep copy of the descriptor.
func (d FieldDescriptor) clone() FieldDescriptor {
	d.Name = slices.Clone(d.Name)
	d.CandidateKeys = slices.Clone(d.CandidateKeys)
	if d.Column != nil {
		c := *d.Column
		d.Column = &c
	}
	if d.Default != nil {
		v := *d.Default
		d.Default = &v
	}
	d.Constraints = d.Constraints.clone()
	return d
}

// DescriptorMap is an immutable, insertion-ordered map from paths to field
// descriptors. Set returns a new map and leaves the receiver unchanged.
type DescriptorMap struct {
	keys   []Path
	values map[Path]FieldDescriptor
}

// Len returns the number of descriptors.
func (m DescriptorMap) Len() int { return len(m.keys) }

// Keys returns the paths in insertion order.
func (m DescriptorMap) Keys() []Path { return slices.Clone(m.keys) }

// Get returns a copy of the descriptor at path.
func (m DescriptorMap) Get(p Path) (FieldDescriptor, bool) {
	d, ok := m.values[p]
	if !ok {
		return FieldDescriptor{}, false
	}
	return d.clone(), true
}

// Set returns a map holding d at path p.
func (m DescriptorMap) Set(p Path, d FieldDescriptor) DescriptorMap {
	values := maps.Clone(m.values)
	if values == nil {
		values = make(map[Path]FieldDescriptor)
	}
	keys := m.keys
	if _, ok := values[p]; !ok {
		keys = append(slices.Clone(m.keys), p)
	}
	values[p] = d
	return DescriptorMap{keys: keys, values: values}
}

// Update returns a map where fn was applied to a copy of each descriptor at
// the given paths. It stops at the first error.
func (m DescriptorMap) Update(paths []Path, fn func(Path, *FieldDescriptor) error) (DescriptorMap, error) {
	for _, p := range paths {
		d, ok := m.Get(p)
		if !ok {
			continue
		}
		if err := fn(p, &d); err != nil {
			return m, err
		}
		m = m.Set(p, d)
	}
	return m, nil
}

// All iterates over the descriptors in insertion order.
func (m DescriptorMap) All() iter.Seq2[Path, FieldDescriptor] {
	return func(yield func(Path, FieldDescriptor) bool) {
		for _, k := range m.keys {
			if !yield(k, m.values[k].clone()) {
				return
			}
		}
	}
}

// Resolve returns the paths denoted by p: every path when p is empty, or p
// itself and the paths nested below it.
func (m DescriptorMap) Resolve(p Path) []Path {
	if p == "" {
		return m.Keys()
	}
	var paths []Path
	for _, k := range m.keys {
		if k == p || strings.HasPrefix(k, p+".") {
			paths = append(paths, k)
		}
	}
	return paths
}

// depth returns the index of the name segment addressed by p.
func depth(p Path) int {
	if p == "" {
		return 0
	}
	return strings.Count(p, ".") + 1
}

// joinPath prefixes a relative path with a member name.
func joinPath(member string, p Path) Path {
	if p == "" {
		return member
	}
	return member + "." + p
}

// TypeDescriptor is the column-ordered translation of a type, before its
// fields are materialized.
type TypeDescriptor struct {
	// Name is the source type name.
	Name string
	// Fields holds the descriptors in column order. Column is set on every
	// field.
	Fields []FieldDescriptor
	// Checks holds the complex checks, addressed by field path.
	Checks []DeferredCheck
}

// DeferredCheck is a complex CHECK generator waiting for its fields.
type DeferredCheck struct {
	Paths []Path
	Func  annotation.ComplexCheckFunc
}

// cloneChecks copies checks along with their path slices.
func cloneChecks(checks []DeferredCheck) []DeferredCheck {
	if checks == nil {
		return nil
	}
	out := make([]DeferredCheck, len(checks))
	for i, c := range checks {
		out[i] = DeferredCheck{Paths: slices.Clone(c.Paths), Func: c.Func}
	}
	return out
}

// Field returns the descriptor at the given path.
func (t *TypeDescriptor) Field(p Path) (FieldDescriptor, bool) {
	for _, d := range t.Fields {
		if d.Path == p {
			return d.clone(), true
		}
	}
	return FieldDescriptor{}, false
}
