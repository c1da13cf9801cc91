package load

import (
	"fmt"
	"slices"

	"github.com/syssam/tabula/schema/annotation"
	"github.com/syssam/tabula/schema/field"
)

// Category classifies a source type.
type Category uint8

// Type categories.
const (
	CategoryInvalid Category = iota
	// CategoryPrimitive is a built-in scalar such as an integer or a string.
	CategoryPrimitive
	// CategoryEnum is an enumeration.
	CategoryEnum
	// CategoryStruct is a value-semantics aggregate. Members of this
	// category are flattened into the enclosing table.
	CategoryStruct
	// CategoryClass is an entity with identity. Entities translate into
	// tables and members of this category are references.
	CategoryClass
	// CategoryInterface is an abstract contract without storage.
	CategoryInterface
)

var categoryNames = [...]string{
	CategoryInvalid:   "invalid",
	CategoryPrimitive: "primitive",
	CategoryEnum:      "enum",
	CategoryStruct:    "struct",
	CategoryClass:     "entity",
	CategoryInterface: "interface",
}

// String implements the fmt.Stringer interface.
func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", c)
}

// TypeInfo describes a source type as enumerated by an introspection
// adapter. Implementations must be comparable; the translator keys its
// caches by TypeInfo identity.
type TypeInfo interface {
	Name() string
	Category() Category
	// Generic reports if the type is an open or closed generic type.
	Generic() bool
	Abstract() bool
	// Members returns the members in declaration order.
	Members() []MemberInfo
	// Annotations returns the type-level annotations.
	Annotations() []annotation.Annotation
}

// MemberInfo describes one member of a source type.
type MemberInfo interface {
	Name() string
	ValueType() ValueType
	// Annotations returns the member annotations in declaration order.
	Annotations() []annotation.Annotation
}

// EnumInfo describes an enumeration type.
type EnumInfo struct {
	Name   string
	Values []string
}

// ValueType is the declared type of a member.
type ValueType struct {
	// Type is the scalar type of the member. It is TypeEnum for
	// enumerations and TypeInvalid for composite members.
	Type field.Type
	// Nullable reports if the member is declared through a nullable wrapper.
	Nullable bool
	// Enum is set for enumeration members.
	Enum *EnumInfo
	// Composite is set for aggregate and reference members.
	Composite TypeInfo
}

// Scalar returns the value type of a non-nullable scalar member.
func Scalar(t field.Type) ValueType { return ValueType{Type: t} }

// Enum returns the value type of a non-nullable enumeration member.
func Enum(e *EnumInfo) ValueType { return ValueType{Type: field.TypeEnum, Enum: e} }

// Composite returns the value type of an aggregate or reference member.
func Composite(t TypeInfo) ValueType { return ValueType{Composite: t} }

// Null returns a copy of the value type declared through a nullable
// wrapper.
func (v ValueType) Null() ValueType {
	v.Nullable = true
	return v
}

// IsScalar reports if the value type is a scalar or an enumeration.
func (v ValueType) IsScalar() bool { return v.Composite == nil }

// IsAggregate reports if the value type is a value-semantics aggregate.
func (v ValueType) IsAggregate() bool {
	return v.Composite != nil && v.Composite.Category() == CategoryStruct
}

// IsReference reports if the value type refers to another entity.
func (v ValueType) IsReference() bool {
	return v.Composite != nil && v.Composite.Category() == CategoryClass
}

// String implements the fmt.Stringer interface.
func (v ValueType) String() string {
	var s string
	switch {
	case v.Composite != nil:
		s = v.Composite.Name()
	case v.Enum != nil:
		s = v.Enum.Name
	default:
		s = v.Type.String()
	}
	if v.Nullable {
		s += "?"
	}
	return s
}

// Type is the in-memory implementation of TypeInfo. Types are assembled
// with the chaining methods below and may reference each other cyclically.
type Type struct {
	name        string
	category    Category
	generic     bool
	abstract    bool
	members     []MemberInfo
	annotations []annotation.Annotation
}

// NewType returns an empty type of the given category.
func NewType(name string, c Category) *Type {
	return &Type{name: name, category: c}
}

// Entity returns an empty entity type.
func Entity(name string) *Type { return NewType(name, CategoryClass) }

// Aggregate returns an empty value-semantics aggregate type.
func Aggregate(name string) *Type { return NewType(name, CategoryStruct) }

// Field appends a member to the type.
func (t *Type) Field(name string, vt ValueType, annotations ...annotation.Annotation) *Type {
	t.members = append(t.members, &Member{name: name, typ: vt, annotations: annotations})
	return t
}

// Annotate appends type-level annotations.
func (t *Type) Annotate(annotations ...annotation.Annotation) *Type {
	t.annotations = append(t.annotations, annotations...)
	return t
}

// SetGeneric marks the type as generic.
func (t *Type) SetGeneric() *Type {
	t.generic = true
	return t
}

// SetAbstract marks the type as abstract.
func (t *Type) SetAbstract() *Type {
	t.abstract = true
	return t
}

func (t *Type) Name() string                         { return t.name }
func (t *Type) Category() Category                   { return t.category }
func (t *Type) Generic() bool                        { return t.generic }
func (t *Type) Abstract() bool                       { return t.abstract }
func (t *Type) Members() []MemberInfo                { return slices.Clone(t.members) }
func (t *Type) Annotations() []annotation.Annotation { return slices.Clone(t.annotations) }

// String implements the fmt.Stringer interface.
func (t *Type) String() string { return t.name }

// Member is the in-memory implementation of MemberInfo.
type Member struct {
	name        string
	typ         ValueType
	annotations []annotation.Annotation
}

// NewMember returns a member with the given value type and annotations.
func NewMember(name string, vt ValueType, annotations ...annotation.Annotation) *Member {
	return &Member{name: name, typ: vt, annotations: annotations}
}

func (m *Member) Name() string                         { return m.name }
func (m *Member) ValueType() ValueType                 { return m.typ }
func (m *Member) Annotations() []annotation.Annotation { return slices.Clone(m.annotations) }

var (
	_ TypeInfo   = (*Type)(nil)
	_ MemberInfo = (*Member)(nil)
)
