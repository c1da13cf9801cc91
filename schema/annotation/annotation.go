package annotation

import (
	"fmt"

	"github.com/syssam/tabula/schema"
	"github.com/syssam/tabula/schema/field"
)

// Kind identifies the variant of an annotation.
type Kind uint8

// Member annotation kinds.
const (
	KindInvalid Kind = iota
	KindRename
	KindNullable
	KindNonNullable
	KindColumn
	KindConvert
	KindDefault
	KindPrimaryKey
	KindUnique
	KindIsPositive
	KindIsNegative
	KindIsNonZero
	KindCompare
	KindIsNonEmpty
	KindLengthIsAtLeast
	KindLengthIsAtMost
	KindLengthIsBetween
	KindIsOneOf
	KindIsNotOneOf
	KindCheck

	// Type annotation kinds.
	KindTable
	KindNamedPrimaryKey
	KindComplexCheck

	endKinds
)

var kindNames = [...]string{
	KindInvalid:         "Invalid",
	KindRename:          "Name",
	KindNullable:        "Nullable",
	KindNonNullable:     "NonNullable",
	KindColumn:          "Column",
	KindConvert:         "DataConverter",
	KindDefault:         "Default",
	KindPrimaryKey:      "PrimaryKey",
	KindUnique:          "Unique",
	KindIsPositive:      "Check.IsPositive",
	KindIsNegative:      "Check.IsNegative",
	KindIsNonZero:       "Check.IsNonZero",
	KindCompare:         "Check.Comparison",
	KindIsNonEmpty:      "Check.IsNonEmpty",
	KindLengthIsAtLeast: "Check.LengthIsAtLeast",
	KindLengthIsAtMost:  "Check.LengthIsAtMost",
	KindLengthIsBetween: "Check.LengthIsBetween",
	KindIsOneOf:         "Check.IsOneOf",
	KindIsNotOneOf:      "Check.IsNotOneOf",
	KindCheck:           "Check",
	KindTable:           "Table",
	KindNamedPrimaryKey: "NamedPrimaryKey",
	KindComplexCheck:    "ComplexCheck",
}

// String returns the display name of the kind.
func (k Kind) String() string {
	if k < endKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// TypeLevel reports if annotations of this kind are attached to a type
// rather than to one of its members.
func (k Kind) TypeLevel() bool { return k >= KindTable && k < endKinds }

// Signedness reports if the kind constrains the sign of a numeric field.
func (k Kind) Signedness() bool { return k >= KindIsPositive && k <= KindIsNonZero }

// Length reports if the kind constrains the length of a textual field.
func (k Kind) Length() bool { return k >= KindIsNonEmpty && k <= KindLengthIsBetween }

// Annotation is implemented by every annotation variant.
type Annotation interface {
	// Kind returns the variant tag.
	Kind() Kind
	// Scope returns the nested path the annotation applies to. The empty
	// path denotes the annotated member itself.
	Scope() string
}

type (
	// CheckFunc builds a CHECK clause over the concrete field of a member.
	CheckFunc func(f *schema.Field) (schema.Clause, error)

	// ComplexCheckFunc builds a CHECK clause over several fields, passed in
	// the order they were named.
	ComplexCheckFunc func(fields []*schema.Field) (schema.Clause, error)
)

// Member annotations.
type (
	// Rename overrides the name of a member or of a nested field.
	Rename struct {
		Path string
		Name string
	}

	// Nullable forces the annotated fields to accept NULL.
	Nullable struct{ Path string }

	// NonNullable forces the annotated fields to reject NULL.
	NonNullable struct{ Path string }

	// Column pins a member to a zero-based column index, relative to the
	// enclosing type.
	Column struct{ Index int }

	// Convert stores a member through a data converter.
	Convert struct{ Converter field.Converter }

	// Default declares the default value of a field. The value is given in
	// the member's source representation.
	Default struct {
		Path  string
		Value any
	}

	// PrimaryKey opts a field into the primary key of its table.
	PrimaryKey struct{ Path string }

	// Unique adds a field to a candidate key. Fields sharing a name form a
	// single composite key; an empty name declares an anonymous key of its
	// own.
	Unique struct {
		Path string
		Name string
	}

	// IsPositive requires a numeric field to be strictly greater than zero.
	IsPositive struct{ Path string }

	// IsNegative requires a numeric field to be strictly less than zero.
	IsNegative struct{ Path string }

	// IsNonZero requires a numeric field to differ from zero.
	IsNonZero struct{ Path string }

	// Compare requires a field to compare to an anchor value with the given
	// operator.
	Compare struct {
		Path   string
		Op     schema.Op
		Anchor any
	}

	// IsNonEmpty requires a textual field to hold at least one character.
	IsNonEmpty struct{ Path string }

	// LengthIsAtLeast bounds the length of a textual field from below.
	LengthIsAtLeast struct {
		Path string
		Min  int
	}

	// LengthIsAtMost bounds the length of a textual field from above.
	LengthIsAtMost struct {
		Path string
		Max  int
	}

	// LengthIsBetween bounds the length of a textual field on both sides,
	// inclusively.
	LengthIsBetween struct {
		Path     string
		Min, Max int
	}

	// IsOneOf restricts a field to a set of values.
	IsOneOf struct {
		Path   string
		Values []any
	}

	// IsNotOneOf excludes a set of values from a field.
	IsNotOneOf struct {
		Path   string
		Values []any
	}

	// Check attaches a user-defined CHECK clause to a field.
	Check struct {
		Path string
		Func CheckFunc
	}
)

// Type annotations.
type (
	// Table overrides the table name of an entity.
	Table struct{ Name string }

	// NamedPrimaryKey overrides the name of the primary key.
	NamedPrimaryKey struct{ Name string }

	// ComplexCheck attaches a user-defined CHECK clause spanning several
	// fields, named by their final field names.
	ComplexCheck struct {
		Fields []string
		Func   ComplexCheckFunc
	}
)

func (Rename) Kind() Kind          { return KindRename }
func (Nullable) Kind() Kind        { return KindNullable }
func (NonNullable) Kind() Kind     { return KindNonNullable }
func (Column) Kind() Kind          { return KindColumn }
func (Convert) Kind() Kind         { return KindConvert }
func (Default) Kind() Kind         { return KindDefault }
func (PrimaryKey) Kind() Kind      { return KindPrimaryKey }
func (Unique) Kind() Kind          { return KindUnique }
func (IsPositive) Kind() Kind      { return KindIsPositive }
func (IsNegative) Kind() Kind      { return KindIsNegative }
func (IsNonZero) Kind() Kind       { return KindIsNonZero }
func (Compare) Kind() Kind         { return KindCompare }
func (IsNonEmpty) Kind() Kind      { return KindIsNonEmpty }
func (LengthIsAtLeast) Kind() Kind { return KindLengthIsAtLeast }
func (LengthIsAtMost) Kind() Kind  { return KindLengthIsAtMost }
func (LengthIsBetween) Kind() Kind { return KindLengthIsBetween }
func (IsOneOf) Kind() Kind         { return KindIsOneOf }
func (IsNotOneOf) Kind() Kind      { return KindIsNotOneOf }
func (Check) Kind() Kind           { return KindCheck }
func (Table) Kind() Kind           { return KindTable }
func (NamedPrimaryKey) Kind() Kind { return KindNamedPrimaryKey }
func (ComplexCheck) Kind() Kind    { return KindComplexCheck }

func (a Rename) Scope() string          { return a.Path }
func (a Nullable) Scope() string        { return a.Path }
func (a NonNullable) Scope() string     { return a.Path }
func (Column) Scope() string            { return "" }
func (Convert) Scope() string           { return "" }
func (a Default) Scope() string         { return a.Path }
func (a PrimaryKey) Scope() string      { return a.Path }
func (a Unique) Scope() string          { return a.Path }
func (a IsPositive) Scope() string      { return a.Path }
func (a IsNegative) Scope() string      { return a.Path }
func (a IsNonZero) Scope() string       { return a.Path }
func (a Compare) Scope() string         { return a.Path }
func (a IsNonEmpty) Scope() string      { return a.Path }
func (a LengthIsAtLeast) Scope() string { return a.Path }
func (a LengthIsAtMost) Scope() string  { return a.Path }
func (a LengthIsBetween) Scope() string { return a.Path }
func (a IsOneOf) Scope() string         { return a.Path }
func (a IsNotOneOf) Scope() string      { return a.Path }
func (a Check) Scope() string           { return a.Path }
func (Table) Scope() string             { return "" }
func (NamedPrimaryKey) Scope() string   { return "" }
func (ComplexCheck) Scope() string      { return "" }

// Filter returns the annotations of the given kinds, in declaration order.
func Filter(annotations []Annotation, kinds ...Kind) []Annotation {
	var out []Annotation
	for _, a := range annotations {
		for _, k := range kinds {
			if a.Kind() == k {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

// Names returns the display names of the given kinds.
func Names(kinds ...Kind) []string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return names
}

var (
	_ Annotation = Rename{}
	_ Annotation = Nullable{}
	_ Annotation = NonNullable{}
	_ Annotation = Column{}
	_ Annotation = Convert{}
	_ Annotation = Default{}
	_ Annotation = PrimaryKey{}
	_ Annotation = Unique{}
	_ Annotation = IsPositive{}
	_ Annotation = IsNegative{}
	_ Annotation = IsNonZero{}
	_ Annotation = Compare{}
	_ Annotation = IsNonEmpty{}
	_ Annotation = LengthIsAtLeast{}
	_ Annotation = LengthIsAtMost{}
	_ Annotation = LengthIsBetween{}
	_ Annotation = IsOneOf{}
	_ Annotation = IsNotOneOf{}
	_ Annotation = Check{}
	_ Annotation = Table{}
	_ Annotation = NamedPrimaryKey{}
	_ Annotation = ComplexCheck{}
)
