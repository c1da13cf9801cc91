package schema

import (
	"slices"
	"strings"

	"github.com/syssam/tabula/schema/field"
)

// Action defines the referential action of a foreign key.
type Action string

// Referential actions.
const (
	Cascade    Action = "CASCADE"
	SetNull    Action = "SET NULL"
	Restrict   Action = "RESTRICT"
	SetDefault Action = "SET DEFAULT"
	NoAction   Action = "NO ACTION"
)

// The following types describe the translated relational schema. They are
// built once by the translator and must not be modified afterwards.
type (
	// Table is a named collection of fields plus its keys and constraints.
	Table struct {
		Name          string
		Fields        []*Field
		PrimaryKey    *PrimaryKey
		CandidateKeys []*CandidateKey
		ForeignKeys   []*ForeignKey
		Checks        []*CheckConstraint
	}

	// Field is the final definition of one stored column.
	Field struct {
		// Name is the column name.
		Name string
		// Type is the stored type of the column.
		Type field.Type
		// Nullable reports if the column accepts NULL.
		Nullable bool
		// Default holds the column default in its stored representation,
		// or nil if the field has no default.
		Default *field.Value
		// Column is the zero-based position of the field in the table.
		Column int
	}

	// PrimaryKey is the field set uniquely identifying the rows of a table.
	PrimaryKey struct {
		Name   string
		Fields []*Field
	}

	// CandidateKey is an alternate uniqueness constraint. An empty name
	// marks an anonymous key.
	CandidateKey struct {
		Name   string
		Fields []*Field
	}

	// ForeignKey references the primary key of another table.
	ForeignKey struct {
		Name      string
		Fields    []*Field
		RefTable  *Table
		RefFields []*Field
		OnDelete  Action
		OnUpdate  Action
	}

	// CheckConstraint is a boolean clause evaluated per row.
	CheckConstraint struct {
		Name   string
		Clause Clause
	}
)

// Field returns the field with the given name.
func (t *Table) Field(name string) (*Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// FieldNames returns the names of the table fields in column order.
func (t *Table) FieldNames() []string {
	return Names(t.Fields)
}

// String implements the fmt.Stringer interface.
func (t *Table) String() string { return t.Name }

// Names returns the names of the given fields.
func Names(fields []*Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// SameFields reports if two field lists hold the same fields, regardless of
// their order.
func SameFields(a, b []*Field) bool {
	if len(a) != len(b) {
		return false
	}
	for _, f := range a {
		if !slices.Contains(b, f) {
			return false
		}
	}
	return true
}

// Anonymous reports if the candidate key was declared without a name.
func (k *CandidateKey) Anonymous() bool { return k.Name == "" }

// String implements the fmt.Stringer interface.
func (k *CandidateKey) String() string {
	name := k.Name
	if name == "" {
		name = "<anonymous>"
	}
	return name + "(" + strings.Join(Names(k.Fields), ", ") + ")"
}

// String implements the fmt.Stringer interface.
func (k *PrimaryKey) String() string {
	return k.Name + "(" + strings.Join(Names(k.Fields), ", ") + ")"
}
