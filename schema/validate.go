package schema

import (
	"fmt"
	"strings"
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Table   string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// ValidationResult holds the results of schema validation.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Err returns the validation errors joined into a single error, or nil.
func (r *ValidationResult) Err() error {
	if !r.HasErrors() {
		return nil
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("schema: %s", strings.Join(msgs, "; "))
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	if len(r.Errors) > 0 {
		sb.WriteString("Errors:\n")
		for _, e := range r.Errors {
			sb.WriteString("  - ")
			sb.WriteString(e.Error())
			sb.WriteString("\n")
		}
	}
	if len(r.Warnings) > 0 {
		sb.WriteString("Warnings:\n")
		for _, w := range r.Warnings {
			sb.WriteString("  - ")
			sb.WriteString(w.Error())
			sb.WriteString("\n")
		}
	}
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

// ValidateTable checks the structural invariants of a single translated
// table: unique field names and positions, a non-nullable primary key that
// is distinct from every candidate key, and keys that only reference fields
// of the table.
func ValidateTable(t *Table) *ValidationResult {
	result := &ValidationResult{}
	fail := func(field, format string, args ...any) {
		result.Errors = append(result.Errors, &ValidationError{Table: t.Name, Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Check for duplicate field names and columns.
	owned := make(map[*Field]bool, len(t.Fields))
	names := make(map[string]bool, len(t.Fields))
	for i, f := range t.Fields {
		if names[f.Name] {
			fail(f.Name, "duplicate field name")
		}
		names[f.Name] = true
		owned[f] = true
		if f.Column != i {
			fail(f.Name, "field at position %d claims column %d", i, f.Column)
		}
	}
	ownedAll := func(what string, fields []*Field) {
		for _, f := range fields {
			if !owned[f] {
				fail("", "%s references field %q that is not part of the table", what, f.Name)
			}
		}
	}

	// Check the primary key.
	if t.PrimaryKey == nil || len(t.PrimaryKey.Fields) == 0 {
		result.Warnings = append(result.Warnings, &ValidationError{
			Table:   t.Name,
			Message: "table has no primary key",
		})
	} else {
		ownedAll("primary key", t.PrimaryKey.Fields)
		for _, f := range t.PrimaryKey.Fields {
			if f.Nullable {
				fail(f.Name, "nullable field in primary key %q", t.PrimaryKey.Name)
			}
		}
	}

	// Check candidate keys.
	keyNames := make(map[string]bool)
	for i, k := range t.CandidateKeys {
		ownedAll("candidate key "+k.String(), k.Fields)
		if k.Name != "" {
			if keyNames[k.Name] {
				fail("", "duplicate candidate key name %q", k.Name)
			}
			keyNames[k.Name] = true
		}
		if pk := t.PrimaryKey; pk != nil && k.Name != "" && k.Name == pk.Name {
			fail("", "candidate key %q has the name of the primary key", k.Name)
		}
		for _, o := range t.CandidateKeys[i+1:] {
			if SameFields(k.Fields, o.Fields) {
				fail("", "candidate keys %s and %s have identical fields", k, o)
			}
		}
	}

	// Check foreign keys.
	for _, fk := range t.ForeignKeys {
		ownedAll("foreign key "+fk.Name, fk.Fields)
		if fk.RefTable == nil {
			fail("", "foreign key %q has no referenced table", fk.Name)
			continue
		}
		if len(fk.Fields) != len(fk.RefFields) {
			fail("", "foreign key %q pairs %d fields with %d referenced fields", fk.Name, len(fk.Fields), len(fk.RefFields))
		}
	}

	// Check constraints must only reference table fields.
	for _, c := range t.Checks {
		ownedAll("check "+c.Name, c.Clause.Fields())
	}
	return result
}

// ValidateSchema validates all tables in a schema.
func ValidateSchema(tables []*Table) *ValidationResult {
	result := &ValidationResult{}

	tableNames := make(map[string]bool)
	for _, t := range tables {
		// Check for duplicate table names
		if tableNames[t.Name] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Message: "duplicate table name",
			})
		}
		tableNames[t.Name] = true

		// Validate individual table
		tableResult := ValidateTable(t)
		result.Errors = append(result.Errors, tableResult.Errors...)
		result.Warnings = append(result.Warnings, tableResult.Warnings...)
	}

	// Validate foreign key references
	for _, t := range tables {
		for _, fk := range t.ForeignKeys {
			if fk.RefTable != nil && !tableNames[fk.RefTable.Name] {
				result.Errors = append(result.Errors, &ValidationError{
					Table:   t.Name,
					Message: fmt.Sprintf("foreign key references non-existent table %q", fk.RefTable.Name),
				})
			}
		}
	}

	return result
}
