// Package annotation defines the declarative modifiers that shape how a
// source type is translated into a table.
//
// Annotations are plain struct literals. Member annotations are attached to
// a member and may target a nested field through a dotted Path; the empty
// path targets the member itself:
//
//	load.Entity("User").
//	    Field("ID", load.Scalar(field.TypeInt64), annotation.PrimaryKey{}).
//	    Field("Home", load.Composite(address),
//	        annotation.Nullable{},
//	        annotation.Rename{Path: "City", Name: "Town"},
//	        annotation.IsNonEmpty{Path: "Street"},
//	    )
//
// Type annotations (Table, NamedPrimaryKey, ComplexCheck) are attached to the
// entity itself.
//
// Every variant reports its Kind; Kind.String returns the display name used
// in diagnostics.
package annotation
