// Package schema holds the relational schema produced by the translator.
//
// A [Table] is the immutable result of translating one entity type: its
// fields in column order, the primary key, the surviving candidate keys,
// the foreign keys to other tables and the CHECK constraints derived from
// the field annotations.
//
// The subpackages define the vocabulary used to describe the input:
//
//   - [field]: stored value types, typed values, bounds and converters
//   - [annotation]: the declarative modifiers attached to members and types
//
// CHECK constraints are expressed as [Clause] trees and rendered as
// dialect-neutral SQL:
//
//	c := &schema.Comparison{Operand: schema.Operand{Field: age}, Op: schema.OpGTE, Value: zero}
//	c.SQL() // "Age" >= 0
package schema
