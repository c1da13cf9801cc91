// Package tabula translates annotated source types into a relational
// schema.
//
// Each entity type becomes a table. Its members become fields: scalars map
// to a single field, aggregates are flattened into the enclosing table and
// references to other entities copy the primary key of the referenced
// table and add a foreign key. Annotations on the members rename fields,
// override nullability, pin columns, convert stored types, declare
// defaults, opt fields into keys and constrain their values. The
// translator deduces the primary and candidate keys and lowers the value
// constraints into CHECK constraints.
//
// # Usage
//
// Types are described through the [load] package, in code or in a YAML
// model file:
//
//	pet := load.Entity("Pet").
//	    Field("ID", load.Scalar(field.TypeInt64)).
//	    Field("Name", load.Scalar(field.TypeString), annotation.IsNonEmpty{})
//
//	tables, err := tabula.Translate([]load.TypeInfo{pet})
//
// A [gen.Translator] can also be used directly; it caches the translated
// tables and shares them between the entities referencing them:
//
//	tr, err := gen.New(gen.WithTableNaming(gen.NamingSnakePlural))
//	if err != nil {
//	    return err
//	}
//	tbl, err := tr.Translate(pet)
//
// # Sub-packages
//
//   - schema: the translated tables, keys and CHECK clauses
//   - schema/field: stored types, values, bounds and converters
//   - schema/annotation: member and type annotations
//   - compiler/load: source type descriptions and the YAML model format
//   - compiler/gen: the translator
//   - dialect/sqlschema: conversion to atlas schemas and DDL
package tabula
