// Package sqlschema converts translated tables into atlas schemas and
// renders them as CREATE TABLE statements.
//
// Convert maps every field onto a column type of the target dialect, the
// primary and candidate keys onto a primary key and unique indexes, foreign
// keys onto atlas foreign keys and CHECK constraints onto table checks.
// Anonymous candidate keys are named UQ_<Table>_<n>.
//
//	tables, err := tabula.Translate(types)
//	if err != nil {
//	    return err
//	}
//	stmts, err := sqlschema.Plan(ctx, dialect.Postgres, tables)
//
// Plan uses the offline planners of atlas; no database connection is
// needed.
package sqlschema
