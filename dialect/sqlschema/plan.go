package sqlschema

import (
	"context"
	"fmt"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	atlas "ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/syssam/tabula/dialect"
	"github.com/syssam/tabula/schema"
)

// planners render schema changes offline, without a database connection.
var planners = map[string]migrate.PlanApplier{
	dialect.SQLite:   sqlite.DefaultPlan,
	dialect.MySQL:    mysql.DefaultPlan,
	dialect.Postgres: postgres.DefaultPlan,
}

// Plan returns the statements creating the given tables in the given
// dialect. Tables are created in the order given; referenced tables must
// come first, as returned by the translator.
func Plan(ctx context.Context, d string, tables []*schema.Table, opts ...Option) ([]string, error) {
	s, err := Convert(d, tables, opts...)
	if err != nil {
		return nil, err
	}
	changes := make([]atlas.Change, len(s.Tables))
	for i, t := range s.Tables {
		changes[i] = &atlas.AddTable{T: t}
	}
	plan, err := planners[d].PlanChanges(ctx, "tabula", changes)
	if err != nil {
		return nil, fmt.Errorf("sqlschema: planning %s schema: %w", d, err)
	}
	stmts := make([]string, len(plan.Changes))
	for i, c := range plan.Changes {
		stmts[i] = c.Cmd
	}
	return stmts, nil
}
