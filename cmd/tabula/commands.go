package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/syssam/tabula"
	"github.com/syssam/tabula/dialect"
	"github.com/syssam/tabula/dialect/sqlschema"
	"github.com/syssam/tabula/schema"
)

// ErrUnsupportedDialect is returned for an unknown --dialect value.
var ErrUnsupportedDialect = errors.New("unsupported dialect")

// CheckCmd represents the check command.
type CheckCmd struct {
	Model string `arg:"" type:"existingfile" help:"YAML model file"`
}

// Run executes the check command. Tables translated before a failure are
// printed along with the errors.
func (cmd *CheckCmd) Run(ctx *Context) error {
	tables, err := tabula.TranslateFile(cmd.Model, ctx.Options...)
	for _, t := range tables {
		printTable(ctx.Out, t)
	}
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(ctx.Out, "%d tables translated\n", len(tables))
	return nil
}

// DDLCmd represents the ddl command.
type DDLCmd struct {
	Dialect   string `help:"Target dialect (mysql, postgres, sqlite)" default:"sqlite"`
	Schema    string `help:"Schema qualifying the table names"`
	Charset   string `help:"MySQL table character set"`
	Collation string `help:"MySQL table collation"`
	Model     string `arg:"" type:"existingfile" help:"YAML model file"`
}

// Run executes the ddl command.
func (cmd *DDLCmd) Run(ctx *Context) error {
	if !dialect.Supported(cmd.Dialect) {
		return fmt.Errorf("%w %q, expected one of %s", ErrUnsupportedDialect, cmd.Dialect, strings.Join(dialect.Names(), ", "))
	}
	tables, err := tabula.TranslateFile(cmd.Model, ctx.Options...)
	if err != nil {
		return err
	}
	var opts []sqlschema.Option
	if cmd.Schema != "" {
		opts = append(opts, sqlschema.WithSchemaName(cmd.Schema))
	}
	if cmd.Charset != "" {
		opts = append(opts, sqlschema.WithCharset(cmd.Charset))
	}
	if cmd.Collation != "" {
		opts = append(opts, sqlschema.WithCollation(cmd.Collation))
	}
	stmts, err := sqlschema.Plan(context.Background(), cmd.Dialect, tables, opts...)
	if err != nil {
		return err
	}
	for _, s := range stmts {
		fmt.Fprintf(ctx.Out, "%s;\n", s)
	}
	return nil
}

// printTable writes a readable summary of a table.
func printTable(w io.Writer, t *schema.Table) {
	color.New(color.Bold).Fprintln(w, t.Name)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, f := range t.Fields {
		null := "NOT NULL"
		if f.Nullable {
			null = "NULL"
		}
		def := ""
		if f.Default != nil {
			def = "DEFAULT " + f.Default.SQL()
		}
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%s\n", f.Column, f.Name, f.Type, null, def)
	}
	tw.Flush()
	if t.PrimaryKey != nil {
		fmt.Fprintf(w, "  PRIMARY KEY %s\n", t.PrimaryKey)
	}
	for _, k := range t.CandidateKeys {
		fmt.Fprintf(w, "  UNIQUE %s\n", k)
	}
	for _, fk := range t.ForeignKeys {
		fmt.Fprintf(w, "  FOREIGN KEY %s(%s) REFERENCES %s(%s)\n",
			fk.Name, strings.Join(schema.Names(fk.Fields), ", "),
			fk.RefTable.Name, strings.Join(schema.Names(fk.RefFields), ", "))
	}
	for _, c := range t.Checks {
		fmt.Fprintf(w, "  CHECK %s: %s\n", c.Name, c.Clause.SQL())
	}
}
