// tabula translates a YAML model of annotated types into a relational
// schema.
//
//	tabula check model.yaml
//	tabula ddl --dialect postgres model.yaml
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/syssam/tabula/compiler/gen"
)

// Context is shared by all commands.
type Context struct {
	Out     io.Writer
	Err     io.Writer
	Options []gen.Option
}

// CLI represents the command-line interface.
type CLI struct {
	Naming          string `help:"Table naming strategy (${enum})" enum:"entity,snake-plural" default:"entity"`
	Separator       string `help:"Separator joining the names of nested fields" default:"."`
	CaseInsensitive bool   `help:"Make table and field names collide regardless of case"`
	Debug           bool   `help:"Log translation steps to stderr"`

	Check   CheckCmd   `cmd:"" help:"Translate a model and print its tables"`
	DDL     DDLCmd     `cmd:"" name:"ddl" help:"Print the statements creating the tables of a model"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// options maps the global flags onto translator options.
func (c *CLI) options(stderr io.Writer) []gen.Option {
	opts := []gen.Option{gen.WithPathSeparator(c.Separator)}
	if c.Naming == "snake-plural" {
		opts = append(opts, gen.WithTableNaming(gen.NamingSnakePlural))
	}
	if c.CaseInsensitive {
		opts = append(opts, gen.WithCaseInsensitiveNames())
	}
	if c.Debug {
		h := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		opts = append(opts, gen.WithLogger(slog.New(h)))
	}
	return opts
}

// VersionCmd represents the version command.
type VersionCmd struct{}

// Run executes the version command.
func (cmd *VersionCmd) Run(ctx *Context) error {
	fmt.Fprintln(ctx.Out, "tabula v0.1.0")
	return nil
}

// run parses args and executes the selected command.
func run(args []string, stdout, stderr io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("tabula"),
		kong.Description("Translate annotated types into a relational schema."),
		kong.Writers(stdout, stderr),
	)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return kctx.Run(&Context{
		Out:     stdout,
		Err:     stderr,
		Options: cli.options(stderr),
	})
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
