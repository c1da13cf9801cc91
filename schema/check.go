package schema

import (
	"fmt"
	"slices"
	"strings"

	"github.com/syssam/tabula/schema/field"
)

// Clause is a boolean expression over one or more fields of a table.
type Clause interface {
	// SQL renders the clause as dialect-neutral SQL. Identifiers are
	// double-quoted.
	SQL() string
	// Fields returns the fields referenced by the clause.
	Fields() []*Field
}

// FieldFunc is a function applied to a field before comparing it.
type FieldFunc uint8

// Field functions.
const (
	FuncNone FieldFunc = iota
	FuncLength
)

// Op is a comparison operator.
type Op uint8

// Comparison operators.
const (
	OpEQ Op = iota
	OpNEQ
	OpLT
	OpLTE
	OpGT
	OpGTE
)

var opText = [...]string{
	OpEQ:  "=",
	OpNEQ: "<>",
	OpLT:  "<",
	OpLTE: "<=",
	OpGT:  ">",
	OpGTE: ">=",
}

// String implements the fmt.Stringer interface.
func (o Op) String() string {
	if int(o) < len(opText) {
		return opText[o]
	}
	return fmt.Sprintf("Op(%d)", o)
}

type (
	// Operand is a field, optionally wrapped by a field function.
	Operand struct {
		Field *Field
		Func  FieldFunc
	}

	// Comparison compares an operand against a constant.
	Comparison struct {
		Operand
		Op    Op
		Value field.Value
	}

	// Inclusion tests an operand for (non-)membership in a value list.
	Inclusion struct {
		Operand
		Values  []field.Value
		Negated bool
	}

	// And is the conjunction of its clauses.
	And []Clause

	// Or is the disjunction of its clauses.
	Or []Clause

	// Not negates a clause.
	Not struct{ Clause Clause }

	// Raw is a user-provided SQL expression over the given fields.
	Raw struct {
		Expr string
		Refs []*Field
	}
)

// Quote double-quotes an identifier.
func Quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// SQL renders the operand.
func (o Operand) SQL() string {
	if o.Func == FuncLength {
		return "LENGTH(" + Quote(o.Field.Name) + ")"
	}
	return Quote(o.Field.Name)
}

// SQL implements the Clause interface.
func (c *Comparison) SQL() string {
	return o3(c.Operand.SQL(), c.Op.String(), c.Value.SQL())
}

// Fields implements the Clause interface.
func (c *Comparison) Fields() []*Field { return []*Field{c.Field} }

// SQL implements the Clause interface.
func (c *Inclusion) SQL() string {
	values := make([]string, len(c.Values))
	for i, v := range c.Values {
		values[i] = v.SQL()
	}
	op := "IN"
	if c.Negated {
		op = "NOT IN"
	}
	return o3(c.Operand.SQL(), op, "("+strings.Join(values, ", ")+")")
}

// Fields implements the Clause interface.
func (c *Inclusion) Fields() []*Field { return []*Field{c.Field} }

// SQL implements the Clause interface.
func (a And) SQL() string { return join(a, " AND ") }

// Fields implements the Clause interface.
func (a And) Fields() []*Field { return collect(a) }

// SQL implements the Clause interface.
func (o Or) SQL() string { return join(o, " OR ") }

// Fields implements the Clause interface.
func (o Or) Fields() []*Field { return collect(o) }

// SQL implements the Clause interface.
func (n *Not) SQL() string { return "NOT (" + n.Clause.SQL() + ")" }

// Fields implements the Clause interface.
func (n *Not) Fields() []*Field { return n.Clause.Fields() }

// SQL implements the Clause interface.
func (r *Raw) SQL() string { return r.Expr }

// Fields implements the Clause interface.
func (r *Raw) Fields() []*Field { return r.Refs }

func o3(a, op, b string) string { return a + " " + op + " " + b }

func join(cs []Clause, sep string) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.SQL()
		if _, ok := c.(And); ok || isOr(c) {
			parts[i] = "(" + parts[i] + ")"
		}
	}
	return strings.Join(parts, sep)
}

func isOr(c Clause) bool {
	_, ok := c.(Or)
	return ok
}

func collect(cs []Clause) []*Field {
	var fields []*Field
	for _, c := range cs {
		for _, f := range c.Fields() {
			if !slices.Contains(fields, f) {
				fields = append(fields, f)
			}
		}
	}
	return fields
}

var (
	_ Clause = (*Comparison)(nil)
	_ Clause = (*Inclusion)(nil)
	_ Clause = And(nil)
	_ Clause = Or(nil)
	_ Clause = (*Not)(nil)
	_ Clause = (*Raw)(nil)
)
