package gen

import (
	"fmt"
	"slices"
	"strings"

	"github.com/syssam/tabula/compiler/load"
	"github.com/syssam/tabula/schema"
	"github.com/syssam/tabula/schema/annotation"
	"github.com/syssam/tabula/schema/field"
)

// fieldChecks lowers the constraint bucket of a field into CHECK
// constraints named CK_<Table>_<Field>_<n>.
func fieldChecks(typ, table string, f *schema.Field, d FieldDescriptor) ([]*schema.CheckConstraint, error) {
	b := d.Constraints
	var clauses []schema.Clause
	if c := rangeClause(schema.Operand{Field: f}, b.Lower, b.Upper); c != nil {
		clauses = append(clauses, c)
	}
	if c := rangeClause(schema.Operand{Field: f, Func: schema.FuncLength}, b.MinLength, b.MaxLength); c != nil {
		clauses = append(clauses, c)
	}
	switch {
	case b.Allowed != nil:
		clauses = append(clauses, &schema.Inclusion{Operand: schema.Operand{Field: f}, Values: *b.Allowed})
	case b.Restricted != nil:
		clauses = append(clauses, &schema.Inclusion{Operand: schema.Operand{Field: f}, Values: *b.Restricted})
	}
	if len(b.Disallowed) > 0 {
		clauses = append(clauses, &schema.Inclusion{Operand: schema.Operand{Field: f}, Values: b.Disallowed, Negated: true})
	}
	for _, fn := range b.Custom {
		c, err := fn(f)
		switch {
		case err != nil:
			return nil, checkError(typ, d.Path, annotation.KindCheck, "generating the check of %s: %v", f.Name, err)
		case c == nil:
			return nil, checkError(typ, d.Path, annotation.KindCheck, "check generator of %s returned no clause", f.Name)
		}
		clauses = append(clauses, c)
	}
	checks := make([]*schema.CheckConstraint, len(clauses))
	for i, c := range clauses {
		checks[i] = &schema.CheckConstraint{
			Name:   fmt.Sprintf("CK_%s_%s_%d", table, f.Name, i),
			Clause: c,
		}
	}
	return checks, nil
}

// rangeClause returns the comparisons an interval lowers into, or nil for
// an unbounded interval. A single-point interval becomes an equality.
func rangeClause(o schema.Operand, lower, upper *field.Bound) schema.Clause {
	switch {
	case lower != nil && upper != nil && field.Equal(lower.Value, upper.Value):
		return &schema.Comparison{Operand: o, Op: schema.OpEQ, Value: lower.Value}
	case lower != nil && upper != nil:
		return schema.And{lowerClause(o, *lower), upperClause(o, *upper)}
	case lower != nil:
		return lowerClause(o, *lower)
	case upper != nil:
		return upperClause(o, *upper)
	}
	return nil
}

func lowerClause(o schema.Operand, b field.Bound) schema.Clause {
	op := schema.OpGT
	if b.Inclusive {
		op = schema.OpGTE
	}
	return &schema.Comparison{Operand: o, Op: op, Value: b.Value}
}

func upperClause(o schema.Operand, b field.Bound) schema.Clause {
	op := schema.OpLT
	if b.Inclusive {
		op = schema.OpLTE
	}
	return &schema.Comparison{Operand: o, Op: op, Value: b.Value}
}

// complexChecks runs the complex check generators of an entity over their
// fields, naming the constraints CK_<Table>_<n>.
func complexChecks(typ, table string, checks []DeferredCheck, byPath map[Path]*schema.Field) ([]*schema.CheckConstraint, error) {
	out := make([]*schema.CheckConstraint, 0, len(checks))
	for i, dc := range checks {
		fields := make([]*schema.Field, len(dc.Paths))
		for j, p := range dc.Paths {
			f, ok := byPath[p]
			if !ok {
				return nil, typeError(typ, PathError, annots(annotation.KindComplexCheck), "path %q does not denote a field", p)
			}
			fields[j] = f
		}
		c, err := dc.Func(fields)
		switch {
		case err != nil:
			return nil, typeError(typ, ValueError, annots(annotation.KindComplexCheck), "generating the check over %s: %v", strings.Join(dc.Paths, ", "), err)
		case c == nil:
			return nil, typeError(typ, ValueError, annots(annotation.KindComplexCheck), "check generator over %s returned no clause", strings.Join(dc.Paths, ", "))
		}
		out = append(out, &schema.CheckConstraint{
			Name:   fmt.Sprintf("CK_%s_%d", table, i),
			Clause: c,
		})
	}
	return out, nil
}

// checkError reports a failing custom generator of the field at path p.
func checkError(typ string, p Path, k annotation.Kind, format string, args ...any) *Error {
	member, rest, _ := strings.Cut(p, ".")
	return memberScope{typ: typ, member: member}.errorf(ValueError, rest, annots(k), format, args...)
}

// typeChecks resolves the complex checks declared on a type against its
// column-ordered fields. Fields are matched by their final name or by path.
func (t *Translator) typeChecks(ti load.TypeInfo, fields []FieldDescriptor) ([]DeferredCheck, error) {
	var checks []DeferredCheck
	for _, a := range annotation.Filter(ti.Annotations(), annotation.KindComplexCheck) {
		cc := a.(annotation.ComplexCheck)
		if cc.Func == nil {
			return nil, typeError(ti.Name(), ValueError, annots(a.Kind()), "complex check without a clause generator")
		}
		if len(cc.Fields) == 0 {
			return nil, typeError(ti.Name(), ValueError, annots(a.Kind()), "complex check over no fields")
		}
		dc := DeferredCheck{Func: cc.Func}
		for _, name := range cc.Fields {
			i := slices.IndexFunc(fields, func(d FieldDescriptor) bool {
				return t.cfg.nameKey(t.cfg.joinName(d.Name)) == t.cfg.nameKey(name) || d.Path == name
			})
			if i < 0 {
				return nil, typeError(ti.Name(), PathError, annots(a.Kind()), "field %q does not exist", name)
			}
			dc.Paths = append(dc.Paths, fields[i].Path)
		}
		checks = append(checks, dc)
	}
	return checks, nil
}
