package load

import (
	"errors"
	"fmt"
	"os"

	"github.com/syssam/tabula/schema"
	"github.com/syssam/tabula/schema/annotation"
	"github.com/syssam/tabula/schema/field"

	"gopkg.in/yaml.v3"
)

// Model is a set of types loaded from a model file, in declaration order.
type Model struct {
	Types []*Type
	Enums map[string]*EnumInfo
	index map[string]*Type
}

// Lookup returns the type with the given name.
func (m *Model) Lookup(name string) (*Type, bool) {
	t, ok := m.index[name]
	return t, ok
}

// Entities returns the concrete entity types of the model in declaration
// order. Abstract and generic entities are left out.
func (m *Model) Entities() []TypeInfo {
	var entities []TypeInfo
	for _, t := range m.Types {
		if t.Category() == CategoryClass && !t.Abstract() && !t.Generic() {
			entities = append(entities, t)
		}
	}
	return entities
}

type (
	modelFile struct {
		Enums map[string][]string `yaml:"enums,omitempty"`
		Types []typeFile          `yaml:"types"`
	}

	typeFile struct {
		Name        string           `yaml:"name"`
		Kind        string           `yaml:"kind"`
		Generic     bool             `yaml:"generic,omitempty"`
		Abstract    bool             `yaml:"abstract,omitempty"`
		Annotations []annotationFile `yaml:"annotations,omitempty"`
		Members     []memberFile     `yaml:"members,omitempty"`
	}

	memberFile struct {
		Name        string           `yaml:"name"`
		Type        string           `yaml:"type"`
		Nullable    bool             `yaml:"nullable,omitempty"`
		Annotations []annotationFile `yaml:"annotations,omitempty"`
	}

	annotationFile struct {
		Kind      string     `yaml:"kind"`
		Path      string     `yaml:"path,omitempty"`
		Name      string     `yaml:"name,omitempty"`
		Index     *int       `yaml:"index,omitempty"`
		Converter string     `yaml:"converter,omitempty"`
		Value     any        `yaml:"value,omitempty"`
		Op        string     `yaml:"op,omitempty"`
		Anchor    any        `yaml:"anchor,omitempty"`
		Values    []any      `yaml:"values,omitempty"`
		Min       *int       `yaml:"min,omitempty"`
		Max       *int       `yaml:"max,omitempty"`
		Expr      string     `yaml:"expr,omitempty"`
		Fields    StringList `yaml:"fields,omitempty"`
	}
)

// StringList is a YAML type that can be either a string or a list of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler for StringList.
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = []string{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	default:
		return fmt.Errorf("expected string or list, got %v", node.Kind)
	}
}

var categories = map[string]Category{
	"entity":    CategoryClass,
	"class":     CategoryClass,
	"struct":    CategoryStruct,
	"aggregate": CategoryStruct,
	"interface": CategoryInterface,
}

var ops = map[string]schema.Op{
	"=":  schema.OpEQ,
	"==": schema.OpEQ,
	"!=": schema.OpNEQ,
	"<>": schema.OpNEQ,
	"<":  schema.OpLT,
	"<=": schema.OpLTE,
	">":  schema.OpGT,
	">=": schema.OpGTE,
}

// ReadFile loads a model from a YAML file.
func ReadFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	m, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ParseYAML loads a model from its YAML representation. Types may reference
// each other by name regardless of declaration order.
func ParseYAML(data []byte) (*Model, error) {
	var f modelFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse model: %w", err)
	}
	m := &Model{
		Enums: make(map[string]*EnumInfo, len(f.Enums)),
		index: make(map[string]*Type, len(f.Types)),
	}
	for name, values := range f.Enums {
		if len(values) == 0 {
			return nil, fmt.Errorf("enum %q: no enumerators", name)
		}
		m.Enums[name] = &EnumInfo{Name: name, Values: values}
	}
	// Declare all types first, so members can reference them in any order.
	for _, tf := range f.Types {
		c, ok := categories[tf.Kind]
		switch {
		case tf.Name == "":
			return nil, errors.New("type with empty name")
		case !ok:
			return nil, fmt.Errorf("type %q: unknown kind %q", tf.Name, tf.Kind)
		case m.index[tf.Name] != nil || m.Enums[tf.Name] != nil:
			return nil, fmt.Errorf("type %q declared twice", tf.Name)
		}
		t := NewType(tf.Name, c)
		t.generic, t.abstract = tf.Generic, tf.Abstract
		m.Types = append(m.Types, t)
		m.index[t.name] = t
	}
	for i, tf := range f.Types {
		t := m.Types[i]
		for _, af := range tf.Annotations {
			a, err := af.annotation(nil)
			if err != nil {
				return nil, fmt.Errorf("type %q: %w", t.name, err)
			}
			if !a.Kind().TypeLevel() {
				return nil, fmt.Errorf("type %q: %v is a member annotation", t.name, a.Kind())
			}
			t.Annotate(a)
		}
		for _, mf := range tf.Members {
			vt, err := m.valueType(mf)
			if err != nil {
				return nil, fmt.Errorf("member %s.%s: %w", t.name, mf.Name, err)
			}
			as := make([]annotation.Annotation, 0, len(mf.Annotations))
			for _, af := range mf.Annotations {
				a, err := af.annotation(vt.Enum)
				if err != nil {
					return nil, fmt.Errorf("member %s.%s: %w", t.name, mf.Name, err)
				}
				if a.Kind().TypeLevel() {
					return nil, fmt.Errorf("member %s.%s: %v is a type annotation", t.name, mf.Name, a.Kind())
				}
				as = append(as, a)
			}
			t.Field(mf.Name, vt, as...)
		}
	}
	return m, nil
}

func (m *Model) valueType(mf memberFile) (ValueType, error) {
	var vt ValueType
	if ft, ok := field.ParseType(mf.Type); ok && ft != field.TypeEnum {
		vt = Scalar(ft)
	} else if e, ok := m.Enums[mf.Type]; ok {
		vt = Enum(e)
	} else if t, ok := m.index[mf.Type]; ok {
		vt = Composite(t)
	} else {
		return vt, fmt.Errorf("unknown type %q", mf.Type)
	}
	if mf.Nullable {
		vt = vt.Null()
	}
	return vt, nil
}

func (af annotationFile) annotation(enum *EnumInfo) (annotation.Annotation, error) {
	switch af.Kind {
	case "rename":
		return annotation.Rename{Path: af.Path, Name: af.Name}, nil
	case "nullable":
		return annotation.Nullable{Path: af.Path}, nil
	case "non-nullable":
		return annotation.NonNullable{Path: af.Path}, nil
	case "column":
		if af.Index == nil {
			return nil, errors.New("column annotation without index")
		}
		return annotation.Column{Index: *af.Index}, nil
	case "convert":
		c, err := converter(af.Converter, enum)
		if err != nil {
			return nil, err
		}
		return annotation.Convert{Converter: c}, nil
	case "default":
		return annotation.Default{Path: af.Path, Value: af.Value}, nil
	case "primary-key":
		return annotation.PrimaryKey{Path: af.Path}, nil
	case "unique":
		return annotation.Unique{Path: af.Path, Name: af.Name}, nil
	case "positive":
		return annotation.IsPositive{Path: af.Path}, nil
	case "negative":
		return annotation.IsNegative{Path: af.Path}, nil
	case "non-zero":
		return annotation.IsNonZero{Path: af.Path}, nil
	case "compare":
		op, ok := ops[af.Op]
		if !ok {
			return nil, fmt.Errorf("unknown comparison operator %q", af.Op)
		}
		return annotation.Compare{Path: af.Path, Op: op, Anchor: af.Anchor}, nil
	case "non-empty":
		return annotation.IsNonEmpty{Path: af.Path}, nil
	case "length-at-least":
		if af.Min == nil {
			return nil, errors.New("length-at-least annotation without min")
		}
		return annotation.LengthIsAtLeast{Path: af.Path, Min: *af.Min}, nil
	case "length-at-most":
		if af.Max == nil {
			return nil, errors.New("length-at-most annotation without max")
		}
		return annotation.LengthIsAtMost{Path: af.Path, Max: *af.Max}, nil
	case "length-between":
		if af.Min == nil || af.Max == nil {
			return nil, errors.New("length-between annotation without min or max")
		}
		return annotation.LengthIsBetween{Path: af.Path, Min: *af.Min, Max: *af.Max}, nil
	case "one-of":
		return annotation.IsOneOf{Path: af.Path, Values: af.Values}, nil
	case "not-one-of":
		return annotation.IsNotOneOf{Path: af.Path, Values: af.Values}, nil
	case "check":
		if af.Expr == "" {
			return nil, errors.New("check annotation without expr")
		}
		expr := af.Expr
		return annotation.Check{Path: af.Path, Func: func(f *schema.Field) (schema.Clause, error) {
			return &schema.Raw{Expr: expr, Refs: []*schema.Field{f}}, nil
		}}, nil
	case "table":
		return annotation.Table{Name: af.Name}, nil
	case "named-primary-key":
		return annotation.NamedPrimaryKey{Name: af.Name}, nil
	case "complex-check":
		if af.Expr == "" {
			return nil, errors.New("complex-check annotation without expr")
		}
		expr := af.Expr
		return annotation.ComplexCheck{Fields: af.Fields, Func: func(fs []*schema.Field) (schema.Clause, error) {
			return &schema.Raw{Expr: expr, Refs: fs}, nil
		}}, nil
	default:
		return nil, fmt.Errorf("unknown annotation kind %q", af.Kind)
	}
}

// converter resolves a registered converter by name. The enum-to-ordinal
// converter is built from the enumerators of the annotated member.
func converter(name string, enum *EnumInfo) (field.Converter, error) {
	if name == "enum-to-ordinal" {
		if enum == nil {
			return nil, errors.New("enum-to-ordinal converter on a non-enum member")
		}
		return field.EnumToOrdinal(enum.Values...), nil
	}
	c, ok := field.LookupConverter(name)
	if !ok {
		return nil, fmt.Errorf("unknown converter %q", name)
	}
	return c, nil
}
