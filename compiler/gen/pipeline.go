package gen

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/syssam/tabula/compiler/load"
	"github.com/syssam/tabula/schema/annotation"
	"github.com/syssam/tabula/schema/field"
)

// memberContext holds the state of one member while it runs through the
// pipeline.
type memberContext struct {
	cfg         *Config
	owner       load.TypeInfo
	member      load.MemberInfo
	vt          load.ValueType
	scope       memberScope
	annotations []annotation.Annotation
	// anonymous counts the anonymous candidate keys of the owning type.
	anonymous *int
}

// pass is one step of the member pipeline. A pass reads the current map
// and returns the map with the descriptors it touched replaced.
type pass struct {
	name string
	run  func(*memberContext, DescriptorMap) (DescriptorMap, error)
}

// pipeline lists the passes in application order. Default depends on
// Nullability and Converter, PrimaryKey on Nullability, and Constraints on
// Converter.
var pipeline = []pass{
	{"name", (*memberContext).names},
	{"nullability", (*memberContext).nullability},
	{"column", (*memberContext).column},
	{"converter", (*memberContext).converter},
	{"default", (*memberContext).defaults},
	{"primary-key", (*memberContext).primaryKey},
	{"candidate-key", (*memberContext).candidateKeys},
	{"constraints", (*memberContext).constraints},
}

// columnGroup is the contiguous run of fields produced by one member.
type columnGroup struct {
	member string
	fields []FieldDescriptor
}

// pin returns the pinned column of the group, if any.
func (g columnGroup) pin() (int, bool) {
	if len(g.fields) == 0 || g.fields[0].Column == nil {
		return 0, false
	}
	return *g.fields[0].Column, true
}

// translateMember runs a member through the base translator and the
// pipeline. It returns the member fields ordered by relative column, with
// their paths set relative to the owning type.
func (t *Translator) translateMember(owner load.TypeInfo, m load.MemberInfo, anonymous *int) (columnGroup, []DeferredCheck, error) {
	dm, checks, err := t.base(owner, m)
	if err != nil {
		return columnGroup{}, nil, err
	}
	if m.ValueType().IsAggregate() {
		dm = t.rescopeKeys(m.Name(), dm, anonymous)
	}
	mc := &memberContext{
		cfg:         t.cfg,
		owner:       owner,
		member:      m,
		vt:          m.ValueType(),
		scope:       memberScope{typ: owner.Name(), member: m.Name()},
		annotations: m.Annotations(),
		anonymous:   anonymous,
	}
	if err := mc.checkAnnotations(); err != nil {
		return columnGroup{}, nil, err
	}
	for _, p := range pipeline {
		if dm, err = p.run(mc, dm); err != nil {
			return columnGroup{}, nil, err
		}
	}
	g := columnGroup{member: m.Name()}
	for p, d := range dm.All() {
		d.Path = joinPath(m.Name(), p)
		g.fields = append(g.fields, d)
	}
	slices.SortStableFunc(g.fields, func(a, b FieldDescriptor) int {
		return cmp.Compare(a.RelativeColumn, b.RelativeColumn)
	})
	for i := range checks {
		paths := make([]Path, len(checks[i].Paths))
		for j, p := range checks[i].Paths {
			paths[j] = joinPath(m.Name(), p)
		}
		checks[i].Paths = paths
	}
	return g, checks, nil
}

// checkAnnotations rejects type-level annotations on members.
func (mc *memberContext) checkAnnotations() error {
	for _, a := range mc.annotations {
		if a == nil {
			return mc.scope.errorf(ValueError, "", nil, "nil annotation")
		}
		if a.Kind().TypeLevel() {
			return mc.scope.errorf(InapplicableConstraint, "", annots(a.Kind()), "type annotation applied to a member")
		}
	}
	return nil
}

// of returns the member annotations of the given kinds.
func (mc *memberContext) of(kinds ...annotation.Kind) []annotation.Annotation {
	return annotation.Filter(mc.annotations, kinds...)
}

// resolve returns the paths addressed by an annotation.
func (mc *memberContext) resolve(dm DescriptorMap, a annotation.Annotation) ([]Path, error) {
	paths := dm.Resolve(a.Scope())
	if len(paths) == 0 {
		return nil, mc.scope.errorf(PathError, a.Scope(), annots(a.Kind()), "path does not resolve to a field")
	}
	return paths, nil
}

// names applies Rename annotations to the name segment their path denotes.
func (mc *memberContext) names(dm DescriptorMap) (DescriptorMap, error) {
	seen := make(map[Path]bool)
	for _, a := range mc.of(annotation.KindRename) {
		r := a.(annotation.Rename)
		if seen[r.Path] {
			return dm, mc.scope.errorf(DuplicateAnnotation, r.Path, annots(a.Kind()), "field renamed twice")
		}
		seen[r.Path] = true
		paths, err := mc.resolve(dm, r)
		if err != nil {
			return dm, err
		}
		switch r.Name {
		case "":
			return dm, mc.scope.errorf(NameError, r.Path, annots(a.Kind()), "name cannot be empty")
		case mc.member.Name():
			return dm, mc.scope.errorf(NameError, r.Path, annots(a.Kind()), "name %q is the member name", r.Name)
		}
		i := depth(r.Path)
		dm, _ = dm.Update(paths, func(_ Path, d *FieldDescriptor) error {
			d.Name[i] = r.Name
			return nil
		})
	}
	return dm, nil
}

// nullability applies Nullable and NonNullable annotations. On the member
// itself the flag is applied to every descriptor of the member.
func (mc *memberContext) nullability(dm DescriptorMap) (DescriptorMap, error) {
	flags := mc.of(annotation.KindNullable, annotation.KindNonNullable)
	byPath := make(map[Path]annotation.Kind)
	for _, a := range flags {
		prev, ok := byPath[a.Scope()]
		switch {
		case ok && prev == a.Kind():
			return dm, mc.scope.errorf(DuplicateAnnotation, a.Scope(), annots(a.Kind()), "nullability declared twice")
		case ok:
			return dm, mc.scope.errorf(MutualExclusion, a.Scope(), annots(annotation.KindNullable, annotation.KindNonNullable), "field cannot be both nullable and non-nullable")
		}
		byPath[a.Scope()] = a.Kind()
	}
	for _, a := range flags {
		nullable := a.Kind() == annotation.KindNullable
		paths, err := mc.resolve(dm, a)
		if err != nil {
			return dm, err
		}
		redundant := nullable == mc.vt.Nullable
		if a.Scope() != "" {
			redundant = true
			for _, p := range paths {
				if d, _ := dm.Get(p); d.Nullable != nullable {
					redundant = false
				}
			}
		}
		if redundant {
			return dm, mc.scope.errorf(InapplicableConstraint, a.Scope(), annots(a.Kind()), "annotation restates the inherent nullability")
		}
		dm, _ = dm.Update(paths, func(_ Path, d *FieldDescriptor) error {
			d.Nullable = nullable
			return nil
		})
	}
	return dm, nil
}

// column pins the member to an absolute column. Offsets of the member's own
// fields are shifted by the pinned index.
func (mc *memberContext) column(dm DescriptorMap) (DescriptorMap, error) {
	cs := mc.of(annotation.KindColumn)
	switch {
	case len(cs) == 0:
		return dm, nil
	case len(cs) > 1:
		return dm, mc.scope.errorf(DuplicateAnnotation, "", annots(annotation.KindColumn), "member pinned twice")
	}
	index := cs[0].(annotation.Column).Index
	if index < 0 {
		return dm, mc.scope.errorf(ValueError, "", annots(annotation.KindColumn), "column index %d is negative", index)
	}
	return dm.Update(dm.Keys(), func(_ Path, d *FieldDescriptor) error {
		c := index + d.RelativeColumn
		d.Column = &c
		return nil
	})
}

// converter installs a data converter on a scalar member.
func (mc *memberContext) converter(dm DescriptorMap) (DescriptorMap, error) {
	cs := mc.of(annotation.KindConvert)
	switch {
	case len(cs) == 0:
		return dm, nil
	case len(cs) > 1:
		return dm, mc.scope.errorf(DuplicateAnnotation, "", annots(annotation.KindConvert), "member converted twice")
	case !mc.vt.IsScalar():
		return dm, mc.scope.errorf(TypeError, "", annots(annotation.KindConvert), "converters apply to scalar members only, not to %v", mc.vt)
	}
	conv := cs[0].(annotation.Convert).Converter
	switch {
	case conv == nil:
		return dm, mc.scope.errorf(TypeError, "", annots(annotation.KindConvert), "converter is nil")
	case conv.From() != mc.vt.Type:
		return dm, mc.scope.errorf(TypeError, "", annots(annotation.KindConvert), "converter expects %v, member is %v", conv.From(), mc.vt.Type)
	case !conv.To().Storable():
		return dm, mc.scope.errorf(TypeError, "", annots(annotation.KindConvert), "converter result type %v is not supported", conv.To())
	}
	return dm.Update([]Path{""}, func(_ Path, d *FieldDescriptor) error {
		d.Converter = conv
		if d.Constraints.Restricted == nil {
			return nil
		}
		restricted := make(ValueSet, 0, len(*d.Constraints.Restricted))
		for _, v := range *d.Constraints.Restricted {
			cv, err := conv.Convert(v)
			if err != nil {
				return mc.scope.errorf(ValueError, "", annots(annotation.KindConvert), "converting %v: %v", v, err)
			}
			restricted = restricted.Add(cv)
		}
		d.Constraints.Restricted = &restricted
		return nil
	})
}

// defaults records default values. A default is parsed in the source type
// of its field and must survive conversion.
func (mc *memberContext) defaults(dm DescriptorMap) (DescriptorMap, error) {
	seen := make(map[Path]bool)
	for _, a := range mc.of(annotation.KindDefault) {
		def := a.(annotation.Default)
		if seen[def.Path] {
			return dm, mc.scope.errorf(DuplicateAnnotation, def.Path, annots(a.Kind()), "default declared twice")
		}
		seen[def.Path] = true
		paths, err := mc.resolve(dm, def)
		if err != nil {
			return dm, err
		}
		if len(paths) != 1 || paths[0] != def.Path {
			return dm, mc.scope.errorf(PathError, def.Path, annots(a.Kind()), "path does not denote a single field")
		}
		dm, err = dm.Update(paths, func(_ Path, d *FieldDescriptor) error {
			v, err := field.Parse(d.SourceType, def.Value)
			switch {
			case err != nil:
				return mc.scope.errorf(ValueError, def.Path, annots(a.Kind()), "default: %v", err)
			case v.IsNull() && !d.Nullable:
				return mc.scope.errorf(ValueError, def.Path, annots(a.Kind()), "null default for a non-nullable field")
			case !v.IsNull() && d.Enum != nil && !slices.Contains(d.Enum.Values, v.Interface().(string)):
				return mc.scope.errorf(ValueError, def.Path, annots(a.Kind()), "%v is not an enumerator of %s", v, d.Enum.Name)
			}
			if _, err := d.Converter.Convert(v); err != nil {
				return mc.scope.errorf(ValueError, def.Path, annots(a.Kind()), "default cannot be converted: %v", err)
			}
			d.Default = &v
			return nil
		})
		if err != nil {
			return dm, err
		}
	}
	return dm, nil
}

// primaryKey opts fields into the primary key.
func (mc *memberContext) primaryKey(dm DescriptorMap) (DescriptorMap, error) {
	seen := make(map[Path]bool)
	for _, a := range mc.of(annotation.KindPrimaryKey) {
		if seen[a.Scope()] {
			return dm, mc.scope.errorf(DuplicateAnnotation, a.Scope(), annots(a.Kind()), "primary key declared twice")
		}
		seen[a.Scope()] = true
		paths, err := mc.resolve(dm, a)
		if err != nil {
			return dm, err
		}
		dm, err = dm.Update(paths, func(p Path, d *FieldDescriptor) error {
			if d.Nullable {
				return mc.scope.errorf(InapplicableConstraint, p, annots(a.Kind()), "nullable field cannot be part of the primary key")
			}
			d.PrimaryKey = true
			return nil
		})
		if err != nil {
			return dm, err
		}
	}
	return dm, nil
}

// candidateKeys records candidate-key membership. Anonymous keys get a
// generated name under the reserved prefix.
func (mc *memberContext) candidateKeys(dm DescriptorMap) (DescriptorMap, error) {
	prefix := mc.cfg.AnonymousKeyPrefix
	for _, a := range mc.of(annotation.KindUnique) {
		u := a.(annotation.Unique)
		name := u.Name
		switch {
		case name == "":
			name = prefix + strconv.Itoa(*mc.anonymous)
			*mc.anonymous++
		case strings.HasPrefix(name, prefix):
			return dm, mc.scope.errorf(NameError, u.Path, annots(a.Kind()), "key name %q uses the reserved prefix %q", name, prefix)
		}
		paths, err := mc.resolve(dm, u)
		if err != nil {
			return dm, err
		}
		dm, err = dm.Update(paths, func(p Path, d *FieldDescriptor) error {
			if slices.Contains(d.CandidateKeys, name) {
				return mc.scope.errorf(DuplicateAnnotation, p, annots(a.Kind()), "field is already part of key %q", name)
			}
			d.CandidateKeys = append(d.CandidateKeys, name)
			return nil
		})
		if err != nil {
			return dm, err
		}
	}
	return dm, nil
}
