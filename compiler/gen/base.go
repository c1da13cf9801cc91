package gen

import (
	"strconv"

	"github.com/syssam/tabula/compiler/load"
	"github.com/syssam/tabula/schema/field"
)

// base returns the annotation-free translation of a member: a single
// descriptor at the empty path for scalars and enumerations, the fields of
// the aggregate for aggregates, and the primary-key fields of the referenced
// entity for references.
func (t *Translator) base(owner load.TypeInfo, m load.MemberInfo) (DescriptorMap, []DeferredCheck, error) {
	vt := m.ValueType()
	scope := memberScope{typ: owner.Name(), member: m.Name()}
	switch {
	case vt.IsAggregate():
		return t.baseAggregate(scope, m, vt)
	case vt.IsReference():
		dm, err := t.baseReference(scope, m, vt)
		return dm, nil, err
	case vt.Composite != nil:
		return DescriptorMap{}, nil, scope.errorf(TypeError, "", nil, "member of %s type %s cannot be stored", vt.Composite.Category(), vt.Composite.Name())
	case vt.Type == field.TypeEnum && (vt.Enum == nil || len(vt.Enum.Values) == 0):
		return DescriptorMap{}, nil, scope.errorf(TypeError, "", nil, "enumeration member without enumerators")
	case !vt.Type.Valid():
		return DescriptorMap{}, nil, scope.errorf(TypeError, "", nil, "unsupported value type %v", vt.Type)
	}
	d := FieldDescriptor{
		Name:       []string{m.Name()},
		Nullable:   vt.Nullable,
		SourceType: vt.Type,
		Enum:       vt.Enum,
		Converter:  field.Identity(vt.Type),
	}
	if vt.Enum != nil {
		restricted := make(ValueSet, 0, len(vt.Enum.Values))
		for _, e := range vt.Enum.Values {
			restricted = restricted.Add(field.Enum(e))
		}
		d.Constraints.Restricted = &restricted
	}
	return DescriptorMap{}.Set("", d), nil, nil
}

// baseAggregate expands the column-ordered fields of an aggregate under the
// member. A nullable aggregate makes all of its fields nullable.
func (t *Translator) baseAggregate(scope memberScope, m load.MemberInfo, vt load.ValueType) (DescriptorMap, []DeferredCheck, error) {
	td, err := t.aggregate(vt.Composite)
	if err != nil {
		return DescriptorMap{}, nil, nested(scope, vt.Composite, err)
	}
	var dm DescriptorMap
	for _, f := range td.Fields {
		d := f.clone()
		d.Name = append([]string{m.Name()}, d.Name...)
		d.RelativeColumn = *f.Column
		d.Column = nil
		d.Nullable = d.Nullable || vt.Nullable
		dm = dm.Set(f.Path, d)
	}
	return dm, cloneChecks(td.Checks), nil
}

// baseReference copies the primary-key fields of the referenced entity.
func (t *Translator) baseReference(scope memberScope, m load.MemberInfo, vt load.ValueType) (DescriptorMap, error) {
	ref := vt.Composite
	if t.inProgress[ref] {
		return DescriptorMap{}, scope.errorf(ReferenceCycle, "", nil, "entity %s is referenced before its primary key is deduced", ref.Name())
	}
	tbl, err := t.Translate(ref)
	if err != nil {
		return DescriptorMap{}, nested(scope, ref, err)
	}
	td := t.finished[ref].desc
	var dm DescriptorMap
	for i, pk := range tbl.PrimaryKey.Fields {
		src, _ := td.Field(t.finished[ref].paths[pk])
		st := pk.Type
		dm = dm.Set(src.Path, FieldDescriptor{
			Name:           append([]string{m.Name()}, src.Name...),
			Nullable:       vt.Nullable,
			RelativeColumn: i,
			SourceType:     st,
			Converter:      field.Identity(st),
			Reference: &Reference{
				Member: m.Name(),
				Entity: ref,
				Table:  tbl,
				Field:  pk,
			},
		})
	}
	return dm, nil
}

// rescopeKeys renames the candidate keys and references an aggregate brings
// along, so that embedding the aggregate twice yields separate keys.
// Anonymous keys draw fresh names from the owner's counter. Named keys and
// referencing members are prefixed with the member name.
func (t *Translator) rescopeKeys(member string, dm DescriptorMap, anonymous *int) DescriptorMap {
	renamed := make(map[string]string)
	dm, _ = dm.Update(dm.Keys(), func(_ Path, d *FieldDescriptor) error {
		for i, name := range d.CandidateKeys {
			to, ok := renamed[name]
			switch {
			case ok:
			case isAnonymous(t.cfg, name):
				to = t.cfg.AnonymousKeyPrefix + strconv.Itoa(*anonymous)
				*anonymous++
			default:
				to = t.cfg.joinName([]string{member, name})
			}
			renamed[name] = to
			d.CandidateKeys[i] = to
		}
		if d.Reference != nil {
			r := *d.Reference
			r.Member = t.cfg.joinName([]string{member, r.Member})
			d.Reference = &r
		}
		return nil
	})
	return dm
}

// nested wraps the failure of a type translated on behalf of a member.
func nested(scope memberScope, typ load.TypeInfo, err error) error {
	kind, ok := KindOf(err)
	if !ok {
		return err
	}
	e := scope.errorf(kind, "", nil, "translating %s %s", typ.Category(), typ.Name())
	e.Cause = err
	return e
}
