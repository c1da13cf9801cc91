package gen

import (
	"cmp"
	"slices"
	"strings"

	"github.com/syssam/tabula/compiler/load"
	"github.com/syssam/tabula/schema"
	"github.com/syssam/tabula/schema/annotation"
)

// candidate is a candidate key under deduction. Fields hold column indexes
// in ascending order.
type candidate struct {
	name      string
	anonymous bool
	fields    []int
}

// prefers reports if k wins over o when both cover the same fields: named
// keys win over anonymous ones, then the lexicographically smaller name.
func (k candidate) prefers(o candidate) bool {
	if k.anonymous != o.anonymous {
		return !k.anonymous
	}
	return k.name < o.name
}

// subsetOf reports if the fields of k are a subset of the fields of o.
func (k candidate) subsetOf(o candidate) bool {
	for _, f := range k.fields {
		if _, ok := slices.BinarySearch(o.fields, f); !ok {
			return false
		}
	}
	return true
}

// keyBuilder deduces the keys of one entity.
type keyBuilder struct {
	cfg    *Config
	owner  load.TypeInfo
	table  string
	descs  []FieldDescriptor
	fields []*schema.Field
}

// candidates groups the fields by candidate-key name, adds the implicit key
// over all fields and eliminates every key that another key subsumes.
func (kb *keyBuilder) candidates() []candidate {
	var keys []candidate
	index := make(map[string]int)
	for i, d := range kb.descs {
		for _, name := range d.CandidateKeys {
			j, ok := index[name]
			if !ok {
				j = len(keys)
				index[name] = j
				keys = append(keys, candidate{
					name:      name,
					anonymous: isAnonymous(kb.cfg, name),
				})
			}
			keys[j].fields = append(keys[j].fields, i)
		}
	}
	all := candidate{anonymous: true, fields: make([]int, len(kb.descs))}
	for i := range all.fields {
		all.fields[i] = i
	}
	keys = append(keys, all)
	var kept []candidate
	for _, k := range keys {
		subsumed := slices.ContainsFunc(keys, func(o candidate) bool {
			if o.name == k.name && o.anonymous == k.anonymous {
				return false
			}
			switch {
			case !o.subsetOf(k):
				return false
			case len(o.fields) < len(k.fields):
				return true
			default:
				return o.prefers(k)
			}
		})
		if !subsumed {
			kept = append(kept, k)
		}
	}
	slices.SortStableFunc(kept, func(a, b candidate) int {
		if a.anonymous != b.anonymous {
			if a.anonymous {
				return 1
			}
			return -1
		}
		return cmp.Compare(a.name, b.name)
	})
	return kept
}

// primaryKey deduces the primary-key fields. The first matching rule wins:
// the opted-in fields, the non-nullable field "ID", the non-nullable field
// "<Type>ID", the only candidate key without nullable fields and finally the
// only non-nullable field.
func (kb *keyBuilder) primaryKey(keys []candidate) ([]int, error) {
	var opted, nonNull []int
	for i, d := range kb.descs {
		if d.PrimaryKey {
			opted = append(opted, i)
		}
		if !d.Nullable {
			nonNull = append(nonNull, i)
		}
	}
	if len(opted) > 0 {
		return opted, nil
	}
	for _, name := range []string{"ID", kb.owner.Name() + "ID"} {
		if i, ok := kb.single(nonNull, name); ok {
			return []int{i}, nil
		}
	}
	var strict []candidate
	for _, k := range keys {
		if !slices.ContainsFunc(k.fields, func(i int) bool { return kb.descs[i].Nullable }) {
			strict = append(strict, k)
		}
	}
	if len(strict) == 1 {
		return strict[0].fields, nil
	}
	if len(nonNull) == 1 {
		return nonNull, nil
	}
	return nil, typeError(kb.owner.Name(), KeyDeductionFailure, annots(annotation.KindPrimaryKey),
		"cannot deduce primary key: %d candidate keys and %d fields without nulls", len(strict), len(nonNull))
}

// single returns the only field among candidates with the given name.
func (kb *keyBuilder) single(candidates []int, name string) (int, bool) {
	found := -1
	for _, i := range candidates {
		if kb.cfg.nameKey(kb.fields[i].Name) != kb.cfg.nameKey(name) {
			continue
		}
		if found >= 0 {
			return 0, false
		}
		found = i
	}
	return found, found >= 0
}

// primaryKeyName returns the declared or the generated primary-key name.
func (kb *keyBuilder) primaryKeyName() (string, error) {
	named := annotation.Filter(kb.owner.Annotations(), annotation.KindNamedPrimaryKey)
	switch {
	case len(named) == 0:
		return "PK_" + kb.table, nil
	case len(named) > 1:
		return "", typeError(kb.owner.Name(), DuplicateAnnotation, annots(annotation.KindNamedPrimaryKey), "primary key named twice")
	}
	name := named[0].(annotation.NamedPrimaryKey).Name
	if name == "" {
		return "", typeError(kb.owner.Name(), NameError, annots(annotation.KindNamedPrimaryKey), "primary key name cannot be empty")
	}
	return name, nil
}

// build deduces the primary and candidate keys of the table.
func (kb *keyBuilder) build() (*schema.PrimaryKey, []*schema.CandidateKey, error) {
	keys := kb.candidates()
	pkFields, err := kb.primaryKey(keys)
	if err != nil {
		return nil, nil, err
	}
	pkName, err := kb.primaryKeyName()
	if err != nil {
		return nil, nil, err
	}
	pk := &schema.PrimaryKey{Name: pkName, Fields: kb.pick(pkFields)}
	pkKey := candidate{fields: pkFields}
	var cks []*schema.CandidateKey
	for _, k := range keys {
		if pkKey.subsetOf(k) {
			continue
		}
		ck := &schema.CandidateKey{Fields: kb.pick(k.fields)}
		if !k.anonymous {
			if kb.cfg.nameKey(k.name) == kb.cfg.nameKey(pkName) {
				return nil, nil, typeError(kb.owner.Name(), NameCollision, annots(annotation.KindUnique, annotation.KindNamedPrimaryKey),
					"candidate key %q has the name of the primary key", k.name)
			}
			ck.Name = k.name
		}
		cks = append(cks, ck)
	}
	return pk, cks, nil
}

// foreignKeys pairs the fields of every reference member with the primary
// key of the referenced table.
func (kb *keyBuilder) foreignKeys() ([]*schema.ForeignKey, error) {
	var (
		fks   []*schema.ForeignKey
		index = make(map[string]*schema.ForeignKey)
	)
	for i, d := range kb.descs {
		r := d.Reference
		if r == nil {
			continue
		}
		fk, ok := index[r.Member]
		if !ok {
			fk = &schema.ForeignKey{
				Name:     "FK_" + kb.table + "_" + r.Member,
				RefTable: r.Table,
				OnDelete: schema.Cascade,
				OnUpdate: schema.Cascade,
			}
			index[r.Member] = fk
			fks = append(fks, fk)
		}
		fk.Fields = append(fk.Fields, kb.fields[i])
		fk.RefFields = append(fk.RefFields, r.Field)
	}
	for _, fk := range fks {
		pk := fk.RefTable.PrimaryKey.Fields
		if len(fk.Fields) != len(pk) || !schema.SameFields(fk.RefFields, pk) {
			return nil, typeError(kb.owner.Name(), KeyDeductionFailure, nil,
				"foreign key %s covers %d of the %d primary-key fields of %s", fk.Name, len(fk.Fields), len(pk), fk.RefTable.Name)
		}
		// Order the pairs like the referenced primary key.
		order := make([]int, len(pk))
		for i := range order {
			order[i] = i
		}
		slices.SortFunc(order, func(a, b int) int {
			return cmp.Compare(slices.Index(pk, fk.RefFields[a]), slices.Index(pk, fk.RefFields[b]))
		})
		fields := make([]*schema.Field, len(order))
		for i, j := range order {
			fields[i] = fk.Fields[j]
		}
		fk.Fields, fk.RefFields = fields, slices.Clone(pk)
	}
	return fks, nil
}

// pick returns the fields at the given column indexes.
func (kb *keyBuilder) pick(indexes []int) []*schema.Field {
	fields := make([]*schema.Field, len(indexes))
	for i, j := range indexes {
		fields[i] = kb.fields[j]
	}
	return fields
}

// isAnonymous reports if a candidate-key name was generated for an
// anonymous key.
func isAnonymous(cfg *Config, name string) bool {
	return strings.HasPrefix(name, cfg.AnonymousKeyPrefix)
}
