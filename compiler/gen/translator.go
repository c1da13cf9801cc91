package gen

import (
	"slices"

	"github.com/syssam/tabula/compiler/load"
	"github.com/syssam/tabula/schema"
	"github.com/syssam/tabula/schema/annotation"
)

// entry is a finished entity translation.
type entry struct {
	table *schema.Table
	desc  *TypeDescriptor
	// paths maps the table fields back to their descriptor paths.
	paths map[*schema.Field]Path
}

// Translator translates entity types into tables. Finished tables are
// cached for the lifetime of the translator and shared by the entities
// referencing them. A Translator is not safe for concurrent use.
type Translator struct {
	cfg *Config
	// finished holds the translated entities.
	finished map[load.TypeInfo]*entry
	// inProgress marks the entities under translation.
	inProgress map[load.TypeInfo]bool
	// aggregates holds the translated aggregates, building those under
	// translation.
	aggregates map[load.TypeInfo]*TypeDescriptor
	building   map[load.TypeInfo]bool
	// tables maps the folded table names to their entities.
	tables map[string]load.TypeInfo
	order  []*schema.Table
}

// New returns a translator configured with the given options.
func New(opts ...Option) (*Translator, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return &Translator{
		cfg:        cfg,
		finished:   make(map[load.TypeInfo]*entry),
		inProgress: make(map[load.TypeInfo]bool),
		aggregates: make(map[load.TypeInfo]*TypeDescriptor),
		building:   make(map[load.TypeInfo]bool),
		tables:     make(map[string]load.TypeInfo),
	}, nil
}

// Config returns the translator configuration.
func (t *Translator) Config() *Config { return t.cfg }

// Tables returns the translated tables in completion order. Referenced
// tables precede the tables referencing them.
func (t *Translator) Tables() []*schema.Table {
	return slices.Clone(t.order)
}

// Translate returns the table of an entity type, translating it and the
// entities it references on first use. A failed translation leaves the
// translator as it was, except for the referenced entities that finished.
func (t *Translator) Translate(ti load.TypeInfo) (*schema.Table, error) {
	if e, ok := t.finished[ti]; ok {
		return e.table, nil
	}
	if t.inProgress[ti] {
		return nil, typeError(ti.Name(), ReferenceCycle, nil, "entity requires its own primary key")
	}
	if err := eligible(ti); err != nil {
		return nil, err
	}
	t.inProgress[ti] = true
	defer delete(t.inProgress, ti)
	t.cfg.Logger.Debug("translating entity", "type", ti.Name())

	td, err := t.describe(ti)
	if err != nil {
		return nil, err
	}
	if len(td.Fields) < 2 {
		return nil, typeError(ti.Name(), IneligibleType, nil, "entity has %d fields, at least 2 are required", len(td.Fields))
	}
	name, err := t.tableName(ti)
	if err != nil {
		return nil, err
	}
	tbl := &schema.Table{Name: name}
	paths := make(map[*schema.Field]Path, len(td.Fields))
	byPath := make(map[Path]*schema.Field, len(td.Fields))
	seen := make(map[string]Path, len(td.Fields))
	for i, d := range td.Fields {
		f := &schema.Field{
			Name:     t.cfg.joinName(d.Name),
			Type:     d.StoredType(),
			Nullable: d.Nullable,
			Column:   i,
		}
		if prev, ok := seen[t.cfg.nameKey(f.Name)]; ok {
			return nil, typeError(ti.Name(), NameCollision, annots(annotation.KindRename), "fields %s and %s are both named %q", prev, d.Path, f.Name)
		}
		seen[t.cfg.nameKey(f.Name)] = d.Path
		if d.Default != nil {
			v, err := d.Converter.Convert(*d.Default)
			if err != nil {
				return nil, typeError(ti.Name(), ValueError, annots(annotation.KindDefault), "default of %s: %v", f.Name, err)
			}
			f.Default = &v
		}
		tbl.Fields = append(tbl.Fields, f)
		paths[f], byPath[d.Path] = d.Path, f
	}
	kb := &keyBuilder{cfg: t.cfg, owner: ti, table: name, descs: td.Fields, fields: tbl.Fields}
	if tbl.PrimaryKey, tbl.CandidateKeys, err = kb.build(); err != nil {
		return nil, err
	}
	if tbl.ForeignKeys, err = kb.foreignKeys(); err != nil {
		return nil, err
	}
	for i, d := range td.Fields {
		checks, err := fieldChecks(ti.Name(), name, tbl.Fields[i], d)
		if err != nil {
			return nil, err
		}
		tbl.Checks = append(tbl.Checks, checks...)
	}
	checks, err := complexChecks(ti.Name(), name, td.Checks, byPath)
	if err != nil {
		return nil, err
	}
	tbl.Checks = append(tbl.Checks, checks...)

	t.finished[ti] = &entry{table: tbl, desc: td, paths: paths}
	t.tables[t.cfg.nameKey(name)] = ti
	t.order = append(t.order, tbl)
	t.cfg.Logger.Debug("entity translated",
		"type", ti.Name(),
		"table", name,
		"fields", len(tbl.Fields),
		"candidate_keys", len(tbl.CandidateKeys),
		"foreign_keys", len(tbl.ForeignKeys),
	)
	return tbl, nil
}

// Descriptor returns the column-ordered descriptor of an entity or an
// aggregate type.
func (t *Translator) Descriptor(ti load.TypeInfo) (*TypeDescriptor, error) {
	var td *TypeDescriptor
	switch ti.Category() {
	case load.CategoryStruct:
		d, err := t.aggregate(ti)
		if err != nil {
			return nil, err
		}
		td = d
	default:
		if _, err := t.Translate(ti); err != nil {
			return nil, err
		}
		td = t.finished[ti].desc
	}
	out := &TypeDescriptor{Name: td.Name, Checks: cloneChecks(td.Checks)}
	for _, f := range td.Fields {
		out.Fields = append(out.Fields, f.clone())
	}
	return out, nil
}

// aggregate returns the translated fields of an aggregate type.
func (t *Translator) aggregate(ti load.TypeInfo) (*TypeDescriptor, error) {
	if td, ok := t.aggregates[ti]; ok {
		return td, nil
	}
	if t.building[ti] {
		return nil, typeError(ti.Name(), ReferenceCycle, nil, "aggregate contains itself")
	}
	if ti.Generic() {
		return nil, typeError(ti.Name(), IneligibleType, nil, "generic aggregates cannot be stored")
	}
	if a := annotation.Filter(ti.Annotations(), annotation.KindTable, annotation.KindNamedPrimaryKey); len(a) > 0 {
		return nil, typeError(ti.Name(), InapplicableConstraint, annots(a[0].Kind()), "aggregates have no table")
	}
	t.building[ti] = true
	defer delete(t.building, ti)
	td, err := t.describe(ti)
	if err != nil {
		return nil, err
	}
	t.aggregates[ti] = td
	return td, nil
}

// describe runs every member of a type through the pipeline and lays out
// the resulting fields.
func (t *Translator) describe(ti load.TypeInfo) (*TypeDescriptor, error) {
	var (
		anonymous int
		groups    []columnGroup
		checks    []DeferredCheck
	)
	for _, m := range ti.Members() {
		g, cs, err := t.translateMember(ti, m, &anonymous)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
		checks = append(checks, cs...)
	}
	l, err := solveColumns(ti.Name(), groups)
	if err != nil {
		return nil, err
	}
	t.cfg.Logger.Debug("column layout solved", "type", ti.Name(), "groups", len(groups), "pinned", l.pinned)
	own, err := t.typeChecks(ti, l.fields)
	if err != nil {
		return nil, err
	}
	return &TypeDescriptor{
		Name:   ti.Name(),
		Fields: l.fields,
		Checks: append(checks, own...),
	}, nil
}

// tableName returns the declared or the derived table name of an entity,
// checking that no other entity uses it.
func (t *Translator) tableName(ti load.TypeInfo) (string, error) {
	name := t.cfg.TableName(ti.Name())
	switch a := annotation.Filter(ti.Annotations(), annotation.KindTable); {
	case len(a) > 1:
		return "", typeError(ti.Name(), DuplicateAnnotation, annots(annotation.KindTable), "table named twice")
	case len(a) == 1:
		name = a[0].(annotation.Table).Name
		if name == "" {
			return "", typeError(ti.Name(), NameError, annots(annotation.KindTable), "table name cannot be empty")
		}
	}
	if other, ok := t.tables[t.cfg.nameKey(name)]; ok && other != ti {
		return "", typeError(ti.Name(), NameCollision, annots(annotation.KindTable), "table %q is already used by %s", name, other.Name())
	}
	return name, nil
}

// eligible reports if the type can be translated into a table.
func eligible(ti load.TypeInfo) error {
	switch {
	case ti.Category() != load.CategoryClass:
		return typeError(ti.Name(), IneligibleType, nil, "%s types cannot be translated into tables", ti.Category())
	case ti.Generic():
		return typeError(ti.Name(), IneligibleType, nil, "generic types cannot be translated into tables")
	case ti.Abstract():
		return typeError(ti.Name(), IneligibleType, nil, "abstract types cannot be translated into tables")
	}
	return nil
}
