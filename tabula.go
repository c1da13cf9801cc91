package tabula

import (
	"github.com/syssam/tabula/compiler/gen"
	"github.com/syssam/tabula/compiler/load"
	"github.com/syssam/tabula/schema"
)

// TranslateAll translates the given entity types with tr. A failing type
// does not stop the batch. The returned tables are every table the
// translator finished, referenced entities included, in completion order.
// The error is nil, a single translation error, or a *BatchError.
func TranslateAll(tr *gen.Translator, types ...load.TypeInfo) ([]*schema.Table, error) {
	if len(types) == 0 {
		return nil, ErrNoEntities
	}
	var errs []error
	for _, ti := range types {
		if _, err := tr.Translate(ti); err != nil {
			errs = append(errs, err)
		}
	}
	tables := tr.Tables()
	if len(errs) == 0 {
		errs = append(errs, schema.ValidateSchema(tables).Err())
	}
	return tables, NewBatchError(errs...)
}

// Translate is like TranslateAll, with a translator configured by opts.
func Translate(types []load.TypeInfo, opts ...gen.Option) ([]*schema.Table, error) {
	tr, err := gen.New(opts...)
	if err != nil {
		return nil, err
	}
	return TranslateAll(tr, types...)
}

// TranslateFile loads a YAML model file and translates its entities.
func TranslateFile(path string, opts ...gen.Option) ([]*schema.Table, error) {
	m, err := load.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Translate(m.Entities(), opts...)
}
