package sqlschema

import (
	"fmt"
	"strings"

	atlas "ariga.io/atlas/sql/schema"

	"github.com/syssam/tabula/dialect"
	"github.com/syssam/tabula/schema"
	"github.com/syssam/tabula/schema/field"
)

// Option configures a conversion.
type Option func(*options)

type options struct {
	schemaName string
	stringSize int
	charset    string
	collation  string
}

// WithSchemaName sets the name of the atlas schema holding the tables.
// Statements qualify table names with it when it is not empty.
func WithSchemaName(name string) Option {
	return func(o *options) { o.schemaName = name }
}

// WithStringSize sets the size of MySQL varchar columns. Defaults to 255.
func WithStringSize(size int) Option {
	return func(o *options) { o.stringSize = size }
}

// WithCharset sets the MySQL character set of every table.
func WithCharset(charset string) Option {
	return func(o *options) { o.charset = charset }
}

// WithCollation sets the MySQL collation of every table.
func WithCollation(collation string) Option {
	return func(o *options) { o.collation = collation }
}

// Convert maps translated tables onto an atlas schema for the given
// dialect. Foreign keys must reference tables of the same batch.
func Convert(d string, tables []*schema.Table, opts ...Option) (*atlas.Schema, error) {
	typeOf, ok := columnTypes[d]
	if !ok {
		return nil, fmt.Errorf("sqlschema: unsupported dialect %q", d)
	}
	o := options{stringSize: 255}
	for _, opt := range opts {
		opt(&o)
	}
	var (
		s       = atlas.New(o.schemaName)
		byTable = make(map[*schema.Table]*atlas.Table, len(tables))
		columns = make(map[*schema.Field]*atlas.Column)
	)
	for _, t := range tables {
		at := atlas.NewTable(t.Name)
		for _, f := range t.Fields {
			ct, err := typeOf(f.Type, o)
			if err != nil {
				return nil, fmt.Errorf("sqlschema: %s.%s: %w", t.Name, f.Name, err)
			}
			c := atlas.NewColumn(f.Name).SetType(ct).SetNull(f.Nullable)
			if f.Default != nil && !f.Default.IsNull() {
				c.SetDefault(&atlas.Literal{V: f.Default.SQL()})
			}
			at.AddColumns(c)
			columns[f] = c
		}
		if pk := t.PrimaryKey; pk != nil {
			at.SetPrimaryKey(atlas.NewPrimaryKey(pick(columns, pk.Fields)...))
		}
		anonymous := 0
		for _, k := range t.CandidateKeys {
			name := k.Name
			if k.Anonymous() {
				name = fmt.Sprintf("UQ_%s_%d", t.Name, anonymous)
				anonymous++
			}
			at.AddIndexes(atlas.NewUniqueIndex(name).AddColumns(pick(columns, k.Fields)...))
		}
		for _, c := range t.Checks {
			expr := c.Clause.SQL()
			if d == dialect.MySQL {
				expr = backtick(expr)
			}
			at.AddChecks(atlas.NewCheck().SetName(c.Name).SetExpr(expr))
		}
		if d == dialect.MySQL && o.charset != "" {
			at.AddAttrs(&atlas.Charset{V: o.charset})
		}
		if d == dialect.MySQL && o.collation != "" {
			at.AddAttrs(&atlas.Collation{V: o.collation})
		}
		s.AddTables(at)
		byTable[t] = at
	}
	for _, t := range tables {
		at := byTable[t]
		for _, fk := range t.ForeignKeys {
			ref, ok := byTable[fk.RefTable]
			if !ok {
				return nil, fmt.Errorf("sqlschema: foreign key %s references table %s outside the batch", fk.Name, fk.RefTable.Name)
			}
			at.AddForeignKeys(atlas.NewForeignKey(fk.Name).
				AddColumns(pick(columns, fk.Fields)...).
				SetRefTable(ref).
				AddRefColumns(pick(columns, fk.RefFields)...).
				SetOnDelete(atlas.ReferenceOption(fk.OnDelete)).
				SetOnUpdate(atlas.ReferenceOption(fk.OnUpdate)))
		}
	}
	return s, nil
}

func pick(columns map[*schema.Field]*atlas.Column, fields []*schema.Field) []*atlas.Column {
	cs := make([]*atlas.Column, len(fields))
	for i, f := range fields {
		cs[i] = columns[f]
	}
	return cs
}

// columnTypes maps the stored field types to the column types of each
// dialect. Enumerations are stored as text; their CHECK constraint holds
// the enumerators.
var columnTypes = map[string]func(field.Type, options) (atlas.Type, error){
	dialect.SQLite:   sqliteType,
	dialect.MySQL:    mysqlType,
	dialect.Postgres: postgresType,
}

func sqliteType(t field.Type, _ options) (atlas.Type, error) {
	switch {
	case t == field.TypeBool:
		return &atlas.BoolType{T: "bool"}, nil
	case t.Integer():
		return &atlas.IntegerType{T: "integer"}, nil
	case t.Float():
		return &atlas.FloatType{T: "real"}, nil
	case t == field.TypeDecimal:
		return &atlas.DecimalType{T: "decimal"}, nil
	case t == field.TypeString, t == field.TypeEnum, t == field.TypeUUID:
		return &atlas.StringType{T: "text"}, nil
	case t == field.TypeTime:
		return &atlas.TimeType{T: "datetime"}, nil
	}
	return nil, unsupported(t)
}

var mysqlIntegers = map[field.Type]string{
	field.TypeInt8:   "tinyint",
	field.TypeInt16:  "smallint",
	field.TypeInt32:  "int",
	field.TypeInt64:  "bigint",
	field.TypeUint8:  "tinyint",
	field.TypeUint16: "smallint",
	field.TypeUint32: "int",
	field.TypeUint64: "bigint",
}

func mysqlType(t field.Type, o options) (atlas.Type, error) {
	switch {
	case t == field.TypeBool:
		return &atlas.BoolType{T: "bool"}, nil
	case t.Integer():
		return &atlas.IntegerType{T: mysqlIntegers[t], Unsigned: t.Unsigned()}, nil
	case t == field.TypeFloat32:
		return &atlas.FloatType{T: "float"}, nil
	case t == field.TypeFloat64:
		return &atlas.FloatType{T: "double"}, nil
	case t == field.TypeDecimal:
		return &atlas.DecimalType{T: "decimal", Precision: 38, Scale: 10}, nil
	case t == field.TypeString, t == field.TypeEnum:
		return &atlas.StringType{T: "varchar", Size: o.stringSize}, nil
	case t == field.TypeUUID:
		return &atlas.StringType{T: "char", Size: 36}, nil
	case t == field.TypeTime:
		return &atlas.TimeType{T: "datetime"}, nil
	}
	return nil, unsupported(t)
}

// Unsigned integers widen to the next signed type.
var postgresIntegers = map[field.Type]string{
	field.TypeInt8:   "smallint",
	field.TypeInt16:  "smallint",
	field.TypeInt32:  "integer",
	field.TypeInt64:  "bigint",
	field.TypeUint8:  "smallint",
	field.TypeUint16: "integer",
	field.TypeUint32: "bigint",
}

func postgresType(t field.Type, _ options) (atlas.Type, error) {
	switch {
	case t == field.TypeBool:
		return &atlas.BoolType{T: "boolean"}, nil
	case t == field.TypeUint64:
		return &atlas.DecimalType{T: "numeric", Precision: 20}, nil
	case t.Integer():
		return &atlas.IntegerType{T: postgresIntegers[t]}, nil
	case t == field.TypeFloat32:
		return &atlas.FloatType{T: "real"}, nil
	case t == field.TypeFloat64:
		return &atlas.FloatType{T: "double precision"}, nil
	case t == field.TypeDecimal:
		return &atlas.DecimalType{T: "numeric", Precision: 38, Scale: 10}, nil
	case t == field.TypeString, t == field.TypeEnum:
		return &atlas.StringType{T: "text"}, nil
	case t == field.TypeUUID:
		return &atlas.UUIDType{T: "uuid"}, nil
	case t == field.TypeTime:
		return &atlas.TimeType{T: "timestamp with time zone"}, nil
	}
	return nil, unsupported(t)
}

func unsupported(t field.Type) error {
	return fmt.Errorf("unsupported field type %v", t)
}

// backtick rewrites the double-quoted identifiers of a clause into MySQL
// backtick quoting. String literals are copied unchanged.
func backtick(expr string) string {
	var (
		b                 strings.Builder
		inString, inIdent bool
	)
	b.Grow(len(expr))
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch {
		case inString:
			b.WriteByte(c)
			inString = c != '\''
		case inIdent && c == '"' && i+1 < len(expr) && expr[i+1] == '"':
			b.WriteByte('"')
			i++
		case inIdent && c == '"':
			b.WriteByte('`')
			inIdent = false
		case inIdent && c == '`':
			b.WriteString("``")
		case inIdent:
			b.WriteByte(c)
		case c == '\'':
			b.WriteByte(c)
			inString = true
		case c == '"':
			b.WriteByte('`')
			inIdent = true
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
