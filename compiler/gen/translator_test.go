package gen

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/tabula/compiler/load"
	"github.com/syssam/tabula/schema"
	"github.com/syssam/tabula/schema/annotation"
	"github.com/syssam/tabula/schema/field"
)

var (
	int32T  = load.Scalar(field.TypeInt32)
	int64T  = load.Scalar(field.TypeInt64)
	stringT = load.Scalar(field.TypeString)
)

func newTranslator(t *testing.T, opts ...Option) *Translator {
	t.Helper()
	tr, err := New(opts...)
	require.NoError(t, err)
	return tr
}

func translate(t *testing.T, ti load.TypeInfo, opts ...Option) (*schema.Table, error) {
	t.Helper()
	return newTranslator(t, opts...).Translate(ti)
}

func checkSQL(tbl *schema.Table) map[string]string {
	out := make(map[string]string, len(tbl.Checks))
	for _, c := range tbl.Checks {
		out[c.Name] = c.Clause.SQL()
	}
	return out
}

func TestTranslateIDAndName(t *testing.T) {
	person := load.Entity("Person").
		Field("Id", int32T).
		Field("Name", stringT.Null())

	tbl, err := translate(t, person)
	require.NoError(t, err)
	assert.Equal(t, "Person", tbl.Name)
	assert.Equal(t, []string{"Id", "Name"}, tbl.FieldNames())
	assert.Equal(t, field.TypeInt32, tbl.Fields[0].Type)
	assert.False(t, tbl.Fields[0].Nullable)
	assert.True(t, tbl.Fields[1].Nullable)
	require.NotNil(t, tbl.PrimaryKey)
	assert.Equal(t, "PK_Person", tbl.PrimaryKey.Name)
	assert.Equal(t, []string{"Id"}, schema.Names(tbl.PrimaryKey.Fields))
	assert.Empty(t, tbl.CandidateKeys)
	assert.Empty(t, tbl.ForeignKeys)
	assert.Empty(t, tbl.Checks)
	assert.False(t, schema.ValidateTable(tbl).HasErrors())
}

func TestTranslateScenarios(t *testing.T) {
	t.Run("length interval [5, 3]", func(t *testing.T) {
		_, err := translate(t, load.Entity("T").
			Field("ID", int64T).
			Field("Name", stringT,
				annotation.LengthIsAtLeast{Min: 5},
				annotation.LengthIsAtMost{Max: 3},
			))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConflictingConstraints)
		assert.Contains(t, err.Error(), "[5, 3]")
		assert.Contains(t, err.Error(), "member: Name")
	})

	t.Run("one of 1, 2, 3 but none of them", func(t *testing.T) {
		_, err := translate(t, load.Entity("T").
			Field("ID", int64T).
			Field("Level", int32T,
				annotation.IsOneOf{Values: []any{1, 2, 3}},
				annotation.Compare{Op: schema.OpNEQ, Anchor: 1},
				annotation.Compare{Op: schema.OpNEQ, Anchor: 2},
				annotation.Compare{Op: schema.OpNEQ, Anchor: 3},
			))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConflictingConstraints)
		assert.Contains(t, err.Error(), "[Check.IsOneOf]")
	})

	t.Run("positive and negative", func(t *testing.T) {
		for _, order := range [][]annotation.Annotation{
			{annotation.IsPositive{}, annotation.IsNegative{}},
			{annotation.IsNegative{}, annotation.IsPositive{}},
		} {
			_, err := translate(t, load.Entity("T").Field("ID", int64T).Field("Delta", int32T, order...))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMutualExclusion)
			assert.Contains(t, err.Error(), "[Check.IsPositive]")
			assert.Contains(t, err.Error(), "[Check.IsNegative]")
		}
	})

	t.Run("two members pinned to column 0", func(t *testing.T) {
		_, err := translate(t, load.Entity("T").
			Field("A", int64T, annotation.Column{Index: 0}).
			Field("B", int64T, annotation.Column{Index: 0}))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrColumnAssignment)
		assert.Contains(t, err.Error(), "A and B")
	})
}

func TestTranslateMemberErrors(t *testing.T) {
	upper := func(f *schema.Field) (schema.Clause, error) {
		return &schema.Raw{Expr: "UPPER(" + schema.Quote(f.Name) + ") = " + schema.Quote(f.Name), Refs: []*schema.Field{f}}, nil
	}
	same := func(v any) (any, error) { return v, nil }
	toEnum := field.NewConverter(field.TypeString, field.TypeEnum, same, same)
	tests := []struct {
		name    string
		vt      load.ValueType
		annots  []annotation.Annotation
		wantErr error
	}{
		{"empty name", stringT, []annotation.Annotation{annotation.Rename{Name: ""}}, ErrName},
		{"rename to the declared name", stringT, []annotation.Annotation{annotation.Rename{Name: "X"}}, ErrName},
		{"nested rename to the member name", load.Composite(load.Aggregate("P").Field("A", int32T).Field("B", int32T)), []annotation.Annotation{annotation.Rename{Path: "A", Name: "X"}}, ErrName},
		{"renamed twice", stringT, []annotation.Annotation{annotation.Rename{Name: "Y"}, annotation.Rename{Name: "Z"}}, ErrDuplicateAnnotation},
		{"unknown path", stringT, []annotation.Annotation{annotation.Default{Path: "nested", Value: "x"}}, ErrPath},
		{"nullable twice", stringT, []annotation.Annotation{annotation.Nullable{}, annotation.Nullable{}}, ErrDuplicateAnnotation},
		{"nullable and non-nullable", stringT, []annotation.Annotation{annotation.Nullable{}, annotation.NonNullable{}}, ErrMutualExclusion},
		{"restated nullability", stringT, []annotation.Annotation{annotation.NonNullable{}}, ErrInapplicableConstraint},
		{"restated nullable", stringT.Null(), []annotation.Annotation{annotation.Nullable{}}, ErrInapplicableConstraint},
		{"negative column", stringT, []annotation.Annotation{annotation.Column{Index: -1}}, ErrValue},
		{"pinned twice", stringT, []annotation.Annotation{annotation.Column{Index: 1}, annotation.Column{Index: 2}}, ErrDuplicateAnnotation},
		{"converter source mismatch", stringT, []annotation.Annotation{annotation.Convert{Converter: field.BoolToInt}}, ErrType},
		{"nil converter", stringT, []annotation.Annotation{annotation.Convert{}}, ErrType},
		{"converter result not storable", stringT, []annotation.Annotation{annotation.Convert{Converter: toEnum}}, ErrType},
		{"converted twice", load.Scalar(field.TypeBool), []annotation.Annotation{annotation.Convert{Converter: field.BoolToInt}, annotation.Convert{Converter: field.BoolToInt}}, ErrDuplicateAnnotation},
		{"default does not parse", int32T, []annotation.Annotation{annotation.Default{Value: "many"}}, ErrValue},
		{"null default", int32T, []annotation.Annotation{annotation.Default{Value: nil}}, ErrValue},
		{"default twice", int32T, []annotation.Annotation{annotation.Default{Value: 1}, annotation.Default{Value: 2}}, ErrDuplicateAnnotation},
		{"nullable primary key", stringT.Null(), []annotation.Annotation{annotation.PrimaryKey{}}, ErrInapplicableConstraint},
		{"primary key twice", stringT, []annotation.Annotation{annotation.PrimaryKey{}, annotation.PrimaryKey{}}, ErrDuplicateAnnotation},
		{"reserved key name", stringT, []annotation.Annotation{annotation.Unique{Name: DefaultAnonymousKeyPrefix + "1"}}, ErrName},
		{"same key twice", stringT, []annotation.Annotation{annotation.Unique{Name: "UQ"}, annotation.Unique{Name: "UQ"}}, ErrDuplicateAnnotation},
		{"positive text", stringT, []annotation.Annotation{annotation.IsPositive{}}, ErrInapplicableConstraint},
		{"negative unsigned", load.Scalar(field.TypeUint16), []annotation.Annotation{annotation.IsNegative{}}, ErrInapplicableConstraint},
		{"positive twice", int32T, []annotation.Annotation{annotation.IsPositive{}, annotation.IsPositive{}}, ErrDuplicateAnnotation},
		{"less than the minimum", load.Scalar(field.TypeInt8), []annotation.Annotation{annotation.Compare{Op: schema.OpLT, Anchor: -128}}, ErrUnsatisfiableConstraint},
		{"greater than the maximum", load.Scalar(field.TypeUint8), []annotation.Annotation{annotation.Compare{Op: schema.OpGT, Anchor: 255}}, ErrUnsatisfiableConstraint},
		{"ordering a boolean", load.Scalar(field.TypeBool), []annotation.Annotation{annotation.Compare{Op: schema.OpLT, Anchor: true}}, ErrInapplicableConstraint},
		{"null anchor", int32T, []annotation.Annotation{annotation.Compare{Op: schema.OpEQ}}, ErrValue},
		{"anchor does not parse", int32T, []annotation.Annotation{annotation.Compare{Op: schema.OpEQ, Anchor: "x"}}, ErrValue},
		{"length of a number", int32T, []annotation.Annotation{annotation.IsNonEmpty{}}, ErrInapplicableConstraint},
		{"negative length", stringT, []annotation.Annotation{annotation.LengthIsAtMost{Max: -1}}, ErrValue},
		{"inverted length range", stringT, []annotation.Annotation{annotation.LengthIsBetween{Min: 4, Max: 2}}, ErrValue},
		{"empty value set", int32T, []annotation.Annotation{annotation.IsOneOf{}}, ErrValue},
		{"null in value set", int32T, []annotation.Annotation{annotation.IsNotOneOf{Values: []any{1, nil}}}, ErrValue},
		{"one of and not one of", int32T, []annotation.Annotation{annotation.IsOneOf{Values: []any{1}}, annotation.IsNotOneOf{Values: []any{2}}}, ErrMutualExclusion},
		{"empty interval", int32T, []annotation.Annotation{annotation.Compare{Op: schema.OpGT, Anchor: 5}, annotation.Compare{Op: schema.OpLTE, Anchor: 5}}, ErrConflictingConstraints},
		{"both booleans disallowed", load.Scalar(field.TypeBool), []annotation.Annotation{annotation.Compare{Op: schema.OpNEQ, Anchor: true}, annotation.Compare{Op: schema.OpNEQ, Anchor: false}}, ErrConflictingConstraints},
		{"single point disallowed", int32T, []annotation.Annotation{annotation.Compare{Op: schema.OpEQ, Anchor: 5}, annotation.IsNotOneOf{Values: []any{5}}}, ErrConflictingConstraints},
		{"default outside the range", int32T, []annotation.Annotation{annotation.IsPositive{}, annotation.Default{Value: 0}}, ErrDefaultViolation},
		{"default not allowed", stringT, []annotation.Annotation{annotation.IsOneOf{Values: []any{"a", "b"}}, annotation.Default{Value: "c"}}, ErrDefaultViolation},
		{"default too short", stringT, []annotation.Annotation{annotation.IsNonEmpty{}, annotation.Default{Value: ""}}, ErrDefaultViolation},
		{"check without generator", stringT, []annotation.Annotation{annotation.Check{}}, ErrValue},
		{"type annotation on a member", stringT, []annotation.Annotation{annotation.Table{Name: "X"}}, ErrInapplicableConstraint},
		{"nil annotation", stringT, []annotation.Annotation{nil}, ErrValue},
		{"converter on an aggregate", load.Composite(load.Aggregate("A").Field("P", int32T).Field("Q", int32T)), []annotation.Annotation{annotation.Convert{Converter: field.BoolToInt}}, ErrType},
		{"check on a missing path", stringT, []annotation.Annotation{annotation.Check{Path: "inner", Func: upper}}, ErrPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := translate(t, load.Entity("T").Field("ID", int64T).Field("X", tt.vt, tt.annots...))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrTranslation)
			var terr *Error
			require.ErrorAs(t, err, &terr)
			assert.Equal(t, "T", terr.Type)
			assert.Equal(t, "X", terr.Member)
		})
	}
}

func TestTranslateTypeErrors(t *testing.T) {
	tests := []struct {
		name    string
		typ     load.TypeInfo
		wantErr error
	}{
		{"aggregate", load.Aggregate("A").Field("ID", int64T).Field("B", int64T), ErrIneligibleType},
		{"abstract", load.Entity("A").SetAbstract().Field("ID", int64T).Field("B", int64T), ErrIneligibleType},
		{"generic", load.Entity("A").SetGeneric().Field("ID", int64T).Field("B", int64T), ErrIneligibleType},
		{"interface", load.NewType("A", load.CategoryInterface), ErrIneligibleType},
		{"single field", load.Entity("A").Field("ID", int64T), ErrIneligibleType},
		{"no primary key", load.Entity("A").Field("B", stringT.Null()).Field("C", stringT.Null()), ErrKeyDeduction},
		{"ambiguous primary key", load.Entity("A").Field("B", int64T).Field("C", int64T).Field("D", stringT.Null()), ErrKeyDeduction},
		{"field name collision", load.Entity("A").Field("ID", int64T).Field("B", int64T, annotation.Rename{Name: "ID"}), ErrNameCollision},
		{"empty table name", load.Entity("A").Field("ID", int64T).Field("B", int64T).Annotate(annotation.Table{}), ErrName},
		{"table named twice", load.Entity("A").Field("ID", int64T).Field("B", int64T).Annotate(annotation.Table{Name: "X"}, annotation.Table{Name: "Y"}), ErrDuplicateAnnotation},
		{"empty primary key name", load.Entity("A").Field("ID", int64T).Field("B", int64T).Annotate(annotation.NamedPrimaryKey{}), ErrName},
		{"primary key named twice", load.Entity("A").Field("ID", int64T).Field("B", int64T).Annotate(annotation.NamedPrimaryKey{Name: "P"}, annotation.NamedPrimaryKey{Name: "Q"}), ErrDuplicateAnnotation},
		{"key named like the primary key", load.Entity("A").Field("ID", int64T).Field("B", int64T, annotation.Unique{Name: "PK_A"}), ErrNameCollision},
		{"complex check on a missing field", load.Entity("A").Field("ID", int64T).Field("B", int64T).Annotate(annotation.ComplexCheck{
			Fields: []string{"ID", "C"},
			Func:   func([]*schema.Field) (schema.Clause, error) { return &schema.Raw{Expr: "1 = 1"}, nil },
		}), ErrPath},
		{"complex check without generator", load.Entity("A").Field("ID", int64T).Field("B", int64T).Annotate(annotation.ComplexCheck{Fields: []string{"ID"}}), ErrValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := translate(t, tt.typ)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			var terr *Error
			require.ErrorAs(t, err, &terr)
			assert.Equal(t, "A", terr.Type)
		})
	}
}

func TestTranslateTableNames(t *testing.T) {
	t.Run("snake plural", func(t *testing.T) {
		tbl, err := translate(t, load.Entity("UserGroup").Field("ID", int64T).Field("Name", stringT.Null()),
			WithTableNaming(NamingSnakePlural))
		require.NoError(t, err)
		assert.Equal(t, "user_groups", tbl.Name)
		assert.Equal(t, "PK_user_groups", tbl.PrimaryKey.Name)
	})

	t.Run("declared names", func(t *testing.T) {
		tbl, err := translate(t, load.Entity("User").
			Field("ID", int64T).
			Field("Name", stringT.Null()).
			Annotate(annotation.Table{Name: "accounts"}, annotation.NamedPrimaryKey{Name: "accounts_pkey"}))
		require.NoError(t, err)
		assert.Equal(t, "accounts", tbl.Name)
		assert.Equal(t, "accounts_pkey", tbl.PrimaryKey.Name)
	})

	t.Run("tables are unique", func(t *testing.T) {
		tr := newTranslator(t, WithCaseInsensitiveNames())
		_, err := tr.Translate(load.Entity("A").Field("ID", int64T).Field("B", int64T.Null()).Annotate(annotation.Table{Name: "items"}))
		require.NoError(t, err)
		_, err = tr.Translate(load.Entity("B").Field("ID", int64T).Field("B", int64T.Null()).Annotate(annotation.Table{Name: "Items"}))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNameCollision)
		assert.Contains(t, err.Error(), "already used by A")
	})

	t.Run("case-insensitive field names", func(t *testing.T) {
		_, err := translate(t, load.Entity("A").Field("ID", int64T).Field("id", int64T.Null()), WithCaseInsensitiveNames())
		assert.ErrorIs(t, err, ErrNameCollision)
	})
}

func TestTranslatePrimaryKey(t *testing.T) {
	tests := []struct {
		name string
		typ  *load.Type
		want []string
	}{
		{
			name: "opted in",
			typ: load.Entity("Order").
				Field("ID", int64T).
				Field("Tenant", int64T, annotation.PrimaryKey{}).
				Field("Number", int64T, annotation.PrimaryKey{}),
			want: []string{"Tenant", "Number"},
		},
		{
			name: "named ID",
			typ:  load.Entity("Order").Field("Number", int64T).Field("ID", int64T),
			want: []string{"ID"},
		},
		{
			name: "named after the type",
			typ:  load.Entity("Order").Field("Number", int64T).Field("OrderID", int64T),
			want: []string{"OrderID"},
		},
		{
			name: "only strict candidate key",
			typ: load.Entity("Order").
				Field("Code", stringT, annotation.Unique{Name: "UQ_Code"}).
				Field("Number", int64T).
				Field("Note", stringT.Null()),
			want: []string{"Code"},
		},
		{
			name: "all fields when none is nullable",
			typ:  load.Entity("Pair").Field("Left", int64T).Field("Right", int64T),
			want: []string{"Left", "Right"},
		},
		{
			name: "only non-nullable field",
			typ:  load.Entity("Order").Field("Number", int64T).Field("Note", stringT.Null()),
			want: []string{"Number"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := translate(t, tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.want, schema.Names(tbl.PrimaryKey.Fields))
			for _, ck := range tbl.CandidateKeys {
				assert.False(t, schema.SameFields(ck.Fields, tbl.PrimaryKey.Fields))
			}
		})
	}
}

func TestTranslateCandidateKeys(t *testing.T) {
	t.Run("named keys win over anonymous ones", func(t *testing.T) {
		tbl, err := translate(t, load.Entity("T").
			Field("ID", int64T).
			Field("Code", stringT, annotation.Unique{}, annotation.Unique{Name: "UQ_Code"}).
			Field("Note", stringT.Null()))
		require.NoError(t, err)
		require.Len(t, tbl.CandidateKeys, 1)
		assert.Equal(t, "UQ_Code", tbl.CandidateKeys[0].Name)
		assert.Equal(t, []string{"Code"}, schema.Names(tbl.CandidateKeys[0].Fields))
	})

	t.Run("composite and anonymous keys", func(t *testing.T) {
		tbl, err := translate(t, load.Entity("T").
			Field("ID", int64T).
			Field("Tenant", int64T, annotation.Unique{Name: "UQ_Slug"}).
			Field("Slug", stringT, annotation.Unique{Name: "UQ_Slug"}).
			Field("Email", stringT.Null(), annotation.Unique{}))
		require.NoError(t, err)
		require.Len(t, tbl.CandidateKeys, 2)
		assert.Equal(t, "UQ_Slug", tbl.CandidateKeys[0].Name)
		assert.Equal(t, []string{"Tenant", "Slug"}, schema.Names(tbl.CandidateKeys[0].Fields))
		assert.True(t, tbl.CandidateKeys[1].Anonymous())
		assert.Equal(t, []string{"Email"}, schema.Names(tbl.CandidateKeys[1].Fields))
	})

	t.Run("supersets are eliminated", func(t *testing.T) {
		tbl, err := translate(t, load.Entity("T").
			Field("ID", int64T).
			Field("A", int64T, annotation.Unique{Name: "UQ_A"}, annotation.Unique{Name: "UQ_AB"}).
			Field("B", int64T, annotation.Unique{Name: "UQ_AB"}))
		require.NoError(t, err)
		require.Len(t, tbl.CandidateKeys, 1)
		assert.Equal(t, "UQ_A", tbl.CandidateKeys[0].Name)
	})

	t.Run("deduction is deterministic", func(t *testing.T) {
		build := func(first, second string) *schema.Table {
			tbl, err := translate(t, load.Entity("Item").
				Field("Code", stringT, annotation.Unique{Name: first}, annotation.Unique{Name: second}).
				Field("Label", stringT.Null(), annotation.Unique{Name: "UQ_Label"}))
			require.NoError(t, err)
			return tbl
		}
		a, b := build("b", "a"), build("a", "b")
		assert.Equal(t, schema.Names(a.PrimaryKey.Fields), schema.Names(b.PrimaryKey.Fields))
		assert.Equal(t, []string{"Code"}, schema.Names(a.PrimaryKey.Fields))
		require.Len(t, a.CandidateKeys, 1)
		require.Len(t, b.CandidateKeys, 1)
		assert.Equal(t, a.CandidateKeys[0].Name, b.CandidateKeys[0].Name)
		assert.Equal(t, "UQ_Label", a.CandidateKeys[0].Name)
	})
}

func TestTranslateChecks(t *testing.T) {
	status := &load.EnumInfo{Name: "Status", Values: []string{"Open", "Closed", "Archived"}}
	even := func(f *schema.Field) (schema.Clause, error) {
		return &schema.Raw{Expr: schema.Quote(f.Name) + " % 2 = 0", Refs: []*schema.Field{f}}, nil
	}
	order := load.Entity("Order").
		Field("ID", int64T).
		Field("Age", int32T, annotation.Compare{Op: schema.OpGTE, Anchor: 18}, annotation.Compare{Op: schema.OpLT, Anchor: 130}).
		Field("Name", stringT, annotation.LengthIsBetween{Min: 1, Max: 50}).
		Field("Code", stringT, annotation.LengthIsAtLeast{Min: 3}, annotation.LengthIsAtMost{Max: 3}).
		Field("Status", load.Enum(status)).
		Field("Rank", load.Enum(status), annotation.Convert{Converter: field.EnumToOrdinal(status.Values...)}, annotation.IsNotOneOf{Values: []any{2}}).
		Field("Size", int32T, annotation.IsNonZero{}, annotation.Check{Func: even}).
		Field("Color", stringT, annotation.IsOneOf{Values: []any{"red", "blue"}}, annotation.Default{Value: "red"}).
		Annotate(annotation.ComplexCheck{
			Fields: []string{"Age", "Size"},
			Func: func(fs []*schema.Field) (schema.Clause, error) {
				return &schema.Raw{Expr: schema.Quote(fs[0].Name) + " > " + schema.Quote(fs[1].Name), Refs: fs}, nil
			},
		})

	tbl, err := translate(t, order)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"CK_Order_Age_0":    `"Age" >= 18 AND "Age" < 130`,
		"CK_Order_Name_0":   `LENGTH("Name") >= 1 AND LENGTH("Name") <= 50`,
		"CK_Order_Code_0":   `LENGTH("Code") = 3`,
		"CK_Order_Status_0": `"Status" IN ('Open', 'Closed', 'Archived')`,
		"CK_Order_Rank_0":   `"Rank" IN (0, 1)`,
		"CK_Order_Rank_1":   `"Rank" NOT IN (2)`,
		"CK_Order_Size_0":   `"Size" NOT IN (0)`,
		"CK_Order_Size_1":   `"Size" % 2 = 0`,
		"CK_Order_Color_0":  `"Color" IN ('red', 'blue')`,
		"CK_Order_0":        `"Age" > "Size"`,
	}, checkSQL(tbl))

	rank, ok := tbl.Field("Rank")
	require.True(t, ok)
	assert.Equal(t, field.TypeInt32, rank.Type)
	status2, _ := tbl.Field("Status")
	assert.Equal(t, field.TypeEnum, status2.Type)
	color, _ := tbl.Field("Color")
	require.NotNil(t, color.Default)
	assert.Equal(t, "red", color.Default.Interface())
}

func TestTranslateDefaults(t *testing.T) {
	status := &load.EnumInfo{Name: "Status", Values: []string{"Open", "Closed"}}

	t.Run("defaults are stored converted", func(t *testing.T) {
		tbl, err := translate(t, load.Entity("T").
			Field("ID", int64T).
			Field("Status", load.Enum(status),
				annotation.Convert{Converter: field.EnumToOrdinal(status.Values...)},
				annotation.Default{Value: "Closed"}))
		require.NoError(t, err)
		f, _ := tbl.Field("Status")
		require.NotNil(t, f.Default)
		assert.Equal(t, field.Int(field.TypeInt32, 1), *f.Default)
	})

	t.Run("unknown enumerator", func(t *testing.T) {
		_, err := translate(t, load.Entity("T").
			Field("ID", int64T).
			Field("Status", load.Enum(status), annotation.Default{Value: "Lost"}))
		assert.ErrorIs(t, err, ErrValue)
	})

	t.Run("null default on a nullable field", func(t *testing.T) {
		tbl, err := translate(t, load.Entity("T").
			Field("ID", int64T).
			Field("Note", stringT.Null(), annotation.Default{Value: nil}))
		require.NoError(t, err)
		f, _ := tbl.Field("Note")
		require.NotNil(t, f.Default)
		assert.True(t, f.Default.IsNull())
	})

	t.Run("enumeration without enumerators", func(t *testing.T) {
		_, err := translate(t, load.Entity("T").
			Field("ID", int64T).
			Field("Status", load.Enum(&load.EnumInfo{Name: "Empty"})))
		assert.ErrorIs(t, err, ErrType)
	})
}

func TestTranslateColumns(t *testing.T) {
	tbl, err := translate(t, load.Entity("T").
		Field("ID", int64T).
		Field("Name", stringT.Null(), annotation.Column{Index: 0}).
		Field("Note", stringT.Null()))
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "ID", "Note"}, tbl.FieldNames())
	for i, f := range tbl.Fields {
		assert.Equal(t, i, f.Column)
	}
}

func TestTranslateAggregates(t *testing.T) {
	address := load.Aggregate("Address").
		Field("Street", stringT, annotation.IsNonEmpty{}).
		Field("Zip", stringT, annotation.Unique{})
	customer := load.Entity("Customer").
		Field("ID", int64T).
		Field("Home", load.Composite(address), annotation.Rename{Path: "Street", Name: "Road"}).
		Field("Work", load.Composite(address).Null())

	tr := newTranslator(t, WithPathSeparator("_"))
	tbl, err := tr.Translate(customer)
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "Home_Road", "Home_Zip", "Work_Street", "Work_Zip"}, tbl.FieldNames())
	assert.False(t, tbl.Fields[1].Nullable)
	assert.True(t, tbl.Fields[3].Nullable)
	assert.True(t, tbl.Fields[4].Nullable)
	assert.Equal(t, []string{"ID"}, schema.Names(tbl.PrimaryKey.Fields))
	require.Len(t, tbl.CandidateKeys, 2)
	assert.Equal(t, []string{"Home_Zip"}, schema.Names(tbl.CandidateKeys[0].Fields))
	assert.Equal(t, []string{"Work_Zip"}, schema.Names(tbl.CandidateKeys[1].Fields))
	assert.Contains(t, checkSQL(tbl), "CK_Customer_Home_Road_0")
	assert.Contains(t, checkSQL(tbl), "CK_Customer_Work_Street_0")

	td, err := tr.Descriptor(address)
	require.NoError(t, err)
	require.Len(t, td.Fields, 2)
	assert.Equal(t, "Street", td.Fields[0].Path)
	assert.Equal(t, 1, *td.Fields[1].Column)

	td, err = tr.Descriptor(customer)
	require.NoError(t, err)
	d, ok := td.Field("Home.Street")
	require.True(t, ok)
	assert.Equal(t, []string{"Home", "Road"}, d.Name)
}

func TestTranslateAggregateAnnotations(t *testing.T) {
	t.Run("nested path constraints", func(t *testing.T) {
		money := load.Aggregate("Money").Field("Amount", int64T).Field("Currency", stringT)
		tbl, err := translate(t, load.Entity("Invoice").
			Field("ID", int64T).
			Field("Total", load.Composite(money),
				annotation.IsPositive{Path: "Amount"},
				annotation.LengthIsBetween{Path: "Currency", Min: 3, Max: 3},
				annotation.Nullable{Path: "Currency"},
			))
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"CK_Invoice_Total.Amount_0":   `"Total.Amount" > 0`,
			"CK_Invoice_Total.Currency_0": `LENGTH("Total.Currency") = 3`,
		}, checkSQL(tbl))
		f, _ := tbl.Field("Total.Currency")
		assert.True(t, f.Nullable)
	})

	t.Run("pinned aggregate", func(t *testing.T) {
		pair := load.Aggregate("Pair").Field("X", int32T).Field("Y", int32T)
		tbl, err := translate(t, load.Entity("Point").
			Field("ID", int64T).
			Field("Label", stringT.Null()).
			Field("At", load.Composite(pair), annotation.Column{Index: 0}))
		require.NoError(t, err)
		assert.Equal(t, []string{"At.X", "At.Y", "ID", "Label"}, tbl.FieldNames())
	})

	t.Run("complex checks follow the aggregate", func(t *testing.T) {
		span := load.Aggregate("Span").
			Field("Start", int32T).
			Field("End", int32T).
			Annotate(annotation.ComplexCheck{
				Fields: []string{"Start", "End"},
				Func: func(fs []*schema.Field) (schema.Clause, error) {
					return &schema.Raw{Expr: schema.Quote(fs[0].Name) + " <= " + schema.Quote(fs[1].Name), Refs: fs}, nil
				},
			})
		tbl, err := translate(t, load.Entity("Booking").
			Field("ID", int64T).
			Field("Stay", load.Composite(span)))
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"CK_Booking_0": `"Stay.Start" <= "Stay.End"`}, checkSQL(tbl))
	})

	t.Run("complex checks of a repeated aggregate", func(t *testing.T) {
		span := load.Aggregate("Span").
			Field("Start", int32T).
			Field("End", int32T).
			Annotate(annotation.ComplexCheck{
				Fields: []string{"Start", "End"},
				Func: func(fs []*schema.Field) (schema.Clause, error) {
					return &schema.Raw{Expr: schema.Quote(fs[0].Name) + " <= " + schema.Quote(fs[1].Name), Refs: fs}, nil
				},
			})
		booking := load.Entity("Booking").
			Field("ID", int64T).
			Field("Stay", load.Composite(span)).
			Field("Billing", load.Composite(span))
		lease := load.Entity("Lease").
			Field("ID", int64T).
			Field("Period", load.Composite(span))

		tr := newTranslator(t)
		tbl, err := tr.Translate(booking)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"CK_Booking_0": `"Stay.Start" <= "Stay.End"`,
			"CK_Booking_1": `"Billing.Start" <= "Billing.End"`,
		}, checkSQL(tbl))

		tbl, err = tr.Translate(lease)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"CK_Lease_0": `"Period.Start" <= "Period.End"`}, checkSQL(tbl))

		td, err := tr.Descriptor(span)
		require.NoError(t, err)
		require.Len(t, td.Checks, 1)
		assert.Equal(t, []Path{"Start", "End"}, td.Checks[0].Paths)
		td.Checks[0].Paths[0] = "Changed"
		td, err = tr.Descriptor(span)
		require.NoError(t, err)
		assert.Equal(t, []Path{"Start", "End"}, td.Checks[0].Paths)
	})

	t.Run("aggregate containing itself", func(t *testing.T) {
		node := load.Aggregate("Node")
		node.Field("Value", int32T).Field("Next", load.Composite(node))
		_, err := translate(t, load.Entity("List").Field("ID", int64T).Field("Head", load.Composite(node)))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrReferenceCycle)
	})

	t.Run("table annotation on an aggregate", func(t *testing.T) {
		agg := load.Aggregate("Agg").Field("A", int32T).Annotate(annotation.Table{Name: "x"})
		_, err := translate(t, load.Entity("E").Field("ID", int64T).Field("Agg", load.Composite(agg)))
		assert.ErrorIs(t, err, ErrInapplicableConstraint)
	})
}

func TestTranslateReferences(t *testing.T) {
	owner := load.Entity("Owner").
		Field("Tenant", int64T, annotation.PrimaryKey{}).
		Field("Number", int32T, annotation.PrimaryKey{}).
		Field("Name", stringT.Null())
	pet := load.Entity("Pet").
		Field("ID", int64T).
		Field("Owner", load.Composite(owner)).
		Field("Sitter", load.Composite(owner).Null())

	tr := newTranslator(t)
	tbl, err := tr.Translate(pet)
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "Owner.Tenant", "Owner.Number", "Sitter.Tenant", "Sitter.Number"}, tbl.FieldNames())
	assert.True(t, tbl.Fields[3].Nullable)

	tables := tr.Tables()
	require.Len(t, tables, 2)
	assert.Equal(t, "Owner", tables[0].Name)
	assert.Same(t, tbl, tables[1])

	require.Len(t, tbl.ForeignKeys, 2)
	fk := tbl.ForeignKeys[0]
	assert.Equal(t, "FK_Pet_Owner", fk.Name)
	assert.Same(t, tables[0], fk.RefTable)
	assert.Equal(t, []string{"Owner.Tenant", "Owner.Number"}, schema.Names(fk.Fields))
	assert.Equal(t, []string{"Tenant", "Number"}, schema.Names(fk.RefFields))
	assert.Equal(t, schema.Cascade, fk.OnDelete)
	assert.Equal(t, schema.Cascade, fk.OnUpdate)
	assert.Equal(t, "FK_Pet_Sitter", tbl.ForeignKeys[1].Name)
	assert.False(t, schema.ValidateSchema(tables).HasErrors())

	again, err := tr.Translate(owner)
	require.NoError(t, err)
	assert.Same(t, tables[0], again)
}

func TestTranslateReferenceCycle(t *testing.T) {
	a := load.Entity("A")
	b := load.Entity("B")
	a.Field("ID", int64T).Field("B", load.Composite(b))
	b.Field("ID", int64T).Field("A", load.Composite(a))

	tr := newTranslator(t)
	_, err := tr.Translate(a)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReferenceCycle)
	var terr *Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "A", terr.Type)
	assert.Equal(t, "B", terr.Member)
	assert.NotNil(t, errors.Unwrap(terr))
	assert.Empty(t, tr.Tables())

	_, err = tr.Translate(a)
	assert.ErrorIs(t, err, ErrReferenceCycle, "a failed translation leaves no in-progress mark")

	tbl, err := tr.Translate(load.Entity("C").Field("ID", int64T).Field("Name", stringT.Null()))
	require.NoError(t, err)
	assert.Equal(t, "C", tbl.Name)
}

func TestTranslateFailureKeepsFinishedTables(t *testing.T) {
	owner := load.Entity("Owner").Field("ID", int64T).Field("Name", stringT.Null())
	broken := load.Entity("Broken").
		Field("ID", int64T).
		Field("Owner", load.Composite(owner)).
		Field("Bad", int32T, annotation.IsPositive{}, annotation.IsNegative{})

	tr := newTranslator(t)
	_, err := tr.Translate(broken)
	require.ErrorIs(t, err, ErrMutualExclusion)
	require.Len(t, tr.Tables(), 1)
	assert.Equal(t, "Owner", tr.Tables()[0].Name)
}

func TestTranslateLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	_, err := translate(t, load.Entity("Person").Field("ID", int64T).Field("Name", stringT.Null()), WithLogger(logger))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "translating entity")
	assert.Contains(t, buf.String(), "column layout solved")
	assert.Contains(t, buf.String(), "entity translated")
	assert.Contains(t, buf.String(), "table=Person")
}
