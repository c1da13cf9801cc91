package schema_test

import (
	"testing"

	"github.com/syssam/tabula/schema"
	"github.com/syssam/tabula/schema/field"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTable(name string, fields ...*schema.Field) *schema.Table {
	for i, f := range fields {
		f.Column = i
	}
	return &schema.Table{Name: name, Fields: fields}
}

func TestClauseSQL(t *testing.T) {
	age := &schema.Field{Name: "Age", Type: field.TypeInt32}
	name := &schema.Field{Name: "Name", Type: field.TypeString}

	t.Run("Comparison", func(t *testing.T) {
		c := &schema.Comparison{Operand: schema.Operand{Field: age}, Op: schema.OpGTE, Value: field.MustParse(field.TypeInt32, 0)}
		assert.Equal(t, `"Age" >= 0`, c.SQL())
		assert.Equal(t, []*schema.Field{age}, c.Fields())
	})

	t.Run("Length", func(t *testing.T) {
		c := &schema.Comparison{Operand: schema.Operand{Field: name, Func: schema.FuncLength}, Op: schema.OpLTE, Value: field.MustParse(field.TypeInt64, 10)}
		assert.Equal(t, `LENGTH("Name") <= 10`, c.SQL())
	})

	t.Run("Inclusion", func(t *testing.T) {
		c := &schema.Inclusion{Operand: schema.Operand{Field: name}, Values: []field.Value{field.String("a"), field.String("b'c")}}
		assert.Equal(t, `"Name" IN ('a', 'b''c')`, c.SQL())
		c.Negated = true
		assert.Equal(t, `"Name" NOT IN ('a', 'b''c')`, c.SQL())
	})

	t.Run("Nested", func(t *testing.T) {
		lo := &schema.Comparison{Operand: schema.Operand{Field: age}, Op: schema.OpGT, Value: field.MustParse(field.TypeInt32, 0)}
		hi := &schema.Comparison{Operand: schema.Operand{Field: age}, Op: schema.OpLT, Value: field.MustParse(field.TypeInt32, 100)}
		raw := &schema.Raw{Expr: `"Name" <> ''`, Refs: []*schema.Field{name}}
		c := schema.Or{schema.And{lo, hi}, &schema.Not{Clause: raw}}
		assert.Equal(t, `("Age" > 0 AND "Age" < 100) OR NOT ("Name" <> '')`, c.SQL())
		assert.Equal(t, []*schema.Field{age, name}, c.Fields())
	})

	t.Run("Quote", func(t *testing.T) {
		assert.Equal(t, `"a""b"`, schema.Quote(`a"b`))
		assert.Equal(t, "<>", schema.OpNEQ.String())
	})
}

func TestTable(t *testing.T) {
	id := &schema.Field{Name: "ID", Type: field.TypeInt64}
	email := &schema.Field{Name: "Email", Type: field.TypeString}
	tbl := newTable("User", id, email)
	tbl.PrimaryKey = &schema.PrimaryKey{Name: "PK_User", Fields: []*schema.Field{id}}
	tbl.CandidateKeys = []*schema.CandidateKey{{Fields: []*schema.Field{email}}}

	f, ok := tbl.Field("Email")
	require.True(t, ok)
	assert.Same(t, email, f)
	_, ok = tbl.Field("Missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"ID", "Email"}, tbl.FieldNames())
	assert.True(t, tbl.CandidateKeys[0].Anonymous())
	assert.Equal(t, "<anonymous>(Email)", tbl.CandidateKeys[0].String())
	assert.Equal(t, "PK_User(ID)", tbl.PrimaryKey.String())
	assert.True(t, schema.SameFields([]*schema.Field{id, email}, []*schema.Field{email, id}))
	assert.False(t, schema.SameFields([]*schema.Field{id}, []*schema.Field{email}))
}

func TestValidateTable(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		id := &schema.Field{Name: "ID", Type: field.TypeInt64}
		tbl := newTable("User", id, &schema.Field{Name: "Name", Type: field.TypeString})
		tbl.PrimaryKey = &schema.PrimaryKey{Name: "PK_User", Fields: []*schema.Field{id}}
		r := schema.ValidateTable(tbl)
		assert.False(t, r.HasErrors())
		assert.False(t, r.HasWarnings())
		assert.NoError(t, r.Err())
		assert.Equal(t, "No issues found", r.String())
	})

	t.Run("NoPrimaryKey", func(t *testing.T) {
		tbl := newTable("Log", &schema.Field{Name: "Line", Type: field.TypeString})
		r := schema.ValidateTable(tbl)
		assert.False(t, r.HasErrors())
		require.True(t, r.HasWarnings())
		assert.Contains(t, r.String(), "no primary key")
	})

	t.Run("Broken", func(t *testing.T) {
		id := &schema.Field{Name: "ID", Type: field.TypeInt64, Nullable: true}
		dup := &schema.Field{Name: "ID", Type: field.TypeInt64}
		tbl := newTable("User", id, dup)
		tbl.PrimaryKey = &schema.PrimaryKey{Name: "PK_User", Fields: []*schema.Field{id}}
		tbl.CandidateKeys = []*schema.CandidateKey{
			{Name: "PK_User", Fields: []*schema.Field{dup}},
			{Fields: []*schema.Field{dup}},
		}
		r := schema.ValidateTable(tbl)
		require.True(t, r.HasErrors())
		msg := r.Err().Error()
		assert.Contains(t, msg, "duplicate field name")
		assert.Contains(t, msg, "nullable field in primary key")
		assert.Contains(t, msg, "has the name of the primary key")
		assert.Contains(t, msg, "identical fields")
	})

	t.Run("ForeignField", func(t *testing.T) {
		id := &schema.Field{Name: "ID", Type: field.TypeInt64}
		tbl := newTable("User", id)
		stray := &schema.Field{Name: "Stray", Type: field.TypeInt64}
		tbl.PrimaryKey = &schema.PrimaryKey{Name: "PK_User", Fields: []*schema.Field{stray}}
		r := schema.ValidateTable(tbl)
		require.True(t, r.HasErrors())
		assert.Contains(t, r.Err().Error(), `"Stray" that is not part of the table`)
	})
}

func TestValidateSchema(t *testing.T) {
	uid := &schema.Field{Name: "ID", Type: field.TypeInt64}
	user := newTable("User", uid)
	user.PrimaryKey = &schema.PrimaryKey{Name: "PK_User", Fields: []*schema.Field{uid}}

	pid := &schema.Field{Name: "ID", Type: field.TypeInt64}
	owner := &schema.Field{Name: "Owner.ID", Type: field.TypeInt64}
	pet := newTable("Pet", pid, owner)
	pet.PrimaryKey = &schema.PrimaryKey{Name: "PK_Pet", Fields: []*schema.Field{pid}}
	pet.ForeignKeys = []*schema.ForeignKey{{
		Name:      "FK_Pet_Owner",
		Fields:    []*schema.Field{owner},
		RefTable:  user,
		RefFields: []*schema.Field{uid},
		OnDelete:  schema.Cascade,
		OnUpdate:  schema.Cascade,
	}}

	assert.False(t, schema.ValidateSchema([]*schema.Table{user, pet}).HasErrors())

	r := schema.ValidateSchema([]*schema.Table{pet})
	require.True(t, r.HasErrors())
	assert.Contains(t, r.String(), `non-existent table "User"`)

	r = schema.ValidateSchema([]*schema.Table{user, user})
	require.True(t, r.HasErrors())
	assert.Contains(t, r.String(), "duplicate table name")
}
