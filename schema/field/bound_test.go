package field_test

import (
	"testing"

	"github.com/syssam/tabula/schema/field"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func i32(v int) field.Value { return field.MustParse(field.TypeInt32, v) }

func incl(v int) *field.Bound {
	b := field.InclusiveBound(i32(v))
	return &b
}

func excl(v int) *field.Bound {
	b := field.ExclusiveBound(i32(v))
	return &b
}

func TestIsValidInterval(t *testing.T) {
	tests := []struct {
		name         string
		lower, upper *field.Bound
		valid        bool
	}{
		{"both inclusive", incl(5), incl(5), true},
		{"upper exclusive", incl(5), excl(5), false},
		{"lower exclusive", excl(5), incl(5), false},
		{"both exclusive", excl(5), excl(5), false},
		{"inverted", incl(5), incl(3), false},
		{"ordered", excl(3), excl(5), true},
		{"no lower", nil, excl(-100), true},
		{"no upper", incl(100), nil, true},
		{"unbounded", nil, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, field.IsValidInterval(tt.lower, tt.upper))
		})
	}
}

func TestBoundMerge(t *testing.T) {
	t.Run("Idempotent", func(t *testing.T) {
		for _, b := range []*field.Bound{incl(7), excl(7)} {
			assert.True(t, b.Equal(field.MinUpperBound(b, *b)))
			assert.True(t, b.Equal(field.MaxLowerBound(b, *b)))
		}
	})

	t.Run("ExclusiveWinsTies", func(t *testing.T) {
		assert.False(t, field.MinUpperBound(incl(4), *excl(4)).Inclusive)
		assert.False(t, field.MinUpperBound(excl(4), *incl(4)).Inclusive)
		assert.False(t, field.MaxLowerBound(incl(4), *excl(4)).Inclusive)
		assert.False(t, field.MaxLowerBound(excl(4), *incl(4)).Inclusive)
	})

	t.Run("Tighter", func(t *testing.T) {
		assert.True(t, incl(3).Equal(field.MinUpperBound(excl(9), *incl(3))))
		assert.True(t, excl(9).Equal(field.MinUpperBound(excl(9), *incl(30))))
		assert.True(t, excl(9).Equal(field.MaxLowerBound(incl(3), *excl(9))))
		assert.True(t, incl(3).Equal(field.MaxLowerBound(incl(3), *excl(-9))))
	})

	t.Run("Missing", func(t *testing.T) {
		assert.True(t, incl(1).Equal(field.MinUpperBound(nil, *incl(1))))
		assert.True(t, excl(1).Equal(field.MaxLowerBound(nil, *excl(1))))
	})
}

func TestIsWithinInterval(t *testing.T) {
	assert.True(t, field.IsWithinInterval(i32(5), incl(5), incl(5)))
	assert.False(t, field.IsWithinInterval(i32(5), excl(5), nil))
	assert.False(t, field.IsWithinInterval(i32(5), nil, excl(5)))
	assert.True(t, field.IsWithinInterval(i32(0), excl(-1), excl(1)))
	assert.False(t, field.IsWithinInterval(i32(-4), incl(-3), nil))
	assert.True(t, field.IsWithinInterval(i32(1000), nil, nil))
}

func TestFormatInterval(t *testing.T) {
	assert.Equal(t, "[5, 3]", field.FormatInterval(incl(5), incl(3)))
	assert.Equal(t, "(-∞, 10)", field.FormatInterval(nil, excl(10)))
	assert.Equal(t, "(0, +∞)", field.FormatInterval(excl(0), nil))
}

func TestCompare(t *testing.T) {
	require.Equal(t, 1, field.Compare(i32(5), i32(3)))
	require.Equal(t, 0, field.Compare(field.MustParse(field.TypeDecimal, "1.50"), field.MustParse(field.TypeDecimal, 1.5)))
	require.Equal(t, -1, field.Compare(field.String("abc"), field.String("abd")))
	require.True(t, field.Comparable(i32(1), i32(2)))
	require.False(t, field.Comparable(i32(1), field.MustParse(field.TypeInt64, 2)))
	require.False(t, field.Comparable(field.Bool(true), field.Bool(false)))
	require.Panics(t, func() { field.Compare(field.Bool(true), field.Bool(false)) })
	require.True(t, field.Equal(field.Bool(true), field.Bool(true)))
	require.True(t, field.Equal(field.Null(field.TypeString), field.Null(field.TypeString)))
	require.False(t, field.Equal(field.Null(field.TypeString), field.String("")))
}
