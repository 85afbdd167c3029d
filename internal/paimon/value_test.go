package paimon

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paimon-cli/internal/filter"
	"paimon-cli/internal/schema"
)

func TestDecimalString(t *testing.T) {
	tests := []struct {
		unscaled int64
		scale    int32
		want     string
	}{
		{12345, 2, "123.45"},
		{-5, 2, "-0.05"},
		{7, 0, "7"},
		{100, 3, "0.100"},
		{-12345, 1, "-1234.5"},
		{3, -2, "300"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			d := Decimal{Unscaled: big.NewInt(tt.unscaled), Scale: tt.scale}
			assert.Equal(t, tt.want, d.String())
		})
	}
	assert.Equal(t, "0", Decimal{}.String())
}

func TestParseDecimal(t *testing.T) {
	d, err := ParseDecimal("-12.50")
	require.NoError(t, err)
	assert.Equal(t, int64(-1250), d.Unscaled.Int64())
	assert.Equal(t, int32(2), d.Scale)

	d, err = ParseDecimal(".5")
	require.NoError(t, err)
	assert.Equal(t, "0.5", d.String())

	for _, bad := range []string{"", "-", "1.2.3", "abc", "1e5", "."} {
		_, err := ParseDecimal(bad)
		assert.Error(t, err, bad)
	}
}

func TestDecimalConversions(t *testing.T) {
	assert.Equal(t, "-2.00", decimalFromBytes([]byte{0xff, 0x38}, 2).String())
	assert.Equal(t, "1.27", decimalFromBytes([]byte{0x7f}, 2).String())
	assert.Equal(t, "0.33", decimalFromRat(big.NewRat(1, 3), 2).String())

	a := Decimal{Unscaled: big.NewInt(150), Scale: 2}
	b, err := ParseDecimal("1.5")
	require.NoError(t, err)
	c, ok := compareValues(a, b)
	require.True(t, ok)
	assert.Equal(t, 0, c)
}

func TestDate(t *testing.T) {
	d, err := ParseDate("2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, Date(19723), d)
	assert.Equal(t, "2024-01-01", d.String())
	assert.Equal(t, Date(-1), DateOf(time.Date(1969, 12, 31, 23, 0, 0, 0, time.UTC)))

	_, err = ParseDate("01/02/2024")
	assert.Error(t, err)
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 3, 5, 10, 30, 0, 123000000, time.UTC)
	for _, s := range []string{"2024-03-05 10:30:00.123", "2024-03-05T10:30:00.123", "2024-03-05T11:30:00.123+01:00"} {
		got, err := ParseTimestamp(s)
		require.NoError(t, err, s)
		assert.True(t, want.Equal(got), s)
	}

	midnight, err := ParseTimestamp("2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, 0, midnight.Hour())

	_, err = ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "NULL"},
		{"string", "abc", "abc"},
		{"bool", true, "true"},
		{"int64", int64(-42), "-42"},
		{"float32", float32(1.5), "1.5"},
		{"float64", 0.1, "0.1"},
		{"bytes", []byte{0xab, 0x01}, "0xab01"},
		{"date", Date(19724), "2024-01-02"},
		{"timestamp", time.Date(2024, 1, 1, 10, 0, 0, 123000000, time.UTC), "2024-01-01 10:00:00.123"},
		{"timestamp without fraction", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), "2024-01-01 10:00:00"},
		{"decimal", Decimal{Unscaled: big.NewInt(999), Scale: 2}, "9.99"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.in))
		})
	}
}

func TestCompareValues(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want int
		ok   bool
	}{
		{"ints", int64(1), int64(2), -1, true},
		{"int and float", int64(3), 2.5, 1, true},
		{"float32 and float64", float32(1.5), 1.5, 0, true},
		{"strings", "b", "a", 1, true},
		{"bools", false, true, -1, true},
		{"dates", Date(5), Date(5), 0, true},
		{"bytes", []byte("a"), []byte("b"), -1, true},
		{"mismatch", "1", int64(1), 0, false},
		{"bool and int", true, int64(1), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := compareValues(tt.a, tt.b)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNormalizeValue(t *testing.T) {
	ts3 := schema.DataType{Root: schema.TypeTimestamp, Precision: 3}
	ts6 := schema.DataType{Root: schema.TypeTimestamp, Precision: 6}
	dec := schema.DataType{Root: schema.TypeDecimal, Precision: 10, Scale: 2}

	assert.Equal(t, time.UnixMilli(1500).UTC(), normalizeValue(int64(1500), ts3))
	assert.Equal(t, time.UnixMicro(1500).UTC(), normalizeValue(int64(1500), ts6))
	assert.Equal(t, "x", normalizeValue(map[string]any{"string": "x"}, schema.DataType{Root: schema.TypeVarChar}))
	assert.Equal(t, "abc", normalizeValue([]byte("abc"), schema.DataType{Root: schema.TypeVarChar}))
	assert.Equal(t, "12.34", FormatValue(normalizeValue(big.NewRat(1234, 100), dec)))
	assert.Equal(t, "0.05", FormatValue(normalizeValue(int64(5), dec)))
	assert.Equal(t, float64(2), normalizeValue(int32(2), schema.DataType{Root: schema.TypeDouble}))
	assert.Equal(t, int64(7), normalizeValue(int16(7), schema.DataType{Root: schema.TypeSmallInt}))
	assert.Nil(t, normalizeValue(nil, dec))
}

func TestRowFilter(t *testing.T) {
	rowType := schema.NewRowType(
		schema.MustField(0, "id", "BIGINT"),
		schema.MustField(1, "price", "DECIMAL(10, 2)"),
		schema.MustField(2, "tags", "ARRAY<STRING>"),
	)

	preds, diags := filter.Translate("price >= 10.5 and id != 3", rowType)
	require.Empty(t, diags)
	rf, err := compileFilter(preds, rowType)
	require.NoError(t, err)

	price := func(s string) Decimal {
		d, err := ParseDecimal(s)
		require.NoError(t, err)
		return d
	}
	assert.True(t, rf.Matches(Row{int64(1), price("10.50"), nil}))
	assert.True(t, rf.Matches(Row{int64(2), price("99"), nil}))
	assert.False(t, rf.Matches(Row{int64(3), price("99"), nil}))
	assert.False(t, rf.Matches(Row{int64(4), price("10.49"), nil}))
	assert.False(t, rf.Matches(Row{int64(5), nil, nil}), "NULL never matches")

	preds, diags = filter.Translate("tags = x", rowType)
	require.Empty(t, diags)
	_, err = compileFilter(preds, rowType)
	assert.True(t, IsInvalidPredicate(err))

	preds, diags = filter.Translate("price = abc", rowType)
	require.Empty(t, diags)
	_, err = compileFilter(preds, rowType)
	assert.True(t, IsInvalidPredicate(err))

	empty, err := compileFilter(nil, rowType)
	require.NoError(t, err)
	assert.True(t, empty.Matches(Row{nil, nil, nil}))
}
