package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantityConversions(t *testing.T) {
	q := NewQuantityFromFloat64(1.5)
	assert.Equal(t, int64(15_000), q.Int64Scaled())
	assert.InDelta(t, 1.5, q.Float64(), 1e-9)

	assert.Equal(t, Quantity(25_000), NewQuantityFromInt64Scaled(25_000))
	assert.Equal(t, Quantity(1), NewQuantityFromFloat64(0.0001))
	// Sub-scale values round to the nearest step.
	assert.Equal(t, Quantity(1), NewQuantityFromFloat64(0.00006))
	assert.Equal(t, Quantity(0), NewQuantityFromFloat64(0.00004))
}

func TestQuantityPredicates(t *testing.T) {
	assert.True(t, Quantity(0).IsZero())
	assert.True(t, Quantity(5).IsPositive())
	assert.True(t, Quantity(-5).IsNegative())
	assert.Equal(t, Quantity(-5), Quantity(5).Neg())
	assert.Equal(t, Quantity(5), Quantity(-5).Abs())
}

func TestQuantityString(t *testing.T) {
	tests := []struct {
		q    Quantity
		want string
	}{
		{0, "0.0000"},
		{15_000, "1.5000"},
		{10_001, "1.0001"},
		{-15_000, "-1.5000"},
		{-1, "-0.0001"},
		{1_234_567, "123.4567"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.q.String())
	}
}

func TestParseQuantityString(t *testing.T) {
	tests := []struct {
		in      string
		want    Quantity
		wantErr bool
	}{
		{"1.5", 15_000, false},
		{"0", 0, false},
		{"-2.25", -22_500, false},
		{"+3", 30_000, false},
		{".5", 5_000, false},
		{"1.23456789", 12_345, false}, // extra digits truncated
		{"1e2", 1_000_000, false},
		{"", 0, true},
		{"abc", 0, true},
		{"1.2.3", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseQuantityString(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuantityJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(NewQuantityFromFloat64(1.5))
	require.NoError(t, err)
	assert.Equal(t, "1.5000", string(data))

	var q Quantity
	require.NoError(t, json.Unmarshal([]byte("2.75"), &q))
	assert.Equal(t, Quantity(27_500), q)

	require.NoError(t, json.Unmarshal([]byte(`"10.0001"`), &q))
	assert.Equal(t, Quantity(100_001), q)

	require.NoError(t, json.Unmarshal([]byte("null"), &q))
	assert.Equal(t, Quantity(0), q)
}
