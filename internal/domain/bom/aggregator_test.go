package bom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_SumsByNormalizedKey(t *testing.T) {
	perRoot := map[string][]ExplodedLine{
		"plan-1": {
			{MaterialName: "Steel Plate", MaterialType: "Raw Material", UoM: "kg", Quantity: 10},
			{MaterialName: "  steel plate ", MaterialType: "Raw Material", UoM: "kg", Quantity: 5},
		},
		"plan-2": {
			{MaterialName: "STEEL PLATE", MaterialType: "Raw Material", UoM: "kg", Quantity: 7},
		},
	}

	result := Aggregate(perRoot)
	require.Len(t, result, 1)

	req := result[NormalizedKey("Steel Plate", "Raw Material")]
	assert.InDelta(t, 22.0, req.RequiredQty, 1e-9)
	require.Len(t, req.Contributors, 2)
	assert.Equal(t, "plan-1", req.Contributors[0].Ref)
	assert.InDelta(t, 15.0, req.Contributors[0].Quantity, 1e-9)
	assert.Equal(t, "plan-2", req.Contributors[1].Ref)
	assert.InDelta(t, 7.0, req.Contributors[1].Quantity, 1e-9)
}

func TestAggregate_MaterialTypeSplitsKeys(t *testing.T) {
	perRoot := map[string][]ExplodedLine{
		"r": {
			{MaterialName: "Bracket", MaterialType: "Raw Material", Quantity: 1},
			{MaterialName: "Bracket", MaterialType: "Component", Quantity: 2},
		},
	}

	result := Aggregate(perRoot)
	assert.Len(t, result, 2)
}

func TestAggregate_Empty(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
	assert.Empty(t, Aggregate(map[string][]ExplodedLine{}))
}

func TestNormalizedKey(t *testing.T) {
	assert.Equal(t, "STEEL PLATE|Raw Material", NormalizedKey("  Steel Plate ", "Raw Material"))
	assert.Equal(t, NormalizedKey("abc", "T"), NormalizedKey("ABC", "T"))
}
