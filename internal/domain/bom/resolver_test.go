package bom

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codigix/Aluminium-erp-sub005/internal/core/id"
)

func TestResolve_ExactVariantWins(t *testing.T) {
	repo := newStubRepo()
	repo.materials["drawing:DRW-9"] = []MaterialLine{
		{Name: "EXACT", QtyPerPiece: 1},
	}
	repo.drawingMaterials["DRW-9"] = []MaterialLine{
		{Name: "FALLBACK", QtyPerPiece: 1},
	}

	resolver := NewResolver(repo)
	lines, err := resolver.Resolve(context.Background(), Identity{DrawingNo: "DRW-9"}, DefaultVariant())
	require.NoError(t, err)
	require.Len(t, lines.Materials, 1)

	assert.Equal(t, "EXACT", lines.Materials[0].Name)
	assert.Zero(t, repo.fallbackCalls)
}

func TestResolve_FallsBackToAnyVariant(t *testing.T) {
	repo := newStubRepo()
	repo.drawingMaterials["DRW-9"] = []MaterialLine{
		{Name: "FALLBACK", QtyPerPiece: 1},
	}

	resolver := NewResolver(repo)
	lines, err := resolver.Resolve(context.Background(), Identity{DrawingNo: "DRW-9"}, DefaultVariant())
	require.NoError(t, err)
	require.Len(t, lines.Materials, 1)

	assert.Equal(t, "FALLBACK", lines.Materials[0].Name)
	assert.Equal(t, 1, repo.fallbackCalls)
}

func TestResolve_NoFallbackForOrderScope(t *testing.T) {
	repo := newStubRepo()
	repo.drawingMaterials["DRW-9"] = []MaterialLine{
		{Name: "FALLBACK", QtyPerPiece: 1},
	}

	resolver := NewResolver(repo)
	ident := Identity{OrderItemID: id.New()}
	lines, err := resolver.Resolve(context.Background(), ident, DefaultVariant())
	require.NoError(t, err)

	assert.Empty(t, lines.Materials)
	assert.Zero(t, repo.fallbackCalls)
}

func TestResolve_NoFallbackForNamedSubAssembly(t *testing.T) {
	repo := newStubRepo()
	repo.drawingMaterials["DRW-9"] = []MaterialLine{
		{Name: "FALLBACK", QtyPerPiece: 1},
	}

	assemblyID := id.New()
	resolver := NewResolver(repo)
	lines, err := resolver.Resolve(context.Background(),
		Identity{DrawingNo: "DRW-9"},
		Variant{BOMType: DefaultBOMType, AssemblyID: &assemblyID})
	require.NoError(t, err)

	assert.Empty(t, lines.Materials)
	assert.Zero(t, repo.fallbackCalls)
}

func TestResolve_EmptyIsNotAnError(t *testing.T) {
	resolver := NewResolver(newStubRepo())
	lines, err := resolver.Resolve(context.Background(), Identity{ItemCode: "UNKNOWN"}, DefaultVariant())
	require.NoError(t, err)
	assert.True(t, lines.IsEmpty())
}
