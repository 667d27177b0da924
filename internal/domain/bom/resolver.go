package bom

import (
	"context"
	"fmt"
)

// fallbackLimit bounds the any-variant retry so a drawing with a pathological
// number of recorded variants cannot flood a single resolve call.
const fallbackLimit = 500

// Resolver fetches the line set for an identity+variant, falling back from
// order-specific to master scope, and from the exact variant to any recorded
// variant of the drawing when the caller asked for the default top assembly.
type Resolver struct {
	repo Repository
}

// NewResolver creates a resolver over the given repository.
func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve returns the matching lines for identity+variant. An empty result is
// a valid terminal state ("this node has no further requirements"), never an
// error.
func (r *Resolver) Resolve(ctx context.Context, ident Identity, variant Variant) (Lines, error) {
	variant = variant.normalized()

	materials, err := r.repo.GetMaterials(ctx, ident, variant)
	if err != nil {
		return Lines{}, fmt.Errorf("get materials: %w", err)
	}

	// A drawing viewed before its exact variant was finalized still gets
	// something usable: retry once against any variant for that drawing,
	// bounded. Only when no specific sub-assembly was requested.
	if len(materials) == 0 && !ident.IsOrderScoped() && ident.DrawingNo != "" && variant.IsTopLevel() {
		materials, err = r.repo.GetAnyVariantMaterials(ctx, ident.DrawingNo, fallbackLimit)
		if err != nil {
			return Lines{}, fmt.Errorf("get any-variant materials: %w", err)
		}
	}

	components, err := r.repo.GetComponents(ctx, ident, variant)
	if err != nil {
		return Lines{}, fmt.Errorf("get components: %w", err)
	}

	operations, err := r.repo.GetOperations(ctx, ident, variant)
	if err != nil {
		return Lines{}, fmt.Errorf("get operations: %w", err)
	}

	scrap, err := r.repo.GetScrap(ctx, ident, variant)
	if err != nil {
		return Lines{}, fmt.Errorf("get scrap: %w", err)
	}

	return Lines{
		Materials:  materials,
		Components: components,
		Operations: operations,
		Scrap:      scrap,
	}, nil
}
