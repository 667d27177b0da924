package bom

import (
	"context"

	"github.com/codigix/Aluminium-erp-sub005/internal/core/id"
)

// Repository defines storage operations for BOM lines.
//
// Scoping rules: when the identity is order-scoped, lines are matched on
// order_item_id; otherwise on the master context (order_item_id IS NULL and
// item_code / drawing_no match). The variant always narrows the match.
type Repository interface {
	// ReplaceLines atomically deletes all prior lines for the identity+variant
	// and inserts the new set. Individual lines are never patched in place.
	// Must be called within a transaction.
	ReplaceLines(ctx context.Context, ident Identity, variant Variant, lines Lines) error

	// DeleteLines removes all lines for the identity+variant (BOM cleared).
	DeleteLines(ctx context.Context, ident Identity, variant Variant) error

	GetMaterials(ctx context.Context, ident Identity, variant Variant) ([]MaterialLine, error)
	GetComponents(ctx context.Context, ident Identity, variant Variant) ([]ComponentLine, error)
	GetOperations(ctx context.Context, ident Identity, variant Variant) ([]OperationLine, error)
	GetScrap(ctx context.Context, ident Identity, variant Variant) ([]ScrapLine, error)

	// GetAnyVariantMaterials returns master material lines for a drawing
	// regardless of variant, capped to limit. Used by the resolver fallback
	// when the exact variant was never recorded.
	GetAnyVariantMaterials(ctx context.Context, drawingNo string, limit int) ([]MaterialLine, error)
}

// OrderItemChecker validates an owning context before BOM lines are written.
// Implemented by the order master-data module; the core only consumes it.
type OrderItemChecker interface {
	Exists(ctx context.Context, orderItemID id.ID) (bool, error)
}

// ItemAttributes is the slice of the item master used to enrich sparse lines:
// category and group feed sub-assembly classification, DefaultUoM fills lines
// recorded without a unit.
type ItemAttributes struct {
	Category   string
	ItemGroup  string
	DefaultUoM string
}

// ItemLookup resolves a material code against the item master. Implemented by
// the catalog module; found=false means the code is unknown, never an error.
type ItemLookup interface {
	ItemAttributes(ctx context.Context, code string) (attrs ItemAttributes, found bool, err error)
}
