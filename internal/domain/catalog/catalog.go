// Package catalog provides the item/drawing identity lookups the core
// consumes from master data: resolving a code to its category and default
// unit, and validating an order item as an owning context.
package catalog

import (
	"context"

	"github.com/codigix/Aluminium-erp-sub005/internal/core/id"
	"github.com/codigix/Aluminium-erp-sub005/internal/domain/bom"
)

// Item is the slice of the item master the core cares about.
type Item struct {
	Code       string `db:"item_code" json:"itemCode"`
	Name       string `db:"item_name" json:"itemName"`
	ItemGroup  string `db:"item_group" json:"itemGroup"`
	Category   string `db:"category" json:"category"`
	DefaultUoM string `db:"default_uom" json:"defaultUom"`
	DrawingNo  string `db:"drawing_no" json:"drawingNo,omitempty"`
}

// Repository defines the master-data reads backing the lookups.
type Repository interface {
	// GetByCode returns the item or nil when unknown.
	GetByCode(ctx context.Context, code string) (*Item, error)

	// GetByDrawing returns the item owning a drawing number, or nil.
	GetByDrawing(ctx context.Context, drawingNo string) (*Item, error)

	// OrderItemExists reports whether the order item exists.
	OrderItemExists(ctx context.Context, orderItemID id.ID) (bool, error)
}

// Service wraps the repository for consumers.
type Service struct {
	repo Repository
}

// NewService creates a catalog service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Lookup resolves an item code. Nil means unknown; not an error.
func (s *Service) Lookup(ctx context.Context, code string) (*Item, error) {
	return s.repo.GetByCode(ctx, code)
}

// LookupByDrawing resolves a drawing number. Nil means unknown.
func (s *Service) LookupByDrawing(ctx context.Context, drawingNo string) (*Item, error) {
	return s.repo.GetByDrawing(ctx, drawingNo)
}

// ItemAttributes implements bom.ItemLookup: the category, group and default
// unit the explosion engine backfills onto sparse material lines.
func (s *Service) ItemAttributes(ctx context.Context, code string) (bom.ItemAttributes, bool, error) {
	item, err := s.Lookup(ctx, code)
	if err != nil {
		return bom.ItemAttributes{}, false, err
	}
	if item == nil {
		return bom.ItemAttributes{}, false, nil
	}
	return bom.ItemAttributes{
		Category:   item.Category,
		ItemGroup:  item.ItemGroup,
		DefaultUoM: item.DefaultUoM,
	}, true, nil
}

// Exists implements bom.OrderItemChecker.
func (s *Service) Exists(ctx context.Context, orderItemID id.ID) (bool, error) {
	return s.repo.OrderItemExists(ctx, orderItemID)
}

var _ bom.ItemLookup = (*Service)(nil)
var _ bom.OrderItemChecker = (*Service)(nil)
