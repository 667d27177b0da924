// Package catalog_repo provides the PostgreSQL implementation of the
// master-data lookups the core consumes.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/codigix/Aluminium-erp-sub005/internal/core/id"
	"github.com/codigix/Aluminium-erp-sub005/internal/domain/catalog"
	"github.com/codigix/Aluminium-erp-sub005/internal/infrastructure/storage/postgres"
)

const (
	itemsTable      = "items"
	orderItemsTable = "sales_order_items"
)

var itemColumns = []string{
	"item_code", "item_name", "item_group", "category", "default_uom", "drawing_no",
}

// ItemRepo implements catalog.Repository.
type ItemRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewItemRepo creates a new item master repository.
func NewItemRepo(txManager *postgres.TxManager) *ItemRepo {
	return &ItemRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetByCode returns the item or nil when unknown.
func (r *ItemRepo) GetByCode(ctx context.Context, code string) (*catalog.Item, error) {
	q := r.builder.Select(itemColumns...).
		From(itemsTable).
		Where(squirrel.Eq{"item_code": code}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var item catalog.Item
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &item, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}

	return &item, nil
}

// GetByDrawing returns the item owning a drawing number, or nil.
func (r *ItemRepo) GetByDrawing(ctx context.Context, drawingNo string) (*catalog.Item, error) {
	q := r.builder.Select(itemColumns...).
		From(itemsTable).
		Where(squirrel.Eq{"drawing_no": drawingNo}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var item catalog.Item
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &item, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item by drawing: %w", err)
	}

	return &item, nil
}

// OrderItemExists reports whether the order item exists.
func (r *ItemRepo) OrderItemExists(ctx context.Context, orderItemID id.ID) (bool, error) {
	sql := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1)", orderItemsTable)

	var exists bool
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, orderItemID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check order item: %w", err)
	}

	return exists, nil
}

// Ensure interface compliance.
var _ catalog.Repository = (*ItemRepo)(nil)
