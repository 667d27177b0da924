// Package bom_repo provides the PostgreSQL implementation of the BOM line
// repository. Line sets are replaced wholesale: delete by scope, then COPY
// the new lines in, inside the caller's transaction.
package bom_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/codigix/Aluminium-erp-sub005/internal/domain/bom"
	"github.com/codigix/Aluminium-erp-sub005/internal/infrastructure/storage/postgres"
)

const (
	materialsTable  = "bom_materials"
	componentsTable = "bom_components"
	operationsTable = "bom_operations"
	scrapTable      = "bom_scrap"
)

var materialColumns = []string{
	"line_id", "order_item_id", "item_code", "drawing_no", "bom_type", "assembly_id",
	"material_name", "material_type", "item_group", "uom", "qty_per_piece", "rate",
	"parent_component_id", "ref_bom_type", "ref_assembly_id",
	"created_by", "created_at",
}

var componentColumns = []string{
	"line_id", "order_item_id", "item_code", "drawing_no", "bom_type", "assembly_id",
	"component_code", "description", "quantity", "uom",
	"parent_id", "ref_bom_type", "ref_assembly_id",
	"created_by", "created_at",
}

var operationColumns = []string{
	"line_id", "order_item_id", "item_code", "drawing_no", "bom_type", "assembly_id",
	"operation_name", "workstation", "time_minutes", "hour_rate",
	"created_by", "created_at",
}

var scrapColumns = []string{
	"line_id", "order_item_id", "item_code", "drawing_no", "bom_type", "assembly_id",
	"scrap_name", "quantity", "uom", "rate", "parent_component_id",
	"created_by", "created_at",
}

// BOMRepo implements bom.Repository.
type BOMRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewBOMRepo creates a new BOM line repository.
func NewBOMRepo(txManager *postgres.TxManager) *BOMRepo {
	return &BOMRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// scopeConds builds the WHERE clause addressing one identity+variant.
// Order-scoped lines match on order_item_id alone; master lines match on
// order_item_id IS NULL plus whichever of item_code / drawing_no is set.
func (r *BOMRepo) scopeConds(ident bom.Identity, variant bom.Variant) squirrel.And {
	conds := squirrel.And{}

	if ident.IsOrderScoped() {
		conds = append(conds, squirrel.Eq{"order_item_id": ident.OrderItemID})
	} else {
		conds = append(conds, squirrel.Eq{"order_item_id": nil})
		if ident.ItemCode != "" {
			conds = append(conds, squirrel.Eq{"item_code": ident.ItemCode})
		}
		if ident.DrawingNo != "" {
			conds = append(conds, squirrel.Eq{"drawing_no": ident.DrawingNo})
		}
	}

	bomType := variant.BOMType
	if bomType == "" {
		bomType = bom.DefaultBOMType
	}
	conds = append(conds, squirrel.Eq{"bom_type": bomType})

	if variant.AssemblyID != nil {
		conds = append(conds, squirrel.Eq{"assembly_id": *variant.AssemblyID})
	} else {
		conds = append(conds, squirrel.Eq{"assembly_id": nil})
	}

	return conds
}

// ReplaceLines deletes every prior line for the scope and bulk-inserts the new
// set. Requires an active transaction; COPY refuses to run outside one.
func (r *BOMRepo) ReplaceLines(ctx context.Context, ident bom.Identity, variant bom.Variant, lines bom.Lines) error {
	if err := r.DeleteLines(ctx, ident, variant); err != nil {
		return err
	}

	inserter := postgres.NewBatchInserter(r.txManager)

	if len(lines.Materials) > 0 {
		rows := make([][]any, 0, len(lines.Materials))
		for _, m := range lines.Materials {
			rows = append(rows, []any{
				m.LineID, m.OrderItemID, m.ItemCode, m.DrawingNo, m.BOMType, m.AssemblyID,
				m.Name, m.MaterialType, m.ItemGroup, m.UoM, m.QtyPerPiece, m.Rate,
				m.ParentComponentID, m.RefBOMType, m.RefAssemblyID,
				m.CreatedBy, m.CreatedAt,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, materialsTable, materialColumns, rows); err != nil {
			return fmt.Errorf("copy materials: %w", err)
		}
	}

	if len(lines.Components) > 0 {
		rows := make([][]any, 0, len(lines.Components))
		for _, c := range lines.Components {
			rows = append(rows, []any{
				c.LineID, c.OrderItemID, c.ItemCode, c.DrawingNo, c.BOMType, c.AssemblyID,
				c.Code, c.Description, c.Quantity, c.UoM,
				c.ParentID, c.RefBOMType, c.RefAssemblyID,
				c.CreatedBy, c.CreatedAt,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, componentsTable, componentColumns, rows); err != nil {
			return fmt.Errorf("copy components: %w", err)
		}
	}

	if len(lines.Operations) > 0 {
		rows := make([][]any, 0, len(lines.Operations))
		for _, o := range lines.Operations {
			rows = append(rows, []any{
				o.LineID, o.OrderItemID, o.ItemCode, o.DrawingNo, o.BOMType, o.AssemblyID,
				o.Name, o.Workstation, o.TimeMinutes, o.HourRate,
				o.CreatedBy, o.CreatedAt,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, operationsTable, operationColumns, rows); err != nil {
			return fmt.Errorf("copy operations: %w", err)
		}
	}

	if len(lines.Scrap) > 0 {
		rows := make([][]any, 0, len(lines.Scrap))
		for _, s := range lines.Scrap {
			rows = append(rows, []any{
				s.LineID, s.OrderItemID, s.ItemCode, s.DrawingNo, s.BOMType, s.AssemblyID,
				s.Name, s.Quantity, s.UoM, s.Rate, s.ParentComponentID,
				s.CreatedBy, s.CreatedAt,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, scrapTable, scrapColumns, rows); err != nil {
			return fmt.Errorf("copy scrap: %w", err)
		}
	}

	return nil
}

// DeleteLines removes every line of every kind for the scope. The four table
// deletes go out as one pgx batch; callers already hold the transaction.
func (r *BOMRepo) DeleteLines(ctx context.Context, ident bom.Identity, variant bom.Variant) error {
	conds := r.scopeConds(ident, variant)

	queries := make([]postgres.BatchQuery, 0, 4)
	for _, table := range []string{materialsTable, componentsTable, operationsTable, scrapTable} {
		sql, args, err := r.builder.Delete(table).Where(conds).ToSql()
		if err != nil {
			return fmt.Errorf("build delete %s: %w", table, err)
		}
		queries = append(queries, postgres.BatchQuery{SQL: sql, Args: args})
	}

	if err := postgres.NewBatchInserter(r.txManager).ExecuteBatch(ctx, queries); err != nil {
		return fmt.Errorf("delete bom lines: %w", err)
	}

	return nil
}

// GetMaterials retrieves material lines for one scope, insertion order.
func (r *BOMRepo) GetMaterials(ctx context.Context, ident bom.Identity, variant bom.Variant) ([]bom.MaterialLine, error) {
	q := r.builder.Select(materialColumns...).
		From(materialsTable).
		Where(r.scopeConds(ident, variant)).
		OrderBy("created_at", "line_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var materials []bom.MaterialLine
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &materials, sql, args...); err != nil {
		return nil, fmt.Errorf("select materials: %w", err)
	}

	return materials, nil
}

// GetComponents retrieves component lines for one scope, insertion order.
// Parents precede children, so callers can rebuild the tree in one pass.
func (r *BOMRepo) GetComponents(ctx context.Context, ident bom.Identity, variant bom.Variant) ([]bom.ComponentLine, error) {
	q := r.builder.Select(componentColumns...).
		From(componentsTable).
		Where(r.scopeConds(ident, variant)).
		OrderBy("created_at", "line_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var components []bom.ComponentLine
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &components, sql, args...); err != nil {
		return nil, fmt.Errorf("select components: %w", err)
	}

	return components, nil
}

// GetOperations retrieves routing steps for one scope.
func (r *BOMRepo) GetOperations(ctx context.Context, ident bom.Identity, variant bom.Variant) ([]bom.OperationLine, error) {
	q := r.builder.Select(operationColumns...).
		From(operationsTable).
		Where(r.scopeConds(ident, variant)).
		OrderBy("created_at", "line_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var operations []bom.OperationLine
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &operations, sql, args...); err != nil {
		return nil, fmt.Errorf("select operations: %w", err)
	}

	return operations, nil
}

// GetScrap retrieves scrap lines for one scope.
func (r *BOMRepo) GetScrap(ctx context.Context, ident bom.Identity, variant bom.Variant) ([]bom.ScrapLine, error) {
	q := r.builder.Select(scrapColumns...).
		From(scrapTable).
		Where(r.scopeConds(ident, variant)).
		OrderBy("created_at", "line_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var scrap []bom.ScrapLine
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &scrap, sql, args...); err != nil {
		return nil, fmt.Errorf("select scrap: %w", err)
	}

	return scrap, nil
}

// GetAnyVariantMaterials returns master materials for a drawing across all
// variants, capped. Fallback read when the requested variant has no lines.
func (r *BOMRepo) GetAnyVariantMaterials(ctx context.Context, drawingNo string, limit int) ([]bom.MaterialLine, error) {
	q := r.builder.Select(materialColumns...).
		From(materialsTable).
		Where(squirrel.Eq{"order_item_id": nil}).
		Where(squirrel.Eq{"drawing_no": drawingNo}).
		OrderBy("created_at", "line_id")

	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var materials []bom.MaterialLine
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &materials, sql, args...); err != nil {
		return nil, fmt.Errorf("select any-variant materials: %w", err)
	}

	return materials, nil
}

// Ensure interface compliance.
var _ bom.Repository = (*BOMRepo)(nil)
