package bom

import (
	"context"
	"fmt"
	"time"

	"github.com/codigix/Aluminium-erp-sub005/internal/core/apperror"
	"github.com/codigix/Aluminium-erp-sub005/internal/core/appctx"
	"github.com/codigix/Aluminium-erp-sub005/internal/core/id"
	"github.com/codigix/Aluminium-erp-sub005/internal/core/tx"
	"github.com/codigix/Aluminium-erp-sub005/pkg/logger"
)

// Root is one explosion root for a requirement run: an identity, the variant
// to start from, the planned quantity and an attribution reference
// (project / production plan / order item).
type Root struct {
	Ref      string   `json:"ref"`
	Identity Identity `json:"identity"`
	Variant  Variant  `json:"variant"`
	Quantity float64  `json:"quantity"`
}

// Service exposes the BOM core operations: line submission, resolution,
// explosion and requirement aggregation.
type Service struct {
	repo       Repository
	resolver   *Resolver
	engine     *Engine
	txManager  tx.Manager
	orderItems OrderItemChecker // optional; nil skips owning-context validation
}

// NewService creates a BOM service.
func NewService(repo Repository, resolver *Resolver, engine *Engine, txManager tx.Manager, orderItems OrderItemChecker) *Service {
	return &Service{
		repo:       repo,
		resolver:   resolver,
		engine:     engine,
		txManager:  txManager,
		orderItems: orderItems,
	}
}

// SubmitLines replaces the full line set for one identity+variant. The delete
// and insert run in one transaction; readers never observe a partially
// replaced set.
func (s *Service) SubmitLines(ctx context.Context, ident Identity, variant Variant, lines Lines) error {
	if err := s.validateSubmission(ctx, ident, lines); err != nil {
		return err
	}

	variant = variant.normalized()
	s.stampLines(ctx, ident, variant, &lines)

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.ReplaceLines(ctx, ident, variant, lines)
	})
	if err != nil {
		return apperror.NewStorage(fmt.Errorf("replace bom lines: %w", err))
	}

	logger.Info(ctx, "bom lines replaced",
		"order_item_id", ident.OrderItemID,
		"item_code", ident.ItemCode,
		"drawing_no", ident.DrawingNo,
		"bom_type", variant.BOMType,
		"materials", len(lines.Materials),
		"components", len(lines.Components),
		"operations", len(lines.Operations),
		"scrap", len(lines.Scrap),
	)

	return nil
}

// ClearLines removes the full line set for one identity+variant (BOM cleared
// when an order item is deleted).
func (s *Service) ClearLines(ctx context.Context, ident Identity, variant Variant) error {
	if ident.IsZero() {
		return apperror.NewValidation("identity is required")
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.DeleteLines(ctx, ident, variant.normalized())
	})
	if err != nil {
		return apperror.NewStorage(fmt.Errorf("delete bom lines: %w", err))
	}
	return nil
}

// Resolve returns the line set for identity+variant. Empty is not an error.
func (s *Service) Resolve(ctx context.Context, ident Identity, variant Variant) (Lines, error) {
	if ident.IsZero() {
		return Lines{}, apperror.NewValidation("identity is required: orderItemId, itemCode or drawingNo")
	}
	lines, err := s.resolver.Resolve(ctx, ident, variant)
	if err != nil {
		return Lines{}, apperror.NewStorage(err)
	}
	return lines, nil
}

// Explode recursively expands the BOM rooted at identity, scaling by quantity.
func (s *Service) Explode(ctx context.Context, ident Identity, quantity float64, variant Variant) ([]ExplodedLine, error) {
	if ident.IsZero() {
		return nil, apperror.NewValidation("identity is required: orderItemId, itemCode or drawingNo")
	}
	if quantity < 0 {
		return nil, apperror.NewValidation("quantity must not be negative").
			WithDetail("quantity", quantity)
	}

	lines, err := s.engine.Explode(ctx, ident, quantity, variant)
	if err != nil {
		return nil, apperror.NewStorage(err)
	}
	return lines, nil
}

// AggregateRequirements explodes every root and sums demand per normalized
// material key. A root that fails to explode degrades to a logged skip so one
// bad BOM does not sink a multi-item report.
func (s *Service) AggregateRequirements(ctx context.Context, roots []Root) (RequirementMap, error) {
	perRoot := make(map[string][]ExplodedLine, len(roots))

	for i, root := range roots {
		ref := root.Ref
		if ref == "" {
			ref = fmt.Sprintf("root-%d", i+1)
		}

		lines, err := s.engine.Explode(ctx, root.Identity, root.Quantity, root.Variant)
		if err != nil {
			logger.Error(ctx, "explosion failed for requirement root, skipping",
				"ref", ref,
				"item_code", root.Identity.ItemCode,
				"drawing_no", root.Identity.DrawingNo,
				"error", err,
			)
			continue
		}

		perRoot[ref] = append(perRoot[ref], lines...)
	}

	return Aggregate(perRoot), nil
}

// validateSubmission rejects structurally invalid line sets before any write.
func (s *Service) validateSubmission(ctx context.Context, ident Identity, lines Lines) error {
	if ident.IsZero() {
		return apperror.NewValidation("identity is required: orderItemId, itemCode or drawingNo")
	}
	if ident.IsOrderScoped() && (ident.ItemCode != "" || ident.DrawingNo != "") {
		return apperror.NewValidation("a line set is owned by an order item or by master data, not both")
	}

	if ident.IsOrderScoped() && s.orderItems != nil {
		exists, err := s.orderItems.Exists(ctx, ident.OrderItemID)
		if err != nil {
			return apperror.NewStorage(fmt.Errorf("check order item: %w", err))
		}
		if !exists {
			return apperror.NewNotFound("order item", ident.OrderItemID)
		}
	}

	for i, m := range lines.Materials {
		if m.Name == "" {
			return apperror.NewValidation(fmt.Sprintf("material %d: name is required", i+1))
		}
		if m.QtyPerPiece < 0 {
			return apperror.NewValidation(fmt.Sprintf("material %d: qtyPerPiece must not be negative", i+1))
		}
	}
	for i, c := range lines.Components {
		if c.Code == "" {
			return apperror.NewValidation(fmt.Sprintf("component %d: code is required", i+1))
		}
		if c.Quantity < 0 {
			return apperror.NewValidation(fmt.Sprintf("component %d: quantity must not be negative", i+1))
		}
	}
	for i, sc := range lines.Scrap {
		if sc.Quantity < 0 {
			return apperror.NewValidation(fmt.Sprintf("scrap %d: quantity must not be negative", i+1))
		}
	}

	return nil
}

// stampLines fills scope columns, identifiers and audit fields on every line.
func (s *Service) stampLines(ctx context.Context, ident Identity, variant Variant, lines *Lines) {
	now := time.Now().UTC()
	actor := appctx.ActorID(ctx)

	stamp := func(sc *lineScope) {
		if id.IsNil(sc.LineID) {
			sc.LineID = id.New()
		}
		if ident.IsOrderScoped() {
			oid := ident.OrderItemID
			sc.OrderItemID = &oid
		} else {
			sc.OrderItemID = nil
			sc.ItemCode = ident.ItemCode
			sc.DrawingNo = ident.DrawingNo
		}
		sc.BOMType = variant.BOMType
		sc.AssemblyID = variant.AssemblyID
		sc.CreatedBy = actor
		sc.CreatedAt = now
	}

	for i := range lines.Materials {
		stamp(&lines.Materials[i].lineScope)
	}
	for i := range lines.Components {
		stamp(&lines.Components[i].lineScope)
	}
	for i := range lines.Operations {
		stamp(&lines.Operations[i].lineScope)
	}
	for i := range lines.Scrap {
		stamp(&lines.Scrap[i].lineScope)
	}
}
