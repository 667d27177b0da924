// Package planning joins aggregated material requirements to reconciled
// stock balances and produces shortage figures for procurement.
package planning

import (
	"context"
	"sort"
	"strings"

	"github.com/codigix/Aluminium-erp-sub005/internal/domain/bom"
	"github.com/codigix/Aluminium-erp-sub005/internal/domain/ledger"
	"github.com/codigix/Aluminium-erp-sub005/pkg/logger"
)

// Shortage is the per-material gap between demand and stock.
type Shortage struct {
	MaterialName string            `json:"materialName"`
	MaterialType string            `json:"materialType"`
	UoM          string            `json:"uom"`
	RequiredQty  float64           `json:"requiredQty"`
	AvailableQty float64           `json:"availableQty"`
	ShortageQty  float64           `json:"shortageQty"`
	Contributors []bom.Contributor `json:"contributors,omitempty"`
}

// Compare joins aggregated requirements with available balances keyed by the
// same normalized material key. Shortage is floored at zero; a material with
// no balance row is simply available = 0, never an error.
func Compare(requirements bom.RequirementMap, available map[string]float64) []Shortage {
	shortages := make([]Shortage, 0, len(requirements))

	for _, key := range requirements.SortedKeys() {
		req := requirements[key]
		avail := available[key] // zero when absent

		gap := req.RequiredQty - avail
		if gap < 0 {
			gap = 0
		}

		shortages = append(shortages, Shortage{
			MaterialName: req.MaterialName,
			MaterialType: req.MaterialType,
			UoM:          req.UoM,
			RequiredQty:  req.RequiredQty,
			AvailableQty: avail,
			ShortageQty:  gap,
			Contributors: req.Contributors,
		})
	}

	sort.Slice(shortages, func(i, j int) bool {
		return shortages[i].MaterialName < shortages[j].MaterialName
	})

	return shortages
}

// Service composes the BOM and ledger cores into requirement-vs-stock reports.
type Service struct {
	bom    *bom.Service
	ledger *ledger.Service
}

// NewService creates a planning service.
func NewService(bomService *bom.Service, ledgerService *ledger.Service) *Service {
	return &Service{bom: bomService, ledger: ledgerService}
}

// ShortageReport explodes every root (pending plan items, project items),
// aggregates demand and compares it against current balances in the given
// warehouse (empty = unscoped). Per-material balance read failures degrade to
// available = 0 with a logged reason rather than failing the whole report.
func (s *Service) ShortageReport(ctx context.Context, roots []bom.Root, warehouse string) ([]Shortage, error) {
	requirements, err := s.bom.AggregateRequirements(ctx, roots)
	if err != nil {
		return nil, err
	}

	available := make(map[string]float64, len(requirements))
	for key, req := range requirements {
		itemCode := strings.TrimSpace(req.MaterialName)
		balance, err := s.ledger.GetBalance(ctx, itemCode, warehouse)
		if err != nil {
			logger.Warn(ctx, "balance read failed, treating as zero",
				"item_code", itemCode,
				"warehouse", warehouse,
				"error", err,
			)
			continue
		}
		available[key] = balance.Quantity.Float64()
	}

	return Compare(requirements, available), nil
}
