package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/codigix/Aluminium-erp-sub005/internal/core/apperror"
	"github.com/codigix/Aluminium-erp-sub005/internal/core/appctx"
	"github.com/codigix/Aluminium-erp-sub005/internal/core/id"
	"github.com/codigix/Aluminium-erp-sub005/internal/core/tx"
	"github.com/codigix/Aluminium-erp-sub005/internal/core/types"
	"github.com/codigix/Aluminium-erp-sub005/pkg/logger"
)

// NumberGenerator issues human-readable transaction numbers (TXN-2026-00042).
type NumberGenerator interface {
	Next(ctx context.Context, prefix string) (string, error)
}

// txnNumberPrefix for ledger entry numbers.
const txnNumberPrefix = "TXN"

// Service is the only mutation entry point for inventory quantities.
//
// Every append recomputes the (item, warehouse) balance from the entire
// ledger history inside the same transaction, then rewrites both the entry's
// balance_after snapshot and the denormalized balance row. The O(history)
// recompute is deliberate: it self-heals after out-of-band corrections and
// removes the drift bugs of incremental counters.
type Service struct {
	repo      Repository
	txManager tx.Manager
	numbers   NumberGenerator // optional; entries get empty numbers without it
}

// NewService creates a ledger service.
func NewService(repo Repository, txManager tx.Manager, numbers NumberGenerator) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		numbers:   numbers,
	}
}

// Append records one stock movement. Insert, recompute and balance-write run
// as one atomic unit; callers chaining appends (a transfer = OUT + IN) wrap
// both calls in one outer RunInTransaction so they commit or roll back
// together.
func (s *Service) Append(ctx context.Context, itemCode, warehouse string, txnType TxnType, qty types.Quantity, ref RefDoc, opts *AppendOptions) (*AppendResult, error) {
	if itemCode == "" {
		return nil, apperror.NewValidation("item code is required")
	}
	if !txnType.Valid() {
		return nil, apperror.NewValidation("unknown transaction type").
			WithDetail("txn_type", string(txnType))
	}
	if opts == nil {
		opts = &AppendOptions{}
	}

	qtyIn, qtyOut, err := splitQuantity(txnType, qty)
	if err != nil {
		return nil, err
	}

	postedAt := time.Now().UTC()
	if opts.PostedAt != nil {
		postedAt = opts.PostedAt.UTC()
	}

	// Number generation runs outside the business transaction; a gap from a
	// later rollback is acceptable for ledger numbers.
	number := ""
	if s.numbers != nil {
		number, err = s.numbers.Next(ctx, txnNumberPrefix)
		if err != nil {
			return nil, apperror.NewStorage(fmt.Errorf("generate txn number: %w", err))
		}
	}

	entry := &Entry{
		ID:            id.New(),
		Number:        number,
		ItemCode:      itemCode,
		Warehouse:     warehouse,
		TxnType:       txnType,
		QtyIn:         qtyIn,
		QtyOut:        qtyOut,
		RefType:       ref.Type,
		RefID:         ref.ID,
		RefNumber:     ref.Number,
		InspectionID:  opts.InspectionID,
		ReceiptLineID: opts.ReceiptLineID,
		Remarks:       opts.Remarks,
		CreatedBy:     appctx.ActorID(ctx),
		CreatedAt:     postedAt,
	}

	result := &AppendResult{}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// Idempotency: inspection-driven GRN_IN entries carry both the
		// source document id and the receipt line id; an existing entry for
		// that exact pair means a retried workflow, not new stock.
		if txnType == TxnGRNIn && ref.ID != nil && opts.ReceiptLineID != nil {
			exists, err := s.repo.HasGRNEntry(ctx, *ref.ID, *opts.ReceiptLineID)
			if err != nil {
				return fmt.Errorf("check duplicate grn entry: %w", err)
			}
			if exists {
				result.Duplicate = true
				return nil
			}
		}

		if err := s.repo.InsertEntry(ctx, entry); err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}

		balance, err := s.recomputeBalance(ctx, itemCode, warehouse, postedAt)
		if err != nil {
			return err
		}

		entry.BalanceAfter = balance
		if err := s.repo.SetEntryBalance(ctx, entry.ID, balance); err != nil {
			return fmt.Errorf("set entry balance: %w", err)
		}

		result.Entry = entry
		return nil
	})
	if err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.NewStorage(err)
	}

	if result.Duplicate {
		logger.Info(ctx, "duplicate ledger entry suppressed",
			"item_code", itemCode,
			"ref_id", ref.ID,
			"receipt_line_id", opts.ReceiptLineID,
		)
		return result, nil
	}

	logger.Info(ctx, "ledger entry appended",
		"item_code", itemCode,
		"warehouse", warehouse,
		"txn_type", txnType,
		"qty_in", entry.QtyIn,
		"qty_out", entry.QtyOut,
		"balance_after", entry.BalanceAfter,
	)

	return result, nil
}

// recomputeBalance folds the full history for a key and rewrites the
// denormalized balance row. Must run inside the transaction that just wrote
// the triggering entry.
func (s *Service) recomputeBalance(ctx context.Context, itemCode, warehouse string, movedAt time.Time) (types.Quantity, error) {
	received, issued, err := s.repo.SumHistory(ctx, itemCode, warehouse)
	if err != nil {
		return 0, fmt.Errorf("sum history: %w", err)
	}

	balance := received - issued
	err = s.repo.UpsertBalance(ctx, Balance{
		ItemCode:       itemCode,
		Warehouse:      warehouse,
		Quantity:       balance,
		LastMovementAt: movedAt,
		UpdatedAt:      time.Now().UTC(),
	})
	if err != nil {
		return 0, fmt.Errorf("upsert balance: %w", err)
	}

	return balance, nil
}

// Reconcile folds one key's full history: total received, total issued, net.
// Pure read; does not touch the balance row.
func (s *Service) Reconcile(ctx context.Context, itemCode, warehouse string) (Reconciliation, error) {
	if itemCode == "" {
		return Reconciliation{}, apperror.NewValidation("item code is required")
	}

	received, issued, err := s.repo.SumHistory(ctx, itemCode, warehouse)
	if err != nil {
		return Reconciliation{}, apperror.NewStorage(fmt.Errorf("sum history: %w", err))
	}

	return Reconciliation{
		ReceivedQty:    received,
		IssuedQty:      issued,
		CurrentBalance: received - issued,
	}, nil
}

// Allocate issues stock against a validated available quantity. The balance
// row is locked for the duration of the transaction so concurrent receipts or
// transfers for the same item cannot interleave with the check.
func (s *Service) Allocate(ctx context.Context, itemCode, warehouse string, qty types.Quantity, ref RefDoc, opts *AppendOptions) (*AppendResult, error) {
	if itemCode == "" {
		return nil, apperror.NewValidation("item code is required")
	}
	if !qty.IsPositive() {
		return nil, apperror.NewValidation("allocation quantity must be positive").
			WithDetail("quantity", qty.Float64())
	}

	var result *AppendResult

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		balance, err := s.repo.GetBalanceForUpdate(ctx, itemCode, warehouse)
		if err != nil {
			return fmt.Errorf("lock balance: %w", err)
		}

		if qty > balance.Quantity {
			return apperror.NewInsufficientStock(itemCode, qty.Float64(), balance.Quantity.Float64())
		}

		result, err = s.Append(ctx, itemCode, warehouse, TxnOut, qty, ref, opts)
		return err
	})
	if err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.NewStorage(err)
	}

	return result, nil
}

// Transfer moves stock between warehouses: one OUT from the source and one IN
// to the destination, committed together or not at all.
func (s *Service) Transfer(ctx context.Context, itemCode, fromWarehouse, toWarehouse string, qty types.Quantity, ref RefDoc) (out, in *AppendResult, err error) {
	if fromWarehouse == toWarehouse {
		return nil, nil, apperror.NewValidation("source and destination warehouses must differ")
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var txErr error
		out, txErr = s.Allocate(ctx, itemCode, fromWarehouse, qty, ref, nil)
		if txErr != nil {
			return txErr
		}
		in, txErr = s.Append(ctx, itemCode, toWarehouse, TxnIn, qty, ref, nil)
		return txErr
	})
	if err != nil {
		if apperror.IsAppError(err) {
			return nil, nil, err
		}
		return nil, nil, apperror.NewStorage(err)
	}

	logger.Info(ctx, "stock transferred",
		"item_code", itemCode,
		"from", fromWarehouse,
		"to", toWarehouse,
		"quantity", qty,
	)

	return out, in, nil
}

// RemoveEntry deletes a ledger entry (the only permitted correction) and
// rebuilds the key's balance from the remaining history, which is what makes
// the recompute-from-history policy self-healing.
func (s *Service) RemoveEntry(ctx context.Context, entryID id.ID) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		entry, err := s.repo.GetEntry(ctx, entryID)
		if err != nil {
			return err
		}

		if err := s.repo.DeleteEntry(ctx, entryID); err != nil {
			return fmt.Errorf("delete entry: %w", err)
		}

		_, err = s.recomputeBalance(ctx, entry.ItemCode, entry.Warehouse, time.Now().UTC())
		return err
	})
	if err != nil {
		if apperror.IsAppError(err) {
			return err
		}
		return apperror.NewStorage(err)
	}

	logger.Info(ctx, "ledger entry removed", "entry_id", entryID)
	return nil
}

// GetBalance returns the denormalized balance row for a key.
func (s *Service) GetBalance(ctx context.Context, itemCode, warehouse string) (Balance, error) {
	return s.repo.GetBalance(ctx, itemCode, warehouse)
}

// BalanceAsOf folds the key's history up to a point in time. Unlike
// GetBalance this never consults the denormalized row, so it answers
// "what did we hold then" even after later corrections.
func (s *Service) BalanceAsOf(ctx context.Context, itemCode, warehouse string, at time.Time) (types.Quantity, error) {
	if itemCode == "" {
		return 0, apperror.NewValidation("item code is required")
	}
	balance, err := s.repo.SumHistoryAt(ctx, itemCode, warehouse, at)
	if err != nil {
		return 0, apperror.NewStorage(fmt.Errorf("sum history at: %w", err))
	}
	return balance, nil
}

// GetBalances lists balance rows.
func (s *Service) GetBalances(ctx context.Context, filter BalanceFilter) ([]Balance, error) {
	return s.repo.GetBalances(ctx, filter)
}

// History returns movement history for an item.
func (s *Service) History(ctx context.Context, itemCode string, filter HistoryFilter) ([]Entry, error) {
	if itemCode == "" {
		return nil, apperror.NewValidation("item code is required")
	}
	return s.repo.GetHistory(ctx, itemCode, filter)
}

// TurnoverReport folds receipts/issues for a period.
func (s *Service) TurnoverReport(ctx context.Context, itemCode string, filter TurnoverFilter) (Turnover, error) {
	if itemCode == "" {
		return Turnover{}, apperror.NewValidation("item code is required")
	}
	return s.repo.GetTurnover(ctx, itemCode, filter)
}
