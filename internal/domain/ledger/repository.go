package ledger

import (
	"context"
	"time"

	"github.com/codigix/Aluminium-erp-sub005/internal/core/id"
	"github.com/codigix/Aluminium-erp-sub005/internal/core/types"
)

// Repository defines storage operations for the stock ledger.
type Repository interface {
	// InsertEntry appends one entry. Entries are immutable after insert.
	InsertEntry(ctx context.Context, entry *Entry) error

	// GetEntry fetches one entry by id.
	GetEntry(ctx context.Context, entryID id.ID) (Entry, error)

	// DeleteEntry removes a whole row (the only permitted correction).
	DeleteEntry(ctx context.Context, entryID id.ID) error

	// HasGRNEntry reports whether a GRN_IN entry already exists for the
	// (reference document, receipt line) pair. Idempotent-insert detection.
	HasGRNEntry(ctx context.Context, refID, receiptLineID id.ID) (bool, error)

	// SumHistory folds the full history for one (item, warehouse) key.
	SumHistory(ctx context.Context, itemCode, warehouse string) (received, issued types.Quantity, err error)

	// SetEntryBalance writes the recomputed balance_after snapshot onto a
	// just-inserted entry.
	SetEntryBalance(ctx context.Context, entryID id.ID, balance types.Quantity) error

	// UpsertBalance rewrites the denormalized balance row for a key,
	// creating it on the first movement.
	UpsertBalance(ctx context.Context, balance Balance) error

	// GetBalance returns the balance row, or a zero-quantity row when the
	// key has never moved.
	GetBalance(ctx context.Context, itemCode, warehouse string) (Balance, error)

	// GetBalanceForUpdate returns the balance row with a pessimistic row
	// lock. Allocation-style read-then-write flows must use this.
	GetBalanceForUpdate(ctx context.Context, itemCode, warehouse string) (Balance, error)

	// GetBalances lists balance rows for reporting.
	GetBalances(ctx context.Context, filter BalanceFilter) ([]Balance, error)

	// GetHistory returns movement history for an item.
	GetHistory(ctx context.Context, itemCode string, filter HistoryFilter) ([]Entry, error)

	// GetTurnover folds receipts and issues for a period.
	GetTurnover(ctx context.Context, itemCode string, filter TurnoverFilter) (Turnover, error)

	// SumHistoryAt folds history up to a point in time (as-of reads).
	SumHistoryAt(ctx context.Context, itemCode, warehouse string, at time.Time) (types.Quantity, error)
}

// BalanceFilter narrows balance listing.
type BalanceFilter struct {
	ItemCodes   []string
	Warehouse   *string
	ExcludeZero bool
	Limit       int
	Offset      int
}
