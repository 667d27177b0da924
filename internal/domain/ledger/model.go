// Package ledger provides the stock ledger: an append-only record of
// quantity movements per item and warehouse, with balances recomputed from
// the full history rather than trusted incremental counters.
package ledger

import (
	"time"

	"github.com/codigix/Aluminium-erp-sub005/internal/core/apperror"
	"github.com/codigix/Aluminium-erp-sub005/internal/core/id"
	"github.com/codigix/Aluminium-erp-sub005/internal/core/types"
)

// TxnType is the movement type of a ledger entry.
type TxnType string

const (
	TxnIn         TxnType = "IN"
	TxnOut        TxnType = "OUT"
	TxnAdjustment TxnType = "ADJUSTMENT"
	TxnReturn     TxnType = "RETURN"
	TxnGRNIn      TxnType = "GRN_IN"
)

// Valid reports whether the type is one of the known movement types.
func (t TxnType) Valid() bool {
	switch t {
	case TxnIn, TxnOut, TxnAdjustment, TxnReturn, TxnGRNIn:
		return true
	}
	return false
}

// RefDoc points at the document that originated a movement.
type RefDoc struct {
	Type   string `json:"type"` // "GRN", "JobCard", "Transfer", ...
	ID     *id.ID `json:"id,omitempty"`
	Number string `json:"number,omitempty"` // human-readable document number
}

// Entry is one immutable inventory movement. Corrections delete whole rows;
// fields are never mutated after insert.
type Entry struct {
	ID     id.ID  `db:"id" json:"id"`
	Number string `db:"txn_number" json:"txnNumber"`

	ItemCode  string `db:"item_code" json:"itemCode"`
	Warehouse string `db:"warehouse" json:"warehouse,omitempty"` // empty = unscoped

	TxnType TxnType        `db:"txn_type" json:"txnType"`
	QtyIn   types.Quantity `db:"qty_in" json:"qtyIn"`
	QtyOut  types.Quantity `db:"qty_out" json:"qtyOut"`

	// BalanceAfter is a cache of the reconciled sum over this entry and all
	// prior entries for the same (item, warehouse) key. Never an independent
	// source of truth.
	BalanceAfter types.Quantity `db:"balance_after" json:"balanceAfter"`

	RefType   string `db:"ref_type" json:"refType,omitempty"`
	RefID     *id.ID `db:"ref_id" json:"refId,omitempty"`
	RefNumber string `db:"ref_number" json:"refNumber,omitempty"`

	// Quality-inspection linkage; together with RefID the receipt-line id is
	// the idempotent-insert detection key for GRN_IN entries.
	InspectionID  *id.ID `db:"inspection_id" json:"inspectionId,omitempty"`
	ReceiptLineID *id.ID `db:"receipt_line_id" json:"receiptLineId,omitempty"`

	Remarks   string    `db:"remarks" json:"remarks,omitempty"`
	CreatedBy string    `db:"created_by" json:"createdBy"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// SignedQuantity returns the entry's net effect on the balance.
func (e *Entry) SignedQuantity() types.Quantity {
	return e.QtyIn - e.QtyOut
}

// splitQuantity derives the signed in/out pair from movement type and the
// caller-supplied quantity.
func splitQuantity(t TxnType, qty types.Quantity) (in, out types.Quantity, err error) {
	switch t {
	case TxnIn, TxnGRNIn, TxnReturn:
		if qty.IsNegative() {
			return 0, 0, apperror.NewValidation("quantity must not be negative for " + string(t)).
				WithDetail("quantity", qty.Float64())
		}
		return qty, 0, nil
	case TxnOut:
		// Floored at zero net, never a negative issue.
		if qty.IsNegative() {
			return 0, 0, nil
		}
		return 0, qty, nil
	case TxnAdjustment:
		if qty.IsNegative() {
			return 0, qty.Abs(), nil
		}
		return qty, 0, nil
	default:
		return 0, 0, apperror.NewValidation("unknown transaction type").
			WithDetail("txn_type", string(t))
	}
}

// AppendOptions carries the optional linkage of an append call.
type AppendOptions struct {
	InspectionID  *id.ID
	ReceiptLineID *id.ID
	Remarks       string
	PostedAt      *time.Time // defaults to now
}

// AppendResult is the outcome of Append. Duplicate means an identical
// GRN-sourced entry already existed and nothing was written.
type AppendResult struct {
	Entry     *Entry `json:"entry,omitempty"`
	Duplicate bool   `json:"duplicate"`
}

// Balance is the denormalized per-(item, warehouse) row mirroring the
// reconciled sum. Rewritten from a fresh reconciliation on every ledger
// write, never incremented in place by callers.
type Balance struct {
	ItemCode  string `db:"item_code" json:"itemCode"`
	Warehouse string `db:"warehouse" json:"warehouse,omitempty"`

	Quantity types.Quantity `db:"quantity" json:"quantity"`

	LastMovementAt time.Time `db:"last_movement_at" json:"lastMovementAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// Reconciliation is the read-side fold over one key's full history.
type Reconciliation struct {
	ReceivedQty    types.Quantity `json:"receivedQty"`
	IssuedQty      types.Quantity `json:"issuedQty"`
	CurrentBalance types.Quantity `json:"currentBalance"`
}

// HistoryFilter narrows movement-history reads.
type HistoryFilter struct {
	Warehouse *string
	TxnType   *TxnType
	FromDate  *time.Time
	ToDate    *time.Time
	Limit     int
	Offset    int
}

// TurnoverFilter selects the period for a turnover report.
type TurnoverFilter struct {
	Warehouse *string
	FromDate  time.Time
	ToDate    time.Time
}

// Turnover represents opening balance, period receipts/issues and closing.
type Turnover struct {
	OpeningBalance types.Quantity `json:"openingBalance"`
	Received       types.Quantity `json:"received"`
	Issued         types.Quantity `json:"issued"`
	ClosingBalance types.Quantity `json:"closingBalance"`
}
