// Package ledger_repo provides the PostgreSQL implementation of the stock
// ledger repository: immutable entry rows plus a denormalized balance table
// rewritten from full-history folds.
package ledger_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"github.com/codigix/Aluminium-erp-sub005/internal/core/apperror"
	"github.com/codigix/Aluminium-erp-sub005/internal/core/id"
	"github.com/codigix/Aluminium-erp-sub005/internal/core/types"
	"github.com/codigix/Aluminium-erp-sub005/internal/domain/ledger"
	"github.com/codigix/Aluminium-erp-sub005/internal/infrastructure/storage/postgres"
)

const (
	entriesTable  = "stock_ledger_entries"
	balancesTable = "stock_balances"
)

var entryColumns = []string{
	"id", "txn_number", "item_code", "warehouse",
	"txn_type", "qty_in", "qty_out", "balance_after",
	"ref_type", "ref_id", "ref_number",
	"inspection_id", "receipt_line_id",
	"remarks", "created_by", "created_at",
}

// LedgerRepo implements ledger.Repository.
type LedgerRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewLedgerRepo creates a new stock ledger repository.
func NewLedgerRepo(txManager *postgres.TxManager) *LedgerRepo {
	return &LedgerRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// InsertEntry appends one entry row.
func (r *LedgerRepo) InsertEntry(ctx context.Context, entry *ledger.Entry) error {
	q := r.builder.Insert(entriesTable).
		Columns(entryColumns...).
		Values(
			entry.ID, entry.Number, entry.ItemCode, entry.Warehouse,
			entry.TxnType, entry.QtyIn, entry.QtyOut, entry.BalanceAfter,
			entry.RefType, entry.RefID, entry.RefNumber,
			entry.InspectionID, entry.ReceiptLineID,
			entry.Remarks, entry.CreatedBy, entry.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}

	return nil
}

// GetEntry fetches one entry by id.
func (r *LedgerRepo) GetEntry(ctx context.Context, entryID id.ID) (ledger.Entry, error) {
	var entry ledger.Entry

	q := r.builder.Select(entryColumns...).
		From(entriesTable).
		Where(squirrel.Eq{"id": entryID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return entry, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &entry, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entry, apperror.NewNotFound("ledger entry", entryID.String())
		}
		return entry, fmt.Errorf("get entry: %w", err)
	}

	return entry, nil
}

// DeleteEntry removes a whole row. Single-field mutation is never allowed.
func (r *LedgerRepo) DeleteEntry(ctx context.Context, entryID id.ID) error {
	sql, args, err := r.builder.Delete(entriesTable).
		Where(squirrel.Eq{"id": entryID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("ledger entry", entryID.String())
	}

	return nil
}

// HasGRNEntry reports whether a GRN_IN entry exists for the reference
// document / receipt line pair.
func (r *LedgerRepo) HasGRNEntry(ctx context.Context, refID, receiptLineID id.ID) (bool, error) {
	sql := `
		SELECT EXISTS(
			SELECT 1 FROM stock_ledger_entries
			WHERE txn_type = 'GRN_IN'
			  AND ref_id = $1
			  AND receipt_line_id = $2
		)
	`

	var exists bool
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, refID, receiptLineID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check grn entry: %w", err)
	}

	return exists, nil
}

// SumHistory folds the full history for one (item, warehouse) key.
func (r *LedgerRepo) SumHistory(ctx context.Context, itemCode, warehouse string) (types.Quantity, types.Quantity, error) {
	sql := `
		SELECT COALESCE(SUM(qty_in), 0), COALESCE(SUM(qty_out), 0)
		FROM stock_ledger_entries
		WHERE item_code = $1 AND warehouse = $2
	`

	var receivedScaled, issuedScaled int64
	querier := r.txManager.GetQuerier(ctx)
	err := querier.QueryRow(ctx, sql, itemCode, warehouse).Scan(&receivedScaled, &issuedScaled)
	if err != nil && err != pgx.ErrNoRows {
		return 0, 0, fmt.Errorf("sum history: %w", err)
	}

	return types.NewQuantityFromInt64Scaled(receivedScaled),
		types.NewQuantityFromInt64Scaled(issuedScaled), nil
}

// SumHistoryAt folds history up to a point in time.
func (r *LedgerRepo) SumHistoryAt(ctx context.Context, itemCode, warehouse string, at time.Time) (types.Quantity, error) {
	sql := `
		SELECT COALESCE(SUM(qty_in - qty_out), 0)
		FROM stock_ledger_entries
		WHERE item_code = $1 AND warehouse = $2 AND created_at <= $3
	`

	var balanceScaled int64
	querier := r.txManager.GetQuerier(ctx)
	err := querier.QueryRow(ctx, sql, itemCode, warehouse, at).Scan(&balanceScaled)
	if err != nil && err != pgx.ErrNoRows {
		return 0, fmt.Errorf("sum history at date: %w", err)
	}

	return types.NewQuantityFromInt64Scaled(balanceScaled), nil
}

// SetEntryBalance writes the balance_after snapshot of a just-inserted entry.
func (r *LedgerRepo) SetEntryBalance(ctx context.Context, entryID id.ID, balance types.Quantity) error {
	sql, args, err := r.builder.Update(entriesTable).
		Set("balance_after", balance).
		Where(squirrel.Eq{"id": entryID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("set entry balance: %w", err)
	}

	return nil
}

// UpsertBalance rewrites the denormalized balance row for a key.
func (r *LedgerRepo) UpsertBalance(ctx context.Context, balance ledger.Balance) error {
	sql := `
		INSERT INTO stock_balances (item_code, warehouse, quantity, last_movement_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (item_code, warehouse) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			last_movement_at = EXCLUDED.last_movement_at,
			updated_at = EXCLUDED.updated_at
	`

	querier := r.txManager.GetQuerier(ctx)
	_, err := querier.Exec(ctx, sql,
		balance.ItemCode, balance.Warehouse, balance.Quantity,
		balance.LastMovementAt, balance.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert balance: %w", err)
	}

	return nil
}

// GetBalance returns the balance row, or a zero-quantity row for a key that
// has never moved.
func (r *LedgerRepo) GetBalance(ctx context.Context, itemCode, warehouse string) (ledger.Balance, error) {
	var balance ledger.Balance

	q := r.builder.Select(
		"item_code", "warehouse", "quantity", "last_movement_at", "updated_at",
	).From(balancesTable).
		Where(squirrel.Eq{
			"item_code": itemCode,
			"warehouse": warehouse,
		}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return balance, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &balance, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return ledger.Balance{
				ItemCode:  itemCode,
				Warehouse: warehouse,
				Quantity:  0,
			}, nil
		}
		return balance, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

// GetBalanceForUpdate returns the balance row with a pessimistic lock.
// A missing row still means zero balance; there is nothing to lock yet, and
// the subsequent insert path creates the row inside the same transaction.
func (r *LedgerRepo) GetBalanceForUpdate(ctx context.Context, itemCode, warehouse string) (ledger.Balance, error) {
	var balance ledger.Balance

	sql := `
		SELECT item_code, warehouse, quantity, last_movement_at, updated_at
		FROM stock_balances
		WHERE item_code = $1 AND warehouse = $2
		FOR UPDATE
	`

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &balance, sql, itemCode, warehouse); err != nil {
		if pgxscan.NotFound(err) {
			return ledger.Balance{
				ItemCode:  itemCode,
				Warehouse: warehouse,
				Quantity:  0,
			}, nil
		}
		return balance, fmt.Errorf("get balance for update: %w", err)
	}

	return balance, nil
}

// GetBalances lists balance rows.
func (r *LedgerRepo) GetBalances(ctx context.Context, filter ledger.BalanceFilter) ([]ledger.Balance, error) {
	q := r.builder.Select(
		"item_code", "warehouse", "quantity", "last_movement_at", "updated_at",
	).From(balancesTable)

	if len(filter.ItemCodes) > 0 {
		q = q.Where(squirrel.Eq{"item_code": filter.ItemCodes})
	}
	if filter.Warehouse != nil {
		q = q.Where(squirrel.Eq{"warehouse": *filter.Warehouse})
	}
	if filter.ExcludeZero {
		q = q.Where(squirrel.NotEq{"quantity": int64(0)})
	}

	q = q.OrderBy("item_code", "warehouse")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []ledger.Balance
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("select balances: %w", err)
	}

	return balances, nil
}

// GetHistory returns movement history for an item, newest first.
func (r *LedgerRepo) GetHistory(ctx context.Context, itemCode string, filter ledger.HistoryFilter) ([]ledger.Entry, error) {
	q := r.builder.Select(entryColumns...).
		From(entriesTable).
		Where(squirrel.Eq{"item_code": itemCode})

	if filter.Warehouse != nil {
		q = q.Where(squirrel.Eq{"warehouse": *filter.Warehouse})
	}
	if filter.TxnType != nil {
		q = q.Where(squirrel.Eq{"txn_type": *filter.TxnType})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.ToDate})
	}

	q = q.OrderBy("created_at DESC", "id DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []ledger.Entry
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}

	return entries, nil
}

// GetTurnover folds receipts and issues for a period plus the opening balance.
func (r *LedgerRepo) GetTurnover(ctx context.Context, itemCode string, filter ledger.TurnoverFilter) (ledger.Turnover, error) {
	var result ledger.Turnover

	args := []any{itemCode, filter.FromDate, filter.ToDate}
	conditions := "item_code = $1 AND created_at >= $2 AND created_at < $3"
	if filter.Warehouse != nil {
		conditions += " AND warehouse = $4"
		args = append(args, *filter.Warehouse)
	}

	sql := fmt.Sprintf(`
		SELECT
			COALESCE(SUM(qty_in), 0) AS received,
			COALESCE(SUM(qty_out), 0) AS issued
		FROM stock_ledger_entries
		WHERE %s
	`, conditions)

	querier := r.txManager.GetQuerier(ctx)
	var receivedScaled, issuedScaled int64
	err := querier.QueryRow(ctx, sql, args...).Scan(&receivedScaled, &issuedScaled)
	if err != nil && err != pgx.ErrNoRows {
		return result, fmt.Errorf("calculate turnover: %w", err)
	}
	result.Received = types.NewQuantityFromInt64Scaled(receivedScaled)
	result.Issued = types.NewQuantityFromInt64Scaled(issuedScaled)

	openingArgs := []any{itemCode, filter.FromDate}
	openingConditions := "item_code = $1 AND created_at < $2"
	if filter.Warehouse != nil {
		openingConditions += " AND warehouse = $3"
		openingArgs = append(openingArgs, *filter.Warehouse)
	}

	openingSQL := fmt.Sprintf(`
		SELECT COALESCE(SUM(qty_in - qty_out), 0)
		FROM stock_ledger_entries
		WHERE %s
	`, openingConditions)

	var openingScaled int64
	err = querier.QueryRow(ctx, openingSQL, openingArgs...).Scan(&openingScaled)
	if err != nil && err != pgx.ErrNoRows {
		return result, fmt.Errorf("calculate opening balance: %w", err)
	}
	result.OpeningBalance = types.NewQuantityFromInt64Scaled(openingScaled)
	result.ClosingBalance = result.OpeningBalance + result.Received - result.Issued

	return result, nil
}

// Ensure interface compliance.
var _ ledger.Repository = (*LedgerRepo)(nil)
