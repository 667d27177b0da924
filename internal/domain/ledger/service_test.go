package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codigix/Aluminium-erp-sub005/internal/core/apperror"
	"github.com/codigix/Aluminium-erp-sub005/internal/core/id"
	"github.com/codigix/Aluminium-erp-sub005/internal/core/types"
)

// memRepo folds the same sums a SQL backend would, over an in-memory slice.
type memRepo struct {
	entries  []*Entry
	balances map[string]Balance
}

func newMemRepo() *memRepo {
	return &memRepo{balances: make(map[string]Balance)}
}

func balanceKey(itemCode, warehouse string) string {
	return itemCode + "|" + warehouse
}

func (r *memRepo) InsertEntry(ctx context.Context, entry *Entry) error {
	clone := *entry
	r.entries = append(r.entries, &clone)
	return nil
}

func (r *memRepo) GetEntry(ctx context.Context, entryID id.ID) (Entry, error) {
	for _, e := range r.entries {
		if e.ID == entryID {
			return *e, nil
		}
	}
	return Entry{}, apperror.NewNotFound("ledger entry", entryID)
}

func (r *memRepo) DeleteEntry(ctx context.Context, entryID id.ID) error {
	for i, e := range r.entries {
		if e.ID == entryID {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return nil
		}
	}
	return apperror.NewNotFound("ledger entry", entryID)
}

func (r *memRepo) HasGRNEntry(ctx context.Context, refID, receiptLineID id.ID) (bool, error) {
	for _, e := range r.entries {
		if e.TxnType == TxnGRNIn && e.RefID != nil && *e.RefID == refID &&
			e.ReceiptLineID != nil && *e.ReceiptLineID == receiptLineID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) SumHistory(ctx context.Context, itemCode, warehouse string) (types.Quantity, types.Quantity, error) {
	var received, issued types.Quantity
	for _, e := range r.entries {
		if e.ItemCode == itemCode && e.Warehouse == warehouse {
			received += e.QtyIn
			issued += e.QtyOut
		}
	}
	return received, issued, nil
}

func (r *memRepo) SetEntryBalance(ctx context.Context, entryID id.ID, balance types.Quantity) error {
	for _, e := range r.entries {
		if e.ID == entryID {
			e.BalanceAfter = balance
			return nil
		}
	}
	return apperror.NewNotFound("ledger entry", entryID)
}

func (r *memRepo) UpsertBalance(ctx context.Context, balance Balance) error {
	r.balances[balanceKey(balance.ItemCode, balance.Warehouse)] = balance
	return nil
}

func (r *memRepo) GetBalance(ctx context.Context, itemCode, warehouse string) (Balance, error) {
	if b, ok := r.balances[balanceKey(itemCode, warehouse)]; ok {
		return b, nil
	}
	return Balance{ItemCode: itemCode, Warehouse: warehouse}, nil
}

func (r *memRepo) GetBalanceForUpdate(ctx context.Context, itemCode, warehouse string) (Balance, error) {
	return r.GetBalance(ctx, itemCode, warehouse)
}

func (r *memRepo) GetBalances(ctx context.Context, filter BalanceFilter) ([]Balance, error) {
	out := make([]Balance, 0, len(r.balances))
	for _, b := range r.balances {
		out = append(out, b)
	}
	return out, nil
}

func (r *memRepo) GetHistory(ctx context.Context, itemCode string, filter HistoryFilter) ([]Entry, error) {
	var out []Entry
	for _, e := range r.entries {
		if e.ItemCode == itemCode {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *memRepo) GetTurnover(ctx context.Context, itemCode string, filter TurnoverFilter) (Turnover, error) {
	return Turnover{}, nil
}

func (r *memRepo) SumHistoryAt(ctx context.Context, itemCode, warehouse string, at time.Time) (types.Quantity, error) {
	var balance types.Quantity
	for _, e := range r.entries {
		if e.ItemCode == itemCode && e.Warehouse == warehouse && !e.CreatedAt.After(at) {
			balance += e.QtyIn - e.QtyOut
		}
	}
	return balance, nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService(repo *memRepo) *Service {
	return NewService(repo, passthroughTx{}, nil)
}

func TestAppend_RecomputesBalance(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	res, err := svc.Append(ctx, "STEEL", "WH-A", TxnIn, qty(100), RefDoc{Type: "GRN"}, nil)
	require.NoError(t, err)
	assert.Equal(t, qty(100), res.Entry.BalanceAfter)

	res, err = svc.Append(ctx, "STEEL", "WH-A", TxnOut, qty(30), RefDoc{Type: "JobCard"}, nil)
	require.NoError(t, err)
	assert.Equal(t, qty(70), res.Entry.BalanceAfter)

	rec, err := svc.Reconcile(ctx, "STEEL", "WH-A")
	require.NoError(t, err)
	assert.Equal(t, qty(100), rec.ReceivedQty)
	assert.Equal(t, qty(30), rec.IssuedQty)
	assert.Equal(t, qty(70), rec.CurrentBalance)

	bal, err := svc.GetBalance(ctx, "STEEL", "WH-A")
	require.NoError(t, err)
	assert.Equal(t, qty(70), bal.Quantity)
}

func TestAppend_WarehousesAreIndependent(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Append(ctx, "STEEL", "WH-A", TxnIn, qty(10), RefDoc{}, nil)
	require.NoError(t, err)
	_, err = svc.Append(ctx, "STEEL", "WH-B", TxnIn, qty(4), RefDoc{}, nil)
	require.NoError(t, err)

	a, _ := svc.GetBalance(ctx, "STEEL", "WH-A")
	b, _ := svc.GetBalance(ctx, "STEEL", "WH-B")
	assert.Equal(t, qty(10), a.Quantity)
	assert.Equal(t, qty(4), b.Quantity)
}

func TestAppend_SuppressesDuplicateGRN(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	grnID := id.New()
	lineID := id.New()
	opts := &AppendOptions{ReceiptLineID: &lineID}
	ref := RefDoc{Type: "GRN", ID: &grnID}

	first, err := svc.Append(ctx, "STEEL", "WH-A", TxnGRNIn, qty(25), ref, opts)
	require.NoError(t, err)
	assert.False(t, first.Duplicate)

	second, err := svc.Append(ctx, "STEEL", "WH-A", TxnGRNIn, qty(25), ref, opts)
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Nil(t, second.Entry)

	require.Len(t, repo.entries, 1)
	bal, _ := svc.GetBalance(ctx, "STEEL", "WH-A")
	assert.Equal(t, qty(25), bal.Quantity)
}

func TestAppend_DifferentReceiptLineIsNotDuplicate(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	grnID := id.New()
	lineA, lineB := id.New(), id.New()
	ref := RefDoc{Type: "GRN", ID: &grnID}

	_, err := svc.Append(ctx, "STEEL", "WH-A", TxnGRNIn, qty(5), ref, &AppendOptions{ReceiptLineID: &lineA})
	require.NoError(t, err)
	res, err := svc.Append(ctx, "STEEL", "WH-A", TxnGRNIn, qty(5), ref, &AppendOptions{ReceiptLineID: &lineB})
	require.NoError(t, err)

	assert.False(t, res.Duplicate)
	assert.Len(t, repo.entries, 2)
}

func TestAppend_RejectsBadInput(t *testing.T) {
	svc := newTestService(newMemRepo())
	ctx := context.Background()

	_, err := svc.Append(ctx, "", "WH-A", TxnIn, qty(1), RefDoc{}, nil)
	assert.Error(t, err)

	_, err = svc.Append(ctx, "STEEL", "WH-A", TxnType("BOGUS"), qty(1), RefDoc{}, nil)
	assert.Error(t, err)

	_, err = svc.Append(ctx, "STEEL", "WH-A", TxnIn, qty(-1), RefDoc{}, nil)
	assert.Error(t, err)
}

func TestAllocate_InsufficientStock(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Append(ctx, "STEEL", "WH-A", TxnIn, qty(50), RefDoc{}, nil)
	require.NoError(t, err)

	_, err = svc.Allocate(ctx, "STEEL", "WH-A", qty(120), RefDoc{Type: "JobCard"}, nil)
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// The failed allocation must not have written anything.
	bal, _ := svc.GetBalance(ctx, "STEEL", "WH-A")
	assert.Equal(t, qty(50), bal.Quantity)
	assert.Len(t, repo.entries, 1)
}

func TestAllocate_IssuesStock(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Append(ctx, "STEEL", "WH-A", TxnIn, qty(50), RefDoc{}, nil)
	require.NoError(t, err)

	res, err := svc.Allocate(ctx, "STEEL", "WH-A", qty(20), RefDoc{Type: "JobCard"}, nil)
	require.NoError(t, err)
	assert.Equal(t, TxnOut, res.Entry.TxnType)
	assert.Equal(t, qty(30), res.Entry.BalanceAfter)
}

func TestAllocate_RejectsNonPositive(t *testing.T) {
	svc := newTestService(newMemRepo())

	_, err := svc.Allocate(context.Background(), "STEEL", "WH-A", qty(0), RefDoc{}, nil)
	assert.Error(t, err)
	_, err = svc.Allocate(context.Background(), "STEEL", "WH-A", qty(-5), RefDoc{}, nil)
	assert.Error(t, err)
}

func TestTransfer_MovesBothLegs(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Append(ctx, "STEEL", "WH-A", TxnIn, qty(40), RefDoc{}, nil)
	require.NoError(t, err)

	out, in, err := svc.Transfer(ctx, "STEEL", "WH-A", "WH-B", qty(15), RefDoc{Type: "Transfer"})
	require.NoError(t, err)
	assert.Equal(t, TxnOut, out.Entry.TxnType)
	assert.Equal(t, TxnIn, in.Entry.TxnType)

	a, _ := svc.GetBalance(ctx, "STEEL", "WH-A")
	b, _ := svc.GetBalance(ctx, "STEEL", "WH-B")
	assert.Equal(t, qty(25), a.Quantity)
	assert.Equal(t, qty(15), b.Quantity)
}

func TestTransfer_SameWarehouseRejected(t *testing.T) {
	svc := newTestService(newMemRepo())

	_, _, err := svc.Transfer(context.Background(), "STEEL", "WH-A", "WH-A", qty(1), RefDoc{})
	assert.Error(t, err)
}

func TestRemoveEntry_RebuildsBalance(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Append(ctx, "STEEL", "WH-A", TxnIn, qty(100), RefDoc{}, nil)
	require.NoError(t, err)
	res, err := svc.Append(ctx, "STEEL", "WH-A", TxnIn, qty(50), RefDoc{}, nil)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveEntry(ctx, res.Entry.ID))

	assert.Len(t, repo.entries, 1)
	bal, _ := svc.GetBalance(ctx, "STEEL", "WH-A")
	assert.Equal(t, qty(100), bal.Quantity)
}

func TestBalanceAsOf(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	day1 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	_, err := svc.Append(ctx, "STEEL", "WH-A", TxnIn, qty(100), RefDoc{}, &AppendOptions{PostedAt: &day1})
	require.NoError(t, err)
	_, err = svc.Append(ctx, "STEEL", "WH-A", TxnOut, qty(30), RefDoc{}, &AppendOptions{PostedAt: &day2})
	require.NoError(t, err)

	// Between the two movements only the receipt counts.
	mid := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	balance, err := svc.BalanceAsOf(ctx, "STEEL", "WH-A", mid)
	require.NoError(t, err)
	assert.Equal(t, qty(100), balance)

	balance, err = svc.BalanceAsOf(ctx, "STEEL", "WH-A", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, qty(70), balance)

	// Before any movement the key held nothing.
	balance, err = svc.BalanceAsOf(ctx, "STEEL", "WH-A", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, qty(0), balance)

	_, err = svc.BalanceAsOf(ctx, "", "WH-A", mid)
	assert.Error(t, err)
}

func TestRemoveEntry_UnknownEntry(t *testing.T) {
	svc := newTestService(newMemRepo())

	err := svc.RemoveEntry(context.Background(), id.New())
	assert.True(t, apperror.IsNotFound(err))
}
