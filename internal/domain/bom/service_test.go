package bom

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codigix/Aluminium-erp-sub005/internal/core/apperror"
	"github.com/codigix/Aluminium-erp-sub005/internal/core/appctx"
	"github.com/codigix/Aluminium-erp-sub005/internal/core/id"
)

// passthroughTx runs the callback without a real database transaction.
type passthroughTx struct {
	calls int
}

func (m *passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type stubOrderItems struct {
	existing map[id.ID]bool
}

func (s *stubOrderItems) Exists(ctx context.Context, orderItemID id.ID) (bool, error) {
	return s.existing[orderItemID], nil
}

func newTestService(repo *stubRepo, orderItems OrderItemChecker) (*Service, *passthroughTx) {
	resolver := NewResolver(repo)
	txm := &passthroughTx{}
	return NewService(repo, resolver, NewEngine(resolver, NewClassifier(nil)), txm, orderItems), txm
}

func TestSubmitLines_StampsScopeAndAudit(t *testing.T) {
	repo := newStubRepo()
	svc, txm := newTestService(repo, nil)

	ctx := appctx.WithActor(context.Background(), &appctx.Actor{UserID: "u-17"})
	ident := Identity{ItemCode: "FG-001", DrawingNo: "DRW-1"}

	err := svc.SubmitLines(ctx, ident, Variant{}, Lines{
		Materials: []MaterialLine{{Name: "STEEL-PLATE", QtyPerPiece: 1.5}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, txm.calls)

	stored := repo.materials["FG-001"]
	require.Len(t, stored, 1)
	assert.False(t, id.IsNil(stored[0].LineID))
	assert.Nil(t, stored[0].OrderItemID)
	assert.Equal(t, "FG-001", stored[0].ItemCode)
	assert.Equal(t, "DRW-1", stored[0].DrawingNo)
	assert.Equal(t, DefaultBOMType, stored[0].BOMType)
	assert.Equal(t, "u-17", stored[0].CreatedBy)
	assert.False(t, stored[0].CreatedAt.IsZero())
}

func TestSubmitLines_RejectsDualOwnership(t *testing.T) {
	svc, _ := newTestService(newStubRepo(), nil)

	err := svc.SubmitLines(context.Background(),
		Identity{OrderItemID: id.New(), ItemCode: "FG-001"},
		Variant{}, Lines{})

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestSubmitLines_RejectsZeroIdentity(t *testing.T) {
	svc, _ := newTestService(newStubRepo(), nil)

	err := svc.SubmitLines(context.Background(), Identity{}, Variant{}, Lines{})
	assert.Error(t, err)
}

func TestSubmitLines_RejectsNegativeQuantity(t *testing.T) {
	svc, _ := newTestService(newStubRepo(), nil)

	err := svc.SubmitLines(context.Background(), Identity{ItemCode: "FG-001"}, Variant{}, Lines{
		Materials: []MaterialLine{{Name: "X", QtyPerPiece: -1}},
	})
	assert.Error(t, err)
}

func TestSubmitLines_ValidatesOwningOrderItem(t *testing.T) {
	known := id.New()
	checker := &stubOrderItems{existing: map[id.ID]bool{known: true}}
	repo := newStubRepo()
	svc, _ := newTestService(repo, checker)

	err := svc.SubmitLines(context.Background(), Identity{OrderItemID: known}, Variant{}, Lines{
		Materials: []MaterialLine{{Name: "BAR", QtyPerPiece: 1}},
	})
	assert.NoError(t, err)

	err = svc.SubmitLines(context.Background(), Identity{OrderItemID: id.New()}, Variant{}, Lines{})
	assert.True(t, apperror.IsNotFound(err))
}

func TestSubmitLines_EmptySetClears(t *testing.T) {
	repo := newStubRepo()
	svc, _ := newTestService(repo, nil)
	ident := Identity{ItemCode: "FG-001"}

	require.NoError(t, svc.SubmitLines(context.Background(), ident, Variant{}, Lines{
		Materials: []MaterialLine{{Name: "STEEL", QtyPerPiece: 1}},
	}))
	require.NoError(t, svc.SubmitLines(context.Background(), ident, Variant{}, Lines{}))

	assert.Empty(t, repo.materials["FG-001"])
}

func TestExplodeService_RejectsNegativeQuantity(t *testing.T) {
	svc, _ := newTestService(newStubRepo(), nil)

	_, err := svc.Explode(context.Background(), Identity{ItemCode: "FG-001"}, -2, Variant{})
	assert.Error(t, err)
}

func TestAggregateRequirements_SkipsNothingOnHappyPath(t *testing.T) {
	repo := newStubRepo()
	repo.materials["FG-001"] = []MaterialLine{
		{Name: "STEEL-PLATE", MaterialType: "Raw Material", UoM: "kg", QtyPerPiece: 1.5},
	}
	repo.materials["FG-002"] = []MaterialLine{
		{Name: "STEEL-PLATE", MaterialType: "Raw Material", UoM: "kg", QtyPerPiece: 2},
	}
	svc, _ := newTestService(repo, nil)

	reqs, err := svc.AggregateRequirements(context.Background(), []Root{
		{Ref: "so-1", Identity: Identity{ItemCode: "FG-001"}, Quantity: 10},
		{Ref: "so-2", Identity: Identity{ItemCode: "FG-002"}, Quantity: 4},
	})
	require.NoError(t, err)
	require.Len(t, reqs, 1)

	req := reqs[NormalizedKey("STEEL-PLATE", "Raw Material")]
	assert.InDelta(t, 23.0, req.RequiredQty, 1e-9)
	require.Len(t, req.Contributors, 2)
}
