package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codigix/Aluminium-erp-sub005/internal/core/id"
)

type fakeRepo struct {
	byCode     map[string]*Item
	byDrawing  map[string]*Item
	orderItems map[id.ID]bool
}

func (r *fakeRepo) GetByCode(ctx context.Context, code string) (*Item, error) {
	return r.byCode[code], nil
}

func (r *fakeRepo) GetByDrawing(ctx context.Context, drawingNo string) (*Item, error) {
	return r.byDrawing[drawingNo], nil
}

func (r *fakeRepo) OrderItemExists(ctx context.Context, orderItemID id.ID) (bool, error) {
	return r.orderItems[orderItemID], nil
}

func newTestService() (*Service, *fakeRepo) {
	repo := &fakeRepo{
		byCode:     make(map[string]*Item),
		byDrawing:  make(map[string]*Item),
		orderItems: make(map[id.ID]bool),
	}
	return NewService(repo), repo
}

func TestLookup(t *testing.T) {
	svc, repo := newTestService()
	repo.byCode["STEEL-PLATE"] = &Item{Code: "STEEL-PLATE", Category: "Raw Material", DefaultUoM: "kg"}

	item, err := svc.Lookup(context.Background(), "STEEL-PLATE")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "kg", item.DefaultUoM)

	// Unknown code is nil, not an error.
	item, err = svc.Lookup(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestLookupByDrawing(t *testing.T) {
	svc, repo := newTestService()
	repo.byDrawing["DRW-9"] = &Item{Code: "PUMP", DrawingNo: "DRW-9"}

	item, err := svc.LookupByDrawing(context.Background(), "DRW-9")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "PUMP", item.Code)
}

func TestItemAttributes(t *testing.T) {
	svc, repo := newTestService()
	repo.byCode["HOUSING"] = &Item{
		Code:       "HOUSING",
		Category:   "Sub Assembly",
		ItemGroup:  "Pump Parts",
		DefaultUoM: "pcs",
	}

	attrs, found, err := svc.ItemAttributes(context.Background(), "HOUSING")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Sub Assembly", attrs.Category)
	assert.Equal(t, "Pump Parts", attrs.ItemGroup)
	assert.Equal(t, "pcs", attrs.DefaultUoM)

	_, found, err = svc.ItemAttributes(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestExists(t *testing.T) {
	svc, repo := newTestService()
	known := id.New()
	repo.orderItems[known] = true

	ok, err := svc.Exists(context.Background(), known)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Exists(context.Background(), id.New())
	require.NoError(t, err)
	assert.False(t, ok)
}
