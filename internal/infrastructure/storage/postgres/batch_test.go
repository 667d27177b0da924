package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Both batch paths mutate multiple rows and must refuse to run outside a
// transaction, so a partially applied line set is never visible.

func TestExecuteBatch_RequiresTransaction(t *testing.T) {
	inserter := NewBatchInserter(NewTxManagerFromRawPool(nil))

	err := inserter.ExecuteBatch(context.Background(), []BatchQuery{
		{SQL: "DELETE FROM bom_materials WHERE item_code = $1", Args: []any{"FG-001"}},
	})
	assert.ErrorContains(t, err, "requires transaction")
}

func TestCopyFromSlice_RequiresTransaction(t *testing.T) {
	inserter := NewBatchInserter(NewTxManagerFromRawPool(nil))

	_, err := inserter.CopyFromSlice(context.Background(), "bom_materials",
		[]string{"item_code"}, [][]any{{"FG-001"}})
	assert.ErrorContains(t, err, "requires transaction")
}
