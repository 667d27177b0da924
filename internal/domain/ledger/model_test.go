package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codigix/Aluminium-erp-sub005/internal/core/types"
)

func qty(f float64) types.Quantity {
	return types.NewQuantityFromFloat64(f)
}

func TestSplitQuantity(t *testing.T) {
	tests := []struct {
		name    string
		txnType TxnType
		qty     types.Quantity
		wantIn  types.Quantity
		wantOut types.Quantity
		wantErr bool
	}{
		{"in", TxnIn, qty(10), qty(10), 0, false},
		{"grn in", TxnGRNIn, qty(2.5), qty(2.5), 0, false},
		{"return", TxnReturn, qty(1), qty(1), 0, false},
		{"out", TxnOut, qty(7), 0, qty(7), false},
		{"negative out floors to zero", TxnOut, qty(-7), 0, 0, false},
		{"positive adjustment", TxnAdjustment, qty(3), qty(3), 0, false},
		{"negative adjustment", TxnAdjustment, qty(-3), 0, qty(3), false},
		{"negative in rejected", TxnIn, qty(-1), 0, 0, true},
		{"negative grn rejected", TxnGRNIn, qty(-1), 0, 0, true},
		{"negative return rejected", TxnReturn, qty(-1), 0, 0, true},
		{"unknown type", TxnType("BOGUS"), qty(1), 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, out, err := splitQuantity(tt.txnType, tt.qty)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantIn, in)
			assert.Equal(t, tt.wantOut, out)
		})
	}
}

func TestEntrySignedQuantity(t *testing.T) {
	e := Entry{QtyIn: qty(10), QtyOut: qty(4)}
	assert.Equal(t, qty(6), e.SignedQuantity())
}

func TestTxnTypeValid(t *testing.T) {
	assert.True(t, TxnIn.Valid())
	assert.True(t, TxnGRNIn.Valid())
	assert.False(t, TxnType("").Valid())
	assert.False(t, TxnType("in").Valid())
}
