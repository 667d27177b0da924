package dto

import (
	"time"

	"github.com/codigix/Aluminium-erp-sub005/internal/core/apperror"
	"github.com/codigix/Aluminium-erp-sub005/internal/core/types"
	"github.com/codigix/Aluminium-erp-sub005/internal/domain/ledger"
)

// AppendEntryRequest records one stock movement.
type AppendEntryRequest struct {
	ItemCode  string         `json:"itemCode" binding:"required"`
	Warehouse string         `json:"warehouse,omitempty"`
	TxnType   string         `json:"txnType" binding:"required"`
	Quantity  types.Quantity `json:"quantity"`

	RefType   string `json:"refType,omitempty"`
	RefID     string `json:"refId,omitempty"`
	RefNumber string `json:"refNumber,omitempty"`

	InspectionID  string `json:"inspectionId,omitempty"`
	ReceiptLineID string `json:"receiptLineId,omitempty"`

	Remarks  string     `json:"remarks,omitempty"`
	PostedAt *time.Time `json:"postedAt,omitempty"`
}

// RefDoc converts the reference-document part.
func (r AppendEntryRequest) RefDoc() (ledger.RefDoc, error) {
	refID, err := parseOptionalID(r.RefID, "refId")
	if err != nil {
		return ledger.RefDoc{}, err
	}
	return ledger.RefDoc{
		Type:   r.RefType,
		ID:     refID,
		Number: r.RefNumber,
	}, nil
}

// Options converts the optional linkage part.
func (r AppendEntryRequest) Options() (*ledger.AppendOptions, error) {
	inspectionID, err := parseOptionalID(r.InspectionID, "inspectionId")
	if err != nil {
		return nil, err
	}
	receiptLineID, err := parseOptionalID(r.ReceiptLineID, "receiptLineId")
	if err != nil {
		return nil, err
	}
	return &ledger.AppendOptions{
		InspectionID:  inspectionID,
		ReceiptLineID: receiptLineID,
		Remarks:       r.Remarks,
		PostedAt:      r.PostedAt,
	}, nil
}

// Type validates and converts the transaction type.
func (r AppendEntryRequest) Type() (ledger.TxnType, error) {
	t := ledger.TxnType(r.TxnType)
	if !t.Valid() {
		return "", apperror.NewValidation("unknown transaction type").
			WithDetail("txn_type", r.TxnType)
	}
	return t, nil
}

// AllocateRequest issues stock against the available balance.
type AllocateRequest struct {
	ItemCode  string         `json:"itemCode" binding:"required"`
	Warehouse string         `json:"warehouse,omitempty"`
	Quantity  types.Quantity `json:"quantity"`

	RefType   string `json:"refType,omitempty"`
	RefID     string `json:"refId,omitempty"`
	RefNumber string `json:"refNumber,omitempty"`
	Remarks   string `json:"remarks,omitempty"`
}

// RefDoc converts the reference-document part.
func (r AllocateRequest) RefDoc() (ledger.RefDoc, error) {
	refID, err := parseOptionalID(r.RefID, "refId")
	if err != nil {
		return ledger.RefDoc{}, err
	}
	return ledger.RefDoc{
		Type:   r.RefType,
		ID:     refID,
		Number: r.RefNumber,
	}, nil
}

// TransferRequest moves stock between warehouses.
type TransferRequest struct {
	ItemCode      string         `json:"itemCode" binding:"required"`
	FromWarehouse string         `json:"fromWarehouse" binding:"required"`
	ToWarehouse   string         `json:"toWarehouse" binding:"required"`
	Quantity      types.Quantity `json:"quantity"`

	RefType   string `json:"refType,omitempty"`
	RefID     string `json:"refId,omitempty"`
	RefNumber string `json:"refNumber,omitempty"`
}

// RefDoc converts the reference-document part.
func (r TransferRequest) RefDoc() (ledger.RefDoc, error) {
	refID, err := parseOptionalID(r.RefID, "refId")
	if err != nil {
		return ledger.RefDoc{}, err
	}
	return ledger.RefDoc{
		Type:   r.RefType,
		ID:     refID,
		Number: r.RefNumber,
	}, nil
}

// TransferResponse returns both legs of a transfer.
type TransferResponse struct {
	Out *ledger.Entry `json:"out"`
	In  *ledger.Entry `json:"in"`
}

// BalanceAsOfResponse is a point-in-time balance fold.
type BalanceAsOfResponse struct {
	ItemCode  string         `json:"itemCode"`
	Warehouse string         `json:"warehouse,omitempty"`
	AsOf      time.Time      `json:"asOf"`
	Quantity  types.Quantity `json:"quantity"`
}

// ReconciliationResponse is the full-history fold for one key.
type ReconciliationResponse struct {
	ItemCode       string         `json:"itemCode"`
	Warehouse      string         `json:"warehouse,omitempty"`
	ReceivedQty    types.Quantity `json:"receivedQty"`
	IssuedQty      types.Quantity `json:"issuedQty"`
	CurrentBalance types.Quantity `json:"currentBalance"`
}
