package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codigix/Aluminium-erp-sub005/internal/core/apperror"
	"github.com/codigix/Aluminium-erp-sub005/internal/core/id"
	"github.com/codigix/Aluminium-erp-sub005/internal/domain/ledger"
	"github.com/codigix/Aluminium-erp-sub005/internal/infrastructure/http/v1/dto"
)

// LedgerHandler handles HTTP requests for the stock ledger.
type LedgerHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(base *BaseHandler, service *ledger.Service) *LedgerHandler {
	return &LedgerHandler{
		BaseHandler: base,
		service:     service,
	}
}

// AppendEntry handles POST /ledger/entries
func (h *LedgerHandler) AppendEntry(c *gin.Context) {
	var req dto.AppendEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	txnType, err := req.Type()
	if err != nil {
		h.Error(c, err)
		return
	}
	ref, err := req.RefDoc()
	if err != nil {
		h.Error(c, err)
		return
	}
	opts, err := req.Options()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.Append(c.Request.Context(), req.ItemCode, req.Warehouse, txnType, req.Quantity, ref, opts)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// Allocate handles POST /ledger/allocations
// Issues stock with an availability check under a row lock.
func (h *LedgerHandler) Allocate(c *gin.Context) {
	var req dto.AllocateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ref, err := req.RefDoc()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.Allocate(c.Request.Context(), req.ItemCode, req.Warehouse, req.Quantity, ref,
		&ledger.AppendOptions{Remarks: req.Remarks})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// Transfer handles POST /ledger/transfers
func (h *LedgerHandler) Transfer(c *gin.Context) {
	var req dto.TransferRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ref, err := req.RefDoc()
	if err != nil {
		h.Error(c, err)
		return
	}

	out, in, err := h.service.Transfer(c.Request.Context(), req.ItemCode, req.FromWarehouse, req.ToWarehouse, req.Quantity, ref)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.TransferResponse{Out: out.Entry, In: in.Entry})
}

// RemoveEntry handles DELETE /ledger/entries/:id
func (h *LedgerHandler) RemoveEntry(c *gin.Context) {
	entryID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid entry id format"))
		return
	}

	if err := h.service.RemoveEntry(c.Request.Context(), entryID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// Reconcile handles GET /ledger/reconciliation/:itemCode
func (h *LedgerHandler) Reconcile(c *gin.Context) {
	itemCode := c.Param("itemCode")
	warehouse := c.Query("warehouse")

	rec, err := h.service.Reconcile(c.Request.Context(), itemCode, warehouse)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ReconciliationResponse{
		ItemCode:       itemCode,
		Warehouse:      warehouse,
		ReceivedQty:    rec.ReceivedQty,
		IssuedQty:      rec.IssuedQty,
		CurrentBalance: rec.CurrentBalance,
	})
}

// GetBalance handles GET /ledger/balances/:itemCode
// An asOf query parameter switches to a point-in-time history fold.
func (h *LedgerHandler) GetBalance(c *gin.Context) {
	itemCode := c.Param("itemCode")
	warehouse := c.Query("warehouse")

	if asOfStr := c.Query("asOf"); asOfStr != "" {
		asOf, err := time.Parse(time.RFC3339, asOfStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid asOf format, expected RFC3339"))
			return
		}

		qty, err := h.service.BalanceAsOf(c.Request.Context(), itemCode, warehouse, asOf)
		if err != nil {
			h.Error(c, err)
			return
		}

		h.OK(c, dto.BalanceAsOfResponse{
			ItemCode:  itemCode,
			Warehouse: warehouse,
			AsOf:      asOf,
			Quantity:  qty,
		})
		return
	}

	balance, err := h.service.GetBalance(c.Request.Context(), itemCode, warehouse)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, balance)
}

// GetBalances handles GET /ledger/balances
func (h *LedgerHandler) GetBalances(c *gin.Context) {
	filter := ledger.BalanceFilter{
		ExcludeZero: c.Query("excludeZero") == "true",
		Limit:       h.ParseIntQuery(c, "limit", 100),
		Offset:      h.ParseIntQuery(c, "offset", 0),
	}
	if wh := c.Query("warehouse"); wh != "" {
		filter.Warehouse = &wh
	}
	if codes := c.QueryArray("itemCode"); len(codes) > 0 {
		filter.ItemCodes = codes
	}

	balances, err := h.service.GetBalances(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(balances))
}

// GetHistory handles GET /ledger/history/:itemCode
func (h *LedgerHandler) GetHistory(c *gin.Context) {
	filter := ledger.HistoryFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}
	if wh := c.Query("warehouse"); wh != "" {
		filter.Warehouse = &wh
	}
	if t := c.Query("txnType"); t != "" {
		txnType := ledger.TxnType(t)
		if !txnType.Valid() {
			h.Error(c, apperror.NewValidation("unknown transaction type").WithDetail("txn_type", t))
			return
		}
		filter.TxnType = &txnType
	}
	if fromStr := c.Query("fromDate"); fromStr != "" {
		if parsed, err := time.Parse(time.RFC3339, fromStr); err == nil {
			filter.FromDate = &parsed
		}
	}
	if toStr := c.Query("toDate"); toStr != "" {
		if parsed, err := time.Parse(time.RFC3339, toStr); err == nil {
			filter.ToDate = &parsed
		}
	}

	entries, err := h.service.History(c.Request.Context(), c.Param("itemCode"), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(entries))
}

// GetTurnover handles GET /ledger/turnover/:itemCode
func (h *LedgerHandler) GetTurnover(c *gin.Context) {
	fromStr := c.Query("fromDate")
	toStr := c.Query("toDate")
	if fromStr == "" || toStr == "" {
		h.Error(c, apperror.NewValidation("fromDate and toDate are required"))
		return
	}

	fromDate, err := time.Parse(time.RFC3339, fromStr)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid fromDate format, expected RFC3339"))
		return
	}
	toDate, err := time.Parse(time.RFC3339, toStr)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid toDate format, expected RFC3339"))
		return
	}

	filter := ledger.TurnoverFilter{FromDate: fromDate, ToDate: toDate}
	if wh := c.Query("warehouse"); wh != "" {
		filter.Warehouse = &wh
	}

	turnover, err := h.service.TurnoverReport(c.Request.Context(), c.Param("itemCode"), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, turnover)
}

// RegisterRoutes registers stock ledger routes. The corrections guard, when
// given, fronts entry deletion, the only destructive operation.
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup, corrections ...gin.HandlerFunc) {
	rg.POST("/entries", h.AppendEntry)
	rg.DELETE("/entries/:id", append(corrections, h.RemoveEntry)...)
	rg.POST("/allocations", h.Allocate)
	rg.POST("/transfers", h.Transfer)
	rg.GET("/reconciliation/:itemCode", h.Reconcile)
	rg.GET("/balances", h.GetBalances)
	rg.GET("/balances/:itemCode", h.GetBalance)
	rg.GET("/history/:itemCode", h.GetHistory)
	rg.GET("/turnover/:itemCode", h.GetTurnover)
}
