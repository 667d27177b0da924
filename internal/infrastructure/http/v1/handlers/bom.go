package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/codigix/Aluminium-erp-sub005/internal/domain/bom"
	"github.com/codigix/Aluminium-erp-sub005/internal/infrastructure/http/v1/dto"
)

// BOMHandler handles HTTP requests for BOM line sets and explosion.
type BOMHandler struct {
	*BaseHandler
	service *bom.Service
}

// NewBOMHandler creates a new BOM handler.
func NewBOMHandler(base *BaseHandler, service *bom.Service) *BOMHandler {
	return &BOMHandler{
		BaseHandler: base,
		service:     service,
	}
}

// SubmitLines handles PUT /bom/lines
// Replaces the full line set for one scope.
func (h *BOMHandler) SubmitLines(c *gin.Context) {
	var req dto.SubmitLinesRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ident, err := req.Scope.Identity()
	if err != nil {
		h.Error(c, err)
		return
	}
	variant, err := req.Scope.Variant()
	if err != nil {
		h.Error(c, err)
		return
	}
	lines, err := req.Lines()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.SubmitLines(c.Request.Context(), ident, variant, lines); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "bom lines replaced")
}

// ClearLines handles DELETE /bom/lines
func (h *BOMHandler) ClearLines(c *gin.Context) {
	var scope dto.BOMScope
	if !h.BindQuery(c, &scope) {
		return
	}

	ident, err := scope.Identity()
	if err != nil {
		h.Error(c, err)
		return
	}
	variant, err := scope.Variant()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.ClearLines(c.Request.Context(), ident, variant); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// GetLines handles GET /bom/lines
// Returns the resolved line set; empty sets are a normal response.
func (h *BOMHandler) GetLines(c *gin.Context) {
	var scope dto.BOMScope
	if !h.BindQuery(c, &scope) {
		return
	}

	ident, err := scope.Identity()
	if err != nil {
		h.Error(c, err)
		return
	}
	variant, err := scope.Variant()
	if err != nil {
		h.Error(c, err)
		return
	}

	lines, err := h.service.Resolve(c.Request.Context(), ident, variant)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, lines)
}

// Explode handles POST /bom/explode
func (h *BOMHandler) Explode(c *gin.Context) {
	var req dto.ExplodeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ident, err := req.Scope.Identity()
	if err != nil {
		h.Error(c, err)
		return
	}
	variant, err := req.Scope.Variant()
	if err != nil {
		h.Error(c, err)
		return
	}

	exploded, err := h.service.Explode(c.Request.Context(), ident, req.Quantity, variant)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(exploded))
}

// Aggregate handles POST /bom/requirements
// Explodes every root and sums demand per material.
func (h *BOMHandler) Aggregate(c *gin.Context) {
	var req dto.AggregateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	roots, err := req.DomainRoots()
	if err != nil {
		h.Error(c, err)
		return
	}

	requirements, err := h.service.AggregateRequirements(c.Request.Context(), roots)
	if err != nil {
		h.Error(c, err)
		return
	}

	ordered := make([]bom.Requirement, 0, len(requirements))
	for _, key := range requirements.SortedKeys() {
		ordered = append(ordered, requirements[key])
	}

	h.OK(c, dto.NewListResponse(ordered))
}

// RegisterRoutes registers BOM routes.
func (h *BOMHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.PUT("/lines", h.SubmitLines)
	rg.GET("/lines", h.GetLines)
	rg.DELETE("/lines", h.ClearLines)
	rg.POST("/explode", h.Explode)
	rg.POST("/requirements", h.Aggregate)
}
