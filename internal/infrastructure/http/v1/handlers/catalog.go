package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/codigix/Aluminium-erp-sub005/internal/core/apperror"
	"github.com/codigix/Aluminium-erp-sub005/internal/domain/catalog"
)

// CatalogHandler handles HTTP requests for item master reads.
type CatalogHandler struct {
	*BaseHandler
	service *catalog.Service
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(base *BaseHandler, service *catalog.Service) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler: base,
		service:     service,
	}
}

// GetItem handles GET /catalog/items/:code
func (h *CatalogHandler) GetItem(c *gin.Context) {
	code := c.Param("code")

	item, err := h.service.Lookup(c.Request.Context(), code)
	if err != nil {
		h.Error(c, err)
		return
	}
	if item == nil {
		h.Error(c, apperror.NewNotFound("item", code))
		return
	}

	h.OK(c, item)
}

// GetItemByDrawing handles GET /catalog/items?drawingNo=...
func (h *CatalogHandler) GetItemByDrawing(c *gin.Context) {
	drawingNo := c.Query("drawingNo")
	if drawingNo == "" {
		h.Error(c, apperror.NewValidation("drawingNo query parameter is required"))
		return
	}

	item, err := h.service.LookupByDrawing(c.Request.Context(), drawingNo)
	if err != nil {
		h.Error(c, err)
		return
	}
	if item == nil {
		h.Error(c, apperror.NewNotFound("item", drawingNo))
		return
	}

	h.OK(c, item)
}

// RegisterRoutes registers catalog routes.
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/items", h.GetItemByDrawing)
	rg.GET("/items/:code", h.GetItem)
}
