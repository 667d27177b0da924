package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/codigix/Aluminium-erp-sub005/internal/domain/bom"
	"github.com/codigix/Aluminium-erp-sub005/internal/domain/planning"
	"github.com/codigix/Aluminium-erp-sub005/internal/infrastructure/http/v1/dto"
)

// PlanningHandler handles HTTP requests for requirement-vs-stock reports.
type PlanningHandler struct {
	*BaseHandler
	service *planning.Service
}

// NewPlanningHandler creates a new planning handler.
func NewPlanningHandler(base *BaseHandler, service *planning.Service) *PlanningHandler {
	return &PlanningHandler{
		BaseHandler: base,
		service:     service,
	}
}

// ShortageReport handles POST /planning/shortages
func (h *PlanningHandler) ShortageReport(c *gin.Context) {
	var req dto.ShortageReportRequest
	if !h.BindJSON(c, &req) {
		return
	}

	roots := make([]bom.Root, 0, len(req.Roots))
	for _, r := range req.Roots {
		root, err := r.Root()
		if err != nil {
			h.Error(c, err)
			return
		}
		roots = append(roots, root)
	}

	shortages, err := h.service.ShortageReport(c.Request.Context(), roots, req.Warehouse)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(shortages))
}

// RegisterRoutes registers planning routes.
func (h *PlanningHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/shortages", h.ShortageReport)
}
