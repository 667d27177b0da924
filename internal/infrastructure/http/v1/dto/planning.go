package dto

// ShortageReportRequest compares aggregated demand to stock in a warehouse.
type ShortageReportRequest struct {
	Warehouse string        `json:"warehouse,omitempty"`
	Roots     []RootRequest `json:"roots" binding:"required"`
}
