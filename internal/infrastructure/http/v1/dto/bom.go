package dto

import (
	"github.com/codigix/Aluminium-erp-sub005/internal/core/apperror"
	"github.com/codigix/Aluminium-erp-sub005/internal/core/id"
	"github.com/codigix/Aluminium-erp-sub005/internal/core/types"
	"github.com/codigix/Aluminium-erp-sub005/internal/domain/bom"
)

// BOMScope addresses one BOM: owning context plus variant.
// Exactly one owning context: orderItemId, or itemCode/drawingNo.
type BOMScope struct {
	OrderItemID string `json:"orderItemId,omitempty" form:"orderItemId"`
	ItemCode    string `json:"itemCode,omitempty" form:"itemCode"`
	DrawingNo   string `json:"drawingNo,omitempty" form:"drawingNo"`
	BOMType     string `json:"bomType,omitempty" form:"bomType"`
	AssemblyID  string `json:"assemblyId,omitempty" form:"assemblyId"`
}

// Identity converts the scope's owning-context part.
func (s BOMScope) Identity() (bom.Identity, error) {
	ident := bom.Identity{
		ItemCode:  s.ItemCode,
		DrawingNo: s.DrawingNo,
	}
	if s.OrderItemID != "" {
		parsed, err := id.Parse(s.OrderItemID)
		if err != nil {
			return bom.Identity{}, apperror.NewValidation("invalid orderItemId format")
		}
		ident.OrderItemID = parsed
	}
	return ident, nil
}

// Variant converts the scope's variant part.
func (s BOMScope) Variant() (bom.Variant, error) {
	v := bom.Variant{BOMType: s.BOMType}
	if s.AssemblyID != "" {
		parsed, err := id.Parse(s.AssemblyID)
		if err != nil {
			return bom.Variant{}, apperror.NewValidation("invalid assemblyId format")
		}
		v.AssemblyID = &parsed
	}
	return v, nil
}

// MaterialLineRequest is one material line in a submission.
type MaterialLineRequest struct {
	MaterialName      string      `json:"materialName" binding:"required"`
	MaterialType      string      `json:"materialType"`
	ItemGroup         string      `json:"itemGroup"`
	UoM               string      `json:"uom"`
	QtyPerPiece       float64     `json:"qtyPerPiece"`
	Rate              types.Money `json:"rate"`
	ParentComponentID string      `json:"parentComponentId,omitempty"`
	RefBOMType        string      `json:"refBomType,omitempty"`
	RefAssemblyID     string      `json:"refAssemblyId,omitempty"`
}

// ComponentLineRequest is one component node in a submission.
type ComponentLineRequest struct {
	ComponentCode string  `json:"componentCode" binding:"required"`
	Description   string  `json:"description,omitempty"`
	Quantity      float64 `json:"quantity"`
	UoM           string  `json:"uom"`
	ParentID      string  `json:"parentId,omitempty"`
	RefBOMType    string  `json:"refBomType,omitempty"`
	RefAssemblyID string  `json:"refAssemblyId,omitempty"`
}

// OperationLineRequest is one routing step in a submission.
type OperationLineRequest struct {
	OperationName string      `json:"operationName" binding:"required"`
	Workstation   string      `json:"workstation,omitempty"`
	TimeMinutes   float64     `json:"timeMinutes"`
	HourRate      types.Money `json:"hourRate"`
}

// ScrapLineRequest is one scrap line in a submission.
type ScrapLineRequest struct {
	ScrapName         string      `json:"scrapName" binding:"required"`
	Quantity          float64     `json:"quantity"`
	UoM               string      `json:"uom"`
	Rate              types.Money `json:"rate"`
	ParentComponentID string      `json:"parentComponentId,omitempty"`
}

// SubmitLinesRequest replaces the full line set for one scope.
type SubmitLinesRequest struct {
	Scope      BOMScope               `json:"scope" binding:"required"`
	Materials  []MaterialLineRequest  `json:"materials"`
	Components []ComponentLineRequest `json:"components"`
	Operations []OperationLineRequest `json:"operations"`
	Scrap      []ScrapLineRequest     `json:"scrap"`
}

func parseOptionalID(value, field string) (*id.ID, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := id.Parse(value)
	if err != nil {
		return nil, apperror.NewValidation("invalid " + field + " format")
	}
	return &parsed, nil
}

// Lines converts the request body to domain lines. Scope columns and audit
// fields are stamped by the service, not here.
func (r SubmitLinesRequest) Lines() (bom.Lines, error) {
	var lines bom.Lines

	for _, m := range r.Materials {
		parentID, err := parseOptionalID(m.ParentComponentID, "parentComponentId")
		if err != nil {
			return bom.Lines{}, err
		}
		refAssemblyID, err := parseOptionalID(m.RefAssemblyID, "refAssemblyId")
		if err != nil {
			return bom.Lines{}, err
		}
		lines.Materials = append(lines.Materials, bom.MaterialLine{
			Name:              m.MaterialName,
			MaterialType:      m.MaterialType,
			ItemGroup:         m.ItemGroup,
			UoM:               m.UoM,
			QtyPerPiece:       m.QtyPerPiece,
			Rate:              m.Rate,
			ParentComponentID: parentID,
			RefBOMType:        m.RefBOMType,
			RefAssemblyID:     refAssemblyID,
		})
	}

	for _, c := range r.Components {
		parentID, err := parseOptionalID(c.ParentID, "parentId")
		if err != nil {
			return bom.Lines{}, err
		}
		refAssemblyID, err := parseOptionalID(c.RefAssemblyID, "refAssemblyId")
		if err != nil {
			return bom.Lines{}, err
		}
		lines.Components = append(lines.Components, bom.ComponentLine{
			Code:          c.ComponentCode,
			Description:   c.Description,
			Quantity:      c.Quantity,
			UoM:           c.UoM,
			ParentID:      parentID,
			RefBOMType:    c.RefBOMType,
			RefAssemblyID: refAssemblyID,
		})
	}

	for _, o := range r.Operations {
		lines.Operations = append(lines.Operations, bom.OperationLine{
			Name:        o.OperationName,
			Workstation: o.Workstation,
			TimeMinutes: o.TimeMinutes,
			HourRate:    o.HourRate,
		})
	}

	for _, s := range r.Scrap {
		parentID, err := parseOptionalID(s.ParentComponentID, "parentComponentId")
		if err != nil {
			return bom.Lines{}, err
		}
		lines.Scrap = append(lines.Scrap, bom.ScrapLine{
			Name:              s.ScrapName,
			Quantity:          s.Quantity,
			UoM:               s.UoM,
			Rate:              s.Rate,
			ParentComponentID: parentID,
		})
	}

	return lines, nil
}

// ExplodeRequest expands a BOM rooted at the scope.
type ExplodeRequest struct {
	Scope    BOMScope `json:"scope" binding:"required"`
	Quantity float64  `json:"quantity"`
}

// RootRequest is one explosion root for requirement aggregation.
type RootRequest struct {
	Ref      string   `json:"ref,omitempty"`
	Scope    BOMScope `json:"scope" binding:"required"`
	Quantity float64  `json:"quantity"`
}

// Root converts to a domain root.
func (r RootRequest) Root() (bom.Root, error) {
	ident, err := r.Scope.Identity()
	if err != nil {
		return bom.Root{}, err
	}
	variant, err := r.Scope.Variant()
	if err != nil {
		return bom.Root{}, err
	}
	return bom.Root{
		Ref:      r.Ref,
		Identity: ident,
		Variant:  variant,
		Quantity: r.Quantity,
	}, nil
}

// AggregateRequest sums demand across several roots.
type AggregateRequest struct {
	Roots []RootRequest `json:"roots" binding:"required"`
}

// DomainRoots converts all request roots.
func (r AggregateRequest) DomainRoots() ([]bom.Root, error) {
	roots := make([]bom.Root, 0, len(r.Roots))
	for _, req := range r.Roots {
		root, err := req.Root()
		if err != nil {
			return nil, err
		}
		roots = append(roots, root)
	}
	return roots, nil
}
