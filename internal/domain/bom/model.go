// Package bom provides the bill-of-materials core: line storage model,
// scope/variant resolution, recursive explosion and requirement aggregation.
package bom

import (
	"strings"
	"time"

	"github.com/codigix/Aluminium-erp-sub005/internal/core/id"
	"github.com/codigix/Aluminium-erp-sub005/internal/core/types"
)

// DefaultBOMType is the top-level finished-good BOM type.
const DefaultBOMType = "FG"

// Identity addresses a BOM's owning context: either a concrete order item
// (exclusive ownership) or the shared master context keyed by item code /
// drawing number.
type Identity struct {
	OrderItemID id.ID // uuid.Nil when master-scoped
	ItemCode    string
	DrawingNo   string
}

// IsOrderScoped reports whether the identity points at an order item.
func (i Identity) IsOrderScoped() bool { return !id.IsNil(i.OrderItemID) }

// IsZero reports whether the identity addresses nothing at all.
func (i Identity) IsZero() bool {
	return id.IsNil(i.OrderItemID) && i.ItemCode == "" && i.DrawingNo == ""
}

// Variant is a named alternate BOM for the same item: the finished-good top
// assembly or one of its named sub-assemblies.
type Variant struct {
	BOMType    string
	AssemblyID *id.ID // nil = top-level assembly of this BOMType
}

// DefaultVariant returns the top-level finished-good variant.
func DefaultVariant() Variant {
	return Variant{BOMType: DefaultBOMType}
}

// IsTopLevel reports whether the variant is the default top assembly,
// i.e. no specific sub-assembly was requested.
func (v Variant) IsTopLevel() bool {
	return v.AssemblyID == nil && (v.BOMType == "" || v.BOMType == DefaultBOMType)
}

// normalized returns the variant with an empty BOMType replaced by the default.
func (v Variant) normalized() Variant {
	if v.BOMType == "" {
		v.BOMType = DefaultBOMType
	}
	return v
}

// lineScope carries the owning-context and variant columns shared by every
// line kind. A line belongs to exactly one context: order-item or master.
type lineScope struct {
	LineID      id.ID  `db:"line_id" json:"lineId"`
	OrderItemID *id.ID `db:"order_item_id" json:"orderItemId,omitempty"`
	ItemCode    string `db:"item_code" json:"itemCode,omitempty"`
	DrawingNo   string `db:"drawing_no" json:"drawingNo,omitempty"`
	BOMType     string `db:"bom_type" json:"bomType"`
	AssemblyID  *id.ID `db:"assembly_id" json:"assemblyId,omitempty"`

	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// MaterialLine is a raw-material or sub-assembly requirement of one piece of
// the owning item. Whether it is a leaf material or a nested assembly is
// decided by the classifier at explosion time.
type MaterialLine struct {
	lineScope

	Name         string  `db:"material_name" json:"materialName"`
	MaterialType string  `db:"material_type" json:"materialType"`
	ItemGroup    string  `db:"item_group" json:"itemGroup"`
	UoM          string  `db:"uom" json:"uom"`
	QtyPerPiece  float64 `db:"qty_per_piece" json:"qtyPerPiece"`

	// Rate values the material for costing reads; not used by explosion.
	Rate types.Money `db:"rate" json:"rate"`

	// ParentComponentID attaches the material to a component node in the
	// same context+variant. Nil = directly under the root.
	ParentComponentID *id.ID `db:"parent_component_id" json:"parentComponentId,omitempty"`

	// Referenced variant for recursion: a line can point at a different
	// named assembly of the same or another item.
	RefBOMType    string `db:"ref_bom_type" json:"refBomType,omitempty"`
	RefAssemblyID *id.ID `db:"ref_assembly_id" json:"refAssemblyId,omitempty"`
}

// RefVariant returns the variant explosion should descend into for this line.
func (m MaterialLine) RefVariant() Variant {
	return Variant{BOMType: m.RefBOMType, AssemblyID: m.RefAssemblyID}.normalized()
}

// ComponentLine is a node of the self-referencing component tree. Components
// always recurse during explosion, unlike materials.
type ComponentLine struct {
	lineScope

	Code        string  `db:"component_code" json:"componentCode"`
	Description string  `db:"description" json:"description,omitempty"`
	Quantity    float64 `db:"quantity" json:"quantity"`
	UoM         string  `db:"uom" json:"uom"`

	// ParentID references a sibling component within the same context+variant.
	// Parents are always created before children, so reconstruction never
	// chases a forward reference.
	ParentID *id.ID `db:"parent_id" json:"parentId,omitempty"`

	RefBOMType    string `db:"ref_bom_type" json:"refBomType,omitempty"`
	RefAssemblyID *id.ID `db:"ref_assembly_id" json:"refAssemblyId,omitempty"`
}

// RefVariant returns the variant explosion should descend into for this line.
func (c ComponentLine) RefVariant() Variant {
	return Variant{BOMType: c.RefBOMType, AssemblyID: c.RefAssemblyID}.normalized()
}

// OperationLine is a routing step. Operations are read once per identity and
// never multiplied into children.
type OperationLine struct {
	lineScope

	Name        string      `db:"operation_name" json:"operationName"`
	Workstation string      `db:"workstation" json:"workstation,omitempty"`
	TimeMinutes float64     `db:"time_minutes" json:"timeMinutes"`
	HourRate    types.Money `db:"hour_rate" json:"hourRate"`
}

// ScrapLine records expected process scrap. Read for costing, never
// propagated downward during explosion.
type ScrapLine struct {
	lineScope

	Name     string      `db:"scrap_name" json:"scrapName"`
	Quantity float64     `db:"quantity" json:"quantity"`
	UoM      string      `db:"uom" json:"uom"`
	Rate     types.Money `db:"rate" json:"rate"`

	ParentComponentID *id.ID `db:"parent_component_id" json:"parentComponentId,omitempty"`
}

// Lines is a full resolved line set for one identity+variant.
// All slices may be empty: "no further requirements" is a valid state.
type Lines struct {
	Materials  []MaterialLine  `json:"materials"`
	Components []ComponentLine `json:"components"`
	Operations []OperationLine `json:"operations"`
	Scrap      []ScrapLine     `json:"scrap"`
}

// IsEmpty reports whether the set carries no lines of any kind.
func (l Lines) IsEmpty() bool {
	return len(l.Materials) == 0 && len(l.Components) == 0 &&
		len(l.Operations) == 0 && len(l.Scrap) == 0
}

// ExplodedLine is a transient requirement produced by explosion: the per-piece
// quantity multiplied by every ancestor's quantity along the path from the
// root. Created during one explosion call, consumed by the aggregator,
// discarded after.
type ExplodedLine struct {
	MaterialName string  `json:"materialName"`
	MaterialType string  `json:"materialType"`
	ItemGroup    string  `json:"itemGroup"`
	UoM          string  `json:"uom"`
	Quantity     float64 `json:"quantity"`
	Variant      Variant `json:"variant"`
}

// NormalizedKey is the aggregation key: uppercase trimmed material name plus
// the material type.
func NormalizedKey(name, materialType string) string {
	return strings.ToUpper(strings.TrimSpace(name)) + "|" + materialType
}
