package bom

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/codigix/Aluminium-erp-sub005/internal/core/id"
	"github.com/codigix/Aluminium-erp-sub005/pkg/logger"
)

var tracer = otel.Tracer("mfg-core/bom")

// DefaultMaxExplodedLines bounds total emitted lines per explosion call.
// Malformed BOM data (very deep chains, huge fan-out) truncates with a logged
// warning instead of exhausting memory.
const DefaultMaxExplodedLines = 50_000

// Engine recursively walks materials and components from a root identity,
// multiplying quantities by the accumulated parent multiplier.
//
// Recursion is sequential per node in document order: sibling branches share
// the same visited set, so fan-out parallelism would change which branch wins
// the cycle guard.
type Engine struct {
	resolver   *Resolver
	classifier *Classifier
	items      ItemLookup // optional; nil skips master-data enrichment
	maxLines   int
}

// NewEngine creates an explosion engine.
func NewEngine(resolver *Resolver, classifier *Classifier) *Engine {
	return &Engine{
		resolver:   resolver,
		classifier: classifier,
		maxLines:   DefaultMaxExplodedLines,
	}
}

// WithMaxLines overrides the emitted-line cap. Zero or negative restores the default.
func (e *Engine) WithMaxLines(n int) *Engine {
	if n <= 0 {
		n = DefaultMaxExplodedLines
	}
	e.maxLines = n
	return e
}

// WithItemLookup installs the item-master lookup. Material lines recorded
// without categorical fields or a unit are backfilled from the master before
// classification; stored values always win over master data.
func (e *Engine) WithItemLookup(items ItemLookup) *Engine {
	e.items = items
	return e
}

// visitKey identifies a node for the cycle guard.
type visitKey struct {
	orderItemID id.ID
	itemCode    string
	drawingNo   string
	bomType     string
	assemblyID  id.ID
}

func newVisitKey(ident Identity, variant Variant) visitKey {
	k := visitKey{
		orderItemID: ident.OrderItemID,
		itemCode:    strings.ToUpper(strings.TrimSpace(ident.ItemCode)),
		drawingNo:   strings.ToUpper(strings.TrimSpace(ident.DrawingNo)),
		bomType:     variant.BOMType,
	}
	if variant.AssemblyID != nil {
		k.assemblyID = *variant.AssemblyID
	}
	return k
}

// walkState is shared across one explosion call: the cycle guard set, the
// output buffer and the truncation flag.
type walkState struct {
	visited   map[visitKey]struct{}
	attrs     map[string]*ItemAttributes // memoized master reads, nil = unknown code
	out       []ExplodedLine
	truncated bool
}

// Explode resolves and recursively expands the BOM rooted at identity,
// scaling every line by multiplier. A pure function of current BOM state.
func (e *Engine) Explode(ctx context.Context, ident Identity, multiplier float64, variant Variant) ([]ExplodedLine, error) {
	ctx, span := tracer.Start(ctx, "bom.explode",
		trace.WithAttributes(
			attribute.String("bom.item_code", ident.ItemCode),
			attribute.String("bom.drawing_no", ident.DrawingNo),
		))
	defer span.End()

	state := &walkState{
		visited: make(map[visitKey]struct{}),
		attrs:   make(map[string]*ItemAttributes),
		out:     make([]ExplodedLine, 0, 64),
	}

	if err := e.explode(ctx, ident, variant.normalized(), multiplier, state); err != nil {
		return nil, err
	}

	if state.truncated {
		logger.Warn(ctx, "explosion truncated at line cap",
			"item_code", ident.ItemCode,
			"drawing_no", ident.DrawingNo,
			"cap", e.maxLines,
		)
	}

	span.SetAttributes(attribute.Int("bom.exploded_lines", len(state.out)))
	return state.out, nil
}

func (e *Engine) explode(ctx context.Context, ident Identity, variant Variant, multiplier float64, state *walkState) error {
	// Cycle guard: the same identity+variant reappearing on the path means
	// malformed data. Broken silently so a bad legacy BOM cannot block an
	// entire requirement report.
	key := newVisitKey(ident, variant)
	if _, seen := state.visited[key]; seen {
		return nil
	}
	state.visited[key] = struct{}{}

	if state.truncated {
		return nil
	}

	lines, err := e.resolver.Resolve(ctx, ident, variant)
	if err != nil {
		return err
	}

	for _, m := range lines.Materials {
		m = e.enrich(ctx, m, state)
		qty := m.QtyPerPiece * multiplier // missing quantity reads as zero

		if !e.emit(state, ExplodedLine{
			MaterialName: m.Name,
			MaterialType: m.MaterialType,
			ItemGroup:    m.ItemGroup,
			UoM:          m.UoM,
			Quantity:     qty,
			Variant:      variant,
		}) {
			return nil
		}

		// Materials recurse only when classified as a sub-assembly; the
		// referenced variant may differ from the current one.
		if e.classifier.IsSubAssembly(m) {
			sub := Identity{ItemCode: strings.TrimSpace(m.Name)}
			if err := e.explode(ctx, sub, m.RefVariant(), qty, state); err != nil {
				return err
			}
		}
	}

	for _, c := range lines.Components {
		qty := c.Quantity * multiplier

		if !e.emit(state, ExplodedLine{
			MaterialName: c.Code,
			MaterialType: "Component",
			ItemGroup:    c.Description,
			UoM:          c.UoM,
			Quantity:     qty,
			Variant:      variant,
		}) {
			return nil
		}

		// Components always recurse. One whose code resolves to nothing is
		// simply a leaf raw material: the recursive call emits no lines.
		sub := Identity{ItemCode: strings.TrimSpace(c.Code)}
		if err := e.explode(ctx, sub, c.RefVariant(), qty, state); err != nil {
			return err
		}
	}

	// Operations are read once per identity and scrap is costing-only;
	// neither propagates downward.
	return nil
}

// enrich backfills empty categorical fields and unit from the item master so
// a sparsely recorded line still classifies and reports correctly. Lookup
// failures degrade to the stored line; master reads are memoized per walk.
func (e *Engine) enrich(ctx context.Context, m MaterialLine, state *walkState) MaterialLine {
	if e.items == nil {
		return m
	}
	if m.MaterialType != "" && m.ItemGroup != "" && m.UoM != "" {
		return m
	}

	code := strings.TrimSpace(m.Name)
	if code == "" {
		return m
	}

	attrs, cached := state.attrs[code]
	if !cached {
		a, found, err := e.items.ItemAttributes(ctx, code)
		if err != nil {
			logger.Warn(ctx, "item master lookup failed, using stored line fields",
				"item_code", code,
				"error", err,
			)
			return m
		}
		if found {
			attrs = &a
		}
		state.attrs[code] = attrs
	}
	if attrs == nil {
		return m
	}

	if m.MaterialType == "" {
		m.MaterialType = attrs.Category
	}
	if m.ItemGroup == "" {
		m.ItemGroup = attrs.ItemGroup
	}
	if m.UoM == "" {
		m.UoM = attrs.DefaultUoM
	}
	return m
}

// emit appends one line unless the cap was reached. Returns false once
// truncated so callers stop descending.
func (e *Engine) emit(state *walkState, line ExplodedLine) bool {
	if len(state.out) >= e.maxLines {
		state.truncated = true
		return false
	}
	state.out = append(state.out, line)
	return true
}
