package inventory

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// NormalizeLines agrega las líneas por SKU (un documento tiene a lo sumo una salida por SKU)
// y rechaza cantidades no positivas. El resultado está ordenado por SkuID.
func NormalizeLines(lines []entity.LineItem) ([]entity.LineItem, error) {
	totals := make(map[string]decimal.Decimal, len(lines))
	for _, l := range lines {
		if l.SkuID == "" {
			return nil, fmt.Errorf("línea sin sku_id: %w", domain.ErrInvalidInput)
		}
		if !l.Quantity.GreaterThan(decimal.Zero) {
			return nil, fmt.Errorf("sku %s cantidad %s: %w", l.SkuID, l.Quantity.String(), domain.ErrInvalidQuantity)
		}
		totals[l.SkuID] = totals[l.SkuID].Add(l.Quantity)
	}
	out := make([]entity.LineItem, 0, len(totals))
	for sku, q := range totals {
		out = append(out, entity.LineItem{SkuID: sku, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SkuID < out[j].SkuID })
	return out, nil
}

// SameLines compara dos listas ya normalizadas.
func SameLines(a, b []entity.LineItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].SkuID != b[i].SkuID || !a[i].Quantity.Equal(b[i].Quantity) {
			return false
		}
	}
	return true
}

// Change efecto por SKU de una edición sobre un documento ya consumido.
// Prior es nil cuando el SKU es nuevo para el documento; Target cero significa eliminar.
type Change struct {
	SkuID  string
	Prior  *entity.LedgerEntry
	Old    decimal.Decimal
	Target decimal.Decimal
}

// Delta nuevo − anterior.
func (c Change) Delta() decimal.Decimal { return c.Target.Sub(c.Old) }

// Increase indica si el cambio necesita validación de stock.
func (c Change) Increase() bool { return c.Delta().GreaterThan(decimal.Zero) }

// PlanChanges calcula el delta por SKU entre las salidas vigentes y las líneas nuevas.
// Las líneas deben venir normalizadas. Los SKUs sin cambio se omiten.
func PlanChanges(prior []*entity.LedgerEntry, lines []entity.LineItem) ([]Change, error) {
	bySku := make(map[string]*entity.LedgerEntry, len(prior))
	for _, e := range prior {
		if _, dup := bySku[e.SkuID]; dup {
			return nil, &domain.InvariantError{
				DocumentType: e.SourceDocumentType, DocumentID: e.SourceDocumentID, SkuID: e.SkuID,
				Reason: "más de una salida para el mismo sku",
			}
		}
		bySku[e.SkuID] = e
	}

	var changes []Change
	seen := make(map[string]bool, len(lines))
	for _, l := range lines {
		seen[l.SkuID] = true
		c := Change{SkuID: l.SkuID, Old: decimal.Zero, Target: l.Quantity}
		if p, ok := bySku[l.SkuID]; ok {
			c.Prior = p
			c.Old = p.Quantity
		}
		if !c.Delta().IsZero() {
			changes = append(changes, c)
		}
	}
	for sku, p := range bySku {
		if !seen[sku] {
			changes = append(changes, Change{SkuID: sku, Prior: p, Old: p.Quantity, Target: decimal.Zero})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].SkuID < changes[j].SkuID })
	return changes, nil
}
