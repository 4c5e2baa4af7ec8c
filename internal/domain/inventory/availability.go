package inventory

import (
	"iter"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Availability snapshot derivado (no se persiste): received − consumed = available.
type Availability struct {
	SkuID        string
	Received     decimal.Decimal
	Consumed     decimal.Decimal
	Available    decimal.Decimal
	AveragePrice decimal.Decimal // promedio ponderado de las entradas inbound
}

// Aggregate recorre las entradas de un SKU y acumula los totales.
// La secuencia se consume una sola vez; un error corta la agregación.
func Aggregate(skuID string, entries iter.Seq2[*entity.LedgerEntry, error]) (Availability, error) {
	a := Availability{
		SkuID:        skuID,
		Received:     decimal.Zero,
		Consumed:     decimal.Zero,
		AveragePrice: decimal.Zero,
	}
	for e, err := range entries {
		if err != nil {
			return Availability{}, err
		}
		if e.IsOutbound() {
			a.Consumed = a.Consumed.Add(e.Quantity)
			continue
		}
		a.AveragePrice = CostCalculator(a.Received, a.AveragePrice, e.Quantity, e.UnitPrice)
		a.Received = a.Received.Add(e.Quantity)
	}
	a.Available = a.Received.Sub(a.Consumed)
	return a, nil
}

// StockValue valor del stock disponible al precio promedio.
func (a Availability) StockValue() decimal.Decimal {
	if a.Available.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return a.Available.Mul(a.AveragePrice)
}
