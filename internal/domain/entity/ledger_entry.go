package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dirección de una entrada del ledger.
const (
	DirectionInbound  = "inbound"  // material recibido
	DirectionOutbound = "outbound" // material consumido
)

// Tipos de documento origen.
const (
	SourceProcurement = "procurement"
	SourceProduction  = "production"
	SourceOrder       = "order"
)

// LedgerEntry hecho append-only: una línea recibida o consumida.
// Quantity siempre es positiva; el signo lo determina Direction.
type LedgerEntry struct {
	ID                 string
	SkuID              string
	Direction          string
	Quantity           decimal.Decimal
	UnitPrice          decimal.Decimal // solo entradas inbound
	SourceDocumentID   string
	SourceDocumentType string
	RecordedAt         time.Time
	RecordedBy         string
}

// IsOutbound indica si la entrada descuenta stock.
func (e *LedgerEntry) IsOutbound() bool {
	return e.Direction == DirectionOutbound
}

// Signed devuelve la cantidad con signo: positiva para inbound, negativa para outbound.
func (e *LedgerEntry) Signed() decimal.Decimal {
	if e.IsOutbound() {
		return e.Quantity.Neg()
	}
	return e.Quantity
}
