package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de documento que consumen stock.
const (
	DocumentTypeOrder      = SourceOrder
	DocumentTypeProduction = SourceProduction
)

// LineItem línea solicitada de un documento.
type LineItem struct {
	SkuID    string          `json:"sku_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// Document pedido u orden de producción con su estado actual.
// Version se incrementa en cada transición confirmada.
type Document struct {
	ID        string
	Type      string
	Status    string
	Lines     []LineItem
	Version   int64
	UpdatedAt time.Time
	UpdatedBy string
}

// Key identifica el documento de forma única entre tipos.
func (d *Document) Key() string {
	return DocumentKey(d.Type, d.ID)
}

// DocumentKey compone la clave tipo/id usada por locks y caches.
func DocumentKey(docType, id string) string {
	return docType + "/" + id
}
