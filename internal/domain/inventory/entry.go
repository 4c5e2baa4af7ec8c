package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// CheckEntry valida una entrada antes de cualquier escritura en el ledger.
func CheckEntry(e *entity.LedgerEntry) error {
	if e == nil {
		return domain.ErrInvalidInput
	}
	if !e.Quantity.GreaterThan(decimal.Zero) {
		return fmt.Errorf("sku %s cantidad %s: %w", e.SkuID, e.Quantity.String(), domain.ErrInvalidQuantity)
	}
	if e.SkuID == "" || e.SourceDocumentID == "" {
		return fmt.Errorf("entrada sin sku o documento: %w", domain.ErrInvalidInput)
	}
	switch e.Direction {
	case entity.DirectionInbound:
		if e.SourceDocumentType != entity.SourceProcurement {
			return fmt.Errorf("entrada inbound desde %q: %w", e.SourceDocumentType, domain.ErrInvalidInput)
		}
		if e.UnitPrice.LessThan(decimal.Zero) {
			return fmt.Errorf("precio unitario negativo: %w", domain.ErrInvalidInput)
		}
	case entity.DirectionOutbound:
		if e.SourceDocumentType != entity.SourceOrder && e.SourceDocumentType != entity.SourceProduction {
			return fmt.Errorf("salida desde %q: %w", e.SourceDocumentType, domain.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("dirección %q: %w", e.Direction, domain.ErrInvalidInput)
	}
	return nil
}
