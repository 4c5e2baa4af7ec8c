package repository

import (
	"context"
	"iter"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// LedgerRepository puerto de persistencia del ledger (append-only salvo Supersede/Remove,
// que solo usa el motor de transiciones dentro de una transacción).
type LedgerRepository interface {
	// Append persiste una entrada nueva. Quantity ≤ 0 → domain.ErrInvalidQuantity.
	Append(ctx context.Context, entry *entity.LedgerEntry) error
	// EntriesFor secuencia perezosa de entradas del SKU ordenadas por RecordedAt ascendente.
	// Cada recorrido vuelve a consultar el almacén.
	EntriesFor(ctx context.Context, skuID string) iter.Seq2[*entity.LedgerEntry, error]
	// OutboundFor salidas vigentes de un documento (a lo sumo una por SKU).
	OutboundFor(ctx context.Context, documentID, documentType string) ([]*entity.LedgerEntry, error)
	// Supersede elimina oldEntryID e inserta entry de forma atómica.
	// Si oldEntryID no existe devuelve domain.ErrLedgerInvariantViolation.
	Supersede(ctx context.Context, oldEntryID string, entry *entity.LedgerEntry) error
	// Remove elimina una salida; si no existe devuelve domain.ErrLedgerInvariantViolation.
	Remove(ctx context.Context, entryID string) error
	// ExistsForDocument indica si el documento ya tiene entradas (cualquier dirección).
	ExistsForDocument(ctx context.Context, documentID, documentType string) (bool, error)
	// ReferencesSku indica si alguna entrada referencia el SKU.
	ReferencesSku(ctx context.Context, skuID string) (bool, error)
}
