package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// DocumentRepository puerto para el estado de pedidos y órdenes de producción.
type DocumentRepository interface {
	// Get devuelve nil, nil si no existe.
	Get(ctx context.Context, documentType, id string) (*entity.Document, error)
	// GetForUpdate igual que Get pero bloquea el documento hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, documentType, id string) (*entity.Document, error)
	// Save inserta o actualiza; incrementa Version.
	Save(ctx context.Context, doc *entity.Document) error
}
