package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// SkuRepository puerto para el registro de SKUs.
type SkuRepository interface {
	Create(ctx context.Context, sku *entity.RawMaterialSku) error
	Update(ctx context.Context, sku *entity.RawMaterialSku) error
	GetByID(ctx context.Context, id string) (*entity.RawMaterialSku, error)
	GetByKode(ctx context.Context, kode string) (*entity.RawMaterialSku, error)
	List(ctx context.Context) ([]*entity.RawMaterialSku, error)
	// LockForUpdate bloquea las filas de los SKUs (SELECT FOR UPDATE) hasta el fin de la transacción.
	// Debe llamarse una sola vez por transacción; un SKU inexistente devuelve domain.ErrNotFound.
	LockForUpdate(ctx context.Context, ids []string) error
}
