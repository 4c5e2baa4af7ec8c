package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.SkuRepository = (*SkuRepo)(nil)

// SkuRepo registro de SKUs en memoria. Create y Update se confirman de inmediato.
type SkuRepo struct {
	s  *Store
	tx *txState
}

// Create inserta el SKU; un código repetido devuelve domain.ErrDuplicate.
func (r *SkuRepo) Create(ctx context.Context, sku *entity.RawMaterialSku) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, s := range r.s.skus {
		if s.Kode == sku.Kode {
			return fmt.Errorf("kode %s: %w", sku.Kode, domain.ErrDuplicate)
		}
	}
	cp := *sku
	r.s.skus[sku.ID] = &cp
	return nil
}

// Update reemplaza el SKU existente. Un SKU con entradas confirmadas devuelve domain.ErrConflict.
func (r *SkuRepo) Update(ctx context.Context, sku *entity.RawMaterialSku) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.skus[sku.ID]; !ok {
		return fmt.Errorf("sku %s: %w", sku.ID, domain.ErrNotFound)
	}
	for _, rec := range r.s.entries {
		if rec.entry.SkuID == sku.ID {
			return fmt.Errorf("sku %s referenciado por el ledger: %w", sku.ID, domain.ErrConflict)
		}
	}
	for _, s := range r.s.skus {
		if s.Kode == sku.Kode && s.ID != sku.ID {
			return fmt.Errorf("kode %s: %w", sku.Kode, domain.ErrDuplicate)
		}
	}
	cp := *sku
	r.s.skus[sku.ID] = &cp
	return nil
}

// GetByID devuelve nil, nil si no existe.
func (r *SkuRepo) GetByID(ctx context.Context, id string) (*entity.RawMaterialSku, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if s, ok := r.s.skus[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

// GetByKode devuelve nil, nil si no existe.
func (r *SkuRepo) GetByKode(ctx context.Context, kode string) (*entity.RawMaterialSku, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, s := range r.s.skus {
		if s.Kode == kode {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

// List ordenado por código.
func (r *SkuRepo) List(ctx context.Context) ([]*entity.RawMaterialSku, error) {
	r.s.mu.RLock()
	out := make([]*entity.RawMaterialSku, 0, len(r.s.skus))
	for _, s := range r.s.skus {
		cp := *s
		out = append(out, &cp)
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Kode < out[j].Kode })
	return out, nil
}

// LockForUpdate bloquea los SKUs hasta el fin de la transacción. Fuera de tx solo verifica existencia.
func (r *SkuRepo) LockForUpdate(ctx context.Context, ids []string) error {
	if r.tx != nil {
		keys := make([]string, 0, len(ids))
		for _, id := range ids {
			keys = append(keys, "sku:"+id)
		}
		r.s.lock(r.tx, keys...)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, id := range ids {
		if _, ok := r.s.skus[id]; !ok {
			return fmt.Errorf("sku %s: %w", id, domain.ErrNotFound)
		}
	}
	return nil
}
