package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.SkuRepository = (*SkuRepo)(nil)

// SkuRepo registro de SKUs sobre PostgreSQL.
type SkuRepo struct {
	q Querier
}

// NewSkuRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSkuRepository(q Querier) *SkuRepo {
	return &SkuRepo{q: q}
}

// Create inserta el SKU.
func (r *SkuRepo) Create(ctx context.Context, sku *entity.RawMaterialSku) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO raw_material_skus (id, kode, nama, satuan, created_at) VALUES ($1, $2, $3, $4, $5)`,
		sku.ID, sku.Kode, sku.Nama, sku.Satuan, sku.CreatedAt,
	)
	return mapError("create sku", err)
}

// Update modifica código, nombre y unidad. Un SKU con entradas en el ledger no se toca (ErrConflict).
func (r *SkuRepo) Update(ctx context.Context, sku *entity.RawMaterialSku) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE raw_material_skus SET kode = $2, nama = $3, satuan = $4
		WHERE id = $1
		  AND NOT EXISTS (SELECT 1 FROM ledger_entries WHERE sku_id = $1)`,
		sku.ID, sku.Kode, sku.Nama, sku.Satuan,
	)
	if err != nil {
		return mapError("update sku", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM raw_material_skus WHERE id = $1)`, sku.ID).Scan(&exists); err != nil {
		return mapError("update sku", err)
	}
	if !exists {
		return fmt.Errorf("sku %s: %w", sku.ID, domain.ErrNotFound)
	}
	return fmt.Errorf("sku %s referenciado por el ledger: %w", sku.ID, domain.ErrConflict)
}

// GetByID devuelve nil, nil si no existe.
func (r *SkuRepo) GetByID(ctx context.Context, id string) (*entity.RawMaterialSku, error) {
	return r.getOne(ctx, `SELECT id, kode, nama, satuan, created_at FROM raw_material_skus WHERE id = $1`, id)
}

// GetByKode devuelve nil, nil si no existe.
func (r *SkuRepo) GetByKode(ctx context.Context, kode string) (*entity.RawMaterialSku, error) {
	return r.getOne(ctx, `SELECT id, kode, nama, satuan, created_at FROM raw_material_skus WHERE kode = $1`, kode)
}

func (r *SkuRepo) getOne(ctx context.Context, query string, arg string) (*entity.RawMaterialSku, error) {
	var s entity.RawMaterialSku
	err := r.q.QueryRow(ctx, query, arg).Scan(&s.ID, &s.Kode, &s.Nama, &s.Satuan, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sku: %w", err)
	}
	return &s, nil
}

// List ordenado por código.
func (r *SkuRepo) List(ctx context.Context) ([]*entity.RawMaterialSku, error) {
	rows, err := r.q.Query(ctx, `SELECT id, kode, nama, satuan, created_at FROM raw_material_skus ORDER BY kode`)
	if err != nil {
		return nil, fmt.Errorf("list skus: %w", err)
	}
	defer rows.Close()
	var list []*entity.RawMaterialSku
	for rows.Next() {
		var s entity.RawMaterialSku
		if err := rows.Scan(&s.ID, &s.Kode, &s.Nama, &s.Satuan, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sku: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// LockForUpdate bloquea las filas en orden de id (SELECT FOR UPDATE) para evitar deadlocks entre transiciones.
func (r *SkuRepo) LockForUpdate(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	rows, err := r.q.Query(ctx,
		`SELECT id FROM raw_material_skus WHERE id = ANY($1) ORDER BY id FOR UPDATE`, ids)
	if err != nil {
		return mapError("lock skus", err)
	}
	defer rows.Close()
	found := make(map[string]bool, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan sku lock: %w", err)
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return mapError("lock skus", err)
	}
	for _, id := range ids {
		if !found[id] {
			return fmt.Errorf("sku %s: %w", id, domain.ErrNotFound)
		}
	}
	return nil
}
