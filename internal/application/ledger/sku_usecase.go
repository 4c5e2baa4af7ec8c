package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// SkuUseCase registro de SKUs. Un SKU referenciado por el ledger no se modifica.
type SkuUseCase struct {
	txRunner TxRunner
	skuRepo  repository.SkuRepository
}

// NewSkuUseCase construye el caso de uso.
func NewSkuUseCase(txRunner TxRunner, skuRepo repository.SkuRepository) *SkuUseCase {
	return &SkuUseCase{txRunner: txRunner, skuRepo: skuRepo}
}

// Create registra un SKU con código único.
func (uc *SkuUseCase) Create(ctx context.Context, in dto.CreateSkuRequest) (*dto.SkuDTO, error) {
	kode := strings.TrimSpace(in.Kode)
	nama := strings.TrimSpace(in.Nama)
	if kode == "" || nama == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.skuRepo.GetByKode(ctx, kode)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("kode %s: %w", kode, domain.ErrDuplicate)
	}
	sku := &entity.RawMaterialSku{
		ID:        uuid.New().String(),
		Kode:      kode,
		Nama:      nama,
		Satuan:    satuanOrDefault(in.Satuan),
		CreatedAt: time.Now(),
	}
	if err := uc.skuRepo.Create(ctx, sku); err != nil {
		return nil, err
	}
	return toSkuDTO(sku), nil
}

// Update cambia código, nombre o unidad solo si ninguna entrada del ledger lo referencia.
// La verificación y la escritura ocurren con el SKU bloqueado, el mismo lock que toman
// las compras y las transiciones antes de agregar entradas.
func (uc *SkuUseCase) Update(ctx context.Context, id string, in dto.UpdateSkuRequest) (*dto.SkuDTO, error) {
	var sku *entity.RawMaterialSku
	err := uc.txRunner.Run(ctx, func(
		ledgerRepo repository.LedgerRepository,
		skuRepo repository.SkuRepository,
		_ repository.DocumentRepository,
	) error {
		if err := skuRepo.LockForUpdate(ctx, []string{id}); err != nil {
			return err
		}
		current, err := skuRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("sku %s: %w", id, domain.ErrNotFound)
		}
		referenced, err := ledgerRepo.ReferencesSku(ctx, id)
		if err != nil {
			return err
		}
		if referenced {
			return fmt.Errorf("sku %s referenciado por el ledger: %w", id, domain.ErrConflict)
		}
		kode := strings.TrimSpace(in.Kode)
		if kode != current.Kode {
			other, err := skuRepo.GetByKode(ctx, kode)
			if err != nil {
				return err
			}
			if other != nil {
				return fmt.Errorf("kode %s: %w", kode, domain.ErrDuplicate)
			}
		}
		current.Kode = kode
		current.Nama = strings.TrimSpace(in.Nama)
		current.Satuan = satuanOrDefault(in.Satuan)
		if err := skuRepo.Update(ctx, current); err != nil {
			return err
		}
		sku = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toSkuDTO(sku), nil
}

// List todos los SKUs ordenados por código.
func (uc *SkuUseCase) List(ctx context.Context) ([]dto.SkuDTO, error) {
	skus, err := uc.skuRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SkuDTO, 0, len(skus))
	for _, s := range skus {
		out = append(out, *toSkuDTO(s))
	}
	return out, nil
}

// Page una página del catálogo ordenado por código.
func (uc *SkuUseCase) Page(ctx context.Context, page dto.PageRequest) (*dto.SkuPageDTO, error) {
	page.DefaultPage()
	all, err := uc.List(ctx)
	if err != nil {
		return nil, err
	}
	start := min(page.Offset, len(all))
	end := min(start+page.Limit, len(all))
	return &dto.SkuPageDTO{
		Items: all[start:end],
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(all)},
	}, nil
}

func satuanOrDefault(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "kg"
	}
	return s
}

func toSkuDTO(s *entity.RawMaterialSku) *dto.SkuDTO {
	return &dto.SkuDTO{ID: s.ID, Kode: s.Kode, Nama: s.Nama, Satuan: s.Satuan, CreatedAt: s.CreatedAt}
}
