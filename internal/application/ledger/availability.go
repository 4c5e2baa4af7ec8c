package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// AvailabilityUseCase calculadora de disponibilidad y predicción de agotamiento.
// Es agregación pura sobre el ledger; no guarda estado propio.
type AvailabilityUseCase struct {
	skuRepo    repository.SkuRepository
	ledgerRepo repository.LedgerRepository
	windowDays int
	now        func() time.Time
}

// NewAvailabilityUseCase construye la calculadora. windowDays ≤ 0 usa 30 días.
func NewAvailabilityUseCase(skuRepo repository.SkuRepository, ledgerRepo repository.LedgerRepository, windowDays int) *AvailabilityUseCase {
	if windowDays <= 0 {
		windowDays = inventory.DefaultForecastWindowDays
	}
	return &AvailabilityUseCase{
		skuRepo:    skuRepo,
		ledgerRepo: ledgerRepo,
		windowDays: windowDays,
		now:        time.Now,
	}
}

// WindowDays longitud de la ventana de consumo.
func (uc *AvailabilityUseCase) WindowDays() int { return uc.windowDays }

// Availability received, consumed y available de un SKU existente.
func (uc *AvailabilityUseCase) Availability(ctx context.Context, skuID string) (*entity.RawMaterialSku, inventory.Availability, error) {
	sku, err := uc.requireSku(ctx, skuID)
	if err != nil {
		return nil, inventory.Availability{}, err
	}
	a, err := availabilityOf(ctx, uc.ledgerRepo, skuID)
	return sku, a, err
}

// ForecastDepletion consumo promedio de la ventana y días hasta agotar.
func (uc *AvailabilityUseCase) ForecastDepletion(ctx context.Context, skuID string) (inventory.Forecast, error) {
	if _, err := uc.requireSku(ctx, skuID); err != nil {
		return inventory.Forecast{}, err
	}
	return inventory.ForecastDepletion(skuID, uc.ledgerRepo.EntriesFor(ctx, skuID), uc.windowDays, uc.now())
}

func (uc *AvailabilityUseCase) requireSku(ctx context.Context, skuID string) (*entity.RawMaterialSku, error) {
	sku, err := uc.skuRepo.GetByID(ctx, skuID)
	if err != nil {
		return nil, err
	}
	if sku == nil {
		return nil, fmt.Errorf("sku %s: %w", skuID, domain.ErrNotFound)
	}
	return sku, nil
}

func availabilityOf(ctx context.Context, ledgerRepo repository.LedgerRepository, skuID string) (inventory.Availability, error) {
	a, err := inventory.Aggregate(skuID, ledgerRepo.EntriesFor(ctx, skuID))
	if err != nil {
		return inventory.Availability{}, fmt.Errorf("disponibilidad de %s: %w", skuID, err)
	}
	return a, nil
}
