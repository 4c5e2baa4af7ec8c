package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ReservationValidator decide si todas las líneas pueden satisfacerse contra la disponibilidad actual.
// credit suma al disponible lo que el propio documento ya consumió de cada SKU (crédito propio).
type ReservationValidator struct{}

// Check compara cada línea normalizada contra available + credit[sku]. Nunca escribe.
func (v *ReservationValidator) Check(
	ctx context.Context,
	ledgerRepo repository.LedgerRepository,
	lines []entity.LineItem,
	credit map[string]decimal.Decimal,
) ([]domain.LineCheck, bool, error) {
	checks := make([]domain.LineCheck, 0, len(lines))
	valid := true
	for _, l := range lines {
		a, err := availabilityOf(ctx, ledgerRepo, l.SkuID)
		if err != nil {
			return nil, false, err
		}
		avail := a.Available.Add(credit[l.SkuID])
		ok := l.Quantity.LessThanOrEqual(avail)
		if !ok {
			valid = false
		}
		checks = append(checks, domain.LineCheck{
			SkuID:             l.SkuID,
			RequestedQuantity: l.Quantity,
			AvailableAtCheck:  avail,
			SelfCredit:        credit[l.SkuID],
			OK:                ok,
		})
	}
	return checks, valid, nil
}

// ValidationUseCase expone el validador fuera de una transición (POST /ledger/validate).
// El resultado es orientativo: la decisión definitiva se toma al confirmar la transición.
type ValidationUseCase struct {
	skuRepo    repository.SkuRepository
	ledgerRepo repository.LedgerRepository
	validator  *ReservationValidator
}

// NewValidationUseCase construye el caso de uso.
func NewValidationUseCase(skuRepo repository.SkuRepository, ledgerRepo repository.LedgerRepository) *ValidationUseCase {
	return &ValidationUseCase{skuRepo: skuRepo, ledgerRepo: ledgerRepo, validator: &ReservationValidator{}}
}

// Validate normaliza las líneas, aplica crédito propio si viene document_id y devuelve el detalle.
func (uc *ValidationUseCase) Validate(ctx context.Context, in dto.ValidateRequest) (*dto.ValidasiKetersediaanDTO, error) {
	if in.DocumentID != "" && in.DocumentType == "" {
		return nil, fmt.Errorf("document_type requerido con document_id: %w", domain.ErrInvalidInput)
	}
	raw := make([]entity.LineItem, 0, len(in.Lines))
	for _, l := range in.Lines {
		raw = append(raw, entity.LineItem{SkuID: l.SkuID, Quantity: l.RequestedQuantity})
	}
	lines, err := inventory.NormalizeLines(raw)
	if err != nil {
		return nil, err
	}
	for _, l := range lines {
		sku, err := uc.skuRepo.GetByID(ctx, l.SkuID)
		if err != nil {
			return nil, err
		}
		if sku == nil {
			return nil, fmt.Errorf("sku %s: %w", l.SkuID, domain.ErrNotFound)
		}
	}

	credit := map[string]decimal.Decimal{}
	if in.DocumentID != "" {
		prior, err := uc.ledgerRepo.OutboundFor(ctx, in.DocumentID, in.DocumentType)
		if err != nil {
			return nil, err
		}
		for _, e := range prior {
			credit[e.SkuID] = credit[e.SkuID].Add(e.Quantity)
		}
	}

	checks, valid, err := uc.validator.Check(ctx, uc.ledgerRepo, lines, credit)
	if err != nil {
		return nil, err
	}
	return &dto.ValidasiKetersediaanDTO{Valid: valid, Detail: ValidationDetail(checks)}, nil
}

// ValidationDetail convierte el detalle de dominio al formato de respuesta.
func ValidationDetail(checks []domain.LineCheck) []dto.ValidationLineDTO {
	out := make([]dto.ValidationLineDTO, 0, len(checks))
	for _, c := range checks {
		out = append(out, dto.ValidationLineDTO{
			SkuID:                c.SkuID,
			RequestedQuantity:    c.RequestedQuantity,
			AvailableAtCheckTime: c.AvailableAtCheck,
			SelfCredit:           c.SelfCredit,
			OK:                   c.OK,
		})
	}
	return out
}
