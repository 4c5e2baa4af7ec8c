package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ProcurementUseCase registra las recepciones de compra como entradas inbound.
type ProcurementUseCase struct {
	txRunner TxRunner
	cache    ProjectionCache
	log      zerolog.Logger
	now      func() time.Time
}

// NewProcurementUseCase construye el caso de uso. cache puede ser nil.
func NewProcurementUseCase(txRunner TxRunner, cache ProjectionCache, log zerolog.Logger) *ProcurementUseCase {
	if cache == nil {
		cache = NopCache{}
	}
	return &ProcurementUseCase{txRunner: txRunner, cache: cache, log: log, now: time.Now}
}

// Receive agrega todas las líneas de la compra en una sola transacción.
// Un documento ya registrado se rechaza con domain.ErrDuplicate.
func (uc *ProcurementUseCase) Receive(ctx context.Context, userID string, in dto.ReceiveProcurementRequest) ([]dto.LedgerHistoryDTO, error) {
	if in.DocumentID == "" || len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	skuSet := map[string]struct{}{}
	for _, l := range in.Lines {
		if !l.Quantity.GreaterThan(decimal.Zero) {
			return nil, fmt.Errorf("sku %s: %w", l.SkuID, domain.ErrInvalidQuantity)
		}
		if l.UnitPrice.LessThan(decimal.Zero) {
			return nil, fmt.Errorf("sku %s precio negativo: %w", l.SkuID, domain.ErrInvalidInput)
		}
		skuSet[l.SkuID] = struct{}{}
	}
	skus := make([]string, 0, len(skuSet))
	for s := range skuSet {
		skus = append(skus, s)
	}
	sort.Strings(skus)

	now := uc.now()
	var entries []*entity.LedgerEntry
	err := uc.txRunner.Run(ctx, func(
		ledgerRepo repository.LedgerRepository,
		skuRepo repository.SkuRepository,
		_ repository.DocumentRepository,
	) error {
		// Con los SKUs bloqueados, un reenvío concurrente de la misma compra ve la primera ya confirmada.
		if err := skuRepo.LockForUpdate(ctx, skus); err != nil {
			return err
		}
		exists, err := ledgerRepo.ExistsForDocument(ctx, in.DocumentID, entity.SourceProcurement)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("compra %s: %w", in.DocumentID, domain.ErrDuplicate)
		}
		entries = entries[:0]
		for _, l := range in.Lines {
			e := &entity.LedgerEntry{
				ID:                 uuid.New().String(),
				SkuID:              l.SkuID,
				Direction:          entity.DirectionInbound,
				Quantity:           l.Quantity,
				UnitPrice:          l.UnitPrice,
				SourceDocumentID:   in.DocumentID,
				SourceDocumentType: entity.SourceProcurement,
				RecordedAt:         now,
				RecordedBy:         userID,
			}
			if err := ledgerRepo.Append(ctx, e); err != nil {
				return err
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := uc.cache.Invalidate(ctx); err != nil {
		uc.log.Warn().Err(err).Msg("invalidar proyecciones")
	}
	uc.log.Info().
		Str("procurement", in.DocumentID).
		Int("lines", len(entries)).
		Msg("recepción de compra registrada")
	return toHistory(entries), nil
}
