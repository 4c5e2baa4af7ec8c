package ledger

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// DocumentUseCase adapta los requests HTTP de pedidos y producción al motor de transiciones.
// Todas las pantallas (listado, edición) pasan por aquí en lugar de reimplementar la confirmación.
type DocumentUseCase struct {
	engine     *TransitionEngine
	docRepo    repository.DocumentRepository
	ledgerRepo repository.LedgerRepository
}

// NewDocumentUseCase construye el caso de uso.
func NewDocumentUseCase(engine *TransitionEngine, docRepo repository.DocumentRepository, ledgerRepo repository.LedgerRepository) *DocumentUseCase {
	return &DocumentUseCase{engine: engine, docRepo: docRepo, ledgerRepo: ledgerRepo}
}

// Create crea el documento; si el estado inicial consume, es la primera confirmación.
func (uc *DocumentUseCase) Create(ctx context.Context, userID string, in dto.CreateDocumentRequest) (*dto.TransitionResultDTO, error) {
	res, err := uc.engine.Apply(ctx, TransitionInput{
		DocumentType: in.DocumentType,
		DocumentID:   in.DocumentID,
		Status:       in.Status,
		Lines:        toLineItems(in.Lines),
		UserID:       userID,
		Create:       true,
	})
	if err != nil {
		return nil, err
	}
	return uc.toResultDTO(res), nil
}

// Update reemplaza líneas y/o estado de un documento existente.
func (uc *DocumentUseCase) Update(ctx context.Context, userID, docType, docID string, in dto.UpdateDocumentRequest) (*dto.TransitionResultDTO, error) {
	input := TransitionInput{
		DocumentType: docType,
		DocumentID:   docID,
		Status:       in.Status,
		UserID:       userID,
	}
	if in.Lines != nil {
		input.Lines = toLineItems(*in.Lines)
	}
	res, err := uc.engine.Apply(ctx, input)
	if err != nil {
		return nil, err
	}
	return uc.toResultDTO(res), nil
}

// ChangeStatus cambia solo el estado, conservando las líneas actuales.
func (uc *DocumentUseCase) ChangeStatus(ctx context.Context, userID, docType, docID, status string) (*dto.TransitionResultDTO, error) {
	if status == "" {
		return nil, fmt.Errorf("status requerido: %w", domain.ErrInvalidInput)
	}
	return uc.Update(ctx, userID, docType, docID, dto.UpdateDocumentRequest{Status: status})
}

// Get devuelve el documento con sus salidas vigentes.
func (uc *DocumentUseCase) Get(ctx context.Context, docType, docID string) (*dto.DocumentDTO, error) {
	if _, err := uc.engine.Machines().For(docType); err != nil {
		return nil, err
	}
	doc, err := uc.docRepo.Get(ctx, docType, docID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("documento %s: %w", entity.DocumentKey(docType, docID), domain.ErrNotFound)
	}
	outbound, err := uc.ledgerRepo.OutboundFor(ctx, docID, docType)
	if err != nil {
		return nil, err
	}
	d := uc.toDocumentDTO(doc, outbound)
	return &d, nil
}

// Statuses catálogo {estado, clase, terminal} del tipo de documento.
func (uc *DocumentUseCase) Statuses(docType string) ([]inventory.Status, error) {
	m, err := uc.engine.Machines().For(docType)
	if err != nil {
		return nil, err
	}
	return m.Statuses(), nil
}

func (uc *DocumentUseCase) toResultDTO(res *TransitionResult) *dto.TransitionResultDTO {
	out := &dto.TransitionResultDTO{
		Document:  uc.toDocumentDTO(res.Document, res.Outbound),
		OldStatus: res.OldStatus,
		NewStatus: res.NewStatus,
		Effect:    string(res.Effect),
		Changes:   make([]dto.StockChangeDTO, 0, len(res.Changes)),
	}
	for _, c := range res.Changes {
		out.Changes = append(out.Changes, dto.StockChangeDTO{
			SkuID:  c.SkuID,
			Before: c.Before,
			After:  c.After,
			Delta:  c.After.Sub(c.Before),
		})
	}
	return out
}

func (uc *DocumentUseCase) toDocumentDTO(doc *entity.Document, outbound []*entity.LedgerEntry) dto.DocumentDTO {
	d := dto.DocumentDTO{
		DocumentID:   doc.ID,
		DocumentType: doc.Type,
		Status:       doc.Status,
		Version:      doc.Version,
		Lines:        make([]dto.DocumentLineRequest, 0, len(doc.Lines)),
		Outbound:     toHistory(outbound),
		UpdatedAt:    doc.UpdatedAt,
	}
	if m, err := uc.engine.Machines().For(doc.Type); err == nil {
		d.Consuming = m.IsConsuming(doc.Status)
	}
	for _, l := range doc.Lines {
		d.Lines = append(d.Lines, dto.DocumentLineRequest{SkuID: l.SkuID, Quantity: l.Quantity})
	}
	return d
}

func toLineItems(in []dto.DocumentLineRequest) []entity.LineItem {
	out := make([]entity.LineItem, 0, len(in))
	for _, l := range in {
		out = append(out, entity.LineItem{SkuID: l.SkuID, Quantity: l.Quantity})
	}
	return out
}

func toHistory(entries []*entity.LedgerEntry) []dto.LedgerHistoryDTO {
	out := make([]dto.LedgerHistoryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.LedgerHistoryDTO{
			ID:                 e.ID,
			Direction:          e.Direction,
			Quantity:           e.Quantity,
			UnitPrice:          e.UnitPrice,
			SourceDocumentID:   e.SourceDocumentID,
			SourceDocumentType: e.SourceDocumentType,
			RecordedAt:         e.RecordedAt,
			RecordedBy:         e.RecordedBy,
		})
	}
	return out
}
