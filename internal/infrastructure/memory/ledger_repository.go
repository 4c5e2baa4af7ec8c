package memory

import (
	"context"
	"iter"
	"sort"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo implementación en memoria. Con tx nil cada escritura se confirma inmediatamente.
type LedgerRepo struct {
	s  *Store
	tx *txState
}

// Append persiste una entrada nueva.
func (r *LedgerRepo) Append(ctx context.Context, e *entity.LedgerEntry) error {
	if err := inventory.CheckEntry(e); err != nil {
		return err
	}
	rec := record{entry: copyEntry(e), seq: r.s.nextSeq()}
	if r.tx == nil {
		r.s.mu.Lock()
		r.s.entries[rec.entry.ID] = rec
		r.s.mu.Unlock()
		return nil
	}
	r.tx.appended = append(r.tx.appended, rec)
	return nil
}

// EntriesFor secuencia de entradas del SKU por RecordedAt ascendente; se recalcula en cada recorrido.
func (r *LedgerRepo) EntriesFor(ctx context.Context, skuID string) iter.Seq2[*entity.LedgerEntry, error] {
	return func(yield func(*entity.LedgerEntry, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(nil, err)
			return
		}
		for _, e := range r.visible(func(e *entity.LedgerEntry) bool { return e.SkuID == skuID }) {
			if !yield(e, nil) {
				return
			}
		}
	}
}

// OutboundFor salidas vigentes del documento.
func (r *LedgerRepo) OutboundFor(ctx context.Context, documentID, documentType string) ([]*entity.LedgerEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.visible(func(e *entity.LedgerEntry) bool {
		return e.IsOutbound() && e.SourceDocumentID == documentID && e.SourceDocumentType == documentType
	}), nil
}

// Supersede elimina la entrada anterior e inserta la nueva.
func (r *LedgerRepo) Supersede(ctx context.Context, oldEntryID string, e *entity.LedgerEntry) error {
	if err := inventory.CheckEntry(e); err != nil {
		return err
	}
	if r.tx == nil {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
		if _, ok := r.s.entries[oldEntryID]; !ok {
			return missing(e, oldEntryID)
		}
		delete(r.s.entries, oldEntryID)
		r.s.entries[e.ID] = record{entry: copyEntry(e), seq: r.s.nextSeq()}
		return nil
	}
	if err := r.Remove(ctx, oldEntryID); err != nil {
		return missing(e, oldEntryID)
	}
	return r.Append(ctx, e)
}

// Remove elimina una entrada existente.
func (r *LedgerRepo) Remove(ctx context.Context, entryID string) error {
	if r.tx == nil {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
		if _, ok := r.s.entries[entryID]; !ok {
			return missing(nil, entryID)
		}
		delete(r.s.entries, entryID)
		return nil
	}
	for i, rec := range r.tx.appended {
		if rec.entry.ID == entryID {
			r.tx.appended = append(r.tx.appended[:i], r.tx.appended[i+1:]...)
			return nil
		}
	}
	r.s.mu.RLock()
	_, ok := r.s.entries[entryID]
	r.s.mu.RUnlock()
	if !ok || r.tx.removed[entryID] {
		return missing(nil, entryID)
	}
	r.tx.removed[entryID] = true
	return nil
}

// ExistsForDocument indica si hay entradas del documento.
func (r *LedgerRepo) ExistsForDocument(ctx context.Context, documentID, documentType string) (bool, error) {
	list := r.visible(func(e *entity.LedgerEntry) bool {
		return e.SourceDocumentID == documentID && e.SourceDocumentType == documentType
	})
	return len(list) > 0, ctx.Err()
}

// ReferencesSku indica si alguna entrada referencia el SKU.
func (r *LedgerRepo) ReferencesSku(ctx context.Context, skuID string) (bool, error) {
	list := r.visible(func(e *entity.LedgerEntry) bool { return e.SkuID == skuID })
	return len(list) > 0, ctx.Err()
}

// visible entradas confirmadas más las pendientes de la tx, menos las eliminadas, ordenadas.
func (r *LedgerRepo) visible(match func(*entity.LedgerEntry) bool) []*entity.LedgerEntry {
	var recs []record
	r.s.mu.RLock()
	for id, rec := range r.s.entries {
		if r.tx != nil && r.tx.removed[id] {
			continue
		}
		if match(rec.entry) {
			recs = append(recs, rec)
		}
	}
	r.s.mu.RUnlock()
	if r.tx != nil {
		for _, rec := range r.tx.appended {
			if match(rec.entry) {
				recs = append(recs, rec)
			}
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i].entry, recs[j].entry
		if !a.RecordedAt.Equal(b.RecordedAt) {
			return a.RecordedAt.Before(b.RecordedAt)
		}
		return recs[i].seq < recs[j].seq
	})
	out := make([]*entity.LedgerEntry, 0, len(recs))
	for _, rec := range recs {
		out = append(out, copyEntry(rec.entry))
	}
	return out
}

func missing(e *entity.LedgerEntry, entryID string) error {
	ie := &domain.InvariantError{Reason: "entrada " + entryID + " inexistente"}
	if e != nil {
		ie.DocumentType, ie.DocumentID, ie.SkuID = e.SourceDocumentType, e.SourceDocumentID, e.SkuID
	}
	return ie
}
