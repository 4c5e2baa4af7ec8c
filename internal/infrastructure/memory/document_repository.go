package memory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo estado de documentos en memoria.
type DocumentRepo struct {
	s  *Store
	tx *txState
}

// Get devuelve nil, nil si no existe.
func (r *DocumentRepo) Get(ctx context.Context, documentType, id string) (*entity.Document, error) {
	key := entity.DocumentKey(documentType, id)
	if r.tx != nil {
		if d, ok := r.tx.docs[key]; ok {
			return copyDocument(d), nil
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if d, ok := r.s.docs[key]; ok {
		return copyDocument(d), nil
	}
	return nil, nil
}

// GetForUpdate bloquea el documento (aunque todavía no exista) hasta el fin de la transacción.
func (r *DocumentRepo) GetForUpdate(ctx context.Context, documentType, id string) (*entity.Document, error) {
	if r.tx != nil {
		r.s.lock(r.tx, "doc:"+entity.DocumentKey(documentType, id))
	}
	return r.Get(ctx, documentType, id)
}

// Save inserta o actualiza incrementando Version.
func (r *DocumentRepo) Save(ctx context.Context, doc *entity.Document) error {
	current, err := r.Get(ctx, doc.Type, doc.ID)
	if err != nil {
		return err
	}
	doc.Version = 1
	if current != nil {
		doc.Version = current.Version + 1
	}
	cp := copyDocument(doc)
	if r.tx != nil {
		r.tx.docs[doc.Key()] = cp
		return nil
	}
	r.s.mu.Lock()
	r.s.docs[doc.Key()] = cp
	r.s.mu.Unlock()
	return nil
}
