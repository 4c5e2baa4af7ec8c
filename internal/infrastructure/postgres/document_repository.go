package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo estado de pedidos y producción sobre PostgreSQL. Las líneas se guardan en JSONB.
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

const documentSelect = `SELECT id, document_type, status, lines, version, updated_at, COALESCE(updated_by, '')
	FROM ledger_documents WHERE document_type = $1 AND id = $2`

// Get devuelve nil, nil si no existe.
func (r *DocumentRepo) Get(ctx context.Context, documentType, id string) (*entity.Document, error) {
	return r.get(ctx, documentSelect, documentType, id)
}

// GetForUpdate toma un advisory lock de transacción sobre la clave (cubre documentos aún no creados)
// y bloquea la fila si existe.
func (r *DocumentRepo) GetForUpdate(ctx context.Context, documentType, id string) (*entity.Document, error) {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, entity.DocumentKey(documentType, id)); err != nil {
		return nil, mapError("lock document", err)
	}
	return r.get(ctx, documentSelect+` FOR UPDATE`, documentType, id)
}

func (r *DocumentRepo) get(ctx context.Context, query, documentType, id string) (*entity.Document, error) {
	var d entity.Document
	var lines []byte
	err := r.q.QueryRow(ctx, query, documentType, id).Scan(
		&d.ID, &d.Type, &d.Status, &lines, &d.Version, &d.UpdatedAt, &d.UpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get document", err)
	}
	if err := json.Unmarshal(lines, &d.Lines); err != nil {
		return nil, fmt.Errorf("decode document lines: %w", err)
	}
	return &d, nil
}

// Save inserta o actualiza el documento e incrementa la versión.
func (r *DocumentRepo) Save(ctx context.Context, doc *entity.Document) error {
	lines, err := json.Marshal(doc.Lines)
	if err != nil {
		return fmt.Errorf("encode document lines: %w", err)
	}
	query := `
		INSERT INTO ledger_documents (id, document_type, status, lines, version, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, 1, $5, NULLIF($6, ''))
		ON CONFLICT (document_type, id)
		DO UPDATE SET status = EXCLUDED.status, lines = EXCLUDED.lines,
			version = ledger_documents.version + 1,
			updated_at = EXCLUDED.updated_at, updated_by = EXCLUDED.updated_by
		RETURNING version`
	err = r.q.QueryRow(ctx, query, doc.ID, doc.Type, doc.Status, lines, doc.UpdatedAt, doc.UpdatedBy).Scan(&doc.Version)
	return mapError("save document", err)
}
