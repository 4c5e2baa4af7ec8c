package postgres

import (
	"context"
	"fmt"
	"iter"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

const ledgerColumns = `id, sku_id, direction, quantity, unit_price, source_document_id, source_document_type, recorded_at, recorded_by`

// LedgerRepo implementación sobre PostgreSQL (usable con pool o tx).
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Append persiste una entrada del ledger.
func (r *LedgerRepo) Append(ctx context.Context, e *entity.LedgerEntry) error {
	if err := inventory.CheckEntry(e); err != nil {
		return err
	}
	return r.insert(ctx, r.q, e)
}

func (r *LedgerRepo) insert(ctx context.Context, q Querier, e *entity.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	var recordedBy *string
	if e.RecordedBy != "" {
		recordedBy = &e.RecordedBy
	}
	_, err := q.Exec(ctx, query,
		e.ID, e.SkuID, e.Direction, e.Quantity, e.UnitPrice,
		e.SourceDocumentID, e.SourceDocumentType, e.RecordedAt, recordedBy,
	)
	return mapError("append ledger entry", err)
}

// EntriesFor secuencia perezosa: cada recorrido ejecuta la consulta y escanea fila a fila.
func (r *LedgerRepo) EntriesFor(ctx context.Context, skuID string) iter.Seq2[*entity.LedgerEntry, error] {
	return func(yield func(*entity.LedgerEntry, error) bool) {
		query := `SELECT ` + ledgerColumns + `
			FROM ledger_entries WHERE sku_id = $1
			ORDER BY recorded_at ASC, seq ASC`
		rows, err := r.q.Query(ctx, query, skuID)
		if err != nil {
			yield(nil, mapError("entries for sku", err))
			return
		}
		defer rows.Close()
		for rows.Next() {
			e, err := scanEntry(rows)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(e, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, mapError("entries for sku", err))
		}
	}
}

// OutboundFor salidas vigentes de un documento.
func (r *LedgerRepo) OutboundFor(ctx context.Context, documentID, documentType string) ([]*entity.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE source_document_id = $1 AND source_document_type = $2 AND direction = 'outbound'
		ORDER BY sku_id`
	rows, err := r.q.Query(ctx, query, documentID, documentType)
	if err != nil {
		return nil, mapError("outbound for document", err)
	}
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, mapError("outbound for document", rows.Err())
}

// Supersede borra la entrada anterior e inserta la nueva en un savepoint (o tx propia sobre el pool).
func (r *LedgerRepo) Supersede(ctx context.Context, oldEntryID string, e *entity.LedgerEntry) error {
	if err := inventory.CheckEntry(e); err != nil {
		return err
	}
	tx, err := r.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin supersede: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := r.delete(ctx, tx, oldEntryID, e); err != nil {
		return err
	}
	if err := r.insert(ctx, tx, e); err != nil {
		return err
	}
	return mapError("commit supersede", tx.Commit(ctx))
}

// Remove elimina una salida existente.
func (r *LedgerRepo) Remove(ctx context.Context, entryID string) error {
	return r.delete(ctx, r.q, entryID, nil)
}

func (r *LedgerRepo) delete(ctx context.Context, q Querier, entryID string, next *entity.LedgerEntry) error {
	tag, err := q.Exec(ctx, `DELETE FROM ledger_entries WHERE id = $1 AND direction = 'outbound'`, entryID)
	if err != nil {
		return mapError("delete ledger entry", err)
	}
	if tag.RowsAffected() == 0 {
		ie := &domain.InvariantError{Reason: "entrada " + entryID + " inexistente"}
		if next != nil {
			ie.DocumentType, ie.DocumentID, ie.SkuID = next.SourceDocumentType, next.SourceDocumentID, next.SkuID
		}
		return ie
	}
	return nil
}

// ExistsForDocument indica si el documento tiene alguna entrada.
func (r *LedgerRepo) ExistsForDocument(ctx context.Context, documentID, documentType string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM ledger_entries WHERE source_document_id = $1 AND source_document_type = $2)`,
		documentID, documentType,
	).Scan(&exists)
	return exists, mapError("exists for document", err)
}

// ReferencesSku indica si alguna entrada referencia el SKU.
func (r *LedgerRepo) ReferencesSku(ctx context.Context, skuID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM ledger_entries WHERE sku_id = $1)`, skuID).Scan(&exists)
	return exists, mapError("references sku", err)
}

func scanEntry(rows pgx.Rows) (*entity.LedgerEntry, error) {
	var e entity.LedgerEntry
	var recordedBy *string
	if err := rows.Scan(&e.ID, &e.SkuID, &e.Direction, &e.Quantity, &e.UnitPrice,
		&e.SourceDocumentID, &e.SourceDocumentType, &e.RecordedAt, &recordedBy); err != nil {
		return nil, fmt.Errorf("scan ledger entry: %w", err)
	}
	if recordedBy != nil {
		e.RecordedBy = *recordedBy
	}
	return &e, nil
}
