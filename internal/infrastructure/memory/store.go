package memory

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ ledger.TxRunner = (*Store)(nil)

// Store almacén en memoria con las mismas garantías que el de PostgreSQL:
// locks por documento y por SKU mantenidos hasta el fin de la transacción y
// escrituras aplicadas de forma atómica al confirmar.
type Store struct {
	mu      sync.RWMutex
	skus    map[string]*entity.RawMaterialSku
	entries map[string]record
	docs    map[string]*entity.Document
	seq     atomic.Int64
	locks   *keyedMutex
}

type record struct {
	entry *entity.LedgerEntry
	seq   int64
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		skus:    make(map[string]*entity.RawMaterialSku),
		entries: make(map[string]record),
		docs:    make(map[string]*entity.Document),
		locks:   newKeyedMutex(),
	}
}

// LedgerRepository repositorio fuera de transacción (cada escritura se confirma sola).
func (s *Store) LedgerRepository() *LedgerRepo { return &LedgerRepo{s: s} }

// SkuRepository repositorio de SKUs fuera de transacción.
func (s *Store) SkuRepository() *SkuRepo { return &SkuRepo{s: s} }

// DocumentRepository repositorio de documentos fuera de transacción.
func (s *Store) DocumentRepository() *DocumentRepo { return &DocumentRepo{s: s} }

// Run ejecuta fn con repositorios atados a una transacción; Commit si fn devuelve nil.
func (s *Store) Run(ctx context.Context, fn func(
	ledgerRepo repository.LedgerRepository,
	skuRepo repository.SkuRepository,
	docRepo repository.DocumentRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := newTxState()
	defer s.release(tx)

	if err := fn(&LedgerRepo{s: s, tx: tx}, &SkuRepo{s: s, tx: tx}, &DocumentRepo{s: s, tx: tx}); err != nil {
		return err
	}
	s.commit(tx)
	return nil
}

// txState escrituras pendientes y locks tomados por una transacción.
type txState struct {
	appended []record
	removed  map[string]bool
	docs     map[string]*entity.Document
	held     map[string]bool
	order    []string
}

func newTxState() *txState {
	return &txState{
		removed: make(map[string]bool),
		docs:    make(map[string]*entity.Document),
		held:    make(map[string]bool),
	}
}

// lock adquiere las claves en orden, omitiendo las ya tomadas.
func (s *Store) lock(tx *txState, keys ...string) {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	for _, k := range sorted {
		if tx.held[k] {
			continue
		}
		s.locks.Lock(k)
		tx.held[k] = true
		tx.order = append(tx.order, k)
	}
}

func (s *Store) release(tx *txState) {
	for i := len(tx.order) - 1; i >= 0; i-- {
		s.locks.Unlock(tx.order[i])
	}
	tx.order = nil
	tx.held = map[string]bool{}
}

func (s *Store) commit(tx *txState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range tx.removed {
		delete(s.entries, id)
	}
	for _, r := range tx.appended {
		s.entries[r.entry.ID] = r
	}
	for k, d := range tx.docs {
		s.docs[k] = d
	}
}

func (s *Store) nextSeq() int64 { return s.seq.Add(1) }

func copyEntry(e *entity.LedgerEntry) *entity.LedgerEntry {
	cp := *e
	return &cp
}

func copyDocument(d *entity.Document) *entity.Document {
	cp := *d
	cp.Lines = append([]entity.LineItem(nil), d.Lines...)
	return &cp
}
