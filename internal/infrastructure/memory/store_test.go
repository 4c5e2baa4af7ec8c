package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

var ctx = context.Background()

func outEntry(id, sku, doc string, qty int64) *entity.LedgerEntry {
	return &entity.LedgerEntry{
		ID:                 id,
		SkuID:              sku,
		Direction:          entity.DirectionOutbound,
		Quantity:           decimal.NewFromInt(qty),
		SourceDocumentID:   doc,
		SourceDocumentType: entity.SourceOrder,
		RecordedAt:         time.Now(),
	}
}

func collect(t *testing.T, repo repository.LedgerRepository, sku string) []*entity.LedgerEntry {
	t.Helper()
	var out []*entity.LedgerEntry
	for e, err := range repo.EntriesFor(ctx, sku) {
		require.NoError(t, err)
		out = append(out, e)
	}
	return out
}

func TestStore_RunConfirmaAlTerminar(t *testing.T) {
	s := memory.NewStore()
	err := s.Run(ctx, func(l repository.LedgerRepository, _ repository.SkuRepository, d repository.DocumentRepository) error {
		require.NoError(t, l.Append(ctx, outEntry("e1", "tepung", "ORD-1", 5)))
		// dentro de la tx la escritura ya es visible
		assert.Len(t, collect(t, l, "tepung"), 1)
		// fuera todavía no
		assert.Empty(t, collect(t, s.LedgerRepository(), "tepung"))
		return d.Save(ctx, &entity.Document{ID: "ORD-1", Type: entity.DocumentTypeOrder, Status: "Dikirim"})
	})
	require.NoError(t, err)
	assert.Len(t, collect(t, s.LedgerRepository(), "tepung"), 1)

	doc, err := s.DocumentRepository().Get(ctx, entity.DocumentTypeOrder, "ORD-1")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.EqualValues(t, 1, doc.Version)
}

func TestStore_RunDescartaConError(t *testing.T) {
	s := memory.NewStore()
	boom := errors.New("boom")
	err := s.Run(ctx, func(l repository.LedgerRepository, _ repository.SkuRepository, d repository.DocumentRepository) error {
		require.NoError(t, l.Append(ctx, outEntry("e1", "tepung", "ORD-1", 5)))
		require.NoError(t, d.Save(ctx, &entity.Document{ID: "ORD-1", Type: entity.DocumentTypeOrder}))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, collect(t, s.LedgerRepository(), "tepung"))
	doc, err := s.DocumentRepository().Get(ctx, entity.DocumentTypeOrder, "ORD-1")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestLedgerRepo_Supersede(t *testing.T) {
	s := memory.NewStore()
	repo := s.LedgerRepository()
	require.NoError(t, repo.Append(ctx, outEntry("e1", "tepung", "ORD-1", 5)))

	require.NoError(t, repo.Supersede(ctx, "e1", outEntry("e2", "tepung", "ORD-1", 8)))
	list, err := repo.OutboundFor(ctx, "ORD-1", entity.SourceOrder)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "e2", list[0].ID)

	err = repo.Supersede(ctx, "e1", outEntry("e3", "tepung", "ORD-1", 9))
	var ie *domain.InvariantError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "ORD-1", ie.DocumentID)
	assert.ErrorIs(t, err, domain.ErrLedgerInvariantViolation)

	err = s.Run(ctx, func(l repository.LedgerRepository, _ repository.SkuRepository, _ repository.DocumentRepository) error {
		return l.Supersede(ctx, "nope", outEntry("e4", "tepung", "ORD-1", 1))
	})
	assert.ErrorIs(t, err, domain.ErrLedgerInvariantViolation)
}

func TestLedgerRepo_RechazaEntradasInvalidas(t *testing.T) {
	repo := memory.NewStore().LedgerRepository()
	assert.ErrorIs(t, repo.Append(ctx, outEntry("e1", "tepung", "ORD-1", 0)), domain.ErrInvalidQuantity)

	in := outEntry("e2", "tepung", "ORD-1", 1)
	in.Direction = entity.DirectionInbound
	assert.ErrorIs(t, repo.Append(ctx, in), domain.ErrInvalidInput)
}

func TestLedgerRepo_OrdenPorFecha(t *testing.T) {
	repo := memory.NewStore().LedgerRepository()
	later := outEntry("b", "tepung", "ORD-2", 1)
	earlier := outEntry("a", "tepung", "ORD-1", 1)
	earlier.RecordedAt = later.RecordedAt.Add(-time.Hour)
	require.NoError(t, repo.Append(ctx, later))
	require.NoError(t, repo.Append(ctx, earlier))

	list := collect(t, repo, "tepung")
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)

	ok, err := repo.ReferencesSku(ctx, "tepung")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.ExistsForDocument(ctx, "ORD-3", entity.SourceOrder)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDocumentRepo_GetForUpdateSerializa(t *testing.T) {
	s := memory.NewStore()
	holding := make(chan struct{})
	release := make(chan struct{})
	firstDone := make(chan error, 1)

	go func() {
		firstDone <- s.Run(ctx, func(_ repository.LedgerRepository, _ repository.SkuRepository, d repository.DocumentRepository) error {
			if _, err := d.GetForUpdate(ctx, entity.DocumentTypeOrder, "ORD-1"); err != nil {
				return err
			}
			close(holding)
			<-release
			return d.Save(ctx, &entity.Document{ID: "ORD-1", Type: entity.DocumentTypeOrder, Status: "Menunggu"})
		})
	}()
	<-holding

	secondSaw := make(chan *entity.Document, 1)
	go func() {
		_ = s.Run(ctx, func(_ repository.LedgerRepository, _ repository.SkuRepository, d repository.DocumentRepository) error {
			doc, err := d.GetForUpdate(ctx, entity.DocumentTypeOrder, "ORD-1")
			secondSaw <- doc
			return err
		})
	}()

	select {
	case <-secondSaw:
		t.Fatal("la segunda transacción no debe leer mientras la primera tiene el lock")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	require.NoError(t, <-firstDone)

	doc := <-secondSaw
	require.NotNil(t, doc, "la segunda ve lo confirmado por la primera")
	assert.Equal(t, "Menunggu", doc.Status)
}

func TestSkuRepo(t *testing.T) {
	repo := memory.NewStore().SkuRepository()
	require.NoError(t, repo.Create(ctx, &entity.RawMaterialSku{ID: "2", Kode: "B"}))
	require.NoError(t, repo.Create(ctx, &entity.RawMaterialSku{ID: "1", Kode: "A"}))
	assert.ErrorIs(t, repo.Create(ctx, &entity.RawMaterialSku{ID: "3", Kode: "A"}), domain.ErrDuplicate)
	assert.ErrorIs(t, repo.Update(ctx, &entity.RawMaterialSku{ID: "9", Kode: "Z"}), domain.ErrNotFound)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].Kode)

	missing, err := repo.GetByKode(ctx, "Z")
	require.NoError(t, err)
	assert.Nil(t, missing)
	assert.ErrorIs(t, repo.LockForUpdate(ctx, []string{"1", "9"}), domain.ErrNotFound)
}

func TestSkuRepo_UpdateRechazaSkuReferenciado(t *testing.T) {
	s := memory.NewStore()
	repo := s.SkuRepository()
	require.NoError(t, repo.Create(ctx, &entity.RawMaterialSku{ID: "1", Kode: "A"}))
	require.NoError(t, repo.Update(ctx, &entity.RawMaterialSku{ID: "1", Kode: "A2"}))

	require.NoError(t, s.LedgerRepository().Append(ctx, outEntry("e1", "1", "ORD-1", 1)))
	assert.ErrorIs(t, repo.Update(ctx, &entity.RawMaterialSku{ID: "1", Kode: "A3"}), domain.ErrConflict)

	sku, err := repo.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "A2", sku.Kode)
}
