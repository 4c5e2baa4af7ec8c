package ledger_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

// recordingCache cache en memoria que cuenta invalidaciones.
type recordingCache struct {
	mu          sync.Mutex
	values      map[string][]byte
	invalidated int
}

func newRecordingCache() *recordingCache {
	return &recordingCache{values: map[string][]byte{}}
}

func (c *recordingCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (c *recordingCache) Set(_ context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.values[key] = b
	c.mu.Unlock()
	return nil
}

func (c *recordingCache) Invalidate(context.Context) error {
	c.mu.Lock()
	c.values = map[string][]byte{}
	c.invalidated++
	c.mu.Unlock()
	return nil
}

func (c *recordingCache) invalidations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidated
}

type fixture struct {
	store *memory.Store
	svc   *ledger.Services
	cache *recordingCache
}

func newFixture(t *testing.T, selesaiTerminal bool) *fixture {
	t.Helper()
	return newFixtureWithLocker(t, selesaiTerminal, nil)
}

func newFixtureWithLocker(t *testing.T, selesaiTerminal bool, locker ledger.DocumentLocker) *fixture {
	t.Helper()
	store := memory.NewStore()
	cache := newRecordingCache()
	svc := ledger.NewServices(ledger.Deps{
		TxRunner:   store,
		LedgerRepo: store.LedgerRepository(),
		SkuRepo:    store.SkuRepository(),
		DocRepo:    store.DocumentRepository(),
		Locker:     locker,
		Cache:      cache,
		Policy:     inventory.Policy{SelesaiTerminal: selesaiTerminal},
		Log:        zerolog.Nop(),
	})
	return &fixture{store: store, svc: svc, cache: cache}
}

// flakyLocker falla con ErrConcurrentModification en los primeros failures intentos.
type flakyLocker struct {
	mu       sync.Mutex
	calls    int
	failures int
}

func (l *flakyLocker) Lock(context.Context, string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.calls <= l.failures {
		return nil, domain.ErrConcurrentModification
	}
	return func() {}, nil
}

func (l *flakyLocker) attempts() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

// sku registra un SKU con id fijo y, si qty > 0, una compra de qty a price.
func (f *fixture) sku(t *testing.T, id string, qty, price int64) {
	t.Helper()
	require.NoError(t, f.store.SkuRepository().Create(context.Background(), &entity.RawMaterialSku{
		ID: id, Kode: "K-" + id, Nama: id, Satuan: "kg", CreatedAt: time.Now(),
	}))
	if qty > 0 {
		f.receive(t, "PO-"+id, id, qty, price)
	}
}

func (f *fixture) receive(t *testing.T, docID, skuID string, qty, price int64) {
	t.Helper()
	_, err := f.svc.Procurement.Receive(context.Background(), "gudang", dto.ReceiveProcurementRequest{
		DocumentID: docID,
		Lines: []dto.ProcurementLineRequest{
			{SkuID: skuID, Quantity: decimal.NewFromInt(qty), UnitPrice: decimal.NewFromInt(price)},
		},
	})
	require.NoError(t, err)
}

func (f *fixture) available(t *testing.T, skuID string) decimal.Decimal {
	t.Helper()
	_, a, err := f.svc.Availability.Availability(context.Background(), skuID)
	require.NoError(t, err)
	require.True(t, a.Available.Equal(a.Received.Sub(a.Consumed)), "conservación")
	return a.Available
}

func (f *fixture) outbound(t *testing.T, docType, docID string) map[string]decimal.Decimal {
	t.Helper()
	list, err := f.store.LedgerRepository().OutboundFor(context.Background(), docID, docType)
	require.NoError(t, err)
	out := map[string]decimal.Decimal{}
	for _, e := range list {
		_, dup := out[e.SkuID]
		require.False(t, dup, "a lo sumo una salida por (documento, sku)")
		out[e.SkuID] = e.Quantity
	}
	return out
}

func lines(pairs ...any) []dto.DocumentLineRequest {
	out := make([]dto.DocumentLineRequest, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, dto.DocumentLineRequest{
			SkuID:    pairs[i].(string),
			Quantity: decimal.NewFromInt(int64(pairs[i+1].(int))),
		})
	}
	return out
}

func d(n int64) decimal.Decimal { return decimal.NewFromInt(n) }
