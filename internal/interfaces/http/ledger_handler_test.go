package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/stock-ledger/internal/interfaces/http"
)

// buildLedgerApp API completa sobre el almacén en memoria, sin autenticación.
func buildLedgerApp(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	svc := ledger.NewServices(ledger.Deps{
		TxRunner:   store,
		LedgerRepo: store.LedgerRepository(),
		SkuRepo:    store.SkuRepository(),
		DocRepo:    store.DocumentRepository(),
		Policy:     inventory.Policy{SelesaiTerminal: true},
		Log:        zerolog.Nop(),
	})
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Validation:  svc.Validation,
		Projections: svc.Projections,
		Procurement: svc.Procurement,
		Documents:   svc.Documents,
		Skus:        svc.Skus,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

// seedSku crea un SKU y registra una compra de qty al precio indicado.
func seedSku(t *testing.T, app *fiber.App, kode string, qty, price int64) string {
	t.Helper()
	resp, raw := call(t, app, http.MethodPost, "/ledger/skus", dto.CreateSkuRequest{Kode: kode, Nama: "Bahan " + kode})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var sku dto.SkuDTO
	require.NoError(t, json.Unmarshal(raw, &sku))
	assert.Equal(t, "kg", sku.Satuan)

	resp, raw = call(t, app, http.MethodPost, "/ledger/procurements", dto.ReceiveProcurementRequest{
		DocumentID: "PO-" + kode,
		Lines: []dto.ProcurementLineRequest{
			{SkuID: sku.ID, Quantity: decimal.NewFromInt(qty), UnitPrice: decimal.NewFromInt(price)},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	return sku.ID
}

func availableOf(t *testing.T, app *fiber.App, skuID string) decimal.Decimal {
	t.Helper()
	resp, raw := call(t, app, http.MethodGet, "/ledger/availability?sku_id="+skuID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var list []dto.BeratTersediaDTO
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list, 1)
	return list[0].Tersedia
}

func TestLedgerAPI_OrderLifecycle(t *testing.T) {
	app := buildLedgerApp(t)
	tepung := seedSku(t, app, "TPG", 100, 12000)

	// Validación sin escrituras.
	resp, raw := call(t, app, http.MethodPost, "/ledger/validate", dto.ValidateRequest{
		Lines: []dto.LineRequest{{SkuID: tepung, RequestedQuantity: decimal.NewFromInt(120)}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var v dto.ValidasiKetersediaanDTO
	require.NoError(t, json.Unmarshal(raw, &v))
	assert.False(t, v.Valid)
	require.Len(t, v.Detail, 1)
	assert.True(t, v.Detail[0].AvailableAtCheckTime.Equal(decimal.NewFromInt(100)))

	// Crear directamente en Dikirim consume.
	resp, raw = call(t, app, http.MethodPost, "/ledger/documents", dto.CreateDocumentRequest{
		DocumentID:   "ORD-1",
		DocumentType: "order",
		Status:       inventory.OrderDikirim,
		Lines:        []dto.DocumentLineRequest{{SkuID: tepung, Quantity: decimal.NewFromInt(30)}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var res dto.TransitionResultDTO
	require.NoError(t, json.Unmarshal(raw, &res))
	assert.Equal(t, string(ledger.EffectCommit), res.Effect)
	assert.True(t, res.Document.Consuming)
	assert.Len(t, res.Document.Outbound, 1)
	assert.True(t, availableOf(t, app, tepung).Equal(decimal.NewFromInt(70)))

	// Un segundo pedido que excede: 409 con detalle.
	resp, raw = call(t, app, http.MethodPost, "/ledger/documents", dto.CreateDocumentRequest{
		DocumentID:   "ORD-2",
		DocumentType: "order",
		Status:       inventory.OrderDikirim,
		Lines:        []dto.DocumentLineRequest{{SkuID: tepung, Quantity: decimal.NewFromInt(80)}},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var stockErr apphttp.InsufficientStockResponse
	require.NoError(t, json.Unmarshal(raw, &stockErr))
	assert.Equal(t, "INSUFFICIENT_STOCK", stockErr.Code)
	require.Len(t, stockErr.Detail, 1)
	assert.False(t, stockErr.Detail[0].OK)
	assert.True(t, availableOf(t, app, tepung).Equal(decimal.NewFromInt(70)))

	// Cancelar revierte las salidas.
	resp, raw = call(t, app, http.MethodPatch, "/ledger/documents/order/ORD-1/status", dto.ChangeStatusRequest{Status: inventory.OrderDibatalkan})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	require.NoError(t, json.Unmarshal(raw, &res))
	assert.Equal(t, string(ledger.EffectReversal), res.Effect)
	assert.True(t, availableOf(t, app, tepung).Equal(decimal.NewFromInt(100)))

	// Dibatalkan es terminal.
	resp, raw = call(t, app, http.MethodPatch, "/ledger/documents/order/ORD-1/status", dto.ChangeStatusRequest{Status: inventory.OrderDikirim})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, string(raw))
	assert.Contains(t, string(raw), "TERMINAL_STATUS")

	resp, raw = call(t, app, http.MethodGet, "/ledger/documents/order/ORD-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var doc dto.DocumentDTO
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, inventory.OrderDibatalkan, doc.Status)
	assert.Empty(t, doc.Outbound)
}

func TestLedgerAPI_SummaryAndForecast(t *testing.T) {
	app := buildLedgerApp(t)
	gula := seedSku(t, app, "GLA", 8, 10000)
	seedSku(t, app, "MNY", 50, 20000)

	resp, raw := call(t, app, http.MethodGet, "/ledger/summary", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var sum dto.RingkasanKetersediaanDTO
	require.NoError(t, json.Unmarshal(raw, &sum))
	assert.Equal(t, 2, sum.TotalJenisBarang)
	assert.Equal(t, 1, sum.BarangHampirHabis)
	assert.Equal(t, 1, sum.BarangStokAman)
	assert.True(t, sum.TotalNilaiStok.Equal(decimal.NewFromInt(8*10000+50*20000)))

	resp, raw = call(t, app, http.MethodGet, "/ledger/forecast/"+gula, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var f dto.PrediksiKehabisanDTO
	require.NoError(t, json.Unmarshal(raw, &f))
	assert.Nil(t, f.DaysUntilDepletion)
	assert.Equal(t, inventory.StatusPeringatan, f.Status)
	assert.Equal(t, 30, f.WindowDays)

	resp, raw = call(t, app, http.MethodGet, "/ledger/alerts", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Contains(t, string(raw), `"total":1`)

	resp, raw = call(t, app, http.MethodGet, "/ledger/skus/"+gula+"/detail", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var detail dto.SkuDetailDTO
	require.NoError(t, json.Unmarshal(raw, &detail))
	assert.Len(t, detail.Masuk, 1)
	assert.Empty(t, detail.Keluar)
}

func TestLedgerAPI_Errors(t *testing.T) {
	app := buildLedgerApp(t)

	resp, _ := call(t, app, http.MethodGet, "/ledger/forecast/no-existe", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = call(t, app, http.MethodGet, "/ledger/statuses/invoice", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, raw := call(t, app, http.MethodGet, "/ledger/statuses/production", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), inventory.ProductionProses)

	resp, raw = call(t, app, http.MethodPost, "/ledger/validate", dto.ValidateRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(raw), "VALIDATION")

	resp, _ = call(t, app, http.MethodPost, "/ledger/documents", dto.CreateDocumentRequest{DocumentID: "X", DocumentType: "invoice"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = call(t, app, http.MethodPut, "/ledger/documents/order/NOPE", dto.UpdateDocumentRequest{Status: inventory.OrderDiproses})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/ledger/skus", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	r, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, r.StatusCode)
}

func TestLedgerAPI_SkuImmutableOnceReferenced(t *testing.T) {
	app := buildLedgerApp(t)
	id := seedSku(t, app, "TLR", 10, 2000)

	resp, raw := call(t, app, http.MethodPut, "/ledger/skus/"+id, dto.UpdateSkuRequest{Kode: "TLR2", Nama: "Telur"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode, string(raw))

	resp, _ = call(t, app, http.MethodPost, "/ledger/skus", dto.CreateSkuRequest{Kode: "TLR", Nama: "Dup"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestLedgerAPI_SkuListPaginated(t *testing.T) {
	app := buildLedgerApp(t)
	for _, k := range []string{"C", "A", "B"} {
		resp, raw := call(t, app, http.MethodPost, "/ledger/skus", dto.CreateSkuRequest{Kode: k, Nama: "Bahan " + k})
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	}

	resp, raw := call(t, app, http.MethodGet, "/ledger/skus?limit=2&offset=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var page dto.SkuPageDTO
	require.NoError(t, json.Unmarshal(raw, &page))
	require.Len(t, page.Items, 2)
	assert.Equal(t, "B", page.Items[0].Kode)
	assert.Equal(t, 3, page.Page.Total)

	resp, raw = call(t, app, http.MethodGet, "/ledger/skus", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	require.NoError(t, json.Unmarshal(raw, &page))
	assert.Len(t, page.Items, 3)
	assert.Equal(t, 20, page.Page.Limit)

	resp, _ = call(t, app, http.MethodGet, "/ledger/skus?limit=500", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
