package ledger_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

func zerologNop() zerolog.Logger { return zerolog.Nop() }

func TestProcurement_Receive(t *testing.T) {
	f := newFixture(t, true)
	f.sku(t, "tepung", 0, 0)
	f.sku(t, "gula", 0, 0)

	out, err := f.svc.Procurement.Receive(ctx, "gudang", dto.ReceiveProcurementRequest{
		DocumentID: "PO-1",
		Lines: []dto.ProcurementLineRequest{
			{SkuID: "tepung", Quantity: d(50), UnitPrice: d(12000)},
			{SkuID: "gula", Quantity: decimal.RequireFromString("12.5"), UnitPrice: d(15000)},
		},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "gudang", out[0].RecordedBy)
	assert.True(t, f.available(t, "gula").Equal(decimal.RequireFromString("12.5")))

	_, err = f.svc.Procurement.Receive(ctx, "gudang", dto.ReceiveProcurementRequest{
		DocumentID: "PO-1",
		Lines:      []dto.ProcurementLineRequest{{SkuID: "tepung", Quantity: d(1)}},
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.True(t, f.available(t, "tepung").Equal(d(50)))
}

func TestProcurement_Rechazos(t *testing.T) {
	f := newFixture(t, true)
	f.sku(t, "tepung", 0, 0)

	_, err := f.svc.Procurement.Receive(ctx, "", dto.ReceiveProcurementRequest{
		DocumentID: "PO-1", Lines: []dto.ProcurementLineRequest{{SkuID: "tepung", Quantity: d(0)}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.svc.Procurement.Receive(ctx, "", dto.ReceiveProcurementRequest{
		DocumentID: "PO-1", Lines: []dto.ProcurementLineRequest{{SkuID: "tepung", Quantity: d(1), UnitPrice: d(-1)}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// una línea inválida aborta toda la compra
	_, err = f.svc.Procurement.Receive(ctx, "", dto.ReceiveProcurementRequest{
		DocumentID: "PO-2", Lines: []dto.ProcurementLineRequest{
			{SkuID: "tepung", Quantity: d(5)},
			{SkuID: "nope", Quantity: d(5)},
		},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.True(t, f.available(t, "tepung").IsZero())
}
