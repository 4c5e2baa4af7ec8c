package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

func line(sku string, qty int64) entity.LineItem {
	return entity.LineItem{SkuID: sku, Quantity: decimal.NewFromInt(qty)}
}

func prior(sku string, qty int64) *entity.LedgerEntry {
	return &entity.LedgerEntry{
		ID: "e-" + sku, SkuID: sku, Direction: entity.DirectionOutbound, Quantity: decimal.NewFromInt(qty),
		SourceDocumentID: "ORD-1", SourceDocumentType: entity.SourceOrder,
	}
}

func TestNormalizeLines_AgrupaYOrdena(t *testing.T) {
	out, err := inventory.NormalizeLines([]entity.LineItem{line("gula", 2), line("tepung", 5), line("gula", 3)})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "gula", out[0].SkuID)
	assert.True(t, out[0].Quantity.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, "tepung", out[1].SkuID)
}

func TestNormalizeLines_Rechaza(t *testing.T) {
	_, err := inventory.NormalizeLines([]entity.LineItem{line("gula", 0)})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = inventory.NormalizeLines([]entity.LineItem{line("gula", -1)})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = inventory.NormalizeLines([]entity.LineItem{line("", 1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSameLines(t *testing.T) {
	a := []entity.LineItem{line("gula", 2)}
	assert.True(t, inventory.SameLines(a, []entity.LineItem{line("gula", 2)}))
	assert.False(t, inventory.SameLines(a, []entity.LineItem{line("gula", 3)}))
	assert.False(t, inventory.SameLines(a, nil))
}

func TestPlanChanges(t *testing.T) {
	changes, err := inventory.PlanChanges(
		[]*entity.LedgerEntry{prior("gula", 10), prior("mentega", 4), prior("tepung", 20)},
		[]entity.LineItem{line("gula", 10), line("telur", 6), line("tepung", 25)},
	)
	require.NoError(t, err)
	require.Len(t, changes, 3)

	// mentega eliminado
	assert.Equal(t, "mentega", changes[0].SkuID)
	assert.True(t, changes[0].Target.IsZero())
	assert.False(t, changes[0].Increase())

	// telur nuevo
	assert.Equal(t, "telur", changes[1].SkuID)
	assert.Nil(t, changes[1].Prior)
	assert.True(t, changes[1].Delta().Equal(decimal.NewFromInt(6)))

	// tepung +5
	assert.Equal(t, "tepung", changes[2].SkuID)
	assert.NotNil(t, changes[2].Prior)
	assert.True(t, changes[2].Delta().Equal(decimal.NewFromInt(5)))
	assert.True(t, changes[2].Increase())
}

func TestPlanChanges_AnclaDuplicadaEsInvariante(t *testing.T) {
	_, err := inventory.PlanChanges([]*entity.LedgerEntry{prior("gula", 1), prior("gula", 2)}, nil)
	var ie *domain.InvariantError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "gula", ie.SkuID)
}
