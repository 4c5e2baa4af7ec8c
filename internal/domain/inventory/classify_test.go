package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

func TestClassify_Umbrales(t *testing.T) {
	cases := []struct {
		available string
		want      string
	}{
		{"-3", inventory.StatusHabis},
		{"0", inventory.StatusHabis},
		{"0.01", inventory.StatusKritis},
		{"5", inventory.StatusKritis},
		{"5.01", inventory.StatusPeringatan},
		{"10", inventory.StatusPeringatan},
		{"10.01", inventory.StatusAman},
		{"250", inventory.StatusAman},
	}
	for _, tc := range cases {
		got := inventory.Classify(decimal.RequireFromString(tc.available))
		assert.Equal(t, tc.want, got, "available=%s", tc.available)
	}
}

func TestIsLowStock(t *testing.T) {
	assert.True(t, inventory.IsLowStock(inventory.StatusHabis))
	assert.True(t, inventory.IsLowStock(inventory.StatusPeringatan))
	assert.False(t, inventory.IsLowStock(inventory.StatusAman))
}
