package inventory

import "github.com/shopspring/decimal"

// Clasificación de stock. Los umbrales son constantes de política.
const (
	StatusHabis      = "habis"
	StatusKritis     = "kritis"
	StatusPeringatan = "peringatan"
	StatusAman       = "aman"
)

var (
	ThresholdKritis     = decimal.NewFromInt(5)
	ThresholdPeringatan = decimal.NewFromInt(10)
)

// Classify habis si available ≤ 0, kritis si ≤ 5, peringatan si ≤ 10, aman en otro caso.
func Classify(available decimal.Decimal) string {
	switch {
	case available.LessThanOrEqual(decimal.Zero):
		return StatusHabis
	case available.LessThanOrEqual(ThresholdKritis):
		return StatusKritis
	case available.LessThanOrEqual(ThresholdPeringatan):
		return StatusPeringatan
	default:
		return StatusAman
	}
}

// IsLowStock todo lo que no es aman genera alerta.
func IsLowStock(status string) bool {
	return status != StatusAman
}
