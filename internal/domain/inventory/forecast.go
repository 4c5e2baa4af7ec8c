package inventory

import (
	"iter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// DefaultForecastWindowDays ventana de consumo por defecto.
const DefaultForecastWindowDays = 30

// Forecast predicción de agotamiento de un SKU.
// DaysUntilDepletion es nil cuando no hay consumo en la ventana (agotamiento indefinido).
type Forecast struct {
	SkuID               string
	Available           decimal.Decimal
	AvgDailyConsumption decimal.Decimal
	DaysUntilDepletion  *decimal.Decimal
	Status              string
}

// ForecastDepletion calcula el consumo promedio diario de la ventana [now-windowDays, now]
// y los días restantes hasta agotar el disponible.
func ForecastDepletion(skuID string, entries iter.Seq2[*entity.LedgerEntry, error], windowDays int, now time.Time) (Forecast, error) {
	if windowDays <= 0 {
		windowDays = DefaultForecastWindowDays
	}
	since := now.AddDate(0, 0, -windowDays)

	received, consumed, inWindow := decimal.Zero, decimal.Zero, decimal.Zero
	for e, err := range entries {
		if err != nil {
			return Forecast{}, err
		}
		if !e.IsOutbound() {
			received = received.Add(e.Quantity)
			continue
		}
		consumed = consumed.Add(e.Quantity)
		if !e.RecordedAt.Before(since) && !e.RecordedAt.After(now) {
			inWindow = inWindow.Add(e.Quantity)
		}
	}

	available := received.Sub(consumed)
	f := Forecast{
		SkuID:               skuID,
		Available:           available,
		AvgDailyConsumption: inWindow.Div(decimal.NewFromInt(int64(windowDays))),
		Status:              Classify(available),
	}
	if f.AvgDailyConsumption.GreaterThan(decimal.Zero) {
		days := decimal.Max(available, decimal.Zero).Div(f.AvgDailyConsumption).Round(2)
		f.DaysUntilDepletion = &days
	}
	return f, nil
}
