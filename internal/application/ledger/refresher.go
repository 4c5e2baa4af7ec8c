package ledger

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// AlertRefresher reconstruye periódicamente las alertas de stock bajo y las deja en el cache.
type AlertRefresher struct {
	projections *ProjectionUseCase
	interval    time.Duration
	log         zerolog.Logger
}

// NewAlertRefresher interval ≤ 0 deshabilita el refresco.
func NewAlertRefresher(projections *ProjectionUseCase, interval time.Duration, log zerolog.Logger) *AlertRefresher {
	return &AlertRefresher{projections: projections, interval: interval, log: log}
}

// Run bloquea hasta que ctx se cancele.
func (r *AlertRefresher) Run(ctx context.Context) {
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.RefreshOnce(ctx)
		}
	}
}

// RefreshOnce una pasada: reconstruye y registra un warning por SKU habis o kritis.
func (r *AlertRefresher) RefreshOnce(ctx context.Context) int {
	alerts, err := r.projections.RefreshAlerts(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("refrescar alertas de stock")
		return 0
	}
	for _, a := range alerts {
		if a.Status != inventory.StatusHabis && a.Status != inventory.StatusKritis {
			continue
		}
		r.log.Warn().
			Str("sku_id", a.SkuID).
			Str("kode", a.Kode).
			Str("tersedia", a.Tersedia.String()).
			Str("status", a.Status).
			Msg("stock bajo")
	}
	return len(alerts)
}
