package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ProjectionUseCase vistas de lectura construidas recorriendo el ledger.
// No son transaccionalmente consistentes con escrituras en curso: son snapshots que se
// refrescan bajo demanda o cuando el cache expira.
type ProjectionUseCase struct {
	availability *AvailabilityUseCase
	skuRepo      repository.SkuRepository
	ledgerRepo   repository.LedgerRepository
	cache        *generationCache
	group        singleflight.Group
	log          zerolog.Logger
	now          func() time.Time
}

// NewProjectionUseCase construye la capa de proyecciones. cache puede ser nil; para que el
// descarte por generación funcione debe ser el mismo que invalidan las escrituras.
func NewProjectionUseCase(
	availability *AvailabilityUseCase,
	skuRepo repository.SkuRepository,
	ledgerRepo repository.LedgerRepository,
	cache ProjectionCache,
	log zerolog.Logger,
) *ProjectionUseCase {
	return &ProjectionUseCase{
		availability: availability,
		skuRepo:      skuRepo,
		ledgerRepo:   ledgerRepo,
		cache:        newGenerationCache(cache),
		log:          log,
		now:          time.Now,
	}
}

// AvailabilityList disponibilidad de todos los SKUs, o solo de skuID si viene.
func (uc *ProjectionUseCase) AvailabilityList(ctx context.Context, skuID string) ([]dto.BeratTersediaDTO, error) {
	if skuID != "" {
		sku, a, err := uc.availability.Availability(ctx, skuID)
		if err != nil {
			return nil, err
		}
		return []dto.BeratTersediaDTO{toBeratTersedia(sku, a)}, nil
	}
	var list []dto.BeratTersediaDTO
	err := uc.cached(ctx, KeyAvailability, &list, func() (any, error) {
		return uc.buildAvailability(ctx)
	})
	return list, err
}

// Forecast predicción de agotamiento de un SKU.
func (uc *ProjectionUseCase) Forecast(ctx context.Context, skuID string) (*dto.PrediksiKehabisanDTO, error) {
	f, err := uc.availability.ForecastDepletion(ctx, skuID)
	if err != nil {
		return nil, err
	}
	return &dto.PrediksiKehabisanDTO{
		SkuID:               f.SkuID,
		Available:           f.Available,
		AvgDailyConsumption: f.AvgDailyConsumption.Round(4),
		DaysUntilDepletion:  f.DaysUntilDepletion,
		Status:              f.Status,
		WindowDays:          uc.availability.WindowDays(),
	}, nil
}

// Summary conteos y valor total del stock.
func (uc *ProjectionUseCase) Summary(ctx context.Context) (*dto.RingkasanKetersediaanDTO, error) {
	var summary dto.RingkasanKetersediaanDTO
	err := uc.cached(ctx, KeySummary, &summary, func() (any, error) {
		list, err := uc.buildAvailability(ctx)
		if err != nil {
			return nil, err
		}
		s := dto.RingkasanKetersediaanDTO{
			TotalJenisBarang: len(list),
			TotalNilaiStok:   decimal.Zero,
			GeneratedAt:      uc.now(),
		}
		for _, b := range list {
			if inventory.IsLowStock(b.Status) {
				s.BarangHampirHabis++
			} else {
				s.BarangStokAman++
			}
			if b.Tersedia.GreaterThan(decimal.Zero) {
				s.TotalNilaiStok = s.TotalNilaiStok.Add(b.Tersedia.Mul(b.HargaRata))
			}
		}
		s.TotalNilaiStok = s.TotalNilaiStok.Round(2)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// Alerts SKUs con estado distinto de aman, del menor disponible al mayor.
func (uc *ProjectionUseCase) Alerts(ctx context.Context) ([]dto.LowStockAlertDTO, error) {
	var alerts []dto.LowStockAlertDTO
	err := uc.cached(ctx, KeyAlerts, &alerts, func() (any, error) {
		return uc.buildAlerts(ctx)
	})
	return alerts, err
}

// RefreshAlerts reconstruye las alertas ignorando el cache y las vuelve a guardar.
func (uc *ProjectionUseCase) RefreshAlerts(ctx context.Context) ([]dto.LowStockAlertDTO, error) {
	gen := uc.cache.Generation()
	alerts, err := uc.buildAlerts(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := uc.cache.SetIfCurrent(ctx, gen, KeyAlerts, alerts); err != nil {
		uc.log.Warn().Err(err).Str("key", KeyAlerts).Msg("guardar proyección en cache")
	}
	return alerts, nil
}

// Detail disponibilidad de un SKU con su historial de entradas y salidas, del más reciente al más antiguo.
func (uc *ProjectionUseCase) Detail(ctx context.Context, skuID string) (*dto.SkuDetailDTO, error) {
	sku, a, err := uc.availability.Availability(ctx, skuID)
	if err != nil {
		return nil, err
	}
	out := &dto.SkuDetailDTO{
		BeratTersediaDTO: toBeratTersedia(sku, a),
		Masuk:            []dto.LedgerHistoryDTO{},
		Keluar:           []dto.LedgerHistoryDTO{},
	}
	var entries []*entity.LedgerEntry
	for e, err := range uc.ledgerRepo.EntriesFor(ctx, skuID) {
		if err != nil {
			return nil, fmt.Errorf("historial de %s: %w", skuID, err)
		}
		entries = append(entries, e)
	}
	for i := len(entries) - 1; i >= 0; i-- {
		h := toHistory(entries[i : i+1])[0]
		if entries[i].IsOutbound() {
			out.Keluar = append(out.Keluar, h)
		} else {
			out.Masuk = append(out.Masuk, h)
		}
	}
	return out, nil
}

func (uc *ProjectionUseCase) buildAvailability(ctx context.Context) ([]dto.BeratTersediaDTO, error) {
	skus, err := uc.skuRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]dto.BeratTersediaDTO, 0, len(skus))
	for _, sku := range skus {
		a, err := availabilityOf(ctx, uc.ledgerRepo, sku.ID)
		if err != nil {
			return nil, err
		}
		list = append(list, toBeratTersedia(sku, a))
	}
	return list, nil
}

func (uc *ProjectionUseCase) buildAlerts(ctx context.Context) ([]dto.LowStockAlertDTO, error) {
	list, err := uc.buildAvailability(ctx)
	if err != nil {
		return nil, err
	}
	alerts := make([]dto.LowStockAlertDTO, 0)
	for _, b := range list {
		if !inventory.IsLowStock(b.Status) {
			continue
		}
		alerts = append(alerts, dto.LowStockAlertDTO{
			SkuID: b.SkuID, Kode: b.Kode, Nama: b.Nama, Tersedia: b.Tersedia, Status: b.Status,
		})
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Tersedia.LessThan(alerts[j].Tersedia)
	})
	return alerts, nil
}

// cached lee key del cache; si no está, construye una sola vez aunque haya llamadas concurrentes.
func (uc *ProjectionUseCase) cached(ctx context.Context, key string, dest any, build func() (any, error)) error {
	if hit, err := uc.cache.Get(ctx, key, dest); err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("leer proyección del cache")
	} else if hit {
		return nil
	}
	v, err, _ := uc.group.Do(key, func() (any, error) {
		gen := uc.cache.Generation()
		value, err := build()
		if err != nil {
			return nil, err
		}
		stored, err := uc.cache.SetIfCurrent(ctx, gen, key, value)
		if err != nil {
			uc.log.Warn().Err(err).Str("key", key).Msg("guardar proyección en cache")
		} else if !stored {
			uc.log.Debug().Str("key", key).Msg("proyección descartada: el ledger cambió durante la construcción")
		}
		return value, nil
	})
	if err != nil {
		return err
	}
	return assign(dest, v)
}

func assign(dest, v any) error {
	switch d := dest.(type) {
	case *[]dto.BeratTersediaDTO:
		*d = v.([]dto.BeratTersediaDTO)
	case *[]dto.LowStockAlertDTO:
		*d = v.([]dto.LowStockAlertDTO)
	case *dto.RingkasanKetersediaanDTO:
		*d = v.(dto.RingkasanKetersediaanDTO)
	default:
		return fmt.Errorf("proyección: destino %T no soportado", dest)
	}
	return nil
}

func toBeratTersedia(sku *entity.RawMaterialSku, a inventory.Availability) dto.BeratTersediaDTO {
	return dto.BeratTersediaDTO{
		SkuID:         sku.ID,
		Nama:          sku.Nama,
		Kode:          sku.Kode,
		TotalMasuk:    a.Received,
		TotalTerpakai: a.Consumed,
		Tersedia:      a.Available,
		HargaRata:     a.AveragePrice.Round(2),
		Status:        inventory.Classify(a.Available),
	}
}
