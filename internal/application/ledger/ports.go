package ledger

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Commit si fn devuelve nil, Rollback en otro caso. Los conflictos de concurrencia detectados por
// el almacén se devuelven como domain.ErrConcurrentModification.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		ledgerRepo repository.LedgerRepository,
		skuRepo repository.SkuRepository,
		docRepo repository.DocumentRepository,
	) error) error
}

// DocumentLocker exclusión mutua por documento entre instancias.
// Si no puede obtener el lock devuelve domain.ErrConcurrentModification.
type DocumentLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// ProjectionCache cache de proyecciones de lectura (resumen, disponibilidad, alertas).
type ProjectionCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Invalidate(ctx context.Context) error
}

// Claves de proyecciones cacheadas.
const (
	KeySummary      = "ledger:projection:summary"
	KeyAvailability = "ledger:projection:availability"
	KeyAlerts       = "ledger:projection:alerts"
)

// ProjectionKeys todas las claves que se invalidan tras una escritura.
var ProjectionKeys = []string{KeySummary, KeyAvailability, KeyAlerts}

// NopLocker no bloquea; la serialización queda a cargo de los locks de fila del almacén.
type NopLocker struct{}

func (NopLocker) Lock(context.Context, string) (func(), error) { return func() {}, nil }

// NopCache nunca tiene aciertos.
type NopCache struct{}

func (NopCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (NopCache) Set(context.Context, string, any) error         { return nil }
func (NopCache) Invalidate(context.Context) error               { return nil }
