package ledger

import (
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Deps dependencias de infraestructura para armar los casos de uso.
// Los repositorios sin tx se usan para lecturas; las escrituras pasan por TxRunner.
type Deps struct {
	TxRunner   TxRunner
	LedgerRepo repository.LedgerRepository
	SkuRepo    repository.SkuRepository
	DocRepo    repository.DocumentRepository
	Locker     DocumentLocker  // nil = NopLocker
	Cache      ProjectionCache // nil = NopCache
	Policy     inventory.Policy
	WindowDays int
	Log        zerolog.Logger
}

// Services casos de uso del ledger ya cableados.
type Services struct {
	Engine       *TransitionEngine
	Availability *AvailabilityUseCase
	Validation   *ValidationUseCase
	Projections  *ProjectionUseCase
	Procurement  *ProcurementUseCase
	Documents    *DocumentUseCase
	Skus         *SkuUseCase
}

// NewServices arma todos los casos de uso sobre las mismas dependencias.
func NewServices(d Deps) *Services {
	log := d.Log.With().Str("component", "ledger").Logger()
	cache := newGenerationCache(d.Cache)
	engine := NewTransitionEngine(d.TxRunner, d.Locker, cache, inventory.NewMachines(d.Policy), log)
	availability := NewAvailabilityUseCase(d.SkuRepo, d.LedgerRepo, d.WindowDays)
	return &Services{
		Engine:       engine,
		Availability: availability,
		Validation:   NewValidationUseCase(d.SkuRepo, d.LedgerRepo),
		Projections:  NewProjectionUseCase(availability, d.SkuRepo, d.LedgerRepo, cache, log),
		Procurement:  NewProcurementUseCase(d.TxRunner, cache, log),
		Documents:    NewDocumentUseCase(engine, d.DocRepo, d.LedgerRepo),
		Skus:         NewSkuUseCase(d.TxRunner, d.SkuRepo),
	}
}
