package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Effect efecto de una transición sobre el ledger.
type Effect string

const (
	EffectNone     Effect = "none"     // no consumidor → no consumidor, o sin cambios
	EffectCommit   Effect = "commit"   // primera confirmación: se agregan salidas
	EffectReversal Effect = "reversal" // se eliminan todas las salidas del documento
	EffectDelta    Effect = "delta"    // edición de un documento ya consumido
)

// TransitionInput cambio solicitado sobre un documento.
// Status vacío conserva el estado actual; Lines nil conserva las líneas actuales.
type TransitionInput struct {
	DocumentType string
	DocumentID   string
	Status       string
	Lines        []entity.LineItem
	UserID       string
	Create       bool
}

// StockChange disponibilidad antes y después para un SKU tocado por la transición.
type StockChange struct {
	SkuID  string
	Before decimal.Decimal
	After  decimal.Decimal
}

// TransitionResult resultado de una transición confirmada.
type TransitionResult struct {
	Document  *entity.Document
	OldStatus string
	NewStatus string
	Effect    Effect
	Changes   []StockChange
	Outbound  []*entity.LedgerEntry
}

// TransitionEngine único escritor de salidas del ledger ligadas a documentos.
// Cada transición valida y escribe dentro de una misma transacción, con el documento y los SKUs
// tocados bloqueados, de modo que dos confirmaciones concurrentes no pueden sobrecomprometer stock.
type TransitionEngine struct {
	txRunner  TxRunner
	locker    DocumentLocker
	cache     ProjectionCache
	machines  inventory.Machines
	validator *ReservationValidator
	log       zerolog.Logger
	now       func() time.Time
}

// NewTransitionEngine construye el motor. locker y cache pueden ser nil.
func NewTransitionEngine(
	txRunner TxRunner,
	locker DocumentLocker,
	cache ProjectionCache,
	machines inventory.Machines,
	log zerolog.Logger,
) *TransitionEngine {
	if locker == nil {
		locker = NopLocker{}
	}
	if cache == nil {
		cache = NopCache{}
	}
	return &TransitionEngine{
		txRunner:  txRunner,
		locker:    locker,
		cache:     cache,
		machines:  machines,
		validator: &ReservationValidator{},
		log:       log,
		now:       time.Now,
	}
}

// Machines catálogo de máquinas de estado usado por el motor.
func (e *TransitionEngine) Machines() inventory.Machines { return e.machines }

// Apply ejecuta la transición. Un conflicto de concurrencia se reintenta una vez antes de devolverse.
func (e *TransitionEngine) Apply(ctx context.Context, in TransitionInput) (*TransitionResult, error) {
	if in.DocumentID == "" {
		return nil, fmt.Errorf("document_id requerido: %w", domain.ErrInvalidInput)
	}
	machine, err := e.machines.For(in.DocumentType)
	if err != nil {
		return nil, err
	}

	res, err := e.attempt(ctx, machine, in)
	if errors.Is(err, domain.ErrConcurrentModification) {
		e.log.Warn().
			Str("document", entity.DocumentKey(in.DocumentType, in.DocumentID)).
			Err(err).
			Msg("conflicto concurrente, reintentando transición")
		res, err = e.attempt(ctx, machine, in)
	}
	if err != nil {
		e.logFailure(in, err)
		return nil, err
	}

	if err := e.cache.Invalidate(ctx); err != nil {
		e.log.Warn().Err(err).Msg("invalidar proyecciones")
	}
	ev := e.log.Info().
		Str("document", res.Document.Key()).
		Str("old_status", res.OldStatus).
		Str("new_status", res.NewStatus).
		Str("effect", string(res.Effect))
	for _, c := range res.Changes {
		ev = ev.Str("delta_"+c.SkuID, c.After.Sub(c.Before).String())
	}
	ev.Msg("transición confirmada")
	return res, nil
}

func (e *TransitionEngine) logFailure(in TransitionInput, err error) {
	key := entity.DocumentKey(in.DocumentType, in.DocumentID)
	switch {
	case errors.Is(err, domain.ErrLedgerInvariantViolation):
		e.log.Error().Str("document", key).Err(err).Msg("invariante del ledger violada")
	case errors.Is(err, domain.ErrInsufficientStock):
		e.log.Debug().Str("document", key).Err(err).Msg("transición rechazada por stock")
	default:
		e.log.Debug().Str("document", key).Err(err).Msg("transición rechazada")
	}
}

func (e *TransitionEngine) attempt(ctx context.Context, machine *inventory.Machine, in TransitionInput) (*TransitionResult, error) {
	unlock, err := e.locker.Lock(ctx, entity.DocumentKey(in.DocumentType, in.DocumentID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var res *TransitionResult
	err = e.txRunner.Run(ctx, func(
		ledgerRepo repository.LedgerRepository,
		skuRepo repository.SkuRepository,
		docRepo repository.DocumentRepository,
	) error {
		var txErr error
		res, txErr = e.apply(ctx, machine, in, ledgerRepo, skuRepo, docRepo)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (e *TransitionEngine) apply(
	ctx context.Context,
	machine *inventory.Machine,
	in TransitionInput,
	ledgerRepo repository.LedgerRepository,
	skuRepo repository.SkuRepository,
	docRepo repository.DocumentRepository,
) (*TransitionResult, error) {
	key := entity.DocumentKey(in.DocumentType, in.DocumentID)
	doc, err := docRepo.GetForUpdate(ctx, in.DocumentType, in.DocumentID)
	if err != nil {
		return nil, err
	}
	switch {
	case in.Create && doc != nil:
		return nil, fmt.Errorf("documento %s: %w", key, domain.ErrDuplicate)
	case !in.Create && doc == nil:
		return nil, fmt.Errorf("documento %s: %w", key, domain.ErrNotFound)
	}

	oldStatus := inventory.StatusNone
	var oldLines []entity.LineItem
	if doc != nil {
		oldStatus = doc.Status
		oldLines = doc.Lines
	}
	newStatus := in.Status
	if newStatus == "" {
		newStatus = oldStatus
		if doc == nil {
			newStatus = initialStatus(machine)
		}
	}
	requested := oldLines
	if in.Lines != nil {
		requested = in.Lines
	}
	target, err := inventory.NormalizeLines(requested)
	if err != nil {
		return nil, err
	}
	linesChanged := !inventory.SameLines(oldLines, target)
	if err := machine.Check(oldStatus, newStatus, linesChanged); err != nil {
		return nil, err
	}

	prior, err := ledgerRepo.OutboundFor(ctx, in.DocumentID, in.DocumentType)
	if err != nil {
		return nil, err
	}
	oldConsuming := machine.IsConsuming(oldStatus)
	newConsuming := machine.IsConsuming(newStatus)
	if err := checkAnchor(in, oldConsuming, oldLines, prior); err != nil {
		return nil, err
	}

	res := &TransitionResult{OldStatus: oldStatus, NewStatus: newStatus, Effect: EffectNone}
	if doc != nil && oldStatus == newStatus && !linesChanged {
		// Reintento de la misma transición: nada que escribir.
		res.Document = doc
		res.Outbound = prior
		return res, nil
	}

	skus := touchedSkus(prior, target)
	if err := skuRepo.LockForUpdate(ctx, skus); err != nil {
		return nil, err
	}
	before, err := snapshot(ctx, ledgerRepo, skus)
	if err != nil {
		return nil, err
	}

	now := e.now()
	switch {
	case !oldConsuming && !newConsuming:
		res.Effect = EffectNone

	case !oldConsuming && newConsuming:
		res.Effect = EffectCommit
		// Sin líneas solo puede reconfirmarse un documento existente (reversión y vuelta a consumir).
		if len(target) == 0 && doc == nil {
			return nil, fmt.Errorf("documento %s sin líneas en estado %q: %w", key, newStatus, domain.ErrInvalidInput)
		}
		checks, ok, err := e.validator.Check(ctx, ledgerRepo, target, nil)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &domain.InsufficientStockError{Lines: checks}
		}
		for _, l := range target {
			if err := ledgerRepo.Append(ctx, e.outbound(in, l.SkuID, l.Quantity, now)); err != nil {
				return nil, err
			}
		}

	case oldConsuming && !newConsuming:
		// La reversión es incondicional: nunca falla por stock.
		res.Effect = EffectReversal
		for _, p := range prior {
			if err := ledgerRepo.Remove(ctx, p.ID); err != nil {
				return nil, err
			}
		}

	default:
		res.Effect = EffectDelta
		changes, err := inventory.PlanChanges(prior, target)
		if err != nil {
			return nil, err
		}
		var increases []entity.LineItem
		credit := make(map[string]decimal.Decimal)
		for _, c := range changes {
			if c.Increase() {
				increases = append(increases, entity.LineItem{SkuID: c.SkuID, Quantity: c.Target})
				credit[c.SkuID] = c.Old
			}
		}
		if len(increases) > 0 {
			checks, ok, err := e.validator.Check(ctx, ledgerRepo, increases, credit)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, &domain.InsufficientStockError{Lines: checks}
			}
		}
		for _, c := range changes {
			var werr error
			switch {
			case c.Prior == nil:
				werr = ledgerRepo.Append(ctx, e.outbound(in, c.SkuID, c.Target, now))
			case c.Target.IsZero():
				werr = ledgerRepo.Remove(ctx, c.Prior.ID)
			default:
				werr = ledgerRepo.Supersede(ctx, c.Prior.ID, e.outbound(in, c.SkuID, c.Target, now))
			}
			if werr != nil {
				return nil, werr
			}
		}
	}

	after, err := snapshot(ctx, ledgerRepo, skus)
	if err != nil {
		return nil, err
	}
	for _, sku := range skus {
		b, a := before[sku].Available, after[sku].Available
		if a.LessThan(decimal.Zero) && a.LessThan(b) {
			return nil, &domain.InvariantError{
				DocumentType: in.DocumentType, DocumentID: in.DocumentID, SkuID: sku,
				Reason: "disponible negativo tras confirmar",
			}
		}
		if !a.Equal(b) {
			res.Changes = append(res.Changes, StockChange{SkuID: sku, Before: b, After: a})
		}
	}

	if doc == nil {
		doc = &entity.Document{ID: in.DocumentID, Type: in.DocumentType}
	}
	doc.Status = newStatus
	doc.Lines = target
	doc.UpdatedAt = now
	doc.UpdatedBy = in.UserID
	if err := docRepo.Save(ctx, doc); err != nil {
		return nil, err
	}
	outbound, err := ledgerRepo.OutboundFor(ctx, in.DocumentID, in.DocumentType)
	if err != nil {
		return nil, err
	}
	res.Document = doc
	res.Outbound = outbound
	return res, nil
}

func (e *TransitionEngine) outbound(in TransitionInput, skuID string, qty decimal.Decimal, now time.Time) *entity.LedgerEntry {
	return &entity.LedgerEntry{
		ID:                 uuid.New().String(),
		SkuID:              skuID,
		Direction:          entity.DirectionOutbound,
		Quantity:           qty,
		UnitPrice:          decimal.Zero,
		SourceDocumentID:   in.DocumentID,
		SourceDocumentType: in.DocumentType,
		RecordedAt:         now,
		RecordedBy:         in.UserID,
	}
}

// checkAnchor verifica que las salidas vigentes coincidan con lo que el documento dice haber consumido.
func checkAnchor(in TransitionInput, oldConsuming bool, oldLines []entity.LineItem, prior []*entity.LedgerEntry) error {
	violation := func(sku, reason string) error {
		return &domain.InvariantError{DocumentType: in.DocumentType, DocumentID: in.DocumentID, SkuID: sku, Reason: reason}
	}
	if !oldConsuming {
		if len(prior) > 0 {
			return violation(prior[0].SkuID, "salidas existentes en estado no consumidor")
		}
		return nil
	}
	bySku := make(map[string]*entity.LedgerEntry, len(prior))
	for _, p := range prior {
		if _, dup := bySku[p.SkuID]; dup {
			return violation(p.SkuID, "más de una salida para el mismo sku")
		}
		bySku[p.SkuID] = p
	}
	for _, l := range oldLines {
		p, ok := bySku[l.SkuID]
		if !ok {
			return violation(l.SkuID, "falta la salida confirmada")
		}
		if !p.Quantity.Equal(l.Quantity) {
			return violation(l.SkuID, fmt.Sprintf("salida %s distinta de la línea %s", p.Quantity, l.Quantity))
		}
	}
	if len(bySku) != len(oldLines) {
		return violation("", "salidas sin línea correspondiente")
	}
	return nil
}

func touchedSkus(prior []*entity.LedgerEntry, lines []entity.LineItem) []string {
	set := make(map[string]struct{}, len(prior)+len(lines))
	for _, p := range prior {
		set[p.SkuID] = struct{}{}
	}
	for _, l := range lines {
		set[l.SkuID] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func snapshot(ctx context.Context, ledgerRepo repository.LedgerRepository, skus []string) (map[string]inventory.Availability, error) {
	out := make(map[string]inventory.Availability, len(skus))
	for _, s := range skus {
		a, err := availabilityOf(ctx, ledgerRepo, s)
		if err != nil {
			return nil, err
		}
		out[s] = a
	}
	return out, nil
}

func initialStatus(m *inventory.Machine) string {
	for _, s := range m.Statuses() {
		if s.Initial {
			return s.Name
		}
	}
	return inventory.StatusNone
}
