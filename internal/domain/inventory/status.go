package inventory

import (
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StatusClass clase gruesa de un estado respecto al ledger.
type StatusClass string

const (
	ClassNonConsuming StatusClass = "non_consuming"
	ClassConsuming    StatusClass = "consuming"
)

// Estados de pedido.
const (
	OrderMenunggu   = "Menunggu"
	OrderDiproses   = "Diproses"
	OrderDikirim    = "Dikirim"
	OrderSelesai    = "Selesai"
	OrderDibatalkan = "Dibatalkan"
)

// Estados de producción.
const (
	ProductionProses     = "proses"
	ProductionSelesai    = "selesai"
	ProductionDibatalkan = "dibatalkan"
)

// StatusNone estado virtual de un documento que aún no existe.
const StatusNone = ""

// Status variante etiquetada {estado, clase}.
type Status struct {
	Name     string      `json:"status"`
	Class    StatusClass `json:"class"`
	Terminal bool        `json:"terminal"`
	Initial  bool        `json:"initial"`
}

// Consuming indica si el estado tiene salidas en el ledger.
func (s Status) Consuming() bool { return s.Class == ClassConsuming }

// Policy decisiones de negocio configurables sobre la máquina de estados.
type Policy struct {
	// SelesaiTerminal impide reabrir o cancelar un documento Selesai/selesai.
	SelesaiTerminal bool
}

// Machine máquina de estados de un tipo de documento.
type Machine struct {
	docType  string
	statuses []Status
	byName   map[string]Status
}

// NewMachine construye la máquina para el tipo de documento con la política dada.
func NewMachine(docType string, policy Policy) (*Machine, error) {
	var statuses []Status
	switch docType {
	case entity.DocumentTypeOrder:
		statuses = []Status{
			{Name: OrderMenunggu, Class: ClassNonConsuming, Initial: true},
			{Name: OrderDiproses, Class: ClassNonConsuming},
			{Name: OrderDikirim, Class: ClassConsuming},
			{Name: OrderSelesai, Class: ClassConsuming, Terminal: policy.SelesaiTerminal},
			{Name: OrderDibatalkan, Class: ClassNonConsuming, Terminal: true},
		}
	case entity.DocumentTypeProduction:
		statuses = []Status{
			{Name: ProductionProses, Class: ClassConsuming, Initial: true},
			{Name: ProductionSelesai, Class: ClassConsuming, Terminal: policy.SelesaiTerminal},
			{Name: ProductionDibatalkan, Class: ClassNonConsuming, Terminal: true},
		}
	default:
		return nil, fmt.Errorf("tipo de documento %q: %w", docType, domain.ErrInvalidInput)
	}
	m := &Machine{docType: docType, statuses: statuses, byName: make(map[string]Status, len(statuses))}
	for _, s := range statuses {
		m.byName[s.Name] = s
	}
	return m, nil
}

// DocumentType tipo de documento que gobierna la máquina.
func (m *Machine) DocumentType() string { return m.docType }

// Statuses catálogo ordenado de estados.
func (m *Machine) Statuses() []Status {
	out := make([]Status, len(m.statuses))
	copy(out, m.statuses)
	return out
}

// Lookup devuelve el estado por nombre. StatusNone es no consumidor.
func (m *Machine) Lookup(name string) (Status, bool) {
	if name == StatusNone {
		return Status{Name: StatusNone, Class: ClassNonConsuming}, true
	}
	s, ok := m.byName[name]
	return s, ok
}

// IsConsuming clase del estado; los estados desconocidos no consumen.
func (m *Machine) IsConsuming(name string) bool {
	s, ok := m.Lookup(name)
	return ok && s.Consuming()
}

// Check valida el paso from → to. linesChanged indica una edición de líneas.
// Un documento terminal solo acepta la misma transición sin cambios (reintento idempotente).
func (m *Machine) Check(from, to string, linesChanged bool) error {
	target, ok := m.byName[to]
	if !ok {
		return fmt.Errorf("estado %q para %s: %w", to, m.docType, domain.ErrInvalidTransition)
	}
	if from == StatusNone {
		if target.Name == m.cancelled() {
			return fmt.Errorf("no se puede crear un documento en %q: %w", to, domain.ErrInvalidTransition)
		}
		return nil
	}
	source, ok := m.byName[from]
	if !ok {
		return fmt.Errorf("estado actual %q para %s: %w", from, m.docType, domain.ErrInvalidTransition)
	}
	if source.Terminal {
		if from == to && !linesChanged {
			return nil
		}
		return fmt.Errorf("%s %q: %w", m.docType, from, domain.ErrTerminalStatus)
	}
	return nil
}

func (m *Machine) cancelled() string {
	if m.docType == entity.DocumentTypeProduction {
		return ProductionDibatalkan
	}
	return OrderDibatalkan
}

// Machines agrupa las máquinas por tipo de documento.
type Machines map[string]*Machine

// NewMachines construye las máquinas de pedido y producción.
func NewMachines(policy Policy) Machines {
	ms := Machines{}
	for _, t := range []string{entity.DocumentTypeOrder, entity.DocumentTypeProduction} {
		m, _ := NewMachine(t, policy)
		ms[t] = m
	}
	return ms
}

// For devuelve la máquina del tipo o ErrInvalidInput.
func (ms Machines) For(docType string) (*Machine, error) {
	m, ok := ms[docType]
	if !ok {
		return nil, fmt.Errorf("tipo de documento %q: %w", docType, domain.ErrInvalidInput)
	}
	return m, nil
}
