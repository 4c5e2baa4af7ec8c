package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound                 = errors.New("recurso no encontrado")
	ErrInvalidInput             = errors.New("entrada inválida")
	ErrDuplicate                = errors.New("recurso duplicado")
	ErrUnauthorized             = errors.New("no autorizado")
	ErrConflict                 = errors.New("conflicto con el estado actual")
	ErrInvalidQuantity          = errors.New("cantidad inválida: debe ser mayor que cero")
	ErrInsufficientStock        = errors.New("stock insuficiente")
	ErrConcurrentModification   = errors.New("modificación concurrente detectada")
	ErrLedgerInvariantViolation = errors.New("invariante del ledger violada")
	ErrInvalidTransition        = errors.New("transición de estado no permitida")
	ErrTerminalStatus           = errors.New("el documento está en un estado terminal")
)

// LineCheck resultado de comparar una línea solicitada contra la disponibilidad.
// AvailableAtCheck incluye SelfCredit, lo que el propio documento ya tenía consumido de ese SKU;
// el disponible del ledger es AvailableAtCheck - SelfCredit.
type LineCheck struct {
	SkuID             string
	RequestedQuantity decimal.Decimal
	AvailableAtCheck  decimal.Decimal
	SelfCredit        decimal.Decimal
	OK                bool
}

// InsufficientStockError lleva el detalle por SKU para que el llamador muestre un mensaje preciso.
type InsufficientStockError struct {
	Lines []LineCheck
}

func (e *InsufficientStockError) Error() string {
	failed := 0
	for _, l := range e.Lines {
		if !l.OK {
			failed++
		}
	}
	return fmt.Sprintf("%s: %d de %d líneas sin disponibilidad", ErrInsufficientStock.Error(), failed, len(e.Lines))
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// InvariantError indica un ledger corrupto (p. ej. un destino de supersede inexistente).
// Nunca debe silenciarse.
type InvariantError struct {
	DocumentType string
	DocumentID   string
	SkuID        string
	Reason       string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: documento %s/%s sku %q: %s",
		ErrLedgerInvariantViolation.Error(), e.DocumentType, e.DocumentID, e.SkuID, e.Reason)
}

func (e *InvariantError) Unwrap() error { return ErrLedgerInvariantViolation }
