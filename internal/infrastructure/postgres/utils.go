package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// Códigos SQLSTATE relevantes.
const (
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

// Restricciones del esquema con significado de dominio.
const (
	constraintOutboundAnchor = "ux_ledger_outbound_anchor"
	constraintDocumentPK     = "ledger_documents_pkey"
	constraintSkuKode        = "raw_material_skus_kode_key"
	constraintQuantityCheck  = "ledger_entries_quantity_check"
)

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// mapError traduce errores de PostgreSQL a errores de dominio; op describe la operación.
// Conflictos de serialización, deadlocks y colisiones sobre el ancla (documento, sku) son
// modificaciones concurrentes: el llamador debe reintentar.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	pgErr, ok := pgError(err)
	if !ok {
		return fmt.Errorf("%s: %w", op, err)
	}
	switch pgErr.Code {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return fmt.Errorf("%s: %w", op, domain.ErrConcurrentModification)
	case codeCheckViolation:
		if pgErr.ConstraintName == constraintQuantityCheck {
			return fmt.Errorf("%s: %w", op, domain.ErrInvalidQuantity)
		}
		return fmt.Errorf("%s: %w", op, domain.ErrInvalidInput)
	case codeUniqueViolation:
		switch pgErr.ConstraintName {
		case constraintOutboundAnchor, constraintDocumentPK:
			return fmt.Errorf("%s: %w", op, domain.ErrConcurrentModification)
		case constraintSkuKode:
			return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
		}
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}
