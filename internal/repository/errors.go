package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrNotFound is returned by every store when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// ShortfallError is returned by LedgerTx.DeductStock when the locked row holds
// fewer units than requested. Nothing has been written when it is returned.
type ShortfallError struct {
	ProductID uuid.UUID
	Available int
	Requested int
}

func (e *ShortfallError) Error() string {
	return fmt.Sprintf("stock shortfall for product %s: available %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}

// Postgres SQLSTATE codes the sale workflow cares about.
const (
	pgCheckViolation       = "23514"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// PgCode extracts the SQLSTATE from a driver error, or "" when err did not
// come from Postgres.
func PgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsCheckViolation reports whether err is a CHECK constraint failure, e.g. the
// non-negative stock guard on products.
func IsCheckViolation(err error) bool { return PgCode(err) == pgCheckViolation }

// IsTransient reports whether the whole transaction can be retried as-is.
func IsTransient(err error) bool {
	switch PgCode(err) {
	case pgSerializationFailure, pgDeadlockDetected:
		return true
	}
	return false
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
