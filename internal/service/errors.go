package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error kinds surfaced by the services. Match them with errors.Is / errors.As.
var (
	// ErrInvalidRequest marks missing or malformed input. Never retried.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotFound marks an unknown product or sale.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized marks rejected credentials.
	ErrUnauthorized = errors.New("unauthorized")
)

// kindError carries a caller-facing message while unwrapping to its kind.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func invalidRequest(msg string) error { return &kindError{kind: ErrInvalidRequest, msg: msg} }
func notFound(msg string) error       { return &kindError{kind: ErrNotFound, msg: msg} }

// InsufficientStockError reports a sale larger than the stock on hand.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock. Available: %d, Requested: %d", e.Available, e.Requested)
}

// StorageError wraps an infrastructure failure. When it comes out of
// RecordSale nothing was committed, so the whole call may be retried.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return "storage: " + e.Op + ": " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }
