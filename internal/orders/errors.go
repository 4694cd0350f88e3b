package orders

import (
	"errors"
	"fmt"
)

// Sentinels the Store contract is expressed in; the typed errors below wrap
// ErrNotFound where the record kind matters to the caller.
var (
	ErrNotFound = errors.New("not found")

	// ErrConflict means a guarded update lost: the record changed since it
	// was read and the caller must re-read before retrying.
	ErrConflict = errors.New("etag conflict")

	// ErrAlreadyExists means an add collided with an existing identity.
	ErrAlreadyExists = errors.New("record already exists")
)

type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %s not found", e.Kind, e.ID) }
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Reason) }

type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *PersistenceError) Unwrap() error { return e.Err }

// PartialFailureError reports an order that was committed while the follow-up
// stock write failed. The order stands; operators must reconcile the product
// record by hand, so this must never be folded into a plain success or a
// plain failure.
type PartialFailureError struct {
	OrderID   string
	ProductID string
	Err       error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("order %s committed but stock update for product %s failed: %v",
		e.OrderID, e.ProductID, e.Err)
}

func (e *PartialFailureError) Unwrap() error { return e.Err }
