package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a product, sale or cart does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when an operation collides with one already in progress
	ErrConflict = errors.New("conflict occurred")

	// ErrInsufficientStock is returned when a checkout would drive stock below zero
	ErrInsufficientStock = fmt.Errorf("%w: insufficient stock", ErrInvalidInput)

	// ErrEmptyCart is returned when checking out a cart without lines
	ErrEmptyCart = fmt.Errorf("%w: cart is empty", ErrInvalidInput)

	// ErrCheckoutInProgress is returned on a second commit for the same cart
	ErrCheckoutInProgress = fmt.Errorf("%w: checkout already in progress", ErrConflict)

	// ErrStorage is returned when the persistence adapter fails
	ErrStorage = errors.New("storage failure")

	// ErrStorageTimeout is returned when a persistence call exceeds its deadline
	ErrStorageTimeout = errors.New("storage timeout")
)

// StorageError reports a failed persistence call. It matches ErrStorage with errors.Is
// and unwraps to the underlying cause.
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError wraps err as a StorageError for the named operation
func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}
