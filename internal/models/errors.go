package models

import "errors"

// Domain errors that can be returned by repositories
var (
	// ErrDuplicateTransaction indicates a record with the same id already exists
	ErrDuplicateTransaction = errors.New("duplicate transaction")

	// ErrNotFound indicates the requested entity was not found
	ErrNotFound = errors.New("not found")

	// ErrInsufficientFunds indicates a conditional balance update would take a balance below zero
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrIdempotencyConflict indicates an idempotency key is already reserved
	ErrIdempotencyConflict = errors.New("idempotency key already in use")

	// ErrInvalidTransition indicates a status change the transition table does not allow
	ErrInvalidTransition = errors.New("invalid status transition")
)
