package storage

import "errors"

// Storage errors shared by every backend.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned on inserting a record whose key already
	// exists. Candle, tick and ledger stores are append-only; updates are
	// not allowed.
	ErrDuplicateKey = errors.New("duplicate key in append-only store")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
