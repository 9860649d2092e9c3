package repositories

import "errors"

// Errors shared by every store implementation.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrClaimLost means a photo is no longer claimed by the batch completing it.
	ErrClaimLost = errors.New("photo claim lost")
	// ErrReferenceMissing means a referenced row (usually a user) was deleted concurrently.
	ErrReferenceMissing = errors.New("referenced record missing")
)
