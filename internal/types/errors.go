package types

import "errors"

var (
	// ErrNotFound is returned by storage lookups when no record exists
	ErrNotFound = errors.New("record not found")
)
