package analyzer

import "errors"

var (
	// ErrInvalidPolicyURL is returned when a policy URL cannot be parsed or
	// carries no hostname
	ErrInvalidPolicyURL = errors.New("invalid policy URL")
	// ErrPersistence wraps storage failures inside the pipeline
	ErrPersistence = errors.New("persistence failure")
)
