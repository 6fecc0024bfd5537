package domain

import "errors"

var (
	// ErrInvalidURL is returned when the URL format is not valid
	ErrInvalidURL = errors.New("invalid URL format")
	// ErrInvalidDomain is returned when the domain format is not valid
	ErrInvalidDomain = errors.New("invalid domain format")
)
