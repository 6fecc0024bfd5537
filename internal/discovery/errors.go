package discovery

import "errors"

var (
	// ErrInvalidDomain is returned when an empty or malformed domain is provided
	ErrInvalidDomain = errors.New("invalid domain")
)
