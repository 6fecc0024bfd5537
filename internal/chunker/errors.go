package chunker

import "errors"

var (
	// ErrInvalidConfig is returned when chunk sizing bounds are unusable
	ErrInvalidConfig = errors.New("invalid chunker configuration")
)
