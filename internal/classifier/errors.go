package classifier

import "errors"

var (
	// ErrClassificationService is returned when the classification service
	// call fails or the service reports an error
	ErrClassificationService = errors.New("classification service error")
	// ErrInvalidResponse is returned when the service response is missing the
	// classifications list or it has the wrong shape
	ErrInvalidResponse = errors.New("invalid response from classification service")
)
