package scraper

import "errors"

var (
	// ErrFetchFailed is returned when the policy document cannot be retrieved
	ErrFetchFailed = errors.New("failed to fetch privacy policy")
)
