package notify

import "errors"

var (
	// ErrMissingWebhookURL is returned when no webhook URL is configured
	ErrMissingWebhookURL = errors.New("webhook URL is required")
	// ErrNotificationFailed is returned when the webhook request fails
	ErrNotificationFailed = errors.New("notification failed")
	// ErrUnexpectedStatus is returned when the webhook responds with a non-200 status
	ErrUnexpectedStatus = errors.New("unexpected webhook response status")
)
