package document

import "errors"

var (
	ErrWebhookNotConfigured = errors.New("document webhook url is not configured")
	ErrWebhookRejected      = errors.New("document webhook reported failure")
	ErrOutboxEventNotFound  = errors.New("outbox event not found")
)
