package document

import (
	"context"
	"time"
)

type OutboxRepository interface {
	Enqueue(ctx context.Context, event OutboxEvent) error
	// ClaimPending moves up to limit pending events to processing and returns them.
	// Events stuck in processing longer than staleAfter are claimed again.
	ClaimPending(ctx context.Context, limit int, staleAfter time.Duration) ([]OutboxEvent, error)
	MarkSent(ctx context.Context, id string, documentURL *string) error
	MarkAttemptFailed(ctx context.Context, id string, reason string, giveUp bool) error
}
