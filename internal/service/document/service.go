package document

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/document"
	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/leave"
)

type Config struct {
	BatchSize   int
	MaxAttempts int
	// StaleAfter re-claims events left in processing by a crashed run.
	StaleAfter time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		BatchSize:   20,
		MaxAttempts: 5,
		StaleAfter:  5 * time.Minute,
	}
}

type Dispatcher struct {
	outboxRepo  document.OutboxRepository
	requestRepo leave.LeaveRequestRepository
	notifier    document.Notifier
	cfg         Config
	wake        chan struct{}
}

// NewDispatcher delivers outbox events through notifier. Kick never blocks;
// kicks arriving while one is pending are merged.
func NewDispatcher(outboxRepo document.OutboxRepository, requestRepo leave.LeaveRequestRepository, notifier document.Notifier, cfg Config) *Dispatcher {
	def := DefaultConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = def.StaleAfter
	}

	return &Dispatcher{
		outboxRepo:  outboxRepo,
		requestRepo: requestRepo,
		notifier:    notifier,
		cfg:         cfg,
		wake:        make(chan struct{}, 1),
	}
}

var _ document.Dispatcher = (*Dispatcher)(nil)

// Kick implements document.Trigger.
func (d *Dispatcher) Kick() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Wake is signalled after each Kick.
func (d *Dispatcher) Wake() <-chan struct{} {
	return d.wake
}

// DispatchPending implements document.Dispatcher.
func (d *Dispatcher) DispatchPending(ctx context.Context) (document.DispatchSummary, error) {
	var summary document.DispatchSummary

	for {
		events, err := d.outboxRepo.ClaimPending(ctx, d.cfg.BatchSize, d.cfg.StaleAfter)
		if err != nil {
			return summary, fmt.Errorf("failed to claim outbox events: %w", err)
		}
		summary.Claimed += len(events)

		failed := 0
		for _, ev := range events {
			if err := d.deliver(ctx, ev); err != nil {
				failed++
				continue
			}
			summary.Sent++
		}
		summary.Failed += failed

		// Failed events go back to pending; leave them for the next run.
		if len(events) < d.cfg.BatchSize || failed > 0 || ctx.Err() != nil {
			break
		}
	}

	if summary.Claimed > 0 {
		slog.Info("document outbox dispatched",
			"claimed", summary.Claimed,
			"sent", summary.Sent,
			"failed", summary.Failed,
		)
	}
	return summary, nil
}

// deliver never lets a webhook failure escape as more than a recorded attempt.
func (d *Dispatcher) deliver(ctx context.Context, ev document.OutboxEvent) error {
	result, err := d.notifier.Notify(ctx, ev.Payload)
	if err != nil {
		giveUp := ev.Attempts >= d.cfg.MaxAttempts
		slog.Error("document webhook failed",
			"event_id", ev.ID,
			"request_id", ev.LeaveRequestID,
			"attempt", ev.Attempts,
			"give_up", giveUp,
			"error", err,
		)
		if markErr := d.outboxRepo.MarkAttemptFailed(ctx, ev.ID, err.Error(), giveUp); markErr != nil {
			slog.Error("failed to record webhook attempt", "event_id", ev.ID, "error", markErr)
		}
		return err
	}

	var documentURL *string
	if result.DocumentURL != "" {
		documentURL = &result.DocumentURL
		if err := d.requestRepo.SetDocumentURL(ctx, ev.LeaveRequestID, result.DocumentURL); err != nil {
			slog.Error("failed to store document url", "request_id", ev.LeaveRequestID, "error", err)
		}
	}

	if err := d.outboxRepo.MarkSent(ctx, ev.ID, documentURL); err != nil {
		slog.Error("failed to mark outbox event sent", "event_id", ev.ID, "error", err)
	}
	return nil
}
