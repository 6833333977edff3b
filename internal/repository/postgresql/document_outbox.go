package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/document"
	"github.com/cmlabs-hris/eleave-backend-go/internal/pkg/database"
)

type outboxRepositoryImpl struct {
	db *database.DB
}

func NewOutboxRepository(db *database.DB) document.OutboxRepository {
	return &outboxRepositoryImpl{db: db}
}

// Enqueue implements document.OutboxRepository.
func (r *outboxRepositoryImpl) Enqueue(ctx context.Context, event document.OutboxEvent) error {
	q := GetQuerier(ctx, r.db)

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("encode outbox payload: %w", err)
	}

	query := `
		INSERT INTO document_outbox (id, leave_request_id, payload, status)
		VALUES ($1, $2, $3::jsonb, $4)`

	if _, err := q.Exec(ctx, query, event.ID, event.LeaveRequestID, string(payload), string(document.OutboxPending)); err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

// ClaimPending implements document.OutboxRepository.
func (r *outboxRepositoryImpl) ClaimPending(ctx context.Context, limit int, staleAfter time.Duration) ([]document.OutboxEvent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE document_outbox o
		SET status = 'processing', attempts = o.attempts + 1, updated_at = NOW()
		WHERE o.id IN (
			SELECT id FROM document_outbox
			WHERE status = 'pending'
			   OR (status = 'processing' AND updated_at < NOW() - make_interval(secs => $2))
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING o.id, o.leave_request_id, o.payload, o.status, o.attempts, o.last_error,
			o.document_url, o.created_at, o.updated_at, o.sent_at`

	rows, err := q.Query(ctx, query, limit, staleAfter.Seconds())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []document.OutboxEvent
	for rows.Next() {
		var (
			ev      document.OutboxEvent
			payload []byte
			status  string
		)
		if err := rows.Scan(
			&ev.ID,
			&ev.LeaveRequestID,
			&payload,
			&status,
			&ev.Attempts,
			&ev.LastError,
			&ev.DocumentURL,
			&ev.CreatedAt,
			&ev.UpdatedAt,
			&ev.SentAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &ev.Payload); err != nil {
			return nil, fmt.Errorf("decode outbox payload %s: %w", ev.ID, err)
		}
		ev.Status = document.OutboxStatus(status)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// MarkSent implements document.OutboxRepository.
func (r *outboxRepositoryImpl) MarkSent(ctx context.Context, id string, documentURL *string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE document_outbox
		SET status = 'sent', document_url = $2, last_error = NULL, sent_at = NOW(), updated_at = NOW()
		WHERE id = $1`, id, documentURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return document.ErrOutboxEventNotFound
	}
	return nil
}

// MarkAttemptFailed implements document.OutboxRepository.
func (r *outboxRepositoryImpl) MarkAttemptFailed(ctx context.Context, id string, reason string, giveUp bool) error {
	q := GetQuerier(ctx, r.db)

	status := document.OutboxPending
	if giveUp {
		status = document.OutboxFailed
	}

	tag, err := q.Exec(ctx, `
		UPDATE document_outbox
		SET status = $2, last_error = $3, updated_at = NOW()
		WHERE id = $1`, id, string(status), reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return document.ErrOutboxEventNotFound
	}
	return nil
}
