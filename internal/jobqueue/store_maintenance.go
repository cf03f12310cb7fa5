package jobqueue

import (
	"context"
	"fmt"
	"time"
)

// List returns every live message ordered by enqueue sequence. In-flight
// deliveries are included with their current receive count.
func (s *Store) List(ctx context.Context) ([]*Message, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, body, enqueued_at, receive_count, COALESCE(receipt_token, '')
         FROM messages ORDER BY seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		var (
			msg         Message
			enqueuedRaw string
		)
		if err := rows.Scan(&msg.ID, &msg.Body, &enqueuedRaw, &msg.ReceiveCount, &msg.ReceiptToken); err != nil {
			return nil, err
		}
		if enqueued, err := time.Parse(time.RFC3339Nano, enqueuedRaw); err == nil {
			msg.EnqueuedAt = enqueued
		}
		messages = append(messages, &msg)
	}
	return messages, rows.Err()
}

// ListDeadLetters returns parked payloads ordered by failure time.
func (s *Store) ListDeadLetters(ctx context.Context) ([]*DeadLetter, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, body, COALESCE(reason, ''), enqueued_at, failed_at FROM dead_letters ORDER BY seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("list dead letters: %w", err)
	}
	defer rows.Close()

	var letters []*DeadLetter
	for rows.Next() {
		var (
			letter      DeadLetter
			enqueuedRaw string
			failedRaw   string
		)
		if err := rows.Scan(&letter.ID, &letter.Body, &letter.Reason, &enqueuedRaw, &failedRaw); err != nil {
			return nil, err
		}
		if enqueued, err := time.Parse(time.RFC3339Nano, enqueuedRaw); err == nil {
			letter.EnqueuedAt = enqueued
		}
		if failed, err := time.Parse(time.RFC3339Nano, failedRaw); err == nil {
			letter.FailedAt = failed
		}
		letters = append(letters, &letter)
	}
	return letters, rows.Err()
}

// QueueStats counts visible, in-flight, and dead-lettered messages.
func (s *Store) QueueStats(ctx context.Context) (Stats, error) {
	var stats Stats
	now := s.now().UTC().UnixNano()

	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM messages WHERE visible_at <= ?`, now)
	if err := row.Scan(&stats.Visible); err != nil {
		return Stats{}, fmt.Errorf("count visible: %w", err)
	}
	row = s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM messages WHERE visible_at > ?`, now)
	if err := row.Scan(&stats.InFlight); err != nil {
		return Stats{}, fmt.Errorf("count in-flight: %w", err)
	}
	row = s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM dead_letters`)
	if err := row.Scan(&stats.DeadLetter); err != nil {
		return Stats{}, fmt.Errorf("count dead letters: %w", err)
	}
	return stats, nil
}

// RedriveDeadLetters moves every parked payload back onto the live queue and
// returns how many were requeued.
func (s *Store) RedriveDeadLetters(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin redrive: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := s.now().UTC()
	res, err := tx.ExecContext(
		ctx,
		`INSERT INTO messages (id, body, enqueued_at, visible_at)
         SELECT id, body, ?, ? FROM dead_letters`,
		now.Format(time.RFC3339Nano),
		now.UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("requeue dead letters: %w", err)
	}
	moved, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM dead_letters`); err != nil {
		return 0, fmt.Errorf("clear dead letters: %w", err)
	}
	return moved, tx.Commit()
}

// Clear removes all live messages from the queue.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM messages`)
	if err != nil {
		return 0, fmt.Errorf("clear queue: %w", err)
	}
	return res.RowsAffected()
}
