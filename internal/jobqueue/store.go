package jobqueue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"matchvault/internal/config"
)

// claimPollInterval is how often Receive re-checks for a visible message
// inside its long-poll window.
const claimPollInterval = 500 * time.Millisecond

// Store manages queue persistence backed by SQLite.
type Store struct {
	db          *sql.DB
	path        string
	receiveWait time.Duration
	visibility  time.Duration

	now func() time.Time
}

// Option configures optional Store behavior.
type Option func(*Store)

// WithClock overrides the time source (tests only).
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open initializes or connects to the queue database and applies migrations.
func Open(cfg *config.Config, opts ...Option) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.QueueDBPath()
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create queue directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{
		db:          db,
		path:        dbPath,
		receiveWait: cfg.ReceiveWait(),
		visibility:  cfg.VisibilityTimeout(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}

	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the queue database location.
func (s *Store) Path() string {
	return s.path
}

// Send enqueues a message body and returns the assigned message ID.
func (s *Store) Send(ctx context.Context, body string) (string, error) {
	if strings.TrimSpace(body) == "" {
		return "", ErrEmptyBody
	}
	now := s.now().UTC()
	id := uuid.NewString()
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO messages (id, body, enqueued_at, visible_at) VALUES (?, ?, ?, ?)`,
		id,
		body,
		now.Format(time.RFC3339Nano),
		now.UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("insert message: %w", err)
	}
	return id, nil
}

// Receive long-polls for at most one visible message. The claimed message is
// hidden from other consumers until the visibility timeout lapses; the
// returned receipt token is the only handle that can delete this delivery.
// Returns (nil, nil) when the wait window closes without a message.
func (s *Store) Receive(ctx context.Context) (*Message, error) {
	deadline := time.Now().Add(s.receiveWait)
	for {
		msg, err := s.claimOne(ctx)
		if err != nil {
			return nil, err
		}
		if msg != nil {
			return msg, nil
		}
		if !time.Now().Before(deadline) {
			return nil, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(claimPollInterval):
		}
	}
}

func (s *Store) claimOne(ctx context.Context) (*Message, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin claim: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := s.now().UTC()
	row := tx.QueryRowContext(
		ctx,
		`SELECT seq, id, body, enqueued_at, receive_count
         FROM messages WHERE visible_at <= ? ORDER BY seq LIMIT 1`,
		now.UnixNano(),
	)

	var (
		seq          int64
		id           string
		body         string
		enqueuedRaw  string
		receiveCount int
	)
	if err := row.Scan(&seq, &id, &body, &enqueuedRaw, &receiveCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select visible message: %w", err)
	}

	receipt := uuid.NewString()
	res, err := tx.ExecContext(
		ctx,
		`UPDATE messages
         SET visible_at = ?, receipt_token = ?, receive_count = receive_count + 1
         WHERE seq = ?`,
		now.Add(s.visibility).UnixNano(),
		receipt,
		seq,
	)
	if err != nil {
		return nil, fmt.Errorf("claim message: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil || affected == 0 {
		if err != nil {
			return nil, fmt.Errorf("claim rows affected: %w", err)
		}
		return nil, nil
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit claim: %w", err)
	}

	msg := &Message{
		ID:           id,
		Body:         body,
		ReceiptToken: receipt,
		ReceiveCount: receiveCount + 1,
	}
	if enqueued, err := time.Parse(time.RFC3339Nano, enqueuedRaw); err == nil {
		msg.EnqueuedAt = enqueued
	}
	return msg, nil
}

// Delete acknowledges a delivery by receipt token, removing the message.
func (s *Store) Delete(ctx context.Context, receiptToken string) error {
	if strings.TrimSpace(receiptToken) == "" {
		return ErrReceiptNotFound
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE receipt_token = ?`, receiptToken)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrReceiptNotFound
	}
	return nil
}

// DeadLetter parks the delivery identified by receiptToken in the
// dead-letter table and removes it from the live queue.
func (s *Store) DeadLetter(ctx context.Context, receiptToken, reason string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin dead-letter: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	row := tx.QueryRowContext(
		ctx,
		`SELECT id, body, enqueued_at FROM messages WHERE receipt_token = ?`,
		receiptToken,
	)
	var id, body, enqueuedRaw string
	if err := row.Scan(&id, &body, &enqueuedRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrReceiptNotFound
		}
		return fmt.Errorf("select for dead-letter: %w", err)
	}

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO dead_letters (id, body, reason, enqueued_at, failed_at) VALUES (?, ?, ?, ?, ?)`,
		id, body, reason, enqueuedRaw, s.now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("insert dead letter: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE receipt_token = ?`, receiptToken); err != nil {
		return fmt.Errorf("remove dead-lettered message: %w", err)
	}
	return tx.Commit()
}

var _ Gateway = (*Store)(nil)
