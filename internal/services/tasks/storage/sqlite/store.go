package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/campaignledger/sessiontasks/internal/platform/storage/sqlitemigrate"
	"github.com/campaignledger/sessiontasks/internal/platform/timeouts"
	"github.com/campaignledger/sessiontasks/internal/services/tasks/storage"
	"github.com/campaignledger/sessiontasks/internal/services/tasks/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed notification outbox persistence.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens an outbox SQLite store at path and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.StoreOpen)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := sqlitemigrate.ApplyFS(ctx, sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// Enqueue persists one new outbox message.
func (s *Store) Enqueue(ctx context.Context, message storage.OutboxMessage) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	normalized, err := normalizeMessage(message)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO notification_outbox (
	id,
	kind,
	payload_json,
	status,
	attempts,
	max_attempts,
	last_error,
	created_at,
	updated_at,
	next_attempt_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		normalized.ID,
		normalized.Kind,
		normalized.PayloadJSON,
		string(normalized.Status),
		normalized.Attempts,
		normalized.MaxAttempts,
		normalized.LastError,
		toMillis(normalized.CreatedAt),
		toMillis(normalized.UpdatedAt),
		toMillis(normalized.NextAttemptAt),
	)
	if err != nil {
		return fmt.Errorf("enqueue outbox message: %w", err)
	}
	return nil
}

// Get loads one outbox message by id.
func (s *Store) Get(ctx context.Context, id string) (storage.OutboxMessage, error) {
	if err := s.ready(ctx); err != nil {
		return storage.OutboxMessage{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx, selectColumns+`
FROM notification_outbox
WHERE id = ?
`, strings.TrimSpace(id))
	message, err := scanMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.OutboxMessage{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.OutboxMessage{}, fmt.Errorf("get outbox message: %w", err)
	}
	return message, nil
}

// ListDue lists oldest-first messages that are ready for another attempt.
func (s *Store) ListDue(ctx context.Context, now time.Time, limit int) ([]storage.OutboxMessage, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx, selectColumns+`
FROM notification_outbox
WHERE status IN ('pending', 'failed')
	AND attempts < max_attempts
	AND next_attempt_at <= ?
ORDER BY created_at ASC, id ASC
LIMIT ?
`, toMillis(now), limit)
	if err != nil {
		return nil, fmt.Errorf("list due outbox messages: %w", err)
	}
	defer rows.Close()

	messages := make([]storage.OutboxMessage, 0, limit)
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan outbox message: %w", err)
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox messages: %w", err)
	}
	return messages, nil
}

// MarkSent records a successful delivery.
func (s *Store) MarkSent(ctx context.Context, id string, at time.Time) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.update(ctx, "mark outbox message sent", `
UPDATE notification_outbox
SET status = 'sent',
	attempts = attempts + 1,
	last_error = '',
	sent_at = ?,
	updated_at = ?
WHERE id = ?
`, toMillis(at), toMillis(at), strings.TrimSpace(id))
}

// MarkFailed records a failed attempt and schedules the next one.
func (s *Store) MarkFailed(ctx context.Context, id string, lastError string, nextAttemptAt time.Time, at time.Time) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.update(ctx, "mark outbox message failed", `
UPDATE notification_outbox
SET status = 'failed',
	attempts = attempts + 1,
	last_error = ?,
	next_attempt_at = ?,
	updated_at = ?
WHERE id = ?
`, strings.TrimSpace(lastError), toMillis(nextAttemptAt), toMillis(at), strings.TrimSpace(id))
}

// MarkDead records a final failed attempt.
func (s *Store) MarkDead(ctx context.Context, id string, lastError string, at time.Time) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.update(ctx, "mark outbox message dead", `
UPDATE notification_outbox
SET status = 'dead',
	attempts = attempts + 1,
	last_error = ?,
	updated_at = ?
WHERE id = ?
`, strings.TrimSpace(lastError), toMillis(at), strings.TrimSpace(id))
}

// Cleanup deletes delivered messages sent before sentBefore.
func (s *Store) Cleanup(ctx context.Context, sentBefore time.Time) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	result, err := s.sqlDB.ExecContext(ctx, `
DELETE FROM notification_outbox
WHERE status = 'sent' AND sent_at < ?
`, toMillis(sentBefore))
	if err != nil {
		return 0, fmt.Errorf("cleanup outbox: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cleanup outbox rows affected: %w", err)
	}
	return deleted, nil
}

func (s *Store) update(ctx context.Context, op string, query string, args ...any) error {
	result, err := s.sqlDB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

const selectColumns = `
SELECT
	id,
	kind,
	payload_json,
	status,
	attempts,
	max_attempts,
	last_error,
	created_at,
	updated_at,
	next_attempt_at,
	sent_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (storage.OutboxMessage, error) {
	var (
		message       storage.OutboxMessage
		status        string
		createdAt     int64
		updatedAt     int64
		nextAttemptAt int64
		sentAt        sql.NullInt64
	)
	if err := row.Scan(
		&message.ID,
		&message.Kind,
		&message.PayloadJSON,
		&status,
		&message.Attempts,
		&message.MaxAttempts,
		&message.LastError,
		&createdAt,
		&updatedAt,
		&nextAttemptAt,
		&sentAt,
	); err != nil {
		return storage.OutboxMessage{}, err
	}
	message.Status = storage.Status(status)
	message.CreatedAt = fromMillis(createdAt)
	message.UpdatedAt = fromMillis(updatedAt)
	message.NextAttemptAt = fromMillis(nextAttemptAt)
	if sentAt.Valid {
		value := fromMillis(sentAt.Int64)
		message.SentAt = &value
	}
	return message, nil
}

func normalizeMessage(message storage.OutboxMessage) (storage.OutboxMessage, error) {
	message.ID = strings.TrimSpace(message.ID)
	message.Kind = strings.TrimSpace(message.Kind)
	message.PayloadJSON = strings.TrimSpace(message.PayloadJSON)
	message.LastError = strings.TrimSpace(message.LastError)
	if message.ID == "" {
		return storage.OutboxMessage{}, fmt.Errorf("message id is required")
	}
	if message.Kind == "" {
		return storage.OutboxMessage{}, fmt.Errorf("message kind is required")
	}
	if message.PayloadJSON == "" {
		return storage.OutboxMessage{}, fmt.Errorf("message payload is required")
	}
	if message.MaxAttempts <= 0 {
		return storage.OutboxMessage{}, fmt.Errorf("max attempts must be greater than zero")
	}
	if message.Status == "" {
		message.Status = storage.StatusPending
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	if message.UpdatedAt.IsZero() {
		message.UpdatedAt = message.CreatedAt
	}
	if message.NextAttemptAt.IsZero() {
		message.NextAttemptAt = message.CreatedAt
	}
	return message, nil
}

var _ storage.OutboxStore = (*Store)(nil)
