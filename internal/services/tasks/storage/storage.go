// Package storage defines the notification outbox persistence boundary.
//
// The outbox holds payloads that were already rendered. Assignments are never
// stored; a queued message is resent byte for byte.
package storage

import (
	"context"
	"time"

	apperrors "github.com/campaignledger/sessiontasks/internal/platform/errors"
)

// KindSessionTasks identifies a rendered task-assignment notification.
const KindSessionTasks = "session.tasks.assigned"

// ErrNotFound indicates an outbox message was not found.
var ErrNotFound = apperrors.New(apperrors.CodeOutboxMessageNotFound, "outbox message not found")

// Status is the delivery state of one outbox message.
type Status string

const (
	// StatusPending has not been attempted yet.
	StatusPending Status = "pending"
	// StatusFailed failed at least once and will be retried.
	StatusFailed Status = "failed"
	// StatusSent was delivered.
	StatusSent Status = "sent"
	// StatusDead exhausted its attempts.
	StatusDead Status = "dead"
)

// OutboxMessage is one durable notification awaiting delivery.
type OutboxMessage struct {
	ID            string
	Kind          string
	PayloadJSON   string
	Status        Status
	Attempts      int
	MaxAttempts   int
	LastError     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	NextAttemptAt time.Time
	SentAt        *time.Time // nil until delivered
}

// OutboxStore persists notification outbox messages.
type OutboxStore interface {
	Enqueue(ctx context.Context, message OutboxMessage) error
	Get(ctx context.Context, id string) (OutboxMessage, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]OutboxMessage, error)
	MarkSent(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id string, lastError string, nextAttemptAt time.Time, at time.Time) error
	MarkDead(ctx context.Context, id string, lastError string, at time.Time) error
	Cleanup(ctx context.Context, sentBefore time.Time) (int64, error)
}
