package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/campaignledger/sessiontasks/internal/platform/logging"
	"github.com/campaignledger/sessiontasks/internal/services/tasks/dispatch"
	"github.com/campaignledger/sessiontasks/internal/services/tasks/render"
	"github.com/campaignledger/sessiontasks/internal/services/tasks/storage"
)

const (
	defaultPollInterval  = 30 * time.Second
	defaultBatchSize     = 20
	defaultRetryBackoff  = 5 * time.Minute
	defaultRetryMaxDelay = time.Hour
	defaultRetention     = 7 * 24 * time.Hour
)

// DeliveryConfig controls the outbox delivery loop.
type DeliveryConfig struct {
	PollInterval time.Duration
	BatchSize    int
	// MaxAttempts applies to messages that were stored without their own limit.
	MaxAttempts   int
	RetryBackoff  time.Duration
	RetryMaxDelay time.Duration
	// Retention is how long sent messages are kept. Negative disables cleanup.
	Retention time.Duration
}

func (c DeliveryConfig) normalized() DeliveryConfig {
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = defaultRetryBackoff
	}
	if c.RetryMaxDelay <= 0 {
		c.RetryMaxDelay = defaultRetryMaxDelay
	}
	if c.RetryMaxDelay < c.RetryBackoff {
		c.RetryMaxDelay = c.RetryBackoff
	}
	if c.Retention == 0 {
		c.Retention = defaultRetention
	}
	return c
}

// DeliveryStats summarizes one delivery pass.
type DeliveryStats struct {
	Sent    int
	Failed  int
	Dead    int
	Cleaned int64
}

// Deliverer drains due outbox messages through a dispatcher.
type Deliverer struct {
	store      storage.OutboxStore
	dispatcher dispatch.Dispatcher
	cfg        DeliveryConfig
	logger     *zap.Logger
	clock      func() time.Time
	tracer     trace.Tracer
}

// NewDeliverer builds a delivery loop. A nil clock uses time.Now.
func NewDeliverer(store storage.OutboxStore, dispatcher dispatch.Dispatcher, cfg DeliveryConfig, logger *zap.Logger, clock func() time.Time) *Deliverer {
	if clock == nil {
		clock = time.Now
	}
	return &Deliverer{
		store:      store,
		dispatcher: dispatcher,
		cfg:        cfg.normalized(),
		logger:     logging.OrNop(logger),
		clock:      clock,
		tracer:     otel.Tracer(tracerName),
	}
}

// Run polls until ctx is cancelled. Pass errors are logged, not returned.
func (d *Deliverer) Run(ctx context.Context) error {
	if d.store == nil || d.dispatcher == nil {
		return fmt.Errorf("deliverer requires a store and a dispatcher")
	}
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := d.RunOnce(ctx); err != nil && ctx.Err() == nil {
			d.logger.Error("outbox delivery pass failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce delivers one batch of due messages and prunes old sent rows.
func (d *Deliverer) RunOnce(ctx context.Context) (DeliveryStats, error) {
	ctx, span := d.tracer.Start(ctx, "tasks.outbox.deliver")
	defer span.End()

	var stats DeliveryStats
	now := d.clock().UTC()
	due, err := d.store.ListDue(ctx, now, d.cfg.BatchSize)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list due")
		return stats, fmt.Errorf("list due messages: %w", err)
	}

	for _, message := range due {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		status, err := d.deliver(ctx, message)
		if err != nil {
			return stats, err
		}
		switch status {
		case storage.StatusSent:
			stats.Sent++
		case storage.StatusFailed:
			stats.Failed++
		case storage.StatusDead:
			stats.Dead++
		}
	}

	if d.cfg.Retention > 0 {
		cleaned, err := d.store.Cleanup(ctx, now.Add(-d.cfg.Retention))
		if err != nil {
			return stats, fmt.Errorf("cleanup sent messages: %w", err)
		}
		stats.Cleaned = cleaned
	}

	span.SetAttributes(
		attribute.Int("outbox.sent", stats.Sent),
		attribute.Int("outbox.failed", stats.Failed),
		attribute.Int("outbox.dead", stats.Dead),
	)
	return stats, nil
}

// deliver sends one message and records the outcome. Only store errors are
// returned; a dispatch failure is an outcome.
func (d *Deliverer) deliver(ctx context.Context, message storage.OutboxMessage) (storage.Status, error) {
	logger := d.logger.With(zap.String("id", message.ID), zap.Int("attempt", message.Attempts+1))

	var payload render.Payload
	if err := json.Unmarshal([]byte(message.PayloadJSON), &payload); err != nil {
		logger.Error("outbox payload is unreadable", zap.Error(err))
		if markErr := d.store.MarkDead(ctx, message.ID, "decode payload: "+err.Error(), d.clock().UTC()); markErr != nil {
			return "", fmt.Errorf("mark %s dead: %w", message.ID, markErr)
		}
		return storage.StatusDead, nil
	}

	sendErr := d.dispatcher.Send(ctx, payload)
	at := d.clock().UTC()
	if sendErr == nil {
		if err := d.store.MarkSent(ctx, message.ID, at); err != nil {
			return "", fmt.Errorf("mark %s sent: %w", message.ID, err)
		}
		logger.Info("outbox message delivered")
		return storage.StatusSent, nil
	}

	maxAttempts := message.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = d.cfg.MaxAttempts
	}
	if dispatch.IsPermanent(sendErr) || message.Attempts+1 >= maxAttempts {
		if err := d.store.MarkDead(ctx, message.ID, sendErr.Error(), at); err != nil {
			return "", fmt.Errorf("mark %s dead: %w", message.ID, err)
		}
		logger.Warn("outbox message abandoned", zap.Error(sendErr))
		return storage.StatusDead, nil
	}

	next := at.Add(d.RetryDelay(message.Attempts))
	if err := d.store.MarkFailed(ctx, message.ID, sendErr.Error(), next, at); err != nil {
		return "", fmt.Errorf("mark %s failed: %w", message.ID, err)
	}
	logger.Warn("outbox message will be retried", zap.Time("next_attempt_at", next), zap.Error(sendErr))
	return storage.StatusFailed, nil
}

// RetryDelay returns the wait after a failure when attempts deliveries had
// already been tried: RetryBackoff * 2^attempts, capped at RetryMaxDelay.
func (d *Deliverer) RetryDelay(attempts int) time.Duration {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.cfg.RetryBackoff
	b.MaxInterval = d.cfg.RetryMaxDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0

	delay := b.NextBackOff()
	for i := 0; i < attempts && delay < d.cfg.RetryMaxDelay; i++ {
		delay = b.NextBackOff()
	}
	return delay
}
