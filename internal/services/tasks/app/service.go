// Package app wires the task-assignment engine to rendering, dispatch, and
// the notification outbox.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	apperrors "github.com/campaignledger/sessiontasks/internal/platform/errors"
	"github.com/campaignledger/sessiontasks/internal/platform/id"
	"github.com/campaignledger/sessiontasks/internal/platform/logging"
	"github.com/campaignledger/sessiontasks/internal/random"
	"github.com/campaignledger/sessiontasks/internal/services/tasks/dispatch"
	"github.com/campaignledger/sessiontasks/internal/services/tasks/domain"
	"github.com/campaignledger/sessiontasks/internal/services/tasks/render"
	"github.com/campaignledger/sessiontasks/internal/services/tasks/storage"
)

const tracerName = "github.com/campaignledger/sessiontasks/internal/services/tasks/app"

const defaultMaxAttempts = 8

// ErrNoAssignment is returned by Send, Resend, and Enqueue before any
// successful Assign.
var ErrNoAssignment = apperrors.New(apperrors.CodeNoAssignmentComputed, "no assignment computed")

// SeededRNG is a domain RNG that can report its seed for replay.
type SeededRNG interface {
	domain.RNG
	Seed() int64
}

// Options configures a Service. Every field is optional.
type Options struct {
	Dispatcher dispatch.Dispatcher
	Outbox     storage.OutboxStore
	Localizer  render.Localizer
	Logger     *zap.Logger
	Clock      func() time.Time
	NewID      func() (string, error)
	NewRNG     func() (SeededRNG, error)
	// MaxAttempts is stamped on enqueued outbox messages.
	MaxAttempts int
	WithFooters bool
}

// AssignInput is one "assign tasks" action.
type AssignInput struct {
	Characters   []domain.Character
	Selection    []domain.ParticipationEntry
	SessionTitle string
	// Seed replays a previous run when set.
	Seed *int64
}

// Result is a computed assignment and the payload rendered from it.
type Result struct {
	Assignment domain.Assignment
	Payload    render.Payload
	Seed       int64
	ComputedAt time.Time
}

func (r Result) clone() Result {
	r.Assignment = r.Assignment.Clone()
	r.Payload = r.Payload.Clone()
	return r
}

// Service computes assignments and delivers the last one. Assign is pure
// apart from caching its result; delivery never touches the cached result.
type Service struct {
	dispatcher  dispatch.Dispatcher
	outbox      storage.OutboxStore
	localizer   render.Localizer
	logger      *zap.Logger
	clock       func() time.Time
	newID       func() (string, error)
	newRNG      func() (SeededRNG, error)
	maxAttempts int
	withFooters bool
	tracer      trace.Tracer

	mu   sync.RWMutex
	last *Result
}

// NewService builds a Service from options.
func NewService(opts Options) *Service {
	s := &Service{
		dispatcher:  opts.Dispatcher,
		outbox:      opts.Outbox,
		localizer:   opts.Localizer,
		logger:      logging.OrNop(opts.Logger),
		clock:       opts.Clock,
		newID:       opts.NewID,
		newRNG:      opts.NewRNG,
		maxAttempts: opts.MaxAttempts,
		withFooters: opts.WithFooters,
		tracer:      otel.Tracer(tracerName),
	}
	if s.localizer == nil {
		s.localizer = render.NewLocalizer(language.English)
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.newID == nil {
		s.newID = id.NewID
	}
	if s.newRNG == nil {
		s.newRNG = func() (SeededRNG, error) { return random.NewFromEntropy() }
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = defaultMaxAttempts
	}
	return s
}

// Assign computes a fresh assignment and caches it as the last result. A
// failed attempt leaves the previous result in place.
func (s *Service) Assign(ctx context.Context, in AssignInput) (Result, error) {
	_, span := s.tracer.Start(ctx, "tasks.assign",
		trace.WithAttributes(attribute.Int("tasks.selection", len(in.Selection))),
	)
	defer span.End()

	rng, err := s.rng(in.Seed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "seed rng")
		return Result{}, err
	}

	assignment, err := domain.NewEngine(rng).Assign(in.Characters, in.Selection)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "assign")
		s.logger.Info("assignment rejected", zap.String("code", string(apperrors.CodeOf(err))))
		return Result{}, err
	}

	result := Result{
		Assignment: assignment,
		Payload: render.Format(s.localizer, render.Input{
			Assignment:   assignment,
			SessionTitle: in.SessionTitle,
			WithFooters:  s.withFooters,
		}),
		Seed:       rng.Seed(),
		ComputedAt: s.clock().UTC(),
	}
	span.SetAttributes(
		attribute.Int64("tasks.seed", result.Seed),
		attribute.Int("tasks.participants", len(assignment.During)),
	)

	s.mu.Lock()
	cached := result.clone()
	s.last = &cached
	s.mu.Unlock()

	s.logger.Info("tasks assigned",
		zap.Int64("seed", result.Seed),
		zap.Int("pre", len(assignment.Pre)),
		zap.Int("during", len(assignment.During)),
		zap.Int("post", len(assignment.Post)),
	)
	return result, nil
}

func (s *Service) rng(seed *int64) (SeededRNG, error) {
	if seed != nil {
		return random.New(*seed), nil
	}
	rng, err := s.newRNG()
	if err != nil {
		return nil, fmt.Errorf("seed rng: %w", err)
	}
	return rng, nil
}

// LastAssignment returns a copy of the last successful result.
func (s *Service) LastAssignment() (Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return Result{}, false
	}
	return s.last.clone(), true
}

// Send dispatches the cached payload.
func (s *Service) Send(ctx context.Context) error {
	return s.deliver(ctx, "tasks.send")
}

// Resend dispatches the cached payload again. The assignment is not
// recomputed.
func (s *Service) Resend(ctx context.Context) error {
	return s.deliver(ctx, "tasks.resend")
}

func (s *Service) deliver(ctx context.Context, op string) error {
	ctx, span := s.tracer.Start(ctx, op)
	defer span.End()

	if s.dispatcher == nil {
		return fmt.Errorf("%s: dispatcher is not configured", op)
	}
	last, ok := s.LastAssignment()
	if !ok {
		return ErrNoAssignment
	}

	if err := s.dispatcher.Send(ctx, last.Payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dispatch failed")
		s.logger.Warn("task notification not delivered",
			zap.String("op", op),
			zap.Int64("seed", last.Seed),
			zap.Error(err),
		)
		if apperrors.CodeOf(err) == apperrors.CodeNotificationDispatchFailed {
			return err
		}
		return dispatch.Failed(err)
	}
	s.logger.Info("task notification delivered", zap.String("op", op), zap.Int64("seed", last.Seed))
	return nil
}

// Enqueue stores the cached payload in the outbox and returns the message ID.
func (s *Service) Enqueue(ctx context.Context) (string, error) {
	ctx, span := s.tracer.Start(ctx, "tasks.enqueue")
	defer span.End()

	if s.outbox == nil {
		return "", fmt.Errorf("enqueue: outbox is not configured")
	}
	last, ok := s.LastAssignment()
	if !ok {
		return "", ErrNoAssignment
	}

	body, err := json.Marshal(last.Payload)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	messageID, err := s.newID()
	if err != nil {
		return "", err
	}
	now := s.clock().UTC()
	message := storage.OutboxMessage{
		ID:            strings.TrimSpace(messageID),
		Kind:          storage.KindSessionTasks,
		PayloadJSON:   string(body),
		Status:        storage.StatusPending,
		MaxAttempts:   s.maxAttempts,
		CreatedAt:     now,
		UpdatedAt:     now,
		NextAttemptAt: now,
	}
	if err := s.outbox.Enqueue(ctx, message); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "enqueue failed")
		return "", fmt.Errorf("enqueue notification: %w", err)
	}
	span.SetAttributes(attribute.String("outbox.id", message.ID))
	s.logger.Info("task notification queued", zap.String("id", message.ID), zap.Int64("seed", last.Seed))
	return message.ID, nil
}
