package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	apperrors "github.com/campaignledger/sessiontasks/internal/platform/errors"
	"github.com/campaignledger/sessiontasks/internal/random"
	"github.com/campaignledger/sessiontasks/internal/services/tasks/dispatch"
	"github.com/campaignledger/sessiontasks/internal/services/tasks/domain"
	"github.com/campaignledger/sessiontasks/internal/services/tasks/render"
	"github.com/campaignledger/sessiontasks/internal/services/tasks/storage"
)

func newTestService(t *testing.T, dispatcher dispatch.Dispatcher, outbox storage.OutboxStore) *Service {
	t.Helper()
	clock := &fixedClock{now: time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)}
	return NewService(Options{
		Dispatcher: dispatcher,
		Outbox:     outbox,
		Clock:      clock.Now,
		NewID:      func() (string, error) { return "msg-1", nil },
		NewRNG:     func() (SeededRNG, error) { return random.New(42), nil },
	})
}

func TestAssignCachesResult(t *testing.T) {
	svc := newTestService(t, nil, nil)

	if _, ok := svc.LastAssignment(); ok {
		t.Fatal("expected no cached assignment before Assign")
	}

	result, err := svc.Assign(context.Background(), AssignInput{
		Characters:   sampleCharacters(),
		Selection:    sampleSelection(),
		SessionTitle: "Session 4",
	})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if result.Seed != 42 {
		t.Fatalf("seed = %d, want 42", result.Seed)
	}
	if diff := cmp.Diff([]string{"Aria", "Cole"}, result.Assignment.Pre.Participants()); diff != "" {
		t.Fatalf("pre participants mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Aria", "Bram", "Cole", "DM"}, result.Assignment.Post.Participants()); diff != "" {
		t.Fatalf("post participants mismatch (-want +got):\n%s", diff)
	}
	if len(result.Payload.Sections) != 3 {
		t.Fatalf("sections = %d, want 3", len(result.Payload.Sections))
	}

	cached, ok := svc.LastAssignment()
	if !ok {
		t.Fatal("expected cached assignment")
	}
	if diff := cmp.Diff(result, cached); diff != "" {
		t.Fatalf("cached result mismatch (-want +got):\n%s", diff)
	}
}

func TestAssignSeedReplays(t *testing.T) {
	svc := newTestService(t, nil, nil)
	in := AssignInput{Characters: sampleCharacters(), Selection: sampleSelection(), Seed: int64Ptr(7)}

	first, err := svc.Assign(context.Background(), in)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	second, err := svc.Assign(context.Background(), in)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if first.Seed != 7 {
		t.Fatalf("seed = %d, want 7", first.Seed)
	}
	if diff := cmp.Diff(first.Assignment, second.Assignment); diff != "" {
		t.Fatalf("seeded runs differ (-first +second):\n%s", diff)
	}
}

func TestAssignFailureKeepsPreviousResult(t *testing.T) {
	svc := newTestService(t, nil, nil)
	first, err := svc.Assign(context.Background(), AssignInput{Characters: sampleCharacters(), Selection: sampleSelection()})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}

	_, err = svc.Assign(context.Background(), AssignInput{Characters: sampleCharacters()})
	if !errors.Is(err, domain.ErrNoParticipantsSelected) {
		t.Fatalf("error = %v, want ErrNoParticipantsSelected", err)
	}

	cached, ok := svc.LastAssignment()
	if !ok {
		t.Fatal("expected previous result to remain cached")
	}
	if diff := cmp.Diff(first.Assignment, cached.Assignment); diff != "" {
		t.Fatalf("cached assignment changed (-want +got):\n%s", diff)
	}
}

func TestAssignRNGError(t *testing.T) {
	svc := NewService(Options{NewRNG: func() (SeededRNG, error) { return nil, errors.New("no entropy") }})
	if _, err := svc.Assign(context.Background(), AssignInput{Characters: sampleCharacters(), Selection: sampleSelection()}); err == nil {
		t.Fatal("expected rng error")
	}
	if _, ok := svc.LastAssignment(); ok {
		t.Fatal("expected nothing cached")
	}
}

func TestLastAssignmentReturnsCopy(t *testing.T) {
	svc := newTestService(t, nil, nil)
	if _, err := svc.Assign(context.Background(), AssignInput{Characters: sampleCharacters(), Selection: sampleSelection()}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	got, _ := svc.LastAssignment()
	got.Assignment.During[0].Tasks[0] = "tampered"
	got.Payload.Sections[0].Fields[0].Value = "tampered"

	again, _ := svc.LastAssignment()
	if again.Assignment.During[0].Tasks[0] == "tampered" {
		t.Fatal("cached assignment was mutated through a returned copy")
	}
	if again.Payload.Sections[0].Fields[0].Value == "tampered" {
		t.Fatal("cached payload was mutated through a returned copy")
	}
}

func TestSendWithoutAssignment(t *testing.T) {
	svc := newTestService(t, &recordingDispatcher{}, newFakeOutbox())

	if err := svc.Send(context.Background()); !errors.Is(err, ErrNoAssignment) {
		t.Fatalf("send error = %v, want ErrNoAssignment", err)
	}
	if _, err := svc.Enqueue(context.Background()); !errors.Is(err, ErrNoAssignment) {
		t.Fatalf("enqueue error = %v, want ErrNoAssignment", err)
	}
}

func TestSendRequiresDispatcher(t *testing.T) {
	svc := newTestService(t, nil, nil)
	if _, err := svc.Assign(context.Background(), AssignInput{Characters: sampleCharacters(), Selection: sampleSelection()}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := svc.Send(context.Background()); err == nil {
		t.Fatal("expected missing dispatcher error")
	}
}

func TestDispatchFailureDoesNotInvalidateAssignment(t *testing.T) {
	dispatcher := &recordingDispatcher{errs: []error{errors.New("connection reset")}}
	svc := newTestService(t, dispatcher, nil)

	result, err := svc.Assign(context.Background(), AssignInput{Characters: sampleCharacters(), Selection: sampleSelection()})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}

	err = svc.Send(context.Background())
	if !errors.Is(err, dispatch.ErrDispatchFailed) {
		t.Fatalf("send error = %v, want ErrDispatchFailed", err)
	}
	if !apperrors.CodeOf(err).Retryable() {
		t.Fatalf("dispatch failure should be retryable, code %s", apperrors.CodeOf(err))
	}

	cached, ok := svc.LastAssignment()
	if !ok {
		t.Fatal("assignment discarded after dispatch failure")
	}
	if diff := cmp.Diff(result.Assignment, cached.Assignment); diff != "" {
		t.Fatalf("assignment changed after failure (-want +got):\n%s", diff)
	}

	if err := svc.Resend(context.Background()); err != nil {
		t.Fatalf("resend: %v", err)
	}
	if dispatcher.calls != 2 {
		t.Fatalf("dispatch calls = %d, want 2", dispatcher.calls)
	}
	if diff := cmp.Diff(dispatcher.sent[0], dispatcher.sent[1]); diff != "" {
		t.Fatalf("resend payload differs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(result.Payload, dispatcher.sent[1]); diff != "" {
		t.Fatalf("resend payload differs from computed payload (-want +got):\n%s", diff)
	}
}

func TestEnqueueStoresPayload(t *testing.T) {
	outbox := newFakeOutbox()
	svc := newTestService(t, nil, outbox)
	result, err := svc.Assign(context.Background(), AssignInput{Characters: sampleCharacters(), Selection: sampleSelection()})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}

	id, err := svc.Enqueue(context.Background())
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if id != "msg-1" {
		t.Fatalf("id = %q, want msg-1", id)
	}

	stored, err := outbox.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != storage.StatusPending || stored.Kind != storage.KindSessionTasks {
		t.Fatalf("unexpected stored message: %+v", stored)
	}
	if stored.MaxAttempts != defaultMaxAttempts {
		t.Fatalf("max attempts = %d, want %d", stored.MaxAttempts, defaultMaxAttempts)
	}

	var payload render.Payload
	if err := json.Unmarshal([]byte(stored.PayloadJSON), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if diff := cmp.Diff(result.Payload, payload); diff != "" {
		t.Fatalf("stored payload mismatch (-want +got):\n%s", diff)
	}
}

func TestEnqueueRequiresOutbox(t *testing.T) {
	svc := newTestService(t, nil, nil)
	if _, err := svc.Assign(context.Background(), AssignInput{Characters: sampleCharacters(), Selection: sampleSelection()}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := svc.Enqueue(context.Background()); err == nil {
		t.Fatal("expected missing outbox error")
	}
}
