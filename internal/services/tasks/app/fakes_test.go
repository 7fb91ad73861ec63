package app

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/campaignledger/sessiontasks/internal/services/tasks/domain"
	"github.com/campaignledger/sessiontasks/internal/services/tasks/render"
	"github.com/campaignledger/sessiontasks/internal/services/tasks/storage"
)

type fakeOutbox struct {
	mu         sync.Mutex
	messages   map[string]storage.OutboxMessage
	listErr    error
	markErr    error
	cleanups   []time.Time
	cleanupRet int64
}

func newFakeOutbox() *fakeOutbox {
	return &fakeOutbox{messages: map[string]storage.OutboxMessage{}}
}

func (f *fakeOutbox) Enqueue(_ context.Context, message storage.OutboxMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.messages[message.ID]; ok {
		return errors.New("duplicate id")
	}
	f.messages[message.ID] = message
	return nil
}

func (f *fakeOutbox) Get(_ context.Context, id string) (storage.OutboxMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	message, ok := f.messages[id]
	if !ok {
		return storage.OutboxMessage{}, storage.ErrNotFound
	}
	return message, nil
}

func (f *fakeOutbox) ListDue(_ context.Context, now time.Time, limit int) ([]storage.OutboxMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var due []storage.OutboxMessage
	for _, message := range f.messages {
		if message.Status != storage.StatusPending && message.Status != storage.StatusFailed {
			continue
		}
		if message.Attempts >= message.MaxAttempts || message.NextAttemptAt.After(now) {
			continue
		}
		due = append(due, message)
	}
	sort.Slice(due, func(i, j int) bool { return due[i].CreatedAt.Before(due[j].CreatedAt) })
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (f *fakeOutbox) update(id string, fn func(*storage.OutboxMessage)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return f.markErr
	}
	message, ok := f.messages[id]
	if !ok {
		return storage.ErrNotFound
	}
	message.Attempts++
	fn(&message)
	f.messages[id] = message
	return nil
}

func (f *fakeOutbox) MarkSent(_ context.Context, id string, at time.Time) error {
	return f.update(id, func(m *storage.OutboxMessage) {
		m.Status = storage.StatusSent
		m.SentAt = &at
		m.UpdatedAt = at
	})
}

func (f *fakeOutbox) MarkFailed(_ context.Context, id string, lastError string, next time.Time, at time.Time) error {
	return f.update(id, func(m *storage.OutboxMessage) {
		m.Status = storage.StatusFailed
		m.LastError = lastError
		m.NextAttemptAt = next
		m.UpdatedAt = at
	})
}

func (f *fakeOutbox) MarkDead(_ context.Context, id string, lastError string, at time.Time) error {
	return f.update(id, func(m *storage.OutboxMessage) {
		m.Status = storage.StatusDead
		m.LastError = lastError
		m.UpdatedAt = at
	})
}

func (f *fakeOutbox) Cleanup(_ context.Context, sentBefore time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleanups = append(f.cleanups, sentBefore)
	return f.cleanupRet, nil
}

var _ storage.OutboxStore = (*fakeOutbox)(nil)

type recordingDispatcher struct {
	mu    sync.Mutex
	sent  []render.Payload
	errs  []error
	calls int
}

// Send returns the next queued error, then nil once the queue is empty.
func (r *recordingDispatcher) Send(_ context.Context, payload render.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.sent = append(r.sent, payload)
	if len(r.errs) == 0 {
		return nil
	}
	err := r.errs[0]
	r.errs = r.errs[1:]
	return err
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func sampleCharacters() []domain.Character {
	return []domain.Character{
		{ID: "c1", Name: "Aria", Active: true},
		{ID: "c2", Name: "Bram", Active: true},
		{ID: "c3", Name: "Cole", Active: true},
	}
}

func sampleSelection() []domain.ParticipationEntry {
	return []domain.ParticipationEntry{
		{CharacterID: "c1", Selected: true},
		{CharacterID: "c2", Selected: true, LateArrival: true},
		{CharacterID: "c3", Selected: true},
	}
}

func int64Ptr(v int64) *int64 { return &v }
