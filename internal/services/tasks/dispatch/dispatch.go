// Package dispatch delivers rendered task notifications to a chat channel.
//
// The assignment engine never calls a dispatcher directly; callers hand it a
// payload that was already formatted, so a failed delivery can be retried
// with the exact same bytes.
package dispatch

import (
	"context"
	"errors"

	apperrors "github.com/campaignledger/sessiontasks/internal/platform/errors"
	"github.com/campaignledger/sessiontasks/internal/services/tasks/render"
)

// ErrDispatchFailed matches any notification dispatch failure via errors.Is.
var ErrDispatchFailed = apperrors.New(apperrors.CodeNotificationDispatchFailed, "notification dispatch failed")

// Dispatcher sends one payload and reports success or failure.
type Dispatcher interface {
	Send(ctx context.Context, payload render.Payload) error
}

// Func adapts a function to Dispatcher.
type Func func(ctx context.Context, payload render.Payload) error

// Send calls f.
func (f Func) Send(ctx context.Context, payload render.Payload) error {
	return f(ctx, payload)
}

// Failed wraps cause as a notification dispatch error.
func Failed(cause error) error {
	return apperrors.Wrap(apperrors.CodeNotificationDispatchFailed, "dispatch notification", cause)
}

type permanentError struct {
	cause error
}

func (e permanentError) Error() string {
	if e.cause == nil {
		return "permanent error"
	}
	return e.cause.Error()
}

func (e permanentError) Unwrap() error {
	return e.cause
}

// Permanent marks a dispatch failure as one that resending cannot fix.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{cause: err}
}

// IsPermanent reports whether err was explicitly marked as non-retryable.
func IsPermanent(err error) bool {
	var target permanentError
	return errors.As(err, &target)
}
