// Package errors provides structured error handling with i18n support.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Roster errors
	CodeNoParticipantsSelected Code = "NO_PARTICIPANTS_SELECTED"
	CodeUnknownCharacter       Code = "UNKNOWN_CHARACTER"
	CodeInactiveCharacter      Code = "INACTIVE_CHARACTER"

	// Assignment errors
	CodeNoAssignmentComputed Code = "NO_ASSIGNMENT_COMPUTED"

	// Notification errors
	CodeNotificationDispatchFailed Code = "NOTIFICATION_DISPATCH_FAILED"
	CodeOutboxMessageNotFound      Code = "OUTBOX_MESSAGE_NOT_FOUND"
)

// Retryable reports whether the failed operation may be attempted again with
// the same input.
func (c Code) Retryable() bool {
	switch c {
	case CodeNotificationDispatchFailed:
		return true
	default:
		return false
	}
}
