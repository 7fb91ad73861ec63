package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeUnknown                    = "UNKNOWN"
	CodeNoParticipantsSelected     = "NO_PARTICIPANTS_SELECTED"
	CodeUnknownCharacter           = "UNKNOWN_CHARACTER"
	CodeInactiveCharacter          = "INACTIVE_CHARACTER"
	CodeNoAssignmentComputed       = "NO_ASSIGNMENT_COMPUTED"
	CodeNotificationDispatchFailed = "NOTIFICATION_DISPATCH_FAILED"
	CodeOutboxMessageNotFound      = "OUTBOX_MESSAGE_NOT_FOUND"
)

func init() {
	lang := language.English

	message.SetString(lang, messageKey(CodeUnknown), "Something went wrong. Please try again.")
	message.SetString(lang, messageKey(CodeNoParticipantsSelected), "Select at least one character before assigning tasks.")
	message.SetString(lang, messageKey(CodeUnknownCharacter), "Character {{.CharacterID}} is not in the roster.")
	message.SetString(lang, messageKey(CodeInactiveCharacter), "Character {{.Name}} is not active.")
	message.SetString(lang, messageKey(CodeNoAssignmentComputed), "No tasks assigned yet. Please assign tasks first.")
	message.SetString(lang, messageKey(CodeNotificationDispatchFailed), "Failed to send tasks. Please try again.")
	message.SetString(lang, messageKey(CodeOutboxMessageNotFound), "Queued message {{.MessageID}} was not found.")
}
