package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"golang.org/x/text/language"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("assign: %w", New(CodeNoParticipantsSelected, "no participants selected"))
	if !stderrors.Is(err, New(CodeNoParticipantsSelected, "other message")) {
		t.Fatal("expected errors.Is to match by code")
	}
	if stderrors.Is(err, New(CodeUnknownCharacter, "no participants selected")) {
		t.Fatal("expected different code not to match")
	}
}

func TestWrapUnwrapsCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(CodeNotificationDispatchFailed, "send notification", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
	if err.Error() != "send notification: connection refused" {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(nil); got != CodeUnknown {
		t.Fatalf("CodeOf(nil) = %q, want %q", got, CodeUnknown)
	}
	if got := CodeOf(stderrors.New("plain")); got != CodeUnknown {
		t.Fatalf("CodeOf(plain) = %q, want %q", got, CodeUnknown)
	}
	wrapped := fmt.Errorf("outer: %w", New(CodeInactiveCharacter, "inactive"))
	if got := CodeOf(wrapped); got != CodeInactiveCharacter {
		t.Fatalf("CodeOf(wrapped) = %q, want %q", got, CodeInactiveCharacter)
	}
}

func TestUserMessageUsesMetadata(t *testing.T) {
	err := WithMetadata(CodeUnknownCharacter, "unknown character", map[string]string{"CharacterID": "c-42"})
	got := UserMessage(fmt.Errorf("load: %w", err), language.English)
	if got != "Character c-42 is not in the roster." {
		t.Fatalf("UserMessage() = %q", got)
	}
}

func TestUserMessageForeignError(t *testing.T) {
	got := UserMessage(stderrors.New("boom"), language.English)
	if got != "Something went wrong. Please try again." {
		t.Fatalf("UserMessage() = %q", got)
	}
}

func TestRetryable(t *testing.T) {
	if !CodeNotificationDispatchFailed.Retryable() {
		t.Fatal("dispatch failures should be retryable")
	}
	if CodeNoParticipantsSelected.Retryable() {
		t.Fatal("validation failures should not be retryable")
	}
}
