// Package render converts task assignments into notification payloads.
package render

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/campaignledger/sessiontasks/internal/services/tasks/domain"
)

const (
	bullet = "• "

	defaultPreTitle    = "Pre-Session Tasks:"
	defaultDuringTitle = "During Session Tasks:"
	defaultPostTitle   = "Post-Session Tasks:"
	defaultNoTasks     = "No tasks"
)

// Localizer is the minimal message-printer contract required by the formatter.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// NewLocalizer returns a printer for tag backed by the default catalog.
func NewLocalizer(tag language.Tag) Localizer {
	return message.NewPrinter(tag)
}

// Input is one formatting request.
type Input struct {
	Assignment domain.Assignment
	// SessionTitle, when set, adds a headline naming the session.
	SessionTitle string
	// WithFooters adds a one-line hint under each section.
	WithFooters bool
}

// Format renders the assignment as a payload. Phases with no participants
// are omitted entirely.
func Format(loc Localizer, input Input) Payload {
	payload := Payload{Sections: make([]Section, 0, len(domain.Phases))}
	if title := strings.TrimSpace(input.SessionTitle); title != "" {
		payload.Content = localize(loc, "tasks.headline", "Task assignments have been generated for %s!", title)
	}

	for _, phase := range domain.Phases {
		dealt := input.Assignment.Phase(phase)
		if len(dealt) == 0 {
			continue
		}
		section := Section{
			Phase:  phase.String(),
			Title:  sectionTitle(loc, phase),
			Color:  phaseColor(phase),
			Fields: make([]Field, 0, len(dealt)),
		}
		if input.WithFooters {
			section.Footer = sectionFooter(loc, phase)
		}
		for _, bucket := range dealt {
			section.Fields = append(section.Fields, Field{
				Name:  bucket.Participant,
				Value: bulletList(loc, bucket.Tasks),
			})
		}
		payload.Sections = append(payload.Sections, section)
	}
	return payload
}

// Text renders the payload as plain text, one block per participant.
func Text(payload Payload) string {
	var b strings.Builder
	if payload.Content != "" {
		b.WriteString(payload.Content)
		b.WriteString("\n\n")
	}
	for i, section := range payload.Sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(section.Title)
		b.WriteString("\n")
		for _, field := range section.Fields {
			b.WriteString(field.Name)
			b.WriteString(":\n")
			b.WriteString(field.Value)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func bulletList(loc Localizer, tasks []string) string {
	if len(tasks) == 0 {
		return bullet + localize(loc, "tasks.none", defaultNoTasks)
	}
	lines := make([]string, 0, len(tasks))
	for _, task := range tasks {
		lines = append(lines, bullet+task)
	}
	return strings.Join(lines, "\n")
}

func sectionTitle(loc Localizer, phase domain.Phase) string {
	switch phase {
	case domain.PhasePre:
		return localize(loc, "tasks.section.pre.title", defaultPreTitle)
	case domain.PhaseDuring:
		return localize(loc, "tasks.section.during.title", defaultDuringTitle)
	default:
		return localize(loc, "tasks.section.post.title", defaultPostTitle)
	}
}

func sectionFooter(loc Localizer, phase domain.Phase) string {
	switch phase {
	case domain.PhasePre:
		return localize(loc, "tasks.section.pre.footer", "Complete before session starts")
	case domain.PhaseDuring:
		return localize(loc, "tasks.section.during.footer", "Assigned for the duration of the session")
	default:
		return localize(loc, "tasks.section.post.footer", "Complete after session ends")
	}
}

// localize prints key through loc, falling back to the English default when
// loc is nil or the key has no translation.
func localize(loc Localizer, key string, fallback string, args ...any) string {
	if loc == nil {
		return fallbackf(fallback, args...)
	}
	value := loc.Sprintf(key, args...)
	if value == "" || strings.HasPrefix(value, key) {
		return fallbackf(fallback, args...)
	}
	return value
}

func fallbackf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
