package render

import (
	"slices"

	"github.com/campaignledger/sessiontasks/internal/services/tasks/domain"
)

// Section colors, one per phase.
const (
	ColorPreSession    = 8311585  // Purple
	ColorDuringSession = 16776960 // Yellow
	ColorPostSession   = 16711680 // Red
)

// Field is one participant's entry within a section.
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Section is one phase of the notification.
type Section struct {
	Phase  string  `json:"phase"`
	Title  string  `json:"title"`
	Color  int     `json:"color"`
	Footer string  `json:"footer,omitempty"`
	Fields []Field `json:"fields"`
}

// Payload is the transport-agnostic notification handed to a dispatcher.
type Payload struct {
	Content  string    `json:"content,omitempty"`
	Sections []Section `json:"sections"`
}

// Section returns the section rendered for phase, if any.
func (p Payload) Section(phase domain.Phase) (Section, bool) {
	for _, section := range p.Sections {
		if section.Phase == phase.String() {
			return section, true
		}
	}
	return Section{}, false
}

// Clone returns a deep copy of the payload.
func (p Payload) Clone() Payload {
	if p.Sections == nil {
		return p
	}
	sections := make([]Section, len(p.Sections))
	for i, section := range p.Sections {
		section.Fields = slices.Clone(section.Fields)
		sections[i] = section
	}
	p.Sections = sections
	return p
}

func phaseColor(phase domain.Phase) int {
	switch phase {
	case domain.PhasePre:
		return ColorPreSession
	case domain.PhaseDuring:
		return ColorDuringSession
	default:
		return ColorPostSession
	}
}
