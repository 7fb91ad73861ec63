package domain

import (
	"strings"

	apperrors "github.com/campaignledger/sessiontasks/internal/platform/errors"
)

// VirtualParticipantName is the synthetic participant appended to the
// post-session phase only.
const VirtualParticipantName = "DM"

// ErrNoParticipantsSelected indicates the selection contains no eligible
// characters, so there is nothing to assign.
var ErrNoParticipantsSelected = apperrors.New(apperrors.CodeNoParticipantsSelected, "no participants selected")

// Character is a directory entry that may appear in a selection.
type Character struct {
	ID     string
	Name   string
	Active bool
}

// ParticipationEntry is one row of the caller's selection snapshot.
type ParticipationEntry struct {
	CharacterID string
	Selected    bool
	LateArrival bool
}

// Roster holds the participant names for each phase, in assignment order.
type Roster struct {
	Pre    []string
	During []string
	Post   []string
}

// Participants returns the participant list for phase.
func (r Roster) Participants(phase Phase) []string {
	switch phase {
	case PhasePre:
		return r.Pre
	case PhaseDuring:
		return r.During
	case PhasePost:
		return r.Post
	default:
		return nil
	}
}

// ResolveRoster turns a selection snapshot into per-phase participant lists.
//
// Selection order is preserved. Entries that are not selected, reference a
// character missing from characters, reference an inactive character, or
// repeat an already selected character are ignored. Participants are keyed by
// name, so a character named like the virtual DM or like an already selected
// character is ignored too. The virtual DM entry is appended to the
// post-session list exactly once.
//
// ResolveRoster returns ErrNoParticipantsSelected when no character is
// selected. An empty pre-session list is not an error.
func ResolveRoster(characters []Character, selection []ParticipationEntry) (Roster, error) {
	directory := make(map[string]Character, len(characters))
	for _, character := range characters {
		id := strings.TrimSpace(character.ID)
		if id == "" {
			continue
		}
		if _, exists := directory[id]; !exists {
			directory[id] = character
		}
	}

	var roster Roster
	seen := make(map[string]struct{}, len(selection))
	names := map[string]struct{}{VirtualParticipantName: {}}
	for _, entry := range selection {
		if !entry.Selected {
			continue
		}
		id := strings.TrimSpace(entry.CharacterID)
		character, ok := directory[id]
		if !ok || !character.Active {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		name := strings.TrimSpace(character.Name)
		if _, taken := names[name]; taken {
			continue
		}
		names[name] = struct{}{}

		roster.During = append(roster.During, character.Name)
		if !entry.LateArrival {
			roster.Pre = append(roster.Pre, character.Name)
		}
	}

	if len(roster.During) == 0 {
		return Roster{}, ErrNoParticipantsSelected
	}

	roster.Post = make([]string, 0, len(roster.During)+1)
	roster.Post = append(roster.Post, roster.During...)
	roster.Post = append(roster.Post, VirtualParticipantName)
	return roster, nil
}
