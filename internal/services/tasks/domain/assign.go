package domain

import (
	"math/rand/v2"
	"slices"
)

// Bucket is one participant's share of a phase.
type Bucket struct {
	Participant string
	Tasks       []string
}

// PhaseAssignment lists buckets in participant order.
type PhaseAssignment []Bucket

// Participants returns the participant names in assignment order.
func (pa PhaseAssignment) Participants() []string {
	names := make([]string, 0, len(pa))
	for _, bucket := range pa {
		names = append(names, bucket.Participant)
	}
	return names
}

// TasksFor returns the tasks dealt to the first participant named name.
func (pa PhaseAssignment) TasksFor(name string) ([]string, bool) {
	for _, bucket := range pa {
		if bucket.Participant == name {
			return bucket.Tasks, true
		}
	}
	return nil, false
}

// TaskCount returns the number of labels dealt in the phase, filler included.
func (pa PhaseAssignment) TaskCount() int {
	total := 0
	for _, bucket := range pa {
		total += len(bucket.Tasks)
	}
	return total
}

// Clone returns a deep copy.
func (pa PhaseAssignment) Clone() PhaseAssignment {
	if pa == nil {
		return nil
	}
	cloned := make(PhaseAssignment, len(pa))
	for i, bucket := range pa {
		cloned[i] = Bucket{Participant: bucket.Participant, Tasks: slices.Clone(bucket.Tasks)}
	}
	return cloned
}

// Assignment is the result of one assignment run.
type Assignment struct {
	Pre    PhaseAssignment
	During PhaseAssignment
	Post   PhaseAssignment
}

// Phase returns the assignment for phase.
func (a Assignment) Phase(phase Phase) PhaseAssignment {
	switch phase {
	case PhasePre:
		return a.Pre
	case PhaseDuring:
		return a.During
	case PhasePost:
		return a.Post
	default:
		return nil
	}
}

// Clone returns a deep copy so callers can cache a result without sharing
// backing arrays.
func (a Assignment) Clone() Assignment {
	return Assignment{
		Pre:    a.Pre.Clone(),
		During: a.During.Clone(),
		Post:   a.Post.Clone(),
	}
}

// Engine runs task assignment with an injected randomness source.
type Engine struct {
	rng RNG
}

// NewEngine constructs an assignment engine. A nil rng falls back to the
// auto-seeded math/rand/v2 source.
func NewEngine(rng RNG) *Engine {
	if rng == nil {
		rng = globalRNG{}
	}
	return &Engine{rng: rng}
}

// Assign resolves the selection and deals every phase.
func (e *Engine) Assign(characters []Character, selection []ParticipationEntry) (Assignment, error) {
	roster, err := ResolveRoster(characters, selection)
	if err != nil {
		return Assignment{}, err
	}
	return e.AssignRoster(roster)
}

// AssignRoster deals every phase for an already resolved roster. Phases run
// in order pre, during, post so that a given RNG sequence always maps to the
// same result.
func (e *Engine) AssignRoster(roster Roster) (Assignment, error) {
	if len(roster.During) == 0 {
		return Assignment{}, ErrNoParticipantsSelected
	}
	catalogs := BuildCatalogs(roster)

	var assignment Assignment
	for _, phase := range Phases {
		dealt := e.assignPhase(catalogs.Labels(phase), roster.Participants(phase))
		switch phase {
		case PhasePre:
			assignment.Pre = dealt
		case PhaseDuring:
			assignment.During = dealt
		case PhasePost:
			assignment.Post = dealt
		}
	}
	return assignment, nil
}

func (e *Engine) assignPhase(catalog []string, participants []string) PhaseAssignment {
	if len(participants) == 0 {
		return PhaseAssignment{}
	}
	sequence := Shuffle(e.rng, Reconcile(catalog, len(participants)))
	return Deal(sequence, participants)
}

// Deal hands sequence[i] to participants[i mod len(participants)]. Every
// participant gets a bucket, even an empty one.
func Deal(sequence []string, participants []string) PhaseAssignment {
	dealt := make(PhaseAssignment, len(participants))
	for i, name := range participants {
		dealt[i] = Bucket{Participant: name, Tasks: []string{}}
	}
	if len(participants) == 0 {
		return dealt
	}
	for i, task := range sequence {
		slot := i % len(participants)
		dealt[slot].Tasks = append(dealt[slot].Tasks, task)
	}
	return dealt
}

type globalRNG struct{}

func (globalRNG) Float64() float64 {
	return rand.Float64()
}
