package domain

// Phase identifies one of the three independent assignment runs.
type Phase int

const (
	// PhaseUnspecified represents an invalid phase value.
	PhaseUnspecified Phase = iota
	// PhasePre covers chores done before play starts.
	PhasePre
	// PhaseDuring covers roles held for the length of the session.
	PhaseDuring
	// PhasePost covers cleanup after play ends.
	PhasePost
)

// Phases lists every phase in assignment order.
var Phases = []Phase{PhasePre, PhaseDuring, PhasePost}

// String returns a stable token for logs and payload keys.
func (p Phase) String() string {
	switch p {
	case PhasePre:
		return "pre"
	case PhaseDuring:
		return "during"
	case PhasePost:
		return "post"
	default:
		return "unspecified"
	}
}
