package domain

import (
	"fmt"
	"math/rand/v2"
)

// identityRNG makes Shuffle a no-op: Float64 is close enough to 1 that every
// Fisher-Yates swap picks the current index.
type identityRNG struct{}

func (identityRNG) Float64() float64 { return 0.999999 }

// sequenceRNG replays values in order and wraps around.
type sequenceRNG struct {
	values []float64
	next   int
}

func (r *sequenceRNG) Float64() float64 {
	value := r.values[r.next%len(r.values)]
	r.next++
	return value
}

func seededRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// tableOf builds n active characters selected in order; the ids listed in late
// are marked as arriving late.
func tableOf(n int, late ...string) ([]Character, []ParticipationEntry) {
	lateSet := make(map[string]bool, len(late))
	for _, id := range late {
		lateSet[id] = true
	}
	characters := make([]Character, 0, n)
	selection := make([]ParticipationEntry, 0, n)
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("c%d", i)
		characters = append(characters, Character{ID: id, Name: fmt.Sprintf("Hero %d", i), Active: true})
		selection = append(selection, ParticipationEntry{CharacterID: id, Selected: true, LateArrival: lateSet[id]})
	}
	return characters, selection
}

func countFiller(pa PhaseAssignment) int {
	count := 0
	for _, bucket := range pa {
		for _, task := range bucket.Tasks {
			if task == FillerTask {
				count++
			}
		}
	}
	return count
}
