// Package random provides seeded randomness for task assignment.
//
// Seeds come from crypto/rand so production runs are unpredictable, while the
// seed itself is kept on the Source so a run can be logged and replayed.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Source is a seeded pseudo-random generator. It is not safe for concurrent
// use; create one per assignment run.
type Source struct {
	seed int64
	rng  *rand.Rand
}

// New returns a Source that replays the sequence for seed.
func New(seed int64) *Source {
	return &Source{seed: seed, rng: rand.New(rand.NewSource(seed))}
}

// NewFromEntropy returns a Source seeded from crypto/rand.
func NewFromEntropy() (*Source, error) {
	seed, err := NewSeed()
	if err != nil {
		return nil, err
	}
	return New(seed), nil
}

// Seed returns the seed the Source was built with.
func (s *Source) Seed() int64 {
	return s.seed
}

// Float64 returns a float in [0, 1).
func (s *Source) Float64() float64 {
	return s.rng.Float64()
}
