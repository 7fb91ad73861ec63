package domain

// RNG yields uniformly distributed floats in [0, 1). *math/rand.Rand and
// *math/rand/v2.Rand both satisfy it.
type RNG interface {
	Float64() float64
}

// Shuffle returns a uniformly permuted copy of labels (Fisher-Yates).
func Shuffle(rng RNG, labels []string) []string {
	shuffled := make([]string, len(labels))
	copy(shuffled, labels)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := int(rng.Float64() * float64(i+1))
		switch {
		case j < 0:
			j = 0
		case j > i:
			j = i
		}
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}
