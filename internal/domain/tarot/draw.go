package tarot

import "math/rand/v2"

// RNG abstracts random number generation for deterministic testing.
type RNG interface {
	// Intn returns a non-negative random int in [0, n).
	Intn(n int) int
}

type pcgRNG struct{ r *rand.Rand }

func (p pcgRNG) Intn(n int) int { return p.r.IntN(n) }

// NewRNG returns a PCG-backed RNG. The same seed always yields the same draw.
func NewRNG(seed uint64) RNG {
	return pcgRNG{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// RandomRNG returns an RNG seeded from the runtime's entropy source.
func RandomRNG() RNG {
	return NewRNG(rand.Uint64())
}

// Draw picks n distinct cards from deck using a partial Fisher-Yates shuffle.
// Each drawn card is upright or reversed with equal odds. The deck is not modified.
func Draw(deck []Card, n int, rng RNG) ([]Card, error) {
	if n < 1 || n > len(deck) {
		return nil, ErrInvalidDraw
	}

	indices := make([]int, len(deck))
	for i := range indices {
		indices[i] = i
	}
	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(indices)-i)
		indices[i], indices[j] = indices[j], indices[i]
	}

	drawn := make([]Card, n)
	for i := range n {
		c := deck[indices[i]]
		c.Keywords = append([]string(nil), c.Keywords...)
		c.Upright = rng.Intn(2) == 0
		drawn[i] = c
	}
	return drawn, nil
}
