package merch

import (
	"math/rand/v2"

	"storefront-merchandising-service/internal/domain"
)

// Source supplies the randomness for shuffles. *rand.Rand satisfies it;
// tests pass a seeded one, production uses the global generator.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Shuffler produces uniformly random permutations (Fisher–Yates).
type Shuffler struct {
	src Source
}

// NewShuffler returns a Shuffler drawing from src, or from the global generator when src is nil.
func NewShuffler(src Source) *Shuffler {
	if src == nil {
		src = globalSource{}
	}
	return &Shuffler{src: src}
}

// Shuffle returns a new slice holding a random permutation of list. The input is left untouched.
func (s *Shuffler) Shuffle(list []domain.Product) []domain.Product {
	out := make([]domain.Product, len(list))
	copy(out, list)
	for i := len(out) - 1; i > 0; i-- {
		j := s.src.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
