package game

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

// DrawSequence produces shuffled draw pools.
type DrawSequence struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewDrawSequence returns a sequence seeded from the runtime's random source.
func NewDrawSequence() *DrawSequence {
	return &DrawSequence{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeededDrawSequence returns a reproducible sequence. Use it in tests only.
func NewSeededDrawSequence(seed uint64) *DrawSequence {
	return &DrawSequence{rng: rand.New(rand.NewPCG(seed, seed))}
}

// Generate returns a uniformly shuffled permutation of 1..n.
func (s *DrawSequence) Generate(n int) ([]int, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: pool size %d must be positive", ErrConfiguration, n)
	}
	return s.permutation(n), nil
}

func (s *DrawSequence) permutation(n int) []int {
	pool := make([]int, n)
	for i := range pool {
		pool[i] = i + 1
	}
	s.mu.Lock()
	s.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	s.mu.Unlock()
	return pool
}
