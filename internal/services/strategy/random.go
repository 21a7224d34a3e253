package strategy

import (
	"math/rand/v2"
	"sync"
)

// RandomSource yields floats in [0, 1).
type RandomSource interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// DefaultSource draws from the process-wide generator.
func DefaultSource() RandomSource { return globalSource{} }

// lockedSource makes a seeded generator safe for concurrent scans.
type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeededSource returns a deterministic source for the given seed.
func NewSeededSource(seed uint64) RandomSource {
	return &lockedSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// FixedSource always returns the same value clamped to [0,1].
type FixedSource float64

func (f FixedSource) Float64() float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return float64(f)
}
