package game

import (
	mathrand "math/rand"
	"sync"
	"time"
)

// Rand is the only source of randomness the tick engine uses, so tests can pin outcomes.
type Rand interface {
	Float64() float64
}

type lockedRand struct {
	mu   sync.Mutex
	rand *mathrand.Rand
}

// NewRand returns a goroutine-safe source seeded with seed, or with the wall clock when seed is 0.
func NewRand(seed int64) Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRand{rand: mathrand.New(mathrand.NewSource(seed))}
}

func (r *lockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

func uniform(r Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*r.Float64()
}

// signedUnit maps a [0,1) draw onto [-1,1).
func signedUnit(u float64) float64 {
	return 2*u - 1
}

func pick(r Rand, n int) int {
	if n <= 0 {
		return 0
	}
	i := int(r.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}
