package rng

import (
	cryptorand "crypto/rand"
	"math"
	"math/big"
	mathrand "math/rand"
)

// seededSource implements Source with a deterministic PRNG stream.
type seededSource struct {
	r *mathrand.Rand
}

// NewSeeded returns a Source that replays the same value sequence for the
// same seed.
//
// Postcondition: Two sources built from equal seeds produce identical streams.
func NewSeeded(seed int64) Source {
	return &seededSource{r: mathrand.New(mathrand.NewSource(seed))}
}

// Intn returns a random int in [0, n) from the seeded stream.
//
// Precondition: n > 0. Panics with "rng: Intn called with n <= 0" if n <= 0.
func (s *seededSource) Intn(n int) int {
	if n <= 0 {
		panic("rng: Intn called with n <= 0")
	}
	return s.r.Intn(n)
}

// Float64 returns a random float in [0.0, 1.0) from the seeded stream.
func (s *seededSource) Float64() float64 {
	return s.r.Float64()
}

// RandomSeed draws a seed from crypto/rand for runs that do not need to be
// reproduced.
//
// Postcondition: Returns a value in [0, math.MaxInt64). Panics with
// "rng: crypto/rand failure: <err>" if crypto/rand fails.
func RandomSeed() int64 {
	val, err := cryptorand.Int(cryptorand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		panic("rng: crypto/rand failure: " + err.Error())
	}
	return val.Int64()
}
