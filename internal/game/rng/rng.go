// Package rng provides the seedable randomness abstraction and the
// cumulative-weight selection used by guard decision-making.
package rng

// Source is the randomness provider for simulation decisions.
//
// A Source is owned by a single simulation goroutine; implementations are not
// required to be safe for concurrent use. Injecting a seeded Source makes
// every decision sequence reproducible.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int

	// Float64 returns a uniform random float in [0.0, 1.0).
	Float64() float64
}
