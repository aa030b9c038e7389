package rng

// Pick selects an index from weights by a cumulative-weight roll against a
// single uniform draw from src. Weights at or below zero are never selected.
//
// Precondition: src must be non-nil.
// Postcondition: Returns -1 iff no weight is positive; otherwise an index i
// with weights[i] > 0.
func Pick(src Source, weights []float64) int {
	if src == nil {
		panic("rng.Pick: src must not be nil")
	}

	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}

	roll := src.Float64() * total
	cumulative := 0.0
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cumulative += w
		last = i
		if roll < cumulative {
			return i
		}
	}
	// Accumulation error can leave roll a hair past the final bound.
	return last
}
