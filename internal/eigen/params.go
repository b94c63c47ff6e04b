package eigen

import (
	"math"
	"math/rand"
)

// DefaultFallbackBound is the half-width of the sampling range used for
// parameters whose bounds are unbounded and whose ansatz declares no
// preferred starting point.
const DefaultFallbackBound = 2 * math.Pi

// ParameterSpace owns initial-point generation and validation for a
// trial-state family. Randomness is seeded so runs are reproducible.
type ParameterSpace struct {
	// FallbackBound is the half-width used to sample unbounded parameters
	// (the point is drawn uniformly from [-FallbackBound, FallbackBound]).
	// Zero means DefaultFallbackBound.
	FallbackBound float64

	rng *rand.Rand
}

// NewParameterSpace creates a parameter space manager with seeded
// randomness for initial-point generation.
func NewParameterSpace(seed int64) *ParameterSpace {
	return &ParameterSpace{rng: rand.New(rand.NewSource(seed))}
}

// Prepare returns a fresh initial parameter vector for the ansatz.
//
// A caller-supplied initial point is validated against the ansatz's
// parameter count and copied. Otherwise the ansatz's preferred point is
// used when it has one; failing that, each parameter is drawn uniformly
// from its declared bounds, with the fallback range standing in for
// unbounded parameters.
func (ps *ParameterSpace) Prepare(ansatz Ansatz, initial []float64) ([]float64, error) {
	count := ansatz.ParameterCount()

	if initial != nil {
		if len(initial) != count {
			return nil, &DimensionMismatchError{Expected: count, Got: len(initial)}
		}
		return append([]float64(nil), initial...), nil
	}

	if preferred := ansatz.PreferredInitialPoint(); preferred != nil {
		if len(preferred) != count {
			return nil, &DimensionMismatchError{Expected: count, Got: len(preferred)}
		}
		return append([]float64(nil), preferred...), nil
	}

	fallback := ps.FallbackBound
	if fallback == 0 {
		fallback = DefaultFallbackBound
	}

	lower, upper := BoundsOf(ansatz)
	point := make([]float64, count)
	for i := range point {
		lo, hi := lower[i], upper[i]
		if math.IsInf(lo, -1) || math.IsInf(hi, 1) {
			lo, hi = -fallback, fallback
		}
		point[i] = lo + ps.rng.Float64()*(hi-lo)
	}
	return point, nil
}

// BoundsOf normalizes an ansatz's bounds into full-length slices, filling
// ±Inf for unbounded parameters. The result is passed to the optimizer
// unmodified.
func BoundsOf(ansatz Ansatz) (lower, upper []float64) {
	count := ansatz.ParameterCount()
	lower, upper = ansatz.Bounds()
	if lower == nil || upper == nil {
		lower = make([]float64, count)
		upper = make([]float64, count)
		for i := range lower {
			lower[i] = math.Inf(-1)
			upper[i] = math.Inf(1)
		}
	}
	return lower, upper
}
