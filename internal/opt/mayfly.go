package opt

import (
	"math"
	"math/rand"

	"github.com/cwbudde/mayfly"
)

// MayflyAdapter wraps the external Mayfly library to conform to our
// Optimizer interface. Mayfly is a population-based, gradient-free algorithm,
// which makes it a reasonable default against noisy objectives.
type MayflyAdapter struct {
	maxIters int
	popSize  int
	seed     int64
}

// NewMayfly creates a new Mayfly optimizer adapter.
func NewMayfly(maxIters, popSize int, seed int64) Optimizer {
	return &MayflyAdapter{
		maxIters: maxIters,
		popSize:  popSize,
		seed:     seed,
	}
}

func (m *MayflyAdapter) Name() string { return "mayfly" }

// Minimize runs the Mayfly optimization using the external library.
// The gradient is ignored. The library accepts only scalar bounds, so the
// first finite bound pair is applied to every dimension; fully unbounded
// problems get a symmetric default box around the initial point.
func (m *MayflyAdapter) Minimize(objective Objective, _ Gradient, x0, lower, upper []float64) Result {
	dim := len(x0)

	config := mayfly.NewDefaultConfig()
	config.ObjectiveFunc = mayfly.ObjectiveFunction(objective)
	config.ProblemSize = dim
	config.MaxIterations = m.maxIters
	config.NPop = m.popSize
	config.LowerBound, config.UpperBound = scalarBounds(x0, lower, upper)
	config.Rand = rand.New(rand.NewSource(m.seed))

	result, err := mayfly.Optimize(config)
	if err != nil {
		// Population setup failed; report the starting point unchanged.
		return Result{
			X:           append([]float64(nil), x0...),
			Value:       objective(x0),
			Evaluations: 1,
			Reason:      "mayfly: " + err.Error(),
		}
	}

	return Result{
		X:           result.GlobalBest.Position,
		Value:       result.GlobalBest.Cost,
		Evaluations: m.maxIters * m.popSize,
		Reason:      "max iterations reached",
	}
}

// scalarBounds collapses per-parameter bounds into the single (lo, hi) pair
// the mayfly library understands.
func scalarBounds(x0, lower, upper []float64) (float64, float64) {
	for i := range lower {
		if !math.IsInf(lower[i], -1) && !math.IsInf(upper[i], 1) {
			return lower[i], upper[i]
		}
	}

	// No finite bounds declared: box the search around the initial point.
	span := 1.0
	for _, v := range x0 {
		if a := math.Abs(v); a > span {
			span = a
		}
	}
	return -4 * span, 4 * span
}
