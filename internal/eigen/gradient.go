package eigen

import "math"

// GradientStrategy approximates objective gradients from plain objective
// evaluations when the Evaluation Port supplies no analytic gradient.
// A strategy first plans the perturbed points to evaluate, then combines
// their objective values into a gradient. Splitting plan and combine lets
// the driver dispatch the evaluations itself (possibly concurrently) while
// keeping history and callback ordering identical to the plan order.
type GradientStrategy interface {
	// Plan returns the points to evaluate for a gradient at x, two
	// symmetric perturbations per parameter: [x+Δe_0, x-Δe_0, x+Δe_1, ...].
	Plan(x []float64) [][]float64

	// Combine turns the objective values at the planned points (in plan
	// order) into the gradient at x.
	Combine(x []float64, values []float64) []float64
}

// FiniteDifference approximates gradients with central differences,
// (f(x+εe_i) - f(x-εe_i)) / 2ε, costing two port calls per parameter.
type FiniteDifference struct {
	// Step is the perturbation ε. Zero means 1e-6.
	Step float64
}

func (fd FiniteDifference) step() float64 {
	if fd.Step == 0 {
		return 1e-6
	}
	return fd.Step
}

func (fd FiniteDifference) Plan(x []float64) [][]float64 {
	return symmetricShifts(x, fd.step())
}

func (fd FiniteDifference) Combine(x []float64, values []float64) []float64 {
	grad := make([]float64, len(x))
	for i := range grad {
		grad[i] = (values[2*i] - values[2*i+1]) / (2 * fd.step())
	}
	return grad
}

// ParameterShift approximates gradients with the parameter-shift rule,
// (f(x+se_i) - f(x-se_i)) / 2 at shift s = π/2, which is exact for
// objectives generated by single-parameter rotations. Same 2p cost as
// finite differences but robust to sampling noise.
type ParameterShift struct {
	// Shift is the perturbation. Zero means π/2.
	Shift float64
}

func (p ParameterShift) shift() float64 {
	if p.Shift == 0 {
		return math.Pi / 2
	}
	return p.Shift
}

func (p ParameterShift) Plan(x []float64) [][]float64 {
	return symmetricShifts(x, p.shift())
}

func (p ParameterShift) Combine(x []float64, values []float64) []float64 {
	grad := make([]float64, len(x))
	for i := range grad {
		grad[i] = (values[2*i] - values[2*i+1]) / 2
	}
	return grad
}

// symmetricShifts builds the 2p points x ± delta·e_i, each a fresh copy.
func symmetricShifts(x []float64, delta float64) [][]float64 {
	points := make([][]float64, 0, 2*len(x))
	for i := range x {
		plus := append([]float64(nil), x...)
		plus[i] += delta
		minus := append([]float64(nil), x...)
		minus[i] -= delta
		points = append(points, plus, minus)
	}
	return points
}
