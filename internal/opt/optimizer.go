package opt

// Objective is a scalar function of a parameter vector. Closures supplied by
// the optimization driver may panic with a private sentinel to abort the
// surrounding optimizer; optimizers must not recover panics.
type Objective func(x []float64) float64

// Gradient returns the gradient of the objective at x. It is nil when the
// caller provides no gradient information; gradient-free optimizers ignore it.
type Gradient func(x []float64) []float64

// Result is the outcome reported by an optimizer: the best point it found,
// its value, how many objective evaluations the optimizer itself requested,
// and the optimizer's own termination reason, verbatim.
type Result struct {
	X           []float64
	Value       float64
	Evaluations int
	Reason      string
}

// Optimizer defines a pluggable classical minimization algorithm.
// The lower/upper slices give per-parameter bounds; entries may be ±Inf for
// unbounded parameters, and optimizers that cannot honor bounds may ignore
// them. Optimizers must not cache objective values.
type Optimizer interface {
	// Name identifies the algorithm for result metadata.
	Name() string

	// Minimize searches for a minimum of objective starting from x0.
	// gradient may be nil; gradient-based optimizers fall back to their own
	// internal approximation in that case.
	Minimize(objective Objective, gradient Gradient, x0, lower, upper []float64) Result
}
