// Package eigen implements variational eigensolvers: algorithms that
// estimate eigenvalues of an operator by optimizing the parameters of a
// trial-state family against an externally evaluated expectation value.
// The expensive, possibly noisy evaluation lives behind EvaluationPort;
// the classical search lives behind opt.Optimizer. The package provides
// ground-state search (VQE), its QAOA specialization, and sequential
// excited-state search via deflation (VQD), all sharing one optimization
// driver.
package eigen

import "context"

// Operator is an opaque algebraic object that the Evaluation Port can take
// expectation values of. The solver never inspects it beyond passing it
// through; it is owned by the caller and only borrowed here.
type Operator interface {
	// Dimension reports the dimension of the space the operator acts on.
	Dimension() int
}

// Ansatz is a parameterized state-preparation procedure with a fixed
// parameter count. Implementations must be immutable once handed to a
// solver; the solver holds a reference and never mutates it.
type Ansatz interface {
	// ParameterCount reports the number of free real parameters.
	ParameterCount() int

	// PreferredInitialPoint returns the ansatz's own default starting
	// point, or nil when it has none.
	PreferredInitialPoint() []float64

	// Bounds returns per-parameter (lower, upper) bounds, or (nil, nil)
	// when the parameters are unbounded. Individual entries may be ±Inf.
	Bounds() (lower, upper []float64)
}

// Estimate is a single expectation-value estimate from the Evaluation Port.
type Estimate struct {
	Value float64

	// Variance of the estimate, valid only when HasVariance is set.
	Variance    float64
	HasVariance bool

	// Gradient is the port's analytic gradient, or nil when the port
	// cannot supply one.
	Gradient []float64
}

// EvaluationPort turns bound parameters plus an operator into an
// expectation-value estimate. It is the effectful boundary of the solver:
// calls may be slow and estimates may carry sampling noise. Any returned
// error is terminal for the current run.
type EvaluationPort interface {
	Estimate(ctx context.Context, ansatz Ansatz, op Operator, params []float64) (Estimate, error)
}

// GradientPort is implemented by Evaluation Ports that can produce analytic
// gradients alongside the expectation value. The driver detects the
// capability by interface assertion, so no port call is ever spent probing
// for it; ports without it are served by a GradientStrategy instead.
type GradientPort interface {
	EvaluationPort

	// EstimateGradient returns an estimate whose Gradient field is set.
	EstimateGradient(ctx context.Context, ansatz Ansatz, op Operator, params []float64) (Estimate, error)
}

// ProjectorFactory builds, for a previously found eigenstate captured as
// (ansatz, parameters), an Operator whose expectation value at new
// parameters equals the squared overlap |⟨ψ(θ)|ψ_prev⟩|². VQD evaluates
// these through the ordinary EvaluationPort to form its deflation penalty.
type ProjectorFactory interface {
	Projector(ansatz Ansatz, params []float64) (Operator, error)
}

// AnsatzFactory derives a trial-state family from a cost operator. QAOA
// uses it to build its alternating ansatz without this package knowing how
// circuits are constructed.
type AnsatzFactory interface {
	Build(cost Operator, mixer Operator, reps int) (Ansatz, error)
}

// Callback observes every objective and gradient evaluation of a run.
// The parameter slice is a private copy; the callback may retain it.
// Callbacks run synchronously on the optimization loop and must not block.
type Callback func(evaluation int, params []float64, value float64, meta EvalMeta)

// EvalMeta carries auxiliary information about one evaluation.
type EvalMeta struct {
	// Variance of the estimate, when the port reported one.
	Variance    float64
	HasVariance bool

	// GradientPoint marks evaluations issued on behalf of a gradient
	// approximation rather than a direct optimizer query.
	GradientPoint bool

	// Level is the excitation level during deflation runs (0 = ground).
	Level int
}
