package eigen

import (
	"context"
	"log/slog"

	"github.com/qbitwise/varqe/internal/opt"
)

// VQE is the variational quantum eigensolver: it searches for the parameter
// vector minimizing the operator's expectation value, approximating the
// ground-state eigenvalue. The Port and Optimizer fields are required;
// everything else has usable zero values.
type VQE struct {
	Port      EvaluationPort
	Optimizer opt.Optimizer

	// Gradient supplies a gradient approximation for gradient-based
	// optimizers when the port has no analytic gradients. Nil disables the
	// gradient closure.
	Gradient GradientStrategy

	// InitialPoint overrides initial-point generation. Its length must
	// match the ansatz's parameter count.
	InitialPoint []float64

	// Seed drives initial-point generation when no InitialPoint is given.
	Seed int64

	// FallbackBound overrides the sampling half-range for unbounded
	// parameters (0 = DefaultFallbackBound).
	FallbackBound float64

	// Callback observes every evaluation.
	Callback Callback

	// MaxEvaluations caps total port calls (0 = no ceiling).
	MaxEvaluations int

	// Concurrency bounds parallel port calls within gradient batches and
	// the auxiliary measurement step (<= 1 = sequential).
	Concurrency int

	// Verify re-measures the operator once at the optimal parameters and
	// overrides the reported optimal value.
	Verify bool

	// DiscardHistory drops the evaluation log from the result.
	DiscardHistory bool
}

// NewVQE creates a ground-state eigensolver with the given port and
// optimizer. Remaining fields may be set before the first Compute call.
func NewVQE(port EvaluationPort, optimizer opt.Optimizer) *VQE {
	return &VQE{Port: port, Optimizer: optimizer}
}

// Compute runs the eigensolver against the operator and, after the
// optimization ends, measures any auxiliary operators at the optimal
// parameters. A cancelled run yields a Result with status Interrupted and
// a nil error; port failures yield a non-nil error wrapping the
// *EvaluationError.
func (v *VQE) Compute(ctx context.Context, ansatz Ansatz, op Operator, aux []AuxOperator) (*Result, error) {
	return v.compute(ctx, ansatz, op, aux, nil, 0)
}

// compute is the shared run path used by VQE, QAOA, and each VQD level.
func (v *VQE) compute(ctx context.Context, ansatz Ansatz, op Operator, aux []AuxOperator, penalty PenaltyFunc, level int) (*Result, error) {
	// All validation happens before the first port call: fail fast at zero
	// evaluation cost.
	if err := validateAuxKeys(aux); err != nil {
		return nil, err
	}

	space := NewParameterSpace(v.Seed)
	space.FallbackBound = v.FallbackBound

	x0, err := space.Prepare(ansatz, v.InitialPoint)
	if err != nil {
		return nil, err
	}
	lower, upper := BoundsOf(ansatz)

	slog.Info("starting eigensolver run",
		"optimizer", v.Optimizer.Name(),
		"parameters", ansatz.ParameterCount(),
		"level", level,
	)

	driver := &Driver{
		Port:           v.Port,
		Optimizer:      v.Optimizer,
		Gradient:       v.Gradient,
		Callback:       v.Callback,
		MaxEvaluations: v.MaxEvaluations,
		Concurrency:    v.Concurrency,
		Penalty:        penalty,
		Level:          level,
	}

	out, err := driver.Run(ctx, ansatz, op, x0, lower, upper)
	if err != nil {
		return nil, err
	}

	result, err := finalize(ctx, v.Port, ansatz, op, out, v.Verify, !v.DiscardHistory)
	if err != nil {
		return nil, err
	}
	result.Level = level

	if len(aux) > 0 && result.OptimalParameters != nil {
		values, err := evaluateAux(ctx, v.Port, ansatz, result.OptimalParameters, aux, v.Concurrency)
		if err != nil {
			return nil, err
		}
		result.Aux = values
	}

	slog.Info("eigensolver run finished",
		"status", result.Status,
		"optimal_value", result.OptimalValue,
		"evaluations", result.Evaluations,
		"level", level,
	)
	return result, nil
}
