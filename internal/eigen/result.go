package eigen

import "context"

// Status is the terminal state of an optimization run.
type Status string

const (
	// StatusConverged means the optimizer's own stopping rule ended the run.
	StatusConverged Status = "converged"

	// StatusInterrupted means cancellation or the evaluation ceiling ended
	// the run; the result carries the best point found so far.
	StatusInterrupted Status = "interrupted"

	// StatusFailed means the Evaluation Port failed mid-run.
	StatusFailed Status = "failed"
)

// Result is the immutable outcome of one eigensolver run. It is constructed
// exactly once, when the run ends, and is safe to share.
type Result struct {
	Status Status `json:"status"`

	// OptimalParameters is a private copy of the best parameter vector.
	OptimalParameters []float64 `json:"optimalParameters"`

	// OptimalValue is the best objective value reported during the run; it
	// is never re-evaluated unless verification was requested.
	OptimalValue float64 `json:"optimalValue"`

	// Evaluations is the total number of Evaluation Port calls the run
	// spent, including gradient perturbations and penalty overlaps.
	Evaluations int `json:"evaluations"`

	// Optimizer and Reason are the optimizer's metadata, verbatim.
	Optimizer string `json:"optimizer"`
	Reason    string `json:"reason,omitempty"`

	// Level is the excitation level within a deflation sequence
	// (0 = ground state).
	Level int `json:"level"`

	// History is the full evaluation log, when the caller kept it.
	History []Record `json:"history,omitempty"`

	// Aux holds post-convergence auxiliary observable values, when
	// auxiliary operators were supplied.
	Aux []AuxValue `json:"aux,omitempty"`
}

// finalize builds the immutable Result from a driver run. When verify is
// set, one additional Evaluation Port call re-measures the operator at the
// optimal parameters and its value overrides the reported optimum.
func finalize(ctx context.Context, port EvaluationPort, ansatz Ansatz, op Operator, out runOutput, verify, keepHistory bool) (*Result, error) {
	res := &Result{
		Status:            out.status,
		OptimalParameters: append([]float64(nil), out.bestParams...),
		OptimalValue:      out.bestValue,
		Evaluations:       out.evaluations,
		Optimizer:         out.optimizer,
		Reason:            out.reason,
	}
	if keepHistory {
		res.History = out.history.snapshot()
	}

	if verify && out.status == StatusConverged {
		est, err := port.Estimate(ctx, ansatz, op, append([]float64(nil), res.OptimalParameters...))
		res.Evaluations++
		if err != nil {
			return nil, &EvaluationError{Evaluation: res.Evaluations, Params: res.OptimalParameters, Err: err}
		}
		res.OptimalValue = est.Value
	}

	return res, nil
}
