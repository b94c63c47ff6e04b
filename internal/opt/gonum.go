package opt

import (
	"gonum.org/v1/gonum/optimize"
)

// NelderMeadAdapter runs gonum's gradient-free Nelder-Mead simplex method.
type NelderMeadAdapter struct {
	maxEvals int
}

// NewNelderMead creates a Nelder-Mead adapter. maxEvals caps the number of
// objective evaluations the method may request (0 = gonum's default).
func NewNelderMead(maxEvals int) Optimizer {
	return &NelderMeadAdapter{maxEvals: maxEvals}
}

func (n *NelderMeadAdapter) Name() string { return "nelder-mead" }

func (n *NelderMeadAdapter) Minimize(objective Objective, _ Gradient, x0, lower, upper []float64) Result {
	return gonumMinimize(objective, nil, x0, n.maxEvals, &optimize.NelderMead{})
}

// LBFGSAdapter runs gonum's L-BFGS quasi-Newton method. It consumes the
// gradient closure supplied by the driver; when the driver provides none,
// gonum falls back to its own finite-difference approximation, which
// bypasses the evaluation history.
type LBFGSAdapter struct {
	maxEvals int
}

// NewLBFGS creates an L-BFGS adapter. maxEvals caps the number of objective
// evaluations the method may request (0 = gonum's default).
func NewLBFGS(maxEvals int) Optimizer {
	return &LBFGSAdapter{maxEvals: maxEvals}
}

func (l *LBFGSAdapter) Name() string { return "l-bfgs" }

func (l *LBFGSAdapter) Minimize(objective Objective, gradient Gradient, x0, lower, upper []float64) Result {
	return gonumMinimize(objective, gradient, x0, l.maxEvals, &optimize.LBFGS{})
}

// gonumMinimize bridges our closures to gonum's optimize.Problem and maps
// the result back. Bounds are not supported by these gonum methods and are
// intentionally dropped.
func gonumMinimize(objective Objective, gradient Gradient, x0 []float64, maxEvals int, method optimize.Method) Result {
	problem := optimize.Problem{
		Func: objective,
	}
	if gradient != nil {
		problem.Grad = func(dst, x []float64) {
			copy(dst, gradient(x))
		}
	}

	settings := &optimize.Settings{}
	if maxEvals > 0 {
		settings.FuncEvaluations = maxEvals
	}

	result, err := optimize.Minimize(problem, x0, settings, method)
	if err != nil && result == nil {
		return Result{
			X:           append([]float64(nil), x0...),
			Value:       objective(x0),
			Evaluations: 1,
			Reason:      "gonum: " + err.Error(),
		}
	}

	reason := result.Status.String()
	if err != nil {
		reason += ": " + err.Error()
	}

	return Result{
		X:           result.X,
		Value:       result.F,
		Evaluations: result.Stats.FuncEvaluations,
		Reason:      reason,
	}
}
