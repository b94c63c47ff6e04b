package opt

import (
	"math"
	"testing"
)

func shiftedQuadratic(x []float64) float64 {
	dx, dy := x[0]-1, x[1]+2
	return dx*dx + dy*dy
}

func TestNelderMeadConvergesOnQuadratic(t *testing.T) {
	optimizer := NewNelderMead(0)

	result := optimizer.Minimize(shiftedQuadratic, nil, []float64{0, 0}, nil, nil)

	if math.Abs(result.X[0]-1) > 1e-3 || math.Abs(result.X[1]+2) > 1e-3 {
		t.Errorf("Minimum should be near (1, -2), got %v", result.X)
	}
	if result.Reason == "" {
		t.Error("Reason should report gonum's status")
	}
}

func TestNelderMeadHonorsEvaluationCap(t *testing.T) {
	evals := 0
	counted := func(x []float64) float64 {
		evals++
		return shiftedQuadratic(x)
	}

	NewNelderMead(20).Minimize(counted, nil, []float64{5, 5}, nil, nil)

	// gonum may finish the in-flight iteration, but must stop near the cap.
	if evals > 30 {
		t.Errorf("Expected about 20 evaluations, got %d", evals)
	}
}

func TestLBFGSUsesSuppliedGradient(t *testing.T) {
	gradCalls := 0
	gradient := func(x []float64) []float64 {
		gradCalls++
		return []float64{2 * (x[0] - 1), 2 * (x[1] + 2)}
	}

	result := NewLBFGS(0).Minimize(shiftedQuadratic, gradient, []float64{0, 0}, nil, nil)

	if gradCalls == 0 {
		t.Error("L-BFGS should consume the supplied gradient")
	}
	if math.Abs(result.X[0]-1) > 1e-6 || math.Abs(result.X[1]+2) > 1e-6 {
		t.Errorf("Minimum should be near (1, -2), got %v", result.X)
	}
}
