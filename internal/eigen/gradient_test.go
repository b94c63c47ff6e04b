package eigen

import (
	"math"
	"testing"
)

func TestFiniteDifferencePlanOrder(t *testing.T) {
	fd := FiniteDifference{Step: 0.1}
	x := []float64{1, 2}

	points := fd.Plan(x)
	if len(points) != 4 {
		t.Fatalf("Expected 4 points for 2 parameters, got %d", len(points))
	}

	want := [][]float64{{1.1, 2}, {0.9, 2}, {1, 2.1}, {1, 1.9}}
	for i, pt := range points {
		for j := range pt {
			if math.Abs(pt[j]-want[i][j]) > 1e-12 {
				t.Errorf("Point %d = %v, want %v", i, pt, want[i])
			}
		}
	}
}

func TestFiniteDifferenceGradientOfQuadratic(t *testing.T) {
	fd := FiniteDifference{}
	x := []float64{3, -2}

	f := func(p []float64) float64 { return p[0]*p[0] + 2*p[1]*p[1] }

	points := fd.Plan(x)
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = f(p)
	}

	grad := fd.Combine(x, values)
	if math.Abs(grad[0]-6) > 1e-4 {
		t.Errorf("grad[0] = %v, want 6", grad[0])
	}
	if math.Abs(grad[1]-(-8)) > 1e-4 {
		t.Errorf("grad[1] = %v, want -8", grad[1])
	}
}

func TestParameterShiftExactForRotations(t *testing.T) {
	// f(θ) = cos(θ) is generated by a single rotation; the shift rule is
	// exact: f'(θ) = (f(θ+π/2) - f(θ-π/2)) / 2 = -sin(θ).
	ps := ParameterShift{}
	x := []float64{0.7}

	points := ps.Plan(x)
	if len(points) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(points))
	}

	values := []float64{math.Cos(points[0][0]), math.Cos(points[1][0])}
	grad := ps.Combine(x, values)

	want := -math.Sin(0.7)
	if math.Abs(grad[0]-want) > 1e-12 {
		t.Errorf("grad[0] = %v, want %v", grad[0], want)
	}
}

func TestSymmetricShiftsCopyInput(t *testing.T) {
	x := []float64{1, 2}
	points := symmetricShifts(x, 0.5)

	points[0][1] = 99
	if x[1] != 2 {
		t.Error("Planned points must not alias the input vector")
	}
}
