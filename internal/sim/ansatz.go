package sim

import (
	"fmt"
	"math"
)

// StatePreparer is implemented by every ansatz this backend can simulate:
// it produces the real amplitude vector for a bound parameter vector.
type StatePreparer interface {
	Qubits() int
	State(params []float64) ([]float64, error)
}

// HardwareEfficientAnsatz is a layered RY-rotation + CZ-entangler circuit
// over n qubits. All gates are real, so states stay real-amplitude. The
// parameter count is qubits*(layers+1): one RY angle per qubit in the
// initial layer and after each entangling layer.
type HardwareEfficientAnsatz struct {
	qubits int
	layers int

	preferred    []float64
	lower, upper []float64
}

// NewHardwareEfficientAnsatz creates an unbounded ansatz with no preferred
// initial point; initial parameters are then sampled from the solver's
// fallback range.
func NewHardwareEfficientAnsatz(qubits, layers int) (*HardwareEfficientAnsatz, error) {
	if qubits < 1 {
		return nil, fmt.Errorf("ansatz: need at least 1 qubit, got %d", qubits)
	}
	if layers < 0 {
		return nil, fmt.Errorf("ansatz: layers must be non-negative, got %d", layers)
	}
	return &HardwareEfficientAnsatz{qubits: qubits, layers: layers}, nil
}

// WithUniformBounds declares the same (lo, hi) bound for every parameter.
func (a *HardwareEfficientAnsatz) WithUniformBounds(lo, hi float64) *HardwareEfficientAnsatz {
	count := a.ParameterCount()
	a.lower = make([]float64, count)
	a.upper = make([]float64, count)
	for i := range a.lower {
		a.lower[i] = lo
		a.upper[i] = hi
	}
	return a
}

// WithPreferredInitialPoint declares the ansatz's own default starting
// point. The point is copied.
func (a *HardwareEfficientAnsatz) WithPreferredInitialPoint(point []float64) *HardwareEfficientAnsatz {
	a.preferred = append([]float64(nil), point...)
	return a
}

func (a *HardwareEfficientAnsatz) Qubits() int { return a.qubits }

// ParameterCount implements eigen.Ansatz.
func (a *HardwareEfficientAnsatz) ParameterCount() int {
	return a.qubits * (a.layers + 1)
}

// PreferredInitialPoint implements eigen.Ansatz.
func (a *HardwareEfficientAnsatz) PreferredInitialPoint() []float64 {
	if a.preferred == nil {
		return nil
	}
	return append([]float64(nil), a.preferred...)
}

// Bounds implements eigen.Ansatz.
func (a *HardwareEfficientAnsatz) Bounds() (lower, upper []float64) {
	return a.lower, a.upper
}

// State prepares the amplitude vector from |0...0⟩: an RY layer, then for
// each entangling layer a CZ chain followed by another RY layer.
func (a *HardwareEfficientAnsatz) State(params []float64) ([]float64, error) {
	if len(params) != a.ParameterCount() {
		return nil, fmt.Errorf("ansatz: got %d parameters, want %d", len(params), a.ParameterCount())
	}

	amp := make([]float64, 1<<a.qubits)
	amp[0] = 1

	next := 0
	for q := 0; q < a.qubits; q++ {
		applyRY(amp, a.qubits, q, params[next])
		next++
	}
	for l := 0; l < a.layers; l++ {
		for q := 0; q+1 < a.qubits; q++ {
			applyCZ(amp, a.qubits, q, q+1)
		}
		for q := 0; q < a.qubits; q++ {
			applyRY(amp, a.qubits, q, params[next])
			next++
		}
	}
	return amp, nil
}

// applyRY rotates qubit q by theta. RY keeps amplitudes real:
// |0⟩ → cos(θ/2)|0⟩ + sin(θ/2)|1⟩, |1⟩ → -sin(θ/2)|0⟩ + cos(θ/2)|1⟩.
// Qubit 0 is the most significant bit, matching the Kronecker ordering of
// the operator matrices.
func applyRY(amp []float64, qubits, q int, theta float64) {
	mask := 1 << (qubits - 1 - q)
	c, s := math.Cos(theta/2), math.Sin(theta/2)
	for i := range amp {
		if i&mask != 0 {
			continue
		}
		j := i | mask
		a0, a1 := amp[i], amp[j]
		amp[i] = c*a0 - s*a1
		amp[j] = s*a0 + c*a1
	}
}

// applyCZ flips the sign of amplitudes where both qubits are set.
func applyCZ(amp []float64, qubits, q1, q2 int) {
	m1 := 1 << (qubits - 1 - q1)
	m2 := 1 << (qubits - 1 - q2)
	for i := range amp {
		if i&m1 != 0 && i&m2 != 0 {
			amp[i] = -amp[i]
		}
	}
}
