package sim

import (
	"fmt"
	"math"

	"github.com/qbitwise/varqe/internal/eigen"
)

// AlternatingAnsatzFactory builds QAOA-style trial states for this
// real-amplitude backend: per layer, one shared mixing angle driving RY
// rotations on every qubit and one shared coupling angle driving RY
// rotations interleaved with CZ entanglers along the cost operator's
// coupling graph. Two parameters per layer, like the (γ, β) schedule of
// the textbook algorithm.
type AlternatingAnsatzFactory struct{}

// Build implements eigen.AnsatzFactory. mixer is accepted for interface
// compatibility but this factory always mixes with uniform RY rotations.
func (AlternatingAnsatzFactory) Build(cost eigen.Operator, mixer eigen.Operator, reps int) (eigen.Ansatz, error) {
	h, ok := cost.(*Hamiltonian)
	if !ok {
		return nil, fmt.Errorf("sim: qaoa factory needs a *Hamiltonian cost operator, got %T", cost)
	}
	if reps < 1 {
		return nil, fmt.Errorf("sim: qaoa reps must be at least 1, got %d", reps)
	}
	if mixer != nil {
		return nil, fmt.Errorf("sim: custom mixers are not supported by the real-amplitude backend")
	}

	return &alternatingAnsatz{
		qubits:    h.Qubits(),
		reps:      reps,
		couplings: zzCouplings(h),
	}, nil
}

// zzCouplings extracts the qubit pairs that interact in the cost operator's
// ZZ terms; they define the entangling pattern of the ansatz.
func zzCouplings(h *Hamiltonian) [][2]int {
	var pairs [][2]int
	seen := make(map[[2]int]struct{})
	for _, term := range h.Terms() {
		var set []int
		for q := 0; q < len(term.Paulis); q++ {
			if term.Paulis[q] == 'Z' {
				set = append(set, q)
			}
		}
		if len(set) != 2 {
			continue
		}
		key := [2]int{set[0], set[1]}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		pairs = append(pairs, key)
	}
	return pairs
}

type alternatingAnsatz struct {
	qubits    int
	reps      int
	couplings [][2]int
}

func (a *alternatingAnsatz) Qubits() int { return a.qubits }

func (a *alternatingAnsatz) ParameterCount() int { return 2 * a.reps }

// PreferredInitialPoint starts all angles at a small positive value: the
// zero point is a stationary plateau of alternating ansaetze.
func (a *alternatingAnsatz) PreferredInitialPoint() []float64 {
	point := make([]float64, a.ParameterCount())
	for i := range point {
		point[i] = 0.1
	}
	return point
}

func (a *alternatingAnsatz) Bounds() (lower, upper []float64) {
	count := a.ParameterCount()
	lower = make([]float64, count)
	upper = make([]float64, count)
	for i := range lower {
		lower[i] = -math.Pi
		upper[i] = math.Pi
	}
	return lower, upper
}

// State starts from the uniform superposition (RY(π/2) on every qubit) and
// alternates coupling and mixing layers.
func (a *alternatingAnsatz) State(params []float64) ([]float64, error) {
	if len(params) != a.ParameterCount() {
		return nil, fmt.Errorf("ansatz: got %d parameters, want %d", len(params), a.ParameterCount())
	}

	amp := make([]float64, 1<<a.qubits)
	amp[0] = 1
	for q := 0; q < a.qubits; q++ {
		applyRY(amp, a.qubits, q, math.Pi/2)
	}

	for l := 0; l < a.reps; l++ {
		gamma, beta := params[2*l], params[2*l+1]
		for _, pair := range a.couplings {
			applyCZ(amp, a.qubits, pair[0], pair[1])
			applyRY(amp, a.qubits, pair[1], gamma)
		}
		for q := 0; q < a.qubits; q++ {
			applyRY(amp, a.qubits, q, beta)
		}
	}
	return amp, nil
}
