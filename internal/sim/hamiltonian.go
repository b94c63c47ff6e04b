// Package sim is the local reference Evaluation Port: a real-amplitude
// statevector simulator for small qubit counts. It backs the CLI, the job
// server, and the test suite with deterministic (or seeded shot-sampled)
// expectation values. Operators are dense real symmetric matrices assembled
// from Pauli strings over {I, X, Z}.
package sim

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Term is one weighted Pauli string, e.g. {-1.0, "ZZ"} or {0.5, "XI"}.
// The string has one character per qubit, drawn from I, X, Z.
type Term struct {
	Coefficient float64 `json:"coefficient" yaml:"coefficient"`
	Paulis      string  `json:"paulis" yaml:"paulis"`
}

// Hamiltonian is a weighted sum of Pauli strings, materialized as a dense
// symmetric matrix. It is immutable after construction.
type Hamiltonian struct {
	qubits int
	terms  []Term
	matrix *mat.Dense
}

var pauliMatrices = map[byte]*mat.Dense{
	'I': mat.NewDense(2, 2, []float64{1, 0, 0, 1}),
	'X': mat.NewDense(2, 2, []float64{0, 1, 1, 0}),
	'Z': mat.NewDense(2, 2, []float64{1, 0, 0, -1}),
}

// NewHamiltonian assembles the operator matrix from its Pauli terms.
// Every term must have exactly one Pauli per qubit.
func NewHamiltonian(qubits int, terms []Term) (*Hamiltonian, error) {
	if qubits < 1 {
		return nil, fmt.Errorf("hamiltonian: need at least 1 qubit, got %d", qubits)
	}
	if qubits > 20 {
		return nil, fmt.Errorf("hamiltonian: %d qubits exceeds dense-matrix limit of 20", qubits)
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("hamiltonian: no terms")
	}

	dim := 1 << qubits
	sum := mat.NewDense(dim, dim, nil)

	for _, term := range terms {
		if len(term.Paulis) != qubits {
			return nil, fmt.Errorf("hamiltonian: term %q has %d Paulis, want %d", term.Paulis, len(term.Paulis), qubits)
		}
		m, err := pauliString(term.Paulis)
		if err != nil {
			return nil, err
		}
		var scaled mat.Dense
		scaled.Scale(term.Coefficient, m)
		sum.Add(sum, &scaled)
	}

	return &Hamiltonian{
		qubits: qubits,
		terms:  append([]Term(nil), terms...),
		matrix: sum,
	}, nil
}

// pauliString builds the 2^n × 2^n matrix for one Pauli string by repeated
// Kronecker products, qubit 0 leftmost (most significant).
func pauliString(paulis string) (*mat.Dense, error) {
	first, ok := pauliMatrices[paulis[0]]
	if !ok {
		return nil, fmt.Errorf("hamiltonian: unsupported Pauli %q (supported: I, X, Z)", paulis[0])
	}

	acc := first
	for i := 1; i < len(paulis); i++ {
		single, ok := pauliMatrices[paulis[i]]
		if !ok {
			return nil, fmt.Errorf("hamiltonian: unsupported Pauli %q (supported: I, X, Z)", paulis[i])
		}
		var next mat.Dense
		next.Kronecker(acc, single)
		acc = &next
	}
	return acc, nil
}

// Qubits reports the number of qubits the operator acts on.
func (h *Hamiltonian) Qubits() int { return h.qubits }

// Dimension implements eigen.Operator.
func (h *Hamiltonian) Dimension() int { return 1 << h.qubits }

// Matrix exposes the assembled operator matrix to the backend.
func (h *Hamiltonian) Matrix() mat.Matrix { return h.matrix }

// Terms returns a copy of the Pauli decomposition.
func (h *Hamiltonian) Terms() []Term { return append([]Term(nil), h.terms...) }
