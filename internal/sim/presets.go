package sim

import (
	"fmt"
	"strings"
)

// IsingChain builds the transverse-field Ising Hamiltonian on an open
// chain: H = -Σ Z_i Z_{i+1} - h Σ X_i.
func IsingChain(qubits int, field float64) (*Hamiltonian, error) {
	if qubits < 2 {
		return nil, fmt.Errorf("sim: ising chain needs at least 2 qubits, got %d", qubits)
	}

	var terms []Term
	for q := 0; q+1 < qubits; q++ {
		terms = append(terms, Term{Coefficient: -1, Paulis: pauliAt(qubits, map[int]byte{q: 'Z', q + 1: 'Z'})})
	}
	for q := 0; q < qubits; q++ {
		terms = append(terms, Term{Coefficient: -field, Paulis: pauliAt(qubits, map[int]byte{q: 'X'})})
	}
	return NewHamiltonian(qubits, terms)
}

// TwoLevel builds the single-qubit operator (I - Z)/2 = diag(0, 1), a
// diagnostic operator with known spectrum {0, 1}.
func TwoLevel() *Hamiltonian {
	h, err := NewHamiltonian(1, []Term{
		{Coefficient: 0.5, Paulis: "I"},
		{Coefficient: -0.5, Paulis: "Z"},
	})
	if err != nil {
		panic(err) // static construction cannot fail
	}
	return h
}

// H2Minimal builds the minimal-basis hydrogen-molecule Hamiltonian at
// equilibrium bond length, reduced to two qubits. Its ground-state energy
// is ≈ -1.8573 Hartree.
func H2Minimal() *Hamiltonian {
	h, err := NewHamiltonian(2, []Term{
		{Coefficient: -1.052373245772859, Paulis: "II"},
		{Coefficient: 0.39793742484318045, Paulis: "IZ"},
		{Coefficient: -0.39793742484318045, Paulis: "ZI"},
		{Coefficient: -0.01128010425623538, Paulis: "ZZ"},
		{Coefficient: 0.18093119978423156, Paulis: "XX"},
	})
	if err != nil {
		panic(err) // static construction cannot fail
	}
	return h
}

// pauliAt renders a Pauli string that is identity everywhere except the
// given positions.
func pauliAt(qubits int, ops map[int]byte) string {
	var b strings.Builder
	for q := 0; q < qubits; q++ {
		if p, ok := ops[q]; ok {
			b.WriteByte(p)
		} else {
			b.WriteByte('I')
		}
	}
	return b.String()
}
