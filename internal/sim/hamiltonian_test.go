package sim

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// lowestEigenvalue diagonalizes the Hamiltonian exactly.
func lowestEigenvalue(t *testing.T, h *Hamiltonian) float64 {
	t.Helper()

	dim := h.Dimension()
	sym := mat.NewSymDense(dim, nil)
	dense := h.Matrix().(*mat.Dense)
	for i := 0; i < dim; i++ {
		for j := i; j < dim; j++ {
			sym.SetSym(i, j, dense.At(i, j))
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(sym, false) {
		t.Fatal("eigendecomposition failed")
	}
	values := eig.Values(nil)

	lowest := math.Inf(1)
	for _, v := range values {
		if v < lowest {
			lowest = v
		}
	}
	return lowest
}

func TestTwoLevelSpectrum(t *testing.T) {
	h := TwoLevel()

	m := h.Matrix()
	want := [][]float64{{0, 0}, {0, 1}}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if math.Abs(m.At(i, j)-want[i][j]) > 1e-12 {
				t.Errorf("Matrix[%d][%d] = %v, want %v", i, j, m.At(i, j), want[i][j])
			}
		}
	}
}

func TestIsingChainMatrix(t *testing.T) {
	// Zero field: H = -Z0 Z1, diagonal (-1, 1, 1, -1).
	h, err := IsingChain(2, 0)
	if err != nil {
		t.Fatalf("IsingChain failed: %v", err)
	}

	want := []float64{-1, 1, 1, -1}
	m := h.Matrix()
	for i := 0; i < 4; i++ {
		if math.Abs(m.At(i, i)-want[i]) > 1e-12 {
			t.Errorf("Diagonal[%d] = %v, want %v", i, m.At(i, i), want[i])
		}
	}
}

func TestH2MinimalGroundEnergy(t *testing.T) {
	ground := lowestEigenvalue(t, H2Minimal())
	if math.Abs(ground-(-1.8573)) > 1e-3 {
		t.Errorf("H2 ground energy = %v, want about -1.8573", ground)
	}
}

func TestNewHamiltonianValidation(t *testing.T) {
	cases := []struct {
		name   string
		qubits int
		terms  []Term
	}{
		{"zero qubits", 0, []Term{{Coefficient: 1, Paulis: ""}}},
		{"too many qubits", 21, nil},
		{"term length mismatch", 2, []Term{{Coefficient: 1, Paulis: "Z"}}},
		{"unknown pauli", 1, []Term{{Coefficient: 1, Paulis: "Q"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewHamiltonian(tc.qubits, tc.terms); err == nil {
				t.Error("Expected a validation error")
			}
		})
	}
}

func TestHamiltonianTermsCopied(t *testing.T) {
	h := TwoLevel()
	terms := h.Terms()
	terms[0].Coefficient = 99

	if h.Terms()[0].Coefficient == 99 {
		t.Error("Terms must return a copy")
	}
}
