package sim

import (
	"math"
	"testing"
)

func TestAlternatingAnsatzFactory(t *testing.T) {
	factory := AlternatingAnsatzFactory{}
	cost, err := IsingChain(3, 0.5)
	if err != nil {
		t.Fatalf("IsingChain failed: %v", err)
	}

	ansatz, err := factory.Build(cost, nil, 3)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if got := ansatz.ParameterCount(); got != 6 {
		t.Errorf("ParameterCount = %d, want 6 (two per layer)", got)
	}
	if point := ansatz.PreferredInitialPoint(); len(point) != 6 || point[0] != 0.1 {
		t.Errorf("PreferredInitialPoint = %v", point)
	}

	lower, upper := ansatz.Bounds()
	if lower[0] != -math.Pi || upper[0] != math.Pi {
		t.Errorf("Bounds = [%v, %v], want [-pi, pi]", lower[0], upper[0])
	}
}

func TestAlternatingAnsatzFactoryRejections(t *testing.T) {
	factory := AlternatingAnsatzFactory{}
	cost, _ := IsingChain(2, 1)

	if _, err := factory.Build(plainOperator{}, nil, 1); err == nil {
		t.Error("Non-Hamiltonian cost operators should be rejected")
	}
	if _, err := factory.Build(cost, nil, 0); err == nil {
		t.Error("Zero reps should be rejected")
	}
	if _, err := factory.Build(cost, TwoLevel(), 1); err == nil {
		t.Error("Custom mixers should be rejected")
	}
}

func TestZZCouplingsFollowCostGraph(t *testing.T) {
	h, err := NewHamiltonian(3, []Term{
		{Coefficient: -1, Paulis: "ZZI"},
		{Coefficient: -1, Paulis: "ZIZ"},
		{Coefficient: -1, Paulis: "ZZI"}, // duplicate coupling
		{Coefficient: 0.5, Paulis: "XII"},
	})
	if err != nil {
		t.Fatalf("NewHamiltonian failed: %v", err)
	}

	pairs := zzCouplings(h)
	want := [][2]int{{0, 1}, {0, 2}}
	if len(pairs) != len(want) {
		t.Fatalf("zzCouplings = %v, want %v", pairs, want)
	}
	for i := range want {
		if pairs[i] != want[i] {
			t.Errorf("Coupling %d = %v, want %v", i, pairs[i], want[i])
		}
	}
}

func TestAlternatingAnsatzStateNormalized(t *testing.T) {
	factory := AlternatingAnsatzFactory{}
	cost, _ := IsingChain(3, 1)

	ansatz, err := factory.Build(cost, nil, 2)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	preparer := ansatz.(StatePreparer)
	amp, err := preparer.State([]float64{0.3, -0.8, 1.2, 0.05})
	if err != nil {
		t.Fatalf("State failed: %v", err)
	}
	if n := stateNorm(amp); math.Abs(n-1) > 1e-10 {
		t.Errorf("State norm = %v, want 1", n)
	}
}
