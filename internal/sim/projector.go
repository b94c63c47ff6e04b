package sim

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/qbitwise/varqe/internal/eigen"
)

// Projector is the rank-one operator |ψ⟩⟨ψ| for a captured state. Its
// expectation at new parameters θ equals the squared overlap
// |⟨ψ(θ)|ψ⟩|², which is exactly the quantity the deflation penalty needs.
type Projector struct {
	dim    int
	matrix *mat.Dense
}

// Dimension implements eigen.Operator.
func (p *Projector) Dimension() int { return p.dim }

// Matrix implements MatrixOperator.
func (p *Projector) Matrix() mat.Matrix { return p.matrix }

// ProjectorFactory builds overlap projectors by simulating the captured
// eigenstate once and taking its outer product. It implements
// eigen.ProjectorFactory for ansaetze this backend can prepare.
type ProjectorFactory struct{}

// Projector implements eigen.ProjectorFactory.
func (ProjectorFactory) Projector(ansatz eigen.Ansatz, params []float64) (eigen.Operator, error) {
	preparer, ok := ansatz.(StatePreparer)
	if !ok {
		return nil, fmt.Errorf("sim: ansatz %T cannot be simulated by this backend", ansatz)
	}

	amp, err := preparer.State(params)
	if err != nil {
		return nil, err
	}

	v := mat.NewVecDense(len(amp), amp)
	var outer mat.Dense
	outer.Outer(1, v, v)

	return &Projector{dim: len(amp), matrix: &outer}, nil
}
