package sim

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/qbitwise/varqe/internal/eigen"
)

// MatrixOperator is the operator shape this backend can measure: anything
// exposing a dense matrix of the right dimension.
type MatrixOperator interface {
	eigen.Operator
	Matrix() mat.Matrix
}

// Backend is the local statevector Evaluation Port. With Shots == 0 it
// returns exact expectation values and is fully deterministic; with a
// finite shot count it adds seeded Gaussian sampling noise scaled by the
// exact variance, imitating a sampling device.
//
// Backend is safe for the concurrent gradient and auxiliary batches the
// driver may dispatch.
type Backend struct {
	shots int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewBackend creates an exact backend (no sampling noise).
func NewBackend() *Backend {
	return &Backend{}
}

// NewSamplingBackend creates a backend that perturbs every estimate with
// seeded noise of variance Var(op)/shots, reporting the variance alongside.
func NewSamplingBackend(shots int, seed int64) *Backend {
	return &Backend{shots: shots, rng: rand.New(rand.NewSource(seed))}
}

// Estimate implements eigen.EvaluationPort.
func (b *Backend) Estimate(ctx context.Context, ansatz eigen.Ansatz, op eigen.Operator, params []float64) (eigen.Estimate, error) {
	if err := ctx.Err(); err != nil {
		return eigen.Estimate{}, err
	}

	preparer, ok := ansatz.(StatePreparer)
	if !ok {
		return eigen.Estimate{}, fmt.Errorf("sim: ansatz %T cannot be simulated by this backend", ansatz)
	}
	matrixOp, ok := op.(MatrixOperator)
	if !ok {
		return eigen.Estimate{}, fmt.Errorf("sim: operator %T has no matrix form", op)
	}

	amp, err := preparer.State(params)
	if err != nil {
		return eigen.Estimate{}, err
	}
	if len(amp) != op.Dimension() {
		return eigen.Estimate{}, fmt.Errorf("sim: state dimension %d does not match operator dimension %d", len(amp), op.Dimension())
	}

	value, variance := expectation(matrixOp.Matrix(), amp)

	est := eigen.Estimate{Value: value}
	if b.shots > 0 {
		b.mu.Lock()
		noise := b.rng.NormFloat64()
		b.mu.Unlock()

		sampleVar := variance / float64(b.shots)
		est.Value += noise * math.Sqrt(sampleVar)
		est.Variance = sampleVar
		est.HasVariance = true
	}
	return est, nil
}

// expectation computes ⟨x|M|x⟩ and the operator variance ⟨x|M²|x⟩ − ⟨x|M|x⟩².
func expectation(m mat.Matrix, amp []float64) (value, variance float64) {
	x := mat.NewVecDense(len(amp), amp)

	value = mat.Inner(x, m, x)

	var mx mat.VecDense
	mx.MulVec(m, x)
	second := mat.Dot(&mx, &mx)

	variance = second - value*value
	if variance < 0 {
		variance = 0 // numerical round-off on eigenstates
	}
	return value, variance
}
