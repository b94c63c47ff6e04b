package eigen

import (
	"context"
	"fmt"
)

// QAOA is the quantum approximate optimization algorithm as a minimum
// eigensolver: a VQE whose ansatz is derived from the cost operator itself
// by alternating cost and mixer layers. The ansatz construction stays
// behind the AnsatzFactory port; this type only wires the factory output
// into the shared optimization core.
type QAOA struct {
	// VQE carries the shared run configuration.
	VQE *VQE

	// Factory builds the alternating ansatz from the cost operator.
	Factory AnsatzFactory

	// Reps is the number of alternating layers (p). Zero means 1.
	Reps int

	// Mixer optionally replaces the factory's default mixing operator,
	// e.g. to constrain the search to a feasible subspace.
	Mixer Operator
}

// Compute builds the ansatz for the cost operator and runs the shared
// ground-state search.
func (q *QAOA) Compute(ctx context.Context, cost Operator, aux []AuxOperator) (*Result, error) {
	if q.Factory == nil {
		return nil, fmt.Errorf("qaoa: ansatz factory required")
	}

	reps := q.Reps
	if reps < 1 {
		reps = 1
	}

	ansatz, err := q.Factory.Build(cost, q.Mixer, reps)
	if err != nil {
		return nil, fmt.Errorf("qaoa: building ansatz: %w", err)
	}

	return q.VQE.compute(ctx, ansatz, cost, aux, nil, 0)
}
