package eigen

import (
	"context"
	"fmt"
	"log/slog"
)

// VQD is the variational quantum deflation extension: it finds an ordered
// sequence of eigenpairs by running the shared optimization driver once per
// excitation level, each time adding an overlap penalty against all
// previously found eigenstates.
type VQD struct {
	// VQE carries the shared run configuration (port, optimizer, gradient
	// strategy, callback, ceilings). Each level runs through it unchanged
	// except for the penalty term.
	VQE *VQE

	// Projectors builds the overlap-projector operator for each found
	// eigenstate; its expectation at new parameters is the squared overlap
	// entering the penalty.
	Projectors ProjectorFactory

	// K is the number of eigenpairs to find (K = 1 is plain ground-state
	// search).
	K int

	// Betas are the non-negative penalty coefficients. A single entry
	// applies uniformly to every prior state; otherwise entry j weighs the
	// overlap with eigenstate j and len(Betas) must be at least K-1. Empty
	// means DefaultBeta uniformly. The coefficients are configuration, not
	// computed.
	Betas []float64
}

// DefaultBeta is the uniform penalty coefficient applied when none is
// configured. It must dominate the spectral gaps of interest; callers with
// wide spectra should configure their own.
const DefaultBeta = 3.0

// StepFailure marks the level at which a deflation sequence stopped early.
type StepFailure struct {
	Level int
	Err   error
}

func (f *StepFailure) Error() string {
	return fmt.Sprintf("deflation step %d failed: %v", f.Level, f.Err)
}

func (f *StepFailure) Unwrap() error { return f.Err }

// EigenpairSequence is the ordered outcome of a deflation run: index equals
// excitation level, with eigenpair k computed under a penalty built only
// from eigenpairs 0..k-1. Failed is non-nil when the sequence stopped
// before reaching K; the eigenpairs found up to that point are still
// present.
type EigenpairSequence struct {
	Eigenpairs []*Result
	Failed     *StepFailure
}

// Compute runs the deflation sequence. The returned sequence is never nil;
// on a mid-sequence failure it carries the completed eigenpairs alongside
// the failure marker, and the error is also returned so callers cannot
// mistake a truncated sequence for a complete one.
func (v *VQD) Compute(ctx context.Context, ansatz Ansatz, op Operator) (*EigenpairSequence, error) {
	if v.K < 1 {
		return nil, fmt.Errorf("vqd: K must be at least 1, got %d", v.K)
	}
	if v.Projectors == nil && v.K > 1 {
		return nil, fmt.Errorf("vqd: projector factory required for K > 1")
	}
	if len(v.Betas) > 1 && len(v.Betas) < v.K-1 {
		return nil, fmt.Errorf("vqd: need %d penalty coefficients, got %d", v.K-1, len(v.Betas))
	}
	for _, beta := range v.Betas {
		if beta < 0 {
			return nil, fmt.Errorf("vqd: penalty coefficients must be non-negative, got %v", beta)
		}
	}

	seq := &EigenpairSequence{}

	for level := 0; level < v.K; level++ {
		penalty, err := v.penaltyFor(ansatz, seq.Eigenpairs)
		if err != nil {
			seq.Failed = &StepFailure{Level: level, Err: err}
			return seq, seq.Failed
		}

		slog.Info("deflation step", "level", level, "of", v.K)

		result, err := v.VQE.compute(ctx, ansatz, op, nil, penalty, level)
		if err != nil {
			seq.Failed = &StepFailure{Level: level, Err: err}
			return seq, seq.Failed
		}

		// Results of earlier levels are read-only from here on; the next
		// level only ever reads their optimal parameters.
		seq.Eigenpairs = append(seq.Eigenpairs, result)

		if result.Status == StatusInterrupted {
			// Carry the partial eigenpair but do not build further levels
			// on an unconverged state.
			if level < v.K-1 {
				seq.Failed = &StepFailure{Level: level, Err: fmt.Errorf("run interrupted: %s", result.Reason)}
				return seq, seq.Failed
			}
		}
	}

	return seq, nil
}

// penaltyFor builds the overlap-penalty closure for the next level from the
// eigenpairs found so far. Projector operators are constructed once per
// level; each optimizer query then spends one port call per prior state.
func (v *VQD) penaltyFor(ansatz Ansatz, priors []*Result) (PenaltyFunc, error) {
	if len(priors) == 0 {
		return nil, nil
	}

	projectors := make([]Operator, len(priors))
	betas := make([]float64, len(priors))
	for j, prior := range priors {
		proj, err := v.Projectors.Projector(ansatz, prior.OptimalParameters)
		if err != nil {
			return nil, fmt.Errorf("building projector for level %d: %w", j, err)
		}
		projectors[j] = proj
		betas[j] = v.beta(j)
	}

	port := v.VQE.Port
	return func(ctx context.Context, params []float64) (float64, int, error) {
		var total float64
		for j, proj := range projectors {
			est, err := port.Estimate(ctx, ansatz, proj, params)
			if err != nil {
				return 0, j + 1, fmt.Errorf("overlap with level %d: %w", j, err)
			}
			total += betas[j] * est.Value
		}
		return total, len(projectors), nil
	}, nil
}

func (v *VQD) beta(j int) float64 {
	switch {
	case len(v.Betas) == 0:
		return DefaultBeta
	case len(v.Betas) == 1:
		return v.Betas[0]
	default:
		return v.Betas[j]
	}
}
