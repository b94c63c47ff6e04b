package config

import (
	"fmt"

	"github.com/qbitwise/varqe/internal/eigen"
	"github.com/qbitwise/varqe/internal/opt"
	"github.com/qbitwise/varqe/internal/sim"
	"github.com/qbitwise/varqe/internal/store"
)

// BuildOperator assembles the problem Hamiltonian from a run configuration:
// a named preset or explicit Pauli terms.
func BuildOperator(job *store.RunConfig) (*sim.Hamiltonian, error) {
	switch job.Preset {
	case "ising":
		return sim.IsingChain(job.Qubits, job.Field)
	case "h2":
		return sim.H2Minimal(), nil
	case "two-level":
		return sim.TwoLevel(), nil
	case "":
		return sim.NewHamiltonian(job.Qubits, job.Terms)
	default:
		return nil, fmt.Errorf("config: unknown preset %q", job.Preset)
	}
}

// BuildAnsatz assembles the trial-state family sized to the operator.
// QAOA runs derive their ansatz from the cost operator instead and do not
// call this.
func BuildAnsatz(job *store.RunConfig, h *sim.Hamiltonian) (eigen.Ansatz, error) {
	return sim.NewHardwareEfficientAnsatz(h.Qubits(), job.Layers)
}

// BuildBackend assembles the Evaluation Port: exact, or shot-sampled when
// the run asks for a finite shot count.
func BuildBackend(job *store.RunConfig) *sim.Backend {
	if job.Shots > 0 {
		return sim.NewSamplingBackend(job.Shots, job.Seed)
	}
	return sim.NewBackend()
}

// BuildOptimizer assembles the configured classical optimizer.
func BuildOptimizer(job *store.RunConfig) (opt.Optimizer, error) {
	switch job.Optimizer {
	case "mayfly":
		return opt.NewMayfly(job.MaxIters, job.PopSize, job.Seed), nil
	case "nelder-mead":
		return opt.NewNelderMead(job.MaxEvaluations), nil
	case "l-bfgs":
		return opt.NewLBFGS(job.MaxEvaluations), nil
	default:
		return nil, fmt.Errorf("config: unknown optimizer %q", job.Optimizer)
	}
}

// BuildGradient assembles the gradient approximation strategy, nil when the
// run configures none.
func BuildGradient(job *store.RunConfig) eigen.GradientStrategy {
	switch job.Gradient {
	case "finite-difference":
		return eigen.FiniteDifference{}
	case "parameter-shift":
		return eigen.ParameterShift{}
	default:
		return nil
	}
}

// BuildQAOA wraps a configured solver with the cost-derived ansatz factory.
func BuildQAOA(job *store.RunConfig, vqe *eigen.VQE) *eigen.QAOA {
	return &eigen.QAOA{
		VQE:     vqe,
		Factory: sim.AlternatingAnsatzFactory{},
		Reps:    job.Reps,
	}
}

// BuildVQD wraps a configured solver with the deflation settings for an
// excited-state run.
func BuildVQD(job *store.RunConfig, vqe *eigen.VQE) *eigen.VQD {
	vqd := &eigen.VQD{
		VQE:        vqe,
		Projectors: sim.ProjectorFactory{},
		K:          job.Eigenpairs,
	}
	if job.Beta > 0 {
		vqd.Betas = []float64{job.Beta}
	}
	return vqd
}

// BuildVQE assembles the shared solver configuration for a run.
func BuildVQE(job *store.RunConfig) (*eigen.VQE, error) {
	backend := BuildBackend(job)
	optimizer, err := BuildOptimizer(job)
	if err != nil {
		return nil, err
	}

	vqe := eigen.NewVQE(backend, optimizer)
	vqe.Gradient = BuildGradient(job)
	vqe.Seed = job.Seed
	vqe.MaxEvaluations = job.MaxEvaluations
	return vqe, nil
}
