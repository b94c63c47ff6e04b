package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/qbitwise/varqe/internal/config"
	"github.com/qbitwise/varqe/internal/eigen"
	"github.com/qbitwise/varqe/internal/sim"
	"github.com/qbitwise/varqe/internal/store"
)

var (
	configPath string
	dataDir    string
	noSave     bool
	patience   int

	jobFlags store.RunConfig
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single eigensolver optimization",
	Long: `Runs one VQE or QAOA ground-state search against the configured
Hamiltonian and persists the result. Interrupting with Ctrl-C yields the
best eigenvalue found so far.`,
	RunE: runSolve,
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "YAML config file (flags override)")
	runCmd.Flags().StringVar(&dataDir, "data-dir", "./data", "Base directory for run storage")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "Skip persisting the run record and trace")
	runCmd.Flags().IntVar(&patience, "patience", 0, "Cancel after N evaluations without improvement (0 = off)")

	runCmd.Flags().StringVar(&jobFlags.Algorithm, "algorithm", "vqe", "Algorithm: vqe, qaoa")
	runCmd.Flags().StringVar(&jobFlags.Preset, "preset", "ising", "Problem preset: ising, h2, two-level")
	runCmd.Flags().IntVar(&jobFlags.Qubits, "qubits", 4, "Number of qubits (ising preset)")
	runCmd.Flags().Float64Var(&jobFlags.Field, "field", 1.0, "Transverse field strength (ising preset)")
	runCmd.Flags().IntVar(&jobFlags.Layers, "layers", 2, "Entangling layers in the ansatz")
	runCmd.Flags().IntVar(&jobFlags.Reps, "reps", 2, "Alternating layer count (qaoa)")
	runCmd.Flags().StringVar(&jobFlags.Optimizer, "optimizer", "mayfly", "Optimizer: mayfly, nelder-mead, l-bfgs")
	runCmd.Flags().StringVar(&jobFlags.Gradient, "gradient", "", "Gradient strategy: finite-difference, parameter-shift")
	runCmd.Flags().IntVar(&jobFlags.MaxIters, "iters", 200, "Max optimizer iterations")
	runCmd.Flags().IntVar(&jobFlags.PopSize, "pop", 30, "Population size (mayfly)")
	runCmd.Flags().Int64Var(&jobFlags.Seed, "seed", 42, "Random seed")
	runCmd.Flags().IntVar(&jobFlags.Shots, "shots", 0, "Measurement shots (0 = exact expectations)")
	runCmd.Flags().IntVar(&jobFlags.MaxEvaluations, "max-evals", 0, "Evaluation ceiling (0 = unlimited)")

	rootCmd.AddCommand(runCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	job, err := resolveJobConfig(cmd)
	if err != nil {
		return err
	}
	if job.Algorithm == "vqd" {
		return fmt.Errorf("use the vqd command for excited-state runs")
	}

	_, err = executeJob(job)
	return err
}

// resolveJobConfig merges the optional config file with command-line flags;
// explicitly set flags win.
func resolveJobConfig(cmd *cobra.Command) (*store.RunConfig, error) {
	job := jobFlags
	if configPath != "" {
		file, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		merged := file.Job
		overrideFromFlags(cmd, &merged, &job)
		job = merged
	}

	config.ApplyJobDefaults(&job)
	if err := config.ValidateJob(&job); err != nil {
		return nil, err
	}
	return &job, nil
}

// overrideFromFlags copies flag values over config-file values for flags
// the user explicitly set.
func overrideFromFlags(cmd *cobra.Command, dst, flags *store.RunConfig) {
	set := func(name string) bool { return cmd.Flags().Changed(name) }
	if set("algorithm") {
		dst.Algorithm = flags.Algorithm
	}
	if set("preset") {
		dst.Preset = flags.Preset
	}
	if set("qubits") {
		dst.Qubits = flags.Qubits
	}
	if set("field") {
		dst.Field = flags.Field
	}
	if set("layers") {
		dst.Layers = flags.Layers
	}
	if set("reps") {
		dst.Reps = flags.Reps
	}
	if set("optimizer") {
		dst.Optimizer = flags.Optimizer
	}
	if set("gradient") {
		dst.Gradient = flags.Gradient
	}
	if set("iters") {
		dst.MaxIters = flags.MaxIters
	}
	if set("pop") {
		dst.PopSize = flags.PopSize
	}
	if set("seed") {
		dst.Seed = flags.Seed
	}
	if set("shots") {
		dst.Shots = flags.Shots
	}
	if set("max-evals") {
		dst.MaxEvaluations = flags.MaxEvaluations
	}
	if set("eigenpairs") {
		dst.Eigenpairs = flags.Eigenpairs
	}
	if set("beta") {
		dst.Beta = flags.Beta
	}
}

// executeJob runs the configured algorithm end to end: signal handling,
// trace writing, optional stall watchdog, and run persistence.
func executeJob(job *store.RunConfig) (*store.RunRecord, error) {
	return executeJobWithInitialPoint(job, nil)
}

func executeJobWithInitialPoint(job *store.RunConfig, initial []float64) (*store.RunRecord, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.New().String()
	startTime := time.Now()
	slog.Info("Starting run",
		"run_id", runID,
		"algorithm", job.Algorithm,
		"preset", job.Preset,
		"optimizer", job.Optimizer,
	)

	op, err := config.BuildOperator(job)
	if err != nil {
		return nil, err
	}

	vqe, err := config.BuildVQE(job)
	if err != nil {
		return nil, err
	}
	vqe.InitialPoint = initial

	var trace *store.TraceWriter
	if !noSave {
		trace, err = store.NewTraceWriter(dataDir, runID)
		if err != nil {
			return nil, fmt.Errorf("creating trace: %w", err)
		}
		defer trace.Close()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	vqe.Callback = cliCallback(trace, patience, cancel)

	pairs, solveErr := computePairs(ctx, job, vqe, op)

	record := &store.RunRecord{
		RunID:     runID,
		Config:    *job,
		Pairs:     pairs,
		StartTime: startTime,
		EndTime:   time.Now(),
		Status:    "completed",
	}
	if solveErr != nil {
		record.Status = "failed"
		record.Error = solveErr.Error()
	} else {
		for _, pair := range pairs {
			if pair.Status == string(eigen.StatusInterrupted) {
				record.Status = "interrupted"
			}
		}
	}

	if !noSave && len(pairs) > 0 {
		st, err := store.NewFSStore(dataDir)
		if err != nil {
			return nil, err
		}
		if err := st.SaveRun(runID, record); err != nil {
			return nil, fmt.Errorf("persisting run: %w", err)
		}
		slog.Info("Run persisted", "run_id", runID)
	}

	if solveErr != nil && len(pairs) == 0 {
		return nil, solveErr
	}

	for _, pair := range pairs {
		fmt.Printf("level %d: eigenvalue %.10f (%s after %d evaluations)\n",
			pair.Level, pair.Value, pair.Status, pair.Evaluations)
	}
	return record, solveErr
}

// computePairs dispatches to the configured algorithm.
func computePairs(ctx context.Context, job *store.RunConfig, vqe *eigen.VQE, op *sim.Hamiltonian) ([]store.EigenpairRecord, error) {
	switch job.Algorithm {
	case "vqe":
		ansatz, err := config.BuildAnsatz(job, op)
		if err != nil {
			return nil, err
		}
		result, err := vqe.Compute(ctx, ansatz, op, nil)
		if err != nil {
			return nil, err
		}
		return []store.EigenpairRecord{store.NewEigenpairRecord(result)}, nil

	case "qaoa":
		result, err := config.BuildQAOA(job, vqe).Compute(ctx, op, nil)
		if err != nil {
			return nil, err
		}
		return []store.EigenpairRecord{store.NewEigenpairRecord(result)}, nil

	case "vqd":
		ansatz, err := config.BuildAnsatz(job, op)
		if err != nil {
			return nil, err
		}
		seq, err := config.BuildVQD(job, vqe).Compute(ctx, ansatz, op)
		if seq == nil {
			return nil, err
		}
		pairs := make([]store.EigenpairRecord, 0, len(seq.Eigenpairs))
		for _, r := range seq.Eigenpairs {
			pairs = append(pairs, store.NewEigenpairRecord(r))
		}
		return pairs, err

	default:
		return nil, fmt.Errorf("unknown algorithm %q", job.Algorithm)
	}
}

// cliCallback writes trace entries and optionally feeds the stall watchdog.
func cliCallback(trace *store.TraceWriter, patience int, cancel context.CancelFunc) eigen.Callback {
	var stall eigen.Callback
	if patience > 0 {
		stall = eigen.NewStallMonitor(patience, 1e-3).Callback(cancel)
	}

	return func(evaluation int, params []float64, value float64, meta eigen.EvalMeta) {
		if trace != nil {
			entry := store.TraceEntry{
				Evaluation: evaluation,
				Level:      meta.Level,
				Value:      value,
				Params:     params,
				Timestamp:  time.Now(),
			}
			if meta.HasVariance {
				entry.Variance = meta.Variance
			}
			if err := trace.Write(entry); err != nil {
				slog.Warn("trace write failed", "error", err)
			}
		}
		if stall != nil {
			stall(evaluation, params, value, meta)
		}
	}
}
