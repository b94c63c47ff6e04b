package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qbitwise/varqe/internal/store"
)

var resumeCmd = &cobra.Command{
	Use:   "resume [run-id]",
	Short: "Re-run a stored run from its optimal parameters",
	Long: `Loads a stored run and starts a fresh optimization of the same problem
using the stored ground-level optimal parameters as the initial point.
Useful for refining interrupted or shot-noisy runs.`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().StringVar(&dataDir, "data-dir", "./data", "Base directory for run storage")
	resumeCmd.Flags().IntVar(&jobFlags.MaxIters, "iters", 0, "Max optimizer iterations (0 = stored value)")

	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	st, err := store.NewFSStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening run store: %w", err)
	}

	record, err := st.LoadRun(args[0])
	if err != nil {
		return err
	}
	if len(record.Pairs) == 0 {
		return fmt.Errorf("run %s has no eigenpairs to resume from", args[0])
	}
	if record.Config.Algorithm == "vqd" {
		return fmt.Errorf("resume supports single-level runs only")
	}

	job := record.Config
	if cmd.Flags().Changed("iters") {
		job.MaxIters = jobFlags.MaxIters
	}

	initial := append([]float64(nil), record.Pairs[0].Params...)
	_, err = executeJobWithInitialPoint(&job, initial)
	return err
}
