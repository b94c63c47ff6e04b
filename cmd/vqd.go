package main

import (
	"github.com/spf13/cobra"

	"github.com/qbitwise/varqe/internal/config"
)

var vqdCmd = &cobra.Command{
	Use:   "vqd",
	Short: "Find an ordered sequence of eigenpairs by deflation",
	Long: `Runs variational quantum deflation: a ground-state search followed by
penalized searches for each excited state, reusing the run flags of the
run command.`,
	RunE: runDeflation,
}

func init() {
	vqdCmd.Flags().AddFlagSet(runCmd.Flags())
	vqdCmd.Flags().IntVar(&jobFlags.Eigenpairs, "eigenpairs", 2, "Number of eigenpairs to find")
	vqdCmd.Flags().Float64Var(&jobFlags.Beta, "beta", 0, "Uniform overlap penalty coefficient (0 = default)")

	rootCmd.AddCommand(vqdCmd)
}

func runDeflation(cmd *cobra.Command, args []string) error {
	job, err := resolveJobConfig(cmd)
	if err != nil {
		return err
	}
	job.Algorithm = "vqd"
	if err := config.ValidateJob(job); err != nil {
		return err
	}

	_, err = executeJob(job)
	return err
}
