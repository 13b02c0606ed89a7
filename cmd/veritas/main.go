package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/veritas-check/veritas/internal/config"
	"github.com/veritas-check/veritas/internal/logging"
)

var (
	// Version information (set by build flags)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	cfgFile string
	verbose bool
	cfg     *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "veritas",
	Short: "Veritas - evidence-based claim checking",
	Long: `Veritas gathers evidence for factual claims from the open web, scores it
with two independent evaluators, and produces a trust score and evidence
grade per claim.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := logging.INFO
		if verbose {
			level = logging.DEBUG
		}
		if err := logging.Initialize(logging.Config{Level: level, JSONFormat: true}); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: veritas.yaml in the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.SetVersionTemplate(`Veritas {{.Version}}
Build time: ` + BuildTime + `
Git commit: ` + GitCommit + `
`)

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(configCmd)
}
