package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veritas-check/veritas/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration and validate it",
	RunE:  runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	fmt.Printf("pipeline:\n")
	fmt.Printf("  parallel_evidence:    %v\n", cfg.Pipeline.ParallelEvidence)
	fmt.Printf("  methodology_strategy: %v\n", cfg.Pipeline.MethodologyStrategy)
	fmt.Printf("workers:\n")
	fmt.Printf("  claim: %d  evaluator: %d  search: %d  extract: %d\n",
		cfg.Workers.MaxClaimWorkers, cfg.Workers.MaxEvaluatorWorkers,
		cfg.Workers.MaxSearchWorkers, cfg.Workers.MaxExtractWorkers)
	fmt.Printf("deadlines:\n")
	fmt.Printf("  strategy: %s  fanout: %s  dual_eval: %s  claim: %s\n",
		cfg.Deadlines.Strategy, cfg.Deadlines.Fanout, cfg.Deadlines.DualEval, cfg.Deadlines.Claim)
	fmt.Printf("search providers:\n")
	fmt.Printf("  brave: %s  serper: %s  duckduckgo: enabled (keyless)\n",
		keyStatus(cfg.Search.BraveAPIKey), keyStatus(cfg.Search.SerperAPIKey))
	fmt.Printf("evaluators:\n")
	fmt.Printf("  openai: %s  primary: %s  secondary: %s\n",
		keyStatus(cfg.Evaluator.OpenAIKey), cfg.Evaluator.PrimaryModel, cfg.Evaluator.SecondaryModel)

	result := config.Validate(cfg)
	for _, w := range result.Warnings {
		fmt.Printf("\nwarning: %s\n", w)
	}
	if result.HasErrors() {
		return fmt.Errorf("configuration invalid:\n%s", result.Error())
	}
	fmt.Println("\nconfiguration valid")
	return nil
}

func keyStatus(key string) string {
	if key == "" {
		return "not configured"
	}
	return "configured"
}
