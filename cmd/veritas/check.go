package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/veritas-check/veritas/internal/config"
	"github.com/veritas-check/veritas/internal/models"
	"github.com/veritas-check/veritas/internal/orchestrator"
)

var checkCmd = &cobra.Command{
	Use:   "check \"<claim>\" [\"<claim>\"...]",
	Short: "Check one or more factual claims against web evidence",
	Long: `Runs the full pipeline for each claim: query strategy, evidence fanout,
dual LLM evaluation, consensus, and zero-start scoring. Claims run in
parallel up to the configured claim-worker limit.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().Bool("json", false, "Output the full capsule as JSON")
	checkCmd.Flags().String("article-title", "", "Title of the article the claims came from")
	checkCmd.Flags().String("article-domain", "", "Domain of the article the claims came from")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if result := config.Validate(cfg); result.HasErrors() {
		return fmt.Errorf("invalid configuration:\n%s", result.Error())
	}

	engine, err := orchestrator.NewEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	title, _ := cmd.Flags().GetString("article-title")
	domain, _ := cmd.Flags().GetString("article-domain")
	contexts := make([]models.ClaimContext, len(args))
	for i := range contexts {
		contexts[i] = models.ClaimContext{ArticleTitle: title, ArticleDomain: domain}
	}

	capsule, err := engine.CheckClaims(ctx, args, contexts)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(capsule)
	}

	printCapsule(capsule)
	return nil
}

func printCapsule(capsule *models.TrustCapsule) {
	fmt.Printf("Overall: %.0f/100 (%s)\n", capsule.OverallScore, capsule.OverallGrade)
	for _, cs := range capsule.PerClaim {
		fmt.Printf("\n%s\n", cs.ClaimText)
		fmt.Printf("  trust score:    %.0f/100\n", cs.TrustScore)
		fmt.Printf("  evidence grade: %s (%.0f/100)\n", cs.EvidenceGrade, cs.EvidenceGradeScore)
		fmt.Printf("  stance:         %s\n", cs.ConsensusStance)
		if len(cs.UncertaintyNotes) > 0 {
			fmt.Printf("  uncertainty:    %s\n", strings.Join(cs.UncertaintyNotes, "; "))
		}
		printEntries("supporting", cs.Supporting)
		printEntries("contradicting", cs.Contradicting)
		printEntries("neutral", cs.Neutral)
		for _, w := range cs.Warnings {
			fmt.Printf("  warning: %s\n", w)
		}
	}
	if len(capsule.Citations) > 0 {
		fmt.Println("\nSources:")
		for _, c := range capsule.Citations {
			fmt.Printf("  - %s (%s)\n    %s\n", c.Title, c.Domain, c.URL)
		}
	}
	for _, w := range capsule.Warnings {
		fmt.Printf("\nwarning: %s\n", w)
	}
}

func printEntries(label string, entries []models.EvidenceEntry) {
	for _, e := range entries {
		fmt.Printf("  [%s] %s: %q\n", label, e.SourceDomain, e.HighlightText)
	}
}
