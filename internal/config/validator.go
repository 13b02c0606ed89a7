package config

import (
	"fmt"
	"strings"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// AddError adds an error to the validation result.
func (vr *ValidationResult) AddError(format string, args ...any) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, fmt.Sprintf(format, args...))
}

// AddWarning adds a warning to the validation result.
func (vr *ValidationResult) AddWarning(format string, args ...any) {
	vr.Warnings = append(vr.Warnings, fmt.Sprintf(format, args...))
}

// HasErrors returns true if there are any errors.
func (vr *ValidationResult) HasErrors() bool {
	return !vr.Valid || len(vr.Errors) > 0
}

// Error returns a formatted error message.
func (vr *ValidationResult) Error() string {
	if !vr.HasErrors() {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("configuration validation failed:\n")
	for _, err := range vr.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err))
	}
	return sb.String()
}

// Validate checks worker bounds, deadlines, and credential presence. A
// missing OpenAI key is an error (the dual evaluator cannot run without
// it); missing search keys only warn because the keyless provider remains.
func Validate(cfg *Config) *ValidationResult {
	vr := &ValidationResult{Valid: true}

	if cfg.Workers.MaxClaimWorkers < 1 {
		vr.AddError("workers.max_claim_workers must be >= 1, got %d", cfg.Workers.MaxClaimWorkers)
	}
	if cfg.Workers.MaxEvaluatorWorkers < 1 {
		vr.AddError("workers.max_evaluator_workers must be >= 1, got %d", cfg.Workers.MaxEvaluatorWorkers)
	}
	if cfg.Workers.MaxSearchWorkers < 1 {
		vr.AddError("workers.max_search_workers must be >= 1, got %d", cfg.Workers.MaxSearchWorkers)
	}
	if cfg.Workers.MaxExtractWorkers < 1 {
		vr.AddError("workers.max_extract_workers must be >= 1, got %d", cfg.Workers.MaxExtractWorkers)
	}

	if cfg.Deadlines.Strategy <= 0 {
		vr.AddError("deadlines.strategy must be positive")
	}
	if cfg.Deadlines.Fanout <= 0 {
		vr.AddError("deadlines.fanout must be positive")
	}
	if cfg.Deadlines.DualEval <= 0 {
		vr.AddError("deadlines.dual_eval must be positive")
	}
	if cfg.Deadlines.Claim <= 0 {
		vr.AddError("deadlines.claim must be positive")
	}

	if cfg.Evaluator.BatchSize < 1 {
		vr.AddError("evaluator.batch_size must be >= 1, got %d", cfg.Evaluator.BatchSize)
	}

	if cfg.Evaluator.OpenAIKey == "" {
		vr.AddError("evaluator.openai_key is required (set OPENAI_API_KEY)")
	}
	if cfg.Search.BraveAPIKey == "" && cfg.Search.SerperAPIKey == "" {
		vr.AddWarning("no search API keys configured; falling back to the keyless provider only")
	}

	return vr
}
