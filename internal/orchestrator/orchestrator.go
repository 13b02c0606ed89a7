package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/veritas-check/veritas/internal/config"
	"github.com/veritas-check/veritas/internal/consensus"
	"github.com/veritas-check/veritas/internal/evaluator"
	"github.com/veritas-check/veritas/internal/fanout"
	"github.com/veritas-check/veritas/internal/logging"
	"github.com/veritas-check/veritas/internal/models"
	"github.com/veritas-check/veritas/internal/respool"
	"github.com/veritas-check/veritas/internal/scoring"
	"github.com/veritas-check/veritas/internal/search"
	"github.com/veritas-check/veritas/internal/strategy"
)

// StrategyGenerator produces the query strategy for one claim.
type StrategyGenerator interface {
	Generate(claim models.Claim) (*models.SearchStrategy, error)
	Fallback(claim models.Claim) *models.SearchStrategy
}

// EvidenceGatherer executes a strategy and returns raw candidates plus
// non-fatal warnings.
type EvidenceGatherer interface {
	Run(ctx context.Context, claim models.Claim, strat *models.SearchStrategy) ([]models.EvidenceCandidate, []string)
}

// EvidenceEvaluator scores candidates for one claim.
type EvidenceEvaluator interface {
	ID() models.EvaluatorID
	EvaluateAll(ctx context.Context, claim models.Claim, candidates []models.EvidenceCandidate) ([]models.ProcessedEvidence, error)
}

// ConsensusLayer merges the two evaluators' outputs.
type ConsensusLayer interface {
	Reconcile(claimID string, primary, secondary []models.ProcessedEvidence) (models.EvidencePool, models.ConsensusReport)
}

// Scorer turns a pool and its consensus report into the final claim score.
type Scorer interface {
	Score(claim models.Claim, pool models.EvidencePool, report models.ConsensusReport) models.ClaimScore
}

// Deps bundles the pipeline stages. Tests substitute stubs; production wiring
// comes from NewEngine.
type Deps struct {
	Strategy  StrategyGenerator
	Fanout    EvidenceGatherer
	Primary   EvidenceEvaluator
	Secondary EvidenceEvaluator
	Consensus ConsensusLayer
	Scorer    Scorer
}

// Orchestrator drives the per-claim pipeline and assembles the capsule.
type Orchestrator struct {
	cfg    *config.Config
	deps   Deps
	logger *slog.Logger
}

// New creates an orchestrator over explicit stage dependencies.
func New(cfg *config.Config, deps Deps) *Orchestrator {
	return &Orchestrator{
		cfg:    cfg,
		deps:   deps,
		logger: logging.Component("orchestrator"),
	}
}

// NewEngine wires the production pipeline: real search providers, two OpenAI
// evaluator clients, consensus, and scoring, all sharing one resource pool.
func NewEngine(cfg *config.Config) (*Orchestrator, error) {
	pool := respool.New(cfg)

	primaryClient, err := evaluator.NewOpenAIClient(pool, cfg.Evaluator.PrimaryModel)
	if err != nil {
		return nil, fmt.Errorf("primary evaluator: %w", err)
	}
	secondaryClient, err := evaluator.NewOpenAIClient(pool, cfg.Evaluator.SecondaryModel)
	if err != nil {
		return nil, fmt.Errorf("secondary evaluator: %w", err)
	}

	quality := evaluator.NewQualityAssessor()
	deps := Deps{
		Strategy:  strategy.NewGenerator(),
		Fanout:    fanout.New(pool, search.Providers(pool)),
		Primary:   evaluator.New(models.EvaluatorPrimary, primaryClient, quality, cfg),
		Secondary: evaluator.New(models.EvaluatorSecondary, secondaryClient, quality, cfg),
		Consensus: consensus.New(),
		Scorer:    scoring.NewEngine(),
	}
	return New(cfg, deps), nil
}

// claimResult pairs a finished claim with its input position so the capsule
// preserves input order regardless of finish order.
type claimResult struct {
	index int
	score models.ClaimScore
	err   error
}

// CheckClaims runs the full pipeline for a list of claim texts and returns
// the assembled capsule. Per-claim failures are isolated: a failed claim
// becomes a capsule warning, not a request failure.
func (o *Orchestrator) CheckClaims(ctx context.Context, texts []string, contexts []models.ClaimContext) (*models.TrustCapsule, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no claims provided")
	}

	requestID := uuid.NewString()
	claims := buildClaims(texts)
	log := o.logger.With("request_id", requestID)
	if len(contexts) > 0 && contexts[0].ArticleDomain != "" {
		log = log.With("article_domain", contexts[0].ArticleDomain)
	}
	log.Info("request started", "claims", len(claims), "parallel", o.cfg.Pipeline.ParallelEvidence)
	start := time.Now()

	var results []claimResult
	if o.cfg.Pipeline.ParallelEvidence {
		results = o.runParallel(ctx, claims)
	} else {
		results = o.runSequential(ctx, claims)
	}

	capsule := o.assembleCapsule(requestID, claims, results)
	log.Info("request finished",
		"duration", time.Since(start).Round(time.Millisecond),
		"scored", len(capsule.PerClaim),
		"overall_score", capsule.OverallScore,
		"overall_grade", string(capsule.OverallGrade),
	)
	return capsule, nil
}

// runParallel processes claims on the claim plane, bounded by
// MaxClaimWorkers. Claim failures never cancel sibling claims.
func (o *Orchestrator) runParallel(ctx context.Context, claims []models.Claim) []claimResult {
	results := make([]claimResult, len(claims))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Workers.MaxClaimWorkers)

	for i, claim := range claims {
		i, claim := i, claim
		g.Go(func() error {
			score, err := o.runClaim(gctx, claim)
			results[i] = claimResult{index: i, score: score, err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// runSequential processes claims one at a time in input order.
func (o *Orchestrator) runSequential(ctx context.Context, claims []models.Claim) []claimResult {
	results := make([]claimResult, len(claims))
	for i, claim := range claims {
		score, err := o.runClaim(ctx, claim)
		results[i] = claimResult{index: i, score: score, err: err}
	}
	return results
}

// runClaim executes strategy, fanout, dual evaluation, consensus, and scoring
// for one claim under the claim-total deadline.
func (o *Orchestrator) runClaim(ctx context.Context, claim models.Claim) (models.ClaimScore, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.Deadlines.Claim)
	defer cancel()

	log := o.logger.With("claim_id", claim.ID)
	start := time.Now()

	strat, err := o.generateStrategy(ctx, claim)
	if err != nil {
		return models.ClaimScore{}, err
	}
	log.Info("strategy ready", "stage", "strategy", "queries", len(strat.Queries), "fast_path", strat.FastPath)

	// Fanout applies its own stage deadline internally.
	candidates, warnings := o.deps.Fanout.Run(ctx, claim, strat)
	log.Info("fanout complete", "stage", "fanout", "candidates", len(candidates), "warnings", len(warnings))

	primary, secondary, evalWarnings := o.dualEvaluate(ctx, claim, candidates)
	warnings = append(warnings, evalWarnings...)

	pool, report := o.deps.Consensus.Reconcile(claim.ID, primary, secondary)
	score := o.deps.Scorer.Score(claim, pool, report)
	score.Warnings = append(score.Warnings, warnings...)

	log.Info("claim complete",
		"stage", "scoring",
		"duration", time.Since(start).Round(time.Millisecond),
		"trust_score", score.TrustScore,
		"grade", string(score.EvidenceGrade),
	)
	return score, nil
}

// generateStrategy runs the strategy stage under its deadline. The generator
// is CPU-bound, so the deadline only guards against a cancelled request.
func (o *Orchestrator) generateStrategy(ctx context.Context, claim models.Claim) (*models.SearchStrategy, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.Deadlines.Strategy)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !o.cfg.Pipeline.MethodologyStrategy {
		return o.deps.Strategy.Fallback(claim), nil
	}
	return o.deps.Strategy.Generate(claim)
}

// dualEvaluate runs the two evaluators in parallel under the dual-eval
// deadline. An evaluator failure degrades to an empty set plus a warning so
// the surviving evaluator still feeds consensus.
func (o *Orchestrator) dualEvaluate(ctx context.Context, claim models.Claim, candidates []models.EvidenceCandidate) (primary, secondary []models.ProcessedEvidence, warnings []string) {
	if len(candidates) == 0 {
		return nil, nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, o.cfg.Deadlines.DualEval)
	defer cancel()

	var primaryErr, secondaryErr error
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Workers.MaxEvaluatorWorkers)
	g.Go(func() error {
		primary, primaryErr = o.deps.Primary.EvaluateAll(gctx, claim, candidates)
		return nil
	})
	g.Go(func() error {
		secondary, secondaryErr = o.deps.Secondary.EvaluateAll(gctx, claim, candidates)
		return nil
	})
	_ = g.Wait()

	if primaryErr != nil {
		warnings = append(warnings, fmt.Sprintf("primary evaluator failed: %v", primaryErr))
	}
	if secondaryErr != nil {
		warnings = append(warnings, fmt.Sprintf("secondary evaluator failed: %v", secondaryErr))
	}
	return primary, secondary, warnings
}

func buildClaims(texts []string) []models.Claim {
	claims := make([]models.Claim, len(texts))
	for i, text := range texts {
		claims[i] = models.Claim{
			ID:       uuid.NewString(),
			Text:     text,
			Tier:     models.TierPrimary,
			Priority: i,
		}
	}
	return claims
}
