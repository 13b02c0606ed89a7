package evaluator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/veritas-check/veritas/internal/config"
	apperrors "github.com/veritas-check/veritas/internal/errors"
	"github.com/veritas-check/veritas/internal/logging"
	"github.com/veritas-check/veritas/internal/models"
)

const (
	relevanceFloor  = 60.0
	confidenceFloor = 0.5
	qualityFloor    = 60.0
	maxExcerptLen   = 100
)

// Evaluator scores a claim's evidence candidates with an LLM, enforces the
// hard rules on every output, attaches quality scores, and filters the set
// down to usable evidence.
type Evaluator struct {
	id      models.EvaluatorID
	client  LLMClient
	quality *QualityAssessor
	cfg     *config.Config
	logger  *slog.Logger
}

// New builds an evaluator with the given identity and model client.
func New(id models.EvaluatorID, client LLMClient, quality *QualityAssessor, cfg *config.Config) *Evaluator {
	return &Evaluator{
		id:      id,
		client:  client,
		quality: quality,
		cfg:     cfg,
		logger:  logging.Component("evaluator").With("evaluator", string(id)),
	}
}

// ID returns the evaluator's identity.
func (e *Evaluator) ID() models.EvaluatorID { return e.id }

type batchResponse struct {
	Evaluations []itemResponse `json:"evaluations"`
}

type itemResponse struct {
	Index      int     `json:"index"`
	Relevance  float64 `json:"relevance"`
	Stance     string  `json:"stance"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
	KeyExcerpt string  `json:"key_excerpt"`
}

// EvaluateAll scores every candidate for the claim and returns the filtered,
// ordered evidence list. It never fails the whole claim on a bad batch: parse
// failures degrade to single-item retries and then to the keyword fallback.
// When the stage deadline lands mid-run, the batches already scored are kept
// and returned alongside the deadline error.
func (e *Evaluator) EvaluateAll(ctx context.Context, claim models.Claim, candidates []models.EvidenceCandidate) ([]models.ProcessedEvidence, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	batchSize := e.cfg.Evaluator.BatchSize
	if batchSize < 1 {
		batchSize = 1
	}

	var deadlineHit bool
	scored := make([]models.ProcessedEvidence, 0, len(candidates))
	for start := 0; start < len(candidates); start += batchSize {
		end := start + batchSize
		if end > len(candidates) {
			end = len(candidates)
		}
		batch := candidates[start:end]

		results, err := e.evaluateBatch(ctx, claim, batch)
		if err != nil {
			if ctx.Err() != nil {
				deadlineHit = true
				e.logger.Warn("deadline hit mid-evaluation, keeping scored batches",
					"claim_id", claim.ID, "scored", len(scored), "remaining", len(candidates)-start)
				break
			}
			e.logger.Warn("batch evaluation degraded to per-item scoring",
				"claim_id", claim.ID, "batch_size", len(batch), "error", err)
			results = e.evaluateItems(ctx, claim, batch)
		}
		scored = append(scored, results...)
	}

	for i := range scored {
		applyHardRules(claim.Text, &scored[i])
		scored[i].Quality = e.quality.Score(scored[i].Candidate)
	}

	kept := filterFloor(scored)
	orderEvidence(kept)

	e.logger.Info("evaluation complete",
		"claim_id", claim.ID,
		"candidates", len(candidates),
		"kept", len(kept),
	)
	if deadlineHit {
		return kept, apperrors.DeadlineError("dual_evaluation")
	}
	return kept, nil
}

// evaluateBatch sends one indexed batch and validates the array response.
func (e *Evaluator) evaluateBatch(ctx context.Context, claim models.Claim, batch []models.EvidenceCandidate) ([]models.ProcessedEvidence, error) {
	raw, err := e.client.CompleteJSON(ctx, evaluatorSystemPrompt, batchUserPrompt(claim.Text, batch))
	if err != nil {
		return nil, err
	}

	var resp batchResponse
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &resp); err != nil {
		return nil, apperrors.ParseError(err, "batch response is not valid JSON")
	}
	if len(resp.Evaluations) != len(batch) {
		return nil, apperrors.New(apperrors.ErrorTypeEvaluatorParse, apperrors.SeverityLow,
			fmt.Sprintf("batch response has %d evaluations for %d passages", len(resp.Evaluations), len(batch)))
	}

	out := make([]models.ProcessedEvidence, len(batch))
	seen := make(map[int]bool, len(batch))
	for _, item := range resp.Evaluations {
		if item.Index < 0 || item.Index >= len(batch) || seen[item.Index] {
			return nil, apperrors.New(apperrors.ErrorTypeEvaluatorParse, apperrors.SeverityLow,
				fmt.Sprintf("batch response index %d invalid or duplicated", item.Index))
		}
		seen[item.Index] = true
		out[item.Index] = e.toProcessed(batch[item.Index], item)
	}
	return out, nil
}

// evaluateItems retries each passage alone; passages that still fail to
// parse fall through to the keyword-overlap scorer.
func (e *Evaluator) evaluateItems(ctx context.Context, claim models.Claim, batch []models.EvidenceCandidate) []models.ProcessedEvidence {
	out := make([]models.ProcessedEvidence, 0, len(batch))
	for _, c := range batch {
		ev, err := e.evaluateSingle(ctx, claim, c)
		if err != nil {
			e.logger.Warn("single-item evaluation failed, using keyword fallback",
				"claim_id", claim.ID, "url", c.SourceURL, "error", err)
			ev = keywordOverlapScore(claim.Text, c, e.id)
		}
		out = append(out, ev)
	}
	return out
}

func (e *Evaluator) evaluateSingle(ctx context.Context, claim models.Claim, c models.EvidenceCandidate) (models.ProcessedEvidence, error) {
	raw, err := e.client.CompleteJSON(ctx, evaluatorSystemPrompt, singleUserPrompt(claim.Text, c))
	if err != nil {
		return models.ProcessedEvidence{}, err
	}
	var item itemResponse
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &item); err != nil {
		return models.ProcessedEvidence{}, apperrors.ParseError(err, "single response is not valid JSON")
	}
	return e.toProcessed(c, item), nil
}

// toProcessed validates and clamps one model response into evidence.
func (e *Evaluator) toProcessed(c models.EvidenceCandidate, item itemResponse) models.ProcessedEvidence {
	return models.ProcessedEvidence{
		Candidate:   c,
		EvaluatorID: e.id,
		Relevance:   clamp100(item.Relevance),
		Stance:      parseStance(item.Stance),
		Confidence:  clampUnit(item.Confidence),
		Reasoning:   strings.TrimSpace(item.Reasoning),
		KeyExcerpt:  makeExcerpt(c.Text, item.KeyExcerpt),
	}
}

func parseStance(s string) models.Stance {
	switch models.Stance(strings.ToLower(strings.TrimSpace(s))) {
	case models.StanceSupporting:
		return models.StanceSupporting
	case models.StanceContradicting:
		return models.StanceContradicting
	default:
		return models.StanceNeutral
	}
}

// makeExcerpt keeps a model-proposed excerpt only when it is a verbatim
// substring of the passage within the length cap; otherwise it takes the
// passage head, cut at a word boundary.
func makeExcerpt(passage, proposed string) string {
	proposed = strings.TrimSpace(strings.Trim(strings.TrimSpace(proposed), `"`))
	if proposed != "" && len(proposed) <= maxExcerptLen && strings.Contains(passage, proposed) {
		return proposed
	}
	if len(passage) <= maxExcerptLen {
		return strings.TrimSpace(passage)
	}
	cut := passage[:maxExcerptLen]
	if i := strings.LastIndexByte(cut, ' '); i > maxExcerptLen/2 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut)
}

// filterFloor drops evidence below any of the usability floors.
func filterFloor(items []models.ProcessedEvidence) []models.ProcessedEvidence {
	kept := make([]models.ProcessedEvidence, 0, len(items))
	for _, ev := range items {
		if ev.Relevance < relevanceFloor || ev.Confidence < confidenceFloor || ev.Quality < qualityFloor {
			continue
		}
		kept = append(kept, ev)
	}
	return kept
}

// orderEvidence sorts by relevance*confidence descending, quality breaking
// ties, URL last so the order is total.
func orderEvidence(items []models.ProcessedEvidence) {
	sort.SliceStable(items, func(i, j int) bool {
		wi := items[i].Relevance * items[i].Confidence
		wj := items[j].Relevance * items[j].Confidence
		if wi != wj {
			return wi > wj
		}
		if items[i].Quality != items[j].Quality {
			return items[i].Quality > items[j].Quality
		}
		return items[i].Candidate.SourceURL < items[j].Candidate.SourceURL
	})
}

// stripCodeFences tolerates models that wrap JSON in markdown fences despite
// the JSON response format.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
