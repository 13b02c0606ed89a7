package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritas-check/veritas/internal/config"
	"github.com/veritas-check/veritas/internal/models"
)

// Stage stubs. Each records enough to verify wiring and ordering without any
// network traffic.

type stubStrategy struct{ failFor string }

func (s *stubStrategy) Generate(claim models.Claim) (*models.SearchStrategy, error) {
	if s.failFor != "" && strings.Contains(claim.Text, s.failFor) {
		return nil, fmt.Errorf("no compliant queries")
	}
	return &models.SearchStrategy{
		ClaimID:       claim.ID,
		Queries:       []models.Query{{Text: claim.Text, Methodology: models.MethodologyPeerReviewed, Priority: 1.0}},
		AuditTrail:    []string{"stub"},
		IFCNCompliant: true,
	}, nil
}

func (s *stubStrategy) Fallback(claim models.Claim) *models.SearchStrategy {
	return &models.SearchStrategy{
		ClaimID:       claim.ID,
		Queries:       []models.Query{{Text: claim.Text, Priority: 1.0}},
		IFCNCompliant: true,
	}
}

type stubFanout struct{ delayByText map[string]time.Duration }

func (s *stubFanout) Run(_ context.Context, claim models.Claim, _ *models.SearchStrategy) ([]models.EvidenceCandidate, []string) {
	if d, ok := s.delayByText[claim.Text]; ok {
		time.Sleep(d)
	}
	return []models.EvidenceCandidate{{
		Text:         "evidence for " + claim.Text,
		SourceURL:    "https://example.test/" + claim.ID,
		SourceDomain: "example.test",
		SourceTitle:  "Example",
		RawRelevance: 0.9,
	}}, nil
}

type stubEvaluator struct {
	id     models.EvaluatorID
	stance models.Stance
}

func (s *stubEvaluator) ID() models.EvaluatorID { return s.id }

func (s *stubEvaluator) EvaluateAll(_ context.Context, _ models.Claim, candidates []models.EvidenceCandidate) ([]models.ProcessedEvidence, error) {
	out := make([]models.ProcessedEvidence, len(candidates))
	for i, c := range candidates {
		out[i] = models.ProcessedEvidence{
			Candidate:   c,
			EvaluatorID: s.id,
			Relevance:   80,
			Stance:      s.stance,
			Confidence:  0.9,
			Quality:     75,
		}
	}
	return out, nil
}

type stubConsensus struct{}

func (stubConsensus) Reconcile(claimID string, primary, secondary []models.ProcessedEvidence) (models.EvidencePool, models.ConsensusReport) {
	return models.EvidencePool{ClaimID: claimID, Items: primary},
		models.ConsensusReport{ClaimID: claimID, ConsensusStance: models.StanceSupporting}
}

type stubScorer struct{}

func (stubScorer) Score(claim models.Claim, pool models.EvidencePool, report models.ConsensusReport) models.ClaimScore {
	score := 80.0
	if pool.Empty() {
		score = 0
	}
	return models.ClaimScore{
		ClaimID:         claim.ID,
		ClaimText:       claim.Text,
		TrustScore:      score,
		EvidenceGrade:   models.GradeB,
		ConsensusStance: report.ConsensusStance,
		Supporting:      poolEntries(pool),
	}
}

func poolEntries(pool models.EvidencePool) []models.EvidenceEntry {
	entries := make([]models.EvidenceEntry, len(pool.Items))
	for i, it := range pool.Items {
		entries[i] = models.EvidenceEntry{
			SourceTitle:  it.Candidate.SourceTitle,
			SourceDomain: it.Candidate.SourceDomain,
			SourceURL:    it.Candidate.SourceURL,
			Stance:       it.Stance,
		}
	}
	return entries
}

func testOrchestrator(deps Deps) *Orchestrator {
	cfg := config.Default()
	cfg.Deadlines.Claim = 5 * time.Second
	cfg.Deadlines.DualEval = 5 * time.Second
	return New(cfg, deps)
}

func defaultDeps() Deps {
	return Deps{
		Strategy:  &stubStrategy{},
		Fanout:    &stubFanout{},
		Primary:   &stubEvaluator{id: models.EvaluatorPrimary, stance: models.StanceSupporting},
		Secondary: &stubEvaluator{id: models.EvaluatorSecondary, stance: models.StanceSupporting},
		Consensus: stubConsensus{},
		Scorer:    stubScorer{},
	}
}

func TestCheckClaims_PreservesInputOrder(t *testing.T) {
	deps := defaultDeps()
	// Later claims finish first; output order must still match input order.
	deps.Fanout = &stubFanout{delayByText: map[string]time.Duration{
		"first claim":  60 * time.Millisecond,
		"second claim": 30 * time.Millisecond,
		"third claim":  0,
	}}
	o := testOrchestrator(deps)

	capsule, err := o.CheckClaims(context.Background(), []string{"first claim", "second claim", "third claim"}, nil)
	require.NoError(t, err)
	require.Len(t, capsule.PerClaim, 3)
	assert.Equal(t, "first claim", capsule.PerClaim[0].ClaimText)
	assert.Equal(t, "second claim", capsule.PerClaim[1].ClaimText)
	assert.Equal(t, "third claim", capsule.PerClaim[2].ClaimText)
}

func TestCheckClaims_SequentialDriver(t *testing.T) {
	deps := defaultDeps()
	o := testOrchestrator(deps)
	o.cfg.Pipeline.ParallelEvidence = false

	capsule, err := o.CheckClaims(context.Background(), []string{"a claim", "b claim"}, nil)
	require.NoError(t, err)
	assert.Len(t, capsule.PerClaim, 2)
}

func TestCheckClaims_OverallIsUnweightedMean(t *testing.T) {
	o := testOrchestrator(defaultDeps())
	capsule, err := o.CheckClaims(context.Background(), []string{"a claim", "b claim"}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 80.0, capsule.OverallScore, 0.001)
	assert.Equal(t, models.GradeB, capsule.OverallGrade)
}

func TestCheckClaims_FailedClaimIsIsolated(t *testing.T) {
	deps := defaultDeps()
	deps.Strategy = &stubStrategy{failFor: "broken"}
	o := testOrchestrator(deps)

	capsule, err := o.CheckClaims(context.Background(), []string{"good claim", "broken claim"}, nil)
	require.NoError(t, err)
	require.Len(t, capsule.PerClaim, 1)
	assert.Equal(t, "good claim", capsule.PerClaim[0].ClaimText)
	require.NotEmpty(t, capsule.Warnings)
	assert.Contains(t, capsule.Warnings[0], "broken claim")
}

func TestCheckClaims_AllClaimsFailed(t *testing.T) {
	deps := defaultDeps()
	deps.Strategy = &stubStrategy{failFor: "claim"}
	o := testOrchestrator(deps)

	capsule, err := o.CheckClaims(context.Background(), []string{"one claim", "two claim"}, nil)
	require.NoError(t, err)
	assert.Empty(t, capsule.PerClaim)
	assert.Equal(t, 0.0, capsule.OverallScore)
	assert.Equal(t, models.GradeF, capsule.OverallGrade)
}

func TestCheckClaims_CitationsDeduplicated(t *testing.T) {
	o := testOrchestrator(defaultDeps())
	capsule, err := o.CheckClaims(context.Background(), []string{"a claim", "b claim"}, nil)
	require.NoError(t, err)
	// Each claim cites its own URL, so both survive dedupe.
	assert.Len(t, capsule.Citations, 2)

	seen := map[string]bool{}
	for _, c := range capsule.Citations {
		assert.False(t, seen[c.URL], "duplicate citation %s", c.URL)
		seen[c.URL] = true
	}
}

func TestCollectCitations_CarriesPublishDate(t *testing.T) {
	scores := []models.ClaimScore{{
		Supporting: []models.EvidenceEntry{{
			SourceTitle:  "Report",
			SourceDomain: "agency.gov",
			SourceURL:    "https://agency.gov/report",
			PublishDate:  "2024-03-11",
		}},
	}}
	cites := collectCitations(scores)
	require.Len(t, cites, 1)
	assert.Equal(t, "2024-03-11", cites[0].Date)
}

func TestCheckClaims_NoClaims(t *testing.T) {
	o := testOrchestrator(defaultDeps())
	_, err := o.CheckClaims(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestCheckClaims_FallbackStrategyWhenDisabled(t *testing.T) {
	deps := defaultDeps()
	// Generate fails for everything; only Fallback succeeds.
	deps.Strategy = &stubStrategy{failFor: "claim"}
	o := testOrchestrator(deps)
	o.cfg.Pipeline.MethodologyStrategy = false

	capsule, err := o.CheckClaims(context.Background(), []string{"some claim"}, nil)
	require.NoError(t, err)
	assert.Len(t, capsule.PerClaim, 1, "fallback path skips Generate entirely")
}
