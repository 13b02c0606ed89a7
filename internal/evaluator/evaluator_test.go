package evaluator

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritas-check/veritas/internal/config"
	apperrors "github.com/veritas-check/veritas/internal/errors"
	"github.com/veritas-check/veritas/internal/models"
)

// scriptedClient replays canned responses in order; once exhausted it keeps
// returning the last one.
type scriptedClient struct {
	responses []string
	calls     int
}

func (s *scriptedClient) CompleteJSON(_ context.Context, _, _ string) (string, error) {
	idx := s.calls
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	s.calls++
	return s.responses[idx], nil
}

const richText = "A 2025 randomized controlled trial (n=12000, p<0.001) published in a peer-reviewed journal " +
	"with data available and funding disclosure; the authors note limitations."

func richCandidate(url string) models.EvidenceCandidate {
	return models.EvidenceCandidate{
		Text:         richText,
		SourceURL:    url,
		SourceDomain: "cdc.gov",
		SourceTitle:  "Trial report",
	}
}

func newTestEvaluator(client LLMClient) *Evaluator {
	qa := &QualityAssessor{nowYear: 2026}
	return New(models.EvaluatorPrimary, client, qa, config.Default())
}

func TestEvaluateAll_BatchSuccess(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"evaluations": [
			{"index": 0, "relevance": 85, "stance": "supporting", "confidence": 0.9, "reasoning": "direct data", "key_excerpt": "randomized controlled trial"},
			{"index": 1, "relevance": 40, "stance": "neutral", "confidence": 0.8, "reasoning": "off topic", "key_excerpt": ""}
		]}`,
	}}
	e := newTestEvaluator(client)

	claim := models.Claim{ID: "c1", Text: "The treatment improved patient recovery rates"}
	out, err := e.EvaluateAll(context.Background(), claim, []models.EvidenceCandidate{
		richCandidate("https://cdc.gov/a"),
		richCandidate("https://cdc.gov/b"),
	})
	require.NoError(t, err)
	require.Len(t, out, 1, "low-relevance item must be filtered")

	got := out[0]
	assert.Equal(t, models.EvaluatorPrimary, got.EvaluatorID)
	assert.Equal(t, 85.0, got.Relevance)
	assert.Equal(t, models.StanceSupporting, got.Stance)
	assert.Equal(t, 0.9, got.Confidence)
	assert.Equal(t, "randomized controlled trial", got.KeyExcerpt)
	assert.GreaterOrEqual(t, got.Quality, 60.0)
	assert.Equal(t, 1, client.calls, "two candidates fit in one batch")
}

func TestEvaluateAll_ClampsOutOfRangeValues(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"evaluations": [{"index": 0, "relevance": 150, "stance": "SUPPORTING", "confidence": 1.5, "reasoning": "r", "key_excerpt": ""}]}`,
	}}
	e := newTestEvaluator(client)

	claim := models.Claim{ID: "c1", Text: "The treatment improved patient recovery rates"}
	out, err := e.EvaluateAll(context.Background(), claim, []models.EvidenceCandidate{richCandidate("https://cdc.gov/a")})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 100.0, out[0].Relevance)
	assert.Equal(t, 1.0, out[0].Confidence)
	assert.Equal(t, models.StanceSupporting, out[0].Stance)
}

func TestEvaluateAll_RejectsNonSubstringExcerpt(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"evaluations": [{"index": 0, "relevance": 80, "stance": "supporting", "confidence": 0.9, "reasoning": "r", "key_excerpt": "this text never appeared in the passage"}]}`,
	}}
	e := newTestEvaluator(client)

	claim := models.Claim{ID: "c1", Text: "The treatment improved patient recovery rates"}
	out, err := e.EvaluateAll(context.Background(), claim, []models.EvidenceCandidate{richCandidate("https://cdc.gov/a")})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.LessOrEqual(t, len(out[0].KeyExcerpt), maxExcerptLen)
	assert.Contains(t, richText, out[0].KeyExcerpt)
}

func TestEvaluateAll_SingleItemRetryAfterBadBatch(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`not json at all`,
		`{"relevance": 90, "stance": "contradicting", "confidence": 0.85, "reasoning": "direct refutation", "key_excerpt": ""}`,
	}}
	e := newTestEvaluator(client)

	claim := models.Claim{ID: "c1", Text: "The treatment improved patient recovery rates"}
	out, err := e.EvaluateAll(context.Background(), claim, []models.EvidenceCandidate{richCandidate("https://cdc.gov/a")})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, models.StanceContradicting, out[0].Stance)
	assert.Equal(t, 2, client.calls, "one failed batch call, one single retry")
}

func TestEvaluateAll_KeywordFallbackIsFilteredByConfidenceFloor(t *testing.T) {
	client := &scriptedClient{responses: []string{`garbage`}}
	e := newTestEvaluator(client)

	claim := models.Claim{ID: "c1", Text: "The treatment improved patient recovery rates"}
	out, err := e.EvaluateAll(context.Background(), claim, []models.EvidenceCandidate{richCandidate("https://cdc.gov/a")})
	require.NoError(t, err, "parse failures degrade, never error the claim")
	assert.Empty(t, out, "fallback confidence 0.4 sits below the 0.5 floor")
}

func TestEvaluateAll_OrdersByRelevanceTimesConfidence(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`{"evaluations": [
			{"index": 0, "relevance": 70, "stance": "supporting", "confidence": 0.9, "reasoning": "r", "key_excerpt": ""},
			{"index": 1, "relevance": 95, "stance": "supporting", "confidence": 0.9, "reasoning": "r", "key_excerpt": ""}
		]}`,
	}}
	e := newTestEvaluator(client)

	claim := models.Claim{ID: "c1", Text: "The treatment improved patient recovery rates"}
	out, err := e.EvaluateAll(context.Background(), claim, []models.EvidenceCandidate{
		richCandidate("https://cdc.gov/a"),
		richCandidate("https://cdc.gov/b"),
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 95.0, out[0].Relevance)
	assert.Equal(t, 70.0, out[1].Relevance)
}

func TestEvaluateAll_ToleratesCodeFences(t *testing.T) {
	client := &scriptedClient{responses: []string{
		"```json\n{\"evaluations\": [{\"index\": 0, \"relevance\": 80, \"stance\": \"supporting\", \"confidence\": 0.9, \"reasoning\": \"r\", \"key_excerpt\": \"\"}]}\n```",
	}}
	e := newTestEvaluator(client)

	claim := models.Claim{ID: "c1", Text: "The treatment improved patient recovery rates"}
	out, err := e.EvaluateAll(context.Background(), claim, []models.EvidenceCandidate{richCandidate("https://cdc.gov/a")})
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

// expiringClient answers the first call, then cancels the context and fails
// every call after it.
type expiringClient struct {
	first  string
	cancel context.CancelFunc
	calls  int
}

func (c *expiringClient) CompleteJSON(ctx context.Context, _, _ string) (string, error) {
	c.calls++
	if c.calls == 1 {
		return c.first, nil
	}
	c.cancel()
	return "", ctx.Err()
}

func TestEvaluateAll_KeepsScoredBatchesOnDeadline(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := &expiringClient{
		first:  `{"evaluations": [{"index": 0, "relevance": 85, "stance": "supporting", "confidence": 0.9, "reasoning": "direct data", "key_excerpt": ""}]}`,
		cancel: cancel,
	}
	cfg := config.Default()
	cfg.Evaluator.BatchSize = 1
	e := New(models.EvaluatorPrimary, client, &QualityAssessor{nowYear: 2026}, cfg)

	claim := models.Claim{ID: "c1", Text: "The treatment improved patient recovery rates"}
	out, err := e.EvaluateAll(ctx, claim, []models.EvidenceCandidate{
		richCandidate("https://cdc.gov/a"),
		richCandidate("https://cdc.gov/b"),
	})

	require.Error(t, err)
	assert.True(t, stderrors.Is(err, &apperrors.Error{Type: apperrors.ErrorTypeDeadline}))
	require.Len(t, out, 1, "the batch scored before the deadline survives")
	assert.Equal(t, 85.0, out[0].Relevance)
}

func TestKeywordOverlapScore(t *testing.T) {
	c := models.EvidenceCandidate{Text: "The treatment improved recovery rates for patients in the ward."}
	ev := keywordOverlapScore("The treatment improved patient recovery rates", c, models.EvaluatorSecondary)

	assert.Equal(t, models.StanceNeutral, ev.Stance)
	assert.Equal(t, fallbackConfidence, ev.Confidence)
	assert.Equal(t, models.EvaluatorSecondary, ev.EvaluatorID)
	assert.Greater(t, ev.Relevance, 0.0)
	assert.LessOrEqual(t, ev.Relevance, 100.0)
}
