package evaluator

import "github.com/veritas-check/veritas/internal/models"

// fallbackConfidence marks items scored by the keyword-overlap path so the
// confidence gate downstream keeps them neutral.
const fallbackConfidence = 0.4

// keywordOverlapScore is the last-resort scorer used when both the batch and
// single-item LLM paths fail to parse. It emits neutral stance with low
// confidence; relevance is the fraction of claim content words present in
// the evidence text.
func keywordOverlapScore(claimText string, c models.EvidenceCandidate, id models.EvaluatorID) models.ProcessedEvidence {
	claimWords := contentWords(claimText)

	evidenceWords := make(map[string]bool)
	for _, w := range tokenize(c.Text) {
		evidenceWords[w] = true
	}

	matched := 0
	for w := range claimWords {
		if evidenceWords[w] {
			matched++
		}
	}

	relevance := 0.0
	if len(claimWords) > 0 {
		relevance = float64(matched) / float64(len(claimWords)) * 100
	}

	return models.ProcessedEvidence{
		Candidate:   c,
		EvaluatorID: id,
		Relevance:   clamp100(relevance),
		Stance:      models.StanceNeutral,
		Confidence:  fallbackConfidence,
		Reasoning:   "keyword-overlap fallback after evaluator parse failure",
		KeyExcerpt:  makeExcerpt(c.Text, ""),
	}
}
