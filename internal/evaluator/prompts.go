package evaluator

import (
	"fmt"
	"strings"

	"github.com/veritas-check/veritas/internal/models"
)

// The evaluator prompts encode the scoring rubric. Both evaluators use the
// same rubric; independence comes from separate model instances and separate
// passes, not from divergent instructions.

const evaluatorSystemPrompt = `You are an evidence evaluator for a fact-checking system. You score evidence passages against a factual claim.

For each passage, produce:
- relevance (0-100): 90+ direct proof or disproof with specific data; 80-89 strong support or contradiction with related data; 70-79 good context; 60-69 weak; below 60 irrelevant.
- stance: one of "supporting", "contradicting", "neutral".
  contradicting: the evidence states the claim is false, cites a direct negation ("no X", "no evidence", "debunked", "myth", "disproven"), or reports investigations concluding no effect or no link.
  supporting: the evidence states the claim is true or provides data directly confirming it.
  neutral: the evidence describes the claim as a belief or phenomenon without endorsing or refuting it, or reports outcomes that do not speak to the claim's process or mechanism.
- confidence (0-1): your own confidence in the relevance and stance you assigned.
- reasoning: one or two sentences.
- key_excerpt: a verbatim quote from the passage, at most 100 characters.

Focus on the core assertion. For claims that some process is rigged or fraudulent, evidence about the outcome alone is neutral. For causal claims, evidence must address causality to support or contradict.

Respond with JSON only.`

// batchUserPrompt renders an indexed batch request. The response must be an
// object holding an "evaluations" array of the same length and indexing.
func batchUserPrompt(claimText string, batch []models.EvidenceCandidate) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "CLAIM: %s\n\nEVIDENCE PASSAGES (%d):\n", claimText, len(batch))
	for i, c := range batch {
		fmt.Fprintf(&sb, "\n[%d] source: %s (%s)\n%s\n", i, c.SourceTitle, c.SourceDomain, c.Text)
	}
	sb.WriteString(`
Evaluate every passage. Respond with JSON:
{"evaluations": [{"index": 0, "relevance": 0, "stance": "neutral", "confidence": 0.0, "reasoning": "", "key_excerpt": ""}, ...]}
The array must contain exactly one entry per passage, in index order.`)
	return sb.String()
}

// singleUserPrompt renders the single-item retry request.
func singleUserPrompt(claimText string, c models.EvidenceCandidate) string {
	return fmt.Sprintf(`CLAIM: %s

EVIDENCE PASSAGE:
source: %s (%s)
%s

Respond with JSON:
{"relevance": 0, "stance": "neutral", "confidence": 0.0, "reasoning": "", "key_excerpt": ""}`,
		claimText, c.SourceTitle, c.SourceDomain, c.Text)
}
