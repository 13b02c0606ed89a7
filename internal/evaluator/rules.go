package evaluator

import (
	"regexp"
	"strings"

	"github.com/veritas-check/veritas/internal/models"
)

// Mandatory hard rules applied to every evaluator output. The LLM proposes;
// these rules dispose. Order matters: negation override wins over the
// confidence gate and the focus rule.

const (
	confidenceGateThreshold = 0.7
	negationWindow          = 8 // words
)

var negationCues = []string{"no", "not", "false", "debunked", "myth", "disproven"}

var riggedClaimPattern = regexp.MustCompile(`(?i)\b(is|was|are|were)\s+(rigged|fraudulent|fake|stolen|a\s+fraud|a\s+hoax)\b`)

var causalClaimPattern = regexp.MustCompile(`(?i)\b(causes?|caused|leads?\s+to|results?\s+in)\b`)

var processWords = []string{
	"fraud", "rigging", "rigged", "ballot", "ballots", "irregularity",
	"irregularities", "audit", "audits", "integrity", "tamper", "tampering",
	"process", "procedure", "recount", "manipulation",
}

var outcomeWords = []string{"won", "win", "winner", "lost", "results", "outcome", "margin", "elected", "victory"}

var causalLanguage = []string{
	"cause", "causes", "caused", "causal", "causality", "link", "linked",
	"association", "associated", "effect", "effects", "leads to", "due to",
	"correlation", "no evidence",
}

var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "of": true, "in": true, "on": true,
	"to": true, "and": true, "or": true, "for": true, "by": true, "with": true,
	"that": true, "this": true, "it": true, "its": true, "at": true, "as": true,
	"will": true, "has": true, "have": true, "had": true,
}

// applyHardRules enforces the negation override, confidence gate, and
// core-assertion focus on one scored item. It mutates only stance.
func applyHardRules(claimText string, ev *models.ProcessedEvidence) {
	if negationNearPredicate(claimText, ev.Candidate.Text) {
		ev.Stance = models.StanceContradicting
		return
	}
	if ev.Confidence < confidenceGateThreshold {
		ev.Stance = models.StanceNeutral
		return
	}
	if ev.Stance != models.StanceNeutral && offCoreAssertion(claimText, ev.Candidate.Text) {
		ev.Stance = models.StanceNeutral
	}
}

// negationNearPredicate reports whether the evidence contains a negation cue
// within a short window of any of the claim's content words.
func negationNearPredicate(claimText, evidenceText string) bool {
	predicates := contentWords(claimText)
	if len(predicates) == 0 {
		return false
	}

	words := tokenize(evidenceText)
	var cuePositions, predPositions []int
	for i, w := range words {
		for _, cue := range negationCues {
			if w == cue {
				cuePositions = append(cuePositions, i)
				break
			}
		}
		if predicates[w] {
			predPositions = append(predPositions, i)
		}
	}

	for _, c := range cuePositions {
		for _, p := range predPositions {
			d := c - p
			if d < 0 {
				d = -d
			}
			if d <= negationWindow {
				return true
			}
		}
	}
	return false
}

// offCoreAssertion implements the focus rule: for rigged/fraudulent claims,
// outcome-only evidence is neutral; for causal claims, evidence without
// causal language is neutral.
func offCoreAssertion(claimText, evidenceText string) bool {
	lowerEvidence := strings.ToLower(evidenceText)

	if riggedClaimPattern.MatchString(claimText) {
		hasProcess := containsAny(lowerEvidence, processWords)
		hasOutcome := containsAny(lowerEvidence, outcomeWords)
		if hasOutcome && !hasProcess {
			return true
		}
		return false
	}

	if causalClaimPattern.MatchString(claimText) {
		return !containsAny(lowerEvidence, causalLanguage)
	}

	return false
}

func containsAny(lowerText string, terms []string) bool {
	words := tokenize(lowerText)
	wordSet := make(map[string]bool, len(words))
	for _, w := range words {
		wordSet[w] = true
	}
	for _, t := range terms {
		if strings.Contains(t, " ") {
			if strings.Contains(lowerText, t) {
				return true
			}
		} else if wordSet[t] {
			return true
		}
	}
	return false
}

// contentWords returns the claim's non-stopword tokens.
func contentWords(text string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range tokenize(text) {
		if !stopwords[w] && len(w) > 2 {
			out[w] = true
		}
	}
	return out
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
}
