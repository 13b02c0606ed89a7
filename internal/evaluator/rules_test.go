package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veritas-check/veritas/internal/models"
)

func evidence(text string, stance models.Stance, confidence float64) models.ProcessedEvidence {
	return models.ProcessedEvidence{
		Candidate:  models.EvidenceCandidate{Text: text},
		Stance:     stance,
		Confidence: confidence,
	}
}

func TestApplyHardRules_NegationOverride(t *testing.T) {
	tests := []struct {
		name  string
		claim string
		text  string
	}{
		{"no evidence", "Vaccines cause autism in children", "Large studies found no evidence that vaccines are linked to autism."},
		{"debunked", "COVID vaccines contain microchips", "The claim that vaccines contain microchips has been debunked by researchers."},
		{"myth", "Eating carrots improves night vision dramatically", "The carrots night vision story is a wartime myth."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Even a confident supporting verdict flips to contradicting.
			ev := evidence(tt.text, models.StanceSupporting, 0.95)
			applyHardRules(tt.claim, &ev)
			assert.Equal(t, models.StanceContradicting, ev.Stance)
		})
	}
}

func TestApplyHardRules_ConfidenceGate(t *testing.T) {
	ev := evidence("The economy grew steadily through the period.", models.StanceSupporting, 0.5)
	applyHardRules("The economy grew last year", &ev)
	assert.Equal(t, models.StanceNeutral, ev.Stance)

	ev = evidence("The economy grew steadily through the period.", models.StanceSupporting, 0.7)
	applyHardRules("The economy grew last year", &ev)
	assert.Equal(t, models.StanceSupporting, ev.Stance, "confidence at the threshold passes the gate")
}

func TestApplyHardRules_NegationBeatsConfidenceGate(t *testing.T) {
	ev := evidence("Investigators found no fraud in the vaccines program.", models.StanceNeutral, 0.2)
	applyHardRules("The vaccines program was fraudulent", &ev)
	assert.Equal(t, models.StanceContradicting, ev.Stance)
}

func TestApplyHardRules_RiggedClaimOutcomeEvidenceIsNeutral(t *testing.T) {
	claim := "The election was rigged"

	outcomeOnly := evidence("The official results show the incumbent won by a wide margin.", models.StanceSupporting, 0.9)
	applyHardRules(claim, &outcomeOnly)
	assert.Equal(t, models.StanceNeutral, outcomeOnly.Stance)

	processEvidence := evidence("Audits of the process found widespread ballot tampering.", models.StanceSupporting, 0.9)
	applyHardRules(claim, &processEvidence)
	assert.Equal(t, models.StanceSupporting, processEvidence.Stance)
}

func TestApplyHardRules_CausalClaimNeedsCausalLanguage(t *testing.T) {
	claim := "Smoking causes lung cancer"

	nonCausal := evidence("Many smokers also drink coffee regularly.", models.StanceSupporting, 0.9)
	applyHardRules(claim, &nonCausal)
	assert.Equal(t, models.StanceNeutral, nonCausal.Stance)

	causal := evidence("Decades of research established the causal effect of smoking on lung cancer.", models.StanceSupporting, 0.9)
	applyHardRules(claim, &causal)
	assert.Equal(t, models.StanceSupporting, causal.Stance)
}

func TestNegationNearPredicate_WindowBound(t *testing.T) {
	claim := "Vaccines cause autism"
	// Cue and predicate far apart: no override.
	far := "There is no doubt that many parents worry; separately, researchers keep measuring outcomes around childhood conditions such as autism."
	assert.False(t, negationNearPredicate(claim, far))

	near := "Researchers found no link between vaccines and autism."
	assert.True(t, negationNearPredicate(claim, near))
}
