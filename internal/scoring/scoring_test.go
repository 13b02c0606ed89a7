package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritas-check/veritas/internal/models"
)

func TestEngineScore_EmptyPoolIsZeroF(t *testing.T) {
	e := NewEngine()
	claim := models.Claim{ID: "c1", Text: "unverifiable claim text"}
	report := models.ConsensusReport{ClaimID: "c1", ConsensusStance: models.StanceNeutral}

	cs := e.Score(claim, models.EvidencePool{ClaimID: "c1"}, report)
	assert.Equal(t, 0.0, cs.TrustScore)
	assert.Equal(t, models.GradeF, cs.EvidenceGrade)
	require.NotEmpty(t, cs.Warnings)
	assert.Contains(t, cs.Warnings[0], "no usable evidence")
}

func TestEngineScore_GroupsEvidenceByStance(t *testing.T) {
	e := NewEngine()
	claim := models.Claim{ID: "c1", Text: "the budget grew three percent"}

	pool := poolOf(
		strongItem("a.example", models.StanceSupporting),
		strongItem("b.example", models.StanceContradicting),
		strongItem("c.example", models.StanceNeutral),
	)
	report := models.ConsensusReport{
		ClaimID:           "c1",
		ConsensusStance:   models.StanceNeutral,
		DisagreementLevel: 10,
		UncertaintyNotes:  []string{"mixed evidence"},
	}

	cs := e.Score(claim, pool, report)
	assert.Len(t, cs.Supporting, 1)
	assert.Len(t, cs.Contradicting, 1)
	assert.Len(t, cs.Neutral, 1)
	assert.Equal(t, models.StanceNeutral, cs.ConsensusStance)
	assert.Equal(t, 10.0, cs.DisagreementLevel)
	assert.Equal(t, []string{"mixed evidence"}, cs.UncertaintyNotes)
	assert.Greater(t, cs.TrustScore, 0.0)
	assert.NotEqual(t, models.GradeF, cs.EvidenceGrade)
}

func TestEngineScore_EntriesCarrySourceFields(t *testing.T) {
	e := NewEngine()
	claim := models.Claim{ID: "c1", Text: "the budget grew three percent"}

	item := strongItem("agency.gov", models.StanceSupporting)
	item.KeyExcerpt = "grew by three percent"
	item.Reasoning = "official figures match"
	item.Candidate.Meta.PublishDate = "2024-03-11"

	cs := e.Score(claim, poolOf(item), models.ConsensusReport{ClaimID: "c1", ConsensusStance: models.StanceSupporting})
	require.Len(t, cs.Supporting, 1)
	entry := cs.Supporting[0]
	assert.Equal(t, "agency.gov", entry.SourceDomain)
	assert.Equal(t, "https://agency.gov/report", entry.SourceURL)
	assert.Equal(t, "grew by three percent", entry.HighlightText)
	assert.Equal(t, "official figures match", entry.Statement)
	assert.Equal(t, 90.0, entry.RelevanceScore)
	assert.Equal(t, "2024-03-11", entry.PublishDate)
}
