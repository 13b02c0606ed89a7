package scoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veritas-check/veritas/internal/models"
)

func TestGradeScore_EmptyPool(t *testing.T) {
	grade, score := Grade(poolOf())
	assert.Equal(t, models.GradeF, grade)
	assert.Equal(t, 0.0, score)
}

func TestGradeScore_WellSourcedPoolGradesHigh(t *testing.T) {
	var items []models.ProcessedEvidence
	for i := 0; i < 5; i++ {
		items = append(items, strongItem(fmt.Sprintf("src%d.example", i), models.StanceContradicting))
	}
	grade, score := Grade(poolOf(items...))
	assert.GreaterOrEqual(t, score, 80.0, "full attribution, five domains, agreeing sources")
	assert.Contains(t, []models.EvidenceGrade{models.GradeAPlus, models.GradeA, models.GradeBPlus, models.GradeB}, grade)
}

func TestGradeScore_IndependentOfStance(t *testing.T) {
	var supporting, contradicting []models.ProcessedEvidence
	for i := 0; i < 4; i++ {
		supporting = append(supporting, strongItem(fmt.Sprintf("s%d.example", i), models.StanceSupporting))
		contradicting = append(contradicting, strongItem(fmt.Sprintf("s%d.example", i), models.StanceContradicting))
	}
	_, supScore := Grade(poolOf(supporting...))
	_, conScore := Grade(poolOf(contradicting...))
	assert.Equal(t, supScore, conScore, "the grade measures process, not verdict")
}

func TestGradeScore_MissingAttributionLowersScore(t *testing.T) {
	full := strongItem("a.example", models.StanceSupporting)
	bare := strongItem("b.example", models.StanceSupporting)
	bare.Candidate.SourceTitle = ""

	_, withTitle := Grade(poolOf(full, strongItem("b.example", models.StanceSupporting)))
	_, withoutTitle := Grade(poolOf(full, bare))
	assert.Greater(t, withTitle, withoutTitle)
}

func TestDiversityScore(t *testing.T) {
	tests := []struct {
		domains int
		want    float64
	}{
		{5, 20}, {4, 16}, {3, 12}, {2, 8}, {1, 4},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d domains", tt.domains), func(t *testing.T) {
			var items []models.ProcessedEvidence
			for i := 0; i < tt.domains; i++ {
				items = append(items, strongItem(fmt.Sprintf("d%d.example", i), models.StanceNeutral))
			}
			assert.Equal(t, tt.want, diversityScore(poolOf(items...)))
		})
	}
}

func TestGradeFromScoreLadder(t *testing.T) {
	tests := []struct {
		score float64
		want  models.EvidenceGrade
	}{
		{100, models.GradeAPlus}, {97, models.GradeAPlus},
		{96.9, models.GradeA}, {90, models.GradeA},
		{89.9, models.GradeBPlus}, {87, models.GradeBPlus},
		{86.9, models.GradeB}, {80, models.GradeB},
		{79.9, models.GradeCPlus}, {77, models.GradeCPlus},
		{76.9, models.GradeC}, {70, models.GradeC},
		{69.9, models.GradeD}, {60, models.GradeD},
		{59.9, models.GradeF}, {0, models.GradeF},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.1f", tt.score), func(t *testing.T) {
			assert.Equal(t, tt.want, models.GradeFromScore(tt.score))
		})
	}
}
