package orchestrator

import (
	"fmt"
	"time"

	"github.com/veritas-check/veritas/internal/models"
)

// assembleCapsule builds the request result from per-claim outcomes. The
// per_claim list preserves input order; failed claims are dropped from it
// and surface as capsule warnings instead.
func (o *Orchestrator) assembleCapsule(requestID string, claims []models.Claim, results []claimResult) *models.TrustCapsule {
	capsule := &models.TrustCapsule{
		RequestID:   requestID,
		GeneratedAt: time.Now().UTC(),
		PerClaim:    []models.ClaimScore{},
		Citations:   []models.Citation{},
	}

	var sum float64
	for _, r := range results {
		if r.err != nil {
			capsule.Warnings = append(capsule.Warnings,
				fmt.Sprintf("claim %q failed: %v", truncateText(claims[r.index].Text, 60), r.err))
			continue
		}
		capsule.PerClaim = append(capsule.PerClaim, r.score)
		sum += r.score.TrustScore
	}

	if len(capsule.PerClaim) == 0 {
		capsule.OverallScore = 0
		capsule.OverallGrade = models.GradeF
		capsule.Warnings = append(capsule.Warnings, "no claims could be scored")
		return capsule
	}

	capsule.OverallScore = sum / float64(len(capsule.PerClaim))
	capsule.OverallGrade = models.GradeFromScore(capsule.OverallScore)
	capsule.Citations = collectCitations(capsule.PerClaim)
	return capsule
}

// collectCitations gathers every cited source across claims, deduplicated by
// URL, in claim-then-evidence order.
func collectCitations(scores []models.ClaimScore) []models.Citation {
	seen := make(map[string]bool)
	citations := []models.Citation{}
	add := func(entries []models.EvidenceEntry) {
		for _, e := range entries {
			if e.SourceURL == "" || seen[e.SourceURL] {
				continue
			}
			seen[e.SourceURL] = true
			citations = append(citations, models.Citation{
				Title:  e.SourceTitle,
				Domain: e.SourceDomain,
				URL:    e.SourceURL,
				Date:   e.PublishDate,
			})
		}
	}
	for _, cs := range scores {
		add(cs.Supporting)
		add(cs.Contradicting)
		add(cs.Neutral)
	}
	return citations
}

func truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
