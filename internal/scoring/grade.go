package scoring

import (
	"strings"

	"github.com/veritas-check/veritas/internal/models"
)

// Evidence grade measures the research process, not the verdict. A claim can
// be thoroughly debunked and still earn a high grade for the quality of the
// debunking evidence.

const (
	attributionMax = 25.0
	multiSourceMax = 30.0
	diversityMax   = 20.0
	accessMax      = 15.0
	depthMax       = 10.0
)

// GradeScore computes the 0-100 process score for one pool.
func GradeScore(pool models.EvidencePool) float64 {
	if pool.Empty() {
		return 0
	}
	score := attributionScore(pool.Items) +
		multiSourceScore(pool.Items) +
		diversityScore(pool) +
		accessibilityScore(pool.Items) +
		depthScore(pool.Items)
	if score > 100 {
		score = 100
	}
	return score
}

// Grade buckets the process score into the letter ladder.
func Grade(pool models.EvidencePool) (models.EvidenceGrade, float64) {
	s := GradeScore(pool)
	return models.GradeFromScore(s), s
}

// attributionScore rewards evidence carrying title, domain and URL.
func attributionScore(items []models.ProcessedEvidence) float64 {
	complete := 0
	for _, ev := range items {
		c := ev.Candidate
		if c.SourceTitle != "" && c.SourceDomain != "" && c.SourceURL != "" {
			complete++
		}
	}
	return attributionMax * float64(complete) / float64(len(items))
}

// multiSourceScore rewards independent agreement: the largest stance bloc
// across at least two sources, with a bonus when the bloc spans domains.
func multiSourceScore(items []models.ProcessedEvidence) float64 {
	byStance := map[models.Stance][]models.ProcessedEvidence{}
	for _, ev := range items {
		byStance[ev.Stance] = append(byStance[ev.Stance], ev)
	}

	best := 0.0
	for _, group := range byStance {
		if len(group) < 2 {
			continue
		}
		agreement := float64(len(group)) / float64(len(items)) * (multiSourceMax - 6)
		if uniqueDomains(group) >= 2 {
			agreement += 6
		}
		if agreement > best {
			best = agreement
		}
	}
	if best > multiSourceMax {
		best = multiSourceMax
	}
	return best
}

func diversityScore(pool models.EvidencePool) float64 {
	switch n := len(pool.Domains()); {
	case n >= 5:
		return 20
	case n == 4:
		return 16
	case n == 3:
		return 12
	case n == 2:
		return 8
	case n == 1:
		return 4
	default:
		return 0
	}
}

func accessibilityScore(items []models.ProcessedEvidence) float64 {
	accessible := 0
	for _, ev := range items {
		u := ev.Candidate.SourceURL
		if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
			accessible++
		}
	}
	return accessMax * float64(accessible) / float64(len(items))
}

// depthScore averages content length and relevance into a small depth signal.
func depthScore(items []models.ProcessedEvidence) float64 {
	var sum float64
	for _, ev := range items {
		lengthFrac := float64(len(ev.Candidate.Text)) / longContentChars
		if lengthFrac > 1 {
			lengthFrac = 1
		}
		sum += (lengthFrac + ev.Relevance/100) / 2
	}
	return depthMax * sum / float64(len(items))
}

func uniqueDomains(items []models.ProcessedEvidence) int {
	seen := map[string]bool{}
	for _, ev := range items {
		if d := ev.Candidate.SourceDomain; d != "" {
			seen[d] = true
		}
	}
	return len(seen)
}
