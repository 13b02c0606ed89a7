package evaluator

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/veritas-check/veritas/internal/models"
)

// QualityAssessor produces a composite quality score from six evidence-text
// heuristics. Sub-scores are bounded [0,100] and weighted into one number:
// methodology rigor 0.25, peer-review signals 0.20, reproducibility 0.20,
// citation/authority 0.15, transparency 0.15, temporal consistency 0.05.
type QualityAssessor struct {
	nowYear int
}

// NewQualityAssessor creates an assessor anchored at the current year.
func NewQualityAssessor() *QualityAssessor {
	return &QualityAssessor{nowYear: time.Now().Year()}
}

// QualityBreakdown exposes the six sub-scores for diagnostics.
type QualityBreakdown struct {
	MethodologyRigor float64
	PeerReview       float64
	Reproducibility  float64
	Authority        float64
	Transparency     float64
	Temporal         float64
	Composite        float64
}

var (
	sampleSizePattern = regexp.MustCompile(`(?i)\bn\s*=\s*\d+`)
	pValuePattern     = regexp.MustCompile(`(?i)\bp\s*[<=]\s*0?\.\d+`)
	doiPattern        = regexp.MustCompile(`\b10\.\d{4,9}/\S+`)
	textYearPattern   = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

var journalDomains = []string{
	"nature.com", "science.org", "thelancet.com", "nejm.org", "bmj.com",
	"cell.com", "pnas.org", "jamanetwork.com",
}

// Assess scores one candidate. Heuristics reward explicit methodology
// language, peer-review markers, reproducibility statistics, authoritative
// hosts, disclosure language, and recency.
func (qa *QualityAssessor) Assess(c models.EvidenceCandidate) QualityBreakdown {
	lower := strings.ToLower(c.Text)

	b := QualityBreakdown{
		MethodologyRigor: qa.methodologyRigor(lower),
		PeerReview:       qa.peerReview(lower),
		Reproducibility:  qa.reproducibility(lower),
		Authority:        qa.authority(c.SourceDomain, lower),
		Transparency:     qa.transparency(lower),
		Temporal:         qa.temporal(c.Text),
	}

	b.Composite = clamp100(b.MethodologyRigor*0.25 +
		b.PeerReview*0.20 +
		b.Reproducibility*0.20 +
		b.Authority*0.15 +
		b.Transparency*0.15 +
		b.Temporal*0.05)
	return b
}

// Score is the composite-only convenience used by the pipeline.
func (qa *QualityAssessor) Score(c models.EvidenceCandidate) float64 {
	return qa.Assess(c).Composite
}

func (qa *QualityAssessor) methodologyRigor(lower string) float64 {
	score := 40.0
	if strings.Contains(lower, "randomized controlled trial") ||
		strings.Contains(lower, "systematic review") ||
		strings.Contains(lower, "meta-analysis") {
		score += 25
	}
	if strings.Contains(lower, "double-blind") || strings.Contains(lower, "controlled") {
		score += 15
	}
	if sampleSizePattern.MatchString(lower) || strings.Contains(lower, "sample size") {
		score += 10
	}
	if strings.Contains(lower, "methodology") || strings.Contains(lower, "methods") {
		score += 10
	}
	return clamp100(score)
}

func (qa *QualityAssessor) peerReview(lower string) float64 {
	score := 30.0
	if strings.Contains(lower, "peer-reviewed") || strings.Contains(lower, "peer reviewed") {
		score += 30
	}
	if strings.Contains(lower, "journal") {
		score += 20
	}
	if doiPattern.MatchString(lower) {
		score += 20
	}
	if strings.Contains(lower, "published in") {
		score += 10
	}
	return clamp100(score)
}

func (qa *QualityAssessor) reproducibility(lower string) float64 {
	score := 30.0
	if strings.Contains(lower, "data available") ||
		strings.Contains(lower, "data availability") ||
		strings.Contains(lower, "open data") ||
		strings.Contains(lower, "replicat") {
		score += 25
	}
	if pValuePattern.MatchString(lower) {
		score += 20
	}
	if strings.Contains(lower, "confidence interval") || strings.Contains(lower, "95% ci") {
		score += 15
	}
	if sampleSizePattern.MatchString(lower) {
		score += 10
	}
	return clamp100(score)
}

func (qa *QualityAssessor) authority(domain, lower string) float64 {
	score := 30.0
	switch {
	case strings.HasSuffix(domain, ".gov") || strings.Contains(domain, ".gov."):
		score += 35
	case strings.HasSuffix(domain, ".edu") || strings.Contains(domain, ".ac."):
		score += 30
	case isJournalDomain(domain):
		score += 30
	case strings.HasSuffix(domain, ".org"):
		score += 15
	}
	if strings.Contains(lower, "cited") || strings.Contains(lower, "references") {
		score += 15
	}
	return clamp100(score)
}

func (qa *QualityAssessor) transparency(lower string) float64 {
	score := 40.0
	if strings.Contains(lower, "funded by") || strings.Contains(lower, "funding") {
		score += 20
	}
	if strings.Contains(lower, "conflict of interest") || strings.Contains(lower, "disclosure") {
		score += 20
	}
	if strings.Contains(lower, "author") {
		score += 10
	}
	if strings.Contains(lower, "limitations") {
		score += 10
	}
	return clamp100(score)
}

func (qa *QualityAssessor) temporal(text string) float64 {
	score := 50.0
	best := 0
	for _, m := range textYearPattern.FindAllString(text, -1) {
		if y, err := strconv.Atoi(m); err == nil && y > best && y <= qa.nowYear {
			best = y
		}
	}
	if best > 0 {
		age := qa.nowYear - best
		switch {
		case age <= 2:
			score += 40
		case age <= 5:
			score += 25
		case age <= 10:
			score += 10
		}
	}
	return clamp100(score)
}

func isJournalDomain(domain string) bool {
	for _, jd := range journalDomains {
		if domain == jd || strings.HasSuffix(domain, "."+jd) {
			return true
		}
	}
	return false
}

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
