package scoring

import (
	"math"
	"strings"

	"github.com/veritas-check/veritas/internal/models"
)

// Zero-start evidence accumulation. A claim earns trust only from evidence;
// absence of evidence is a 0, not a neutral 50.

const (
	baseImpact       = 15.0
	perPieceCap      = 25.0
	ratioKnee        = 0.7
	maxMixedPenalty  = 0.30
	mixedClampLow    = 15.0
	mixedClampHigh   = 85.0
	longContentChars = 2000
)

// Authority bonus points per domain class.
const (
	bonusGovernment = 4.0
	bonusAcademic   = 3.0
	bonusJournal    = 3.0
	bonusMedical    = 2.0
)

var premierJournalDomains = []string{
	"nature.com", "science.org", "thelancet.com", "nejm.org", "bmj.com",
	"cell.com", "pnas.org", "jamanetwork.com",
}

var medicalInstitutionDomains = []string{
	"who.int", "mayoclinic.org", "clevelandclinic.org", "hopkinsmedicine.org",
	"health.harvard.edu",
}

// TrustScore computes the claim trust score from the post-consensus pool.
// Empty pools score 0 and the caller is expected to grade them F.
func TrustScore(pool models.EvidencePool) float64 {
	if pool.Empty() {
		return 0
	}

	var accumulated, totalWeight float64
	var supporting, contradicting int
	for _, ev := range pool.Items {
		impact := pieceImpact(ev)
		totalWeight += impact
		switch ev.Stance {
		case models.StanceSupporting:
			accumulated += impact
			supporting++
		case models.StanceContradicting:
			accumulated -= impact
			contradicting++
		}
	}
	if totalWeight == 0 {
		return 0
	}

	ratio := accumulated / totalWeight
	score := mapRatio(ratio)

	mixed := supporting > 0 && contradicting > 0
	if mixed {
		score *= 1 - mixedPenalty(supporting, contradicting)
		if score < mixedClampLow {
			score = mixedClampLow
		}
		if score > mixedClampHigh {
			score = mixedClampHigh
		}
	}

	score *= volumeModifier(len(pool.Items))

	// Volume scaling on a thin pool can push a clamped mixed score back
	// under the floor; mixed evidence stays inside [15, 85] regardless.
	if mixed && score < mixedClampLow {
		score = mixedClampLow
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// pieceImpact scores one evidence piece: relevance fraction times quality
// weight times confidence times the base, plus an authority bonus, capped.
func pieceImpact(ev models.ProcessedEvidence) float64 {
	relFrac := ev.Relevance / 100
	conf := ev.Confidence
	if conf < 0.5 {
		conf = 0.5
	}
	impact := relFrac*qualityWeight(ev.Candidate)*conf*baseImpact + authorityBonus(ev.Candidate.SourceDomain)
	if impact > perPieceCap {
		impact = perPieceCap
	}
	return impact
}

// qualityWeight in [1.0, 2.0]: longer extracted content and an HTTPS source
// both raise the weight.
func qualityWeight(c models.EvidenceCandidate) float64 {
	w := 1.0
	w += 0.8 * math.Min(1, float64(len(c.Text))/longContentChars)
	if strings.HasPrefix(c.SourceURL, "https://") {
		w += 0.2
	}
	if w > 2.0 {
		w = 2.0
	}
	return w
}

func authorityBonus(domain string) float64 {
	switch {
	case strings.HasSuffix(domain, ".gov") || strings.Contains(domain, ".gov.") || domain == "who.int":
		return bonusGovernment
	case strings.HasSuffix(domain, ".edu") || strings.Contains(domain, ".ac."):
		return bonusAcademic
	case matchesAny(domain, premierJournalDomains):
		return bonusJournal
	case matchesAny(domain, medicalInstitutionDomains):
		return bonusMedical
	default:
		return 0
	}
}

// mapRatio converts the strength ratio [-1,1] to a trust score. The knees at
// +/-0.7 compress the middle and stretch the decisive ends.
func mapRatio(ratio float64) float64 {
	switch {
	case ratio > ratioKnee:
		return 70 + (ratio-ratioKnee)*100
	case ratio < -ratioKnee:
		return 30 * (1 + ratio/ratioKnee)
	default:
		return 50 + ratio*50
	}
}

// mixedPenalty grows with how balanced the conflict is, up to 30% when the
// two sides are equal.
func mixedPenalty(supporting, contradicting int) float64 {
	minority := math.Min(float64(supporting), float64(contradicting))
	majority := math.Max(float64(supporting), float64(contradicting))
	return maxMixedPenalty * (minority / majority)
}

func volumeModifier(n int) float64 {
	switch {
	case n >= 6:
		return 1.0
	case n >= 4:
		return 0.95
	case n >= 2:
		return 0.85
	default:
		return 0.7
	}
}

func matchesAny(domain string, set []string) bool {
	for _, d := range set {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return true
		}
	}
	return false
}
