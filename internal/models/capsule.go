package models

import "time"

// EvidenceGrade is the letter grade for research process quality,
// independent of what the gathered evidence says.
type EvidenceGrade string

const (
	GradeAPlus EvidenceGrade = "A+"
	GradeA     EvidenceGrade = "A"
	GradeBPlus EvidenceGrade = "B+"
	GradeB     EvidenceGrade = "B"
	GradeCPlus EvidenceGrade = "C+"
	GradeC     EvidenceGrade = "C"
	GradeD     EvidenceGrade = "D"
	GradeF     EvidenceGrade = "F"
)

// GradeFromScore buckets a 0-100 process score into the letter ladder.
func GradeFromScore(score float64) EvidenceGrade {
	switch {
	case score >= 97:
		return GradeAPlus
	case score >= 90:
		return GradeA
	case score >= 87:
		return GradeBPlus
	case score >= 80:
		return GradeB
	case score >= 77:
		return GradeCPlus
	case score >= 70:
		return GradeC
	case score >= 60:
		return GradeD
	default:
		return GradeF
	}
}

// EvidenceEntry is the externally visible form of one evidence piece,
// grouped under a claim by stance.
type EvidenceEntry struct {
	Statement        string  `json:"statement"`
	SourceTitle      string  `json:"source_title"`
	SourceDomain     string  `json:"source_domain"`
	SourceURL        string  `json:"source_url"`
	Stance           Stance  `json:"stance"`
	RelevanceScore   float64 `json:"relevance_score"`
	HighlightText    string  `json:"highlight_text"`
	HighlightContext string  `json:"highlight_context"`
	PublishDate      string  `json:"publish_date,omitempty"`
}

// ClaimScore is the final per-claim result.
type ClaimScore struct {
	ClaimID            string          `json:"claim_id"`
	ClaimText          string          `json:"claim_text"`
	TrustScore         float64         `json:"trust_score"`          // [0,100]
	EvidenceGrade      EvidenceGrade   `json:"evidence_grade"`
	EvidenceGradeScore float64         `json:"evidence_grade_score"` // [0,100]
	ConsensusStance    Stance          `json:"consensus_stance"`
	DisagreementLevel  float64         `json:"disagreement_level"` // [0,100]
	UncertaintyNotes   []string        `json:"uncertainty_notes,omitempty"`
	Supporting         []EvidenceEntry `json:"supporting_evidence"`
	Contradicting      []EvidenceEntry `json:"contradicting_evidence"`
	Neutral            []EvidenceEntry `json:"neutral_evidence"`
	Warnings           []string        `json:"warnings,omitempty"`
}

// Citation is one deduplicated source reference in the capsule.
type Citation struct {
	Title  string `json:"title"`
	Domain string `json:"domain"`
	URL    string `json:"url"`
	Date   string `json:"date,omitempty"`
}

// TrustCapsule aggregates all per-claim results for one request.
// OverallScore is the unweighted mean of per-claim trust scores and
// OverallGrade is derived from it via the same letter ladder.
type TrustCapsule struct {
	RequestID    string        `json:"request_id"`
	GeneratedAt  time.Time     `json:"generated_at"`
	OverallScore float64       `json:"overall_score"`
	OverallGrade EvidenceGrade `json:"overall_grade"`
	PerClaim     []ClaimScore  `json:"per_claim"`
	Citations    []Citation    `json:"citations"`
	Warnings     []string      `json:"warnings,omitempty"`
}
