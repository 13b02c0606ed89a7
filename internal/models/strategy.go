package models

import "time"

// MethodologyTag identifies the kind of evidence a query targets. Targeting
// kinds of evidence rather than specific institutions is what keeps the
// search strategy IFCN-compliant.
type MethodologyTag string

const (
	MethodologyPeerReviewed        MethodologyTag = "peer_reviewed"
	MethodologyGovernmentOfficial  MethodologyTag = "government_official"
	MethodologySystematicReview    MethodologyTag = "systematic_review"
	MethodologyExperimental        MethodologyTag = "experimental"
	MethodologyObservational       MethodologyTag = "observational"
	MethodologyIndependentResearch MethodologyTag = "independent_research"
	MethodologyCounterEvidence     MethodologyTag = "counter_evidence"
)

// Query is a single web search to run for a claim.
type Query struct {
	Text            string         `json:"text"`
	Methodology     MethodologyTag `json:"methodology"`
	Priority        float64        `json:"priority"` // [0,1], higher runs first
	MaxResults      int            `json:"max_results"`
	PerQueryTimeout time.Duration  `json:"per_query_timeout"`
	ContextTags     []string       `json:"context_tags,omitempty"`
}

// MaxQueriesPerStrategy is the hard cap on queries emitted per claim.
const MaxQueriesPerStrategy = 12

// SearchStrategy is the bias-audited query plan for one claim.
//
// Invariants: len(Queries) <= MaxQueriesPerStrategy, every query carries a
// non-empty methodology tag, no query text contains an institutional host as
// a targeting token, and AuditTrail is non-empty.
type SearchStrategy struct {
	ClaimID             string           `json:"claim_id"`
	Queries             []Query          `json:"queries"`
	AuditTrail          []string         `json:"audit_trail"`
	IFCNCompliant       bool             `json:"ifcn_compliant"`
	MethodologyCoverage []MethodologyTag `json:"methodology_coverage"`
	EstimatedTotalTime  time.Duration    `json:"estimated_total_time"`

	// FastPath is set when the non-claim fast path produced a minimal
	// single-query strategy.
	FastPath bool `json:"fast_path,omitempty"`
}

// HasMethodology reports whether the strategy covers the given tag.
func (s *SearchStrategy) HasMethodology(tag MethodologyTag) bool {
	for _, t := range s.MethodologyCoverage {
		if t == tag {
			return true
		}
	}
	return false
}
