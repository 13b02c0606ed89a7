package models

// Stance is an evaluator's judgment of how an evidence piece relates to the
// claim under evaluation.
type Stance string

const (
	StanceSupporting    Stance = "supporting"
	StanceContradicting Stance = "contradicting"
	StanceNeutral       Stance = "neutral"
)

// EvaluatorID distinguishes the two independent evaluators.
type EvaluatorID string

const (
	EvaluatorPrimary   EvaluatorID = "A"
	EvaluatorSecondary EvaluatorID = "B"
)

// SourceMeta is the page metadata collected during extraction. It rides next
// to the candidate text rather than being folded into scored objects.
type SourceMeta struct {
	Description string `json:"description,omitempty"`
	Author      string `json:"author,omitempty"`
	PublishDate string `json:"publish_date,omitempty"`
}

// EvidenceCandidate is a raw evidence piece produced by the fanout stage.
// Candidates are immutable once built; evaluators read them and emit
// ProcessedEvidence rather than annotating the candidate.
type EvidenceCandidate struct {
	Text         string     `json:"text"`
	SourceURL    string     `json:"source_url"`
	SourceDomain string     `json:"source_domain"`
	SourceTitle  string     `json:"source_title"`
	FoundVia     string     `json:"found_via_query"`
	RawRelevance float64    `json:"raw_relevance"` // [0,1]
	Meta         SourceMeta `json:"meta,omitempty"`
}

// ProcessedEvidence is one candidate scored by one evaluator. Relevance,
// stance and confidence are all produced by the same evaluator pass; the
// mandatory hard rules (negation override, confidence gate) are applied
// before the value leaves the evaluator.
type ProcessedEvidence struct {
	Candidate   EvidenceCandidate `json:"candidate"`
	EvaluatorID EvaluatorID       `json:"evaluator_id"`
	Relevance   float64           `json:"relevance"`  // [0,100]
	Stance      Stance            `json:"stance"`
	Confidence  float64           `json:"confidence"` // [0,1]
	Reasoning   string            `json:"reasoning"`
	KeyExcerpt  string            `json:"key_excerpt"`   // substring of Candidate.Text, <=100 chars
	Quality     float64           `json:"quality_score"` // [0,100]
}

// MaxPoolSize bounds the post-consensus evidence pool per claim.
const MaxPoolSize = 6

// EvidencePool is the per-claim evidence set after consensus: ordered,
// deduplicated by source domain then URL, at most MaxPoolSize entries.
type EvidencePool struct {
	ClaimID string              `json:"claim_id"`
	Items   []ProcessedEvidence `json:"items"`
}

// Empty reports whether consensus produced no usable evidence.
func (p *EvidencePool) Empty() bool { return len(p.Items) == 0 }

// Domains returns the unique source domains in pool order.
func (p *EvidencePool) Domains() []string {
	seen := make(map[string]bool, len(p.Items))
	var out []string
	for _, it := range p.Items {
		if d := it.Candidate.SourceDomain; d != "" && !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}

// CountByStance tallies pool items per stance.
func (p *EvidencePool) CountByStance() (supporting, contradicting, neutral int) {
	for _, it := range p.Items {
		switch it.Stance {
		case StanceSupporting:
			supporting++
		case StanceContradicting:
			contradicting++
		default:
			neutral++
		}
	}
	return
}

// ConsensusReport carries the consensus metadata for one claim. It is
// returned alongside the pool instead of being hung off the first evidence
// piece, so no stage mutates another stage's output.
type ConsensusReport struct {
	ClaimID           string   `json:"claim_id"`
	ConsensusScore    float64  `json:"consensus_score"`     // [0,100]
	DisagreementLevel float64  `json:"disagreement_level"`  // [0,100]
	ConsensusStance   Stance   `json:"consensus_stance"`
	PrimaryAvgRel     float64  `json:"primary_avg_relevance"`
	SecondaryAvgRel   float64  `json:"secondary_avg_relevance"`
	UncertaintyNotes  []string `json:"uncertainty_notes,omitempty"`
}
