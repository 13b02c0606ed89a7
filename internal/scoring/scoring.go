package scoring

import (
	"log/slog"

	"github.com/veritas-check/veritas/internal/logging"
	"github.com/veritas-check/veritas/internal/models"
)

// Engine turns a claim's evidence pool and consensus report into the final
// ClaimScore. Pure computation; safe to call concurrently.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates the scoring engine.
func NewEngine() *Engine {
	return &Engine{logger: logging.Component("scoring")}
}

// Score computes trust score, evidence grade, and the stance-grouped
// evidence listing for one claim. An empty pool yields 0/F with a reason
// note rather than an error.
func (e *Engine) Score(claim models.Claim, pool models.EvidencePool, report models.ConsensusReport) models.ClaimScore {
	cs := models.ClaimScore{
		ClaimID:           claim.ID,
		ClaimText:         claim.Text,
		ConsensusStance:   report.ConsensusStance,
		DisagreementLevel: report.DisagreementLevel,
		UncertaintyNotes:  report.UncertaintyNotes,
		Supporting:        []models.EvidenceEntry{},
		Contradicting:     []models.EvidenceEntry{},
		Neutral:           []models.EvidenceEntry{},
	}

	if pool.Empty() {
		cs.TrustScore = 0
		cs.EvidenceGrade = models.GradeF
		cs.EvidenceGradeScore = 0
		cs.Warnings = append(cs.Warnings, "no usable evidence found for this claim")
		e.logger.Warn("empty evidence pool", "claim_id", claim.ID)
		return cs
	}

	cs.TrustScore = TrustScore(pool)
	cs.EvidenceGrade, cs.EvidenceGradeScore = Grade(pool)

	for _, ev := range pool.Items {
		entry := toEntry(ev)
		switch ev.Stance {
		case models.StanceSupporting:
			cs.Supporting = append(cs.Supporting, entry)
		case models.StanceContradicting:
			cs.Contradicting = append(cs.Contradicting, entry)
		default:
			cs.Neutral = append(cs.Neutral, entry)
		}
	}

	e.logger.Info("claim scored",
		"claim_id", claim.ID,
		"trust_score", cs.TrustScore,
		"grade", string(cs.EvidenceGrade),
		"stance", string(cs.ConsensusStance),
	)
	return cs
}

func toEntry(ev models.ProcessedEvidence) models.EvidenceEntry {
	return models.EvidenceEntry{
		Statement:        ev.Reasoning,
		SourceTitle:      ev.Candidate.SourceTitle,
		SourceDomain:     ev.Candidate.SourceDomain,
		SourceURL:        ev.Candidate.SourceURL,
		Stance:           ev.Stance,
		RelevanceScore:   ev.Relevance,
		HighlightText:    ev.KeyExcerpt,
		HighlightContext: ev.Candidate.Text,
		PublishDate:      ev.Candidate.Meta.PublishDate,
	}
}
