package consensus

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/veritas-check/veritas/internal/logging"
	"github.com/veritas-check/veritas/internal/models"
)

const (
	qualityFloor          = 60.0
	perEvaluatorCap       = 5
	disagreementThreshold = 30.0
	disagreementPenalty   = 0.8
	trumpQuality          = 70.0
	trumpRelevance        = 70.0
)

// Layer reconciles the two evaluators' outputs into one evidence pool per
// claim plus consensus metadata. It is pure: no network, no clocks.
type Layer struct {
	logger *slog.Logger
}

// New creates the consensus layer.
func New() *Layer {
	return &Layer{logger: logging.Component("consensus")}
}

// Reconcile merges the primary and secondary evidence sets for a claim.
// Primary items lead the merge and each source domain appears at most once in
// the pool; secondary items join only when they bring a new domain.
func (l *Layer) Reconcile(claimID string, primary, secondary []models.ProcessedEvidence) (models.EvidencePool, models.ConsensusReport) {
	pf := filterAndCap(primary)
	sf := filterAndCap(secondary)

	combined := make([]models.ProcessedEvidence, 0, len(pf)+len(sf))
	domains := make(map[string]bool)
	for _, set := range [][]models.ProcessedEvidence{pf, sf} {
		for _, ev := range set {
			if domains[ev.Candidate.SourceDomain] {
				continue
			}
			domains[ev.Candidate.SourceDomain] = true
			combined = append(combined, ev)
		}
	}

	sort.SliceStable(combined, func(i, j int) bool {
		if combined[i].Quality != combined[j].Quality {
			return combined[i].Quality > combined[j].Quality
		}
		return combined[i].Candidate.SourceURL < combined[j].Candidate.SourceURL
	})
	if len(combined) > models.MaxPoolSize {
		combined = combined[:models.MaxPoolSize]
	}

	report := l.buildReport(claimID, pf, sf, combined)
	pool := models.EvidencePool{ClaimID: claimID, Items: combined}

	l.logger.Info("consensus reconciled",
		"claim_id", claimID,
		"primary_kept", len(pf),
		"secondary_kept", len(sf),
		"pool_size", len(combined),
		"stance", string(report.ConsensusStance),
		"disagreement", report.DisagreementLevel,
	)
	return pool, report
}

func (l *Layer) buildReport(claimID string, primary, secondary, pool []models.ProcessedEvidence) models.ConsensusReport {
	primaryAvg := avgRelevance(primary)
	secondaryAvg := avgRelevance(secondary)

	score := (primaryAvg + secondaryAvg) / 2
	disagreement := primaryAvg - secondaryAvg
	if disagreement < 0 {
		disagreement = -disagreement
	}
	if disagreement > 100 {
		disagreement = 100
	}
	if disagreement > disagreementThreshold {
		score *= disagreementPenalty
	}

	stance, trumped := consensusStance(pool)

	var notes []string
	if disagreement > disagreementThreshold {
		notes = append(notes, fmt.Sprintf("evaluators disagree on relevance by %.0f points", disagreement))
	}
	if trumped {
		notes = append(notes, "high-quality contradicting evidence blocks a supporting consensus")
	}
	if hasStanceConflict(pool) {
		notes = append(notes, "evidence pool contains both supporting and contradicting sources")
	}

	return models.ConsensusReport{
		ClaimID:           claimID,
		ConsensusScore:    score,
		DisagreementLevel: disagreement,
		ConsensusStance:   stance,
		PrimaryAvgRel:     primaryAvg,
		SecondaryAvgRel:   secondaryAvg,
		UncertaintyNotes:  notes,
	}
}

// consensusStance tallies stances and applies the contradiction trump rule:
// any contradicting item at quality >= 70 and relevance >= 70 blocks a
// supporting consensus regardless of counts.
func consensusStance(pool []models.ProcessedEvidence) (models.Stance, bool) {
	supporting, contradicting := 0, 0
	strongContradiction := false
	for _, ev := range pool {
		switch ev.Stance {
		case models.StanceSupporting:
			supporting++
		case models.StanceContradicting:
			contradicting++
			if ev.Quality >= trumpQuality && ev.Relevance >= trumpRelevance {
				strongContradiction = true
			}
		}
	}

	var stance models.Stance
	switch {
	case supporting > contradicting:
		stance = models.StanceSupporting
	case contradicting > supporting:
		stance = models.StanceContradicting
	default:
		stance = models.StanceNeutral
	}

	if stance == models.StanceSupporting && strongContradiction {
		return models.StanceNeutral, true
	}
	return stance, false
}

func filterAndCap(items []models.ProcessedEvidence) []models.ProcessedEvidence {
	kept := make([]models.ProcessedEvidence, 0, len(items))
	for _, ev := range items {
		if ev.Quality < qualityFloor {
			continue
		}
		kept = append(kept, ev)
		if len(kept) == perEvaluatorCap {
			break
		}
	}
	return kept
}

func avgRelevance(items []models.ProcessedEvidence) float64 {
	if len(items) == 0 {
		return 0
	}
	sum := 0.0
	for _, ev := range items {
		sum += ev.Relevance
	}
	return sum / float64(len(items))
}

func hasStanceConflict(pool []models.ProcessedEvidence) bool {
	var sup, con bool
	for _, ev := range pool {
		switch ev.Stance {
		case models.StanceSupporting:
			sup = true
		case models.StanceContradicting:
			con = true
		}
	}
	return sup && con
}
