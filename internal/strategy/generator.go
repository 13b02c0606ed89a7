package strategy

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/veritas-check/veritas/internal/errors"
	"github.com/veritas-check/veritas/internal/logging"
	"github.com/veritas-check/veritas/internal/models"
)

const (
	maxQueriesPerTag   = 3
	maxCounterQueries  = 4
	exactMaxResults    = 8
	perQueryMaxResults = 5
	perQueryTimeout    = 10 * time.Second
)

// hostTokenPattern flags query text that targets a specific host or uses a
// search-engine site filter. Queries matching it are never emitted.
var hostTokenPattern = regexp.MustCompile(`(?i)(\bsite:\S+|\b[a-z0-9-]+\.(gov|edu|com|org|net|int)\b)`)

// Generator turns one claim into a methodology-first, bias-audited
// SearchStrategy.
type Generator struct {
	logger *slog.Logger
}

// NewGenerator creates a strategy generator.
func NewGenerator() *Generator {
	return &Generator{logger: logging.Component("strategy")}
}

// Generate produces the full methodology-first strategy for a claim. It
// fails only when the compliance check cannot be satisfied after removing
// offending queries.
func (g *Generator) Generate(claim models.Claim) (*models.SearchStrategy, error) {
	log := g.logger.With("claim_id", claim.ID, "stage", "strategy")

	if reason, nonClaim := IsNonClaim(claim.Text); nonClaim {
		log.Info("non-claim fast path", "reason", reason)
		return g.minimalStrategy(claim, reason)
	}

	cls := Classify(claim.Text)
	tags := MethodologiesFor(cls.Domain)

	audit := []string{
		fmt.Sprintf("classified as %s: %s", cls.Domain, cls.Reasoning),
		fmt.Sprintf("selected methodologies: %s", tagList(tags)),
	}

	cleanText := StripURLs(claim.Text)
	if cleanText == "" {
		cleanText = claim.Text
	}

	var queries []models.Query

	// The original-claim exact-match query is never dropped.
	queries = append(queries, models.Query{
		Text:            cleanText,
		Methodology:     tags[0],
		Priority:        1.0,
		MaxResults:      exactMaxResults,
		PerQueryTimeout: perQueryTimeout,
		ContextTags:     []string{"exact_match"},
	})

	for i, tag := range tags {
		phrases := methodologyPhrases[tag]
		if len(phrases) > maxQueriesPerTag {
			phrases = phrases[:maxQueriesPerTag]
		}
		tagBase := 0.9 - 0.15*float64(i)
		for j, phrase := range phrases {
			queries = append(queries, models.Query{
				Text:            cleanText + " " + phrase,
				Methodology:     tag,
				Priority:        tagBase - 0.05*float64(j),
				MaxResults:      perQueryMaxResults,
				PerQueryTimeout: perQueryTimeout,
			})
		}
	}

	for j, phrase := range counterPhrases[:maxCounterQueries] {
		queries = append(queries, models.Query{
			Text:            cleanText + " " + phrase,
			Methodology:     models.MethodologyCounterEvidence,
			Priority:        0.45 - 0.05*float64(j),
			MaxResults:      perQueryMaxResults,
			PerQueryTimeout: perQueryTimeout,
			ContextTags:     []string{"counter"},
		})
	}
	audit = append(audit, fmt.Sprintf("synthesized %d queries (%d methodology, %d counter)",
		len(queries), len(queries)-1-maxCounterQueries, maxCounterQueries))

	queries, trimNotes := capQueries(queries)
	audit = append(audit, trimNotes...)

	strat := &models.SearchStrategy{
		ClaimID:             claim.ID,
		Queries:             queries,
		AuditTrail:          audit,
		MethodologyCoverage: coverage(queries),
		EstimatedTotalTime:  time.Duration(len(queries)) * 2 * time.Second,
	}

	if err := g.enforceCompliance(strat); err != nil {
		return nil, err
	}

	log.Info("strategy generated",
		"domain", cls.Domain,
		"queries", len(strat.Queries),
		"methodologies", len(strat.MethodologyCoverage),
	)
	return strat, nil
}

// minimalStrategy is the non-claim fast path: one low-authority query and no
// methodology enrichment. Downstream still runs, and grading documents why
// the result is weak.
func (g *Generator) minimalStrategy(claim models.Claim, reason string) (*models.SearchStrategy, error) {
	text := StripURLs(claim.Text)
	if text == "" {
		text = strings.TrimSpace(claim.Text)
	}

	strat := &models.SearchStrategy{
		ClaimID: claim.ID,
		Queries: []models.Query{{
			Text:            text,
			Methodology:     models.MethodologyIndependentResearch,
			Priority:        0.3,
			MaxResults:      perQueryMaxResults,
			PerQueryTimeout: perQueryTimeout,
			ContextTags:     []string{"fast_path"},
		}},
		AuditTrail: []string{
			fmt.Sprintf("non-claim fast path: %s", reason),
			"emitted single minimal query with low authority weight; methodology enrichment skipped",
		},
		MethodologyCoverage: []models.MethodologyTag{models.MethodologyIndependentResearch},
		EstimatedTotalTime:  2 * time.Second,
		FastPath:            true,
	}

	if err := g.enforceCompliance(strat); err != nil {
		return nil, err
	}
	return strat, nil
}

// Fallback produces the one-query-per-claim strategy used when the
// methodology-first generator is disabled by configuration.
func (g *Generator) Fallback(claim models.Claim) *models.SearchStrategy {
	text := StripURLs(claim.Text)
	if text == "" {
		text = strings.TrimSpace(claim.Text)
	}
	return &models.SearchStrategy{
		ClaimID: claim.ID,
		Queries: []models.Query{{
			Text:            text,
			Methodology:     models.MethodologyIndependentResearch,
			Priority:        1.0,
			MaxResults:      exactMaxResults,
			PerQueryTimeout: perQueryTimeout,
		}},
		AuditTrail:          []string{"methodology-first generation disabled; single fallback query"},
		IFCNCompliant:       true,
		MethodologyCoverage: []models.MethodologyTag{models.MethodologyIndependentResearch},
		EstimatedTotalTime:  2 * time.Second,
	}
}

// capQueries enforces the hard cap of MaxQueriesPerStrategy, dropping lowest
// priority first: counter queries before methodology queries, and never the
// exact-match query.
func capQueries(queries []models.Query) ([]models.Query, []string) {
	var notes []string
	for len(queries) > models.MaxQueriesPerStrategy {
		idx := lowestDroppable(queries)
		if idx < 0 {
			break
		}
		notes = append(notes, fmt.Sprintf("trimmed query %q (%s, priority %.2f) to meet cap of %d",
			queries[idx].Text, queries[idx].Methodology, queries[idx].Priority, models.MaxQueriesPerStrategy))
		queries = append(queries[:idx], queries[idx+1:]...)
	}
	return queries, notes
}

func lowestDroppable(queries []models.Query) int {
	idx := lowestOfClass(queries, func(q models.Query) bool {
		return q.Methodology == models.MethodologyCounterEvidence
	})
	if idx >= 0 {
		return idx
	}
	return lowestOfClass(queries, func(q models.Query) bool {
		return !isExactMatch(q)
	})
}

func lowestOfClass(queries []models.Query, in func(models.Query) bool) int {
	idx := -1
	for i, q := range queries {
		if !in(q) || isExactMatch(q) {
			continue
		}
		if idx < 0 || q.Priority < queries[idx].Priority {
			idx = i
		}
	}
	return idx
}

func isExactMatch(q models.Query) bool {
	for _, t := range q.ContextTags {
		if t == "exact_match" {
			return true
		}
	}
	return false
}

// enforceCompliance applies the IFCN rules: no host-targeting tokens, no
// empty methodology tags, non-empty audit trail. Offending queries are
// removed and recorded; the strategy fails only if nothing compliant remains.
func (g *Generator) enforceCompliance(strat *models.SearchStrategy) error {
	var kept []models.Query
	for _, q := range strat.Queries {
		if q.Methodology == "" {
			strat.AuditTrail = append(strat.AuditTrail, fmt.Sprintf("removed query %q: empty methodology tag", q.Text))
			continue
		}
		if tok := hostTokenPattern.FindString(q.Text); tok != "" {
			strat.AuditTrail = append(strat.AuditTrail, fmt.Sprintf("removed query %q: host targeting token %q", q.Text, tok))
			continue
		}
		kept = append(kept, q)
	}
	strat.Queries = kept
	strat.MethodologyCoverage = coverage(kept)

	if len(strat.Queries) == 0 {
		return errors.StrategyErrorf("no compliant queries remain for claim %s", strat.ClaimID)
	}
	if len(strat.AuditTrail) == 0 {
		return errors.StrategyErrorf("empty audit trail for claim %s", strat.ClaimID)
	}
	strat.IFCNCompliant = true
	return nil
}

func coverage(queries []models.Query) []models.MethodologyTag {
	seen := make(map[models.MethodologyTag]bool)
	var tags []models.MethodologyTag
	for _, q := range queries {
		if q.Methodology != "" && !seen[q.Methodology] {
			seen[q.Methodology] = true
			tags = append(tags, q.Methodology)
		}
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

func tagList(tags []models.MethodologyTag) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}
