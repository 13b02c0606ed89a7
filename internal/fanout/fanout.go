package fanout

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/veritas-check/veritas/internal/config"
	"github.com/veritas-check/veritas/internal/logging"
	"github.com/veritas-check/veritas/internal/models"
	"github.com/veritas-check/veritas/internal/respool"
	"github.com/veritas-check/veritas/internal/search"
)

const (
	mainPathRelevance = 0.9
	snippetRelevance  = 0.6
)

// Fanout executes a SearchStrategy: runs its queries across the configured
// providers, extracts page content, and emits deduplicated evidence
// candidates. Individual query or extraction failures become warnings; the
// fanout never fails the claim.
type Fanout struct {
	providers []search.Provider
	pool      *respool.Pool
	cfg       *config.Config
	logger    *slog.Logger
}

// New creates an evidence fanout over the given providers.
func New(pool *respool.Pool, providers []search.Provider) *Fanout {
	return &Fanout{
		providers: providers,
		pool:      pool,
		cfg:       pool.Config(),
		logger:    logging.Component("fanout"),
	}
}

// queryHit ties one search result to the query and position that found it.
type queryHit struct {
	query    models.Query
	position int
	result   search.Result
}

func (h queryHit) combinedScore() float64 {
	return h.query.Priority / (1.0 + 0.25*float64(h.position))
}

// Run executes the strategy under the fanout deadline and returns candidates
// in deterministic order plus any warnings gathered along the way.
func (f *Fanout) Run(ctx context.Context, claim models.Claim, strat *models.SearchStrategy) ([]models.EvidenceCandidate, []string) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Deadlines.Fanout)
	defer cancel()

	log := f.logger.With("claim_id", claim.ID, "stage", "fanout")

	hits, warnings := f.runQueries(ctx, log, strat.Queries)
	kept := f.selectTop(hits)
	candidates, extractWarnings := f.extractCandidates(ctx, log, kept)
	warnings = append(warnings, extractWarnings...)

	sortCandidates(candidates, kept)

	log.Info("fanout completed",
		"queries", len(strat.Queries),
		"hits", len(hits),
		"candidates", len(candidates),
		"warnings", len(warnings),
	)
	return candidates, warnings
}

// runQueries executes all queries with bounded parallelism, consulting
// providers in declared order until one answers.
func (f *Fanout) runQueries(ctx context.Context, log *slog.Logger, queries []models.Query) ([]queryHit, []string) {
	var (
		mu       sync.Mutex
		hits     []queryHit
		warnings []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.cfg.Workers.MaxSearchWorkers)

	for _, q := range queries {
		q := q
		g.Go(func() error {
			qctx, qcancel := context.WithTimeout(gctx, q.PerQueryTimeout)
			defer qcancel()

			results, providerName, err := f.searchWithFallback(qctx, q)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("query %q: %v", q.Text, err))
				return nil
			}
			for i, r := range results {
				if i >= q.MaxResults {
					break
				}
				hits = append(hits, queryHit{query: q, position: i, result: r})
			}
			log.Debug("query executed", "query", q.Text, "provider", providerName, "results", len(results))
			return nil
		})
	}
	g.Wait()

	return hits, warnings
}

// searchWithFallback tries each provider in order; the first success wins.
func (f *Fanout) searchWithFallback(ctx context.Context, q models.Query) ([]search.Result, string, error) {
	var lastErr error
	for _, p := range f.providers {
		results, err := p.Search(ctx, q.Text, q.MaxResults)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", p.Name(), err)
			continue
		}
		return results, p.Name(), nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no search providers configured")
	}
	return nil, "", lastErr
}

// selectTop merges hits across queries, deduplicates by canonical URL
// (keeping the best-scoring hit), and keeps the top K by combined score.
func (f *Fanout) selectTop(hits []queryHit) []queryHit {
	best := make(map[string]queryHit)
	for _, h := range hits {
		key := canonicalURL(h.result.URL)
		if key == "" {
			continue
		}
		prev, ok := best[key]
		if !ok || h.combinedScore() > prev.combinedScore() {
			best[key] = h
		}
	}

	kept := make([]queryHit, 0, len(best))
	for _, h := range best {
		kept = append(kept, h)
	}
	sort.Slice(kept, func(i, j int) bool {
		si, sj := kept[i].combinedScore(), kept[j].combinedScore()
		if si != sj {
			return si > sj
		}
		return kept[i].result.URL < kept[j].result.URL
	})

	if len(kept) > f.cfg.Fanout.TopKResults {
		kept = kept[:f.cfg.Fanout.TopKResults]
	}
	return kept
}

// extractCandidates fetches kept URLs in parallel and builds candidates.
// Thin or failed extractions fall back to the search snippet with reduced
// raw relevance.
func (f *Fanout) extractCandidates(ctx context.Context, log *slog.Logger, kept []queryHit) ([]models.EvidenceCandidate, []string) {
	candidates := make([]models.EvidenceCandidate, len(kept))
	present := make([]bool, len(kept))
	var (
		mu       sync.Mutex
		warnings []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.cfg.Workers.MaxExtractWorkers)

	for i, h := range kept {
		i, h := i, h
		g.Go(func() error {
			ectx, ecancel := context.WithTimeout(gctx, f.cfg.Fanout.ExtractTimeout)
			defer ecancel()

			client := f.pool.WorkerClient(f.cfg.Fanout.ExtractTimeout)
			ext, err := ExtractPage(ectx, client, h.result.URL)

			cand, warn := f.buildCandidate(h, ext, err)
			mu.Lock()
			defer mu.Unlock()
			if warn != "" {
				warnings = append(warnings, warn)
			}
			if cand != nil {
				candidates[i] = *cand
				present[i] = true
			}
			return nil
		})
	}
	g.Wait()

	out := make([]models.EvidenceCandidate, 0, len(kept))
	for i := range kept {
		if present[i] {
			out = append(out, candidates[i])
		}
	}
	log.Debug("extraction finished", "fetched", len(kept), "kept", len(out), "warnings", len(warnings))
	return out, warnings
}

// buildCandidate turns one hit plus its extraction outcome into a candidate,
// or nil when there is nothing usable. A fetch timeout or HTTP error drops
// the candidate; the snippet fallback is reserved for pages that fetched but
// yielded thin main-path content.
func (f *Fanout) buildCandidate(h queryHit, ext *Extraction, extractErr error) (*models.EvidenceCandidate, string) {
	if extractErr != nil {
		return nil, fmt.Sprintf("dropped %s: %v", h.result.URL, extractErr)
	}

	title := h.result.Title
	domain := h.result.SourceDomain
	if domain == "" {
		domain = search.DomainOf(h.result.URL)
	}

	meta := models.SourceMeta{
		Description: ext.Description,
		Author:      ext.Author,
		PublishDate: ext.PublishDate,
	}

	if ext.FromMainPath && ext.WordCount >= f.cfg.Fanout.MinContentWords {
		if ext.Title != "" {
			title = ext.Title
		}
		return &models.EvidenceCandidate{
			Text:         truncate(ext.MainContent, f.cfg.Fanout.MaxContentChars),
			SourceURL:    h.result.URL,
			SourceDomain: domain,
			SourceTitle:  title,
			FoundVia:     h.query.Text,
			RawRelevance: mainPathRelevance,
			Meta:         meta,
		}, ""
	}

	snippet := strings.TrimSpace(h.result.Snippet)
	if snippet == "" {
		return nil, fmt.Sprintf("dropped %s: thin content and no snippet available", h.result.URL)
	}

	return &models.EvidenceCandidate{
		Text:         truncate(snippet, f.cfg.Fanout.MaxContentChars),
		SourceURL:    h.result.URL,
		SourceDomain: domain,
		SourceTitle:  title,
		FoundVia:     h.query.Text,
		RawRelevance: snippetRelevance,
		Meta:         meta,
	}, fmt.Sprintf("extract %s: thin content; using search snippet", h.result.URL)
}

// sortCandidates applies the output ordering guarantee: query priority desc,
// result position asc, URL asc.
func sortCandidates(candidates []models.EvidenceCandidate, kept []queryHit) {
	meta := make(map[string]queryHit, len(kept))
	for _, h := range kept {
		meta[h.result.URL] = h
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		hi, hj := meta[candidates[i].SourceURL], meta[candidates[j].SourceURL]
		if hi.query.Priority != hj.query.Priority {
			return hi.query.Priority > hj.query.Priority
		}
		if hi.position != hj.position {
			return hi.position < hj.position
		}
		return candidates[i].SourceURL < candidates[j].SourceURL
	})
}

// canonicalURL normalizes a URL for deduplication: lowercased host, no
// fragment, no tracking params, no trailing slash.
func canonicalURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	u.Host = strings.TrimPrefix(u.Host, "www.")

	q := u.Query()
	for key := range q {
		if strings.HasPrefix(strings.ToLower(key), "utm_") {
			q.Del(key)
		}
	}
	u.RawQuery = q.Encode()
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String()
}
