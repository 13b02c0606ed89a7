package search

import (
	"context"
	"net/url"
	"strings"

	"github.com/veritas-check/veritas/internal/respool"
)

// Result is one web search hit.
type Result struct {
	Title        string `json:"title"`
	URL          string `json:"url"`
	Snippet      string `json:"snippet"`
	SourceDomain string `json:"source_domain"`
}

// Provider abstracts a web-search backend behind a single operation.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}

// Providers returns the configured providers in declared consultation order:
// brave, serper, duckduckgo. Credentialed providers appear only when their
// key is present; the keyless DuckDuckGo HTML provider is always last.
func Providers(pool *respool.Pool) []Provider {
	var out []Provider
	if pool.Credential("brave") != "" {
		out = append(out, NewBraveProvider(pool))
	}
	if pool.Credential("serper") != "" {
		out = append(out, NewSerperProvider(pool))
	}
	out = append(out, NewDuckDuckGoProvider(pool))
	return out
}

// DomainOf extracts the host from a URL, dropping any www prefix.
func DomainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}

// fillDomains populates SourceDomain on results that lack it.
func fillDomains(results []Result) []Result {
	for i := range results {
		if results[i].SourceDomain == "" {
			results[i].SourceDomain = DomainOf(results[i].URL)
		}
	}
	return results
}
