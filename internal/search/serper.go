package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/veritas-check/veritas/internal/logging"
	"github.com/veritas-check/veritas/internal/respool"
)

const serperEndpoint = "https://google.serper.dev/search"

// SerperProvider queries the Serper.dev search API.
type SerperProvider struct {
	pool   *respool.Pool
	client *http.Client
	logger *slog.Logger
}

// NewSerperProvider creates a Serper search provider.
func NewSerperProvider(pool *respool.Pool) *SerperProvider {
	return &SerperProvider{
		pool:   pool,
		client: pool.WorkerClient(10 * time.Second),
		logger: logging.Component("search.serper"),
	}
}

func (p *SerperProvider) Name() string { return "serper" }

type serperResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

// Search runs one query against Serper, honoring the provider rate limiter.
func (p *SerperProvider) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if err := p.pool.Wait(ctx, "serper"); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	payload, err := json.Marshal(map[string]any{"q": query, "num": maxResults})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serperEndpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", p.pool.Credential("serper"))

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serper request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serper returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var parsed serperResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	results := make([]Result, 0, len(parsed.Organic))
	for _, r := range parsed.Organic {
		if len(results) >= maxResults {
			break
		}
		results = append(results, Result{
			Title:   r.Title,
			URL:     r.Link,
			Snippet: r.Snippet,
		})
	}

	p.logger.Debug("search completed", "query", query, "results", len(results))
	return fillDomains(results), nil
}
