package respool

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/veritas-check/veritas/internal/config"
	"github.com/veritas-check/veritas/internal/logging"
)

// Pool owns the process-wide shared resources: per-provider rate limiters,
// read-only credentials, and the HTTP transport whose connection pool is the
// only mutable state workers share. Everything else handed out is per-worker.
type Pool struct {
	cfg       *config.Config
	transport *http.Transport

	mu       sync.Mutex
	limiters map[string]*rate.Limiter

	logger *slog.Logger
}

// New creates a resource pool from configuration. Credentials are read once
// here and never reloaded.
func New(cfg *config.Config) *Pool {
	return &Pool{
		cfg: cfg,
		transport: &http.Transport{
			MaxIdleConns:        64,
			MaxIdleConnsPerHost: 8,
			IdleConnTimeout:     90 * time.Second,
		},
		limiters: make(map[string]*rate.Limiter),
		logger:   logging.Component("respool"),
	}
}

// WorkerClient returns an HTTP client for one worker. Clients share only the
// internally-synchronized transport connection pool; timeout and redirect
// state are per-client.
func (p *Pool) WorkerClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: p.transport,
		Timeout:   timeout,
	}
}

// Limiter returns the rate limiter for a provider, creating it on first use.
// Search providers and the LLM endpoint have separate configured rates.
func (p *Pool) Limiter(provider string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if lim, ok := p.limiters[provider]; ok {
		return lim
	}

	perSec := p.cfg.Search.RatePerSec
	if provider == "openai" {
		perSec = p.cfg.Evaluator.RatePerSec
	}
	if perSec <= 0 {
		perSec = 1
	}

	lim := rate.NewLimiter(rate.Limit(perSec), 1)
	p.limiters[provider] = lim
	p.logger.Debug("limiter created", "provider", provider, "rate_per_sec", perSec)
	return lim
}

// Wait blocks until the provider's rate limiter admits one request or the
// context is cancelled.
func (p *Pool) Wait(ctx context.Context, provider string) error {
	return p.Limiter(provider).Wait(ctx)
}

// Credential returns the configured credential for a provider; empty string
// means the provider is not configured.
func (p *Pool) Credential(provider string) string {
	switch provider {
	case "brave":
		return p.cfg.Search.BraveAPIKey
	case "serper":
		return p.cfg.Search.SerperAPIKey
	case "openai":
		return p.cfg.Evaluator.OpenAIKey
	default:
		return ""
	}
}

// Config exposes the read-only configuration the pool was built from.
func (p *Pool) Config() *config.Config { return p.cfg }
