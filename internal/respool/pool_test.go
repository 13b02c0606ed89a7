package respool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/veritas-check/veritas/internal/config"
)

func TestLimiter_PerProviderAndCached(t *testing.T) {
	cfg := config.Default()
	cfg.Search.RatePerSec = 2
	cfg.Evaluator.RatePerSec = 4
	p := New(cfg)

	brave := p.Limiter("brave")
	assert.Same(t, brave, p.Limiter("brave"), "limiters are created once per provider")
	assert.NotSame(t, brave, p.Limiter("serper"))

	assert.Equal(t, rate.Limit(2), p.Limiter("brave").Limit())
	assert.Equal(t, rate.Limit(4), p.Limiter("openai").Limit())
}

func TestWait_RespectsCancelledContext(t *testing.T) {
	cfg := config.Default()
	cfg.Search.RatePerSec = 0.001
	p := New(cfg)

	// Burn the single burst token so the next Wait would block.
	require.NoError(t, p.Wait(context.Background(), "brave"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, p.Wait(ctx, "brave"))
}

func TestCredential(t *testing.T) {
	cfg := config.Default()
	cfg.Search.BraveAPIKey = "b"
	cfg.Search.SerperAPIKey = "s"
	cfg.Evaluator.OpenAIKey = "o"
	p := New(cfg)

	assert.Equal(t, "b", p.Credential("brave"))
	assert.Equal(t, "s", p.Credential("serper"))
	assert.Equal(t, "o", p.Credential("openai"))
	assert.Empty(t, p.Credential("unknown"))
}

func TestWorkerClient_IsolatedTimeouts(t *testing.T) {
	p := New(config.Default())
	fast := p.WorkerClient(1 * time.Second)
	slow := p.WorkerClient(10 * time.Second)

	assert.NotSame(t, fast, slow)
	assert.Equal(t, 1*time.Second, fast.Timeout)
	assert.Equal(t, 10*time.Second, slow.Timeout)
	assert.Same(t, fast.Transport, slow.Transport, "clients share only the connection pool")
}
