package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritas-check/veritas/internal/config"
	"github.com/veritas-check/veritas/internal/respool"
)

func TestProviders_KeylessFallbackOnly(t *testing.T) {
	pool := respool.New(config.Default())
	providers := Providers(pool)
	require.Len(t, providers, 1)
	assert.Equal(t, "duckduckgo", providers[0].Name())
}

func TestProviders_DeclaredOrder(t *testing.T) {
	cfg := config.Default()
	cfg.Search.BraveAPIKey = "brave-key"
	cfg.Search.SerperAPIKey = "serper-key"
	pool := respool.New(cfg)

	providers := Providers(pool)
	require.Len(t, providers, 3)
	assert.Equal(t, "brave", providers[0].Name())
	assert.Equal(t, "serper", providers[1].Name())
	assert.Equal(t, "duckduckgo", providers[2].Name())
}

func TestFillDomains(t *testing.T) {
	results := fillDomains([]Result{
		{URL: "https://www.example.test/a"},
		{URL: "https://other.test/b", SourceDomain: "preset.test"},
	})
	assert.Equal(t, "example.test", results[0].SourceDomain)
	assert.Equal(t, "preset.test", results[1].SourceDomain)
}
