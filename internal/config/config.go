package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all engine configuration. The core is stateless across
// requests; everything here is read once at startup and shared read-only.
type Config struct {
	// Pipeline selection
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline"`

	// Worker limits for the three concurrency planes
	Workers WorkerConfig `mapstructure:"workers" yaml:"workers"`

	// Stage and claim deadlines
	Deadlines DeadlineConfig `mapstructure:"deadlines" yaml:"deadlines"`

	// Evidence fanout tuning
	Fanout FanoutConfig `mapstructure:"fanout" yaml:"fanout"`

	// Search provider credentials (presence-only semantics)
	Search SearchConfig `mapstructure:"search" yaml:"search"`

	// LLM evaluator configuration
	Evaluator EvaluatorConfig `mapstructure:"evaluator" yaml:"evaluator"`
}

type PipelineConfig struct {
	// ParallelEvidence selects the parallel orchestrator; when false the
	// sequential driver runs claims one at a time.
	ParallelEvidence bool `mapstructure:"parallel_evidence" yaml:"parallel_evidence"`
	// MethodologyStrategy enables the methodology-first strategy generator;
	// when false a one-query-per-claim fallback strategy is used.
	MethodologyStrategy bool `mapstructure:"methodology_strategy" yaml:"methodology_strategy"`
}

type WorkerConfig struct {
	MaxClaimWorkers     int `mapstructure:"max_claim_workers" yaml:"max_claim_workers"`
	MaxEvaluatorWorkers int `mapstructure:"max_evaluator_workers" yaml:"max_evaluator_workers"`
	MaxSearchWorkers    int `mapstructure:"max_search_workers" yaml:"max_search_workers"`
	MaxExtractWorkers   int `mapstructure:"max_extract_workers" yaml:"max_extract_workers"`
}

type DeadlineConfig struct {
	Strategy time.Duration `mapstructure:"strategy" yaml:"strategy"`
	Fanout   time.Duration `mapstructure:"fanout" yaml:"fanout"`
	DualEval time.Duration `mapstructure:"dual_eval" yaml:"dual_eval"`
	Claim    time.Duration `mapstructure:"claim" yaml:"claim"`
}

type FanoutConfig struct {
	TopKResults     int           `mapstructure:"top_k_results" yaml:"top_k_results"`
	ExtractTimeout  time.Duration `mapstructure:"extract_timeout" yaml:"extract_timeout"`
	MaxContentChars int           `mapstructure:"max_content_chars" yaml:"max_content_chars"`
	MinContentWords int           `mapstructure:"min_content_words" yaml:"min_content_words"`
}

type SearchConfig struct {
	BraveAPIKey  string  `mapstructure:"brave_api_key" yaml:"brave_api_key"`
	SerperAPIKey string  `mapstructure:"serper_api_key" yaml:"serper_api_key"`
	RatePerSec   float64 `mapstructure:"rate_per_sec" yaml:"rate_per_sec"`
}

type EvaluatorConfig struct {
	OpenAIKey      string  `mapstructure:"openai_key" yaml:"openai_key"`
	PrimaryModel   string  `mapstructure:"primary_model" yaml:"primary_model"`
	SecondaryModel string  `mapstructure:"secondary_model" yaml:"secondary_model"`
	BatchSize      int     `mapstructure:"batch_size" yaml:"batch_size"`
	MaxTokens      int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	Temperature    float32 `mapstructure:"temperature" yaml:"temperature"`
	RatePerSec     float64 `mapstructure:"rate_per_sec" yaml:"rate_per_sec"`
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			ParallelEvidence:    true,
			MethodologyStrategy: true,
		},
		Workers: WorkerConfig{
			MaxClaimWorkers:     4,
			MaxEvaluatorWorkers: 2,
			MaxSearchWorkers:    4,
			MaxExtractWorkers:   6,
		},
		Deadlines: DeadlineConfig{
			Strategy: 5 * time.Second,
			Fanout:   45 * time.Second,
			DualEval: 60 * time.Second,
			Claim:    120 * time.Second,
		},
		Fanout: FanoutConfig{
			TopKResults:     10,
			ExtractTimeout:  8 * time.Second,
			MaxContentChars: 5000,
			MinContentWords: 50,
		},
		Search: SearchConfig{
			RatePerSec: 2,
		},
		Evaluator: EvaluatorConfig{
			PrimaryModel:   "gpt-4o-mini",
			SecondaryModel: "gpt-4o-mini",
			BatchSize:      4,
			MaxTokens:      2000,
			Temperature:    0.1,
			RatePerSec:     4,
		},
	}
}

// Load loads configuration from file (optional) and environment.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	v.SetDefault("pipeline", cfg.Pipeline)
	v.SetDefault("workers", cfg.Workers)
	v.SetDefault("deadlines", cfg.Deadlines)
	v.SetDefault("fanout", cfg.Fanout)
	v.SetDefault("search", cfg.Search)
	v.SetDefault("evaluator", cfg.Evaluator)

	v.SetEnvPrefix("VERITAS")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".veritas")
		v.AddConfigPath(".")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".veritas"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// config file not found is fine, defaults apply
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// loadEnvFiles loads .env files in order of precedence.
func loadEnvFiles() {
	envFiles := []string{
		".env.local",
		".env",
	}
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			godotenv.Load(file)
		}
	}
	homeDir, _ := os.UserHomeDir()
	homeEnvFile := filepath.Join(homeDir, ".veritas", ".env")
	if _, err := os.Stat(homeEnvFile); err == nil {
		godotenv.Load(homeEnvFile)
	}
}

// applyEnvOverrides applies the recognized environment options on top of
// file and default values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("USE_PARALLEL_EVIDENCE"); v != "" {
		cfg.Pipeline.ParallelEvidence = parseBool(v, cfg.Pipeline.ParallelEvidence)
	}
	if v := os.Getenv("USE_EEG_PHASE_1"); v != "" {
		cfg.Pipeline.MethodologyStrategy = parseBool(v, cfg.Pipeline.MethodologyStrategy)
	}

	if n := envInt("MAX_CLAIM_WORKERS"); n > 0 {
		cfg.Workers.MaxClaimWorkers = n
	}
	if n := envInt("MAX_EVALUATOR_WORKERS"); n > 0 {
		cfg.Workers.MaxEvaluatorWorkers = n
	}
	if n := envInt("MAX_SEARCH_WORKERS"); n > 0 {
		cfg.Workers.MaxSearchWorkers = n
	}
	if n := envInt("MAX_EXTRACT_WORKERS"); n > 0 {
		cfg.Workers.MaxExtractWorkers = n
	}

	if n := envInt("FANOUT_DEADLINE_SECONDS"); n > 0 {
		cfg.Deadlines.Fanout = time.Duration(n) * time.Second
	}
	if n := envInt("CLAIM_DEADLINE_SECONDS"); n > 0 {
		cfg.Deadlines.Claim = time.Duration(n) * time.Second
	}

	if key := os.Getenv("BRAVE_API_KEY"); key != "" {
		cfg.Search.BraveAPIKey = key
	}
	if key := os.Getenv("SERPER_API_KEY"); key != "" {
		cfg.Search.SerperAPIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.Evaluator.OpenAIKey = key
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		cfg.Evaluator.PrimaryModel = model
		cfg.Evaluator.SecondaryModel = model
	}
}

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func parseBool(v string, fallback bool) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
