// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported completion providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

// Supported retrieval backends for the manual search page.
const (
	RetrievalVector  = "vector"
	RetrievalLexical = "lexical"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	DBPath      string
	LLM         LLMConfig
	Manual      ManualConfig
	Simulator   SimulatorConfig
	Session     SessionConfig
	RateLimit   RateLimitConfig
	Archive     ArchiveConfig
}

// LLMConfig selects and authenticates the completion provider.
type LLMConfig struct {
	Provider        string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	ChatModel       string
	EmbeddingModel  string
	BaseURL         string
	MaxTokens       int
}

// ManualConfig controls the manual retrieval index.
type ManualConfig struct {
	Path    string
	Backend string
}

// SimulatorConfig controls complaint scenario selection.
type SimulatorConfig struct {
	// ScenariosPath optionally points at a YAML catalog replacing the built-in one.
	ScenariosPath string
	// Seed makes scenario draws reproducible when non-zero.
	Seed uint64
}

// SessionConfig bounds the in-memory session store.
type SessionConfig struct {
	TTL      time.Duration
	Capacity int
}

// RateLimitConfig throttles completion-bearing requests per user.
type RateLimitConfig struct {
	RequestsPerWindow int
	WindowDuration    time.Duration
}

// ArchiveConfig controls the SQLite transcript archive.
type ArchiveConfig struct {
	Enabled   bool
	Retention time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	provider := strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI))

	defaultModel := "gpt-4o-mini"
	if provider == ProviderAnthropic {
		defaultModel = "claude-haiku-4-5-20251001"
	}

	// Embeddings come from OpenAI; other providers default to lexical search.
	defaultBackend := RetrievalVector
	if provider != ProviderOpenAI {
		defaultBackend = RetrievalLexical
	}
	backend := strings.ToLower(os.Getenv("RETRIEVAL_BACKEND"))
	if backend == "" {
		backend = defaultBackend
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		DBPath:      getEnv("DB_PATH", "./data/training.db"),
		LLM: LLMConfig{
			Provider:        provider,
			OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
			AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
			ChatModel:       getEnv("CHAT_MODEL", defaultModel),
			EmbeddingModel:  getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			BaseURL:         getEnv("LLM_BASE_URL", ""),
			MaxTokens:       getEnvInt("LLM_MAX_TOKENS", 1024),
		},
		Manual: ManualConfig{
			Path:    getEnv("MANUAL_PATH", "./data/manual.txt"),
			Backend: backend,
		},
		Simulator: SimulatorConfig{
			ScenariosPath: getEnv("SCENARIOS_PATH", ""),
			Seed:          uint64(getEnvInt("SCENARIO_SEED", 0)),
		},
		Session: SessionConfig{
			TTL:      getEnvDuration("SESSION_TTL", 60*time.Minute),
			Capacity: getEnvInt("SESSION_CAPACITY", 1000),
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: getEnvInt("RATE_LIMIT_REQUESTS", 10),
			WindowDuration:    getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Archive: ArchiveConfig{
			Enabled:   getEnvBool("ARCHIVE_ENABLED", true),
			Retention: getEnvDuration("TRANSCRIPT_RETENTION", 7*24*time.Hour),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	switch c.LLM.Provider {
	case ProviderOpenAI:
		if c.LLM.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for provider %q", c.LLM.Provider)
		}
	case ProviderAnthropic:
		if c.LLM.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for provider %q", c.LLM.Provider)
		}
	case ProviderMock:
	default:
		return fmt.Errorf("LLM_PROVIDER %q is not supported", c.LLM.Provider)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("LLM_MAX_TOKENS must be > 0")
	}
	if c.Manual.Path == "" {
		return fmt.Errorf("MANUAL_PATH cannot be empty")
	}
	switch c.Manual.Backend {
	case RetrievalVector, RetrievalLexical:
	default:
		return fmt.Errorf("RETRIEVAL_BACKEND %q is not supported", c.Manual.Backend)
	}
	if c.Manual.Backend == RetrievalVector && c.LLM.Provider != ProviderOpenAI {
		return fmt.Errorf("RETRIEVAL_BACKEND %q needs the %q provider for embeddings, use %q with %q",
			RetrievalVector, ProviderOpenAI, RetrievalLexical, c.LLM.Provider)
	}
	if c.Session.Capacity <= 0 {
		return fmt.Errorf("SESSION_CAPACITY must be > 0")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if c.RateLimit.RequestsPerWindow <= 0 || c.RateLimit.WindowDuration <= 0 {
		return fmt.Errorf("rate limit requests and window must be > 0")
	}
	if c.Archive.Enabled && c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty when the archive is enabled")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

// AllowedOrigins returns the CORS origins the API accepts.
func (c *Config) AllowedOrigins() []string {
	if c.FrontendURL == "" {
		return []string{"*"}
	}
	return []string{c.FrontendURL}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
