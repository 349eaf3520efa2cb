package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the answer service
type Config struct {
	// Server configuration
	Port string `envconfig:"PORT" default:"8080"`

	// Perplexity deep-research API configuration
	PerplexityAPIKey string `envconfig:"PERPLEXITY_API_KEY" required:"true"`
	PerplexityModel  string `envconfig:"PERPLEXITY_MODEL" default:"sonar-pro"`
	PerplexityURL    string `envconfig:"PERPLEXITY_URL" default:"https://api.perplexity.ai/chat/completions"`

	// OpenRouter reasoning API configuration
	OpenRouterAPIKey string `envconfig:"OPENROUTER_API_KEY" required:"true"`
	OpenRouterModel  string `envconfig:"OPENROUTER_MODEL" default:"meta-llama/llama-3-8b"`
	OpenRouterURL    string `envconfig:"OPENROUTER_URL" default:"https://openrouter.ai/api/v1/chat/completions"`

	// Per-call timeout for outbound capability requests, in milliseconds.
	// Applied individually to each research and reasoning call, never left
	// to the http.Client default.
	RequestTimeoutMs int `envconfig:"REQUEST_TIMEOUT_MS" default:"30000"`

	// Retrieval configuration
	CorpusDir     string `envconfig:"CORPUS_DIR" default:"./corpus"`
	RetrieverTopK int    `envconfig:"RETRIEVER_TOP_K" default:"5"` // Passages kept per query

	// Deep research is policy-selectable: when disabled the orchestrator
	// answers from retrieval and conversation context alone.
	DeepResearchEnabled bool `envconfig:"DEEP_RESEARCH_ENABLED" default:"true"`

	// History / conversation context configuration
	HistoryDBPath      string `envconfig:"HISTORY_DB_PATH" default:"./data/history.db"`
	HistoryContextSize int    `envconfig:"HISTORY_CONTEXT_SIZE" default:"3"` // Recent Q&A pairs folded into the prompt

	// Auth configuration
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	// Resilience configuration (research capability only; the reasoner is
	// single-shot because its failure is fatal to the request)
	CircuitBreakerMaxFailures  int `envconfig:"CIRCUIT_BREAKER_MAX_FAILURES" default:"5"`   // Failures before opening circuit
	CircuitBreakerResetTimeout int `envconfig:"CIRCUIT_BREAKER_RESET_TIMEOUT" default:"30"` // Seconds before attempting recovery
	ResearchRetryMaxAttempts   int `envconfig:"RESEARCH_RETRY_MAX_ATTEMPTS" default:"2"`    // Attempts per research call
	ResearchRetryBackoff       int `envconfig:"RESEARCH_RETRY_BACKOFF" default:"100"`       // Initial backoff in milliseconds

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`       // Log level: debug, info, warn, error
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`     // Pretty print logs (for development)
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"` // Enable Prometheus metrics
}

// Load reads configuration from environment variables
// It first attempts to load from .env file if it exists, then from environment
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	return LoadFromEnv()
}

// LoadFromEnv loads configuration directly from environment variables
// without attempting to load .env file (useful for containerized deployments)
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Validate required fields
	if cfg.PerplexityAPIKey == "" {
		return nil, fmt.Errorf("PERPLEXITY_API_KEY is required")
	}
	if cfg.OpenRouterAPIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.RequestTimeoutMs <= 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT_MS must be positive, got %d", cfg.RequestTimeoutMs)
	}
	if cfg.RetrieverTopK <= 0 {
		return nil, fmt.Errorf("RETRIEVER_TOP_K must be positive, got %d", cfg.RetrieverTopK)
	}
	if cfg.HistoryContextSize < 0 {
		return nil, fmt.Errorf("HISTORY_CONTEXT_SIZE must not be negative, got %d", cfg.HistoryContextSize)
	}

	return &cfg, nil
}

// GetEnv returns the value of an environment variable or a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
