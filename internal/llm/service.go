package llm

import (
	"context"
	"time"

	"github.com/sqlpilot/sqlpilot/internal/cache"
	"github.com/sqlpilot/sqlpilot/internal/config"
	"github.com/sqlpilot/sqlpilot/internal/logging"
)

// Service defines the interface for LLM operations
type Service interface {
	// GenerateSQL converts a natural language request into a single SQL
	// statement given schema context text. The returned text may still carry
	// code fences or prose; callers clean it before use.
	GenerateSQL(ctx context.Context, request string, schemaContext string) (string, error)
	// Summarize turns a structured outcome prompt into one conversational
	// sentence.
	Summarize(ctx context.Context, prompt string) (string, error)
	Configure(config Config) error
}

// Config represents LLM service configuration
type Config struct {
	Provider string            `json:"provider"` // openai, anthropic, ollama
	Model    string            `json:"model"`
	APIKey   string            `json:"api_key,omitempty"`
	BaseURL  string            `json:"base_url,omitempty"`
	Options  map[string]string `json:"options,omitempty"`
}

// Provider constants for different LLM providers
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderLocal     = "local"
	ProviderOllama    = "ollama"
)

// NewService builds a Service from application configuration. An empty or
// "none" provider yields the rule-based service; a configured provider yields
// an HTTP client that degrades to the rule-based service on call failure.
// When a cache directory is configured, generated SQL is memoized on disk.
func NewService(cfg config.LLMConfig) (Service, error) {
	if cfg.Provider == "" || cfg.Provider == "none" {
		return NewRuleBased(), nil
	}

	client := NewClient(Config{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
	})

	if err := client.Configure(client.config); err != nil {
		return nil, err
	}

	service := WithFallback(client, NewRuleBased())

	if cfg.CacheDir != "" {
		ttl, err := time.ParseDuration(cfg.CacheTTL)
		if err != nil {
			ttl = time.Hour
		}

		store, err := cache.NewFileCache(cfg.CacheDir, ttl)
		if err != nil {
			return nil, err
		}

		service = WithCache(service, store)
	}

	return service, nil
}

// fallbackService tries a primary provider once and falls back to a secondary
// on any error. There is deliberately no retry loop: a second identical call
// rarely helps, and the rule-based fallback keeps the conversation moving.
type fallbackService struct {
	primary  Service
	fallback Service
}

// WithFallback wraps a primary service with a secondary used when the primary
// fails.
func WithFallback(primary, fallback Service) Service {
	return &fallbackService{primary: primary, fallback: fallback}
}

func (s *fallbackService) GenerateSQL(ctx context.Context, request, schemaContext string) (string, error) {
	sql, err := s.primary.GenerateSQL(ctx, request, schemaContext)
	if err == nil {
		return sql, nil
	}

	logging.GetLogger().WithError(err).Warn("primary LLM provider failed, using rule-based fallback")

	return s.fallback.GenerateSQL(ctx, request, schemaContext)
}

func (s *fallbackService) Summarize(ctx context.Context, prompt string) (string, error) {
	text, err := s.primary.Summarize(ctx, prompt)
	if err == nil {
		return text, nil
	}

	return s.fallback.Summarize(ctx, prompt)
}

func (s *fallbackService) Configure(config Config) error {
	return s.primary.Configure(config)
}
