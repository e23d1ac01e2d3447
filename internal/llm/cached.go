package llm

import (
	"context"

	"github.com/sqlpilot/sqlpilot/internal/cache"
	"github.com/sqlpilot/sqlpilot/internal/logging"
)

// cachedService memoizes GenerateSQL responses on disk. Summaries are not
// cached: they describe execution results, which change between calls.
type cachedService struct {
	inner Service
	store *cache.FileCache
}

// WithCache wraps a service so that repeated requests against the same schema
// context reuse the previously generated SQL instead of calling the provider.
func WithCache(inner Service, store *cache.FileCache) Service {
	return &cachedService{inner: inner, store: store}
}

func (s *cachedService) GenerateSQL(ctx context.Context, request, schemaContext string) (string, error) {
	key := request + "\n\x00\n" + schemaContext

	if sql, ok := s.store.Get(key); ok {
		logging.GetLogger().WithField("request", request).Debug("SQL cache hit")
		return sql, nil
	}

	sql, err := s.inner.GenerateSQL(ctx, request, schemaContext)
	if err != nil {
		return "", err
	}

	if err := s.store.Set(key, sql); err != nil {
		logging.GetLogger().WithError(err).Warn("failed to write SQL cache entry")
	}

	return sql, nil
}

func (s *cachedService) Summarize(ctx context.Context, prompt string) (string, error) {
	return s.inner.Summarize(ctx, prompt)
}

func (s *cachedService) Configure(config Config) error {
	return s.inner.Configure(config)
}
