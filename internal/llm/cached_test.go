package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlpilot/sqlpilot/internal/cache"
	"github.com/sqlpilot/sqlpilot/internal/errors"
)

// countingService records calls and replies with a fixed statement.
type countingService struct {
	generateCalls  int
	summarizeCalls int
	failGenerate   bool
}

func (s *countingService) GenerateSQL(_ context.Context, _, _ string) (string, error) {
	s.generateCalls++
	if s.failGenerate {
		return "", errors.New(errors.ErrTypeSynthesis, "provider unavailable")
	}

	return "SELECT * FROM employee;", nil
}

func (s *countingService) Summarize(_ context.Context, _ string) (string, error) {
	s.summarizeCalls++
	return "done", nil
}

func (s *countingService) Configure(_ Config) error { return nil }

func newTestCachedService(t *testing.T, inner Service) Service {
	t.Helper()

	store, err := cache.NewFileCache(t.TempDir(), time.Hour)
	require.NoError(t, err)

	return WithCache(inner, store)
}

func TestCachedServiceReusesGeneratedSQL(t *testing.T) {
	inner := &countingService{}
	svc := newTestCachedService(t, inner)

	first, err := svc.GenerateSQL(context.Background(), "show all employees", testSchemaContext)
	require.NoError(t, err)

	second, err := svc.GenerateSQL(context.Background(), "show all employees", testSchemaContext)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.generateCalls)
}

func TestCachedServiceKeysOnRequestAndSchema(t *testing.T) {
	inner := &countingService{}
	svc := newTestCachedService(t, inner)

	_, err := svc.GenerateSQL(context.Background(), "show all employees", testSchemaContext)
	require.NoError(t, err)

	_, err = svc.GenerateSQL(context.Background(), "show all projects", testSchemaContext)
	require.NoError(t, err)

	_, err = svc.GenerateSQL(context.Background(), "show all employees", testSchemaContext+"\nextra")
	require.NoError(t, err)

	assert.Equal(t, 3, inner.generateCalls)
}

func TestCachedServiceDoesNotCacheFailures(t *testing.T) {
	inner := &countingService{failGenerate: true}
	svc := newTestCachedService(t, inner)

	_, err := svc.GenerateSQL(context.Background(), "show all employees", testSchemaContext)
	require.Error(t, err)

	_, err = svc.GenerateSQL(context.Background(), "show all employees", testSchemaContext)
	require.Error(t, err)

	assert.Equal(t, 2, inner.generateCalls)
}

func TestCachedServiceSummarizePassesThrough(t *testing.T) {
	inner := &countingService{}
	svc := newTestCachedService(t, inner)

	for i := 0; i < 2; i++ {
		text, err := svc.Summarize(context.Background(), "inserted 1 row")
		require.NoError(t, err)
		assert.Equal(t, "done", text)
	}

	assert.Equal(t, 2, inner.summarizeCalls)
}
