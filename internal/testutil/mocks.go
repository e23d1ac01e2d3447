// Package testutil provides shared mocks and schema builders for tests.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/sqlpilot/sqlpilot/internal/db"
	"github.com/sqlpilot/sqlpilot/internal/llm"
)

// MockLLM implements llm.Service for testing with scripted responses and
// error injection.
type MockLLM struct {
	mu sync.RWMutex

	sqlResponses []string
	sqlIndex     int
	summary      string
	errors       map[string]error
	callCounts   map[string]int
	prompts      []string
}

// MockLLMOption is a functional option for configuring MockLLM
type MockLLMOption func(*MockLLM)

// WithSQL queues SQL responses returned in order; the last repeats.
func WithSQL(responses ...string) MockLLMOption {
	return func(m *MockLLM) {
		m.sqlResponses = responses
	}
}

// WithSummaryText sets the summary response
func WithSummaryText(text string) MockLLMOption {
	return func(m *MockLLM) {
		m.summary = text
	}
}

// WithLLMError sets an error for an operation ("generate" or "summarize")
func WithLLMError(op string, err error) MockLLMOption {
	return func(m *MockLLM) {
		m.errors[op] = err
	}
}

// NewMockLLM creates a new mock LLM service with the given options
func NewMockLLM(opts ...MockLLMOption) *MockLLM {
	mock := &MockLLM{
		errors:     make(map[string]error),
		callCounts: make(map[string]int),
	}

	for _, opt := range opts {
		opt(mock)
	}

	return mock
}

func (m *MockLLM) GenerateSQL(_ context.Context, request, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callCounts["GenerateSQL"]++
	m.prompts = append(m.prompts, request)

	if err, exists := m.errors["generate"]; exists {
		return "", err
	}

	if len(m.sqlResponses) == 0 {
		return "", fmt.Errorf("no scripted SQL response")
	}

	resp := m.sqlResponses[m.sqlIndex]
	if m.sqlIndex < len(m.sqlResponses)-1 {
		m.sqlIndex++
	}

	return resp, nil
}

func (m *MockLLM) Summarize(_ context.Context, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callCounts["Summarize"]++

	if err, exists := m.errors["summarize"]; exists {
		return "", err
	}

	if m.summary == "" {
		return "", fmt.Errorf("no scripted summary")
	}

	return m.summary, nil
}

func (m *MockLLM) Configure(_ llm.Config) error {
	return nil
}

// CallCount returns how many times an operation was invoked
func (m *MockLLM) CallCount(op string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.callCounts[op]
}

// Prompts returns the requests passed to GenerateSQL
func (m *MockLLM) Prompts() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, len(m.prompts))
	copy(out, m.prompts)

	return out
}

// MockRunner implements the statement runner contract for testing, recording
// executed statements and returning scripted results.
type MockRunner struct {
	mu sync.RWMutex

	result    *db.QueryResult
	runErr    error
	dupeCount int64
	dupeErr   error
	executed  []string
}

// MockRunnerOption is a functional option for configuring MockRunner
type MockRunnerOption func(*MockRunner)

// WithResult sets the result returned by Run
func WithResult(result *db.QueryResult) MockRunnerOption {
	return func(m *MockRunner) {
		m.result = result
	}
}

// WithRunError makes Run fail
func WithRunError(err error) MockRunnerOption {
	return func(m *MockRunner) {
		m.runErr = err
	}
}

// WithDuplicateCount sets the count returned by CountWhere
func WithDuplicateCount(count int64) MockRunnerOption {
	return func(m *MockRunner) {
		m.dupeCount = count
	}
}

// NewMockRunner creates a new mock runner with the given options
func NewMockRunner(opts ...MockRunnerOption) *MockRunner {
	mock := &MockRunner{
		result: &db.QueryResult{RowsAffected: 1},
	}

	for _, opt := range opts {
		opt(mock)
	}

	return mock
}

func (m *MockRunner) Run(_ context.Context, sql string) (*db.QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.executed = append(m.executed, sql)

	if m.runErr != nil {
		return nil, m.runErr
	}

	return m.result, nil
}

func (m *MockRunner) CountWhere(_ context.Context, _, _ string, _ interface{}) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.dupeErr != nil {
		return 0, m.dupeErr
	}

	return m.dupeCount, nil
}

// Executed returns the statements passed to Run in order
func (m *MockRunner) Executed() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, len(m.executed))
	copy(out, m.executed)

	return out
}
