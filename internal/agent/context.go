package agent

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sqlpilot/sqlpilot/internal/sqlparse"
)

// QueryTrace is one prompt/statement pair kept in the recent-queries ring.
type QueryTrace struct {
	Prompt string
	SQL    string
}

// Memory is the process-wide conversational context shared across threads:
// the last executed operation, per-table usage counters, a bounded ring of
// recent prompt/SQL pairs, and value patterns the user keeps reusing. It is
// the only cross-thread mutable state, so every access goes through the
// mutex.
type Memory struct {
	mu sync.Mutex

	lastOperation sqlparse.Operation
	lastTable     string
	lastValues    map[string]interface{}

	tableHits map[string]int
	preferred map[string]string

	recent []QueryTrace
	next   int
	filled int
}

// NewMemory creates a Memory with a recent-queries ring of the given size.
func NewMemory(recentQueries int) *Memory {
	if recentQueries <= 0 {
		recentQueries = 1
	}

	return &Memory{
		tableHits: make(map[string]int),
		preferred: make(map[string]string),
		recent:    make([]QueryTrace, recentQueries),
	}
}

// Observe records a successfully executed statement. String values become
// preferred defaults for their column.
func (m *Memory) Observe(op sqlparse.Operation, table string, values map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastOperation = op
	m.lastTable = table
	m.tableHits[table]++

	if len(values) > 0 {
		m.lastValues = values

		for col, v := range values {
			if s, ok := v.(string); ok && s != "" {
				m.preferred[col] = s
			}
		}
	}
}

// RecordQuery appends a prompt/statement pair to the ring buffer.
func (m *Memory) RecordQuery(prompt, sql string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.recent[m.next] = QueryTrace{Prompt: prompt, SQL: sql}
	m.next = (m.next + 1) % len(m.recent)

	if m.filled < len(m.recent) {
		m.filled++
	}
}

// Recent returns the retained prompt/statement pairs, oldest first.
func (m *Memory) Recent() []QueryTrace {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]QueryTrace, 0, m.filled)

	start := m.next - m.filled
	if start < 0 {
		start += len(m.recent)
	}

	for i := 0; i < m.filled; i++ {
		out = append(out, m.recent[(start+i)%len(m.recent)])
	}

	return out
}

// LastTable returns the table touched by the most recent execution.
func (m *Memory) LastTable() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.lastTable
}

// Preferred returns the remembered value for a column, if any.
func (m *Memory) Preferred(column string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.preferred[column]

	return v, ok
}

// Hints renders the context as prompt text so the generator can resolve
// phrases like "the same department" or "that table".
func (m *Memory) Hints() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sb strings.Builder

	if m.lastTable != "" {
		fmt.Fprintf(&sb, "The previous request was a %s on the %s table.\n", m.lastOperation, m.lastTable)
	}

	if len(m.lastValues) > 0 {
		sb.WriteString("Values from the previous request:")

		for col, v := range m.lastValues {
			fmt.Fprintf(&sb, " %s=%v", col, v)
		}

		sb.WriteString("\n")
	}

	if sb.Len() == 0 {
		return ""
	}

	return "Conversation context:\n" + sb.String()
}
