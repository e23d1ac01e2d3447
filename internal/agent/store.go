package agent

import (
	"sync"
)

// ThreadStore keeps conversation state keyed by thread id. The in-memory
// implementation below is the default; a durable implementation can be
// swapped in by the host without touching the state machine.
type ThreadStore interface {
	Get(threadID string) (*ConversationState, bool)
	Put(threadID string, state *ConversationState)
}

// MemoryStore is a mutex-guarded in-memory ThreadStore with an operational
// cap on thread count and per-thread history length.
type MemoryStore struct {
	mu           sync.RWMutex
	threads      map[string]*ConversationState
	maxThreads   int
	historyLimit int
}

// NewMemoryStore creates a store capped at maxThreads conversations of at
// most historyLimit messages each. Non-positive caps disable the limit.
func NewMemoryStore(maxThreads, historyLimit int) *MemoryStore {
	return &MemoryStore{
		threads:      make(map[string]*ConversationState),
		maxThreads:   maxThreads,
		historyLimit: historyLimit,
	}
}

func (m *MemoryStore) Get(threadID string) (*ConversationState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.threads[threadID]

	return state, ok
}

func (m *MemoryStore) Put(threadID string, state *ConversationState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.historyLimit > 0 && len(state.Messages) > m.historyLimit {
		state.Messages = state.Messages[len(state.Messages)-m.historyLimit:]
	}

	if _, exists := m.threads[threadID]; !exists && m.maxThreads > 0 && len(m.threads) >= m.maxThreads {
		m.evictOldest()
	}

	m.threads[threadID] = state
}

// Len returns the number of tracked threads.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.threads)
}

// evictOldest drops the least recently updated thread. Caller holds the lock.
func (m *MemoryStore) evictOldest() {
	var oldest string

	for id, state := range m.threads {
		if oldest == "" || state.UpdatedAt.Before(m.threads[oldest].UpdatedAt) {
			oldest = id
		}
	}

	if oldest != "" {
		delete(m.threads, oldest)
	}
}
