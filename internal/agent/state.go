package agent

import (
	"time"

	"github.com/sqlpilot/sqlpilot/internal/db"
	"github.com/sqlpilot/sqlpilot/internal/sqlparse"
)

// PendingRequest is an in-progress INSERT or UPDATE awaiting field
// completion. Operation is fixed when the request is created; a change of
// operation always means a fresh request. Values never contains the
// auto-increment primary key column.
type PendingRequest struct {
	Table      string                 `json:"table"`
	Operation  sqlparse.Operation     `json:"operation"`
	Values     map[string]interface{} `json:"values"`
	Missing    []string               `json:"missing,omitempty"`
	AskedField string                 `json:"asked_field,omitempty"`
	Where      string                 `json:"where,omitempty"`
	RawQuery   string                 `json:"raw_query"`
	RawSQL     string                 `json:"raw_sql"`
}

// Message is one turn of a conversation thread.
type Message struct {
	Role    string    `json:"role"` // user or assistant
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// ConversationState is the per-thread container for message history and the
// current pending request. Owned exclusively by its thread id.
type ConversationState struct {
	ThreadID         string          `json:"thread_id"`
	Messages         []Message       `json:"messages"`
	Pending          *PendingRequest `json:"pending,omitempty"`
	LastResult       *db.QueryResult `json:"last_result,omitempty"`
	Summary          string          `json:"summary,omitempty"`
	ValidationErrors []string        `json:"validation_errors,omitempty"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// NewConversationState creates an empty state for a thread.
func NewConversationState(threadID string) *ConversationState {
	return &ConversationState{
		ThreadID:  threadID,
		UpdatedAt: time.Now(),
	}
}

// AddMessage appends a turn to the history.
func (s *ConversationState) AddMessage(role, content string) {
	s.Messages = append(s.Messages, Message{Role: role, Content: content, At: time.Now()})
	s.UpdatedAt = time.Now()
}

// Response is what one processed message produces. MissingField, when set,
// signals the caller to prompt the user and route their next message back to
// the same thread.
type Response struct {
	Summary          string          `json:"summary"`
	SQL              string          `json:"sql,omitempty"`
	Result           *db.QueryResult `json:"result,omitempty"`
	MissingField     string          `json:"missing_field,omitempty"`
	FieldPrompt      string          `json:"field_prompt,omitempty"`
	ValidationErrors []string        `json:"validation_errors,omitempty"`
}

// AwaitingInput reports whether the thread is suspended on a field question.
func (r *Response) AwaitingInput() bool {
	return r.MissingField != ""
}
