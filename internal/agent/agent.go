// Package agent implements the conversation-driven query completion state
// machine: intent classification, SQL synthesis, structured extraction,
// schema validation with an interactive missing-field loop, and safe
// finalization and execution.
package agent

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sqlpilot/sqlpilot/internal/config"
	"github.com/sqlpilot/sqlpilot/internal/db"
	"github.com/sqlpilot/sqlpilot/internal/errors"
	"github.com/sqlpilot/sqlpilot/internal/llm"
	"github.com/sqlpilot/sqlpilot/internal/logging"
	"github.com/sqlpilot/sqlpilot/internal/metrics"
	"github.com/sqlpilot/sqlpilot/internal/schema"
	"github.com/sqlpilot/sqlpilot/internal/sqlparse"
	"github.com/sqlpilot/sqlpilot/internal/validate"
)

// StatementRunner executes finalized SQL. *db.Executor is the production
// implementation; tests substitute a double.
type StatementRunner interface {
	Run(ctx context.Context, sql string) (*db.QueryResult, error)
	CountWhere(ctx context.Context, table, column string, value interface{}) (int64, error)
}

// Agent orchestrates the turn-by-turn conversation flow. All collaborators
// are injected; the agent holds no global state.
type Agent struct {
	registry *schema.Registry
	synth    *Synthesizer
	llm      llm.Service
	runner   StatementRunner
	store    ThreadStore
	memory   *Memory
	logger   *logging.Logger

	duplicateCheck bool

	mu          sync.Mutex
	threadLocks map[string]*sync.Mutex
}

// Options carries the agent's collaborators and tuning.
type Options struct {
	Registry       *schema.Registry
	LLM            llm.Service
	Runner         StatementRunner
	Store          ThreadStore
	Memory         *Memory
	Config         config.AgentConfig
	DuplicateCheck bool
}

// New assembles an agent. Store and Memory default to in-memory
// implementations sized from the config.
func New(opts Options) *Agent {
	if opts.Store == nil {
		opts.Store = NewMemoryStore(opts.Config.MaxThreads, opts.Config.HistoryLimit)
	}

	if opts.Memory == nil {
		opts.Memory = NewMemory(opts.Config.RecentQueries)
	}

	return &Agent{
		registry:       opts.Registry,
		synth:          NewSynthesizer(opts.LLM, opts.Registry, opts.Memory),
		llm:            opts.LLM,
		runner:         opts.Runner,
		store:          opts.Store,
		memory:         opts.Memory,
		logger:         logging.GetLogger().WithField("component", "agent"),
		duplicateCheck: opts.DuplicateCheck,
		threadLocks:    make(map[string]*sync.Mutex),
	}
}

// Run processes one user message for a thread and returns the structured
// response. Messages on the same thread are serialized; distinct threads run
// concurrently. Errors of every class surface as a terminal summary, never as
// a raw error to the caller.
func (a *Agent) Run(ctx context.Context, threadID, message string) *Response {
	unlock := a.lockThread(threadID)
	defer unlock()

	state, ok := a.store.Get(threadID)
	if !ok {
		state = NewConversationState(threadID)
	}

	state.AddMessage("user", message)
	state.ValidationErrors = nil

	var resp *Response
	if a.isFieldReply(state, message) {
		metrics.MessagesTotal.WithLabelValues("field_reply").Inc()
		resp = a.applyFieldReply(ctx, state, message)
	} else {
		metrics.MessagesTotal.WithLabelValues("request").Inc()
		resp = a.handleRequest(ctx, state, message)
	}

	state.AddMessage("assistant", resp.Summary)
	state.Summary = resp.Summary
	state.ValidationErrors = resp.ValidationErrors
	a.store.Put(threadID, state)

	return resp
}

// isFieldReply classifies a message as the answer to the pending field
// question. An active pending request with missing fields is the primary
// signal; the word-count heuristic only demotes messages that clearly start a
// new request.
func (a *Agent) isFieldReply(state *ConversationState, message string) bool {
	if state.Pending == nil || len(state.Pending.Missing) == 0 {
		return false
	}

	return !looksLikeNewRequest(message)
}

var requestVerbs = []string{
	"add", "insert", "create", "hire", "register", "new",
	"show", "list", "find", "select", "get", "display",
	"update", "change", "set", "modify",
	"delete", "remove", "fire", "drop",
}

// looksLikeNewRequest is the last-resort disambiguator: a longer message
// opening with an operation verb abandons the pending question.
func looksLikeNewRequest(message string) bool {
	words := strings.Fields(strings.ToLower(message))
	if len(words) <= 3 {
		return false
	}

	for _, verb := range requestVerbs {
		if words[0] == verb || (words[0] == "please" && words[1] == verb) {
			return true
		}
	}

	return false
}

// handleRequest runs the synthesize, extract, validate pipeline for a new
// request. A brand-new request always replaces whatever was pending.
func (a *Agent) handleRequest(ctx context.Context, state *ConversationState, message string) *Response {
	state.Pending = nil

	sql, err := a.synth.Synthesize(ctx, message)
	if err != nil {
		metrics.SynthesisTotal.WithLabelValues("error").Inc()
		return a.fail(state, err)
	}

	metrics.SynthesisTotal.WithLabelValues("ok").Inc()

	op := sqlparse.DetectOperation(sql)
	if op == sqlparse.OpUnknown {
		return a.fail(state, errors.Newf(errors.ErrTypeParse, "generated statement not recognized: %s", sql))
	}

	stmt, ok := sqlparse.Extract(sql)
	if !ok {
		if op.IsMutation() {
			// An INSERT or UPDATE we cannot decompose must not execute: the
			// validation and safety steps would be skipped.
			return a.fail(state, errors.Newf(errors.ErrTypeParse, "could not extract columns from generated %s", op))
		}

		return a.directExecute(ctx, state, sql, op)
	}

	table, err := a.registry.Get(stmt.Table)
	if err != nil {
		return a.fail(state, err)
	}

	state.Pending = &PendingRequest{
		Table:     table.Name,
		Operation: stmt.Operation,
		Values:    stmt.Values,
		Where:     stmt.Where,
		RawQuery:  message,
		RawSQL:    sql,
	}

	return a.advance(ctx, state)
}

// applyFieldReply merges the user's answer into the pending request and
// re-validates. Re-validation is mandatory: the reply itself may be
// malformed.
func (a *Agent) applyFieldReply(ctx context.Context, state *ConversationState, message string) *Response {
	pending := state.Pending

	field := pending.AskedField
	if field == "" {
		field = pending.Missing[0]
	}

	if pending.Values == nil {
		pending.Values = make(map[string]interface{})
	}

	pending.Values[field] = strings.TrimSpace(message)

	return a.advance(ctx, state)
}

// advance validates the pending request and takes the next transition: ask
// for a field, surface terminal errors, or finalize and execute.
func (a *Agent) advance(ctx context.Context, state *ConversationState) *Response {
	pending := state.Pending

	table, err := a.registry.Get(pending.Table)
	if err != nil {
		return a.fail(state, err)
	}

	// An UPDATE's absent columns are simply not being changed; only INSERT
	// collects the full required field set interactively.
	var result validate.Result
	if pending.Operation == sqlparse.OpUpdate {
		result = validate.ValidatePartial(pending.Values, table)
	} else {
		result = validate.Validate(pending.Values, table)
	}

	pending.Missing = result.Missing

	if len(result.Missing) > 0 {
		return a.askMissingField(state, table, result)
	}

	if len(result.Errors) > 0 {
		state.Pending = nil

		resp := a.fail(state, errors.New(errors.ErrTypeValidation, strings.Join(result.ErrorStrings(), "; ")))
		resp.ValidationErrors = result.ErrorStrings()

		return resp
	}

	if pending.Operation == sqlparse.OpInsert && a.duplicateCheck {
		if resp := a.checkDuplicate(ctx, state, table, result.Record); resp != nil {
			return resp
		}
	}

	sql, err := sqlparse.Finalize(result.Record, table, pending.Operation, pending.Where)
	if err != nil {
		return a.fail(state, err)
	}

	state.Pending = nil

	return a.execute(ctx, state, sql, pending.Operation, table.Name, result.Record)
}

// askMissingField surfaces the question for the first missing field and
// suspends the thread. Any field errors found alongside travel with the
// response but do not end the request while fields are still missing.
func (a *Agent) askMissingField(state *ConversationState, table *schema.TableSchema, result validate.Result) *Response {
	pending := state.Pending
	field := result.Missing[0]
	pending.AskedField = field

	prompt := fmt.Sprintf("What is the %s for this %s?", field, table.Name)
	if f, ok := table.Field(field); ok {
		prompt = fmt.Sprintf("What is the %s for this %s? (%s)", field, table.Name, f.Describe())
	}

	metrics.MissingFieldPrompts.Inc()
	a.logger.WithFields(map[string]interface{}{
		"thread": state.ThreadID,
		"table":  table.Name,
		"field":  field,
	}).Debug("asking for missing field")

	return &Response{
		Summary:          prompt,
		MissingField:     field,
		FieldPrompt:      prompt,
		ValidationErrors: result.ErrorStrings(),
	}
}

// checkDuplicate runs the configured pre-insert duplicate probe on the name
// column. A non-nil response ends the request.
func (a *Agent) checkDuplicate(ctx context.Context, state *ConversationState, table *schema.TableSchema, record map[string]interface{}) *Response {
	name, ok := record["name"]
	if !ok {
		return nil
	}

	if _, has := table.Field("name"); !has {
		return nil
	}

	count, err := a.runner.CountWhere(ctx, table.Name, "name", name)
	if err != nil {
		return a.fail(state, err)
	}

	if count > 0 {
		state.Pending = nil

		return &Response{
			Summary: fmt.Sprintf("A %s named %v already exists, so nothing was added.", table.Name, name),
		}
	}

	return nil
}

// directExecute handles SELECT and DELETE statements, which bypass the
// structured extraction loop. DELETE is still held to the WHERE invariant.
func (a *Agent) directExecute(ctx context.Context, state *ConversationState, sql string, op sqlparse.Operation) *Response {
	tableName := a.registry.Normalize(sqlparse.ExtractTable(sql))

	if tableName != "" {
		if _, err := a.registry.Get(tableName); err != nil {
			return a.fail(state, err)
		}
	}

	if op == sqlparse.OpDelete && sqlparse.WhereClause(sql) == "" {
		return a.fail(state, errors.NewUnsafeMutation(string(op), tableName))
	}

	return a.execute(ctx, state, sql, op, tableName, nil)
}

// execute runs the finalized statement and produces the terminal summary.
func (a *Agent) execute(ctx context.Context, state *ConversationState, sql string, op sqlparse.Operation, tableName string, values map[string]interface{}) *Response {
	start := time.Now()
	result, err := a.runner.Run(ctx, sql)
	metrics.ObserveExecution(string(op), err, time.Since(start))

	if err != nil {
		a.logger.WithError(err).WithField("sql", sql).Error("statement execution failed")
		return a.fail(state, err)
	}

	a.memory.Observe(op, tableName, values)
	state.LastResult = result

	a.logger.WithFields(map[string]interface{}{
		"thread":    state.ThreadID,
		"operation": string(op),
		"table":     tableName,
	}).Info("statement executed")

	return &Response{
		Summary: a.summarize(ctx, op, tableName, result),
		SQL:     sql,
		Result:  result,
	}
}

// fail converts any pipeline error into a terminal summary. ParseError and
// synthesis failures abandon the pending request; nothing partial survives.
func (a *Agent) fail(state *ConversationState, err error) *Response {
	a.logger.WithError(err).WithField("thread", state.ThreadID).Warn("request ended with error")

	if t := errors.GetType(err); t == errors.ErrTypeParse || t == errors.ErrTypeSynthesis {
		state.Pending = nil
	}

	return &Response{Summary: userMessage(err)}
}

// userMessage renders a structured error as conversational text.
func userMessage(err error) string {
	var structured *errors.Error
	if !stderrors.As(err, &structured) {
		return "Sorry, something went wrong: " + err.Error()
	}

	msg := "Sorry, " + structured.Message + "."

	if len(structured.Suggestions) > 0 {
		msg += " " + strings.Join(structured.Suggestions, "; ") + "."
	}

	return msg
}

// lockThread serializes message processing per thread id.
func (a *Agent) lockThread(threadID string) func() {
	a.mu.Lock()

	lock, ok := a.threadLocks[threadID]
	if !ok {
		lock = &sync.Mutex{}
		a.threadLocks[threadID] = lock
	}
	a.mu.Unlock()

	lock.Lock()

	return lock.Unlock
}
