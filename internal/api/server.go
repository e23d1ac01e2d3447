// Package api exposes the conversation agent over HTTP for non-CLI hosts.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sqlpilot/sqlpilot/internal/agent"
	"github.com/sqlpilot/sqlpilot/internal/config"
	"github.com/sqlpilot/sqlpilot/internal/logging"
	"github.com/sqlpilot/sqlpilot/internal/metrics"
	"github.com/sqlpilot/sqlpilot/internal/schema"
)

// Server serves the chat and schema endpoints plus Prometheus metrics.
type Server struct {
	agent    *agent.Agent
	registry *schema.Registry
	logger   *logging.Logger
	http     *http.Server
	shutdown time.Duration
}

// NewServer wires a server to its collaborators.
func NewServer(cfg config.ServerConfig, ag *agent.Agent, registry *schema.Registry) *Server {
	s := &Server{
		agent:    ag,
		registry: registry,
		logger:   logging.GetLogger().WithField("component", "api"),
	}

	if d, err := time.ParseDuration(cfg.ShutdownTimeout); err == nil {
		s.shutdown = d
	} else {
		s.shutdown = 10 * time.Second
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat", s.handleChat)
	mux.HandleFunc("/v1/schema", s.handleSchema)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", metrics.Handler())

	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the routing handler, used directly by tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe blocks until the listener fails or Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.WithField("addr", s.http.Addr).Info("http server listening")

	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}

	return err
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.shutdown)
	defer cancel()

	return s.http.Shutdown(ctx)
}

// chatRequest is the inbound payload for one conversation turn. An empty
// thread id starts a new thread.
type chatRequest struct {
	ThreadID string `json:"thread_id,omitempty"`
	Message  string `json:"message"`
}

// chatResponse wraps the agent response with the thread id so the caller can
// route follow-up messages.
type chatResponse struct {
	ThreadID string `json:"thread_id"`
	*agent.Response
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	threadID := req.ThreadID
	if threadID == "" {
		threadID = uuid.NewString()
	}

	resp := s.agent.Run(r.Context(), threadID, req.Message)

	writeJSON(w, http.StatusOK, chatResponse{ThreadID: threadID, Response: resp})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}

	tables := make([]interface{}, 0)

	for _, name := range s.registry.Tables() {
		t, err := s.registry.Get(name)
		if err != nil {
			continue
		}

		tables = append(tables, t)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"tables": tables})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.GetLogger().WithError(err).Error("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
