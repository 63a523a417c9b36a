// Package server exposes the chat agent over HTTP and websocket. It is
// the caller of the runner core and therefore owns the per-session
// serialization precondition: one in-flight turn per session.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"fieldagent/pkg/domain"
	"fieldagent/pkg/runner"
	"fieldagent/pkg/store"
)

// Server serves the chat, usage, and knowledge-base admin API.
type Server struct {
	run      *runner.Runner
	docs     store.DocumentStore
	newAgent func() *domain.Agent

	mu       sync.Mutex
	sessions map[string]*session

	srv *http.Server
}

// session binds one agent to its serialization lock and usage counters.
// Counters are in-memory only and reset on restart.
type session struct {
	mu    sync.Mutex
	agent *domain.Agent
	usage Usage
}

// Usage is the per-session usage report.
type Usage struct {
	Conversations int `json:"conversations"`
	Messages      int `json:"messages"`
}

// New creates a server. newAgent constructs the agent backing each new
// session.
func New(run *runner.Runner, docs store.DocumentStore, newAgent func() *domain.Agent) *Server {
	return &Server{
		run:      run,
		docs:     docs,
		newAgent: newAgent,
		sessions: make(map[string]*session),
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Chat
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("/ws/chat", s.handleChatWebSocket)

	// Usage
	mux.HandleFunc("GET /usage", s.handleUsage)

	// Knowledge-base admin
	mux.HandleFunc("GET /admin/docs", s.handleListDocs)
	mux.HandleFunc("PUT /admin/docs/{topic}", s.handlePutDoc)
	mux.HandleFunc("GET /admin/docs/{topic}", s.handleGetDoc)
	mux.HandleFunc("DELETE /admin/docs/{topic}", s.handleDeleteDoc)
	mux.HandleFunc("DELETE /admin/history/{session}", s.handleClearHistory)

	return s.corsMiddleware(mux)
}

// Start starts the HTTP server.
func (s *Server) Start(addr string) error {
	s.srv = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	slog.Info("Starting web server", "addr", addr)
	return s.srv.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// getSession returns the session for a key, creating it (and its agent)
// on first use. The empty key maps to "default".
func (s *Server) getSession(key string) *session {
	if key == "" {
		key = "default"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[key]
	if !ok {
		sess = &session{agent: s.newAgent()}
		s.sessions[key] = sess
	}
	return sess
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, err error) {
	slog.Error("API Error", "error", err)
	s.jsonResponse(w, status, map[string]string{"error": err.Error()})
}
