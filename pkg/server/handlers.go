package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"fieldagent/pkg/store"
)

// ChatRequest is the POST /chat body.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the POST /chat reply.
type ChatResponse struct {
	Reply string `json:"reply"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err)
		return
	}

	sess := s.getSession(r.URL.Query().Get("session"))
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.usage.Messages++

	result, err := s.run.Run(r.Context(), sess.agent, req.Message)
	if err != nil {
		// Only caller-side cancellation reaches here; the turn was not
		// answered.
		s.errorResponse(w, http.StatusRequestTimeout, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ChatResponse{Reply: result.FinalOutput})
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	sess := s.getSession(r.URL.Query().Get("session"))
	sess.mu.Lock()
	defer sess.mu.Unlock()
	s.jsonResponse(w, http.StatusOK, sess.usage)
}

// --- Knowledge-base admin ---

func (s *Server) handleListDocs(w http.ResponseWriter, r *http.Request) {
	docs, err := s.docs.List(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err)
		return
	}
	topics := make([]string, 0, len(docs))
	for _, d := range docs {
		topics = append(topics, d.Topic)
	}
	s.jsonResponse(w, http.StatusOK, map[string][]string{"files": topics})
}

func (s *Server) handlePutDoc(w http.ResponseWriter, r *http.Request) {
	topic := r.PathValue("topic")
	if strings.TrimSpace(topic) == "" {
		s.errorResponse(w, http.StatusBadRequest, errors.New("missing topic"))
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err)
		return
	}
	doc := &store.Document{Topic: topic, Content: string(body)}
	if err := s.docs.Put(r.Context(), doc); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, doc)
}

func (s *Server) handleGetDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := s.docs.Get(r.Context(), r.PathValue("topic"))
	if errors.Is(err, store.ErrNotFound) {
		s.errorResponse(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDoc(w http.ResponseWriter, r *http.Request) {
	err := s.docs.Delete(r.Context(), r.PathValue("topic"))
	if errors.Is(err, store.ErrNotFound) {
		s.errorResponse(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	sess := s.getSession(r.PathValue("session"))
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.agent.History = nil
	sess.agent.FinishSlotFilling()
	s.jsonResponse(w, http.StatusOK, map[string]bool{"cleared": true})
}
