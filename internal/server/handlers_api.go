package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/jonathan/resume-screener/internal/screening"
	"github.com/jonathan/resume-screener/internal/session"
)

// AnalyzeResponse is the JSON body of a successful analysis.
type AnalyzeResponse struct {
	RecordID   string            `json:"record_id"`
	ResumeText string            `json:"resume_text"`
	Analysis   string            `json:"analysis"`
	Replaced   bool              `json:"replaced"`
	Message    string            `json:"message"`
	Messages   []session.Message `json:"messages"`
}

// SetKeyRequest is the JSON body of POST /api/key.
type SetKeyRequest struct {
	APIKey string `json:"api_key"`
}

// handleAPISetKey stores or clears the API key from a JSON body.
func (s *Server) handleAPISetKey(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.currentSession(w, r)
	if !ok {
		return
	}

	var req SetKeyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess.SetCredential(req.APIKey)
	s.jsonResponse(w, http.StatusOK, map[string]bool{"has_key": sess.HasCredential()})
}

// handleAPIAnalyze runs one cycle and returns the result as JSON.
func (s *Server) handleAPIAnalyze(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.currentSession(w, r)
	if !ok {
		return
	}

	req, err := s.readAnalyzeRequest(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), UserMessage(err))
		return
	}

	result, err := s.screener.Screen(r.Context(), sess, req, nil)
	if err != nil {
		log.Printf("[server] analyze failed for session %s: %v", sess.ID, err)
		s.errorResponse(w, HTTPStatus(err), UserMessage(err))
		return
	}

	s.jsonResponse(w, http.StatusOK, AnalyzeResponse{
		RecordID:   result.RecordID,
		ResumeText: result.ResumeText,
		Analysis:   result.Analysis,
		Replaced:   result.Replaced,
		Message:    screening.SuccessMessage,
		Messages:   result.Messages,
	})
}

// handleAPIAnalyzeStream runs one cycle and reports progress as Server-Sent Events:
// stage events while it runs, a message event per new log entry, then complete.
func (s *Server) handleAPIAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.currentSession(w, r)
	if !ok {
		return
	}

	req, readErr := s.readAnalyzeRequest(w, r)

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	if readErr != nil {
		sse.WriteError(HTTPStatus(readErr), UserMessage(readErr))
		return
	}

	result, err := s.screener.Screen(r.Context(), sess, req, func(stage screening.Stage) {
		sse.WriteEvent("stage", map[string]string{"stage": string(stage)}) //nolint:errcheck
	})
	if err != nil {
		log.Printf("[server] analyze failed for session %s: %v", sess.ID, err)
		sse.WriteError(HTTPStatus(err), UserMessage(err))
		return
	}

	// The cycle appended exactly the last two messages
	for _, msg := range result.Messages[len(result.Messages)-2:] {
		sse.WriteEvent("message", msg) //nolint:errcheck
	}
	sse.WriteComplete(result.RecordID, result.Replaced, screening.SuccessMessage)
}

// handleMessages returns the session log.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.currentSession(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"messages": sess.Messages(),
		"has_key":  sess.HasCredential(),
	})
}

// handleEndSession discards the session's log and key.
func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.currentSession(w, r)
	if !ok {
		return
	}
	s.sessions.End(sess.ID)
	w.WriteHeader(http.StatusNoContent)
}
