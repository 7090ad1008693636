package server

import (
	"log"
	"net/http"

	"github.com/jonathan/resume-screener/internal/screening"
	"github.com/jonathan/resume-screener/internal/session"
)

// handleIndex renders the page with the whole session log.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.currentSession(w, r)
	if !ok {
		return
	}
	s.renderIndex(w, sess, http.StatusOK, pageData{Flash: sess.TakeFlash()})
}

// handleSetKey stores or clears the API key from the api_key form field.
func (s *Server) handleSetKey(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.currentSession(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		s.renderIndex(w, sess, http.StatusBadRequest, pageData{Error: "Invalid form submission."})
		return
	}

	sess.SetCredential(r.PostFormValue("api_key"))
	log.Printf("[server] session %s credential set=%t", sess.ID, sess.HasCredential())

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleAnalyzeForm runs one cycle from the page form.
// Success redirects to the page with a flash message; failure re-renders it.
func (s *Server) handleAnalyzeForm(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.currentSession(w, r)
	if !ok {
		return
	}

	req, err := s.readAnalyzeRequest(w, r)
	if err == nil {
		_, err = s.screener.Screen(r.Context(), sess, req, nil)
	}
	if err != nil {
		log.Printf("[server] analyze failed for session %s: %v", sess.ID, err)
		s.renderIndex(w, sess, HTTPStatus(err), pageData{
			Error:          UserMessage(err),
			JobDescription: req.JobDescription,
		})
		return
	}

	sess.SetFlash(screening.SuccessMessage)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) renderIndex(w http.ResponseWriter, sess *session.Session, status int, data pageData) {
	data.HasKey = sess.HasCredential()
	data.Messages = renderMessages(sess.Messages())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := renderPage(w, data); err != nil {
		log.Printf("[server] failed to render page: %v", err)
	}
}
