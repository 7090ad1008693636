package server

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/jonathan/resume-screener/internal/screening"
	"github.com/jonathan/resume-screener/internal/server/middleware"
	"github.com/jonathan/resume-screener/internal/session"
)

// multipartMemory is the part of a multipart body kept in memory; the rest spills to disk.
const multipartMemory = 8 << 20

// currentSession returns the request's session or writes a 500.
func (s *Server) currentSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := middleware.GetSession(r)
	if err != nil {
		log.Printf("[server] %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	return sess, true
}

// readAnalyzeRequest parses the multipart form fields job_description and resume.
// A missing file yields an empty upload so the screener reports it.
func (s *Server) readAnalyzeRequest(w http.ResponseWriter, r *http.Request) (screening.Request, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return screening.Request{}, &ErrUploadTooLarge{Limit: s.cfg.MaxUploadBytes}
		}
		return screening.Request{}, &screening.ValidationError{Field: "request", Message: "expected a multipart form upload"}
	}

	req := screening.Request{JobDescription: r.FormValue("job_description")}

	file, header, err := r.FormFile("resume")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return req, nil
	case err != nil:
		return req, fmt.Errorf("failed to read upload: %w", err)
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	data, err := io.ReadAll(file)
	if err != nil {
		return req, fmt.Errorf("failed to read upload: %w", err)
	}

	req.Resume = screening.Upload{Filename: header.Filename, Data: data}
	return req, nil
}
