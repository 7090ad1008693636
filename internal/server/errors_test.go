package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jonathan/resume-screener/internal/collection"
	"github.com/jonathan/resume-screener/internal/extract"
	"github.com/jonathan/resume-screener/internal/llm"
	"github.com/jonathan/resume-screener/internal/screening"
	"github.com/jonathan/resume-screener/internal/session"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cause := errors.New("cause")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "missing credential", err: session.ErrMissingCredential, want: http.StatusUnauthorized},
		{name: "busy", err: session.ErrBusy, want: http.StatusConflict},
		{name: "validation", err: &screening.ValidationError{Field: "resume", Message: "x"}, want: http.StatusBadRequest},
		{name: "too large", err: &ErrUploadTooLarge{Limit: 1}, want: http.StatusRequestEntityTooLarge},
		{name: "document format", err: &extract.DocumentFormatError{Reason: "bad"}, want: http.StatusUnprocessableEntity},
		{name: "authentication", err: &llm.AuthenticationError{Cause: cause}, want: http.StatusUnauthorized},
		{name: "remote service", err: &llm.RemoteServiceError{Cause: cause}, want: http.StatusBadGateway},
		{name: "write", err: &collection.WriteError{ID: "a.pdf", Cause: cause}, want: http.StatusInternalServerError},
		{name: "wrapped", err: fmt.Errorf("cycle: %w", &extract.DocumentFormatError{Reason: "bad"}), want: http.StatusUnprocessableEntity},
		{name: "unknown", err: cause, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Please add your Google AI API key to continue.", UserMessage(session.ErrMissingCredential))
	assert.Equal(t, "Please enter a job description.",
		UserMessage(&screening.ValidationError{Field: "job_description", Message: "please enter a job description"}))
	assert.Contains(t, UserMessage(&llm.AuthenticationError{Cause: errors.New("x")}), "API key was rejected")
	assert.Equal(t, "boom", UserMessage(errors.New("boom")))
}
