// Package server serves the resume screener page and its JSON API.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-screener/internal/collection"
	"github.com/jonathan/resume-screener/internal/extract"
	"github.com/jonathan/resume-screener/internal/llm"
	"github.com/jonathan/resume-screener/internal/screening"
	"github.com/jonathan/resume-screener/internal/session"
)

// ErrUploadTooLarge indicates the request body exceeded the upload limit
type ErrUploadTooLarge struct {
	Limit int64
}

func (e *ErrUploadTooLarge) Error() string {
	return fmt.Sprintf("the uploaded file exceeds the %d byte limit", e.Limit)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *screening.ValidationError
		tooLargeErr   *ErrUploadTooLarge
		docErr        *extract.DocumentFormatError
		authErr       *llm.AuthenticationError
		remoteErr     *llm.RemoteServiceError
		writeErr      *collection.WriteError
	)

	switch {
	case errors.Is(err, session.ErrMissingCredential):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrBusy):
		return http.StatusConflict
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &tooLargeErr):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &docErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &authErr):
		return http.StatusUnauthorized
	case errors.As(err, &remoteErr):
		return http.StatusBadGateway
	case errors.As(err, &writeErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage returns the text shown to the reviewer for err.
func UserMessage(err error) string {
	var (
		validationErr *screening.ValidationError
		docErr        *extract.DocumentFormatError
		authErr       *llm.AuthenticationError
		remoteErr     *llm.RemoteServiceError
		writeErr      *collection.WriteError
	)

	switch {
	case errors.Is(err, session.ErrMissingCredential):
		return "Please add your Google AI API key to continue."
	case errors.Is(err, session.ErrBusy):
		return "An analysis is already running. Please wait for it to finish."
	case errors.As(err, &validationErr):
		return capitalize(validationErr.Message) + "."
	case errors.As(err, &docErr):
		return "The uploaded file could not be read as a PDF."
	case errors.As(err, new(*ErrUploadTooLarge)):
		return capitalize(err.Error()) + "."
	case errors.As(err, &authErr):
		return "The API key was rejected by Google AI. Please check it and try again."
	case errors.As(err, &remoteErr):
		return "The analysis service failed. Please try again later."
	case errors.As(err, &writeErr):
		return "The analysis succeeded but the resume could not be stored."
	default:
		return err.Error()
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:]
	}
	return s
}
