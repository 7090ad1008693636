package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AuthenticationError indicates the remote service rejected the API key.
type AuthenticationError struct {
	Cause error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("the model service rejected the API key: %v", e.Cause)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Cause
}

// RemoteServiceError covers every other failure of a model call: quota,
// network, blocked content or an unusable response.
type RemoteServiceError struct {
	Model string
	Cause error
}

func (e *RemoteServiceError) Error() string {
	return fmt.Sprintf("model %s request failed: %v", e.Model, e.Cause)
}

func (e *RemoteServiceError) Unwrap() error {
	return e.Cause
}

// classifyError maps a client error onto AuthenticationError or RemoteServiceError.
func classifyError(model string, err error) error {
	if err == nil {
		return nil
	}
	if isAuthError(err) {
		return &AuthenticationError{Cause: err}
	}
	return &RemoteServiceError{Model: model, Cause: err}
}

func isAuthError(err error) bool {
	var herr *googleapi.Error
	if errors.As(err, &herr) && isAuthHTTPCode(herr.Code) {
		return true
	}

	ae, ok := asAPIError(err)
	if ok {
		if ae.Reason() == "API_KEY_INVALID" || isAuthHTTPCode(ae.HTTPCode()) {
			return true
		}
		if st := ae.GRPCStatus(); st != nil && isAuthCode(st.Code()) {
			return true
		}
	}

	if st, ok := status.FromError(err); ok && isAuthCode(st.Code()) {
		return true
	}

	// Gemini answers an invalid key with 400 INVALID_ARGUMENT; the reason is
	// only reliably present in the message when details were not decoded.
	msg := err.Error()
	return strings.Contains(msg, "API_KEY_INVALID") || strings.Contains(msg, "API key not valid")
}

func asAPIError(err error) (*apierror.APIError, bool) {
	var ae *apierror.APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return apierror.FromError(err)
}

func isAuthHTTPCode(code int) bool {
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}

func isAuthCode(code codes.Code) bool {
	return code == codes.Unauthenticated || code == codes.PermissionDenied
}
