// Package middleware provides HTTP middleware that binds requests to browser sessions.
package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-screener/internal/session"
)

// CookieName is the name of the session cookie.
const CookieName = "screener_session"

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

const sessionKey ContextKey = "session"

// ErrNoSession is returned by GetSession when the request carries no session.
var ErrNoSession = errors.New("session not found in request context")

// TokenCodec signs and verifies session tokens.
// This lets the middleware work with any token implementation.
type TokenCodec interface {
	GenerateToken(sessionID uuid.UUID) (string, error)
	ValidateToken(tokenString string) (SessionIDGetter, error)
}

// SessionIDGetter extracts the session ID from token claims.
type SessionIDGetter interface {
	GetSessionID() uuid.UUID
}

// SessionStore resolves and creates sessions.
type SessionStore interface {
	Get(id uuid.UUID) (*session.Session, bool)
	Create() *session.Session
}

// Sessions attaches the caller's session to the request context. A missing,
// invalid or expired cookie starts a new session. The cookie is refreshed on
// every response so its lifetime follows activity.
func Sessions(tokens TokenCodec, store SessionStore, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := resolve(tokens, store, r)

			token, err := tokens.GenerateToken(sess.ID)
			if err != nil {
				log.Printf("[session] failed to issue token: %v", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    token,
				Path:     "/",
				MaxAge:   int(ttl.Seconds()),
				HttpOnly: true,
				Secure:   r.TLS != nil,
				SameSite: http.SameSiteLaxMode,
			})

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

func resolve(tokens TokenCodec, store SessionStore, r *http.Request) *session.Session {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return store.Create()
	}

	claims, err := tokens.ValidateToken(cookie.Value)
	if err != nil {
		return store.Create()
	}

	if sess, ok := store.Get(claims.GetSessionID()); ok {
		return sess
	}
	return store.Create()
}

// GetSession returns the session attached by Sessions.
func GetSession(r *http.Request) (*session.Session, error) {
	sess, ok := r.Context().Value(sessionKey).(*session.Session)
	if !ok || sess == nil {
		return nil, ErrNoSession
	}
	return sess, nil
}

// WithSession returns a copy of ctx carrying sess.
func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}
