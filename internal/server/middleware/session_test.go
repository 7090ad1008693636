package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-screener/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTokenCodec maps opaque tokens to session IDs.
type testTokenCodec struct {
	tokens map[string]uuid.UUID
}

func newTestTokenCodec() *testTokenCodec {
	return &testTokenCodec{tokens: make(map[string]uuid.UUID)}
}

func (c *testTokenCodec) GenerateToken(id uuid.UUID) (string, error) {
	token := "token-" + id.String()
	c.tokens[token] = id
	return token, nil
}

func (c *testTokenCodec) ValidateToken(tokenString string) (SessionIDGetter, error) {
	id, ok := c.tokens[tokenString]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return testClaims(id), nil
}

type testClaims uuid.UUID

func (c testClaims) GetSessionID() uuid.UUID {
	return uuid.UUID(c)
}

type captured struct {
	sess *session.Session
}

func serve(t *testing.T, codec TokenCodec, store SessionStore, cookie *http.Cookie) (*httptest.ResponseRecorder, *captured) {
	t.Helper()
	got := &captured{}
	handler := Sessions(codec, store, time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := GetSession(r)
		require.NoError(t, err)
		got.sess = sess
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w, got
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatalf("response has no %s cookie", CookieName)
	return nil
}

func TestSessions_NewVisitor(t *testing.T) {
	store := session.NewManager(time.Hour)

	w, got := serve(t, newTestTokenCodec(), store, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got.sess)
	assert.Equal(t, 1, store.Len())

	cookie := sessionCookie(t, w)
	assert.Equal(t, "token-"+got.sess.ID.String(), cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 3600, cookie.MaxAge)
}

func TestSessions_ReturningVisitor(t *testing.T) {
	store := session.NewManager(time.Hour)
	codec := newTestTokenCodec()

	w, first := serve(t, codec, store, nil)
	_, second := serve(t, codec, store, sessionCookie(t, w))

	assert.Same(t, first.sess, second.sess)
	assert.Equal(t, 1, store.Len())
}

func TestSessions_InvalidToken(t *testing.T) {
	store := session.NewManager(time.Hour)

	_, got := serve(t, newTestTokenCodec(), store, &http.Cookie{Name: CookieName, Value: "forged"})

	require.NotNil(t, got.sess)
	assert.Equal(t, 1, store.Len(), "a fresh session is started")
}

func TestSessions_EndedSession(t *testing.T) {
	store := session.NewManager(time.Hour)
	codec := newTestTokenCodec()

	w, first := serve(t, codec, store, nil)
	store.End(first.sess.ID)

	_, second := serve(t, codec, store, sessionCookie(t, w))
	assert.NotEqual(t, first.sess.ID, second.sess.ID)
}

func TestGetSession_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, err := GetSession(req)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestWithSession(t *testing.T) {
	sess := session.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithSession(req.Context(), sess))

	got, err := GetSession(req)
	require.NoError(t, err)
	assert.Same(t, sess, got)
}
