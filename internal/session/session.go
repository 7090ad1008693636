// Package session holds the per-browser state of the screener: the API key,
// the conversation log and the model client built from that key.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-screener/internal/llm"
)

// ErrMissingCredential is returned when no API key has been supplied.
var ErrMissingCredential = errors.New("please add your Google AI API key to continue")

// ErrBusy is returned when an analysis is already running for the session.
var ErrBusy = errors.New("an analysis is already in progress for this session")

// Role identifies the author of a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the session log.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ClientFactory builds a model client for an API key.
type ClientFactory func(ctx context.Context, apiKey string) (llm.Client, error)

// Session is the isolated state of one reviewer.
// All methods are safe for concurrent use.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mu         sync.Mutex
	credential string
	messages   []Message
	client     llm.Client
	retired    []llm.Client // replaced while a cycle was using them; closed on release
	busy       bool
	flash      string
	lastSeen   time.Time
	closed     bool
}

// New returns an empty session with a fresh ID.
func New() *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.New(),
		CreatedAt: now,
		lastSeen:  now,
	}
}

// SetCredential stores the API key. An empty key clears it.
// Changing the key discards any client built from the previous one.
func (s *Session) SetCredential(key string) {
	key = strings.TrimSpace(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	if key == s.credential {
		return
	}
	s.credential = key
	if s.client != nil {
		_ = s.retire(s.client)
		s.client = nil
	}
}

// retire closes c, or defers that to the end of the running cycle.
// Callers hold s.mu.
func (s *Session) retire(c llm.Client) error {
	if s.busy {
		s.retired = append(s.retired, c)
		return nil
	}
	return c.Close()
}

// Credential returns the API key or ErrMissingCredential.
func (s *Session) Credential() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.credential == "" {
		return "", ErrMissingCredential
	}
	return s.credential, nil
}

// HasCredential reports whether an API key is set.
func (s *Session) HasCredential() bool {
	_, err := s.Credential()
	return err == nil
}

// Append adds messages to the end of the log in order.
// A closed session ignores it.
func (s *Session) Append(msgs ...Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	now := time.Now()
	for _, m := range msgs {
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		s.messages = append(s.messages, m)
	}
}

// Messages returns a copy of the log, oldest first.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Begin marks the session busy for one analysis cycle.
// The returned release func must be called when the cycle ends.
func (s *Session) Begin() (release func(), err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return nil, ErrBusy
	}
	s.busy = true

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.busy = false
			retired := s.retired
			s.retired = nil
			s.mu.Unlock()

			for _, c := range retired {
				_ = c.Close()
			}
		})
	}, nil
}

// Client returns the session's model client, building it with factory on
// first use. The client lives until the key changes or the session closes.
func (s *Session) Client(ctx context.Context, factory ClientFactory) (llm.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}
	if s.credential == "" {
		return nil, ErrMissingCredential
	}

	client, err := factory(ctx, s.credential)
	if err != nil {
		return nil, err
	}
	s.client = client
	return client, nil
}

// SetFlash stores a one-shot message for the next page render.
func (s *Session) SetFlash(msg string) {
	s.mu.Lock()
	s.flash = msg
	s.mu.Unlock()
}

// TakeFlash returns and clears the pending flash message.
func (s *Session) TakeFlash() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.flash
	s.flash = ""
	return msg
}

// Touch records activity on the session.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// LastSeen returns the time of the last recorded activity.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Close discards the log and the key and releases the model client.
// A client in use by a running cycle is closed when that cycle ends.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.credential = ""
	s.messages = nil
	s.flash = ""

	if s.client == nil {
		return nil
	}
	err := s.retire(s.client)
	s.client = nil
	return err
}
