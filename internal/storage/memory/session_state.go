// Package memory provides in-memory storage implementations. The session
// store stands in for the host runtime's durable store during development
// and testing; a hosted deployment persists captured sessions elsewhere.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/basekit-labs/basekit-mcp/internal/lifecycle"
)

var (
	errSessionNil     = errors.New("session cannot be nil")
	errSessionIDEmpty = errors.New("session ID cannot be empty")
)

// SessionStateStorage implements lifecycle.SessionStateStorage using an
// in-memory map keyed by session ID.
type SessionStateStorage struct {
	mu       sync.RWMutex
	sessions map[string]*lifecycle.Session
}

// NewSessionStateStorage creates an empty in-memory session store.
func NewSessionStateStorage() *SessionStateStorage {
	return &SessionStateStorage{
		sessions: make(map[string]*lifecycle.Session),
	}
}

// SaveSession upserts a captured session snapshot.
func (s *SessionStateStorage) SaveSession(ctx context.Context, session *lifecycle.Session) error {
	if session == nil {
		return errSessionNil
	}
	if session.ID == "" {
		return errSessionIDEmpty
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy to prevent external modifications
	s.sessions[session.ID] = cloneSession(session)
	return nil
}

// LoadSession retrieves a session snapshot by ID. A missing session returns
// nil without error; the host treats that as a cold start.
func (s *SessionStateStorage) LoadSession(ctx context.Context, sessionID string) (*lifecycle.Session, error) {
	if sessionID == "" {
		return nil, errSessionIDEmpty
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	session, exists := s.sessions[sessionID]
	if !exists {
		return nil, nil
	}
	return cloneSession(session), nil
}

// DeleteSession removes a session snapshot. Idempotent.
func (s *SessionStateStorage) DeleteSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return errSessionIDEmpty
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// ListSessions retrieves all stored session snapshots.
func (s *SessionStateStorage) ListSessions(ctx context.Context) ([]*lifecycle.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*lifecycle.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		result = append(result, cloneSession(session))
	}
	return result, nil
}

// cloneSession deep-copies a session so callers cannot mutate stored state.
func cloneSession(session *lifecycle.Session) *lifecycle.Session {
	out := *session
	if session.Config != nil {
		cfg := *session.Config
		out.Config = &cfg
	}
	out.CustomHeaders = make(map[string]string, len(session.CustomHeaders))
	for k, v := range session.CustomHeaders {
		out.CustomHeaders[k] = v
	}
	return &out
}
