package lifecycle

import (
	"context"
	"time"

	"github.com/basekit-labs/basekit-mcp/internal/config"
)

// Session is the serializable snapshot of a running instance: everything the
// hosting runtime needs to persist before evicting an idle instance and to
// hand back when it resumes one. Live resource handles (the backend
// connection, service handles, any in-flight initialization) are never part
// of a Session.
type Session struct {
	ID            string              `json:"sessionId,omitempty"`
	Config        *config.Config      `json:"configuration,omitempty"`
	State         InitializationState `json:"initializationState"`
	CustomHeaders map[string]string   `json:"customHeaders"`
	LastActive    time.Time           `json:"lastActiveTime"`
}

// SessionStateStorage is the durable store the hosting runtime persists
// captured sessions into. Defined here to keep storage implementations
// decoupled from the coordinator (implementations live under
// internal/storage).
type SessionStateStorage interface {
	SaveSession(ctx context.Context, session *Session) error
	LoadSession(ctx context.Context, sessionID string) (*Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
	ListSessions(ctx context.Context) ([]*Session, error)
}
