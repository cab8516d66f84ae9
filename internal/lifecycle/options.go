package lifecycle

import (
	"time"

	"github.com/basekit-labs/basekit-mcp/internal/config"
)

// InitOptions controls one EnsureInitialized call. The zero value requests
// an unauthenticated, discovery-intolerant readiness check with the default
// timeout.
type InitOptions struct {
	// Timeout bounds how long this caller waits for a shared attempt.
	// The attempt itself is not cancelled; it continues in the background
	// and satisfies later callers.
	Timeout time.Duration
	// RequireAuth demands an authenticated backend connection.
	RequireAuth bool
	// AsAdmin demands admin authentication; implies RequireAuth.
	AsAdmin bool
	// AllowDiscovery marks the caller as discovery-tolerant: it accepts a
	// degraded session and must never receive an error.
	AllowDiscovery bool
}

// DefaultInitOptions returns the options an operational tool call uses.
func DefaultInitOptions() InitOptions {
	return InitOptions{
		Timeout:     config.DefaultInitTimeout,
		RequireAuth: true,
	}
}

// withDefaults fills unset fields.
func (o InitOptions) withDefaults(fallbackTimeout time.Duration) InitOptions {
	if o.Timeout <= 0 {
		o.Timeout = fallbackTimeout
	}
	if o.AsAdmin {
		o.RequireAuth = true
	}
	return o
}
