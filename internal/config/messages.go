package config

// Error messages used throughout the server
const (
	// ErrCapabilityUnavailable is the format string for missing service capabilities
	ErrCapabilityUnavailable = "capability %q is not available: %s"
	// MsgDiscoveryMode is returned by catalog tools when no backend is reachable
	MsgDiscoveryMode = "operating in discovery mode: backend not connected"
)
