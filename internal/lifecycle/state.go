package lifecycle

// InitializationState tracks how far a session has progressed through the
// connect, authenticate and service-activation stages. It is owned
// exclusively by one Coordinator; the session store only reads or replaces
// the whole value on capture/restore.
type InitializationState struct {
	ConfigLoaded        bool   `json:"configLoaded"`
	HasValidConfig      bool   `json:"hasValidConfig"`
	BackendInitialized  bool   `json:"backendInitialized"`
	IsAuthenticated     bool   `json:"isAuthenticated"`
	ServicesInitialized bool   `json:"servicesInitialized"`
	LastError           string `json:"lastError,omitempty"`
}

// InDiscoveryMode reports whether the session operates in the degraded mode
// that answers catalog queries without a backend connection. The flag is
// derived: an invalid configuration, or a failed connection attempt that was
// degraded instead of raised, puts the session in discovery mode.
func (s InitializationState) InDiscoveryMode() bool {
	if !s.ConfigLoaded {
		return false
	}
	if !s.HasValidConfig {
		return true
	}
	return !s.BackendInitialized && s.LastError != ""
}

// Satisfies reports whether the state already meets a caller's readiness
// requirement. This is the fast path taken by every tool call after the
// first successful initialization.
func (s InitializationState) Satisfies(requireAuth bool) bool {
	if !s.BackendInitialized {
		return false
	}
	return !requireAuth || s.IsAuthenticated
}
