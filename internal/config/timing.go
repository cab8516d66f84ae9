package config

import "time"

// Default timing configurations used throughout the server
const (
	// DefaultInitTimeout bounds how long a caller waits for a shared
	// initialization attempt before detaching from it
	DefaultInitTimeout = 10 * time.Second

	// DefaultHibernationThreshold is how long a session may be idle before
	// it is considered dormant
	DefaultHibernationThreshold = 30 * time.Minute

	// DefaultHibernationSweepInterval is how often the hibernation sweep
	// checks for dormant sessions
	DefaultHibernationSweepInterval = 5 * time.Minute

	// DefaultBackendRequestTimeout is the per-request timeout for backend
	// API calls
	DefaultBackendRequestTimeout = 30 * time.Second

	// DefaultBackendRetryMax is the retry budget for backend API calls
	DefaultBackendRetryMax = 2
)

// LifecycleConfig holds configuration for the lifecycle coordinator
type LifecycleConfig struct {
	// InitTimeout is the default caller wait bound for initialization
	InitTimeout time.Duration
	// HibernationThreshold is the idle duration before hibernation
	HibernationThreshold time.Duration
}

// DefaultLifecycleConfig returns default configuration for the coordinator
func DefaultLifecycleConfig() LifecycleConfig {
	return LifecycleConfig{
		InitTimeout:          DefaultInitTimeout,
		HibernationThreshold: DefaultHibernationThreshold,
	}
}
