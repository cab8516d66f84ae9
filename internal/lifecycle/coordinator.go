// Package lifecycle owns the lazy backend-connection lifecycle: resolving
// configuration on first use, collapsing concurrent initialization attempts
// into one, degrading into discovery mode when no backend is reachable, and
// surviving capture/restore across host-driven hibernation.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/basekit-labs/basekit-mcp/internal/config"
)

// initFlightKey is the single-flight key: one session, one in-flight attempt.
const initFlightKey = "init"

// Conn is the live backend connection handle as the coordinator sees it.
type Conn interface {
	Health(ctx context.Context) error
	AuthWithPassword(ctx context.Context, identity, secret string) error
}

// Dialer opens backend connections from resolved configuration. Dial must
// not block on network I/O; the first request does.
type Dialer interface {
	Dial(cfg config.Config, headers map[string]string) (Conn, error)
}

// Activator constructs an optional dependent service once the backend
// connection is up. Implementations must not panic past their boundary;
// a missing configuration or construction failure returns a nil handle and
// an error to log.
type Activator interface {
	Name() string
	TryActivate(conn Conn, cfg config.Config) (any, error)
}

// Resolver produces configuration for an initialization attempt.
// Swappable in tests; production uses config.Resolve.
type Resolver func(*config.Overrides) config.Result

// Coordinator drives one session through connect, authenticate and
// service activation. All tool handlers call EnsureInitialized before
// touching the backend or a service handle.
type Coordinator struct {
	logger     *slog.Logger
	dialer     Dialer
	resolver   Resolver
	override   *config.Overrides
	activators []Activator

	initTimeout time.Duration

	// flight collapses concurrent initialization attempts onto one
	// underlying connect/authenticate sequence. The key is cleared by
	// singleflight when the attempt returns, so a later call may retry.
	flight singleflight.Group

	mu         sync.Mutex
	sessionID  string
	cfg        *config.Config
	state      InitializationState
	headers    map[string]string
	lastActive time.Time

	// Live handles; never serialized.
	conn    Conn
	handles map[string]any
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithLogger sets the coordinator logger.
func WithLogger(logger *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithResolver replaces the configuration resolver. Used by tests.
func WithResolver(r Resolver) CoordinatorOption {
	return func(c *Coordinator) {
		c.resolver = r
	}
}

// WithOverrides supplies explicit configuration overrides applied on the
// first resolution.
func WithOverrides(o *config.Overrides) CoordinatorOption {
	return func(c *Coordinator) {
		c.override = o
	}
}

// WithActivators registers the dependent service activators.
func WithActivators(activators ...Activator) CoordinatorOption {
	return func(c *Coordinator) {
		c.activators = activators
	}
}

// WithInitTimeout sets the default caller wait bound. Non-positive values
// keep the operational default.
func WithInitTimeout(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if d > 0 {
			c.initTimeout = d
		}
	}
}

// WithSessionID fixes the session identity instead of generating one.
func WithSessionID(id string) CoordinatorOption {
	return func(c *Coordinator) {
		c.sessionID = id
	}
}

// NewCoordinator creates a coordinator for one logical instance. No
// configuration is resolved and no connection is opened; both happen lazily
// on the first EnsureInitialized call.
func NewCoordinator(dialer Dialer, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		logger:      slog.Default(),
		dialer:      dialer,
		resolver:    config.Resolve,
		initTimeout: config.DefaultInitTimeout,
		headers:     make(map[string]string),
		handles:     make(map[string]any),
		lastActive:  time.Now(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.sessionID == "" {
		c.sessionID = uuid.NewString()
	}

	return c
}

// EnsureInitialized brings the session to the readiness the caller needs,
// or reports why it cannot. Discovery-tolerant callers (AllowDiscovery)
// never receive an error: a misconfigured or unreachable backend degrades
// into discovery mode instead.
func (c *Coordinator) EnsureInitialized(ctx context.Context, opts InitOptions) error {
	opts = opts.withDefaults(c.initTimeout)

	c.mu.Lock()
	c.lastActive = time.Now()

	// A session already degraded stays degraded for callers that tolerate
	// it; only a discovery-tolerant caller forces a fresh attempt.
	if c.state.InDiscoveryMode() && !opts.AllowDiscovery {
		c.mu.Unlock()
		return nil
	}

	// Fast path: state already satisfies the request.
	if c.state.Satisfies(opts.RequireAuth) && c.conn != nil {
		c.mu.Unlock()
		return nil
	}

	// Backend is up but unauthenticated: auth is not retried per call.
	// The failed or missing credential was recorded during the attempt.
	if c.state.BackendInitialized && c.conn != nil && opts.RequireAuth {
		err := c.authErrorLocked()
		c.mu.Unlock()
		return err
	}

	// Configuration is resolved at most once per session, even across
	// hibernation. Resolution is synchronous and performs no I/O.
	if !c.state.ConfigLoaded {
		res := c.resolver(c.override)
		c.state.ConfigLoaded = true
		c.state.HasValidConfig = res.Valid
		if !res.Valid {
			c.state.LastError = res.ErrText
			c.logger.Warn("configuration invalid; entering discovery mode", "reason", res.ErrText)
			c.mu.Unlock()
			if opts.AllowDiscovery {
				return nil
			}
			return newInitError(KindConfiguration, res.ErrText, nil)
		}
		cfg := res.Config
		c.cfg = &cfg
	}
	c.mu.Unlock()

	// Single-flight: every caller that reaches this point attaches to the
	// same in-flight attempt. The attempt runs on a background context so
	// a timed-out caller does not cancel it for everyone else.
	ch := c.flight.DoChan(initFlightKey, func() (any, error) {
		return nil, c.runInitAttempt(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			if opts.AllowDiscovery {
				return nil
			}
			return res.Err
		}

		c.mu.Lock()
		authed := c.state.IsAuthenticated
		var authErr error
		if opts.RequireAuth && !authed {
			authErr = c.authErrorLocked()
		}
		c.mu.Unlock()
		return authErr

	case <-time.After(opts.Timeout):
		// The shared attempt keeps running and will satisfy later calls.
		if opts.AllowDiscovery {
			return nil
		}
		return newInitError(KindConnectivity,
			fmt.Sprintf("initialization still pending after %s", opts.Timeout), nil)

	case <-ctx.Done():
		if opts.AllowDiscovery {
			return nil
		}
		return newInitError(KindConnectivity, "caller cancelled while awaiting initialization", ctx.Err())
	}
}

// authErrorLocked builds the authentication error for the current state.
// Caller holds c.mu.
func (c *Coordinator) authErrorLocked() error {
	if c.cfg == nil || !c.cfg.HasAdminCredentials() {
		return newInitError(KindAuthentication,
			fmt.Sprintf("admin credentials are not configured (%s/%s)",
				config.EnvAdminEmail, config.EnvAdminPassword), nil)
	}
	msg := "admin authentication failed"
	if c.state.LastError != "" {
		msg = fmt.Sprintf("admin authentication failed: %s", c.state.LastError)
	}
	return newInitError(KindAuthentication, msg, nil)
}

// runInitAttempt performs the staged attempt: connect, optionally
// authenticate, activate dependent services. Exactly one runs at a time.
func (c *Coordinator) runInitAttempt(ctx context.Context) error {
	c.mu.Lock()
	// A racing caller may attach after a previous attempt completed;
	// nothing left to do then.
	if c.state.BackendInitialized && c.conn != nil {
		c.mu.Unlock()
		return nil
	}
	cfg := c.cfg
	headers := make(map[string]string, len(c.headers))
	for k, v := range c.headers {
		headers[k] = v
	}
	c.mu.Unlock()

	if cfg == nil {
		err := newInitError(KindConfiguration, "no configuration resolved for this session", nil)
		c.recordError(err)
		return err
	}

	conn, err := c.dialer.Dial(*cfg, headers)
	if err != nil {
		ierr := newInitError(KindConnectivity, "backend connection failed", err)
		c.recordError(ierr)
		c.logger.Error("backend connection failed; entering discovery mode", "error", err)
		return ierr
	}

	// The liveness probe is best effort: some deployments gate the health
	// endpoint behind auth, so a probe failure does not abort the attempt.
	if err := conn.Health(ctx); err != nil {
		c.logger.Warn("backend health probe failed; continuing", "error", err)
	}

	authed := false
	if cfg.HasAdminCredentials() {
		if err := conn.AuthWithPassword(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			// Unauthenticated operations may still succeed; record and move on.
			c.logger.Warn("admin authentication failed; continuing unauthenticated", "error", err)
			c.mu.Lock()
			c.state.LastError = err.Error()
			c.mu.Unlock()
		} else {
			authed = true
		}
	}

	c.mu.Lock()
	c.conn = conn
	c.state.BackendInitialized = true
	c.state.IsAuthenticated = authed
	c.mu.Unlock()

	c.activateServices(conn, *cfg)

	c.mu.Lock()
	c.state.ServicesInitialized = true
	c.mu.Unlock()

	c.logger.Info("backend initialized",
		"authenticated", authed,
		"services", len(c.activators),
	)

	return nil
}

// activateServices runs every activator. Each is independently optional:
// a failure is logged and reported later as a capability gap, never as an
// initialization failure.
func (c *Coordinator) activateServices(conn Conn, cfg config.Config) {
	for _, a := range c.activators {
		handle, err := c.tryActivate(a, conn, cfg)
		if err != nil {
			c.logger.Warn("service activation failed", "service", a.Name(), "reason", err)
			continue
		}
		if handle == nil {
			continue
		}

		c.mu.Lock()
		c.handles[a.Name()] = handle
		c.mu.Unlock()
		c.logger.Info("service activated", "service", a.Name())
	}
}

// tryActivate shields the coordinator from a panicking activator.
func (c *Coordinator) tryActivate(a Activator, conn Conn, cfg config.Config) (handle any, err error) {
	defer func() {
		if r := recover(); r != nil {
			handle = nil
			err = fmt.Errorf("activator panicked: %v", r)
		}
	}()
	return a.TryActivate(conn, cfg)
}

// recordError stores the attempt failure on the state and clears any stale
// readiness claim. An attempt only runs while no live connection exists, so
// a restored session whose snapshot claimed an initialized backend degrades
// into discovery mode here exactly as a cold start would.
func (c *Coordinator) recordError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.LastError = err.Error()
	c.state.BackendInitialized = false
	c.state.IsAuthenticated = false
	c.state.ServicesInitialized = false
}

// State returns a copy of the initialization state.
func (c *Coordinator) State() InitializationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// InDiscoveryMode reports whether the session is degraded.
func (c *Coordinator) InDiscoveryMode() bool {
	return c.State().InDiscoveryMode()
}

// Conn returns the live backend connection, if one exists.
func (c *Coordinator) Conn() (Conn, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn, c.conn != nil
}

// Capability returns the handle of an activated dependent service. A false
// result means the capability is unavailable for this session.
func (c *Coordinator) Capability(name string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.handles[name]
	return h, ok
}

// SessionID returns the session identity.
func (c *Coordinator) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Touch refreshes the activity timestamp. Every tool call does this.
func (c *Coordinator) Touch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastActive = time.Now()
}

// LastActive returns the last activity timestamp.
func (c *Coordinator) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

// SetHeader records a custom header applied to backend requests and carried
// in captured sessions.
func (c *Coordinator) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers[key] = value
}

// Capture snapshots the session for the host's durable store. It refreshes
// the activity timestamp and deep-copies mutable fields; live handles are
// deliberately excluded.
func (c *Coordinator) Capture() Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastActive = time.Now()

	s := Session{
		ID:         c.sessionID,
		State:      c.state,
		LastActive: c.lastActive,
	}
	if c.cfg != nil {
		cfg := *c.cfg
		s.Config = &cfg
	}
	s.CustomHeaders = make(map[string]string, len(c.headers))
	for k, v := range c.headers {
		s.CustomHeaders[k] = v
	}
	return s
}

// Restore replaces the in-memory session state wholesale. It does not
// re-run initialization and does not create a live connection; the
// hibernation manager re-establishes one lazily on first use.
func (c *Coordinator) Restore(s Session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s.ID != "" {
		c.sessionID = s.ID
	}
	c.state = s.State
	c.lastActive = s.LastActive
	if s.Config != nil {
		cfg := *s.Config
		c.cfg = &cfg
	} else {
		c.cfg = nil
	}
	c.headers = make(map[string]string, len(s.CustomHeaders))
	for k, v := range s.CustomHeaders {
		c.headers[k] = v
	}
}
