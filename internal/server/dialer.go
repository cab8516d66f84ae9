package server

import (
	"log/slog"
	"sync"

	"github.com/basekit-labs/basekit-mcp/internal/backend"
	"github.com/basekit-labs/basekit-mcp/internal/config"
	"github.com/basekit-labs/basekit-mcp/internal/lifecycle"
)

// BackendDialer implements lifecycle.Dialer with the concrete backend client
// and retains the typed handle for tool handlers. The coordinator only sees
// the narrow lifecycle.Conn surface.
type BackendDialer struct {
	logger *slog.Logger

	mu     sync.RWMutex
	client *backend.Client
}

// NewBackendDialer creates a dialer. No connection is opened.
func NewBackendDialer(logger *slog.Logger) *BackendDialer {
	if logger == nil {
		logger = slog.Default()
	}
	return &BackendDialer{logger: logger}
}

// Dial implements lifecycle.Dialer.
func (d *BackendDialer) Dial(cfg config.Config, headers map[string]string) (lifecycle.Conn, error) {
	client, err := backend.Dial(cfg.BackendURL,
		backend.WithLogger(d.logger),
		backend.WithHeaders(headers),
	)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.client = client
	d.mu.Unlock()

	return client, nil
}

// Client returns the typed backend client once a connection attempt has
// constructed one.
func (d *BackendDialer) Client() (*backend.Client, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.client, d.client != nil
}
