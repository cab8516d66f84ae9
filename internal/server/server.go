// Package server wires the MCP tool surface to the lifecycle coordinator.
// Every tool handler gates on EnsureInitialized before touching the backend
// or a dependent service handle; catalog-style tools tolerate discovery mode
// and never propagate an error to the protocol layer.
package server

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/basekit-labs/basekit-mcp/internal/config"
	"github.com/basekit-labs/basekit-mcp/internal/lifecycle"
	"github.com/basekit-labs/basekit-mcp/internal/services"
	"github.com/basekit-labs/basekit-mcp/internal/tools"
)

// MCPServer wraps the mcp-go server with the lifecycle gate and tool handlers
type MCPServer struct {
	server       *server.MCPServer
	coordinator  *lifecycle.Coordinator
	hibernation  *lifecycle.HibernationManager
	dialer       *BackendDialer
	auditLogger  *AuditLogger
	toolRegistry *tools.ToolHandlerRegistry
	logger       *slog.Logger
}

// Config holds configuration for the MCP server
type Config struct {
	Name    string
	Version string
	// Overrides carries explicit configuration taking precedence over the
	// environment. Nil means environment only.
	Overrides *config.Overrides
	// SessionID fixes the session identity when the host assigns one.
	SessionID string
	// Lifecycle carries coordinator timing configuration.
	Lifecycle config.LifecycleConfig
}

// NewMCPServer creates and configures a new MCP server. Construction is
// cheap and performs no network I/O: the hosting environment scans the tool
// catalog on startup and that scan must not block on the backend.
func NewMCPServer(cfg Config, logger *slog.Logger) *MCPServer {
	if logger == nil {
		logger = slog.Default()
	}

	mcpServer := server.NewMCPServer(
		cfg.Name,
		cfg.Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	dialer := NewBackendDialer(logger)

	coordOpts := []lifecycle.CoordinatorOption{
		lifecycle.WithLogger(logger),
		lifecycle.WithInitTimeout(cfg.Lifecycle.InitTimeout),
		lifecycle.WithActivators(
			services.NewPaymentsActivator(logger),
			services.NewEmailActivator(logger),
		),
	}
	if cfg.Overrides != nil {
		coordOpts = append(coordOpts, lifecycle.WithOverrides(cfg.Overrides))
	}
	if cfg.SessionID != "" {
		coordOpts = append(coordOpts, lifecycle.WithSessionID(cfg.SessionID))
	}

	coordinator := lifecycle.NewCoordinator(dialer, coordOpts...)
	hibernation := lifecycle.NewHibernationManager(coordinator, cfg.Lifecycle.HibernationThreshold)

	ms := &MCPServer{
		server:      mcpServer,
		coordinator: coordinator,
		hibernation: hibernation,
		dialer:      dialer,
		auditLogger: NewAuditLogger(logger),
		logger:      logger,
	}

	ms.toolRegistry = tools.NewToolHandlerRegistry(map[string]tools.ToolHandlerFunc{
		config.ToolStatus:                  ms.handleStatus,
		config.ToolCollectionsList:         ms.handleCollectionsList,
		config.ToolRecordsList:             ms.handleRecordsList,
		config.ToolRecordsGet:              ms.handleRecordsGet,
		config.ToolRecordsCreate:           ms.handleRecordsCreate,
		config.ToolRecordsUpdate:           ms.handleRecordsUpdate,
		config.ToolRecordsDelete:           ms.handleRecordsDelete,
		config.ToolPaymentsCreateCustomer:  ms.handlePaymentsCreateCustomer,
		config.ToolPaymentsCreateLink:      ms.handlePaymentsCreateLink,
		config.ToolEmailSend:               ms.handleEmailSend,
	})

	ms.registerTools()

	return ms
}

// Coordinator exposes the lifecycle coordinator for the hosting adapter.
func (ms *MCPServer) Coordinator() *lifecycle.Coordinator {
	return ms.coordinator
}

// Hibernation exposes the hibernation manager for the hosting adapter.
func (ms *MCPServer) Hibernation() *lifecycle.HibernationManager {
	return ms.hibernation
}

// Server returns the underlying mcp-go server for serving
func (ms *MCPServer) Server() *server.MCPServer {
	return ms.server
}
