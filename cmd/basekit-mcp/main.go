package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/basekit-labs/basekit-mcp/internal/config"
	"github.com/basekit-labs/basekit-mcp/internal/server"
	"github.com/basekit-labs/basekit-mcp/internal/storage/memory"
)

const (
	serverName    = "basekit-mcp"
	serverVersion = "0.1.0"
)

var (
	version  = flag.Bool("version", false, "Print version and exit")
	debug    = flag.Bool("debug", false, "Enable debug logging")
	httpMode = flag.Bool("http", false, "Enable HTTP/SSE transport instead of stdio")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", serverName, serverVersion)
		os.Exit(0)
	}

	// Setup structured logging. Stdout belongs to the stdio transport.
	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Read HTTP port from environment (for HTTP/SSE mode)
	httpPort := os.Getenv("HTTP_PORT")
	if httpPort == "" {
		httpPort = "8080"
	}

	logger.Info("Starting BaseKit MCP server",
		"version", serverVersion,
		"debug", *debug,
		"http_mode", *httpMode,
		"http_port", httpPort,
	)

	cfg := server.Config{
		Name:      serverName,
		Version:   serverVersion,
		Lifecycle: config.DefaultLifecycleConfig(),
	}

	// Construction is cheap: no configuration is resolved and no backend
	// connection is opened until the first tool call needs one. Catalog
	// scans by the hosting environment stay network-free.
	mcpServer := server.NewMCPServer(cfg, logger)

	logger.Info("MCP server initialized",
		"name", cfg.Name,
		"version", cfg.Version,
		"session_id", mcpServer.Coordinator().SessionID(),
	)

	// In-memory stand-in for the host's durable session store. A hosted
	// deployment captures into whatever store the runtime provides.
	sessionStore := memory.NewSessionStateStorage()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start MCP server in goroutine
	go func() {
		if *httpMode {
			if err := mcpServer.ServeHTTPWithLogger(":"+httpPort, logger); err != nil {
				logger.Error("MCP server error", "error", err)
				cancel()
			}
		} else {
			if err := mcpServer.ServeWithLogger(logger); err != nil {
				logger.Error("MCP server error", "error", err)
				cancel()
			}
		}
	}()

	// Hibernation sweep: capture dormant sessions so the host-side store
	// holds a fresh snapshot before any eviction.
	go func() {
		ticker := time.NewTicker(config.DefaultHibernationSweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if !mcpServer.Hibernation().ShouldHibernate() {
					continue
				}
				session := mcpServer.Coordinator().Capture()
				if err := sessionStore.SaveSession(ctx, &session); err != nil {
					logger.Error("failed to capture dormant session", "error", err)
					continue
				}
				logger.Info("captured dormant session", "session_id", session.ID)
			case <-ctx.Done():
				return
			}
		}
	}()

	// Wait for shutdown signal
	select {
	case <-sigChan:
		logger.Info("Received shutdown signal")
	case <-ctx.Done():
		logger.Info("Context canceled")
	}

	// Final capture so a restart can resume where this instance stopped.
	session := mcpServer.Coordinator().Capture()
	if err := sessionStore.SaveSession(context.Background(), &session); err != nil {
		logger.Error("failed to capture session on shutdown", "error", err)
	}

	logger.Info("Shutdown complete")
}
