package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/basekit-labs/basekit-mcp/internal/config"
	"github.com/basekit-labs/basekit-mcp/internal/lifecycle"
)

// handleCollectionsList implements the collections.list tool. It is the
// catalog path: it answers in discovery mode and never propagates an error
// to the protocol layer.
func (ms *MCPServer) handleCollectionsList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	ms.auditLogger.LogToolCall(ctx, &AuditEntry{
		SessionID: ms.coordinator.SessionID(),
		ToolName:  config.ToolCollectionsList,
	})

	_ = ms.coordinator.EnsureInitialized(ctx, lifecycle.InitOptions{
		RequireAuth:    false,
		AllowDiscovery: true,
	})

	client, ok := ms.dialer.Client()
	if !ok || ms.coordinator.InDiscoveryMode() {
		return mcp.NewToolResultText(config.MsgDiscoveryMode), nil
	}

	collections, err := client.ListCollections(ctx)
	if err != nil {
		// Reduced capability, not a failure: the catalog answer degrades.
		ms.logger.Warn("collection listing unavailable", "error", err)
		return mcp.NewToolResultText(config.MsgDiscoveryMode), nil
	}

	out, err := json.Marshal(collections)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ms.auditLogger.LogToolResult(ctx, &AuditEntry{
		SessionID: ms.coordinator.SessionID(),
		ToolName:  config.ToolCollectionsList,
		Duration:  time.Since(start),
	})
	return mcp.NewToolResultText(string(out)), nil
}
