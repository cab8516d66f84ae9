package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/basekit-labs/basekit-mcp/internal/lifecycle"
	"github.com/basekit-labs/basekit-mcp/internal/services"
)

// gate runs the lifecycle gate for an operational tool call. A non-nil
// result carries the tool error naming the unmet precondition.
func (ms *MCPServer) gate(ctx context.Context, opts lifecycle.InitOptions) *mcp.CallToolResult {
	if err := ms.coordinator.EnsureInitialized(ctx, opts); err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return nil
}

// statusResponse is the JSON shape of the status tool result.
type statusResponse struct {
	SessionID     string                        `json:"session_id"`
	State         lifecycle.InitializationState `json:"initialization_state"`
	DiscoveryMode bool                          `json:"discovery_mode"`
	Capabilities  map[string]bool               `json:"capabilities"`
	LastActive    time.Time                     `json:"last_active"`
}

// handleStatus implements the status tool. Discovery-sensitive: it reports
// reduced capability instead of failing.
func (ms *MCPServer) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// Never errors: discovery-tolerant callers always succeed.
	_ = ms.coordinator.EnsureInitialized(ctx, lifecycle.InitOptions{
		RequireAuth:    false,
		AllowDiscovery: true,
	})

	state := ms.coordinator.State()
	caps := make(map[string]bool, 2)
	for _, name := range []string{services.CapabilityPayments, services.CapabilityEmail} {
		_, ok := ms.coordinator.Capability(name)
		caps[name] = ok
	}

	resp := statusResponse{
		SessionID:     ms.coordinator.SessionID(),
		State:         state,
		DiscoveryMode: state.InDiscoveryMode(),
		Capabilities:  caps,
		LastActive:    ms.coordinator.LastActive(),
	}

	out, err := json.Marshal(resp)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
