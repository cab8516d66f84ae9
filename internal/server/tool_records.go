package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/basekit-labs/basekit-mcp/internal/backend"
	"github.com/basekit-labs/basekit-mcp/internal/config"
	"github.com/basekit-labs/basekit-mcp/internal/lifecycle"
)

// recordGate gates an operational record tool and returns the typed backend
// client. requireAuth is true for operations BaseKit restricts to admins.
func (ms *MCPServer) recordGate(ctx context.Context, requireAuth bool) (*backend.Client, *mcp.CallToolResult) {
	if res := ms.gate(ctx, lifecycle.InitOptions{RequireAuth: requireAuth}); res != nil {
		return nil, res
	}

	client, ok := ms.dialer.Client()
	if !ok {
		return nil, mcp.NewToolResultError("backend connection is not available")
	}
	return client, nil
}

// runRecordTool wraps a record operation with audit logging.
func (ms *MCPServer) runRecordTool(
	ctx context.Context,
	tool string,
	args map[string]interface{},
	fn func() (any, error),
) (*mcp.CallToolResult, error) {
	start := time.Now()
	ms.auditLogger.LogToolCall(ctx, &AuditEntry{
		SessionID: ms.coordinator.SessionID(),
		ToolName:  tool,
		Arguments: args,
	})

	result, err := fn()
	if err != nil {
		ms.auditLogger.LogToolResult(ctx, &AuditEntry{
			SessionID: ms.coordinator.SessionID(),
			ToolName:  tool,
			ErrorMsg:  err.Error(),
			Duration:  time.Since(start),
		})
		return mcp.NewToolResultError(err.Error()), nil
	}

	ms.auditLogger.LogToolResult(ctx, &AuditEntry{
		SessionID: ms.coordinator.SessionID(),
		ToolName:  tool,
		Duration:  time.Since(start),
	})

	out, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// handleRecordsList implements the records.list tool
func (ms *MCPServer) handleRecordsList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	collection, err := request.RequireString("collection")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, res := ms.recordGate(ctx, false)
	if res != nil {
		return res, nil
	}

	opts := backend.ListOptions{
		Page:    request.GetInt("page", 0),
		PerPage: request.GetInt("per_page", 0),
		Filter:  request.GetString("filter", ""),
		Sort:    request.GetString("sort", ""),
	}

	return ms.runRecordTool(ctx, config.ToolRecordsList,
		map[string]interface{}{"collection": collection},
		func() (any, error) {
			return client.ListRecords(ctx, collection, opts)
		})
}

// handleRecordsGet implements the records.get tool
func (ms *MCPServer) handleRecordsGet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	collection, err := request.RequireString("collection")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, res := ms.recordGate(ctx, false)
	if res != nil {
		return res, nil
	}

	return ms.runRecordTool(ctx, config.ToolRecordsGet,
		map[string]interface{}{"collection": collection, "id": id},
		func() (any, error) {
			return client.GetRecord(ctx, collection, id)
		})
}

// handleRecordsCreate implements the records.create tool
func (ms *MCPServer) handleRecordsCreate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	collection, err := request.RequireString("collection")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, ok := request.GetArguments()["data"].(map[string]any)
	if !ok {
		return mcp.NewToolResultError("data must be an object of record fields"), nil
	}

	client, res := ms.recordGate(ctx, false)
	if res != nil {
		return res, nil
	}

	return ms.runRecordTool(ctx, config.ToolRecordsCreate,
		map[string]interface{}{"collection": collection},
		func() (any, error) {
			return client.CreateRecord(ctx, collection, data)
		})
}

// handleRecordsUpdate implements the records.update tool
func (ms *MCPServer) handleRecordsUpdate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	collection, err := request.RequireString("collection")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, ok := request.GetArguments()["data"].(map[string]any)
	if !ok {
		return mcp.NewToolResultError("data must be an object of record fields"), nil
	}

	client, res := ms.recordGate(ctx, false)
	if res != nil {
		return res, nil
	}

	return ms.runRecordTool(ctx, config.ToolRecordsUpdate,
		map[string]interface{}{"collection": collection, "id": id},
		func() (any, error) {
			return client.UpdateRecord(ctx, collection, id, data)
		})
}

// handleRecordsDelete implements the records.delete tool. Deletion is an
// admin operation and requires authentication.
func (ms *MCPServer) handleRecordsDelete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	collection, err := request.RequireString("collection")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, res := ms.recordGate(ctx, true)
	if res != nil {
		return res, nil
	}

	return ms.runRecordTool(ctx, config.ToolRecordsDelete,
		map[string]interface{}{"collection": collection, "id": id},
		func() (any, error) {
			if err := client.DeleteRecord(ctx, collection, id); err != nil {
				return nil, err
			}
			return map[string]string{"status": fmt.Sprintf("deleted %s/%s", collection, id)}, nil
		})
}
