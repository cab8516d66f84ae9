package server

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/wneessen/go-mail"

	"github.com/basekit-labs/basekit-mcp/internal/config"
	"github.com/basekit-labs/basekit-mcp/internal/lifecycle"
	"github.com/basekit-labs/basekit-mcp/internal/services"
)

// emailGate gates the email tool and returns the mail service handle.
func (ms *MCPServer) emailGate(ctx context.Context) (*services.EmailService, *mcp.CallToolResult) {
	if res := ms.gate(ctx, lifecycle.InitOptions{RequireAuth: false}); res != nil {
		return nil, res
	}

	handle, ok := ms.coordinator.Capability(services.CapabilityEmail)
	if !ok {
		return nil, mcp.NewToolResultError(fmt.Sprintf(config.ErrCapabilityUnavailable,
			services.CapabilityEmail, "email service was not activated for this session"))
	}

	svc, ok := handle.(*services.EmailService)
	if !ok {
		return nil, mcp.NewToolResultError("email capability holds an unexpected handle type")
	}
	return svc, nil
}

// handleEmailSend implements the email.send tool
func (ms *MCPServer) handleEmailSend(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	to, err := request.RequireString("to")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	subject, err := request.RequireString("subject")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := request.RequireString("body")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	svc, res := ms.emailGate(ctx)
	if res != nil {
		return res, nil
	}

	start := time.Now()
	ms.auditLogger.LogToolCall(ctx, &AuditEntry{
		SessionID: ms.coordinator.SessionID(),
		ToolName:  config.ToolEmailSend,
	})

	msg := mail.NewMsg()
	if err := msg.From(svc.From); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid sender address: %v", err)), nil
	}
	if err := msg.To(to); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid recipient address: %v", err)), nil
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := svc.Client.DialAndSendWithContext(ctx, msg); err != nil {
		ms.auditLogger.LogToolResult(ctx, &AuditEntry{
			SessionID: ms.coordinator.SessionID(),
			ToolName:  config.ToolEmailSend,
			ErrorMsg:  err.Error(),
			Duration:  time.Since(start),
		})
		return mcp.NewToolResultError(err.Error()), nil
	}

	ms.auditLogger.LogToolResult(ctx, &AuditEntry{
		SessionID: ms.coordinator.SessionID(),
		ToolName:  config.ToolEmailSend,
		Duration:  time.Since(start),
	})
	return mcp.NewToolResultText(fmt.Sprintf("email sent to %s", to)), nil
}
