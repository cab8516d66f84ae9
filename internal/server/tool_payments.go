package server

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stripe/stripe-go/v82"
	stripeclient "github.com/stripe/stripe-go/v82/client"

	"github.com/basekit-labs/basekit-mcp/internal/config"
	"github.com/basekit-labs/basekit-mcp/internal/lifecycle"
	"github.com/basekit-labs/basekit-mcp/internal/services"
)

// paymentsGate gates a payment tool and returns the Stripe client. The
// payment capability is independent of backend authentication.
func (ms *MCPServer) paymentsGate(ctx context.Context) (*stripeclient.API, *mcp.CallToolResult) {
	if res := ms.gate(ctx, lifecycle.InitOptions{RequireAuth: false}); res != nil {
		return nil, res
	}

	handle, ok := ms.coordinator.Capability(services.CapabilityPayments)
	if !ok {
		return nil, mcp.NewToolResultError(fmt.Sprintf(config.ErrCapabilityUnavailable,
			services.CapabilityPayments, "payment processor was not activated for this session"))
	}

	sc, ok := handle.(*stripeclient.API)
	if !ok {
		return nil, mcp.NewToolResultError("payment capability holds an unexpected handle type")
	}
	return sc, nil
}

// handlePaymentsCreateCustomer implements the payments.create_customer tool
func (ms *MCPServer) handlePaymentsCreateCustomer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	email, err := request.RequireString("email")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name := request.GetString("name", "")

	sc, res := ms.paymentsGate(ctx)
	if res != nil {
		return res, nil
	}

	start := time.Now()
	ms.auditLogger.LogToolCall(ctx, &AuditEntry{
		SessionID: ms.coordinator.SessionID(),
		ToolName:  config.ToolPaymentsCreateCustomer,
	})

	params := &stripe.CustomerParams{Email: stripe.String(email)}
	if name != "" {
		params.Name = stripe.String(name)
	}

	customer, err := sc.Customers.New(params)
	if err != nil {
		ms.auditLogger.LogToolResult(ctx, &AuditEntry{
			SessionID: ms.coordinator.SessionID(),
			ToolName:  config.ToolPaymentsCreateCustomer,
			ErrorMsg:  err.Error(),
			Duration:  time.Since(start),
		})
		return mcp.NewToolResultError(err.Error()), nil
	}

	ms.auditLogger.LogToolResult(ctx, &AuditEntry{
		SessionID: ms.coordinator.SessionID(),
		ToolName:  config.ToolPaymentsCreateCustomer,
		Duration:  time.Since(start),
	})
	return mcp.NewToolResultText(fmt.Sprintf("created customer %s", customer.ID)), nil
}

// handlePaymentsCreateLink implements the payments.create_payment_link tool
func (ms *MCPServer) handlePaymentsCreateLink(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	priceID, err := request.RequireString("price_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	quantity := request.GetInt("quantity", 1)

	sc, res := ms.paymentsGate(ctx)
	if res != nil {
		return res, nil
	}

	start := time.Now()
	ms.auditLogger.LogToolCall(ctx, &AuditEntry{
		SessionID: ms.coordinator.SessionID(),
		ToolName:  config.ToolPaymentsCreateLink,
	})

	link, err := sc.PaymentLinks.New(&stripe.PaymentLinkParams{
		LineItems: []*stripe.PaymentLinkLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(int64(quantity)),
			},
		},
	})
	if err != nil {
		ms.auditLogger.LogToolResult(ctx, &AuditEntry{
			SessionID: ms.coordinator.SessionID(),
			ToolName:  config.ToolPaymentsCreateLink,
			ErrorMsg:  err.Error(),
			Duration:  time.Since(start),
		})
		return mcp.NewToolResultError(err.Error()), nil
	}

	ms.auditLogger.LogToolResult(ctx, &AuditEntry{
		SessionID: ms.coordinator.SessionID(),
		ToolName:  config.ToolPaymentsCreateLink,
		Duration:  time.Since(start),
	})
	return mcp.NewToolResultText(link.URL), nil
}
