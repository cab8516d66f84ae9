package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/basekit-labs/basekit-mcp/internal/config"
)

// registerTools registers all MCP tools with handlers via the tool registry
func (ms *MCPServer) registerTools() {
	// helper to register tool using registry
	add := func(tool mcp.Tool, name string) {
		if ms.toolRegistry != nil {
			if h, err := ms.toolRegistry.GetHandler(name); err == nil {
				ms.server.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
					return h(ctx, req)
				})
				return
			}
		}
		// If no registry handler found, panic as all tools should be in registry
		panic(fmt.Sprintf("Tool %s not found in registry", name))
	}

	// status tool - initialization diagnostics, safe in discovery mode
	statusTool := mcp.NewTool(config.ToolStatus,
		mcp.WithDescription("Report initialization state and available capabilities"),
	)
	add(statusTool, config.ToolStatus)

	// collections.list tool - backend collection catalog
	collectionsListTool := mcp.NewTool(config.ToolCollectionsList,
		mcp.WithDescription("List the backend's collections"),
	)
	add(collectionsListTool, config.ToolCollectionsList)

	// records.list tool - paginated record listing
	recordsListTool := mcp.NewTool(config.ToolRecordsList,
		mcp.WithDescription("List records from a collection"),
		mcp.WithString("collection",
			mcp.Required(),
			mcp.Description("Collection name"),
		),
		mcp.WithNumber("page",
			mcp.Description("Page number (1-based)"),
		),
		mcp.WithNumber("per_page",
			mcp.Description("Records per page"),
		),
		mcp.WithString("filter",
			mcp.Description("Filter expression"),
		),
		mcp.WithString("sort",
			mcp.Description("Sort expression, e.g. -created"),
		),
	)
	add(recordsListTool, config.ToolRecordsList)

	// records.get tool - single record retrieval
	recordsGetTool := mcp.NewTool(config.ToolRecordsGet,
		mcp.WithDescription("Get a single record by ID"),
		mcp.WithString("collection",
			mcp.Required(),
			mcp.Description("Collection name"),
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Record ID"),
		),
	)
	add(recordsGetTool, config.ToolRecordsGet)

	// records.create tool - record creation
	recordsCreateTool := mcp.NewTool(config.ToolRecordsCreate,
		mcp.WithDescription("Create a record in a collection"),
		mcp.WithString("collection",
			mcp.Required(),
			mcp.Description("Collection name"),
		),
		mcp.WithObject("data",
			mcp.Required(),
			mcp.Description("Record fields"),
		),
	)
	add(recordsCreateTool, config.ToolRecordsCreate)

	// records.update tool - partial record update
	recordsUpdateTool := mcp.NewTool(config.ToolRecordsUpdate,
		mcp.WithDescription("Update a record in a collection"),
		mcp.WithString("collection",
			mcp.Required(),
			mcp.Description("Collection name"),
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Record ID"),
		),
		mcp.WithObject("data",
			mcp.Required(),
			mcp.Description("Fields to update"),
		),
	)
	add(recordsUpdateTool, config.ToolRecordsUpdate)

	// records.delete tool - admin-only record deletion
	recordsDeleteTool := mcp.NewTool(config.ToolRecordsDelete,
		mcp.WithDescription("Delete a record (requires admin authentication)"),
		mcp.WithString("collection",
			mcp.Required(),
			mcp.Description("Collection name"),
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Record ID"),
		),
	)
	add(recordsDeleteTool, config.ToolRecordsDelete)

	// payments.create_customer tool - payment processor customer creation
	createCustomerTool := mcp.NewTool(config.ToolPaymentsCreateCustomer,
		mcp.WithDescription("Create a payment processor customer"),
		mcp.WithString("email",
			mcp.Required(),
			mcp.Description("Customer email address"),
		),
		mcp.WithString("name",
			mcp.Description("Customer display name"),
		),
	)
	add(createCustomerTool, config.ToolPaymentsCreateCustomer)

	// payments.create_payment_link tool - hosted payment link creation
	createLinkTool := mcp.NewTool(config.ToolPaymentsCreateLink,
		mcp.WithDescription("Create a hosted payment link for a price"),
		mcp.WithString("price_id",
			mcp.Required(),
			mcp.Description("Price identifier"),
		),
		mcp.WithNumber("quantity",
			mcp.Description("Line item quantity (defaults to 1)"),
		),
	)
	add(createLinkTool, config.ToolPaymentsCreateLink)

	// email.send tool - plain text email delivery
	emailSendTool := mcp.NewTool(config.ToolEmailSend,
		mcp.WithDescription("Send a plain text email"),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Recipient address"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Message subject"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Plain text message body"),
		),
	)
	add(emailSendTool, config.ToolEmailSend)
}
