package config

// Tool defines the available tools in the server
const (
	// ToolStatus is the initialization status tool name
	ToolStatus = "status"
	// ToolCollectionsList is the collection catalog tool name
	ToolCollectionsList = "collections.list"
	// ToolRecordsList is the record listing tool name
	ToolRecordsList = "records.list"
	// ToolRecordsGet is the single record retrieval tool name
	ToolRecordsGet = "records.get"
	// ToolRecordsCreate is the record creation tool name
	ToolRecordsCreate = "records.create"
	// ToolRecordsUpdate is the record update tool name
	ToolRecordsUpdate = "records.update"
	// ToolRecordsDelete is the record deletion tool name
	ToolRecordsDelete = "records.delete"
	// ToolPaymentsCreateCustomer is the payment customer creation tool name
	ToolPaymentsCreateCustomer = "payments.create_customer"
	// ToolPaymentsCreateLink is the payment link creation tool name
	ToolPaymentsCreateLink = "payments.create_payment_link"
	// ToolEmailSend is the email delivery tool name
	ToolEmailSend = "email.send"
)

// AllTools returns a slice of all available tool names
func AllTools() []string {
	return []string{
		ToolStatus,
		ToolCollectionsList,
		ToolRecordsList,
		ToolRecordsGet,
		ToolRecordsCreate,
		ToolRecordsUpdate,
		ToolRecordsDelete,
		ToolPaymentsCreateCustomer,
		ToolPaymentsCreateLink,
		ToolEmailSend,
	}
}
