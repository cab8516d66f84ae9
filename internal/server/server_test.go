package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/basekit-labs/basekit-mcp/internal/config"
)

// clearServerEnv blanks every configuration key so tests control resolution.
func clearServerEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvBackendURL, config.EnvAdminEmail, config.EnvAdminPassword,
		config.EnvStripeSecret,
		config.EnvSMTPHost, config.EnvSMTPPort, config.EnvSMTPUsername,
		config.EnvSMTPPassword, config.EnvSMTPFrom,
	} {
		t.Setenv(key, "")
	}
}

func newTestServer(t *testing.T) *MCPServer {
	t.Helper()
	return NewMCPServer(Config{
		Name:      "basekit-mcp-test",
		Version:   "0.0.0",
		Lifecycle: config.DefaultLifecycleConfig(),
	}, nil)
}

// fakeBackend runs an httptest BaseKit API and points BASEKIT_URL at it.
func fakeBackend(t *testing.T, handler http.Handler) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv(config.EnvBackendURL, srv.URL)
}

func callReq(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("Expected non-empty result content")
	}
	tc, ok := mcp.AsTextContent(result.Content[0])
	if !ok {
		t.Fatalf("Expected text content, got %T", result.Content[0])
	}
	return tc.Text
}

func TestNewMCPServer_RegistersAllTools(t *testing.T) {
	clearServerEnv(t)
	ms := newTestServer(t)

	want := append([]string(nil), config.AllTools()...)
	sort.Strings(want)

	if got := ms.toolRegistry.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected registered tools %v, got %v", want, got)
	}
}

func TestStatus_DiscoveryWithoutConfig(t *testing.T) {
	clearServerEnv(t)
	ms := newTestServer(t)

	result, err := ms.handleStatus(context.Background(), callReq(config.ToolStatus, nil))
	if err != nil {
		t.Fatalf("handleStatus failed: %v", err)
	}
	if result.IsError {
		t.Fatal("Expected status to succeed in discovery mode")
	}

	var resp statusResponse
	if err := json.Unmarshal([]byte(resultText(t, result)), &resp); err != nil {
		t.Fatalf("decode status response: %v", err)
	}
	if !resp.DiscoveryMode {
		t.Error("Expected discovery mode without configuration")
	}
	if resp.State.HasValidConfig {
		t.Error("Expected invalid configuration")
	}
	if resp.Capabilities["payments"] || resp.Capabilities["email"] {
		t.Errorf("Expected no capabilities, got %v", resp.Capabilities)
	}
	if resp.SessionID == "" {
		t.Error("Expected a session ID")
	}
}

func TestStatus_WithBackend(t *testing.T) {
	clearServerEnv(t)
	fakeBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	ms := newTestServer(t)

	result, err := ms.handleStatus(context.Background(), callReq(config.ToolStatus, nil))
	if err != nil {
		t.Fatalf("handleStatus failed: %v", err)
	}

	var resp statusResponse
	if err := json.Unmarshal([]byte(resultText(t, result)), &resp); err != nil {
		t.Fatalf("decode status response: %v", err)
	}
	if resp.DiscoveryMode {
		t.Errorf("Expected connected session, got %+v", resp.State)
	}
	if !resp.State.BackendInitialized {
		t.Error("Expected initialized backend")
	}
	if resp.State.IsAuthenticated {
		t.Error("Expected unauthenticated session without credentials")
	}
}

func TestCollectionsList_DiscoveryModeAnswer(t *testing.T) {
	clearServerEnv(t)
	ms := newTestServer(t)

	result, err := ms.handleCollectionsList(context.Background(), callReq(config.ToolCollectionsList, nil))
	if err != nil {
		t.Fatalf("handleCollectionsList failed: %v", err)
	}
	if result.IsError {
		t.Fatal("Catalog tools must not error in discovery mode")
	}
	if got := resultText(t, result); got != config.MsgDiscoveryMode {
		t.Errorf("Expected discovery mode message, got %q", got)
	}
}

func TestCollectionsList_WithBackend(t *testing.T) {
	clearServerEnv(t)
	fakeBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/collections" {
			json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]string{
					{"id": "c1", "name": "posts", "type": "base"},
				},
			})
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	ms := newTestServer(t)

	result, err := ms.handleCollectionsList(context.Background(), callReq(config.ToolCollectionsList, nil))
	if err != nil {
		t.Fatalf("handleCollectionsList failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("Expected success, got error: %s", resultText(t, result))
	}
	if got := resultText(t, result); !strings.Contains(got, "posts") {
		t.Errorf("Expected collection listing, got %q", got)
	}
}

func TestRecordsList_RequiresCollectionArgument(t *testing.T) {
	clearServerEnv(t)
	ms := newTestServer(t)

	result, err := ms.handleRecordsList(context.Background(), callReq(config.ToolRecordsList, map[string]any{}))
	if err != nil {
		t.Fatalf("handleRecordsList failed: %v", err)
	}
	if !result.IsError {
		t.Error("Expected error result for missing collection argument")
	}
}

func TestRecordsList_WithBackend(t *testing.T) {
	clearServerEnv(t)
	fakeBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/collections/posts/records" {
			json.NewEncoder(w).Encode(map[string]any{
				"page": 1, "perPage": 30, "totalItems": 1,
				"items": []map[string]any{{"id": "r1", "title": "hello"}},
			})
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	ms := newTestServer(t)

	result, err := ms.handleRecordsList(context.Background(), callReq(config.ToolRecordsList, map[string]any{
		"collection": "posts",
	}))
	if err != nil {
		t.Fatalf("handleRecordsList failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("Expected success, got error: %s", resultText(t, result))
	}
	if got := resultText(t, result); !strings.Contains(got, `"id":"r1"`) {
		t.Errorf("Expected record listing, got %q", got)
	}
}

func TestRecordsList_InvalidConfigSurfacesConfigurationError(t *testing.T) {
	clearServerEnv(t)
	ms := newTestServer(t)

	// The first operational call resolves configuration itself and must
	// report the failure, not silently degrade.
	result, err := ms.handleRecordsList(context.Background(), callReq(config.ToolRecordsList, map[string]any{
		"collection": "posts",
	}))
	if err != nil {
		t.Fatalf("handleRecordsList failed: %v", err)
	}
	if !result.IsError {
		t.Fatal("Expected error result without configuration")
	}
	if got := resultText(t, result); !strings.Contains(got, "configuration") {
		t.Errorf("Expected configuration error, got %q", got)
	}
}

func TestRecordsCreate_DataMustBeObject(t *testing.T) {
	clearServerEnv(t)
	ms := newTestServer(t)

	result, err := ms.handleRecordsCreate(context.Background(), callReq(config.ToolRecordsCreate, map[string]any{
		"collection": "posts",
		"data":       "not-an-object",
	}))
	if err != nil {
		t.Fatalf("handleRecordsCreate failed: %v", err)
	}
	if !result.IsError {
		t.Error("Expected error result for non-object data")
	}
}

func TestRecordsDelete_RequiresAuthentication(t *testing.T) {
	clearServerEnv(t)
	fakeBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	ms := newTestServer(t)

	result, err := ms.handleRecordsDelete(context.Background(), callReq(config.ToolRecordsDelete, map[string]any{
		"collection": "posts",
		"id":         "r1",
	}))
	if err != nil {
		t.Fatalf("handleRecordsDelete failed: %v", err)
	}
	if !result.IsError {
		t.Fatal("Expected error result without admin credentials")
	}
	got := resultText(t, result)
	if !strings.Contains(got, "authentication") {
		t.Errorf("Expected authentication error, got %q", got)
	}
	if !strings.Contains(got, config.EnvAdminEmail) {
		t.Errorf("Expected error to name the missing credential, got %q", got)
	}
}

func TestPayments_CapabilityUnavailable(t *testing.T) {
	clearServerEnv(t)
	fakeBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	ms := newTestServer(t)

	result, err := ms.handlePaymentsCreateCustomer(context.Background(), callReq(config.ToolPaymentsCreateCustomer, map[string]any{
		"email": "buyer@example.com",
	}))
	if err != nil {
		t.Fatalf("handlePaymentsCreateCustomer failed: %v", err)
	}
	if !result.IsError {
		t.Fatal("Expected error result without a payment secret")
	}
	if got := resultText(t, result); !strings.Contains(got, `capability "payments"`) {
		t.Errorf("Expected capability error, got %q", got)
	}
}

func TestEmail_CapabilityUnavailable(t *testing.T) {
	clearServerEnv(t)
	fakeBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	ms := newTestServer(t)

	result, err := ms.handleEmailSend(context.Background(), callReq(config.ToolEmailSend, map[string]any{
		"to":      "user@example.com",
		"subject": "hi",
		"body":    "hello",
	}))
	if err != nil {
		t.Fatalf("handleEmailSend failed: %v", err)
	}
	if !result.IsError {
		t.Fatal("Expected error result without SMTP configuration")
	}
	if got := resultText(t, result); !strings.Contains(got, `capability "email"`) {
		t.Errorf("Expected capability error, got %q", got)
	}
}

func TestBackendDialer_RetainsTypedClient(t *testing.T) {
	d := NewBackendDialer(nil)

	if _, ok := d.Client(); ok {
		t.Fatal("Expected no client before a dial")
	}

	conn, err := d.Dial(config.Config{BackendURL: "http://localhost:8090"}, map[string]string{"X-Tenant": "acme"})
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	if conn == nil {
		t.Fatal("Expected a connection handle")
	}

	client, ok := d.Client()
	if !ok || client == nil {
		t.Fatal("Expected typed client after dial")
	}
	if client.BaseURL() != "http://localhost:8090" {
		t.Errorf("Unexpected base URL %q", client.BaseURL())
	}
}
