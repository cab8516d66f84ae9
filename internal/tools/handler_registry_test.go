package tools

import (
	"context"
	"reflect"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func stubHandler(text string) ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(text), nil
	}
}

func TestRegistrySeededWithInitialHandlers(t *testing.T) {
	r := NewToolHandlerRegistry(map[string]ToolHandlerFunc{
		"status": stubHandler("ok"),
	})

	h, err := r.GetHandler("status")
	if err != nil {
		t.Fatalf("GetHandler failed: %v", err)
	}

	result, err := h(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if result == nil {
		t.Fatal("Expected result, got nil")
	}
}

func TestGetHandler_Unknown(t *testing.T) {
	r := NewToolHandlerRegistry(nil)

	if _, err := r.GetHandler("nonexistent"); err == nil {
		t.Error("Expected error for unknown tool")
	}
}

func TestRegisterReplaces(t *testing.T) {
	r := NewToolHandlerRegistry(nil)
	r.Register("status", stubHandler("first"))
	r.Register("status", stubHandler("second"))

	h, err := r.GetHandler("status")
	if err != nil {
		t.Fatalf("GetHandler failed: %v", err)
	}
	result, _ := h(context.Background(), mcp.CallToolRequest{})
	if text := resultText(t, result); text != "second" {
		t.Errorf("Expected replacement handler, got %q", text)
	}
}

func TestNamesSorted(t *testing.T) {
	r := NewToolHandlerRegistry(map[string]ToolHandlerFunc{
		"records.list":     stubHandler(""),
		"collections.list": stubHandler(""),
		"status":           stubHandler(""),
	})

	want := []string{"collections.list", "records.list", "status"}
	if got := r.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
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
