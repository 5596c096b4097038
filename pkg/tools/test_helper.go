package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/accessgap/pkg/core"
)

// IsErrorResult checks if a CallToolResult represents an error
func IsErrorResult(result *mcp.CallToolResult) bool {
	return result != nil && result.IsError
}

// AssertErrorCode checks that a result is an error result carrying the given
// MCPError code and fails the test if not
func AssertErrorCode(t *testing.T, result *mcp.CallToolResult, code core.ErrorCode) {
	t.Helper()
	if !IsErrorResult(result) {
		t.Fatalf("Expected %s error, got success: %s", code, resultText(result))
	}

	var mcpErr core.MCPError
	if err := ParseResultJSON(result, &mcpErr); err != nil {
		t.Fatalf("Error result is not an MCPError: %v (%s)", err, resultText(result))
	}
	if mcpErr.Code != string(code) {
		t.Errorf("Expected error code %s, got %s: %s", code, mcpErr.Code, mcpErr.Message)
	}
}

// AssertSuccessResult checks that a result is a success result and fails the test if not
func AssertSuccessResult(t *testing.T, result *mcp.CallToolResult, message string) {
	t.Helper()
	if IsErrorResult(result) {
		t.Fatalf("%s. Got error: %s", message, resultText(result))
	}
}

// ParseResultJSON parses the JSON content from a CallToolResult
func ParseResultJSON(result *mcp.CallToolResult, out interface{}) error {
	return json.Unmarshal([]byte(resultText(result)), out)
}

// CallTool invokes handler with args as the request arguments.
func CallTool(t *testing.T, handler Handler, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	result, err := handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	})
	if err != nil {
		t.Fatalf("%s returned a protocol error: %v", name, err)
	}
	if result == nil {
		t.Fatalf("%s returned no result", name)
	}
	return result
}

func resultText(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}
	for _, c := range result.Content {
		if text, ok := c.(mcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}
