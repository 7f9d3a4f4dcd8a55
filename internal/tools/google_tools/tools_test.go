package google_tools

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestWith(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return tc.Text
}

func TestRegisterGoogleTools(t *testing.T) {
	s := mcpserver.NewMCPServer("draftdesk-test", "0.0.1")
	require.NoError(t, RegisterGoogleTools(s, nil))
}

func TestHandleGetAuthURL(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	result, err := handleGetAuthURL(context.Background(), requestWith(map[string]interface{}{
		"account": "work",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, `"work"`)
	assert.Contains(t, text, "google_save_auth_code")
	assert.Contains(t, text, "read-only")
}

func TestHandleSaveAuthCodeRequiresCode(t *testing.T) {
	result, err := handleSaveAuthCode(context.Background(), requestWith(map[string]interface{}{
		"account": "work",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "authCode is required")
}
