package gmail_tools

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftdesk/draftdesk/internal/server"
)

func newTestServerContext(t *testing.T) *server.ServerContext {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	sc, err := server.NewServerContext(context.Background(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

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

func TestRegisterGmailTools(t *testing.T) {
	s := mcpserver.NewMCPServer("draftdesk-test", "0.0.1")
	sc := newTestServerContext(t)

	require.NoError(t, RegisterGmailTools(s, sc, nil))
}

func TestHandleMessageSnapshotWithoutClient(t *testing.T) {
	sc := newTestServerContext(t)

	result, err := handleMessageSnapshot(context.Background(), requestWith(map[string]interface{}{
		"messageId": "msg-1",
	}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "authorize access first")
}

func TestHandleListAttachmentsWithoutClient(t *testing.T) {
	sc := newTestServerContext(t)

	result, err := handleListAttachments(context.Background(), requestWith(map[string]interface{}{
		"messageId": "msg-1",
	}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "authorize access first")
}
