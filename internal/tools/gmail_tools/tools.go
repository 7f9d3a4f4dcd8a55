package gmail_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/draftdesk/draftdesk/internal/instrumentation"
	"github.com/draftdesk/draftdesk/internal/server"
	"github.com/draftdesk/draftdesk/internal/tools/common"
)

// RegisterGmailTools registers the read-only Gmail inspection tools. They
// surface the same message snapshots and attachment listings the drafting
// sessions are seeded with, so a client can preview a message before opening
// a session on it.
func RegisterGmailTools(s *mcpserver.MCPServer, sc *server.ServerContext, metrics *instrumentation.Metrics) error {
	snapshotTool := mcp.NewTool("gmail_message_snapshot",
		mcp.WithDescription("Get the sender, recipient, subject, body and linked opportunity of a Gmail message or draft"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("messageId",
			mcp.Description("The ID of the Gmail message"),
		),
		mcp.WithString("draftId",
			mcp.Description("The ID of the Gmail draft (used when messageId is not given)"),
		),
	)

	s.AddTool(snapshotTool, common.InstrumentedToolHandler("gmail_message_snapshot", metrics,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleMessageSnapshot(ctx, request, sc)
		}))

	listAttachmentsTool := mcp.NewTool("gmail_list_attachments",
		mcp.WithDescription("List all attachments in a Gmail message"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("The ID of the Gmail message"),
		),
	)

	s.AddTool(listAttachmentsTool, common.InstrumentedToolHandler("gmail_list_attachments", metrics,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListAttachments(ctx, request, sc)
		}))

	return nil
}

func handleMessageSnapshot(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	client := sc.GmailClientForAccount(account)
	if client == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no Gmail client available for account %s; authorize access first", account)), nil
	}

	messageID, _ := args["messageId"].(string)
	draftID, _ := args["draftId"].(string)

	switch {
	case messageID != "":
		snapshot, err := client.SubjectSnapshot(messageID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch message %s: %v", messageID, err)), nil
		}
		return jsonResult(snapshot)
	case draftID != "":
		snapshot, err := client.DraftSnapshot(draftID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch draft %s: %v", draftID, err)), nil
		}
		return jsonResult(snapshot)
	default:
		return mcp.NewToolResultError("either messageId or draftId is required"), nil
	}
}

func handleListAttachments(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	client := sc.GmailClientForAccount(account)
	if client == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no Gmail client available for account %s; authorize access first", account)), nil
	}

	messageID, ok := args["messageId"].(string)
	if !ok || messageID == "" {
		return mcp.NewToolResultError("messageId is required"), nil
	}

	attachments, err := client.ListAttachments(messageID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list attachments for message %s: %v", messageID, err)), nil
	}

	type attachmentView struct {
		AttachmentID string `json:"attachmentId"`
		Filename     string `json:"filename"`
		MimeType     string `json:"mimeType"`
		Size         int64  `json:"size"`
	}

	views := make([]attachmentView, 0, len(attachments))
	for _, a := range attachments {
		views = append(views, attachmentView{
			AttachmentID: a.AttachmentID,
			Filename:     a.Filename,
			MimeType:     a.MimeType,
			Size:         a.Size,
		})
	}
	return jsonResult(views)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
