package drive_tools

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

// RegisterDriveTools registers the read-only Drive folder tools. The folder
// listing is the same view the attachment matcher works from, so a client
// can see exactly which files recommendations are drawn from.
func RegisterDriveTools(s *mcpserver.MCPServer, sc *server.ServerContext, defaultFolderID string, metrics *instrumentation.Metrics) error {
	listFolderTool := mcp.NewTool("drive_list_folder",
		mcp.WithDescription("List the files in a Drive folder, by default the shared attachment folder"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("folderId",
			mcp.Description("The Drive folder ID (default: the configured attachment folder)"),
		),
	)

	s.AddTool(listFolderTool, common.InstrumentedToolHandler("drive_list_folder", metrics,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListFolder(ctx, request, sc, defaultFolderID)
		}))

	downloadURLTool := mcp.NewTool("drive_download_url",
		mcp.WithDescription("Get a direct download URL for a Drive file, for attaching it to a reply"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("fileId",
			mcp.Required(),
			mcp.Description("The Drive file ID"),
		),
	)

	s.AddTool(downloadURLTool, common.InstrumentedToolHandler("drive_download_url", metrics,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDownloadURL(ctx, request, sc)
		}))

	return nil
}

func handleDownloadURL(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	client := sc.DriveClientForAccount(account)
	if client == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no Drive client available for account %s; authorize access first", account)), nil
	}

	fileID, ok := args["fileId"].(string)
	if !ok || fileID == "" {
		return mcp.NewToolResultError("fileId is required"), nil
	}

	url, err := client.DownloadURL(ctx, fileID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to resolve download URL for file %s: %v", fileID, err)), nil
	}

	return mcp.NewToolResultText(url), nil
}

func handleListFolder(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, defaultFolderID string) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	client := sc.DriveClientForAccount(account)
	if client == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no Drive client available for account %s; authorize access first", account)), nil
	}

	folderID, _ := args["folderId"].(string)
	if folderID == "" {
		folderID = defaultFolderID
	}
	if folderID == "" {
		return mcp.NewToolResultError("folderId is required: no attachment folder is configured"), nil
	}

	files, err := client.ListFolder(ctx, folderID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list folder %s: %v", folderID, err)), nil
	}

	type fileView struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		MimeType string `json:"mimeType"`
		Size     int64  `json:"size"`
	}

	views := make([]fileView, 0, len(files))
	for _, f := range files {
		views = append(views, fileView{
			ID:       f.ID,
			Name:     f.Name,
			MimeType: f.MimeType,
			Size:     f.Size,
		})
	}

	data, err := json.MarshalIndent(views, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
