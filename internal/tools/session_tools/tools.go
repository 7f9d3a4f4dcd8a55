package session_tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/draftdesk/draftdesk/internal/instrumentation"
	"github.com/draftdesk/draftdesk/internal/opportunity"
	"github.com/draftdesk/draftdesk/internal/server"
	"github.com/draftdesk/draftdesk/internal/session"
	"github.com/draftdesk/draftdesk/internal/tools/common"
)

// RegisterSessionTools registers the drafting-session tools with the MCP server.
func RegisterSessionTools(s *mcpserver.MCPServer, sc *server.ServerContext, metrics *instrumentation.Metrics) error {
	createTool := mcp.NewTool("session_create",
		mcp.WithDescription("Create a drafting session for a message or draft. Creating an existing session returns it unchanged."),
		mcp.WithString("sessionId",
			mcp.Required(),
			mcp.Description("Stable session key, one per message or draft"),
		),
		mcp.WithString("account",
			mcp.Description("Google account name (default: 'default')"),
		),
		mcp.WithString("messageId",
			mcp.Description("Gmail message ID to snapshot the subject context from"),
		),
		mcp.WithString("draftId",
			mcp.Description("Gmail draft ID to snapshot the subject context from"),
		),
		mcp.WithString("sender",
			mcp.Description("Sender address, when the snapshot is supplied inline"),
		),
		mcp.WithString("recipient",
			mcp.Description("Recipient address, when the snapshot is supplied inline"),
		),
		mcp.WithString("subject",
			mcp.Description("Subject line, when the snapshot is supplied inline"),
		),
		mcp.WithString("body",
			mcp.Description("Body text, when the snapshot is supplied inline"),
		),
		mcp.WithString("provider",
			mcp.Description("AI provider to use for this session"),
		),
		mcp.WithString("model",
			mcp.Description("Model to use for this session"),
		),
	)
	s.AddTool(createTool, common.InstrumentedToolHandler("session_create", metrics,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSessionCreate(ctx, request, sc)
		}))

	sendTool := mcp.NewTool("session_send",
		mcp.WithDescription("Send a user message to a session. The AI exchange runs in the background; poll session_list for completion."),
		mcp.WithString("sessionId",
			mcp.Required(),
			mcp.Description("Session to send to"),
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("User message text"),
		),
	)
	s.AddTool(sendTool, common.InstrumentedToolHandler("session_send", metrics,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSessionSend(ctx, request, sc)
		}))

	dismissTool := mcp.NewTool("session_dismiss",
		mcp.WithDescription("Remove a session. An in-flight exchange completes invisibly and is discarded."),
		mcp.WithString("sessionId",
			mcp.Required(),
			mcp.Description("Session to remove"),
		),
	)
	s.AddTool(dismissTool, common.InstrumentedToolHandler("session_dismiss", metrics,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSessionDismiss(ctx, request, sc)
		}))

	focusTool := mcp.NewTool("session_focus",
		mcp.WithDescription("Point the dashboard at a session, or clear the pointer. Never mutates session state."),
		mcp.WithString("sessionId",
			mcp.Description("Session to focus; omit or pass empty to clear"),
		),
	)
	s.AddTool(focusTool, common.InstrumentedToolHandler("session_focus", metrics,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSessionFocus(ctx, request, sc)
		}))

	listTool := mcp.NewTool("session_list",
		mcp.WithDescription("List active sessions (anything past picking-mode) with their derived status: pending, thinking, done, or error."),
	)
	s.AddTool(listTool, common.InstrumentedToolHandler("session_list", metrics,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSessionList(ctx, request, sc)
		}))

	autoDraftTool := mcp.NewTool("session_auto_draft",
		mcp.WithDescription("Create a session (if needed) and immediately ask for a reply draft with a fixed prompt. Skips provider picking."),
		mcp.WithString("sessionId",
			mcp.Required(),
			mcp.Description("Stable session key, one per message or draft"),
		),
		mcp.WithString("account",
			mcp.Description("Google account name (default: 'default')"),
		),
		mcp.WithString("messageId",
			mcp.Description("Gmail message ID to snapshot the subject context from"),
		),
		mcp.WithString("draftId",
			mcp.Description("Gmail draft ID to snapshot the subject context from"),
		),
		mcp.WithString("sender",
			mcp.Description("Sender address, when the snapshot is supplied inline"),
		),
		mcp.WithString("recipient",
			mcp.Description("Recipient address, when the snapshot is supplied inline"),
		),
		mcp.WithString("subject",
			mcp.Description("Subject line, when the snapshot is supplied inline"),
		),
		mcp.WithString("body",
			mcp.Description("Body text, when the snapshot is supplied inline"),
		),
	)
	s.AddTool(autoDraftTool, common.InstrumentedToolHandler("session_auto_draft", metrics,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSessionAutoDraft(ctx, request, sc)
		}))

	formatDraftTool := mcp.NewTool("session_format_draft",
		mcp.WithDescription("Create a session (if needed) for an existing draft and immediately ask for a grammar and formatting cleanup. Skips provider picking."),
		mcp.WithString("sessionId",
			mcp.Required(),
			mcp.Description("Stable session key, one per message or draft"),
		),
		mcp.WithString("account",
			mcp.Description("Google account name (default: 'default')"),
		),
		mcp.WithString("draftId",
			mcp.Description("Gmail draft ID to snapshot the subject context from"),
		),
		mcp.WithString("sender",
			mcp.Description("Sender address, when the snapshot is supplied inline"),
		),
		mcp.WithString("recipient",
			mcp.Description("Recipient address, when the snapshot is supplied inline"),
		),
		mcp.WithString("subject",
			mcp.Description("Subject line, when the snapshot is supplied inline"),
		),
		mcp.WithString("body",
			mcp.Description("Draft body text, when the snapshot is supplied inline"),
		),
	)
	s.AddTool(formatDraftTool, common.InstrumentedToolHandler("session_format_draft", metrics,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSessionFormatDraft(ctx, request, sc)
		}))

	return nil
}

// snapshotFromArgs builds the immutable subject snapshot for a new session.
// Precedence: messageId, then draftId, then the inline fields.
func snapshotFromArgs(ctx context.Context, sc *server.ServerContext, args map[string]interface{}) (session.SubjectContext, error) {
	account := common.GetAccountFromArgs(args)

	if messageID, ok := args["messageId"].(string); ok && messageID != "" {
		client := sc.GmailClientForAccount(account)
		if client == nil {
			return session.SubjectContext{}, fmt.Errorf("no Gmail client available for account %s; authorize access first", account)
		}
		return client.SubjectSnapshot(messageID)
	}

	if draftID, ok := args["draftId"].(string); ok && draftID != "" {
		client := sc.GmailClientForAccount(account)
		if client == nil {
			return session.SubjectContext{}, fmt.Errorf("no Gmail client available for account %s; authorize access first", account)
		}
		return client.DraftSnapshot(draftID)
	}

	subject, _ := args["subject"].(string)
	body, _ := args["body"].(string)
	sender, _ := args["sender"].(string)
	recipient, _ := args["recipient"].(string)

	opp := opportunity.FromSubject(subject)
	if opp == nil {
		if number, found := opportunity.ScanSolicitationNumber(body); found {
			opp = &opportunity.Metadata{SolicitationNumber: number}
		}
	}

	return session.SubjectContext{
		Sender:      sender,
		Recipient:   recipient,
		Subject:     subject,
		Body:        body,
		Opportunity: opp,
	}, nil
}

type sessionSummary struct {
	SessionID      string `json:"sessionId"`
	Phase          string `json:"phase"`
	Provider       string `json:"provider,omitempty"`
	Model          string `json:"model,omitempty"`
	SubjectPreview string `json:"subjectPreview"`
}

func summarize(s *session.Session) sessionSummary {
	return sessionSummary{
		SessionID:      s.ID,
		Phase:          string(s.Phase),
		Provider:       s.Selection.Provider,
		Model:          s.Selection.Model,
		SubjectPreview: s.Subject.Preview(),
	}
}

func handleSessionCreate(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	sessionID, ok := args["sessionId"].(string)
	if !ok || sessionID == "" {
		return mcp.NewToolResultError("'sessionId' field is required"), nil
	}

	snapshot, err := snapshotFromArgs(ctx, sc, args)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to build subject snapshot: %v", err)), nil
	}

	sess := sc.Sessions().Create(ctx, sessionID, snapshot)

	provider, _ := args["provider"].(string)
	model, _ := args["model"].(string)
	if provider != "" || model != "" {
		selection := sess.Selection
		if provider != "" {
			selection.Provider = provider
		}
		if model != "" {
			selection.Model = model
		}
		if err := sc.Sessions().SetSelection(sessionID, selection); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to set provider selection: %v", err)), nil
		}
		sess, _ = sc.Sessions().Get(sessionID)
	}

	payload, err := json.MarshalIndent(summarize(sess), "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal session: %v", err)), nil
	}

	return mcp.NewToolResultText(string(payload)), nil
}

func handleSessionSend(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	sessionID, ok := args["sessionId"].(string)
	if !ok || sessionID == "" {
		return mcp.NewToolResultError("'sessionId' field is required"), nil
	}

	text, ok := args["text"].(string)
	if !ok || text == "" {
		return mcp.NewToolResultError("'text' field is required"), nil
	}

	if err := sc.Sessions().Send(ctx, sessionID, text); err != nil {
		switch {
		case errors.Is(err, session.ErrSessionBusy):
			return mcp.NewToolResultError(fmt.Sprintf("Session %s has an exchange in flight; wait for it to finish", sessionID)), nil
		case errors.Is(err, session.ErrSessionNotFound):
			return mcp.NewToolResultError(fmt.Sprintf("Session %s not found", sessionID)), nil
		default:
			return mcp.NewToolResultError(fmt.Sprintf("Failed to send: %v", err)), nil
		}
	}

	return mcp.NewToolResultText(fmt.Sprintf("Exchange started for session %s; poll session_list for completion", sessionID)), nil
}

func handleSessionDismiss(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	sessionID, ok := args["sessionId"].(string)
	if !ok || sessionID == "" {
		return mcp.NewToolResultError("'sessionId' field is required"), nil
	}

	removed := sc.Sessions().Dismiss(ctx, sessionID)

	payload, err := json.Marshal(map[string]any{"sessionId": sessionID, "removed": removed})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal result: %v", err)), nil
	}

	return mcp.NewToolResultText(string(payload)), nil
}

func handleSessionFocus(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	sessionID, _ := args["sessionId"].(string)
	sc.Sessions().Focus(sessionID)

	if sessionID == "" {
		return mcp.NewToolResultText("Focus cleared"), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Focused session %s", sessionID)), nil
}

func handleSessionList(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	views := sc.Sessions().ListActive()

	payload, err := json.MarshalIndent(views, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal sessions: %v", err)), nil
	}

	return mcp.NewToolResultText(string(payload)), nil
}

func handleSessionAutoDraft(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	sessionID, ok := args["sessionId"].(string)
	if !ok || sessionID == "" {
		return mcp.NewToolResultError("'sessionId' field is required"), nil
	}

	snapshot, err := snapshotFromArgs(ctx, sc, args)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to build subject snapshot: %v", err)), nil
	}

	if err := sc.Sessions().AutoDraft(ctx, sessionID, snapshot); err != nil {
		switch {
		case errors.Is(err, session.ErrSessionBusy):
			return mcp.NewToolResultError(fmt.Sprintf("Session %s has an exchange in flight; wait for it to finish", sessionID)), nil
		default:
			return mcp.NewToolResultError(fmt.Sprintf("Failed to start auto-draft: %v", err)), nil
		}
	}

	return mcp.NewToolResultText(fmt.Sprintf("Auto-draft started for session %s; poll session_list for completion", sessionID)), nil
}

func handleSessionFormatDraft(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	sessionID, ok := args["sessionId"].(string)
	if !ok || sessionID == "" {
		return mcp.NewToolResultError("'sessionId' field is required"), nil
	}

	snapshot, err := snapshotFromArgs(ctx, sc, args)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to build subject snapshot: %v", err)), nil
	}

	if err := sc.Sessions().FormatDraft(ctx, sessionID, snapshot); err != nil {
		switch {
		case errors.Is(err, session.ErrSessionBusy):
			return mcp.NewToolResultError(fmt.Sprintf("Session %s has an exchange in flight; wait for it to finish", sessionID)), nil
		default:
			return mcp.NewToolResultError(fmt.Sprintf("Failed to start draft formatting: %v", err)), nil
		}
	}

	return mcp.NewToolResultText(fmt.Sprintf("Draft formatting started for session %s; poll session_list for completion", sessionID)), nil
}
