package ai

import "context"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry in a conversation transcript.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// FileRef identifies an attachment made available to the model on the first
// turn of a conversation. Later turns rely on the provider-side context and
// never re-send refs.
type FileRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
}

// ConversationRequest carries one full transcript to the provider.
type ConversationRequest struct {
	Provider string
	Model    string
	Messages []Message

	// FileRefs are only populated on the first turn of a session.
	FileRefs []FileRef
}

// ConversationResponse is the provider's reply to a conversation request.
type ConversationResponse struct {
	ReplyText string
}

// Client is the narrow contract the session runner needs from an AI provider.
type Client interface {
	SendConversation(ctx context.Context, req *ConversationRequest) (*ConversationResponse, error)
}
