package gmail

import (
	"context"
	"encoding/base64"
	"fmt"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/draftdesk/draftdesk/internal/google"
)

// Client wraps the Gmail Users service for read-only message access.
type Client struct {
	svc     *gmail.UsersService
	account string
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// HasTokenForAccount checks if a valid OAuth token exists for the specified account.
func HasTokenForAccount(account string) bool {
	return google.HasTokenForAccount(account)
}

// HasToken checks if a valid OAuth token exists for the default account.
func HasToken() bool {
	return google.HasToken()
}

// NewClientForAccount creates a new Gmail client with OAuth2 authentication
// for a specific account.
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	client, err := google.GetHTTPClientForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w", account, err)
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Client{
		svc:     svc.Users,
		account: account,
	}, nil
}

// NewClient creates a new Gmail client for the default account.
func NewClient(ctx context.Context) (*Client, error) {
	return NewClientForAccount(ctx, "default")
}

// GetMessage retrieves a full Gmail message.
func (c *Client) GetMessage(messageID string) (*gmail.Message, error) {
	msg, err := c.svc.Messages.Get("me", messageID).Format("full").Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", messageID, err)
	}
	return msg, nil
}

// GetDraftMessage retrieves the message held by a draft.
func (c *Client) GetDraftMessage(draftID string) (*gmail.Message, error) {
	draft, err := c.svc.Drafts.Get("me", draftID).Format("full").Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get draft %s: %w", draftID, err)
	}
	if draft.Message == nil {
		return nil, fmt.Errorf("draft %s has no message", draftID)
	}
	return draft.Message, nil
}

// HeaderValue returns the value of the named header on the message payload,
// or the empty string when absent.
func HeaderValue(m *gmail.Message, header string) string {
	mpart := m.Payload
	if mpart == nil {
		return ""
	}
	for _, mph := range mpart.Headers {
		if mph.Name == header {
			return mph.Value
		}
	}
	return ""
}

// MessageBody extracts the text/plain body of a message, falling back to
// text/html when no plain part exists. Returns the empty string when the
// message carries no decodable body.
func MessageBody(msg *gmail.Message) string {
	if body := bodyOfType(msg, "text/plain"); body != "" {
		return body
	}
	return bodyOfType(msg, "text/html")
}

func bodyOfType(msg *gmail.Message, mimeType string) string {
	if msg.Payload == nil {
		return ""
	}

	var encoded string
	if msg.Payload.MimeType == mimeType && msg.Payload.Body != nil && msg.Payload.Body.Data != "" {
		encoded = msg.Payload.Body.Data
	} else {
		walkParts(msg.Payload, func(part *gmail.MessagePart) {
			if encoded == "" && part.MimeType == mimeType && part.Body != nil && part.Body.Data != "" {
				encoded = part.Body.Data
			}
		})
	}

	if encoded == "" {
		return ""
	}

	// Gmail uses RFC 4648 base64url; some messages carry standard base64.
	decoded, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		decoded, err = base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return ""
		}
	}

	return string(decoded)
}

// walkParts recursively walks through message parts.
func walkParts(part *gmail.MessagePart, fn func(*gmail.MessagePart)) {
	if part == nil {
		return
	}

	fn(part)

	for _, subpart := range part.Parts {
		walkParts(subpart, fn)
	}
}
