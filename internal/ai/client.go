package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/draftdesk/draftdesk/internal/config"
	"github.com/draftdesk/draftdesk/internal/logging"
)

const (
	// defaultRetryMax bounds transient-failure retries. Throttling (429) is
	// never retried here: the runner surfaces it to the user instead.
	defaultRetryMax = 2

	chatCompletionsPath = "/chat/completions"
)

// HTTPClient talks to an OpenAI-compatible chat-completions endpoint.
type HTTPClient struct {
	httpClient *retryablehttp.Client
	baseURL    string
	apiKey     string
	provider   string
	logger     *slog.Logger
}

// chatRequest is the wire format for a chat-completions call.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewHTTPClient creates a provider client from configuration.
func NewHTTPClient(cfg config.AIConfig, logger *slog.Logger) *HTTPClient {
	if logger == nil {
		logger = slog.Default()
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = defaultRetryMax
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.HTTPClient.Timeout = cfg.RequestTimeout
	// retryablehttp's LeveledLogger interface matches our adapter.
	rc.Logger = logging.NewSlogAdapter(logger)
	rc.CheckRetry = checkRetry

	return &HTTPClient{
		httpClient: rc,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		provider:   cfg.Provider,
		logger:     logger,
	}
}

// checkRetry retries connection errors and transient server errors only.
// 429 must reach the caller unretried so it can be surfaced as throttling.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil
	}
	switch resp.StatusCode {
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return true, nil
	}
	return false, nil
}

// SendConversation performs one request/response turn against the provider.
// The full transcript is sent on every call; file refs ride along as plain
// text context lines since the chat-completions wire format has no native
// attachment slot.
func (c *HTTPClient) SendConversation(ctx context.Context, req *ConversationRequest) (*ConversationResponse, error) {
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("conversation is empty")
	}

	provider := req.Provider
	if provider == "" {
		provider = c.provider
	}

	payload := chatRequest{
		Model:    req.Model,
		Messages: make([]chatMessage, 0, len(req.Messages)+1),
	}
	for _, m := range req.Messages {
		payload.Messages = append(payload.Messages, chatMessage{
			Role:    string(m.Role),
			Content: m.Text,
		})
	}
	if len(req.FileRefs) > 0 {
		payload.Messages = append(payload.Messages, chatMessage{
			Role:    string(RoleSystem),
			Content: describeFileRefs(req.FileRefs),
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode conversation: %w", err)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatCompletionsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &ProviderError{
			Provider: provider,
			Detail:   err.Error(),
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Detail:     fmt.Sprintf("failed to read response: %v", err),
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyHTTPError(provider, resp.StatusCode, respBody)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &ProviderError{
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Detail:     fmt.Sprintf("failed to decode response: %v", err),
		}
	}
	if parsed.Error != nil {
		return nil, classifyBodyError(provider, resp.StatusCode, parsed.Error.Type, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return nil, &ProviderError{
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Detail:     "provider returned an empty reply",
		}
	}

	c.logger.Debug("conversation exchange completed",
		logging.Provider(provider),
		logging.Model(req.Model),
		slog.Duration(logging.KeyDuration, time.Since(start)),
	)

	return &ConversationResponse{ReplyText: parsed.Choices[0].Message.Content}, nil
}

// classifyHTTPError maps a non-200 response to a ProviderError, detecting
// throttling by status code or by rate-limit markers in the body.
func classifyHTTPError(provider string, status int, body []byte) *ProviderError {
	detail := strings.TrimSpace(string(body))
	if len(detail) > 512 {
		detail = detail[:512]
	}
	return &ProviderError{
		Provider:   provider,
		StatusCode: status,
		Detail:     detail,
		Throttled:  status == http.StatusTooManyRequests || containsRateLimitMarker(detail),
	}
}

// classifyBodyError handles providers that return 200 with an error object.
func classifyBodyError(provider string, status int, errType, message string) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		StatusCode: status,
		Detail:     message,
		Throttled:  errType == "rate_limit_error" || containsRateLimitMarker(message),
	}
}

func containsRateLimitMarker(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "rate_limit") ||
		strings.Contains(lower, "too many requests")
}

// describeFileRefs renders first-turn attachment references as a context note.
func describeFileRefs(refs []FileRef) string {
	var b strings.Builder
	b.WriteString("Files available to attach to the reply:\n")
	for _, r := range refs {
		fmt.Fprintf(&b, "- %s (%s)\n", r.Name, r.MimeType)
	}
	return b.String()
}
