package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftdesk/draftdesk/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*HTTPClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewHTTPClient(config.AIConfig{
		BaseURL:        srv.URL,
		APIKey:         "test-key",
		Provider:       "openai",
		Model:          "gpt-4o-mini",
		RequestTimeout: 5 * time.Second,
	}, nil)
	return client, srv
}

func TestSendConversationSuccess(t *testing.T) {
	var gotAuth string
	var gotBody chatRequest

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "Here is a draft."}},
			},
		})
	})

	resp, err := client.SendConversation(context.Background(), &ConversationRequest{
		Provider: "openai",
		Model:    "gpt-4o-mini",
		Messages: []Message{
			{Role: RoleSystem, Text: "You help draft vendor replies."},
			{Role: RoleUser, Text: "Draft a reply."},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "Here is a draft.", resp.ReplyText)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotBody.Model)
	require.Len(t, gotBody.Messages, 2)
	assert.Equal(t, "system", gotBody.Messages[0].Role)
}

func TestSendConversationFirstTurnFileRefs(t *testing.T) {
	var gotBody chatRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "ok"}},
			},
		})
	})

	_, err := client.SendConversation(context.Background(), &ConversationRequest{
		Model:    "gpt-4o-mini",
		Messages: []Message{{Role: RoleUser, Text: "hi"}},
		FileRefs: []FileRef{
			{ID: "f1", Name: "Spec_Sheet.pdf", MimeType: "application/pdf"},
		},
	})

	require.NoError(t, err)
	// File refs ride along as an extra system message after the transcript.
	require.Len(t, gotBody.Messages, 2)
	assert.Equal(t, "system", gotBody.Messages[1].Role)
	assert.Contains(t, gotBody.Messages[1].Content, "Spec_Sheet.pdf")
}

func TestSendConversationThrottled(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"rate_limit_error"}}`))
	})

	_, err := client.SendConversation(context.Background(), &ConversationRequest{
		Model:    "gpt-4o-mini",
		Messages: []Message{{Role: RoleUser, Text: "hi"}},
	})

	require.Error(t, err)
	assert.True(t, IsThrottled(err))
}

func TestSendConversationGenericFailure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid model","type":"invalid_request_error"}}`))
	})

	_, err := client.SendConversation(context.Background(), &ConversationRequest{
		Model:    "nonexistent",
		Messages: []Message{{Role: RoleUser, Text: "hi"}},
	})

	require.Error(t, err)
	assert.False(t, IsThrottled(err))
}

func TestSendConversationRetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "recovered"}},
			},
		})
	})

	resp, err := client.SendConversation(context.Background(), &ConversationRequest{
		Model:    "gpt-4o-mini",
		Messages: []Message{{Role: RoleUser, Text: "hi"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "recovered", resp.ReplyText)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSendConversationDoesNotRetryThrottling(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.SendConversation(context.Background(), &ConversationRequest{
		Model:    "gpt-4o-mini",
		Messages: []Message{{Role: RoleUser, Text: "hi"}},
	})

	require.Error(t, err)
	assert.True(t, IsThrottled(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestSendConversationEmptyTranscript(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := client.SendConversation(context.Background(), &ConversationRequest{Model: "gpt-4o-mini"})
	require.Error(t, err)
}

func TestIsThrottled(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "throttled provider error",
			err:      &ProviderError{Provider: "openai", StatusCode: 429, Throttled: true},
			expected: true,
		},
		{
			name:     "generic provider error",
			err:      &ProviderError{Provider: "openai", StatusCode: 500},
			expected: false,
		},
		{
			name:     "unrelated error",
			err:      context.DeadlineExceeded,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsThrottled(tt.err))
		})
	}
}
