// Package ai provides the client for the AI provider's chat-completions API.
//
// The package exposes a single network operation, SendConversation, which
// carries a full conversation transcript and returns the assistant's reply.
// Failures are classified into throttling and generic provider errors via
// ProviderError so callers can present the two cases differently.
//
// Transient server errors are retried with backoff; rate limiting is never
// retried here because the session layer surfaces it to the user as a
// retry-suggesting notice instead.
package ai
