package ai

import (
	"errors"
	"fmt"
)

// ProviderError describes a failed provider exchange. The session runner
// distinguishes throttling from everything else; any further detail is only
// carried for the human-readable notice.
type ProviderError struct {
	Provider   string
	StatusCode int
	Detail     string
	Throttled  bool
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Throttled {
		return fmt.Sprintf("provider %s throttled the request (status %d): %s", e.Provider, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("provider %s request failed (status %d): %s", e.Provider, e.StatusCode, e.Detail)
}

// IsThrottled reports whether err represents provider-side rate limiting.
func IsThrottled(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Throttled
	}
	return false
}
