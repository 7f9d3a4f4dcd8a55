package logging

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestWithOperation(t *testing.T) {
	logger := slog.Default()
	result := WithOperation(logger, "session_send")
	if result == nil {
		t.Error("WithOperation returned nil")
	}
}

func TestWithSession(t *testing.T) {
	logger := slog.Default()
	result := WithSession(logger, "msg-1")
	if result == nil {
		t.Error("WithSession returned nil")
	}
}

func TestWithTool(t *testing.T) {
	logger := slog.Default()
	result := WithTool(logger, "session_create")
	if result == nil {
		t.Error("WithTool returned nil")
	}
}

func TestOperationAttr(t *testing.T) {
	attr := Operation("session_send")
	if attr.Key != KeyOperation {
		t.Errorf("Operation key = %q, want %q", attr.Key, KeyOperation)
	}
	if attr.Value.String() != "session_send" {
		t.Errorf("Operation value = %q, want %q", attr.Value.String(), "session_send")
	}
}

func TestSessionIDAttr(t *testing.T) {
	attr := SessionID("msg-1")
	if attr.Key != KeySession {
		t.Errorf("SessionID key = %q, want %q", attr.Key, KeySession)
	}
	if attr.Value.String() != "msg-1" {
		t.Errorf("SessionID value = %q, want %q", attr.Value.String(), "msg-1")
	}
}

func TestExchangeIDAttr(t *testing.T) {
	attr := ExchangeID("ex-42")
	if attr.Key != KeyExchange {
		t.Errorf("ExchangeID key = %q, want %q", attr.Key, KeyExchange)
	}
}

func TestProviderAttr(t *testing.T) {
	attr := Provider("openai")
	if attr.Key != KeyProvider {
		t.Errorf("Provider key = %q, want %q", attr.Key, KeyProvider)
	}
}

func TestModelAttr(t *testing.T) {
	attr := Model("gpt-4o-mini")
	if attr.Key != KeyModel {
		t.Errorf("Model key = %q, want %q", attr.Key, KeyModel)
	}
}

func TestStatusAttr(t *testing.T) {
	attr := Status(StatusThrottled)
	if attr.Key != KeyStatus {
		t.Errorf("Status key = %q, want %q", attr.Key, KeyStatus)
	}
	if attr.Value.String() != "throttled" {
		t.Errorf("Status value = %q, want %q", attr.Value.String(), "throttled")
	}
}

func TestErrAttr(t *testing.T) {
	attr := Err(errors.New("boom"))
	if attr.Key != KeyError {
		t.Errorf("Err key = %q, want %q", attr.Key, KeyError)
	}
	if attr.Value.String() != "boom" {
		t.Errorf("Err value = %q, want %q", attr.Value.String(), "boom")
	}
}

func TestErrAttrNil(t *testing.T) {
	attr := Err(nil)
	if attr.Key != "" {
		t.Errorf("Err(nil) key = %q, want empty group", attr.Key)
	}
}

func TestAnonymizeEmail(t *testing.T) {
	hash := AnonymizeEmail("co@vendor.example")
	if !strings.HasPrefix(hash, "user:") {
		t.Errorf("AnonymizeEmail = %q, want user: prefix", hash)
	}
	if strings.Contains(hash, "vendor.example") {
		t.Errorf("AnonymizeEmail leaked the address: %q", hash)
	}
	if hash != AnonymizeEmail("co@vendor.example") {
		t.Error("AnonymizeEmail is not deterministic")
	}
	if hash == AnonymizeEmail("other@vendor.example") {
		t.Error("AnonymizeEmail collided for different addresses")
	}
	if AnonymizeEmail("") != "" {
		t.Error("AnonymizeEmail of empty string should be empty")
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected string
	}{
		{name: "empty token", token: "", expected: "<empty>"},
		{name: "short token", token: "abc", expected: "[token:3 chars]"},
		{name: "long token", token: strings.Repeat("x", 64), expected: "[token:64 chars]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeToken(tt.token)
			if result != tt.expected {
				t.Errorf("SanitizeToken(%q) = %q, want %q", tt.token, result, tt.expected)
			}
			if tt.token != "" && strings.Contains(result, tt.token) {
				t.Errorf("SanitizeToken leaked token content: %q", result)
			}
		})
	}
}

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		expected string
	}{
		{name: "valid email", email: "ko@agency.example", expected: "agency.example"},
		{name: "empty string", email: "", expected: ""},
		{name: "no at sign", email: "not-an-email", expected: ""},
		{name: "multiple at signs", email: "a@b@c", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := ExtractDomain(tt.email); result != tt.expected {
				t.Errorf("ExtractDomain(%q) = %q, want %q", tt.email, result, tt.expected)
			}
		})
	}
}
