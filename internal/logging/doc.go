// Package logging provides structured logging utilities for draftdesk.
//
// This package centralizes logging patterns to ensure consistent, structured
// logging throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - PII sanitization (email anonymization)
//   - Consistent attribute naming across the codebase
//   - Logger adapter interface for flexibility
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithSession(slog.Default(), sessionID)
//	logger.Info("exchange completed",
//	    logging.Provider("openai"),
//	    logging.Status(logging.StatusSuccess))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("session created",
//	    logging.UserHash(sender))
//
// # Security Considerations
//
// Email addresses are hashed to prevent PII leakage while allowing
// correlation, and API keys are never logged directly.
package logging
