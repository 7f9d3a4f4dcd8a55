// Package session implements the per-message AI session manager at the heart
// of draftdesk.
//
// A Session is the stateful record of one AI-assisted conversation tied to a
// single email message or draft. Sessions live in a Store keyed by the
// message they were opened for; any number of them can have provider
// exchanges in flight concurrently, and an exchange always survives UI
// navigation because results merge back into the store by session id, never
// through a captured view reference.
//
// The moving parts:
//
//   - Store: owns creation, mutation and disposal. Creation is idempotent;
//     mutations against a dismissed session are silently dropped.
//   - Runner: executes one request/response exchange per call, appends the
//     user message optimistically, classifies failures (throttled vs
//     generic) into synthetic transcript notices, and refreshes the
//     session's recommended attachments via the match package.
//   - Project / StatusView: the single derivation feeding every ambient
//     status presentation (pending, thinking, done, error).
//   - FocusController: a UI pointer fully decoupled from execution.
//   - Service: the facade exposing the complete external surface.
//
// Within one session the busy flag serializes exchanges; across sessions
// there is no ordering whatsoever.
package session
