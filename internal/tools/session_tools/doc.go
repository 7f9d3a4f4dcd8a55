// Package session_tools exposes the drafting-session operations as MCP tools:
// create, send, dismiss, focus, list, and the one-click auto-draft and
// format-draft flows.
// Handlers validate arguments, delegate to the session service, and render
// results as JSON text content.
package session_tools
