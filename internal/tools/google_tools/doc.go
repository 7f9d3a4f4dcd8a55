// Package google_tools exposes the OAuth authorization flow as MCP tools so
// clients can complete Google authentication without leaving the session.
package google_tools
