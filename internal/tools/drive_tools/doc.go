// Package drive_tools exposes read-only Drive folder listings and download
// URL resolution over MCP.
package drive_tools
