// Package common holds shared helpers for MCP tool packages: argument
// extraction and the instrumented handler wrapper.
package common
