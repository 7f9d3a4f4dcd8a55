// Package cmd implements the draftdesk command-line interface.
//
// The root command exposes three subcommands:
//
//   - serve: starts the MCP server over stdio or streamable HTTP
//   - auth: runs the out-of-band OAuth flow for Gmail and Drive access
//   - version: prints the build version
package cmd
