// Package google holds the shared OAuth plumbing for the Gmail and Drive
// adapters: per-account token storage under the user cache directory, token
// sources, and authenticated HTTP clients. Scopes are read-only; draftdesk
// never writes through the Google APIs.
package google
