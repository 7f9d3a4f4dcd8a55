// Package gmail_tools exposes read-only Gmail inspection tools: message and
// draft snapshots plus attachment listings.
package gmail_tools
