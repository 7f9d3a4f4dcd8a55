// Package server holds the shared server state and HTTP sidecars: the
// ServerContext carrying the session service and lazily created Google
// clients, Kubernetes-style health probes, and the dedicated Prometheus
// metrics listener.
package server
