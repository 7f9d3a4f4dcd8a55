// Package instrumentation provides OpenTelemetry metrics and tracing for
// draftdesk. It wires a Prometheus, OTLP, or stdout exporter behind a single
// Provider and exposes the domain instruments (session gauge, exchange
// counters and latency histogram, recommendation and tool counters) through
// the Metrics type. All Metrics recording methods are nil-receiver safe so
// call sites need no enabled-checks.
package instrumentation
