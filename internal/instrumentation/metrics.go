package instrumentation

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the instruments for recording session and exchange telemetry.
// All recording methods are safe to call on a nil receiver, which keeps
// callers free of enabled-checks.
type Metrics struct {
	meter metric.Meter

	activeSessions     metric.Int64UpDownCounter
	exchangeCounter    metric.Int64Counter
	exchangeDuration   metric.Float64Histogram
	recommendations    metric.Int64Counter
	toolInvocations    metric.Int64Counter
	toolDuration       metric.Float64Histogram
	candidateLoadFails metric.Int64Counter
}

// NewMetrics creates the metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{meter: meter}

	var err error

	m.activeSessions, err = meter.Int64UpDownCounter(
		"draftdesk_active_sessions",
		metric.WithDescription("Number of sessions currently held in the store"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, err
	}

	m.exchangeCounter, err = meter.Int64Counter(
		"draftdesk_ai_exchanges_total",
		metric.WithDescription("Total AI exchanges by provider and result"),
		metric.WithUnit("{exchange}"),
	)
	if err != nil {
		return nil, err
	}

	// AI exchanges routinely take minutes, so the buckets extend well past
	// the defaults.
	m.exchangeDuration, err = meter.Float64Histogram(
		"draftdesk_ai_exchange_duration_seconds",
		metric.WithDescription("Wall-clock duration of AI exchanges"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(1, 5, 15, 30, 60, 120, 300, 600, 1200),
	)
	if err != nil {
		return nil, err
	}

	m.recommendations, err = meter.Int64Counter(
		"draftdesk_attachment_recommendations_total",
		metric.WithDescription("Attachment recommendations resolved, by match stage"),
		metric.WithUnit("{recommendation}"),
	)
	if err != nil {
		return nil, err
	}

	m.toolInvocations, err = meter.Int64Counter(
		"draftdesk_tool_invocations_total",
		metric.WithDescription("MCP tool invocations by tool and status"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, err
	}

	m.toolDuration, err = meter.Float64Histogram(
		"draftdesk_tool_duration_seconds",
		metric.WithDescription("Duration of MCP tool invocations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.candidateLoadFails, err = meter.Int64Counter(
		"draftdesk_candidate_load_failures_total",
		metric.WithDescription("Failed attempts to load attachment candidates from Drive"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// AddActiveSessions adjusts the active session gauge by delta.
func (m *Metrics) AddActiveSessions(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.activeSessions.Add(ctx, delta)
}

// RecordExchange records one completed AI exchange. result is one of
// success, error, or throttled.
func (m *Metrics) RecordExchange(ctx context.Context, provider, result string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("result", result),
	)
	m.exchangeCounter.Add(ctx, 1, attrs)
	m.exchangeDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordRecommendation records one resolved attachment recommendation.
// stage identifies the match stage that produced it, or "unmatched".
func (m *Metrics) RecordRecommendation(ctx context.Context, stage string) {
	if m == nil {
		return
	}
	m.recommendations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("stage", stage),
	))
}

// RecordToolInvocation records one MCP tool call.
func (m *Metrics) RecordToolInvocation(ctx context.Context, tool, status string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("status", status),
	)
	m.toolInvocations.Add(ctx, 1, attrs)
	m.toolDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordCandidateLoadFailure records a failed Drive candidate listing.
func (m *Metrics) RecordCandidateLoadFailure(ctx context.Context) {
	if m == nil {
		return
	}
	m.candidateLoadFails.Add(ctx, 1)
}
