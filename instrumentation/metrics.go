// Package instrumentation records gateway metrics with OpenTelemetry.
package instrumentation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/jrsteele09/go-oidc-bff"

// Metrics holds the instruments used by the gateway.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram

	LoginStarted      metric.Int64Counter
	CallbackProcessed metric.Int64Counter
	TokenRefresh      metric.Int64Counter
	ProxyRequests     metric.Int64Counter
	RateLimitExceeded metric.Int64Counter
}

// New creates instruments on mp, or on the global provider when mp is nil.
func New(mp metric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(meterName)
	m := &Metrics{}

	var err error
	if m.HTTPRequestsTotal, err = meter.Int64Counter("bff.http.requests.total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}")); err != nil {
		return nil, fmt.Errorf("failed to create http.requests.total counter: %w", err)
	}
	if m.HTTPRequestDuration, err = meter.Float64Histogram("bff.http.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms")); err != nil {
		return nil, fmt.Errorf("failed to create http.request.duration histogram: %w", err)
	}
	if m.LoginStarted, err = meter.Int64Counter("bff.login.started",
		metric.WithDescription("Number of authorization flows started"),
		metric.WithUnit("{flow}")); err != nil {
		return nil, fmt.Errorf("failed to create login.started counter: %w", err)
	}
	if m.CallbackProcessed, err = meter.Int64Counter("bff.callback.processed",
		metric.WithDescription("Number of provider callbacks processed"),
		metric.WithUnit("{callback}")); err != nil {
		return nil, fmt.Errorf("failed to create callback.processed counter: %w", err)
	}
	if m.TokenRefresh, err = meter.Int64Counter("bff.token.refresh",
		metric.WithDescription("Number of token refresh attempts by result"),
		metric.WithUnit("{refresh}")); err != nil {
		return nil, fmt.Errorf("failed to create token.refresh counter: %w", err)
	}
	if m.ProxyRequests, err = meter.Int64Counter("bff.proxy.requests",
		metric.WithDescription("Number of requests forwarded to the upstream API"),
		metric.WithUnit("{request}")); err != nil {
		return nil, fmt.Errorf("failed to create proxy.requests counter: %w", err)
	}
	if m.RateLimitExceeded, err = meter.Int64Counter("bff.ratelimit.exceeded",
		metric.WithDescription("Number of requests rejected by the rate limiter"),
		metric.WithUnit("{request}")); err != nil {
		return nil, fmt.Errorf("failed to create ratelimit.exceeded counter: %w", err)
	}
	return m, nil
}

func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, durationMs float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, durationMs, attrs)
}

func (m *Metrics) RecordLoginStarted(ctx context.Context) {
	if m == nil {
		return
	}
	m.LoginStarted.Add(ctx, 1)
}

// RecordCallback counts a callback by outcome: "success" or an error kind.
func (m *Metrics) RecordCallback(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.CallbackProcessed.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *Metrics) RecordRefresh(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.TokenRefresh.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (m *Metrics) RecordProxy(ctx context.Context, method string, status int) {
	if m == nil {
		return
	}
	m.ProxyRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.Int("http.status_code", status),
	))
}

func (m *Metrics) RecordRateLimitExceeded(ctx context.Context, route string) {
	if m == nil {
		return
	}
	m.RateLimitExceeded.Add(ctx, 1, metric.WithAttributes(attribute.String("http.route", route)))
}
