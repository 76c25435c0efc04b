package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	AuthRequestsTotal   metric.Int64Counter
	SessionsActive      metric.Int64UpDownCounter
	RoleChangesTotal    metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metric instruments ONLY ONCE. It gets
// the Meter from the globally configured MeterProvider, so it must run after
// the provider is set (or it falls back to the default no-op provider).
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("gatehouse")
		var err error
		m := &AppMetrics{}

		m.HTTPRequestsTotal, err = meter.Int64Counter(
			"http_requests_total",
			metric.WithDescription("Total number of HTTP requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create http_requests_total: %v", err)
		}

		m.HTTPRequestDuration, err = meter.Float64Histogram(
			"http_request_duration_seconds",
			metric.WithDescription("Duration of HTTP requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create http_request_duration_seconds: %v", err)
		}

		m.AuthRequestsTotal, err = meter.Int64Counter(
			"auth_requests_total",
			metric.WithDescription("Total number of signup/login/logout requests"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create auth_requests_total: %v", err)
		}

		m.SessionsActive, err = meter.Int64UpDownCounter(
			"sessions_active",
			metric.WithDescription("Sessions created minus sessions destroyed"),
			metric.WithUnit("{session}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create sessions_active: %v", err)
		}

		m.RoleChangesTotal, err = meter.Int64Counter(
			"role_changes_total",
			metric.WithDescription("Total number of promote/demote operations applied"),
			metric.WithUnit("{change}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create role_changes_total: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the global metrics instance, initializing it on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}
