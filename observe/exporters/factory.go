// Package exporters provides factory functions for creating OpenTelemetry exporters.
package exporters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	prom "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ErrEndpointNotConfigured indicates an exporter needs an endpoint and
// none was given in the config or the environment.
var ErrEndpointNotConfigured = errors.New("exporters: endpoint not configured")

// ExporterConfig selects and configures one exporter.
type ExporterConfig struct {
	// Name is stdout|otlp|jaeger|prometheus|none.
	Name string

	// Endpoint is host:port or a URL. Empty falls back to the standard
	// OTEL_EXPORTER_* environment variables.
	Endpoint string

	// Insecure disables TLS for OTLP.
	Insecure bool

	// Writer receives stdout exporter output. Nil means os.Stdout.
	Writer io.Writer

	// Registerer receives the prometheus collector. Nil means the
	// prometheus default registerer.
	Registerer prom.Registerer
}

func (c ExporterConfig) writer() io.Writer {
	if c.Writer != nil {
		return c.Writer
	}
	return os.Stdout
}

// endpoint returns the configured endpoint or the first set env var.
func (c ExporterConfig) endpoint(envVars ...string) string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	for _, name := range envVars {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

func isURL(endpoint string) bool {
	return strings.Contains(endpoint, "://")
}

// NewTracingExporter creates a trace span exporter based on cfg.Name.
// Supported exporters: stdout, otlp, jaeger, none
func NewTracingExporter(ctx context.Context, cfg ExporterConfig) (sdktrace.SpanExporter, error) {
	switch cfg.Name {
	case "stdout":
		return stdouttrace.New(stdouttrace.WithWriter(cfg.writer()))

	case "otlp":
		endpoint := cfg.endpoint("OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_TRACES_ENDPOINT")
		if endpoint == "" {
			return nil, fmt.Errorf("%w: set OTEL_EXPORTER_OTLP_ENDPOINT or OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", ErrEndpointNotConfigured)
		}
		return otlptracegrpc.New(ctx, traceOptions(endpoint, cfg.Insecure)...)

	case "jaeger":
		// Jaeger accepts OTLP natively.
		endpoint := cfg.endpoint("OTEL_EXPORTER_JAEGER_ENDPOINT")
		if endpoint == "" {
			return nil, fmt.Errorf("%w: set OTEL_EXPORTER_JAEGER_ENDPOINT", ErrEndpointNotConfigured)
		}
		return otlptracegrpc.New(ctx, traceOptions(endpoint, cfg.Insecure)...)

	case "none", "":
		return stdouttrace.New(stdouttrace.WithWriter(io.Discard))

	default:
		return nil, fmt.Errorf("unknown exporter: %q", cfg.Name)
	}
}

func traceOptions(endpoint string, insecure bool) []otlptracegrpc.Option {
	var opts []otlptracegrpc.Option
	if isURL(endpoint) {
		opts = append(opts, otlptracegrpc.WithEndpointURL(endpoint))
	} else {
		opts = append(opts, otlptracegrpc.WithEndpoint(endpoint))
	}
	if insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	return opts
}

// NewMetricsReader creates a metrics reader based on cfg.Name.
// Supported exporters: stdout, otlp, prometheus, none
func NewMetricsReader(ctx context.Context, cfg ExporterConfig) (sdkmetric.Reader, error) {
	switch cfg.Name {
	case "stdout":
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(cfg.writer()))
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout metrics exporter: %w", err)
		}
		return sdkmetric.NewPeriodicReader(exp), nil

	case "otlp":
		endpoint := cfg.endpoint("OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_METRICS_ENDPOINT")
		if endpoint == "" {
			return nil, fmt.Errorf("%w: set OTEL_EXPORTER_OTLP_ENDPOINT or OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", ErrEndpointNotConfigured)
		}
		exp, err := otlpmetricgrpc.New(ctx, metricOptions(endpoint, cfg.Insecure)...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
		}
		return sdkmetric.NewPeriodicReader(exp), nil

	case "prometheus":
		var opts []prometheus.Option
		if cfg.Registerer != nil {
			opts = append(opts, prometheus.WithRegisterer(cfg.Registerer))
		}
		exp, err := prometheus.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		return exp, nil

	case "none", "":
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(io.Discard))
		if err != nil {
			return nil, err
		}
		return sdkmetric.NewPeriodicReader(exp), nil

	default:
		return nil, fmt.Errorf("unknown metrics exporter: %q", cfg.Name)
	}
}

func metricOptions(endpoint string, insecure bool) []otlpmetricgrpc.Option {
	var opts []otlpmetricgrpc.Option
	if isURL(endpoint) {
		opts = append(opts, otlpmetricgrpc.WithEndpointURL(endpoint))
	} else {
		opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
	}
	if insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	return opts
}
