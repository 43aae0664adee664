// Package metrics configures OpenTelemetry metric export.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
)

// Provider selects a metric export backend.
type Provider string

const (
	PrometheusProvider Provider = "prometheus"
	OTLPProvider       Provider = "otlp"
)

// ProviderCfg configures one export backend. Endpoint and Headers only
// apply to OTLP.
type ProviderCfg struct {
	Provider Provider
	Endpoint string
	Headers  map[string]string
	Insecure bool
}

// Config aggregates the chosen backends.
type Config struct {
	ServiceName string
	Providers   []ProviderCfg
}

// OptionFn configures NewMetricProvider.
type OptionFn func(Config) Config

// WithServiceName tags exported metrics with the service name.
func WithServiceName(serviceName string) OptionFn {
	return func(cfg Config) Config {
		cfg.ServiceName = serviceName
		return cfg
	}
}

// WithProviderConfig adds an export backend. May be given more than once.
func WithProviderConfig(provider ProviderCfg) OptionFn {
	return func(cfg Config) Config {
		cfg.Providers = append(cfg.Providers, provider)
		return cfg
	}
}

// MetricProvider hands out meters and shuts down export.
type MetricProvider interface {
	Meter(name string, options ...metric.MeterOption) metric.Meter
	Shutdown(ctx context.Context) error
}

// NewMetricProvider builds the configured readers, installs the global
// meter provider and returns it. With no backend configured it defaults
// to Prometheus.
func NewMetricProvider(options ...OptionFn) (MetricProvider, error) {
	ctx := context.Background()

	var cfg Config
	for _, opt := range options {
		cfg = opt(cfg)
	}
	if len(cfg.Providers) == 0 {
		cfg.Providers = []ProviderCfg{{Provider: PrometheusProvider}}
	}

	opts := make([]sdkmetric.Option, 0, len(cfg.Providers)+1)
	for _, p := range cfg.Providers {
		reader, err := newReader(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("metrics: %s reader: %w", p.Provider, err)
		}
		opts = append(opts, sdkmetric.WithReader(reader))
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = os.Getenv("OTEL_SERVICE_NAME")
	}
	opts = append(opts, sdkmetric.WithResource(
		resource.NewSchemaless(semconv.ServiceNameKey.String(serviceName)),
	))

	provider := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(provider)

	return provider, nil
}

func newReader(ctx context.Context, p ProviderCfg) (sdkmetric.Reader, error) {
	switch p.Provider {
	case PrometheusProvider:
		return prometheus.New()
	case OTLPProvider:
		otlpOpts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpointURL(p.Endpoint),
			otlpmetricgrpc.WithHeaders(p.Headers),
		}
		if p.Insecure {
			otlpOpts = append(otlpOpts, otlpmetricgrpc.WithInsecure())
		}
		exp, err := otlpmetricgrpc.New(ctx, otlpOpts...)
		if err != nil {
			return nil, err
		}
		return sdkmetric.NewPeriodicReader(exp), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", p.Provider)
	}
}

// PromServerConfig configures the Prometheus scrape endpoint.
type PromServerConfig struct {
	port string
}

// PromOptionFn configures ServePrometheusMetrics.
type PromOptionFn func(PromServerConfig) PromServerConfig

// WithPort overrides the scrape port.
func WithPort(port string) PromOptionFn {
	return func(cfg PromServerConfig) PromServerConfig {
		cfg.port = port
		return cfg
	}
}

// ServePrometheusMetrics blocks serving /metrics; run it in a goroutine.
func ServePrometheusMetrics(opts ...PromOptionFn) error {
	cfg := PromServerConfig{port: "2223"}
	for _, o := range opts {
		cfg = o(cfg)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              ":" + cfg.port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}
