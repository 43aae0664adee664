// Package apm configures OpenTelemetry trace export.
package apm

import (
	"context"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"

	"github.com/routefi/trade-router/internal/logger"
)

// Provider selects the span export backend. Endpoint and optional headers
// come from the standard OTEL_EXPORTER_OTLP_* environment variables.
type Provider string

const (
	ZipkinProvider   Provider = "zipkin"
	OTLPGRPCProvider Provider = "otlp-grpc"
	OTLPHTTPProvider Provider = "otlp-http"
	ConsoleProvider  Provider = "console"
	EmptyProvider    Provider = "empty"
)

// TraceProvider flushes and shuts down span export on Stop.
type TraceProvider interface {
	Stop() error
}

type noopTraceProvider struct{}

func (noopTraceProvider) Stop() error { return nil }

type sdkTraceProvider struct {
	tp *sdktrace.TracerProvider
}

func (p *sdkTraceProvider) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return p.tp.Shutdown(ctx)
}

// TracerOptions collects the chosen exporter before the provider is built.
type TracerOptions struct {
	exporter sdktrace.SpanExporter
	name     string
	useEmpty bool
}

// TracerOption configures NewTraceProvider.
type TracerOption func(*TracerOptions)

// WithProvider selects and constructs the span exporter. An unknown
// provider or an exporter that fails to initialize degrades to no export;
// tracing must never take the router down.
func WithProvider(provider Provider, log logger.LoggerInterface) TracerOption {
	return func(o *TracerOptions) {
		exp, err := newExporter(provider)
		if err != nil {
			log.Error(context.Background(), "trace exporter init failed, tracing disabled",
				"provider", string(provider), "error", err)
			o.useEmpty = true
			return
		}
		if exp == nil {
			log.Warn(context.Background(), "unknown trace provider, tracing disabled",
				"provider", string(provider))
			o.useEmpty = true
			return
		}
		o.exporter = exp
		o.name = string(provider)
	}
}

func newExporter(provider Provider) (sdktrace.SpanExporter, error) {
	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")

	switch provider {
	case ZipkinProvider:
		return zipkin.New(endpoint)
	case OTLPGRPCProvider:
		return otlptracegrpc.New(context.Background(),
			otlptracegrpc.WithEndpointURL(endpoint),
			otlptracegrpc.WithHeaders(otlpHeaders()))
	case OTLPHTTPProvider:
		return otlptracehttp.New(context.Background(),
			otlptracehttp.WithEndpointURL(endpoint),
			otlptracehttp.WithHeaders(otlpHeaders()))
	case ConsoleProvider:
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		return nil, nil
	}
}

// otlpHeaders parses OTEL_EXPORTER_OTLP_HEADERS ("key=value" per entry).
func otlpHeaders() map[string]string {
	raw := os.Getenv("OTEL_EXPORTER_OTLP_HEADERS")
	if raw == "" {
		return nil
	}

	headers := make(map[string]string)
	for _, entry := range strings.Split(raw, ",") {
		kv := strings.SplitN(entry, "=", 2)
		if len(kv) == 2 {
			headers[kv[0]] = kv[1]
		}
	}
	return headers
}

// NewTraceProvider installs the global tracer provider and W3C propagators.
// Service name comes from OTEL_SERVICE_NAME.
func NewTraceProvider(log logger.LoggerInterface, options ...TracerOption) TraceProvider {
	opts := &TracerOptions{}
	for _, opt := range options {
		opt(opts)
	}

	if opts.useEmpty || opts.exporter == nil {
		return noopTraceProvider{}
	}

	rsrc, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(os.Getenv("OTEL_SERVICE_NAME")),
			attribute.String("otel.provider", opts.name),
		))

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(opts.exporter),
		sdktrace.WithResource(rsrc),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))

	return &sdkTraceProvider{tp: tp}
}
