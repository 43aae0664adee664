// Package httpclient wraps net/http with OpenTelemetry tracing and request
// metrics for calls to external services.
package httpclient

import (
	"context"
	"net"
	"net/http"
	"net/http/httptrace"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/httptrace/otelhttptrace"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTimeout         = 10 * time.Second
	defaultDialKeepAlive   = 10 * time.Second
	defaultMaxConnsPerHost = 5
	defaultIdleConnTimeout = 2 * time.Minute

	requestCounterName = "http_client_requests_total"
)

// Client issues traced, counted HTTP requests against one named upstream.
type Client struct {
	hc       *http.Client
	name     string
	tracer   trace.Tracer
	requests metric.Int64Counter
}

type settings struct {
	name          string
	timeout       time.Duration
	transport     http.RoundTripper
	meterProvider metric.MeterProvider
	tracer        trace.Tracer
}

// Option configures a Client.
type Option func(*settings)

// WithName tags the client's spans and metrics with the upstream name.
func WithName(name string) Option {
	return func(s *settings) {
		s.name = name
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		s.timeout = timeout
	}
}

// WithTransport overrides the HTTP transport. Useful in tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(s *settings) {
		s.transport = rt
	}
}

// WithMeterProvider overrides the global OTel meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *settings) {
		s.meterProvider = mp
	}
}

// New creates an instrumented client. Every request runs through an
// otelhttp transport, so connection-level timing lands in the active span.
func New(opts ...Option) (*Client, error) {
	s := settings{
		name:    "default",
		timeout: defaultTimeout,
	}
	for _, o := range opts {
		o(&s)
	}

	transport := s.transport
	if transport == nil {
		transport = &http.Transport{
			DialContext: (&net.Dialer{
				KeepAlive: defaultDialKeepAlive,
			}).DialContext,
			MaxConnsPerHost: defaultMaxConnsPerHost,
			IdleConnTimeout: defaultIdleConnTimeout,
		}
	}

	hc := &http.Client{
		Timeout: s.timeout,
		Transport: otelhttp.NewTransport(
			transport,
			otelhttp.WithClientTrace(func(ctx context.Context) *httptrace.ClientTrace {
				return otelhttptrace.NewClientTrace(ctx)
			}),
		),
	}

	mp := s.meterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(
		"httpclient",
		metric.WithInstrumentationAttributes(attribute.String("upstream", s.name)),
	)

	requests, err := meter.Int64Counter(
		requestCounterName,
		metric.WithDescription("Total HTTP requests issued"),
	)
	if err != nil {
		return nil, err
	}

	tracer := s.tracer
	if tracer == nil {
		tracer = otel.Tracer("httpclient")
	}

	return &Client{
		hc:       hc,
		name:     s.name,
		tracer:   tracer,
		requests: requests,
	}, nil
}

// NewRequest starts a request builder bound to this client.
func (c *Client) NewRequest() *Request {
	return &Request{
		client:  c,
		headers: make(map[string]string),
	}
}
