package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Request builds one HTTP call. Not safe for reuse after execution.
type Request struct {
	client  *Client
	headers map[string]string
	body    any
	result  any
}

// SetBody sets the request body. []byte, string and io.Reader pass through;
// anything else is JSON-encoded with a matching Content-Type.
func (r *Request) SetBody(body any) *Request {
	r.body = body
	return r
}

// SetHeader sets a request header.
func (r *Request) SetHeader(key, value string) *Request {
	r.headers[key] = value
	return r
}

// SetResult sets the target for JSON-decoding the response body.
func (r *Request) SetResult(result any) *Request {
	r.result = result
	return r
}

// Get executes a GET request.
func (r *Request) Get(ctx context.Context, url string) (*Response, error) {
	return r.do(ctx, http.MethodGet, url)
}

// Post executes a POST request.
func (r *Request) Post(ctx context.Context, url string) (*Response, error) {
	return r.do(ctx, http.MethodPost, url)
}

// Response holds the fully-read outcome of a request.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	body       []byte
}

// Body returns the raw response body.
func (r *Response) Body() []byte {
	return r.body
}

// String returns the response body as a string.
func (r *Response) String() string {
	return string(r.body)
}

// IsSuccess reports whether the status code is below 400.
func (r *Response) IsSuccess() bool {
	return r.StatusCode < 400
}

// IsError reports whether the status code is 400 or above.
func (r *Response) IsError() bool {
	return r.StatusCode >= 400
}

func (r *Request) do(ctx context.Context, method, url string) (*Response, error) {
	ctx, span := r.client.tracer.Start(ctx, "http.request",
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", url),
			attribute.String("upstream", r.client.name),
		),
	)
	defer span.End()

	bodyReader, err := r.encodeBody()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to encode body")
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create request")
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := r.client.hc.Do(req)
	if err != nil {
		r.recordFailure(ctx, span, method, err)
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		r.recordFailure(ctx, span, method, err)
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	out := &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		body:       body,
	}

	// A decode miss is not a transport failure: error responses routinely
	// carry a different shape. The caller checks the status first.
	if r.result != nil && len(body) > 0 {
		if decErr := json.Unmarshal(body, r.result); decErr != nil {
			span.RecordError(decErr)
		}
	}

	if out.IsError() {
		span.SetAttributes(attribute.Int("http.status_code", out.StatusCode))
	}
	r.count(ctx, method, out.IsSuccess())

	return out, nil
}

func (r *Request) encodeBody() (io.Reader, error) {
	switch b := r.body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.NewReader(b), nil
	case string:
		return strings.NewReader(b), nil
	case io.Reader:
		return b, nil
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		if _, ok := r.headers["Content-Type"]; !ok {
			r.headers["Content-Type"] = "application/json"
		}
		return bytes.NewReader(raw), nil
	}
}

func (r *Request) recordFailure(ctx context.Context, span trace.Span, method string, err error) {
	span.RecordError(err)
	if errors.Is(err, context.Canceled) {
		span.SetAttributes(attribute.Bool("context.cancelled", true))
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		span.SetAttributes(attribute.Bool("request.timeout", true))
	}
	span.SetStatus(codes.Error, err.Error())
	r.count(ctx, method, false)
}

func (r *Request) count(ctx context.Context, method string, success bool) {
	r.client.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("upstream", r.client.name),
		attribute.String("http.method", method),
		attribute.Bool("success", success),
	))
}
