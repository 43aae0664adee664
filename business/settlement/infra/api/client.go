// Package api submits batch payloads to the external settlement service.
package api

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/routefi/trade-router/business/settlement/domain"
	"github.com/routefi/trade-router/internal/apperror"
	"github.com/routefi/trade-router/internal/circuitbreaker"
	"github.com/routefi/trade-router/internal/httpclient"
	"github.com/routefi/trade-router/internal/logger"
	"github.com/routefi/trade-router/internal/ratelimit"
)

// ClientConfig holds settlement API client configuration.
type ClientConfig struct {
	Endpoint          string
	RequestTimeout    time.Duration
	RequestsPerMinute int
}

// DefaultClientConfig returns sensible defaults for the demo settlement API.
func DefaultClientConfig(endpoint string) ClientConfig {
	return ClientConfig{
		Endpoint:          endpoint,
		RequestTimeout:    10 * time.Second,
		RequestsPerMinute: 30,
	}
}

// batchRequest is the wire format of a submission.
type batchRequest struct {
	Targets   []string `json:"targets"`
	CallData  []string `json:"callData"`
	Condition string   `json:"condition"`
	Deadline  int64    `json:"deadline"` // unix seconds
}

// batchResponse is the settlement service's acknowledgement.
type batchResponse struct {
	BatchID string `json:"batchId"`
	Status  string `json:"status"`
}

// Client submits payloads over HTTP. Retries are the settlement service's
// concern; the client makes one attempt per Submit and reports the outcome.
type Client struct {
	config  ClientConfig
	http    *httpclient.Client
	limiter *ratelimit.Limiter
	cb      *circuitbreaker.CircuitBreaker[*batchResponse]
	logger  logger.LoggerInterface
}

// NewClient creates a settlement API client.
func NewClient(cfg ClientConfig, log logger.LoggerInterface) (*Client, error) {
	httpClient, err := httpclient.New(
		httpclient.WithName("settlement"),
		httpclient.WithTimeout(cfg.RequestTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}

	return &Client{
		config:  cfg,
		http:    httpClient,
		limiter: ratelimit.New(cfg.RequestsPerMinute),
		cb:      circuitbreaker.New[*batchResponse](circuitbreaker.DefaultConfig("settlement-api")),
		logger:  log,
	}, nil
}

// Submit posts the payload to the settlement endpoint. The payload is
// discarded after this call either way; the caller gets a receipt or an
// opaque SettlementFailure / SettlementRejected error, never a retry.
func (c *Client) Submit(ctx context.Context, payload domain.BatchPayload) (domain.SubmitReceipt, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.SubmitReceipt{}, apperror.Wrap(err, apperror.CodeSettlementFailure,
			"rate limit wait aborted")
	}

	req := buildRequest(payload)

	resp, err := c.cb.Execute(func() (*batchResponse, error) {
		return c.post(ctx, req)
	})
	if err != nil {
		c.logger.Warn(ctx, "batch submission failed", "error", err)
		return domain.SubmitReceipt{}, err
	}

	c.logger.Info(ctx, "batch submitted",
		"batch_id", resp.BatchID,
		"status", resp.Status,
		"calls", payload.Len())

	return domain.SubmitReceipt{
		BatchID:  resp.BatchID,
		Accepted: resp.Status == "accepted",
	}, nil
}

func (c *Client) post(ctx context.Context, req batchRequest) (*batchResponse, error) {
	var result batchResponse

	resp, err := c.http.NewRequest().
		SetBody(req).
		SetResult(&result).
		Post(ctx, c.config.Endpoint+"/v1/batches")
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeSettlementFailure, c.config.Endpoint)
	}

	switch {
	case resp.IsSuccess():
		return &result, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, apperror.New(apperror.CodeSettlementRejected,
			apperror.WithContext(fmt.Sprintf("status %d: %s", resp.StatusCode, resp.String())))
	default:
		return nil, apperror.New(apperror.CodeSettlementFailure,
			apperror.WithContext(fmt.Sprintf("status %d", resp.StatusCode)))
	}
}

// buildRequest flattens the payload into wire form, hex-encoding each call.
func buildRequest(payload domain.BatchPayload) batchRequest {
	targets := payload.Targets()
	callData := payload.CallData()

	req := batchRequest{
		Targets:   make([]string, len(targets)),
		CallData:  make([]string, len(callData)),
		Condition: payload.Condition(),
		Deadline:  payload.Deadline().Unix(),
	}
	for i, t := range targets {
		req.Targets[i] = t.Hex()
	}
	for i, d := range callData {
		req.CallData[i] = hexutil.Encode(d)
	}
	return req
}
