// Package wsfeed consumes pool snapshots from a WebSocket liquidity feed.
package wsfeed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/routefi/trade-router/business/liquidity/app"
	"github.com/routefi/trade-router/business/liquidity/domain"
	"github.com/routefi/trade-router/internal/apperror"
	"github.com/routefi/trade-router/internal/asset"
	"github.com/routefi/trade-router/internal/logger"
	"github.com/routefi/trade-router/internal/wsconn"
)

const meterName = "wsfeed"

// Config holds WebSocket feed configuration.
type Config struct {
	URL            string
	MaxReconnects  int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// poolMessage is the wire format of one venue entry.
type poolMessage struct {
	VenueID    string `json:"venueId"`
	ReserveIn  string `json:"reserveIn"`
	ReserveOut string `json:"reserveOut"`
	FeeBps     int32  `json:"feeBps"`
}

// snapshotMessage is the wire format of a full pair snapshot.
type snapshotMessage struct {
	Pair      string        `json:"pair"`
	Venues    []poolMessage `json:"venues"`
	Timestamp int64         `json:"ts"` // unix millis
}

// feedMetrics holds OTEL metric instruments.
type feedMetrics struct {
	snapshotsReceived metric.Int64Counter
	decodeErrors      metric.Int64Counter
}

// Feed implements the liquidity Feed port over a WebSocket stream.
type Feed struct {
	config   Config
	conn     *wsconn.Client
	registry *asset.Registry
	logger   logger.LoggerInterface
	metrics  *feedMetrics
}

// Ensure Feed implements the app Feed port.
var _ app.Feed = (*Feed)(nil)

// New creates a WebSocket liquidity feed.
func New(cfg Config, registry *asset.Registry, log logger.LoggerInterface) (*Feed, error) {
	wsCfg := wsconn.DefaultConfig(cfg.URL, "liquidity-feed")
	if cfg.InitialBackoff > 0 {
		wsCfg.InitialBackoff = cfg.InitialBackoff
	}
	if cfg.MaxBackoff > 0 {
		wsCfg.MaxBackoff = cfg.MaxBackoff
	}
	wsCfg.MaxReconnects = cfg.MaxReconnects

	conn, err := wsconn.New(wsCfg)
	if err != nil {
		return nil, apperror.New(apperror.CodeFeedConnectionError,
			apperror.WithCause(err),
			apperror.WithContext(cfg.URL))
	}

	f := &Feed{
		config:   cfg,
		conn:     conn,
		registry: registry,
		logger:   log,
	}

	if err := f.initMetrics(); err != nil {
		return nil, err
	}

	return f, nil
}

func (f *Feed) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	f.metrics = &feedMetrics{}

	f.metrics.snapshotsReceived, err = meter.Int64Counter(
		"liquidity_snapshots_total",
		metric.WithDescription("Total pool snapshots received"),
	)
	if err != nil {
		return err
	}

	f.metrics.decodeErrors, err = meter.Int64Counter(
		"liquidity_decode_errors_total",
		metric.WithDescription("Total feed messages that failed to decode"),
	)
	return err
}

// Run connects and pumps decoded snapshots into sink until ctx is cancelled.
func (f *Feed) Run(ctx context.Context, sink func(domain.Snapshot)) error {
	f.conn.OnMessage(func(msgCtx context.Context, msg []byte) {
		snap, err := f.decode(msg)
		if err != nil {
			f.metrics.decodeErrors.Add(msgCtx, 1)
			f.logger.Warn(msgCtx, "dropping feed message", "error", err)
			return
		}
		f.metrics.snapshotsReceived.Add(msgCtx, 1)
		sink(snap)
	})

	if err := f.conn.Connect(ctx); err != nil {
		return apperror.New(apperror.CodeFeedConnectionError,
			apperror.WithCause(err),
			apperror.WithContext(f.config.URL))
	}

	<-ctx.Done()
	_ = f.conn.Close()
	return ctx.Err()
}

func (f *Feed) decode(msg []byte) (domain.Snapshot, error) {
	var wire snapshotMessage
	if err := json.Unmarshal(msg, &wire); err != nil {
		return domain.Snapshot{}, apperror.New(apperror.CodeFeedDecodeError,
			apperror.WithCause(err))
	}

	pair, err := domain.ParsePair(wire.Pair, f.registry)
	if err != nil {
		return domain.Snapshot{}, err
	}

	pools := make([]domain.Pool, 0, len(wire.Venues))
	for _, v := range wire.Venues {
		reserveIn, err := decimal.NewFromString(v.ReserveIn)
		if err != nil {
			return domain.Snapshot{}, apperror.New(apperror.CodeFeedDecodeError,
				apperror.WithCause(err),
				apperror.WithContext("reserveIn for venue "+v.VenueID))
		}
		reserveOut, err := decimal.NewFromString(v.ReserveOut)
		if err != nil {
			return domain.Snapshot{}, apperror.New(apperror.CodeFeedDecodeError,
				apperror.WithCause(err),
				apperror.WithContext("reserveOut for venue "+v.VenueID))
		}
		pools = append(pools, domain.Pool{
			VenueID:    v.VenueID,
			ReserveIn:  reserveIn,
			ReserveOut: reserveOut,
			FeeBps:     v.FeeBps,
		})
	}

	return domain.Snapshot{
		Pair:      pair,
		Pools:     pools,
		Timestamp: time.UnixMilli(wire.Timestamp),
	}, nil
}
