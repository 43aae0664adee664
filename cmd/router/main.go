// Package main is the entry point for the trade router.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/routefi/trade-router/business/liquidity"
	liquidityDI "github.com/routefi/trade-router/business/liquidity/di"
	"github.com/routefi/trade-router/business/routing"
	routingDI "github.com/routefi/trade-router/business/routing/di"
	routingDomain "github.com/routefi/trade-router/business/routing/domain"
	"github.com/routefi/trade-router/business/settlement"
	settlementDI "github.com/routefi/trade-router/business/settlement/di"
	"github.com/routefi/trade-router/internal/apm"
	"github.com/routefi/trade-router/internal/config"
	"github.com/routefi/trade-router/internal/health"
	"github.com/routefi/trade-router/internal/logger"
	"github.com/routefi/trade-router/internal/metrics"
	"github.com/routefi/trade-router/internal/monolith"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	pair := flag.String("pair", "ETH-USDC", "Trading pair to route")
	amount := flag.String("amount", "", "Trade size in base units (defaults to config)")
	submit := flag.Bool("submit", false, "Submit the built batch to the settlement endpoint")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("trade-router %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		cancel()
	}()

	if err := run(ctx, *configPath, *pair, *amount, *submit); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, pair, amount string, submit bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logLevel := logger.LevelInfo
	switch cfg.App.LogLevel {
	case "debug":
		logLevel = logger.LevelDebug
	case "warn":
		logLevel = logger.LevelWarn
	case "error":
		logLevel = logger.LevelError
	}
	log := logger.New(os.Stderr, logLevel, cfg.App.Name, nil)
	log.Info(ctx, "starting trade router",
		"version", version,
		"environment", cfg.App.Environment,
	)

	// Initialize observability if enabled
	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}

		traceProvider = apm.NewTraceProvider(log, apm.WithProvider(apm.ZipkinProvider, log))
		log.Info(ctx, "tracing initialized", "provider", "zipkin", "endpoint", cfg.Telemetry.OTLPEndpoint)

		if _, err := metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.ProviderCfg{
				Provider: metrics.PrometheusProvider,
			}),
		); err != nil {
			return fmt.Errorf("failed to init metrics: %w", err)
		}

		port := cfg.Telemetry.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go func() {
			if err := metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port))); err != nil {
				log.Warn(ctx, "prometheus metrics server stopped", "error", err)
			}
		}()
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	// Health check server
	healthServer := health.NewServer(8081, version)
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", 8081)
	}
	defer healthServer.Stop(ctx)

	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}

	// Modules in dependency order
	modules := []monolith.Module{
		&liquidity.Module{},  // Provides pool snapshots
		&routing.Module{},    // Depends on liquidity
		&settlement.Module{}, // Consumes routing legs
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	liquiditySvc := liquidityDI.GetLiquidityService(mono.Services())
	healthServer.RegisterCheck("liquidity", liquiditySvc.Healthy)

	tradeSize := decimal.NewFromFloat(cfg.Routing.DefaultTradeSize)
	if amount != "" {
		tradeSize, err = decimal.NewFromString(amount)
		if err != nil {
			return fmt.Errorf("invalid -amount: %w", err)
		}
	}

	return runQuoteLoop(ctx, mono, pair, tradeSize, submit, log)
}

// runQuoteLoop requests a fresh quote on an interval. Each request
// supersedes the previous one, so a slow computation never blocks a newer
// snapshot from being quoted.
func runQuoteLoop(ctx context.Context, mono monolith.Monolith, pair string, tradeSize decimal.Decimal, submit bool, log *logger.Logger) error {
	session := routingDI.GetSession(mono.Services())
	defer session.Close()

	reporter := routingDI.GetReporter(mono.Services())
	if err := reporter.Start(ctx); err != nil {
		return fmt.Errorf("failed to start reporter: %w", err)
	}

	settlementSvc := settlementDI.GetSettlementService(mono.Services())

	interval := mono.Config().Liquidity.UpdateInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info(ctx, "quote loop started", "pair", pair, "trade_size", tradeSize.String())

	for {
		select {
		case <-ctx.Done():
			log.Info(ctx, "shutting down")
			return reporter.Stop()
		case <-ticker.C:
			session.Request(ctx, pair, tradeSize, func(quote *routingDomain.Quote, err error) {
				if err != nil {
					log.Warn(ctx, "quote failed", "pair", pair, "error", err)
					return
				}
				reporter.Report(quote)

				if !submit || len(quote.Simulation.Legs) == 0 {
					return
				}
				receipt, err := settlementSvc.Execute(ctx, quote.Simulation.Legs)
				if err != nil {
					log.Warn(ctx, "batch execution failed", "error", err)
					return
				}
				log.Info(ctx, "batch accepted",
					"batch_id", receipt.BatchID,
					"accepted", receipt.Accepted)
			})
		}
	}
}
