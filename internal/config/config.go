// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Liquidity  LiquidityConfig  `mapstructure:"liquidity"`
	Routing    RoutingConfig    `mapstructure:"routing"`
	Settlement SettlementConfig `mapstructure:"settlement"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// LiquidityConfig holds pool snapshot feed configuration.
type LiquidityConfig struct {
	FeedMode       string        `mapstructure:"feed_mode"` // "simulated" or "websocket"
	WebSocketURL   string        `mapstructure:"websocket_url"`
	Pairs          []string      `mapstructure:"pairs"`
	Seed           int64         `mapstructure:"seed"`
	UpdateInterval time.Duration `mapstructure:"update_interval"`
	StaleTimeout   time.Duration `mapstructure:"stale_timeout"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
}

// RoutingConfig holds trade splitting and simulation configuration.
type RoutingConfig struct {
	MaxImpactPct     float64 `mapstructure:"max_impact_pct"`
	SlippageTolBps   int64   `mapstructure:"slippage_tol_bps"`
	BaseGas          uint64  `mapstructure:"base_gas"`
	PerLegGas        uint64  `mapstructure:"per_leg_gas"`
	JitterEnabled    bool    `mapstructure:"jitter_enabled"`
	JitterSeed       int64   `mapstructure:"jitter_seed"`
	DefaultTradeSize float64 `mapstructure:"default_trade_size"`
}

// MaxImpactPctDecimal returns the impact cap as decimal.Decimal.
func (c *RoutingConfig) MaxImpactPctDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MaxImpactPct)
}

// SlippageTolerance returns the slippage tolerance as a fraction (e.g. 0.005).
func (c *RoutingConfig) SlippageTolerance() decimal.Decimal {
	return decimal.New(c.SlippageTolBps, -4)
}

// SettlementConfig holds batch submission configuration.
type SettlementConfig struct {
	Endpoint          string            `mapstructure:"endpoint"`
	Recipient         string            `mapstructure:"recipient"`
	VenueRouters      map[string]string `mapstructure:"venue_routers"` // venueId -> router address
	RequestTimeout    time.Duration     `mapstructure:"request_timeout"`
	RequestsPerMinute int               `mapstructure:"requests_per_minute"`
	DeadlineWindow    time.Duration     `mapstructure:"deadline_window"`
}

// RecipientHex returns the recipient address as common.Address.
func (c *SettlementConfig) RecipientHex() common.Address {
	return common.HexToAddress(c.Recipient)
}

// VenueRouterMap returns the venue router table as common.Address values.
func (c *SettlementConfig) VenueRouterMap() map[string]common.Address {
	result := make(map[string]common.Address, len(c.VenueRouters))
	for venue, addr := range c.VenueRouters {
		result[venue] = common.HexToAddress(addr)
	}
	return result
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("ROUTER")
	v.AutomaticEnv()

	// Bind env vars to config keys
	bindEnvVars(v)

	// Set defaults
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "ROUTER_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "ROUTER_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "ROUTER_LOG_LEVEL", "LOG_LEVEL")

	// Liquidity
	v.BindEnv("liquidity.feed_mode", "ROUTER_FEED_MODE")
	v.BindEnv("liquidity.websocket_url", "ROUTER_FEED_WS_URL", "FEED_WS_URL")
	v.BindEnv("liquidity.pairs", "ROUTER_PAIRS")
	v.BindEnv("liquidity.seed", "ROUTER_FEED_SEED")

	// Routing
	v.BindEnv("routing.max_impact_pct", "ROUTER_MAX_IMPACT_PCT")
	v.BindEnv("routing.slippage_tol_bps", "ROUTER_SLIPPAGE_TOL_BPS")
	v.BindEnv("routing.jitter_enabled", "ROUTER_JITTER_ENABLED")
	v.BindEnv("routing.jitter_seed", "ROUTER_JITTER_SEED")

	// Settlement
	v.BindEnv("settlement.endpoint", "ROUTER_SETTLEMENT_ENDPOINT", "SETTLEMENT_ENDPOINT")
	v.BindEnv("settlement.recipient", "ROUTER_RECIPIENT")

	// Telemetry
	v.BindEnv("telemetry.enabled", "ROUTER_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "ROUTER_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "ROUTER_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "trade-router")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Liquidity defaults
	v.SetDefault("liquidity.feed_mode", "simulated")
	v.SetDefault("liquidity.pairs", []string{"ETH-USDC"})
	v.SetDefault("liquidity.seed", 1)
	v.SetDefault("liquidity.update_interval", "2s")
	v.SetDefault("liquidity.stale_timeout", "30s")
	v.SetDefault("liquidity.max_reconnects", 0) // infinite
	v.SetDefault("liquidity.initial_backoff", "1s")
	v.SetDefault("liquidity.max_backoff", "30s")

	// Routing defaults
	v.SetDefault("routing.max_impact_pct", 5.0)
	v.SetDefault("routing.slippage_tol_bps", 50) // 0.5%
	v.SetDefault("routing.base_gas", 150_000)
	v.SetDefault("routing.per_leg_gas", 120_000)
	v.SetDefault("routing.jitter_enabled", false)
	v.SetDefault("routing.jitter_seed", 1)
	v.SetDefault("routing.default_trade_size", 50_000)

	// Settlement defaults
	v.SetDefault("settlement.recipient", "0x000000000000000000000000000000000000dEaD")
	v.SetDefault("settlement.request_timeout", "10s")
	v.SetDefault("settlement.requests_per_minute", 60)
	v.SetDefault("settlement.deadline_window", "10m")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "trade-router")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Liquidity.FeedMode {
	case "simulated":
	case "websocket":
		if c.Liquidity.WebSocketURL == "" {
			return fmt.Errorf("liquidity.websocket_url is required in websocket feed mode")
		}
	default:
		return fmt.Errorf("unknown liquidity.feed_mode: %s", c.Liquidity.FeedMode)
	}
	if len(c.Liquidity.Pairs) == 0 {
		return fmt.Errorf("liquidity.pairs cannot be empty")
	}
	if c.Routing.MaxImpactPct <= 0 {
		return fmt.Errorf("routing.max_impact_pct must be positive")
	}
	if c.Routing.SlippageTolBps < 0 || c.Routing.SlippageTolBps >= 10_000 {
		return fmt.Errorf("routing.slippage_tol_bps out of range: %d", c.Routing.SlippageTolBps)
	}
	if !common.IsHexAddress(c.Settlement.Recipient) {
		return fmt.Errorf("invalid settlement.recipient: %s", c.Settlement.Recipient)
	}
	for venue, addr := range c.Settlement.VenueRouters {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("invalid router address for venue %s: %s", venue, addr)
		}
	}
	return nil
}
