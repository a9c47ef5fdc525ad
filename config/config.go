// Package config loads process configuration from the environment, with an
// optional .env file for local runs.
package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/yomariano/futurezxyback/internal/model"
)

// Config is the full process configuration. Every field has a default that
// gives a runnable local setup.
type Config struct {
	Symbols    string `envconfig:"SYMBOLS" default:"INJ_USDT"`
	Timeframes string `envconfig:"TIMEFRAMES" default:"1m,5m,15m,1h,4h"`

	FeedSource       string        `envconfig:"FEED_SOURCE" default:"mexc"`
	FeedURL          string        `envconfig:"FEED_URL" default:"wss://contract.mexc.com/edge"`
	FeedPingInterval time.Duration `envconfig:"FEED_PING_INTERVAL" default:"15s"`
	ReconnectDelay   time.Duration `envconfig:"RECONNECT_DELAY" default:"5s"`
	ReconnectMax     time.Duration `envconfig:"RECONNECT_MAX" default:"5s"`

	SeedSource     string        `envconfig:"SEED_SOURCE" default:"rest"`
	SeedBaseURL    string        `envconfig:"SEED_BASE_URL" default:"https://contract.mexc.com"`
	SeedTimeout    time.Duration `envconfig:"SEED_TIMEOUT" default:"15s"`
	SeedSQLitePath string        `envconfig:"SEED_SQLITE_PATH" default:""`

	ListenAddr  string `envconfig:"LISTEN_ADDR" default:":8080"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	// Empty RedisAddr disables the mirror.
	RedisAddr     string `envconfig:"REDIS_ADDR" default:""`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisPrefix   string `envconfig:"REDIS_PREFIX" default:"indicators"`

	WriteTimeout time.Duration `envconfig:"WS_WRITE_TIMEOUT" default:"10s"`
	PingInterval time.Duration `envconfig:"WS_PING_INTERVAL" default:"20s"`
	PongTimeout  time.Duration `envconfig:"WS_PONG_TIMEOUT" default:"60s"`

	MaxRecomputeCadence time.Duration `envconfig:"MAX_RECOMPUTE_CADENCE" default:"1h"`

	PricePrecision int `envconfig:"PRICE_PRECISION" default:"2"`
	OscPrecision   int `envconfig:"OSC_PRECISION" default:"6"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads .env if present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseSymbols splits the configured symbol list.
func (c *Config) ParseSymbols() []string {
	var out []string
	for _, s := range strings.Split(c.Symbols, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ParseTimeframes parses the configured timeframe list, skipping entries
// that do not name a known timeframe.
func (c *Config) ParseTimeframes() []model.Timeframe {
	var out []model.Timeframe
	for _, s := range strings.Split(c.Timeframes, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		tf, err := model.ParseTimeframe(s)
		if err != nil {
			log.Printf("[config] skipping unknown timeframe %q", s)
			continue
		}
		out = append(out, tf)
	}
	return out
}
