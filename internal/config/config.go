// Package config defines reelrank configuration structures and loading hooks.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load(ctx) layers a YAML file and REELRANK_* environment variables on top.
// - Errors are wrapped with this package's sentinels so callers can use errors.Is.
package config

import (
	"runtime"
	"time"
)

// Supported ranking store backends for the reference authority.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config contains process configuration shared by the client, the authority and the simulator.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// MetricsEnabled switches Prometheus recording on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// Addr configures the authority HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// BaseURL is the authority base URL used by the client.
	BaseURL string `koanf:"base_url"`

	// RequestTimeoutMS bounds every client HTTP request.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// PageSize is the default ranking page size.
	PageSize int `koanf:"page_size"`

	// MaxPageSize caps ranking page sizes on both sides.
	MaxPageSize int `koanf:"max_page_size"`

	// FetchConcurrency bounds parallel page fetches in FetchAll.
	FetchConcurrency int `koanf:"fetch_concurrency"`

	// Token and UserID seed the client session when set.
	Token  string `koanf:"token"`
	UserID string `koanf:"user_id"`

	// RankingStore selects the authority ranking backend: memory or redis.
	RankingStore string `koanf:"ranking_store"`

	// Redis connection settings, used when RankingStore is redis.
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	RedisKey      string `koanf:"redis_key"`

	// Simulator sizing.
	SimUsers        int `koanf:"sim_users"`
	SimItemsPerUser int `koanf:"sim_items_per_user"`
	SimWorkers      int `koanf:"sim_workers"`
	SimPageSize     int `koanf:"sim_page_size"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		MetricsEnabled:   true,
		Addr:             ":9080",
		BaseURL:          "http://localhost:9080",
		RequestTimeoutMS: 5000,
		PageSize:         20,
		MaxPageSize:      100,
		FetchConcurrency: 4,
		RankingStore:     StoreMemory,
		RedisAddr:        "localhost:6379",
		RedisKey:         "reelrank:ranking",
		SimUsers:         50,
		SimItemsPerUser:  2,
		SimWorkers:       runtime.NumCPU() * 2,
		SimPageSize:      7,
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}
