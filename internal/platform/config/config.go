package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full server configuration.
type Config struct {
	Server     Server
	Log        LogConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Catalog    CatalogConfig
	Settlement SettlementConfig
	Gateway    GatewayConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	AdminToken      string
	ShutdownTimeout time.Duration
	MetricsEnabled  bool
}

type LogConfig struct {
	Level  string
	Format string
}

// RedisConfig configures the optional listing cache. An empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	ListingTTL   time.Duration
}

// KafkaConfig configures the optional audit sink. No brokers disables it.
type KafkaConfig struct {
	Brokers     []string
	TopicPrefix string
	AuditBuffer int
}

type CatalogConfig struct {
	SearchDebounce time.Duration
	PageLimit      int
}

type SettlementConfig struct {
	Delay time.Duration
}

// GatewayConfig tunes the simulated marketplace backend.
type GatewayConfig struct {
	FastLatency   time.Duration
	NormalLatency time.Duration
	FailureRate   float64
	Seed          bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("REFURB_ADDR", ":8080")
	v.SetDefault("ADMIN_TOKEN", "")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_MIN_IDLE_CONNS", 2)
	v.SetDefault("REDIS_DIAL_TIMEOUT", "5s")
	v.SetDefault("REDIS_READ_TIMEOUT", "3s")
	v.SetDefault("REDIS_WRITE_TIMEOUT", "3s")
	v.SetDefault("LISTING_CACHE_TTL", "30s")

	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("AUDIT_TOPIC_PREFIX", "refurb.audit")
	v.SetDefault("AUDIT_BUFFER", 256)

	v.SetDefault("SEARCH_DEBOUNCE", "500ms")
	v.SetDefault("PAGE_LIMIT", 10)
	v.SetDefault("SETTLEMENT_DELAY", "2s")

	v.SetDefault("GATEWAY_FAST_LATENCY", "300ms")
	v.SetDefault("GATEWAY_NORMAL_LATENCY", "800ms")
	v.SetDefault("GATEWAY_FAILURE_RATE", 0.0)
	v.SetDefault("GATEWAY_SEED", true)
}

// FromEnv builds the configuration from environment variables, with an
// optional .env file in the working directory filling gaps.
func FromEnv() (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	v.SetConfigType("env")
	v.SetConfigName(".env")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return load(v)
}

func load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Server: Server{
			Addr:            v.GetString("REFURB_ADDR"),
			AdminToken:      v.GetString("ADMIN_TOKEN"),
			ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
			MetricsEnabled:  v.GetBool("METRICS_ENABLED"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("LOG_LEVEL")),
			Format: strings.ToLower(v.GetString("LOG_FORMAT")),
		},
		Redis: RedisConfig{
			URL:          v.GetString("REDIS_URL"),
			PoolSize:     v.GetInt("REDIS_POOL_SIZE"),
			MinIdleConns: v.GetInt("REDIS_MIN_IDLE_CONNS"),
			DialTimeout:  v.GetDuration("REDIS_DIAL_TIMEOUT"),
			ReadTimeout:  v.GetDuration("REDIS_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("REDIS_WRITE_TIMEOUT"),
			ListingTTL:   v.GetDuration("LISTING_CACHE_TTL"),
		},
		Kafka: KafkaConfig{
			Brokers:     splitList(v.GetString("KAFKA_BROKERS")),
			TopicPrefix: v.GetString("AUDIT_TOPIC_PREFIX"),
			AuditBuffer: v.GetInt("AUDIT_BUFFER"),
		},
		Catalog: CatalogConfig{
			SearchDebounce: v.GetDuration("SEARCH_DEBOUNCE"),
			PageLimit:      v.GetInt("PAGE_LIMIT"),
		},
		Settlement: SettlementConfig{
			Delay: v.GetDuration("SETTLEMENT_DELAY"),
		},
		Gateway: GatewayConfig{
			FastLatency:   v.GetDuration("GATEWAY_FAST_LATENCY"),
			NormalLatency: v.GetDuration("GATEWAY_NORMAL_LATENCY"),
			FailureRate:   v.GetFloat64("GATEWAY_FAILURE_RATE"),
			Seed:          v.GetBool("GATEWAY_SEED"),
		},
	}
	return cfg, cfg.Validate()
}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	if c.Server.AdminToken == "" {
		return fmt.Errorf("ADMIN_TOKEN is required")
	}
	if c.Gateway.FailureRate < 0 || c.Gateway.FailureRate > 1 {
		return fmt.Errorf("GATEWAY_FAILURE_RATE must be between 0 and 1")
	}
	if c.Catalog.PageLimit <= 0 {
		return fmt.Errorf("PAGE_LIMIT must be positive")
	}
	if c.Settlement.Delay < 0 || c.Catalog.SearchDebounce < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
