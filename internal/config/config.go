// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvProduction is the APP_ENV value that disables seeding.
const EnvProduction = "production"

// Config holds application configuration loaded from the environment.
type Config struct {
	// GRPCAddr is the address the gRPC server listens on (e.g. :8080).
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// MetricsAddr serves Prometheus /metrics. Empty disables the listener.
	MetricsAddr string `mapstructure:"METRICS_ADDR"`
	// DatabaseURL is the Postgres DSN. Empty runs the server on the in-memory store (development only).
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// RedisURL selects the shared stats cache (redis://host:6379/0). Empty uses the in-process LRU.
	RedisURL string `mapstructure:"REDIS_URL"`
	// StatsCacheTTL is how long a computed stats result is served (e.g. "90s").
	StatsCacheTTL string `mapstructure:"STATS_CACHE_TTL"`
	// StatsCacheSize bounds the in-process cache entries.
	StatsCacheSize int `mapstructure:"STATS_CACHE_SIZE"`
	// ContinuationWindow is how long a trace stays open after its last hit (e.g. "30m").
	ContinuationWindow string `mapstructure:"CONTINUATION_WINDOW"`
	// StatsTimezone is the IANA zone day/week/month buckets are cut in.
	StatsTimezone string `mapstructure:"STATS_TIMEZONE"`
	// WeekStart is the first day of a week bucket ("monday" or "sunday", any weekday accepted).
	WeekStart string `mapstructure:"WEEK_START"`
	// BotPolicyFile overrides the embedded bot policy with a Rego file.
	BotPolicyFile string `mapstructure:"BOT_POLICY_FILE"`

	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file. Only needed to issue tokens.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file, used to validate access tokens.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the iss claim.
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim.
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the access token lifetime (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// KafkaBrokers is a comma-separated list of Kafka broker addresses. When set, trace events are published to Kafka.
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// TraceKafkaTopic is the Kafka topic for trace and request events.
	TraceKafkaTopic string `mapstructure:"TRACE_KAFKA_TOPIC"`
	// Worker-only: Loki URL the event worker pushes to (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the event worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`

	// OTelEndpoint is the OTLP gRPC collector (host:port or URL). Empty disables export.
	OTelEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTelInsecure forces a plaintext connection to the collector.
	OTelInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	// OTelServiceName is the service.name resource attribute.
	OTelServiceName string `mapstructure:"OTEL_SERVICE_NAME"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("GRPC_ADDR", ":8080")
	v.SetDefault("METRICS_ADDR", ":9090")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("STATS_CACHE_TTL", "90s")
	v.SetDefault("STATS_CACHE_SIZE", 1024)
	v.SetDefault("CONTINUATION_WINDOW", "30m")
	v.SetDefault("STATS_TIMEZONE", "UTC")
	v.SetDefault("WEEK_START", "monday")
	v.SetDefault("BOT_POLICY_FILE", "")
	v.SetDefault("JWT_PRIVATE_KEY", "")
	v.SetDefault("JWT_PUBLIC_KEY", "")
	v.SetDefault("JWT_ISSUER", "tracking-analytics")
	v.SetDefault("JWT_AUDIENCE", "tracking-api")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("TRACE_KAFKA_TOPIC", "tracking-events")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "tracking-events-worker")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_SERVICE_NAME", "tracking-analytics")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.GRPCAddr == "" {
		return nil, errors.New("config: GRPC_ADDR must be set")
	}
	if _, err := time.LoadLocation(cfg.StatsTimezone); err != nil {
		return nil, fmt.Errorf("config: STATS_TIMEZONE: %w", err)
	}
	if _, ok := parseWeekday(cfg.WeekStart); !ok {
		return nil, fmt.Errorf("config: WEEK_START %q is not a weekday", cfg.WeekStart)
	}
	if cfg.StatsCacheSize <= 0 {
		return nil, errors.New("config: STATS_CACHE_SIZE must be positive")
	}
	if cfg.IsProduction() && cfg.DatabaseURL == "" {
		return nil, errors.New("config: DATABASE_URL must be set when APP_ENV=production")
	}

	return &cfg, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), EnvProduction)
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	return durationOr(c.JWTAccessTTL, 15*time.Minute)
}

// CacheTTL parses StatsCacheTTL. Returns 90s if unset or invalid.
func (c *Config) CacheTTL() time.Duration {
	return durationOr(c.StatsCacheTTL, 90*time.Second)
}

// ContinuationWindowDuration parses ContinuationWindow. Returns 30m if unset or invalid.
func (c *Config) ContinuationWindowDuration() time.Duration {
	return durationOr(c.ContinuationWindow, 30*time.Minute)
}

// Location returns the stats reference zone, or UTC when StatsTimezone cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.StatsTimezone)
	if err != nil || c.StatsTimezone == "" {
		return time.UTC
	}
	return loc
}

// WeekStartDay returns the first day of a week bucket. Returns time.Monday if unset or invalid.
func (c *Config) WeekStartDay() time.Weekday {
	if d, ok := parseWeekday(c.WeekStart); ok {
		return d
	}
	return time.Monday
}

// KafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if event publishing is enabled (non-empty list) and to create the producer.
func (c *Config) KafkaBrokersList() []string {
	if c == nil || c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func durationOr(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func parseWeekday(s string) (time.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return time.Monday, true
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, true
		}
	}
	return 0, false
}
