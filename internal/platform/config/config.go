package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	platformstrings "remitguard/pkg/platform/strings"
)

// DefaultJWTSecret is the development-only signing secret used when
// JWT_SECRET is unset outside production.
const DefaultJWTSecret = "default-secret-change-me"

const thresholdPrefix = "THRESHOLD_"

// Config is the full process configuration, read once at startup.
type Config struct {
	Server Server
	Redis  RedisConfig
	Kafka  KafkaConfig
	Policy PolicyConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	Environment     string
	LogLevel        string
	LogFormat       string
	DatabaseURL     string
	AdminToken      string
	JWTSecret       string
	DefaultSecret   bool // JWTSecret fell back to DefaultJWTSecret
	RuleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// IsProduction reports whether ENVIRONMENT is "production".
func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

// RedisConfig configures the list membership cache. Empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CacheTTL     time.Duration
}

// KafkaConfig configures decision event publishing. No brokers disables it.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// PolicyConfig is the raw rule configuration.
type PolicyConfig struct {
	WhitelistRequired        bool
	WhitelistNonListedAction string
	ThresholdAction          string
	// ThresholdByCurrency is keyed by upper-case currency code.
	ThresholdByCurrency map[string]float64
	HighRiskCountries   []string
}

// FromEnv builds the configuration from the process environment.
func FromEnv() (Config, error) {
	return Load(os.Getenv, os.Environ())
}

// Load builds the configuration from getenv and the KEY=VALUE pairs in
// environ, which is scanned for THRESHOLD_<CUR> variables.
func Load(getenv func(string) string, environ []string) (Config, error) {
	var cfg Config

	cfg.Server = Server{
		Addr:            stringOr(getenv("ADDR"), ":8080"),
		Environment:     stringOr(getenv("ENVIRONMENT"), "development"),
		LogLevel:        stringOr(getenv("LOG_LEVEL"), "info"),
		LogFormat:       getenv("LOG_FORMAT"),
		DatabaseURL:     getenv("DATABASE_URL"),
		AdminToken:      getenv("ADMIN_TOKEN"),
		JWTSecret:       getenv("JWT_SECRET"),
		RuleTimeout:     durationOr(getenv("RULE_TIMEOUT"), 2*time.Second),
		ShutdownTimeout: durationOr(getenv("SHUTDOWN_TIMEOUT"), 10*time.Second),
	}
	if cfg.Server.LogFormat == "" {
		cfg.Server.LogFormat = "text"
		if cfg.Server.IsProduction() {
			cfg.Server.LogFormat = "json"
		}
	}
	if cfg.Server.JWTSecret == "" {
		if cfg.Server.IsProduction() {
			return Config{}, errors.New("JWT_SECRET is required in production")
		}
		cfg.Server.JWTSecret = DefaultJWTSecret
		cfg.Server.DefaultSecret = true
	}

	cfg.Redis = RedisConfig{
		URL:          getenv("REDIS_URL"),
		PoolSize:     intOr(getenv("REDIS_POOL_SIZE"), 10),
		MinIdleConns: intOr(getenv("REDIS_MIN_IDLE_CONNS"), 2),
		DialTimeout:  durationOr(getenv("REDIS_DIAL_TIMEOUT"), 5*time.Second),
		ReadTimeout:  durationOr(getenv("REDIS_READ_TIMEOUT"), 500*time.Millisecond),
		WriteTimeout: durationOr(getenv("REDIS_WRITE_TIMEOUT"), 500*time.Millisecond),
		CacheTTL:     durationOr(getenv("LIST_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Kafka = KafkaConfig{
		Brokers: platformstrings.SplitList(getenv("KAFKA_BROKERS")),
		Topic:   stringOr(getenv("KAFKA_TOPIC"), "remitguard.decisions"),
	}

	policy, err := loadPolicy(getenv, environ)
	if err != nil {
		return Config{}, err
	}
	cfg.Policy = policy
	return cfg, nil
}

func loadPolicy(getenv func(string) string, environ []string) (PolicyConfig, error) {
	raw := getenv("WHITELIST_REQUIRED")
	p := PolicyConfig{
		WhitelistRequired:        raw == "true" || raw == "1",
		WhitelistNonListedAction: stringOr(getenv("WHITELIST_NON_LISTED_ACTION"), "REVIEW"),
		ThresholdAction:          stringOr(getenv("THRESHOLD_ACTION"), "REVIEW"),
		ThresholdByCurrency:      parseThresholds(environ),
	}
	for name, action := range map[string]string{
		"WHITELIST_NON_LISTED_ACTION": p.WhitelistNonListedAction,
		"THRESHOLD_ACTION":            p.ThresholdAction,
	} {
		if action != "REVIEW" && action != "BLOCK" {
			return PolicyConfig{}, fmt.Errorf("%s must be REVIEW or BLOCK, got %q", name, action)
		}
	}
	if countries := platformstrings.DedupeAndTrimUpper(platformstrings.SplitList(getenv("HIGH_RISK_COUNTRIES"))); len(countries) > 0 {
		p.HighRiskCountries = countries
	}
	return p, nil
}

// parseThresholds reads THRESHOLD_<CUR>=<n> pairs. Values that are not
// non-negative numbers are ignored.
func parseThresholds(environ []string) map[string]float64 {
	out := make(map[string]float64)
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, thresholdPrefix) || key == "THRESHOLD_ACTION" {
			continue
		}
		currency := strings.ToUpper(strings.TrimPrefix(key, thresholdPrefix))
		if currency == "" || strings.TrimSpace(value) == "" {
			continue
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || n < 0 || n != n {
			continue
		}
		out[currency] = n
	}
	return out
}

func stringOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func intOr(v string, fallback int) int {
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return n
	}
	return fallback
}

func durationOr(v string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	return fallback
}
