package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config enumerates every recognized option with its default. The auth
// service receives this struct at construction and never reads the process
// environment itself.
type Config struct {
	// HTTP listen address.
	ListenAddr string

	// Environment is "development" or "production"; it selects the log
	// handler and gin mode.
	Environment string
	LogLevel    string

	// Second-factor policy.
	SecondFactorEnabled bool
	OTCLength           int
	OTCTTL              time.Duration
	RateLimitCount      int
	RateLimitWindow     time.Duration

	// Session token signing.
	SigningSecret   string
	SessionTokenTTL time.Duration

	// Notification gateway. An empty DeliveryTopic disables the external
	// channel entirely; delivery then always uses the operator fallback.
	DeliveryTopic   string
	DispatchTimeout time.Duration

	// Backing stores. Empty values select the in-memory adapters.
	RedisURL    string
	PostgresDSN string
}

// Default returns the configuration with every documented default applied.
func Default() Config {
	return Config{
		ListenAddr:          ":9000",
		Environment:         "development",
		LogLevel:            "info",
		SecondFactorEnabled: true,
		OTCLength:           6,
		OTCTTL:              5 * time.Minute,
		RateLimitCount:      3,
		RateLimitWindow:     10 * time.Minute,
		SessionTokenTTL:     7 * 24 * time.Hour,
		DeliveryTopic:       "warden.deliveries",
		DispatchTimeout:     2 * time.Second,
	}
}

// Load reads configuration from WARDEN_* environment variables on top of
// the defaults. Durations configured in minutes/days are converted here so
// the rest of the code only ever sees time.Duration.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("WARDEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("listen_addr", def.ListenAddr)
	v.SetDefault("environment", def.Environment)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("second_factor_enabled", def.SecondFactorEnabled)
	v.SetDefault("otc_length", def.OTCLength)
	v.SetDefault("otc_ttl_minutes", int(def.OTCTTL/time.Minute))
	v.SetDefault("rate_limit_count", def.RateLimitCount)
	v.SetDefault("rate_limit_window_minutes", int(def.RateLimitWindow/time.Minute))
	v.SetDefault("session_token_ttl_days", int(def.SessionTokenTTL/(24*time.Hour)))
	v.SetDefault("delivery_topic", def.DeliveryTopic)
	v.SetDefault("dispatch_timeout_seconds", int(def.DispatchTimeout/time.Second))
	v.SetDefault("signing_secret", "")
	v.SetDefault("redis_url", "")
	v.SetDefault("postgres_dsn", "")

	cfg := Config{
		ListenAddr:          v.GetString("listen_addr"),
		Environment:         v.GetString("environment"),
		LogLevel:            v.GetString("log_level"),
		SecondFactorEnabled: v.GetBool("second_factor_enabled"),
		OTCLength:           v.GetInt("otc_length"),
		OTCTTL:              time.Duration(v.GetInt("otc_ttl_minutes")) * time.Minute,
		RateLimitCount:      v.GetInt("rate_limit_count"),
		RateLimitWindow:     time.Duration(v.GetInt("rate_limit_window_minutes")) * time.Minute,
		SessionTokenTTL:     time.Duration(v.GetInt("session_token_ttl_days")) * 24 * time.Hour,
		SigningSecret:       v.GetString("signing_secret"),
		DeliveryTopic:       v.GetString("delivery_topic"),
		DispatchTimeout:     time.Duration(v.GetInt("dispatch_timeout_seconds")) * time.Second,
		RedisURL:            v.GetString("redis_url"),
		PostgresDSN:         v.GetString("postgres_dsn"),
	}

	return cfg, cfg.Validate()
}

// Validate rejects configurations the service cannot run with.
func (c Config) Validate() error {
	if c.SigningSecret == "" {
		return errors.New("config: signing secret is required")
	}
	if c.OTCLength < 4 || c.OTCLength > 10 {
		return errors.New("config: otc length must be between 4 and 10")
	}
	if c.OTCTTL <= 0 {
		return errors.New("config: otc ttl must be positive")
	}
	if c.RateLimitCount <= 0 || c.RateLimitWindow <= 0 {
		return errors.New("config: rate limit count and window must be positive")
	}
	if c.SessionTokenTTL <= 0 {
		return errors.New("config: session token ttl must be positive")
	}
	return nil
}
