package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	App          AppConfig          `mapstructure:"app"`
	HTTP         HTTPConfig         `mapstructure:"http"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Integrations IntegrationsConfig `mapstructure:"integrations"`
	Stripe       StripeConfig       `mapstructure:"stripe"`
	Telemetry    TelemetryConfig    `mapstructure:"telemetry"`
	Log          LogConfig          `mapstructure:"log"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type DatabaseConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxIdle     int    `mapstructure:"max_idle"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
	EnableTLS   bool   `mapstructure:"enable_tls"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	PoolSize  int    `mapstructure:"pool_size"`
	EnableTLS bool   `mapstructure:"enable_tls"`
}

type AuthConfig struct {
	// APIKeyPrefix is the expected prefix of user API keys, e.g. "sb_".
	APIKeyPrefix string `mapstructure:"api_key_prefix"`
	// SecretPepper is mixed into the HMAC used for API key lookup.
	SecretPepper string `mapstructure:"secret_pepper"`
}

type IntegrationsConfig struct {
	// Base URLs are overridable so tests and self-hosted instances can
	// point the fetchers somewhere else.
	GitHubBaseURL    string `mapstructure:"github_base_url"`
	TwitterBaseURL   string `mapstructure:"twitter_base_url"`
	PlausibleBaseURL string `mapstructure:"plausible_base_url"`
	// HTTPTimeoutSec applies to all provider clients. There is no retry
	// or rate-limit handling on top of it.
	HTTPTimeoutSec int `mapstructure:"http_timeout_sec"`
}

type StripeConfig struct {
	// WebhookSecret is the endpoint-level signing secret. Project matching
	// happens after verification via the stored stripe_account_id.
	WebhookSecret string `mapstructure:"webhook_secret"`
}

type TelemetryConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	OtlpEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from config.yaml (optional) and SHIPBOARD_*
// environment variables. Env vars win over file values.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/shipboard")

	v.SetEnvPrefix("SHIPBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.name", "shipboard-api")
	v.SetDefault("app.env", "development")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("database.max_open", 20)
	v.SetDefault("database.max_idle", 5)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("auth.api_key_prefix", "sb_")
	v.SetDefault("integrations.github_base_url", "https://api.github.com")
	v.SetDefault("integrations.twitter_base_url", "https://api.twitter.com")
	v.SetDefault("integrations.plausible_base_url", "https://plausible.io")
	v.SetDefault("integrations.http_timeout_sec", 30)
	v.SetDefault("telemetry.sample_ratio", 1.0)
	v.SetDefault("log.level", "info")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars and defaults carry it.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
