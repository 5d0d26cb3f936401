package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/bivex/receipt-verify/internal/infrastructure/external/appstore"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:",squash"`
	AppStore AppStoreConfig `mapstructure:",squash"`
	Sentry   SentryConfig   `mapstructure:",squash"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `mapstructure:"server_port"`
	ReadTimeout     time.Duration `mapstructure:"server_read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"server_write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"server_shutdown_timeout"`
}

// AppStoreConfig holds the receipt validation configuration
type AppStoreConfig struct {
	BundleID              string        `mapstructure:"appstore_bundle_id"`
	SubscriptionProductID string        `mapstructure:"appstore_subscription_product_id"`
	SharedSecret          string        `mapstructure:"appstore_shared_secret"`
	ProductionURL         string        `mapstructure:"appstore_production_url"`
	SandboxURL            string        `mapstructure:"appstore_sandbox_url"`
	VerifyTimeout         time.Duration `mapstructure:"appstore_verify_timeout"`
	GracePeriod           time.Duration `mapstructure:"appstore_grace_period"`
	CacheTTL              time.Duration `mapstructure:"appstore_cache_ttl"`
}

// SentryConfig holds Sentry configuration
type SentryConfig struct {
	DSN         string `mapstructure:"sentry_dsn"`
	Environment string `mapstructure:"sentry_environment"`
	Release     string `mapstructure:"sentry_release"`
}

// Load loads configuration from environment variables and an optional
// .env file
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// .env file is optional for production (env vars are used)
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server_port", 8080)
	viper.SetDefault("server_read_timeout", 10*time.Second)
	viper.SetDefault("server_write_timeout", 30*time.Second)
	viper.SetDefault("server_shutdown_timeout", 30*time.Second)

	// Receipt validation defaults. Required fields default to empty so
	// environment overrides are picked up during Unmarshal.
	viper.SetDefault("appstore_bundle_id", "")
	viper.SetDefault("appstore_subscription_product_id", "")
	viper.SetDefault("appstore_shared_secret", "")
	viper.SetDefault("appstore_production_url", appstore.ProductionURL)
	viper.SetDefault("appstore_sandbox_url", appstore.SandboxURL)
	viper.SetDefault("appstore_verify_timeout", 10*time.Second)
	viper.SetDefault("appstore_grace_period", 5*time.Minute)
	viper.SetDefault("appstore_cache_ttl", 5*time.Minute)

	// Sentry defaults
	viper.SetDefault("sentry_dsn", "")
	viper.SetDefault("sentry_environment", "production")
	viper.SetDefault("sentry_release", "")
}

func validate(cfg *Config) error {
	if cfg.AppStore.SharedSecret == "" {
		return fmt.Errorf("APPSTORE_SHARED_SECRET is required")
	}
	if cfg.AppStore.BundleID == "" {
		return fmt.Errorf("APPSTORE_BUNDLE_ID is required")
	}
	if cfg.AppStore.SubscriptionProductID == "" {
		return fmt.Errorf("APPSTORE_SUBSCRIPTION_PRODUCT_ID is required")
	}
	return nil
}
