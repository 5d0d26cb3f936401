package config_test

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bivex/receipt-verify/internal/infrastructure/config"
	"github.com/bivex/receipt-verify/internal/infrastructure/external/appstore"
)

func TestLoad(t *testing.T) {
	t.Run("fails without required fields", func(t *testing.T) {
		viper.Reset()

		_, err := config.Load()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "APPSTORE_SHARED_SECRET")
	})

	t.Run("loads from environment with defaults applied", func(t *testing.T) {
		viper.Reset()
		t.Setenv("APPSTORE_SHARED_SECRET", "test-secret")
		t.Setenv("APPSTORE_BUNDLE_ID", "com.example.reader")
		t.Setenv("APPSTORE_SUBSCRIPTION_PRODUCT_ID", "com.example.reader.premium.monthly")

		cfg, err := config.Load()

		require.NoError(t, err)
		assert.Equal(t, "test-secret", cfg.AppStore.SharedSecret)
		assert.Equal(t, "com.example.reader", cfg.AppStore.BundleID)
		assert.Equal(t, appstore.ProductionURL, cfg.AppStore.ProductionURL)
		assert.Equal(t, appstore.SandboxURL, cfg.AppStore.SandboxURL)
		assert.Equal(t, 10*time.Second, cfg.AppStore.VerifyTimeout)
		assert.Equal(t, 5*time.Minute, cfg.AppStore.GracePeriod)
		assert.Equal(t, 5*time.Minute, cfg.AppStore.CacheTTL)
		assert.Equal(t, 8080, cfg.Server.Port)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		viper.Reset()
		t.Setenv("APPSTORE_SHARED_SECRET", "test-secret")
		t.Setenv("APPSTORE_BUNDLE_ID", "com.example.reader")
		t.Setenv("APPSTORE_SUBSCRIPTION_PRODUCT_ID", "com.example.reader.premium.monthly")
		t.Setenv("APPSTORE_VERIFY_TIMEOUT", "3s")
		t.Setenv("SERVER_PORT", "9090")

		cfg, err := config.Load()

		require.NoError(t, err)
		assert.Equal(t, 3*time.Second, cfg.AppStore.VerifyTimeout)
		assert.Equal(t, 9090, cfg.Server.Port)
	})
}
