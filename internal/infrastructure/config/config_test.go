package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopcore/backend/internal/domain/shipping"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"SHOP_APP_NAME":                          os.Getenv("SHOP_APP_NAME"),
		"SHOP_APP_ENV":                           os.Getenv("SHOP_APP_ENV"),
		"SHOP_APP_PORT":                          os.Getenv("SHOP_APP_PORT"),
		"SHOP_DATABASE_HOST":                     os.Getenv("SHOP_DATABASE_HOST"),
		"SHOP_DATABASE_PORT":                     os.Getenv("SHOP_DATABASE_PORT"),
		"SHOP_DATABASE_USER":                     os.Getenv("SHOP_DATABASE_USER"),
		"SHOP_DATABASE_PASSWORD":                 os.Getenv("SHOP_DATABASE_PASSWORD"),
		"SHOP_DATABASE_DBNAME":                   os.Getenv("SHOP_DATABASE_DBNAME"),
		"SHOP_DATABASE_SSLMODE":                  os.Getenv("SHOP_DATABASE_SSLMODE"),
		"SHOP_DATABASE_MAX_OPEN_CONNS":           os.Getenv("SHOP_DATABASE_MAX_OPEN_CONNS"),
		"SHOP_DATABASE_MAX_IDLE_CONNS":           os.Getenv("SHOP_DATABASE_MAX_IDLE_CONNS"),
		"SHOP_SHIPPING_STRATEGY":                 os.Getenv("SHOP_SHIPPING_STRATEGY"),
		"SHOP_SHIPPING_DEFAULT_PROVIDER":         os.Getenv("SHOP_SHIPPING_DEFAULT_PROVIDER"),
		"SHOP_SHIPPING_FREE_SHIPPING_THRESHOLD":  os.Getenv("SHOP_SHIPPING_FREE_SHIPPING_THRESHOLD"),
		"SHOP_SHIPPING_FALLBACK_COST":            os.Getenv("SHOP_SHIPPING_FALLBACK_COST"),
		"APP_ENV":                                os.Getenv("APP_ENV"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "shopcore-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "", cfg.Database.Password)
		assert.Equal(t, "shopcore", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "priority", cfg.Shipping.Strategy)
		assert.Equal(t, "Standard Shipping", cfg.Shipping.FallbackMethodName)
	})

	t.Run("loads values from environment variables with SHOP prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("SHOP_APP_NAME", "test-app")
		os.Setenv("SHOP_APP_ENV", "testing")
		os.Setenv("SHOP_APP_PORT", "9000")
		os.Setenv("SHOP_DATABASE_HOST", "testdb.local")
		os.Setenv("SHOP_DATABASE_PORT", "5433")
		os.Setenv("SHOP_DATABASE_USER", "testuser")
		os.Setenv("SHOP_DATABASE_PASSWORD", "testpass")
		os.Setenv("SHOP_DATABASE_DBNAME", "testdb")
		os.Setenv("SHOP_DATABASE_SSLMODE", "require")
		os.Setenv("SHOP_DATABASE_MAX_OPEN_CONNS", "50")
		os.Setenv("SHOP_DATABASE_MAX_IDLE_CONNS", "10")
		os.Setenv("SHOP_SHIPPING_STRATEGY", "cheapest")
		os.Setenv("SHOP_SHIPPING_FREE_SHIPPING_THRESHOLD", "500")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testing", cfg.App.Env)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "testdb", cfg.Database.DBName)
		assert.Equal(t, "require", cfg.Database.SSLMode)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, "cheapest", cfg.Shipping.Strategy)
		assert.Equal(t, 500.0, cfg.Shipping.FreeShippingThreshold)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("SHOP_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("SHOP_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("zero MaxOpenConns uses default", func(t *testing.T) {
		clearEnv()
		os.Setenv("SHOP_DATABASE_MAX_OPEN_CONNS", "0")

		cfg, err := Load()
		require.NoError(t, err)
		// 0 is treated as "not set", so default (25) is used
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	})

	t.Run("rejects unknown selection strategy", func(t *testing.T) {
		clearEnv()
		os.Setenv("SHOP_SHIPPING_STRATEGY", "quickest")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "shipping.strategy")
	})

	t.Run("rejects unknown default provider", func(t *testing.T) {
		clearEnv()
		os.Setenv("SHOP_SHIPPING_DEFAULT_PROVIDER", "fedex")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a known provider")
	})

	t.Run("rejects negative fallback cost", func(t *testing.T) {
		clearEnv()
		os.Setenv("SHOP_SHIPPING_FALLBACK_COST", "-10")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fallback_cost")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	originalEnv := map[string]string{
		"SHOP_APP_ENV":           os.Getenv("SHOP_APP_ENV"),
		"SHOP_DATABASE_PASSWORD": os.Getenv("SHOP_DATABASE_PASSWORD"),
		"SHOP_DATABASE_SSLMODE":  os.Getenv("SHOP_DATABASE_SSLMODE"),
		"APP_ENV":                os.Getenv("APP_ENV"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("requires database.password in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("SHOP_APP_ENV", "production")
		os.Setenv("SHOP_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("SHOP_APP_ENV", "production")
		os.Setenv("SHOP_DATABASE_PASSWORD", "secure-password")
		os.Setenv("SHOP_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		clearEnv()
		os.Setenv("SHOP_APP_ENV", "production")
		os.Setenv("SHOP_DATABASE_PASSWORD", "secure-password")
		os.Setenv("SHOP_DATABASE_SSLMODE", "require")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestShippingConfig_Settings(t *testing.T) {
	cfg := ShippingConfig{
		Strategy:              "cheapest",
		DefaultProvider:       "shiprocket",
		FreeShippingThreshold: 500,
		FallbackMethodName:    "Standard Shipping",
		FallbackCost:          90,
		DefaultPickupPincode:  "110001",
	}

	settings := cfg.Settings()

	assert.Equal(t, shipping.StrategyCheapest, settings.Strategy)
	assert.Equal(t, shipping.ProviderCodeShiprocket, settings.DefaultProvider)
	assert.Equal(t, "500", settings.FreeShippingThreshold.String())
	assert.Equal(t, "90", settings.FallbackCost.String())
	assert.Equal(t, "110001", settings.DefaultPickupPincode)
}

func TestShippingConfig_ProviderConfigs(t *testing.T) {
	cfg := ShippingConfig{
		Providers: []ShippingProviderConfig{
			{
				Code:     "delhivery",
				Name:     "Delhivery",
				Enabled:  true,
				Priority: 2,
				Credentials: map[string]string{
					"api_key":     "token-1",
					"client_name": "SHOPCORE",
				},
			},
		},
	}

	configs := cfg.ProviderConfigs()

	require.Len(t, configs, 1)
	assert.Equal(t, shipping.ProviderCodeDelhivery, configs[0].Code)
	assert.True(t, configs[0].Enabled)
	assert.Equal(t, 2, configs[0].Priority)
	assert.Equal(t, "token-1", configs[0].Credentials["api_key"])
	assert.NoError(t, configs[0].Validate())
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost")
		assert.Contains(t, dsn, "5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		// URL-encoded password should be in the DSN
		assert.Contains(t, dsn, "pass%40word%23123")
	})

	t.Run("handles empty password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "",
			Password: "",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.NotEmpty(t, dsn)
	})
}
