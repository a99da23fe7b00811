package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Setting environment variables.
func setEnvVars(t *testing.T, vars map[string]string) {
	t.Helper()
	for key, value := range vars {
		err := os.Setenv(key, value)
		require.NoError(t, err, "failed to set env var %s", key)

		// Ensure that the env vars are cleared after the test
		t.Cleanup(func() {
			os.Unsetenv(key)
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	expected := &Config{
		AdminToken: "super-secret-token",
		Telegram: TelegramConfig{
			Token:   "123",
			Timeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:     "sqlite3",
			Connection: ":memory:",
		},
	}

	setEnvVars(t, map[string]string{
		"ADMIN_TOKEN":      "super-secret-token",
		"TELEGRAM_TOKEN":   "123",
		"TELEGRAM_TIMEOUT": "10s",
	})

	actual, err := MustLoadConfig()
	require.NoError(t, err)
	require.NotNil(t, actual)

	// Compare each field with the expected values
	require.Equal(t, expected.AdminToken, actual.AdminToken)
	require.Equal(t, expected.Telegram.Token, actual.Telegram.Token)
	require.Equal(t, expected.Telegram.Timeout, actual.Telegram.Timeout)
	require.Equal(t, expected.Database.Driver, actual.Database.Driver)
	require.Equal(t, expected.Database.Connection, actual.Database.Connection)
}

func TestConfigAdminTokenTooShort(t *testing.T) {
	setEnvVars(t, map[string]string{
		"ADMIN_TOKEN":    "short",
		"TELEGRAM_TOKEN": "123",
	})

	_, err := MustLoadConfig()
	require.Error(t, err)
}

func TestConfigMetricsRequireURL(t *testing.T) {
	setEnvVars(t, map[string]string{
		"ADMIN_TOKEN":     "super-secret-token",
		"TELEGRAM_TOKEN":  "123",
		"METRICS_ENABLED": "true",
	})

	_, err := MustLoadConfig()
	require.Error(t, err)
}
