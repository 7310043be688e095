package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearPOSEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "POS_") {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearPOSEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "pos-terminal", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "127.0.0.1:8765", cfg.HTTP.Addr)
		assert.Equal(t, int64(256<<10), cfg.HTTP.MaxBodyBytes)
		assert.Empty(t, cfg.HTTP.AllowOrigins)
		assert.Equal(t, "http://localhost:8080/api/v1", cfg.Backend.BaseURL)
		assert.Equal(t, 2*time.Second, cfg.Recovery.Interval)
		assert.Equal(t, "pos:checkout:recovery", cfg.Recovery.Key)
		assert.Equal(t, 30*time.Second, cfg.Checkout.SessionPollInterval)
		assert.Equal(t, "bolt", cfg.Recovery.Driver)
		assert.Equal(t, "terminal-1", cfg.Recovery.Namespace)
		assert.Equal(t, 100*time.Millisecond, cfg.Input.ScanGap)
		assert.Equal(t, 300*time.Millisecond, cfg.Input.SearchDebounce)
		assert.Equal(t, 4, cfg.Input.MinBarcodeLength)
		assert.Equal(t, 35*time.Second, cfg.Checkout.SubmitTimeout)
		assert.False(t, cfg.Telemetry.Enabled)
		assert.Equal(t, "pos-terminal", cfg.Receipt.StoreName)
		assert.Equal(t, "80mm", cfg.Receipt.Paper)
	})

	t.Run("loads values from environment variables with POS prefix", func(t *testing.T) {
		clearPOSEnv(t)
		t.Setenv("POS_APP_TERMINAL_ID", "lane-7")
		t.Setenv("POS_BACKEND_BASE_URL", "https://erp.example.com/api/v1")
		t.Setenv("POS_RECOVERY_DRIVER", "sqlite")
		t.Setenv("POS_RECOVERY_INTERVAL", "5s")
		t.Setenv("POS_INPUT_SCAN_GAP", "50ms")
		t.Setenv("POS_CHECKOUT_SUBMIT_TIMEOUT", "20s")
		t.Setenv("POS_REDIS_PORT", "6380")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "lane-7", cfg.App.TerminalID)
		assert.Equal(t, "lane-7", cfg.Recovery.Namespace)
		assert.Equal(t, "https://erp.example.com/api/v1", cfg.Backend.BaseURL)
		assert.Equal(t, "sqlite", cfg.Recovery.Driver)
		assert.Equal(t, 5*time.Second, cfg.Recovery.Interval)
		assert.Equal(t, 50*time.Millisecond, cfg.Input.ScanGap)
		assert.Equal(t, 20*time.Second, cfg.Checkout.SubmitTimeout)
		assert.Equal(t, "localhost:6380", cfg.Redis.RedisAddr())
	})

	t.Run("rejects unknown recovery driver", func(t *testing.T) {
		clearPOSEnv(t)
		t.Setenv("POS_RECOVERY_DRIVER", "localStorage")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "recovery.driver")
	})

	t.Run("rejects relative backend url", func(t *testing.T) {
		clearPOSEnv(t)
		t.Setenv("POS_BACKEND_BASE_URL", "/api/v1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "backend.base_url")
	})

	t.Run("reads receipt settings", func(t *testing.T) {
		clearPOSEnv(t)
		t.Setenv("POS_RECEIPT_STORE_NAME", "Corner Shop")
		t.Setenv("POS_RECEIPT_PAPER", "58mm")
		t.Setenv("POS_RECEIPT_TIME_ZONE", "UTC")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "Corner Shop", cfg.Receipt.StoreName)
		assert.Equal(t, "58mm", cfg.Receipt.Paper)
		loc, err := cfg.Receipt.Location()
		require.NoError(t, err)
		assert.Equal(t, time.UTC, loc)
	})

	t.Run("rejects sub-second session polling", func(t *testing.T) {
		clearPOSEnv(t)
		t.Setenv("POS_CHECKOUT_SESSION_POLL_INTERVAL", "200ms")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "checkout.session_poll_interval")
	})

	t.Run("rejects unknown receipt paper", func(t *testing.T) {
		clearPOSEnv(t)
		t.Setenv("POS_RECEIPT_PAPER", "a4")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "receipt.paper")
	})

	t.Run("rejects unknown time zone", func(t *testing.T) {
		clearPOSEnv(t)
		t.Setenv("POS_RECEIPT_TIME_ZONE", "Mars/Olympus_Mons")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "receipt.time_zone")
	})

	t.Run("rejects too short recovery interval", func(t *testing.T) {
		clearPOSEnv(t)
		t.Setenv("POS_RECOVERY_INTERVAL", "10ms")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "recovery.interval")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	t.Run("requires api token", func(t *testing.T) {
		clearPOSEnv(t)
		t.Setenv("POS_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "backend.api_token")
	})

	t.Run("rejects memory recovery store", func(t *testing.T) {
		clearPOSEnv(t)
		t.Setenv("POS_APP_ENV", "production")
		t.Setenv("POS_BACKEND_API_TOKEN", "secret-token")
		t.Setenv("POS_RECOVERY_DRIVER", "memory")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "memory")
	})

	t.Run("accepts valid production config", func(t *testing.T) {
		clearPOSEnv(t)
		t.Setenv("POS_APP_ENV", "production")
		t.Setenv("POS_BACKEND_API_TOKEN", "secret-token")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestBuild_ReadsKeymapFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[input]
min_barcode_length = 8

[input.keymap]
"F2" = "checkout"
"Ctrl+K" = "focusSearch"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := build(v)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Input.MinBarcodeLength)
	// viper lowercases map keys
	assert.Equal(t, "checkout", cfg.Input.Keymap["f2"])
	assert.Equal(t, "focusSearch", cfg.Input.Keymap["ctrl+k"])
}
