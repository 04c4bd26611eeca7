package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAccountFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeAccountFile(t, `{"account_id":"acct-1"}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "acct-1", cfg.AccountID)
	assert.Equal(t, "vertex-adapter", cfg.ServiceName)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, 3*time.Second, cfg.PollInterval)
	assert.Equal(t, 9020, cfg.AdminPort)
	assert.Equal(t, 9120, cfg.MetricsPort)
	assert.NotEmpty(t, cfg.GatewayURL)
	assert.Empty(t, cfg.NATSURL)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVICE_NAME", "vertex-adapter-uat")
	t.Setenv("ENV", "uat")
	t.Setenv("ACCOUNT_POLL_INTERVAL", "500ms")
	t.Setenv("ADMIN_PORT", "8080")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	path := writeAccountFile(t, `{"account_id":"acct-1"}`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "vertex-adapter-uat", cfg.ServiceName)
	assert.Equal(t, "uat", cfg.Env)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 8080, cfg.AdminPort)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoadAccountFileErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
		assert.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := Load(writeAccountFile(t, `{not json`))
		assert.Error(t, err)
	})

	t.Run("missing account id", func(t *testing.T) {
		_, err := Load(writeAccountFile(t, `{}`))
		assert.ErrorContains(t, err, "account_id")
	})
}
