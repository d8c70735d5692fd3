package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8410, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 15*time.Second, cfg.Probe.Timeout)
	assert.Equal(t, 2048, cfg.Probe.PeekBytes)
	assert.Equal(t, int64(100_000), cfg.Probe.MaxBodyBytes)
	assert.Equal(t, 6*time.Hour, cfg.Sync.EpgRefresh)
	assert.Equal(t, 24*time.Hour, cfg.Sync.VodRefresh)
	assert.Equal(t, 5, cfg.Sync.MaxConcurrent)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9000
sync:
  epg_refresh: 2h
  vod_refresh: 48h
  max_concurrent: 3
probe:
  timeout: 5s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 2*time.Hour, cfg.Sync.EpgRefresh)
	assert.Equal(t, 48*time.Hour, cfg.Sync.VodRefresh)
	assert.Equal(t, 3, cfg.Sync.MaxConcurrent)
	assert.Equal(t, 5*time.Second, cfg.Probe.Timeout)
	// Untouched sections keep their defaults.
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TVDECKD_SYNC_MAX_CONCURRENT", "2")
	t.Setenv("TVDECKD_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Sync.MaxConcurrent)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		v := viper.New()
		SetDefaults(v)
		var cfg Config
		require.NoError(t, v.Unmarshal(&cfg))
		return &cfg
	}

	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("rejects bad port", func(t *testing.T) {
		cfg := valid()
		cfg.Server.Port = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		cfg := valid()
		cfg.Database.Driver = "oracle"
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects zero probe timeout", func(t *testing.T) {
		cfg := valid()
		cfg.Probe.Timeout = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects zero concurrency", func(t *testing.T) {
		cfg := valid()
		cfg.Sync.MaxConcurrent = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects empty player socket", func(t *testing.T) {
		cfg := valid()
		cfg.Player.Socket = ""
		assert.Error(t, cfg.Validate())
	})
}

func TestServerConfig_Address(t *testing.T) {
	cfg := ServerConfig{Host: "127.0.0.1", Port: 8410}
	assert.Equal(t, "127.0.0.1:8410", cfg.Address())
}
