// Package config provides configuration management for tvdeckd using Viper.
// It supports configuration from files, environment variables, and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	defaultServerPort      = 8410
	defaultServerTimeout   = 30 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 10
	defaultConnMaxIdleTime = 30 * time.Minute

	defaultProbeTimeout = 15 * time.Second
	// defaultProbePeekBytes is the Range window requested from providers.
	defaultProbePeekBytes = 2048
	// defaultProbeMaxBodyBytes is the Content-Length below which reading a
	// non-ranged 200 response is considered safe.
	defaultProbeMaxBodyBytes = 100_000

	defaultEpgRefresh    = 6 * time.Hour
	defaultVodRefresh    = 24 * time.Hour
	defaultMaxConcurrent = 5
	defaultSyncSchedule  = "0 */30 * * * *" // every 30 minutes (6-field cron)

	defaultPlayerSocket  = "/tmp/tvdeckd-mpv.sock"
	defaultPlayerTimeout = 10 * time.Second
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Player   PlayerConfig   `mapstructure:"player"`
	Probe    ProbeConfig    `mapstructure:"probe"`
	Sync     SyncConfig     `mapstructure:"sync"`
}

// ServerConfig holds the operational HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite, postgres, mysql
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	LogLevel        string        `mapstructure:"log_level"` // silent, error, warn, info
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, text
	AddSource  bool   `mapstructure:"add_source"`
	TimeFormat string `mapstructure:"time_format"`
}

// PlayerConfig holds the mpv IPC backend configuration.
type PlayerConfig struct {
	// Socket is the path to the mpv JSON IPC unix socket.
	Socket string `mapstructure:"socket"`
	// Timeout is the per-command IPC timeout.
	Timeout time.Duration `mapstructure:"timeout"`
}

// ProbeConfig holds stream probe configuration.
type ProbeConfig struct {
	// Timeout bounds the probe's HTTP request. A hung provider connection
	// must never stall acquisition diagnostics indefinitely.
	Timeout time.Duration `mapstructure:"timeout"`
	// PeekBytes is the size of the Range window requested from providers.
	PeekBytes int `mapstructure:"peek_bytes"`
	// MaxBodyBytes is the Content-Length threshold below which reading a
	// non-ranged 200 response body is considered safe.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`
}

// SyncConfig holds catalog synchronization configuration.
type SyncConfig struct {
	// EpgRefresh is the maximum age of cached channel/EPG data.
	EpgRefresh time.Duration `mapstructure:"epg_refresh"`
	// VodRefresh is the maximum age of cached VOD catalog data.
	VodRefresh time.Duration `mapstructure:"vod_refresh"`
	// MaxConcurrent is the per-batch sync concurrency ceiling.
	MaxConcurrent int `mapstructure:"max_concurrent"`
	// Schedule is the 6-field cron expression for periodic sync re-triggers.
	// Empty disables periodic syncing; the startup run still happens.
	Schedule string `mapstructure:"schedule"`
}

// Load reads configuration from file and environment variables.
// Environment variables take precedence over file configuration.
// Environment variables are prefixed with TVDECKD_ and use underscores for
// nesting. Example: TVDECKD_SYNC_MAX_CONCURRENT=5.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/tvdeckd")
		v.AddConfigPath("$HOME/.tvdeckd")
	}

	v.SetEnvPrefix("TVDECKD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found is OK - we'll use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// SetDefaults configures default values for all configuration options.
// This should be called before reading the config file to ensure defaults are in place.
func SetDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.read_timeout", defaultServerTimeout)
	v.SetDefault("server.write_timeout", defaultServerTimeout)
	v.SetDefault("server.shutdown_timeout", defaultShutdownTimeout)

	// Database defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "tvdeckd.db")
	v.SetDefault("database.max_open_conns", defaultMaxOpenConns)
	v.SetDefault("database.max_idle_conns", defaultMaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", defaultConnMaxIdleTime)
	v.SetDefault("database.log_level", "warn")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Player defaults
	v.SetDefault("player.socket", defaultPlayerSocket)
	v.SetDefault("player.timeout", defaultPlayerTimeout)

	// Probe defaults
	v.SetDefault("probe.timeout", defaultProbeTimeout)
	v.SetDefault("probe.peek_bytes", defaultProbePeekBytes)
	v.SetDefault("probe.max_body_bytes", defaultProbeMaxBodyBytes)

	// Sync defaults
	v.SetDefault("sync.epg_refresh", defaultEpgRefresh)
	v.SetDefault("sync.vod_refresh", defaultVodRefresh)
	v.SetDefault("sync.max_concurrent", defaultMaxConcurrent)
	v.SetDefault("sync.schedule", defaultSyncSchedule)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	const maxPort = 65535
	if c.Server.Port < 1 || c.Server.Port > maxPort {
		return fmt.Errorf("server.port must be between 1 and %d", maxPort)
	}

	validDrivers := map[string]bool{"sqlite": true, "postgres": true, "mysql": true}
	if !validDrivers[c.Database.Driver] {
		return fmt.Errorf("database.driver must be one of: sqlite, postgres, mysql")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	if c.Player.Socket == "" {
		return fmt.Errorf("player.socket is required")
	}

	if c.Probe.Timeout <= 0 {
		return fmt.Errorf("probe.timeout must be positive")
	}
	if c.Probe.PeekBytes < 1 {
		return fmt.Errorf("probe.peek_bytes must be at least 1")
	}
	if c.Probe.MaxBodyBytes < 1 {
		return fmt.Errorf("probe.max_body_bytes must be at least 1")
	}

	if c.Sync.EpgRefresh <= 0 {
		return fmt.Errorf("sync.epg_refresh must be positive")
	}
	if c.Sync.VodRefresh <= 0 {
		return fmt.Errorf("sync.vod_refresh must be positive")
	}
	if c.Sync.MaxConcurrent < 1 {
		return fmt.Errorf("sync.max_concurrent must be at least 1")
	}

	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
