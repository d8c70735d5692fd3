package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mfairchild/tvdeckd/internal/config"
	"github.com/mfairchild/tvdeckd/internal/daemon"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tvdeckd daemon",
	Long: `Start the tvdeckd daemon.

The daemon provides:
- mpv playback control with probe-assisted stream acquisition
- periodic catalog syncing for configured IPTV sources
- REST API for sources, playback and sync status
- health check and Prometheus metrics endpoints`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().Int("port", 8410, "Port to listen on")
	serveCmd.Flags().String("database", "tvdeckd.db", "Database DSN")
	serveCmd.Flags().String("player-socket", "/tmp/tvdeckd-mpv.sock", "mpv JSON IPC socket path")

	mustBindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	mustBindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	mustBindPFlag("database.dsn", serveCmd.Flags().Lookup("database"))
	mustBindPFlag("player.socket", serveCmd.Flags().Lookup("player-socket"))
}

func runServe(cmd *cobra.Command, args []string) error {
	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	logger := slog.Default()

	d, err := daemon.New(&cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return d.Run(ctx)
}
