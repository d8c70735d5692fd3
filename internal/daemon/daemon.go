// Package daemon wires tvdeckd's components together and runs them: the
// database, the sync orchestrator with its cron re-trigger, the mpv player
// backend, and the HTTP API server.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mfairchild/tvdeckd/internal/catalog"
	"github.com/mfairchild/tvdeckd/internal/config"
	"github.com/mfairchild/tvdeckd/internal/database"
	"github.com/mfairchild/tvdeckd/internal/httpclient"
	"github.com/mfairchild/tvdeckd/internal/models"
	"github.com/mfairchild/tvdeckd/internal/player"
	"github.com/mfairchild/tvdeckd/internal/provider"
	"github.com/mfairchild/tvdeckd/internal/repository"
	"github.com/mfairchild/tvdeckd/internal/server"
	"github.com/mfairchild/tvdeckd/internal/server/handlers"
	"github.com/mfairchild/tvdeckd/internal/stream"
	"github.com/mfairchild/tvdeckd/internal/version"
)

// Daemon is the assembled tvdeckd service.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger

	db           *database.DB
	sources      repository.SourceRepository
	settings     repository.SettingRepository
	session      *catalog.Session
	orchestrator *catalog.Orchestrator
	mpv          *player.MPV
	srv          *server.Server
	cron         *cron.Cron

	// syncRunning enforces one orchestrator run in flight at a time.
	syncRunning atomic.Bool
}

// New wires a Daemon from configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := database.New(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}

	sourceRepo := repository.NewSourceRepository(db.DB)
	settingRepo := repository.NewSettingRepository(db.DB, models.RefreshPolicy{
		EpgRefresh:    cfg.Sync.EpgRefresh,
		VodRefresh:    cfg.Sync.VodRefresh,
		MaxConcurrent: cfg.Sync.MaxConcurrent,
	})
	session := catalog.NewSession()

	// The probe path gets no retries: its job is a single fast diagnostic
	// peek, and the player is already loading the stream in parallel.
	probeCfg := httpclient.DefaultConfig()
	probeCfg.Timeout = cfg.Probe.Timeout
	probeCfg.RetryAttempts = 0
	probeCfg.UserAgent = version.UserAgent()
	probeCfg.Logger = logger
	prober := stream.NewProber(httpclient.New(probeCfg),
		stream.WithPeekBytes(cfg.Probe.PeekBytes),
		stream.WithMaxBodyBytes(cfg.Probe.MaxBodyBytes),
		stream.WithProbeLogger(logger),
	)

	mpv := player.NewMPV(cfg.Player.Socket,
		player.WithTimeout(cfg.Player.Timeout),
		player.WithLogger(logger),
	)
	acquirer := stream.NewAcquirer(mpv, prober, logger)

	// Catalog downloads keep the client's retry and circuit breaker
	// behavior; providers flake routinely during bulk refresh.
	fetchCfg := httpclient.DefaultConfig()
	fetchCfg.UserAgent = version.UserAgent()
	fetchCfg.Logger = logger
	fetcher := provider.NewFetcher(httpclient.New(fetchCfg), logger)

	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		sources:  sourceRepo,
		settings: settingRepo,
		session:  session,
		mpv:      mpv,
	}

	d.orchestrator = catalog.NewOrchestrator(
		sourceRepo,
		settingRepo,
		session,
		d.epgTask(fetcher),
		d.vodTask(fetcher),
		logger,
		catalog.WithHealthChecker(db),
		catalog.WithProgress(func(msg string) {
			logger.Info("sync progress", slog.String("status", msg))
		}),
	)

	srv := server.New(cfg.Server, logger, version.Version, db)
	handlers.NewStatusHandler(version.Version, session).Register(srv.API())
	handlers.NewSyncHandler(d).Register(srv.API())
	handlers.NewSourceHandler(sourceRepo).Register(srv.API())
	handlers.NewPlayHandler(acquirer, logger).Register(srv.API())
	d.srv = srv

	return d, nil
}

// epgTask returns the per-source channel/EPG refresh task.
func (d *Daemon) epgTask(fetcher *provider.Fetcher) catalog.Task {
	return func(ctx context.Context, src *models.Source, report func(string)) error {
		if err := fetcher.RefreshEPG(ctx, src, report); err != nil {
			if markErr := d.sources.MarkFailed(ctx, src.ID, err); markErr != nil {
				d.logger.Error("recording sync failure", slog.String("error", markErr.Error()))
			}
			return err
		}
		return d.sources.MarkEpgSynced(ctx, src.ID)
	}
}

// vodTask returns the per-source VOD catalog refresh task.
func (d *Daemon) vodTask(fetcher *provider.Fetcher) catalog.Task {
	return func(ctx context.Context, src *models.Source, report func(string)) error {
		if err := fetcher.RefreshVOD(ctx, src, report); err != nil {
			if markErr := d.sources.MarkFailed(ctx, src.ID, err); markErr != nil {
				d.logger.Error("recording sync failure", slog.String("error", markErr.Error()))
			}
			return err
		}
		return d.sources.MarkVodSynced(ctx, src.ID)
	}
}

// TriggerSync starts an orchestrator run in the background. Returns false if
// a run is already in flight.
func (d *Daemon) TriggerSync() bool {
	if !d.syncRunning.CompareAndSwap(false, true) {
		return false
	}

	go func() {
		defer d.syncRunning.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
		defer cancel()

		if err := d.orchestrator.RunOnce(ctx); err != nil {
			d.logger.Error("sync run failed", slog.String("error", err.Error()))
		}
	}()
	return true
}

// Run starts the daemon and blocks until ctx is canceled or the HTTP server
// fails. A sync run is kicked off at startup; the configured cron schedule
// re-triggers it periodically.
func (d *Daemon) Run(ctx context.Context) error {
	d.logger.Info("tvdeckd starting",
		slog.String("version", version.Version),
		slog.String("address", d.cfg.Server.Address()),
		slog.String("player_socket", d.cfg.Player.Socket),
	)

	if schedule := d.cfg.Sync.Schedule; schedule != "" {
		c := cron.New(cron.WithSeconds())
		if _, err := c.AddFunc(schedule, func() {
			if !d.TriggerSync() {
				d.logger.Debug("scheduled sync skipped, run already in flight")
			}
		}); err != nil {
			return fmt.Errorf("invalid sync schedule %q: %w", schedule, err)
		}
		c.Start()
		d.cron = c
		d.logger.Info("sync schedule active", slog.String("schedule", schedule))
	}

	d.TriggerSync()

	err := d.srv.ListenAndServe(ctx)

	d.shutdown()
	return err
}

// shutdown releases daemon resources.
func (d *Daemon) shutdown() {
	if d.cron != nil {
		cronCtx := d.cron.Stop()
		<-cronCtx.Done()
	}
	if err := d.mpv.Close(); err != nil {
		d.logger.Debug("closing player connection", slog.String("error", err.Error()))
	}
	if err := d.db.Close(); err != nil {
		d.logger.Warn("closing database", slog.String("error", err.Error()))
	}
	d.logger.Info("tvdeckd stopped")
}
