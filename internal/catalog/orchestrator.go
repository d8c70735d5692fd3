package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mfairchild/tvdeckd/internal/metrics"
	"github.com/mfairchild/tvdeckd/internal/models"
)

// SourceProvider lists the sources eligible for syncing.
type SourceProvider interface {
	ListEnabled(ctx context.Context) ([]*models.Source, error)
}

// SettingsProvider loads the settings blob consulted at run start.
type SettingsProvider interface {
	Load(ctx context.Context) (*models.Settings, error)
}

// HealthChecker verifies a dependency is reachable. Failures are advisory.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// PreferencesFunc receives the opaque UI preferences loaded with settings.
type PreferencesFunc func(prefs map[string]string)

// Orchestrator drives one full sync run: load settings and sources, then an
// EPG phase followed by a VOD phase, each batched through the scheduler.
type Orchestrator struct {
	sources   SourceProvider
	settings  SettingsProvider
	health    HealthChecker
	scheduler *BatchScheduler
	staleness *StalenessPolicy
	session   *Session
	logger    *slog.Logger

	epgTask Task
	vodTask Task

	onProgress    ProgressFunc
	onPreferences PreferencesFunc
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithHealthChecker enables a best-effort reachability check at run start.
func WithHealthChecker(h HealthChecker) OrchestratorOption {
	return func(o *Orchestrator) { o.health = h }
}

// WithProgress registers a callback for status text. The same text also
// lands in the session status field.
func WithProgress(fn ProgressFunc) OrchestratorOption {
	return func(o *Orchestrator) { o.onProgress = fn }
}

// WithPreferences registers a callback receiving the UI preferences loaded
// alongside the refresh policy.
func WithPreferences(fn PreferencesFunc) OrchestratorOption {
	return func(o *Orchestrator) { o.onPreferences = fn }
}

// WithStalenessPolicy overrides the staleness policy. For tests.
func WithStalenessPolicy(p *StalenessPolicy) OrchestratorOption {
	return func(o *Orchestrator) { o.staleness = p }
}

// NewOrchestrator wires an orchestrator. epgTask and vodTask perform the
// actual per-source refresh work.
func NewOrchestrator(sources SourceProvider, settings SettingsProvider, session *Session, epgTask, vodTask Task, logger *slog.Logger, opts ...OrchestratorOption) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		sources:   sources,
		settings:  settings,
		scheduler: NewBatchScheduler(logger),
		staleness: NewStalenessPolicy(),
		session:   session,
		logger:    logger,
		epgTask:   epgTask,
		vodTask:   vodTask,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunOnce executes one complete sync run. The session's syncing flags and
// status are cleared on every exit path, including panics inside a phase. A
// panic in the EPG phase does not prevent the VOD phase from running.
//
// Errors from loading settings or sources abort the run; a failed health
// ping does not.
func (o *Orchestrator) RunOnce(ctx context.Context) error {
	metrics.SyncRuns.Inc()
	defer o.session.Clear()

	if o.health != nil {
		if err := o.health.Ping(ctx); err != nil {
			// Advisory only; the run proceeds and individual tasks fail
			// on their own if the dependency really is down.
			o.logger.Warn("health check failed", slog.String("error", err.Error()))
		}
	}

	settings, err := o.settings.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	policy := settings.Refresh
	policy.Normalize()

	if o.onPreferences != nil && settings.Preferences != nil {
		o.onPreferences(settings.Preferences)
	}

	sources, err := o.sources.ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("listing sources: %w", err)
	}
	if len(sources) == 0 {
		o.logger.Info("no enabled sources, nothing to sync")
		return nil
	}

	o.logger.Info("sync run starting",
		slog.String("session_id", o.session.ID()),
		slog.Int("sources", len(sources)),
		slog.Int("max_concurrent", policy.MaxConcurrent))

	o.runPhase(ctx, KindEPG, sources, policy)
	o.runPhase(ctx, KindVOD, sources, policy)

	o.logger.Info("sync run finished", slog.String("session_id", o.session.ID()))
	return nil
}

// runPhase executes one sync phase with full isolation: a panic inside the
// phase is caught here so the other phase still runs.
func (o *Orchestrator) runPhase(ctx context.Context, kind SyncKind, sources []*models.Source, policy models.RefreshPolicy) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("sync phase panicked",
				slog.String("kind", string(kind)),
				slog.Any("panic", r))
		}
		o.session.ClearStatus()
	}()

	refresh := policy.EpgRefresh
	task := o.epgTask
	eligible := sources
	if kind == KindVOD {
		refresh = policy.VodRefresh
		task = o.vodTask
		eligible = nil
		for _, src := range sources {
			if src.SupportsVOD() {
				eligible = append(eligible, src)
			}
		}
	}
	if task == nil {
		return
	}

	stale := o.staleness.FilterStale(eligible, kind, refresh)
	if len(stale) == 0 {
		o.logger.Debug("no stale sources", slog.String("kind", string(kind)))
		return
	}

	switch kind {
	case KindVOD:
		o.session.SetVODSyncing(true)
	default:
		o.session.SetChannelSyncing(true)
	}

	o.logger.Info("sync phase starting",
		slog.String("kind", string(kind)),
		slog.Int("stale", len(stale)),
		slog.Int("eligible", len(eligible)))

	progress := func(msg string) {
		o.session.SetStatus(msg)
		if o.onProgress != nil {
			o.onProgress(msg)
		}
	}
	o.scheduler.Run(ctx, kind, stale, policy.MaxConcurrent, task, progress, progress)
}
