package stream

import (
	"context"
	"log/slog"

	"github.com/mfairchild/tvdeckd/internal/httpclient"
	"github.com/mfairchild/tvdeckd/internal/metrics"
	"github.com/mfairchild/tvdeckd/internal/urlutil"
)

// Player is the backend that actually plays media. tvdeckd drives an
// mpv-compatible backend, but acquisition only needs these two calls.
type Player interface {
	// LoadVideo instructs the backend to load and play a URL. A nil error
	// means the backend accepted and started the load.
	LoadVideo(ctx context.Context, url string) error

	// SetProperty sets a backend property such as "user-agent".
	SetProperty(ctx context.Context, name, value string) error
}

// Result is the outcome of a stream acquisition. URL is always the URL that
// actually worked, which may differ from the requested URL when a fallback
// succeeded. On total failure URL is the original URL and Err carries the
// primary attempt's error.
type Result struct {
	URL string
	Err error
}

// Success reports whether any load attempt succeeded.
func (r Result) Success() bool {
	return r.Err == nil
}

// Acquirer orchestrates stream acquisition: an optimistic primary load, a
// backgrounded advisory probe, and sequential fallback attempts on failure.
type Acquirer struct {
	player Player
	prober *Prober
	logger *slog.Logger
}

// NewAcquirer creates an Acquirer. prober may be nil to disable background
// probing entirely.
func NewAcquirer(player Player, prober *Prober, logger *slog.Logger) *Acquirer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Acquirer{
		player: player,
		prober: prober,
		logger: logger,
	}
}

// Acquire loads primaryURL into the player, probing it in the background and
// walking the fallback chain if the primary load fails.
//
// The primary load is the latency-critical path: it is issued before any
// probe result is available. The background probe is purely advisory; a
// player may recover from transient issues the probe flags, so an auth
// failure is reported through onBackgroundError and never cancels playback.
//
// Fallbacks are attempted sequentially. An already-failing provider should
// not be hit with a burst of concurrent requests.
func (a *Acquirer) Acquire(ctx context.Context, primaryURL string, isLive bool, userAgent string, onBackgroundError func(string)) Result {
	if userAgent != "" {
		// Best effort; a backend that rejects the property can still play.
		if err := a.player.SetProperty(ctx, "user-agent", userAgent); err != nil {
			a.logger.Warn("failed to set player user-agent",
				slog.String("error", err.Error()))
		}
	}

	if a.prober != nil && urlutil.IsRemoteURL(primaryURL) {
		a.backgroundProbe(ctx, primaryURL, userAgent, onBackgroundError)
	}

	primaryErr := a.player.LoadVideo(ctx, primaryURL)
	if primaryErr == nil {
		metrics.AcquisitionResults.WithLabelValues(metrics.ResultSuccess).Inc()
		return Result{URL: primaryURL}
	}

	a.logger.Warn("primary load failed, trying fallbacks",
		slog.String("url", httpclient.ObfuscateURLString(primaryURL)),
		slog.String("error", primaryErr.Error()))

	for _, candidate := range PlanFallbacks(primaryURL, isLive) {
		metrics.FallbackAttempts.Inc()
		if err := a.player.LoadVideo(ctx, candidate); err != nil {
			// Fallback errors are diagnostic only; the primary error is
			// what the user ultimately sees.
			a.logger.Debug("fallback load failed",
				slog.String("url", httpclient.ObfuscateURLString(candidate)),
				slog.String("error", err.Error()))
			continue
		}
		a.logger.Info("fallback load succeeded",
			slog.String("url", httpclient.ObfuscateURLString(candidate)))
		metrics.AcquisitionResults.WithLabelValues(metrics.ResultFallbackSuccess).Inc()
		return Result{URL: candidate}
	}

	metrics.AcquisitionResults.WithLabelValues(metrics.ResultFailure).Inc()
	return Result{URL: primaryURL, Err: primaryErr}
}

// backgroundProbe launches the advisory probe. It is fire-and-forget with
// respect to the load: the probe outcome can only add an error signal after
// the fact, never gate or cancel playback. Only auth failures are escalated
// to the callback; other outcomes are logged and dropped.
func (a *Acquirer) backgroundProbe(ctx context.Context, url, userAgent string, onBackgroundError func(string)) {
	probeCtx := context.WithoutCancel(ctx)
	go func() {
		outcome := a.prober.Probe(probeCtx, url, userAgent)
		if !outcome.IsError() {
			return
		}

		a.logger.Warn("background probe flagged stream",
			slog.String("url", httpclient.ObfuscateURLString(url)),
			slog.String("class", string(outcome.Class)),
			slog.String("message", outcome.Message))

		if outcome.IsAuthFailure() && onBackgroundError != nil {
			onBackgroundError(outcome.Message)
		}
	}()
}
