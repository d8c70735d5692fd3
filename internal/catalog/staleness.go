// Package catalog keeps locally cached channel/EPG/VOD catalogs fresh by
// running bounded-concurrency sync batches against remote providers.
package catalog

import (
	"time"

	"github.com/mfairchild/tvdeckd/internal/models"
)

// SyncKind identifies which catalog a sync operation refreshes.
type SyncKind string

const (
	// KindEPG covers channels, categories and program guide data.
	KindEPG SyncKind = "epg"
	// KindVOD covers movie/series catalogs. Only meaningful for provider
	// types that expose a VOD catalog; callers pre-filter by type.
	KindVOD SyncKind = "vod"
)

// StalenessPolicy decides whether a source's cached data has exceeded an
// operator-configured age threshold.
type StalenessPolicy struct {
	now func() time.Time
}

// NewStalenessPolicy creates a policy using the wall clock.
func NewStalenessPolicy() *StalenessPolicy {
	return &StalenessPolicy{now: time.Now}
}

// WithClock overrides the clock. For tests.
func (p *StalenessPolicy) WithClock(now func() time.Time) *StalenessPolicy {
	p.now = now
	return p
}

// IsStale reports whether the source's cached data of the given kind is
// older than refresh. A source that has never synced is always stale.
func (p *StalenessPolicy) IsStale(src *models.Source, kind SyncKind, refresh time.Duration) bool {
	var last *time.Time
	switch kind {
	case KindVOD:
		last = src.LastVodSyncAt
	default:
		last = src.LastEpgSyncAt
	}

	if last == nil {
		return true
	}
	return p.now().Sub(*last) > refresh
}

// FilterStale returns the subset of sources stale for the given kind,
// preserving order.
func (p *StalenessPolicy) FilterStale(sources []*models.Source, kind SyncKind, refresh time.Duration) []*models.Source {
	var stale []*models.Source
	for _, src := range sources {
		if p.IsStale(src, kind, refresh) {
			stale = append(stale, src)
		}
	}
	return stale
}
