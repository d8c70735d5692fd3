package models

import "time"

// Default refresh thresholds applied when the operator has not configured
// explicit values.
const (
	DefaultEpgRefresh = 6 * time.Hour
	DefaultVodRefresh = 24 * time.Hour

	// MaxConcurrentSyncs is the hard ceiling on simultaneous per-source
	// sync tasks. It bounds outbound requests against providers and peak
	// memory from large catalog payloads.
	MaxConcurrentSyncs = 5
)

// RefreshPolicy holds the operator-configured staleness thresholds for one
// sync session. Immutable for the duration of the session.
type RefreshPolicy struct {
	// EpgRefresh is the maximum age of cached channel/EPG data before a
	// source is considered stale.
	EpgRefresh time.Duration

	// VodRefresh is the maximum age of cached VOD catalog data before a
	// source is considered stale.
	VodRefresh time.Duration

	// MaxConcurrent is the sync concurrency ceiling.
	MaxConcurrent int
}

// DefaultRefreshPolicy returns the policy defaults (EPG 6h, VOD 24h, 5 concurrent).
func DefaultRefreshPolicy() RefreshPolicy {
	return RefreshPolicy{
		EpgRefresh:    DefaultEpgRefresh,
		VodRefresh:    DefaultVodRefresh,
		MaxConcurrent: MaxConcurrentSyncs,
	}
}

// Normalize replaces zero or negative fields with their defaults.
func (p *RefreshPolicy) Normalize() {
	if p.EpgRefresh <= 0 {
		p.EpgRefresh = DefaultEpgRefresh
	}
	if p.VodRefresh <= 0 {
		p.VodRefresh = DefaultVodRefresh
	}
	if p.MaxConcurrent <= 0 {
		p.MaxConcurrent = MaxConcurrentSyncs
	}
}

// Settings is the blob loaded at the start of a sync session. The refresh
// policy is owned logic; Preferences are opaque UI preferences (sort order,
// shortcuts, theme) forwarded to the caller without interpretation.
type Settings struct {
	Refresh     RefreshPolicy
	Preferences map[string]string
}
