package models

import (
	"net/url"
	"strings"
	"time"

	"gorm.io/gorm"
)

// SourceType represents the type of IPTV provider behind a source.
type SourceType string

const (
	// SourceTypeM3U represents a plain M3U playlist provider.
	SourceTypeM3U SourceType = "m3u"
	// SourceTypeXtream represents an Xtream Codes API provider.
	SourceTypeXtream SourceType = "xtream"
	// SourceTypeStalker represents a Stalker portal provider.
	SourceTypeStalker SourceType = "stalker"
)

// Source represents one configured upstream provider whose channel, EPG and
// VOD catalogs are cached locally and refreshed by the sync orchestrator.
type Source struct {
	BaseModel

	// Name is a user-friendly name for the source.
	// Must be unique across all sources.
	Name string `gorm:"uniqueIndex;not null;size:255" json:"name"`

	// Type indicates the provider protocol (m3u, xtream, stalker).
	Type SourceType `gorm:"not null;size:20" json:"type"`

	// URL is the playlist URL or provider portal base URL.
	URL string `gorm:"not null;size:2048" json:"url"`

	// Username for Xtream authentication (unused for M3U).
	Username string `gorm:"size:255" json:"username,omitempty"`

	// Password for Xtream authentication (unused for M3U).
	Password string `gorm:"size:255" json:"password,omitempty"`

	// MAC is the device MAC address for Stalker portal authentication.
	MAC string `gorm:"size:64" json:"mac,omitempty"`

	// UserAgent to use when fetching from this provider (optional).
	UserAgent string `gorm:"size:512" json:"user_agent,omitempty"`

	// Enabled indicates whether this source participates in syncing.
	// Using pointer to distinguish between "not set" (nil->default true) and "explicitly false".
	Enabled *bool `gorm:"default:true" json:"enabled"`

	// LastEpgSyncAt is the timestamp of the last successful channel/EPG sync.
	// Nil means the source has never synced and is always considered stale.
	LastEpgSyncAt *time.Time `json:"last_epg_sync_at,omitempty"`

	// LastVodSyncAt is the timestamp of the last successful VOD catalog sync.
	// Only meaningful for provider types that expose a VOD catalog.
	LastVodSyncAt *time.Time `json:"last_vod_sync_at,omitempty"`

	// LastError contains the error message from the last failed sync.
	LastError string `gorm:"size:4096" json:"last_error,omitempty"`
}

// TableName returns the table name for Source.
func (Source) TableName() string {
	return "sources"
}

// IsEnabled returns whether the source participates in syncing.
func (s *Source) IsEnabled() bool {
	return BoolVal(s.Enabled)
}

// SupportsVOD returns true if the provider type exposes a VOD catalog.
// Plain M3U playlists carry linear channels only.
func (s *Source) SupportsVOD() bool {
	return s.Type == SourceTypeXtream || s.Type == SourceTypeStalker
}

// MarkEpgSynced records a successful channel/EPG sync at the given time.
func (s *Source) MarkEpgSynced(at time.Time) {
	s.LastEpgSyncAt = &at
	s.LastError = ""
}

// MarkVodSynced records a successful VOD catalog sync at the given time.
func (s *Source) MarkVodSynced(at time.Time) {
	s.LastVodSyncAt = &at
	s.LastError = ""
}

// MarkFailed records the error message from a failed sync.
func (s *Source) MarkFailed(err error) {
	if err != nil {
		s.LastError = err.Error()
	}
}

// Sanitize trims whitespace from user-provided fields.
func (s *Source) Sanitize() {
	s.Name = strings.TrimSpace(s.Name)
	s.URL = strings.TrimSpace(s.URL)
	s.Username = strings.TrimSpace(s.Username)
	s.Password = strings.TrimSpace(s.Password)
	s.MAC = strings.TrimSpace(s.MAC)
	s.UserAgent = strings.TrimSpace(s.UserAgent)
}

// Validate performs basic validation on the source.
func (s *Source) Validate() error {
	s.Sanitize()

	if s.Name == "" {
		return ErrNameRequired
	}
	if s.URL == "" {
		return ErrURLRequired
	}
	if _, err := url.Parse(s.URL); err != nil {
		return ErrInvalidURL
	}
	switch s.Type {
	case SourceTypeM3U:
	case SourceTypeXtream:
		if s.Username == "" || s.Password == "" {
			return ErrXtreamCredentialsRequired
		}
	case SourceTypeStalker:
		if s.MAC == "" {
			return ErrStalkerMACRequired
		}
	default:
		return ErrInvalidSourceType
	}
	return nil
}

// BeforeCreate is a GORM hook that validates the source and generates a ULID.
func (s *Source) BeforeCreate(tx *gorm.DB) error {
	if err := s.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	return s.Validate()
}

// BeforeUpdate is a GORM hook that validates the source before update.
func (s *Source) BeforeUpdate(tx *gorm.DB) error {
	return s.Validate()
}
