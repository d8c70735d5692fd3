package models

import (
	"strconv"
	"strings"
	"time"
)

// Well-known setting keys. Keys outside this set are treated as opaque UI
// preferences and forwarded to the frontend without interpretation.
const (
	SettingKeyEpgRefreshHours = "epg_refresh_hours"
	SettingKeyVodRefreshHours = "vod_refresh_hours"
	SettingKeyMaxConcurrent   = "max_concurrent_syncs"
)

// Setting is one key-value row of the settings store.
type Setting struct {
	Key       string    `gorm:"primaryKey;size:255" json:"key"`
	Value     string    `gorm:"size:4096" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for Setting.
func (Setting) TableName() string {
	return "settings"
}

// refreshKeys is the set of keys consumed by the sync engine itself.
var refreshKeys = map[string]bool{
	SettingKeyEpgRefreshHours: true,
	SettingKeyVodRefreshHours: true,
	SettingKeyMaxConcurrent:   true,
}

// SettingsFromRows assembles a Settings blob from raw rows on top of the
// given base policy. Recognized keys override the base; everything else lands
// in Preferences. Unparseable values fall back to the base rather than
// failing the sync run.
func SettingsFromRows(rows []Setting, base RefreshPolicy) *Settings {
	base.Normalize()
	s := &Settings{
		Refresh:     base,
		Preferences: make(map[string]string),
	}

	for _, row := range rows {
		key := strings.TrimSpace(row.Key)
		if !refreshKeys[key] {
			s.Preferences[key] = row.Value
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(row.Value))
		if err != nil || n <= 0 {
			continue
		}
		switch key {
		case SettingKeyEpgRefreshHours:
			s.Refresh.EpgRefresh = time.Duration(n) * time.Hour
		case SettingKeyVodRefreshHours:
			s.Refresh.VodRefresh = time.Duration(n) * time.Hour
		case SettingKeyMaxConcurrent:
			s.Refresh.MaxConcurrent = n
		}
	}

	return s
}
