package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_Validate(t *testing.T) {
	valid := func() *Source {
		return &Source{
			Name:     "Provider",
			Type:     SourceTypeXtream,
			URL:      "http://provider.example/",
			Username: "user",
			Password: "pass",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Source)
		wantErr error
	}{
		{"valid xtream", func(s *Source) {}, nil},
		{"valid m3u", func(s *Source) {
			s.Type = SourceTypeM3U
			s.Username = ""
			s.Password = ""
		}, nil},
		{"valid stalker", func(s *Source) {
			s.Type = SourceTypeStalker
			s.MAC = "00:1A:79:AA:BB:CC"
		}, nil},
		{"missing name", func(s *Source) { s.Name = "  " }, ErrNameRequired},
		{"missing url", func(s *Source) { s.URL = "" }, ErrURLRequired},
		{"xtream without credentials", func(s *Source) { s.Password = "" }, ErrXtreamCredentialsRequired},
		{"stalker without mac", func(s *Source) {
			s.Type = SourceTypeStalker
			s.MAC = ""
		}, ErrStalkerMACRequired},
		{"unknown type", func(s *Source) { s.Type = "rtsp" }, ErrInvalidSourceType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(s)
			err := s.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestSource_SupportsVOD(t *testing.T) {
	assert.False(t, (&Source{Type: SourceTypeM3U}).SupportsVOD())
	assert.True(t, (&Source{Type: SourceTypeXtream}).SupportsVOD())
	assert.True(t, (&Source{Type: SourceTypeStalker}).SupportsVOD())
}

func TestSource_MarkHelpers(t *testing.T) {
	s := &Source{LastError: "old failure"}
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s.MarkEpgSynced(at)
	require.NotNil(t, s.LastEpgSyncAt)
	assert.Equal(t, at, *s.LastEpgSyncAt)
	assert.Empty(t, s.LastError)

	s.MarkVodSynced(at)
	require.NotNil(t, s.LastVodSyncAt)

	s.MarkFailed(assert.AnError)
	assert.Equal(t, assert.AnError.Error(), s.LastError)
}

func TestRefreshPolicy_Normalize(t *testing.T) {
	p := RefreshPolicy{}
	p.Normalize()
	assert.Equal(t, DefaultRefreshPolicy(), p)

	p = RefreshPolicy{EpgRefresh: time.Hour, VodRefresh: 2 * time.Hour, MaxConcurrent: 2}
	p.Normalize()
	assert.Equal(t, time.Hour, p.EpgRefresh)
	assert.Equal(t, 2, p.MaxConcurrent)
}

func TestSettingsFromRows(t *testing.T) {
	rows := []Setting{
		{Key: SettingKeyEpgRefreshHours, Value: "12"},
		{Key: SettingKeyVodRefreshHours, Value: "garbage"},
		{Key: SettingKeyMaxConcurrent, Value: "3"},
		{Key: "theme", Value: "dark"},
	}

	s := SettingsFromRows(rows, DefaultRefreshPolicy())

	assert.Equal(t, 12*time.Hour, s.Refresh.EpgRefresh)
	assert.Equal(t, DefaultVodRefresh, s.Refresh.VodRefresh)
	assert.Equal(t, 3, s.Refresh.MaxConcurrent)
	assert.Equal(t, map[string]string{"theme": "dark"}, s.Preferences)
}

func TestSettingsFromRows_BasePolicy(t *testing.T) {
	base := RefreshPolicy{EpgRefresh: 2 * time.Hour, VodRefresh: 48 * time.Hour, MaxConcurrent: 2}

	s := SettingsFromRows([]Setting{{Key: SettingKeyEpgRefreshHours, Value: "1"}}, base)

	assert.Equal(t, time.Hour, s.Refresh.EpgRefresh, "stored value overrides the base")
	assert.Equal(t, 48*time.Hour, s.Refresh.VodRefresh, "unset keys keep the base")
	assert.Equal(t, 2, s.Refresh.MaxConcurrent)

	s = SettingsFromRows(nil, RefreshPolicy{})
	assert.Equal(t, DefaultRefreshPolicy(), s.Refresh, "zero base normalizes to defaults")
}
