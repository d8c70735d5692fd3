package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mfairchild/tvdeckd/internal/models"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func srcSyncedAt(name string, epg, vod *time.Time) *models.Source {
	return &models.Source{
		Name:          name,
		LastEpgSyncAt: epg,
		LastVodSyncAt: vod,
	}
}

func TestStalenessPolicy_IsStale(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	policy := NewStalenessPolicy().WithClock(fixedClock(now))
	refresh := 6 * time.Hour

	ago := func(d time.Duration) *time.Time {
		ts := now.Add(-d)
		return &ts
	}

	tests := []struct {
		name  string
		last  *time.Time
		stale bool
	}{
		{"never synced", nil, true},
		{"older than threshold", ago(7 * time.Hour), true},
		{"just past threshold", ago(6*time.Hour + time.Second), true},
		{"exactly at threshold", ago(6 * time.Hour), false},
		{"fresh", ago(5 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := srcSyncedAt("s", tt.last, tt.last)
			assert.Equal(t, tt.stale, policy.IsStale(src, KindEPG, refresh))
			assert.Equal(t, tt.stale, policy.IsStale(src, KindVOD, refresh))
		})
	}
}

func TestStalenessPolicy_KindsIndependent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	policy := NewStalenessPolicy().WithClock(fixedClock(now))

	recent := now.Add(-time.Hour)
	old := now.Add(-48 * time.Hour)
	src := srcSyncedAt("s", &recent, &old)

	assert.False(t, policy.IsStale(src, KindEPG, 6*time.Hour))
	assert.True(t, policy.IsStale(src, KindVOD, 24*time.Hour))
}

func TestStalenessPolicy_FilterStalePreservesOrder(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	policy := NewStalenessPolicy().WithClock(fixedClock(now))

	fresh := now.Add(-time.Hour)
	old := now.Add(-10 * time.Hour)
	sources := []*models.Source{
		srcSyncedAt("a", &old, nil),
		srcSyncedAt("b", &fresh, nil),
		srcSyncedAt("c", nil, nil),
		srcSyncedAt("d", &old, nil),
	}

	stale := policy.FilterStale(sources, KindEPG, 6*time.Hour)

	names := make([]string, len(stale))
	for i, s := range stale {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"a", "c", "d"}, names)
}
