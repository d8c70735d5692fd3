package stream

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanFallbacks_Live(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want []string
	}{
		{
			"ts pivots to hls variants",
			"http://h/live/u/p/123.ts",
			[]string{"http://h/live/u/p/123.m3u8", "http://h/live/u/p/123.m3u"},
		},
		{
			"m3u8 pivots to m3u only",
			"http://h/live/u/p/123.m3u8",
			[]string{"http://h/live/u/p/123.m3u"},
		},
		{
			"m3u pivots to m3u8 only",
			"http://h/live/u/p/123.m3u",
			[]string{"http://h/live/u/p/123.m3u8"},
		},
		{
			"uppercase extension still excluded",
			"http://h/live/123.M3U8",
			[]string{"http://h/live/123.m3u"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlanFallbacks(tt.url, true))
		})
	}
}

func TestPlanFallbacks_VOD(t *testing.T) {
	got := PlanFallbacks("http://h/movie/u/p/42.mp4", false)
	assert.Equal(t, []string{"http://h/movie/u/p/42.m3u8", "http://h/movie/u/p/42.ts"}, got)

	got = PlanFallbacks("http://h/movie/u/p/42.ts", false)
	assert.Equal(t, []string{"http://h/movie/u/p/42.m3u8"}, got)
}

func TestPlanFallbacks_NeverProposesCurrentExtension(t *testing.T) {
	for _, u := range []string{
		"http://h/a.ts", "http://h/a.m3u8", "http://h/a.m3u", "http://h/a.mp4",
	} {
		ext := u[strings.LastIndex(u, "."):]
		for _, candidate := range PlanFallbacks(u, true) {
			assert.False(t, strings.HasSuffix(candidate, ext),
				"candidate %q repeats extension of %q", candidate, u)
		}
	}
}

func TestPlanFallbacks_NoExtension(t *testing.T) {
	assert.Empty(t, PlanFallbacks("http://h/live/stream", true))
	assert.Empty(t, PlanFallbacks("http://h/live/stream/", true))
	assert.Empty(t, PlanFallbacks("http://h", false))
}

func TestPlanFallbacks_PreservesQueryVerbatim(t *testing.T) {
	got := PlanFallbacks("http://h/live/1.ts?token=a%2Bb&u=x", true)
	assert.Equal(t, []string{
		"http://h/live/1.m3u8?token=a%2Bb&u=x",
		"http://h/live/1.m3u?token=a%2Bb&u=x",
	}, got)
}

func TestPlanFallbacks_UnparseableURL(t *testing.T) {
	assert.Empty(t, PlanFallbacks("://not-a-url.ts", true))
}
