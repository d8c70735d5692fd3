package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfairchild/tvdeckd/internal/httpclient"
	"github.com/mfairchild/tvdeckd/internal/models"
)

type recordingServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []*http.Request
	status   int
}

func newRecordingServer(t *testing.T) *recordingServer {
	t.Helper()

	rs := &recordingServer{status: http.StatusOK}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.mu.Lock()
		clone := r.Clone(r.Context())
		rs.requests = append(rs.requests, clone)
		status := rs.status
		rs.mu.Unlock()

		w.WriteHeader(status)
		w.Write([]byte("payload"))
	}))
	t.Cleanup(rs.Close)
	return rs
}

func (rs *recordingServer) recorded() []*http.Request {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return append([]*http.Request(nil), rs.requests...)
}

func noRetryFetcher() *Fetcher {
	cfg := httpclient.DefaultConfig()
	cfg.RetryAttempts = 0
	return NewFetcher(httpclient.New(cfg), nil)
}

func TestFetcher_RefreshEPG_M3U(t *testing.T) {
	server := newRecordingServer(t)
	src := &models.Source{
		Name: "playlist source",
		Type: models.SourceTypeM3U,
		URL:  server.URL + "/list.m3u",
	}

	var progress []string
	err := noRetryFetcher().RefreshEPG(context.Background(), src, func(msg string) {
		progress = append(progress, msg)
	})
	require.NoError(t, err)

	reqs := server.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/list.m3u", reqs[0].URL.Path)
	assert.Equal(t, []string{"fetching playlist"}, progress)
}

func TestFetcher_RefreshEPG_Xtream(t *testing.T) {
	server := newRecordingServer(t)
	src := &models.Source{
		Name:     "xt source",
		Type:     models.SourceTypeXtream,
		URL:      server.URL,
		Username: "user",
		Password: "secret",
	}

	err := noRetryFetcher().RefreshEPG(context.Background(), src, nil)
	require.NoError(t, err)

	reqs := server.recorded()
	require.Len(t, reqs, 3)

	assert.Equal(t, "/player_api.php", reqs[0].URL.Path)
	assert.Equal(t, "get_live_categories", reqs[0].URL.Query().Get("action"))
	assert.Equal(t, "user", reqs[0].URL.Query().Get("username"))
	assert.Equal(t, "secret", reqs[0].URL.Query().Get("password"))

	assert.Equal(t, "get_live_streams", reqs[1].URL.Query().Get("action"))
	assert.Equal(t, "/xmltv.php", reqs[2].URL.Path)
}

func TestFetcher_RefreshEPG_Stalker(t *testing.T) {
	server := newRecordingServer(t)
	src := &models.Source{
		Name: "portal source",
		Type: models.SourceTypeStalker,
		URL:  server.URL,
		MAC:  "00:1A:79:AA:BB:CC",
	}

	err := noRetryFetcher().RefreshEPG(context.Background(), src, nil)
	require.NoError(t, err)

	reqs := server.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/portal.php", reqs[0].URL.Path)
	assert.Equal(t, "itv", reqs[0].URL.Query().Get("type"))
	assert.Equal(t, "get_all_channels", reqs[0].URL.Query().Get("action"))
	assert.Equal(t, "00:1A:79:AA:BB:CC", reqs[0].URL.Query().Get("mac"))
}

func TestFetcher_RefreshVOD_Xtream(t *testing.T) {
	server := newRecordingServer(t)
	src := &models.Source{
		Name:     "xt source",
		Type:     models.SourceTypeXtream,
		URL:      server.URL,
		Username: "user",
		Password: "secret",
	}

	err := noRetryFetcher().RefreshVOD(context.Background(), src, nil)
	require.NoError(t, err)

	reqs := server.recorded()
	require.Len(t, reqs, 3)
	assert.Equal(t, "get_vod_categories", reqs[0].URL.Query().Get("action"))
	assert.Equal(t, "get_vod_streams", reqs[1].URL.Query().Get("action"))
	assert.Equal(t, "get_series", reqs[2].URL.Query().Get("action"))
}

func TestFetcher_RefreshVOD_M3UUnsupported(t *testing.T) {
	src := &models.Source{Name: "playlist", Type: models.SourceTypeM3U, URL: "http://h/list.m3u"}

	err := noRetryFetcher().RefreshVOD(context.Background(), src, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no VOD catalog")
}

func TestFetcher_CustomUserAgentForwarded(t *testing.T) {
	server := newRecordingServer(t)
	src := &models.Source{
		Name:      "ua source",
		Type:      models.SourceTypeM3U,
		URL:       server.URL + "/list.m3u",
		UserAgent: "SpecialAgent/1.0",
	}

	require.NoError(t, noRetryFetcher().RefreshEPG(context.Background(), src, nil))

	reqs := server.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, "SpecialAgent/1.0", reqs[0].Header.Get("User-Agent"))
}

func TestFetcher_ErrorStatusObfuscatesCredentials(t *testing.T) {
	server := newRecordingServer(t)
	server.status = http.StatusForbidden
	src := &models.Source{
		Name:     "xt source",
		Type:     models.SourceTypeXtream,
		URL:      server.URL,
		Username: "user",
		Password: "hunter2",
	}

	err := noRetryFetcher().RefreshEPG(context.Background(), src, nil)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "hunter2")
}
