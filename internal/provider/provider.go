// Package provider refreshes cached catalogs from remote IPTV providers.
// It downloads provider payloads and records sync bookkeeping; interpreting
// the payloads is the desktop frontend's job.
package provider

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/mfairchild/tvdeckd/internal/httpclient"
	"github.com/mfairchild/tvdeckd/internal/models"
	"github.com/mfairchild/tvdeckd/internal/urlutil"
)

// Fetcher downloads provider catalogs through the resilient HTTP client.
type Fetcher struct {
	client *httpclient.Client
	logger *slog.Logger
}

// NewFetcher creates a Fetcher.
func NewFetcher(client *httpclient.Client, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{client: client, logger: logger}
}

// endpoint is one provider URL to refresh, with a short label for progress
// reporting.
type endpoint struct {
	label string
	url   string
}

// RefreshEPG re-downloads the channel and guide payloads for a source.
func (f *Fetcher) RefreshEPG(ctx context.Context, src *models.Source, report func(string)) error {
	endpoints, err := epgEndpoints(src)
	if err != nil {
		return err
	}
	return f.fetchAll(ctx, src, endpoints, report)
}

// RefreshVOD re-downloads the VOD catalog payloads for a source.
func (f *Fetcher) RefreshVOD(ctx context.Context, src *models.Source, report func(string)) error {
	endpoints, err := vodEndpoints(src)
	if err != nil {
		return err
	}
	return f.fetchAll(ctx, src, endpoints, report)
}

func (f *Fetcher) fetchAll(ctx context.Context, src *models.Source, endpoints []endpoint, report func(string)) error {
	for _, ep := range endpoints {
		if report != nil {
			report("fetching " + ep.label)
		}
		size, err := f.fetch(ctx, src, ep.url)
		if err != nil {
			return fmt.Errorf("fetching %s: %w", ep.label, err)
		}
		f.logger.Debug("provider payload fetched",
			slog.String("source", src.Name),
			slog.String("endpoint", ep.label),
			slog.Int64("bytes", size))
	}
	return nil
}

// fetch downloads one payload, honoring the source's custom User-Agent, and
// returns the body size.
func (f *Fetcher) fetch(ctx context.Context, src *models.Source, rawURL string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	if src.UserAgent != "" {
		req.Header.Set("User-Agent", src.UserAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("provider returned %s for %s", resp.Status, httpclient.ObfuscateURLString(rawURL))
	}

	size, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		return size, fmt.Errorf("reading payload: %w", err)
	}
	return size, nil
}

// epgEndpoints returns the channel/guide URLs for a source's provider type.
func epgEndpoints(src *models.Source) ([]endpoint, error) {
	switch src.Type {
	case models.SourceTypeM3U:
		return []endpoint{{label: "playlist", url: src.URL}}, nil
	case models.SourceTypeXtream:
		return []endpoint{
			{label: "live categories", url: xtreamAPI(src, "get_live_categories")},
			{label: "live streams", url: xtreamAPI(src, "get_live_streams")},
			{label: "program guide", url: xtreamXMLTV(src)},
		}, nil
	case models.SourceTypeStalker:
		return []endpoint{
			{label: "channel list", url: stalkerPortal(src, "itv", "get_all_channels")},
		}, nil
	default:
		return nil, models.ErrInvalidSourceType
	}
}

// vodEndpoints returns the VOD catalog URLs for a source's provider type.
func vodEndpoints(src *models.Source) ([]endpoint, error) {
	switch src.Type {
	case models.SourceTypeXtream:
		return []endpoint{
			{label: "vod categories", url: xtreamAPI(src, "get_vod_categories")},
			{label: "vod streams", url: xtreamAPI(src, "get_vod_streams")},
			{label: "series", url: xtreamAPI(src, "get_series")},
		}, nil
	case models.SourceTypeStalker:
		return []endpoint{
			{label: "vod list", url: stalkerPortal(src, "vod", "get_ordered_list")},
		}, nil
	default:
		return nil, fmt.Errorf("source type %q has no VOD catalog", src.Type)
	}
}

// xtreamAPI builds an Xtream Codes player_api.php URL for the given action.
func xtreamAPI(src *models.Source, action string) string {
	base := urlutil.NormalizeBaseURL(src.URL)
	q := url.Values{}
	q.Set("username", src.Username)
	q.Set("password", src.Password)
	q.Set("action", action)
	return base + "/player_api.php?" + q.Encode()
}

// xtreamXMLTV builds the Xtream Codes XMLTV guide URL.
func xtreamXMLTV(src *models.Source) string {
	base := urlutil.NormalizeBaseURL(src.URL)
	q := url.Values{}
	q.Set("username", src.Username)
	q.Set("password", src.Password)
	return base + "/xmltv.php?" + q.Encode()
}

// stalkerPortal builds a Stalker portal.php URL. The device MAC travels
// in the query string as the portal protocol expects.
func stalkerPortal(src *models.Source, portalType, action string) string {
	base := urlutil.NormalizeBaseURL(src.URL)
	q := url.Values{}
	q.Set("type", portalType)
	q.Set("action", action)
	q.Set("mac", src.MAC)
	q.Set("JsHttpRequest", "1-xml")
	return base + "/portal.php?" + q.Encode()
}
