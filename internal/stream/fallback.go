package stream

import (
	"net/url"
	"path"
	"strings"

	"github.com/mfairchild/tvdeckd/internal/urlutil"
)

// Candidate extensions tried after a primary load fails. Live streams are
// most often recoverable as HLS playlists; VOD items as HLS or raw transport
// streams.
var (
	liveFallbackExts = []string{".m3u8", ".m3u"}
	vodFallbackExts  = []string{".m3u8", ".ts"}
)

// PlanFallbacks deterministically derives alternate candidate URLs from the
// primary URL's file extension. The returned list is ordered by preference
// and never contains the primary URL's own extension. It is empty when the
// URL has no extension to pivot on or cannot be parsed.
//
// The query string is carried over verbatim: it frequently holds
// authentication tokens whose encoding must not be disturbed. This function
// performs no I/O.
func PlanFallbacks(rawURL string, isLive bool) []string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}

	base, query := urlutil.SplitQuery(rawURL)

	// Take the extension from the parsed path so that a host-only URL like
	// http://example.com does not pivot on ".com".
	ext := path.Ext(parsed.Path)
	if ext == "" || ext == "." || !strings.HasSuffix(base, ext) {
		// No extension means no basis for guessing alternates.
		return nil
	}

	stem := strings.TrimSuffix(base, ext)
	current := strings.ToLower(ext)

	exts := vodFallbackExts
	if isLive {
		exts = liveFallbackExts
	}

	var candidates []string
	for _, alt := range exts {
		if alt == current {
			continue
		}
		candidate := stem + alt
		if query != "" {
			candidate += "?" + query
		}
		candidates = append(candidates, candidate)
	}
	return candidates
}
