// Package stream implements the stream-acquisition resilience layer: probing
// candidate URLs without risking unbounded reads, deriving fallback URLs, and
// orchestrating player loads against unreliable IPTV providers.
package stream

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mfairchild/tvdeckd/internal/metrics"
)

// OutcomeClass classifies a probe result.
type OutcomeClass string

const (
	// ClassOK means the URL looks like a playable stream.
	ClassOK OutcomeClass = "ok"
	// ClassSoftError means the server answered 200 but the payload is
	// semantically an error (typically an HTML login or error page).
	ClassSoftError OutcomeClass = "soft_error"
	// ClassHardError means the server answered with a non-success status
	// or the connection failed outright.
	ClassHardError OutcomeClass = "hard_error"
)

// ProbeOutcome is the advisory classification of a probed URL. A nil
// *ProbeOutcome means the probe was inconclusive or safely skipped and the
// URL should be treated as OK. Outcomes carry a short message only, never
// the response body.
type ProbeOutcome struct {
	Class   OutcomeClass
	Message string
}

// IsError reports whether the outcome describes a problem.
func (o *ProbeOutcome) IsError() bool {
	return o != nil && o.Class != ClassOK
}

// IsAuthFailure reports whether the outcome indicates an authentication or
// authorization problem. Only these outcomes are escalated from background
// probes; everything else stays advisory-in-logs.
func (o *ProbeOutcome) IsAuthFailure() bool {
	if o == nil {
		return false
	}
	return strings.Contains(o.Message, "401") ||
		strings.Contains(o.Message, "403") ||
		strings.Contains(o.Message, "Access Denied")
}

// Doer is the minimal HTTP client surface the prober needs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Probe knobs. Zero values are replaced with these defaults.
const (
	// DefaultPeekBytes is the Range window requested from the provider.
	DefaultPeekBytes = 2048
	// DefaultMaxBodyBytes is the Content-Length below which reading a
	// non-ranged 200 response is considered safe.
	DefaultMaxBodyBytes = 100_000
	// snippetLen is how much of a safe body is inspected for HTML markers.
	snippetLen = 500
)

// playlistMarker identifies an M3U playlist. Some providers serve valid
// playlists with a text/html content type; the marker overrides the
// content-type signal.
const playlistMarker = "#EXTM3U"

// Prober inspects candidate stream URLs over HTTP without risking unbounded
// reads. Providers frequently answer 200 OK with an endless live transport
// stream; the prober must never consume such a body.
type Prober struct {
	client       Doer
	peekBytes    int
	maxBodyBytes int64
	logger       *slog.Logger
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithPeekBytes sets the Range window size.
func WithPeekBytes(n int) ProberOption {
	return func(p *Prober) {
		if n > 0 {
			p.peekBytes = n
		}
	}
}

// WithMaxBodyBytes sets the safe-read Content-Length threshold.
func WithMaxBodyBytes(n int64) ProberOption {
	return func(p *Prober) {
		if n > 0 {
			p.maxBodyBytes = n
		}
	}
}

// WithProbeLogger sets the logger.
func WithProbeLogger(logger *slog.Logger) ProberOption {
	return func(p *Prober) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProber creates a Prober using the given HTTP client. The client should
// have retries disabled: a probe is a one-shot advisory peek, and retry
// semantics belong to the caller, not here.
func NewProber(client Doer, opts ...ProberOption) *Prober {
	p := &Prober{
		client:       client,
		peekBytes:    DefaultPeekBytes,
		maxBodyBytes: DefaultMaxBodyBytes,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe inspects url and classifies it. userAgent is attached when non-empty.
// A nil return means the probe could not safely draw a conclusion and the URL
// should be treated as OK.
//
// The probe never propagates an error to its caller: transport failures are
// folded into a hard-error outcome.
func (p *Prober) Probe(ctx context.Context, url, userAgent string) *ProbeOutcome {
	outcome := p.probe(ctx, url, userAgent)
	metrics.ProbeOutcomes.WithLabelValues(outcomeLabel(outcome)).Inc()
	return outcome
}

func outcomeLabel(o *ProbeOutcome) string {
	if o == nil {
		return "inconclusive"
	}
	return string(o.Class)
}

func (p *Prober) probe(ctx context.Context, url, userAgent string) *ProbeOutcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &ProbeOutcome{Class: ClassHardError, Message: "Connection failed: " + err.Error()}
	}

	// Peek only. A well-behaved server answers 206 with a bounded body;
	// a server that ignores Range may be streaming an endless live feed.
	req.Header.Set("Range", fmt.Sprintf("bytes=0-%d", p.peekBytes))
	req.Header.Set("Cache-Control", "no-cache")
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return &ProbeOutcome{Class: ClassHardError, Message: "Connection failed: " + err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Classify on status alone; never read an error body.
		return p.classifyStatus(resp.StatusCode)
	}

	if !p.safeToRead(resp) {
		// The server ignored the Range request and gave no usable size
		// signal. Reading could hang on an open-ended live stream, so
		// skip the body entirely and assume the stream is fine.
		p.logger.Debug("probe skipped body read",
			slog.Int("status", resp.StatusCode),
			slog.String("content_type", resp.Header.Get("Content-Type")),
			slog.Int64("content_length", resp.ContentLength),
		)
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBodyBytes))
	if err != nil {
		return &ProbeOutcome{Class: ClassHardError, Message: "Connection failed: " + err.Error()}
	}

	return classifyBody(string(body))
}

// classifyStatus maps a non-success HTTP status to a hard-error outcome.
func (p *Prober) classifyStatus(status int) *ProbeOutcome {
	var msg string
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		msg = fmt.Sprintf("Access Denied (%d): %s", status, http.StatusText(status))
	case status == http.StatusNotFound:
		msg = "Stream Not Found"
	default:
		msg = fmt.Sprintf("HTTP Error %d: %s", status, http.StatusText(status))
	}
	return &ProbeOutcome{Class: ClassHardError, Message: msg}
}

// safeToRead decides whether consuming the response body cannot hang.
// Reading is safe only if the server honored the Range request (206), the
// payload is declared HTML (error pages are small), or the declared length
// is below the threshold.
func (p *Prober) safeToRead(resp *http.Response) bool {
	if resp.StatusCode == http.StatusPartialContent {
		return true
	}
	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return true
	}
	return resp.ContentLength >= 0 && resp.ContentLength < p.maxBodyBytes
}

// classifyBody inspects a safely-read body for HTML error pages.
func classifyBody(body string) *ProbeOutcome {
	snippet := strings.TrimSpace(body)
	if len(snippet) > snippetLen {
		snippet = snippet[:snippetLen]
	}
	snippet = strings.ToLower(snippet)

	if !looksLikeHTML(snippet) {
		return nil
	}
	// A playlist served with an HTML content type is still a playlist.
	if strings.Contains(body, playlistMarker) {
		return nil
	}

	for _, kw := range []string{"forbidden", "unauthorized", "access denied", "error"} {
		if strings.Contains(snippet, kw) {
			return &ProbeOutcome{Class: ClassSoftError, Message: "Stream Access Denied (Auth Failed)"}
		}
	}
	return &ProbeOutcome{Class: ClassSoftError, Message: "Invalid Stream Format (HTML response)"}
}

// looksLikeHTML reports whether a lowercased, trimmed snippet starts with an
// HTML document marker.
func looksLikeHTML(snippet string) bool {
	for _, prefix := range []string{"<!doctype", "<html", "<head", "<body"} {
		if strings.HasPrefix(snippet, prefix) {
			return true
		}
	}
	return false
}
