// Package urlutil provides URL helpers shared by the probe and planner.
package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// URL scheme constants.
const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
)

// NormalizeBaseURL normalizes a provider base URL for consistent use:
//   - Adds http:// scheme if no scheme provided
//   - Removes trailing slash for clean path joining
//
// Examples:
//
//	"portal.example.com"       -> "http://portal.example.com"
//	"https://portal.example/"  -> "https://portal.example"
//	"portal.example:8080"      -> "http://portal.example:8080"
func NormalizeBaseURL(baseURL string) string {
	if baseURL == "" {
		return ""
	}

	baseURL = strings.TrimSpace(baseURL)

	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	return strings.TrimSuffix(baseURL, "/")
}

// IsRemoteURL checks if a URL is an HTTP(S) URL that can be probed.
// Returns false for relative paths, local file paths, and empty strings.
// Local media files are loaded directly by the player and never probed.
func IsRemoteURL(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}

// GetScheme returns the lowercase scheme of a URL or empty string if unknown.
func GetScheme(u string) string {
	parsed, err := url.Parse(u)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Scheme)
}

// SplitQuery splits a raw URL into its pre-query part and its raw query
// string. The query is returned verbatim: provider URLs frequently carry
// authentication tokens whose encoding must not be disturbed.
func SplitQuery(raw string) (base, query string) {
	base, query, _ = strings.Cut(raw, "?")
	return base, query
}

// ValidateURL checks if a URL is well-formed and uses http or https.
// Returns nil if valid, or an error describing the problem.
func ValidateURL(u string) error {
	if u == "" {
		return fmt.Errorf("URL is required")
	}

	parsed, err := url.Parse(u)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	switch strings.ToLower(parsed.Scheme) {
	case SchemeHTTP, SchemeHTTPS:
		return nil
	case "":
		return fmt.Errorf("URL must include a scheme (http:// or https://)")
	default:
		return fmt.Errorf("unsupported URL scheme: %s (supported: http, https)", parsed.Scheme)
	}
}
