// Package handlers provides HTTP API handlers for tvdeckd.
package handlers

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mfairchild/tvdeckd/internal/catalog"
)

// StatusHandler exposes the current sync session state.
type StatusHandler struct {
	version   string
	startTime time.Time
	session   *catalog.Session
}

// NewStatusHandler creates a status handler.
func NewStatusHandler(version string, session *catalog.Session) *StatusHandler {
	return &StatusHandler{
		version:   version,
		startTime: time.Now(),
		session:   session,
	}
}

// StatusResponse is the body of the status endpoint.
type StatusResponse struct {
	Version       string                  `json:"version"`
	UptimeSeconds int64                   `json:"uptime_seconds"`
	Session       catalog.SessionSnapshot `json:"session"`
}

// StatusOutput is the output for the status endpoint.
type StatusOutput struct {
	Body StatusResponse
}

// Register registers the status route with the API.
func (h *StatusHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getStatus",
		Method:      "GET",
		Path:        "/api/status",
		Summary:     "Service status",
		Description: "Returns version, uptime and the current sync session state",
		Tags:        []string{"System"},
	}, h.GetStatus)
}

// GetStatus returns the current service status.
func (h *StatusHandler) GetStatus(ctx context.Context, _ *struct{}) (*StatusOutput, error) {
	return &StatusOutput{
		Body: StatusResponse{
			Version:       h.version,
			UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
			Session:       h.session.Snapshot(),
		},
	}, nil
}
