package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// SyncTrigger requests a sync run. Implementations return false when a run
// is already in progress.
type SyncTrigger interface {
	TriggerSync() bool
}

// SyncHandler exposes manual sync triggering.
type SyncHandler struct {
	trigger SyncTrigger
}

// NewSyncHandler creates a sync handler.
func NewSyncHandler(trigger SyncTrigger) *SyncHandler {
	return &SyncHandler{trigger: trigger}
}

// SyncResponse reports whether a new run was started.
type SyncResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// SyncOutput is the output for the sync trigger endpoint.
type SyncOutput struct {
	Body SyncResponse
}

// Register registers the sync routes with the API.
func (h *SyncHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "triggerSync",
		Method:        "POST",
		Path:          "/api/sync",
		Summary:       "Trigger a sync run",
		Description:   "Starts a catalog sync run unless one is already in progress",
		Tags:          []string{"Sync"},
		DefaultStatus: http.StatusAccepted,
	}, h.TriggerSync)
}

// TriggerSync starts a sync run in the background.
func (h *SyncHandler) TriggerSync(ctx context.Context, _ *struct{}) (*SyncOutput, error) {
	started := h.trigger.TriggerSync()
	msg := "sync started"
	if !started {
		msg = "sync already in progress"
	}
	return &SyncOutput{Body: SyncResponse{Started: started, Message: msg}}, nil
}
