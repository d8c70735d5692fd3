package handlers

import (
	"context"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mfairchild/tvdeckd/internal/stream"
)

// PlayHandler hands stream URLs to the acquisition pipeline.
type PlayHandler struct {
	acquirer *stream.Acquirer
	logger   *slog.Logger
}

// NewPlayHandler creates a play handler.
func NewPlayHandler(acquirer *stream.Acquirer, logger *slog.Logger) *PlayHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlayHandler{acquirer: acquirer, logger: logger}
}

// PlayInput is the input for the play endpoint.
type PlayInput struct {
	Body struct {
		URL       string `json:"url" doc:"Stream URL to play"`
		Live      bool   `json:"live" doc:"True for live channels, false for VOD"`
		UserAgent string `json:"user_agent,omitempty" doc:"User-Agent forwarded to the player"`
	}
}

// PlayResponse reports the outcome of an acquisition attempt.
type PlayResponse struct {
	URL     string `json:"url" doc:"The URL that actually loaded (may be a fallback)"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// PlayOutput is the output for the play endpoint.
type PlayOutput struct {
	Body PlayResponse
}

// Register registers the play route with the API.
func (h *PlayHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "playStream",
		Method:      "POST",
		Path:        "/api/play",
		Summary:     "Play a stream",
		Description: "Loads the URL into the player, probing in the background and trying extension fallbacks on failure",
		Tags:        []string{"Player"},
	}, h.Play)
}

// Play runs stream acquisition for the given URL.
func (h *PlayHandler) Play(ctx context.Context, input *PlayInput) (*PlayOutput, error) {
	if input.Body.URL == "" {
		return nil, huma.Error400BadRequest("url is required")
	}

	result := h.acquirer.Acquire(ctx, input.Body.URL, input.Body.Live, input.Body.UserAgent, func(msg string) {
		h.logger.Warn("stream access problem detected", slog.String("detail", msg))
	})

	resp := PlayResponse{URL: result.URL, Success: result.Success()}
	if result.Err != nil {
		resp.Error = result.Err.Error()
	}
	return &PlayOutput{Body: resp}, nil
}
