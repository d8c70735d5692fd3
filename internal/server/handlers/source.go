package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/mfairchild/tvdeckd/internal/models"
	"github.com/mfairchild/tvdeckd/internal/repository"
)

// SourceHandler manages configured IPTV sources.
type SourceHandler struct {
	repo repository.SourceRepository
}

// NewSourceHandler creates a source handler.
func NewSourceHandler(repo repository.SourceRepository) *SourceHandler {
	return &SourceHandler{repo: repo}
}

// ListSourcesOutput is the output for the source list endpoint.
type ListSourcesOutput struct {
	Body struct {
		Sources []*models.Source `json:"sources"`
	}
}

// CreateSourceInput is the input for the source creation endpoint.
type CreateSourceInput struct {
	Body struct {
		Name      string            `json:"name" doc:"Unique display name"`
		Type      models.SourceType `json:"type" enum:"m3u,xtream,stalker"`
		URL       string            `json:"url" doc:"Playlist URL or portal base URL"`
		Username  string            `json:"username,omitempty"`
		Password  string            `json:"password,omitempty"`
		MAC       string            `json:"mac,omitempty" doc:"Device MAC for stalker portals"`
		UserAgent string            `json:"user_agent,omitempty"`
		Enabled   *bool             `json:"enabled,omitempty"`
	}
}

// CreateSourceOutput is the output for the source creation endpoint.
type CreateSourceOutput struct {
	Body *models.Source
}

// GetSourceInput identifies one source by ID.
type GetSourceInput struct {
	ID string `path:"id" doc:"Source ULID"`
}

// GetSourceOutput is the output for the single-source endpoint.
type GetSourceOutput struct {
	Body *models.Source
}

// Register registers the source routes with the API.
func (h *SourceHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listSources",
		Method:      "GET",
		Path:        "/api/sources",
		Summary:     "List sources",
		Tags:        []string{"Sources"},
	}, h.ListSources)

	huma.Register(api, huma.Operation{
		OperationID:   "createSource",
		Method:        "POST",
		Path:          "/api/sources",
		Summary:       "Create a source",
		Tags:          []string{"Sources"},
		DefaultStatus: 201,
	}, h.CreateSource)

	huma.Register(api, huma.Operation{
		OperationID: "getSource",
		Method:      "GET",
		Path:        "/api/sources/{id}",
		Summary:     "Get a source",
		Tags:        []string{"Sources"},
	}, h.GetSource)

	huma.Register(api, huma.Operation{
		OperationID:   "deleteSource",
		Method:        "DELETE",
		Path:          "/api/sources/{id}",
		Summary:       "Delete a source",
		Tags:          []string{"Sources"},
		DefaultStatus: 204,
	}, h.DeleteSource)
}

// ListSources returns all configured sources.
func (h *SourceHandler) ListSources(ctx context.Context, _ *struct{}) (*ListSourcesOutput, error) {
	sources, err := h.repo.List(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing sources", err)
	}
	out := &ListSourcesOutput{}
	out.Body.Sources = sources
	return out, nil
}

// CreateSource validates and persists a new source.
func (h *SourceHandler) CreateSource(ctx context.Context, input *CreateSourceInput) (*CreateSourceOutput, error) {
	source := &models.Source{
		Name:      input.Body.Name,
		Type:      input.Body.Type,
		URL:       input.Body.URL,
		Username:  input.Body.Username,
		Password:  input.Body.Password,
		MAC:       input.Body.MAC,
		UserAgent: input.Body.UserAgent,
		Enabled:   input.Body.Enabled,
	}

	if err := h.repo.Create(ctx, source); err != nil {
		if isValidationError(err) {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		return nil, huma.Error500InternalServerError("creating source", err)
	}
	return &CreateSourceOutput{Body: source}, nil
}

// GetSource returns one source by ID.
func (h *SourceHandler) GetSource(ctx context.Context, input *GetSourceInput) (*GetSourceOutput, error) {
	id, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid source id")
	}

	source, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return nil, huma.Error500InternalServerError("getting source", err)
	}
	if source == nil {
		return nil, huma.Error404NotFound("source not found")
	}
	return &GetSourceOutput{Body: source}, nil
}

// DeleteSource removes one source by ID.
func (h *SourceHandler) DeleteSource(ctx context.Context, input *GetSourceInput) (*struct{}, error) {
	id, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("invalid source id")
	}

	if err := h.repo.Delete(ctx, id); err != nil {
		return nil, huma.Error500InternalServerError("deleting source", err)
	}
	return &struct{}{}, nil
}

// isValidationError reports whether err is one of the model validation
// sentinels.
func isValidationError(err error) bool {
	return errors.Is(err, models.ErrNameRequired) ||
		errors.Is(err, models.ErrURLRequired) ||
		errors.Is(err, models.ErrInvalidURL) ||
		errors.Is(err, models.ErrInvalidSourceType) ||
		errors.Is(err, models.ErrXtreamCredentialsRequired) ||
		errors.Is(err, models.ErrStalkerMACRequired)
}
