package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mfairchild/tvdeckd/internal/models"
)

// sourceRepo implements SourceRepository using GORM.
type sourceRepo struct {
	db *gorm.DB
}

// NewSourceRepository creates a new SourceRepository.
func NewSourceRepository(db *gorm.DB) *sourceRepo {
	return &sourceRepo{db: db}
}

// Create creates a new source.
func (r *sourceRepo) Create(ctx context.Context, source *models.Source) error {
	if err := r.db.WithContext(ctx).Create(source).Error; err != nil {
		return fmt.Errorf("creating source: %w", err)
	}
	return nil
}

// Update saves changes to an existing source.
func (r *sourceRepo) Update(ctx context.Context, source *models.Source) error {
	if err := r.db.WithContext(ctx).Save(source).Error; err != nil {
		return fmt.Errorf("updating source: %w", err)
	}
	return nil
}

// Delete removes a source by ID.
func (r *sourceRepo) Delete(ctx context.Context, id models.ULID) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Source{}).Error; err != nil {
		return fmt.Errorf("deleting source: %w", err)
	}
	return nil
}

// GetByID retrieves a source by ID. Returns nil if not found.
func (r *sourceRepo) GetByID(ctx context.Context, id models.ULID) (*models.Source, error) {
	var source models.Source
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&source).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting source by ID: %w", err)
	}
	return &source, nil
}

// List retrieves all sources ordered by name.
func (r *sourceRepo) List(ctx context.Context) ([]*models.Source, error) {
	var sources []*models.Source
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&sources).Error; err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	return sources, nil
}

// ListEnabled retrieves all enabled sources ordered by name.
func (r *sourceRepo) ListEnabled(ctx context.Context) ([]*models.Source, error) {
	var sources []*models.Source
	if err := r.db.WithContext(ctx).
		Where("enabled = ?", true).
		Order("name ASC").
		Find(&sources).Error; err != nil {
		return nil, fmt.Errorf("listing enabled sources: %w", err)
	}
	return sources, nil
}

// MarkEpgSynced records a successful channel/EPG sync and clears the last error.
func (r *sourceRepo) MarkEpgSynced(ctx context.Context, id models.ULID) error {
	now := time.Now().UTC()
	if err := r.db.WithContext(ctx).
		Model(&models.Source{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_epg_sync_at": &now,
			"last_error":       "",
		}).Error; err != nil {
		return fmt.Errorf("marking source EPG synced: %w", err)
	}
	return nil
}

// MarkVodSynced records a successful VOD catalog sync and clears the last error.
func (r *sourceRepo) MarkVodSynced(ctx context.Context, id models.ULID) error {
	now := time.Now().UTC()
	if err := r.db.WithContext(ctx).
		Model(&models.Source{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_vod_sync_at": &now,
			"last_error":       "",
		}).Error; err != nil {
		return fmt.Errorf("marking source VOD synced: %w", err)
	}
	return nil
}

// MarkFailed records the error message from a failed sync.
func (r *sourceRepo) MarkFailed(ctx context.Context, id models.ULID, syncErr error) error {
	msg := ""
	if syncErr != nil {
		msg = syncErr.Error()
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Source{}).
		Where("id = ?", id).
		Update("last_error", msg).Error; err != nil {
		return fmt.Errorf("marking source failed: %w", err)
	}
	return nil
}
