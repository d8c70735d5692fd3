// Package repository provides data access layers over GORM for tvdeckd's
// persisted models.
package repository

import (
	"context"

	"github.com/mfairchild/tvdeckd/internal/models"
)

// SourceRepository provides access to configured IPTV sources.
type SourceRepository interface {
	Create(ctx context.Context, source *models.Source) error
	Update(ctx context.Context, source *models.Source) error
	Delete(ctx context.Context, id models.ULID) error
	GetByID(ctx context.Context, id models.ULID) (*models.Source, error)
	List(ctx context.Context) ([]*models.Source, error)
	ListEnabled(ctx context.Context) ([]*models.Source, error)
	MarkEpgSynced(ctx context.Context, id models.ULID) error
	MarkVodSynced(ctx context.Context, id models.ULID) error
	MarkFailed(ctx context.Context, id models.ULID, syncErr error) error
}

// SettingRepository provides access to the key-value settings store.
type SettingRepository interface {
	Load(ctx context.Context) (*models.Settings, error)
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}
