package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mfairchild/tvdeckd/internal/models"
)

// settingRepo implements SettingRepository using GORM.
type settingRepo struct {
	db *gorm.DB
	// base is the refresh policy applied for keys the store does not hold.
	base models.RefreshPolicy
}

// NewSettingRepository creates a new SettingRepository. base supplies the
// refresh thresholds used when the store has no (or unusable) values.
func NewSettingRepository(db *gorm.DB, base models.RefreshPolicy) *settingRepo {
	return &settingRepo{db: db, base: base}
}

// Load reads every settings row and assembles the typed Settings blob.
func (r *settingRepo) Load(ctx context.Context) (*models.Settings, error) {
	var rows []models.Setting
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	return models.SettingsFromRows(rows, r.base), nil
}

// Get retrieves a single setting value. The bool reports presence.
func (r *settingRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var row models.Setting
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("getting setting %q: %w", key, err)
	}
	return row.Value, true, nil
}

// Set upserts a setting value.
func (r *settingRepo) Set(ctx context.Context, key, value string) error {
	row := models.Setting{Key: key, Value: value}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error; err != nil {
		return fmt.Errorf("setting %q: %w", key, err)
	}
	return nil
}
