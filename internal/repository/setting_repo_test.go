package repository

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mfairchild/tvdeckd/internal/models"
)

func setupSettingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.Setting{})
	require.NoError(t, err)

	return db
}

func TestSettingRepo_SetAndGet(t *testing.T) {
	db := setupSettingTestDB(t)
	repo := NewSettingRepository(db, models.DefaultRefreshPolicy())
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "theme", "dark"))

	val, ok, err := repo.Get(ctx, "theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", val)

	_, ok, err = repo.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSettingRepo_SetUpserts(t *testing.T) {
	db := setupSettingTestDB(t)
	repo := NewSettingRepository(db, models.DefaultRefreshPolicy())
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "theme", "dark"))
	require.NoError(t, repo.Set(ctx, "theme", "light"))

	val, ok, err := repo.Get(ctx, "theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "light", val)

	var count int64
	require.NoError(t, db.Model(&models.Setting{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSettingRepo_LoadSplitsRefreshAndPreferences(t *testing.T) {
	db := setupSettingTestDB(t)
	repo := NewSettingRepository(db, models.DefaultRefreshPolicy())
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, models.SettingKeyEpgRefreshHours, "12"))
	require.NoError(t, repo.Set(ctx, models.SettingKeyMaxConcurrent, "3"))
	require.NoError(t, repo.Set(ctx, "theme", "dark"))
	require.NoError(t, repo.Set(ctx, "sort_order", "az"))

	settings, err := repo.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, 12*time.Hour, settings.Refresh.EpgRefresh)
	assert.Equal(t, models.DefaultVodRefresh, settings.Refresh.VodRefresh, "unset keys keep defaults")
	assert.Equal(t, 3, settings.Refresh.MaxConcurrent)
	assert.Equal(t, map[string]string{"theme": "dark", "sort_order": "az"}, settings.Preferences)
}

func TestSettingRepo_LoadToleratesGarbageValues(t *testing.T) {
	db := setupSettingTestDB(t)
	repo := NewSettingRepository(db, models.DefaultRefreshPolicy())
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, models.SettingKeyEpgRefreshHours, "not-a-number"))
	require.NoError(t, repo.Set(ctx, models.SettingKeyMaxConcurrent, "-2"))

	settings, err := repo.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, models.DefaultEpgRefresh, settings.Refresh.EpgRefresh)
	assert.Equal(t, models.MaxConcurrentSyncs, settings.Refresh.MaxConcurrent)
}

func TestSettingRepo_LoadEmptyStoreYieldsDefaults(t *testing.T) {
	db := setupSettingTestDB(t)
	repo := NewSettingRepository(db, models.DefaultRefreshPolicy())

	settings, err := repo.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.DefaultRefreshPolicy(), settings.Refresh)
	assert.Empty(t, settings.Preferences)
}
