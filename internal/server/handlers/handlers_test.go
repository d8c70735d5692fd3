package handlers

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mfairchild/tvdeckd/internal/catalog"
	"github.com/mfairchild/tvdeckd/internal/models"
	"github.com/mfairchild/tvdeckd/internal/repository"
)

func setupHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Source{}))
	return db
}

func TestStatusHandler_GetStatus(t *testing.T) {
	session := catalog.NewSession()
	session.SetChannelSyncing(true)
	session.SetStatus("[1/3] provider: fetching guide")

	handler := NewStatusHandler("1.2.3", session)

	output, err := handler.GetStatus(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, "1.2.3", output.Body.Version)
	assert.True(t, output.Body.Session.ChannelSyncing)
	assert.Equal(t, "[1/3] provider: fetching guide", output.Body.Session.Status)
}

type fakeTrigger struct {
	accept bool
	calls  int
}

func (f *fakeTrigger) TriggerSync() bool {
	f.calls++
	return f.accept
}

func TestSyncHandler_TriggerSync(t *testing.T) {
	t.Run("starts", func(t *testing.T) {
		trigger := &fakeTrigger{accept: true}
		handler := NewSyncHandler(trigger)

		output, err := handler.TriggerSync(context.Background(), nil)
		require.NoError(t, err)
		assert.True(t, output.Body.Started)
		assert.Equal(t, 1, trigger.calls)
	})

	t.Run("already running", func(t *testing.T) {
		trigger := &fakeTrigger{accept: false}
		handler := NewSyncHandler(trigger)

		output, err := handler.TriggerSync(context.Background(), nil)
		require.NoError(t, err)
		assert.False(t, output.Body.Started)
		assert.Contains(t, output.Body.Message, "already in progress")
	})
}

func TestSourceHandler_CreateAndList(t *testing.T) {
	db := setupHandlerDB(t)
	handler := NewSourceHandler(repository.NewSourceRepository(db))
	ctx := context.Background()

	input := &CreateSourceInput{}
	input.Body.Name = "Provider A"
	input.Body.Type = models.SourceTypeXtream
	input.Body.URL = "http://provider.example/"
	input.Body.Username = "u"
	input.Body.Password = "p"

	created, err := handler.CreateSource(ctx, input)
	require.NoError(t, err)
	assert.False(t, created.Body.ID.IsZero())

	list, err := handler.ListSources(ctx, nil)
	require.NoError(t, err)
	require.Len(t, list.Body.Sources, 1)
	assert.Equal(t, "Provider A", list.Body.Sources[0].Name)
}

func TestSourceHandler_CreateRejectsInvalid(t *testing.T) {
	db := setupHandlerDB(t)
	handler := NewSourceHandler(repository.NewSourceRepository(db))

	input := &CreateSourceInput{}
	input.Body.Name = "Missing Creds"
	input.Body.Type = models.SourceTypeXtream
	input.Body.URL = "http://provider.example/"

	_, err := handler.CreateSource(context.Background(), input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), models.ErrXtreamCredentialsRequired.Error())
}

func TestSourceHandler_GetAndDelete(t *testing.T) {
	db := setupHandlerDB(t)
	handler := NewSourceHandler(repository.NewSourceRepository(db))
	ctx := context.Background()

	input := &CreateSourceInput{}
	input.Body.Name = "Temp"
	input.Body.Type = models.SourceTypeM3U
	input.Body.URL = "http://provider.example/list.m3u"

	created, err := handler.CreateSource(ctx, input)
	require.NoError(t, err)
	id := created.Body.ID.String()

	got, err := handler.GetSource(ctx, &GetSourceInput{ID: id})
	require.NoError(t, err)
	assert.Equal(t, "Temp", got.Body.Name)

	_, err = handler.DeleteSource(ctx, &GetSourceInput{ID: id})
	require.NoError(t, err)

	_, err = handler.GetSource(ctx, &GetSourceInput{ID: id})
	require.Error(t, err)

	_, err = handler.GetSource(ctx, &GetSourceInput{ID: "not-a-ulid"})
	require.Error(t, err)
}
