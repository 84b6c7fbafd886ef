package postgres_test

import (
	"context"
	"media-pipeline/internal/adapters/repository/postgres"
	"media-pipeline/internal/core/domain"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPayload() domain.CommitPayload {
	caption := "first clip"
	return domain.CommitPayload{
		AssetID:    uuid.New(),
		OwnerID:    uuid.New(),
		Username:   "alice",
		Caption:    &caption,
		MediaURL:   "https://cdn.test/videos/a.mp4",
		ObjectPath: "owner/a.mp4",
	}
}

func TestSqlAssetRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	dbConnection, cleanup, truncate := postgres.NewTestDB(t)
	defer cleanup()
	ctx := context.Background()

	repo := postgres.NewSqlAssetRepository(dbConnection)

	t.Run("insert then find", func(t *testing.T) {
		// Arrange
		truncate()
		payload := newPayload()

		// Act
		err := repo.Insert(ctx, payload)

		// Assert
		require.NoError(t, err)
		asset, err := repo.FindByID(ctx, payload.AssetID)
		require.NoError(t, err)
		assert.Equal(t, payload.OwnerID, asset.OwnerID)
		assert.Equal(t, "alice", asset.Username)
		require.NotNil(t, asset.Caption)
		assert.Equal(t, "first clip", *asset.Caption)
		assert.Nil(t, asset.ThumbnailURL)
		assert.Equal(t, payload.MediaURL, asset.MediaURL)
		assert.Zero(t, asset.Likes)
		assert.Zero(t, asset.Views)
		assert.False(t, asset.CreatedAt.IsZero())
	})

	t.Run("replayed insert reports existing asset", func(t *testing.T) {
		truncate()
		payload := newPayload()
		require.NoError(t, repo.Insert(ctx, payload))

		err := repo.Insert(ctx, payload)

		require.ErrorIs(t, err, domain.ErrAssetExists)
		var count int
		require.NoError(t, dbConnection.QueryRow(`SELECT COUNT(*) FROM media_assets`).Scan(&count))
		assert.Equal(t, 1, count)
	})

	t.Run("thumbnail without caption", func(t *testing.T) {
		truncate()
		payload := newPayload()
		thumb := "https://cdn.test/thumbnails/t.jpg"
		payload.Caption = nil
		payload.ThumbnailURL = &thumb
		require.NoError(t, repo.Insert(ctx, payload))

		asset, err := repo.FindByID(ctx, payload.AssetID)

		require.NoError(t, err)
		assert.Nil(t, asset.Caption)
		require.NotNil(t, asset.ThumbnailURL)
		assert.Equal(t, thumb, *asset.ThumbnailURL)
	})

	t.Run("not found", func(t *testing.T) {
		truncate()

		asset, err := repo.FindByID(ctx, uuid.New())

		require.ErrorIs(t, err, domain.ErrAssetNotFound)
		assert.Nil(t, asset)
	})
}

func TestSqlProfileRepository_FindUsername(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	dbConnection, cleanup, truncate := postgres.NewTestDB(t)
	defer cleanup()
	ctx := context.Background()

	repo := postgres.NewSqlProfileRepository(dbConnection)

	t.Run("nominal", func(t *testing.T) {
		truncate()
		id := uuid.New()
		_, err := dbConnection.Exec(`INSERT INTO profiles (id, username) VALUES ($1, $2)`, id, "bob")
		require.NoError(t, err)

		name, err := repo.FindUsername(ctx, id)

		require.NoError(t, err)
		assert.Equal(t, "bob", name)
	})

	t.Run("missing profile", func(t *testing.T) {
		truncate()

		_, err := repo.FindUsername(ctx, uuid.New())

		require.ErrorIs(t, err, domain.ErrProfileNotFound)
	})
}
