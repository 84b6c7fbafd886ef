package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"media-pipeline/internal/core/domain"
	"media-pipeline/internal/core/port"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type sqlAssetRepository struct {
	db SQLQuerier
}

// NewSqlAssetRepository creates sqlAssetRepository that implements port.AssetRepository
func NewSqlAssetRepository(db SQLQuerier) port.AssetRepository {
	return &sqlAssetRepository{
		db: db,
	}
}

// Insert writes the asset row. The id comes from the payload so a replayed insert hits the primary key.
func (s *sqlAssetRepository) Insert(ctx context.Context, payload domain.CommitPayload) error {
	query := `
		INSERT INTO media_assets (id, user_id, username, caption, video_url, thumbnail_url, object_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.ExecContext(ctx, query,
		payload.AssetID,
		payload.OwnerID,
		payload.Username,
		payload.Caption,
		payload.MediaURL,
		payload.ThumbnailURL,
		payload.ObjectPath,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("asset %s : %w", payload.AssetID, domain.ErrAssetExists)
		}
		return fmt.Errorf("error inserting media asset: %w", err)
	}
	return nil
}

// FindByID finds an asset by id
func (s *sqlAssetRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.MediaAsset, error) {
	query := `
		SELECT id, user_id, username, caption, video_url, thumbnail_url,
		       likes, comments, shares, views, created_at
		FROM media_assets
		WHERE id = $1`

	var assetDB dbMediaAsset
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&assetDB.ID,
		&assetDB.UserID,
		&assetDB.Username,
		&assetDB.Caption,
		&assetDB.VideoURL,
		&assetDB.ThumbnailURL,
		&assetDB.Likes,
		&assetDB.Comments,
		&assetDB.Shares,
		&assetDB.Views,
		&assetDB.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAssetNotFound
		}
		return nil, err
	}

	return assetDB.ToDomain(), nil
}

// dbMediaAsset represents a media asset in DB
type dbMediaAsset struct {
	ID           uuid.UUID      `db:"id"`
	UserID       uuid.UUID      `db:"user_id"`
	Username     string         `db:"username"`
	Caption      sql.NullString `db:"caption"`
	VideoURL     string         `db:"video_url"`
	ThumbnailURL sql.NullString `db:"thumbnail_url"`
	Likes        int64          `db:"likes"`
	Comments     int64          `db:"comments"`
	Shares       int64          `db:"shares"`
	Views        int64          `db:"views"`
	CreatedAt    time.Time      `db:"created_at"`
}

// ToDomain converts to domain.MediaAsset
func (a *dbMediaAsset) ToDomain() *domain.MediaAsset {
	asset := &domain.MediaAsset{
		ID:        a.ID,
		OwnerID:   a.UserID,
		Username:  a.Username,
		MediaURL:  a.VideoURL,
		Likes:     a.Likes,
		Comments:  a.Comments,
		Shares:    a.Shares,
		Views:     a.Views,
		CreatedAt: a.CreatedAt,
	}
	if a.Caption.Valid {
		caption := a.Caption.String
		asset.Caption = &caption
	}
	if a.ThumbnailURL.Valid {
		thumb := a.ThumbnailURL.String
		asset.ThumbnailURL = &thumb
	}
	return asset
}
