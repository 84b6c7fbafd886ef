package postgres

import (
	"context"
	"database/sql"
	"errors"
	"media-pipeline/internal/core/domain"
	"media-pipeline/internal/core/port"

	"github.com/google/uuid"
)

type sqlProfileRepository struct {
	db SQLQuerier
}

// NewSqlProfileRepository creates sqlProfileRepository that implements port.ProfileRepository
func NewSqlProfileRepository(db SQLQuerier) port.ProfileRepository {
	return &sqlProfileRepository{db: db}
}

// FindUsername returns the username of the owner's profile
func (s *sqlProfileRepository) FindUsername(ctx context.Context, ownerID uuid.UUID) (string, error) {
	var username string
	err := s.db.QueryRowContext(ctx, `SELECT username FROM profiles WHERE id = $1`, ownerID).Scan(&username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrProfileNotFound
		}
		return "", err
	}
	return username, nil
}
