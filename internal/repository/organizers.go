package repository

import (
	"context"
	"database/sql"

	"evently/internal/database"
	"evently/internal/models"

	"github.com/google/uuid"
)

type OrganizerRepository struct {
	db *database.DB
}

func NewOrganizerRepository(db *database.DB) *OrganizerRepository {
	return &OrganizerRepository{db: db}
}

func (r *OrganizerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.OrganizerProfile, error) {
	organizer := &models.OrganizerProfile{}
	query := `SELECT id, user_id, display_name FROM organizer_profiles WHERE id = $1`

	err := r.db.Executor(ctx).QueryRowContext(ctx, query, id).Scan(
		&organizer.ID,
		&organizer.UserID,
		&organizer.DisplayName,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return organizer, err
}
