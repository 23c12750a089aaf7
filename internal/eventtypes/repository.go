package eventtypes

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openmeet/backend/internal/models"
)

// Repository handles event-type persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an event-type repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const eventTypeColumns = `id, user_id, team_id, title, slug, description, length, hidden, position,
	requires_confirmation, price, currency, recurring_event, metadata, created_at, updated_at`

// FindPersonalByUserID returns the user's non-team event types, hidden ones
// included, ordered by position descending with id ascending as the tie-break so
// the order is deterministic when positions collide.
func (r *Repository) FindPersonalByUserID(ctx context.Context, userID int64) ([]models.EventType, error) {
	const q = `SELECT ` + eventTypeColumns + `
		FROM event_types
		WHERE team_id IS NULL AND user_id = $1
		ORDER BY position DESC, id ASC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.EventType
	for rows.Next() {
		var et models.EventType
		if err := rows.Scan(
			&et.ID, &et.UserID, &et.TeamID, &et.Title, &et.Slug, &et.Description, &et.Length,
			&et.Hidden, &et.Position, &et.RequiresConfirmation, &et.Price, &et.Currency,
			&et.RecurringEvent, &et.Metadata, &et.CreatedAt, &et.UpdatedAt,
		); err != nil {
			return nil, err
		}
		list = append(list, et)
	}
	return list, rows.Err()
}
