package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"famtreebot/internal/models"
	"famtreebot/internal/repository"
)

type eventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *sql.DB) repository.EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	query := `
		INSERT INTO events (member_id, event_type, event_date, description, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	event.CreatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		event.MemberID,
		event.EventType,
		event.EventDate,
		event.Description,
		event.CreatedAt,
	).Scan(&event.ID, &event.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return event, nil
}

func (r *eventRepository) GetByMember(ctx context.Context, memberID int64) ([]*models.Event, error) {
	query := `
		SELECT id, member_id, event_type, event_date, description, created_at
		FROM events
		WHERE member_id = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event := &models.Event{}
		var description sql.NullString
		if err := rows.Scan(
			&event.ID,
			&event.MemberID,
			&event.EventType,
			&event.EventDate,
			&description,
			&event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		event.Description = description.String
		events = append(events, event)
	}

	return events, rows.Err()
}
