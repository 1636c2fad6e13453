package repository

import (
	"context"
	"errors"
	"time"

	"crm-backend/internal/domain"
	"crm-backend/pkg/xerrors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CalendarRepository interface {
	CreateEvent(ctx context.Context, e *domain.CalendarEvent) (*domain.CalendarEvent, error)
	GetEvent(ctx context.Context, id, ownerID string) (*domain.CalendarEvent, error)
	ListEvents(ctx context.Context, ownerID string, from, to *time.Time) ([]*domain.CalendarEvent, error)
	// ListRelatedEvents returns the owner's events attached to a record,
	// soonest first.
	ListRelatedEvents(ctx context.Context, ownerID, relatedID string, eventType domain.CalendarEventType) ([]*domain.CalendarEvent, error)
	UpdateEvent(ctx context.Context, e *domain.CalendarEvent) error
	DeleteEvent(ctx context.Context, id, ownerID string) error
}

type pgCalendarRepo struct {
	db *pgxpool.Pool
}

func NewCalendarRepository(db *pgxpool.Pool) CalendarRepository {
	return &pgCalendarRepo{db: db}
}

func (p *pgCalendarRepo) CreateEvent(ctx context.Context, e *domain.CalendarEvent) (*domain.CalendarEvent, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}

	query := `
		INSERT INTO calendar_events
			(id, title, description, start_time, end_time, location, event_type, related_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	err := p.db.QueryRow(ctx, query,
		e.ID, e.Title, e.Description, e.StartTime, e.EndTime, e.Location,
		e.EventType, e.RelatedID, e.CreatedBy,
	).Scan(&e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (p *pgCalendarRepo) GetEvent(ctx context.Context, id, ownerID string) (*domain.CalendarEvent, error) {
	query := `
		SELECT id, title, COALESCE(description, ''), start_time, end_time,
		       COALESCE(location, ''), event_type, related_id, created_by, created_at
		FROM calendar_events
		WHERE id = $1 AND created_by = $2
	`
	var e domain.CalendarEvent
	err := p.db.QueryRow(ctx, query, id, ownerID).Scan(
		&e.ID, &e.Title, &e.Description, &e.StartTime, &e.EndTime,
		&e.Location, &e.EventType, &e.RelatedID, &e.CreatedBy, &e.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (p *pgCalendarRepo) ListEvents(ctx context.Context, ownerID string, from, to *time.Time) ([]*domain.CalendarEvent, error) {
	query := `
		SELECT id, title, COALESCE(description, ''), start_time, end_time,
		       COALESCE(location, ''), event_type, related_id, created_by, created_at
		FROM calendar_events
		WHERE created_by = $1
		  AND ($2::timestamptz IS NULL OR start_time >= $2)
		  AND ($3::timestamptz IS NULL OR start_time <= $3)
		ORDER BY start_time ASC
	`
	rows, err := p.db.Query(ctx, query, ownerID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.CalendarEvent
	for rows.Next() {
		var e domain.CalendarEvent
		if err := rows.Scan(
			&e.ID, &e.Title, &e.Description, &e.StartTime, &e.EndTime,
			&e.Location, &e.EventType, &e.RelatedID, &e.CreatedBy, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

func (p *pgCalendarRepo) ListRelatedEvents(ctx context.Context, ownerID, relatedID string, eventType domain.CalendarEventType) ([]*domain.CalendarEvent, error) {
	query := `
		SELECT id, title, COALESCE(description, ''), start_time, end_time,
		       COALESCE(location, ''), event_type, related_id, created_by, created_at
		FROM calendar_events
		WHERE created_by = $1 AND related_id = $2 AND event_type = $3
		ORDER BY start_time ASC
	`
	rows, err := p.db.Query(ctx, query, ownerID, relatedID, eventType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.CalendarEvent
	for rows.Next() {
		var e domain.CalendarEvent
		if err := rows.Scan(
			&e.ID, &e.Title, &e.Description, &e.StartTime, &e.EndTime,
			&e.Location, &e.EventType, &e.RelatedID, &e.CreatedBy, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

func (p *pgCalendarRepo) UpdateEvent(ctx context.Context, e *domain.CalendarEvent) error {
	query := `
		UPDATE calendar_events
		SET title = $3, description = $4, start_time = $5, end_time = $6,
		    location = $7, event_type = $8, related_id = $9
		WHERE id = $1 AND created_by = $2
	`
	ct, err := p.db.Exec(ctx, query,
		e.ID, e.CreatedBy, e.Title, e.Description, e.StartTime, e.EndTime,
		e.Location, e.EventType, e.RelatedID,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (p *pgCalendarRepo) DeleteEvent(ctx context.Context, id, ownerID string) error {
	ct, err := p.db.Exec(ctx, `DELETE FROM calendar_events WHERE id = $1 AND created_by = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}
