// Package repository implements the event store backing the service.
// It uses pgx directly (no ORM) against PostgreSQL.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/tabletop/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrFetch wraps every failed read.
var ErrFetch = errors.New("fetch failed")

// ErrInsert wraps every failed write, including a write that returned no row.
var ErrInsert = errors.New("insert failed")

// foreignKeyViolation is the PostgreSQL SQLSTATE for a dangling reference.
const foreignKeyViolation = "23503"

const eventColumns = `id, title, host_name, host_email, location, scheduled_at,
	total_players, notes, game_type, image_url, created_at`

// PostgresRepository handles persistence for events and attendees.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListEvents returns all events ordered by scheduled time ascending.
func (r *PostgresRepository) ListEvents(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM events
		 ORDER BY scheduled_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list events: %w", ErrFetch, err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan event: %w", ErrFetch, err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list events: %w", ErrFetch, err)
	}
	return events, nil
}

// GetEvent returns a single event or ErrNotFound.
func (r *PostgresRepository) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	row := r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`,
		id,
	)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: get event: %w", ErrFetch, err)
	}
	return e, nil
}

// CreateEvent inserts a new event and returns the stored row.
func (r *PostgresRepository) CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO events (id, title, host_name, host_email, location, scheduled_at,
		                     total_players, notes, game_type, image_url, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING `+eventColumns,
		uuid.New().String(), req.Title, req.HostName, req.HostEmail, req.Location, req.ScheduledAt,
		req.TotalPlayers, req.Notes, req.GameType, req.ImageURL, time.Now().UTC(),
	)
	e, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("%w: insert event: %w", ErrInsert, err)
	}
	return e, nil
}

// ListAttendance returns every attendee row across all events.
func (r *PostgresRepository) ListAttendance(ctx context.Context) ([]model.Attendee, error) {
	return r.queryAttendees(ctx,
		`SELECT id, event_id, email, joined_at FROM attendees ORDER BY joined_at ASC`,
	)
}

// ListAttendees returns the attendees of one event in join order.
func (r *PostgresRepository) ListAttendees(ctx context.Context, eventID string) ([]model.Attendee, error) {
	if _, err := uuid.Parse(eventID); err != nil {
		return nil, ErrNotFound
	}
	return r.queryAttendees(ctx,
		`SELECT id, event_id, email, joined_at
		 FROM attendees
		 WHERE event_id = $1
		 ORDER BY joined_at ASC`,
		eventID,
	)
}

// JoinEvent records an attendee for the event.
//
// Capacity is not checked here. Callers gate joins on their own attendee
// count, so two concurrent joins against a nearly full event can both
// succeed and overbook it.
func (r *PostgresRepository) JoinEvent(ctx context.Context, eventID, email string) (*model.Attendee, error) {
	if _, err := uuid.Parse(eventID); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInsert, ErrNotFound)
	}
	a := &model.Attendee{
		ID:       uuid.New().String(),
		EventID:  eventID,
		Email:    email,
		JoinedAt: time.Now().UTC(),
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO attendees (id, event_id, email, joined_at)
		 VALUES ($1, $2, $3, $4)`,
		a.ID, a.EventID, a.Email, a.JoinedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return nil, fmt.Errorf("%w: %w", ErrInsert, ErrNotFound)
		}
		return nil, fmt.Errorf("%w: insert attendee: %w", ErrInsert, err)
	}
	return a, nil
}

func (r *PostgresRepository) queryAttendees(ctx context.Context, query string, args ...any) ([]model.Attendee, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list attendees: %w", ErrFetch, err)
	}
	defer rows.Close()

	var attendees []model.Attendee
	for rows.Next() {
		var a model.Attendee
		if err := rows.Scan(&a.ID, &a.EventID, &a.Email, &a.JoinedAt); err != nil {
			return nil, fmt.Errorf("%w: scan attendee: %w", ErrFetch, err)
		}
		attendees = append(attendees, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list attendees: %w", ErrFetch, err)
	}
	return attendees, nil
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.Title, &e.HostName, &e.HostEmail, &e.Location, &e.ScheduledAt,
		&e.TotalPlayers, &e.Notes, &e.GameType, &e.ImageURL, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
