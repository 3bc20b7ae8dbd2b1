package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/tabletop/internal/model"
	"github.com/google/uuid"
)

// MemoryRepository keeps events and attendees in process memory. It backs
// local development and tests, and can be switched into a failing mode to
// exercise read and write errors.
type MemoryRepository struct {
	mu        sync.RWMutex
	events    []model.Event
	attendees []model.Attendee
	now       func() time.Time

	failReads  error
	failWrites error
}

// NewMemoryRepository constructs an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{now: func() time.Time { return time.Now().UTC() }}
}

// FailReads makes every read return err wrapped in ErrFetch. A nil err
// restores normal behaviour.
func (r *MemoryRepository) FailReads(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failReads = err
}

// FailWrites makes every write return err wrapped in ErrInsert. A nil err
// restores normal behaviour.
func (r *MemoryRepository) FailWrites(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failWrites = err
}

// ListEvents returns all events ordered by scheduled time ascending.
func (r *MemoryRepository) ListEvents(ctx context.Context) ([]model.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.readErr(ctx); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	events := make([]model.Event, len(r.events))
	copy(events, r.events)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].ScheduledAt.Before(events[j].ScheduledAt)
	})
	return events, nil
}

// GetEvent returns a single event or ErrNotFound.
func (r *MemoryRepository) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.readErr(ctx); err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	for i := range r.events {
		if r.events[i].ID == id {
			e := r.events[i]
			return &e, nil
		}
	}
	return nil, ErrNotFound
}

// CreateEvent stores a new event with a generated id and creation time.
func (r *MemoryRepository) CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.writeErr(ctx); err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	e := model.Event{
		ID:           uuid.New().String(),
		Title:        req.Title,
		HostName:     req.HostName,
		HostEmail:    req.HostEmail,
		Location:     req.Location,
		ScheduledAt:  req.ScheduledAt,
		TotalPlayers: req.TotalPlayers,
		Notes:        req.Notes,
		GameType:     req.GameType,
		ImageURL:     req.ImageURL,
		CreatedAt:    r.now(),
	}
	r.events = append(r.events, e)
	return &e, nil
}

// ListAttendance returns every attendee row across all events.
func (r *MemoryRepository) ListAttendance(ctx context.Context) ([]model.Attendee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.readErr(ctx); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	out := make([]model.Attendee, len(r.attendees))
	copy(out, r.attendees)
	return out, nil
}

// ListAttendees returns the attendees of one event in join order.
func (r *MemoryRepository) ListAttendees(ctx context.Context, eventID string) ([]model.Attendee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.readErr(ctx); err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	if !r.hasEvent(eventID) {
		return nil, ErrNotFound
	}
	var out []model.Attendee
	for _, a := range r.attendees {
		if a.EventID == eventID {
			out = append(out, a)
		}
	}
	return out, nil
}

// JoinEvent records an attendee. Like the Postgres store it does not check
// capacity.
func (r *MemoryRepository) JoinEvent(ctx context.Context, eventID, email string) (*model.Attendee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.writeErr(ctx); err != nil {
		return nil, fmt.Errorf("insert attendee: %w", err)
	}
	if !r.hasEvent(eventID) {
		return nil, fmt.Errorf("%w: %w", ErrInsert, ErrNotFound)
	}

	a := model.Attendee{
		ID:       uuid.New().String(),
		EventID:  eventID,
		Email:    email,
		JoinedAt: r.now(),
	}
	r.attendees = append(r.attendees, a)
	return &a, nil
}

func (r *MemoryRepository) hasEvent(id string) bool {
	for i := range r.events {
		if r.events[i].ID == id {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) readErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if r.failReads != nil {
		return fmt.Errorf("%w: %w", ErrFetch, r.failReads)
	}
	return nil
}

func (r *MemoryRepository) writeErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrInsert, err)
	}
	if r.failWrites != nil {
		return fmt.Errorf("%w: %w", ErrInsert, r.failWrites)
	}
	return nil
}
