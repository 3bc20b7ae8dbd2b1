// Package service implements validation and orchestration between the REST
// handlers and the event repository.
package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Shivanand-hulikatti/tabletop/internal/attendance"
	"github.com/Shivanand-hulikatti/tabletop/internal/catalog"
	"github.com/Shivanand-hulikatti/tabletop/internal/model"
	"github.com/Shivanand-hulikatti/tabletop/internal/repository"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError carries per-field messages keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return fmt.Sprintf("%s (%s)", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Repository is the event store the service works against.
type Repository interface {
	ListEvents(ctx context.Context) ([]model.Event, error)
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error)
	ListAttendance(ctx context.Context) ([]model.Attendee, error)
	ListAttendees(ctx context.Context, eventID string) ([]model.Attendee, error)
	JoinEvent(ctx context.Context, eventID, email string) (*model.Attendee, error)
}

// EventService orchestrates event operations for REST clients.
type EventService struct {
	repo     Repository
	validate *validator.Validate
}

// NewEventService constructs an EventService.
func NewEventService(repo Repository) *EventService {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &EventService{repo: repo, validate: v}
}

// CreateEvent normalizes and validates the request, then stores it. A
// missing game type or image is filled from the catalog.
func (s *EventService) CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.HostName = strings.TrimSpace(req.HostName)
	req.HostEmail = strings.TrimSpace(req.HostEmail)
	req.Location = strings.TrimSpace(req.Location)
	if req.Notes != nil {
		notes := strings.TrimSpace(*req.Notes)
		if notes == "" {
			req.Notes = nil
		} else {
			req.Notes = &notes
		}
	}
	if err := s.check(req); err != nil {
		return nil, err
	}

	game := catalog.Lookup(req.Title)
	if req.GameType == "" {
		req.GameType = game.Type
	}
	if req.ImageURL == "" {
		req.ImageURL = game.Image
	}
	return s.repo.CreateEvent(ctx, req)
}

// ListEvents returns all events ordered by schedule.
func (s *EventService) ListEvents(ctx context.Context) ([]model.Event, error) {
	return s.repo.ListEvents(ctx)
}

// GetEvent returns a single event by ID.
func (s *EventService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	if id == "" {
		return nil, repository.ErrNotFound
	}
	event, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// Attendance returns the attendee count of every event with at least one.
func (s *EventService) Attendance(ctx context.Context) (map[string]int, error) {
	rows, err := s.repo.ListAttendance(ctx)
	if err != nil {
		return nil, err
	}
	return attendance.Aggregate(rows), nil
}

// ListAttendees returns the attendees of one event.
func (s *EventService) ListAttendees(ctx context.Context, eventID string) ([]model.Attendee, error) {
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.ListAttendees(ctx, eventID)
}

// Join records an attendee. Capacity is not checked here; see
// repository.PostgresRepository.JoinEvent.
func (s *EventService) Join(ctx context.Context, eventID string, req model.JoinRequest) (*model.Attendee, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.check(req); err != nil {
		return nil, err
	}
	if eventID == "" {
		return nil, repository.ErrNotFound
	}
	return s.repo.JoinEvent(ctx, eventID, req.Email)
}

func (s *EventService) check(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = message(fe)
	}
	return &ValidationError{Fields: fields}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "invalid email format"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return "invalid value"
	}
}
