// Package wizard implements the three-step host form that collects and
// submits a new event.
//
// The workflow is a finite-state machine:
//
//	StepSchedule --Next--> StepDetails --Next--> StepLocation --Submit--> Submitting
//	Submitting --ok--> (event emitted, back to a fresh StepSchedule)
//	Submitting --error--> Failed --Submit--> Submitting
//
// Next is guarded by the current step's validity. Back never validates and
// cancels the workflow from the first step.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/tabletop/internal/catalog"
	"github.com/Shivanand-hulikatti/tabletop/internal/model"
	"github.com/Shivanand-hulikatti/tabletop/internal/repository"
)

// SubmitFailedMessage is shown when the event could not be stored.
const SubmitFailedMessage = "Failed to create event. Please try again."

// DefaultTime is used when a date is picked before any time.
const DefaultTime = "18:30"

var (
	// ErrSubmitting is returned while a submission is outstanding.
	ErrSubmitting = errors.New("submission already in progress")
	// ErrNotFinalStep is returned by Submit before the last step.
	ErrNotFinalStep = errors.New("not on the final step")
	// ErrUnknownField is returned by SetField for an unrecognised name.
	ErrUnknownField = errors.New("unknown field")
)

// Creator stores a new event.
type Creator interface {
	CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error)
}

// Draft holds the not-yet-submitted field values. ScheduledAt combines the
// date and time sub-fields as "YYYY-MM-DDTHH:MM".
type Draft struct {
	ScheduledAt  string `json:"scheduled_at"`
	HostName     string `json:"host_name"`
	HostEmail    string `json:"host_email"`
	GameName     string `json:"game_name"`
	TotalPlayers string `json:"total_players"`
	Location     string `json:"location"`
	Notes        string `json:"notes"`
}

// Date returns the date half of ScheduledAt.
func (d Draft) Date() string {
	date, _, _ := strings.Cut(d.ScheduledAt, "T")
	return date
}

// Time returns the time half of ScheduledAt.
func (d Draft) Time() string {
	_, t, _ := strings.Cut(d.ScheduledAt, "T")
	return t
}

func combine(date, t string) string {
	if date == "" && t == "" {
		return ""
	}
	return date + "T" + t
}

// Workflow is one host's pass through the form. It is safe for concurrent
// use; the lock is not held while the event is being stored.
type Workflow struct {
	mu      sync.Mutex
	creator Creator
	now     func() time.Time

	state        State
	draft        Draft
	emailTouched bool
	validation   ValidationErrors
	lastErr      string
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithClock overrides the clock used to default the date.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

// New returns a workflow on its first step.
func New(creator Creator, opts ...Option) *Workflow {
	w := &Workflow{
		creator: creator,
		now:     time.Now,
		state:   StepSchedule,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// SetDate changes the date half, keeping any chosen time.
func (w *Workflow) SetDate(date string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == Submitting {
		return ErrSubmitting
	}
	t := w.draft.Time()
	if t == "" {
		t = DefaultTime
	}
	w.draft.ScheduledAt = combine(strings.TrimSpace(date), t)
	return nil
}

// SetTime changes the time half, keeping any chosen date and defaulting to
// today.
func (w *Workflow) SetTime(t string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == Submitting {
		return ErrSubmitting
	}
	date := w.draft.Date()
	if date == "" {
		date = w.now().Format("2006-01-02")
	}
	w.draft.ScheduledAt = combine(date, strings.TrimSpace(t))
	return nil
}

// SetField changes one draft field by name.
func (w *Workflow) SetField(name, value string) error {
	switch name {
	case FieldDate:
		return w.SetDate(value)
	case FieldTime:
		return w.SetTime(value)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == Submitting {
		return ErrSubmitting
	}
	switch name {
	case FieldHostName:
		w.draft.HostName = value
	case FieldHostEmail:
		w.draft.HostEmail = value
	case FieldGameName:
		w.draft.GameName = value
	case FieldTotalPlayers:
		w.draft.TotalPlayers = value
	case FieldLocation:
		w.draft.Location = value
	case FieldNotes:
		w.draft.Notes = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

// Next advances one step when the current step is valid. On failure the
// cursor does not move and the returned ValidationErrors describe why.
func (w *Workflow) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.state {
	case StepSchedule, StepDetails:
	case Submitting:
		return ErrSubmitting
	default:
		return ErrNotFinalStep
	}

	if w.state == StepDetails {
		w.emailTouched = true
	}
	if errs := w.draft.validate(w.state); len(errs) > 0 {
		w.validation = errs
		return errs
	}
	w.validation = nil
	w.state++
	return nil
}

// Back moves one step back without validating. From the first step it
// resets the workflow and reports cancelled.
func (w *Workflow) Back() (cancelled bool, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.validation = nil
	switch w.state {
	case StepSchedule:
		w.reset()
		return true, nil
	case StepDetails:
		w.state = StepSchedule
	case StepLocation, Failed:
		w.lastErr = ""
		w.state = StepDetails
	case Submitting:
		return false, ErrSubmitting
	}
	return false, nil
}

// Submit stores the event built from the draft. It is accepted only on the
// final step, only when the draft is valid and only while no other
// submission is outstanding. On success the workflow resets and the stored
// event is returned; on failure it moves to Failed keeping the draft.
func (w *Workflow) Submit(ctx context.Context) (*model.Event, error) {
	w.mu.Lock()
	switch w.state {
	case StepLocation, Failed:
	case Submitting:
		w.mu.Unlock()
		return nil, ErrSubmitting
	default:
		w.mu.Unlock()
		return nil, ErrNotFinalStep
	}
	if errs := w.draft.validateAll(); len(errs) > 0 {
		w.validation = errs
		w.mu.Unlock()
		return nil, errs
	}
	req := w.draft.request()
	w.state = Submitting
	w.validation = nil
	w.lastErr = ""
	w.mu.Unlock()

	event, err := w.creator.CreateEvent(ctx, req)
	if err == nil && event == nil {
		err = fmt.Errorf("%w: no row returned", repository.ErrInsert)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.state = Failed
		w.lastErr = SubmitFailedMessage
		return nil, fmt.Errorf("create event: %w", err)
	}
	w.reset()
	return event, nil
}

// Reset discards the draft and returns to the first step. It is refused
// while a submission is outstanding.
func (w *Workflow) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == Submitting {
		return ErrSubmitting
	}
	w.reset()
	return nil
}

func (w *Workflow) reset() {
	w.state = StepSchedule
	w.draft = Draft{}
	w.emailTouched = false
	w.validation = nil
	w.lastErr = ""
}

// request builds the creation request from a validated draft.
func (d Draft) request() model.CreateEventRequest {
	at, _ := d.scheduledAt()
	players, _ := d.players()
	title := strings.TrimSpace(d.GameName)
	game := catalog.Lookup(title)

	var notes *string
	if n := strings.TrimSpace(d.Notes); n != "" {
		notes = &n
	}

	return model.CreateEventRequest{
		Title:        title,
		HostName:     strings.TrimSpace(d.HostName),
		HostEmail:    strings.TrimSpace(d.HostEmail),
		Location:     strings.TrimSpace(d.Location),
		ScheduledAt:  at,
		TotalPlayers: players,
		Notes:        notes,
		GameType:     game.Type,
		ImageURL:     game.Image,
	}
}

// Snapshot is a read-only view of the workflow.
type Snapshot struct {
	State      State             `json:"state"`
	Step       int               `json:"step"`
	Draft      Draft             `json:"draft"`
	Date       string            `json:"date"`
	Time       string            `json:"time"`
	CanAdvance bool              `json:"can_advance"`
	CanSubmit  bool              `json:"can_submit"`
	Submitting bool              `json:"submitting"`
	EmailHint  string            `json:"email_hint,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// Snapshot returns the current view of the workflow.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := Snapshot{
		State:      w.state,
		Step:       w.state.Step(),
		Draft:      w.draft,
		Date:       w.draft.Date(),
		Time:       w.draft.Time(),
		Submitting: w.state == Submitting,
		Error:      w.lastErr,
	}
	switch w.state {
	case StepSchedule, StepDetails:
		s.CanAdvance = len(w.draft.required(w.state)) == 0
	case StepLocation, Failed:
		s.CanSubmit = len(w.draft.required(StepLocation)) == 0
	}
	if w.emailTouched && !blank(w.draft.HostEmail) && !ValidEmail(strings.TrimSpace(w.draft.HostEmail)) {
		s.EmailHint = msgInvalidEmail
	}
	if len(w.validation) > 0 {
		s.Errors = w.validation.Fields()
	}
	return s
}

// State returns the current state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}
