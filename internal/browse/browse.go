// Package browse holds the event list a visitor sees, the attendee counts
// derived for it, and the detail view used to join one event.
package browse

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Shivanand-hulikatti/tabletop/internal/attendance"
	"github.com/Shivanand-hulikatti/tabletop/internal/model"
	"go.uber.org/zap"
)

// Inline messages and labels.
const (
	JoinFailedMessage = "Something went wrong. Please try again."
	LabelJoin         = "Join Game"
	LabelFull         = "Game Full"
)

var (
	ErrUnknownEvent   = errors.New("event not in list")
	ErrNoSelection    = errors.New("no event selected")
	ErrEventFull      = errors.New("event is full")
	ErrJoinFormClosed = errors.New("join form is not open")
	ErrEmailRequired  = errors.New("email is required")
	ErrJoinInProgress = errors.New("join already in progress")
	ErrLoadInProgress = errors.New("event list is reloading")
)

// Store is the subset of the event repository the view reads and writes.
type Store interface {
	ListEvents(ctx context.Context) ([]model.Event, error)
	ListAttendance(ctx context.Context) ([]model.Attendee, error)
	JoinEvent(ctx context.Context, eventID, email string) (*model.Attendee, error)
}

// RenderState says which of the three list renderings applies.
type RenderState string

const (
	Loading   RenderState = "loading"
	Empty     RenderState = "empty"
	Populated RenderState = "populated"
)

// Listing is one event card.
type Listing struct {
	model.Event
	AttendeeCount  int    `json:"attendee_count"`
	CurrentPlayers int    `json:"current_players"`
	Full           bool   `json:"full"`
	When           string `json:"when"`
}

type selection struct {
	eventID  string
	formOpen bool
	email    string
	joining  bool
	err      string
}

// View is one visitor's list of events plus an optional detail view.
// It is safe for concurrent use; the lock is not held during store calls.
//
// A reload and a join never overlap: a join committed while a reload is
// fetching could otherwise be counted by both Rebuild and Increment.
type View struct {
	mu       sync.Mutex
	store    Store
	log      *zap.Logger
	inflight int
	joins    int
	loaded   bool
	events   []model.Event
	counts   *attendance.Counts
	selected *selection

	// events prepended while a reload is in flight, oldest first
	prepended []model.Event
}

// New returns a view in the loading state. Call Load to populate it.
func New(store Store, log *zap.Logger) *View {
	return &View{
		store:  store,
		log:    log,
		counts: attendance.NewCounts(),
	}
}

// Load fetches the full event list and all attendance rows and rebuilds
// the counts. A failed fetch keeps whatever was shown before. It is refused
// with ErrJoinInProgress while a join is outstanding.
func (v *View) Load(ctx context.Context) error {
	v.mu.Lock()
	if v.joins > 0 {
		v.mu.Unlock()
		return ErrJoinInProgress
	}
	v.inflight++
	v.mu.Unlock()

	err := v.load(ctx)

	v.mu.Lock()
	v.inflight--
	v.loaded = true
	if v.inflight == 0 {
		v.prepended = nil
	}
	v.mu.Unlock()
	return err
}

func (v *View) load(ctx context.Context) error {
	events, err := v.store.ListEvents(ctx)
	if err != nil {
		v.log.Warn("event list fetch failed, keeping previous list", zap.Error(err))
		return fmt.Errorf("load events: %w", err)
	}

	rows, rowsErr := v.store.ListAttendance(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.events = v.keepPrepended(events)
	if rowsErr == nil {
		v.counts.Rebuild(rows)
	}
	if v.selected != nil && v.find(v.selected.eventID) == nil {
		v.selected = nil
	}

	if rowsErr != nil {
		v.log.Warn("attendance fetch failed, keeping previous counts", zap.Error(rowsErr))
		return fmt.Errorf("load attendance: %w", rowsErr)
	}
	return nil
}

// State reports loading, empty or populated.
func (v *View) State() RenderState {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch {
	case v.inflight > 0 || !v.loaded:
		return Loading
	case len(v.events) == 0:
		return Empty
	default:
		return Populated
	}
}

// Listings returns the event cards in display order.
func (v *View) Listings() []Listing {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Listing, 0, len(v.events))
	for _, e := range v.events {
		out = append(out, v.listing(e))
	}
	return out
}

// Prepend puts a newly created event at the front of the list without
// re-fetching. An event prepended during a reload survives that reload
// even when its fetch started before the event existed.
func (v *View) Prepend(e model.Event) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.events = append([]model.Event{e}, v.events...)
	if v.inflight > 0 {
		v.prepended = append(v.prepended, e)
	}
}

// keepPrepended puts back, newest first, the events prepended during the
// reload that the fetched list does not contain yet.
func (v *View) keepPrepended(fetched []model.Event) []model.Event {
	if len(v.prepended) == 0 {
		return fetched
	}
	seen := make(map[string]bool, len(fetched))
	for _, e := range fetched {
		seen[e.ID] = true
	}
	var front []model.Event
	for i := len(v.prepended) - 1; i >= 0; i-- {
		if e := v.prepended[i]; !seen[e.ID] {
			front = append(front, e)
		}
	}
	return append(front, fetched...)
}

// Select opens the detail view for eventID. It is refused while the open
// detail view has a join outstanding.
func (v *View) Select(eventID string) (Detail, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.selected != nil && v.selected.joining {
		return Detail{}, ErrJoinInProgress
	}
	if v.find(eventID) == nil {
		return Detail{}, ErrUnknownEvent
	}
	v.selected = &selection{eventID: eventID}
	return v.detail(), nil
}

// CloseDetail closes the detail view. A join still in flight completes and
// is counted, but its outcome is no longer shown.
func (v *View) CloseDetail() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selected = nil
}

// Detail returns the open detail view, if any.
func (v *View) Detail() (Detail, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.selected == nil {
		return Detail{}, false
	}
	return v.detail(), true
}

// OpenJoinForm reveals the email form. It is refused when the event is
// full, matching the disabled join button.
func (v *View) OpenJoinForm() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	e, err := v.selectedEvent()
	if err != nil {
		return err
	}
	if e.IsFull(v.counts.Get(e.ID)) {
		return ErrEventFull
	}
	v.selected.formOpen = true
	return nil
}

// SetJoinEmail updates the email typed into the join form.
func (v *View) SetJoinEmail(email string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.selected == nil {
		return ErrNoSelection
	}
	if !v.selected.formOpen {
		return ErrJoinFormClosed
	}
	if v.selected.joining {
		return ErrJoinInProgress
	}
	v.selected.email = email
	return nil
}

// ConfirmJoin submits the join form. On success the local count for the
// event goes up by one and the detail view closes; on failure the form
// stays open with an inline error.
//
// Capacity is checked against the local count only, so another visitor's
// join since the last Load is not seen here.
func (v *View) ConfirmJoin(ctx context.Context) error {
	v.mu.Lock()
	e, err := v.selectedEvent()
	if err != nil {
		v.mu.Unlock()
		return err
	}
	sel := v.selected
	switch {
	case !sel.formOpen:
		err = ErrJoinFormClosed
	case sel.joining:
		err = ErrJoinInProgress
	case v.inflight > 0:
		err = ErrLoadInProgress
	case strings.TrimSpace(sel.email) == "":
		err = ErrEmailRequired
	case e.IsFull(v.counts.Get(e.ID)):
		err = ErrEventFull
	}
	if err != nil {
		v.mu.Unlock()
		return err
	}
	sel.joining = true
	v.joins++
	sel.err = ""
	email := strings.TrimSpace(sel.email)
	v.mu.Unlock()

	_, joinErr := v.store.JoinEvent(ctx, e.ID, email)

	v.mu.Lock()
	defer v.mu.Unlock()
	sel.joining = false
	v.joins--
	if joinErr != nil {
		sel.err = JoinFailedMessage
		v.log.Warn("join failed", zap.String("event_id", e.ID), zap.Error(joinErr))
		return fmt.Errorf("join event: %w", joinErr)
	}

	v.counts.Increment(e.ID)
	if v.selected == sel {
		v.selected = nil
	}
	return nil
}

func (v *View) find(id string) *model.Event {
	for i := range v.events {
		if v.events[i].ID == id {
			return &v.events[i]
		}
	}
	return nil
}

func (v *View) selectedEvent() (model.Event, error) {
	if v.selected == nil {
		return model.Event{}, ErrNoSelection
	}
	e := v.find(v.selected.eventID)
	if e == nil {
		return model.Event{}, ErrUnknownEvent
	}
	return *e, nil
}

func (v *View) listing(e model.Event) Listing {
	n := v.counts.Get(e.ID)
	return Listing{
		Event:          e,
		AttendeeCount:  n,
		CurrentPlayers: e.CurrentPlayers(n),
		Full:           e.IsFull(n),
		When:           e.ScheduledAt.Format(whenLayout),
	}
}
