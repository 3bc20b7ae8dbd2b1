// Package session keeps one application shell per visitor: the active tab,
// the event list, the host form and the display preference.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/tabletop/internal/browse"
	"github.com/Shivanand-hulikatti/tabletop/internal/model"
	"github.com/Shivanand-hulikatti/tabletop/internal/preference"
	"github.com/Shivanand-hulikatti/tabletop/internal/wizard"
)

// Tab is a top-level navigation target.
type Tab string

const (
	TabFind     Tab = "find"
	TabHost     Tab = "host"
	TabSettings Tab = "settings"
)

var (
	ErrUnknownTab = errors.New("unknown tab")
	ErrNotHosting = errors.New("host form is not open")
)

// Store is everything a shell needs from the event repository.
type Store interface {
	browse.Store
	wizard.Creator
}

// Shell is one visitor's application state.
type Shell struct {
	ID       string
	ClientID string

	Events *browse.View
	Host   *wizard.Workflow

	mu       sync.Mutex
	tab      Tab
	hosting  bool
	darkMode *preference.DarkMode
	lastSeen time.Time
}

// SetTab switches the active tab.
func (s *Shell) SetTab(tab Tab) error {
	switch tab {
	case TabFind, TabHost, TabSettings:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTab, tab)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tab = tab
	return nil
}

// StartHosting opens a fresh host form on the host tab.
func (s *Shell) StartHosting() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hosting {
		if err := s.Host.Reset(); err != nil {
			return err
		}
	}
	s.tab = TabHost
	s.hosting = true
	return nil
}

// CancelHosting closes the host form and discards its draft.
func (s *Shell) CancelHosting() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Host.Reset(); err != nil {
		return err
	}
	s.hosting = false
	return nil
}

// HostBack steps the host form back; from its first step the form closes.
func (s *Shell) HostBack() error {
	if err := s.requireHosting(); err != nil {
		return err
	}
	cancelled, err := s.Host.Back()
	if err != nil {
		return err
	}
	if cancelled {
		s.mu.Lock()
		s.hosting = false
		s.mu.Unlock()
	}
	return nil
}

// HostNext advances the host form.
func (s *Shell) HostNext() error {
	if err := s.requireHosting(); err != nil {
		return err
	}
	return s.Host.Next()
}

// UpdateDraft applies field edits to the host form in a stable order, so
// a date and a time sent together combine the same way every time.
func (s *Shell) UpdateDraft(fields map[string]string) error {
	if err := s.requireHosting(); err != nil {
		return err
	}
	for name := range fields {
		if !knownField(name) {
			return fmt.Errorf("%w: %q", wizard.ErrUnknownField, name)
		}
	}
	for _, name := range draftOrder {
		value, ok := fields[name]
		if !ok {
			continue
		}
		if err := s.Host.SetField(name, value); err != nil {
			return err
		}
	}
	return nil
}

var draftOrder = []string{
	wizard.FieldDate,
	wizard.FieldTime,
	wizard.FieldHostName,
	wizard.FieldHostEmail,
	wizard.FieldGameName,
	wizard.FieldTotalPlayers,
	wizard.FieldLocation,
	wizard.FieldNotes,
}

func knownField(name string) bool {
	for _, f := range draftOrder {
		if f == name {
			return true
		}
	}
	return false
}

// SubmitHost submits the host form. The created event goes to the front of
// the event list, the form closes and the find tab opens.
func (s *Shell) SubmitHost(ctx context.Context) (*model.Event, error) {
	if err := s.requireHosting(); err != nil {
		return nil, err
	}
	event, err := s.Host.Submit(ctx)
	if err != nil {
		return nil, err
	}
	s.Events.Prepend(*event)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.hosting = false
	s.tab = TabFind
	return event, nil
}

// ToggleDarkMode flips and saves the display preference.
func (s *Shell) ToggleDarkMode(ctx context.Context) (bool, error) {
	return s.darkMode.Toggle(ctx)
}

// SetDarkMode saves an explicit display preference.
func (s *Shell) SetDarkMode(ctx context.Context, enabled bool) error {
	return s.darkMode.Set(ctx, enabled)
}

func (s *Shell) requireHosting() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hosting {
		return ErrNotHosting
	}
	return nil
}

func (s *Shell) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

func (s *Shell) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen.Before(cutoff)
}

// EventsView is the find tab's content.
type EventsView struct {
	State    browse.RenderState `json:"state"`
	Listings []browse.Listing   `json:"listings"`
}

// Snapshot is the whole shell as rendered for the visitor.
type Snapshot struct {
	ID       string           `json:"session_id"`
	ClientID string           `json:"client_id"`
	Tab      Tab              `json:"tab"`
	DarkMode bool             `json:"dark_mode"`
	Hosting  bool             `json:"hosting"`
	Events   EventsView       `json:"events"`
	Detail   *browse.Detail   `json:"detail,omitempty"`
	Host     *wizard.Snapshot `json:"host,omitempty"`
}

// Snapshot returns the current view of the shell.
func (s *Shell) Snapshot() Snapshot {
	s.mu.Lock()
	tab, hosting := s.tab, s.hosting
	s.mu.Unlock()

	snap := Snapshot{
		ID:       s.ID,
		ClientID: s.ClientID,
		Tab:      tab,
		DarkMode: s.darkMode.Enabled(),
		Hosting:  hosting,
		Events: EventsView{
			State:    s.Events.State(),
			Listings: s.Events.Listings(),
		},
	}
	if d, ok := s.Events.Detail(); ok {
		snap.Detail = &d
	}
	if hosting {
		h := s.Host.Snapshot()
		snap.Host = &h
	}
	return snap
}
