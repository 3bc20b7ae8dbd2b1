// Package model defines the core domain types for the game-night service.
package model

import "time"

// Event is one hostable, joinable game night.
type Event struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	HostName     string    `json:"host_name"`
	HostEmail    string    `json:"host_email"`
	Location     string    `json:"location"`
	ScheduledAt  time.Time `json:"scheduled_at"`
	TotalPlayers int       `json:"total_players"`
	Notes        *string   `json:"notes"`
	GameType     string    `json:"game_type"`
	ImageURL     string    `json:"image_url"`
	CreatedAt    time.Time `json:"created_at"`
}

// CurrentPlayers returns the occupied seats given the number of attendees.
// The host always occupies one seat.
func (e *Event) CurrentPlayers(attendees int) int {
	return attendees + 1
}

// IsFull reports whether no seat is left for another attendee.
func (e *Event) IsFull(attendees int) bool {
	return e.CurrentPlayers(attendees) >= e.TotalPlayers
}

// Attendee is a join record referencing an Event.
type Attendee struct {
	ID       string    `json:"id"`
	EventID  string    `json:"event_id"`
	Email    string    `json:"email"`
	JoinedAt time.Time `json:"joined_at"`
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Title        string    `json:"title" validate:"required"`
	HostName     string    `json:"host_name" validate:"required"`
	HostEmail    string    `json:"host_email" validate:"required,email"`
	Location     string    `json:"location" validate:"required"`
	ScheduledAt  time.Time `json:"scheduled_at" validate:"required"`
	TotalPlayers int       `json:"total_players" validate:"min=1,max=15"`
	Notes        *string   `json:"notes"`
	GameType     string    `json:"game_type"`
	ImageURL     string    `json:"image_url"`
}

// JoinRequest is the payload for joining an event.
type JoinRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}
