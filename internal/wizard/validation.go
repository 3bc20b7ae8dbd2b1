package wizard

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/tabletop/internal/catalog"
)

// Draft field names accepted by SetField.
const (
	FieldDate         = "date"
	FieldTime         = "time"
	FieldHostName     = "host_name"
	FieldHostEmail    = "host_email"
	FieldGameName     = "game_name"
	FieldTotalPlayers = "total_players"
	FieldLocation     = "location"
	FieldNotes        = "notes"
)

const (
	msgRequired     = "This field is required."
	msgInvalidEmail = "Please enter a valid email address."
	msgInvalidWhen  = "Please pick a valid date and time."
)

// scheduleLayout is the combined date and time value kept in the draft.
const scheduleLayout = "2006-01-02T15:04"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether email has the local@domain.tld shape.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidationError is helper text for one draft field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects the failures of one step.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, v := range e {
		parts = append(parts, v.Error())
	}
	return "invalid draft: " + strings.Join(parts, "; ")
}

// Fields maps field name to message.
func (e ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(e))
	for _, v := range e {
		out[v.Field] = v.Message
	}
	return out
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// required lists the fields of step that are empty.
func (d Draft) required(step State) ValidationErrors {
	var fields []struct{ name, value string }
	switch step {
	case StepSchedule:
		fields = []struct{ name, value string }{
			{FieldDate, d.Date()},
			{FieldTime, d.Time()},
		}
	case StepDetails:
		fields = []struct{ name, value string }{
			{FieldHostName, d.HostName},
			{FieldHostEmail, d.HostEmail},
			{FieldGameName, d.GameName},
			{FieldTotalPlayers, d.TotalPlayers},
		}
	default:
		fields = []struct{ name, value string }{
			{FieldLocation, d.Location},
		}
	}

	var errs ValidationErrors
	for _, f := range fields {
		if blank(f.value) {
			errs = append(errs, ValidationError{Field: f.name, Message: msgRequired})
		}
	}
	return errs
}

// validate runs the full guard for leaving step.
func (d Draft) validate(step State) ValidationErrors {
	errs := d.required(step)
	if len(errs) > 0 {
		return errs
	}

	switch step {
	case StepSchedule:
		if _, err := d.scheduledAt(); err != nil {
			errs = append(errs, ValidationError{Field: FieldTime, Message: msgInvalidWhen})
		}
	case StepDetails:
		if !ValidEmail(strings.TrimSpace(d.HostEmail)) {
			errs = append(errs, ValidationError{Field: FieldHostEmail, Message: msgInvalidEmail})
		}
		if _, err := d.players(); err != nil {
			errs = append(errs, ValidationError{
				Field:   FieldTotalPlayers,
				Message: fmt.Sprintf("Choose between 1 and %d players.", catalog.MaxPlayers),
			})
		}
	}
	return errs
}

// validateAll checks every step in order and stops at the first failure.
func (d Draft) validateAll() ValidationErrors {
	for _, step := range []State{StepSchedule, StepDetails, StepLocation} {
		if errs := d.validate(step); len(errs) > 0 {
			return errs
		}
	}
	return nil
}

func (d Draft) scheduledAt() (time.Time, error) {
	return time.ParseInLocation(scheduleLayout, d.ScheduledAt, time.UTC)
}

func (d Draft) players() (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(d.TotalPlayers))
	if err != nil {
		return 0, err
	}
	if n < 1 || n > catalog.MaxPlayers {
		return 0, fmt.Errorf("players out of range: %d", n)
	}
	return n, nil
}
