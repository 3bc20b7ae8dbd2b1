package browse

import (
	"strings"

	"github.com/Shivanand-hulikatti/tabletop/internal/model"
)

// whenLayout renders the schedule as "Wednesday, May 1 at 7:00 PM".
const whenLayout = "Monday, January 2 at 3:04 PM"

// Detail is the open detail view of one event.
type Detail struct {
	Event          model.Event `json:"event"`
	When           string      `json:"when"`
	AttendeeCount  int         `json:"attendee_count"`
	CurrentPlayers int         `json:"current_players"`
	Full           bool        `json:"full"`
	JoinLabel      string      `json:"join_label"`
	CanJoin        bool        `json:"can_join"`
	JoinFormOpen   bool        `json:"join_form_open"`
	JoinEmail      string      `json:"join_email"`
	Joining        bool        `json:"joining"`
	CanConfirm     bool        `json:"can_confirm"`
	Error          string      `json:"error,omitempty"`
}

// detail builds the view of the current selection. Callers hold v.mu and
// have checked that a selection exists.
func (v *View) detail() Detail {
	sel := v.selected
	e := v.find(sel.eventID)
	if e == nil {
		return Detail{}
	}
	l := v.listing(*e)

	label := LabelJoin
	if l.Full {
		label = LabelFull
	}
	return Detail{
		Event:          *e,
		When:           e.ScheduledAt.Format(whenLayout),
		AttendeeCount:  l.AttendeeCount,
		CurrentPlayers: l.CurrentPlayers,
		Full:           l.Full,
		JoinLabel:      label,
		CanJoin:        !l.Full && !sel.formOpen,
		JoinFormOpen:   sel.formOpen,
		JoinEmail:      sel.email,
		Joining:        sel.joining,
		CanConfirm:     sel.formOpen && !sel.joining && v.inflight == 0 && strings.TrimSpace(sel.email) != "",
		Error:          sel.err,
	}
}
