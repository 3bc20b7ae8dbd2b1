package wizard

// State is a position of the creation workflow.
type State int

const (
	StepSchedule State = iota + 1
	StepDetails
	StepLocation
	Submitting
	Failed
)

var stateNames = map[State]string{
	StepSchedule: "schedule",
	StepDetails:  "details",
	StepLocation: "location",
	Submitting:   "submitting",
	Failed:       "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalText renders the state by name in JSON payloads.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Step returns the form step shown in this state. Submitting and Failed
// both stay on the final step.
func (s State) Step() int {
	switch s {
	case StepSchedule:
		return 1
	case StepDetails:
		return 2
	default:
		return 3
	}
}
