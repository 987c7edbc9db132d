package pipeline

// State is a step of one generation run.
type State int

const (
	StateIdle State = iota
	StateComposingPrompt
	StateRequestingText
	StateRequestingImage
	StatePersisting
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateIdle:            "idle",
	StateComposingPrompt: "composing_prompt",
	StateRequestingText:  "requesting_text",
	StateRequestingImage: "requesting_image",
	StatePersisting:      "persisting",
	StateDone:            "done",
	StateFailed:          "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// IsTerminal reports whether no further transition is possible.
func IsTerminal(s State) bool {
	return s == StateDone || s == StateFailed
}

// Next returns the state that follows s given the outcome of its work. Any
// error moves a non-terminal state to StateFailed. Terminal states are fixed
// points.
func Next(s State, err error) State {
	if IsTerminal(s) {
		return s
	}
	if err != nil {
		return StateFailed
	}
	switch s {
	case StateIdle:
		return StateComposingPrompt
	case StateComposingPrompt:
		return StateRequestingText
	case StateRequestingText:
		return StateRequestingImage
	case StateRequestingImage:
		return StatePersisting
	case StatePersisting:
		return StateDone
	default:
		return StateFailed
	}
}
