package quiz

// State is the position of a Session in its lifecycle.
type State int

const (
	StateAwaitingSelection State = iota // current question shown, nothing chosen
	StateAnswerSelected                 // an option is chosen but may still change
	StateAnswerConfirmed                // answer locked, explanation visible
	StateComplete                       // every question has a confirmed answer
)

func (s State) String() string {
	switch s {
	case StateAwaitingSelection:
		return "awaiting-selection"
	case StateAnswerSelected:
		return "answer-selected"
	case StateAnswerConfirmed:
		return "answer-confirmed"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}
