package domain

// State is the phase of a card in the scheduling state machine.
type State string

// Scheduling states.
const (
	StateNew        State = "new"
	StateLearning   State = "learning"
	StateReview     State = "review"
	StateRelearning State = "relearning"
)

// IsValid reports whether s is a known state.
func (s State) IsValid() bool {
	switch s {
	case StateNew, StateLearning, StateReview, StateRelearning:
		return true
	}
	return false
}

func (s State) String() string {
	return string(s)
}
