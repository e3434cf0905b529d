package job

// State is a job lifecycle stage.
type State string

const (
	StateIdle         State = "idle"
	StateAdmitted     State = "admitted"
	StateConverting   State = "converting"
	StateTranscribing State = "transcribing"
	StateCompleted    State = "completed"
	StateAborted      State = "aborted"
	StateFailed       State = "failed"
	StateReleased     State = "released"
)

var transitions = map[State][]State{
	StateIdle:         {StateAdmitted},
	StateAdmitted:     {StateConverting, StateFailed},
	StateConverting:   {StateTranscribing, StateFailed},
	StateTranscribing: {StateCompleted, StateAborted, StateFailed},
	StateCompleted:    {StateReleased},
	StateAborted:      {StateReleased},
	StateFailed:       {StateReleased},
	StateReleased:     {StateIdle},
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal reports whether s is a job outcome.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateAborted || s == StateFailed
}

func (s State) String() string { return string(s) }
