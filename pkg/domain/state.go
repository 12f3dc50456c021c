package domain

import "time"

// Phase is the lifecycle phase of a submission.
type Phase string

const (
	PhaseIdle    Phase = "idle"    // Nothing submitted yet
	PhasePending Phase = "pending" // One request in flight
	PhaseSuccess Phase = "success" // Itinerary received
	PhaseFailed  Phase = "failed"  // Terminal failure with a user-facing message
)

// State is a snapshot of the request lifecycle.
// Itinerary is set only in PhaseSuccess and Message only in PhaseFailed.
type State struct {
	Phase Phase `json:"phase"`

	// Token identifies the submission that produced this state.
	// It increases monotonically per controller; zero means no submission yet.
	Token uint64 `json:"token"`

	// URL is the raw video URL of the current submission.
	URL string `json:"url,omitempty"`

	Itinerary *Itinerary  `json:"itinerary,omitempty"`
	Message   string      `json:"message,omitempty"`
	Kind      FailureKind `json:"kind,omitempty"`

	StartedAt  time.Time `json:"started_at,omitzero"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
}

// NewState returns the initial Idle state.
func NewState() State {
	return State{Phase: PhaseIdle}
}

// Pending returns the state entered when a submission starts.
// Any previous result or error is dropped.
func Pending(token uint64, url string, at time.Time) State {
	return State{
		Phase:     PhasePending,
		Token:     token,
		URL:       url,
		StartedAt: at,
	}
}

// Succeeded resolves a pending state with a private copy of it.
func (s State) Succeeded(it *Itinerary, at time.Time) State {
	return State{
		Phase:      PhaseSuccess,
		Token:      s.Token,
		URL:        s.URL,
		Itinerary:  it.Clone(),
		StartedAt:  s.StartedAt,
		FinishedAt: at,
	}
}

// Failed resolves a pending state with a failure.
func (s State) Failed(err error, at time.Time) State {
	return State{
		Phase:      PhaseFailed,
		Token:      s.Token,
		URL:        s.URL,
		Message:    Message(err),
		Kind:       KindOf(err),
		StartedAt:  s.StartedAt,
		FinishedAt: at,
	}
}

// Clone returns a snapshot that shares no memory with s.
func (s State) Clone() State {
	s.Itinerary = s.Itinerary.Clone()
	return s
}

// CanSubmit reports whether the submit trigger is interactive.
func (s State) CanSubmit() bool {
	return s.Phase != PhasePending
}

// IsTerminal reports whether the state is a resolved submission.
func (s State) IsTerminal() bool {
	return s.Phase == PhaseSuccess || s.Phase == PhaseFailed
}

// Duration returns how long the submission took, or zero if unresolved.
func (s State) Duration() time.Duration {
	if s.FinishedAt.IsZero() || s.StartedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
