package render

import "github.com/aretw0/tripreel/pkg/domain"

// Screen describes which UI regions are visible for a lifecycle state.
// The error banner and the itinerary are mutually exclusive, and both are
// hidden while a request is pending.
type Screen struct {
	Phase domain.Phase `json:"phase"`
	URL   string       `json:"url,omitempty"`

	// CanSubmit is false exactly while a request is pending.
	CanSubmit bool `json:"can_submit"`
	Busy      bool `json:"busy"`

	// Banner is the error text, set only in the Failed phase.
	Banner string `json:"banner,omitempty"`

	// Itinerary is set only in the Success phase.
	Itinerary *View `json:"itinerary,omitempty"`
}

// ScreenFor maps a lifecycle state onto the visible UI regions.
func ScreenFor(s domain.State) Screen {
	sc := Screen{
		Phase:     s.Phase,
		URL:       s.URL,
		CanSubmit: s.CanSubmit(),
		Busy:      s.Phase == domain.PhasePending,
	}
	switch s.Phase {
	case domain.PhaseFailed:
		sc.Banner = s.Message
		if sc.Banner == "" {
			sc.Banner = domain.GenericFailureMessage
		}
	case domain.PhaseSuccess:
		v := Render(s.Itinerary)
		sc.Itinerary = &v
	}
	return sc
}
