package domain

import "slices"

// Itinerary is the structured travel plan derived from a video.
// Values are treated as immutable once decoded. Lifecycle snapshots carry
// their own Clone, so mutating one never reaches the controller's copy.
type Itinerary struct {
	TripTitle string `json:"trip_title"`
	Summary   string `json:"summary"`
	// Days are in presentation order. DayNumber is a label, not a sort key.
	Days []Day `json:"days"`
}

// Day is one calendar day of the plan.
type Day struct {
	DayNumber  int    `json:"day_number"`
	Theme      string `json:"theme"`
	ImageQuery string `json:"image_query,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
	// Activities are in timeline order; Time is never parsed.
	Activities []Activity `json:"activities"`
}

// Activity is a single scheduled event within a day.
type Activity struct {
	Time        string `json:"time"`
	Activity    string `json:"activity"`
	Description string `json:"description"`
}

// HasImage reports whether the day carries an image to display.
func (d Day) HasImage() bool {
	return d.ImageURL != ""
}

// IsEmpty reports whether the itinerary has no days.
func (it *Itinerary) IsEmpty() bool {
	return it == nil || len(it.Days) == 0
}

// ActivityCount returns the total number of activities across all days.
func (it *Itinerary) ActivityCount() int {
	if it == nil {
		return 0
	}
	n := 0
	for _, d := range it.Days {
		n += len(d.Activities)
	}
	return n
}

// Clone returns a deep copy of the itinerary. A nil itinerary clones to nil.
func (it *Itinerary) Clone() *Itinerary {
	if it == nil {
		return nil
	}
	out := *it
	if it.Days != nil {
		out.Days = make([]Day, len(it.Days))
		for i, d := range it.Days {
			if d.Activities != nil {
				d.Activities = slices.Clone(d.Activities)
			}
			out.Days[i] = d
		}
	}
	return &out
}
