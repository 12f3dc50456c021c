package render

// View is the presentation tree of one itinerary.
type View struct {
	Header Header    `json:"header"`
	Days   []DayView `json:"days"`
}

// Header is always rendered, even when Summary is empty.
type Header struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// DayView is one day block.
type DayView struct {
	// Key is derived from the position in the sequence, so duplicate day
	// numbers still produce distinct keys.
	Key    string `json:"key"`
	Index  int    `json:"index"`
	Number int    `json:"number"`
	Theme  string `json:"theme"`
	Label  string `json:"label"`
	// Image is nil when the day has no image URL; no placeholder is rendered.
	Image    *Image  `json:"image,omitempty"`
	Timeline []Entry `json:"timeline"`
}

// Image is the optional picture shown at the top of a day.
type Image struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

// Entry is one point of a day's timeline.
type Entry struct {
	Key         string `json:"key"`
	Position    int    `json:"position"`
	Time        string `json:"time"`
	Activity    string `json:"activity"`
	Description string `json:"description"`
	First       bool   `json:"first"`
	Last        bool   `json:"last"`
}

// Empty reports whether the day list region has nothing to show.
func (v View) Empty() bool {
	return len(v.Days) == 0
}

// Empty reports whether the day's timeline has no entries.
func (d DayView) Empty() bool {
	return len(d.Timeline) == 0
}

// ImageCount returns the number of image blocks in the view.
func (v View) ImageCount() int {
	n := 0
	for _, d := range v.Days {
		if d.Image != nil {
			n++
		}
	}
	return n
}
