package render

import (
	"fmt"

	"github.com/aretw0/tripreel/pkg/domain"
)

// Render builds the presentation tree for it. A nil itinerary renders as an
// empty view.
func Render(it *domain.Itinerary) View {
	if it == nil {
		return View{Days: []DayView{}}
	}

	v := View{
		Header: Header{Title: it.TripTitle, Summary: it.Summary},
		Days:   make([]DayView, 0, len(it.Days)),
	}
	for i, day := range it.Days {
		v.Days = append(v.Days, renderDay(i, day))
	}
	return v
}

func renderDay(index int, day domain.Day) DayView {
	dv := DayView{
		Key:      fmt.Sprintf("day-%d", index),
		Index:    index,
		Number:   day.DayNumber,
		Theme:    day.Theme,
		Label:    DayLabel(day.DayNumber, day.Theme),
		Timeline: make([]Entry, 0, len(day.Activities)),
	}
	if day.HasImage() {
		dv.Image = &Image{URL: day.ImageURL, Alt: dv.Label}
	}

	last := len(day.Activities) - 1
	for j, act := range day.Activities {
		dv.Timeline = append(dv.Timeline, Entry{
			Key:         fmt.Sprintf("%s-activity-%d", dv.Key, j),
			Position:    j,
			Time:        act.Time,
			Activity:    act.Activity,
			Description: act.Description,
			First:       j == 0,
			Last:        j == last,
		})
	}
	return dv
}

// DayLabel formats the heading of a day, e.g. "Day 1: Arrival".
func DayLabel(number int, theme string) string {
	if theme == "" {
		return fmt.Sprintf("Day %d", number)
	}
	return fmt.Sprintf("Day %d: %s", number, theme)
}
