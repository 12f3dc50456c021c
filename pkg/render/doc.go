// Package render turns an itinerary into an ordered presentation tree.
//
// Rendering is a pure function: it never fails, holds no state between calls
// and produces the same View for the same itinerary. Day and activity order is
// taken from the input sequence as-is. Presenters (markdown, HTML, tables)
// consume the View and never look at the itinerary directly.
package render
