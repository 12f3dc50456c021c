/*
Package tripreel turns a video URL into a day-by-day travel itinerary.

A Planner sends the URL to an itinerary generation service, tracks the request
through a small lifecycle (idle, pending, success, failed) and exposes the
outcome as a render.Screen that any presenter can draw: the terminal, the web
page and the MCP tool all consume the same projection.

# Lifecycle

Only one request runs at a time. Submitting while a request is pending fails
with domain.ErrBusy and leaves the state untouched; a blank URL fails with
domain.ErrEmptyURL. Once started, a request always runs to completion even if
the caller gives up, and each state change is numbered with a token so late
answers can never overwrite a newer submission.

Backend failures never surface as Go errors from Plan. They are folded into the
Failed state with a user-facing message and a domain.FailureKind.

# Usage

	planner, err := tripreel.New("http://localhost:8000",
		tripreel.WithTimeout(90*time.Second),
	)
	if err != nil {
		log.Fatal(err)
	}

	state, err := planner.Plan(ctx, "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	if err != nil {
		log.Fatal(err) // refused: blank URL or already pending
	}

	switch state.Phase {
	case domain.PhaseSuccess:
		view := render.Render(state.Itinerary)
		fmt.Println(view.Header.Title)
	case domain.PhaseFailed:
		fmt.Println(state.Message)
	}
*/
package tripreel
