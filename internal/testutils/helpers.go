// Package testutils holds shared test fixtures and fakes.
package testutils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/aretw0/tripreel/pkg/domain"
)

// SampleItinerary returns a small two-day itinerary. Each call returns a
// fresh value.
func SampleItinerary() *domain.Itinerary {
	return &domain.Itinerary{
		TripTitle: "Porto Weekend",
		Summary:   "Wine and bridges",
		Days: []domain.Day{
			{
				DayNumber:  1,
				Theme:      "Ribeira",
				ImageQuery: "Ribeira waterfront",
				ImageURL:   "https://images.example.com/ribeira.jpg",
				Activities: []domain.Activity{
					{Time: "10:00", Activity: "Dom Luís I Bridge", Description: "Walk the **upper deck**"},
					{Time: "13:00", Activity: "Francesinha lunch", Description: "Share one"},
				},
			},
			{
				DayNumber:  2,
				Theme:      "Vila Nova de Gaia",
				ImageQuery: "Port cellars",
				Activities: []domain.Activity{
					{Time: "11:00", Activity: "Port cellar tour", Description: "Book ahead"},
				},
			},
		},
	}
}

// NewBackend starts an HTTP server closed at the end of the test.
func NewBackend(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

// Gate is a generator that blocks every call until Release.
type Gate struct {
	release chan struct{}
	once    sync.Once
	calls   atomic.Int32
	it      *domain.Itinerary
	err     error
}

// NewGate returns a closed-until-released generator answering with it and err.
// The gate is released when the test ends so no goroutine is left behind.
func NewGate(t *testing.T, it *domain.Itinerary, err error) *Gate {
	g := &Gate{release: make(chan struct{}), it: it, err: err}
	t.Cleanup(g.Release)
	return g
}

// Generate implements ports.Generator.
func (g *Gate) Generate(ctx context.Context, videoURL string) (*domain.Itinerary, error) {
	g.calls.Add(1)
	<-g.release
	return g.it, g.err
}

// Release unblocks pending and future calls.
func (g *Gate) Release() {
	g.once.Do(func() { close(g.release) })
}

// Calls returns how many times Generate was entered.
func (g *Gate) Calls() int {
	return int(g.calls.Load())
}
