package runtime

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/tripreel/pkg/domain"
	"github.com/aretw0/tripreel/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	it  *domain.Itinerary
	err error
}

type call struct {
	ctx   context.Context
	url   string
	reply chan result
}

// gatedGenerator blocks each call until the test replies to it.
type gatedGenerator struct {
	calls   atomic.Int32
	started chan *call
}

func newGatedGenerator() *gatedGenerator {
	return &gatedGenerator{started: make(chan *call, 8)}
}

func (g *gatedGenerator) Generate(ctx context.Context, videoURL string) (*domain.Itinerary, error) {
	g.calls.Add(1)
	c := &call{ctx: ctx, url: videoURL, reply: make(chan result, 1)}
	g.started <- c
	r := <-c.reply
	return r.it, r.err
}

func fixed(it *domain.Itinerary, err error) ports.Generator {
	return ports.GeneratorFunc(func(ctx context.Context, videoURL string) (*domain.Itinerary, error) {
		return it, err
	})
}

func tokyo() *domain.Itinerary {
	return &domain.Itinerary{
		TripTitle: "Tokyo in 3 Days",
		Summary:   "...",
		Days: []domain.Day{{
			DayNumber:  1,
			Theme:      "Arrival",
			Activities: []domain.Activity{{Time: "9:00", Activity: "Land", Description: "..."}},
		}},
	}
}

func waitFor(t *testing.T, ch <-chan domain.State, phase domain.Phase) domain.State {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case s := <-ch:
			if s.Phase == phase {
				return s
			}
		case <-timeout:
			t.Fatalf("timed out waiting for phase %s", phase)
		}
	}
}

func TestController_Submit_Outcomes(t *testing.T) {
	tests := []struct {
		name    string
		it      *domain.Itinerary
		err     error
		phase   domain.Phase
		message string
	}{
		{"success", tokyo(), nil, domain.PhaseSuccess, ""},
		{"status detail", nil, domain.NewStatusError(500, "invalid video"), domain.PhaseFailed, "invalid video"},
		{"status generic", nil, domain.NewStatusError(503, ""), domain.PhaseFailed, domain.GenericFailureMessage},
		{"embedded", nil, &domain.EmbeddedError{Message: "no transcript available"}, domain.PhaseFailed, "no transcript available"},
		{"transport", nil, &domain.TransportError{Err: errors.New("dial tcp: lookup backend: no such host")}, domain.PhaseFailed, "dial tcp: lookup backend: no such host"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(fixed(tt.it, tt.err))
			got, err := c.Submit(context.Background(), "https://youtu.be/abc")
			require.NoError(t, err)

			assert.Equal(t, tt.phase, got.Phase)
			assert.Equal(t, tt.message, got.Message)
			assert.True(t, got.CanSubmit(), "trigger must be re-enabled after resolution")
			assert.Equal(t, got, c.State())
			if tt.phase == domain.PhaseFailed {
				assert.Nil(t, got.Itinerary)
			} else {
				assert.Equal(t, tt.it, got.Itinerary)
				assert.NotSame(t, tt.it, got.Itinerary)
			}
		})
	}
}

func TestController_NilItineraryIsEmptySuccess(t *testing.T) {
	c := NewController(fixed(nil, nil))
	got, err := c.Submit(context.Background(), "https://youtu.be/abc")
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseSuccess, got.Phase)
	require.NotNil(t, got.Itinerary)
	assert.Empty(t, got.Itinerary.Days)
}

func TestController_EmptyURL(t *testing.T) {
	var calls atomic.Int32
	c := NewController(ports.GeneratorFunc(func(ctx context.Context, u string) (*domain.Itinerary, error) {
		calls.Add(1)
		return nil, nil
	}))

	_, err := c.Submit(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyURL)
	assert.Equal(t, domain.PhaseIdle, c.State().Phase)
	assert.Zero(t, calls.Load())
}

func TestController_BusyWhilePending(t *testing.T) {
	gen := newGatedGenerator()
	c := NewController(gen)

	pending, err := c.SubmitAsync(context.Background(), "https://youtu.be/abc")
	require.NoError(t, err)
	assert.Equal(t, domain.PhasePending, pending.Phase)
	assert.False(t, c.State().CanSubmit())
	inflight := <-gen.started

	_, err = c.Submit(context.Background(), "https://youtu.be/other")
	assert.ErrorIs(t, err, domain.ErrBusy)
	_, err = c.SubmitAsync(context.Background(), "https://youtu.be/other")
	assert.ErrorIs(t, err, domain.ErrBusy)
	assert.ErrorIs(t, c.Reset(), domain.ErrBusy)
	assert.Equal(t, pending, c.State(), "rejected submissions leave the state untouched")

	ch, cancel := c.Subscribe()
	defer cancel()
	inflight.reply <- result{it: tokyo()}
	final := waitFor(t, ch, domain.PhaseSuccess)

	assert.Equal(t, int32(1), gen.calls.Load())
	assert.Equal(t, "https://youtu.be/abc", final.URL)
	assert.True(t, c.State().CanSubmit())
	assert.Zero(t, c.InFlight())
}

func TestController_PendingClearsPreviousResult(t *testing.T) {
	gen := newGatedGenerator()
	c := NewController(gen)
	ch, cancel := c.Subscribe()
	defer cancel()

	_, err := c.SubmitAsync(context.Background(), "https://youtu.be/abc")
	require.NoError(t, err)
	(<-gen.started).reply <- result{err: domain.NewStatusError(500, "invalid video")}
	failed := waitFor(t, ch, domain.PhaseFailed)
	assert.Equal(t, "invalid video", failed.Message)

	pending, err := c.SubmitAsync(context.Background(), "https://youtu.be/abc")
	require.NoError(t, err)
	second := <-gen.started
	assert.Empty(t, pending.Message)
	assert.Nil(t, pending.Itinerary)
	assert.Equal(t, domain.KindOf(nil), pending.Kind)
	assert.Equal(t, uint64(2), pending.Token)

	second.reply <- result{it: tokyo()}
	ok := waitFor(t, ch, domain.PhaseSuccess)
	assert.Empty(t, ok.Message)
	assert.Equal(t, 2, int(gen.calls.Load()), "same url is fetched again, nothing is memoized")
}

func TestController_RequestOutlivesCaller(t *testing.T) {
	gen := newGatedGenerator()
	c := NewController(gen)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan domain.State, 1)
	go func() {
		s, _ := c.Submit(ctx, "https://youtu.be/abc")
		done <- s
	}()

	inflight := <-gen.started
	cancel()
	assert.NoError(t, inflight.ctx.Err(), "outbound call must not observe caller cancellation")

	inflight.reply <- result{it: tokyo()}
	select {
	case s := <-done:
		assert.Equal(t, domain.PhaseSuccess, s.Phase)
	case <-time.After(2 * time.Second):
		t.Fatal("submit did not complete")
	}
}

func TestController_OverlappingSubmissions_NewestWins(t *testing.T) {
	gen := newGatedGenerator()

	var mu sync.Mutex
	var resolved []*domain.ResolveEvent
	hooks := domain.LifecycleHooks{
		OnResolve: func(ctx context.Context, e *domain.ResolveEvent) {
			mu.Lock()
			defer mu.Unlock()
			resolved = append(resolved, e)
		},
	}
	c := NewController(gen, WithOverlappingSubmissions(), WithLifecycleHooks(hooks))

	first := make(chan domain.State, 1)
	go func() {
		s, _ := c.Submit(context.Background(), "https://youtu.be/first")
		first <- s
	}()
	firstCall := <-gen.started

	second, err := c.SubmitAsync(context.Background(), "https://youtu.be/second")
	require.NoError(t, err)
	secondCall := <-gen.started
	assert.Equal(t, "https://youtu.be/second", secondCall.url)
	assert.Equal(t, uint64(2), second.Token)
	assert.Equal(t, 2, c.InFlight())

	ch, cancel := c.Subscribe()
	defer cancel()

	// The first call resolves after the second submission started, so its
	// failure must not replace the newer Pending state.
	firstCall.reply <- result{err: domain.NewStatusError(500, "late failure")}
	<-first
	assert.Equal(t, domain.PhasePending, c.State().Phase)

	secondCall.reply <- result{it: tokyo()}
	final := waitFor(t, ch, domain.PhaseSuccess)
	assert.Equal(t, uint64(2), final.Token)
	assert.Equal(t, "https://youtu.be/second", final.URL)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, resolved, 2)
	assert.True(t, resolved[0].Stale)
	assert.False(t, resolved[1].Stale)
}

func TestController_Hooks(t *testing.T) {
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	var submit *domain.SubmitEvent
	var resolve *domain.ResolveEvent
	hooks := domain.LifecycleHooks{
		OnSubmit:  func(ctx context.Context, e *domain.SubmitEvent) { submit = e },
		OnResolve: func(ctx context.Context, e *domain.ResolveEvent) { resolve = e },
	}
	c := NewController(fixed(tokyo(), nil), WithLifecycleHooks(hooks), WithClock(tick))

	_, err := c.Submit(context.Background(), " https://youtu.be/abc ")
	require.NoError(t, err)

	require.NotNil(t, submit)
	assert.Equal(t, "https://youtu.be/abc", submit.URL)
	assert.Equal(t, domain.EventSubmit, submit.Type)

	require.NotNil(t, resolve)
	assert.Equal(t, domain.PhaseSuccess, resolve.Phase)
	assert.Equal(t, time.Second, resolve.Duration)
	assert.Equal(t, 1, resolve.Days)
	assert.False(t, resolve.Stale)
}

func TestController_SnapshotsAreIsolated(t *testing.T) {
	c := NewController(fixed(tokyo(), nil))
	ch, cancel := c.Subscribe()
	defer cancel()

	got, err := c.Submit(context.Background(), "https://youtu.be/abc")
	require.NoError(t, err)
	got.Itinerary.Days[0].Theme = "changed"
	got.Itinerary.Days[0].Activities[0].Activity = "changed"
	got.Itinerary.Days = append(got.Itinerary.Days, domain.Day{Theme: "extra"})

	fresh := c.State()
	require.Len(t, fresh.Itinerary.Days, 1)
	assert.Equal(t, "Arrival", fresh.Itinerary.Days[0].Theme)
	assert.Equal(t, "Land", fresh.Itinerary.Days[0].Activities[0].Activity)

	fresh.Itinerary.TripTitle = "changed"
	pushed := waitFor(t, ch, domain.PhaseSuccess)
	assert.Equal(t, "Tokyo in 3 Days", pushed.Itinerary.TripTitle)
	assert.Equal(t, "Arrival", pushed.Itinerary.Days[0].Theme)
}

func TestController_SubscribeAndReset(t *testing.T) {
	c := NewController(fixed(nil, domain.NewStatusError(500, "invalid video")))
	ch, cancel := c.Subscribe()

	assert.Equal(t, domain.PhaseIdle, (<-ch).Phase)

	_, err := c.Submit(context.Background(), "https://youtu.be/abc")
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseFailed, waitFor(t, ch, domain.PhaseFailed).Phase)

	require.NoError(t, c.Reset())
	assert.Equal(t, domain.PhaseIdle, waitFor(t, ch, domain.PhaseIdle).Phase)

	cancel()
	_, open := <-ch
	assert.False(t, open)
	cancel() // idempotent
}
