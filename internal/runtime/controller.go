package runtime

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/tripreel/internal/logging"
	"github.com/aretw0/tripreel/pkg/domain"
	"github.com/aretw0/tripreel/pkg/ports"
)

// Controller owns the lifecycle of itinerary requests.
// It is the only writer of its State; readers get snapshots.
type Controller struct {
	gen    ports.Generator
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	now    func() time.Time

	// allowOverlap lifts the one-in-flight rule. Resolutions of superseded
	// submissions are then discarded by token.
	allowOverlap bool

	mu        sync.Mutex
	state     domain.State
	lastToken uint64
	inFlight  int
	subs      map[chan domain.State]struct{}
}

// NewController creates a controller in the Idle state.
func NewController(gen ports.Generator, opts ...Option) *Controller {
	c := &Controller{
		gen:    gen,
		logger: logging.NewNop(),
		now:    time.Now,
		state:  domain.NewState(),
		subs:   make(map[chan domain.State]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current lifecycle snapshot.
func (c *Controller) State() domain.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Submit starts a request for rawURL and blocks until it resolves.
// It returns domain.ErrEmptyURL for a blank URL and domain.ErrBusy while
// another request is pending; in both cases the state is left untouched.
//
// The outbound call is detached from ctx cancellation: once started, a
// request always runs to completion.
func (c *Controller) Submit(ctx context.Context, rawURL string) (domain.State, error) {
	pending, err := c.begin(ctx, rawURL)
	if err != nil {
		return c.State(), err
	}
	return c.run(context.WithoutCancel(ctx), pending), nil
}

// SubmitAsync starts a request and returns the Pending state immediately.
// The resolution is delivered to subscribers.
func (c *Controller) SubmitAsync(ctx context.Context, rawURL string) (domain.State, error) {
	pending, err := c.begin(ctx, rawURL)
	if err != nil {
		return c.State(), err
	}
	detached := context.WithoutCancel(ctx)
	go c.run(detached, pending)
	return pending, nil
}

// Reset returns the controller to Idle, clearing any result or error.
// It is refused with domain.ErrBusy while a request is pending.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Phase == domain.PhasePending {
		return domain.ErrBusy
	}
	c.state = domain.NewState()
	c.broadcastLocked(c.state)
	return nil
}

// begin validates the input and performs the transition into Pending.
func (c *Controller) begin(ctx context.Context, rawURL string) (domain.State, error) {
	videoURL := strings.TrimSpace(rawURL)
	if videoURL == "" {
		return domain.State{}, domain.ErrEmptyURL
	}

	c.mu.Lock()
	if c.state.Phase == domain.PhasePending && !c.allowOverlap {
		c.mu.Unlock()
		c.logger.Debug("submission rejected while pending", "url", videoURL)
		return domain.State{}, domain.ErrBusy
	}
	c.lastToken++
	c.inFlight++
	pending := domain.Pending(c.lastToken, videoURL, c.now())
	c.state = pending
	c.broadcastLocked(pending)
	c.mu.Unlock()

	c.logger.Info("itinerary requested", "token", pending.Token, "url", videoURL)
	if c.hooks.OnSubmit != nil {
		c.hooks.OnSubmit(ctx, &domain.SubmitEvent{
			EventBase: domain.EventBase{Timestamp: pending.StartedAt, Type: domain.EventSubmit, Token: pending.Token},
			URL:       videoURL,
		})
	}
	return pending, nil
}

// run performs the single outbound call and resolves the pending state.
func (c *Controller) run(ctx context.Context, pending domain.State) domain.State {
	it, err := c.gen.Generate(ctx, pending.URL)
	return c.resolve(ctx, pending, it, err)
}

func (c *Controller) resolve(ctx context.Context, pending domain.State, it *domain.Itinerary, err error) domain.State {
	now := c.now()

	var final domain.State
	if err != nil {
		final = pending.Failed(err, now)
	} else {
		if it == nil {
			it = &domain.Itinerary{Days: []domain.Day{}}
		}
		final = pending.Succeeded(it, now)
	}

	c.mu.Lock()
	c.inFlight--
	stale := c.state.Token != pending.Token
	if !stale {
		c.state = final
		c.broadcastLocked(final)
	}
	c.mu.Unlock()

	if stale {
		c.logger.Debug("discarding superseded resolution", "token", pending.Token, "phase", final.Phase)
	} else if final.Phase == domain.PhaseFailed {
		c.logger.Info("itinerary request failed",
			"token", final.Token,
			"kind", final.Kind,
			"message", final.Message,
			"duration", final.Duration(),
		)
	} else {
		c.logger.Info("itinerary received",
			"token", final.Token,
			"days", len(final.Itinerary.Days),
			"duration", final.Duration(),
		)
	}

	final = final.Clone()
	if c.hooks.OnResolve != nil {
		days := 0
		if final.Itinerary != nil {
			days = len(final.Itinerary.Days)
		}
		c.hooks.OnResolve(ctx, &domain.ResolveEvent{
			EventBase: domain.EventBase{Timestamp: now, Type: domain.EventResolve, Token: final.Token},
			URL:       final.URL,
			Phase:     final.Phase,
			Kind:      final.Kind,
			Message:   final.Message,
			Duration:  final.Duration(),
			Days:      days,
			Stale:     stale,
		})
	}
	return final
}

// InFlight returns the number of outbound calls that have not resolved yet.
func (c *Controller) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}
