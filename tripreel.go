package tripreel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/tripreel/internal/logging"
	"github.com/aretw0/tripreel/internal/runtime"
	"github.com/aretw0/tripreel/pkg/adapters/generator"
	"github.com/aretw0/tripreel/pkg/domain"
	"github.com/aretw0/tripreel/pkg/ports"
	"github.com/aretw0/tripreel/pkg/render"
)

// Planner is the high-level entry point of the library. It pairs a generation
// backend with a lifecycle controller and hands out renderable screens.
type Planner struct {
	controller *runtime.Controller
	generator  ports.Generator
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	overlap    bool

	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
}

// Option defines a functional option for configuring the Planner.
type Option func(*Planner)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(p *Planner) {
		p.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) {
		p.logger = logger
	}
}

// WithGenerator injects a custom backend, bypassing the HTTP client.
func WithGenerator(g ports.Generator) Option {
	return func(p *Planner) {
		p.generator = g
	}
}

// WithHTTPClient sets the client used to reach the backend.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Planner) {
		p.httpClient = c
	}
}

// WithTimeout bounds a single backend round trip.
func WithTimeout(d time.Duration) Option {
	return func(p *Planner) {
		p.timeout = d
	}
}

// WithUserAgent sets the User-Agent sent to the backend.
func WithUserAgent(ua string) Option {
	return func(p *Planner) {
		p.userAgent = ua
	}
}

// WithOverlappingSubmissions lets a new submission start while one is
// pending. The newest submission owns the state.
func WithOverlappingSubmissions() Option {
	return func(p *Planner) {
		p.overlap = true
	}
}

// New initializes a Planner for the generation service at backendURL.
// When WithGenerator is given, backendURL is ignored. An empty backendURL
// targets the same origin.
func New(backendURL string, opts ...Option) (*Planner, error) {
	p := &Planner{}
	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = logging.NewNop()
	}

	if p.generator == nil {
		if err := checkBackendURL(backendURL); err != nil {
			return nil, err
		}
		clientOpts := []generator.Option{
			generator.WithLogger(p.logger),
			generator.WithHTTPClient(p.httpClient),
			generator.WithTimeout(p.timeout),
			generator.WithUserAgent(p.userAgent),
		}
		if p.userAgent == "" {
			clientOpts = append(clientOpts, generator.WithUserAgent("tripreel/"+Version))
		}
		p.generator = generator.New(backendURL, clientOpts...)
	}

	runtimeOpts := []runtime.Option{
		runtime.WithLogger(p.logger),
		runtime.WithLifecycleHooks(p.hooks),
	}
	if p.overlap {
		runtimeOpts = append(runtimeOpts, runtime.WithOverlappingSubmissions())
	}
	p.controller = runtime.NewController(p.generator, runtimeOpts...)

	return p, nil
}

func checkBackendURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid backend url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid backend url %q: missing host", raw)
	}
	return nil
}

// Plan submits videoURL and waits for the outcome. Backend failures are
// reported through the returned state, not as an error; the error is set only
// when the submission was refused (blank URL or a request already pending).
func (p *Planner) Plan(ctx context.Context, videoURL string) (domain.State, error) {
	return p.controller.Submit(ctx, videoURL)
}

// Start submits videoURL without waiting. Follow the outcome with Subscribe.
func (p *Planner) Start(ctx context.Context, videoURL string) (domain.State, error) {
	return p.controller.SubmitAsync(ctx, videoURL)
}

// State returns the current lifecycle snapshot.
func (p *Planner) State() domain.State {
	return p.controller.State()
}

// Screen projects the current state onto the visible UI regions.
func (p *Planner) Screen() render.Screen {
	return render.ScreenFor(p.controller.State())
}

// Subscribe streams state changes. See runtime.Controller.Subscribe.
func (p *Planner) Subscribe() (<-chan domain.State, func()) {
	return p.controller.Subscribe()
}

// Reset clears the last outcome. It fails with domain.ErrBusy while pending.
func (p *Planner) Reset() error {
	return p.controller.Reset()
}

// Generator returns the backend used by the planner.
func (p *Planner) Generator() ports.Generator {
	return p.generator
}
