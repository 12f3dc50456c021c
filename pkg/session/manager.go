package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/tripreel"
	"github.com/aretw0/tripreel/internal/logging"
	"github.com/aretw0/tripreel/pkg/domain"
	"github.com/google/uuid"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 30 * time.Minute

// Factory builds the planner of a new session.
type Factory func() (*tripreel.Planner, error)

type entry struct {
	planner  *tripreel.Planner
	lastSeen time.Time
}

// Manager maps session IDs to planners.
type Manager struct {
	factory Factory
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[string]*entry
}

// Option configures the Manager.
type Option func(*Manager)

// WithTTL sets the idle time after which a session is evicted.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a Manager that builds planners with factory.
func NewManager(factory Factory, opts ...Option) *Manager {
	m := &Manager{
		factory:  factory,
		ttl:      DefaultTTL,
		now:      time.Now,
		logger:   logging.NewNop(),
		sessions: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the planner of an existing session and refreshes its idle timer.
func (m *Manager) Get(sessionID string) (*tripreel.Planner, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[sessionID]
	if !ok {
		return nil, false
	}
	e.lastSeen = m.now()
	return e.planner, true
}

// LoadOrCreate returns the session for sessionID. Unknown or empty IDs get a
// brand new session under a freshly minted ID; clients never choose IDs.
func (m *Manager) LoadOrCreate(sessionID string) (string, *tripreel.Planner, error) {
	if sessionID != "" {
		if p, ok := m.Get(sessionID); ok {
			return sessionID, p, nil
		}
	}

	p, err := m.factory()
	if err != nil {
		return "", nil, fmt.Errorf("failed to initialize session: %w", err)
	}
	id := uuid.NewString()

	m.mu.Lock()
	m.sessions[id] = &entry{planner: p, lastSeen: m.now()}
	m.mu.Unlock()

	m.logger.Debug("session created", "session_id", id)
	return id, p, nil
}

// Delete drops a session.
func (m *Manager) Delete(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// List returns the IDs of live sessions.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Sweep evicts sessions idle for longer than the TTL and returns how many
// were removed. Sessions with a pending request are kept.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, e := range m.sessions {
		if e.lastSeen.After(cutoff) {
			continue
		}
		if e.planner.State().Phase == domain.PhasePending {
			continue
		}
		delete(m.sessions, id)
		evicted++
	}
	if evicted > 0 {
		m.logger.Debug("sessions evicted", "count", evicted, "remaining", len(m.sessions))
	}
	return evicted
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = m.ttl / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
