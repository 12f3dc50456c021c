package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/tripreel/pkg/domain"
	"github.com/aretw0/tripreel/pkg/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	m := observability.NewMetrics(false)
	hooks := m.Hooks("web")
	ctx := context.Background()

	hooks.OnSubmit(ctx, &domain.SubmitEvent{URL: "u"})
	hooks.OnSubmit(ctx, &domain.SubmitEvent{URL: "u"})
	hooks.OnResolve(ctx, &domain.ResolveEvent{Phase: domain.PhaseSuccess, Days: 3, Duration: time.Second})
	hooks.OnResolve(ctx, &domain.ResolveEvent{Phase: domain.PhaseFailed, Kind: domain.KindStatus, Duration: time.Second})

	count, err := testutil.GatherAndCount(m.Registry(), "tripreel_submissions_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	expected := `
# HELP tripreel_resolutions_total Resolved submissions by phase and failure kind
# TYPE tripreel_resolutions_total counter
tripreel_resolutions_total{kind="none",phase="success",stale="false"} 1
tripreel_resolutions_total{kind="status",phase="failed",stale="false"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), bytes.NewBufferString(expected), "tripreel_resolutions_total"))

	gauge := `
# HELP tripreel_requests_in_flight Submissions waiting for the backend
# TYPE tripreel_requests_in_flight gauge
tripreel_requests_in_flight 0
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), bytes.NewBufferString(gauge), "tripreel_requests_in_flight"))
}

func TestMetrics_Handler(t *testing.T) {
	m := observability.NewMetrics(true)
	m.Hooks("cli").OnSubmit(context.Background(), &domain.SubmitEvent{})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `tripreel_submissions_total{source="cli"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestChain(t *testing.T) {
	var order []string
	a := domain.LifecycleHooks{
		OnSubmit: func(context.Context, *domain.SubmitEvent) { order = append(order, "a") },
	}
	b := domain.LifecycleHooks{
		OnSubmit:  func(context.Context, *domain.SubmitEvent) { order = append(order, "b") },
		OnResolve: func(context.Context, *domain.ResolveEvent) { order = append(order, "b-resolve") },
	}

	h := observability.Chain(a, domain.LifecycleHooks{}, b)
	h.OnSubmit(context.Background(), &domain.SubmitEvent{})
	h.OnResolve(context.Background(), &domain.ResolveEvent{})
	assert.Equal(t, []string{"a", "b", "b-resolve"}, order)

	empty := observability.Chain()
	assert.Nil(t, empty.OnSubmit)
	assert.Nil(t, empty.OnResolve)
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h := observability.LogHooks(logger)

	h.OnSubmit(context.Background(), &domain.SubmitEvent{EventBase: domain.EventBase{Token: 4}, URL: "https://x"})
	h.OnResolve(context.Background(), &domain.ResolveEvent{
		EventBase: domain.EventBase{Token: 4},
		Phase:     domain.PhaseFailed,
		Kind:      domain.KindEmbedded,
		Message:   "boom",
		Stale:     true,
	})

	out := buf.String()
	assert.Contains(t, out, "hook:submit")
	assert.Contains(t, out, "token=4")
	assert.Contains(t, out, "message=boom")
	assert.Contains(t, out, "stale=true")
}
