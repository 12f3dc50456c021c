package http_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/tripreel"
	"github.com/aretw0/tripreel/internal/testutils"
	httpAdapter "github.com/aretw0/tripreel/pkg/adapters/http"
	"github.com/aretw0/tripreel/pkg/domain"
	"github.com/aretw0/tripreel/pkg/ports"
	"github.com/aretw0/tripreel/pkg/render"
	"github.com/aretw0/tripreel/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var instant = ports.GeneratorFunc(func(context.Context, string) (*domain.Itinerary, error) {
	return testutils.SampleItinerary(), nil
})

func newHandler(t *testing.T, gen ports.Generator, opts ...httpAdapter.Option) (http.Handler, *session.Manager) {
	t.Helper()
	sessions := session.NewManager(func() (*tripreel.Planner, error) {
		return tripreel.New("", tripreel.WithGenerator(gen))
	})
	h, err := httpAdapter.NewHandler(sessions, opts...)
	require.NoError(t, err)
	return h, sessions
}

func do(h http.Handler, req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func jsonSubmit(videoURL string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(`{"url":"`+videoURL+`"}`))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func sessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == httpAdapter.CookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", httpAdapter.CookieName)
	return nil
}

func decodeScreen(t *testing.T, rr *httptest.ResponseRecorder) render.Screen {
	t.Helper()
	var sc render.Screen
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sc))
	return sc
}

func TestGetHealth(t *testing.T) {
	h, _ := newHandler(t, instant)

	rr := do(h, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestGetInfo(t *testing.T) {
	h, sessions := newHandler(t, instant)
	_, _, err := sessions.LoadOrCreate("")
	require.NoError(t, err)

	rr := do(h, httptest.NewRequest(http.MethodGet, "/info", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "tripreel-web", resp["app"])
	assert.Equal(t, tripreel.Version, resp["version"])
	assert.EqualValues(t, 1, resp["sessions"])
}

func TestGetPage_IssuesSession(t *testing.T) {
	h, sessions := newHandler(t, instant)

	rr := do(h, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), `name="url"`)

	c := sessionCookie(t, rr)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, 1, sessions.Len())

	again := do(h, httptest.NewRequest(http.MethodGet, "/", nil), c)
	assert.Empty(t, again.Result().Cookies(), "known session keeps its cookie")
	assert.Equal(t, 1, sessions.Len())
}

func TestSubmit_JSONLifecycle(t *testing.T) {
	gate := testutils.NewGate(t, testutils.SampleItinerary(), nil)
	h, _ := newHandler(t, gate)

	page := do(h, httptest.NewRequest(http.MethodGet, "/", nil))
	c := sessionCookie(t, page)

	rr := do(h, jsonSubmit("https://www.youtube.com/watch?v=abcdefghijk"), c)
	require.Equal(t, http.StatusAccepted, rr.Code)
	sc := decodeScreen(t, rr)
	assert.Equal(t, domain.PhasePending, sc.Phase)
	assert.False(t, sc.CanSubmit)
	assert.Nil(t, sc.Itinerary)

	busy := do(h, jsonSubmit("https://www.youtube.com/watch?v=zzzzzzzzzzz"), c)
	assert.Equal(t, http.StatusConflict, busy.Code)

	pending := do(h, httptest.NewRequest(http.MethodGet, "/", nil), c)
	assert.Contains(t, pending.Body.String(), `disabled aria-busy="true"`)

	gate.Release()

	assert.Eventually(t, func() bool {
		st := decodeScreen(t, do(h, httptest.NewRequest(http.MethodGet, "/state", nil), c))
		return st.Phase == domain.PhaseSuccess
	}, 2*time.Second, 10*time.Millisecond)

	final := decodeScreen(t, do(h, httptest.NewRequest(http.MethodGet, "/state", nil), c))
	require.NotNil(t, final.Itinerary)
	assert.Equal(t, "Porto Weekend", final.Itinerary.Header.Title)
	assert.Equal(t, "https://www.youtube.com/watch?v=abcdefghijk", final.URL)

	body := do(h, httptest.NewRequest(http.MethodGet, "/", nil), c).Body.String()
	assert.Contains(t, body, "Day 1: Ribeira")
	assert.Contains(t, body, "<strong>upper deck</strong>")

	reset := httptest.NewRequest(http.MethodPost, "/reset", nil)
	reset.Header.Set("Accept", "application/json")
	rr = do(h, reset, c)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, domain.PhaseIdle, decodeScreen(t, rr).Phase)
}

func TestSubmit_Form(t *testing.T) {
	h, _ := newHandler(t, instant)
	c := sessionCookie(t, do(h, httptest.NewRequest(http.MethodGet, "/", nil)))

	form := url.Values{"url": {"https://youtu.be/abcdefghijk"}}
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := do(h, req, c)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
}

func TestSubmit_BlankURL(t *testing.T) {
	h, _ := newHandler(t, instant)
	c := sessionCookie(t, do(h, httptest.NewRequest(http.MethodGet, "/", nil)))

	form := url.Values{"url": {"   "}}
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusSeeOther, do(h, req, c).Code)

	rr := do(h, jsonSubmit(""), c)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	st := decodeScreen(t, do(h, httptest.NewRequest(http.MethodGet, "/state", nil), c))
	assert.Equal(t, domain.PhaseIdle, st.Phase)
}

func TestSubmit_InvalidJSON(t *testing.T) {
	h, _ := newHandler(t, instant)
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(`{"url":`))
	req.Header.Set("Content-Type", "application/json")

	rr := do(h, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSubmit_RateLimited(t *testing.T) {
	h, _ := newHandler(t, instant, httpAdapter.WithRateLimit(0.001, 1))
	c := sessionCookie(t, do(h, httptest.NewRequest(http.MethodGet, "/", nil)))

	first := do(h, jsonSubmit("https://youtu.be/abcdefghijk"), c)
	assert.Equal(t, http.StatusAccepted, first.Code)

	second := do(h, jsonSubmit("https://youtu.be/abcdefghijk"), c)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestSubmit_RateLimitedWithoutCookies(t *testing.T) {
	h, sessions := newHandler(t, instant, httpAdapter.WithRateLimit(0.001, 2))

	var codes []int
	for range 5 {
		codes = append(codes, do(h, jsonSubmit("https://youtu.be/abcdefghijk")).Code)
	}
	assert.Equal(t, []int{
		http.StatusAccepted, http.StatusAccepted,
		http.StatusTooManyRequests, http.StatusTooManyRequests, http.StatusTooManyRequests,
	}, codes)
	assert.Equal(t, 2, sessions.Len(), "limited requests must not create sessions")

	other := jsonSubmit("https://youtu.be/abcdefghijk")
	other.RemoteAddr = "198.51.100.7:4242"
	assert.Equal(t, http.StatusAccepted, do(h, other).Code)
}

func TestFailureBanner(t *testing.T) {
	failing := ports.GeneratorFunc(func(context.Context, string) (*domain.Itinerary, error) {
		return nil, &domain.EmbeddedError{Message: "Could not fetch transcript"}
	})
	h, _ := newHandler(t, failing)
	c := sessionCookie(t, do(h, httptest.NewRequest(http.MethodGet, "/", nil)))

	require.Equal(t, http.StatusAccepted, do(h, jsonSubmit("https://youtu.be/abcdefghijk"), c).Code)

	assert.Eventually(t, func() bool {
		st := decodeScreen(t, do(h, httptest.NewRequest(http.MethodGet, "/state", nil), c))
		return st.Phase == domain.PhaseFailed
	}, 2*time.Second, 10*time.Millisecond)

	body := do(h, httptest.NewRequest(http.MethodGet, "/", nil), c).Body.String()
	assert.Contains(t, body, `role="alert"`)
	assert.Contains(t, body, "Could not fetch transcript")
}

func TestGetState_Fragment(t *testing.T) {
	h, _ := newHandler(t, instant)
	c := sessionCookie(t, do(h, httptest.NewRequest(http.MethodGet, "/", nil)))
	require.Equal(t, http.StatusAccepted, do(h, jsonSubmit("https://youtu.be/abcdefghijk"), c).Code)

	assert.Eventually(t, func() bool {
		return decodeScreen(t, do(h, httptest.NewRequest(http.MethodGet, "/state", nil), c)).Phase == domain.PhaseSuccess
	}, 2*time.Second, 10*time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	req.Header.Set("HX-Request", "true")
	rr := do(h, req, c)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), "Porto Weekend")
	assert.NotContains(t, rr.Body.String(), "<form")
}

func TestMetricsRoute(t *testing.T) {
	h, _ := newHandler(t, instant)
	assert.Equal(t, http.StatusNotFound, do(h, httptest.NewRequest(http.MethodGet, "/metrics", nil)).Code)

	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("tripreel_up 1\n"))
	})
	h, _ = newHandler(t, instant, httpAdapter.WithMetrics(metrics))
	rr := do(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "tripreel_up")
}

func TestCORS(t *testing.T) {
	h, _ := newHandler(t, instant, httpAdapter.WithAllowedOrigins("https://app.example"))

	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	req.Header.Set("Origin", "https://app.example")
	rr := do(h, req)
	assert.Equal(t, "https://app.example", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/state", nil)
	req.Header.Set("Origin", "https://evil.example")
	rr = do(h, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestSubscribeEvents(t *testing.T) {
	gate := testutils.NewGate(t, testutils.SampleItinerary(), nil)
	h, _ := newHandler(t, gate)
	srv := httptest.NewServer(h)
	defer srv.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	phases := make(chan domain.Phase, 8)
	go func() {
		defer close(phases)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data: {") {
				continue
			}
			var sc render.Screen
			if json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &sc) == nil {
				phases <- sc.Phase
			}
		}
	}()

	assert.Equal(t, domain.PhaseIdle, <-phases)

	sub, err := http.NewRequest(http.MethodPost, srv.URL+"/submit", strings.NewReader(`{"url":"https://youtu.be/abcdefghijk"}`))
	require.NoError(t, err)
	sub.Header.Set("Content-Type", "application/json")
	subResp, err := client.Do(sub)
	require.NoError(t, err)
	subResp.Body.Close()
	require.Equal(t, http.StatusAccepted, subResp.StatusCode)

	assert.Equal(t, domain.PhasePending, <-phases)
	gate.Release()
	assert.Equal(t, domain.PhaseSuccess, <-phases)
}

func TestRateLimiter(t *testing.T) {
	rl := httpAdapter.NewRateLimiter(0.001, 2)

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "keys are limited independently")
	assert.Equal(t, 2, rl.Len())
}
