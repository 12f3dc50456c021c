package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"strings"

	"github.com/aretw0/tripreel"
	"github.com/aretw0/tripreel/internal/logging"
	"github.com/aretw0/tripreel/internal/presentation/web"
	"github.com/aretw0/tripreel/pkg/domain"
	"github.com/aretw0/tripreel/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// CookieName holds the session ID.
const CookieName = "tripreel_session"

const maxFormBytes = 16 << 10

// Server handles the web interface routes.
type Server struct {
	sessions *session.Manager
	pages    *web.Presenter
	limiter  *RateLimiter
	metrics  http.Handler
	origins  []string
	logger   *slog.Logger
	version  string
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRateLimit limits submissions per session. A non-positive rate disables
// the limit.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *Server) {
		if perSecond > 0 {
			s.limiter = NewRateLimiter(perSecond, burst)
		}
	}
}

// WithMetrics mounts h on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithAllowedOrigins restricts cross-origin access to the JSON routes.
// Without it any origin may read them.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// NewServer builds the server around a session manager.
func NewServer(sessions *session.Manager, opts ...Option) (*Server, error) {
	pages, err := web.New()
	if err != nil {
		return nil, err
	}
	s := &Server{
		sessions: sessions,
		pages:    pages,
		logger:   logging.NewNop(),
		version:  tripreel.Version,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/", s.GetPage)
	r.Post("/submit", s.Submit)
	r.Post("/reset", s.Reset)
	r.Get("/state", s.GetState)
	r.Get("/events", s.SubscribeEvents)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	c := cors.Default()
	if len(s.origins) > 0 {
		c = cors.New(cors.Options{
			AllowedOrigins:   s.origins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost},
			AllowedHeaders:   []string{"Content-Type", "Accept"},
			AllowCredentials: true,
		})
	}
	return c.Handler(r)
}

// NewHandler is a shortcut for NewServer followed by Handler.
func NewHandler(sessions *session.Manager, opts ...Option) (http.Handler, error) {
	s, err := NewServer(sessions, opts...)
	if err != nil {
		return nil, err
	}
	return s.Handler(), nil
}

// GetPage renders the HTML page for the caller's session.
func (s *Server) GetPage(w http.ResponseWriter, r *http.Request) {
	_, planner, ok := s.session(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	err := s.pages.Page(&buf, web.PageData{
		Screen:    planner.Screen(),
		Version:   s.version,
		EventsURL: "/events",
		SubmitURL: "/submit",
	})
	if err != nil {
		s.logger.Error("page render failed", "err", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

type submitRequest struct {
	URL string `json:"url"`
}

// Submit starts a request. Browsers are redirected back to the page; JSON
// clients get the resulting screen.
func (s *Server) Submit(w http.ResponseWriter, r *http.Request) {
	if client := clientAddr(r); s.limiter != nil && !s.limiter.Allow(client) {
		s.logger.Warn("submission rate limited", "client", client)
		s.fail(w, r, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		return
	}

	_, planner, ok := s.session(w, r)
	if !ok {
		return
	}

	videoURL, err := readURL(w, r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	_, err = planner.Start(r.Context(), videoURL)
	switch {
	case errors.Is(err, domain.ErrEmptyURL):
		s.fail(w, r, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, domain.ErrBusy):
		s.fail(w, r, http.StatusConflict, err.Error())
		return
	case err != nil:
		s.fail(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusAccepted, planner.Screen())
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Reset clears the last outcome of the session.
func (s *Server) Reset(w http.ResponseWriter, r *http.Request) {
	_, planner, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := planner.Reset(); err != nil {
		s.fail(w, r, http.StatusConflict, err.Error())
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, planner.Screen())
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// GetState returns the session's screen as JSON, or as the HTML result
// fragment for partial-page clients.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	_, planner, ok := s.session(w, r)
	if !ok {
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	if wantsFragment(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := s.pages.Result(w, planner.Screen()); err != nil {
			s.logger.Error("GetState: render fragment", "err", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, planner.Screen())
}

// wantsFragment reports partial-page requests (HTMX or an explicit Accept: text/html).
func wantsFragment(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true" || strings.HasPrefix(r.Header.Get("Accept"), "text/html")
}

// GetHealth reports liveness.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo reports build information.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"app":      "tripreel-web",
		"version":  s.version,
		"sessions": s.sessions.Len(),
	})
}

// session resolves the caller's session, issuing a cookie for new ones.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (string, *tripreel.Planner, bool) {
	var current string
	if c, err := r.Cookie(CookieName); err == nil {
		current = c.Value
	}

	id, planner, err := s.sessions.LoadOrCreate(current)
	if err != nil {
		s.logger.Error("session init failed", "err", err)
		http.Error(w, "Failed to initialize session", http.StatusInternalServerError)
		return "", nil, false
	}
	if id != current {
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return id, planner, true
}

// clientAddr is the rate-limit key: the peer host without its port.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if wantsJSON(r) {
		writeJSON(w, status, map[string]string{"error": msg})
		return
	}
	if status == http.StatusBadRequest || status == http.StatusConflict {
		// The page already reflects the unchanged state.
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Error(w, msg, status)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func readURL(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if isJSON(r.Header.Get("Content-Type")) {
		var body submitRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", fmt.Errorf("decode body: %w", err)
		}
		return body.URL, nil
	}
	if err := r.ParseForm(); err != nil {
		return "", err
	}
	return r.PostFormValue("url"), nil
}

func wantsJSON(r *http.Request) bool {
	return isJSON(r.Header.Get("Content-Type")) || strings.Contains(r.Header.Get("Accept"), "application/json")
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "application/json"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
