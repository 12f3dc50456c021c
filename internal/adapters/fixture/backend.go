package fixture

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/tripreel/internal/logging"
	"github.com/aretw0/tripreel/pkg/schema"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPISpec []byte

// OpenAPISpec returns the embedded contract document.
func OpenAPISpec() []byte {
	return openAPISpec
}

var videoIDPattern = regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})`)

// VideoID extracts the 11-character video ID from a URL.
func VideoID(videoURL string) (string, bool) {
	m := videoIDPattern.FindStringSubmatch(videoURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Kind tells how a fixture is served.
type Kind string

const (
	KindItinerary Kind = "itinerary"
	KindEmbedded  Kind = "embedded"
	KindStatus    Kind = "status"
)

// Fixture is one canned response.
type Fixture struct {
	VideoID string
	Kind    Kind
	Status  int
	Detail  string
	Body    map[string]any
	Source  string
}

// Backend answers GET /api/generate from loaded fixtures.
type Backend struct {
	fixtures map[string]Fixture
	logger   *slog.Logger
	delay    time.Duration
}

// Option configures the Backend.
type Option func(*Backend)

// WithLogger sets the backend logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Backend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithDelay makes every answer wait d, to mimic a slow model.
func WithDelay(d time.Duration) Option {
	return func(b *Backend) {
		b.delay = d
	}
}

// Load reads every .yaml, .yml and .json file in dir.
func Load(dir string, opts ...Option) (*Backend, error) {
	itinerarySchema, err := loadItinerarySchema()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}

	b := &Backend{
		fixtures: make(map[string]Fixture),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		f, err := readFixture(path, ext)
		if err != nil {
			return nil, err
		}
		if f.Kind == KindItinerary {
			if err := validate(itinerarySchema, f.Body); err != nil {
				return nil, fmt.Errorf("fixture %s does not match the itinerary schema: %w", path, err)
			}
		}
		if prev, dup := b.fixtures[f.VideoID]; dup {
			return nil, fmt.Errorf("duplicate fixture for %s: %s and %s", f.VideoID, prev.Source, f.Source)
		}
		b.fixtures[f.VideoID] = f
	}

	b.logger.Debug("fixtures loaded", "dir", dir, "count", len(b.fixtures))
	return b, nil
}

func readFixture(path, ext string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var raw map[string]any
	if ext == ".json" {
		err = json.Unmarshal(data, &raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return Fixture{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if raw == nil {
		return Fixture{}, fmt.Errorf("fixture %s is empty", path)
	}

	name := filepath.Base(path)
	f := Fixture{
		VideoID: strings.TrimSuffix(name, filepath.Ext(name)),
		Body:    raw,
		Source:  path,
	}

	switch {
	case raw["status"] != nil:
		status, ok := asInt(raw["status"])
		if !ok || status < 100 || status > 599 {
			return Fixture{}, fmt.Errorf("fixture %s: invalid status %v", path, raw["status"])
		}
		f.Kind = KindStatus
		f.Status = status
		f.Detail = schema.Detail(raw)
	case raw["error"] != nil:
		f.Kind = KindEmbedded
		f.Status = http.StatusOK
	default:
		f.Kind = KindItinerary
		f.Status = http.StatusOK
	}
	return f, nil
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), n == float64(int(n))
	}
	return 0, false
}

func loadItinerarySchema() (*openapi3.Schema, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openAPISpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi document: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	ref, ok := doc.Components.Schemas["Itinerary"]
	if !ok || ref.Value == nil {
		return nil, fmt.Errorf("openapi document has no Itinerary schema")
	}
	return ref.Value, nil
}

// validate checks body against s. YAML values are normalized through JSON
// first so numbers and maps have the shapes the validator expects.
func validate(s *openapi3.Schema, body map[string]any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	return s.VisitJSON(value)
}

// VideoIDs lists the loaded fixtures in sorted order.
func (b *Backend) VideoIDs() []string {
	ids := make([]string, 0, len(b.fixtures))
	for id := range b.fixtures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Lookup returns the fixture for a video ID.
func (b *Backend) Lookup(videoID string) (Fixture, bool) {
	f, ok := b.fixtures[videoID]
	return f, ok
}

// Handler routes the generation contract plus /openapi.yaml and /health.
func (b *Backend) Handler() http.Handler {
	return HandlerFromMux(b, chi.NewRouter(), func(w http.ResponseWriter, r *http.Request, err error) {
		b.logger.Info("fixture request rejected", "err", err)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": err.Error()})
	})
}

// GetOpenAPI serves the embedded contract document.
func (b *Backend) GetOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(openAPISpec)
}

// GetHealth reports liveness and the number of loaded fixtures.
func (b *Backend) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "fixtures": len(b.fixtures)})
}

// GenerateItinerary serves GET /api/generate?url=...
func (b *Backend) GenerateItinerary(w http.ResponseWriter, r *http.Request, params GenerateItineraryParams) {
	videoURL := params.Url
	id, ok := VideoID(videoURL)
	if !ok {
		b.logger.Info("fixture request rejected", "url", videoURL)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": "could not extract a video id from " + videoURL})
		return
	}

	if err := b.wait(r.Context()); err != nil {
		return
	}

	f, ok := b.fixtures[id]
	if !ok {
		b.logger.Info("no fixture", "video_id", id)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": "no transcript available for " + id})
		return
	}

	b.logger.Debug("serving fixture", "video_id", id, "kind", f.Kind, "status", f.Status)
	switch f.Kind {
	case KindStatus:
		if f.Detail == "" {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(f.Status)
			fmt.Fprintf(w, "<html><body><h1>%d %s</h1></body></html>", f.Status, http.StatusText(f.Status))
			return
		}
		writeJSON(w, f.Status, map[string]any{"detail": f.Detail})
	default:
		writeJSON(w, f.Status, f.Body)
	}
}

func (b *Backend) wait(ctx context.Context) error {
	if b.delay <= 0 {
		return nil
	}
	t := time.NewTimer(b.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
