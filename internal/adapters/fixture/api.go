package fixture

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// GenerateItineraryParams are the query parameters of generateItinerary.
type GenerateItineraryParams struct {
	// Url is the video URL, percent-encoded.
	Url string `form:"url" json:"url"`
}

// ServerInterface lists the operations of openapi.yaml.
type ServerInterface interface {
	// (GET /api/generate)
	GenerateItinerary(w http.ResponseWriter, r *http.Request, params GenerateItineraryParams)
	// (GET /openapi.yaml)
	GetOpenAPI(w http.ResponseWriter, r *http.Request)
	// (GET /health)
	GetHealth(w http.ResponseWriter, r *http.Request)
}

var _ ServerInterface = (*Backend)(nil)

// ParamErrorHandler reports a query parameter that could not be bound.
type ParamErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type serverWrapper struct {
	handler ServerInterface
	onError ParamErrorHandler
}

func (sw *serverWrapper) GenerateItinerary(w http.ResponseWriter, r *http.Request) {
	var params GenerateItineraryParams
	if err := runtime.BindQueryParameter("form", true, true, "url", r.URL.Query(), &params.Url); err != nil {
		sw.onError(w, r, err)
		return
	}
	sw.handler.GenerateItinerary(w, r, params)
}

// HandlerFromMux mounts si on r, binding query parameters per openapi.yaml.
func HandlerFromMux(si ServerInterface, r chi.Router, onError ParamErrorHandler) http.Handler {
	sw := &serverWrapper{handler: si, onError: onError}
	r.Get("/api/generate", sw.GenerateItinerary)
	r.Get("/openapi.yaml", si.GetOpenAPI)
	r.Get("/health", si.GetHealth)
	return r
}
