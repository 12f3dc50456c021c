// Package mcp exposes itinerary generation as a Model Context Protocol server.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/tripreel"
	"github.com/aretw0/tripreel/internal/logging"
	"github.com/aretw0/tripreel/internal/presentation/markdown"
	"github.com/aretw0/tripreel/pkg/domain"
	"github.com/aretw0/tripreel/pkg/render"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/cors"
)

const latestURI = "tripreel://itinerary/latest"

// GenerateResponse is the structured result of generate_itinerary.
type GenerateResponse struct {
	URL       string       `json:"url" jsonschema_description:"The submitted video URL"`
	Itinerary *render.View `json:"itinerary" jsonschema_description:"The rendered itinerary: header and ordered days"`
	Days      int          `json:"days" jsonschema_description:"Number of days in the itinerary"`
}

// Planner is the part of tripreel.Planner the server needs.
type Planner interface {
	Plan(ctx context.Context, videoURL string) (domain.State, error)
	State() domain.State
	Screen() render.Screen
}

var _ Planner = (*tripreel.Planner)(nil)

// Server wraps a Planner and exposes it as an MCP server.
type Server struct {
	planner   Planner
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger. It must not write to stdout when
// serving over stdio.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP server instance.
func NewServer(planner Planner, opts ...Option) *Server {
	s := &Server{
		planner:   planner,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("tripreel-mcp", tripreel.Version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx
// is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           cors.AllowAll().Handler(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	generateTool := mcp.NewTool("generate_itinerary",
		mcp.WithDescription("Generate a day-by-day travel itinerary from a travel video URL. "+
			"Only one generation runs at a time; the call blocks until the backend answers."),
		mcp.WithString("url", mcp.Required(), mcp.Description("The video URL, e.g. https://www.youtube.com/watch?v=...")),
		mcp.WithOutputSchema[GenerateResponse](),
	)
	s.mcpServer.AddTool(generateTool, s.handleGenerate)

	stateTool := mcp.NewTool("get_state",
		mcp.WithDescription("Return the current lifecycle screen: phase, banner and last itinerary."),
		mcp.WithOutputSchema[render.Screen](),
	)
	s.mcpServer.AddTool(stateTool, mcp.NewStructuredToolHandler(s.handleGetState))
}

func (s *Server) handleGenerate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	videoURL, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	state, err := s.planner.Plan(ctx, videoURL)
	switch {
	case errors.Is(err, domain.ErrBusy):
		return mcp.NewToolResultError("An itinerary is already being generated. Try again when it finishes."), nil
	case err != nil:
		return mcp.NewToolResultError(err.Error()), nil
	}

	if state.Phase == domain.PhaseFailed {
		s.logger.Info("MCP generate failed", "kind", state.Kind, "message", state.Message)
		return mcp.NewToolResultError(render.ScreenFor(state).Banner), nil
	}

	view := render.Render(state.Itinerary)
	resp := GenerateResponse{
		URL:       state.URL,
		Itinerary: &view,
		Days:      len(view.Days),
	}
	return mcp.NewToolResultStructured(resp, markdown.Render(view)), nil
}

func (s *Server) handleGetState(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (render.Screen, error) {
	return s.planner.Screen(), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(latestURI, "Current itinerary",
		mcp.WithResourceDescription("The itinerary of the current successful request as Markdown"),
		mcp.WithMIMEType("text/markdown"),
	), s.readLatest)
}

func (s *Server) readLatest(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	state := s.planner.State()
	if state.Phase != domain.PhaseSuccess {
		return nil, fmt.Errorf("no itinerary available (phase: %s)", state.Phase)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      latestURI,
			MIMEType: "text/markdown",
			Text:     markdown.Render(render.Render(state.Itinerary)),
		},
	}, nil
}
