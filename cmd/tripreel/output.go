package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/tripreel/internal/presentation/graph"
	"github.com/aretw0/tripreel/internal/presentation/markdown"
	"github.com/aretw0/tripreel/internal/presentation/table"
	"github.com/aretw0/tripreel/internal/presentation/tui"
	"github.com/aretw0/tripreel/pkg/domain"
	"github.com/aretw0/tripreel/pkg/render"
)

var formats = []string{"markdown", "table", "json", "mermaid"}

// formatter renders a successful state for stdout.
type formatter func(state domain.State) (string, error)

func formatterFor(name string, out *os.File) (formatter, error) {
	switch strings.ToLower(name) {
	case "", "markdown", "md":
		style := tui.ForOutput(out)
		return func(state domain.State) (string, error) {
			return style(markdown.Render(render.Render(state.Itinerary)))
		}, nil
	case "table":
		return func(state domain.State) (string, error) {
			return table.Render(render.Render(state.Itinerary)) + "\n", nil
		}, nil
	case "json":
		return func(state domain.State) (string, error) {
			data, err := json.MarshalIndent(state.Itinerary, "", "  ")
			if err != nil {
				return "", err
			}
			return string(data) + "\n", nil
		}, nil
	case "mermaid":
		return func(state domain.State) (string, error) {
			return graph.GenerateMermaid(render.Render(state.Itinerary), nil), nil
		}, nil
	}
	return nil, fmt.Errorf("unknown format %q (supported: %s)", name, strings.Join(formats, ", "))
}
