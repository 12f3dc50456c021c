package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/tripreel/pkg/render"
)

// GraphOverlay highlights parts of the diagram.
type GraphOverlay struct {
	// CurrentDay is the key of a day to emphasize (e.g. "day-1").
	CurrentDay string
}

// GenerateMermaid produces a Mermaid flowchart of the itinerary.
// Each day becomes a subgraph whose activities are chained in sequence order;
// consecutive days are linked with a dotted edge.
// Shapes:
// - Header: ((Circle))
// - Day with image: [[Subroutine]]
// - Activity: [Rectangle]
func GenerateMermaid(v render.View, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString(fmt.Sprintf("    trip((\"%s\"))\n", escapeLabel(v.Header.Title)))

	prev := "trip"
	for _, day := range v.Days {
		dayID := sanitizeMermaidID(day.Key)

		opener, closer := "[", "]"
		if day.Image != nil {
			opener, closer = "[[", "]]"
		}

		sb.WriteString(fmt.Sprintf("    subgraph %s_group[\"%s\"]\n", dayID, escapeLabel(day.Label)))
		sb.WriteString(fmt.Sprintf("        %s%s\"%s\"%s\n", dayID, opener, escapeLabel(day.Label), closer))

		last := dayID
		for _, e := range day.Timeline {
			entryID := sanitizeMermaidID(e.Key)
			label := escapeLabel(e.Activity)
			if e.Time != "" {
				label = fmt.Sprintf("%s <br/> %s", escapeLabel(e.Time), label)
			}
			sb.WriteString(fmt.Sprintf("        %s[\"%s\"]\n", entryID, label))
			sb.WriteString(fmt.Sprintf("        %s --> %s\n", last, entryID))
			last = entryID
		}
		sb.WriteString("    end\n")

		arrow := "-.->"
		if prev == "trip" {
			arrow = "-->"
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", prev, arrow, dayID))
		prev = dayID
	}

	if overlay != nil && overlay.CurrentDay != "" {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentDay)))
	}

	return sb.String()
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
