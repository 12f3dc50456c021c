// Package markdown renders itinerary views as Markdown documents.
package markdown

import (
	"fmt"
	"strings"

	"github.com/aretw0/tripreel/pkg/domain"
	"github.com/aretw0/tripreel/pkg/render"
)

// Render writes the view as a Markdown document.
// An empty day list produces only the header.
func Render(v render.View) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n", oneLine(v.Header.Title))
	if s := strings.TrimSpace(v.Header.Summary); s != "" {
		fmt.Fprintf(&sb, "\n%s\n", s)
	}

	for _, day := range v.Days {
		fmt.Fprintf(&sb, "\n## %s\n", oneLine(day.Label))
		if day.Image != nil {
			fmt.Fprintf(&sb, "\n![%s](%s)\n", oneLine(day.Image.Alt), day.Image.URL)
		}
		if day.Empty() {
			continue
		}
		sb.WriteString("\n")
		for _, e := range day.Timeline {
			writeEntry(&sb, e)
		}
	}
	return sb.String()
}

func writeEntry(sb *strings.Builder, e render.Entry) {
	switch {
	case e.Time != "" && e.Activity != "":
		fmt.Fprintf(sb, "- **%s** · %s\n", oneLine(e.Time), oneLine(e.Activity))
	case e.Time != "":
		fmt.Fprintf(sb, "- **%s**\n", oneLine(e.Time))
	default:
		fmt.Fprintf(sb, "- %s\n", oneLine(e.Activity))
	}
	desc := strings.TrimSpace(e.Description)
	if desc == "" {
		return
	}
	for _, line := range strings.Split(desc, "\n") {
		if strings.TrimSpace(line) == "" {
			sb.WriteString("\n")
			continue
		}
		fmt.Fprintf(sb, "  %s\n", strings.TrimRight(line, " \t\r"))
	}
}

// Banner renders a failure message as a Markdown callout.
func Banner(message string) string {
	return fmt.Sprintf("> **Error:** %s\n", oneLine(message))
}

// Screen renders whatever the screen currently shows: the pending notice,
// the error banner or the itinerary.
func Screen(sc render.Screen) string {
	switch sc.Phase {
	case domain.PhasePending:
		return fmt.Sprintf("_Generating itinerary for %s…_\n", sc.URL)
	case domain.PhaseFailed:
		return Banner(sc.Banner)
	case domain.PhaseSuccess:
		if sc.Itinerary != nil {
			return Render(*sc.Itinerary)
		}
	}
	return ""
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
