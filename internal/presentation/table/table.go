// Package table renders itinerary views as a terminal table.
package table

import (
	"strings"

	"github.com/aretw0/tripreel/pkg/render"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Render returns one row per activity, grouped by day in sequence order.
// Days without activities still get a row so every day is listed.
func Render(v render.View) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(v.Header.Title)
	tw.AppendHeader(table.Row{"Day", "Time", "Activity", "Description"})

	for _, day := range v.Days {
		if day.Empty() {
			tw.AppendRow(table.Row{day.Label, "", "", ""})
			continue
		}
		for _, e := range day.Timeline {
			label := ""
			if e.First {
				label = day.Label
			}
			tw.AppendRow(table.Row{label, e.Time, e.Activity, strings.TrimSpace(e.Description)})
		}
		tw.AppendSeparator()
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, WidthMax: 24},
		{Number: 2, Align: text.AlignLeft, WidthMax: 14},
		{Number: 3, Align: text.AlignLeft, WidthMax: 30},
		{Number: 4, Align: text.AlignLeft, WidthMax: 60},
	})

	out := tw.Render()
	if s := strings.TrimSpace(v.Header.Summary); s != "" {
		out += "\n" + s
	}
	return out
}
