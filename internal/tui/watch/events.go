package watch

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mattjoyce/mira-bridge/internal/events"
)

const visibleEvents = 10

func renderEventStream(eventLog []events.Event, theme Theme, width int) string {
	innerWidth := width - 4

	if len(eventLog) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			theme.Title.Render("ACTIVITY"),
			theme.Dim.Render("  Waiting for activity..."),
		)
		return theme.Border.Width(innerWidth).Render(content)
	}

	lines := make([]string, 0, visibleEvents)
	for i, e := range eventLog {
		if i >= visibleEvents {
			break
		}
		lines = append(lines, formatEvent(e, theme))
	}

	eventsText := lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(lines, "\n"))
	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.Title.Render("ACTIVITY"),
		eventsText,
	)

	return theme.Border.Width(innerWidth).Render(content)
}

func formatEvent(e events.Event, theme Theme) string {
	ts := theme.Dim.Render(e.At.Format("15:04:05"))

	typeStyle := theme.Dim
	desc := truncate(string(e.Data), 60)

	switch e.Type {
	case events.TypeDispatch:
		var d events.Dispatch
		if err := json.Unmarshal(e.Data, &d); err == nil {
			typeStyle = theme.StatusOK
			if !d.OK {
				typeStyle = theme.StatusFailed
			}
			desc = describeDispatch(d)
		}
	case events.TypeWindowAttached, events.TypeWindowDetached:
		typeStyle = theme.Highlight
	}

	typeName := typeStyle.Render(fmt.Sprintf("%-20s", e.Type))
	return fmt.Sprintf("%s %s %s", ts, typeName, desc)
}

func describeDispatch(d events.Dispatch) string {
	parts := []string{d.Entry}
	if d.Kind != "" {
		parts = append(parts, "("+d.Kind+")")
	}
	if d.Target != "" {
		parts = append(parts, truncate(d.Target, 30))
	}
	parts = append(parts, fmt.Sprintf("%dms", d.DurationMS), truncate(d.Message, 40))
	return strings.Join(parts, " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
