package watch

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/table"

	"github.com/mattjoyce/mira-bridge/internal/events"
)

// EntryState aggregates completed calls to one entry point.
type EntryState struct {
	Name       string
	Calls      int
	Failures   int
	LastTarget string
	LastMS     int64
	LastOK     bool
	LastAt     time.Time
}

// updateEntryState folds a dispatch event into the per-entry stats.
func updateEntryState(entries map[string]*EntryState, e events.Event) {
	if e.Type != events.TypeDispatch {
		return
	}
	var d events.Dispatch
	if err := json.Unmarshal(e.Data, &d); err != nil || d.Entry == "" {
		return
	}
	st, ok := entries[d.Entry]
	if !ok {
		st = &EntryState{Name: d.Entry}
		entries[d.Entry] = st
	}
	st.Calls++
	if !d.OK {
		st.Failures++
	}
	st.LastTarget = d.Target
	st.LastMS = d.DurationMS
	st.LastOK = d.OK
	st.LastAt = e.At
}

func entryColumns(width int) []table.Column {
	target := width - 4 - 28 - 7 - 7 - 9 - 6 - 12
	if target < 10 {
		target = 10
	}
	return []table.Column{
		{Title: "Entry", Width: 28},
		{Title: "Calls", Width: 7},
		{Title: "Fail", Width: 7},
		{Title: "Last", Width: 9},
		{Title: "ms", Width: 6},
		{Title: "Target", Width: target},
	}
}

// entryRows renders the stats sorted by entry name.
func entryRows(entries map[string]*EntryState) []table.Row {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]table.Row, 0, len(names))
	for _, name := range names {
		st := entries[name]
		last := "ok"
		if !st.LastOK {
			last = "error"
		}
		rows = append(rows, table.Row{
			st.Name,
			fmt.Sprintf("%d", st.Calls),
			fmt.Sprintf("%d", st.Failures),
			last,
			fmt.Sprintf("%d", st.LastMS),
			truncate(st.LastTarget, 40),
		})
	}
	return rows
}

func newEntryTable(theme Theme) table.Model {
	t := table.New(
		table.WithColumns(entryColumns(80)),
		table.WithFocused(true),
		table.WithHeight(8),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.Foreground(theme.Header.GetForeground()).Bold(true)
	s.Selected = s.Selected.Foreground(theme.Highlight.GetForeground()).Bold(false)
	t.SetStyles(s)
	return t
}
