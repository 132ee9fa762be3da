package board

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/daybook/internal/daykey"
	"github.com/nhle/daybook/internal/model"
	"github.com/nhle/daybook/internal/theme"
)

// progressBarWidth is the number of cells in a row's progress bar.
const progressBarWidth = 10

// SnapshotItem wraps a model.Snapshot so it can be used in a bubbles/list.
type SnapshotItem struct {
	Snapshot model.Snapshot
	ReadOnly bool
}

// FilterValue returns the string used for fuzzy filtering.
func (i SnapshotItem) FilterValue() string { return i.Snapshot.Title }

// Title returns the snapshot title for the list.
func (i SnapshotItem) Title() string { return i.Snapshot.Title }

// Description returns a short summary line for the list.
func (i SnapshotItem) Description() string {
	var parts []string
	if i.Snapshot.DueAt != nil {
		parts = append(parts, "due "+daykey.FormatMoment(*i.Snapshot.DueAt))
	}
	if i.Snapshot.NotifyAt != nil {
		parts = append(parts, "remind "+daykey.FormatMoment(*i.Snapshot.NotifyAt))
	}
	return strings.Join(parts, " | ")
}

// ItemDelegate implements list.ItemDelegate for snapshot rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single snapshot line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(SnapshotItem)
	if !ok {
		return
	}
	snap := it.Snapshot

	prefix := "○"
	if snap.IsComplete() {
		prefix = "✓"
	}

	bar := theme.ProgressBar(snap.Progress, progressBarWidth)

	var extras string
	if snap.Note != "" {
		extras += lipgloss.NewStyle().Foreground(theme.ColorMagenta).Render(" ✎")
	}
	if snap.NotifyAt != nil {
		style := lipgloss.NewStyle().Foreground(theme.ColorGray)
		if snap.NotificationID != "" {
			style = style.Foreground(theme.ColorOrange)
		}
		extras += style.Render(" ⏰ " + snap.NotifyAt.In(daykey.Zone()).Format("15:04"))
	}
	if snap.DueAt != nil {
		extras += theme.DimmedStyle.Render(" due " + snap.DueAt.In(daykey.Zone()).Format("01/02 15:04"))
	}

	line := fmt.Sprintf("%s %s %s%s", prefix, bar, snap.Title, extras)

	if snap.IsComplete() || it.ReadOnly {
		line = theme.DimmedStyle.Render(line)
	}

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}
