package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/daybook/internal/theme"
)

// Frame sizes the three stacked regions of the board screen: a one-line
// title bar, the body and a one-line status bar.
type Frame struct {
	Width  int
	Height int
}

// NewFrame returns a Frame for a terminal of the given size.
func NewFrame(width, height int) Frame {
	return Frame{Width: width, Height: height}
}

// BodyWidth is the width available to the active view.
func (f Frame) BodyWidth() int {
	return f.Width
}

// BodyHeight is the height left once the title and status bars are drawn.
func (f Frame) BodyHeight() int {
	if h := f.Height - 2; h > 0 {
		return h
	}
	return 0
}

// TitleBar shows title on the left and status pinned to the right edge.
func (f Frame) TitleBar(title, status string) string {
	left := theme.HeaderStyle.Render(title)
	right := theme.HeaderStyle.Align(lipgloss.Right).Render(status)
	pad := f.pad(theme.HeaderStyle, f.Width-lipgloss.Width(left)-lipgloss.Width(right))
	return lipgloss.JoinHorizontal(lipgloss.Top, left, pad, right)
}

// StatusBar shows key hints, or notice in their place when one is active.
func (f Frame) StatusBar(hints, notice string) string {
	text := theme.StatusBarStyle.Render(hints)
	if notice != "" {
		text = theme.NoticeStyle.Render(notice)
	}
	pad := f.pad(theme.StatusBarStyle, f.Width-lipgloss.Width(text))
	return lipgloss.JoinHorizontal(lipgloss.Top, text, pad)
}

// Compose stacks the title bar, body and status bar.
func (f Frame) Compose(title, body, status string) string {
	return lipgloss.JoinVertical(lipgloss.Left, title, body, status)
}

// pad fills n cells with the background of bar.
func (f Frame) pad(bar lipgloss.Style, n int) string {
	if n < 0 {
		n = 0
	}
	return bar.Render(lipgloss.NewStyle().
		Width(n).
		Background(bar.GetBackground()).
		Render(""))
}
