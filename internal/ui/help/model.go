// Package help renders the shortcut overlay.
package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/daybook/internal/keys"
	"github.com/nhle/daybook/internal/theme"
)

// sectionTitles names the groups returned by KeyMap.FullHelp, in order.
var sectionTitles = []string{"Move", "Edit", "Task", "App"}

const footer = "Past days are read-only. Opening today carries unfinished tasks forward."

// Model lists every board shortcut grouped by what it acts on.
type Model struct {
	keys   *keys.KeyMap
	width  int
	height int
}

func New(k *keys.KeyMap, width, height int) Model {
	return Model{keys: k, width: width, height: height}
}

func (m Model) Init() tea.Cmd { return nil }

// Update is a no-op; the app closes the overlay.
func (m Model) Update(tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("Keyboard shortcuts")

	var columns []string
	for i, group := range m.keys.FullHelp() {
		name := ""
		if i < len(sectionTitles) {
			name = sectionTitles[i]
		}
		columns = append(columns, renderSection(name, group))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, columns...)
	if lipgloss.Width(body) > m.width-4 {
		body = lipgloss.JoinVertical(lipgloss.Left, columns...)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		title, body, "", theme.HelpStyle.Render(footer))

	return theme.DetailPanelStyle.
		Width(max(m.width-4, 0)).
		Height(max(m.height-4, 0)).
		Render(content)
}

// renderSection lays out one group as "key  description" lines.
func renderSection(name string, bindings []key.Binding) string {
	var b strings.Builder
	b.WriteString(theme.Key.Render(name))
	for _, binding := range bindings {
		if !binding.Enabled() {
			continue
		}
		h := binding.Help()
		b.WriteString("\n")
		b.WriteString(theme.Key.Render(padRight(h.Key, 8)))
		b.WriteString(theme.HelpStyle.Render(h.Desc))
	}
	return lipgloss.NewStyle().MarginRight(4).Render(b.String())
}

func padRight(s string, n int) string {
	if w := lipgloss.Width(s); w < n {
		return s + strings.Repeat(" ", n-w)
	}
	return s
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
