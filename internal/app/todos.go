package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/daybook/internal/todo"
	"github.com/nhle/daybook/internal/ui/board"
)

// saveDetail applies a detail form submission and reports back through
// the board so it reloads.
func (m *Model) saveDetail(id string, d todo.Detail) tea.Cmd {
	t := m.todos
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return board.ChangedMsg{Err: t.SetDetail(ctx, id, d)}
	}
}
