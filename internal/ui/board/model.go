// Package board is the day view: the snapshots of one day with inline add,
// rename and progress editing.
package board

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/daybook/internal/daykey"
	"github.com/nhle/daybook/internal/keys"
	"github.com/nhle/daybook/internal/model"
	"github.com/nhle/daybook/internal/theme"
)

// progressStep is how much + and - move progress.
const progressStep = 10

// ErrReadOnly is reported when editing a snapshot of a past day.
var ErrReadOnly = errors.New("past days are read-only")

// Todos is the part of the todo store the board drives.
type Todos interface {
	Today() string
	ForDate(date string) []model.Snapshot
	IsReadOnly(snap model.Snapshot) bool
	Create(ctx context.Context, date, title string) (model.Snapshot, error)
	Rename(ctx context.Context, id, title string) error
	SetProgress(ctx context.Context, id string, p float64) error
	Remove(ctx context.Context, id string) error
	RolloverTo(ctx context.Context, date string) ([]model.Snapshot, error)
}

// LoadedMsg carries the snapshots of a day.
type LoadedMsg struct {
	Date      string
	Snapshots []model.Snapshot
	ReadOnly  []bool
	Carried   int
	Err       error
}

// ChangedMsg is sent after a mutation completes.
type ChangedMsg struct {
	Err error
}

// NoticeMsg asks the root model to show a message in the status bar.
type NoticeMsg struct {
	Text string
}

// OpenDetailMsg is sent when the user opens the detail form of a snapshot.
type OpenDetailMsg struct {
	Snapshot model.Snapshot
}

type inputMode int

const (
	inputNone inputMode = iota
	inputAdd
	inputRename
)

// Model is the day board component.
type Model struct {
	list     list.Model
	todos    Todos
	keys     *keys.KeyMap
	date     string
	input    textinput.Model
	mode     inputMode
	renameID string
	width    int
	height   int
}

// New creates a board showing today.
func New(t Todos, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	ti := textinput.New()
	ti.CharLimit = 200
	ti.Width = width - 4

	m := Model{
		list:   l,
		todos:  t,
		keys:   k,
		date:   t.Today(),
		input:  ti,
		width:  width,
		height: height,
	}
	m.list.Title = m.dayTitle()
	return m
}

// Init loads the current day.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Date returns the day key being shown.
func (m Model) Date() string {
	return m.date
}

// Typing reports whether the text input has focus, in which case global
// single-letter shortcuts must not be intercepted.
func (m Model) Typing() bool {
	return m.mode != inputNone
}

// Selected returns the highlighted snapshot.
func (m Model) Selected() (SnapshotItem, bool) {
	it, ok := m.list.SelectedItem().(SnapshotItem)
	return it, ok
}

// Update handles messages for the board.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.Date != m.date {
			return m, nil
		}
		items := make([]list.Item, len(msg.Snapshots))
		for i, snap := range msg.Snapshots {
			items[i] = SnapshotItem{Snapshot: snap, ReadOnly: i < len(msg.ReadOnly) && msg.ReadOnly[i]}
		}
		cmd := m.list.SetItems(items)
		if msg.Err != nil {
			return m, tea.Batch(cmd, notice(msg.Err.Error()))
		}
		if msg.Carried > 0 {
			return m, tea.Batch(cmd, notice(fmt.Sprintf("carried over %d unfinished", msg.Carried)))
		}
		return m, cmd

	case ChangedMsg:
		if msg.Err != nil {
			return m, tea.Batch(m.Load(), notice(msg.Err.Error()))
		}
		return m, m.Load()

	case tea.KeyMsg:
		if m.mode != inputNone {
			return m.handleInputKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleInputKeys processes key input while adding or renaming.
func (m Model) handleInputKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		mode, id, date := m.mode, m.renameID, m.date
		m.resetInput()
		if value == "" {
			return m, nil
		}
		if mode == inputRename {
			return m, m.mutate(func(ctx context.Context) error {
				return m.todos.Rename(ctx, id, value)
			})
		}
		return m, m.mutate(func(ctx context.Context) error {
			_, err := m.todos.Create(ctx, date, value)
			return err
		})

	case "esc":
		m.resetInput()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleNormalKeys processes navigation and editing shortcuts.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.PrevDay):
		return m.moveDays(-1)

	case key.Matches(msg, m.keys.NextDay):
		return m.moveDays(1)

	case key.Matches(msg, m.keys.Today):
		return m.showDate(m.todos.Today())

	case key.Matches(msg, m.keys.Add):
		if m.date < m.todos.Today() {
			return m, notice(ErrReadOnly.Error())
		}
		m.mode = inputAdd
		m.input.Reset()
		m.input.Prompt = "+ "
		m.input.Placeholder = "what needs doing?"
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Rename):
		it, ok := m.editable()
		if !ok {
			return m, m.readOnlyNotice()
		}
		m.mode = inputRename
		m.renameID = it.Snapshot.ID
		m.input.Prompt = "✎ "
		m.input.Placeholder = ""
		m.input.SetValue(it.Snapshot.Title)
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.ProgressUp):
		return m, m.stepProgress(progressStep)

	case key.Matches(msg, m.keys.ProgressDown):
		return m, m.stepProgress(-progressStep)

	case key.Matches(msg, m.keys.ToggleDone):
		it, ok := m.editable()
		if !ok {
			return m, m.readOnlyNotice()
		}
		target := float64(model.MaxProgress)
		if it.Snapshot.IsComplete() {
			target = 0
		}
		id := it.Snapshot.ID
		return m, m.mutate(func(ctx context.Context) error {
			return m.todos.SetProgress(ctx, id, target)
		})

	case key.Matches(msg, m.keys.Detail):
		it, ok := m.Selected()
		if !ok {
			return m, nil
		}
		if it.ReadOnly {
			return m, m.readOnlyNotice()
		}
		snap := it.Snapshot
		return m, func() tea.Msg { return OpenDetailMsg{Snapshot: snap} }

	case key.Matches(msg, m.keys.Delete):
		it, ok := m.editable()
		if !ok {
			return m, m.readOnlyNotice()
		}
		id := it.Snapshot.ID
		return m, m.mutate(func(ctx context.Context) error {
			return m.todos.Remove(ctx, id)
		})
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) moveDays(n int) (Model, tea.Cmd) {
	next, err := daykey.AddDays(m.date, n)
	if err != nil {
		return m, notice(err.Error())
	}
	return m.showDate(next)
}

func (m Model) showDate(date string) (Model, tea.Cmd) {
	m.date = date
	m.list.Title = m.dayTitle()
	m.list.ResetSelected()
	return m, m.Load()
}

// editable returns the selected snapshot when it may be changed.
func (m Model) editable() (SnapshotItem, bool) {
	it, ok := m.Selected()
	if !ok || it.ReadOnly {
		return SnapshotItem{}, false
	}
	return it, true
}

func (m Model) readOnlyNotice() tea.Cmd {
	if _, ok := m.Selected(); !ok {
		return nil
	}
	return notice(ErrReadOnly.Error())
}

func (m Model) stepProgress(delta int) tea.Cmd {
	it, ok := m.editable()
	if !ok {
		return m.readOnlyNotice()
	}
	id := it.Snapshot.ID
	target := float64(it.Snapshot.Progress + delta)
	return m.mutate(func(ctx context.Context) error {
		return m.todos.SetProgress(ctx, id, target)
	})
}

func (m *Model) resetInput() {
	m.mode = inputNone
	m.renameID = ""
	m.input.Blur()
	m.input.Reset()
}

// mutate runs fn off the update loop and reports the outcome as a ChangedMsg.
func (m Model) mutate(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return ChangedMsg{Err: fn(ctx)}
	}
}

// Load returns a tea.Cmd that reads the shown day, rolling unfinished work
// forward first when the day is today.
func (m Model) Load() tea.Cmd {
	t := m.todos
	date := m.date
	return func() tea.Msg {
		msg := LoadedMsg{Date: date}
		if date == t.Today() {
			created, err := t.RolloverTo(context.Background(), date)
			if err != nil {
				msg.Err = fmt.Errorf("rolling over to %s: %w", date, err)
			}
			msg.Carried = len(created)
		}
		msg.Snapshots = t.ForDate(date)
		msg.ReadOnly = make([]bool, len(msg.Snapshots))
		for i, snap := range msg.Snapshots {
			msg.ReadOnly[i] = t.IsReadOnly(snap)
		}
		return msg
	}
}

// View renders the board.
func (m Model) View() string {
	var input string
	if m.mode != inputNone {
		input = lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.input.View())
	}

	body := m.list.View()
	if len(m.list.Items()) == 0 {
		body = m.renderEmptyState()
	}

	if input == "" {
		return body
	}
	return lipgloss.JoinVertical(lipgloss.Left, input, body)
}

// renderEmptyState shows guidance text when the day has no snapshots.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.date < m.todos.Today() {
		return style.Render(m.dayTitle() + "\n\nNothing was planned for this day.")
	}
	return style.Render(m.dayTitle() + "\n\nNo tasks yet. Press a to add one.")
}

func (m Model) dayTitle() string {
	title := m.date
	if t, err := daykey.Parse(m.date); err == nil {
		title = t.Format("Mon Jan 2, 2006")
	}
	switch today := m.todos.Today(); {
	case m.date == today:
		title += " (today)"
	case m.date < today:
		title += " (read-only)"
	}
	return title
}

// SetSize updates the board dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.input.Width = width - 4
}

func notice(text string) tea.Cmd {
	return func() tea.Msg { return NoticeMsg{Text: text} }
}
