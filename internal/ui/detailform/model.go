// Package detailform edits the note, due time and reminder time of one
// snapshot.
package detailform

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/daybook/internal/daykey"
	"github.com/nhle/daybook/internal/model"
	"github.com/nhle/daybook/internal/theme"
	"github.com/nhle/daybook/internal/todo"
)

// SavedMsg is dispatched when the form is submitted.
type SavedMsg struct {
	ID     string
	Detail todo.Detail
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	note     string
	dueAt    string
	notifyAt string
}

// Model is the Bubble Tea model for the detail form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	original formBindings
	id       string
	title    string
	now      func() time.Time
	width    int
	height   int
}

// New creates a detail form. now resolves bare "HH:MM" input to a day.
func New(now func() time.Time, width, height int) Model {
	if now == nil {
		now = time.Now
	}
	return Model{
		fb:     &formBindings{},
		now:    now,
		width:  width,
		height: height,
	}
}

// Start initializes the form with the current values of snap.
func (m *Model) Start(snap model.Snapshot) tea.Cmd {
	m.id = snap.ID
	m.title = snap.Title
	m.fb.note = snap.Note
	m.fb.dueAt = formatOptional(snap.DueAt)
	m.fb.notifyAt = formatOptional(snap.NotifyAt)
	m.original = *m.fb
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the detail form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the detail form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(m.title) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Note").
				Placeholder("Optional details...").
				Value(&m.fb.note),
			huh.NewInput().
				Title("Due").
				Placeholder("YYYY-MM-DD HH:MM or HH:MM (empty to clear)").
				Value(&m.fb.dueAt).
				Validate(m.validateOptionalMoment),
			huh.NewInput().
				Title("Remind me at").
				Placeholder("YYYY-MM-DD HH:MM or HH:MM (empty to clear)").
				Value(&m.fb.notifyAt).
				Validate(m.validateOptionalMoment),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	msg := SavedMsg{ID: m.id, Detail: m.detail()}
	return func() tea.Msg { return msg }
}

// detail turns the edited fields into a partial update: untouched fields
// stay unchanged and emptied fields are cleared.
func (m Model) detail() todo.Detail {
	var d todo.Detail

	if note := strings.TrimSpace(m.fb.note); note != strings.TrimSpace(m.original.note) {
		if note == "" {
			d.Note = todo.Clear[string]()
		} else {
			d.Note = todo.SetTo(note)
		}
	}
	d.DueAt = m.momentChange(m.original.dueAt, m.fb.dueAt)
	d.NotifyAt = m.momentChange(m.original.notifyAt, m.fb.notifyAt)
	return d
}

func (m Model) momentChange(before, after string) todo.Change[time.Time] {
	after = strings.TrimSpace(after)
	if after == strings.TrimSpace(before) {
		return todo.Unchanged[time.Time]()
	}
	if after == "" {
		return todo.Clear[time.Time]()
	}
	t, err := daykey.ParseMoment(after, m.now())
	if err != nil {
		return todo.Unchanged[time.Time]()
	}
	return todo.SetTo(t)
}

func (m Model) validateOptionalMoment(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	_, err := daykey.ParseMoment(s, m.now())
	return err
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func formatOptional(t *time.Time) string {
	if t == nil {
		return ""
	}
	return daykey.FormatMoment(*t)
}
