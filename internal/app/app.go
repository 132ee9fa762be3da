package app

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/daybook/internal/keys"
	"github.com/nhle/daybook/internal/model"
	appsync "github.com/nhle/daybook/internal/sync"
	"github.com/nhle/daybook/internal/todo"
	"github.com/nhle/daybook/internal/ui"
	"github.com/nhle/daybook/internal/ui/board"
	"github.com/nhle/daybook/internal/ui/detailform"
	helpview "github.com/nhle/daybook/internal/ui/help"
)

// noticeTTL is how long a status bar notice stays visible.
const noticeTTL = 6 * time.Second

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewBoard ViewState = iota
	ViewDetail
	ViewHelp
)

// Todos is the todo store the board and detail form drive.
type Todos interface {
	board.Todos
	SetDetail(ctx context.Context, id string, d todo.Detail) error
}

// Options carries what the root model needs besides the store.
type Options struct {
	// Reminders receives delivered reminders; nil disables the notice feed.
	Reminders <-chan model.Reminder
	Nickname  string
	Now       func() time.Time
}

// Model is the root Bubble Tea model that manages view routing, layout
// and the background sync poller.
type Model struct {
	currentView  ViewState
	previousView ViewState
	frame        ui.Frame
	todos        Todos
	keys         *keys.KeyMap
	board        board.Model
	detailForm   detailform.Model
	helpView     helpview.Model
	poller       *appsync.Poller
	reminders    <-chan model.Reminder
	nickname     string
	ready        bool

	notice           string
	noticeSeq        int
	authErrorMessage string
}

// New creates a new root application model.
func New(t Todos, p *appsync.Poller, opts Options) Model {
	k := keys.DefaultKeyMap()
	return Model{
		currentView: ViewBoard,
		todos:       t,
		keys:        k,
		board:       board.New(t, k, 80, 24),
		detailForm:  detailform.New(opts.Now, 80, 24),
		helpView:    helpview.New(k, 80, 24),
		poller:      p,
		reminders:   opts.Reminders,
		nickname:    opts.Nickname,
	}
}

// reminderMsg carries a delivered reminder.
type reminderMsg struct {
	reminder model.Reminder
}

// clearNoticeMsg expires the notice with the same sequence number.
type clearNoticeMsg struct {
	seq int
}

// Init loads today and starts polling.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.board.Init(),
		m.poller.Start(),
		m.waitForReminder(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.frame = ui.NewFrame(msg.Width, msg.Height)
		m.ready = true
		w, h := m.frame.BodyWidth(), m.frame.BodyHeight()
		m.board.SetSize(w, h)
		m.detailForm.SetSize(w, h)
		m.helpView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case appsync.SyncResultMsg:
		if msg.AuthError != nil {
			m.authErrorMessage = msg.AuthError.Message
		} else if msg.Error == nil {
			m.authErrorMessage = ""
		}
		// Pulled rows may have changed the shown day.
		return m, tea.Batch(m.board.Load(), m.poller.WaitForNextResult())

	case reminderMsg:
		text := "⏰ " + msg.reminder.Title
		if msg.reminder.Title == "" {
			text = "⏰ reminder"
		}
		return m, tea.Batch(m.setNotice(text), m.waitForReminder())

	case board.NoticeMsg:
		return m, m.setNotice(msg.Text)

	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case board.OpenDetailMsg:
		m.previousView = m.currentView
		m.currentView = ViewDetail
		return m, m.detailForm.Start(msg.Snapshot)

	case detailform.SavedMsg:
		m.currentView = ViewBoard
		return m, m.saveDetail(msg.ID, msg.Detail)

	case detailform.CancelMsg:
		m.currentView = ViewBoard
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.poller.Stop()
			return m, tea.Quit

		case "esc":
			if m.currentView != ViewBoard {
				m.currentView = ViewBoard
				return m, nil
			}
		}

		if m.currentView == ViewBoard && m.board.Typing() {
			break
		}

		switch msg.String() {
		case "q":
			if m.currentView == ViewBoard {
				m.poller.Stop()
				return m, tea.Quit
			}

		case "?":
			if m.currentView == ViewDetail {
				break
			}
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil

		case "s":
			if m.currentView == ViewBoard {
				return m, tea.Batch(m.poller.Refresh(), m.setNotice("syncing…"))
			}
		}
	}

	// Board results arrive while other views are open too.
	switch msg.(type) {
	case board.LoadedMsg, board.ChangedMsg:
		var cmd tea.Cmd
		m.board, cmd = m.board.Update(msg)
		return m, cmd
	}

	return m.updateActiveView(msg)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewBoard:
		m.board, cmd = m.board.Update(msg)
	case ViewDetail:
		m.detailForm, cmd = m.detailForm.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	title := "daybook"
	if m.nickname != "" {
		title = fmt.Sprintf("daybook · %s", m.nickname)
	}
	return m.frame.Compose(
		m.frame.TitleBar(title, m.syncStatus()),
		m.renderContent(),
		m.frame.StatusBar(m.keyHints(), m.currentNotice()),
	)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewBoard:
		return m.board.View()
	case ViewDetail:
		return m.detailForm.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		return ""
	}
}

// syncStatus returns a short string describing the sync state.
func (m Model) syncStatus() string {
	st := m.poller.Status()
	switch st.State {
	case appsync.SyncIdle:
		if st.LastSync.IsZero() {
			return "idle"
		}
		return "synced " + st.LastSync.Format("15:04:05")
	case appsync.SyncError:
		return "⚠ sync failed"
	default:
		return st.State.String()
	}
}

func (m Model) currentNotice() string {
	if m.notice != "" {
		return m.notice
	}
	if m.currentView == ViewBoard {
		return m.authErrorMessage
	}
	return ""
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewDetail:
		return "tab next field | enter submit | esc cancel"
	default:
		if m.board.Typing() {
			return "enter save | esc cancel"
		}
		return "q quit | ? help | a add | space done | +/- progress | h/l day | s sync"
	}
}

func (m *Model) setNotice(text string) tea.Cmd {
	m.noticeSeq++
	m.notice = text
	seq := m.noticeSeq
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return clearNoticeMsg{seq: seq}
	})
}

// waitForReminder returns a tea.Cmd that blocks until the next reminder is
// delivered.
func (m Model) waitForReminder() tea.Cmd {
	ch := m.reminders
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return reminderMsg{reminder: r}
	}
}
