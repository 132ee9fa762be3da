// Package sync runs the periodic todo sync in the background.
package sync

import (
	"context"
	"errors"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/daybook/internal/remote"
	"github.com/nhle/daybook/internal/todo"
)

// SyncState represents the current state of the sync loop.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
	SyncDisabled
)

func (s SyncState) String() string {
	switch s {
	case SyncRunning:
		return "syncing"
	case SyncError:
		return "error"
	case SyncDisabled:
		return "offline"
	default:
		return "idle"
	}
}

// SyncStatus holds the state of the most recent sync.
type SyncStatus struct {
	State    SyncState
	LastSync time.Time
	Error    error
}

// SyncResultMsg is a tea.Msg sent when a sync round completes.
type SyncResultMsg struct {
	Error     error
	AuthError *AuthErrorMsg
	At        time.Time
}

// AuthErrorMsg is set on a result when the remote rejected the session.
type AuthErrorMsg struct {
	Message string
}

// Syncer is the store being synchronized.
type Syncer interface {
	SyncAll(ctx context.Context) error
}

// DefaultInterval is used when the configured interval is not positive.
const DefaultInterval = 8 * time.Second

// syncTimeout is the maximum time allowed for a single sync round.
const syncTimeout = 30 * time.Second

// Poller runs Syncer.SyncAll on an interval and on demand. Failures are
// logged and the next round retries whatever is still pending.
type Poller struct {
	syncer    Syncer
	interval  time.Duration
	log       *zap.Logger
	status    SyncStatus
	resultCh  chan SyncResultMsg
	triggerCh chan struct{}
	stopCh    chan struct{}
	mu        gosync.Mutex
	running   bool
}

// New creates a Poller. A nil logger disables logging.
func New(s Syncer, interval time.Duration, log *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{
		syncer:    s,
		interval:  interval,
		log:       log,
		resultCh:  make(chan SyncResultMsg, 16),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
}

// Start returns a tea.Cmd that starts the polling goroutine and
// subscribes to results.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.mu.Unlock()

	go p.loop(p.stopCh)

	return p.waitForResult()
}

// Stop halts the polling goroutine.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.running = false
}

// Run polls until ctx is done. It is the headless counterpart of Start.
func (p *Poller) Run(ctx context.Context) {
	p.loop(ctx.Done())
}

// Refresh triggers an immediate sync round.
func (p *Poller) Refresh() tea.Cmd {
	select {
	case p.triggerCh <- struct{}{}:
	default:
		// A round is already pending.
	}
	return nil
}

// Status returns the state of the most recent round.
func (p *Poller) Status() SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Poller) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Do an initial sync immediately
	p.SyncOnce()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.SyncOnce()
		case <-p.triggerCh:
			p.SyncOnce()
		}
	}
}

// SyncOnce performs a single round, records its status and publishes the
// result.
func (p *Poller) SyncOnce() SyncResultMsg {
	p.setStatus(SyncRunning, nil)

	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	err := p.syncer.SyncAll(ctx)
	msg := SyncResultMsg{Error: err, At: time.Now()}

	switch {
	case err == nil:
		p.setStatus(SyncIdle, nil)
	case errors.Is(err, todo.ErrRemoteDisabled):
		p.setStatus(SyncDisabled, nil)
		msg.Error = nil
	case errors.Is(err, remote.ErrNotAuthenticated):
		p.setStatus(SyncError, err)
		msg.AuthError = &AuthErrorMsg{Message: "sync paused: not signed in (run `daybook auth token`)"}
		p.log.Warn("sync rejected", zap.Error(err))
	default:
		p.setStatus(SyncError, err)
		p.log.Warn("sync failed", zap.Error(err))
	}

	p.sendResult(msg)
	return msg
}

// setStatus updates the sync status.
func (p *Poller) setStatus(state SyncState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.State = state
	p.status.Error = err
	if state == SyncIdle {
		p.status.LastSync = time.Now()
	}
}

// sendResult sends a SyncResultMsg on the result channel without blocking.
func (p *Poller) sendResult(msg SyncResultMsg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller
	}
}

// waitForResult returns a tea.Cmd that waits for the next result from
// the result channel.
func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next sync result.
// This should be called after processing a SyncResultMsg to continue
// listening for future results.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}
