package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/daybook/internal/daykey"
	"github.com/nhle/daybook/internal/model"
)

// DefaultPollInterval is how often the Dispatcher looks for due reminders.
const DefaultPollInterval = time.Second

// DailyTitle is the text of the daily reminder.
const DailyTitle = "What's on your todo list today?"

// Dispatcher delivers due reminders exactly once each.
type Dispatcher struct {
	repo     Repository
	deliver  func(model.Reminder)
	interval time.Duration
	now      func() time.Time
	log      *zap.Logger
	dailyAt  func() string
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDailyReminder adds a reminder every day at the "HH:MM" that at
// reports, read in the reference offset. An empty time means none.
func WithDailyReminder(at func() string) DispatcherOption {
	return func(d *Dispatcher) { d.dailyAt = at }
}

// WithDispatcherClock overrides time.Now.
func WithDispatcherClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) { d.now = now }
}

// NewDispatcher creates a Dispatcher that hands each due reminder to
// deliver. A nil logger disables logging.
func NewDispatcher(repo Repository, deliver func(model.Reminder), log *zap.Logger, opts ...DispatcherOption) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Dispatcher{
		repo:     repo,
		deliver:  deliver,
		interval: DefaultPollInterval,
		now:      time.Now,
		log:      log,
		dailyAt:  func() string { return "" },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run polls until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		if _, err := d.DispatchDue(ctx); err != nil {
			d.log.Warn("dispatching reminders failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// DispatchDue delivers every reminder due now and returns how many were
// delivered.
func (d *Dispatcher) DispatchDue(ctx context.Context) (int, error) {
	now := d.now()
	if err := d.planDaily(ctx, now); err != nil {
		d.log.Warn("planning daily reminder failed", zap.Error(err))
	}

	due, err := d.repo.GetDueReminders(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("loading due reminders: %w", err)
	}

	delivered := 0
	for _, r := range due {
		// Mark first so a failed mark cannot cause a second delivery.
		if err := d.repo.MarkReminderDelivered(ctx, r.ID); err != nil {
			return delivered, err
		}
		d.deliver(r)
		delivered++
		d.log.Debug("reminder delivered", zap.String("id", r.ID), zap.String("todo_id", r.TodoID))
	}
	return delivered, nil
}

// DailyReminderID is the reminder id of the daily reminder on day.
func DailyReminderID(day string) string {
	return "daily-" + day
}

// planDaily stores today's daily reminder once its fire time is known and
// still ahead. Its id is fixed per day, so every process planning it ends up
// with the same single row.
func (d *Dispatcher) planDaily(ctx context.Context, now time.Time) error {
	at := d.dailyAt()
	if at == "" {
		return nil
	}
	fireAt, err := daykey.ParseMoment(at, now)
	if err != nil {
		return fmt.Errorf("daily reminder time: %w", err)
	}
	if fireAt.Before(now) {
		return nil
	}

	r := model.Reminder{
		ID:              DailyReminderID(daykey.Of(now)),
		ReminderPayload: model.ReminderPayload{Title: DailyTitle},
		FireAt:          fireAt,
		CreatedAt:       now,
	}
	inserted, err := d.repo.EnsureReminder(ctx, r)
	if err != nil {
		return err
	}
	if inserted {
		d.log.Debug("daily reminder planned", zap.Time("fire_at", fireAt))
	}
	return nil
}
