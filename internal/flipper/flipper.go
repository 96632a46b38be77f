package flipper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/FreeMasen/robohome-switcher/internal/control"
	"github.com/FreeMasen/robohome-switcher/internal/flip"
)

// FlipSource loads the flips scheduled for the day of now, in any order.
type FlipSource interface {
	TodayFlips(ctx context.Context, now time.Time) ([]flip.Flip, error)
}

// TogglePublisher sends one toggle command to a remote.
type TogglePublisher interface {
	PublishToggle(remoteID, switchID int, d flip.Direction) error
}

// Recorder records fired flips. Optional.
type Recorder interface {
	WriteFlip(remoteID, switchID int, direction, kind string)
}

// Logger is the logging interface used by the flipper.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

type noopRecorder struct{}

func (noopRecorder) WriteFlip(int, int, string, string) {}

// Options configures a Flipper.
type Options struct {
	Source    FlipSource
	Publisher TogglePublisher

	// Commands is the flipper's own mailbox.
	Commands control.Receiver

	// Status is the supervisor inbox.
	Status control.Sender

	Recorder Recorder
	Logger   Logger

	// Now returns the current wall-clock time in the site's zone.
	// Defaults to time.Now.
	Now func() time.Time
}

// Flipper owns today's flip queue.
//
// Thread Safety: Run must be called from a single goroutine. The accessors
// are intended for tests and must not race with Run.
type Flipper struct {
	source    FlipSource
	publisher TogglePublisher
	commands  control.Receiver
	status    control.Sender
	recorder  Recorder
	logger    Logger
	now       func() time.Time

	queue       flip.Queue
	currentDate time.Time
}

// New creates a flipper whose queue is dated yesterday.
func New(opts Options) *Flipper {
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}
	if opts.Recorder == nil {
		opts.Recorder = noopRecorder{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Flipper{
		source:      opts.Source,
		publisher:   opts.Publisher,
		commands:    opts.Commands,
		status:      opts.Status,
		recorder:    opts.Recorder,
		logger:      opts.Logger,
		now:         opts.Now,
		currentDate: dateOf(opts.Now()).AddDate(0, 0, -1),
	}
}

// Run handles commands until ctx is cancelled or the mailbox is closed.
//
// Returns:
//   - error: nil on cancellation or close, otherwise the fatal failure
func (f *Flipper) Run(ctx context.Context) error {
	for {
		msg, err := f.commands.Recv(ctx)
		if err != nil {
			if errors.Is(err, control.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("flipper: receiving command: %w", err)
		}
		if err := f.Handle(ctx, msg); err != nil {
			return err
		}
	}
}

// Handle processes one command.
func (f *Flipper) Handle(ctx context.Context, msg control.Message) error {
	f.logger.Debug("command received", "message", msg.Kind().String())

	switch msg.Kind() {
	case control.KindCheckDue:
		return f.checkDue(ctx)
	case control.KindRefreshRequested:
		return f.refreshRequested(ctx)
	case control.KindOutOfDate, control.KindCheckComplete, control.KindUpdated,
		control.KindBrokerRefreshSignal, control.KindErrorOccurred,
		control.KindShutdown, control.KindTick:
		f.logger.Debug("ignoring message", "message", msg.Kind().String())
	}
	return nil
}

func (f *Flipper) checkDue(ctx context.Context) error {
	now := f.now()
	if f.IsOutOfDate(now) {
		if err := f.report(control.OutOfDate()); err != nil {
			return err
		}
		if err := f.refreshToday(ctx, now); err != nil {
			return err
		}
		if err := f.report(control.Updated()); err != nil {
			return err
		}
	}

	if err := f.dispatchDue(now); err != nil {
		return err
	}
	return f.report(control.CheckComplete())
}

func (f *Flipper) refreshRequested(ctx context.Context) error {
	now := f.now()
	if err := f.refreshToday(ctx, now); err != nil {
		return err
	}
	if n := f.queue.Prune(now); n > 0 {
		f.logger.Info("discarded flips already due", "count", n)
	}
	return f.report(control.Updated())
}

func (f *Flipper) refreshToday(ctx context.Context, now time.Time) error {
	flips, err := f.source.TodayFlips(ctx, now)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	f.queue.Replace(flips)
	f.currentDate = dateOf(now)
	f.logger.Info("loaded today's flips", "count", len(flips), "date", f.currentDate.Format(time.DateOnly))
	return nil
}

func (f *Flipper) dispatchDue(now time.Time) error {
	_, err := f.queue.Dispatch(now, func(fl flip.Flip) error {
		if err := f.publisher.PublishToggle(fl.RemoteID, fl.SwitchID, fl.Direction); err != nil {
			return fmt.Errorf("%w: flip %d: %w", ErrPublishFailed, fl.ID, err)
		}
		f.logger.Info("flip fired",
			"flip_id", fl.ID,
			"remote_id", fl.RemoteID,
			"switch_id", fl.SwitchID,
			"direction", fl.Direction.String(),
			"time", fl.Time.String(),
		)
		f.recorder.WriteFlip(fl.RemoteID, fl.SwitchID, fl.Direction.String(), fl.Time.Kind.String())
		return nil
	})
	return err
}

func (f *Flipper) report(msg control.Message) error {
	if err := f.status.Send(msg); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrStatusFailed, msg.Kind(), err)
	}
	return nil
}

// IsOutOfDate reports whether the queue belongs to a day other than now's.
func (f *Flipper) IsOutOfDate(now time.Time) bool {
	return !f.currentDate.Equal(dateOf(now))
}

// CurrentDate returns the day the queue was loaded for.
func (f *Flipper) CurrentDate() time.Time {
	return f.currentDate
}

// Pending returns the queued flips, latest first.
func (f *Flipper) Pending() []flip.Flip {
	return f.queue.Flips()
}

// dateOf truncates t to midnight in t's location.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
