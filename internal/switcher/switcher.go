package switcher

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/FreeMasen/robohome-switcher/internal/clock"
	"github.com/FreeMasen/robohome-switcher/internal/control"
	"github.com/FreeMasen/robohome-switcher/internal/flipper"
	"github.com/FreeMasen/robohome-switcher/internal/listener"
	"github.com/FreeMasen/robohome-switcher/internal/supervisor"
)

// Recorder records fired flips and handled control messages.
// Satisfied by *influxdb.Client.
type Recorder interface {
	flipper.Recorder
	supervisor.Recorder
}

// Logger is the logging interface shared by every loop.
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

// componentLogger tags every entry with the loop that wrote it.
type componentLogger struct {
	Logger
	name string
}

func (l componentLogger) tag(args []any) []any {
	return append([]any{"component", l.name}, args...)
}

func (l componentLogger) Debug(msg string, args ...any) { l.Logger.Debug(msg, l.tag(args)...) }
func (l componentLogger) Info(msg string, args ...any)  { l.Logger.Info(msg, l.tag(args)...) }
func (l componentLogger) Warn(msg string, args ...any)  { l.Logger.Warn(msg, l.tag(args)...) }
func (l componentLogger) Error(msg string, args ...any) { l.Logger.Error(msg, l.tag(args)...) }

// Options configures a Switcher.
type Options struct {
	// Source loads today's flips. Required.
	Source flipper.FlipSource

	// Publisher sends toggle commands. Required.
	Publisher flipper.TogglePublisher

	// Subscriber delivers refresh notifications. Required.
	Subscriber listener.Subscriber

	// TickInterval is the clock period. Defaults to clock.DefaultInterval.
	TickInterval time.Duration

	// RefreshTopic is the topic carrying "update" notifications.
	RefreshTopic string

	// QoS for the refresh subscription.
	QoS byte

	Recorder Recorder
	Logger   Logger

	// Now returns the current time in the site's zone. Defaults to time.Now.
	Now func() time.Time
}

// Switcher is the supervised group of control loops.
type Switcher struct {
	opts Options

	inbox    *control.Mailbox
	commands *control.Mailbox
	ran      atomic.Bool
}

// New validates opts and creates the mailboxes.
func New(opts Options) (*Switcher, error) {
	switch {
	case opts.Source == nil:
		return nil, fmt.Errorf("%w: source", ErrMissingCollaborator)
	case opts.Publisher == nil:
		return nil, fmt.Errorf("%w: publisher", ErrMissingCollaborator)
	case opts.Subscriber == nil:
		return nil, fmt.Errorf("%w: subscriber", ErrMissingCollaborator)
	}
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}
	return &Switcher{
		opts:     opts,
		inbox:    control.NewMailbox(),
		commands: control.NewMailbox(),
	}, nil
}

// Shutdown asks the supervisor to stop. Run then returns nil.
func (s *Switcher) Shutdown() error {
	return s.inbox.Send(control.Shutdown())
}

// Run starts every loop and blocks until the group stops.
//
// Run may be called once.
//
// Returns:
//   - error: nil on cancellation or Shutdown, otherwise the first loop failure
func (s *Switcher) Run(ctx context.Context) error {
	if !s.ran.CompareAndSwap(false, true) {
		return ErrAlreadyRun
	}
	defer s.commands.Close()
	defer s.inbox.Close()

	log := s.opts.Logger

	lst, err := listener.New(listener.Options{
		Subscriber: s.opts.Subscriber,
		Topic:      s.opts.RefreshTopic,
		QoS:        s.opts.QoS,
		Out:        s.inbox,
		Logger:     componentLogger{log, "listener"},
	})
	if err != nil {
		return err
	}

	flp := flipper.New(flipper.Options{
		Source:    s.opts.Source,
		Publisher: s.opts.Publisher,
		Commands:  s.commands,
		Status:    s.inbox,
		Recorder:  s.opts.Recorder,
		Logger:    componentLogger{log, "flipper"},
		Now:       s.opts.Now,
	})

	sup := supervisor.New(supervisor.Options{
		Inbox:    s.inbox,
		Flipper:  s.commands,
		Recorder: s.opts.Recorder,
		Logger:   componentLogger{log, "supervisor"},
	})

	clk := clock.New(s.inbox, s.opts.TickInterval, componentLogger{log, "clock"})

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancel := context.WithCancel(gctx)
	defer cancel()

	// Any loop returning, even cleanly, stops the rest.
	start := func(name string, run func(context.Context) error) {
		g.Go(func() error {
			defer cancel()
			err := run(runCtx)
			log.Debug("loop stopped", "component", name, "error", err)
			return err
		})
	}

	log.Info("switcher starting",
		"tick_interval", clk.Interval().String(),
		"refresh_topic", s.opts.RefreshTopic,
	)

	start("supervisor", sup.Run)
	start("flipper", flp.Run)
	start("listener", lst.Run)
	start("clock", clk.Run)

	err = g.Wait()
	if errors.Is(err, supervisor.ErrShutdown) {
		log.Info("switcher stopped on request")
		return nil
	}
	return err
}
