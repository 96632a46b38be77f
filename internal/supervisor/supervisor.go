package supervisor

import (
	"context"
	"errors"
	"fmt"

	"github.com/FreeMasen/robohome-switcher/internal/control"
)

const component = "supervisor"

// Recorder counts handled messages. Optional.
type Recorder interface {
	WriteControlMessage(component, message string)
}

// Logger is the logging interface used by the supervisor.
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

func (noopRecorder) WriteControlMessage(string, string) {}

// Options configures a Supervisor.
type Options struct {
	// Inbox is shared by the clock, the listener and flipper status.
	Inbox control.Receiver

	// Flipper is the flipper's command mailbox.
	Flipper control.Sender

	Recorder Recorder
	Logger   Logger
}

// Supervisor is the message router at the root of the switcher.
type Supervisor struct {
	inbox    control.Receiver
	flipper  control.Sender
	recorder Recorder
	logger   Logger
}

// New creates a supervisor.
func New(opts Options) *Supervisor {
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}
	if opts.Recorder == nil {
		opts.Recorder = noopRecorder{}
	}
	return &Supervisor{
		inbox:    opts.Inbox,
		flipper:  opts.Flipper,
		recorder: opts.Recorder,
		logger:   opts.Logger,
	}
}

// Run routes messages until a fatal message, a forwarding failure, or
// cancellation.
//
// Returns:
//   - error: nil on cancellation or a closed inbox, ErrShutdown on request,
//     ErrFatalMessage or ErrForwardFailed otherwise
func (s *Supervisor) Run(ctx context.Context) error {
	for {
		msg, err := s.inbox.Recv(ctx)
		if err != nil {
			if errors.Is(err, control.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("supervisor: receiving: %w", err)
		}
		if err := s.Handle(msg); err != nil {
			return err
		}
	}
}

// Handle routes one message.
func (s *Supervisor) Handle(msg control.Message) error {
	name := msg.Kind().String()
	s.recorder.WriteControlMessage(component, msg.String())

	switch msg.Kind() {
	case control.KindTick:
		s.logger.Debug("routing", "message", name)
		return s.forward(control.CheckDue())

	case control.KindBrokerRefreshSignal:
		s.logger.Info("refresh requested by broker", "message", name)
		return s.forward(control.RefreshRequested())

	case control.KindErrorOccurred:
		s.logger.Error("fatal error reported", "message", name, "error", msg.Text())
		return fmt.Errorf("%w: %s", ErrFatalMessage, msg.Text())

	case control.KindShutdown:
		s.logger.Info("shutdown requested", "message", name)
		return ErrShutdown

	case control.KindOutOfDate, control.KindUpdated, control.KindCheckComplete:
		s.logger.Debug("flipper status", "message", name)

	case control.KindCheckDue, control.KindRefreshRequested:
		s.logger.Warn("command sent to supervisor inbox, ignoring", "message", name)
	}
	return nil
}

func (s *Supervisor) forward(msg control.Message) error {
	if err := s.flipper.Send(msg); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrForwardFailed, msg.Kind(), err)
	}
	return nil
}
