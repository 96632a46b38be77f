package clock

import (
	"context"
	"fmt"
	"time"

	"github.com/FreeMasen/robohome-switcher/internal/control"
)

// DefaultInterval is used when New is given a non-positive interval.
const DefaultInterval = time.Minute

// Logger is the logging interface used by the clock.
type Logger interface {
	Debug(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}

// Clock emits Tick messages at a fixed interval.
type Clock struct {
	out      control.Sender
	interval time.Duration
	logger   Logger
}

// New creates a clock that sends to out.
//
// Parameters:
//   - out: Supervisor inbox
//   - interval: Time between ticks (DefaultInterval if <= 0)
//   - logger: Logger instance (may be nil)
func New(out control.Sender, interval time.Duration, logger Logger) *Clock {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Clock{out: out, interval: interval, logger: logger}
}

// Interval returns the configured tick interval.
func (c *Clock) Interval() time.Duration {
	return c.interval
}

// Run sends ticks until ctx is cancelled.
//
// Returns:
//   - error: nil on cancellation, or the send failure that stopped the clock
func (c *Clock) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		if err := c.out.Send(control.Tick()); err != nil {
			return fmt.Errorf("clock: sending tick: %w", err)
		}
		c.logger.Debug("tick sent", "message", control.KindTick.String())

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
