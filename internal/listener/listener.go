package listener

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/FreeMasen/robohome-switcher/internal/control"
)

// RefreshPayload is the only payload the listener understands.
const RefreshPayload = "update"

// Subscriber is the broker surface the listener needs.
// Satisfied by *mqtt.Client.
type Subscriber interface {
	SubscribeAck(topic string, qos byte, handler func(topic string, payload []byte, ack func())) error
	Unsubscribe(topic string) error
}

// Logger is the logging interface used by the listener.
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

// Options configures a Listener.
type Options struct {
	Subscriber Subscriber
	Topic      string
	QoS        byte

	// Out is the supervisor inbox.
	Out control.Sender

	Logger Logger
}

// Listener forwards refresh notifications from the broker to the supervisor.
type Listener struct {
	sub    Subscriber
	topic  string
	qos    byte
	out    control.Sender
	logger Logger
}

// New creates a listener.
func New(opts Options) (*Listener, error) {
	if opts.Subscriber == nil {
		return nil, ErrNoSubscriber
	}
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}
	return &Listener{
		sub:    opts.Subscriber,
		topic:  opts.Topic,
		qos:    opts.QoS,
		out:    opts.Out,
		logger: opts.Logger,
	}, nil
}

// Run subscribes to the refresh topic and blocks until ctx is cancelled.
//
// Returns:
//   - error: nil on cancellation, ErrSubscribeFailed if the subscription
//     could not be made
func (l *Listener) Run(ctx context.Context) error {
	err := l.sub.SubscribeAck(l.topic, l.qos, func(_ string, payload []byte, ack func()) {
		l.HandleDelivery(payload, ack)
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSubscribeFailed, l.topic, err)
	}
	l.logger.Info("listening for refresh notifications", "topic", l.topic)

	<-ctx.Done()

	if err := l.sub.Unsubscribe(l.topic); err != nil {
		l.logger.Warn("unsubscribe failed", "topic", l.topic, "error", err)
	}
	return nil
}

// HandleDelivery translates one delivery, forwards the result to the
// supervisor and acknowledges the delivery.
func (l *Listener) HandleDelivery(payload []byte, ack func()) {
	msg := Translate(payload)
	l.logger.Debug("broker delivery", "message", msg.Kind().String())

	if err := l.out.Send(msg); err != nil {
		l.logger.Error("failed to forward broker message", "message", msg.String(), "error", err)
	}

	if ack != nil {
		ack()
	}
}

// Translate maps a refresh topic payload to a control message.
func Translate(payload []byte) control.Message {
	if !utf8.Valid(payload) {
		return control.ErrorOccurred("failed to decode utf-8")
	}
	text := string(payload)
	if text == RefreshPayload {
		return control.BrokerRefreshSignal()
	}
	return control.ErrorOccurred("unknown message content from broker: " + text)
}
