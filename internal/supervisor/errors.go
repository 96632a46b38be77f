package supervisor

import "errors"

var (
	// ErrFatalMessage is returned when an ErrorOccurred message arrives.
	// The wrapped text is the message's description.
	ErrFatalMessage = errors.New("supervisor: fatal error reported")

	// ErrShutdown is returned when a Shutdown message arrives.
	ErrShutdown = errors.New("supervisor: shutdown requested")

	// ErrForwardFailed wraps a failure sending to the flipper.
	ErrForwardFailed = errors.New("supervisor: forwarding failed")
)
