package listener

import "errors"

var (
	// ErrSubscribeFailed wraps a broker subscription failure.
	ErrSubscribeFailed = errors.New("listener: subscribe failed")

	// ErrNoSubscriber indicates Options.Subscriber was nil.
	ErrNoSubscriber = errors.New("listener: subscriber is required")
)
