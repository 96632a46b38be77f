package weather

import "errors"

var (
	// ErrAttemptsExceeded is returned when every attempt failed. It wraps
	// the last attempt's error.
	ErrAttemptsExceeded = errors.New("weather: exceeded total request attempts")

	// ErrBadStatus indicates the service answered with a non-2xx status.
	ErrBadStatus = errors.New("weather: unexpected status")

	// ErrInvalidTime indicates a sunrise or sunset field did not parse.
	ErrInvalidTime = errors.New("weather: invalid sun phase time")

	// ErrNoURL indicates the client was built without a service URL.
	ErrNoURL = errors.New("weather: no url configured")
)
