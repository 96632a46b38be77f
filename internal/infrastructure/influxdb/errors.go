package influxdb

import "errors"

// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotConnected indicates the client is closed or never connected.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed indicates the initial ping failed.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrDisabled indicates influxdb.enabled is false. Callers treat it as
	// "run without telemetry", not as a failure.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
