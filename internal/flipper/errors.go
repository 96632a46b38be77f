package flipper

import "errors"

var (
	// ErrFetchFailed wraps a failure loading today's flips.
	ErrFetchFailed = errors.New("flipper: fetching flips failed")

	// ErrPublishFailed wraps a failure publishing a toggle.
	ErrPublishFailed = errors.New("flipper: publishing toggle failed")

	// ErrStatusFailed wraps a failure reporting status to the supervisor.
	ErrStatusFailed = errors.New("flipper: sending status failed")
)
