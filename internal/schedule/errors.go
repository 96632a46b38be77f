package schedule

import "errors"

var (
	// ErrInvalidRow is returned when a stored flip holds an out-of-range code.
	ErrInvalidRow = errors.New("schedule: invalid flip row")

	// ErrNotFound is returned when a referenced remote or switch does not exist.
	ErrNotFound = errors.New("schedule: not found")
)
