package flip

import "errors"

// ErrOutOfRange is returned when a stored code or time field is invalid.
var ErrOutOfRange = errors.New("flip: value out of range")
