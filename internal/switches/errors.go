package switches

import "errors"

// ErrInvalidSwitch indicates a switch code that does not fit the wire format.
var ErrInvalidSwitch = errors.New("switches: switch id out of range")
