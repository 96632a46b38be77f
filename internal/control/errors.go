package control

import "errors"

// ErrClosed is returned when sending to, or receiving from a drained,
// closed mailbox.
var ErrClosed = errors.New("control: mailbox closed")
