package switcher

import "errors"

var (
	// ErrMissingCollaborator indicates a required Options field was nil.
	ErrMissingCollaborator = errors.New("switcher: missing collaborator")

	// ErrAlreadyRun indicates Run was called a second time.
	ErrAlreadyRun = errors.New("switcher: already run")
)
