package rendering

import "errors"

var (
	// ErrInvalidKey is returned when a resource or command references a negative key.
	ErrInvalidKey = errors.New("rendering: invalid key")

	// ErrNilValue is returned when a nil array, image or shader spec is stored.
	ErrNilValue = errors.New("rendering: nil value")

	// ErrInvalidCommand is returned by SetCommands for a binding whose value kind does not match its variable.
	ErrInvalidCommand = errors.New("rendering: invalid command")
)
