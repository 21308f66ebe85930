package routing

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by the data clients when they are used after
// being closed.
var ErrClosed = errors.New("data client closed")

// An error created if a source failed to deliver its registrations.
type sourceError struct {
	Source   string
	Original error
}

func (err *sourceError) Error() string {
	return fmt.Sprintf("%s: %v", err.Source, err.Original)
}

func (err *sourceError) Unwrap() error { return err.Original }
