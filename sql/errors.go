package sql

import (
	"errors"
	"fmt"
)

var (
	// ErrConnectionClosed is returned by any operation on a connection that
	// was closed, whose process exited, or that entered the fatal state.
	ErrConnectionClosed = errors.New("connection is closed")

	// ErrUnknownDialect is returned when a configuration names a dialect that
	// is not registered.
	ErrUnknownDialect = errors.New("unknown dialect")

	// ErrNotSupported is returned for driver features the shell output cannot
	// provide.
	ErrNotSupported = errors.New("not supported by shell output")
)

// SpawnError reports that the child process could not be started.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// TransmitError reports a failed write to the child's standard input. The
// connection is unusable afterwards.
type TransmitError struct {
	Err error
}

func (e *TransmitError) Error() string {
	return fmt.Sprintf("failed to send statement: %v", e.Err)
}

func (e *TransmitError) Unwrap() error { return e.Err }

// EngineError carries the message the engine printed for a failed statement.
type EngineError struct {
	Message string
}

func (e *EngineError) Error() string {
	return e.Message
}

// DecodeError reports a token in the shell output that is not a valid
// literal. Position is the byte offset of the token in the statement output.
type DecodeError struct {
	Token    string
	Position int
	Reason   string
}

func (e *DecodeError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("malformed literal %q at offset %d", e.Token, e.Position)
	}

	return fmt.Sprintf("malformed literal %q at offset %d: %s", e.Token, e.Position, e.Reason)
}
