package client

import (
	"errors"
	"strings"
)

// ErrNoSuchFile is returned by Get when the parent listing has no regular
// file of that name.
var ErrNoSuchFile = errors.New("no such file")

// ErrInvalidPath is returned before anything is sent when a remote path is
// empty or contains whitespace, which the line protocol cannot carry.
var ErrInvalidPath = errors.New("invalid remote path")

// ErrProtocol is returned when a reply does not have the expected shape.
var ErrProtocol = errors.New("protocol error")

// ServerError is an "ERR ..." reply.
type ServerError struct {
	Line string
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	return strings.TrimPrefix(e.Line, "ERR ")
}

// IsUsage reports whether the server rejected the command's arguments.
func (e *ServerError) IsUsage() bool {
	msg := e.Error()
	return strings.HasPrefix(msg, "usage:") || strings.HasPrefix(msg, "invalid size:")
}

// IsNotFound reports whether the target path does not exist.
func (e *ServerError) IsNotFound() bool {
	msg := e.Error()
	return strings.HasPrefix(msg, "no such file:") || strings.HasPrefix(msg, "not a directory:")
}
