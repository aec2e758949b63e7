package frame

import (
	"errors"
	"fmt"
)

var (
	// ErrIncomplete signals that the buffer holds a valid prefix of a frame
	// and more bytes are needed.
	ErrIncomplete = errors.New("frame: incomplete")

	// ErrProtocol is matched by every *ProtocolError.
	ErrProtocol = errors.New("frame: protocol error")
)

// ProtocolError describes malformed frame data. Connections that produce
// protocol errors can not be recovered and should be closed.
type ProtocolError struct {
	Message string
}

func (e *ProtocolError) Error() string {
	return "frame: protocol error: " + e.Message
}

// Is reports whether target is ErrProtocol.
func (e *ProtocolError) Is(target error) bool {
	return target == ErrProtocol
}

// protocolErrorf creates a new *ProtocolError with a formatted message
func protocolErrorf(format string, args ...interface{}) *ProtocolError {
	return &ProtocolError{Message: fmt.Sprintf(format, args...)}
}
