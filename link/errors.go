package link

import (
	"errors"
	"fmt"
)

var (
	// ErrConnConfigNil indicates that a nil ConnectionConfig was provided.
	ErrConnConfigNil = errors.New("connection config is nil")

	// ErrInvalidHost indicates that the host is empty or is neither an IP address nor a valid host name.
	ErrInvalidHost = errors.New("invalid host")

	// ErrInvalidPort indicates that the port is outside [1, 65535].
	ErrInvalidPort = errors.New("port is out of range [1, 65535]")

	// ErrInvalidTimeout indicates a non-positive session timeout.
	ErrInvalidTimeout = errors.New("timeout should be greater than 0")

	// ErrInvalidMaxResponseBytes indicates a non-positive response size limit.
	ErrInvalidMaxResponseBytes = errors.New("max response bytes should be greater than 0")
)

var (
	// ErrConnect indicates that the TCP connection to the instrument could not be established:
	// the remote refused, was unreachable, or the attempt exceeded the timeout.
	ErrConnect = errors.New("connect failed")

	// ErrSend indicates that writing a command failed or did not complete before the timeout.
	ErrSend = errors.New("send failed")

	// ErrTimeout indicates that no response bytes arrived within the timeout.
	ErrTimeout = errors.New("receive timeout")

	// ErrConnectionClosed indicates that the instrument closed the connection before sending a response.
	ErrConnectionClosed = errors.New("connection closed by peer")

	// ErrSessionClosed indicates an operation on a session that has already been closed.
	ErrSessionClosed = errors.New("session closed")
)

// wrapErr returns an error matching both kind and cause with errors.Is.
func wrapErr(kind error, cause error) error {
	if cause == nil {
		return kind
	}

	return fmt.Errorf("%w: %w", kind, cause)
}

// errorKind returns the metric label for one of the operational sentinel errors.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrSessionClosed):
		return KindSessionClosed
	case errors.Is(err, ErrConnect):
		return KindConnect
	case errors.Is(err, ErrSend):
		return KindSend
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrConnectionClosed):
		return KindConnectionClosed
	default:
		return ""
	}
}
