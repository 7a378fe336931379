// Package link implements a single-connection request/response client for instruments that are
// controlled with line-oriented ASCII commands over TCP, such as lab power supplies and multimeters.
//
// Each exchange follows the same lifetime: connect, send one command, read one response, close.
// Sessions are never reused, retried or reconnected; to issue another command, open a new session.
//
// # Basic Usage
//
//	cfg, err := link.NewConnectionConfig("192.168.0.1", 9999, link.WithTimeout(time.Second))
//	if err != nil {
//		return err
//	}
//
//	rsp, err := link.Execute(ctx, cfg, []byte("MEAS:VOLT?\n"))
//
// Commands are sent as-is. Framing, such as a trailing newline, is the caller's responsibility,
// and a response is whatever a single read returns, truncated at the configured max response bytes.
//
// # Step by Step
//
// Open, Session.Send, Session.Receive and Session.Close expose the individual steps.
// Close is idempotent and must always be called, typically with defer.
//
// # Errors
//
// Errors can be tested with errors.Is:
//   - ErrConnect: the connection was refused, unreachable, or not established within the timeout.
//   - ErrSend: the command could not be written within the timeout.
//   - ErrTimeout: no response arrived within the timeout.
//   - ErrConnectionClosed: the instrument closed the connection instead of responding.
//   - ErrSessionClosed: the session was used after Close.
//
// Operational errors also wrap the underlying network error.
package link
