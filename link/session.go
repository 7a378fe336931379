package link

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/arloliu/go-instrlink/logger"
)

// Session is one TCP connection to an instrument, from Open to Close.
//
// A session is owned by a single caller and is not reused across commands. Send and Receive are
// serialized internally, while Close may be called from any goroutine and unblocks an in-flight
// Receive. Once closed, every Send and Receive fails with ErrSessionClosed.
type Session struct {
	cfg     *ConnectionConfig
	conn    net.Conn
	logger  logger.Logger
	metrics *LinkMetrics
	state   atomicSessionState

	ioMu sync.Mutex
}

// Open establishes a TCP connection to the endpoint of cfg.
//
// The connect attempt is bounded by cfg.Timeout() and by ctx. On failure the returned error
// matches ErrConnect and the underlying dial error.
func Open(ctx context.Context, cfg *ConnectionConfig) (*Session, error) {
	return openSession(ctx, cfg, nil)
}

func openSession(ctx context.Context, cfg *ConnectionConfig, metrics *LinkMetrics) (*Session, error) {
	if cfg == nil {
		return nil, ErrConnConfigNil
	}

	address := cfg.endpoint.Address()
	dialer := &net.Dialer{Timeout: cfg.timeout, KeepAlive: cfg.keepAlive}

	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		cfg.logger.Debug("failed to dial to instrument", "address", address, "method", "open", "error", err)
		err = wrapErr(ErrConnect, err)
		metrics.incError(err)

		return nil, err
	}

	s := &Session{
		cfg:     cfg,
		conn:    conn,
		logger:  cfg.logger,
		metrics: metrics,
	}
	metrics.incSessionOpened()

	s.logger.Debug("connected to the remote",
		"host", cfg.endpoint.host,
		"port", cfg.endpoint.port,
		"local_addr", conn.LocalAddr().String(),
		"remote_addr", conn.RemoteAddr().String(),
		"method", "open",
	)

	return s, nil
}

func (s *Session) Endpoint() Endpoint { return s.cfg.endpoint }

func (s *Session) LocalAddr() net.Addr { return s.conn.LocalAddr() }

func (s *Session) RemoteAddr() net.Addr { return s.conn.RemoteAddr() }

// IsClosed reports whether Close has been called.
func (s *Session) IsClosed() bool { return !s.state.isOpened() }

// Send writes the whole command to the instrument. No terminator is appended; framing such as a
// trailing newline is part of cmd.
//
// The write must complete within the configured timeout. Failures match ErrSend, or
// ErrSessionClosed if the session has been closed.
func (s *Session) Send(cmd []byte) error {
	s.ioMu.Lock()
	defer s.ioMu.Unlock()

	if !s.state.isOpened() {
		return s.fail(ErrSessionClosed)
	}

	if err := s.conn.SetWriteDeadline(time.Now().Add(s.cfg.timeout)); err != nil {
		return s.fail(s.writeErr(err))
	}

	// net.Conn.Write only returns early together with a non-nil error.
	n, err := s.conn.Write(cmd)
	s.metrics.addBytesSent(n)
	if err != nil {
		s.logger.Debug("failed to send command", "method", "send", "written", n, "size", len(cmd), "error", err)
		return s.fail(s.writeErr(err))
	}

	s.logger.Debug("command sent", "method", "send", "size", n)

	return nil
}

// Receive performs a single read of at most maxBytes from the instrument and returns the bytes
// unmodified. It does not accumulate until a delimiter, so a response split across TCP segments
// may be returned partially. A non-positive maxBytes uses the configured max response bytes.
//
// Receive fails with ErrTimeout if nothing arrives within the configured timeout,
// ErrConnectionClosed if the instrument closed or reset the connection, and ErrSessionClosed
// if the session was closed before or during the read.
func (s *Session) Receive(maxBytes int) ([]byte, error) {
	s.ioMu.Lock()
	defer s.ioMu.Unlock()

	if !s.state.isOpened() {
		return nil, s.fail(ErrSessionClosed)
	}

	if maxBytes <= 0 {
		maxBytes = s.cfg.maxResponseBytes
	}

	if err := s.conn.SetReadDeadline(time.Now().Add(s.cfg.timeout)); err != nil {
		return nil, s.fail(s.readErr(err))
	}

	buf := make([]byte, maxBytes)
	n, err := s.conn.Read(buf)
	if n > 0 {
		// any error accompanying data resurfaces on the next read
		s.metrics.addBytesReceived(n)
		s.logger.Debug("response received", "method", "receive", "size", n, "max_bytes", maxBytes)

		return buf[:n], nil
	}

	if err == nil {
		err = io.EOF
	}
	s.logger.Debug("failed to receive response", "method", "receive", "error", err)

	return nil, s.fail(s.readErr(err))
}

// Close releases the socket. It is safe to call more than once and from any goroutine;
// calls after the first return nil.
func (s *Session) Close() error {
	if !s.state.toClosing() {
		return nil
	}

	err := s.conn.Close()
	s.state.toClosed()
	s.metrics.incSessionClosed()

	s.logger.Debug("session closed", "remote_addr", s.conn.RemoteAddr().String(), "method", "close")

	if err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Debug("failed to close connection", "method", "close", "error", err)
		return err
	}

	return nil
}

func (s *Session) fail(err error) error {
	s.metrics.incError(err)
	return err
}

func (s *Session) writeErr(err error) error {
	if errors.Is(err, net.ErrClosed) || !s.state.isOpened() {
		return wrapErr(ErrSessionClosed, err)
	}

	return wrapErr(ErrSend, err)
}

func (s *Session) readErr(err error) error {
	if errors.Is(err, net.ErrClosed) || !s.state.isOpened() {
		return wrapErr(ErrSessionClosed, err)
	}

	if errors.Is(err, io.EOF) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNABORTED) {
		return wrapErr(ErrConnectionClosed, err)
	}

	var netErr net.Error
	if errors.Is(err, os.ErrDeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return wrapErr(ErrTimeout, err)
	}

	return wrapErr(ErrConnectionClosed, err)
}
