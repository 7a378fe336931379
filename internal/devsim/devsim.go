// Package devsim provides an in-process TCP instrument for tests and examples.
//
// A Device listens on a loopback port and answers each connection once, according to its Mode.
package devsim

import (
	"errors"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arloliu/go-instrlink/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

// Mode selects how a Device answers a connection.
type Mode int

const (
	// EchoMode replies with exactly the bytes of the first read.
	EchoMode Mode = iota
	// ReplyMode replies with the bytes configured by WithReply after the first read.
	ReplyMode
	// SilentMode accepts and reads but never replies.
	SilentMode
	// HangupMode closes each connection right after accepting it.
	HangupMode
)

func (m Mode) String() string {
	switch m {
	case EchoMode:
		return "echo"
	case ReplyMode:
		return "reply"
	case SilentMode:
		return "silent"
	case HangupMode:
		return "hangup"
	default:
		return "mode(" + strconv.Itoa(int(m)) + ")"
	}
}

const readBufferSize = 64 * 1024

// Option configures a Device.
type Option func(*Device)

// WithReply sets the reply sent in ReplyMode.
func WithReply(reply []byte) Option {
	return func(d *Device) {
		d.reply = append([]byte(nil), reply...)
	}
}

// WithReplyDelay delays every reply by delay.
func WithReplyDelay(delay time.Duration) Option {
	return func(d *Device) {
		d.delay = delay
	}
}

func WithLogger(l logger.Logger) Option {
	return func(d *Device) {
		if l != nil {
			d.logger = l
		}
	}
}

// Device is a simulated instrument listening on 127.0.0.1.
type Device struct {
	mode   Mode
	reply  []byte
	delay  time.Duration
	logger logger.Logger

	ln     net.Listener
	connID atomic.Uint64
	conns  *xsync.MapOf[uint64, net.Conn]

	mu       sync.Mutex
	received [][]byte

	wg        sync.WaitGroup
	done      chan struct{}
	closeOnce sync.Once
}

// New starts a Device on an ephemeral loopback port.
func New(mode Mode, opts ...Option) (*Device, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}

	d := &Device{
		mode:   mode,
		logger: logger.GetLogger(),
		ln:     ln,
		conns:  xsync.NewMapOf[uint64, net.Conn](),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.wg.Add(1)
	go d.acceptLoop()

	d.logger.Debug("simulated device listening", "addr", ln.Addr().String(), "mode", mode.String())

	return d, nil
}

// Addr returns the listening address in "host:port" form.
func (d *Device) Addr() string { return d.ln.Addr().String() }

func (d *Device) Host() string {
	return d.ln.Addr().(*net.TCPAddr).IP.String()
}

func (d *Device) Port() int {
	return d.ln.Addr().(*net.TCPAddr).Port
}

// Received returns a copy of every command read by the device, in arrival order.
func (d *Device) Received() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([][]byte, len(d.received))
	for i, cmd := range d.received {
		out[i] = append([]byte(nil), cmd...)
	}

	return out
}

// ActiveConns returns the number of connections the device currently holds.
func (d *Device) ActiveConns() int {
	return d.conns.Size()
}

// Close stops the listener, drops every live connection and waits for the handlers to exit.
func (d *Device) Close() error {
	var err error
	d.closeOnce.Do(func() {
		close(d.done)
		err = d.ln.Close()
		d.conns.Range(func(_ uint64, conn net.Conn) bool {
			_ = conn.Close()
			return true
		})
		d.wg.Wait()
	})

	return err
}

func (d *Device) acceptLoop() {
	defer d.wg.Done()

	for {
		conn, err := d.ln.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				d.logger.Debug("simulated device accept failed", "error", err)
			}
			return
		}

		id := d.connID.Add(1)
		d.conns.Store(id, conn)

		// Close may have ranged over conns before the Store above
		select {
		case <-d.done:
			_ = conn.Close()
		default:
		}

		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			defer d.conns.Delete(id)
			defer conn.Close()

			d.handle(conn)
		}()
	}
}

func (d *Device) handle(conn net.Conn) {
	if d.mode == HangupMode {
		return
	}

	buf := make([]byte, readBufferSize)
	n, err := conn.Read(buf)
	if err != nil {
		return
	}
	cmd := append([]byte(nil), buf[:n]...)

	d.mu.Lock()
	d.received = append(d.received, cmd)
	d.mu.Unlock()

	var reply []byte
	switch d.mode {
	case EchoMode:
		reply = cmd
	case ReplyMode:
		reply = d.reply
	}

	if reply != nil {
		if !d.wait() {
			return
		}
		if _, err := conn.Write(reply); err != nil {
			d.logger.Debug("simulated device write failed", "error", err)
			return
		}
	}

	// hold the connection until the client or Close ends it
	for {
		if _, err := conn.Read(buf); err != nil {
			return
		}
	}
}

// wait sleeps for the reply delay and reports false if the device was closed meanwhile.
func (d *Device) wait() bool {
	if d.delay <= 0 {
		return true
	}

	timer := time.NewTimer(d.delay)
	defer timer.Stop()

	select {
	case <-d.done:
		return false
	case <-timer.C:
		return true
	}
}
