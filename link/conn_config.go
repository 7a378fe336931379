package link

import (
	"time"

	"github.com/arloliu/go-instrlink/logger"
)

const (
	// DefaultTimeout is the per-operation timeout used when WithTimeout is not given.
	DefaultTimeout = 1 * time.Second
	// DefaultMaxResponseBytes is the receive buffer size used when WithMaxResponseBytes is not given.
	DefaultMaxResponseBytes = 4096
	// DefaultKeepAlive is the TCP keep-alive period used when WithKeepAlive is not given.
	DefaultKeepAlive = 30 * time.Second
)

// ConnectionConfig represents the configuration of an instrument session.
//
// A ConnectionConfig is immutable once NewConnectionConfig returns, so a single
// instance can be shared by any number of sessions.
type ConnectionConfig struct {
	endpoint Endpoint

	// timeout bounds each of connect, send and receive individually.
	// Defaults to 1 second.
	timeout time.Duration

	// maxResponseBytes is the receive size used by Execute and by Receive when given a non-positive size.
	// Defaults to 4096 bytes.
	maxResponseBytes int

	// keepAlive is passed to net.Dialer.KeepAlive; a negative value disables keep-alive probes.
	// Defaults to 30 seconds.
	keepAlive time.Duration

	logger logger.Logger
}

// NewConnectionConfig creates an instrument connection configuration with the given host, port number,
// and optional functional options.
//
// It initializes a ConnectionConfig with default values and then applies the provided options.
// See the documentation for ConnOption and the various WithXXX functions for available options.
func NewConnectionConfig(host string, port int, opts ...ConnOption) (*ConnectionConfig, error) {
	endpoint, err := NewEndpoint(host, port)
	if err != nil {
		return nil, err
	}

	cfg := &ConnectionConfig{
		endpoint:         endpoint,
		timeout:          DefaultTimeout,
		maxResponseBytes: DefaultMaxResponseBytes,
		keepAlive:        DefaultKeepAlive,
		logger:           logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (cfg *ConnectionConfig) Endpoint() Endpoint { return cfg.endpoint }

func (cfg *ConnectionConfig) Timeout() time.Duration { return cfg.timeout }

func (cfg *ConnectionConfig) MaxResponseBytes() int { return cfg.maxResponseBytes }

func (cfg *ConnectionConfig) KeepAlive() time.Duration { return cfg.keepAlive }

func (cfg *ConnectionConfig) Logger() logger.Logger { return cfg.logger }

// ConnOption represents a functional option for configuring a ConnectionConfig.
type ConnOption interface {
	apply(*ConnectionConfig) error
}

type connOptFunc struct {
	name      string
	applyFunc func(*ConnectionConfig) error
}

func (c *connOptFunc) apply(cfg *ConnectionConfig) error {
	if cfg == nil {
		return ErrConnConfigNil
	}

	return c.applyFunc(cfg)
}

func newConnOptFunc(name string, f func(*ConnectionConfig) error) *connOptFunc {
	return &connOptFunc{name: name, applyFunc: f}
}

// WithTimeout sets the timeout applied to connect, to every send and to every receive.
// The timeout must be greater than 0.
func WithTimeout(val time.Duration) ConnOption {
	return newConnOptFunc("WithTimeout", func(cfg *ConnectionConfig) error {
		if val <= 0 {
			return ErrInvalidTimeout
		}
		cfg.timeout = val

		return nil
	})
}

// WithMaxResponseBytes sets the maximum number of bytes read by a single receive.
// Responses longer than this are truncated to the first val bytes read.
func WithMaxResponseBytes(val int) ConnOption {
	return newConnOptFunc("WithMaxResponseBytes", func(cfg *ConnectionConfig) error {
		if val <= 0 {
			return ErrInvalidMaxResponseBytes
		}
		cfg.maxResponseBytes = val

		return nil
	})
}

// WithKeepAlive sets the TCP keep-alive period. Zero selects the system default and a
// negative value disables keep-alive probes.
func WithKeepAlive(val time.Duration) ConnOption {
	return newConnOptFunc("WithKeepAlive", func(cfg *ConnectionConfig) error {
		cfg.keepAlive = val
		return nil
	})
}

// WithLogger sets the logger used by sessions. A nil logger keeps the default logger.
func WithLogger(l logger.Logger) ConnOption {
	return newConnOptFunc("WithLogger", func(cfg *ConnectionConfig) error {
		if l != nil {
			cfg.logger = l
		}

		return nil
	})
}
