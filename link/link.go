package link

import "context"

// Execute opens a session to the endpoint of cfg, sends cmd, performs one receive of up to
// cfg.MaxResponseBytes() bytes and closes the session.
//
// The session is closed on every path. The first connect, send or receive error is returned.
func Execute(ctx context.Context, cfg *ConnectionConfig, cmd []byte) ([]byte, error) {
	return execute(ctx, cfg, nil, cmd)
}

func execute(ctx context.Context, cfg *ConnectionConfig, metrics *LinkMetrics, cmd []byte) ([]byte, error) {
	s, err := openSession(ctx, cfg, metrics)
	if err != nil {
		return nil, err
	}
	defer func() { _ = s.Close() }()

	if err := s.Send(cmd); err != nil {
		return nil, err
	}

	rsp, err := s.Receive(cfg.maxResponseBytes)
	if err != nil {
		return nil, err
	}
	metrics.incCommandsExecuted()

	return rsp, nil
}

// Link is a reusable handle on one instrument configuration.
//
// Every Open or Execute on a Link creates its own Session, so a Link is safe for concurrent use.
// Sessions created through a Link report into its LinkMetrics.
type Link struct {
	cfg     *ConnectionConfig
	metrics *LinkMetrics
}

// NewLink creates a Link for cfg.
func NewLink(cfg *ConnectionConfig) (*Link, error) {
	if cfg == nil {
		return nil, ErrConnConfigNil
	}

	return &Link{cfg: cfg, metrics: NewLinkMetrics()}, nil
}

func (l *Link) Config() *ConnectionConfig { return l.cfg }

func (l *Link) Metrics() *LinkMetrics { return l.metrics }

// Open is like the package-level Open, recording into the link's metrics.
func (l *Link) Open(ctx context.Context) (*Session, error) {
	return openSession(ctx, l.cfg, l.metrics)
}

// Execute is like the package-level Execute, recording into the link's metrics.
func (l *Link) Execute(ctx context.Context, cmd []byte) ([]byte, error) {
	return execute(ctx, l.cfg, l.metrics, cmd)
}
