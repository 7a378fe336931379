package link

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// Error kinds reported by LinkMetrics.ErrorCount.
const (
	KindConnect          = "connect"
	KindSend             = "send"
	KindTimeout          = "timeout"
	KindConnectionClosed = "connection_closed"
	KindSessionClosed    = "session_closed"
)

// LinkMetrics contains the counters of a Link. All methods are safe for concurrent use,
// and the counters can be used as the value of a prometheus CounterFunc or GaugeFunc.
//
// Methods on a nil *LinkMetrics are no-ops, which is what sessions opened by the
// package-level Open and Execute use.
type LinkMetrics struct {
	sessionsOpened   *xsync.Counter
	sessionsClosed   *xsync.Counter
	activeSessions   *xsync.Counter
	bytesSent        *xsync.Counter
	bytesReceived    *xsync.Counter
	commandsExecuted *xsync.Counter
	errors           *xsync.MapOf[string, *xsync.Counter]
}

// MetricsSnapshot is a point-in-time copy of LinkMetrics.
type MetricsSnapshot struct {
	SessionsOpened   int64
	SessionsClosed   int64
	ActiveSessions   int64
	BytesSent        int64
	BytesReceived    int64
	CommandsExecuted int64
	// Errors maps an error kind, such as KindTimeout, to the number of occurrences.
	Errors map[string]int64
}

func NewLinkMetrics() *LinkMetrics {
	return &LinkMetrics{
		sessionsOpened:   xsync.NewCounter(),
		sessionsClosed:   xsync.NewCounter(),
		activeSessions:   xsync.NewCounter(),
		bytesSent:        xsync.NewCounter(),
		bytesReceived:    xsync.NewCounter(),
		commandsExecuted: xsync.NewCounter(),
		errors:           xsync.NewMapOf[string, *xsync.Counter](),
	}
}

// ErrorCount returns the number of errors recorded for kind.
func (m *LinkMetrics) ErrorCount(kind string) int64 {
	if m == nil {
		return 0
	}

	c, ok := m.errors.Load(kind)
	if !ok {
		return 0
	}

	return c.Value()
}

func (m *LinkMetrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{Errors: map[string]int64{}}
	}

	snap := MetricsSnapshot{
		SessionsOpened:   m.sessionsOpened.Value(),
		SessionsClosed:   m.sessionsClosed.Value(),
		ActiveSessions:   m.activeSessions.Value(),
		BytesSent:        m.bytesSent.Value(),
		BytesReceived:    m.bytesReceived.Value(),
		CommandsExecuted: m.commandsExecuted.Value(),
		Errors:           make(map[string]int64, m.errors.Size()),
	}
	m.errors.Range(func(kind string, c *xsync.Counter) bool {
		snap.Errors[kind] = c.Value()
		return true
	})

	return snap
}

func (m *LinkMetrics) incSessionOpened() {
	if m == nil {
		return
	}
	m.sessionsOpened.Inc()
	m.activeSessions.Inc()
}

func (m *LinkMetrics) incSessionClosed() {
	if m == nil {
		return
	}
	m.sessionsClosed.Inc()
	m.activeSessions.Dec()
}

func (m *LinkMetrics) addBytesSent(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.bytesSent.Add(int64(n))
}

func (m *LinkMetrics) addBytesReceived(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.bytesReceived.Add(int64(n))
}

func (m *LinkMetrics) incCommandsExecuted() {
	if m == nil {
		return
	}
	m.commandsExecuted.Inc()
}

func (m *LinkMetrics) incError(err error) {
	if m == nil {
		return
	}

	kind := errorKind(err)
	if kind == "" {
		return
	}

	c, _ := m.errors.LoadOrCompute(kind, xsync.NewCounter)
	c.Inc()
}
