package link

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/arloliu/go-instrlink/internal/devsim"
	"github.com/stretchr/testify/require"
)

func TestNewLink(t *testing.T) {
	require := require.New(t)

	l, err := NewLink(nil)
	require.Nil(l)
	require.ErrorIs(err, ErrConnConfigNil)

	cfg, err := NewConnectionConfig("127.0.0.1", 5025)
	require.NoError(err)

	l, err = NewLink(cfg)
	require.NoError(err)
	require.Same(cfg, l.Config())
	require.NotNil(l.Metrics())
}

func TestLink_ExecuteMetrics(t *testing.T) {
	require := require.New(t)

	d := newDevice(t, devsim.EchoMode)
	l, err := NewLink(newConfig(t, d))
	require.NoError(err)

	for i := 0; i < 3; i++ {
		cmd := []byte(fmt.Sprintf("INST:NSEL %d\n", i+1))
		rsp, err := l.Execute(context.Background(), cmd)
		require.NoError(err)
		require.Equal(cmd, rsp)
	}

	snap := l.Metrics().Snapshot()
	require.EqualValues(3, snap.SessionsOpened)
	require.EqualValues(3, snap.SessionsClosed)
	require.EqualValues(0, snap.ActiveSessions)
	require.EqualValues(3, snap.CommandsExecuted)
	require.EqualValues(3*len("INST:NSEL 1\n"), snap.BytesSent)
	require.EqualValues(snap.BytesSent, snap.BytesReceived)
	require.Empty(snap.Errors)
}

func TestLink_ErrorMetrics(t *testing.T) {
	require := require.New(t)

	silent := newDevice(t, devsim.SilentMode)
	l, err := NewLink(newConfig(t, silent, WithTimeout(100*time.Millisecond)))
	require.NoError(err)

	_, err = l.Execute(context.Background(), []byte("*OPC?\n"))
	require.ErrorIs(err, ErrTimeout)

	s, err := l.Open(context.Background())
	require.NoError(err)
	require.NoError(s.Close())
	require.ErrorIs(s.Send([]byte("*OPC?\n")), ErrSessionClosed)

	refusedCfg, err := NewConnectionConfig("127.0.0.1", closedPort(t), WithTimeout(200*time.Millisecond))
	require.NoError(err)
	refused, err := NewLink(refusedCfg)
	require.NoError(err)
	_, err = refused.Execute(context.Background(), []byte("*OPC?\n"))
	require.ErrorIs(err, ErrConnect)

	m := l.Metrics()
	require.EqualValues(1, m.ErrorCount(KindTimeout))
	require.EqualValues(1, m.ErrorCount(KindSessionClosed))
	require.EqualValues(0, m.ErrorCount(KindConnect))

	snap := m.Snapshot()
	require.EqualValues(2, snap.SessionsOpened)
	require.EqualValues(2, snap.SessionsClosed)
	require.EqualValues(0, snap.CommandsExecuted)
	require.Equal(map[string]int64{KindTimeout: 1, KindSessionClosed: 1}, snap.Errors)

	require.EqualValues(1, refused.Metrics().ErrorCount(KindConnect))
	require.EqualValues(0, refused.Metrics().Snapshot().SessionsOpened)
}

func TestLink_ConcurrentExecute(t *testing.T) {
	require := require.New(t)

	d := newDevice(t, devsim.EchoMode)
	l, err := NewLink(newConfig(t, d, WithTimeout(2*time.Second)))
	require.NoError(err)

	const workers = 20

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			cmd := []byte(fmt.Sprintf("SOUR%d:VOLT?\n", id))
			rsp, err := l.Execute(context.Background(), cmd)
			if err != nil {
				errs <- err
				return
			}
			if string(rsp) != string(cmd) {
				errs <- fmt.Errorf("worker %d: got %q", id, rsp)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(err)
	}

	snap := l.Metrics().Snapshot()
	require.EqualValues(workers, snap.SessionsOpened)
	require.EqualValues(workers, snap.CommandsExecuted)
	require.EqualValues(0, snap.ActiveSessions)
	require.Len(d.Received(), workers)
}

func TestLinkMetrics_Nil(t *testing.T) {
	require := require.New(t)

	var m *LinkMetrics
	m.incSessionOpened()
	m.incSessionClosed()
	m.addBytesSent(10)
	m.addBytesReceived(10)
	m.incCommandsExecuted()
	m.incError(ErrTimeout)

	require.Zero(m.ErrorCount(KindTimeout))
	require.Equal(MetricsSnapshot{Errors: map[string]int64{}}, m.Snapshot())
}
