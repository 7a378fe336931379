package link

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAtomicSessionState(t *testing.T) {
	require := require.New(t)

	var st atomicSessionState
	require.True(st.isOpened())
	require.Equal("Opened", st.get().String())

	require.True(st.toClosing())
	require.False(st.isOpened())
	require.Equal("Closing", st.get().String())
	require.False(st.toClosing())

	st.toClosed()
	require.Equal("Closed", st.get().String())
	require.False(st.toClosing())
	require.Equal("Unknown", sessionState(9).String())
}

func TestAtomicSessionState_SingleCloser(t *testing.T) {
	var (
		st      atomicSessionState
		winners atomic.Int32
		wg      sync.WaitGroup
	)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if st.toClosing() {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, winners.Load())
}
