package link

import "sync/atomic"

type sessionState uint32

const (
	openedState sessionState = iota
	closingState
	closedState
)

func (st sessionState) String() string {
	switch st {
	case openedState:
		return "Opened"
	case closingState:
		return "Closing"
	case closedState:
		return "Closed"
	default:
		return "Unknown"
	}
}

// atomicSessionState tracks the lifecycle of a session. The zero value is openedState,
// and the only transitions are Opened -> Closing -> Closed.
type atomicSessionState struct {
	state atomic.Uint32
}

func (st *atomicSessionState) get() sessionState {
	return sessionState(st.state.Load())
}

func (st *atomicSessionState) isOpened() bool {
	return st.get() == openedState
}

// toClosing reports whether the caller won the right to release the session's resources.
func (st *atomicSessionState) toClosing() bool {
	return st.state.CompareAndSwap(uint32(openedState), uint32(closingState))
}

func (st *atomicSessionState) toClosed() {
	st.state.Store(uint32(closedState))
}
