package driftchat

// ConnState represents the current state of the live channel connection.
type ConnState int

const (
	// ConnDisconnected means the channel has never connected or has given up.
	ConnDisconnected ConnState = iota

	// ConnConnecting means the initial dial is in progress.
	ConnConnecting

	// ConnConnected means the channel is up and delivering events.
	ConnConnected

	// ConnReconnecting means the transport was lost and the channel is
	// retrying with the same credential.
	ConnReconnecting

	// ConnClosed means the channel was explicitly closed by the owner.
	ConnClosed
)

// String returns the string representation of a ConnState.
func (s ConnState) String() string {
	switch s {
	case ConnDisconnected:
		return "disconnected"
	case ConnConnecting:
		return "connecting"
	case ConnConnected:
		return "connected"
	case ConnReconnecting:
		return "reconnecting"
	case ConnClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// StateEvent reports a channel state transition.
type StateEvent struct {
	Old ConnState
	New ConnState
	Err error // cause of the transition, when there is one
}

// SessionState represents the lifecycle state of a room session.
type SessionState int

const (
	SessionIdle SessionState = iota
	SessionLoading
	SessionActive
	SessionClosing
	SessionClosed
	SessionError
)

// String returns the string representation of a SessionState.
func (s SessionState) String() string {
	switch s {
	case SessionIdle:
		return "idle"
	case SessionLoading:
		return "loading"
	case SessionActive:
		return "active"
	case SessionClosing:
		return "closing"
	case SessionClosed:
		return "closed"
	case SessionError:
		return "error"
	default:
		return "unknown"
	}
}
