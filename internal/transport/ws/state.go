package ws

// ConnState represents the current state of the server connection
type ConnState int

const (
	// StateDisconnected means the client is not connected and no reconnect
	// is pending.
	StateDisconnected ConnState = iota

	// StateConnecting means the first connection attempt is in flight.
	StateConnecting

	// StateConnected means the connection is open and ready.
	StateConnected

	// StateReconnecting means the connection dropped and a reconnect
	// attempt is pending or in flight.
	StateReconnecting
)

// String returns the string representation of a ConnState.
func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}
