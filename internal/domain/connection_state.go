package domain

// ConnectionState is the lifecycle state of the stream connection.
// A single authoritative copy is owned by the stream layer; everything
// else only reads it.
type ConnectionState int32

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
)

// String returns the state name used in logs and the health snapshot.
func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	default:
		return "DISCONNECTED"
	}
}
