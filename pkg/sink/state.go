// Package sink defines the receiver-side interfaces that simulated positions are delivered to.
package sink

// State represents the connection state of a sink session.
type State string

const (
	// StateDisconnected indicates the session was never opened.
	StateDisconnected State = "disconnected"
	// StateConnected indicates the session is open and accepting updates.
	StateConnected State = "connected"
	// StateClosed indicates the session was released.
	StateClosed State = "closed"
)

// CanSend reports whether updates may be written in state s.
func (s State) CanSend() bool {
	return s == StateConnected
}
