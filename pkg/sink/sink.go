package sink

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"walksim/pkg/geo"
)

var (
	// ErrNotConnected is returned when a sink action requires a connection.
	ErrNotConnected = errors.New("receiver not connected")
	// ErrConnection is returned when a session cannot be established.
	ErrConnection = errors.New("connection failed")
	// ErrTransport is returned when a location update could not be delivered.
	ErrTransport = errors.New("transport failure")
)

// DeviceSink receives simulated positions.
type DeviceSink interface {
	// Set moves the simulated device to c.
	Set(ctx context.Context, c geo.Coordinate) error
	// Clear stops location simulation on the device. Best effort.
	Clear(ctx context.Context) error
}

// Session is the transport that carries updates to a receiver.
type Session interface {
	// Connect opens the session to host:port.
	Connect(ctx context.Context, host string, port int) error
	// Close releases the session. Calling Close more than once is allowed.
	Close() error
}

// Client is a session that is also a sink, which is how every transport here is built.
type Client interface {
	Session
	DeviceSink
	// GetState returns the current connection state.
	GetState() State
	// Name identifies the transport in logs and stats.
	Name() string
}

// ConnectionError wraps a dial failure with the target address.
func ConnectionError(host string, port int, err error) error {
	return fmt.Errorf("%w to %s: %w", ErrConnection, Address(host, port), err)
}

// TransportError wraps a failed send with the coordinate that was being delivered.
func TransportError(c geo.Coordinate, err error) error {
	return fmt.Errorf("%w: set %s: %w", ErrTransport, c, err)
}

// Address joins host and port, bracketing IPv6 literals.
func Address(host string, port int) string {
	return net.JoinHostPort(strings.Trim(host, "[]"), strconv.Itoa(port))
}
