// Package tcpsink delivers positions to a receiver over a length-framed binary TCP protocol.
package tcpsink

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"walksim/pkg/geo"
	"walksim/pkg/sink"
	"walksim/pkg/tracker"
)

// Name is the transport name reported to the tracker.
const Name = "tcp"

// DefaultDeviceID is announced when no device id is configured.
const DefaultDeviceID = "walksim-device"

// Config holds TCP transport settings.
type Config struct {
	DeviceID     string
	DialTimeout  time.Duration
	WriteTimeout time.Duration
}

// Client implements sink.Client over TCP.
type Client struct {
	mu      sync.Mutex
	cfg     Config
	conn    net.Conn
	state   sink.State
	tracker *tracker.Tracker
	now     func() time.Time
}

// NewClient creates an unconnected client.
func NewClient(cfg Config, tr *tracker.Tracker) *Client {
	if cfg.DeviceID == "" {
		cfg.DeviceID = DefaultDeviceID
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	return &Client{cfg: cfg, state: sink.StateDisconnected, tracker: tr, now: time.Now}
}

// Name implements sink.Client.
func (c *Client) Name() string { return Name }

// Connect dials the receiver and sends the login frame.
func (c *Client) Connect(ctx context.Context, host string, port int) error {
	login, err := LoginFrame(c.cfg.DeviceID)
	if err != nil {
		return sink.ConnectionError(host, port, err)
	}

	d := net.Dialer{Timeout: c.cfg.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", sink.Address(host, port))
	if err == nil {
		if err = c.write(conn, login); err != nil {
			conn.Close()
		}
	}
	if c.tracker != nil {
		c.tracker.TrackConnect(Name, err)
	}
	if err != nil {
		return sink.ConnectionError(host, port, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.state = sink.StateConnected
	c.mu.Unlock()

	slog.Debug("TCP: login sent", "address", conn.RemoteAddr().String(), "device", c.cfg.DeviceID)
	return nil
}

// Set implements sink.DeviceSink.
func (c *Client) Set(ctx context.Context, coord geo.Coordinate) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.CanSend() {
		return sink.TransportError(coord, sink.ErrNotConnected)
	}
	if err := c.write(c.conn, PositionFrame(coord, c.now())); err != nil {
		if c.tracker != nil {
			c.tracker.TrackFailure(Name)
		}
		return sink.TransportError(coord, err)
	}
	if c.tracker != nil {
		c.tracker.TrackSent(Name)
	}
	return nil
}

// Clear implements sink.DeviceSink.
func (c *Client) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.CanSend() {
		return sink.ErrNotConnected
	}
	if c.tracker != nil {
		c.tracker.TrackClear(Name)
	}
	if err := c.write(c.conn, ClearFrame(c.now())); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	return nil
}

// Close implements sink.Session.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = sink.StateClosed
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// GetState implements sink.Client.
func (c *Client) GetState() sink.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) write(conn net.Conn, b []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout)); err != nil {
		return err
	}
	_, err := conn.Write(b)
	return err
}
