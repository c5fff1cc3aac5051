package wssink

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"walksim/pkg/geo"
	"walksim/pkg/sink"
	"walksim/pkg/tracker"
)

// Name is the transport name reported to the tracker.
const Name = "websocket"

// Config holds WebSocket transport settings.
type Config struct {
	Path         string        // request path on the receiver, e.g. "/location"
	DialTimeout  time.Duration // handshake timeout
	WriteTimeout time.Duration // per-frame write deadline
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		Path:         "/location",
		DialTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

// Client implements sink.Client over a WebSocket connection.
type Client struct {
	mu      sync.Mutex
	cfg     Config
	conn    *websocket.Conn
	state   sink.State
	session string
	seq     uint64
	tracker *tracker.Tracker
}

// NewClient creates an unconnected client.
func NewClient(cfg Config, tr *tracker.Tracker) *Client {
	def := DefaultConfig()
	if cfg.Path == "" {
		cfg.Path = def.Path
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = def.DialTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	return &Client{
		cfg:     cfg,
		state:   sink.StateDisconnected,
		tracker: tr,
	}
}

// Name implements sink.Client.
func (c *Client) Name() string { return Name }

// SessionID returns the id announced to the receiver, empty before Connect.
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Connect implements sink.Session.
func (c *Client) Connect(ctx context.Context, host string, port int) error {
	u := url.URL{Scheme: "ws", Host: sink.Address(host, port), Path: c.cfg.Path}

	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.DialTimeout}
	conn, resp, err := dialer.DialContext(ctx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	c.track(func(t *tracker.Tracker) { t.TrackConnect(Name, err) })
	if err != nil {
		if resp != nil {
			slog.Warn("WebSocket: handshake rejected", "status", resp.Status, "url", u.String())
		}
		return sink.ConnectionError(host, port, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn = conn
	c.session = uuid.New().String()
	c.seq = 0
	c.state = sink.StateConnected

	if err := c.writeLocked(Message{Type: TypeHello}); err != nil {
		c.conn.Close()
		c.conn = nil
		c.state = sink.StateDisconnected
		return sink.ConnectionError(host, port, err)
	}
	slog.Debug("WebSocket: connected", "url", u.String(), "session", c.session)
	return nil
}

// Set implements sink.DeviceSink.
func (c *Client) Set(ctx context.Context, coord geo.Coordinate) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.CanSend() {
		return sink.TransportError(coord, sink.ErrNotConnected)
	}
	if err := c.writeLocked(Message{Type: TypeSet, Lat: coord.Lat, Lon: coord.Lon}); err != nil {
		c.track(func(t *tracker.Tracker) { t.TrackFailure(Name) })
		return sink.TransportError(coord, err)
	}
	c.track(func(t *tracker.Tracker) { t.TrackSent(Name) })
	return nil
}

// Clear implements sink.DeviceSink.
func (c *Client) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.CanSend() {
		return sink.ErrNotConnected
	}
	c.track(func(t *tracker.Tracker) { t.TrackClear(Name) })
	if err := c.writeLocked(Message{Type: TypeClear}); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	return nil
}

// Close implements sink.Session.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		c.state = sink.StateClosed
		return nil
	}

	deadline := time.Now().Add(c.cfg.WriteTimeout)
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "walk finished")
	closeErr := c.conn.WriteControl(websocket.CloseMessage, msg, deadline)
	err := c.conn.Close()
	c.conn = nil
	c.state = sink.StateClosed

	if closeErr != nil && closeErr != websocket.ErrCloseSent {
		slog.Debug("WebSocket: close frame not delivered", "error", closeErr)
	}
	return err
}

// GetState implements sink.Client.
func (c *Client) GetState() sink.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) writeLocked(m Message) error {
	c.seq++
	m.Session = c.session
	m.Seq = c.seq
	m.Timestamp = time.Now().UTC()

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout)); err != nil {
		return err
	}
	return c.conn.WriteJSON(m)
}

func (c *Client) track(fn func(*tracker.Tracker)) {
	if c.tracker != nil {
		fn(c.tracker)
	}
}
