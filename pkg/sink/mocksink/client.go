// Package mocksink provides an in-memory receiver for dry runs and tests.
package mocksink

import (
	"context"
	"errors"
	"sync"

	"walksim/pkg/geo"
	"walksim/pkg/sink"
	"walksim/pkg/tracker"
)

// Name is the transport name reported to the tracker.
const Name = "mock"

// ErrInjected is the default error returned by injected failures.
var ErrInjected = errors.New("injected failure")

// Config holds failure injection for the mock receiver.
type Config struct {
	// FailOnSet makes the n-th Set call (1-based) fail. Zero disables.
	FailOnSet int
	// FailConnect makes Connect fail.
	FailConnect bool
	// FailClear makes Clear fail.
	FailClear bool
	// FailClose makes Close fail.
	FailClose bool
	// Err is returned by injected failures. Defaults to ErrInjected.
	Err error
}

// MockClient implements sink.Client and records every call.
type MockClient struct {
	mu       sync.Mutex
	config   Config
	state    sink.State
	tracker  *tracker.Tracker
	points   []geo.Coordinate
	setCalls int
	clears   int
	closes   int
	connects int
	host     string
	port     int
	onSet    func(geo.Coordinate)
}

// NewClient creates a new mock receiver.
func NewClient(cfg Config) *MockClient {
	if cfg.Err == nil {
		cfg.Err = ErrInjected
	}
	return &MockClient{
		config: cfg,
		state:  sink.StateDisconnected,
	}
}

// SetTracker attaches a stats tracker.
func (m *MockClient) SetTracker(t *tracker.Tracker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracker = t
}

// OnSet registers a hook called after every successful Set.
func (m *MockClient) OnSet(fn func(geo.Coordinate)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSet = fn
}

// Name implements sink.Client.
func (m *MockClient) Name() string { return Name }

// Connect implements sink.Session.
func (m *MockClient) Connect(ctx context.Context, host string, port int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connects++
	m.host, m.port = host, port

	var err error
	if m.config.FailConnect {
		err = sink.ConnectionError(host, port, m.config.Err)
	}
	if m.tracker != nil {
		m.tracker.TrackConnect(Name, err)
	}
	if err != nil {
		return err
	}
	m.state = sink.StateConnected
	return nil
}

// Set implements sink.DeviceSink.
func (m *MockClient) Set(ctx context.Context, c geo.Coordinate) error {
	m.mu.Lock()
	m.setCalls++
	if !m.state.CanSend() {
		m.mu.Unlock()
		return sink.TransportError(c, sink.ErrNotConnected)
	}
	if m.config.FailOnSet > 0 && m.setCalls == m.config.FailOnSet {
		if m.tracker != nil {
			m.tracker.TrackFailure(Name)
		}
		m.mu.Unlock()
		return sink.TransportError(c, m.config.Err)
	}
	m.points = append(m.points, c)
	if m.tracker != nil {
		m.tracker.TrackSent(Name)
	}
	hook := m.onSet
	m.mu.Unlock()

	if hook != nil {
		hook(c)
	}
	return nil
}

// Clear implements sink.DeviceSink.
func (m *MockClient) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	if m.tracker != nil {
		m.tracker.TrackClear(Name)
	}
	if m.config.FailClear {
		return m.config.Err
	}
	return nil
}

// Close implements sink.Session.
func (m *MockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closes++
	m.state = sink.StateClosed
	if m.config.FailClose {
		return m.config.Err
	}
	return nil
}

// GetState implements sink.Client.
func (m *MockClient) GetState() sink.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Points returns a copy of every successfully delivered coordinate.
func (m *MockClient) Points() []geo.Coordinate {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]geo.Coordinate, len(m.points))
	copy(cp, m.points)
	return cp
}

// SetCalls returns how many times Set was called, including failed calls.
func (m *MockClient) SetCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setCalls
}

// Clears returns how many times Clear was called.
func (m *MockClient) Clears() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clears
}

// Closes returns how many times Close was called.
func (m *MockClient) Closes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

// Connects returns how many times Connect was called.
func (m *MockClient) Connects() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connects
}
