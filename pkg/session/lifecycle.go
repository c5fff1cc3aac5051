// Package session owns the receiver session around a playback run and
// guarantees its teardown.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"walksim/pkg/logging"
	"walksim/pkg/model"
	"walksim/pkg/sink"
)

// DefaultClearTimeout bounds the best-effort Clear during cleanup.
const DefaultClearTimeout = 5 * time.Second

// RunFunc is the work done while the session is open.
type RunFunc func(ctx context.Context, s sink.DeviceSink) error

// Lifecycle connects a client, runs work against it, and cleans up exactly once.
type Lifecycle struct {
	client       sink.Client
	clearTimeout time.Duration
	runID        string

	once       sync.Once
	mu         sync.Mutex
	cleanupErr error
	cleanups   int
}

// Option configures a Lifecycle.
type Option func(*Lifecycle)

// WithClearTimeout overrides DefaultClearTimeout.
func WithClearTimeout(d time.Duration) Option {
	return func(l *Lifecycle) { l.clearTimeout = d }
}

// WithRunID tags events with a run id.
func WithRunID(id string) Option {
	return func(l *Lifecycle) { l.runID = id }
}

// New creates a lifecycle for client.
func New(client sink.Client, opts ...Option) *Lifecycle {
	l := &Lifecycle{client: client, clearTimeout: DefaultClearTimeout}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run connects to host:port, calls fn and always cleans up afterwards.
// The returned error is the connect or fn error; cleanup failures are only
// logged and kept for CleanupErr.
func (l *Lifecycle) Run(ctx context.Context, host string, port int, fn RunFunc) error {
	defer l.Cleanup(ctx)

	if err := l.client.Connect(ctx, host, port); err != nil {
		return err
	}
	logging.LogEvent(&model.RunEvent{
		Type:    model.EventConnected,
		RunID:   l.runID,
		Title:   fmt.Sprintf("%s receiver %s", l.client.Name(), sink.Address(host, port)),
		Summary: "session open",
	})
	slog.Info("Session: connected", "transport", l.client.Name(), "address", sink.Address(host, port))

	return fn(ctx, l.client)
}

// Cleanup clears the device and closes the session. Only the first call
// has any effect. It never panics on sink errors and never returns them.
func (l *Lifecycle) Cleanup(ctx context.Context) {
	l.once.Do(func() {
		l.mu.Lock()
		l.cleanups++
		l.mu.Unlock()

		var errs []error
		if l.client.GetState().CanSend() {
			cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.clearTimeout)
			if err := l.client.Clear(cctx); err != nil {
				errs = append(errs, fmt.Errorf("clear: %w", err))
			}
			cancel()
		}
		if err := l.client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close: %w", err))
		}

		err := errors.Join(errs...)
		l.mu.Lock()
		l.cleanupErr = err
		l.mu.Unlock()

		summary := "session closed"
		if err != nil {
			summary = err.Error()
			slog.Warn("Session: cleanup incomplete", "transport", l.client.Name(), "error", err)
		} else {
			slog.Debug("Session: cleaned up", "transport", l.client.Name())
		}
		logging.LogEvent(&model.RunEvent{Type: model.EventCleanup, RunID: l.runID, Title: l.client.Name(), Summary: summary})
	})
}

// CleanupErr returns what went wrong during cleanup, nil if nothing did.
func (l *Lifecycle) CleanupErr() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cleanupErr
}

// Cleanups returns how many times cleanup actually ran (0 or 1).
func (l *Lifecycle) Cleanups() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cleanups
}
