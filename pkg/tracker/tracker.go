// Package tracker counts delivery outcomes per sink transport.
package tracker

import (
	"sync"
	"sync/atomic"
	"time"
)

// Tracker tracks delivery statistics per transport.
type Tracker struct {
	mu    sync.RWMutex
	stats map[string]*TransportStats
}

// TransportStats holds counters for a specific transport.
// Fields are accessed atomically.
type TransportStats struct {
	Sent        int64
	Failures    int64
	Connects    int64
	ConnectFail int64
	Clears      int64
	LastSendNs  int64 // unix nanos of the last successful send
}

// LastSend returns the time of the last successful send, or the zero time.
func (s TransportStats) LastSend() time.Time {
	if s.LastSendNs == 0 {
		return time.Time{}
	}
	return time.Unix(0, s.LastSendNs)
}

// New creates a new Tracker.
func New() *Tracker {
	return &Tracker{
		stats: make(map[string]*TransportStats),
	}
}

// getStats returns the stats object for a transport, creating it if needed.
func (t *Tracker) getStats(transport string) *TransportStats {
	t.mu.RLock()
	s, ok := t.stats[transport]
	t.mu.RUnlock()
	if ok {
		return s
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// Double check
	if s, ok = t.stats[transport]; ok {
		return s
	}
	s = &TransportStats{}
	t.stats[transport] = s
	return s
}

// TrackSent records a delivered location update.
func (t *Tracker) TrackSent(transport string) {
	s := t.getStats(transport)
	atomic.AddInt64(&s.Sent, 1)
	atomic.StoreInt64(&s.LastSendNs, time.Now().UnixNano())
}

func (t *Tracker) TrackFailure(transport string) {
	atomic.AddInt64(&t.getStats(transport).Failures, 1)
}

func (t *Tracker) TrackConnect(transport string, err error) {
	if err != nil {
		atomic.AddInt64(&t.getStats(transport).ConnectFail, 1)
		return
	}
	atomic.AddInt64(&t.getStats(transport).Connects, 1)
}

func (t *Tracker) TrackClear(transport string) {
	atomic.AddInt64(&t.getStats(transport).Clears, 1)
}

// Snapshot returns a copy of the current stats.
func (t *Tracker) Snapshot() map[string]TransportStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make(map[string]TransportStats)
	for k, v := range t.stats {
		result[k] = TransportStats{
			Sent:        atomic.LoadInt64(&v.Sent),
			Failures:    atomic.LoadInt64(&v.Failures),
			Connects:    atomic.LoadInt64(&v.Connects),
			ConnectFail: atomic.LoadInt64(&v.ConnectFail),
			Clears:      atomic.LoadInt64(&v.Clears),
			LastSendNs:  atomic.LoadInt64(&v.LastSendNs),
		}
	}
	return result
}

// Reset zeroes all counters but keeps the known transports.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k := range t.stats {
		t.stats[k] = &TransportStats{}
	}
}
