package api

import (
	"net/http"
	"runtime"
	"sort"
	"sync"
	"time"

	"walksim/pkg/tracker"
)

// StatsHandler reports sink delivery counters and process diagnostics.
type StatsHandler struct {
	tracker *tracker.Tracker
	started time.Time

	mu     sync.Mutex
	maxMem uint64
}

func NewStatsHandler(t *tracker.Tracker) *StatsHandler {
	return &StatsHandler{tracker: t, started: time.Now()}
}

type TransportStatsDTO struct {
	Sent        int64     `json:"sent"`
	Failures    int64     `json:"failures"`
	Connects    int64     `json:"connects"`
	ConnectFail int64     `json:"connect_errors"`
	Clears      int64     `json:"clears"`
	SuccessRate int64     `json:"success_rate"`
	LastSend    time.Time `json:"last_send,omitempty"`
}

type DiagnosticsDTO struct {
	MemoryMB    uint64  `json:"memory_mb"`
	MemoryMaxMB uint64  `json:"memory_max_mb"`
	Goroutines  int     `json:"goroutines"`
	UptimeSec   float64 `json:"uptime_sec"`
}

type StatsResponse struct {
	Diagnostics DiagnosticsDTO               `json:"diagnostics"`
	Transports  map[string]TransportStatsDTO `json:"transports"`
	Names       []string                     `json:"names"`
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snapshot := h.tracker.Snapshot()

	h.mu.Lock()
	diag := h.gatherDiagnostics()
	h.mu.Unlock()

	resp := StatsResponse{
		Diagnostics: diag,
		Transports:  make(map[string]TransportStatsDTO, len(snapshot)),
		Names:       make([]string, 0, len(snapshot)),
	}

	for name, s := range snapshot {
		total := s.Sent + s.Failures
		rate := int64(0)
		if total > 0 {
			rate = (s.Sent * 100) / total
		}
		resp.Transports[name] = TransportStatsDTO{
			Sent:        s.Sent,
			Failures:    s.Failures,
			Connects:    s.Connects,
			ConnectFail: s.ConnectFail,
			Clears:      s.Clears,
			SuccessRate: rate,
			LastSend:    s.LastSend(),
		}
		resp.Names = append(resp.Names, name)
	}
	sort.Strings(resp.Names)

	writeJSON(w, resp)
}

func (h *StatsHandler) gatherDiagnostics() DiagnosticsDTO {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	if m.Alloc > h.maxMem {
		h.maxMem = m.Alloc
	}

	return DiagnosticsDTO{
		MemoryMB:    bToMb(m.Alloc),
		MemoryMaxMB: bToMb(h.maxMem),
		Goroutines:  runtime.NumGoroutine(),
		UptimeSec:   time.Since(h.started).Seconds(),
	}
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
