package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"walksim/pkg/playback"
)

// ProgressResponse is the API response structure for /api/progress.
type ProgressResponse struct {
	State    playback.State     `json:"state"`
	Plan     *playback.Plan     `json:"plan,omitempty"`
	Progress *playback.Progress `json:"progress,omitempty"`
	Percent  float64            `json:"percent"`
	Report   *playback.Report   `json:"report,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// ProgressHandler tracks the current run. It is registered as a playback observer.
type ProgressHandler struct {
	mu       sync.RWMutex
	state    playback.State
	plan     *playback.Plan
	progress *playback.Progress
	report   *playback.Report
}

func NewProgressHandler() *ProgressHandler {
	return &ProgressHandler{state: playback.StateIdle}
}

// OnStart implements playback.Observer.
func (h *ProgressHandler) OnStart(p playback.Plan) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state = playback.StateRunning
	h.plan = &p
	h.progress = nil
	h.report = nil
}

// OnProgress implements playback.Observer.
func (h *ProgressHandler) OnProgress(p playback.Progress) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.progress = &p
}

// OnFinish implements playback.Observer.
func (h *ProgressHandler) OnFinish(r playback.Report) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state = r.State
	h.report = &r
}

// Snapshot returns the current response body.
func (h *ProgressHandler) Snapshot() ProgressResponse {
	h.mu.RLock()
	defer h.mu.RUnlock()

	resp := ProgressResponse{
		State:    h.state,
		Plan:     h.plan,
		Progress: h.progress,
		Report:   h.report,
	}
	if h.progress != nil {
		resp.Percent = h.progress.Percent()
	}
	if h.report != nil {
		resp.Error = h.report.ErrorText()
		if h.report.State == playback.StateCompleted {
			resp.Percent = 100
		}
	}
	return resp
}

func (h *ProgressHandler) handleProgress(w http.ResponseWriter, r *http.Request) {
	resp := h.Snapshot()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode progress response", "error", err)
	}
}
