package model

import (
	"time"
)

// RunEventType classifies entries in the events log.
type RunEventType string

const (
	EventConnected RunEventType = "connected"
	EventStarted   RunEventType = "started"
	EventCompleted RunEventType = "completed"
	EventFailed    RunEventType = "failed"
	EventCleanup   RunEventType = "cleanup"
)

// RunEvent is one line in the events log.
type RunEvent struct {
	Timestamp time.Time    `json:"timestamp"`
	Type      RunEventType `json:"type"`
	RunID     string       `json:"run_id,omitempty"`
	Title     string       `json:"title"`
	Summary   string       `json:"summary,omitempty"`
}

// RunRecord is the persisted outcome of one playback run.
type RunRecord struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`   // route source description, e.g. "file walk.gpx"
	Provider   string    `json:"provider"` // sink transport name
	SpeedKmh   float64   `json:"speed_kmh"`
	Waypoints  int       `json:"waypoints"`
	DistanceKm float64   `json:"distance_km"`
	Steps      int       `json:"steps"`
	State      string    `json:"state"` // "completed" or "failed"
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Route bounding box
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Duration returns the wall time the run took.
func (r *RunRecord) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Succeeded reports whether the run completed.
func (r *RunRecord) Succeeded() bool {
	return r.State == "completed"
}
