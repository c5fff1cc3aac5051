package playback

import (
	"time"

	"github.com/paulmach/orb"

	"walksim/pkg/geo"
)

// Plan describes a run right before the first point is emitted.
type Plan struct {
	RunID           string        `json:"run_id"`
	Waypoints       int           `json:"waypoints"`
	Segments        int           `json:"segments"`
	TotalSteps      int           `json:"total_steps"`
	TotalDistanceKm float64       `json:"total_distance_km"`
	SpeedKmh        float64       `json:"speed_kmh"`
	Interval        time.Duration `json:"interval"`
	StartedAt       time.Time     `json:"started_at"`
	EstimatedEnd    time.Time     `json:"estimated_end"`
	Bound           orb.Bound     `json:"bound"`
}

// EstimatedDuration is the static travel time derived from distance and speed.
func (p Plan) EstimatedDuration() time.Duration {
	return p.EstimatedEnd.Sub(p.StartedAt)
}

// Progress is published after every emitted point.
type Progress struct {
	RunID             string         `json:"run_id"`
	SegmentIndex      int            `json:"segment_index"` // 0-based
	SegmentCount      int            `json:"segment_count"`
	Step              int            `json:"step"` // 1-based within the segment
	StepsInSegment    int            `json:"steps_in_segment"`
	StepsRemaining    int            `json:"steps_remaining"` // within the segment
	StepsEmitted      int            `json:"steps_emitted"`
	TotalSteps        int            `json:"total_steps"`
	DistanceCoveredKm float64        `json:"distance_covered_km"`
	TotalDistanceKm   float64        `json:"total_distance_km"`
	Coordinate        geo.Coordinate `json:"coordinate"`
	Bearing           float64        `json:"bearing"`
	Elapsed           time.Duration  `json:"elapsed"`
	EstimatedEnd      time.Time      `json:"estimated_end"`
}

// Percent returns overall completion by emitted steps, 0..100.
func (p Progress) Percent() float64 {
	if p.TotalSteps == 0 {
		return 0
	}
	return float64(p.StepsEmitted) / float64(p.TotalSteps) * 100
}

// Report is the outcome of a run.
type Report struct {
	RunID           string        `json:"run_id"`
	State           State         `json:"state"`
	TotalDistanceKm float64       `json:"total_distance_km"`
	TotalSteps      int           `json:"total_steps"` // points actually emitted
	StartedAt       time.Time     `json:"started_at"`
	EstimatedEnd    time.Time     `json:"estimated_end"`
	FinishedAt      time.Time     `json:"finished_at"`
	Elapsed         time.Duration `json:"elapsed"`
	Err             error         `json:"-"`
}

// ErrorText returns the failure message, empty on success.
func (r Report) ErrorText() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Observer receives run events synchronously from the playback loop.
// Implementations must not block for long; they delay the next step.
type Observer interface {
	OnStart(Plan)
	OnProgress(Progress)
	OnFinish(Report)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Start    func(Plan)
	Progress func(Progress)
	Finish   func(Report)
}

func (f ObserverFuncs) OnStart(p Plan) {
	if f.Start != nil {
		f.Start(p)
	}
}

func (f ObserverFuncs) OnProgress(p Progress) {
	if f.Progress != nil {
		f.Progress(p)
	}
}

func (f ObserverFuncs) OnFinish(r Report) {
	if f.Finish != nil {
		f.Finish(r)
	}
}
