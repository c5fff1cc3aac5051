// Package playback emits an interpolated route to a device sink in real time.
package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"walksim/pkg/geo"
	"walksim/pkg/logging"
	"walksim/pkg/pace"
	"walksim/pkg/route"
	"walksim/pkg/sink"
)

// ErrEngineUsed is returned when Run is called on an engine that already ran.
var ErrEngineUsed = errors.New("playback engine already used")

// Waiter blocks for d or until ctx is done.
type Waiter func(ctx context.Context, d time.Duration) error

// Wait is the default Waiter: a timer raced against cancellation.
func Wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver adds an observer. Observers are called in registration order.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

// WithWaiter replaces the real-time wait, mainly for tests.
func WithWaiter(w Waiter) Option {
	return func(e *Engine) { e.wait = w }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRunID sets the run id instead of generating one.
func WithRunID(id string) Option {
	return func(e *Engine) { e.runID = id }
}

// WithLogger sets the logger used for run logs.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// Engine plays one route to one sink. It is single-use.
type Engine struct {
	pace      pace.Config
	sink      sink.DeviceSink
	observers []Observer
	wait      Waiter
	now       func() time.Time
	logger    *slog.Logger
	runID     string

	mu    sync.RWMutex
	state State
	last  *Progress
}

// New creates an idle engine.
func New(p pace.Config, s sink.DeviceSink, opts ...Option) *Engine {
	e := &Engine{
		pace:  p,
		sink:  s,
		wait:  Wait,
		now:   time.Now,
		state: StateIdle,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.runID == "" {
		e.runID = uuid.NewString()
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	e.logger = e.logger.With("run", e.runID)
	return e
}

// RunID returns the id reported in progress and reports.
func (e *Engine) RunID() string { return e.runID }

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// LastProgress returns the most recent progress, false before the first point.
func (e *Engine) LastProgress() (Progress, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.last == nil {
		return Progress{}, false
	}
	return *e.last, true
}

// Run emits every interpolated point of r to the sink, waiting one pace
// interval after each. It returns when the route is done, the sink fails or
// ctx is cancelled. Cleanup of the sink is left to the caller.
func (e *Engine) Run(ctx context.Context, r route.Route) (Report, error) {
	e.mu.Lock()
	if e.state != StateIdle {
		e.mu.Unlock()
		return Report{RunID: e.runID, State: e.State(), Err: ErrEngineUsed}, ErrEngineUsed
	}
	e.state = StateRunning
	e.mu.Unlock()

	started := e.now()
	rep := Report{RunID: e.runID, StartedAt: started}

	plan, expanded, err := e.prepare(r, started)
	if err != nil {
		return e.finish(rep, err)
	}
	rep.TotalDistanceKm = plan.TotalDistanceKm
	rep.EstimatedEnd = plan.EstimatedEnd

	e.logger.Info("Playback: started",
		"segments", plan.Segments,
		"steps", plan.TotalSteps,
		"distance_km", fmt.Sprintf("%.3f", plan.TotalDistanceKm),
		"interval", plan.Interval,
		"eta", plan.EstimatedEnd.Format(time.TimeOnly))
	for _, o := range e.observers {
		o.OnStart(plan)
	}

	prog := Progress{
		RunID:           e.runID,
		SegmentCount:    plan.Segments,
		TotalSteps:      plan.TotalSteps,
		TotalDistanceKm: plan.TotalDistanceKm,
		EstimatedEnd:    plan.EstimatedEnd,
	}
	prev := r.Start()
	segs := r.Segments()

	for si, points := range expanded {
		seg := segs[si]
		bearing := geo.Bearing(seg.Start, seg.End)

		for i, pt := range points {
			if err := ctx.Err(); err != nil {
				return e.finish(rep, fmt.Errorf("cancelled at segment %d step %d: %w", si+1, i+1, err))
			}

			if err := e.sink.Set(ctx, pt); err != nil {
				return e.finish(rep, fmt.Errorf("segment %d step %d: %w", si+1, i+1, err))
			}
			rep.TotalSteps++

			prog.SegmentIndex = si
			prog.Step = i + 1
			prog.StepsInSegment = len(points)
			prog.StepsRemaining = len(points) - (i + 1)
			prog.StepsEmitted = rep.TotalSteps
			prog.DistanceCoveredKm += geo.Distance(prev, pt)
			prog.Coordinate = pt
			prog.Bearing = bearing
			prog.Elapsed = e.now().Sub(started)
			prev = pt
			e.publish(prog)

			logging.Trace(e.logger, "Playback: step",
				"segment", si+1, "step", i+1, "of", len(points), "coord", pt.String())

			if err := e.wait(ctx, plan.Interval); err != nil {
				return e.finish(rep, fmt.Errorf("cancelled at segment %d step %d: %w", si+1, i+1, err))
			}
		}
	}

	return e.finish(rep, nil)
}

// prepare validates inputs and expands all segments before anything is emitted.
func (e *Engine) prepare(r route.Route, started time.Time) (Plan, [][]geo.Coordinate, error) {
	if e.sink == nil {
		return Plan{}, nil, errors.New("no device sink")
	}
	if err := e.pace.Validate(); err != nil {
		return Plan{}, nil, err
	}
	if r.Len() < 2 {
		return Plan{}, nil, fmt.Errorf("%w: need at least 2 coordinates, got %d", route.ErrInvalidRoute, r.Len())
	}
	interval, err := e.pace.Interval()
	if err != nil {
		return Plan{}, nil, err
	}

	segs := r.Segments()
	expanded := make([][]geo.Coordinate, 0, len(segs))
	total := 0
	for i, seg := range segs {
		pts, err := route.Expand(seg, e.pace)
		if err != nil {
			return Plan{}, nil, fmt.Errorf("segment %d: %w", i+1, err)
		}
		expanded = append(expanded, pts)
		total += len(pts)
	}

	dist := r.DistanceKm()
	return Plan{
		RunID:           e.runID,
		Waypoints:       r.Len(),
		Segments:        len(segs),
		TotalSteps:      total,
		TotalDistanceKm: dist,
		SpeedKmh:        e.pace.SpeedKmh,
		Interval:        interval,
		StartedAt:       started,
		EstimatedEnd:    started.Add(e.pace.TravelTime(dist)),
		Bound:           geo.Bound(r.Points()),
	}, expanded, nil
}

func (e *Engine) publish(p Progress) {
	e.mu.Lock()
	e.last = &p
	e.mu.Unlock()
	for _, o := range e.observers {
		o.OnProgress(p)
	}
}

func (e *Engine) finish(rep Report, err error) (Report, error) {
	rep.FinishedAt = e.now()
	rep.Elapsed = rep.FinishedAt.Sub(rep.StartedAt)
	rep.Err = err
	rep.State = StateCompleted
	if err != nil {
		rep.State = StateFailed
	}

	e.mu.Lock()
	e.state = rep.State
	e.mu.Unlock()

	if err != nil {
		e.logger.Error("Playback: failed", "steps", rep.TotalSteps, "elapsed", rep.Elapsed.Round(time.Millisecond), "error", err)
	} else {
		e.logger.Info("Playback: completed",
			"steps", rep.TotalSteps,
			"distance_km", fmt.Sprintf("%.3f", rep.TotalDistanceKm),
			"elapsed", rep.Elapsed.Round(time.Millisecond))
	}
	for _, o := range e.observers {
		o.OnFinish(rep)
	}
	return rep, err
}
