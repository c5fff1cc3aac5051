package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"walksim/pkg/logging"
	"walksim/pkg/model"
	"walksim/pkg/playback"
)

const bannerTime = "2006-01-02 15:04:05"

// consoleObserver prints the start banner, a rewriting progress line and the end banner.
type consoleObserver struct {
	mu  sync.Mutex
	out io.Writer
}

func newConsoleObserver(out io.Writer) *consoleObserver {
	return &consoleObserver{out: out}
}

func (c *consoleObserver) OnStart(p playback.Plan) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.out, "\nWalk simulation started\n")
	fmt.Fprintf(c.out, "Speed:          %.1f km/h\n", p.SpeedKmh)
	fmt.Fprintf(c.out, "Step interval:  %.2fs\n\n", p.Interval.Seconds())
	fmt.Fprintf(c.out, "Start time:     %s\n", p.StartedAt.Format(bannerTime))
	fmt.Fprintf(c.out, "Est. arrival:   %s\n", p.EstimatedEnd.Format(bannerTime))
	fmt.Fprintf(c.out, "Est. duration:  %s\n\n", hoursMinutes(p.EstimatedDuration()))
	fmt.Fprintf(c.out, "Waypoints:      %d (%d segments)\n", p.Waypoints, p.Segments)
	fmt.Fprintf(c.out, "Distance:       %.2f km\n", p.TotalDistanceKm)
	fmt.Fprintf(c.out, "Expected steps: %d\n\n", p.TotalSteps)
}

func (c *consoleObserver) OnProgress(p playback.Progress) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p.SegmentCount > 1 {
		fmt.Fprintf(c.out, "\rsegment %d/%d step %d/%d (remaining %d)   ",
			p.SegmentIndex+1, p.SegmentCount, p.Step, p.StepsInSegment, p.StepsRemaining)
		return
	}
	fmt.Fprintf(c.out, "\rstep %d/%d (remaining %d)   ", p.Step, p.StepsInSegment, p.StepsRemaining)
}

func (c *consoleObserver) OnFinish(r playback.Report) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if r.Err != nil {
		fmt.Fprintf(c.out, "\nWalk simulation failed after %d steps: %v\n", r.TotalSteps, r.Err)
		return
	}
	fmt.Fprintf(c.out, "\nWalk simulation completed\n")
	fmt.Fprintf(c.out, "Actual duration: %s\n", hoursMinutes(r.Elapsed))
	fmt.Fprintf(c.out, "End time:        %s\n", r.FinishedAt.Format(bannerTime))
}

// hoursMinutes formats d as "0.5h (30min)".
func hoursMinutes(d time.Duration) string {
	return fmt.Sprintf("%.1fh (%dmin)", d.Hours(), int(d.Minutes()))
}

// eventObserver writes run start and outcome to the events log.
type eventObserver struct{}

func (eventObserver) OnStart(p playback.Plan) {
	logging.LogEvent(&model.RunEvent{
		Timestamp: p.StartedAt,
		Type:      model.EventStarted,
		RunID:     p.RunID,
		Title:     fmt.Sprintf("%.2f km at %.1f km/h", p.TotalDistanceKm, p.SpeedKmh),
		Summary:   fmt.Sprintf("%d steps, eta %s", p.TotalSteps, p.EstimatedEnd.Format(time.TimeOnly)),
	})
}

func (eventObserver) OnProgress(playback.Progress) {}

func (eventObserver) OnFinish(r playback.Report) {
	ev := &model.RunEvent{
		Timestamp: r.FinishedAt,
		Type:      model.EventCompleted,
		RunID:     r.RunID,
		Title:     fmt.Sprintf("%d steps in %s", r.TotalSteps, r.Elapsed.Round(time.Second)),
	}
	if r.Err != nil {
		ev.Type = model.EventFailed
		ev.Summary = r.Err.Error()
	}
	logging.LogEvent(ev)
}
