package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DefaultTimeout bounds a probe that does not set its own.
const DefaultTimeout = 5 * time.Second

// CheckFunc is a function that performs a startup check.
// It returns nil if the check passes, or an error if it fails.
type CheckFunc func(ctx context.Context) error

// Probe represents a single startup check.
type Probe struct {
	Name     string
	Check    CheckFunc
	Critical bool          // a failure aborts the run before the receiver is contacted
	Timeout  time.Duration // zero means DefaultTimeout
}

// Result holds the outcome of a single probe.
type Result struct {
	Probe    Probe
	Error    error
	Duration time.Duration
}

// Passed reports whether the probe succeeded.
func (r Result) Passed() bool { return r.Error == nil }

// Run executes the probes in order and returns their results.
// Each check gets its own timeout so one slow probe cannot stall startup.
func Run(ctx context.Context, probes []Probe) []Result {
	results := make([]Result, len(probes))

	for i, p := range probes {
		start := time.Now()

		timeout := p.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		checkCtx, cancel := context.WithTimeout(ctx, timeout)
		err := p.Check(checkCtx)
		cancel()

		results[i] = Result{
			Probe:    p,
			Error:    err,
			Duration: time.Since(start),
		}
	}

	return results
}

// AnalyzeResults logs a summary and joins the errors of failed critical probes.
func AnalyzeResults(results []Result) error {
	var criticalErrors []error
	failed := 0

	for _, r := range results {
		status := "PASS"
		if !r.Passed() {
			status = "FAIL"
			failed++
		}

		msg := fmt.Sprintf("Startup check [%s] %-10s (%v)", status, r.Probe.Name, r.Duration.Round(time.Millisecond))

		switch {
		case r.Passed():
			slog.Debug(msg)
		case r.Probe.Critical:
			slog.Error(msg, "error", r.Error)
			criticalErrors = append(criticalErrors, fmt.Errorf("%s: %w", r.Probe.Name, r.Error))
		default:
			slog.Warn(msg, "error", r.Error)
		}
	}

	slog.Info("Startup checks finished", "total", len(results), "failed", failed)

	if len(criticalErrors) > 0 {
		return errors.Join(criticalErrors...)
	}
	return nil
}
