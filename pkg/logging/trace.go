package logging

import "log/slog"

// EnableTrace turns on per-step debug lines. Set from log.trace.
var EnableTrace = false

// Trace logs at DEBUG, but only when EnableTrace is set.
// The playback loop calls it once per emitted point.
func Trace(logger *slog.Logger, msg string, args ...any) {
	if EnableTrace {
		logger.Debug(msg, args...)
	}
}
