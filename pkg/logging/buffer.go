package logging

import (
	"strings"
	"sync"
)

// DefaultCaptureLines is how many lines a capture keeps.
const DefaultCaptureLines = 50

// LogCaptureWriter is a thread-safe writer that keeps the most recent lines.
type LogCaptureWriter struct {
	mu    sync.RWMutex
	lines []string
	max   int
}

// NewLogCapture returns a capture holding up to max lines.
func NewLogCapture(max int) *LogCaptureWriter {
	if max <= 0 {
		max = 1
	}
	return &LogCaptureWriter{max: max}
}

// GlobalLogCapture captures INFO+ server log lines.
var GlobalLogCapture = NewLogCapture(DefaultCaptureLines)

// GlobalEventCapture captures run events.
var GlobalEventCapture = NewLogCapture(DefaultCaptureLines)

// Write implements io.Writer. Each call is stored as one line.
func (w *LogCaptureWriter) Write(p []byte) (n int, err error) {
	line := strings.TrimRight(string(p), "\n")

	w.mu.Lock()
	defer w.mu.Unlock()
	w.lines = append(w.lines, line)
	if len(w.lines) > w.max {
		w.lines = w.lines[len(w.lines)-w.max:]
	}
	return len(p), nil
}

// GetLastLine returns the most recent line.
func (w *LogCaptureWriter) GetLastLine() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if len(w.lines) == 0 {
		return ""
	}
	return w.lines[len(w.lines)-1]
}

// Lines returns up to n of the most recent lines, oldest first. n <= 0 returns all.
func (w *LogCaptureWriter) Lines(n int) []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if n <= 0 || n > len(w.lines) {
		n = len(w.lines)
	}
	out := make([]string, n)
	copy(out, w.lines[len(w.lines)-n:])
	return out
}
