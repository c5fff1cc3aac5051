package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"walksim/pkg/config"
	"walksim/pkg/model"
)

// RequestLogger is the logger instance for HTTP requests.
var RequestLogger *slog.Logger

// eventLogPath is the path to the event log file.
var eventLogPath string

// eventLogMu protects concurrent writes to the event log.
var eventLogMu sync.Mutex

// Init sets the default slog logger from cfg and prepares the events log.
// Existing log files are kept once as "<name>.old". The returned func closes the server log.
func Init(cfg *config.LogConfig) (func(), error) {
	for _, p := range []string{cfg.Server.Path, cfg.Events.Path} {
		rotate(p)
	}

	SetEventLogPath(cfg.Events.Path)
	EnableTrace = cfg.Trace

	level := parseLevel(cfg.Server.Level)
	file, err := openAppend(cfg.Server.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open server log: %w", err)
	}

	handler := fanout{
		// The file gets everything at the configured level, with source at DEBUG.
		slog.NewTextHandler(file, &slog.HandlerOptions{Level: level, AddSource: level <= slog.LevelDebug}),
		// Console stays at INFO or above so per-step traces do not flood the progress line.
		slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: max(level, slog.LevelInfo)}),
		// Capture feeds /api/log/latest.
		slog.NewTextHandler(GlobalLogCapture, &slog.HandlerOptions{Level: slog.LevelInfo}),
	}
	slog.SetDefault(slog.New(handler))
	RequestLogger = slog.Default().With("component", "http")

	return func() { _ = file.Close() }, nil
}

// parseLevel maps "debug", "INFO", "warn", "error" to a level. Unknown values mean INFO.
func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}

func openAppend(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

// rotate renames an existing log to "<path>.old", replacing any previous one.
func rotate(path string) {
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	old := path + ".old"
	_ = os.Remove(old)
	_ = os.Rename(path, old)
}

// SetEventLogPath configures the path for the event log file.
func SetEventLogPath(path string) {
	eventLogMu.Lock()
	defer eventLogMu.Unlock()
	eventLogPath = path
}

// LogEvent writes a run event to the event log file.
func LogEvent(event *model.RunEvent) {
	eventLogMu.Lock()
	defer eventLogMu.Unlock()

	if eventLogPath == "" {
		return
	}

	if err := os.MkdirAll(filepath.Dir(eventLogPath), 0o755); err != nil {
		slog.Error("failed to create event log directory", "error", err)
		return
	}

	f, err := os.OpenFile(eventLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		slog.Error("failed to open event log", "error", err)
		return
	}
	defer f.Close()

	line := formatEvent(event)

	if _, err := f.WriteString(line); err != nil {
		slog.Error("failed to write event log", "error", err)
	}

	_, _ = GlobalEventCapture.Write([]byte(strings.TrimSpace(line)))
}

// formatEvent renders "[2006-01-02 15:04:05] [type] (run) Title - Summary\n".
func formatEvent(e *model.RunEvent) string {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s]", ts.Format("2006-01-02 15:04:05"), e.Type)
	if e.RunID != "" {
		b.WriteString(" (" + e.RunID + ")")
	}
	b.WriteString(" " + e.Title)
	if e.Summary != "" {
		b.WriteString(" - " + e.Summary)
	}
	b.WriteByte('\n')
	return b.String()
}
