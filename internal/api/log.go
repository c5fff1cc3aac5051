package api

import (
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"walksim/pkg/logging"
)

// Regex to capture key=value or key="value with spaces"
var logRegex = regexp.MustCompile(`([a-zA-Z0-9_\-.]+)=(?:"([^"]*)"|([^ ]+))`)

// maxParamLen drops attribute values longer than this from the formatted line.
const maxParamLen = 20

// handleLatestLog returns the last captured log line, and with ?lines=N the
// N most recent lines plus recent run events.
func handleLatestLog(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"log": formatLogLine(logging.GlobalLogCapture.GetLastLine()),
	}

	if v := r.URL.Query().Get("lines"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "invalid lines", http.StatusBadRequest)
			return
		}
		raw := logging.GlobalLogCapture.Lines(n)
		lines := make([]string, len(raw))
		for i, l := range raw {
			lines[i] = formatLogLine(l)
		}
		resp["lines"] = lines
		resp["events"] = logging.GlobalEventCapture.Lines(n)
	}

	writeJSON(w, resp)
}

// formatLogLine parses the raw log line and applies filtering rules.
// Time becomes HH:MM:SS, msg is unwrapped, other params are sorted and long values dropped.
// Output: HH:MM:SS MsgValue (key=value, key=value)
func formatLogLine(raw string) string {
	matches := logRegex.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return raw
	}

	var msg string
	var timeStr string
	var params []string

	for _, m := range matches {
		key := m[1]
		val := m[2]
		if val == "" {
			val = m[3]
		}
		val = strings.TrimSpace(val)

		if key == "time" {
			// Parse RFC3339 time (default for slog)
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				timeStr = t.Format("15:04:05")
			}
			continue
		}

		if key == "level" {
			continue
		}

		if key == "msg" {
			msg = val
			continue
		}

		if len(val) > maxParamLen {
			continue
		}

		params = append(params, fmt.Sprintf("%s=%s", key, val))
	}

	if msg == "" {
		return raw
	}

	sort.Strings(params) // deterministic output

	output := msg
	if timeStr != "" {
		output = fmt.Sprintf("%s %s", timeStr, msg)
	}

	if len(params) > 0 {
		return fmt.Sprintf("%s (%s)", output, strings.Join(params, ", "))
	}
	return output
}
