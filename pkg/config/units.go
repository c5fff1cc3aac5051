package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration to support extended units (d, w) in YAML.
type Duration time.Duration

// Common durations.
const (
	Day  = 24 * time.Hour
	Week = 7 * Day
)

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dur, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// ParseDuration parses a duration string, supporting d and w on top of time.ParseDuration.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if strings.ContainsAny(s, "dw") {
		return parseExtendedDuration(s)
	}
	return time.ParseDuration(s)
}

var unitMap = map[string]time.Duration{
	"ns": time.Nanosecond,
	"us": time.Microsecond,
	"µs": time.Microsecond,
	"ms": time.Millisecond,
	"s":  time.Second,
	"m":  time.Minute,
	"h":  time.Hour,
	"d":  Day,
	"w":  Week,
}

var durationPartRe = regexp.MustCompile(`([0-9.]+)([a-zµ]+)`)

func parseExtendedDuration(s string) (time.Duration, error) {
	matches := durationPartRe.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return 0, fmt.Errorf("invalid duration format: %s", s)
	}

	var total time.Duration
	for _, match := range matches {
		val, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number in duration: %s", match[1])
		}
		base, ok := unitMap[match[2]]
		if !ok {
			return 0, fmt.Errorf("unknown unit: %s", match[2])
		}
		total += time.Duration(val * float64(base))
	}
	return total, nil
}

// Speed is a walking speed in km/h.
type Speed float64

// KmPerMile converts statute miles to kilometers.
const KmPerMile = 1.609344

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Speed) UnmarshalYAML(value *yaml.Node) error {
	var str string
	if err := value.Decode(&str); err != nil {
		// bare number (speed: 4)
		var f float64
		if errNum := value.Decode(&f); errNum == nil {
			*s = Speed(f)
			return nil
		}
		return err
	}

	v, err := ParseSpeed(str)
	if err != nil {
		return err
	}
	*s = Speed(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (s Speed) MarshalYAML() (interface{}, error) {
	return strconv.FormatFloat(float64(s), 'f', -1, 64) + "km/h", nil
}

// ParseSpeed parses "4km/h", "1.2m/s", "2.5mph" or a unitless km/h value.
func ParseSpeed(s string) (float64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, nil
	}

	var mult float64
	var numStr string

	switch {
	case strings.HasSuffix(s, "km/h"):
		mult, numStr = 1, strings.TrimSuffix(s, "km/h")
	case strings.HasSuffix(s, "kmh"):
		mult, numStr = 1, strings.TrimSuffix(s, "kmh")
	case strings.HasSuffix(s, "m/s"):
		mult, numStr = 3.6, strings.TrimSuffix(s, "m/s")
	case strings.HasSuffix(s, "mph"):
		mult, numStr = KmPerMile, strings.TrimSuffix(s, "mph")
	default:
		mult, numStr = 1, s
	}

	val, err := strconv.ParseFloat(strings.TrimSpace(numStr), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid speed number: %w", err)
	}
	return val * mult, nil
}
