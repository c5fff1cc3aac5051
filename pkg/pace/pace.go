// Package pace converts a walking speed into the time between simulated steps.
package pace

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// DefaultStepsPerKm assumes a 0.75m stride.
const DefaultStepsPerKm = 1333

// DefaultSpeedKmh is a relaxed walking pace.
const DefaultSpeedKmh = 4.0

// maxIntervalSeconds is the longest step interval a time.Duration can hold.
var maxIntervalSeconds = float64(math.MaxInt64) / float64(time.Second)

// ErrInvalidSpeed is returned for non-positive walking speeds or step densities.
var ErrInvalidSpeed = errors.New("invalid pace configuration")

// Config describes how fast the walker moves.
type Config struct {
	SpeedKmh   float64
	StepsPerKm int
}

// DefaultConfig returns a 4 km/h walk at the default stride.
func DefaultConfig() Config {
	return Config{
		SpeedKmh:   DefaultSpeedKmh,
		StepsPerKm: DefaultStepsPerKm,
	}
}

// New builds a Config for the given speed with the default stride.
func New(speedKmh float64) (Config, error) {
	c := Config{SpeedKmh: speedKmh, StepsPerKm: DefaultStepsPerKm}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks that both speed and step density are positive and that
// the resulting step interval fits in a time.Duration.
func (c Config) Validate() error {
	if math.IsNaN(c.SpeedKmh) || math.IsInf(c.SpeedKmh, 0) || c.SpeedKmh <= 0 {
		return fmt.Errorf("%w: walking speed must be positive, got %v km/h", ErrInvalidSpeed, c.SpeedKmh)
	}
	if c.StepsPerKm <= 0 {
		return fmt.Errorf("%w: steps per km must be positive, got %d", ErrInvalidSpeed, c.StepsPerKm)
	}
	if sec := 3600.0 / (float64(c.StepsPerKm) * c.SpeedKmh); sec >= maxIntervalSeconds {
		return fmt.Errorf("%w: %v km/h is too slow, step interval %.3gs exceeds %.3gs",
			ErrInvalidSpeed, c.SpeedKmh, sec, maxIntervalSeconds)
	}
	return nil
}

// IntervalSeconds returns the seconds between steps: 3600 / (steps_per_km * speed).
func (c Config) IntervalSeconds() (float64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	stepsPerHour := float64(c.StepsPerKm) * c.SpeedKmh
	return 3600.0 / stepsPerHour, nil
}

// Interval is IntervalSeconds as a time.Duration.
func (c Config) Interval() (time.Duration, error) {
	sec, err := c.IntervalSeconds()
	if err != nil {
		return 0, err
	}
	return time.Duration(sec * float64(time.Second)), nil
}

// IntervalFor returns the step interval in seconds for speedKmh at the default stride.
func IntervalFor(speedKmh float64) (float64, error) {
	return Config{SpeedKmh: speedKmh, StepsPerKm: DefaultStepsPerKm}.IntervalSeconds()
}

// TravelTime is the time needed to walk distanceKm at the configured speed.
// It saturates at the largest time.Duration.
func (c Config) TravelTime(distanceKm float64) time.Duration {
	if c.SpeedKmh <= 0 || distanceKm <= 0 {
		return 0
	}
	ns := distanceKm / c.SpeedKmh * float64(time.Hour)
	if ns >= float64(math.MaxInt64) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ns)
}
