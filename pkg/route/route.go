// Package route models ordered walking routes and expands their segments into steps.
package route

import (
	"errors"
	"fmt"
	"math"

	"walksim/pkg/geo"
	"walksim/pkg/pace"
)

// ErrInvalidRoute is returned when a route has too few points to walk.
var ErrInvalidRoute = errors.New("invalid route")

// Route is an ordered, read-only list of coordinates.
type Route struct {
	points []geo.Coordinate
}

// New validates and copies the given points into a Route.
// At least one point is required; a single point is a degenerate route.
func New(points ...geo.Coordinate) (Route, error) {
	if len(points) == 0 {
		return Route{}, fmt.Errorf("%w: route is empty", ErrInvalidRoute)
	}
	for i, p := range points {
		if err := geo.Validate(p); err != nil {
			return Route{}, fmt.Errorf("point %d: %w", i, err)
		}
	}
	cp := make([]geo.Coordinate, len(points))
	copy(cp, points)
	return Route{points: cp}, nil
}

// Len returns the number of coordinates in the route.
func (r Route) Len() int { return len(r.points) }

// IsDegenerate reports whether the route has no motion in it.
func (r Route) IsDegenerate() bool { return len(r.points) < 2 }

// Points returns a copy of the route's coordinates.
func (r Route) Points() []geo.Coordinate {
	cp := make([]geo.Coordinate, len(r.points))
	copy(cp, r.points)
	return cp
}

// Start returns the first coordinate. It panics on an empty route.
func (r Route) Start() geo.Coordinate { return r.points[0] }

// End returns the last coordinate. It panics on an empty route.
func (r Route) End() geo.Coordinate { return r.points[len(r.points)-1] }

// Segments returns the consecutive coordinate pairs in route order.
func (r Route) Segments() []Segment {
	if len(r.points) < 2 {
		return nil
	}
	segs := make([]Segment, 0, len(r.points)-1)
	for i := 0; i < len(r.points)-1; i++ {
		segs = append(segs, Segment{Start: r.points[i], End: r.points[i+1]})
	}
	return segs
}

// DistanceKm is the sum of all segment distances.
func (r Route) DistanceKm() float64 {
	total := 0.0
	for _, s := range r.Segments() {
		total += s.DistanceKm()
	}
	return total
}

// Segment is the straight span between two consecutive route coordinates.
type Segment struct {
	Start geo.Coordinate
	End   geo.Coordinate
}

// DistanceKm is the great-circle length of the segment.
func (s Segment) DistanceKm() float64 {
	return geo.Distance(s.Start, s.End)
}

// StepCount is the nominal number of steps needed to walk the segment, never below one.
// Expand may produce a different count because it floors instead of rounding.
func (s Segment) StepCount(p pace.Config) (int, error) {
	interval, err := p.IntervalSeconds()
	if err != nil {
		return 0, err
	}
	steps := int(math.Round(s.DistanceKm() / p.SpeedKmh * 3600 / interval))
	return max(1, steps), nil
}
