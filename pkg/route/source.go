package route

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"walksim/pkg/geo"
)

// Source produces the route for one playback run.
type Source interface {
	Route(ctx context.Context) (Route, error)
	// Describe returns a short human-readable label for logs.
	Describe() string
}

// FileParser turns a route file into ordered coordinates.
type FileParser interface {
	Parse(ctx context.Context, path string) ([]geo.Coordinate, error)
}

// Endpoints is a route between two literal coordinates.
type Endpoints struct {
	From geo.Coordinate
	To   geo.Coordinate
}

// Route implements Source.
func (e Endpoints) Route(ctx context.Context) (Route, error) {
	return New(e.From, e.To)
}

// Describe implements Source.
func (e Endpoints) Describe() string {
	return fmt.Sprintf("endpoints %s -> %s", e.From, e.To)
}

// Waypoints is a route through an explicit list of coordinates.
type Waypoints []geo.Coordinate

// Route implements Source.
func (w Waypoints) Route(ctx context.Context) (Route, error) {
	if len(w) < 2 {
		return Route{}, fmt.Errorf("%w: need at least 2 waypoints, got %d", ErrInvalidRoute, len(w))
	}
	return New(w...)
}

// Describe implements Source.
func (w Waypoints) Describe() string {
	return fmt.Sprintf("%d waypoints", len(w))
}

// File is a route read from disk by an external parser.
type File struct {
	Path   string
	Parser FileParser
}

// Route implements Source.
func (f File) Route(ctx context.Context) (Route, error) {
	if f.Parser == nil {
		return Route{}, fmt.Errorf("no parser configured for %s", f.Path)
	}
	points, err := f.Parser.Parse(ctx, f.Path)
	if err != nil {
		return Route{}, err
	}
	if len(points) < 2 {
		return Route{}, fmt.Errorf("%w: %s has %d point(s), need at least 2", ErrInvalidRoute, f.Path, len(points))
	}
	return New(points...)
}

// Describe implements Source.
func (f File) Describe() string {
	return "file " + f.Path
}

// ParseCoordinate parses "lat,lon" into a validated coordinate.
func ParseCoordinate(input string) (geo.Coordinate, error) {
	parts := strings.Split(input, ",")
	if len(parts) != 2 {
		return geo.Coordinate{}, fmt.Errorf("%w: expected \"lat,lon\", got %q", geo.ErrInvalidCoordinate, input)
	}

	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return geo.Coordinate{}, fmt.Errorf("%w: invalid lat/lon %q", geo.ErrInvalidCoordinate, input)
	}

	c := geo.Coordinate{Lat: lat, Lon: lon}
	if err := geo.Validate(c); err != nil {
		return geo.Coordinate{}, err
	}
	return c, nil
}

// ParseWaypoints parses a ";"-separated list of "lat,lon" pairs.
func ParseWaypoints(input string) ([]geo.Coordinate, error) {
	var coords []geo.Coordinate
	for i, part := range strings.Split(input, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		c, err := ParseCoordinate(part)
		if err != nil {
			return nil, fmt.Errorf("waypoint %d: %w", i+1, err)
		}
		coords = append(coords, c)
	}
	return coords, nil
}
