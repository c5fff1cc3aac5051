package geo

import (
	"github.com/paulmach/orb"
)

// ToPoint converts a coordinate to an orb point (lon, lat order).
func ToPoint(c Coordinate) orb.Point {
	return orb.Point{c.Lon, c.Lat}
}

// FromPoint converts an orb point back into a coordinate.
func FromPoint(p orb.Point) Coordinate {
	return Coordinate{Lat: p.Lat(), Lon: p.Lon()}
}

// ToLineString converts an ordered coordinate list to an orb line string.
func ToLineString(coords []Coordinate) orb.LineString {
	ls := make(orb.LineString, 0, len(coords))
	for _, c := range coords {
		ls = append(ls, ToPoint(c))
	}
	return ls
}

// FromLineString converts an orb line string to coordinates, preserving order.
func FromLineString(ls orb.LineString) []Coordinate {
	coords := make([]Coordinate, 0, len(ls))
	for _, p := range ls {
		coords = append(coords, FromPoint(p))
	}
	return coords
}

// Bound returns the bounding box of the coordinates.
// An empty list yields the zero bound.
func Bound(coords []Coordinate) orb.Bound {
	if len(coords) == 0 {
		return orb.Bound{}
	}
	return ToLineString(coords).Bound()
}
