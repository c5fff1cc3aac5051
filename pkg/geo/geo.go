// Package geo provides coordinate types and great-circle math.
package geo

import (
	"errors"
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used by Distance.
const EarthRadiusKm = 6371.0

// ErrInvalidCoordinate is returned when a latitude or longitude is out of range.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Coordinate is a geographic position in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// String formats the coordinate as "lat,lon" with six decimals.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}

// Validate checks that the coordinate lies within [-90, 90] x [-180, 180].
func Validate(c Coordinate) error {
	if math.IsNaN(c.Lat) || c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidCoordinate, c.Lat)
	}
	if math.IsNaN(c.Lon) || c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidCoordinate, c.Lon)
	}
	return nil
}

// Distance calculates the Haversine distance between two coordinates in kilometers.
func Distance(p1, p2 Coordinate) float64 {
	dLat := (p2.Lat - p1.Lat) * (math.Pi / 180.0)
	dLon := (p2.Lon - p1.Lon) * (math.Pi / 180.0)
	lat1 := p1.Lat * (math.Pi / 180.0)
	lat2 := p2.Lat * (math.Pi / 180.0)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1)*math.Cos(lat2)
	c := 2 * math.Asin(math.Min(1, math.Sqrt(a)))

	return EarthRadiusKm * c
}

// DistanceChecked validates both coordinates before measuring the distance between them.
func DistanceChecked(p1, p2 Coordinate) (float64, error) {
	if err := Validate(p1); err != nil {
		return 0, err
	}
	if err := Validate(p2); err != nil {
		return 0, err
	}
	return Distance(p1, p2), nil
}

// Lerp interpolates linearly in degrees between a and b.
// fraction 0 returns a and fraction 1 returns b exactly.
func Lerp(a, b Coordinate, fraction float64) Coordinate {
	switch fraction {
	case 0:
		return a
	case 1:
		return b
	}
	return Coordinate{
		Lat: a.Lat + (b.Lat-a.Lat)*fraction,
		Lon: a.Lon + (b.Lon-a.Lon)*fraction,
	}
}

// Bearing calculates the initial bearing (forward azimuth) from p1 to p2 in degrees.
func Bearing(p1, p2 Coordinate) float64 {
	lat1 := p1.Lat * (math.Pi / 180.0)
	lat2 := p2.Lat * (math.Pi / 180.0)
	dLon := (p2.Lon - p1.Lon) * (math.Pi / 180.0)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) -
		math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	brng := math.Atan2(y, x)

	return math.Mod(brng*(180.0/math.Pi)+360.0, 360.0)
}
