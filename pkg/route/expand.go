package route

import (
	"math"

	"walksim/pkg/geo"
	"walksim/pkg/pace"
)

// TotalSteps is the number of whole steps that fit in the segment's travel time.
func TotalSteps(s Segment, p pace.Config) (int, error) {
	interval, err := p.IntervalSeconds()
	if err != nil {
		return 0, err
	}
	walkingHours := s.DistanceKm() / p.SpeedKmh
	return int(math.Floor(walkingHours * 3600 / interval)), nil
}

// Expand generates the stepped coordinates for one segment.
//
// When fewer than one whole step fits, only the segment end is returned. Otherwise
// total_steps+1 points are interpolated linearly in degrees, starting exactly at
// Start and ending exactly at End.
func Expand(s Segment, p pace.Config) ([]geo.Coordinate, error) {
	totalSteps, err := TotalSteps(s, p)
	if err != nil {
		return nil, err
	}

	if totalSteps < 1 {
		return []geo.Coordinate{s.End}, nil
	}

	points := make([]geo.Coordinate, 0, totalSteps+1)
	for i := 0; i <= totalSteps; i++ {
		fraction := float64(i) / float64(totalSteps)
		points = append(points, geo.Lerp(s.Start, s.End, fraction))
	}
	return points, nil
}
