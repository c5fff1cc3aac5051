package routefile

import (
	"github.com/tkrajina/gpxgo/gpx"

	"walksim/pkg/geo"
)

// parseGPX prefers track points, then route points, then bare waypoints.
func parseGPX(path string) ([]geo.Coordinate, error) {
	doc, err := gpx.ParseFile(path)
	if err != nil {
		return nil, parseErr(path, err)
	}

	var coords []geo.Coordinate
	for _, trk := range doc.Tracks {
		for _, seg := range trk.Segments {
			coords = appendGPX(coords, seg.Points)
		}
	}
	if len(coords) > 0 {
		return coords, nil
	}

	for _, rte := range doc.Routes {
		coords = appendGPX(coords, rte.Points)
	}
	if len(coords) > 0 {
		return coords, nil
	}

	return appendGPX(coords, doc.Waypoints), nil
}

func appendGPX(dst []geo.Coordinate, pts []gpx.GPXPoint) []geo.Coordinate {
	for _, p := range pts {
		dst = append(dst, geo.Coordinate{Lat: p.Latitude, Lon: p.Longitude})
	}
	return dst
}
