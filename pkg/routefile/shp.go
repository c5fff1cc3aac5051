package routefile

import (
	"fmt"
	"log/slog"

	"github.com/jonas-p/go-shp"

	"walksim/pkg/geo"
)

// parseShapefile reads PolyLine parts in order and Point shapes as single waypoints.
// Shapefile X is longitude, Y is latitude.
func parseShapefile(path string) ([]geo.Coordinate, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, parseErr(path, err)
	}
	defer r.Close()

	var coords []geo.Coordinate
	for r.Next() {
		n, s := r.Shape()
		switch v := s.(type) {
		case *shp.Null:
			continue
		case *shp.PolyLine:
			coords = append(coords, polyLineCoords(v)...)
		case *shp.Point:
			coords = append(coords, geo.Coordinate{Lat: v.Y, Lon: v.X})
		default:
			slog.Warn("Route file: skipping unsupported shape", "path", path, "index", n, "type", fmt.Sprintf("%T", s))
		}
	}
	if err := r.Err(); err != nil {
		return nil, parseErr(path, err)
	}
	return coords, nil
}

func polyLineCoords(s *shp.PolyLine) []geo.Coordinate {
	coords := make([]geo.Coordinate, 0, s.NumPoints)
	for i := 0; i < int(s.NumParts); i++ {
		start := s.Parts[i]
		end := s.NumPoints
		if i < int(s.NumParts)-1 {
			end = s.Parts[i+1]
		}
		for j := start; j < end; j++ {
			coords = append(coords, geo.Coordinate{Lat: s.Points[j].Y, Lon: s.Points[j].X})
		}
	}
	return coords
}
