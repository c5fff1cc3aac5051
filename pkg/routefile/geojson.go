package routefile

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"walksim/pkg/geo"
)

// parseGeoJSON accepts a FeatureCollection, a single Feature or a bare geometry.
func parseGeoJSON(path string) ([]geo.Coordinate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, parseErr(path, err)
	}

	var geoms []orb.Geometry
	if fc, err := geojson.UnmarshalFeatureCollection(data); err == nil {
		for _, f := range fc.Features {
			geoms = append(geoms, f.Geometry)
		}
	} else if f, ferr := geojson.UnmarshalFeature(data); ferr == nil && f.Geometry != nil {
		geoms = append(geoms, f.Geometry)
	} else if g, gerr := geojson.UnmarshalGeometry(data); gerr == nil {
		geoms = append(geoms, g.Geometry())
	} else {
		return nil, parseErr(path, err)
	}

	var coords []geo.Coordinate
	for i, g := range geoms {
		switch v := g.(type) {
		case orb.Point:
			coords = append(coords, geo.FromPoint(v))
		case orb.LineString:
			coords = append(coords, geo.FromLineString(v)...)
		case orb.MultiPoint:
			coords = append(coords, geo.FromLineString(orb.LineString(v))...)
		case orb.MultiLineString:
			for _, ls := range v {
				coords = append(coords, geo.FromLineString(ls)...)
			}
		case nil:
			continue
		default:
			return nil, parseErr(path, fmt.Errorf("feature %d: unsupported geometry %s", i+1, g.GeoJSONType()))
		}
	}
	return coords, nil
}
