// Package routefile reads walking routes from GPX, GeoJSON, Shapefile and CSV files.
package routefile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"walksim/pkg/geo"
)

// ErrParse is returned when a route file cannot be turned into coordinates.
var ErrParse = errors.New("route file parse error")

// Format identifies a supported route file format.
type Format string

const (
	FormatGPX       Format = "gpx"
	FormatGeoJSON   Format = "geojson"
	FormatShapefile Format = "shp"
	FormatCSV       Format = "csv"
)

// Parser dispatches to a format decoder by file extension.
// It implements route.FileParser.
type Parser struct{}

// New returns a route file parser.
func New() *Parser {
	return &Parser{}
}

// DetectFormat maps a path's extension to a Format.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gpx":
		return FormatGPX, nil
	case ".geojson", ".json":
		return FormatGeoJSON, nil
	case ".shp":
		return FormatShapefile, nil
	case ".csv", ".txt":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: unsupported extension %q", ErrParse, filepath.Ext(path))
	}
}

// Parse reads path and returns its coordinates in travel order.
func (p *Parser) Parse(ctx context.Context, path string) ([]geo.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	var coords []geo.Coordinate
	switch format {
	case FormatGPX:
		coords, err = parseGPX(path)
	case FormatGeoJSON:
		coords, err = parseGeoJSON(path)
	case FormatShapefile:
		coords, err = parseShapefile(path)
	case FormatCSV:
		coords, err = parseCSV(path)
	}
	if err != nil {
		return nil, err
	}
	if len(coords) == 0 {
		return nil, fmt.Errorf("%w: %s contains no points", ErrParse, path)
	}
	for i, c := range coords {
		if err := geo.Validate(c); err != nil {
			return nil, fmt.Errorf("%w: %s point %d: %w", ErrParse, path, i+1, err)
		}
	}

	slog.Debug("Route file parsed", "path", path, "format", format, "points", len(coords))
	return coords, nil
}

func parseErr(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrParse, path, err)
}
