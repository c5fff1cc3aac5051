package routefile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"walksim/pkg/geo"
)

// parseCSV reads "lat,lon" rows. Blank lines, '#' comments and a leading
// header row with non-numeric cells are skipped. Extra columns are ignored.
func parseCSV(path string) ([]geo.Coordinate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, parseErr(path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comment = '#'
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var coords []geo.Coordinate
	for row := 1; ; row++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, parseErr(path, err)
		}
		if len(rec) < 2 {
			return nil, parseErr(path, fmt.Errorf("row %d: expected lat,lon", row))
		}

		lat, err1 := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		lon, err2 := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err1 != nil || err2 != nil {
			if len(coords) == 0 && row == 1 {
				continue // header
			}
			return nil, parseErr(path, fmt.Errorf("row %d: invalid number in %q", row, strings.Join(rec, ",")))
		}
		coords = append(coords, geo.Coordinate{Lat: lat, Lon: lon})
	}
	return coords, nil
}
