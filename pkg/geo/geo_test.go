package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		p1   Coordinate
		p2   Coordinate
		want float64
	}{
		{
			name: "Same Point",
			p1:   Coordinate{Lat: 0, Lon: 0},
			p2:   Coordinate{Lat: 0, Lon: 0},
			want: 0,
		},
		{
			name: "London to Paris",
			p1:   Coordinate{Lat: 51.5074, Lon: -0.1278},
			p2:   Coordinate{Lat: 48.8566, Lon: 2.3522},
			want: 344, // Approx 344km
		},
		{
			name: "Equator 1 degree",
			p1:   Coordinate{Lat: 0, Lon: 0},
			p2:   Coordinate{Lat: 0, Lon: 1},
			want: 111.19,
		},
		{
			name: "Seoul Station walk",
			p1:   Coordinate{Lat: 37.555946, Lon: 126.972317},
			p2:   Coordinate{Lat: 37.559911, Lon: 126.977103},
			want: 0.61,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.p1, tt.p2)
			if tt.want == 0 {
				if got != 0 {
					t.Errorf("Distance() = %v, want 0", got)
				}
				return
			}
			// Allow 10% margin, short walks are sensitive to rounding in the expectation
			margin := tt.want * 0.1
			if math.Abs(got-tt.want) > margin {
				t.Errorf("Distance() = %v, want %v (+/- %v)", got, tt.want, margin)
			}
		})
	}
}

func TestDistance_Properties(t *testing.T) {
	points := []Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: 89.9, Lon: 179.9},
		{Lat: -45.5, Lon: -120.25},
		{Lat: 37.555946, Lon: 126.972317},
		{Lat: 37.559911, Lon: 126.977103},
		{Lat: -90, Lon: 180},
	}

	for _, a := range points {
		if d := Distance(a, a); d != 0 {
			t.Errorf("Distance(%v, %v) = %v, want 0", a, a, d)
		}
		for _, b := range points {
			ab := Distance(a, b)
			ba := Distance(b, a)
			if ab < 0 {
				t.Errorf("Distance(%v, %v) = %v, want >= 0", a, b, ab)
			}
			if math.Abs(ab-ba) > 1e-9 {
				t.Errorf("Distance not symmetric for %v/%v: %v vs %v", a, b, ab, ba)
			}
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		c       Coordinate
		wantErr bool
	}{
		{"Origin", Coordinate{0, 0}, false},
		{"Corners", Coordinate{-90, 180}, false},
		{"LatTooHigh", Coordinate{90.0001, 0}, true},
		{"LatTooLow", Coordinate{-91, 0}, true},
		{"LonTooHigh", Coordinate{0, 180.5}, true},
		{"LonTooLow", Coordinate{0, -181}, true},
		{"NaN", Coordinate{math.NaN(), 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.c)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate(%v) error = %v, wantErr %v", tt.c, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidCoordinate) {
				t.Errorf("expected ErrInvalidCoordinate, got %v", err)
			}
		})
	}
}

func TestDistanceChecked(t *testing.T) {
	if _, err := DistanceChecked(Coordinate{0, 0}, Coordinate{100, 0}); !errors.Is(err, ErrInvalidCoordinate) {
		t.Errorf("expected ErrInvalidCoordinate, got %v", err)
	}
	d, err := DistanceChecked(Coordinate{0, 0}, Coordinate{0, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != Distance(Coordinate{0, 0}, Coordinate{0, 1}) {
		t.Errorf("DistanceChecked disagrees with Distance: %v", d)
	}
}

func TestLerp(t *testing.T) {
	a := Coordinate{Lat: 37.555946, Lon: 126.972317}
	b := Coordinate{Lat: 37.559911, Lon: 126.977103}

	if got := Lerp(a, b, 0); got != a {
		t.Errorf("Lerp(0) = %v, want %v", got, a)
	}
	if got := Lerp(a, b, 1); got != b {
		t.Errorf("Lerp(1) = %v, want %v", got, b)
	}
	mid := Lerp(Coordinate{0, 0}, Coordinate{10, 20}, 0.5)
	if mid.Lat != 5 || mid.Lon != 10 {
		t.Errorf("Lerp(0.5) = %v, want 5,10", mid)
	}
}

func TestBearing(t *testing.T) {
	tests := []struct {
		name string
		p1   Coordinate
		p2   Coordinate
		want float64
	}{
		{"North", Coordinate{10, 20}, Coordinate{11, 20}, 0},
		{"East", Coordinate{0, 20}, Coordinate{0, 21}, 90},
		{"South", Coordinate{11, 20}, Coordinate{10, 20}, 180},
		{"West", Coordinate{0, 21}, Coordinate{0, 20}, 270},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Bearing(tt.p1, tt.p2); math.Abs(got-tt.want) > 1.0 {
				t.Errorf("Bearing() = %v, want approx %v", got, tt.want)
			}
		})
	}
}

func TestBound(t *testing.T) {
	coords := []Coordinate{
		{Lat: 37.555946, Lon: 126.972317},
		{Lat: 37.559911, Lon: 126.977103},
		{Lat: 37.550000, Lon: 126.980000},
	}
	b := Bound(coords)
	want := orb.Bound{Min: orb.Point{126.972317, 37.55}, Max: orb.Point{126.98, 37.559911}}
	if !b.Equal(want) {
		t.Errorf("Bound() = %v, want %v", b, want)
	}

	if got := Bound(nil); !got.Equal(orb.Bound{}) {
		t.Errorf("Bound(nil) = %v, want zero bound", got)
	}

	back := FromLineString(ToLineString(coords))
	for i := range coords {
		if back[i] != coords[i] {
			t.Errorf("round trip mismatch at %d: %v vs %v", i, back[i], coords[i])
		}
	}
}
